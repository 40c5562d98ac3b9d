package event_bus

import "time"

const (
	TimesheetEntryUpdatedEvent EventType = "timesheet.entry.updated"
	TimesheetEntrySplitEvent   EventType = "timesheet.entry.split"
)

type TimesheetEntryUpdated struct {
	UserId  int
	EntryId int
	Date    time.Time
}

type TimesheetEntrySplit struct {
	UserId        int
	EntryId       int
	CopiedEntryId int
	Date          time.Time
}
