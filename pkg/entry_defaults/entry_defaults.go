package entry_defaults

import (
	"time"

	"github.com/shopspring/decimal"
)

// Defaults prefill new timesheet entries of a user. Zero values mean "not set".
type Defaults struct {
	ProjectId  int
	TaskId     int
	Date       time.Time
	EmployeeId int
	WorkTypeId int
	UnitAmount decimal.NullDecimal
}

func dayAfter(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
