package timesheet

import (
	"time"

	"github.com/klokku/timesheet/pkg/work_type"
	"github.com/shopspring/decimal"
)

// Entry is a single timesheet line: hours logged by an employee on a project task for one day.
type Entry struct {
	Id         int
	Uid        string
	UserId     int
	Date       time.Time
	ProjectId  int
	TaskId     int
	EmployeeId int
	WorkType   work_type.WorkType
	Quantity   decimal.Decimal
	Label      string
	// InPayroll is the end date of the payslip that consumed the entry, nil when not consumed.
	InPayroll *time.Time
}

// Locked reports whether the entry was consumed by payroll. Locked entries can be neither
// changed nor deleted.
func (e Entry) Locked() bool {
	return e.InPayroll != nil
}

func (e Entry) WorkTypeCode() string {
	return e.WorkType.Code
}

// EntryFilter narrows ListEntries. Zero dates are open bounds, both bounds are inclusive.
type EntryFilter struct {
	From    time.Time
	To      time.Time
	Payroll *PayrollFilter
}

func (f EntryFilter) matches(entry Entry) bool {
	if !f.From.IsZero() && entry.Date.Before(dateOnly(f.From)) {
		return false
	}
	if !f.To.IsZero() && entry.Date.After(dateOnly(f.To)) {
		return false
	}
	if f.Payroll != nil && !f.Payroll.Matches(entry.InPayroll) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// quantityScale is the number of decimal places stored for hours.
const quantityScale = 4

// fitsQuantityScale reports whether hours can be stored without rounding. Trailing zeros are
// fine.
func fitsQuantityScale(hours decimal.Decimal) bool {
	return hours.Truncate(quantityScale).Equal(hours)
}
