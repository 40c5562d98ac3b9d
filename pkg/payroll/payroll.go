package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payslip struct {
	Id         int
	EmployeeId int
	Name       string
	DateFrom   time.Time
	DateTo     time.Time
}

// WorkedDays is a payslip line consuming timesheet entries. Every linked entry reports the
// payslip's DateTo as its payroll date and can no longer be changed.
type WorkedDays struct {
	Id        int
	PayslipId int
	Code      string
	Hours     decimal.Decimal
	EntryIds  []int
}
