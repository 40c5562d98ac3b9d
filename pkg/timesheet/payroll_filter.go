package timesheet

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	PayrollEquals    = "="
	PayrollNotEquals = "!="
)

// PayrollFilter selects entries by their payroll date. A nil Value stands for "not in payroll".
// Operators other than PayrollEquals and PayrollNotEquals match nothing.
type PayrollFilter struct {
	Operator string
	Value    *time.Time
}

func (f PayrollFilter) Matches(inPayroll *time.Time) bool {
	switch f.Operator {
	case PayrollEquals:
		return sameDate(inPayroll, f.Value)
	case PayrollNotEquals:
		return !sameDate(inPayroll, f.Value)
	default:
		return false
	}
}

// condition renders the filter as a SQL condition on column using placeholder $argPos.
func (f PayrollFilter) condition(column string, argPos int) (string, []any) {
	value := pgtype.Date{}
	if f.Value != nil {
		value = pgtype.Date{Time: dateOnly(*f.Value), Valid: true}
	}
	switch f.Operator {
	case PayrollEquals:
		return fmt.Sprintf("%s IS NOT DISTINCT FROM $%d::date", column, argPos), []any{value}
	case PayrollNotEquals:
		return fmt.Sprintf("%s IS DISTINCT FROM $%d::date", column, argPos), []any{value}
	default:
		return "FALSE", nil
	}
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return dateOnly(*a).Equal(dateOnly(*b))
}
