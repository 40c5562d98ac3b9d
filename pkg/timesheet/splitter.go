package timesheet

import (
	"strings"

	"github.com/klokku/timesheet/pkg/work_type"
	"github.com/shopspring/decimal"
)

const (
	firstLabelPrefix  = "split1: "
	secondLabelPrefix = "split2: "
)

// VariantResolver finds the without-food counterpart of a work type that includes food.
// *work_type.Catalog implements it.
type VariantResolver interface {
	WithoutFoodVariant(wt work_type.WorkType) (work_type.WorkType, error)
}

type VariantResolverFunc func(wt work_type.WorkType) (work_type.WorkType, error)

func (f VariantResolverFunc) WithoutFoodVariant(wt work_type.WorkType) (work_type.WorkType, error) {
	return f(wt)
}

// SplitResult holds the two halves of a split entry. First keeps the identity of the original
// entry, Second is the copy to be created and has no Id yet.
type SplitResult struct {
	First  Entry
	Second Entry
}

// Split divides entry so that its first part holds exactly hoursToSpend hours and a copy holds
// the rest. It only splits when 0 < hoursToSpend < entry.Quantity and returns false otherwise.
//
// For work types including a meal allowance the parts get different work types. foodDaysRest is
// the number of meal allowance days the caller still has: when none are left the first part
// loses the allowance, otherwise the second part does. A food work type without a registered
// counterpart fails with a *work_type.ConfigurationError.
//
// Split does not touch storage. Both parts must be persisted together.
func Split(entry Entry, hoursToSpend decimal.Decimal, foodDaysRest int, variants VariantResolver) (SplitResult, bool, error) {
	if !hoursToSpend.IsPositive() || !hoursToSpend.LessThan(entry.Quantity) {
		return SplitResult{}, false, nil
	}

	firstType := entry.WorkType
	secondType := entry.WorkType
	if entry.WorkType.FoodIncluded {
		withoutFood, err := variants.WithoutFoodVariant(entry.WorkType)
		if err != nil {
			return SplitResult{}, false, err
		}
		if foodDaysRest <= 0 {
			firstType = withoutFood
		} else {
			secondType = withoutFood
		}
	}

	label := strings.TrimSpace(entry.Label)

	first := entry
	first.Quantity = hoursToSpend
	first.Label = firstLabelPrefix + label
	first.WorkType = firstType

	second := entry
	second.Id = 0
	second.Uid = ""
	second.InPayroll = nil
	second.Quantity = entry.Quantity.Sub(hoursToSpend)
	second.Label = secondLabelPrefix + label
	second.WorkType = secondType

	return SplitResult{First: first, Second: second}, true, nil
}
