package work_type

import (
	"errors"
	"fmt"
	"sort"
)

// ErrConfiguration matches every *ConfigurationError with errors.Is.
var ErrConfiguration = errors.New("work type configuration error")

type WorkType struct {
	Id           int
	Code         string
	Name         string
	FoodIncluded bool
}

// ConfigurationError reports work type master data that cannot be used, most notably a work
// type including a meal allowance with no registered without-food counterpart. It is never
// transient.
type ConfigurationError struct {
	Code   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("work type %s %s", e.Code, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func missingVariant(code string) *ConfigurationError {
	return &ConfigurationError{Code: code, Reason: "must have a without-food variant"}
}

// Catalog is a validated snapshot of the work types together with the food pairing table.
type Catalog struct {
	byCode      map[string]WorkType
	withoutFood map[string]string
}

// NewCatalog builds a catalog and validates the pairing table against it: every work type that
// includes food must be paired, and its pair must exist and must not include food itself.
func NewCatalog(types []WorkType, foodPairs map[string]string) (*Catalog, error) {
	catalog := newCatalog(types, foodPairs)

	var errs []error
	for _, code := range catalog.sortedCodes() {
		wt := catalog.byCode[code]
		if !wt.FoodIncluded {
			continue
		}
		plainCode, paired := catalog.withoutFood[code]
		if !paired {
			errs = append(errs, missingVariant(code))
			continue
		}
		plain, exists := catalog.byCode[plainCode]
		if !exists {
			errs = append(errs, &ConfigurationError{
				Code:   code,
				Reason: fmt.Sprintf("is paired with unknown work type %s", plainCode),
			})
			continue
		}
		if plain.FoodIncluded {
			errs = append(errs, &ConfigurationError{
				Code:   code,
				Reason: fmt.Sprintf("is paired with %s which includes food as well", plainCode),
			})
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return catalog, nil
}

// newCatalog builds a catalog without validating it. Lookups still fail for the work types
// that are misconfigured.
func newCatalog(types []WorkType, foodPairs map[string]string) *Catalog {
	catalog := &Catalog{
		byCode:      make(map[string]WorkType, len(types)),
		withoutFood: make(map[string]string, len(foodPairs)),
	}
	for _, wt := range types {
		catalog.byCode[wt.Code] = wt
	}
	for foodCode, plainCode := range foodPairs {
		catalog.withoutFood[foodCode] = plainCode
	}
	return catalog
}

// ByCode returns the work type registered under code, if any.
func (c *Catalog) ByCode(code string) (WorkType, bool) {
	wt, ok := c.byCode[code]
	return wt, ok
}

// WithoutFoodVariant returns the counterpart of a work type including food. Work types without
// food are returned unchanged.
func (c *Catalog) WithoutFoodVariant(wt WorkType) (WorkType, error) {
	if !wt.FoodIncluded {
		return wt, nil
	}
	plainCode, ok := c.withoutFood[wt.Code]
	if !ok {
		return WorkType{}, missingVariant(wt.Code)
	}
	plain, ok := c.byCode[plainCode]
	if !ok {
		return WorkType{}, missingVariant(wt.Code)
	}
	if plain.FoodIncluded {
		return WorkType{}, &ConfigurationError{
			Code:   wt.Code,
			Reason: fmt.Sprintf("is paired with %s which includes food as well", plainCode),
		}
	}
	return plain, nil
}

// WorkTypes returns all work types ordered by code.
func (c *Catalog) WorkTypes() []WorkType {
	types := make([]WorkType, 0, len(c.byCode))
	for _, code := range c.sortedCodes() {
		types = append(types, c.byCode[code])
	}
	return types
}

func (c *Catalog) sortedCodes() []string {
	codes := make([]string, 0, len(c.byCode))
	for code := range c.byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
