package work_type

import (
	"errors"
	"testing"

	"github.com/klokku/timesheet/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var standardTypes = []WorkType{
	{Id: 1, Code: "10_SF", FoodIncluded: true},
	{Id: 2, Code: "11_S"},
	{Id: 3, Code: "20_NF", FoodIncluded: true},
	{Id: 4, Code: "21_N"},
	{Id: 5, Code: "30_WF", FoodIncluded: true},
	{Id: 6, Code: "31_W"},
}

func TestNewCatalog(t *testing.T) {
	t.Run("should accept the standard pairs", func(t *testing.T) {
		// when
		catalog, err := NewCatalog(standardTypes, config.DefaultFoodPairs())

		// then
		require.NoError(t, err)
		assert.Len(t, catalog.WorkTypes(), 6)
		wt, ok := catalog.ByCode("21_N")
		assert.True(t, ok)
		assert.Equal(t, 4, wt.Id)
	})

	t.Run("should fail when a food work type has no pair", func(t *testing.T) {
		// given
		types := append([]WorkType{{Id: 7, Code: "40_HF", FoodIncluded: true}}, standardTypes...)

		// when
		catalog, err := NewCatalog(types, config.DefaultFoodPairs())

		// then
		assert.Nil(t, catalog)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "work type 40_HF must have a without-food variant")
	})

	t.Run("should fail when the pair points to a missing work type", func(t *testing.T) {
		// when
		_, err := NewCatalog(standardTypes[:5], config.DefaultFoodPairs())

		// then
		var configErr *ConfigurationError
		require.True(t, errors.As(err, &configErr))
		assert.Equal(t, "30_WF", configErr.Code)
		assert.Contains(t, err.Error(), "unknown work type 31_W")
	})

	t.Run("should fail when the pair includes food as well", func(t *testing.T) {
		// given
		pairs := config.DefaultFoodPairs()
		pairs["10_SF"] = "20_NF"

		// when
		_, err := NewCatalog(standardTypes, pairs)

		// then
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "includes food as well")
	})

	t.Run("should ignore pairs for codes that are not in the catalog", func(t *testing.T) {
		// given
		pairs := config.DefaultFoodPairs()
		pairs["99_XF"] = "99_X"

		// when
		_, err := NewCatalog(standardTypes, pairs)

		// then
		assert.NoError(t, err)
	})
}

func TestCatalog_WithoutFoodVariant(t *testing.T) {
	catalog, err := NewCatalog(standardTypes, config.DefaultFoodPairs())
	require.NoError(t, err)

	t.Run("should resolve every standard pair", func(t *testing.T) {
		for food, plain := range config.DefaultFoodPairs() {
			wt, _ := catalog.ByCode(food)

			variant, err := catalog.WithoutFoodVariant(wt)

			require.NoError(t, err)
			assert.Equal(t, plain, variant.Code)
			assert.False(t, variant.FoodIncluded)
		}
	})

	t.Run("should return work type without food unchanged", func(t *testing.T) {
		wt, _ := catalog.ByCode("11_S")

		variant, err := catalog.WithoutFoodVariant(wt)

		require.NoError(t, err)
		assert.Equal(t, wt, variant)
	})

	t.Run("should fail for an unregistered food work type", func(t *testing.T) {
		_, err := catalog.WithoutFoodVariant(WorkType{Id: 99, Code: "50_XF", FoodIncluded: true})

		var configErr *ConfigurationError
		require.True(t, errors.As(err, &configErr))
		assert.Equal(t, "work type 50_XF must have a without-food variant", configErr.Error())
	})
}
