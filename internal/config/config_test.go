package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should use defaults when config file is missing", func(t *testing.T) {
		// when
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, 8181, cfg.Port)
		assert.Equal(t, "timesheet", cfg.Database.Name)
		assert.Equal(t, "11_S", cfg.WorkType.FoodPairs["10_SF"])
		assert.Equal(t, "21_N", cfg.WorkType.FoodPairs["20_NF"])
		assert.Equal(t, "31_W", cfg.WorkType.FoodPairs["30_WF"])
	})

	t.Run("should override defaults from yaml file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		content := "db:\n  host: db.internal\n  port: 6543\nworktype:\n  foodpairs:\n    40_HF: 41_H\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, "41_H", cfg.WorkType.FoodPairs["40_HF"])
		assert.Equal(t, "11_S", cfg.WorkType.FoodPairs["10_SF"])
	})

	t.Run("should override defaults from environment", func(t *testing.T) {
		// given
		t.Setenv("TIMESHEET_DB_NAME", "payroll")

		// when
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "payroll", cfg.Database.Name)
	})
	t.Run("should override food pairs from environment", func(t *testing.T) {
		// given
		t.Setenv("TIMESHEET_WORKTYPE_FOODPAIRS_10_SF", "12_S")
		t.Setenv("TIMESHEET_WORKTYPE_FOODPAIRS_40_HF", "41_H")

		// when
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		// then
		require.NoError(t, err)
		assert.Equal(t, "12_S", cfg.WorkType.FoodPairs["10_SF"])
		assert.Equal(t, "41_H", cfg.WorkType.FoodPairs["40_HF"])
		assert.Equal(t, "21_N", cfg.WorkType.FoodPairs["20_NF"])
	})
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "db.host", envKey("TIMESHEET_DB_HOST"))
	assert.Equal(t, "port", envKey("TIMESHEET_PORT"))
	assert.Equal(t, "worktype.foodpairs.10_SF", envKey("TIMESHEET_WORKTYPE_FOODPAIRS_10_SF"))
}
