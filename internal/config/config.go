package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Database Database `koanf:"db"`
	WorkType WorkType `koanf:"worktype"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// WorkType holds the work type catalog settings.
type WorkType struct {
	// FoodPairs maps a work type code that includes a meal allowance to the code of its
	// without-food counterpart.
	FoodPairs map[string]string `koanf:"foodpairs"`
}

// DefaultFoodPairs are the pairs known to every installation.
func DefaultFoodPairs() map[string]string {
	return map[string]string{
		"10_SF": "11_S",
		"20_NF": "21_N",
		"30_WF": "31_W",
	}
}

func defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "timesheet",
			Pass:   "",
			Name:   "timesheet",
			Schema: "timesheet",
		},
		WorkType: WorkType{
			FoodPairs: DefaultFoodPairs(),
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "TIMESHEET_",
		TransformFunc: func(k, v string) (string, any) {
			return envKey(k), v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

const foodPairsEnvPrefix = "WORKTYPE_FOODPAIRS_"

// envKey maps TIMESHEET_DB_HOST to db.host. Food pair codes contain underscores themselves, so
// TIMESHEET_WORKTYPE_FOODPAIRS_10_SF maps to worktype.foodpairs.10_SF.
func envKey(k string) string {
	k = strings.TrimPrefix(k, "TIMESHEET_")
	if code, ok := strings.CutPrefix(k, foodPairsEnvPrefix); ok && code != "" {
		return "worktype.foodpairs." + code
	}
	return strings.ReplaceAll(strings.ToLower(k), "_", ".")
}
