/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_DENOMINATION = "GBP"
	DEFAULT_DAYS_IN_YEAR = "actual"
)

var ConfigStore atomic.Value

// Configuration carries the product-wide defaults the library falls back on
// when an account's ledger does not supply the matching parameter.
type Configuration struct {
	ProjectName string `json:"project_name" envconfig:"LENDKIT_PROJECT_NAME"`
	// Denomination is the default currency for repayments and accruals.
	Denomination string `json:"denomination" envconfig:"LENDKIT_DENOMINATION"`
	// DaysInYear is the default day-count convention: 360, 365, 366 or actual.
	DaysInYear string `json:"days_in_year" envconfig:"LENDKIT_DAYS_IN_YEAR"`
	// AccrualPrecision is the number of decimal places interest accrues to.
	AccrualPrecision int `json:"accrual_precision" envconfig:"LENDKIT_ACCRUAL_PRECISION"`
	// ApplicationPrecision is the number of decimal places posted money is
	// rounded to.
	ApplicationPrecision int `json:"application_precision" envconfig:"LENDKIT_APPLICATION_PRECISION"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("lendkit", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded. Create a json file called lendkit.json with your config or set LENDKIT_* env variables")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		cnf.ProjectName = "Lendkit"
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Denomination = strings.TrimSpace(cnf.Denomination)
	cnf.DaysInYear = strings.TrimSpace(cnf.DaysInYear)

	if cnf.Denomination == "" {
		cnf.Denomination = DEFAULT_DENOMINATION
	}

	switch cnf.DaysInYear {
	case "360", "365", "366", "actual":
	case "":
		cnf.DaysInYear = DEFAULT_DAYS_IN_YEAR
	default:
		log.Printf("Warning: unknown days_in_year %q. Falling back to %q", cnf.DaysInYear, DEFAULT_DAYS_IN_YEAR)
		cnf.DaysInYear = DEFAULT_DAYS_IN_YEAR
	}

	if cnf.AccrualPrecision <= 0 {
		cnf.AccrualPrecision = 5
	}
	if cnf.ApplicationPrecision <= 0 {
		cnf.ApplicationPrecision = 2
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	_ = mockConfig.validateAndAddDefaults()
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
