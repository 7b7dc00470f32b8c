// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	structValidator *validator.Validate
	validateOnce    sync.Once
)

// pathFields are the keys whose validation failure aborts startup instead of
// falling back to the default.
var pathFields = map[string]bool{
	"LogFile":           true,
	"ScriptsDir":        true,
	"WPASupplicantConf": true,
}

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// validate checks cfg against its struct tags. Invalid non-path fields are
// reset to their default in place and reported as warnings.
func validate(cfg *Config) ([]string, error) {
	err := getValidator().Struct(cfg)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, &Error{Err: err}
	}

	defaults := reflect.ValueOf(defaultConfig()).Elem()
	target := reflect.ValueOf(cfg).Elem()
	ctype := target.Type()

	var warnings []string
	for _, fe := range verrs {
		sf, ok := ctype.FieldByName(fe.StructField())
		if !ok {
			return nil, &Error{Err: err}
		}
		key := sf.Tag.Get("koanf")
		if pathFields[sf.Name] {
			return nil, &Error{Key: key, Err: fmt.Errorf("invalid path %q (%s)", fmt.Sprint(fe.Value()), fe.Tag())}
		}
		target.FieldByName(sf.Name).Set(defaults.FieldByName(sf.Name))
		warnings = append(warnings, fmt.Sprintf("value %v for %s fails %s, using default %v",
			fe.Value(), key, fe.ActualTag(), defaults.FieldByName(sf.Name).Interface()))
	}
	return warnings, nil
}
