// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "ZERO2_CONFIG"

// systemConfigEnvVar forces the installed config even when a development copy exists.
const systemConfigEnvVar = "ZERO2_USE_SYSTEM_CONFIG"

// DevConfigPath is the checkout-relative config used during development.
const DevConfigPath = "config/zero2.conf"

// SystemConfigPath is where the installer places the config.
const SystemConfigPath = "/opt/zero2_controller/config/zero2.conf"

// field describes one configuration key and how to coerce raw values into it.
type field struct {
	key   string
	name  string
	kind  reflect.Kind
	index int
}

var fields = buildFields()

func buildFields() []field {
	t := reflect.TypeOf(Config{})
	out := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		key := sf.Tag.Get("koanf")
		if key == "" || !sf.IsExported() {
			continue
		}
		out = append(out, field{key: key, name: sf.Name, kind: sf.Type.Kind(), index: i})
	}
	return out
}

func knownKey(key string) bool {
	for _, f := range fields {
		if f.key == key {
			return true
		}
	}
	return false
}

// FindConfigFile returns the config path to use when none was given.
//
// Order: $ZERO2_CONFIG, the development copy (unless ZERO2_USE_SYSTEM_CONFIG=1),
// the installed system config. The system path is returned even when missing so
// that Load can synthesize defaults for it.
func FindConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	if os.Getenv(systemConfigEnvVar) != "1" {
		if _, err := os.Stat(DevConfigPath); err == nil {
			return DevConfigPath
		}
	}
	return SystemConfigPath
}

// Load reads the configuration file at path (discovered via FindConfigFile when
// empty), layers environment overrides on top and returns a validated snapshot.
//
// A missing file is not an error: the defaults template is synthesized and the
// snapshot records it. Values that fail to parse or validate fall back to their
// documented default and are reported through Config.Warnings, except for
// path-like keys, which are fatal. All fatal problems are *Error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FindConfigFile()
	}

	var warnings []string

	// Layer 1: defaults
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("loading defaults: %w", err)}
	}

	// Layer 2 and 3: raw file values, then environment overrides
	raw := koanf.New(".")
	source := path
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		source = "defaults"
		warnings = append(warnings, fmt.Sprintf("config file %s not found, using defaults", path))
	case err != nil:
		return nil, &Error{Path: path, Err: err}
	default:
		if err := raw.Load(file.Provider(path), parserFor(data)); err != nil {
			return nil, &Error{Path: path, Err: fmt.Errorf("parsing: %w", err)}
		}
	}

	if err := raw.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("loading environment: %w", err)}
	}

	for _, key := range raw.Keys() {
		if !knownKey(key) {
			warnings = append(warnings, fmt.Sprintf("unknown key %s ignored", key))
		}
	}

	for _, f := range fields {
		if !raw.Exists(f.key) {
			continue
		}
		val, ok := coerce(f.kind, raw.Get(f.key))
		if !ok {
			warnings = append(warnings, fmt.Sprintf("invalid value %q for %s, using default %v",
				fmt.Sprint(raw.Get(f.key)), f.key, k.Get(f.key)))
			continue
		}
		if err := k.Set(f.key, val); err != nil {
			return nil, &Error{Path: path, Key: f.key, Err: err}
		}
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("unmarshal: %w", err)}
	}
	normalize(cfg)

	validationWarnings, err := validate(cfg)
	if err != nil {
		var cerr *Error
		if errors.As(err, &cerr) {
			cerr.Path = path
		}
		return nil, err
	}

	cfg.source = source
	cfg.warnings = append(warnings, validationWarnings...)
	sort.Strings(cfg.warnings)
	return cfg, nil
}

// parserFor picks the JSON parser for documents that look like a JSON object
// and the KEY=VALUE parser otherwise.
func parserFor(data []byte) koanf.Parser {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		return json.Parser()
	}
	return dotenv.Parser()
}

// envTransformFunc admits only known configuration keys from the environment.
// Returning an empty string skips the variable, which keeps unrelated
// environment variables from polluting the configuration.
func envTransformFunc(key string) string {
	if knownKey(key) {
		return key
	}
	return ""
}

func normalize(cfg *Config) {
	cfg.LogLevel = strings.ToUpper(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.I2CMode = strings.ToLower(strings.TrimSpace(cfg.I2CMode))
}

// coerce converts a raw value from the file, JSON or the environment into the
// field's type. Strings use the original zero2.conf spellings for booleans.
func coerce(kind reflect.Kind, v interface{}) (interface{}, bool) {
	switch kind {
	case reflect.Bool:
		return coerceBool(v)
	case reflect.Int, reflect.Int64:
		n, ok := coerceInt(v)
		if !ok {
			return nil, false
		}
		if kind == reflect.Int {
			// int is 32 bits on GOARCH=arm.
			if n < math.MinInt || n > math.MaxInt {
				return nil, false
			}
			return int(n), true
		}
		return n, true
	case reflect.String:
		switch s := v.(type) {
		case string:
			return strings.TrimSpace(s), true
		case float64:
			return strconv.FormatFloat(s, 'f', -1, 64), true
		default:
			return nil, false
		}
	default:
		return nil, false
	}
}

func coerceBool(v interface{}) (interface{}, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case float64:
		return b != 0, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	}
	return nil, false
}

func coerceInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}
