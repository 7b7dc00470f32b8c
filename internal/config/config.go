// Zero2 Controller - Connectivity supervisor for headless Raspberry Pi Zero 2W
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2-controller

package config

import (
	"fmt"
	"strconv"
	"time"
)

// Config is the runtime configuration snapshot.
//
// Keys mirror the installer's zero2.conf (KEY=VALUE). Time-valued settings are
// expressed in whole seconds and exposed as time.Duration through accessor methods.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: defaultConfig()
//  2. Config File: zero2.conf (KEY=VALUE lines or a JSON object)
//  3. Environment Variables: same key names, override the file
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access. Reloads
// produce a new snapshot which Store swaps in atomically.
type Config struct {
	// Feature flags
	EnableLowBat      bool `koanf:"ENABLE_LOW_BAT" json:"enable_low_bat"`
	EnableDisplay     bool `koanf:"ENABLE_DISPLAY" json:"enable_display"`
	EnableButtons     bool `koanf:"ENABLE_BUTTONS" json:"enable_buttons"`
	EnableSSHBT       bool `koanf:"ENABLE_SSH_BT" json:"enable_ssh_bt"`
	EnableUSBOTG      bool `koanf:"ENABLE_USB_OTG" json:"enable_usb_otg"`
	EnableWiFiHotspot bool `koanf:"ENABLE_WIFI_HOTSPOT" json:"enable_wifi_hotspot"`
	EnableStatusAPI   bool `koanf:"ENABLE_STATUS_API" json:"enable_status_api"`

	// Power management
	PowerGPIOPin        int  `koanf:"POWER_GPIO_PIN" json:"power_gpio_pin" validate:"min=0,max=27"`
	PowerActiveLow      bool `koanf:"POWER_ACTIVE_LOW" json:"power_active_low"`
	PowerThreshold      int  `koanf:"POWER_THRESHOLD" json:"power_threshold" validate:"min=1,max=31536000"`
	PowerWarningTime    int  `koanf:"POWER_WARNING_TIME" json:"power_warning_time" validate:"min=1,max=31536000"`
	PowerGraceTime      int  `koanf:"POWER_GRACE_TIME" json:"power_grace_time" validate:"min=0,max=31536000"`
	PowerClearDebounce  int  `koanf:"POWER_CLEAR_DEBOUNCE" json:"power_clear_debounce" validate:"min=0,max=31536000"`
	PowerPollInterval   int  `koanf:"POWER_POLL_INTERVAL" json:"power_poll_interval" validate:"min=1,max=31536000"`
	PowerNotifyTerminal bool `koanf:"POWER_NOTIFY_TERMINALS" json:"power_notify_terminals"`

	// Display
	DisplayUpdateInterval int    `koanf:"DISPLAY_UPDATE_INTERVAL" json:"display_update_interval" validate:"min=1,max=31536000"`
	I2CMode               string `koanf:"I2C_MODE" json:"i2c_mode" validate:"oneof=hardware gpio"`
	I2CGPIOBus            int    `koanf:"I2C_GPIO_BUS" json:"i2c_gpio_bus" validate:"min=0"`

	// Network addressing
	BTIP             string `koanf:"BT_IP" json:"bt_ip" validate:"ip4_addr"`
	USBIP            string `koanf:"USB_IP" json:"usb_ip" validate:"ip4_addr"`
	HotspotIP        string `koanf:"HOTSPOT_IP" json:"hotspot_ip" validate:"ip4_addr"`
	NetworkPrefixLen int    `koanf:"NETWORK_PREFIX_LEN" json:"network_prefix_len" validate:"min=8,max=30"`
	WiFiInterface    string `koanf:"WIFI_INTERFACE" json:"wifi_interface" validate:"required,max=15"`
	USBInterface     string `koanf:"USB_INTERFACE" json:"usb_interface" validate:"required,max=15"`
	BTInterface      string `koanf:"BT_INTERFACE" json:"bt_interface" validate:"required,max=15"`

	// Reconciler timing
	NetworkCheckInterval   int `koanf:"NETWORK_CHECK_INTERVAL" json:"network_check_interval" validate:"min=1,max=31536000"`
	WiFiFailureThreshold   int `koanf:"WIFI_FAILURE_THRESHOLD" json:"wifi_failure_threshold" validate:"min=1"`
	WiFiFallbackTimeout    int `koanf:"WIFI_FALLBACK_TIMEOUT" json:"wifi_fallback_timeout" validate:"min=1,max=31536000"`
	HotspotReprobeInterval int `koanf:"HOTSPOT_REPROBE_INTERVAL" json:"hotspot_reprobe_interval" validate:"min=1,max=31536000"`
	HotspotReprobeWindow   int `koanf:"HOTSPOT_REPROBE_WINDOW" json:"hotspot_reprobe_window" validate:"min=1,max=31536000"`
	ActionTimeout          int `koanf:"ACTION_TIMEOUT" json:"action_timeout" validate:"min=1,max=31536000"`
	ActionBackoffMax       int `koanf:"ACTION_BACKOFF_MAX" json:"action_backoff_max" validate:"min=1,max=31536000"`
	ProbeTimeout           int `koanf:"PROBE_TIMEOUT" json:"probe_timeout" validate:"min=1,max=31536000"`

	// Paths
	WPASupplicantConf string `koanf:"WPA_SUPPLICANT_CONF" json:"wpa_supplicant_conf" validate:"required,startswith=/"`
	ScriptsDir        string `koanf:"SCRIPTS_DIR" json:"scripts_dir" validate:"required,startswith=/"`

	// Status API
	StatusAddr string `koanf:"STATUS_ADDR" json:"status_addr" validate:"hostname_port"`

	// Logging
	LogLevel       string `koanf:"LOG_LEVEL" json:"log_level" validate:"oneof=DEBUG INFO WARNING WARN ERROR CRITICAL"`
	LogFormat      string `koanf:"LOG_FORMAT" json:"log_format" validate:"oneof=json console"`
	LogFile        string `koanf:"LOG_FILE" json:"log_file" validate:"required,startswith=/"`
	LogMaxBytes    int64  `koanf:"LOG_MAX_BYTES" json:"log_max_bytes" validate:"min=1024"`
	LogBackupCount int    `koanf:"LOG_BACKUP_COUNT" json:"log_backup_count" validate:"min=0"`

	source   string
	warnings []string
}

// defaultConfig returns a Config struct with every documented default.
// These defaults are applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		EnableLowBat:      true,
		EnableDisplay:     true,
		EnableButtons:     true,
		EnableSSHBT:       true,
		EnableUSBOTG:      true,
		EnableWiFiHotspot: true,
		EnableStatusAPI:   true,

		PowerGPIOPin:        25,
		PowerActiveLow:      true,
		PowerThreshold:      30, // Seconds low battery must persist before shutdown
		PowerWarningTime:    30, // Seconds of low battery before users are warned
		PowerGraceTime:      30,
		PowerClearDebounce:  5,
		PowerPollInterval:   2,
		PowerNotifyTerminal: true,

		DisplayUpdateInterval: 2,
		I2CMode:               "hardware",
		I2CGPIOBus:            3, // dtoverlay=i2c-gpio,bus=3

		BTIP:             "10.10.10.1",
		USBIP:            "10.10.20.1",
		HotspotIP:        "192.168.4.1",
		NetworkPrefixLen: 24,
		WiFiInterface:    "wlan0",
		USBInterface:     "usb0",
		BTInterface:      "pan0",

		NetworkCheckInterval:   5,
		WiFiFailureThreshold:   3,
		WiFiFallbackTimeout:    60,
		HotspotReprobeInterval: 300,
		HotspotReprobeWindow:   30,
		ActionTimeout:          20,
		ActionBackoffMax:       300,
		ProbeTimeout:           1,

		WPASupplicantConf: "/etc/wpa_supplicant/wpa_supplicant.conf",
		ScriptsDir:        "/usr/local/bin/zero2",

		StatusAddr: "127.0.0.1:9110",

		LogLevel:       "INFO",
		LogFormat:      "json",
		LogFile:        "/var/log/zero2-controller.log",
		LogMaxBytes:    10 * 1024 * 1024, // 10 MB
		LogBackupCount: 5,
	}
}

// Defaults returns a snapshot holding only the built-in defaults.
func Defaults() *Config {
	cfg := defaultConfig()
	cfg.source = "defaults"
	return cfg
}

// Source returns the path the snapshot was loaded from, or "defaults".
func (c *Config) Source() string {
	return c.source
}

// Warnings returns the non-fatal problems found while loading: unparsable
// or out-of-range values that fell back to their default, and unknown keys.
func (c *Config) Warnings() []string {
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// PowerWarningDuration is how long the low-battery signal must be asserted before users are warned.
func (c *Config) PowerWarningDuration() time.Duration { return seconds(c.PowerWarningTime) }

// PowerGraceDuration is the further assertion time after the warning before shutdown.
func (c *Config) PowerGraceDuration() time.Duration { return seconds(c.PowerGraceTime) }

// PowerThresholdDuration is the minimum continuous assertion before shutdown.
func (c *Config) PowerThresholdDuration() time.Duration { return seconds(c.PowerThreshold) }

// PowerClearDuration is the debounce before a cleared signal ends an episode.
func (c *Config) PowerClearDuration() time.Duration { return seconds(c.PowerClearDebounce) }

// PowerPollDuration is the battery watchdog cadence.
func (c *Config) PowerPollDuration() time.Duration { return seconds(c.PowerPollInterval) }

// DisplayInterval is the display refresh cadence.
func (c *Config) DisplayInterval() time.Duration { return seconds(c.DisplayUpdateInterval) }

// CheckInterval is the reconciler tick.
func (c *Config) CheckInterval() time.Duration { return seconds(c.NetworkCheckInterval) }

// FallbackTimeout is measured from the last observed WiFi association.
func (c *Config) FallbackTimeout() time.Duration { return seconds(c.WiFiFallbackTimeout) }

// ReprobeInterval is the time between hotspot re-probes.
func (c *Config) ReprobeInterval() time.Duration { return seconds(c.HotspotReprobeInterval) }

// ReprobeWindow is how long a re-probe waits for association.
func (c *Config) ReprobeWindow() time.Duration { return seconds(c.HotspotReprobeWindow) }

// ActionTimeoutDuration bounds every corrective network action.
func (c *Config) ActionTimeoutDuration() time.Duration { return seconds(c.ActionTimeout) }

// ActionBackoffCeiling caps the retry backoff of failing actions.
func (c *Config) ActionBackoffCeiling() time.Duration { return seconds(c.ActionBackoffMax) }

// ProbeTimeoutDuration bounds every probe read.
func (c *Config) ProbeTimeoutDuration() time.Duration { return seconds(c.ProbeTimeout) }

// I2CBus returns the periph bus name for the configured I2C mode.
func (c *Config) I2CBus() string {
	if c.I2CMode == "gpio" {
		return strconv.Itoa(c.I2CGPIOBus)
	}
	return "1"
}

// Error is a fatal configuration problem (ConfigError).
type Error struct {
	Path string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("config %s: %s: %v", e.Path, e.Key, e.Err)
	default:
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
