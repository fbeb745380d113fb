// Package config loads the host tool configuration
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"systime/core"
	"systime/host/serial"
)

// Config is the host tool configuration file
type Config struct {
	Device         string     `toml:"device,omitempty"`
	Baud           int        `toml:"baud,omitempty"`
	ReadTimeoutMs  int        `toml:"read_timeout_ms,omitempty"`
	PollIntervalMs int        `toml:"poll_interval_ms,omitempty"`
	MetricsAddr    string     `toml:"metrics_address,omitempty"`
	Simulation     Simulation `toml:"simulation,omitempty"`
}

// Simulation describes the timer emulated by the simulate command
type Simulation struct {
	HWBits           uint8  `toml:"hw_bits,omitempty"`
	TickMultiplier   uint32 `toml:"tick_multiplier,omitempty"`
	TicksPerMs       uint32 `toml:"ticks_per_ms,omitempty"` // derived from frequency_hz if 0
	FrequencyHz      uint32 `toml:"frequency_hz,omitempty"`
	Retire           string `toml:"retire,omitempty"` // "divide" or "stepped"
	ReportIntervalMs uint32 `toml:"report_interval_ms,omitempty"`
}

const (
	defaultDevice         = "/dev/ttyACM0"
	defaultBaud           = 250000
	defaultReadTimeoutMs  = 100
	defaultPollIntervalMs = 1000
	defaultHWBits         = 16
	defaultFrequencyHz    = 1000000
	defaultReportInterval = 1000
)

// Default returns the configuration used when no file is given
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads and decodes a configuration file. Unknown keys are an error
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return Parse(raw)
}

// Parse decodes configuration data and fills in defaults
func Parse(raw []byte) (Config, error) {
	var c Config
	err := toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&c)
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	c.applyDefaults()
	if err := c.Simulation.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Device == "" {
		c.Device = defaultDevice
	}
	if c.Baud == 0 {
		c.Baud = defaultBaud
	}
	if c.ReadTimeoutMs == 0 {
		c.ReadTimeoutMs = defaultReadTimeoutMs
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = defaultPollIntervalMs
	}
	s := &c.Simulation
	if s.HWBits == 0 {
		s.HWBits = defaultHWBits
	}
	if s.TickMultiplier == 0 {
		s.TickMultiplier = 1
	}
	if s.FrequencyHz == 0 {
		s.FrequencyHz = defaultFrequencyHz
	}
	if s.TicksPerMs == 0 {
		s.TicksPerMs = core.TicksPerMsFor(s.FrequencyHz, s.TickMultiplier)
	}
	if s.ReportIntervalMs == 0 {
		s.ReportIntervalMs = defaultReportInterval
	}
}

func (s Simulation) validate() error {
	if _, err := core.RetirerByName(s.Retire); err != nil {
		return fmt.Errorf("simulation.retire %q: %w", s.Retire, err)
	}
	return nil
}

// Serial returns the serial port settings
func (c Config) Serial() *serial.Config {
	return &serial.Config{
		Device:      c.Device,
		Baud:        c.Baud,
		ReadTimeout: time.Duration(c.ReadTimeoutMs) * time.Millisecond,
	}
}

// PollInterval returns how often the monitor requests a report
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// ClockConfig returns the firmware clock configuration for the simulated
// timer read through reader
func (s Simulation) ClockConfig(reader core.RawReader) (core.Config, error) {
	retire, err := core.RetirerByName(s.Retire)
	if err != nil {
		return core.Config{}, err
	}
	cfg := core.Config{
		Reader:         reader,
		HWBits:         s.HWBits,
		TickMultiplier: s.TickMultiplier,
		TicksPerMs:     s.TicksPerMs,
		Retire:         retire,
	}
	return cfg, cfg.Validate()
}
