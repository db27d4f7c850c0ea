// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config loads the command line tool configuration with the
// precedence flag > environment variable > TOML file > default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/GermanBionicSystems/grovelcd/internal/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "GROVELCD_"

// Transports selectable with Display.Transport.
const (
	TransportPeriph = "periph"
	TransportDevfs  = "devfs"
	TransportSim    = "sim"
)

// Display selects the bus and the module layout.
type Display struct {
	// Bus is the periph bus name, "" for the first one.
	Bus       string `toml:"bus"`
	Transport string `toml:"transport"`
	// DevfsBus is N in /dev/i2c-N for the devfs transport.
	DevfsBus   int    `toml:"devfs_bus"`
	LCDAddress uint16 `toml:"lcd_address"`
	RGBAddress uint16 `toml:"rgb_address"`
	OneLine    bool   `toml:"one_line"`
	Cols       int    `toml:"cols"`
}

// Config is the complete tool configuration.
type Config struct {
	Display Display        `toml:"display"`
	Logging logging.Config `toml:"logging"`
}

// Default returns the configuration for a Grove LCD RGB Backlight v5 on the
// first I²C bus.
func Default() Config {
	return Config{
		Display: Display{
			Transport:  TransportPeriph,
			DevfsBus:   1,
			LCDAddress: 0x3e,
			RGBAddress: 0x30,
			Cols:       16,
		},
		Logging: logging.DefaultConfig,
	}
}

// binding ties a flag name and an environment variable to a field.
type binding struct {
	flag string
	env  string
	set  func(c *Config, v string) error
}

func setString(dst func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func setInt(dst func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		i, err := strconv.ParseInt(v, 0, 0)
		if err != nil {
			return err
		}
		*dst(c) = int(i)
		return nil
	}
}

func setAddress(dst func(c *Config) *uint16) func(*Config, string) error {
	return func(c *Config, v string) error {
		i, err := strconv.ParseUint(v, 0, 7)
		if err != nil {
			return err
		}
		*dst(c) = uint16(i)
		return nil
	}
}

var bindings = []binding{
	{"bus", "BUS", setString(func(c *Config) *string { return &c.Display.Bus })},
	{"transport", "TRANSPORT", setString(func(c *Config) *string { return &c.Display.Transport })},
	{"devfs-bus", "DEVFS_BUS", setInt(func(c *Config) *int { return &c.Display.DevfsBus })},
	{"lcd-address", "LCD_ADDRESS", setAddress(func(c *Config) *uint16 { return &c.Display.LCDAddress })},
	{"rgb-address", "RGB_ADDRESS", setAddress(func(c *Config) *uint16 { return &c.Display.RGBAddress })},
	{"one-line", "ONE_LINE", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		c.Display.OneLine = b
		return err
	}},
	{"cols", "COLS", setInt(func(c *Config) *int { return &c.Display.Cols })},
	{"log-level", "LOG_LEVEL", setString(func(c *Config) *string { return &c.Logging.Level })},
	{"log-format", "LOG_FORMAT", setString(func(c *Config) *string { return &c.Logging.Format })},
	{"log-file", "LOG_FILE", setString(func(c *Config) *string { return &c.Logging.File })},
}

// RegisterFlags adds the flags Load knows about to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("bus", d.Display.Bus, "periph I²C bus name, empty for the first bus")
	fs.String("transport", d.Display.Transport, "bus implementation: periph, devfs or sim")
	fs.Int("devfs-bus", d.Display.DevfsBus, "bus number N of /dev/i2c-N for the devfs transport")
	fs.String("lcd-address", fmt.Sprintf("%#x", d.Display.LCDAddress), "LCD controller address")
	fs.String("rgb-address", fmt.Sprintf("%#x", d.Display.RGBAddress), "backlight controller address")
	fs.Bool("one-line", d.Display.OneLine, "use one line mode")
	fs.Int("cols", d.Display.Cols, "visible columns")
	fs.String("log-level", d.Logging.Level, "logging level (debug, info, warn, error)")
	fs.String("log-format", d.Logging.Format, "logging format (text, json, journal)")
	fs.String("log-file", d.Logging.File, "also log to this rotated file")
}

// Load reads path (a missing file is not an error), applies the environment,
// then the flags explicitly set in fs. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: %w", err)
		default:
			if err = toml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: failed to parse TOML config %s: %w", path, err)
			}
		}
	}

	for _, b := range bindings {
		if v, ok := os.LookupEnv(EnvPrefix + b.env); ok && v != "" {
			if err := b.set(&cfg, v); err != nil {
				return cfg, fmt.Errorf("config: %s%s=%q: %w", EnvPrefix, b.env, v, err)
			}
		}
	}

	if fs != nil {
		for _, b := range bindings {
			f := fs.Lookup(b.flag)
			if f == nil || !f.Changed {
				continue
			}
			if err := b.set(&cfg, f.Value.String()); err != nil {
				return cfg, fmt.Errorf("config: --%s=%q: %w", b.flag, f.Value.String(), err)
			}
		}
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that have a fixed set of choices.
func (c Config) Validate() error {
	switch c.Display.Transport {
	case TransportPeriph, TransportDevfs, TransportSim:
	default:
		return fmt.Errorf("config: unknown transport %q", c.Display.Transport)
	}
	if c.Display.LCDAddress == c.Display.RGBAddress {
		return fmt.Errorf("config: LCD and backlight share address %#x", c.Display.LCDAddress)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
