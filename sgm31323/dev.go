// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The SGM31323 is a three channel LED driver with PWM brightness and a
// hardware flash generator. Grove style RGB LCD modules use it at address 0x30
// to drive the red, green, and blue backlight LEDs.
//
// Registers are written with the register-select protocol: the register
// address alone, then the register address and the value.
package sgm31323

import (
	"fmt"
	"strings"

	"github.com/GermanBionicSystems/grovelcd/regbus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

// DefaultAddress is the address used by Grove RGB LCD modules.
const DefaultAddress uint16 = 0x30

const packageName = "sgm31323"

// LEDMode is the two bit output mode of one channel in the LED control
// register.
type LEDMode byte

const (
	MODE_OFF LEDMode = iota
	MODE_ON
	// The channel follows the flash period and on time registers.
	MODE_FLASH
)

const (
	// Register offsets from the datasheet
	_FLASH_PERIOD byte = 0x01
	_FLASH_TON1   byte = 0x02
	_LED_CONTROL  byte = 0x04
	_PWM_RED      byte = 0x06
	_PWM_GREEN    byte = 0x07
	_PWM_BLUE     byte = 0x08
)

const (
	// 1s period and ~50% on time, as used by the module vendor.
	_BLINK_PERIOD byte = 0x06
	_BLINK_TON    byte = 0x7f
)

var (
	// ErrOutOfRange is returned for a register value that does not fit a byte.
	ErrOutOfRange = regbus.ErrOutOfRange
	// ErrBusType is returned when New is not given a usable i2c.Bus.
	ErrBusType = regbus.ErrBusType
)

// ledControl packs the same mode for all three channels.
func ledControl(mode LEDMode) byte {
	m := byte(mode) & 0x03
	return m | m<<2 | m<<4
}

// Dev represents an SGM31323 RGB LED driver. It keeps no state; every call
// writes the chip directly.
type Dev struct {
	d *regbus.Dev
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// New returns a Dev with all three channels switched on.
func New(bus i2c.Bus, address uint16) (*Dev, error) {
	d, err := regbus.New(bus, address)
	if err != nil {
		return nil, wrap(err)
	}
	dev := &Dev{d: d}
	if err = dev.SetRegister(_LED_CONTROL, int(ledControl(MODE_ON))); err != nil {
		return nil, err
	}
	return dev, nil
}

// SetRegister writes value to register addr.
func (dev *Dev) SetRegister(addr byte, value int) error {
	return wrap(dev.d.WriteRegister(addr, value))
}

// SetColor sets the PWM value of the red, green, and blue channels, in that
// order. The channels are written one at a time, so a failure part way leaves
// the color partially updated.
func (dev *Dev) SetColor(red, green, blue int) error {
	if err := dev.SetRegister(_PWM_RED, red); err != nil {
		return err
	}
	if err := dev.SetRegister(_PWM_GREEN, green); err != nil {
		return err
	}
	return dev.SetRegister(_PWM_BLUE, blue)
}

// BlinkLED puts all channels in flash mode with a one second period and a 50%
// duty cycle. The current color is kept.
func (dev *Dev) BlinkLED() error {
	if err := dev.SetRegister(_LED_CONTROL, int(ledControl(MODE_FLASH))); err != nil {
		return err
	}
	if err := dev.SetRegister(_FLASH_PERIOD, int(_BLINK_PERIOD)); err != nil {
		return err
	}
	return dev.SetRegister(_FLASH_TON1, int(_BLINK_TON))
}

// StopBlink returns all channels to steady on.
func (dev *Dev) StopBlink() error {
	return dev.SetRegister(_LED_CONTROL, int(ledControl(MODE_ON)))
}

// RGBBacklight implements display.DisplayRGBBacklight.
func (dev *Dev) RGBBacklight(red, green, blue display.Intensity) error {
	return dev.SetColor(int(red), int(green), int(blue))
}

// Backlight implements display.DisplayBacklight by setting all three channels
// to intensity.
func (dev *Dev) Backlight(intensity display.Intensity) error {
	return dev.RGBBacklight(intensity, intensity, intensity)
}

// Halt switches all channels off. Implements conn.Resource
func (dev *Dev) Halt() error {
	return dev.SetRegister(_LED_CONTROL, int(ledControl(MODE_OFF)))
}

func (dev *Dev) String() string {
	return fmt.Sprintf("SGM31323::%#02x", dev.d.Addr())
}

var _ conn.Resource = &Dev{}
var _ display.DisplayBacklight = &Dev{}
var _ display.DisplayRGBBacklight = &Dev{}
