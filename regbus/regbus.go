// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package regbus implements the register-select write protocol used by the
// LCD and backlight chips of an RGB character display module.
//
// A register write is two I²C transactions: the register address alone,
// followed by the register address and the payload. The chips rely on the
// first write to latch the register pointer, so the two are never merged.
//
// A Dev holds a reference to a bus it does not own. Several devices may share
// one bus; callers must serialize access to it.
package regbus

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/i2c"
)

const packageName = "regbus"

var (
	// ErrOutOfRange is returned when a value that must fit in a byte does not.
	// Nothing is written to the bus in that case.
	ErrOutOfRange = errors.New("value out of range [0,255]")
	// ErrBusType is returned when a device is constructed without a usable
	// i2c.Bus.
	ErrBusType = errors.New("bus is not an i2c.Bus")
)

// Dev is a single device on a shared bus.
type Dev struct {
	d *i2c.Dev
}

// New returns a Dev for the device at addr on bus.
func New(bus i2c.Bus, addr uint16) (*Dev, error) {
	if bus == nil {
		return nil, wrap(ErrBusType)
	}
	return &Dev{d: &i2c.Dev{Bus: bus, Addr: addr}}, nil
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// CheckByte returns ErrOutOfRange if v does not fit in a byte.
func CheckByte(v int) error {
	if v < 0 || v > 0xff {
		return fmt.Errorf("%s: %d: %w", packageName, v, ErrOutOfRange)
	}
	return nil
}

// Addr returns the device address.
func (dev *Dev) Addr() uint16 {
	return dev.d.Addr
}

// Bus returns the bus the device is on.
func (dev *Dev) Bus() i2c.Bus {
	return dev.d.Bus
}

// Select writes the register address with an empty payload.
func (dev *Dev) Select(reg byte) error {
	return wrap(dev.d.Tx([]byte{reg}, nil))
}

// Write sends reg followed by payload as one transaction.
func (dev *Dev) Write(reg byte, payload ...byte) error {
	w := make([]byte, 0, 1+len(payload))
	w = append(w, reg)
	w = append(w, payload...)
	return wrap(dev.d.Tx(w, nil))
}

// WriteRegister validates value, then selects reg and writes value to it.
func (dev *Dev) WriteRegister(reg byte, value int) error {
	if err := CheckByte(value); err != nil {
		return err
	}
	if err := dev.Select(reg); err != nil {
		return err
	}
	return dev.Write(reg, byte(value))
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s{%s, %#02x}", packageName, dev.d.Bus, dev.d.Addr)
}
