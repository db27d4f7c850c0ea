// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devfs provides an i2c.Bus on top of the Linux /dev/i2c-N character
// devices without periph's host drivers.
//
// The kernel binds a file handle to one slave address, so the bus opens one
// handle per address the first time it is used and keeps it until Close.
package devfs

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/davecheney/i2c"
	periphi2c "periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrSpeed is returned by SetSpeed, the clock is set by the kernel driver.
var ErrSpeed = errors.New("devfs: bus speed is fixed by the kernel driver")

// Device is the subset of a per-address handle the bus uses.
type Device interface {
	io.ReadWriteCloser
}

// Opener opens the handle for addr on bus number n.
type Opener func(addr uint8, n int) (Device, error)

func openDevice(addr uint8, n int) (Device, error) {
	d, err := i2c.New(addr, n)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Bus is /dev/i2c-N.
type Bus struct {
	n    int
	open Opener

	mu      sync.Mutex
	devices map[uint16]Device
}

// New returns the bus for /dev/i2c-n. Nothing is opened until the first
// transaction.
func New(n int) *Bus {
	return NewWithOpener(n, openDevice)
}

// NewWithOpener is New with a custom handle opener.
func NewWithOpener(n int, open Opener) *Bus {
	return &Bus{n: n, open: open, devices: make(map[uint16]Device)}
}

func (b *Bus) device(addr uint16) (Device, error) {
	if d, ok := b.devices[addr]; ok {
		return d, nil
	}
	if addr > 0x7f {
		return nil, fmt.Errorf("devfs: 10 bit address %#x not supported", addr)
	}
	d, err := b.open(uint8(addr), b.n)
	if err != nil {
		return nil, fmt.Errorf("devfs: open %#02x on bus %d: %w", addr, b.n, err)
	}
	b.devices[addr] = d
	return d, nil
}

// Tx implements i2c.Bus. The write and the read are separate transactions,
// the kernel interface has no repeated start for plain read/write.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, err := b.device(addr)
	if err != nil {
		return err
	}
	if len(w) != 0 {
		if _, err = d.Write(w); err != nil {
			return fmt.Errorf("devfs: write %#02x: %w", addr, err)
		}
	}
	if len(r) != 0 {
		if _, err = io.ReadFull(d, r); err != nil {
			return fmt.Errorf("devfs: read %#02x: %w", addr, err)
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (b *Bus) SetSpeed(f physic.Frequency) error {
	return ErrSpeed
}

// Close closes every handle opened so far.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for addr, d := range b.devices {
		errs = append(errs, d.Close())
		delete(b.devices, addr)
	}
	return errors.Join(errs...)
}

func (b *Bus) String() string {
	return fmt.Sprintf("/dev/i2c-%d", b.n)
}

var _ periphi2c.BusCloser = &Bus{}
