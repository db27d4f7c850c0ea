// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package regbus

import "periph.io/x/conn/v3/i2c"

const (
	// FirstAddress and LastAddress bound the 7-bit addresses that are not
	// reserved by the I²C specification.
	FirstAddress uint16 = 0x08
	LastAddress  uint16 = 0x77
)

// Probe reports whether a device acknowledges a one byte read at addr.
func Probe(bus i2c.Bus, addr uint16) bool {
	r := make([]byte, 1)
	return bus.Tx(addr, nil, r) == nil
}

// Scan probes every non-reserved address on bus and returns the ones that
// answered, in ascending order.
func Scan(bus i2c.Bus) []uint16 {
	var found []uint16
	for addr := FirstAddress; addr <= LastAddress; addr++ {
		if Probe(bus, addr) {
			found = append(found, addr)
		}
	}
	return found
}
