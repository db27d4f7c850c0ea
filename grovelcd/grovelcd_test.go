// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package grovelcd

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

const (
	lcd = 0x3e
	rgb = 0x30
)

func regOps(addr uint16, reg byte, values ...byte) []i2ctest.IO {
	var ops []i2ctest.IO
	for _, v := range values {
		ops = append(ops,
			i2ctest.IO{Addr: addr, W: []byte{reg}},
			i2ctest.IO{Addr: addr, W: []byte{reg, v}})
	}
	return ops
}

func cmdOps(cmds ...byte) []i2ctest.IO {
	return regOps(lcd, 0x80, cmds...)
}

func concat(parts ...[]i2ctest.IO) []i2ctest.IO {
	var ops []i2ctest.IO
	for _, p := range parts {
		ops = append(ops, p...)
	}
	return ops
}

func checkOps(t *testing.T, want, got []i2ctest.IO) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("unexpected transactions (-want +got):\n%s", diff)
	}
}

func TestNew(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, err := New(bus, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := concat(
		regOps(rgb, 0x04, 0x15),
		cmdOps(0x2c, 0x2c, 0x2c, 0x2c, 0x0c, 0x01, 0x06),
	)
	checkOps(t, want, bus.Ops)
	if dev.Screen() == nil || dev.Backlight() == nil {
		t.Error("missing sub device")
	}
	if err = dev.Close(); err != nil {
		t.Errorf("Close() on a borrowed bus: %v", err)
	}
	t.Log(dev.String())
}

func TestNewAddresses(t *testing.T) {
	bus := &i2ctest.Record{}
	opts := DefaultOpts
	opts.LCDAddress = 0x3f
	opts.RGBAddress = 0x62
	if _, err := New(bus, &opts); err != nil {
		t.Fatal(err)
	}
	for i, op := range bus.Ops {
		want := uint16(0x3f)
		if i < 2 {
			want = 0x62
		}
		if op.Addr != want {
			t.Errorf("op %d: address %#x, want %#x", i, op.Addr, want)
		}
	}
}

func TestNewPartialOpts(t *testing.T) {
	bus := &i2ctest.Record{}
	if _, err := New(bus, &Opts{OneLine: true}); err != nil {
		t.Fatal(err)
	}
	want := concat(
		regOps(rgb, 0x04, 0x15),
		cmdOps(0x24, 0x24, 0x24, 0x24, 0x0c, 0x01, 0x06),
	)
	checkOps(t, want, bus.Ops)
}

func TestNewBacklightFault(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	dev, err := New(bus, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if dev != nil {
		t.Error("expected nil device")
	}
}

func TestDelegation(t *testing.T) {
	bus := &i2ctest.Record{}
	dev, err := New(bus, nil)
	if err != nil {
		t.Fatal(err)
	}
	var tests = []struct {
		name string
		fn   func() error
		want []i2ctest.IO
	}{
		{"WriteString", func() error { return dev.WriteString("ok") },
			[]i2ctest.IO{{Addr: lcd, W: []byte{0x40, 'o'}}, {Addr: lcd, W: []byte{0x40, 'k'}}}},
		{"ShowCursor", func() error { return dev.ShowCursor(true) }, cmdOps(0x0e)},
		{"Blink", func() error { return dev.Blink(true) }, cmdOps(0x0f)},
		{"Display", func() error { return dev.Display(false) }, cmdOps(0x0b)},
		{"AutoScroll", func() error { return dev.AutoScroll(true) }, cmdOps(0x07)},
		{"Clear", dev.Clear, cmdOps(0x01)},
		{"Home", dev.Home, cmdOps(0x02)},
		{"SetCursor", func() error { return dev.SetCursor(5, 1) }, cmdOps(0xc5)},
		{"Color", func() error { return dev.Color(255, 0, 128) },
			concat(regOps(rgb, 0x06, 255), regOps(rgb, 0x07, 0), regOps(rgb, 0x08, 128))},
		{"BlinkLED", dev.BlinkLED,
			concat(regOps(rgb, 0x04, 0x2a), regOps(rgb, 0x01, 0x06), regOps(rgb, 0x02, 0x7f))},
		{"Halt", dev.Halt, concat(cmdOps(0x01, 0x0b), regOps(rgb, 0x04, 0x00))},
	}
	for _, test := range tests {
		bus.Ops = nil
		if err := test.fn(); err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if diff := cmp.Diff(test.want, bus.Ops, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s (-want +got):\n%s", test.name, diff)
		}
	}
}
