// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package devfs

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeDevice struct {
	addr   uint8
	writes [][]byte
	read   bytes.Buffer
	closed bool
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	d.writes = append(d.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (d *fakeDevice) Read(p []byte) (int, error) {
	return d.read.Read(p)
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

type fakeOpener struct {
	present map[uint8]bool
	opened  map[uint8]*fakeDevice
	calls   int
}

func (o *fakeOpener) open(addr uint8, n int) (Device, error) {
	o.calls++
	if !o.present[addr] {
		return nil, errors.New("no such device")
	}
	d := &fakeDevice{addr: addr}
	d.read.WriteString("\x2a")
	o.opened[addr] = d
	return d, nil
}

func newFake(addrs ...uint8) *fakeOpener {
	o := &fakeOpener{present: map[uint8]bool{}, opened: map[uint8]*fakeDevice{}}
	for _, a := range addrs {
		o.present[a] = true
	}
	return o
}

func TestTx(t *testing.T) {
	o := newFake(0x3e, 0x30)
	bus := NewWithOpener(1, o.open)
	if s := bus.String(); s != "/dev/i2c-1" {
		t.Errorf("String() = %q", s)
	}
	if err := bus.Tx(0x3e, []byte{0x80}, nil); err != nil {
		t.Fatal(err)
	}
	if err := bus.Tx(0x3e, []byte{0x80, 0x01}, nil); err != nil {
		t.Fatal(err)
	}
	r := make([]byte, 1)
	if err := bus.Tx(0x30, nil, r); err != nil {
		t.Fatal(err)
	}
	if r[0] != 0x2a {
		t.Errorf("read %#x", r[0])
	}
	if o.calls != 2 {
		t.Errorf("expected one open per address, got %d", o.calls)
	}
	want := [][]byte{{0x80}, {0x80, 0x01}}
	if diff := cmp.Diff(want, o.opened[0x3e].writes); diff != "" {
		t.Errorf("writes (-want +got):\n%s", diff)
	}
	if err := bus.Close(); err != nil {
		t.Fatal(err)
	}
	for addr, d := range o.opened {
		if !d.closed {
			t.Errorf("%#x not closed", addr)
		}
	}
}

func TestTxErrors(t *testing.T) {
	bus := NewWithOpener(1, newFake(0x3e).open)
	if err := bus.Tx(0x50, []byte{0}, nil); err == nil {
		t.Error("expected open error")
	}
	if err := bus.Tx(0x3ff, []byte{0}, nil); err == nil {
		t.Error("expected 10 bit address error")
	}
	if err := bus.SetSpeed(0); !errors.Is(err, ErrSpeed) {
		t.Errorf("SetSpeed() = %v", err)
	}
}
