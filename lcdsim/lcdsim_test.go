// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lcdsim_test

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/grovelcd/grovelcd"
	"github.com/GermanBionicSystems/grovelcd/lcdsim"
	"github.com/GermanBionicSystems/grovelcd/regbus"
	"github.com/google/go-cmp/cmp"
)

func getDev(t *testing.T, w io.Writer) (*grovelcd.Dev, *lcdsim.Dev) {
	sim := lcdsim.New(&lcdsim.Opts{W: w})
	dev, err := grovelcd.New(sim, nil)
	if err != nil {
		t.Fatal(err)
	}
	return dev, sim
}

func pad(s string) string {
	return s + strings.Repeat(" ", 16-len(s))
}

func TestText(t *testing.T) {
	dev, sim := getDev(t, io.Discard)
	if err := dev.WriteString("Hello"); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetCursor(3, 1); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteString("World"); err != nil {
		t.Fatal(err)
	}
	want := []string{pad("Hello"), pad("   World")}
	if diff := cmp.Diff(want, sim.Lines()); diff != "" {
		t.Errorf("Lines() (-want +got):\n%s", diff)
	}
	col, row, _, _ := sim.Cursor()
	if col != 8 || row != 1 {
		t.Errorf("cursor at %d,%d", col, row)
	}

	if err := dev.Display(false); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{pad(""), pad("")}, sim.Lines()); diff != "" {
		t.Errorf("display off (-want +got):\n%s", diff)
	}
	if err := dev.Display(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.Clear(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{pad(""), pad("")}, sim.Lines()); diff != "" {
		t.Errorf("after clear (-want +got):\n%s", diff)
	}
}

func TestCursorFlags(t *testing.T) {
	dev, sim := getDev(t, io.Discard)
	_ = dev.ShowCursor(true)
	_ = dev.Blink(true)
	if _, _, cursorOn, blinkOn := sim.Cursor(); !cursorOn || !blinkOn {
		t.Errorf("cursor=%t blink=%t", cursorOn, blinkOn)
	}
	_ = dev.ShowCursor(false)
	if _, _, cursorOn, blinkOn := sim.Cursor(); cursorOn || !blinkOn {
		t.Errorf("cursor=%t blink=%t", cursorOn, blinkOn)
	}
}

func TestAutoScroll(t *testing.T) {
	dev, sim := getDev(t, io.Discard)
	if err := dev.SetCursor(16, 0); err != nil {
		t.Fatal(err)
	}
	if err := dev.AutoScroll(true); err != nil {
		t.Fatal(err)
	}
	if err := dev.WriteString("ab"); err != nil {
		t.Fatal(err)
	}
	if got := sim.Lines()[0]; got != pad("")[:14]+"ab" {
		t.Errorf("line 0 = %q", got)
	}
	if err := dev.Home(); err != nil {
		t.Fatal(err)
	}
	if got := sim.Lines()[0]; got != pad("") {
		t.Errorf("after home line 0 = %q", got)
	}
}

func TestBacklight(t *testing.T) {
	dev, sim := getDev(t, io.Discard)
	if err := dev.Color(255, 0, 128); err != nil {
		t.Fatal(err)
	}
	c, flashing := sim.Backlight()
	if c != (color.NRGBA{R: 255, G: 0, B: 128, A: 255}) || flashing {
		t.Errorf("backlight %v flashing=%t", c, flashing)
	}
	if err := dev.BlinkLED(); err != nil {
		t.Fatal(err)
	}
	if _, flashing = sim.Backlight(); !flashing {
		t.Error("expected flashing backlight")
	}
	if err := dev.Halt(); err != nil {
		t.Fatal(err)
	}
	if c, _ = sim.Backlight(); c != (color.NRGBA{A: 255}) {
		t.Errorf("backlight after Halt %v", c)
	}
}

func TestCustomChar(t *testing.T) {
	dev, sim := getDev(t, io.Discard)
	screen := dev.Screen()
	if err := screen.CreateChar(0, [8]byte{0x1f, 0x11, 0x11, 0x11, 0x11, 0x11, 0x1f, 0x00}); err != nil {
		t.Fatal(err)
	}
	if err := screen.Home(); err != nil {
		t.Fatal(err)
	}
	if err := screen.WriteChar(0); err != nil {
		t.Fatal(err)
	}
	if got := sim.Lines()[0]; got != pad("#") {
		t.Errorf("line 0 = %q", got)
	}
}

func TestScan(t *testing.T) {
	sim := lcdsim.New(&lcdsim.Opts{W: io.Discard})
	want := []uint16{0x30, 0x3e}
	if diff := cmp.Diff(want, regbus.Scan(sim)); diff != "" {
		t.Errorf("Scan() (-want +got):\n%s", diff)
	}
	if err := sim.Tx(0x27, []byte{0}, nil); !errors.Is(err, lcdsim.ErrNoDevice) {
		t.Errorf("Tx(0x27) = %v", err)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	dev, sim := getDev(t, &buf)
	if err := dev.WriteString("Hi"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), pad("Hi")) {
		t.Errorf("rendering does not contain the text: %q", buf.String())
	}
	if err := sim.Halt(); err != nil {
		t.Fatal(err)
	}
	if sim.String() == "" {
		t.Error("empty String()")
	}
}
