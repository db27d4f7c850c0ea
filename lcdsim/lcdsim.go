// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim implements an i2c.Bus that emulates a Grove RGB LCD module
// and draws it on the terminal (stdout) using ANSI color codes.
//
// Useful while the real module is still in the mail, and to watch what a
// program sends to the display.
//
// The bus answers on the LCD controller and backlight addresses only. Any
// other address is not acknowledged, like an empty slot on a real bus.
package lcdsim

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// ErrNoDevice is returned for transactions to an address nothing answers on.
var ErrNoDevice = errors.New("lcdsim: no device at address")

const (
	lineLength  = 40
	line2Offset = 0x40
)

// Opts represents the options available for the simulator.
type Opts struct {
	LCDAddress uint16
	RGBAddress uint16
	// Cols is the visible width. Default 16.
	Cols    int
	Palette *ansi256.Palette
	// W receives the rendering. Default is stdout. Use io.Discard to only
	// inspect the state.
	W io.Writer

	_ struct{}
}

// Dev is the emulated module.
type Dev struct {
	w       io.Writer
	cols    int
	lcd     uint16
	rgb     uint16
	palette ansi256.Palette

	mu        sync.Mutex
	ddram     [2][lineLength]byte
	cgram     [64]byte
	ac        int
	cgAddr    int
	cgramMode bool
	twoLines  bool
	increment bool
	autoShift bool
	displayOn bool
	cursorOn  bool
	blinkOn   bool
	shift     int
	regs      [16]byte

	buf      bytes.Buffer
	rendered bool
}

// New returns a simulated module. opts may be nil.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Dev{
		w:         opts.W,
		cols:      opts.Cols,
		lcd:       opts.LCDAddress,
		rgb:       opts.RGBAddress,
		palette:   *p,
		increment: true,
		twoLines:  true,
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	if d.cols <= 0 || d.cols > lineLength {
		d.cols = 16
	}
	if d.lcd == 0 {
		d.lcd = 0x3e
	}
	if d.rgb == 0 {
		d.rgb = 0x30
	}
	d.clear()
	return d
}

func (d *Dev) String() string {
	return "LCDSim"
}

// SetSpeed implements i2c.Bus. The simulator has no clock.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	return nil
}

// Close implements i2c.BusCloser. It resets the terminal colors.
func (d *Dev) Close() error {
	return d.Halt()
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// Tx implements i2c.Bus.
//
// Writes use the register-select framing: the first byte is the control or
// register byte. A write of that byte alone only selects the register. Reads
// return zeros, so the busy flag always reads as clear.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	if addr != d.lcd && addr != d.rgb {
		return fmt.Errorf("%w %#02x", ErrNoDevice, addr)
	}
	clear(r)
	if len(w) < 2 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if addr == d.lcd {
		if w[0]&0x40 != 0 {
			for _, b := range w[1:] {
				d.data(b)
			}
		} else {
			for _, b := range w[1:] {
				d.command(b)
			}
		}
	} else {
		reg := int(w[0])
		for _, b := range w[1:] {
			if reg < len(d.regs) {
				d.regs[reg] = b
			}
			reg++
		}
	}
	_, err := d.refresh()
	return err
}

func (d *Dev) clear() {
	for i := range d.ddram {
		for j := range d.ddram[i] {
			d.ddram[i][j] = ' '
		}
	}
	d.ac = 0
	d.shift = 0
	d.increment = true
	d.cgramMode = false
}

func (d *Dev) command(c byte) {
	switch {
	case c&0x80 != 0:
		d.ac = int(c & 0x7f)
		d.cgramMode = false
	case c&0x40 != 0:
		d.cgAddr = int(c & 0x3f)
		d.cgramMode = true
	case c&0x20 != 0:
		d.twoLines = c&0x08 != 0
	case c&0x10 != 0:
		right := c&0x04 != 0
		if c&0x08 != 0 {
			if right {
				d.shift--
			} else {
				d.shift++
			}
		} else {
			d.step(right)
		}
	case c&0x08 != 0:
		d.displayOn = c&0x04 != 0
		d.cursorOn = c&0x02 != 0
		d.blinkOn = c&0x01 != 0
	case c&0x04 != 0:
		d.increment = c&0x02 != 0
		d.autoShift = c&0x01 != 0
	case c&0x02 != 0:
		d.ac = 0
		d.shift = 0
		d.cgramMode = false
	case c == 0x01:
		d.clear()
	}
}

func (d *Dev) data(b byte) {
	if d.cgramMode {
		d.cgram[d.cgAddr] = b
		d.cgAddr = (d.cgAddr + 1) & 0x3f
		return
	}
	row, col := d.position()
	d.ddram[row][col] = b
	d.step(d.increment)
	if d.autoShift {
		if d.increment {
			d.shift++
		} else {
			d.shift--
		}
	}
}

// position maps the address counter to a DDRAM cell.
func (d *Dev) position() (row, col int) {
	if d.twoLines && d.ac >= line2Offset {
		row = 1
		col = d.ac - line2Offset
	} else {
		col = d.ac
	}
	return row, col % lineLength
}

// step moves the address counter one cell, wrapping from the end of one line
// to the start of the other.
func (d *Dev) step(forward bool) {
	row, col := d.position()
	if forward {
		col++
		if col == lineLength {
			col = 0
			if d.twoLines {
				row ^= 1
			}
		}
	} else {
		col--
		if col < 0 {
			col = lineLength - 1
			if d.twoLines {
				row ^= 1
			}
		}
	}
	d.ac = row*line2Offset + col
}

// Lines returns the visible text of each line.
func (d *Dev) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lines()
}

func (d *Dev) lines() []string {
	n := 1
	if d.twoLines {
		n = 2
	}
	out := make([]string, n)
	for row := range n {
		var sb strings.Builder
		for i := range d.cols {
			col := ((d.shift+i)%lineLength + lineLength) % lineLength
			c := d.ddram[row][col]
			switch {
			case !d.displayOn:
				c = ' '
			case c < 8:
				c = '#'
			case c < 0x20 || c > 0x7e:
				c = '?'
			}
			sb.WriteByte(c)
		}
		out[row] = sb.String()
	}
	return out
}

// Backlight returns the current backlight color and whether it is flashing.
func (d *Dev) Backlight() (color.NRGBA, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.backlight()
}

func (d *Dev) backlight() (color.NRGBA, bool) {
	ctrl := d.regs[0x04]
	c := color.NRGBA{A: 255}
	var flashing bool
	channels := []*uint8{&c.R, &c.G, &c.B}
	for i, ch := range channels {
		switch (ctrl >> (2 * i)) & 0x03 {
		case 0x01:
			*ch = d.regs[0x06+i]
		case 0x02:
			*ch = d.regs[0x06+i]
			flashing = true
		}
	}
	return c, flashing
}

// Cursor returns the cursor position (col, row) and the cursor flags.
func (d *Dev) Cursor() (col, row int, cursorOn, blinkOn bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, col = d.position()
	return col, row, d.cursorOn, d.blinkOn
}

func (d *Dev) refresh() (int, error) {
	lines := d.lines()
	bl, flashing := d.backlight()
	block := d.palette.Block(bl)
	d.buf.Reset()
	if d.rendered {
		_, _ = fmt.Fprintf(&d.buf, "\033[%dA", len(lines))
	}
	for _, l := range lines {
		_, _ = d.buf.WriteString("\r\033[0m")
		_, _ = io.WriteString(&d.buf, block)
		_, _ = d.buf.WriteString("\033[0m ")
		_, _ = d.buf.WriteString(l)
		_, _ = d.buf.WriteString(" ")
		_, _ = io.WriteString(&d.buf, block)
		if flashing {
			_, _ = d.buf.WriteString("\033[0m *\n")
		} else {
			_, _ = d.buf.WriteString("\033[0m  \n")
		}
	}
	d.rendered = true
	n := d.buf.Len()
	_, err := d.buf.WriteTo(d.w)
	return n, err
}

var _ i2c.BusCloser = &Dev{}
var _ fmt.Stringer = &Dev{}
