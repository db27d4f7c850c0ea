// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package grovelcd drives Grove style 16x2 RGB backlit character LCD modules.
//
// The module carries two chips on one I²C bus:
//
//   - An AiP31068 character controller, default address 0x3E. See [aip31068].
//   - An SGM31323 RGB LED driver for the backlight, default address 0x30. See
//     [sgm31323].
//
// Dev combines both behind one API. Each call goes to exactly one of the two
// chips. Older module revisions with the backlight at another address only
// need a different Opts.RGBAddress.
//
// Dev does no locking. Both chips share the bus, so callers using a Dev from
// several goroutines must serialize the calls.
package grovelcd

import (
	"errors"
	"fmt"

	"github.com/GermanBionicSystems/grovelcd/aip31068"
	"github.com/GermanBionicSystems/grovelcd/sgm31323"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Opts is the module configuration.
type Opts struct {
	LCDAddress uint16
	RGBAddress uint16
	// OneLine selects one line mode. The default is two lines.
	OneLine bool
	// CharSize is only honored in one line mode.
	CharSize aip31068.CharSize
	Cols     int
	// Clock is used for the LCD controller delays. nil means the real clock.
	Clock clockwork.Clock
}

// DefaultOpts matches the Grove LCD RGB Backlight v5 module.
var DefaultOpts = Opts{
	LCDAddress: aip31068.DefaultAddress,
	RGBAddress: sgm31323.DefaultAddress,
	CharSize:   aip31068.Dots5x8,
	Cols:       16,
}

// Dev is a Grove RGB LCD module.
type Dev struct {
	// bus is only set when Open created it.
	bus       i2c.BusCloser
	screen    *aip31068.Dev
	backlight *sgm31323.Dev
}

// New initializes both chips on bus. The backlight is switched on first, then
// the LCD controller runs its power on sequence. bus stays owned by the
// caller. opts may be nil, zero addresses select the default ones.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	lcdAddr, rgbAddr := opts.LCDAddress, opts.RGBAddress
	if lcdAddr == 0 {
		lcdAddr = aip31068.DefaultAddress
	}
	if rgbAddr == 0 {
		rgbAddr = sgm31323.DefaultAddress
	}
	backlight, err := sgm31323.New(bus, rgbAddr)
	if err != nil {
		return nil, err
	}
	screen, err := aip31068.New(bus, lcdAddr, &aip31068.Opts{
		OneLine:  opts.OneLine,
		CharSize: opts.CharSize,
		Cols:     opts.Cols,
		Clock:    opts.Clock,
	})
	if err != nil {
		return nil, err
	}
	return &Dev{screen: screen, backlight: backlight}, nil
}

// Open initializes periph's host drivers, opens the named I²C bus ("" for the
// first one) and returns a Dev that owns it. Call Close to release the bus.
func Open(busName string, opts *Opts) (*Dev, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("grovelcd: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("grovelcd: %w", err)
	}
	dev, err := New(bus, opts)
	if err != nil {
		return nil, errors.Join(err, bus.Close())
	}
	dev.bus = bus
	return dev, nil
}

// Screen returns the LCD controller.
func (dev *Dev) Screen() *aip31068.Dev {
	return dev.screen
}

// Backlight returns the RGB backlight controller.
func (dev *Dev) Backlight() *sgm31323.Dev {
	return dev.backlight
}

// WriteString writes text at the cursor position.
func (dev *Dev) WriteString(text string) error {
	return dev.screen.WriteText(text)
}

// ShowCursor turns the underline cursor on or off.
func (dev *Dev) ShowCursor(on bool) error {
	return dev.screen.ShowCursor(on)
}

// Blink turns the blinking cursor on or off.
func (dev *Dev) Blink(on bool) error {
	return dev.screen.Blink(on)
}

// BlinkLED makes the backlight flash once per second.
func (dev *Dev) BlinkLED() error {
	return dev.backlight.BlinkLED()
}

// AutoScroll enables or disables shifting the display on each write.
func (dev *Dev) AutoScroll(on bool) error {
	return dev.screen.AutoScroll(on)
}

// Display turns the LCD on or off. The backlight is not affected.
func (dev *Dev) Display(on bool) error {
	return dev.screen.Display(on)
}

// Clear clears the LCD and moves the cursor home.
func (dev *Dev) Clear() error {
	return dev.screen.Clear()
}

// Home moves the cursor to the first position.
func (dev *Dev) Home() error {
	return dev.screen.Home()
}

// Color sets the backlight color. Each channel is 0-255.
func (dev *Dev) Color(red, green, blue int) error {
	return dev.backlight.SetColor(red, green, blue)
}

// SetCursor moves the cursor to col on row (both 0 based).
func (dev *Dev) SetCursor(col, row int) error {
	return dev.screen.SetCursor(col, row)
}

// Halt clears and turns off the LCD, then switches the backlight off.
func (dev *Dev) Halt() error {
	return errors.Join(dev.screen.Halt(), dev.backlight.Halt())
}

// Close releases the bus if Open created it.
func (dev *Dev) Close() error {
	if dev.bus == nil {
		return nil
	}
	err := dev.bus.Close()
	dev.bus = nil
	return err
}

func (dev *Dev) String() string {
	return fmt.Sprintf("GroveLCD{%s, %s}", dev.screen, dev.backlight)
}

var _ conn.Resource = &Dev{}
