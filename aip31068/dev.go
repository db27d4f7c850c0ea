// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The aip31068 is an HD44780 compatible I²C LCD driver chip. It is the
// character controller of the Grove style RGB backlit 16x2 modules, where it
// sits at address 0x3E next to an RGB LED driver.
//
// Commands are written with the register-select protocol: an empty write to
// the command register, then the command byte. Character data goes to the
// data register in a single write.
//
// The function, display control, and entry mode flags are mirrored in memory.
// Every call that changes one of them re-sends the complete flag byte, so the
// mirror always matches what the chip last received.
//
// Implements periph.io/x/conn/display/TextDisplay
//
// # Datasheet
//
// https://support.newhavendisplay.com/hc/en-us/article_attachments/4414498095511
package aip31068

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/GermanBionicSystems/grovelcd/regbus"
	"github.com/jonboulle/clockwork"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

const (
	// DefaultAddress is the address the chip answers on in Grove modules.
	DefaultAddress uint16 = 0x3e

	regCommand byte = 0x80
	regData    byte = 0x40

	packageName = "aip31068"
)

// Delays required by the controller.
const (
	powerOnDelay     = 50 * time.Millisecond
	functionSetDelay = 4500 * time.Microsecond
	functionSetRetry = 150 * time.Microsecond
	clearDelay       = 2 * time.Millisecond
)

var (
	// ErrNotImplemented is returned by Move for directions the controller has
	// no command for.
	ErrNotImplemented = fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	// ErrOutOfRange is returned for a command, character or CGRAM location
	// that does not fit the controller.
	ErrOutOfRange = regbus.ErrOutOfRange
)

// Opts holds the construction options.
type Opts struct {
	// OneLine selects one line mode. The default is two lines.
	OneLine bool
	// CharSize is only honored in one line mode.
	CharSize CharSize
	// Cols is the number of visible columns, used by MoveTo. Default 16.
	Cols int
	// Clock is used for the controller delays. Default is the real clock.
	Clock clockwork.Clock
}

// DefaultOpts is a two line, 16 column display with 5×8 characters.
var DefaultOpts = Opts{
	CharSize: Dots5x8,
	Cols:     16,
}

// Dev is an AiP31068 LCD controller.
//
// Dev does no locking. If the bus is shared with other goroutines, the caller
// must serialize access.
type Dev struct {
	d     *regbus.Dev
	clock clockwork.Clock
	rows  int
	cols  int

	function FunctionFlags
	control  ControlFlags
	entry    EntryFlags
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// New initializes the controller at address on bus and returns it ready for
// use. It blocks for at least 56ms while the controller powers up.
func New(bus i2c.Bus, address uint16, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	d, err := regbus.New(bus, address)
	if err != nil {
		return nil, wrap(err)
	}
	dev := &Dev{
		d:        d,
		clock:    opts.Clock,
		rows:     2,
		cols:     opts.Cols,
		function: newFunctionFlags(opts.OneLine, opts.CharSize),
	}
	if dev.clock == nil {
		dev.clock = clockwork.NewRealClock()
	}
	if opts.OneLine {
		dev.rows = 1
	}
	if dev.cols <= 0 {
		dev.cols = DefaultOpts.Cols
	}
	if err = dev.init(); err != nil {
		return nil, err
	}
	return dev, nil
}

// init runs the power on sequence. The function set is repeated four times
// because the controller state is undefined until it has seen the
// instruction after the power on delays.
func (dev *Dev) init() error {
	dev.clock.Sleep(powerOnDelay)

	functionSet := dev.function.Command()
	if err := dev.command(functionSet); err != nil {
		return err
	}
	dev.clock.Sleep(functionSetDelay)
	if err := dev.command(functionSet); err != nil {
		return err
	}
	dev.clock.Sleep(functionSetRetry)
	for range 2 {
		if err := dev.command(functionSet); err != nil {
			return err
		}
	}

	dev.control = controlDisplayOn
	if err := dev.Display(true); err != nil {
		return err
	}
	if err := dev.Clear(); err != nil {
		return err
	}
	dev.entry = entryLeft
	return dev.command(dev.entry.Command())
}

func (dev *Dev) command(cmd byte) error {
	return dev.SendCommand(int(cmd))
}

// SendCommand writes a raw instruction byte to the command register.
func (dev *Dev) SendCommand(cmd int) error {
	return wrap(dev.d.WriteRegister(regCommand, cmd))
}

// WriteChar writes one character code to the data register.
func (dev *Dev) WriteChar(c rune) error {
	if err := regbus.CheckByte(int(c)); err != nil {
		return wrap(err)
	}
	return wrap(dev.d.Write(regData, byte(c)))
}

// WriteText writes each code point of text in order. Writing stops at the
// first error and whatever was already sent stays on the display.
func (dev *Dev) WriteText(text string) error {
	_, err := dev.WriteString(text)
	return err
}

// Write sends each byte of p as a character code.
func (dev *Dev) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if err = wrap(dev.d.Write(regData, b)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// WriteString writes text one code point at a time. n counts the bytes of text
// consumed.
func (dev *Dev) WriteString(text string) (n int, err error) {
	for _, c := range text {
		if err = dev.WriteChar(c); err != nil {
			return n, err
		}
		n += utf8.RuneLen(c)
	}
	return n, nil
}

// SetCursor moves the address counter to col on row. Row 0 is the first line,
// any other row is the second. The row and column are not checked against
// the display size, but a col that does not fit the command byte returns
// ErrOutOfRange.
func (dev *Dev) SetCursor(col, row int) error {
	addr := int(cmdSetDDRAMAddr) | col
	if row != 0 {
		addr = 0xc0 | col
	}
	return dev.SendCommand(addr)
}

func (dev *Dev) setControl(c ControlFlags) error {
	dev.control = c
	return dev.command(dev.control.Command())
}

// ShowCursor turns the underline cursor on or off.
func (dev *Dev) ShowCursor(on bool) error {
	return dev.setControl(dev.control.WithCursor(on))
}

// Blink turns the blinking block cursor on or off.
func (dev *Dev) Blink(on bool) error {
	return dev.setControl(dev.control.WithBlink(on))
}

// Display turns the display on / off. DDRAM is retained while off.
func (dev *Dev) Display(on bool) error {
	return dev.setControl(dev.control.WithDisplay(on))
}

// Cursor sets the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (dev *Dev) Cursor(modes ...display.CursorMode) error {
	c := dev.control
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			c = c.WithCursor(false).WithBlink(false)
		case display.CursorUnderline:
			c = c.WithCursor(true)
		case display.CursorBlink, display.CursorBlock:
			c = c.WithBlink(true)
		default:
			return fmt.Errorf("%s: unexpected cursor: %d", packageName, mode)
		}
	}
	return dev.setControl(c)
}

func (dev *Dev) setEntry(e EntryFlags) error {
	dev.entry = e
	return dev.command(dev.entry.Command())
}

// AutoScroll enables or disables shifting the display on each character
// write.
func (dev *Dev) AutoScroll(enabled bool) error {
	return dev.setEntry(dev.entry.WithAutoScroll(enabled))
}

// SetTextDirection selects whether the cursor moves right (true) or left
// after each character.
func (dev *Dev) SetTextDirection(leftToRight bool) error {
	return dev.setEntry(dev.entry.WithLeftToRight(leftToRight))
}

// ScrollDisplay shifts the whole display one position without changing DDRAM.
func (dev *Dev) ScrollDisplay(left bool) error {
	cmd := cmdCursorShift | shiftDisplayMove
	if !left {
		cmd |= shiftMoveRight
	}
	return dev.command(cmd)
}

// Move the cursor forward or backward.
func (dev *Dev) Move(dir display.CursorDirection) error {
	cmd := cmdCursorShift
	switch dir {
	case display.Backward:
	case display.Forward:
		cmd |= shiftMoveRight
	default:
		return ErrNotImplemented
	}
	return dev.command(cmd)
}

// MoveTo moves the cursor to an arbitrary position. row and col start at 1.
func (dev *Dev) MoveTo(row, col int) error {
	if row < dev.MinRow() || row > dev.rows || col < dev.MinCol() || col > dev.cols {
		return fmt.Errorf("%s.MoveTo(%d,%d) value out of range", packageName, row, col)
	}
	return dev.SetCursor(col-1, row-1)
}

// CreateChar stores a custom glyph in CGRAM slot location (0-7). Each byte of
// pattern is one row, low five bits used. The address counter is left in
// CGRAM, so call Home, Clear, or SetCursor before writing text.
func (dev *Dev) CreateChar(location int, pattern [8]byte) error {
	if location < 0 || location > 7 {
		return fmt.Errorf("%s: CGRAM location %d: %w", packageName, location, ErrOutOfRange)
	}
	if err := dev.command(cmdSetCGRAMAddr | byte(location)<<3); err != nil {
		return err
	}
	_, err := dev.Write(pattern[:])
	return err
}

// Clear the display and move the cursor home.
func (dev *Dev) Clear() error {
	if err := dev.command(cmdClearDisplay); err != nil {
		return err
	}
	dev.clock.Sleep(clearDelay)
	return nil
}

// Home moves the cursor to the first position and undoes any display shift.
func (dev *Dev) Home() error {
	if err := dev.command(cmdReturnHome); err != nil {
		return err
	}
	dev.clock.Sleep(clearDelay)
	return nil
}

// Flags returns the mirrored flag fields.
func (dev *Dev) Flags() (FunctionFlags, ControlFlags, EntryFlags) {
	return dev.function, dev.control, dev.entry
}

// Halt clears the display and turns it off.
func (dev *Dev) Halt() error {
	err := dev.Clear()
	if err == nil {
		err = dev.Display(false)
	}
	return err
}

// Return the number of columns the display supports
func (dev *Dev) Cols() int {
	return dev.cols
}

// Return the number of rows the display supports.
func (dev *Dev) Rows() int {
	return dev.rows
}

// Return the min column position.
func (dev *Dev) MinCol() int {
	return 1
}

// Return the min row position.
func (dev *Dev) MinRow() int {
	return 1
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s{%#02x} Rows: %d Cols: %d", packageName, dev.d.Addr(), dev.rows, dev.cols)
}

var _ conn.Resource = &Dev{}
var _ display.TextDisplay = &Dev{}
