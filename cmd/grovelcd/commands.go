// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GermanBionicSystems/grovelcd/grovelcd"
	"github.com/GermanBionicSystems/grovelcd/regbus"
	"github.com/spf13/cobra"
)

func newWriteCmd(a *app) *cobra.Command {
	var row, col int
	var clearFirst bool
	cmd := &cobra.Command{
		Use:   "write TEXT...",
		Short: "Write text at a position, a \\n in TEXT continues on the next row",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.ReplaceAll(strings.Join(args, " "), `\n`, "\n")
			return a.withDisplay(func(dev *grovelcd.Dev) error {
				if clearFirst {
					if err := dev.Clear(); err != nil {
						return err
					}
				}
				for i, line := range strings.Split(text, "\n") {
					if err := dev.SetCursor(col, row+i); err != nil {
						return err
					}
					if err := dev.WriteString(line); err != nil {
						return err
					}
				}
				a.log.Info("text written", "row", row, "col", col, "len", len(text))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&row, "row", 0, "first row, 0 based")
	cmd.Flags().IntVar(&col, "col", 0, "first column, 0 based")
	cmd.Flags().BoolVar(&clearFirst, "clear", false, "clear the display before writing")
	return cmd
}

func newColorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "color R G B",
		Short: "Set the backlight color, each channel 0 to 255",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rgb [3]int
			for i, s := range args {
				v, err := strconv.Atoi(s)
				if err != nil {
					return fmt.Errorf("invalid channel %q: %w", s, err)
				}
				rgb[i] = v
			}
			return a.withDisplay(func(dev *grovelcd.Dev) error {
				if err := dev.Color(rgb[0], rgb[1], rgb[2]); err != nil {
					return err
				}
				a.log.Info("backlight color set", "red", rgb[0], "green", rgb[1], "blue", rgb[2])
				return nil
			})
		},
	}
}

func newBlinkCmd(a *app) *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "blink",
		Short: "Flash the backlight",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDisplay(func(dev *grovelcd.Dev) error {
				if off {
					return dev.Backlight().StopBlink()
				}
				return dev.BlinkLED()
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "stop flashing")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the display",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDisplay(func(dev *grovelcd.Dev) error {
				return dev.Clear()
			})
		},
	}
}

func newHomeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Move the cursor to the top left corner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDisplay(func(dev *grovelcd.Dev) error {
				return dev.Home()
			})
		},
	}
}

func newCursorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "cursor on|off",
		Short:     "Show or hide the blinking cursor",
		ValidArgs: []string{"on", "off"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			on := args[0] == "on"
			return a.withDisplay(func(dev *grovelcd.Dev) error {
				if err := dev.ShowCursor(on); err != nil {
					return err
				}
				return dev.Blink(on)
			})
		},
	}
}

func newScanCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List the addresses answering on the bus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			bus, err := a.openBus()
			if err != nil {
				return err
			}
			defer func() {
				if cerr := bus.Close(); err == nil {
					err = cerr
				}
			}()
			found := regbus.Scan(bus)
			a.log.Debug("scan done", "bus", bus.String(), "found", len(found))
			for _, addr := range found {
				name := ""
				switch addr {
				case a.cfg.Display.LCDAddress:
					name = " lcd"
				case a.cfg.Display.RGBAddress:
					name = " backlight"
				}
				if _, err = fmt.Fprintf(cmd.OutOrStdout(), "%#02x%s\n", addr, name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
