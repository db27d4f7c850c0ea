// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"github.com/GermanBionicSystems/grovelcd/devfs"
	"github.com/GermanBionicSystems/grovelcd/grovelcd"
	"github.com/GermanBionicSystems/grovelcd/internal/config"
	"github.com/GermanBionicSystems/grovelcd/lcdsim"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// simOutput is where the simulator draws. Tests replace it.
var simOutput io.Writer

func displayOpts(d config.Display) *grovelcd.Opts {
	opts := grovelcd.DefaultOpts
	opts.LCDAddress = d.LCDAddress
	opts.RGBAddress = d.RGBAddress
	opts.OneLine = d.OneLine
	opts.Cols = d.Cols
	return &opts
}

// openBus opens the configured transport.
func (a *app) openBus() (i2c.BusCloser, error) {
	d := a.cfg.Display
	switch d.Transport {
	case config.TransportSim:
		return lcdsim.New(&lcdsim.Opts{
			LCDAddress: d.LCDAddress,
			RGBAddress: d.RGBAddress,
			Cols:       d.Cols,
			W:          simOutput,
		}), nil
	case config.TransportDevfs:
		return devfs.New(d.DevfsBus), nil
	case config.TransportPeriph:
		if _, err := host.Init(); err != nil {
			return nil, err
		}
		return i2creg.Open(d.Bus)
	}
	return nil, fmt.Errorf("unknown transport %q", d.Transport)
}

// openDisplay returns the initialized module and the closer that releases its
// bus.
func (a *app) openDisplay() (*grovelcd.Dev, io.Closer, error) {
	opts := displayOpts(a.cfg.Display)
	if a.cfg.Display.Transport == config.TransportPeriph {
		dev, err := grovelcd.Open(a.cfg.Display.Bus, opts)
		if err != nil {
			return nil, nil, err
		}
		a.log.Debug("display opened", "display", dev.String())
		return dev, dev, nil
	}
	bus, err := a.openBus()
	if err != nil {
		return nil, nil, err
	}
	dev, err := grovelcd.New(bus, opts)
	if err != nil {
		_ = bus.Close()
		return nil, nil, err
	}
	a.log.Debug("display opened", "bus", bus.String(), "display", dev.String())
	return dev, bus, nil
}

// withDisplay opens the display, runs fn, and releases the bus.
func (a *app) withDisplay(fn func(dev *grovelcd.Dev) error) (err error) {
	dev, closer, err := a.openDisplay()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(dev)
}
