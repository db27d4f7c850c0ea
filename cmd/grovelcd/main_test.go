// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the tool on the simulated transport and returns what was
// printed and what the simulator rendered.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, screen bytes.Buffer
	simOutput = &screen
	t.Cleanup(func() { simOutput = nil })

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	base := []string{
		"--config", filepath.Join(t.TempDir(), "none.toml"),
		"--transport", "sim",
	}
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return out.String(), screen.String(), err
}

func TestWrite(t *testing.T) {
	_, screen, err := run(t, "write", "--row", "1", "--col", "2", "Hello", "world")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(screen, "  Hello world") {
		t.Errorf("rendering does not contain the text:\n%q", screen)
	}
}

func TestWriteMultiline(t *testing.T) {
	_, screen, err := run(t, "write", `top\nbottom`)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"top", "bottom"} {
		if !strings.Contains(screen, want) {
			t.Errorf("rendering does not contain %q:\n%q", want, screen)
		}
	}
}

func TestCommands(t *testing.T) {
	for _, args := range [][]string{
		{"color", "255", "0", "128"},
		{"blink"},
		{"blink", "--off"},
		{"clear"},
		{"home"},
		{"cursor", "on"},
		{"cursor", "off"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, _, err := run(t, args...); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestScan(t *testing.T) {
	out, _, err := run(t, "scan")
	if err != nil {
		t.Fatal(err)
	}
	if want := "0x30 backlight\n0x3e lcd\n"; out != want {
		t.Errorf("scan output %q, want %q", out, want)
	}
}

func TestErrors(t *testing.T) {
	for _, args := range [][]string{
		{"color", "256", "0", "0"},
		{"color", "red", "0", "0"},
		{"color", "1", "2"},
		{"cursor", "maybe"},
		{"write"},
		{"--lcd-address", "0x30", "clear"},
		{"--transport", "spi", "clear"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, _, err := run(t, args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
