// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GermanBionicSystems/grovelcd/grovelcd"
	"github.com/GermanBionicSystems/grovelcd/lcdsim"
	"github.com/google/go-cmp/cmp"
)

func TestMirror(t *testing.T) {
	sim := lcdsim.New(&lcdsim.Opts{W: io.Discard})
	dev, err := grovelcd.New(sim, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err = mirror(dev, "temperature 21.5C and rising\r\nhumidity 40%\nignored"); err != nil {
		t.Fatal(err)
	}
	want := []string{"temperature 21.5", "humidity 40%    "}
	if diff := cmp.Diff(want, sim.Lines()); diff != "" {
		t.Errorf("Lines() (-want +got):\n%s", diff)
	}

	if err = mirror(dev, "π≈3"); err != nil {
		t.Fatal(err)
	}
	want = []string{"??3             ", "                "}
	if diff := cmp.Diff(want, sim.Lines()); diff != "" {
		t.Errorf("Lines() (-want +got):\n%s", diff)
	}
}

func TestWatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.txt")
	if err := os.WriteFile(path, []byte("a"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- watchFile(ctx, path, 10*time.Millisecond, log, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// The watcher may not be registered yet, keep writing until it reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-changed:
			break wait
		case <-tick.C:
			if err := os.WriteFile(path, []byte("b"), 0o600); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watchFile did not return after cancel")
	}
}
