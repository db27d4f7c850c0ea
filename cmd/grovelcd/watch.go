// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/grovelcd/grovelcd"
	"github.com/GermanBionicSystems/grovelcd/internal/metrics"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	var listen string
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Mirror the first lines of FILE on the display until interrupted",
		Long: `Mirror the first lines of FILE on the display and update it every time
the file changes. Runs until SIGINT or SIGTERM, reporting readiness to systemd
when started as a notify service.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			raw, err := a.openBus()
			if err != nil {
				return err
			}
			bus := m.Bus(raw)
			defer func() {
				if cerr := bus.Close(); err == nil {
					err = cerr
				}
			}()
			dev, err := grovelcd.New(bus, displayOpts(a.cfg.Display))
			if err != nil {
				return err
			}

			if listen != "" {
				srv := serveMetrics(listen, m, a.log)
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(sctx)
				}()
			}

			path := args[0]
			update := func() {
				content, rerr := os.ReadFile(path)
				if rerr != nil {
					a.log.Warn("cannot read watched file", "path", path, "error", rerr)
					return
				}
				if merr := mirror(dev, string(content)); merr != nil {
					a.log.Error("display update failed", "error", merr)
					return
				}
				m.Refreshed()
				a.log.Debug("display updated", "path", path)
			}
			update()

			if ok, nerr := daemon.SdNotify(false, daemon.SdNotifyReady); nerr != nil {
				a.log.Warn("systemd notification failed", "error", nerr)
			} else if ok {
				a.log.Debug("systemd notified")
			}
			defer func() { _, _ = daemon.SdNotify(false, daemon.SdNotifyStopping) }()

			a.log.Info("watching", "path", path, "debounce", debounce)
			return watchFile(ctx, path, debounce, a.log, update)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "wait this long after the last change before updating")
	cmd.Flags().StringVar(&listen, "metrics-listen", "", "serve Prometheus metrics on this address, e.g. :9110")
	return cmd
}

// mirror shows the first lines of content, one per row, cut to the visible
// width. Characters the controller cannot show become '?'.
func mirror(dev *grovelcd.Dev, content string) error {
	screen := dev.Screen()
	if err := dev.Clear(); err != nil {
		return err
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	for row := 0; row < screen.Rows() && row < len(lines); row++ {
		r := []rune(lines[row])
		if len(r) > screen.Cols() {
			r = r[:screen.Cols()]
		}
		for i, c := range r {
			if c > 0xff {
				r[i] = '?'
			}
		}
		if err := dev.SetCursor(0, row); err != nil {
			return err
		}
		if err := dev.WriteString(string(r)); err != nil {
			return err
		}
	}
	return nil
}

// watchFile calls onChange once path has been quiet for debounce after a
// write. The directory is watched so editors replacing the file are seen.
func watchFile(ctx context.Context, path string, debounce time.Duration, log *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	name := filepath.Clean(path)
	if err = w.Add(filepath.Dir(name)); err != nil {
		return err
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			log.Debug("change detected", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			timerC = timer.C
		case <-timerC:
			timerC = nil
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)
		}
	}
}

func serveMetrics(addr string, m *metrics.Metrics, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "addr", addr)
	return srv
}
