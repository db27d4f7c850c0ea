// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logging builds the slog logger used by the command line tool.
// The driver packages never log.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents logging configuration.
type Config struct {
	Level string `toml:"level"`
	// Format is text, json or journal.
	Format string `toml:"format"`
	// File, when set, also writes the log to a size rotated file. It is
	// ignored by the journal format.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// DefaultConfig logs text at info level to the console only.
var DefaultConfig = Config{
	Level:      "info",
	Format:     "text",
	MaxSizeMB:  10,
	MaxBackups: 3,
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", level)
}

// New returns a logger writing to console, and to cfg.File if set. The closer
// releases the log file.
func New(cfg Config, console io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	if strings.EqualFold(cfg.Format, "journal") {
		if !journal.Enabled() {
			return nil, nil, errors.New("logging: systemd journal is not available")
		}
		return slog.New(newJournalHandler(level)), nopCloser{}, nil
	}
	w := console
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		file := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		}
		w = io.MultiWriter(console, file)
		closer = file
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		_ = closer.Close()
		return nil, nil, fmt.Errorf("logging: unknown format %q", cfg.Format)
	}
	return slog.New(handler), closer, nil
}
