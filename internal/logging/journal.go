// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package logging

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// journalHandler sends records to the systemd journal, attributes become
// upper case journal fields.
type journalHandler struct {
	level slog.Level
	// fields holds the attributes added by WithAttrs, already qualified by
	// the groups open at that time.
	fields map[string]string
	groups []string
	send   func(message string, priority journal.Priority, fields map[string]string) error
}

func newJournalHandler(level slog.Level) *journalHandler {
	return &journalHandler{level: level, send: journal.Send}
}

func (h *journalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *journalHandler) Handle(_ context.Context, r slog.Record) error {
	fields := map[string]string{"SYSLOG_IDENTIFIER": "grovelcd"}
	maps.Copy(fields, h.fields)
	r.Attrs(func(a slog.Attr) bool {
		addField(fields, a, h.groups)
		return true
	})
	return h.send(r.Message, priority(r.Level), fields)
}

func (h *journalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.fields = maps.Clone(h.fields)
	if c.fields == nil {
		c.fields = map[string]string{}
	}
	for _, a := range attrs {
		addField(c.fields, a, h.groups)
	}
	return &c
}

func (h *journalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.groups = append(slices.Clone(h.groups), name)
	return &c
}

func priority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	}
	return journal.PriDebug
}

// journalKey maps an attribute path to a valid journal field name.
func journalKey(groups []string, key string) string {
	k := strings.ToUpper(strings.Join(append(slices.Clone(groups), key), "_"))
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			return r
		}
		return '_'
	}, k)
}

func addField(fields map[string]string, a slog.Attr, groups []string) {
	if a.Equal(slog.Attr{}) {
		return
	}
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		g := append(slices.Clone(groups), a.Key)
		for _, sub := range v.Group() {
			addField(fields, sub, g)
		}
	case slog.KindInt64:
		fields[journalKey(groups, a.Key)] = strconv.FormatInt(v.Int64(), 10)
	default:
		fields[journalKey(groups, a.Key)] = v.String()
	}
}
