// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package metrics counts the I²C transactions of the command line tool and
// exports them in the Prometheus format.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	reg          *prometheus.Registry
	transactions *prometheus.CounterVec
	errors       *prometheus.CounterVec
	bytesWritten *prometheus.CounterVec
	refreshes    prometheus.Counter
}

// New returns collectors registered on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		transactions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grovelcd_i2c_transactions_total",
			Help: "I2C transactions by device address",
		}, []string{"addr"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grovelcd_i2c_errors_total",
			Help: "Failed I2C transactions by device address",
		}, []string{"addr"}),
		bytesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "grovelcd_i2c_written_bytes_total",
			Help: "Bytes written by device address",
		}, []string{"addr"}),
		refreshes: f.NewCounter(prometheus.CounterOpts{
			Name: "grovelcd_refreshes_total",
			Help: "Display content updates",
		}),
	}
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Refreshed counts one display update.
func (m *Metrics) Refreshed() {
	m.refreshes.Inc()
}

// Bus wraps bus so every transaction is counted.
func (m *Metrics) Bus(bus i2c.BusCloser) i2c.BusCloser {
	return &countingBus{bus: bus, m: m}
}

type countingBus struct {
	bus i2c.BusCloser
	m   *Metrics
}

func (c *countingBus) Tx(addr uint16, w, r []byte) error {
	label := fmt.Sprintf("%#02x", addr)
	c.m.transactions.WithLabelValues(label).Inc()
	c.m.bytesWritten.WithLabelValues(label).Add(float64(len(w)))
	err := c.bus.Tx(addr, w, r)
	if err != nil {
		c.m.errors.WithLabelValues(label).Inc()
	}
	return err
}

func (c *countingBus) SetSpeed(f physic.Frequency) error {
	return c.bus.SetSpeed(f)
}

func (c *countingBus) Close() error {
	return c.bus.Close()
}

func (c *countingBus) String() string {
	return c.bus.String()
}
