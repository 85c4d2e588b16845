// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metrics counts annotation activity and exports it in the Prometheus
// text format for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ntd_scan"

// Metrics holds the collectors of one process. It is safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	rowsAnnotated prometheus.Counter
	matches       *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Gauge
}

// New creates a Metrics value with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rowsAnnotated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_annotated_total",
			Help:      "Number of requirement rows annotated.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_matches_total",
			Help:      "Number of matching patterns per category.",
		}, []string{"category"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Number of annotation runs by outcome.",
		}, []string{"status"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the most recent annotation run.",
		}),
	}
	m.registry.MustRegister(m.rowsAnnotated, m.matches, m.runs, m.runDuration)
	return m
}

// RecordMatch counts one matching pattern of category
func (m *Metrics) RecordMatch(category string) {
	m.matches.WithLabelValues(category).Inc()
}

// AddRows counts annotated rows
func (m *Metrics) AddRows(n int) {
	if n > 0 {
		m.rowsAnnotated.Add(float64(n))
	}
}

// ObserveRun records the duration and outcome of a run
func (m *Metrics) ObserveRun(d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Set(d.Seconds())
}

// WriteTextfile writes every metric to path atomically
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("error writing metrics: %w", err)
	}
	return nil
}
