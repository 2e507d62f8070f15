// Copyright 2024 The arpahost Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package telemetrymetrics exports a *arpahost.TelemetryStore's
// decoded records as Prometheus gauges/counters, grounded on
// malbeclabs-doublezero's flow-ingest metrics package (package-level
// promauto vars, per-entity label) and runZeroInc-sockstats' per-peer
// gauge shape.
package telemetrymetrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	arpahost "github.com/n7qst/arpahost"
)

var (
	recordsDecoded = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_records_decoded_total",
		Help: "Telemetry records received so far, by IMP and most recent record kind.",
	}, []string{"imp", "kind"})

	decodeFailures = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_decode_failures_total",
		Help: "Telemetry payloads that matched a known signature but failed length validation.",
	}, []string{"imp"})

	banom = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_status_banom",
		Help: "Most recent BANOM value from a Status (304) record.",
	}, []string{"imp"})

	nopsSent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_status_nops_sent",
		Help: "Most recent NOPs-sent counter from a Status (304) record.",
	}, []string{"imp"})

	nopsReceived = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_status_nops_received",
		Help: "Most recent NOPs-received counter from a Status (304) record.",
	}, []string{"imp"})

	modemSpeed = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_status_modem_speed",
		Help: "Most recent modem-speed field from a Status (304) record.",
	}, []string{"imp"})

	throughputPacketsOut = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_throughput_packets_out",
		Help: "Most recent per-modem packets-out counter from a Throughput record.",
	}, []string{"imp", "modem"})

	haltPC = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "arpahost_telemetry_trouble_halt_pc",
		Help: "Most recent HaltPC field from a Trouble Report record.",
	}, []string{"imp"})
)

// Observe updates every gauge/counter from store's current slots for
// the given IMP numbers. It is idempotent to call repeatedly — gauges
// are set (not incremented), and counters only move forward because
// TelemetrySlot.Count/DecodeFailures are themselves monotonic.
func Observe(store *arpahost.TelemetryStore, imps []int) {
	for _, imp := range imps {
		slot, ok := store.Slot(imp)
		if !ok {
			continue
		}
		label := strconv.Itoa(imp)

		recordsDecoded.WithLabelValues(label, slot.Kind.String()).Set(float64(slot.Count))
		decodeFailures.WithLabelValues(label).Set(float64(slot.DecodeFailures))

		switch slot.Kind {
		case arpahost.KindStatus1976:
			banom.WithLabelValues(label).Set(float64(slot.Status1976.BANOM))
			nopsSent.WithLabelValues(label).Set(float64(slot.Status1976.NOPsSent))
			nopsReceived.WithLabelValues(label).Set(float64(slot.Status1976.NOPsReceived))
			modemSpeed.WithLabelValues(label).Set(float64(slot.Status1976.ModemSpeed))
		case arpahost.KindThroughput1976:
			for i, m := range slot.Throughput1976.Modem {
				throughputPacketsOut.WithLabelValues(label, strconv.Itoa(i)).Set(float64(m.PacketsOut))
			}
		case arpahost.KindThroughput1973:
			for i, m := range slot.Throughput1973.Modem {
				throughputPacketsOut.WithLabelValues(label, strconv.Itoa(i)).Set(float64(m.PacketsOut))
			}
		case arpahost.KindTroubleReport:
			haltPC.WithLabelValues(label).Set(float64(slot.TroubleReport.HaltPC))
		}
	}
}

// Updater polls a TelemetryStore on an interval and calls Observe,
// for use alongside the promhttp handler cmd/arpahost serves.
type Updater struct {
	Store    *arpahost.TelemetryStore
	IMPs     []int
	Interval time.Duration
}

// Run blocks until ctx is cancelled, calling Observe once per tick.
func (u *Updater) Run(ctx context.Context) {
	interval := u.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			Observe(u.Store, u.IMPs)
		}
	}
}
