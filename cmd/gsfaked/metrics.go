// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/negroni"
)

// metrics holds the collectors of one emulator.  Each has its own
// registry, so several can run in one process.
type metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	catalog  *prometheus.GaugeVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "diffeo",
				Subsystem: "gsfaked",
				Name:      "requests_total",
				Help:      "REST requests served, by method and status",
			},
			[]string{"method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "diffeo",
				Subsystem: "gsfaked",
				Name:      "request_duration_seconds",
				Help:      "Time taken to serve REST requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		catalog: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "diffeo",
				Subsystem: "gsfaked",
				Name:      "catalog_objects",
				Help:      "Objects in the emulated catalog",
			},
			[]string{"kind"},
		),
	}
	m.registry.MustRegister(m.requests, m.duration, m.catalog)
	return m
}

// Handler serves the collected metrics.
func (m *metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ServeHTTP is negroni middleware counting and timing each request.
func (m *metrics) ServeHTTP(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(rw, req)
	status := rw.(negroni.ResponseWriter).Status()
	m.requests.WithLabelValues(req.Method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
}

// observe records the size of the catalog.
func (m *metrics) observe(c *memory.Catalog) {
	workspaces := c.WorkspaceNames()
	stores := 0
	for _, ws := range workspaces {
		for _, kind := range []gsconfig.StoreKind{gsconfig.DataStoreKind, gsconfig.CoverageStoreKind} {
			names, _ := c.StoreNames(ws, kind)
			stores += len(names)
		}
	}
	m.catalog.WithLabelValues("workspace").Set(float64(len(workspaces)))
	m.catalog.WithLabelValues("store").Set(float64(stores))
	m.catalog.WithLabelValues("layer").Set(float64(len(c.LayerNames())))
	m.catalog.WithLabelValues("layergroup").Set(float64(len(c.LayerGroupNames())))
	m.catalog.WithLabelValues("import").Set(float64(len(c.ImportIDs())))
}

// watch calls observe periodically, forever.
func (m *metrics) watch(c *memory.Catalog, interval time.Duration) {
	for range time.Tick(interval) {
		m.observe(c)
	}
}
