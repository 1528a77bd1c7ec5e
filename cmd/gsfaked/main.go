// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package gsfaked runs an in-memory emulation of the GeoServer REST
// configuration API, for testing clients without a real GeoServer.
// Nothing is persisted; every restart begins from the seed file, or
// from an empty catalog.
package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/diffeo/go-gsconfig/backend"
	"github.com/diffeo/go-gsconfig/memory"
	"github.com/sirupsen/logrus"
)

func main() {
	httpBind := flag.String("http", ":8080", "[ip]:port for the HTTP interface")
	prefix := flag.String("prefix", "/geoserver/rest", "URL path of the REST API")
	seed := flag.String("seed", "", "YAML file of initial catalog contents")
	version := flag.String("version", "", "GeoServer version to report, overriding the seed file")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	flag.Parse()

	catalog := memory.New()
	if *seed != "" {
		if err := backend.LoadSeed(catalog, *seed); err != nil {
			logrus.WithFields(logrus.Fields{
				"err":  err,
				"seed": *seed,
			}).Fatal("Could not load seed file")
			return
		}
	}
	if *version != "" {
		catalog.SetVersion(*version)
	}

	var reqLogger logrus.FieldLogger
	if *logRequests {
		reqLogger = logrus.StandardLogger()
	}

	m := newMetrics()
	m.observe(catalog)
	go m.watch(catalog, 15*time.Second)

	logrus.WithFields(logrus.Fields{
		"http":   *httpBind,
		"prefix": *prefix,
	}).Info("serving emulated GeoServer")
	err := http.ListenAndServe(*httpBind, newHandler(catalog, *prefix, m, reqLogger))
	logrus.WithFields(logrus.Fields{
		"err": err,
	}).Fatal("HTTP server stopped")
}
