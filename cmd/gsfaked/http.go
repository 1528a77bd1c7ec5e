// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"time"

	"github.com/diffeo/go-gsconfig/memory"
	"github.com/diffeo/go-gsconfig/restserver"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// requestLogger is negroni middleware writing one log line per
// request.
type requestLogger struct {
	log logrus.FieldLogger
}

func (l requestLogger) ServeHTTP(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(rw, req)
	status := rw.(negroni.ResponseWriter).Status()
	entry := l.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"path":     req.URL.Path,
		"status":   status,
		"duration": time.Since(start),
	})
	if status >= 500 {
		entry.Warn("request")
	} else {
		entry.Info("request")
	}
}

// newHandler builds the complete HTTP handler of the emulator: the
// REST API under prefix, and metrics at /metrics.  If log is nil
// requests are not logged.
func newHandler(c *memory.Catalog, prefix string, m *metrics, log logrus.FieldLogger) http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", m.Handler())
	restserver.PopulateRouter(r.PathPrefix(prefix).Subrouter(), c)

	recovery := negroni.NewRecovery()
	recovery.PrintStack = false
	n := negroni.New(recovery)
	if log != nil {
		n.Use(requestLogger{log: log})
	}
	n.Use(m)
	n.UseHandler(r)
	return n
}
