// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diffeo/go-gsconfig/memory"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	body, err := ioutil.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.Code, string(body)
}

func TestPrefix(t *testing.T) {
	c := memory.New()
	require.NoError(t, c.CreateWorkspace("topp", "http://www.openplans.org/topp"))
	h := newHandler(c, "/geoserver/rest", newMetrics(), nil)

	code, body := get(t, h, "/geoserver/rest/workspaces.xml")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "<name>topp</name>")

	code, _ = get(t, h, "/workspaces.xml")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestMetrics(t *testing.T) {
	c := memory.New()
	require.NoError(t, c.CreateWorkspace("topp", "http://www.openplans.org/topp"))
	m := newMetrics()
	h := newHandler(c, "/geoserver/rest", m, nil)

	get(t, h, "/geoserver/rest/workspaces.xml")
	get(t, h, "/geoserver/rest/workspaces/nowhere.xml")
	m.observe(c)

	code, body := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `diffeo_gsfaked_requests_total{code="200",method="GET"} 1`)
	assert.Contains(t, body, `diffeo_gsfaked_requests_total{code="404",method="GET"} 1`)
	assert.Contains(t, body, `diffeo_gsfaked_catalog_objects{kind="workspace"} 1`)
	assert.Contains(t, body, "diffeo_gsfaked_request_duration_seconds")
}

func TestRequestLogging(t *testing.T) {
	logger, hook := test.NewNullLogger()
	h := newHandler(memory.New(), "/geoserver/rest", newMetrics(), logger)

	get(t, h, "/geoserver/rest/about/version.xml")
	entry := hook.LastEntry()
	if assert.NotNil(t, entry) {
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, "request", entry.Message)
		assert.Equal(t, http.MethodGet, entry.Data["method"])
		assert.Equal(t, "/geoserver/rest/about/version.xml", entry.Data["path"])
		assert.Equal(t, http.StatusOK, entry.Data["status"])
	}
}
