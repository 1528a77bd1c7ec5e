// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if assert.NoError(t, err) {
		assert.Equal(t, DefaultURL, cfg.GeoServer.URL)
		assert.Equal(t, "admin", cfg.GeoServer.Username)
		assert.Equal(t, "geoserver", cfg.GeoServer.Password)
		assert.False(t, cfg.GeoServer.Insecure)
		assert.Equal(t, 5432, cfg.PostGIS.Port)
	}

	cfg, err = Read(strings.NewReader(""))
	if assert.NoError(t, err) {
		assert.Equal(t, Default(), cfg)
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := Read(strings.NewReader(`
geoserver:
  url: https://maps.example.com/geoserver/rest
  password: secret
  insecure: true
  cache_ttl: 10s
postgis:
  host: db.example.com
  port: "5433"
`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "https://maps.example.com/geoserver/rest", cfg.GeoServer.URL)
	assert.Equal(t, "admin", cfg.GeoServer.Username)
	assert.Equal(t, "secret", cfg.GeoServer.Password)
	assert.True(t, cfg.GeoServer.Insecure)
	assert.Equal(t, 10*time.Second, cfg.GeoServer.CacheTTL)
	assert.Equal(t, "db.example.com", cfg.PostGIS.Host)
	assert.Equal(t, 5433, cfg.PostGIS.Port)
	assert.Equal(t, "public", cfg.PostGIS.Schema)

	opts := cfg.GeoServer.Options()
	assert.Equal(t, "admin", opts.Username)
	assert.True(t, opts.InsecureSkipVerify)
	assert.Equal(t, 10*time.Second, opts.CacheTTL)
}

func TestBadYAML(t *testing.T) {
	_, err := Read(strings.NewReader("geoserver: [unterminated"))
	assert.Error(t, err)

	_, err = Read(strings.NewReader("geoserver:\n  cache_ttl: forever\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "gsconfig")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "gsconfig.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte("geoserver:\n  username: editor\n"), 0600))
	cfg, err := Load(path)
	if assert.NoError(t, err) {
		assert.Equal(t, "editor", cfg.GeoServer.Username)
		assert.Equal(t, DefaultPassword, cfg.GeoServer.Password)
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, os.IsNotExist(err))
}
