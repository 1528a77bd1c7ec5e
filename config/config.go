// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package config reads the settings shared by the command-line tools
// from a YAML file.  A typical file looks like
//
//     geoserver:
//       url: https://maps.example.com/geoserver/rest
//       username: admin
//       password: secret
//       insecure: true
//       cache_ttl: 10s
//     postgis:
//       host: db.example.com
//       database: gis
//       user: geo
//       password: secret
//
// Anything left out keeps its default.
package config

import (
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restclient"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

// Default connection settings, matching a freshly installed
// GeoServer.
const (
	DefaultURL      = "http://localhost:8080/geoserver/rest"
	DefaultUsername = "admin"
	DefaultPassword = "geoserver"
)

// Connection says how to reach a GeoServer REST service.
type Connection struct {
	URL      string
	Username string
	Password string

	// Insecure disables TLS certificate verification.
	Insecure bool

	// CacheTTL is how long fetched documents are reused.  Zero
	// means the client default.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Options converts the connection settings to client options.
func (c Connection) Options() restclient.Options {
	return restclient.Options{
		Username:           c.Username,
		Password:           c.Password,
		InsecureSkipVerify: c.Insecure,
		CacheTTL:           c.CacheTTL,
	}
}

// Config is the contents of a configuration file.
type Config struct {
	GeoServer Connection
	PostGIS   gsconfig.PostGISOptions `mapstructure:"postgis"`
}

// Default returns the configuration used when there is no file.
func Default() Config {
	return Config{
		GeoServer: Connection{
			URL:      DefaultURL,
			Username: DefaultUsername,
			Password: DefaultPassword,
		},
		PostGIS: gsconfig.DefaultPostGISOptions(),
	}
}

// Decode overlays a generic map, as produced by a YAML parser, on
// the defaults.  Durations may be given as strings like "10s".
func Decode(input interface{}) (Config, error) {
	cfg := Default()
	if input == nil {
		return cfg, nil
	}
	dc := mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	}
	decoder, err := mapstructure.NewDecoder(&dc)
	if err == nil {
		err = decoder.Decode(input)
	}
	return cfg, err
}

// Read parses a YAML configuration.
func Read(r io.Reader) (Config, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return Config{}, err
	}
	var input map[string]interface{}
	if err = yaml.Unmarshal(data, &input); err != nil {
		return Config{}, err
	}
	if input == nil {
		return Default(), nil
	}
	return Decode(input)
}

// Load reads a configuration file.  An empty path returns the
// defaults.
func Load(path string) (cfg Config, err error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return Read(f)
}
