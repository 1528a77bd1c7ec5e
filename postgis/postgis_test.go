// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgis

import (
	"testing"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	opts := gsconfig.DefaultPostGISOptions()
	opts.Password = "secret"
	assert.Equal(t,
		"dbname=db host=localhost password=secret port=5432 search_path=public sslmode=disable user=postgres",
		DSN(opts))
}

func TestDSNQuoting(t *testing.T) {
	opts := gsconfig.PostGISOptions{
		Host:     "db.example.com",
		Database: "my gis",
		User:     "o'brien",
		Password: `back\slash`,
	}
	assert.Equal(t,
		`dbname='my gis' host=db.example.com password='back\\slash' sslmode=disable user='o\'brien'`,
		DSN(opts))
}

func TestDSNEmptyHost(t *testing.T) {
	assert.Equal(t, "dbname='' host='' sslmode=disable", DSN(gsconfig.PostGISOptions{}))
}

func TestOptions(t *testing.T) {
	store := &gsconfig.Store{
		Kind: gsconfig.DataStoreKind,
		ConnectionParameters: map[string]string{
			"host":     "db.example.com",
			"port":     "5433",
			"database": "gis",
			"user":     "geo",
			"passwd":   "secret",
			"dbtype":   "postgis",
		},
	}
	opts, err := Options(store)
	if assert.NoError(t, err) {
		assert.Equal(t, gsconfig.PostGISOptions{
			Host:     "db.example.com",
			Port:     5433,
			Database: "gis",
			Schema:   "public",
			User:     "geo",
			Password: "secret",
		}, opts)
	}

	store.ConnectionParameters["port"] = "many"
	_, err = Options(store)
	assert.Error(t, err)
}

func TestOptionsNotPostGIS(t *testing.T) {
	_, err := Options(&gsconfig.Store{
		Kind:                 gsconfig.DataStoreKind,
		ConnectionParameters: map[string]string{"url": "file:data/states"},
	})
	assert.Equal(t, ErrNotPostGIS, err)

	_, err = Options(&gsconfig.Store{Kind: gsconfig.CoverageStoreKind})
	assert.Equal(t, ErrNotPostGIS, err)
}

func TestNormalize(t *testing.T) {
	kv := "host=localhost dbname=gis"
	dsn, err := Normalize(kv)
	if assert.NoError(t, err) {
		assert.Equal(t, kv, dsn)
	}

	for _, url := range []string{
		"postgres://geo@localhost/gis",
		"//geo@localhost/gis",
	} {
		dsn, err = Normalize(url)
		if assert.NoError(t, err, url) {
			assert.Contains(t, dsn, "dbname=gis", url)
			assert.Contains(t, dsn, "host=localhost", url)
			assert.Contains(t, dsn, "user=geo", url)
		}
	}

	_, err = Normalize("postgres://%zz")
	assert.Error(t, err)
}
