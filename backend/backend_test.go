// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package backend

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/diffeo/go-gsconfig/restclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	for _, test := range []struct {
		param   string
		impl    string
		address string
		valid   bool
	}{
		{"memory", "memory", "", true},
		{"memory:seed.yaml", "memory", "seed.yaml", true},
		{"rest:http://localhost:8080/geoserver/rest", "rest", "http://localhost:8080/geoserver/rest", true},
		{"rest", "", "", false},
		{"", "", "", false},
		{"postgres:host=localhost", "", "", false},
	} {
		var b Backend
		err := b.Set(test.param)
		if !test.valid {
			assert.Error(t, err, test.param)
			continue
		}
		if assert.NoError(t, err, test.param) {
			assert.Equal(t, test.impl, b.Implementation)
			assert.Equal(t, test.address, b.Address)
			assert.Equal(t, test.param, b.String())
		}
	}
}

func TestMemoryCatalog(t *testing.T) {
	b := Backend{Implementation: "memory"}
	catalog, err := b.Catalog(restclient.Options{})
	require.NoError(t, err)

	_, err = catalog.CreateWorkspace("topp", "http://www.openplans.org/topp")
	require.NoError(t, err)
	ws, err := catalog.DefaultWorkspace()
	if assert.NoError(t, err) {
		assert.Equal(t, "topp", ws.Name)
	}

	// a second client sees the same emulated server
	again, err := b.Catalog(restclient.Options{})
	require.NoError(t, err)
	workspaces, err := again.Workspaces()
	if assert.NoError(t, err) {
		assert.Len(t, workspaces, 1)
	}

	imports, err := b.Importer(restclient.Options{})
	require.NoError(t, err)
	session, err := imports.CreateSession("topp")
	if assert.NoError(t, err) {
		assert.Equal(t, "topp", session.TargetWorkspace)
	}
}

// TestMemoryBodilessPost sends requests with no body at all through
// the in-process transport.
func TestMemoryBodilessPost(t *testing.T) {
	b := Backend{Implementation: "memory"}
	catalog, err := b.Catalog(restclient.Options{})
	require.NoError(t, err)
	assert.NoError(t, catalog.Reload())

	imports, err := b.Importer(restclient.Options{})
	require.NoError(t, err)
	session, err := imports.CreateSession("")
	require.NoError(t, err)
	require.NoError(t, imports.Commit(session, false))
	session, err = imports.Session(session.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, "COMPLETE", session.State)
	}
}

func TestMemorySeed(t *testing.T) {
	dir, err := ioutil.TempDir("", "backend")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "seed.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(`
default_workspace: sf
workspaces:
  - name: topp
    uri: http://www.openplans.org/topp
  - name: sf
    uri: http://www.openplans.org/sf
    datastores:
      - name: roads
        type: Shapefile
        parameters:
          url: file:data/sf/roads
        resources:
          - name: streams
            srs: EPSG:26713
`), 0644))

	var b Backend
	require.NoError(t, b.Set("memory:"+path))
	catalog, err := b.Catalog(restclient.Options{})
	require.NoError(t, err)

	ws, err := catalog.DefaultWorkspace()
	if assert.NoError(t, err) {
		assert.Equal(t, "sf", ws.Name)
	}
	resource, err := catalog.Resource("streams", "", "")
	if assert.NoError(t, err) {
		assert.Equal(t, "roads", resource.Store)
		assert.Equal(t, "EPSG:26713", resource.SRS)
	}

	require.NoError(t, b.Set("memory:"+filepath.Join(dir, "missing.yaml")))
	_, err = b.Catalog(restclient.Options{})
	assert.Error(t, err)
}

func TestUnknownBackend(t *testing.T) {
	b := Backend{Implementation: "carrier-pigeon"}
	_, err := b.Catalog(restclient.Options{})
	assert.Error(t, err)
	_, err = b.Importer(restclient.Options{})
	assert.Error(t, err)
}
