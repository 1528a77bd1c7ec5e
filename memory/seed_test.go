// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory_test

import (
	"net/http"
	"testing"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/memory"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed(t *testing.T) {
	f := newMemoryFixture(t)
	seed, err := memory.DecodeSeed(map[string]interface{}{
		"version":           "2.9.0",
		"default_workspace": "sf",
		"styles": []interface{}{
			map[string]interface{}{"name": "polygon", "sld": "<sld/>"},
		},
		"workspaces": []interface{}{
			map[string]interface{}{
				"name": "topp",
				"uri":  "http://www.openplans.org/topp",
				"datastores": []interface{}{
					map[string]interface{}{
						"name": "pg",
						"type": "PostGIS",
						"parameters": map[string]interface{}{
							"dbtype": "postgis",
							"port":   5432,
						},
						"resources": []interface{}{
							map[string]interface{}{"name": "states", "srs": "EPSG:4326"},
						},
					},
				},
			},
			map[string]interface{}{"name": "sf", "uri": "http://www.openplans.org/sf"},
		},
		"layergroups": []interface{}{
			map[string]interface{}{"name": "usa", "layers": []interface{}{"states"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, f.Catalog.Load(seed))

	f.Equal("2.9.0", f.Catalog.Version())
	f.Equal([]string{"sf", "topp"}, f.Catalog.WorkspaceNames())
	name, err := f.Catalog.DefaultWorkspace()
	if f.NoError(err) {
		f.Equal("sf", name)
	}

	store, err := f.Catalog.Store("topp", gsconfig.DataStoreKind, "pg")
	if f.NoError(err) {
		f.Equal("5432", store.ConnectionParameters["port"])
		f.True(store.Enabled)
	}
	f.Equal([]string{"topp:states"}, f.Catalog.LayerNames())

	sld, err := f.Catalog.StyleSLD("", "polygon")
	if f.NoError(err) {
		f.Equal("<sld/>", string(sld))
	}

	group, err := f.Catalog.LayerGroup("usa")
	if f.NoError(err) {
		f.Equal([]string{"states"}, group.Layers)
		f.Equal([]string{""}, group.Styles)
	}
}

func TestLoadSeedConflict(t *testing.T) {
	f := newMemoryFixture(t)
	f.Workspace("topp")
	seed, err := memory.DecodeSeed(map[string]interface{}{
		"workspaces": []interface{}{
			map[string]interface{}{"name": "topp"},
		},
	})
	require.NoError(t, err)
	f.Status(http.StatusConflict, f.Catalog.Load(seed))
}

func TestDecodeSeedBadInput(t *testing.T) {
	_, err := memory.DecodeSeed(map[string]interface{}{
		"workspaces": "topp",
	})
	require.Error(t, err)
}
