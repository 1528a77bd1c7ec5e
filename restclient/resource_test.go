// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"testing"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/stretchr/testify/require"
)

// newLayerFixture sets up a catalog with a "states" feature type in
// two workspaces, and a "dem" coverage in one.
func newLayerFixture(t *testing.T) *catalogFixture {
	f := newCatalogFixture(t)
	require.NoError(t, f.Memory.CreateWorkspace("sf", "http://sf"))
	require.NoError(t, f.Memory.UploadShapefile("topp", "states", shapefiles(t, "states", "counties"), "", ""))
	require.NoError(t, f.Memory.UploadShapefile("sf", "census", shapefiles(t, "states"), "", ""))
	require.NoError(t, f.Memory.UploadCoverage("topp", "dem", "geotiff", geoTIFF))
	return f
}

func TestResourceLookup(t *testing.T) {
	f := newLayerFixture(t)

	_, err := f.Catalog.Resource("states", "", "")
	f.Ambiguous(err, 2)

	resource, err := f.Catalog.Resource("states", "", "topp")
	if f.NoError(err) {
		f.Equal("states", resource.Name)
		f.Equal("states", resource.Store)
		f.Equal("topp", resource.Workspace)
		f.Equal(gsconfig.FeatureTypeKind, resource.Kind)
		f.Equal("EPSG:4326", resource.SRS)
	}

	resource, err = f.Catalog.Resource("states", "census", "")
	if f.NoError(err) {
		f.Equal("sf", resource.Workspace)
	}

	resource, err = f.Catalog.Resource("dem", "", "")
	if f.NoError(err) {
		f.Equal(gsconfig.CoverageKind, resource.Kind)
		f.Equal("dem", resource.Store)
	}

	_, err = f.Catalog.Resource("nope", "states", "topp")
	f.NotFound(err, "resource")
	_, err = f.Catalog.Resource("nope", "", "")
	f.NotFound(err, "resource")
	_, err = f.Catalog.Resource("states", "nope", "topp")
	f.NotFound(err, "store")
}

func TestResources(t *testing.T) {
	f := newLayerFixture(t)

	resources, err := f.Catalog.Resources("states", "topp")
	if f.NoError(err) && f.Len(resources, 2) {
		f.Equal("counties", resources[0].Name)
		f.Equal("states", resources[1].Name)
	}

	resources, err = f.Catalog.Resources("", "topp")
	if f.NoError(err) {
		f.Len(resources, 3)
	}

	resources, err = f.Catalog.Resources("", "")
	if f.NoError(err) {
		f.Len(resources, 4)
	}
}

func TestSaveResource(t *testing.T) {
	f := newLayerFixture(t)
	resource, err := f.Catalog.Resource("counties", "states", "topp")
	require.NoError(t, err)

	resource.Title = "US Counties"
	resource.Keywords = []string{"census", "boundaries"}
	resource.LatLonBoundingBox = &gsconfig.Bounds{MinX: -125, MaxX: -66, MinY: 24, MaxY: 50, CRS: "EPSG:4326"}
	f.NoError(f.Catalog.Save(resource))

	resource, err = f.Catalog.Resource("counties", "states", "topp")
	if f.NoError(err) {
		f.Equal("US Counties", resource.Title)
		f.Equal([]string{"census", "boundaries"}, resource.Keywords)
		if f.NotNil(resource.LatLonBoundingBox) {
			f.Equal(-125.0, resource.LatLonBoundingBox.MinX)
			f.Equal(50.0, resource.LatLonBoundingBox.MaxY)
		}
	}
}

func TestLayerLookup(t *testing.T) {
	f := newLayerFixture(t)

	_, err := f.Catalog.Layer("states")
	f.Ambiguous(err, 2)

	layer, err := f.Catalog.Layer("topp:states")
	if f.NoError(err) {
		f.Equal("states", layer.Name)
		f.Equal("topp:states", layer.ResourceName)
		f.Equal(gsconfig.FeatureTypeKind, layer.ResourceKind)
		f.Equal("VECTOR", layer.Type)
		f.Contains(layer.ResourceHref, "/workspaces/topp/datastores/states/featuretypes/states.xml")
	}

	// An unqualified name matches by its local part
	layer, err = f.Catalog.Layer("counties")
	if f.NoError(err) {
		f.Equal("topp:counties", layer.ResourceName)
	}

	layer, err = f.Catalog.Layer("dem")
	if f.NoError(err) {
		f.Equal(gsconfig.CoverageKind, layer.ResourceKind)
		f.Equal("RASTER", layer.Type)
	}

	_, err = f.Catalog.Layer("nope")
	f.NotFound(err, "layer")
	_, err = f.Catalog.Layer("topp:nope")
	f.NotFound(err, "layer")
}

func TestLayerResource(t *testing.T) {
	f := newLayerFixture(t)
	layer, err := f.Catalog.Layer("sf:states")
	require.NoError(t, err)

	resource, err := f.Catalog.LayerResource(layer)
	if f.NoError(err) {
		f.Equal("states", resource.Name)
		f.Equal("census", resource.Store)
		f.Equal("sf", resource.Workspace)
	}

	layers, err := f.Catalog.Layers(resource)
	if f.NoError(err) && f.Len(layers, 1) {
		f.Equal("sf:states", layers[0].ResourceName)
	}

	layers, err = f.Catalog.Layers(nil)
	if f.NoError(err) {
		f.Len(layers, 4)
	}
}

func TestSaveLayer(t *testing.T) {
	f := newLayerFixture(t)
	require.NoError(t, f.Catalog.CreateStyle("outline", []byte("<StyledLayerDescriptor/>"), false))

	layer, err := f.Catalog.Layer("topp:states")
	require.NoError(t, err)
	layer.DefaultStyle = "outline"
	layer.Styles = []string{"outline"}
	f.NoError(f.Catalog.Save(layer))

	layer, err = f.Catalog.Layer("topp:states")
	if f.NoError(err) {
		f.Equal("outline", layer.DefaultStyle)
		f.Equal([]string{"outline"}, layer.Styles)
	}

	// The style is in use
	style, err := f.Catalog.Style("outline", "")
	require.NoError(t, err)
	f.Error(f.Catalog.Delete(style, true, false))

	// A style that does not exist is refused
	layer.DefaultStyle = "nope"
	f.Error(f.Catalog.Save(layer))
}

func TestDeleteLayer(t *testing.T) {
	f := newLayerFixture(t)
	layer, err := f.Catalog.Layer("topp:counties")
	require.NoError(t, err)

	f.NoError(f.Catalog.Delete(layer, false, true))
	_, err = f.Catalog.Layer("counties")
	f.NotFound(err, "layer")
	_, err = f.Catalog.Resource("counties", "states", "topp")
	f.NotFound(err, "resource")
}
