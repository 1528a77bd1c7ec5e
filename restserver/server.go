// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"fmt"
	"net/http"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/memory"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

// NewRouter creates a new HTTP handler that serves the REST
// configuration API of an in-memory catalog.  All resources are under
// the URL path root, e.g. /workspaces/topp.xml.  For more control over
// this setup, create a mux.Router and call PopulateRouter instead.
func NewRouter(c *memory.Catalog) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, c)
	return r
}

// PopulateRouter adds the REST routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the API under the path a real GeoServer uses:
//
//     import "github.com/diffeo/go-gsconfig/memory"
//     import "github.com/gorilla/mux"
//     r := mux.NewRouter()
//     s := r.PathPrefix("/geoserver/rest").Subrouter()
//     c := memory.New()
//     PopulateRouter(s, c)
func PopulateRouter(r *mux.Router, c *memory.Catalog) {
	api := &restAPI{Catalog: c, Router: r}
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the REST API.
type restAPI struct {
	Catalog *memory.Catalog
	Router  *mux.Router
}

// storeRoutes names the routes of one kind of store.
type storeRoutes struct {
	kind      gsconfig.StoreKind
	path      string
	list      string
	one       string
	file      string
	resources string
	resource  string
}

var dataStoreRoutes = storeRoutes{
	kind:      gsconfig.DataStoreKind,
	path:      "/workspaces/{workspace}/datastores",
	list:      "dataStores",
	one:       "dataStore",
	file:      "dataStoreFile",
	resources: "featureTypes",
	resource:  "featureType",
}

var coverageStoreRoutes = storeRoutes{
	kind:      gsconfig.CoverageStoreKind,
	path:      "/workspaces/{workspace}/coveragestores",
	list:      "coverageStores",
	one:       "coverageStore",
	file:      "coverageStoreFile",
	resources: "coverages",
	resource:  "coverage",
}

// resourcePath returns the URL path segment of this kind of store's
// resources.
func (routes storeRoutes) resourcePath() string {
	if routes.kind == gsconfig.CoverageStoreKind {
		return "coverages"
	}
	return "featuretypes"
}

// PopulateRouter adds all URL paths to a router.  Routes with fixed
// names must come before patterns that would also match them.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	r.Path("/about/version.xml").Name("version").Handler(&resourceHandler{
		Context: api.Context,
		Get:     api.VersionGet,
	})
	r.Path("/about/version.html").Name("about").Handler(&resourceHandler{
		Context: api.Context,
		Get:     api.AboutGet,
	})
	r.Path("/reload").Name("reload").Handler(&resourceHandler{
		Context: api.Context,
		Put:     api.ReloadPost,
		Post:    api.ReloadPost,
	})

	api.populateWorkspaces(r)
	api.populateStores(r, dataStoreRoutes)
	api.populateStores(r, coverageStoreRoutes)
	api.populateLayers(r)
	api.populateStyles(r)
	api.populateLayerGroups(r)
	api.populateImports(r)
}

func (api *restAPI) VersionGet(ctx *context) (interface{}, error) {
	version := api.Catalog.Version()
	if version == "" {
		return nil, restdata.ErrNotFound{Err: fmt.Errorf("No version information")}
	}
	return restdata.About{
		Resources: []restdata.AboutResource{
			{Name: "GeoServer", Version: version},
			{Name: "GeoTools"},
		},
	}, nil
}

func (api *restAPI) AboutGet(ctx *context) (interface{}, error) {
	version := api.Catalog.Version()
	if version == "" {
		return nil, restdata.ErrNotFound{Err: fmt.Errorf("No version information")}
	}
	page := fmt.Sprintf("<html><head><title>GeoServer Version</title></head>"+
		"<body><h2>GeoServer</h2><p>Version: %s</p></body></html>", version)
	return responseRaw{ContentType: "text/html", Body: []byte(page)}, nil
}

func (api *restAPI) ReloadPost(ctx *context, in interface{}) (interface{}, error) {
	return nil, api.Catalog.Reload()
}

// refList builds index entries for a set of names, each linking to a
// route that takes the name as its last parameter.
func refList(urls *urlBuilder, names []string, route string, params ...string) []restdata.Ref {
	refs := make([]restdata.Ref, len(names))
	for i, name := range names {
		args := append(append([]string(nil), params...), name)
		refs[i] = urls.Ref(name, route, args...)
	}
	return refs
}
