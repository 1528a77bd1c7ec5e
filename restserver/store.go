// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) populateStores(r *mux.Router, routes storeRoutes) {
	var repr interface{} = restdata.DataStore{}
	filePath := routes.path + "/{store}/file.shp"
	if routes.kind == gsconfig.CoverageStoreKind {
		repr = restdata.CoverageStore{}
		filePath = routes.path + "/{store}/file.{extension}"
	}

	route(r, routes.list, routes.path, &resourceHandler{
		Representation: repr,
		Context:        api.Context,
		Get:            api.storesGet(routes),
		Post:           api.storesPost(routes),
	})
	r.Path(filePath).Name(routes.file).Handler(&resourceHandler{
		Context: api.Context,
		Put:     api.storeFilePut(routes),
	})
	route(r, routes.one, routes.path+"/{store}", &resourceHandler{
		Representation: repr,
		Context:        api.Context,
		Get:            api.storeGet(routes),
		Put:            api.storePut(routes),
		Delete:         api.storeDelete(routes),
	})
	api.populateResources(r, routes)
}

func (api *restAPI) storesGet(routes storeRoutes) func(*context) (interface{}, error) {
	return func(ctx *context) (interface{}, error) {
		names, err := api.Catalog.StoreNames(ctx.Workspace, routes.kind)
		if err != nil {
			return nil, err
		}
		urls := buildURLs(api.Router, ctx)
		refs := refList(urls, names, routes.one, "workspace", ctx.Workspace, "store")
		if routes.kind == gsconfig.CoverageStoreKind {
			return restdata.CoverageStoreList{CoverageStores: refs}, urls.Error
		}
		return restdata.DataStoreList{DataStores: refs}, urls.Error
	}
}

func (api *restAPI) storesPost(routes storeRoutes) func(*context, interface{}) (interface{}, error) {
	return func(ctx *context, in interface{}) (interface{}, error) {
		var store gsconfig.Store
		switch repr := in.(type) {
		case restdata.DataStore:
			store = mergeDataStore(gsconfig.Store{Enabled: true}, repr)
			store.Name = repr.Name
			if store.Type == "" && store.ConnectionParameters["dbtype"] == "postgis" {
				store.Type = "PostGIS"
			}
		case restdata.CoverageStore:
			store = mergeCoverageStore(gsconfig.Store{Enabled: true}, repr)
			store.Name = repr.Name
		default:
			return nil, errUnmarshal
		}
		store.Kind = routes.kind
		store.Workspace = ctx.Workspace
		if err := api.Catalog.CreateStore(store); err != nil {
			return nil, err
		}
		return api.created(ctx, store.Name, routes.one, "workspace", ctx.Workspace, "store", store.Name)
	}
}

func (api *restAPI) storeGet(routes storeRoutes) func(*context) (interface{}, error) {
	return func(ctx *context) (interface{}, error) {
		store, err := api.Catalog.Store(ctx.Workspace, routes.kind, ctx.Store)
		if err != nil {
			return nil, err
		}
		urls := buildURLs(api.Router, ctx)
		workspace := urls.Ref(ctx.Workspace, "workspace", "workspace", ctx.Workspace)
		resources := &restdata.LinkHolder{
			Link: urls.Link(routes.resources, "workspace", ctx.Workspace, "store", ctx.Store),
		}
		if routes.kind == gsconfig.CoverageStoreKind {
			return restdata.CoverageStore{
				Name:        store.Name,
				Description: store.Description,
				Type:        store.Type,
				Enabled:     restdata.Bool(store.Enabled),
				Workspace:   &workspace,
				URL:         store.URL,
				Coverages:   resources,
			}, urls.Error
		}
		return restdata.DataStore{
			Name:                 store.Name,
			Description:          store.Description,
			Type:                 store.Type,
			Enabled:              restdata.Bool(store.Enabled),
			Workspace:            &workspace,
			ConnectionParameters: restdata.ParametersFromMap(store.ConnectionParameters),
			FeatureTypes:         resources,
		}, urls.Error
	}
}

func (api *restAPI) storePut(routes storeRoutes) func(*context, interface{}) (interface{}, error) {
	return func(ctx *context, in interface{}) (interface{}, error) {
		store, err := api.Catalog.Store(ctx.Workspace, routes.kind, ctx.Store)
		if err != nil {
			return nil, err
		}
		switch repr := in.(type) {
		case restdata.DataStore:
			store = mergeDataStore(store, repr)
		case restdata.CoverageStore:
			store = mergeCoverageStore(store, repr)
		default:
			return nil, errUnmarshal
		}
		return nil, api.Catalog.UpdateStore(ctx.Workspace, routes.kind, ctx.Store, store)
	}
}

func (api *restAPI) storeDelete(routes storeRoutes) func(*context) (interface{}, error) {
	return func(ctx *context) (interface{}, error) {
		return nil, api.Catalog.DeleteStore(ctx.Workspace, routes.kind, ctx.Store, ctx.BoolParam("recurse", false))
	}
}

// storeFilePut accepts an uploaded shapefile bundle or raster, and
// creates the store if needed.
func (api *restAPI) storeFilePut(routes storeRoutes) func(*context, interface{}) (interface{}, error) {
	return func(ctx *context, in interface{}) (interface{}, error) {
		data, valid := in.([]byte)
		if !valid {
			return nil, errUnmarshal
		}
		var err error
		if routes.kind == gsconfig.CoverageStoreKind {
			err = api.Catalog.UploadCoverage(ctx.Workspace, ctx.Store, ctx.Extension, data)
		} else {
			update := ctx.QueryParams.Get("update")
			charset := ctx.QueryParams.Get("charset")
			err = api.Catalog.UploadShapefile(ctx.Workspace, ctx.Store, data, update, charset)
		}
		if err != nil {
			return nil, err
		}
		return api.created(ctx, ctx.Store, routes.one, "workspace", ctx.Workspace, "store", ctx.Store)
	}
}

// mergeDataStore applies the fields present in a data store document
// to store.  Connection parameters are merged key by key.
func mergeDataStore(store gsconfig.Store, repr restdata.DataStore) gsconfig.Store {
	if repr.Description != "" {
		store.Description = repr.Description
	}
	if repr.Type != "" {
		store.Type = repr.Type
	}
	store.Enabled = restdata.BoolValue(repr.Enabled, store.Enabled)
	if len(repr.ConnectionParameters) > 0 {
		params := make(map[string]string, len(store.ConnectionParameters)+len(repr.ConnectionParameters))
		for k, v := range store.ConnectionParameters {
			params[k] = v
		}
		for k, v := range repr.ConnectionParameters.Map() {
			params[k] = v
		}
		store.ConnectionParameters = params
	}
	return store
}

// mergeCoverageStore applies the fields present in a coverage store
// document to store.
func mergeCoverageStore(store gsconfig.Store, repr restdata.CoverageStore) gsconfig.Store {
	if repr.Description != "" {
		store.Description = repr.Description
	}
	if repr.Type != "" {
		store.Type = repr.Type
	}
	if repr.URL != "" {
		store.URL = repr.URL
	}
	store.Enabled = restdata.BoolValue(repr.Enabled, store.Enabled)
	return store
}
