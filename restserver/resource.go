// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) populateResources(r *mux.Router, routes storeRoutes) {
	path := routes.path + "/{store}/" + routes.resourcePath()
	route(r, routes.resources, path, &resourceHandler{
		Representation: restdata.Resource{},
		Context:        api.Context,
		Get:            api.resourcesGet(routes),
		Post:           api.resourcesPost(routes),
	})
	route(r, routes.resource, path+"/{resource}", &resourceHandler{
		Representation: restdata.Resource{},
		Context:        api.Context,
		Get:            api.resourceGet(routes),
		Put:            api.resourcePut(routes),
		Delete:         api.resourceDelete(routes),
	})
}

func (api *restAPI) resourcesGet(routes storeRoutes) func(*context) (interface{}, error) {
	return func(ctx *context) (interface{}, error) {
		names, err := api.Catalog.ResourceNames(ctx.Workspace, routes.kind, ctx.Store)
		if err != nil {
			return nil, err
		}
		urls := buildURLs(api.Router, ctx)
		refs := refList(urls, names, routes.resource, "workspace", ctx.Workspace, "store", ctx.Store, "resource")
		if routes.kind == gsconfig.CoverageStoreKind {
			return restdata.CoverageList{Coverages: refs}, urls.Error
		}
		return restdata.FeatureTypeList{FeatureTypes: refs}, urls.Error
	}
}

func (api *restAPI) resourcesPost(routes storeRoutes) func(*context, interface{}) (interface{}, error) {
	return func(ctx *context, in interface{}) (interface{}, error) {
		repr, valid := in.(restdata.Resource)
		if !valid {
			return nil, errUnmarshal
		}
		resource := mergeResource(gsconfig.Resource{Enabled: true}, repr)
		resource.Name = repr.Name
		resource.Workspace = ctx.Workspace
		resource.Store = ctx.Store
		if err := api.Catalog.CreateResource(routes.kind, resource); err != nil {
			return nil, err
		}
		return api.created(ctx, resource.Name, routes.resource,
			"workspace", ctx.Workspace, "store", ctx.Store, "resource", resource.Name)
	}
}

func (api *restAPI) resourceGet(routes storeRoutes) func(*context) (interface{}, error) {
	return func(ctx *context) (interface{}, error) {
		resource, err := api.Catalog.Resource(ctx.Workspace, routes.kind, ctx.Store, ctx.Resource)
		if err != nil {
			return nil, err
		}
		urls := buildURLs(api.Router, ctx)
		namespace := urls.Ref(ctx.Workspace, "workspace", "workspace", ctx.Workspace)
		store := urls.Ref(restdata.QualifyName(ctx.Workspace, ctx.Store), routes.one,
			"workspace", ctx.Workspace, "store", ctx.Store)
		repr := restdata.Resource{
			Name:              resource.Name,
			NativeName:        resource.NativeName,
			Namespace:         &namespace,
			Title:             resource.Title,
			Abstract:          resource.Abstract,
			SRS:               resource.SRS,
			LatLonBoundingBox: resource.LatLonBoundingBox.BoundingBox(),
			Enabled:           restdata.Bool(resource.Enabled),
			Store:             &store,
		}
		repr.XMLName.Local = routes.kind.ResourceKind().Element()
		if len(resource.Keywords) > 0 {
			repr.Keywords = &restdata.Keywords{Strings: resource.Keywords}
		}
		return repr, urls.Error
	}
}

func (api *restAPI) resourcePut(routes storeRoutes) func(*context, interface{}) (interface{}, error) {
	return func(ctx *context, in interface{}) (interface{}, error) {
		repr, valid := in.(restdata.Resource)
		if !valid {
			return nil, errUnmarshal
		}
		resource, err := api.Catalog.Resource(ctx.Workspace, routes.kind, ctx.Store, ctx.Resource)
		if err != nil {
			return nil, err
		}
		resource = mergeResource(resource, repr)
		return nil, api.Catalog.UpdateResource(ctx.Workspace, routes.kind, ctx.Store, ctx.Resource, resource)
	}
}

func (api *restAPI) resourceDelete(routes storeRoutes) func(*context) (interface{}, error) {
	return func(ctx *context) (interface{}, error) {
		recurse := ctx.BoolParam("recurse", false)
		return nil, api.Catalog.DeleteResource(ctx.Workspace, routes.kind, ctx.Store, ctx.Resource, recurse)
	}
}

// mergeResource applies the fields present in a resource document to
// resource.  The name is not changed.
func mergeResource(resource gsconfig.Resource, repr restdata.Resource) gsconfig.Resource {
	if repr.NativeName != "" {
		resource.NativeName = repr.NativeName
	}
	if repr.Title != "" {
		resource.Title = repr.Title
	}
	if repr.Abstract != "" {
		resource.Abstract = repr.Abstract
	}
	if repr.Keywords != nil {
		resource.Keywords = repr.Keywords.Strings
	}
	if repr.SRS != "" {
		resource.SRS = repr.SRS
	}
	if repr.LatLonBoundingBox != nil {
		resource.LatLonBoundingBox = gsconfig.BoundsFrom(repr.LatLonBoundingBox)
	}
	resource.Enabled = restdata.BoolValue(repr.Enabled, resource.Enabled)
	return resource
}
