// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) populateLayers(r *mux.Router) {
	route(r, "layers", "/layers", &resourceHandler{
		Representation: restdata.Layer{},
		Context:        api.Context,
		Get:            api.LayersGet,
	})
	route(r, "layer", "/layers/{layer}", &resourceHandler{
		Representation: restdata.Layer{},
		Context:        api.Context,
		Get:            api.LayerGet,
		Put:            api.LayerPut,
		Delete:         api.LayerDelete,
	})
}

func (api *restAPI) LayersGet(ctx *context) (interface{}, error) {
	urls := buildURLs(api.Router, ctx)
	resp := restdata.LayerList{
		Layers: refList(urls, api.Catalog.LayerNames(), "layer", "layer"),
	}
	return resp, urls.Error
}

// resourceStore finds the store in a workspace that holds a
// resource, or returns an empty string.
func (api *restAPI) resourceStore(kind gsconfig.StoreKind, workspace, name string) string {
	stores, err := api.Catalog.StoreNames(workspace, kind)
	if err != nil {
		return ""
	}
	for _, store := range stores {
		resources, err := api.Catalog.ResourceNames(workspace, kind, store)
		if err != nil {
			continue
		}
		for _, resource := range resources {
			if resource == name {
				return store
			}
		}
	}
	return ""
}

// styleRef builds a reference to a style, which may be global or in
// the layer's workspace.
func (api *restAPI) styleRef(urls *urlBuilder, workspace, name string) restdata.Ref {
	if _, err := api.Catalog.Style("", name); err == nil {
		return urls.Ref(name, "style", "style", name)
	}
	if _, err := api.Catalog.Style(workspace, name); err == nil {
		return urls.Ref(name, "workspaceStyle", "workspace", workspace, "style", name)
	}
	return restdata.Ref{Name: name}
}

func (api *restAPI) LayerGet(ctx *context) (interface{}, error) {
	layer, err := api.Catalog.Layer(ctx.Layer)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	workspace, resourceName := restdata.SplitQualifiedName(layer.ResourceName)
	routes := dataStoreRoutes
	if layer.ResourceKind == gsconfig.CoverageKind {
		routes = coverageStoreRoutes
	}

	repr := restdata.Layer{
		Name:    layer.Name,
		Path:    "/",
		Type:    layer.Type,
		Enabled: restdata.Bool(layer.Enabled),
		Resource: &restdata.ResourceRef{
			Class: layer.ResourceKind.Element(),
			Name:  layer.ResourceName,
		},
	}
	if store := api.resourceStore(routes.kind, workspace, resourceName); store != "" {
		repr.Resource.Link = urls.Link(routes.resource,
			"workspace", workspace, "store", store, "resource", resourceName)
	}
	if layer.DefaultStyle != "" {
		ref := api.styleRef(urls, workspace, layer.DefaultStyle)
		repr.DefaultStyle = &ref
	}
	if len(layer.Styles) > 0 {
		repr.Styles = &restdata.StyleRefs{}
		for _, style := range layer.Styles {
			repr.Styles.Styles = append(repr.Styles.Styles, api.styleRef(urls, workspace, style))
		}
	}
	return repr, urls.Error
}

func (api *restAPI) LayerPut(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Layer)
	if !valid {
		return nil, errUnmarshal
	}
	layer, err := api.Catalog.Layer(ctx.Layer)
	if err != nil {
		return nil, err
	}
	update := gsconfig.Layer{
		DefaultStyle: restdata.RefName(repr.DefaultStyle),
		Enabled:      restdata.BoolValue(repr.Enabled, layer.Enabled),
	}
	if repr.Styles != nil {
		update.Styles = []string{}
		for _, style := range repr.Styles.Styles {
			update.Styles = append(update.Styles, style.Name)
		}
	}
	return nil, api.Catalog.UpdateLayer(ctx.Layer, update)
}

func (api *restAPI) LayerDelete(ctx *context) (interface{}, error) {
	return nil, api.Catalog.DeleteLayer(ctx.Layer, ctx.BoolParam("recurse", false))
}
