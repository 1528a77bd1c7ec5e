// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) populateLayerGroups(r *mux.Router) {
	route(r, "layerGroups", "/layergroups", &resourceHandler{
		Representation: restdata.LayerGroup{},
		Context:        api.Context,
		Get:            api.LayerGroupsGet,
		Post:           api.LayerGroupsPost,
	})
	route(r, "layerGroup", "/layergroups/{group}", &resourceHandler{
		Representation: restdata.LayerGroup{},
		Context:        api.Context,
		Get:            api.LayerGroupGet,
		Put:            api.LayerGroupPut,
		Delete:         api.LayerGroupDelete,
	})
}

// layerGroupFrom converts a layer group document.
func layerGroupFrom(repr restdata.LayerGroup) gsconfig.LayerGroup {
	group := gsconfig.LayerGroup{
		Name:   repr.Name,
		Bounds: gsconfig.BoundsFrom(repr.Bounds),
	}
	if repr.Layers != nil {
		for _, layer := range repr.Layers.Layers {
			group.Layers = append(group.Layers, layer.Name)
		}
	}
	if repr.Styles != nil {
		for _, style := range repr.Styles.Styles {
			group.Styles = append(group.Styles, style.Name)
		}
	}
	return group
}

func (api *restAPI) LayerGroupsGet(ctx *context) (interface{}, error) {
	urls := buildURLs(api.Router, ctx)
	resp := restdata.LayerGroupList{
		LayerGroups: refList(urls, api.Catalog.LayerGroupNames(), "layerGroup", "group"),
	}
	return resp, urls.Error
}

func (api *restAPI) LayerGroupsPost(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.LayerGroup)
	if !valid {
		return nil, errUnmarshal
	}
	group := layerGroupFrom(repr)
	if err := api.Catalog.CreateLayerGroup(group); err != nil {
		return nil, err
	}
	return api.created(ctx, group.Name, "layerGroup", "group", group.Name)
}

func (api *restAPI) LayerGroupGet(ctx *context) (interface{}, error) {
	group, err := api.Catalog.LayerGroup(ctx.Group)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	repr := gsconfig.LayerGroupRepresentation(group.Name, group.Layers, group.Styles, group.Bounds)
	for i := range repr.Layers.Layers {
		layer := &repr.Layers.Layers[i]
		layer.Link = urls.Link("layer", "layer", layer.Name)
	}
	return repr, urls.Error
}

func (api *restAPI) LayerGroupPut(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.LayerGroup)
	if !valid {
		return nil, errUnmarshal
	}
	group, err := api.Catalog.LayerGroup(ctx.Group)
	if err != nil {
		return nil, err
	}
	update := layerGroupFrom(repr)
	if update.Layers == nil {
		update.Layers = group.Layers
		update.Styles = group.Styles
	}
	if update.Bounds == nil {
		update.Bounds = group.Bounds
	}
	return nil, api.Catalog.UpdateLayerGroup(ctx.Group, update)
}

func (api *restAPI) LayerGroupDelete(ctx *context) (interface{}, error) {
	return nil, api.Catalog.DeleteLayerGroup(ctx.Group)
}
