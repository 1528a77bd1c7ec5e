// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

// populateStyles adds the global and per-workspace style routes.  The
// SLD body routes must come first, since a style name pattern would
// also match "name.sld".
func (api *restAPI) populateStyles(r *mux.Router) {
	for _, prefix := range []string{"", "/workspaces/{workspace}"} {
		names := []string{"styles", "style", "styleSLD"}
		if prefix != "" {
			names = []string{"workspaceStyles", "workspaceStyle", "workspaceStyleSLD"}
		}
		r.Path(prefix + "/styles/{style}.sld").Name(names[2]).Handler(&resourceHandler{
			Context: api.Context,
			Get:     api.StyleSLDGet,
			Put:     api.StyleSLDPut,
		})
		route(r, names[0], prefix+"/styles", &resourceHandler{
			Representation: restdata.Style{},
			Context:        api.Context,
			Get:            api.StylesGet,
			Post:           api.StylesPost,
		})
		route(r, names[1], prefix+"/styles/{style}", &resourceHandler{
			Representation: restdata.Style{},
			Context:        api.Context,
			Get:            api.StyleGet,
			Put:            api.StylePut,
			Delete:         api.StyleDelete,
		})
	}
}

// styleRoute returns the name of the single-style route for ctx and
// its parameters.
func styleRoute(ctx *context, name string) (string, []string) {
	if ctx.Workspace == "" {
		return "style", []string{"style", name}
	}
	return "workspaceStyle", []string{"workspace", ctx.Workspace, "style", name}
}

func (api *restAPI) StylesGet(ctx *context) (interface{}, error) {
	names, err := api.Catalog.StyleNames(ctx.Workspace)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	resp := restdata.StyleList{Styles: make([]restdata.Ref, len(names))}
	for i, name := range names {
		route, params := styleRoute(ctx, name)
		resp.Styles[i] = urls.Ref(name, route, params...)
	}
	return resp, urls.Error
}

// StylesPost creates a style with no body.  The name may come from
// the document or from a "name" query parameter.
func (api *restAPI) StylesPost(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Style)
	if !valid {
		return nil, errUnmarshal
	}
	name := repr.Name
	if name == "" {
		name = ctx.QueryParams.Get("name")
	}
	if name == "" {
		return nil, restdata.ErrBadRequest{Err: errors.New("Style must have a name")}
	}
	err := api.Catalog.CreateStyle(gsconfig.Style{
		Name:      name,
		Workspace: ctx.Workspace,
		Format:    repr.Format,
		Filename:  repr.Filename,
	})
	if err != nil {
		return nil, err
	}
	route, params := styleRoute(ctx, name)
	return api.created(ctx, name, route, params...)
}

func (api *restAPI) StyleGet(ctx *context) (interface{}, error) {
	style, err := api.Catalog.Style(ctx.Workspace, ctx.Style)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	repr := restdata.Style{
		Name:     style.Name,
		Format:   style.Format,
		Filename: style.Filename,
	}
	if ctx.Workspace != "" {
		ref := urls.Ref(ctx.Workspace, "workspace", "workspace", ctx.Workspace)
		repr.Workspace = &ref
	}
	return repr, urls.Error
}

func (api *restAPI) StylePut(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Style)
	if !valid {
		return nil, errUnmarshal
	}
	style, err := api.Catalog.Style(ctx.Workspace, ctx.Style)
	if err != nil {
		return nil, err
	}
	if repr.Format != "" {
		style.Format = repr.Format
	}
	if repr.Filename != "" {
		style.Filename = repr.Filename
	}
	return nil, api.Catalog.UpdateStyle(ctx.Workspace, ctx.Style, style)
}

func (api *restAPI) StyleDelete(ctx *context) (interface{}, error) {
	return nil, api.Catalog.DeleteStyle(ctx.Workspace, ctx.Style, ctx.BoolParam("purge", false))
}

func (api *restAPI) StyleSLDGet(ctx *context) (interface{}, error) {
	sld, err := api.Catalog.StyleSLD(ctx.Workspace, ctx.Style)
	if err != nil {
		return nil, err
	}
	return responseRaw{ContentType: restdata.SLDMediaType, Body: sld}, nil
}

func (api *restAPI) StyleSLDPut(ctx *context, in interface{}) (interface{}, error) {
	sld, valid := in.([]byte)
	if !valid {
		return nil, errUnmarshal
	}
	return nil, api.Catalog.PutStyleSLD(ctx.Workspace, ctx.Style, sld)
}
