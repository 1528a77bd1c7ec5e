// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"fmt"

	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) populateWorkspaces(r *mux.Router) {
	route(r, "workspaces", "/workspaces", &resourceHandler{
		Representation: restdata.Workspace{},
		Context:        api.Context,
		Get:            api.WorkspacesGet,
		Post:           api.WorkspacesPost,
	})
	route(r, "defaultWorkspace", "/workspaces/default", &resourceHandler{
		Representation: restdata.Workspace{},
		Context:        api.Context,
		Get:            api.DefaultWorkspaceGet,
		Put:            api.DefaultWorkspacePut,
	})
	route(r, "workspace", "/workspaces/{workspace}", &resourceHandler{
		Representation: restdata.Workspace{},
		Context:        api.Context,
		Get:            api.WorkspaceGet,
		Put:            api.WorkspacePut,
		Delete:         api.WorkspaceDelete,
	})
	route(r, "namespaces", "/namespaces", &resourceHandler{
		Representation: restdata.Namespace{},
		Context:        api.Context,
		Post:           api.NamespacesPost,
	})
}

// workspaceRepresentation builds the full representation of a
// workspace that is known to exist.
func (api *restAPI) workspaceRepresentation(ctx *context, name string) (restdata.Workspace, error) {
	urls := buildURLs(api.Router, ctx)
	repr := restdata.Workspace{
		Name:           name,
		DataStores:     &restdata.LinkHolder{Link: urls.Link("dataStores", "workspace", name)},
		CoverageStores: &restdata.LinkHolder{Link: urls.Link("coverageStores", "workspace", name)},
	}
	return repr, urls.Error
}

func (api *restAPI) WorkspacesGet(ctx *context) (interface{}, error) {
	urls := buildURLs(api.Router, ctx)
	resp := restdata.WorkspaceList{
		Workspaces: refList(urls, api.Catalog.WorkspaceNames(), "workspace", "workspace"),
	}
	return resp, urls.Error
}

func (api *restAPI) WorkspacesPost(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Workspace)
	if !valid {
		return nil, errUnmarshal
	}
	if err := api.Catalog.CreateWorkspace(repr.Name, "http://"+repr.Name); err != nil {
		return nil, err
	}
	return api.created(ctx, repr.Name, "workspace", "workspace", repr.Name)
}

func (api *restAPI) NamespacesPost(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Namespace)
	if !valid {
		return nil, errUnmarshal
	}
	if err := api.Catalog.CreateWorkspace(repr.Prefix, repr.URI); err != nil {
		return nil, err
	}
	return api.created(ctx, repr.Prefix, "workspace", "workspace", repr.Prefix)
}

// created builds a 201 response pointing at a named route, with the
// new object's name as the body.
func (api *restAPI) created(ctx *context, name, route string, params ...string) (interface{}, error) {
	urls := buildURLs(api.Router, ctx)
	location := urls.URL(route, params...)
	return responseCreated{Location: location, Body: name}, urls.Error
}

func (api *restAPI) DefaultWorkspaceGet(ctx *context) (interface{}, error) {
	name, err := api.Catalog.DefaultWorkspace()
	if err != nil {
		return nil, err
	}
	return api.workspaceRepresentation(ctx, name)
}

func (api *restAPI) DefaultWorkspacePut(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Workspace)
	if !valid {
		return nil, errUnmarshal
	}
	return nil, api.Catalog.SetDefaultWorkspace(repr.Name)
}

func (api *restAPI) WorkspaceGet(ctx *context) (interface{}, error) {
	if _, _, err := api.Catalog.Workspace(ctx.Workspace); err != nil {
		return nil, err
	}
	return api.workspaceRepresentation(ctx, ctx.Workspace)
}

// WorkspacePut accepts a workspace document, but workspaces have no
// settings to change other than their name, and renaming is not
// supported.
func (api *restAPI) WorkspacePut(ctx *context, in interface{}) (interface{}, error) {
	repr, valid := in.(restdata.Workspace)
	if !valid {
		return nil, errUnmarshal
	}
	if _, _, err := api.Catalog.Workspace(ctx.Workspace); err != nil {
		return nil, err
	}
	if repr.Name != "" && repr.Name != ctx.Workspace {
		return nil, restdata.ErrForbidden{Err: fmt.Errorf("Can't change the name of workspace %s", ctx.Workspace)}
	}
	return nil, nil
}

func (api *restAPI) WorkspaceDelete(ctx *context) (interface{}, error) {
	return nil, api.Catalog.DeleteWorkspace(ctx.Workspace, ctx.BoolParam("recurse", false))
}
