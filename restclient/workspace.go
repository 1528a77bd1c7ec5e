// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/http"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// workspace builds the handle for a named workspace.  This does not
// contact the server.
func (c *restCatalog) workspace(name string) (*gsconfig.Workspace, error) {
	vars := map[string]interface{}{"workspace": name}
	href, err := c.rest.Template(workspacePath, vars)
	if err != nil {
		return nil, err
	}
	dataStores, err := c.rest.Template(dataStoresPath, vars)
	if err != nil {
		return nil, err
	}
	coverageStores, err := c.rest.Template(coverageStoresPath, vars)
	if err != nil {
		return nil, err
	}
	return &gsconfig.Workspace{
		Name:              name,
		Href:              href.String(),
		DataStoresURL:     dataStores.String(),
		CoverageStoresURL: coverageStores.String(),
	}, nil
}

func (c *restCatalog) Workspaces() ([]*gsconfig.Workspace, error) {
	var list restdata.WorkspaceList
	if err := c.getXML(workspacesPath, nil, &list); err != nil {
		return nil, err
	}
	result := make([]*gsconfig.Workspace, 0, len(list.Workspaces))
	for _, ref := range list.Workspaces {
		ws, err := c.workspace(ref.Name)
		if err != nil {
			return nil, err
		}
		result = append(result, ws)
	}
	return result, nil
}

func (c *restCatalog) Workspace(name string) (*gsconfig.Workspace, error) {
	all, err := c.Workspaces()
	if err != nil {
		return nil, err
	}
	var candidates []*gsconfig.Workspace
	for _, ws := range all {
		if ws.Name == name {
			candidates = append(candidates, ws)
		}
	}
	return unique("workspace", name, "", candidates)
}

func (c *restCatalog) DefaultWorkspace() (*gsconfig.Workspace, error) {
	var repr restdata.Workspace
	if err := c.getXML(defaultWorkspacePath, nil, &repr); err != nil {
		if isMissing(err) {
			err = gsconfig.ErrNotFound{Kind: "workspace", Name: "default"}
		}
		return nil, err
	}
	return c.workspace(repr.Name)
}

// workspaceName returns name, or if it is empty, the name of the
// default workspace.
func (c *restCatalog) workspaceName(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	ws, err := c.DefaultWorkspace()
	if err != nil {
		return "", err
	}
	return ws.Name, nil
}

func (c *restCatalog) SetDefaultWorkspace(name string) error {
	ws, err := c.Workspace(name)
	if err != nil {
		return err
	}
	body, err := ws.Message()
	if err != nil {
		return err
	}
	u, err := c.rest.Template(defaultWorkspacePath, nil)
	if err != nil {
		return err
	}
	return c.change(http.MethodPut, u, restdata.XMLMediaType, body, successful)
}

func (c *restCatalog) CreateWorkspace(name, uri string) (*gsconfig.Workspace, error) {
	body, err := restdata.Encode(restdata.Namespace{Prefix: name, URI: uri})
	if err != nil {
		return nil, err
	}
	err = c.upload(http.MethodPost, namespacesPath, nil, restdata.XMLMediaType, body, successful)
	if err != nil {
		return nil, err
	}
	return c.Workspace(name)
}
