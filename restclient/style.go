// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/http"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// styleTemplates returns the representation and SLD templates of a
// style, which depend on whether it is global.
func styleTemplates(workspace string) (repr, sld string) {
	if workspace == "" {
		return stylePath, styleSLDPath
	}
	return workspaceStylePath, workspaceStyleSLDPath
}

// style fetches the full representation of a style.  An empty
// workspace means a global style.
func (c *restCatalog) style(workspace, name string) (*gsconfig.Style, error) {
	template, _ := styleTemplates(workspace)
	href, err := c.rest.Template(template, map[string]interface{}{
		"workspace": workspace,
		"style":     name,
	})
	if err != nil {
		return nil, err
	}
	payload, err := c.fetch(href)
	if isMissing(err) {
		return nil, gsconfig.ErrNotFound{Kind: "style", Name: name, Scope: workspace}
	}
	if err != nil {
		return nil, err
	}
	var repr restdata.Style
	if err = restdata.Decode(href.String(), payload, &repr); err != nil {
		return nil, err
	}
	style := &gsconfig.Style{
		Name:      repr.Name,
		Workspace: workspace,
		Format:    repr.Format,
		Filename:  repr.Filename,
		Href:      href.String(),
	}
	if style.Name == "" {
		style.Name = name
	}
	return style, nil
}

func (c *restCatalog) Styles() ([]*gsconfig.Style, error) {
	var list restdata.StyleList
	if err := c.getXML(stylesPath, nil, &list); err != nil {
		return nil, err
	}
	result := make([]*gsconfig.Style, 0, len(list.Styles))
	for _, ref := range list.Styles {
		style, err := c.style("", ref.Name)
		if err != nil {
			return nil, err
		}
		result = append(result, style)
	}
	return result, nil
}

func (c *restCatalog) Style(name, workspace string) (*gsconfig.Style, error) {
	if workspace != "" {
		return c.style(workspace, name)
	}

	// A global style hides any workspace style of the same name
	style, err := c.style("", name)
	if !gsconfig.IsNotFound(err) {
		return style, err
	}

	workspaces, err := c.Workspaces()
	if err != nil {
		return nil, err
	}
	found, err := gather(workspaces, func(ws *gsconfig.Workspace) ([]*gsconfig.Style, error) {
		style, err := c.style(ws.Name, name)
		if err != nil {
			return nil, err
		}
		return []*gsconfig.Style{style}, nil
	})
	if err != nil {
		return nil, err
	}
	return unique("style", name, "", found)
}

func (c *restCatalog) StyleSLD(style *gsconfig.Style) ([]byte, error) {
	_, template := styleTemplates(style.Workspace)
	u, err := c.rest.Template(template, map[string]interface{}{
		"workspace": style.Workspace,
		"style":     style.Name,
	})
	if err != nil {
		return nil, err
	}
	sld, err := c.fetch(u)
	if isMissing(err) {
		return nil, gsconfig.ErrNotFound{Kind: "style", Name: style.Name, Scope: style.Workspace}
	}
	return sld, err
}

func (c *restCatalog) CreateStyle(name string, sld []byte, overwrite bool) error {
	existing, err := c.Style(name, "")
	switch {
	case gsconfig.IsNotFound(err):
		existing = nil
	case gsconfig.IsAmbiguous(err) && !overwrite:
		return gsconfig.ErrConflictingData{Kind: "style", Name: name}
	case err != nil:
		return err
	case !overwrite:
		return gsconfig.ErrConflictingData{Kind: "style", Name: name}
	}

	workspace := ""
	if existing == nil {
		body, err := restdata.Encode(restdata.Style{
			Name:     name,
			Filename: name + ".sld",
		})
		if err != nil {
			return err
		}
		vars := map[string]interface{}{"name": name}
		err = c.upload(http.MethodPost, createStylePath, vars, restdata.XMLMediaType, body, successful)
		if err != nil {
			return err
		}
	} else {
		workspace = existing.Workspace
	}

	_, template := styleTemplates(workspace)
	vars := map[string]interface{}{"workspace": workspace, "style": name}
	return c.upload(http.MethodPut, template, vars, restdata.SLDMediaType, sld, successful)
}
