// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"net/http"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// layerGroupNames lists the names in the layer group index.
func (c *restCatalog) layerGroupNames() ([]string, error) {
	var list restdata.LayerGroupList
	if err := c.getXML(layerGroupsPath, nil, &list); err != nil {
		return nil, err
	}
	names := make([]string, len(list.LayerGroups))
	for i, ref := range list.LayerGroups {
		names[i] = ref.Name
	}
	return names, nil
}

// layerGroup fetches the full representation of a layer group.
func (c *restCatalog) layerGroup(name string) (*gsconfig.LayerGroup, error) {
	href, err := c.rest.Template(layerGroupPath, map[string]interface{}{"group": name})
	if err != nil {
		return nil, err
	}
	payload, err := c.fetch(href)
	if isMissing(err) {
		return nil, gsconfig.ErrNotFound{Kind: "layer group", Name: name}
	}
	if err != nil {
		return nil, err
	}
	var repr restdata.LayerGroup
	if err = restdata.Decode(href.String(), payload, &repr); err != nil {
		return nil, err
	}

	group := &gsconfig.LayerGroup{
		Name:      repr.Name,
		Workspace: restdata.RefName(repr.Workspace),
		Bounds:    gsconfig.BoundsFrom(repr.Bounds),
		Href:      href.String(),
	}
	if group.Name == "" {
		group.Name = name
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
	return group, nil
}

func (c *restCatalog) LayerGroups() ([]*gsconfig.LayerGroup, error) {
	names, err := c.layerGroupNames()
	if err != nil {
		return nil, err
	}
	result := make([]*gsconfig.LayerGroup, 0, len(names))
	for _, name := range names {
		group, err := c.layerGroup(name)
		if err != nil {
			return nil, err
		}
		result = append(result, group)
	}
	return result, nil
}

func (c *restCatalog) LayerGroup(name string) (*gsconfig.LayerGroup, error) {
	names, err := c.layerGroupNames()
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, candidate := range names {
		if candidate == name {
			candidates = append(candidates, candidate)
		}
	}
	match, err := unique("layer group", name, "", candidates)
	if err != nil {
		return nil, err
	}
	return c.layerGroup(match)
}

func (c *restCatalog) CreateLayerGroup(name string, layers, styles []string, bounds *gsconfig.Bounds) (*gsconfig.LayerGroup, error) {
	names, err := c.layerGroupNames()
	if err != nil {
		return nil, err
	}
	for _, existing := range names {
		if existing == name {
			return nil, gsconfig.ErrConflictingData{Kind: "layer group", Name: name}
		}
	}

	body, err := restdata.Encode(gsconfig.LayerGroupRepresentation(name, layers, styles, bounds))
	if err != nil {
		return nil, err
	}
	err = c.upload(http.MethodPost, createLayerGroupPath, nil, restdata.XMLMediaType, body, successful)
	if err != nil {
		return nil, err
	}
	return c.layerGroup(name)
}
