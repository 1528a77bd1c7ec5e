// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// layerNames lists the names in the flat layer index.  GeoServer
// qualifies these with the workspace prefix.
func (c *restCatalog) layerNames() ([]string, error) {
	var list restdata.LayerList
	if err := c.getXML(layersPath, nil, &list); err != nil {
		return nil, err
	}
	names := make([]string, len(list.Layers))
	for i, ref := range list.Layers {
		names[i] = ref.Name
	}
	return names, nil
}

// layer fetches the full representation of a layer.
func (c *restCatalog) layer(name string) (*gsconfig.Layer, error) {
	href, err := c.rest.Template(layerPath, map[string]interface{}{"layer": name})
	if err != nil {
		return nil, err
	}
	payload, err := c.fetch(href)
	if isMissing(err) {
		return nil, gsconfig.ErrNotFound{Kind: "layer", Name: name}
	}
	if err != nil {
		return nil, err
	}
	var repr restdata.Layer
	if err = restdata.Decode(href.String(), payload, &repr); err != nil {
		return nil, err
	}

	layer := &gsconfig.Layer{
		Name:         repr.Name,
		Type:         repr.Type,
		DefaultStyle: restdata.RefName(repr.DefaultStyle),
		Enabled:      restdata.BoolValue(repr.Enabled, true),
		Href:         href.String(),
	}
	if layer.Name == "" {
		layer.Name = name
	}
	if repr.Styles != nil {
		for _, style := range repr.Styles.Styles {
			layer.Styles = append(layer.Styles, style.Name)
		}
	}
	if repr.Resource != nil {
		layer.ResourceName = repr.Resource.Name
		layer.ResourceKind = gsconfig.FeatureTypeKind
		if repr.Resource.Class == restdata.CoverageElement {
			layer.ResourceKind = gsconfig.CoverageKind
		}
		if repr.Resource.Link != nil {
			layer.ResourceHref = repr.Resource.Link.Href
		}
	}
	return layer, nil
}

func (c *restCatalog) Layers(resource *gsconfig.Resource) ([]*gsconfig.Layer, error) {
	names, err := c.layerNames()
	if err != nil {
		return nil, err
	}
	var result []*gsconfig.Layer
	for _, name := range names {
		layer, err := c.layer(name)
		if err != nil {
			return nil, err
		}
		if resource != nil && (layer.ResourceName != resource.QualifiedName() || layer.ResourceKind != resource.Kind) {
			continue
		}
		result = append(result, layer)
	}
	return result, nil
}

func (c *restCatalog) Layer(name string) (*gsconfig.Layer, error) {
	if workspace, _ := restdata.SplitQualifiedName(name); workspace != "" {
		return c.layer(name)
	}

	names, err := c.layerNames()
	if err != nil {
		return nil, err
	}
	var candidates []string
	for _, candidate := range names {
		_, local := restdata.SplitQualifiedName(candidate)
		if candidate == name || local == name {
			candidates = append(candidates, candidate)
		}
	}
	match, err := unique("layer", name, "", candidates)
	if err != nil {
		return nil, err
	}
	return c.layer(match)
}

func (c *restCatalog) LayerResource(layer *gsconfig.Layer) (*gsconfig.Resource, error) {
	workspace, name := restdata.SplitQualifiedName(layer.ResourceName)
	return c.Resource(name, "", workspace)
}
