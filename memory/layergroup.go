// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
)

func cloneLayerGroup(g gsconfig.LayerGroup) gsconfig.LayerGroup {
	g.Layers = append([]string(nil), g.Layers...)
	g.Styles = append([]string(nil), g.Styles...)
	if g.Bounds != nil {
		bounds := *g.Bounds
		g.Bounds = &bounds
	}
	return g
}

// LayerGroupNames returns the names of all layer groups, sorted.
func (c *Catalog) LayerGroupNames() []string {
	c.sem.Lock()
	defer c.sem.Unlock()
	return sortedKeys(c.layerGroups)
}

// LayerGroup returns a copy of a layer group.
func (c *Catalog) LayerGroup(name string) (gsconfig.LayerGroup, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	group := c.layerGroups[name]
	if group == nil {
		return gsconfig.LayerGroup{}, notFound("layer group", name, "")
	}
	return cloneLayerGroup(*group), nil
}

// checkLayerGroup validates the members of a layer group and pads its
// styles to match.  It assumes the global lock.
func (c *Catalog) checkLayerGroup(group *gsconfig.LayerGroup) error {
	if len(group.Layers) == 0 {
		return badRequest("Layer group %s has no layers", group.Name)
	}
	if len(group.Styles) > len(group.Layers) {
		return badRequest("Layer group %s has more styles than layers", group.Name)
	}
	for _, layer := range group.Layers {
		if _, err := c.layerKey(layer); err != nil {
			return badRequest("Layer group %s: no such layer %s", group.Name, layer)
		}
	}
	for len(group.Styles) < len(group.Layers) {
		group.Styles = append(group.Styles, "")
	}
	return nil
}

// CreateLayerGroup adds a layer group.  Every member layer must exist.
func (c *Catalog) CreateLayerGroup(group gsconfig.LayerGroup) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	if group.Name == "" {
		return badRequest("layer group name is required")
	}
	if _, exists := c.layerGroups[group.Name]; exists {
		return conflict("layer group", group.Name, "")
	}
	group = cloneLayerGroup(group)
	if err := c.checkLayerGroup(&group); err != nil {
		return err
	}
	group.Href = ""
	c.layerGroups[group.Name] = &group
	return nil
}

// UpdateLayerGroup replaces the members and bounds of a layer group.
func (c *Catalog) UpdateLayerGroup(name string, update gsconfig.LayerGroup) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	if _, exists := c.layerGroups[name]; !exists {
		return notFound("layer group", name, "")
	}
	update = cloneLayerGroup(update)
	update.Name = name
	update.Href = ""
	if err := c.checkLayerGroup(&update); err != nil {
		return err
	}
	c.layerGroups[name] = &update
	return nil
}

// DeleteLayerGroup removes a layer group.  Its layers are unaffected.
func (c *Catalog) DeleteLayerGroup(name string) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	if _, exists := c.layerGroups[name]; !exists {
		return notFound("layer group", name, "")
	}
	delete(c.layerGroups, name)
	return nil
}
