// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

func cloneLayer(l gsconfig.Layer) gsconfig.Layer {
	if l.Styles != nil {
		l.Styles = append([]string(nil), l.Styles...)
	}
	return l
}

// LayerNames returns the workspace-qualified names of all layers,
// sorted.
func (c *Catalog) LayerNames() []string {
	c.sem.Lock()
	defer c.sem.Unlock()
	return sortedKeys(c.layers)
}

// layerKey resolves a layer name to its qualified key.  Unqualified
// names are accepted if they match exactly one layer.  It assumes the
// global lock.
func (c *Catalog) layerKey(name string) (string, error) {
	if _, exists := c.layers[name]; exists {
		return name, nil
	}
	if workspace, _ := restdata.SplitQualifiedName(name); workspace != "" {
		return "", notFound("layer", name, "")
	}
	var matches []string
	for key := range c.layers {
		if _, local := restdata.SplitQualifiedName(key); local == name {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return "", notFound("layer", name, "")
	case 1:
		return matches[0], nil
	default:
		return "", badRequest("Layer name %s is ambiguous", name)
	}
}

// Layer returns a copy of a layer.  Its Name is unqualified; its
// ResourceName is qualified.
func (c *Catalog) Layer(name string) (gsconfig.Layer, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	key, err := c.layerKey(name)
	if err != nil {
		return gsconfig.Layer{}, err
	}
	return cloneLayer(*c.layers[key]), nil
}

// styleExists checks for a global style, or one in workspace.  It
// assumes the global lock.
func (c *Catalog) styleExists(workspace, name string) bool {
	if _, exists := c.styles[name]; exists {
		return true
	}
	if ws := c.workspaces[workspace]; ws != nil {
		_, exists := ws.styles[name]
		return exists
	}
	return false
}

// UpdateLayer changes the styles and enabled state of a layer.  Every
// named style must exist.
func (c *Catalog) UpdateLayer(name string, update gsconfig.Layer) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	key, err := c.layerKey(name)
	if err != nil {
		return err
	}
	workspace, _ := restdata.SplitQualifiedName(key)
	for _, style := range append([]string{update.DefaultStyle}, update.Styles...) {
		if style != "" && !c.styleExists(workspace, style) {
			return badRequest("No such style %s", style)
		}
	}

	layer := c.layers[key]
	if update.DefaultStyle != "" {
		layer.DefaultStyle = update.DefaultStyle
	}
	if update.Styles != nil {
		layer.Styles = append([]string(nil), update.Styles...)
	}
	layer.Enabled = update.Enabled
	return nil
}

// DeleteLayer removes a layer.  With recurse, the resource it
// publishes is deleted as well.  A layer that is part of a layer
// group cannot be deleted.
func (c *Catalog) DeleteLayer(name string, recurse bool) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	key, err := c.layerKey(name)
	if err != nil {
		return err
	}
	for _, groupName := range sortedKeys(c.layerGroups) {
		for _, member := range c.layerGroups[groupName].Layers {
			if member == key || member == c.layers[key].Name {
				return forbidden("Layer %s is part of layer group %s", key, groupName)
			}
		}
	}

	layer := c.layers[key]
	c.deleteLayer(key)
	if !recurse {
		return nil
	}

	workspace, resource := restdata.SplitQualifiedName(layer.ResourceName)
	ws := c.workspaces[workspace]
	if ws == nil {
		return nil
	}
	kind := gsconfig.DataStoreKind
	if layer.ResourceKind == gsconfig.CoverageKind {
		kind = gsconfig.CoverageStoreKind
	}
	for _, store := range ws.stores(kind) {
		if _, exists := store.resources[resource]; exists {
			return c.deleteResource(ws, store, resource, true)
		}
	}
	return nil
}

// deleteLayer removes a layer and any references to it from layer
// groups.  It assumes the global lock.
func (c *Catalog) deleteLayer(key string) {
	layer := c.layers[key]
	delete(c.layers, key)
	if layer == nil {
		return
	}
	for _, group := range c.layerGroups {
		var layers, styles []string
		for i, member := range group.Layers {
			if member == key || member == layer.Name {
				continue
			}
			layers = append(layers, member)
			if i < len(group.Styles) {
				styles = append(styles, group.Styles[i])
			} else {
				styles = append(styles, "")
			}
		}
		group.Layers = layers
		group.Styles = styles
	}
}
