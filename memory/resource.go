// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

func cloneResource(r gsconfig.Resource) gsconfig.Resource {
	if r.Keywords != nil {
		r.Keywords = append([]string(nil), r.Keywords...)
	}
	if r.LatLonBoundingBox != nil {
		bbox := *r.LatLonBoundingBox
		r.LatLonBoundingBox = &bbox
	}
	return r
}

// resource finds a resource.  It assumes the global lock.
func (c *Catalog) resource(workspace string, kind gsconfig.StoreKind, storeName, name string) (*memWorkspace, *memStore, *gsconfig.Resource, error) {
	ws, store, err := c.store(workspace, kind, storeName)
	if err != nil {
		return nil, nil, nil, err
	}
	resource := store.resources[name]
	if resource == nil {
		scope := restdata.QualifyName(workspace, storeName)
		return nil, nil, nil, notFound(kind.ResourceKind().String(), name, scope)
	}
	return ws, store, resource, nil
}

// ResourceNames returns the names of the resources in a store,
// sorted.
func (c *Catalog) ResourceNames(workspace string, kind gsconfig.StoreKind, store string) ([]string, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, s, err := c.store(workspace, kind, store)
	if err != nil {
		return nil, err
	}
	return sortedKeys(s.resources), nil
}

// Resource returns a copy of a resource.
func (c *Catalog) Resource(workspace string, kind gsconfig.StoreKind, store, name string) (gsconfig.Resource, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, _, resource, err := c.resource(workspace, kind, store, name)
	if err != nil {
		return gsconfig.Resource{}, err
	}
	return cloneResource(*resource), nil
}

// CreateResource publishes a new resource from an existing store, and
// creates a layer for it.  The resource's Workspace and Store name the
// store, and its kind must match the store's.
func (c *Catalog) CreateResource(kind gsconfig.StoreKind, resource gsconfig.Resource) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	if resource.Name == "" {
		return badRequest("resource name is required")
	}
	ws, store, err := c.store(resource.Workspace, kind, resource.Store)
	if err != nil {
		return err
	}
	if _, exists := store.resources[resource.Name]; exists {
		scope := restdata.QualifyName(resource.Workspace, resource.Store)
		return conflict(kind.ResourceKind().String(), resource.Name, scope)
	}
	if _, exists := c.layers[restdata.QualifyName(ws.name, resource.Name)]; exists {
		return conflict("layer", resource.Name, ws.name)
	}
	resource.Kind = kind.ResourceKind()
	c.publish(ws, store, resource)
	return nil
}

// publish adds or replaces a resource in a store, and creates its
// layer if there is none.  It assumes the global lock.
func (c *Catalog) publish(ws *memWorkspace, store *memStore, resource gsconfig.Resource) {
	resource.Workspace = ws.name
	resource.Store = store.store.Name
	resource.Href = ""
	if resource.NativeName == "" {
		resource.NativeName = resource.Name
	}
	if resource.Title == "" {
		resource.Title = resource.Name
	}
	stored := cloneResource(resource)
	store.resources[resource.Name] = &stored

	key := restdata.QualifyName(ws.name, resource.Name)
	if _, exists := c.layers[key]; exists {
		return
	}
	layer := &gsconfig.Layer{
		Name:         resource.Name,
		Type:         "VECTOR",
		DefaultStyle: "polygon",
		ResourceName: key,
		ResourceKind: resource.Kind,
		Enabled:      true,
	}
	if resource.Kind == gsconfig.CoverageKind {
		layer.Type = "RASTER"
		layer.DefaultStyle = "raster"
	}
	c.layers[key] = layer
}

// UpdateResource replaces the settings of an existing resource.  Its
// name, kind, and location cannot change.
func (c *Catalog) UpdateResource(workspace string, kind gsconfig.StoreKind, store, name string, update gsconfig.Resource) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, s, _, err := c.resource(workspace, kind, store, name)
	if err != nil {
		return err
	}
	update.Kind = kind.ResourceKind()
	update.Name = name
	update.Workspace = workspace
	update.Store = store
	update.Href = ""
	stored := cloneResource(update)
	s.resources[name] = &stored
	return nil
}

// DeleteResource removes a resource.  Unless recurse is set, no layer
// may publish it; with it, those layers are deleted too.
func (c *Catalog) DeleteResource(workspace string, kind gsconfig.StoreKind, store, name string, recurse bool) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	ws, s, _, err := c.resource(workspace, kind, store, name)
	if err != nil {
		return err
	}
	return c.deleteResource(ws, s, name, recurse)
}

func (c *Catalog) deleteResource(ws *memWorkspace, store *memStore, name string, recurse bool) error {
	qualified := restdata.QualifyName(ws.name, name)
	var dependents []string
	for key, layer := range c.layers {
		if layer.ResourceName == qualified {
			dependents = append(dependents, key)
		}
	}
	if len(dependents) > 0 && !recurse {
		return forbidden("Resource %s is published by %d layer(s)", qualified, len(dependents))
	}
	for _, key := range dependents {
		c.deleteLayer(key)
	}
	delete(store.resources, name)
	return nil
}
