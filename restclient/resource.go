// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// resourceNames lists the names of the resources in a store.
func (c *restCatalog) resourceNames(store *gsconfig.Store) ([]string, error) {
	_, indexTemplate, _ := storePaths(store.Kind)
	vars := map[string]interface{}{
		"workspace": store.Workspace,
		"store":     store.Name,
	}
	var refs []restdata.Ref
	if store.Kind == gsconfig.CoverageStoreKind {
		var list restdata.CoverageList
		if err := c.getXML(indexTemplate, vars, &list); err != nil {
			return nil, err
		}
		refs = list.Coverages
	} else {
		var list restdata.FeatureTypeList
		if err := c.getXML(indexTemplate, vars, &list); err != nil {
			return nil, err
		}
		refs = list.FeatureTypes
	}
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names, nil
}

// resource fetches the full representation of a resource in a store.
func (c *restCatalog) resource(store *gsconfig.Store, name string) (*gsconfig.Resource, error) {
	kind := store.Kind.ResourceKind()
	_, _, template := storePaths(store.Kind)
	href, err := c.rest.Template(template, map[string]interface{}{
		"workspace": store.Workspace,
		"store":     store.Name,
		"resource":  name,
	})
	if err != nil {
		return nil, err
	}
	payload, err := c.fetch(href)
	if isMissing(err) {
		return nil, gsconfig.ErrNotFound{Kind: kind.String(), Name: name, Scope: store.String()}
	}
	if err != nil {
		return nil, err
	}
	var repr restdata.Resource
	if err = restdata.Decode(href.String(), payload, &repr); err != nil {
		return nil, err
	}

	resource := &gsconfig.Resource{
		Kind:              kind,
		Name:              repr.Name,
		NativeName:        repr.NativeName,
		Title:             repr.Title,
		Abstract:          repr.Abstract,
		SRS:               repr.SRS,
		Enabled:           restdata.BoolValue(repr.Enabled, true),
		LatLonBoundingBox: gsconfig.BoundsFrom(repr.LatLonBoundingBox),
		Store:             store.Name,
		Workspace:         store.Workspace,
		Href:              href.String(),
	}
	if resource.Name == "" {
		resource.Name = name
	}
	if repr.Keywords != nil {
		resource.Keywords = repr.Keywords.Strings
	}
	return resource, nil
}

// resourcesIn returns every resource in a store.
func (c *restCatalog) resourcesIn(store *gsconfig.Store) ([]*gsconfig.Resource, error) {
	names, err := c.resourceNames(store)
	if err != nil {
		return nil, err
	}
	result := make([]*gsconfig.Resource, 0, len(names))
	for _, name := range names {
		resource, err := c.resource(store, name)
		if err != nil {
			return nil, err
		}
		result = append(result, resource)
	}
	return result, nil
}

// matchResources returns every resource in a store named name,
// usually zero or one.
func (c *restCatalog) matchResources(store *gsconfig.Store, name string) ([]*gsconfig.Resource, error) {
	names, err := c.resourceNames(store)
	if err != nil {
		return nil, err
	}
	var result []*gsconfig.Resource
	for _, candidate := range names {
		if candidate != name {
			continue
		}
		resource, err := c.resource(store, name)
		if err != nil {
			return nil, err
		}
		result = append(result, resource)
	}
	return result, nil
}

// matchResourcesInWorkspace returns every resource named name in
// any store of a workspace.
func (c *restCatalog) matchResourcesInWorkspace(workspace, name string) ([]*gsconfig.Resource, error) {
	stores, err := c.storesIn(workspace)
	if err != nil {
		return nil, err
	}
	return gather(stores, func(store *gsconfig.Store) ([]*gsconfig.Resource, error) {
		return c.matchResources(store, name)
	})
}

func (c *restCatalog) Resources(store, workspace string) ([]*gsconfig.Resource, error) {
	var stores []*gsconfig.Store
	var err error
	if store != "" {
		var s *gsconfig.Store
		s, err = c.Store(store, workspace)
		stores = []*gsconfig.Store{s}
	} else {
		stores, err = c.Stores(workspace)
	}
	if err != nil {
		return nil, err
	}

	var result []*gsconfig.Resource
	for _, s := range stores {
		resources, err := c.resourcesIn(s)
		if err != nil {
			return nil, err
		}
		result = append(result, resources...)
	}
	return result, nil
}

func (c *restCatalog) Resource(name, store, workspace string) (*gsconfig.Resource, error) {
	if store != "" {
		s, err := c.Store(store, workspace)
		if err != nil {
			return nil, err
		}
		found, err := c.matchResources(s, name)
		if err != nil {
			return nil, err
		}
		return unique("resource", name, s.String(), found)
	}

	if workspace != "" {
		found, err := c.matchResourcesInWorkspace(workspace, name)
		if err != nil {
			return nil, err
		}
		return unique("resource", name, workspace, found)
	}

	workspaces, err := c.Workspaces()
	if err != nil {
		return nil, err
	}
	found, err := gather(workspaces, func(ws *gsconfig.Workspace) ([]*gsconfig.Resource, error) {
		return c.matchResourcesInWorkspace(ws.Name, name)
	})
	if err != nil {
		return nil, err
	}
	return unique("resource", name, "", found)
}
