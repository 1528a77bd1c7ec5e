// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// storeRef is one entry in a workspace's store indexes.  The kind is
// decided by which index listed it.
type storeRef struct {
	kind      gsconfig.StoreKind
	workspace string
	name      string
}

// storeRefs lists the data stores and then the coverage stores of a
// workspace.  If the workspace does not exist returns ErrNotFound.
func (c *restCatalog) storeRefs(workspace string) ([]storeRef, error) {
	vars := map[string]interface{}{"workspace": workspace}
	var dataStores restdata.DataStoreList
	err := c.getXML(dataStoresPath, vars, &dataStores)
	var coverageStores restdata.CoverageStoreList
	if err == nil {
		err = c.getXML(coverageStoresPath, vars, &coverageStores)
	}
	if isMissing(err) {
		return nil, gsconfig.ErrNotFound{Kind: "workspace", Name: workspace}
	}
	if err != nil {
		return nil, err
	}

	refs := make([]storeRef, 0, len(dataStores.DataStores)+len(coverageStores.CoverageStores))
	for _, ref := range dataStores.DataStores {
		refs = append(refs, storeRef{gsconfig.DataStoreKind, workspace, ref.Name})
	}
	for _, ref := range coverageStores.CoverageStores {
		refs = append(refs, storeRef{gsconfig.CoverageStoreKind, workspace, ref.Name})
	}
	return refs, nil
}

// store fetches the full representation of a store.
func (c *restCatalog) store(ref storeRef) (*gsconfig.Store, error) {
	storeTemplate, resourcesTemplate, _ := storePaths(ref.kind)
	vars := map[string]interface{}{
		"workspace": ref.workspace,
		"store":     ref.name,
	}
	href, err := c.rest.Template(storeTemplate, vars)
	if err != nil {
		return nil, err
	}
	resources, err := c.rest.Template(resourcesTemplate, vars)
	if err != nil {
		return nil, err
	}
	payload, err := c.fetch(href)
	if isMissing(err) {
		return nil, gsconfig.ErrNotFound{Kind: "store", Name: ref.name, Scope: ref.workspace}
	}
	if err != nil {
		return nil, err
	}

	store := &gsconfig.Store{
		Kind:         ref.kind,
		Name:         ref.name,
		Workspace:    ref.workspace,
		Href:         href.String(),
		ResourcesURL: resources.String(),
	}
	if ref.kind == gsconfig.CoverageStoreKind {
		var repr restdata.CoverageStore
		if err = restdata.Decode(href.String(), payload, &repr); err != nil {
			return nil, err
		}
		store.Type = repr.Type
		store.Description = repr.Description
		store.Enabled = restdata.BoolValue(repr.Enabled, true)
		store.URL = repr.URL
	} else {
		var repr restdata.DataStore
		if err = restdata.Decode(href.String(), payload, &repr); err != nil {
			return nil, err
		}
		store.Type = repr.Type
		store.Description = repr.Description
		store.Enabled = restdata.BoolValue(repr.Enabled, true)
		store.ConnectionParameters = repr.ConnectionParameters.Map()
	}
	return store, nil
}

// storesIn returns every store in one workspace.
func (c *restCatalog) storesIn(workspace string) ([]*gsconfig.Store, error) {
	refs, err := c.storeRefs(workspace)
	if err != nil {
		return nil, err
	}
	result := make([]*gsconfig.Store, 0, len(refs))
	for _, ref := range refs {
		store, err := c.store(ref)
		if err != nil {
			return nil, err
		}
		result = append(result, store)
	}
	return result, nil
}

// storeIn finds a store by name in one workspace.  A data store and
// a coverage store with the same name are ambiguous.
func (c *restCatalog) storeIn(name, workspace string) (*gsconfig.Store, error) {
	refs, err := c.storeRefs(workspace)
	if err != nil {
		return nil, err
	}
	var candidates []storeRef
	for _, ref := range refs {
		if ref.name == name {
			candidates = append(candidates, ref)
		}
	}
	ref, err := unique("store", name, workspace, candidates)
	if err != nil {
		return nil, err
	}
	return c.store(ref)
}

// existingStore looks for a store that a creation would collide
// with.  It returns nil and no error if there is none.
func (c *restCatalog) existingStore(name, workspace string) (*gsconfig.Store, error) {
	store, err := c.storeIn(name, workspace)
	var notFound gsconfig.ErrNotFound
	if errors.As(err, &notFound) && notFound.Kind == "store" {
		return nil, nil
	}
	return store, err
}

func (c *restCatalog) Stores(workspace string) ([]*gsconfig.Store, error) {
	if workspace != "" {
		return c.storesIn(workspace)
	}
	workspaces, err := c.Workspaces()
	if err != nil {
		return nil, err
	}
	var result []*gsconfig.Store
	for _, ws := range workspaces {
		stores, err := c.storesIn(ws.Name)
		if err != nil {
			return nil, err
		}
		result = append(result, stores...)
	}
	return result, nil
}

func (c *restCatalog) Store(name, workspace string) (*gsconfig.Store, error) {
	if workspace != "" {
		return c.storeIn(name, workspace)
	}
	workspaces, err := c.Workspaces()
	if err != nil {
		return nil, err
	}
	found, err := gather(workspaces, func(ws *gsconfig.Workspace) ([]*gsconfig.Store, error) {
		store, err := c.storeIn(name, ws.Name)
		if err != nil {
			return nil, err
		}
		return []*gsconfig.Store{store}, nil
	})
	if err != nil {
		return nil, err
	}
	return unique("store", name, "", found)
}

func (c *restCatalog) CreateDataStore(name, workspace string, params map[string]string) (*gsconfig.Store, error) {
	workspace, err := c.workspaceName(workspace)
	if err != nil {
		return nil, err
	}
	existing, err := c.existingStore(name, workspace)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, gsconfig.ErrConflictingData{Kind: "store", Name: name, Scope: workspace}
	}

	body, err := restdata.Encode(restdata.DataStore{
		Name:                 name,
		Enabled:              restdata.Bool(true),
		ConnectionParameters: restdata.ParametersFromMap(params),
	})
	if err != nil {
		return nil, err
	}
	vars := map[string]interface{}{"workspace": workspace}
	err = c.upload(http.MethodPost, dataStoresPath, vars, restdata.XMLMediaType, body, successful)
	if err != nil {
		return nil, err
	}
	return c.storeIn(name, workspace)
}

// postGISParameters fills in defaults for unset options and returns
// the store's connection parameters.
func postGISParameters(opts gsconfig.PostGISOptions) map[string]string {
	defaults := gsconfig.DefaultPostGISOptions()
	if opts.Host == "" {
		opts.Host = defaults.Host
	}
	if opts.Port == 0 {
		opts.Port = defaults.Port
	}
	if opts.Database == "" {
		opts.Database = defaults.Database
	}
	if opts.Schema == "" {
		opts.Schema = defaults.Schema
	}
	return map[string]string{
		"host":     opts.Host,
		"port":     strconv.Itoa(opts.Port),
		"database": opts.Database,
		"schema":   opts.Schema,
		"user":     opts.User,
		"passwd":   opts.Password,
		"dbtype":   "postgis",
	}
}

// sameDatabase reports whether two sets of PostGIS connection
// parameters point at the same database as the same user.
func sameDatabase(a, b map[string]string) bool {
	for _, key := range []string{"host", "port", "database", "user"} {
		if a[key] != b[key] {
			return false
		}
	}
	return true
}

func (c *restCatalog) CreatePostGISStore(name, workspace string, opts gsconfig.PostGISOptions, overwrite bool) error {
	if opts.User == "" && opts.Password == "" {
		return gsconfig.ErrEmptyCredentials
	}
	if opts.User == "" {
		return gsconfig.ErrNoUser
	}
	workspace, err := c.workspaceName(workspace)
	if err != nil {
		return err
	}
	existing, err := c.existingStore(name, workspace)
	if err != nil {
		return err
	}

	params := postGISParameters(opts)
	if existing != nil {
		// a coverage store cannot be turned into a data store
		if !overwrite || existing.Kind != gsconfig.DataStoreKind {
			return gsconfig.ErrConflictingData{Kind: "store", Name: name, Scope: workspace}
		}
		if sameDatabase(existing.ConnectionParameters, params) {
			c.rest.Log().WithField("store", existing.String()).Debug("PostGIS store already exists")
			return nil
		}
	}

	body, err := restdata.Encode(restdata.DataStore{
		Name:                 name,
		ConnectionParameters: restdata.ParametersFromMap(params),
	})
	if err != nil {
		return err
	}
	vars := map[string]interface{}{"workspace": workspace, "store": name}
	ok := exactly(http.StatusOK, http.StatusCreated)
	if existing != nil {
		return c.upload(http.MethodPut, dataStorePath, vars, restdata.XMLMediaType, body, ok)
	}
	return c.upload(http.MethodPost, dataStoresPath, vars, restdata.XMLMediaType, body, ok)
}

// DefaultSRS is the coordinate reference system of a published
// PostGIS table if none is given.
const DefaultSRS = "EPSG:4326"

func (c *restCatalog) CreatePostGISFeatureType(name, store, workspace, srs string) error {
	workspace, err := c.workspaceName(workspace)
	if err != nil {
		return err
	}
	if srs == "" {
		srs = DefaultSRS
	}
	repr := restdata.Resource{
		Name:             name,
		Title:            name,
		SRS:              srs,
		ProjectionPolicy: "REPROJECT_TO_DECLARED",
		Enabled:          restdata.Bool(true),
	}
	repr.XMLName.Local = restdata.FeatureTypeElement
	body, err := restdata.Encode(repr)
	if err != nil {
		return err
	}
	vars := map[string]interface{}{"workspace": workspace, "store": store}
	ok := exactly(http.StatusOK, http.StatusCreated)
	return c.upload(http.MethodPost, featureTypesPath, vars, restdata.XMLMediaType, body, ok)
}
