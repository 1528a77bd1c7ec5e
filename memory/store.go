// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"archive/zip"
	"bytes"
	"path"
	"strings"

	"github.com/diffeo/go-gsconfig/gsconfig"
)

type memStore struct {
	store     gsconfig.Store
	resources map[string]*gsconfig.Resource
}

func cloneStore(s gsconfig.Store) gsconfig.Store {
	if s.ConnectionParameters != nil {
		params := make(map[string]string, len(s.ConnectionParameters))
		for k, v := range s.ConnectionParameters {
			params[k] = v
		}
		s.ConnectionParameters = params
	}
	return s
}

// store finds a store.  It assumes the global lock.
func (c *Catalog) store(workspace string, kind gsconfig.StoreKind, name string) (*memWorkspace, *memStore, error) {
	ws, err := c.workspace(workspace)
	if err != nil {
		return nil, nil, err
	}
	store := ws.stores(kind)[name]
	if store == nil {
		return ws, nil, notFound(kind.String(), name, workspace)
	}
	return ws, store, nil
}

// StoreNames returns the names of the stores of one kind in a
// workspace, sorted.
func (c *Catalog) StoreNames(workspace string, kind gsconfig.StoreKind) ([]string, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	ws, err := c.workspace(workspace)
	if err != nil {
		return nil, err
	}
	return sortedKeys(ws.stores(kind)), nil
}

// Store returns a copy of a store.
func (c *Catalog) Store(workspace string, kind gsconfig.StoreKind, name string) (gsconfig.Store, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, store, err := c.store(workspace, kind, name)
	if err != nil {
		return gsconfig.Store{}, err
	}
	return cloneStore(store.store), nil
}

// CreateStore adds a new store.  Its workspace must exist and must
// not already have a store of the same kind and name.
func (c *Catalog) CreateStore(store gsconfig.Store) error {
	c.sem.Lock()
	defer c.sem.Unlock()
	return c.createStore(store)
}

func (c *Catalog) createStore(store gsconfig.Store) error {
	if store.Name == "" {
		return badRequest("store name is required")
	}
	if store.Kind != gsconfig.CoverageStoreKind {
		store.Kind = gsconfig.DataStoreKind
	}
	ws, err := c.workspace(store.Workspace)
	if err != nil {
		return err
	}
	stores := ws.stores(store.Kind)
	if _, exists := stores[store.Name]; exists {
		return conflict(store.Kind.String(), store.Name, store.Workspace)
	}
	store.Href = ""
	stores[store.Name] = &memStore{
		store:     cloneStore(store),
		resources: make(map[string]*gsconfig.Resource),
	}
	return nil
}

// UpdateStore replaces the settings of an existing store.  The name,
// kind, and workspace of the store cannot change.
func (c *Catalog) UpdateStore(workspace string, kind gsconfig.StoreKind, name string, update gsconfig.Store) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	_, store, err := c.store(workspace, kind, name)
	if err != nil {
		return err
	}
	update.Kind = kind
	update.Name = name
	update.Workspace = workspace
	update.Href = ""
	store.store = cloneStore(update)
	return nil
}

// DeleteStore removes a store.  Unless recurse is set, the store must
// have no resources; with it, the resources and their layers are
// deleted too.
func (c *Catalog) DeleteStore(workspace string, kind gsconfig.StoreKind, name string, recurse bool) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	ws, err := c.workspace(workspace)
	if err != nil {
		return err
	}
	return c.deleteStore(ws, kind, name, recurse)
}

func (c *Catalog) deleteStore(ws *memWorkspace, kind gsconfig.StoreKind, name string, recurse bool) error {
	stores := ws.stores(kind)
	store := stores[name]
	if store == nil {
		return notFound(kind.String(), name, ws.name)
	}
	if len(store.resources) > 0 && !recurse {
		return forbidden("Store %s:%s is not empty", ws.name, name)
	}
	for _, resource := range sortedKeys(store.resources) {
		if err := c.deleteResource(ws, store, resource, true); err != nil {
			return err
		}
	}
	delete(stores, name)
	return nil
}

// UploadShapefile stores a zipped set of shapefiles in a data store,
// creating the store if needed, and publishes one feature type and
// layer per shapefile in the bundle.  Unless update is "overwrite",
// existing feature types are left unchanged.
func (c *Catalog) UploadShapefile(workspace, store string, bundle []byte, update, charset string) error {
	c.sem.Lock()
	defer c.sem.Unlock()
	return c.uploadShapefile(workspace, store, bundle, update, charset)
}

func (c *Catalog) uploadShapefile(workspace, storeName string, bundle []byte, update, charset string) error {
	names, err := zipMembers(bundle, ".shp")
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return badRequest("Could not find appropriate shapefile in archive")
	}

	ws, store, err := c.store(workspace, gsconfig.DataStoreKind, storeName)
	if ws == nil {
		return err
	}
	if store == nil {
		params := map[string]string{
			"url":       "file:data/" + workspace + "/" + storeName,
			"namespace": ws.uri,
		}
		if charset != "" {
			params["charset"] = charset
		}
		err = c.createStore(gsconfig.Store{
			Kind:                 gsconfig.DataStoreKind,
			Name:                 storeName,
			Workspace:            workspace,
			Type:                 "Shapefile",
			Enabled:              true,
			ConnectionParameters: params,
		})
		if err != nil {
			return err
		}
		store = ws.dataStores[storeName]
	}

	for _, name := range names {
		if _, exists := store.resources[name]; exists && update != "overwrite" {
			continue
		}
		c.publish(ws, store, gsconfig.Resource{
			Kind:       gsconfig.FeatureTypeKind,
			Name:       name,
			NativeName: name,
			Title:      name,
			SRS:        "EPSG:4326",
			Enabled:    true,
		})
	}
	return nil
}

// UploadCoverage stores raster data in a coverage store, creating the
// store if needed, and publishes a coverage and layer named after the
// store.  extension selects the format, "geotiff" or "worldimage".
func (c *Catalog) UploadCoverage(workspace, storeName, extension string, data []byte) error {
	c.sem.Lock()
	defer c.sem.Unlock()
	return c.uploadCoverage(workspace, storeName, extension, data)
}

func (c *Catalog) uploadCoverage(workspace, storeName, extension string, data []byte) error {
	var storeType, file string
	switch extension {
	case "geotiff":
		if !isTIFF(data) {
			return badRequest("Uploaded data is not a GeoTIFF")
		}
		storeType = "GeoTIFF"
		file = storeName + ".tif"
	case "worldimage":
		images, err := zipMembers(data, ".png", ".jpg", ".gif", ".tif")
		if err != nil {
			return err
		}
		if len(images) == 0 {
			return badRequest("Could not find an image in archive")
		}
		storeType = "WorldImage"
		file = images[0]
	default:
		return badRequest("Unsupported coverage format %q", extension)
	}

	ws, store, err := c.store(workspace, gsconfig.CoverageStoreKind, storeName)
	if ws == nil {
		return err
	}
	if store == nil {
		err = c.createStore(gsconfig.Store{
			Kind:      gsconfig.CoverageStoreKind,
			Name:      storeName,
			Workspace: workspace,
			Type:      storeType,
			Enabled:   true,
			URL:       "file:data/" + workspace + "/" + storeName + "/" + file,
		})
		if err != nil {
			return err
		}
		store = ws.coverageStores[storeName]
	}

	c.publish(ws, store, gsconfig.Resource{
		Kind:       gsconfig.CoverageKind,
		Name:       storeName,
		NativeName: storeName,
		Title:      storeName,
		SRS:        "EPSG:4326",
		Enabled:    true,
	})
	return nil
}

// zipMembers returns the base names, without extension, of the
// members of a zip archive with any of the given extensions.
func zipMembers(bundle []byte, extensions ...string) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	if err != nil {
		return nil, badRequest("Could not read zip archive: %v", err)
	}
	var names []string
	for _, f := range archive.File {
		ext := strings.ToLower(path.Ext(f.Name))
		for _, want := range extensions {
			if ext == want {
				base := path.Base(f.Name)
				names = append(names, strings.TrimSuffix(base, path.Ext(base)))
				break
			}
		}
	}
	return names, nil
}

// isTIFF checks for either TIFF byte-order header.
func isTIFF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))
}
