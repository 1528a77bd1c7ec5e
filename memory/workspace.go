// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
)

type memWorkspace struct {
	name           string
	uri            string
	dataStores     map[string]*memStore
	coverageStores map[string]*memStore
	styles         map[string]*memStyle
}

func newWorkspace(name, uri string) *memWorkspace {
	return &memWorkspace{
		name:           name,
		uri:            uri,
		dataStores:     make(map[string]*memStore),
		coverageStores: make(map[string]*memStore),
		styles:         make(map[string]*memStyle),
	}
}

// stores returns the store map for a kind of store.
func (ws *memWorkspace) stores(kind gsconfig.StoreKind) map[string]*memStore {
	if kind == gsconfig.CoverageStoreKind {
		return ws.coverageStores
	}
	return ws.dataStores
}

func (ws *memWorkspace) empty() bool {
	return len(ws.dataStores) == 0 && len(ws.coverageStores) == 0 && len(ws.styles) == 0
}

// workspace finds a workspace.  It assumes the global lock.
func (c *Catalog) workspace(name string) (*memWorkspace, error) {
	ws := c.workspaces[name]
	if ws == nil {
		return nil, notFound("workspace", name, "")
	}
	return ws, nil
}

// WorkspaceNames returns the names of all workspaces, sorted.
func (c *Catalog) WorkspaceNames() []string {
	c.sem.Lock()
	defer c.sem.Unlock()
	return sortedKeys(c.workspaces)
}

// Workspace returns a named workspace and its namespace URI.
func (c *Catalog) Workspace(name string) (gsconfig.Workspace, string, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	ws, err := c.workspace(name)
	if err != nil {
		return gsconfig.Workspace{}, "", err
	}
	return gsconfig.Workspace{Name: ws.name}, ws.uri, nil
}

// CreateWorkspace creates a workspace with its namespace.  The first
// workspace created becomes the default.
func (c *Catalog) CreateWorkspace(name, uri string) error {
	c.sem.Lock()
	defer c.sem.Unlock()
	return c.createWorkspace(name, uri)
}

func (c *Catalog) createWorkspace(name, uri string) error {
	if name == "" {
		return badRequest("workspace name is required")
	}
	if name == "default" {
		return badRequest("%q is a reserved workspace name", name)
	}
	if _, exists := c.workspaces[name]; exists {
		return conflict("workspace", name, "")
	}
	c.workspaces[name] = newWorkspace(name, uri)
	if c.defaultWorkspace == "" {
		c.defaultWorkspace = name
	}
	return nil
}

// DefaultWorkspace returns the name of the default workspace.
func (c *Catalog) DefaultWorkspace() (string, error) {
	c.sem.Lock()
	defer c.sem.Unlock()
	return c.defaultWorkspaceName()
}

func (c *Catalog) defaultWorkspaceName() (string, error) {
	if _, ok := c.workspaces[c.defaultWorkspace]; ok {
		return c.defaultWorkspace, nil
	}
	names := sortedKeys(c.workspaces)
	if len(names) == 0 {
		return "", notFound("workspace", "default", "")
	}
	c.defaultWorkspace = names[0]
	return c.defaultWorkspace, nil
}

// SetDefaultWorkspace changes the default workspace.
func (c *Catalog) SetDefaultWorkspace(name string) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	if _, err := c.workspace(name); err != nil {
		return err
	}
	c.defaultWorkspace = name
	return nil
}

// DeleteWorkspace removes a workspace.  Unless recurse is set, the
// workspace must have no stores or styles.
func (c *Catalog) DeleteWorkspace(name string, recurse bool) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	ws, err := c.workspace(name)
	if err != nil {
		return err
	}
	if !ws.empty() && !recurse {
		return forbidden("Workspace %s is not empty", name)
	}
	for _, kind := range []gsconfig.StoreKind{gsconfig.DataStoreKind, gsconfig.CoverageStoreKind} {
		for _, storeName := range sortedKeys(ws.stores(kind)) {
			if err = c.deleteStore(ws, kind, storeName, true); err != nil {
				return err
			}
		}
	}
	delete(c.workspaces, name)
	if c.defaultWorkspace == name {
		c.defaultWorkspace = ""
	}
	return nil
}
