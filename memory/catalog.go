// Package memory provides an in-process, in-memory emulation of a
// GeoServer configuration catalog.  There is no persistence, nor is
// there any automatic sharing.  The entire catalog is behind a single
// global lock to protect against concurrent updates.
//
// This is mostly intended as a test fixture: the restserver package
// publishes it over HTTP with the same documents a real GeoServer
// produces, so that the restclient package can be tested without one.
// It models the parts of GeoServer's behavior that clients depend on:
// workspaces own stores and styles, stores own resources, publishing
// a resource creates a layer for it, and deleting anything that still
// has dependents fails unless the delete is recursive.
//
// Values returned from a Catalog are copies.  Changing them has no
// effect until they are passed back to an update method.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// DefaultVersion is the GeoServer version a new catalog reports.
const DefaultVersion = "2.11.2"

// Catalog is the complete in-memory state of one emulated server.
type Catalog struct {
	sem sync.Mutex

	version          string
	workspaces       map[string]*memWorkspace
	defaultWorkspace string
	styles           map[string]*memStyle
	layers           map[string]*gsconfig.Layer
	layerGroups      map[string]*gsconfig.LayerGroup
	imports          map[int]*memImport
	nextImport       int
}

// New creates a new, empty catalog.
func New() *Catalog {
	return &Catalog{
		version:     DefaultVersion,
		workspaces:  make(map[string]*memWorkspace),
		styles:      make(map[string]*memStyle),
		layers:      make(map[string]*gsconfig.Layer),
		layerGroups: make(map[string]*gsconfig.LayerGroup),
		imports:     make(map[int]*memImport),
	}
}

// Version returns the server version.  An empty string means the
// server predates version reporting.
func (c *Catalog) Version() string {
	c.sem.Lock()
	defer c.sem.Unlock()
	return c.version
}

// SetVersion changes the reported server version.  Setting it to ""
// emulates a GeoServer older than 2.3.
func (c *Catalog) SetVersion(version string) {
	c.sem.Lock()
	defer c.sem.Unlock()
	c.version = version
}

// Reload does nothing; there is no on-disk configuration to reread.
func (c *Catalog) Reload() error {
	return nil
}

// sortedKeys returns the keys of any string-keyed map, sorted.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func notFound(kind, name, scope string) error {
	return restdata.ErrNotFound{Err: gsconfig.ErrNotFound{Kind: kind, Name: name, Scope: scope}}
}

func conflict(kind, name, scope string) error {
	return restdata.ErrConflict{Err: gsconfig.ErrConflictingData{Kind: kind, Name: name, Scope: scope}}
}

func forbidden(format string, args ...interface{}) error {
	return restdata.ErrForbidden{Err: fmt.Errorf(format, args...)}
}

func badRequest(format string, args ...interface{}) error {
	return restdata.ErrBadRequest{Err: fmt.Errorf(format, args...)}
}
