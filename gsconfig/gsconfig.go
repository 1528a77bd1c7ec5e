// Package gsconfig defines an abstract API to the configuration
// catalog of a GeoServer instance.
//
// The catalog holds workspaces, which group stores; stores, which
// connect to a source of geospatial data; resources, which are the
// individual datasets a store exposes; layers, which pair a resource
// with rendering styles; styles; and layer groups, which alias an
// ordered set of layers.
//
// Everything returned from a Catalog is a read-through snapshot of
// remote state.  Changing a returned value does nothing until it is
// passed back to Catalog.Save(); two lookups of the same name may
// return different values if something else changed the server in
// between.
//
// Lookups by name either find exactly one object, or fail with
// ErrNotFound or ErrAmbiguousRequest.  They never silently pick one of
// several candidates.
//
// The restclient package provides the HTTP implementation.
package gsconfig

import "io"

// Catalog is the principal interface to a GeoServer configuration.
// Implementations are not required to be safe for concurrent use.
type Catalog interface {
	// About returns the server's human-readable version page.  If
	// the server does not provide one, returns a fixed message
	// rather than an error.
	About() (string, error)

	// Version returns the GeoServer version string.  Servers
	// older than 2.3 do not report a version; if the catalog is
	// otherwise reachable this returns "2.2.x".
	Version() (string, error)

	// Reload asks the server to reload its configuration from
	// disk.
	Reload() error

	// Workspaces returns every workspace.
	Workspaces() ([]*Workspace, error)

	// Workspace finds a workspace by name.
	Workspace(name string) (*Workspace, error)

	// DefaultWorkspace returns the workspace used when none is
	// named.
	DefaultWorkspace() (*Workspace, error)

	// SetDefaultWorkspace changes the default workspace.  The
	// named workspace must exist.
	SetDefaultWorkspace(name string) error

	// CreateWorkspace creates a workspace and its namespace with
	// the given URI, and returns the new workspace.
	CreateWorkspace(name, uri string) (*Workspace, error)

	// Stores returns every store in a workspace, data stores
	// first.  An empty workspace returns the stores of every
	// workspace.
	Stores(workspace string) ([]*Store, error)

	// Store finds a data store or coverage store by name.  If
	// workspace is empty every workspace is searched, and the
	// name must be unique across all of them.
	Store(name, workspace string) (*Store, error)

	// CreateDataStore creates a data store with arbitrary
	// connection parameters.  An empty workspace means the
	// default workspace.
	CreateDataStore(name, workspace string, params map[string]string) (*Store, error)

	// CreatePostGISStore creates, or with overwrite updates, a
	// data store backed by a PostGIS database.  If overwrite is
	// set and an existing store already points at the same
	// host, port, database and user, nothing is sent.
	CreatePostGISStore(name, workspace string, opts PostGISOptions, overwrite bool) error

	// CreatePostGISFeatureType publishes a table of an existing
	// PostGIS store as a feature type.
	CreatePostGISFeatureType(name, store, workspace, srs string) error

	// CreateShapefileStore uploads a zipped shapefile bundle as
	// a new data store.
	CreateShapefileStore(name, workspace string, bundle io.Reader, overwrite bool, charset string) error

	// AddDataToStore uploads a zipped shapefile bundle into an
	// existing data store.
	AddDataToStore(store, workspace string, bundle io.Reader, overwrite bool, charset string) error

	// CreateCoverageStore uploads raster data as a new coverage
	// store.
	CreateCoverageStore(name, workspace string, data io.Reader, format CoverageFormat, overwrite bool) error

	// Resources returns the resources in a store, in every store
	// of a workspace, or (with both empty) everywhere.
	Resources(store, workspace string) ([]*Resource, error)

	// Resource finds a resource by name, optionally scoped by
	// store and workspace.
	Resource(name, store, workspace string) (*Resource, error)

	// Layers returns every layer, or if resource is non-nil, only
	// the layers publishing that resource.
	Layers(resource *Resource) ([]*Layer, error)

	// Layer finds a layer by name.  The name may be qualified
	// with its workspace, "topp:states".
	Layer(name string) (*Layer, error)

	// LayerResource returns the resource a layer publishes.
	LayerResource(layer *Layer) (*Resource, error)

	// Styles returns every global style.
	Styles() ([]*Style, error)

	// Style finds a style by name.  With an empty workspace, a
	// global style of that name is preferred, and otherwise the
	// name must be unique across workspaces.
	Style(name, workspace string) (*Style, error)

	// StyleSLD returns the SLD document of a style.
	StyleSLD(style *Style) ([]byte, error)

	// CreateStyle creates a global style from an SLD document, or
	// with overwrite replaces the document of an existing one.
	CreateStyle(name string, sld []byte, overwrite bool) error

	// LayerGroups returns every layer group.
	LayerGroups() ([]*LayerGroup, error)

	// LayerGroup finds a layer group by name.
	LayerGroup(name string) (*LayerGroup, error)

	// CreateLayerGroup creates a layer group from parallel lists
	// of layer and style names.  styles may be shorter than
	// layers; missing styles are the layers' defaults.
	CreateLayerGroup(name string, layers, styles []string, bounds *Bounds) (*LayerGroup, error)

	// Save sends an object's representation back to the server.
	Save(obj Saver) error

	// Delete removes an object.  purge additionally deletes files
	// on the server, such as a style's SLD.  recurse additionally
	// deletes dependent objects, such as a layer's resource.
	Delete(obj Entity, purge, recurse bool) error
}

// PostGISOptions are the connection parameters of a PostGIS store.
type PostGISOptions struct {
	Host     string
	Port     int
	Database string
	Schema   string
	User     string
	Password string
}

// DefaultPostGISOptions returns the options used for anything left
// unset: localhost:5432, database "db", schema "public", user
// "postgres".
func DefaultPostGISOptions() PostGISOptions {
	return PostGISOptions{
		Host:     "localhost",
		Port:     5432,
		Database: "db",
		Schema:   "public",
		User:     "postgres",
	}
}

// CoverageFormat selects how raster data is uploaded.
type CoverageFormat int

const (
	// GeoTIFF is a single self-describing GeoTIFF file.
	GeoTIFF CoverageFormat = iota

	// WorldImage is an archive of an image and its world file.
	WorldImage
)

// Extension returns the upload file extension GeoServer uses to pick
// a format.
func (f CoverageFormat) Extension() string {
	if f == WorldImage {
		return "worldimage"
	}
	return "geotiff"
}

func (f CoverageFormat) String() string {
	return f.Extension()
}
