package gsconfig

import (
	"net/http"

	"github.com/diffeo/go-gsconfig/restdata"
)

// Entity is anything in the catalog with its own REST location.
type Entity interface {
	// Location returns the absolute URL of the object's full
	// representation.
	Location() string
}

// Saver is an Entity that can be sent back to the server.
type Saver interface {
	Entity

	// SaveMethod returns the HTTP method used to save the object.
	SaveMethod() string

	// Message returns the XML body sent when saving the object.
	Message() ([]byte, error)
}

// StoreKind distinguishes the two disjoint kinds of store.  It is
// fixed when a store is read, by which index listed it.
type StoreKind int

const (
	// DataStoreKind is a vector data store, such as a PostGIS
	// database or a directory of shapefiles.
	DataStoreKind StoreKind = iota + 1

	// CoverageStoreKind is a raster store, such as a GeoTIFF.
	CoverageStoreKind
)

func (k StoreKind) String() string {
	switch k {
	case DataStoreKind:
		return "dataStore"
	case CoverageStoreKind:
		return "coverageStore"
	default:
		return "unknown store kind"
	}
}

// ResourceKind distinguishes vector from raster resources.
type ResourceKind int

const (
	// FeatureTypeKind is a vector resource in a data store.
	FeatureTypeKind ResourceKind = iota + 1

	// CoverageKind is a raster resource in a coverage store.
	CoverageKind
)

// Element returns the XML root element name of this kind of resource.
func (k ResourceKind) Element() string {
	if k == CoverageKind {
		return restdata.CoverageElement
	}
	return restdata.FeatureTypeElement
}

func (k ResourceKind) String() string {
	return k.Element()
}

// ResourceKind returns the kind of resource a store of this kind
// holds.
func (k StoreKind) ResourceKind() ResourceKind {
	if k == CoverageStoreKind {
		return CoverageKind
	}
	return FeatureTypeKind
}

// Bounds is an envelope in a named coordinate reference system.
type Bounds struct {
	MinX, MaxX float64
	MinY, MaxY float64
	CRS        string
}

// BoundsFrom converts a wire bounding box; nil stays nil.
func BoundsFrom(bbox *restdata.BoundingBox) *Bounds {
	if bbox == nil {
		return nil
	}
	return &Bounds{
		MinX: bbox.MinX,
		MaxX: bbox.MaxX,
		MinY: bbox.MinY,
		MaxY: bbox.MaxY,
		CRS:  bbox.CRS,
	}
}

// BoundingBox converts b to its wire form; nil stays nil.
func (b *Bounds) BoundingBox() *restdata.BoundingBox {
	if b == nil {
		return nil
	}
	return &restdata.BoundingBox{
		MinX: b.MinX,
		MaxX: b.MaxX,
		MinY: b.MinY,
		MaxY: b.MaxY,
		CRS:  b.CRS,
	}
}

// Workspace is a logical namespace grouping stores.
type Workspace struct {
	Name string

	// Href is the URL of the workspace itself.
	Href string

	// DataStoresURL is the URL of the workspace's data store
	// index.
	DataStoresURL string

	// CoverageStoresURL is the URL of the workspace's coverage
	// store index.
	CoverageStoresURL string
}

func (w *Workspace) String() string {
	return w.Name
}

// Location implements Entity.
func (w *Workspace) Location() string {
	return w.Href
}

// SaveMethod implements Saver.
func (w *Workspace) SaveMethod() string {
	return http.MethodPut
}

// Message implements Saver.
func (w *Workspace) Message() ([]byte, error) {
	return restdata.Encode(restdata.Workspace{Name: w.Name})
}

// Store is a connection to a source of geospatial data.  Kind says
// which of the two variants this is; ConnectionParameters is only
// meaningful for data stores and URL only for coverage stores.
type Store struct {
	Kind        StoreKind
	Name        string
	Workspace   string
	Href        string
	Type        string
	Description string
	Enabled     bool

	// ConnectionParameters holds a data store's connection
	// settings, such as "host" and "dbtype".
	ConnectionParameters map[string]string

	// URL is the location of a coverage store's data, usually a
	// file: URL on the server.
	URL string

	// ResourcesURL is the index of the store's feature types or
	// coverages.
	ResourcesURL string
}

func (s *Store) String() string {
	return s.Workspace + ":" + s.Name
}

// Location implements Entity.
func (s *Store) Location() string {
	return s.Href
}

// SaveMethod implements Saver.
func (s *Store) SaveMethod() string {
	return http.MethodPut
}

// Message implements Saver.
func (s *Store) Message() ([]byte, error) {
	if s.Kind == CoverageStoreKind {
		return restdata.Encode(restdata.CoverageStore{
			Name:        s.Name,
			Description: s.Description,
			Type:        s.Type,
			Enabled:     restdata.Bool(s.Enabled),
			URL:         s.URL,
		})
	}
	return restdata.Encode(restdata.DataStore{
		Name:                 s.Name,
		Description:          s.Description,
		Type:                 s.Type,
		Enabled:              restdata.Bool(s.Enabled),
		ConnectionParameters: restdata.ParametersFromMap(s.ConnectionParameters),
	})
}

// Resource is a single dataset exposed by a store.
type Resource struct {
	Kind              ResourceKind
	Name              string
	NativeName        string
	Title             string
	Abstract          string
	Keywords          []string
	SRS               string
	Enabled           bool
	LatLonBoundingBox *Bounds
	Store             string
	Workspace         string
	Href              string
}

// QualifiedName returns the resource name prefixed by its workspace,
// which is how layers refer to it.
func (r *Resource) QualifiedName() string {
	return restdata.QualifyName(r.Workspace, r.Name)
}

// Location implements Entity.
func (r *Resource) Location() string {
	return r.Href
}

// SaveMethod implements Saver.
func (r *Resource) SaveMethod() string {
	return http.MethodPut
}

// Message implements Saver.
func (r *Resource) Message() ([]byte, error) {
	repr := restdata.Resource{
		Name:              r.Name,
		NativeName:        r.NativeName,
		Title:             r.Title,
		Abstract:          r.Abstract,
		SRS:               r.SRS,
		LatLonBoundingBox: r.LatLonBoundingBox.BoundingBox(),
		Enabled:           restdata.Bool(r.Enabled),
	}
	repr.XMLName.Local = r.Kind.Element()
	if len(r.Keywords) > 0 {
		repr.Keywords = &restdata.Keywords{Strings: r.Keywords}
	}
	return restdata.Encode(repr)
}

// Layer is a resource published with a display style.
type Layer struct {
	Name         string
	Type         string
	DefaultStyle string
	Styles       []string

	// ResourceName is the workspace-qualified name of the
	// published resource.
	ResourceName string

	// ResourceKind says whether the resource is a feature type or
	// a coverage.
	ResourceKind ResourceKind

	// ResourceHref is the resource's URL as the server reported
	// it.
	ResourceHref string

	Enabled bool
	Href    string
}

// Location implements Entity.
func (l *Layer) Location() string {
	return l.Href
}

// SaveMethod implements Saver.
func (l *Layer) SaveMethod() string {
	return http.MethodPut
}

// Message implements Saver.
func (l *Layer) Message() ([]byte, error) {
	repr := restdata.Layer{
		Name:    l.Name,
		Enabled: restdata.Bool(l.Enabled),
	}
	if l.DefaultStyle != "" {
		repr.DefaultStyle = &restdata.Ref{Name: l.DefaultStyle}
	}
	if len(l.Styles) > 0 {
		repr.Styles = &restdata.StyleRefs{}
		for _, style := range l.Styles {
			repr.Styles.Styles = append(repr.Styles.Styles, restdata.Ref{Name: style})
		}
	}
	return restdata.Encode(repr)
}

// Style is a named rendering style.  Workspace is empty for global
// styles.
type Style struct {
	Name      string
	Workspace string
	Format    string
	Filename  string
	Href      string
}

// Location implements Entity.
func (s *Style) Location() string {
	return s.Href
}

// SaveMethod implements Saver.
func (s *Style) SaveMethod() string {
	return http.MethodPut
}

// Message implements Saver.
func (s *Style) Message() ([]byte, error) {
	return restdata.Encode(restdata.Style{
		Name:     s.Name,
		Format:   s.Format,
		Filename: s.Filename,
	})
}

// LayerGroup is a named, ordered set of layers with their styles.
// Layers and Styles are parallel; an empty style is the layer's
// default.
type LayerGroup struct {
	Name      string
	Workspace string
	Layers    []string
	Styles    []string
	Bounds    *Bounds
	Href      string
}

// Location implements Entity.
func (g *LayerGroup) Location() string {
	return g.Href
}

// SaveMethod implements Saver.
func (g *LayerGroup) SaveMethod() string {
	return http.MethodPut
}

// Message implements Saver.
func (g *LayerGroup) Message() ([]byte, error) {
	return restdata.Encode(LayerGroupRepresentation(g.Name, g.Layers, g.Styles, g.Bounds))
}

// LayerGroupRepresentation builds the wire form of a layer group.
// The style list is padded with defaults to the length of layers.
func LayerGroupRepresentation(name string, layers, styles []string, bounds *Bounds) restdata.LayerGroup {
	repr := restdata.LayerGroup{
		Name:   name,
		Layers: &restdata.LayerRefs{},
		Styles: &restdata.StyleRefs{},
		Bounds: bounds.BoundingBox(),
	}
	for i, layer := range layers {
		repr.Layers.Layers = append(repr.Layers.Layers, restdata.Ref{Name: layer})
		style := ""
		if i < len(styles) {
			style = styles[i]
		}
		repr.Styles.Styles = append(repr.Styles.Styles, restdata.Ref{Name: style})
	}
	return repr
}
