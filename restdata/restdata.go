// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines the XML representations exchanged with a
// GeoServer REST configuration endpoint.  The restclient package reads
// and writes these; the restserver package produces and consumes the
// same documents so the two can be tested against each other.
//
// Index documents
//
// Every collection is published as an index document: a root element
// naming the collection, containing one short entry per member.  Each
// entry carries the member's name and an Atom link to its full
// representation, for instance
//
//     <dataStores>
//       <dataStore>
//         <name>states</name>
//         <atom:link xmlns:atom="http://www.w3.org/2005/Atom"
//             rel="alternate" type="application/xml"
//             href="http://localhost:8080/geoserver/rest/workspaces/topp/datastores/states.xml"/>
//       </dataStore>
//     </dataStores>
//
// Clients should treat the link as informational.  The URL structure
// under the service root is fixed by GeoServer, and restclient builds
// its URLs from URI templates rather than following links.
//
// Full representations
//
// A full representation is what a GET of a single member returns, and
// also what is sent back with PUT to update it.  When creating an
// object only the fields that matter need to be present; GeoServer
// fills in defaults for the rest.  Pointer-typed fields distinguish
// "absent" from "false" or "empty" so that a PUT does not reset values
// the caller never read.
//
// Names
//
// Layers are published in a flat namespace whose names are qualified
// by workspace prefix, "topp:states".  SplitQualifiedName and
// QualifyName convert between the two forms.
package restdata

import (
	"encoding/xml"
	"sort"
	"strings"
)

// XMLMediaType is the MIME type of every XML request and response body.
const XMLMediaType = "application/xml"

// TextXMLMediaType is an alternate XML MIME type GeoServer also accepts.
const TextXMLMediaType = "text/xml"

// SLDMediaType is the MIME type of a styled layer descriptor upload.
const SLDMediaType = "application/vnd.ogc.sld+xml"

// ZipMediaType is the MIME type of a zipped shapefile bundle.
const ZipMediaType = "application/zip"

// GeoTIFFMediaType is the MIME type of a single GeoTIFF upload.
const GeoTIFFMediaType = "image/tiff"

// ArchiveMediaType is the MIME type of a world image archive upload.
const ArchiveMediaType = "application/archive"

// JSONMediaType is the MIME type of the importer extension's bodies.
const JSONMediaType = "application/json"

// AtomNamespace is the XML namespace of the link elements embedded in
// index documents.
const AtomNamespace = "http://www.w3.org/2005/Atom"

// Link is an Atom link to another resource.
type Link struct {
	Rel  string `xml:"rel,attr,omitempty"`
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr,omitempty"`
}

// NewLink creates an "alternate" XML link to href.
func NewLink(href string) *Link {
	return &Link{Rel: "alternate", Href: href, Type: XMLMediaType}
}

// LinkHolder is an element whose only content is a link, such as the
// <dataStores> element inside a workspace.
type LinkHolder struct {
	Link *Link `xml:"http://www.w3.org/2005/Atom link,omitempty"`
}

// Ref is a named reference to another resource.  This is the shape of
// each entry in an index document, and of embedded references like a
// store's <workspace>.
type Ref struct {
	Name string `xml:"name"`
	Link *Link  `xml:"http://www.w3.org/2005/Atom link,omitempty"`
}

// Href returns the link target of r, or an empty string.
func (r *Ref) Href() string {
	if r == nil || r.Link == nil {
		return ""
	}
	return r.Link.Href
}

// RefName returns the name in r, or an empty string if r is nil.
func RefName(r *Ref) string {
	if r == nil {
		return ""
	}
	return r.Name
}

// Bool returns a pointer to b, for optional boolean fields.
func Bool(b bool) *bool {
	return &b
}

// BoolValue returns *b, or def if b is nil.
func BoolValue(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// WorkspaceList is the index of workspaces.
type WorkspaceList struct {
	XMLName    xml.Name `xml:"workspaces"`
	Workspaces []Ref    `xml:"workspace"`
}

// Workspace is the full representation of a workspace.  Its store
// links point at the store index documents.
type Workspace struct {
	XMLName        xml.Name    `xml:"workspace"`
	Name           string      `xml:"name"`
	DataStores     *LinkHolder `xml:"dataStores,omitempty"`
	CoverageStores *LinkHolder `xml:"coverageStores,omitempty"`
}

// Namespace is the body posted to create a workspace.  GeoServer
// creates a workspace with a matching name for every namespace.
type Namespace struct {
	XMLName xml.Name `xml:"namespace"`
	Prefix  string   `xml:"prefix"`
	URI     string   `xml:"uri"`
}

// DataStoreList is the index of data stores in one workspace.
type DataStoreList struct {
	XMLName    xml.Name `xml:"dataStores"`
	DataStores []Ref    `xml:"dataStore"`
}

// CoverageStoreList is the index of coverage stores in one workspace.
type CoverageStoreList struct {
	XMLName        xml.Name `xml:"coverageStores"`
	CoverageStores []Ref    `xml:"coverageStore"`
}

// DataStore is the full representation of a vector data store.
type DataStore struct {
	XMLName              xml.Name             `xml:"dataStore"`
	Name                 string               `xml:"name"`
	Description          string               `xml:"description,omitempty"`
	Type                 string               `xml:"type,omitempty"`
	Enabled              *bool                `xml:"enabled,omitempty"`
	Workspace            *Ref                 `xml:"workspace,omitempty"`
	ConnectionParameters ConnectionParameters `xml:"connectionParameters,omitempty"`
	FeatureTypes         *LinkHolder          `xml:"featureTypes,omitempty"`
}

// CoverageStore is the full representation of a raster store.
type CoverageStore struct {
	XMLName     xml.Name    `xml:"coverageStore"`
	Name        string      `xml:"name"`
	Description string      `xml:"description,omitempty"`
	Type        string      `xml:"type,omitempty"`
	Enabled     *bool       `xml:"enabled,omitempty"`
	Workspace   *Ref        `xml:"workspace,omitempty"`
	URL         string      `xml:"url,omitempty"`
	Coverages   *LinkHolder `xml:"coverages,omitempty"`
}

// Entry is a single key/value connection parameter.
type Entry struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// ConnectionParameters is the ordered list of a data store's
// connection parameters.  GeoServer writes these as
// <entry key="host">localhost</entry>, but also accepts one element
// per parameter, <host>localhost</host>; both forms decode here, and
// the entry form is always written.
type ConnectionParameters []Entry

// ParametersFromMap builds a parameter list from a map, in key order.
func ParametersFromMap(m map[string]string) ConnectionParameters {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make(ConnectionParameters, len(keys))
	for i, k := range keys {
		params[i] = Entry{Key: k, Value: m[k]}
	}
	return params
}

// Map returns the parameters as a map.  If a key is repeated the last
// value wins.
func (p ConnectionParameters) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, entry := range p {
		m[entry.Key] = entry.Value
	}
	return m
}

// MarshalXML writes the parameters as a sequence of entry elements
// inside start.
func (p ConnectionParameters) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	entryStart := xml.StartElement{Name: xml.Name{Local: "entry"}}
	for _, entry := range p {
		if err := e.EncodeElement(entry, entryStart); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML reads either the entry or the element-per-key form.
func (p *ConnectionParameters) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			key := t.Name.Local
			if key == "entry" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "key" {
						key = attr.Value
					}
				}
			}
			*p = append(*p, Entry{Key: key, Value: strings.TrimSpace(value)})
		case xml.EndElement:
			return nil
		}
	}
}

// FeatureTypeList is the index of feature types in one data store.
type FeatureTypeList struct {
	XMLName      xml.Name `xml:"featureTypes"`
	FeatureTypes []Ref    `xml:"featureType"`
}

// CoverageList is the index of coverages in one coverage store.
type CoverageList struct {
	XMLName   xml.Name `xml:"coverages"`
	Coverages []Ref    `xml:"coverage"`
}

// BoundingBox is an axis-aligned envelope in some coordinate
// reference system.
type BoundingBox struct {
	MinX float64 `xml:"minx"`
	MaxX float64 `xml:"maxx"`
	MinY float64 `xml:"miny"`
	MaxY float64 `xml:"maxy"`
	CRS  string  `xml:"crs,omitempty"`
}

// Keywords is a resource's keyword list.
type Keywords struct {
	Strings []string `xml:"string"`
}

// Resource is the full representation of either a feature type or a
// coverage; the two share their interesting fields.  XMLName carries
// which one it is: on decode it is whatever the document's root
// element was, and it must be set to FeatureTypeElement or
// CoverageElement before encoding.
type Resource struct {
	XMLName           xml.Name
	Name              string       `xml:"name"`
	NativeName        string       `xml:"nativeName,omitempty"`
	Namespace         *Ref         `xml:"namespace,omitempty"`
	Title             string       `xml:"title,omitempty"`
	Abstract          string       `xml:"abstract,omitempty"`
	Keywords          *Keywords    `xml:"keywords,omitempty"`
	SRS               string       `xml:"srs,omitempty"`
	ProjectionPolicy  string       `xml:"projectionPolicy,omitempty"`
	LatLonBoundingBox *BoundingBox `xml:"latLonBoundingBox,omitempty"`
	Enabled           *bool        `xml:"enabled,omitempty"`
	Store             *Ref         `xml:"store,omitempty"`
}

// FeatureTypeElement is the root element name of a vector resource.
const FeatureTypeElement = "featureType"

// CoverageElement is the root element name of a raster resource.
const CoverageElement = "coverage"

// LayerList is the flat index of all layers.
type LayerList struct {
	XMLName xml.Name `xml:"layers"`
	Layers  []Ref    `xml:"layer"`
}

// StyleRefs is a list of style references.
type StyleRefs struct {
	Styles []Ref `xml:"style"`
}

// ResourceRef is a layer's reference to its resource.  Class is
// FeatureTypeElement or CoverageElement, and Name is qualified by
// workspace.
type ResourceRef struct {
	Class string `xml:"class,attr,omitempty"`
	Name  string `xml:"name"`
	Link  *Link  `xml:"http://www.w3.org/2005/Atom link,omitempty"`
}

// Layer is the full representation of a published layer.
type Layer struct {
	XMLName      xml.Name     `xml:"layer"`
	Name         string       `xml:"name"`
	Path         string       `xml:"path,omitempty"`
	Type         string       `xml:"type,omitempty"`
	DefaultStyle *Ref         `xml:"defaultStyle,omitempty"`
	Styles       *StyleRefs   `xml:"styles,omitempty"`
	Resource     *ResourceRef `xml:"resource,omitempty"`
	Enabled      *bool        `xml:"enabled,omitempty"`
}

// StyleList is an index of styles, either global or in one workspace.
type StyleList struct {
	XMLName xml.Name `xml:"styles"`
	Styles  []Ref    `xml:"style"`
}

// Style is the full representation of a style.  The style body
// itself (the SLD document) is a separate resource.
type Style struct {
	XMLName   xml.Name `xml:"style"`
	Name      string   `xml:"name"`
	Workspace *Ref     `xml:"workspace,omitempty"`
	Format    string   `xml:"format,omitempty"`
	Filename  string   `xml:"filename,omitempty"`
}

// LayerGroupList is the index of layer groups.
type LayerGroupList struct {
	XMLName     xml.Name `xml:"layerGroups"`
	LayerGroups []Ref    `xml:"layerGroup"`
}

// LayerRefs is a list of layer references.
type LayerRefs struct {
	Layers []Ref `xml:"layer"`
}

// LayerGroup is the full representation of a layer group.  Layers and
// Styles are parallel lists; an empty style name selects the layer's
// default style.
type LayerGroup struct {
	XMLName   xml.Name     `xml:"layerGroup"`
	Name      string       `xml:"name"`
	Workspace *Ref         `xml:"workspace,omitempty"`
	Layers    *LayerRefs   `xml:"layers,omitempty"`
	Styles    *StyleRefs   `xml:"styles,omitempty"`
	Bounds    *BoundingBox `xml:"bounds,omitempty"`
}

// About is the server's version report.
type About struct {
	XMLName   xml.Name        `xml:"about"`
	Resources []AboutResource `xml:"resource"`
}

// AboutResource describes one component of the server.  The
// component named "GeoServer" carries the server version.
type AboutResource struct {
	Name           string `xml:"name,attr"`
	BuildTimestamp string `xml:"Build-Timestamp,omitempty"`
	Version        string `xml:"Version,omitempty"`
	GitRevision    string `xml:"Git-Revision,omitempty"`
}
