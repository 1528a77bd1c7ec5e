// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/mitchellh/mapstructure"
)

// Seed describes initial catalog contents, typically read from a
// YAML file.  Load it with Catalog.Load().
//
//     version: 2.11.2
//     default_workspace: topp
//     workspaces:
//       - name: topp
//         uri: http://www.openplans.org/topp
//         datastores:
//           - name: states_shapefile
//             type: Shapefile
//             parameters:
//               url: file:data/shapefiles/states.shp
//             resources:
//               - name: states
//                 srs: EPSG:4326
//     styles:
//       - name: polygon
//         sld: <StyledLayerDescriptor .../>
type Seed struct {
	Version          string
	DefaultWorkspace string `mapstructure:"default_workspace"`
	Workspaces       []SeedWorkspace
	Styles           []SeedStyle
	LayerGroups      []SeedLayerGroup `mapstructure:"layergroups"`
}

// SeedWorkspace describes one workspace and its contents.
type SeedWorkspace struct {
	Name           string
	URI            string
	DataStores     []SeedStore `mapstructure:"datastores"`
	CoverageStores []SeedStore `mapstructure:"coveragestores"`
	Styles         []SeedStyle
}

// SeedStore describes one store and its resources.
type SeedStore struct {
	Name        string
	Type        string
	Description string
	Parameters  map[string]string
	URL         string
	Resources   []SeedResource
}

// SeedResource describes one published resource.
type SeedResource struct {
	Name     string
	Title    string
	Abstract string
	SRS      string
	Keywords []string
}

// SeedStyle describes a style and its SLD body.
type SeedStyle struct {
	Name     string
	Filename string
	SLD      string
}

// SeedLayerGroup describes a layer group.
type SeedLayerGroup struct {
	Name   string
	Layers []string
	Styles []string
}

// DecodeSeed converts a generic map, as produced by a YAML or JSON
// parser, into a Seed.  Scalar values are converted to strings where
// needed, so that "port: 5432" is accepted as a parameter.
func DecodeSeed(input interface{}) (Seed, error) {
	var seed Seed
	config := mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &seed,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(input)
	}
	return seed, err
}

// Load adds the contents of seed to the catalog.  Objects are created
// in dependency order, so layer groups may name layers published by
// seeded resources.  This stops at the first error, leaving whatever
// was already created.
func (c *Catalog) Load(seed Seed) error {
	if seed.Version != "" {
		c.SetVersion(seed.Version)
	}
	for _, style := range seed.Styles {
		if err := c.loadStyle("", style); err != nil {
			return err
		}
	}
	for _, ws := range seed.Workspaces {
		if err := c.CreateWorkspace(ws.Name, ws.URI); err != nil {
			return err
		}
		for _, style := range ws.Styles {
			if err := c.loadStyle(ws.Name, style); err != nil {
				return err
			}
		}
		for _, store := range ws.DataStores {
			if err := c.loadStore(ws.Name, gsconfig.DataStoreKind, store); err != nil {
				return err
			}
		}
		for _, store := range ws.CoverageStores {
			if err := c.loadStore(ws.Name, gsconfig.CoverageStoreKind, store); err != nil {
				return err
			}
		}
	}
	if seed.DefaultWorkspace != "" {
		if err := c.SetDefaultWorkspace(seed.DefaultWorkspace); err != nil {
			return err
		}
	}
	for _, group := range seed.LayerGroups {
		err := c.CreateLayerGroup(gsconfig.LayerGroup{
			Name:   group.Name,
			Layers: group.Layers,
			Styles: group.Styles,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) loadStyle(workspace string, style SeedStyle) error {
	err := c.CreateStyle(gsconfig.Style{
		Name:      style.Name,
		Workspace: workspace,
		Filename:  style.Filename,
	})
	if err == nil && style.SLD != "" {
		err = c.PutStyleSLD(workspace, style.Name, []byte(style.SLD))
	}
	return err
}

func (c *Catalog) loadStore(workspace string, kind gsconfig.StoreKind, store SeedStore) error {
	err := c.CreateStore(gsconfig.Store{
		Kind:                 kind,
		Name:                 store.Name,
		Workspace:            workspace,
		Type:                 store.Type,
		Description:          store.Description,
		Enabled:              true,
		ConnectionParameters: store.Parameters,
		URL:                  store.URL,
	})
	if err != nil {
		return err
	}
	for _, resource := range store.Resources {
		err = c.CreateResource(kind, gsconfig.Resource{
			Name:      resource.Name,
			Title:     resource.Title,
			Abstract:  resource.Abstract,
			SRS:       resource.SRS,
			Keywords:  resource.Keywords,
			Enabled:   true,
			Store:     store.Name,
			Workspace: workspace,
		})
		if err != nil {
			return err
		}
	}
	return nil
}
