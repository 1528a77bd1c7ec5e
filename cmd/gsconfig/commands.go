// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/importer"
	"github.com/diffeo/go-gsconfig/postgis"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/satori/go.uuid"
	"github.com/urfave/cli"
)

// needArgs fails unless the command got exactly n arguments.
func needArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() != n {
		return fmt.Errorf("usage: %s %s", c.Command.Name, usage)
	}
	return nil
}

func (t *tool) println(c *cli.Context, args ...interface{}) {
	fmt.Fprintln(c.App.Writer, args...)
}

var workspaceFlag = cli.StringFlag{
	Name:  "workspace, w",
	Usage: "workspace name; the default workspace if omitted",
}

var overwriteFlag = cli.BoolFlag{
	Name:  "overwrite",
	Usage: "replace an existing object of the same name",
}

var charsetFlag = cli.StringFlag{
	Name:  "charset",
	Usage: "character set of shapefile attributes",
}

func (t *tool) commands() []cli.Command {
	return []cli.Command{
		{
			Name:  "version",
			Usage: "print the GeoServer version",
			Action: func(c *cli.Context) error {
				version, err := t.Catalog.Version()
				if err == nil {
					t.println(c, version)
				}
				return err
			},
		},
		{
			Name:  "about",
			Usage: "print the server's about page",
			Action: func(c *cli.Context) error {
				about, err := t.Catalog.About()
				if err == nil {
					t.println(c, about)
				}
				return err
			},
		},
		{
			Name:  "reload",
			Usage: "reload the catalog from disk",
			Action: func(c *cli.Context) error {
				return t.Catalog.Reload()
			},
		},
		{
			Name:   "workspaces",
			Usage:  "list workspaces",
			Action: t.listWorkspaces,
		},
		{
			Name:      "create-workspace",
			Usage:     "create a workspace",
			ArgsUsage: "NAME",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "uri",
					Usage: "namespace URI; a fresh urn:uuid: if omitted",
				},
				cli.BoolFlag{
					Name:  "default",
					Usage: "also make this the default workspace",
				},
			},
			Action: t.createWorkspace,
		},
		{
			Name:      "set-default",
			Usage:     "change the default workspace",
			ArgsUsage: "WORKSPACE",
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1, "WORKSPACE"); err != nil {
					return err
				}
				return t.Catalog.SetDefaultWorkspace(c.Args().First())
			},
		},
		{
			Name:   "stores",
			Usage:  "list stores",
			Flags:  []cli.Flag{workspaceFlag},
			Action: t.listStores,
		},
		{
			Name:  "resources",
			Usage: "list feature types and coverages",
			Flags: []cli.Flag{
				workspaceFlag,
				cli.StringFlag{Name: "store, s", Usage: "only this store"},
			},
			Action: t.listResources,
		},
		{
			Name:   "layers",
			Usage:  "list layers",
			Action: t.listLayers,
		},
		{
			Name:   "styles",
			Usage:  "list global styles",
			Action: t.listStyles,
		},
		{
			Name:   "layergroups",
			Usage:  "list layer groups",
			Action: t.listLayerGroups,
		},
		{
			Name:      "create-postgis",
			Usage:     "create a PostGIS data store",
			ArgsUsage: "NAME",
			Flags: []cli.Flag{
				workspaceFlag,
				overwriteFlag,
				cli.StringFlag{Name: "host", Usage: "database host"},
				cli.IntFlag{Name: "port", Usage: "database port"},
				cli.StringFlag{Name: "database", Usage: "database name"},
				cli.StringFlag{Name: "schema", Usage: "database schema"},
				cli.StringFlag{Name: "db-user", Usage: "database user"},
				cli.StringFlag{Name: "db-password", Usage: "database password"},
			},
			Action: t.createPostGIS,
		},
		{
			Name:      "publish",
			Usage:     "publish a table of a PostGIS store",
			ArgsUsage: "STORE TABLE",
			Flags: []cli.Flag{
				workspaceFlag,
				cli.StringFlag{Name: "srs", Usage: "declared spatial reference system"},
			},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 2, "STORE TABLE"); err != nil {
					return err
				}
				return t.Catalog.CreatePostGISFeatureType(c.Args().Get(1), c.Args().First(), c.String("workspace"), c.String("srs"))
			},
		},
		{
			Name:      "check-postgis",
			Usage:     "check that the database of a PostGIS store is reachable from here",
			ArgsUsage: "STORE",
			Flags: []cli.Flag{
				workspaceFlag,
				cli.DurationFlag{Name: "timeout", Value: 10 * time.Second, Usage: "give up after this long"},
			},
			Action: t.checkPostGIS,
		},
		{
			Name:      "upload-shapefile",
			Usage:     "upload a zipped shapefile as a new data store",
			ArgsUsage: "NAME FILE.zip",
			Flags:     []cli.Flag{workspaceFlag, overwriteFlag, charsetFlag},
			Action:    t.uploadShapefile,
		},
		{
			Name:      "add-data",
			Usage:     "upload a zipped shapefile into an existing data store",
			ArgsUsage: "STORE FILE.zip",
			Flags:     []cli.Flag{workspaceFlag, overwriteFlag, charsetFlag},
			Action:    t.addData,
		},
		{
			Name:      "upload-coverage",
			Usage:     "upload a GeoTIFF or world image archive as a new coverage store",
			ArgsUsage: "NAME FILE",
			Flags: []cli.Flag{
				workspaceFlag,
				overwriteFlag,
				cli.StringFlag{Name: "format", Value: "geotiff", Usage: "geotiff or worldimage"},
			},
			Action: t.uploadCoverage,
		},
		{
			Name:      "create-style",
			Usage:     "create a global style from an SLD file",
			ArgsUsage: "NAME FILE.sld",
			Flags:     []cli.Flag{overwriteFlag},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 2, "NAME FILE.sld"); err != nil {
					return err
				}
				sld, err := ioutil.ReadFile(c.Args().Get(1))
				if err != nil {
					return err
				}
				return t.Catalog.CreateStyle(c.Args().First(), sld, c.Bool("overwrite"))
			},
		},
		{
			Name:      "sld",
			Usage:     "print the SLD of a style",
			ArgsUsage: "STYLE",
			Flags:     []cli.Flag{workspaceFlag},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1, "STYLE"); err != nil {
					return err
				}
				style, err := t.Catalog.Style(c.Args().First(), c.String("workspace"))
				if err != nil {
					return err
				}
				sld, err := t.Catalog.StyleSLD(style)
				if err == nil {
					_, err = c.App.Writer.Write(sld)
				}
				return err
			},
		},
		{
			Name:      "create-layergroup",
			Usage:     "create a layer group",
			ArgsUsage: "NAME LAYER[=STYLE]...",
			Action:    t.createLayerGroup,
		},
		{
			Name:      "set-style",
			Usage:     "change the default style of a layer",
			ArgsUsage: "LAYER STYLE",
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 2, "LAYER STYLE"); err != nil {
					return err
				}
				layer, err := t.Catalog.Layer(c.Args().First())
				if err != nil {
					return err
				}
				layer.DefaultStyle = c.Args().Get(1)
				return t.Catalog.Save(layer)
			},
		},
		{
			Name:      "delete-layer",
			Usage:     "delete a layer",
			ArgsUsage: "LAYER",
			Flags: []cli.Flag{
				cli.BoolFlag{Name: "recurse", Usage: "also delete the published resource"},
			},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1, "LAYER"); err != nil {
					return err
				}
				layer, err := t.Catalog.Layer(c.Args().First())
				if err != nil {
					return err
				}
				return t.Catalog.Delete(layer, false, c.Bool("recurse"))
			},
		},
		{
			Name:      "delete-store",
			Usage:     "delete a store",
			ArgsUsage: "STORE",
			Flags: []cli.Flag{
				workspaceFlag,
				cli.BoolFlag{Name: "recurse", Usage: "also delete its resources and layers"},
			},
			Action: func(c *cli.Context) error {
				if err := needArgs(c, 1, "STORE"); err != nil {
					return err
				}
				store, err := t.Catalog.Store(c.Args().First(), c.String("workspace"))
				if err != nil {
					return err
				}
				return t.Catalog.Delete(store, false, c.Bool("recurse"))
			},
		},
		{
			Name:      "import",
			Usage:     "stage files with the importer, and optionally publish them",
			ArgsUsage: "FILE...",
			Flags: []cli.Flag{
				workspaceFlag,
				charsetFlag,
				cli.StringFlag{Name: "store, s", Usage: "publish into this existing data store"},
				cli.StringFlag{Name: "update", Usage: "CREATE, REPLACE or APPEND"},
				cli.BoolFlag{Name: "commit", Usage: "publish the import once staged"},
			},
			Action: t.importFiles,
		},
		{
			Name:   "imports",
			Usage:  "list import sessions",
			Action: t.listImports,
		},
	}
}

func (t *tool) listWorkspaces(c *cli.Context) error {
	workspaces, err := t.Catalog.Workspaces()
	if err != nil {
		return err
	}
	def, err := t.Catalog.DefaultWorkspace()
	if err != nil && !gsconfig.IsNotFound(err) {
		return err
	}
	for _, ws := range workspaces {
		if def != nil && ws.Name == def.Name {
			t.println(c, ws.Name, "(default)")
		} else {
			t.println(c, ws.Name)
		}
	}
	return nil
}

func (t *tool) createWorkspace(c *cli.Context) error {
	if err := needArgs(c, 1, "NAME"); err != nil {
		return err
	}
	uri := c.String("uri")
	if uri == "" {
		uri = "urn:uuid:" + uuid.NewV4().String()
	}
	ws, err := t.Catalog.CreateWorkspace(c.Args().First(), uri)
	if err != nil {
		return err
	}
	if c.Bool("default") {
		if err = t.Catalog.SetDefaultWorkspace(ws.Name); err != nil {
			return err
		}
	}
	t.println(c, ws.Href)
	return nil
}

func (t *tool) listStores(c *cli.Context) error {
	stores, err := t.Catalog.Stores(c.String("workspace"))
	if err != nil {
		return err
	}
	for _, store := range stores {
		t.println(c, store.String(), store.Kind, store.Type)
	}
	return nil
}

func (t *tool) listResources(c *cli.Context) error {
	resources, err := t.Catalog.Resources(c.String("store"), c.String("workspace"))
	if err != nil {
		return err
	}
	for _, resource := range resources {
		t.println(c, resource.QualifiedName(), resource.Kind, resource.SRS)
	}
	return nil
}

func (t *tool) listLayers(c *cli.Context) error {
	layers, err := t.Catalog.Layers(nil)
	if err != nil {
		return err
	}
	for _, layer := range layers {
		t.println(c, layer.Name, layer.Type, layer.DefaultStyle)
	}
	return nil
}

func (t *tool) listStyles(c *cli.Context) error {
	styles, err := t.Catalog.Styles()
	if err != nil {
		return err
	}
	for _, style := range styles {
		t.println(c, style.Name)
	}
	return nil
}

func (t *tool) listLayerGroups(c *cli.Context) error {
	groups, err := t.Catalog.LayerGroups()
	if err != nil {
		return err
	}
	for _, group := range groups {
		t.println(c, group.Name, strings.Join(group.Layers, ","))
	}
	return nil
}

// postgisOptions starts from the configured database settings and
// applies any flags.
func (t *tool) postgisOptions(c *cli.Context) gsconfig.PostGISOptions {
	opts := t.Config.PostGIS
	if c.IsSet("host") {
		opts.Host = c.String("host")
	}
	if c.IsSet("port") {
		opts.Port = c.Int("port")
	}
	if c.IsSet("database") {
		opts.Database = c.String("database")
	}
	if c.IsSet("schema") {
		opts.Schema = c.String("schema")
	}
	if c.IsSet("db-user") {
		opts.User = c.String("db-user")
	}
	if c.IsSet("db-password") {
		opts.Password = c.String("db-password")
	}
	return opts
}

func (t *tool) createPostGIS(c *cli.Context) error {
	if err := needArgs(c, 1, "NAME"); err != nil {
		return err
	}
	return t.Catalog.CreatePostGISStore(c.Args().First(), c.String("workspace"), t.postgisOptions(c), c.Bool("overwrite"))
}

func (t *tool) checkPostGIS(c *cli.Context) error {
	if err := needArgs(c, 1, "STORE"); err != nil {
		return err
	}
	store, err := t.Catalog.Store(c.Args().First(), c.String("workspace"))
	if err != nil {
		return err
	}
	opts, err := postgis.Options(store)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()
	db, err := postgis.Open(postgis.DSN(opts))
	if err != nil {
		return err
	}
	defer db.Close()
	if err = db.PingContext(ctx); err != nil {
		return err
	}
	version, err := postgis.Version(ctx, db)
	if err != nil {
		return err
	}
	t.println(c, store.String(), "PostGIS", version)
	return nil
}

func (t *tool) uploadShapefile(c *cli.Context) error {
	if err := needArgs(c, 2, "NAME FILE.zip"); err != nil {
		return err
	}
	f, err := os.Open(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Catalog.CreateShapefileStore(c.Args().First(), c.String("workspace"), f, c.Bool("overwrite"), c.String("charset"))
}

func (t *tool) addData(c *cli.Context) error {
	if err := needArgs(c, 2, "STORE FILE.zip"); err != nil {
		return err
	}
	f, err := os.Open(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Catalog.AddDataToStore(c.Args().First(), c.String("workspace"), f, c.Bool("overwrite"), c.String("charset"))
}

func (t *tool) uploadCoverage(c *cli.Context) error {
	if err := needArgs(c, 2, "NAME FILE"); err != nil {
		return err
	}
	var format gsconfig.CoverageFormat
	switch c.String("format") {
	case "geotiff":
		format = gsconfig.GeoTIFF
	case "worldimage":
		format = gsconfig.WorldImage
	default:
		return fmt.Errorf("unknown coverage format %q", c.String("format"))
	}
	f, err := os.Open(c.Args().Get(1))
	if err != nil {
		return err
	}
	defer f.Close()
	return t.Catalog.CreateCoverageStore(c.Args().First(), c.String("workspace"), f, format, c.Bool("overwrite"))
}

func (t *tool) createLayerGroup(c *cli.Context) error {
	if c.NArg() < 2 {
		return needArgs(c, 2, "NAME LAYER[=STYLE]...")
	}
	var layers, styles []string
	for _, arg := range c.Args().Tail() {
		parts := strings.SplitN(arg, "=", 2)
		layers = append(layers, parts[0])
		style := ""
		if len(parts) == 2 {
			style = parts[1]
		}
		styles = append(styles, style)
	}
	group, err := t.Catalog.CreateLayerGroup(c.Args().First(), layers, styles, nil)
	if err == nil {
		t.println(c, group.Href)
	}
	return err
}

func (t *tool) importFiles(c *cli.Context) error {
	if c.NArg() == 0 {
		return needArgs(c, 1, "FILE...")
	}
	session, err := t.Importer.CreateSession(c.String("workspace"))
	if err != nil {
		return err
	}

	var task *importer.Task
	if c.NArg() == 1 && strings.EqualFold(filepath.Ext(c.Args().First()), ".zip") {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()
		task, err = t.Importer.UploadZip(session, filepath.Base(f.Name()), f)
		if err != nil {
			return err
		}
	} else {
		var files []importer.File
		for _, name := range c.Args() {
			f, err := os.Open(name)
			if err != nil {
				return err
			}
			defer f.Close()
			files = append(files, importer.File{Name: filepath.Base(name), Data: f})
		}
		if task, err = t.Importer.UploadFiles(session, files); err != nil {
			return err
		}
	}

	if store := c.String("store"); store != "" {
		if err = t.Importer.SetTarget(task, store, c.String("workspace")); err != nil {
			return err
		}
	}
	if mode := c.String("update"); mode != "" {
		if err = t.Importer.SetUpdateMode(task, strings.ToUpper(mode)); err != nil {
			return err
		}
	}
	if charset := c.String("charset"); charset != "" {
		if err = t.Importer.SetCharset(task, charset); err != nil {
			return err
		}
	}
	if task.Format == "" {
		t.Log.WithField("files", task.Files).Warn("importer did not recognize the data")
	}

	if c.Bool("commit") {
		if err = t.Importer.Commit(session, false); err != nil {
			return err
		}
		if session, err = t.Importer.Session(session.ID); err != nil {
			return err
		}
	}
	t.println(c, session.ID, session.State, task.TargetLayerName())
	if session.State == restdata.StateIncomplete {
		return fmt.Errorf("import %d is incomplete", session.ID)
	}
	return nil
}

func (t *tool) listImports(c *cli.Context) error {
	sessions, err := t.Importer.Sessions()
	if err != nil {
		return err
	}
	for _, session := range sessions {
		t.println(c, session.ID, session.State, len(session.Tasks))
	}
	return nil
}
