// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package gsconfig provides a command-line tool to inspect and change
// the configuration of a GeoServer instance over its REST API.
package main

import (
	"io"
	"os"

	"github.com/diffeo/go-gsconfig/backend"
	"github.com/diffeo/go-gsconfig/config"
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/importer"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// tool holds the state shared by every command.
type tool struct {
	Backend  backend.Backend
	Config   config.Config
	Log      *logrus.Logger
	Catalog  gsconfig.Catalog
	Importer *importer.Client
}

// connect loads configuration and builds the clients.  Flags given
// on the command line override the configuration file.
func (t *tool) connect(c *cli.Context) error {
	var err error
	t.Config, err = config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.Bool("verbose") {
		t.Log.SetLevel(logrus.DebugLevel)
	}
	if !c.IsSet("backend") {
		t.Backend = backend.Backend{Implementation: "rest", Address: t.Config.GeoServer.URL}
	}
	if c.IsSet("user") {
		t.Config.GeoServer.Username = c.String("user")
	}
	if c.IsSet("password") {
		t.Config.GeoServer.Password = c.String("password")
	}
	if c.Bool("insecure") {
		t.Config.GeoServer.Insecure = true
	}

	opts := t.Config.GeoServer.Options()
	opts.Logger = t.Log
	if t.Catalog, err = t.Backend.Catalog(opts); err != nil {
		return err
	}
	t.Importer, err = t.Backend.Importer(opts)
	return err
}

// newApp builds the command-line application, writing output to w.
func newApp(w io.Writer) *cli.App {
	t := &tool{Log: logrus.New()}
	t.Log.Out = os.Stderr

	app := cli.NewApp()
	app.Name = "gsconfig"
	app.Usage = "configure a GeoServer through its REST API"
	app.Writer = w
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "config",
			Usage:  "YAML configuration file",
			EnvVar: "GSCONFIG_CONFIG",
		},
		cli.GenericFlag{
			Name:  "backend",
			Value: &t.Backend,
			Usage: "rest:URL of GeoServer, or memory[:seed.yaml] for an emulator",
		},
		cli.StringFlag{
			Name:  "user, u",
			Usage: "GeoServer user name",
		},
		cli.StringFlag{
			Name:  "password, p",
			Usage: "GeoServer password",
		},
		cli.BoolFlag{
			Name:  "insecure",
			Usage: "do not verify the server's TLS certificate",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every request",
		},
	}
	app.Before = t.connect
	app.Commands = t.commands()
	return app
}

func main() {
	app := newApp(os.Stdout)
	if err := app.Run(os.Args); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("gsconfig failed")
	}
}
