// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a catalog
// client based on command-line flags.
package backend

import (
	"errors"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/importer"
	"github.com/diffeo/go-gsconfig/memory"
	"github.com/diffeo/go-gsconfig/restclient"
	"github.com/diffeo/go-gsconfig/restserver"
	"gopkg.in/yaml.v2"
)

// Backend describes where the catalog lives.  This implements the
// flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "rest", Address: "http://localhost:8080/geoserver/rest"}
//         flag.Var(&backend, "backend", "impl:address of the GeoServer catalog")
//         flag.Parse()
//         catalog, err := backend.Catalog(restclient.Options{})
//     }
//
// "rest:URL" talks to a real GeoServer.  "memory" runs an emulated
// GeoServer inside the process; "memory:seed.yaml" fills it from a
// seed file first.
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "rest".
	Implementation string

	// Address holds some backend-specific address, such as the
	// REST service URL.
	Address string

	// emulator is the in-process server of a memory backend,
	// created on first use so the catalog and importer share it.
	emulator http.Handler
}

// memoryURL is the nominal service URL of an in-process emulator.
// Requests to it never reach the network.
const memoryURL = "http://memory.invalid/"

// handlerTransport serves requests by calling a handler directly.
type handlerTransport struct {
	handler http.Handler
}

// RoundTrip gives the handler a server-side copy of req.  Client
// requests may have a nil Body; server requests never do.
func (t handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	inbound := req.Clone(req.Context())
	if inbound.Body == nil {
		inbound.Body = http.NoBody
	}
	inbound.RequestURI = req.URL.RequestURI()
	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, inbound)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// LoadSeed fills an emulated catalog from a YAML seed file.
func LoadSeed(c *memory.Catalog, path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	var input map[string]interface{}
	if err = yaml.Unmarshal(data, &input); err != nil {
		return err
	}
	seed, err := memory.DecodeSeed(input)
	if err != nil {
		return err
	}
	return c.Load(seed)
}

// connect returns the service URL and the options to reach it with.
// For a memory backend this creates the emulator if needed, and
// points opts at it.
func (b *Backend) connect(opts restclient.Options) (string, restclient.Options, error) {
	switch b.Implementation {
	case "rest":
		return b.Address, opts, nil
	case "memory":
		if b.emulator == nil {
			mem := memory.New()
			if b.Address != "" {
				if err := LoadSeed(mem, b.Address); err != nil {
					return "", opts, err
				}
			}
			b.emulator = restserver.NewRouter(mem)
		}
		opts.HTTPClient = &http.Client{Transport: handlerTransport{b.emulator}}
		opts.InsecureSkipVerify = false
		return memoryURL, opts, nil
	default:
		return "", opts, errors.New("unknown catalog backend " + b.Implementation)
	}
}

// Catalog creates a new catalog client.  For a memory backend, every
// call on the same Backend shares one emulated server.
func (b *Backend) Catalog(opts restclient.Options) (gsconfig.Catalog, error) {
	serviceURL, opts, err := b.connect(opts)
	if err != nil {
		return nil, err
	}
	return restclient.NewWithOptions(serviceURL, opts)
}

// Importer creates a new importer client for the same server as
// Catalog.
func (b *Backend) Importer(opts restclient.Options) (*importer.Client, error) {
	serviceURL, opts, err := b.connect(opts)
	if err != nil {
		return nil, err
	}
	return importer.New(serviceURL, opts)
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string, including a URL with its own colons.
// Set checks to see if the provided implementation is any of the
// known implementations, and returns an appropriate error if not.
//
// This is part of the flag.Value interface.  Note that neither
// function attempts to validate the b.Address part of the string or
// attempts to actually make a connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	impl, address := parts[0], ""
	if len(parts) == 2 {
		address = parts[1]
	}
	switch impl {
	case "":
		return errors.New("must specify a backend type")
	case "rest":
		if address == "" {
			return errors.New("rest backend needs a service URL")
		}
	case "memory":
	default:
		return errors.New("unknown catalog backend " + impl)
	}
	b.Implementation = impl
	b.Address = address
	b.emulator = nil
	return nil
}
