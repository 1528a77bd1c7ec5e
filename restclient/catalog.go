// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient provides a gsconfig.Catalog that talks to the
// REST configuration API of a GeoServer instance.
//
// Call New() with the base URL of the REST service and the
// administrator credentials; for instance,
//
//     c, err := restclient.New("http://localhost:8080/geoserver/rest", "admin", "geoserver")
//
// The server in github.com/diffeo/go-gsconfig/cmd/gsfaked runs a
// compatible in-memory emulation of the same API.
//
// The catalog remembers every document it fetches for a few seconds,
// so resolving several names in a row costs one round trip per
// document.  Any request that changes the server clears everything it
// remembers.  Set Options.CacheTTL to change how long documents are
// kept.
package restclient

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-gsconfig/cache"
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/sirupsen/logrus"
)

// Options holds optional settings for a catalog client.  The zero
// value is usable, but sends no credentials.
type Options struct {
	// Username and Password are sent with every request using
	// HTTP Basic authentication, unless both are empty.
	Username string
	Password string

	// HTTPClient is used to make requests.  If nil, uses
	// http.DefaultClient.
	HTTPClient *http.Client

	// InsecureSkipVerify disables verification of the server's
	// TLS certificate.  If HTTPClient has an *http.Transport, a
	// copy of it is used with verification off; if it has some
	// other RoundTripper, that transport is used unchanged and this
	// has no effect.
	InsecureSkipVerify bool

	// Clock is the time source for response caching.  If nil,
	// uses the wall clock.
	Clock clock.Clock

	// CacheTTL is how long a fetched document is reused.  If
	// zero, uses cache.DefaultTTL (5 seconds).
	CacheTTL time.Duration

	// CacheSize bounds the number of remembered documents.  If
	// zero, uses DefaultCacheSize; negative means no limit.
	CacheSize int

	// Logger receives request logs.  If nil, uses the logrus
	// standard logger.
	Logger logrus.FieldLogger
}

// DefaultCacheSize is the number of documents remembered if
// Options.CacheSize is zero.
const DefaultCacheSize = 1024

// New creates a new catalog client for the REST service at
// serviceURL, authenticating as user.
func New(serviceURL, user, password string) (gsconfig.Catalog, error) {
	return NewWithOptions(serviceURL, Options{
		Username: user,
		Password: password,
	})
}

// NewWithOptions creates a new catalog client with explicit options.
// It does not contact the server.
func NewWithOptions(serviceURL string, opts Options) (gsconfig.Catalog, error) {
	return newCatalog(serviceURL, opts)
}

func newCatalog(serviceURL string, opts Options) (*restCatalog, error) {
	r, err := NewResource(serviceURL, opts)
	if err != nil {
		return nil, err
	}
	r.Accept = restdata.XMLMediaType

	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	return &restCatalog{
		rest:  r,
		cache: cache.New(opts.CacheTTL, size, opts.Clock),
	}, nil
}

type restCatalog struct {
	rest  *Resource
	cache *cache.Responses
}

// fetch retrieves a document, going through the response cache.
func (c *restCatalog) fetch(u *url.URL) ([]byte, error) {
	hit := true
	payload, err := c.cache.Get(u.String(), func(string) ([]byte, error) {
		hit = false
		return c.rest.Get(u)
	})
	if err == nil && hit {
		c.rest.Log().WithField("url", u.String()).Debug("cache hit")
	}
	return payload, err
}

// getXML fetches the document at a templated URL and decodes it into
// out, which must be of pointer type.
func (c *restCatalog) getXML(template string, vars map[string]interface{}, out interface{}) error {
	u, err := c.rest.Template(template, vars)
	if err != nil {
		return err
	}
	payload, err := c.fetch(u)
	if err != nil {
		return err
	}
	return restdata.Decode(u.String(), payload, out)
}

// mutate performs a request that changes the server, and clears the
// response cache however it turns out.
func (c *restCatalog) mutate(method string, u *url.URL, contentType string, body []byte) (int, []byte, error) {
	defer c.cache.Clear()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	return c.rest.Do(method, u, contentType, reader)
}

// upload performs a creating request at a templated URL, and returns
// ErrUpload if the status does not pass ok.
func (c *restCatalog) upload(method, template string, vars map[string]interface{}, contentType string, body []byte, ok statusCheck) error {
	u, err := c.rest.Template(template, vars)
	if err != nil {
		return err
	}
	status, payload, err := c.mutate(method, u, contentType, body)
	if err != nil {
		return err
	}
	if !ok(status) {
		return gsconfig.ErrUpload{Status: status, Body: string(payload)}
	}
	return nil
}

// change performs an updating request at a templated URL, and
// returns ErrFailedRequest if the status does not pass ok.
func (c *restCatalog) change(method string, u *url.URL, contentType string, body []byte, ok statusCheck) error {
	status, payload, err := c.mutate(method, u, contentType, body)
	if err != nil {
		return err
	}
	if !ok(status) {
		return gsconfig.ErrFailedRequest{
			Method: method,
			URL:    u.String(),
			Status: status,
			Body:   string(payload),
		}
	}
	return nil
}

// aboutUnavailable is returned by About() if the server has no
// version page.
const aboutUnavailable = "Cannot get information about catalog."

// legacyVersion is reported by servers too old to have a version
// document.
const legacyVersion = "2.2.x"

func (c *restCatalog) About() (string, error) {
	u, err := c.rest.Template(aboutPath, nil)
	if err != nil {
		return "", err
	}
	status, payload, err := c.rest.Do(http.MethodGet, u, "", nil)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return aboutUnavailable, nil
	}
	return string(payload), nil
}

func (c *restCatalog) Version() (string, error) {
	var about restdata.About
	err := c.getXML(versionPath, nil, &about)
	if err == nil {
		for _, resource := range about.Resources {
			if resource.Name == "GeoServer" && resource.Version != "" {
				return resource.Version, nil
			}
		}
	}
	// No version document; if the catalog answers at all, it
	// predates 2.3
	if _, err = c.Workspaces(); err != nil {
		return "", err
	}
	return legacyVersion, nil
}

func (c *restCatalog) Reload() error {
	u, err := c.rest.Template(reloadPath, nil)
	if err != nil {
		return err
	}
	return c.change(http.MethodPost, u, "", nil, successful)
}

func (c *restCatalog) Save(obj gsconfig.Saver) error {
	u, err := entityURL(obj)
	if err != nil {
		return err
	}
	body, err := obj.Message()
	if err != nil {
		return err
	}
	return c.change(obj.SaveMethod(), u, restdata.XMLMediaType, body, notFailed)
}

func (c *restCatalog) Delete(obj gsconfig.Entity, purge, recurse bool) error {
	u, err := entityURL(obj)
	if err != nil {
		return err
	}
	query := u.Query()
	if purge {
		query.Set("purge", "true")
	}
	if recurse {
		query.Set("recurse", "true")
	}
	u.RawQuery = query.Encode()
	return c.change(http.MethodDelete, u, "", nil, successful)
}

// entityURL parses the location of obj.
func entityURL(obj gsconfig.Entity) (*url.URL, error) {
	location := obj.Location()
	if location == "" {
		return nil, fmt.Errorf("restclient: %v has no location", obj)
	}
	return url.Parse(location)
}
