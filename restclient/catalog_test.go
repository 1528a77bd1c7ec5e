// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"archive/zip"
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/memory"
	"github.com/diffeo/go-gsconfig/restclient"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/diffeo/go-gsconfig/restserver"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// servicePath is where the emulated REST service is mounted, the same
// place a real GeoServer puts it.
const servicePath = "/geoserver/rest"

// countingHandler counts the requests it passes on, by method and
// path.
type countingHandler struct {
	handler http.Handler
	lock    sync.Mutex
	counts  map[string]int
}

func (h *countingHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	h.lock.Lock()
	h.counts[req.Method+" "+req.URL.Path]++
	h.lock.Unlock()
	h.handler.ServeHTTP(resp, req)
}

// Count returns the number of requests seen for a method and a path
// under the service root.
func (h *countingHandler) Count(method, path string) int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.counts[method+" "+servicePath+"/"+path]
}

// catalogFixture sets up an object stack where the REST client code
// talks to the REST server code, which points at an in-memory
// catalog.  The client caches with a mock clock, so tests control
// when cached documents expire.
type catalogFixture struct {
	*assert.Assertions
	T        *testing.T
	Memory   *memory.Catalog
	Requests *countingHandler
	Clock    *clock.Mock
	Log      *test.Hook
	Catalog  gsconfig.Catalog
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	mem := memory.New()
	require.NoError(t, mem.CreateWorkspace("topp", "http://www.openplans.org/topp"))

	r := mux.NewRouter()
	restserver.PopulateRouter(r.PathPrefix(servicePath).Subrouter(), mem)
	requests := &countingHandler{handler: r, counts: make(map[string]int)}
	server := httptest.NewServer(requests)
	t.Cleanup(server.Close)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	mock := clock.NewMock()
	c, err := restclient.NewWithOptions(server.URL+servicePath, restclient.Options{
		Username: "admin",
		Password: "geoserver",
		Clock:    mock,
		Logger:   logger,
	})
	require.NoError(t, err)

	return &catalogFixture{
		Assertions: assert.New(t),
		T:          t,
		Memory:     mem,
		Requests:   requests,
		Clock:      mock,
		Log:        hook,
		Catalog:    c,
	}
}

// customCatalog returns a client of an arbitrary handler.
func customCatalog(t *testing.T, handler http.HandlerFunc) gsconfig.Catalog {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := restclient.New(server.URL, "admin", "geoserver")
	require.NoError(t, err)
	return c
}

// bundle builds a zip archive with the named members.
func bundle(t *testing.T, names ...string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// shapefiles builds a zipped shapefile bundle with one shapefile per
// name.
func shapefiles(t *testing.T, names ...string) []byte {
	var members []string
	for _, name := range names {
		for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
			members = append(members, name+ext)
		}
	}
	return bundle(t, members...)
}

// geoTIFF is the smallest thing that looks like a GeoTIFF.
var geoTIFF = []byte("II*\x00\x08\x00\x00\x00")

// NotFound checks that err is ErrNotFound for a kind of object.
func (f *catalogFixture) NotFound(err error, kind string) bool {
	var notFound gsconfig.ErrNotFound
	if !f.True(errors.As(err, &notFound), "expected ErrNotFound, got %v", err) {
		return false
	}
	return f.Equal(kind, notFound.Kind)
}

// Ambiguous checks that err is ErrAmbiguousRequest.
func (f *catalogFixture) Ambiguous(err error, count int) bool {
	var ambiguous gsconfig.ErrAmbiguousRequest
	if !f.True(errors.As(err, &ambiguous), "expected ErrAmbiguousRequest, got %v", err) {
		return false
	}
	return f.Equal(count, ambiguous.Count)
}

// Conflict checks that err is ErrConflictingData.
func (f *catalogFixture) Conflict(err error) bool {
	var conflict gsconfig.ErrConflictingData
	return f.True(errors.As(err, &conflict), "expected ErrConflictingData, got %v", err)
}

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New("", "admin", "geoserver")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	f := newCatalogFixture(t)
	version, err := f.Catalog.Version()
	if f.NoError(err) {
		f.Equal(memory.DefaultVersion, version)
	}

	f.Memory.SetVersion("")
	f.Clock.Add(6 * time.Second)
	version, err = f.Catalog.Version()
	if f.NoError(err) {
		f.Equal("2.2.x", version)
	}
}

func TestAbout(t *testing.T) {
	f := newCatalogFixture(t)
	about, err := f.Catalog.About()
	if f.NoError(err) {
		f.Contains(about, memory.DefaultVersion)
	}

	f.Memory.SetVersion("")
	about, err = f.Catalog.About()
	if f.NoError(err) {
		f.Equal("Cannot get information about catalog.", about)
	}
}

func TestReload(t *testing.T) {
	f := newCatalogFixture(t)
	f.NoError(f.Catalog.Reload())
	f.Equal(1, f.Requests.Count(http.MethodPost, "reload"))
}

// TestCacheExpiry checks that a document is fetched once within the
// cache lifetime and again after it.
func TestCacheExpiry(t *testing.T) {
	f := newCatalogFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.Catalog.Workspaces()
		f.NoError(err)
	}
	f.Equal(1, f.Requests.Count(http.MethodGet, "workspaces.xml"))

	hits := 0
	for _, entry := range f.Log.AllEntries() {
		if entry.Message == "cache hit" {
			hits++
		}
	}
	f.Equal(2, hits)

	f.Clock.Add(4 * time.Second)
	_, err := f.Catalog.Workspaces()
	f.NoError(err)
	f.Equal(1, f.Requests.Count(http.MethodGet, "workspaces.xml"))

	f.Clock.Add(2 * time.Second)
	_, err = f.Catalog.Workspaces()
	f.NoError(err)
	f.Equal(2, f.Requests.Count(http.MethodGet, "workspaces.xml"))
}

// TestCacheClearedByChange checks that any mutating request forgets
// everything fetched before it.
func TestCacheClearedByChange(t *testing.T) {
	f := newCatalogFixture(t)
	_, err := f.Catalog.Workspaces()
	f.NoError(err)
	f.NoError(f.Catalog.Reload())
	_, err = f.Catalog.Workspaces()
	f.NoError(err)
	f.Equal(2, f.Requests.Count(http.MethodGet, "workspaces.xml"))

	// The change does not have to succeed
	_, err = f.Catalog.CreateWorkspace("topp", "http://topp")
	f.Error(err)
	_, err = f.Catalog.Workspaces()
	f.NoError(err)
	f.Equal(3, f.Requests.Count(http.MethodGet, "workspaces.xml"))
}

// TestDecodeError checks that a response that is not XML is reported
// with its payload.
func TestDecodeError(t *testing.T) {
	c := customCatalog(t, func(resp http.ResponseWriter, req *http.Request) {
		resp.Header().Set("Content-Type", "text/html")
		_, _ = resp.Write([]byte("<html><body>Login"))
	})
	_, err := c.Workspaces()
	var decode restdata.ErrDecode
	if assert.True(t, errors.As(err, &decode), "expected ErrDecode, got %v", err) {
		assert.Equal(t, "<html><body>Login", decode.Payload)
		assert.True(t, strings.HasSuffix(decode.URL, "/workspaces.xml"))
	}
}

// TestServerError checks that a failed fetch reports its status.
func TestServerError(t *testing.T) {
	c := customCatalog(t, func(resp http.ResponseWriter, req *http.Request) {
		http.Error(resp, "broken", http.StatusInternalServerError)
	})
	_, err := c.Workspaces()
	var failed gsconfig.ErrFailedRequest
	if assert.True(t, errors.As(err, &failed), "expected ErrFailedRequest, got %v", err) {
		assert.Equal(t, http.StatusInternalServerError, failed.Status)
		assert.Equal(t, http.MethodGet, failed.Method)
	}
}

// TestCredentials checks that every request carries basic
// authentication.
func TestCredentials(t *testing.T) {
	var user, password string
	c := customCatalog(t, func(resp http.ResponseWriter, req *http.Request) {
		user, password, _ = req.BasicAuth()
		_, _ = resp.Write([]byte("<workspaces/>"))
	})
	workspaces, err := c.Workspaces()
	if assert.NoError(t, err) {
		assert.Empty(t, workspaces)
	}
	assert.Equal(t, "admin", user)
	assert.Equal(t, "geoserver", password)
}

func TestWorkspaces(t *testing.T) {
	f := newCatalogFixture(t)
	sf, err := f.Catalog.CreateWorkspace("sf", "http://www.openplans.org/sf")
	if f.NoError(err) {
		f.Equal("sf", sf.Name)
		f.True(strings.HasSuffix(sf.Href, servicePath+"/workspaces/sf.xml"))
		f.True(strings.HasSuffix(sf.DataStoresURL, servicePath+"/workspaces/sf/datastores.xml"))
	}
	_, uri, err := f.Memory.Workspace("sf")
	if f.NoError(err) {
		f.Equal("http://www.openplans.org/sf", uri)
	}

	workspaces, err := f.Catalog.Workspaces()
	if f.NoError(err) && f.Len(workspaces, 2) {
		f.Equal("sf", workspaces[0].Name)
		f.Equal("topp", workspaces[1].Name)
	}

	_, err = f.Catalog.Workspace("nowhere")
	f.NotFound(err, "workspace")

	def, err := f.Catalog.DefaultWorkspace()
	if f.NoError(err) {
		f.Equal("topp", def.Name)
	}
	f.NoError(f.Catalog.SetDefaultWorkspace("sf"))
	def, err = f.Catalog.DefaultWorkspace()
	if f.NoError(err) {
		f.Equal("sf", def.Name)
	}
	f.NotFound(f.Catalog.SetDefaultWorkspace("nowhere"), "workspace")
}

func TestNoDefaultWorkspace(t *testing.T) {
	f := newCatalogFixture(t)
	f.NoError(f.Memory.DeleteWorkspace("topp", false))
	_, err := f.Catalog.DefaultWorkspace()
	f.NotFound(err, "workspace")
}
