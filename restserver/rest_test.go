// Regression tests for the REST skeleton and routing.
//
// Main tests are really by running the end-to-end path, using the
// restclient tests against this server.  This contains tests of the
// wire-level details a client does not see directly.
//
// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"archive/zip"
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/memory"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failResponseWriter struct {
	Headers    http.Header
	StatusCode int
}

func (rw *failResponseWriter) Header() http.Header {
	if rw.Headers == nil {
		rw.Headers = make(http.Header)
	}
	return rw.Headers
}

func (rw *failResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("foo")
}

func (rw *failResponseWriter) WriteHeader(code int) {
	rw.StatusCode = code
}

// TestDoubleFault checks that, if there is an error writing a
// response, it doesn't actually panic the process.
func TestDoubleFault(t *testing.T) {
	backend := memory.New()
	require.NoError(t, backend.CreateWorkspace("topp", "http://topp"))

	router := NewRouter(backend)
	req := &http.Request{
		Method: http.MethodGet,
		URL: &url.URL{
			Path: "/workspaces/topp.xml",
		},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
		Close:      true,
		Host:       "localhost",
	}
	resp := &failResponseWriter{}
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// TestNilBody checks that a POST built by hand with no Body at all,
// as a client-side request is, is treated as empty.
func TestNilBody(t *testing.T) {
	router := NewRouter(memory.New())
	req := &http.Request{
		Method:     http.MethodPost,
		URL:        &url.URL{Path: "/reload"},
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
		Host:       "localhost",
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

// serverFixture holds an emulated catalog and its router.
type serverFixture struct {
	*assert.Assertions
	Catalog *memory.Catalog
	Router  http.Handler
}

func newServerFixture(t *testing.T) *serverFixture {
	c := memory.New()
	require.NoError(t, c.CreateWorkspace("topp", "http://www.openplans.org/topp"))
	return &serverFixture{
		Assertions: assert.New(t),
		Catalog:    c,
		Router:     NewRouter(c),
	}
}

// Do sends one request and returns the recorded response.
func (f *serverFixture) Do(method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	f.Router.ServeHTTP(resp, req)
	return resp
}

// Status sends one request and checks its status code.
func (f *serverFixture) Status(expected int, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	resp := f.Do(method, path, contentType, body)
	f.Equal(expected, resp.Code, "%s %s: %s", method, path, resp.Body.String())
	return resp
}

func shapefileBundle(t *testing.T, names ...string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
			f, err := w.Create(name + ext)
			require.NoError(t, err)
			_, err = f.Write([]byte(name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// TestXMLSuffix checks that resources answer with and without the
// ".xml" suffix.
func TestXMLSuffix(t *testing.T) {
	f := newServerFixture(t)
	for _, path := range []string{"/workspaces", "/workspaces.xml", "/workspaces/topp", "/workspaces/topp.xml"} {
		resp := f.Status(http.StatusOK, http.MethodGet, path, "", nil)
		f.Equal(restdata.XMLMediaType, resp.Header().Get("Content-Type"))
	}
}

// TestDefaultWorkspaceRoute checks that "default" is not taken as a
// workspace name.
func TestDefaultWorkspaceRoute(t *testing.T) {
	f := newServerFixture(t)
	resp := f.Status(http.StatusOK, http.MethodGet, "/workspaces/default.xml", "", nil)

	var repr restdata.Workspace
	if f.NoError(restdata.Decode("", resp.Body.Bytes(), &repr)) {
		f.Equal("topp", repr.Name)
		if f.NotNil(repr.DataStores) && f.NotNil(repr.DataStores.Link) {
			f.Equal("http://example.com/workspaces/topp/datastores.xml", repr.DataStores.Link.Href)
		}
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	f := newServerFixture(t)
	f.Status(http.StatusUnsupportedMediaType, http.MethodPost, "/workspaces.xml",
		"text/plain", []byte("sf"))
	f.Status(http.StatusBadRequest, http.MethodPost, "/workspaces.xml",
		restdata.XMLMediaType, []byte("<workspace"))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newServerFixture(t)
	f.Status(http.StatusMethodNotAllowed, http.MethodDelete, "/layers.xml", "", nil)
}

// TestCreateConflict checks the status of creating something twice.
func TestCreateConflict(t *testing.T) {
	f := newServerFixture(t)
	body, err := restdata.Encode(restdata.Namespace{Prefix: "sf", URI: "http://sf"})
	require.NoError(t, err)
	resp := f.Status(http.StatusCreated, http.MethodPost, "/namespaces", restdata.XMLMediaType, body)
	f.Equal("http://example.com/workspaces/sf.xml", resp.Header().Get("Location"))
	f.Status(http.StatusConflict, http.MethodPost, "/namespaces", restdata.XMLMediaType, body)
}

// TestShapefileUpload checks the upload status and the recursive
// delete rules.
func TestShapefileUpload(t *testing.T) {
	f := newServerFixture(t)
	bundle := shapefileBundle(t, "states")
	f.Status(http.StatusCreated, http.MethodPut,
		"/workspaces/topp/datastores/states/file.shp?charset=UTF-8",
		restdata.ZipMediaType, bundle)

	store, err := f.Catalog.Store("topp", gsconfig.DataStoreKind, "states")
	if f.NoError(err) {
		f.Equal("Shapefile", store.Type)
		f.Equal("UTF-8", store.ConnectionParameters["charset"])
	}
	f.Status(http.StatusOK, http.MethodGet,
		"/workspaces/topp/datastores/states/featuretypes/states.xml", "", nil)
	f.Status(http.StatusOK, http.MethodGet, "/layers/topp:states.xml", "", nil)

	f.Status(http.StatusForbidden, http.MethodDelete, "/workspaces/topp/datastores/states.xml", "", nil)
	f.Status(http.StatusOK, http.MethodDelete, "/workspaces/topp/datastores/states.xml?recurse=true", "", nil)
	f.Status(http.StatusNotFound, http.MethodGet, "/layers/topp:states.xml", "", nil)
}

func TestCoverageUpload(t *testing.T) {
	f := newServerFixture(t)
	f.Status(http.StatusBadRequest, http.MethodPut,
		"/workspaces/topp/coveragestores/dem/file.geotiff",
		restdata.GeoTIFFMediaType, []byte("not a tiff"))
	f.Status(http.StatusCreated, http.MethodPut,
		"/workspaces/topp/coveragestores/dem/file.geotiff",
		restdata.GeoTIFFMediaType, []byte("II*\x00rest of the image"))

	resp := f.Status(http.StatusOK, http.MethodGet, "/layers/dem.xml", "", nil)
	var layer restdata.Layer
	if f.NoError(restdata.Decode("", resp.Body.Bytes(), &layer)) {
		f.Equal("dem", layer.Name)
		if f.NotNil(layer.Resource) {
			f.Equal(restdata.CoverageElement, layer.Resource.Class)
			f.Equal("topp:dem", layer.Resource.Name)
			if f.NotNil(layer.Resource.Link) {
				f.Equal("http://example.com/workspaces/topp/coveragestores/dem/coverages/dem.xml",
					layer.Resource.Link.Href)
			}
		}
	}
}

// TestStyleBody checks that ".sld" paths carry the style body rather
// than being taken as part of the style name.
func TestStyleBody(t *testing.T) {
	f := newServerFixture(t)
	body, err := restdata.Encode(restdata.Style{Filename: "point.sld"})
	require.NoError(t, err)
	f.Status(http.StatusCreated, http.MethodPost, "/styles?name=point", restdata.XMLMediaType, body)
	f.Status(http.StatusNotFound, http.MethodGet, "/styles/point.sld", "", nil)

	sld := []byte("<StyledLayerDescriptor/>")
	f.Status(http.StatusOK, http.MethodPut, "/styles/point.sld", restdata.SLDMediaType, sld)
	resp := f.Status(http.StatusOK, http.MethodGet, "/styles/point.sld", "", nil)
	f.Equal(restdata.SLDMediaType, resp.Header().Get("Content-Type"))
	f.Equal(sld, resp.Body.Bytes())

	resp = f.Status(http.StatusOK, http.MethodGet, "/styles/point.xml", "", nil)
	var style restdata.Style
	if f.NoError(restdata.Decode("", resp.Body.Bytes(), &style)) {
		f.Equal("point", style.Name)
		f.Equal("sld", style.Format)
		f.Equal("point.sld", style.Filename)
	}
}

func TestVersion(t *testing.T) {
	f := newServerFixture(t)
	resp := f.Status(http.StatusOK, http.MethodGet, "/about/version.xml", "", nil)
	var about restdata.About
	if f.NoError(restdata.Decode("", resp.Body.Bytes(), &about)) && f.NotEmpty(about.Resources) {
		f.Equal("GeoServer", about.Resources[0].Name)
		f.Equal(memory.DefaultVersion, about.Resources[0].Version)
	}

	f.Catalog.SetVersion("")
	f.Status(http.StatusNotFound, http.MethodGet, "/about/version.xml", "", nil)
	f.Status(http.StatusNotFound, http.MethodGet, "/about/version.html", "", nil)
}

// TestImportLifecycle drives the importer API by hand.
func TestImportLifecycle(t *testing.T) {
	f := newServerFixture(t)
	resp := f.Status(http.StatusCreated, http.MethodPost, "/imports", restdata.JSONMediaType,
		[]byte(`{"import":{"targetWorkspace":{"workspace":{"name":"topp"}}}}`))
	f.Equal(restdata.JSONMediaType, resp.Header().Get("Content-Type"))
	var env restdata.ImportEnvelope
	require.NoError(t, restdata.DecodeJSON("", resp.Body.Bytes(), &env))
	require.NotNil(t, env.Import)
	f.Equal(restdata.StatePending, env.Import.State)
	f.Equal("http://example.com/imports/0", resp.Header().Get("Location"))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("filedata", "roads.zip")
	require.NoError(t, err)
	_, err = part.Write(shapefileBundle(t, "roads"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	resp = f.Status(http.StatusCreated, http.MethodPost, "/imports/0/tasks", w.FormDataContentType(), buf.Bytes())
	env = restdata.ImportEnvelope{}
	require.NoError(t, restdata.DecodeJSON("", resp.Body.Bytes(), &env))
	if f.NotNil(env.Task) {
		f.Equal(restdata.StateReady, env.Task.State)
		if f.NotNil(env.Task.Data) {
			f.Equal("Shapefile", env.Task.Data.Format)
		}
	}

	f.Status(http.StatusNoContent, http.MethodPut, "/imports/0/tasks/0", restdata.JSONMediaType,
		[]byte(`{"task":{"updateMode":"REPLACE","source":{"charset":"ISO-8859-1"}}}`))
	task, err := f.Catalog.ImportTask(0, 0)
	if f.NoError(err) {
		f.Equal(restdata.UpdateReplace, task.UpdateMode)
		f.Equal("ISO-8859-1", task.Charset)
	}

	f.Status(http.StatusNoContent, http.MethodPost, "/imports/0?async=true", "", nil)
	resp = f.Status(http.StatusOK, http.MethodGet, "/imports/0/tasks/0/progress", "", nil)
	var progress restdata.ImportProgress
	if f.NoError(restdata.DecodeJSON("", resp.Body.Bytes(), &progress)) {
		f.Equal(1, progress.Progress)
		f.Equal(restdata.StateComplete, progress.State)
	}
	f.Status(http.StatusOK, http.MethodGet, "/layers/topp:roads.xml", "", nil)

	f.Status(http.StatusNoContent, http.MethodDelete, "/imports/0", "", nil)
	f.Status(http.StatusNotFound, http.MethodGet, "/imports/0", "", nil)
	f.Status(http.StatusNotFound, http.MethodGet, "/imports/zero", "", nil)
}

func TestImportRequiresMultipart(t *testing.T) {
	f := newServerFixture(t)
	f.Status(http.StatusCreated, http.MethodPost, "/imports", "", nil)
	f.Status(http.StatusUnsupportedMediaType, http.MethodPost, "/imports/0/tasks",
		restdata.ZipMediaType, shapefileBundle(t, "roads"))
}

func TestBoolParam(t *testing.T) {
	for _, test := range []struct {
		query    string
		def      bool
		expected bool
	}{
		{"", false, false},
		{"", true, true},
		{"recurse", false, true},
		{"recurse=true", false, true},
		{"recurse=1", false, true},
		{"recurse=no", true, false},
		{"recurse=banana", true, true},
	} {
		values, err := url.ParseQuery(test.query)
		require.NoError(t, err)
		ctx := &context{QueryParams: values}
		assert.Equal(t, test.expected, ctx.BoolParam("recurse", test.def), "%q", test.query)
	}
}

func TestMergeDataStore(t *testing.T) {
	store := gsconfig.Store{
		Type:    "PostGIS",
		Enabled: true,
		ConnectionParameters: map[string]string{
			"host":     "localhost",
			"database": "db",
		},
	}
	merged := mergeDataStore(store, restdata.DataStore{
		Description: "new",
		Enabled:     restdata.Bool(false),
		ConnectionParameters: restdata.ConnectionParameters{
			{Key: "host", Value: "db.example.com"},
		},
	})
	assert.Equal(t, "PostGIS", merged.Type)
	assert.Equal(t, "new", merged.Description)
	assert.False(t, merged.Enabled)
	assert.Equal(t, map[string]string{"host": "db.example.com", "database": "db"}, merged.ConnectionParameters)
	assert.Equal(t, "localhost", store.ConnectionParameters["host"])
}

func TestPlainTextErrors(t *testing.T) {
	f := newServerFixture(t)
	resp := f.Status(http.StatusNotFound, http.MethodGet, "/workspaces/nowhere.xml", "", nil)
	f.True(strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain"))
	f.Contains(resp.Body.String(), "nowhere")
}
