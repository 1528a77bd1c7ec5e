// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"archive/zip"
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `
workspaces:
  - name: topp
    uri: http://www.openplans.org/topp
    datastores:
      - name: states_shapefile
        type: Shapefile
        parameters:
          url: file:data/shapefiles/states.shp
        resources:
          - name: states
            srs: EPSG:4326
  - name: sf
    uri: http://www.openplans.org/sf
styles:
  - name: polygon
    sld: <StyledLayerDescriptor/>
`

// cliFixture writes a seed file and runs the tool against an
// emulator loaded from it.
type cliFixture struct {
	*assert.Assertions
	T   *testing.T
	Dir string
}

func newCLIFixture(t *testing.T) *cliFixture {
	dir, err := ioutil.TempDir("", "gsconfig")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "seed.yaml"), []byte(seed), 0644))
	return &cliFixture{Assertions: assert.New(t), T: t, Dir: dir}
}

// Run runs one command line and returns its output.
func (f *cliFixture) Run(args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp(&out)
	argv := append([]string{"gsconfig", "--backend", "memory:" + filepath.Join(f.Dir, "seed.yaml")}, args...)
	err := app.Run(argv)
	return out.String(), err
}

// File writes a file into the fixture directory and returns its path.
func (f *cliFixture) File(name string, data []byte) string {
	path := filepath.Join(f.Dir, name)
	require.NoError(f.T, ioutil.WriteFile(path, data, 0644))
	return path
}

func TestWorkspacesCommand(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.Run("workspaces")
	if f.NoError(err) {
		f.Equal("sf\ntopp (default)\n", out)
	}
}

func TestVersionCommand(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.Run("version")
	if f.NoError(err) {
		f.NotEmpty(strings.TrimSpace(out))
	}
}

func TestCreateWorkspaceCommand(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.Run("create-workspace", "--default", "nurc")
	if f.NoError(err) {
		f.Contains(out, "/workspaces/nurc")
	}

	_, err = f.Run("create-workspace")
	f.Error(err)

	_, err = f.Run("create-workspace", "topp")
	f.Error(err)
}

func TestListCommands(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.Run("stores", "--workspace", "topp")
	if f.NoError(err) {
		f.Equal("topp:states_shapefile dataStore Shapefile\n", out)
	}

	out, err = f.Run("resources")
	if f.NoError(err) {
		f.Equal("topp:states featureType EPSG:4326\n", out)
	}

	out, err = f.Run("layers")
	if f.NoError(err) {
		f.Contains(out, "states")
	}

	out, err = f.Run("styles")
	if f.NoError(err) {
		f.Contains(out, "polygon\n")
	}

	out, err = f.Run("sld", "polygon")
	if f.NoError(err) {
		f.Equal("<StyledLayerDescriptor/>", out)
	}
}

func shapefileZip(t *testing.T, name string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, ext := range []string{".shp", ".shx", ".dbf", ".prj"} {
		member, err := w.Create(name + ext)
		require.NoError(t, err)
		_, err = member.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestUploadShapefileCommand(t *testing.T) {
	f := newCLIFixture(t)
	path := f.File("roads.zip", shapefileZip(t, "roads"))
	_, err := f.Run("upload-shapefile", "--workspace", "sf", "roads", path)
	f.NoError(err)

	_, err = f.Run("upload-shapefile", "roads", filepath.Join(f.Dir, "missing.zip"))
	f.Error(err)
}

func TestImportCommand(t *testing.T) {
	f := newCLIFixture(t)
	path := f.File("rivers.zip", shapefileZip(t, "rivers"))
	out, err := f.Run("import", "--workspace", "sf", "--commit", path)
	if f.NoError(err) {
		f.Equal("0 COMPLETE sf:rivers\n", out)
	}

	out, err = f.Run("import", "--workspace", "sf", path)
	if f.NoError(err) {
		f.Equal("0 READY sf:rivers\n", out)
	}
}

func TestBadBackend(t *testing.T) {
	app := newApp(ioutil.Discard)
	err := app.Run([]string{"gsconfig", "--backend", "carrier-pigeon", "workspaces"})
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	f := newCLIFixture(t)
	path := f.File("gsconfig.yaml", []byte("geoserver:\n  cache_ttl: bogus\n"))
	_, err := f.Run("--config", path, "workspaces")
	f.Error(err)
}
