// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnectionParameterForms(t *testing.T) {
	tests := []string{
		`<dataStore><name>pg</name><connectionParameters>` +
			`<entry key="host">localhost</entry>` +
			`<entry key="port">5432</entry>` +
			`</connectionParameters></dataStore>`,
		`<dataStore><name>pg</name><connectionParameters>` +
			"<host>localhost</host>\n" +
			"<port> 5432 </port>\n" +
			`</connectionParameters></dataStore>`,
	}
	for _, test := range tests {
		var ds DataStore
		if assert.NoError(t, Decode("http://x/ds.xml", []byte(test), &ds)) {
			assert.Equal(t, "pg", ds.Name)
			assert.Equal(t, map[string]string{
				"host": "localhost",
				"port": "5432",
			}, ds.ConnectionParameters.Map())
		}
	}
}

func TestConnectionParametersEncode(t *testing.T) {
	ds := DataStore{
		Name: "pg",
		ConnectionParameters: ParametersFromMap(map[string]string{
			"port": "5432",
			"host": "localhost",
		}),
	}
	out, err := Encode(ds)
	if assert.NoError(t, err) {
		assert.Equal(t,
			`<dataStore><name>pg</name><connectionParameters>`+
				`<entry key="host">localhost</entry>`+
				`<entry key="port">5432</entry>`+
				`</connectionParameters></dataStore>`,
			string(out))
	}
}

func TestEmptyParametersOmitted(t *testing.T) {
	out, err := Encode(DataStore{Name: "empty"})
	if assert.NoError(t, err) {
		assert.Equal(t, `<dataStore><name>empty</name></dataStore>`, string(out))
	}
}

func TestDecodeError(t *testing.T) {
	tests := []string{
		"Internal Server Error",
		"<workspaces><workspace>",
		"<layers></layers>",
		"<workspaces><workspace><name>a</name></workspace></workspaces><broken",
		"<workspaces></workspaces><workspaces></workspaces>",
		"<workspaces></workspaces>trailing",
	}
	for _, payload := range tests {
		var list WorkspaceList
		err := Decode("http://geoserver/rest/workspaces.xml", []byte(payload), &list)
		var decodeErr ErrDecode
		if assert.True(t, errors.As(err, &decodeErr), "payload %q", payload) {
			assert.Equal(t, "http://geoserver/rest/workspaces.xml", decodeErr.URL)
			assert.Equal(t, payload, decodeErr.Payload)
			assert.True(t, strings.Contains(err.Error(), decodeErr.URL))
			assert.True(t, strings.Contains(err.Error(), payload))
			assert.NotNil(t, decodeErr.Unwrap())
		}
	}
}

func TestDecodeTrailingMisc(t *testing.T) {
	payload := "<?xml version=\"1.0\"?>\n<workspaces><workspace><name>a</name></workspace></workspaces>\n<!-- done -->\n"
	var list WorkspaceList
	if assert.NoError(t, Decode("u", []byte(payload), &list)) &&
		assert.Len(t, list.Workspaces, 1) {
		assert.Equal(t, "a", list.Workspaces[0].Name)
	}
}

func TestDecodeRequestTrailingGarbage(t *testing.T) {
	var ws Workspace
	err := DecodeRequest(XMLMediaType, strings.NewReader("<workspace><name>a</name></workspace><"), &ws)
	var badRequest ErrBadRequest
	assert.True(t, errors.As(err, &badRequest), "got %v", err)
}

func TestIndexLinks(t *testing.T) {
	payload := `<workspaces>
  <workspace>
    <name>topp</name>
    <atom:link xmlns:atom="http://www.w3.org/2005/Atom" rel="alternate"
        href="http://localhost/rest/workspaces/topp.xml" type="application/xml"/>
  </workspace>
  <workspace><name>sf</name></workspace>
</workspaces>`
	var list WorkspaceList
	if assert.NoError(t, Decode("u", []byte(payload), &list)) &&
		assert.Len(t, list.Workspaces, 2) {
		assert.Equal(t, "topp", list.Workspaces[0].Name)
		assert.Equal(t, "http://localhost/rest/workspaces/topp.xml", list.Workspaces[0].Href())
		assert.Equal(t, "sf", list.Workspaces[1].Name)
		assert.Equal(t, "", list.Workspaces[1].Href())
	}
}

func TestResourceKind(t *testing.T) {
	var res Resource
	payload := `<coverage><name>dem</name><srs>EPSG:4326</srs><enabled>false</enabled></coverage>`
	if assert.NoError(t, Decode("u", []byte(payload), &res)) {
		assert.Equal(t, CoverageElement, res.XMLName.Local)
		assert.Equal(t, "EPSG:4326", res.SRS)
		assert.False(t, BoolValue(res.Enabled, true))
	}
}

func TestDecodeRequestMediaType(t *testing.T) {
	var ns Namespace
	err := DecodeRequest("application/json", strings.NewReader("{}"), &ns)
	assert.Equal(t, ErrUnsupportedMediaType{Type: "application/json"}, err)

	err = DecodeRequest("text/xml; charset=utf-8",
		strings.NewReader("<namespace><prefix>a</prefix><uri>urn:a</uri></namespace>"), &ns)
	if assert.NoError(t, err) {
		assert.Equal(t, "a", ns.Prefix)
		assert.Equal(t, "urn:a", ns.URI)
	}

	err = DecodeRequest("", strings.NewReader("<namespace>"), &ns)
	assert.IsType(t, ErrBadRequest{}, err)
}

func TestImporterEnvelope(t *testing.T) {
	payload := `{"import": {"id": 3, "state": "PENDING", "tasks": [{"id": 0, "state": "READY", "data": {"type": "file", "format": "Shapefile"}}]}}`
	var env ImportEnvelope
	if assert.NoError(t, DecodeJSON("u", []byte(payload), &env)) &&
		assert.NotNil(t, env.Import) {
		assert.Equal(t, 3, env.Import.ID)
		assert.Equal(t, StatePending, env.Import.State)
		if assert.Len(t, env.Import.Tasks, 1) {
			assert.Equal(t, "Shapefile", env.Import.Tasks[0].Data.Format)
		}
	}

	err := DecodeJSON("http://x/imports", []byte("not json"), &env)
	assert.IsType(t, ErrDecode{}, err)
}
