// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"testing"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ gsconfig.Catalog = (*restCatalog)(nil)

func TestCatalogTransport(t *testing.T) {
	c, err := newCatalog("http://localhost:8080/geoserver/rest", Options{})
	require.NoError(t, err)
	assert.Equal(t, restdata.XMLMediaType, c.rest.Accept)
	assert.Equal(t, "http://localhost:8080/geoserver/rest/", c.rest.URL.String())

	u, err := c.rest.Template("workspaces/{workspace}.xml", map[string]interface{}{"workspace": "topp"})
	if assert.NoError(t, err) {
		assert.Equal(t, "http://localhost:8080/geoserver/rest/workspaces/topp.xml", u.String())
	}
}
