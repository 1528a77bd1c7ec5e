// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/diffeo/go-gsconfig/memory"
	"github.com/diffeo/go-gsconfig/restclient"
	"github.com/diffeo/go-gsconfig/restserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTLSServer(t *testing.T) *httptest.Server {
	mem := memory.New()
	require.NoError(t, mem.CreateWorkspace("topp", "http://www.openplans.org/topp"))
	server := httptest.NewTLSServer(restserver.NewRouter(mem))
	t.Cleanup(server.Close)
	return server
}

// TestInsecureKeepsTransport checks that skipping certificate
// verification still uses the caller's transport settings.
func TestInsecureKeepsTransport(t *testing.T) {
	server := newTLSServer(t)

	var dials int32
	dialer := &net.Dialer{}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			atomic.AddInt32(&dials, 1)
			return dialer.DialContext(ctx, network, addr)
		},
	}

	strict, err := restclient.NewWithOptions(server.URL, restclient.Options{
		HTTPClient: &http.Client{Transport: transport},
	})
	require.NoError(t, err)
	_, err = strict.Workspaces()
	assert.Error(t, err, "self-signed certificate should be rejected")

	atomic.StoreInt32(&dials, 0)
	c, err := restclient.NewWithOptions(server.URL, restclient.Options{
		HTTPClient:         &http.Client{Transport: transport},
		InsecureSkipVerify: true,
	})
	require.NoError(t, err)
	workspaces, err := c.Workspaces()
	if assert.NoError(t, err) {
		assert.Len(t, workspaces, 1)
	}
	assert.NotZero(t, atomic.LoadInt32(&dials))
	assert.Nil(t, transport.TLSClientConfig, "caller's transport should not be modified")
}

// TestInsecureCustomRoundTripper checks that a transport that is not
// an *http.Transport is used as given.
func TestInsecureCustomRoundTripper(t *testing.T) {
	server := newTLSServer(t)

	var requests int32
	trusted := server.Client().Transport
	c, err := restclient.NewWithOptions(server.URL, restclient.Options{
		HTTPClient: &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&requests, 1)
			return trusted.RoundTrip(req)
		})},
		InsecureSkipVerify: true,
	})
	require.NoError(t, err)
	_, err = c.Workspaces()
	assert.NoError(t, err)
	assert.NotZero(t, atomic.LoadInt32(&requests))
}
