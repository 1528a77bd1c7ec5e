// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains various HTTP-related helpers.

import (
	"fmt"
	"net/http"

	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

// urlBuilder builds absolute URLs of named routes, remembering the
// first error.
type urlBuilder struct {
	Router *mux.Router
	Base   string
	Error  error
}

func buildURLs(router *mux.Router, ctx *context) *urlBuilder {
	return &urlBuilder{Router: router, Base: ctx.Base}
}

func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

// URL returns the absolute URL of a route with the given parameter
// pairs, or an empty string on error.
func (u *urlBuilder) URL(route string, params ...string) string {
	r := u.Route(route)
	if u.Error != nil {
		return ""
	}
	url, err := r.URL(params...)
	if err != nil {
		u.Error = err
		return ""
	}
	return u.Base + url.String()
}

// Link returns an Atom link to a route.
func (u *urlBuilder) Link(route string, params ...string) *restdata.Link {
	return restdata.NewLink(u.URL(route, params...))
}

// Ref returns a named reference with an Atom link to a route.
func (u *urlBuilder) Ref(name, route string, params ...string) restdata.Ref {
	return restdata.Ref{Name: name, Link: u.Link(route, params...)}
}

// route registers a handler for a path both with and without an
// ".xml" suffix, naming the suffixed one.  The suffixed form must be
// added first so that the bare pattern does not swallow the suffix.
func route(r *mux.Router, name, path string, h http.Handler) {
	r.Path(path + ".xml").Name(name).Handler(h)
	r.Path(path).Handler(h)
}
