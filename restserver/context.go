// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

// errUnmarshal is returned if the put/post contract is violated and
// a handler function is passed the wrong type.
var errUnmarshal = restdata.ErrBadRequest{
	Err: errors.New("Invalid input format"),
}

// context holds all of the information that can be extracted from
// URL parameters.  Names are only extracted here; whether the objects
// they name exist is up to the handler.
type context struct {
	Workspace   string
	Store       string
	Resource    string
	Layer       string
	Style       string
	Group       string
	Extension   string
	Import      int
	Task        string
	QueryParams url.Values
	ContentType string

	// Base is the scheme and host of the request, used to build
	// absolute links.
	Base string
}

func (api *restAPI) Context(req *http.Request) (ctx *context, err error) {
	ctx = &context{
		QueryParams: req.URL.Query(),
		ContentType: req.Header.Get("Content-Type"),
	}
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	ctx.Base = scheme + "://" + req.Host

	vars := mux.Vars(req)
	ctx.Workspace = vars["workspace"]
	ctx.Store = vars["store"]
	ctx.Resource = vars["resource"]
	ctx.Layer = vars["layer"]
	ctx.Style = vars["style"]
	ctx.Group = vars["group"]
	ctx.Extension = vars["extension"]
	ctx.Task = vars["task"]
	if imp, present := vars["import"]; present {
		ctx.Import, err = strconv.Atoi(imp)
		if err != nil {
			err = restdata.ErrNotFound{Err: gsconfig.ErrNotFound{Kind: "import", Name: imp}}
		}
	}
	return
}

// BoolParam looks at ctx.QueryParams for a parameter named name.  If
// it has a normally-truthy value (1, on, false, no, ...) then return
// that value.  A parameter present with no value, as in "?async", is
// true.  Otherwise (foo, absent, ...) return def.
func (ctx *context) BoolParam(name string, def bool) bool {
	values, present := ctx.QueryParams[name]
	if !present {
		return def
	}
	if len(values) == 0 || values[0] == "" {
		return true
	}
	switch strings.ToLower(values[0]) {
	case "0", "f", "n", "false", "off", "no":
		return false
	case "1", "t", "y", "true", "on", "yes":
		return true
	default:
		return def
	}
}

// TaskID returns the task part of the URL as a number.
func (ctx *context) TaskID() (int, error) {
	id, err := strconv.Atoi(ctx.Task)
	if err != nil {
		return 0, restdata.ErrNotFound{Err: gsconfig.ErrNotFound{Kind: "task", Name: ctx.Task}}
	}
	return id, nil
}
