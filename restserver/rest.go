// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains a REST skeleton framework.
//
// Each resource is a resourceHandler with optional functions per HTTP
// method.  Request bodies are decoded into a fresh copy of the
// handler's representation type, and whatever the handler function
// returns is encoded as the response.  The configuration API speaks
// XML; the importer speaks JSON.

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"reflect"

	"github.com/diffeo/go-gsconfig/restdata"
)

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
type responseCreated struct {
	// Location holds the canonical URL to the newly created resource.
	Location string

	// Body contains the object sent in the body of the response.
	// This may be a plain string, which is sent as text.
	Body interface{}
}

// responseRaw is returned from handler functions that produce a
// document that is not one of the representation types, such as an
// SLD body.
type responseRaw struct {
	ContentType string
	Body        []byte
}

type resourceHandler struct {
	// Representation is an object representing this resource.
	// Request bodies are decoded into a new object of the same
	// type, which is passed to the Put and Post functions.  If
	// this is nil, those functions receive the raw body as a
	// []byte instead.
	Representation interface{}

	// JSON selects JSON encoding for bodies, as the importer
	// uses, instead of XML.
	JSON bool

	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*context, error)

	// Get, if non-nil, returns a representation of the object.
	Get func(*context) (interface{}, error)

	// Put, if non-nil, updates the object.
	Put func(*context, interface{}) (interface{}, error)

	// Post, if non-nil, takes some arbitrary action, usually
	// creating a child object.  It may return responseCreated.
	Post func(*context, interface{}) (interface{}, error)

	// Delete, if non-nil, deletes the object.
	Delete func(*context) (interface{}, error)
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx     *context
		in, out interface{}
		err     error
		status  int
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			resp.Header().Set("Content-Type", "text/plain; charset=utf-8")
			resp.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(resp, "%v", recovered)
		}
	}()

	// Get bits from URL parameters
	status = http.StatusBadRequest
	ctx, err = h.Context(req)

	// Read the body, if it's there
	if err == nil && (req.Method == http.MethodPut || req.Method == http.MethodPost) {
		in, err = h.decodeBody(req)
	}

	// Actually call the handler method
	if err == nil {
		// We will return this if the method is unexpected or
		// we don't have a handler for it
		err = errMethodNotAllowed{Method: req.Method}
		// If anything else goes wrong here, it's an error in
		// client code
		status = http.StatusInternalServerError
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			if h.Get != nil {
				out, err = h.Get(ctx)
			}
		case http.MethodPut:
			if h.Put != nil {
				out, err = h.Put(ctx, in)
			}
		case http.MethodPost:
			if h.Post != nil {
				out, err = h.Post(ctx, in)
			}
		case http.MethodDelete:
			if h.Delete != nil {
				out, err = h.Delete(ctx)
			}
		}
	}

	// Fix up the final result based on what we know.
	contentType := restdata.XMLMediaType
	if h.JSON {
		contentType = restdata.JSONMediaType
	}
	var body []byte
	switch v := out.(type) {
	case nil:
		status = http.StatusOK
		if h.JSON {
			status = http.StatusNoContent
		}
	case responseCreated:
		status = http.StatusCreated
		if v.Location != "" {
			resp.Header().Set("Location", v.Location)
		}
		body, contentType, err = h.encode(v.Body, contentType, err)
	case responseRaw:
		status = http.StatusOK
		body = v.Body
		contentType = v.ContentType
	default:
		status = http.StatusOK
		body, contentType, err = h.encode(out, contentType, err)
	}
	if err != nil {
		if errS, hasStatus := err.(restdata.ErrorStatus); hasStatus {
			status = errS.HTTPStatus()
		} else if status < 400 {
			status = http.StatusInternalServerError
		}
		body = []byte(err.Error())
		contentType = "text/plain; charset=utf-8"
	}

	// Actually send the response
	if len(body) > 0 {
		resp.Header().Set("Content-Type", contentType)
	}
	resp.WriteHeader(status)
	if len(body) > 0 && req.Method != http.MethodHead {
		_, _ = resp.Write(body)
	}
}

// decodeBody reads the request body.  If there is a representation
// type, decodes into a new object of that type, and returns that
// object (not a pointer to it).
func (h *resourceHandler) decodeBody(req *http.Request) (interface{}, error) {
	if req.Body == nil {
		req.Body = http.NoBody
	}
	if h.Representation == nil {
		return ioutil.ReadAll(req.Body)
	}
	ptr := reflect.New(reflect.TypeOf(h.Representation))
	contentType := req.Header.Get("Content-Type")
	if h.JSON {
		payload, err := ioutil.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err = restdata.DecodeJSON(req.URL.String(), payload, ptr.Interface()); err != nil {
				return nil, restdata.ErrBadRequest{Err: err}
			}
		}
	} else if err := restdata.DecodeRequest(contentType, req.Body, ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// encode serializes a response body, unless an error has already
// happened.  A string is sent as plain text.
func (h *resourceHandler) encode(out interface{}, contentType string, err error) ([]byte, string, error) {
	if err != nil || out == nil {
		return nil, contentType, err
	}
	if s, isString := out.(string); isString {
		return []byte(s), "text/plain; charset=utf-8", nil
	}
	var body []byte
	if h.JSON {
		body, err = restdata.EncodeJSON(out)
	} else {
		body, err = restdata.Encode(out)
	}
	return body, contentType, err
}
