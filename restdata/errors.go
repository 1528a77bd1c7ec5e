// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"fmt"
	"net/http"
)

// ErrDecode is returned from Decode when a server response is not the
// XML document it should have been.
type ErrDecode struct {
	// URL is the address the payload was fetched from.
	URL string

	// Payload is the raw response body.
	Payload string

	// Err is the underlying parser error.
	Err error
}

func (e ErrDecode) Error() string {
	return fmt.Sprintf("GeoServer gave non-XML response for [GET %s]: %s", e.URL, e.Payload)
}

// Unwrap returns the parser error.
func (e ErrDecode) Unwrap() error {
	return e.Err
}

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from DecodeRequest() if the
// provided Content-Type: is unrecognized.  This translates directly
// into the equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// ErrConflict wraps an error caused by creating something that
// already exists.
type ErrConflict struct {
	Err error
}

func (e ErrConflict) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 409 Conflict HTTP status code.
func (e ErrConflict) HTTPStatus() int {
	return http.StatusConflict
}

// ErrForbidden wraps an error caused by deleting a container that is
// not empty without asking for a recursive delete.  GeoServer reports
// this as 403 Forbidden.
type ErrForbidden struct {
	Err error
}

func (e ErrForbidden) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 403 Forbidden HTTP status code.
func (e ErrForbidden) HTTPStatus() int {
	return http.StatusForbidden
}
