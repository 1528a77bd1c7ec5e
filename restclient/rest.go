// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

// This file provides generic REST client code.

import (
	"crypto/tls"
	"errors"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/jtacoma/uritemplates"
	"github.com/sirupsen/logrus"
)

// Resource is a connection to a REST service rooted at some URL.  It
// knows how to build URLs under that root and how to make
// authenticated requests.  Resource is exported so that clients of
// other REST APIs on the same server, such as the importer, can share
// it.
type Resource struct {
	// URL is the root of the service.  It always ends in a slash,
	// so that relative templates resolve beneath it.
	URL *url.URL

	// Accept is the media type requested in every Accept: header.
	Accept string

	client   *http.Client
	username string
	password string
	log      logrus.FieldLogger
}

// NewResource creates a resource rooted at serviceURL, using the
// credentials and transport settings in opts.
func NewResource(serviceURL string, opts Options) (*Resource, error) {
	if serviceURL == "" {
		return nil, errors.New("restclient: empty service URL")
	}
	if !strings.HasSuffix(serviceURL, "/") {
		serviceURL += "/"
	}
	u, err := url.Parse(serviceURL)
	if err != nil {
		return nil, err
	}

	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	if opts.InsecureSkipVerify {
		client = insecureClient(client)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Resource{
		URL:      u,
		client:   client,
		username: opts.Username,
		password: opts.Password,
		log:      log,
	}, nil
}

// insecureClient returns a copy of client that does not verify TLS
// certificates.  An *http.Transport, or the default one, is cloned
// with verification turned off; any other RoundTripper is kept as is
// and decides verification itself.
func insecureClient(client *http.Client) *http.Client {
	base := http.DefaultTransport
	if client.Transport != nil {
		base = client.Transport
	}
	transport, ok := base.(*http.Transport)
	if !ok {
		return client
	}
	transport = transport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	}
	transport.TLSClientConfig.InsecureSkipVerify = true
	insecure := *client
	insecure.Transport = transport
	return &insecure
}

// Log returns the logger this resource writes to.
func (r *Resource) Log() logrus.FieldLogger {
	return r.log
}

// Template expands a URI template with vars, and returns the result
// relative to the service root.  Variable values are percent-encoded
// by the expansion, so names may contain any characters.
func (r *Resource) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	// Build the template object
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}

	if vars == nil {
		vars = map[string]interface{}{}
	}

	// Expand the template to produce a string
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}

	// Return the parsed URL of the result, relative to ourselves
	return r.URL.Parse(expanded)
}

// Do performs some HTTP action.  If body is non-nil it is sent with
// the given content type.  This returns the response status code and
// the entire response body; it does not check the status, so callers
// decide what counts as success.  An error is returned only if the
// request could not be made or the response could not be read.
func (r *Resource) Do(method string, u *url.URL, contentType string, body io.Reader) (status int, payload []byte, err error) {
	req, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return 0, nil, err
	}
	if body != nil && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if r.Accept != "" {
		req.Header.Set("Accept", r.Accept)
	}
	if r.username != "" || r.password != "" {
		req.SetBasicAuth(r.username, r.password)
	}

	log := r.log.WithFields(logrus.Fields{
		"method": method,
		"url":    u.String(),
	})

	resp, err := r.client.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return 0, nil, err
	}
	defer func() {
		err = firstError(err, resp.Body.Close())
	}()

	payload, err = ioutil.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}

	log = log.WithField("status", resp.StatusCode)
	if resp.StatusCode >= 400 {
		log.Warn("request unsuccessful")
	} else {
		log.Debug("request")
	}
	return resp.StatusCode, payload, nil
}

// Get retrieves the document at u.  Anything but 200 OK is returned
// as gsconfig.ErrFailedRequest.
func (r *Resource) Get(u *url.URL) ([]byte, error) {
	status, payload, err := r.Do(http.MethodGet, u, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, gsconfig.ErrFailedRequest{
			Method: http.MethodGet,
			URL:    u.String(),
			Status: status,
			Body:   string(payload),
		}
	}
	return payload, nil
}

// statusCheck decides whether an HTTP status is acceptable for some
// operation.
type statusCheck func(status int) bool

// exactly accepts only the listed status codes.
func exactly(codes ...int) statusCheck {
	return func(status int) bool {
		for _, code := range codes {
			if status == code {
				return true
			}
		}
		return false
	}
}

// successful accepts any 2xx status.
func successful(status int) bool {
	return status >= 200 && status < 300
}

// notFailed accepts anything that is not a 4xx or 5xx status.
func notFailed(status int) bool {
	return status < 400
}

// isMissing returns true if err reports a 404 Not Found response.
func isMissing(err error) bool {
	var failed gsconfig.ErrFailedRequest
	return errors.As(err, &failed) && failed.Status == http.StatusNotFound
}

func firstError(e1, e2 error) error {
	if e1 != nil {
		return e1
	}
	return e2
}
