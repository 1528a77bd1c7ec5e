package gsconfig

import (
	"errors"
	"fmt"
)

// ErrEmptyCredentials is returned from Catalog.CreatePostGISStore()
// if both the database user and password are empty.
var ErrEmptyCredentials = errors.New("Both username and password are empty strings. Use a different user/passwd combination")

// ErrNoUser is returned from Catalog.CreatePostGISStore() if the
// database user is empty but a password was given.
var ErrNoUser = errors.New("Undefined user")

// scope renders an optional lookup scope for error messages.
func scope(s string) string {
	if s == "" {
		return ""
	}
	return " in " + s
}

// ErrNotFound is returned by lookups that find nothing with the
// requested name in the requested scope.
type ErrNotFound struct {
	// Kind is the sort of object, such as "store" or "layer".
	Kind string

	// Name is the name that was looked up.
	Name string

	// Scope is the workspace or store searched, if any.
	Scope string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("No %s found%s named: %s", e.Kind, scope(e.Scope), e.Name)
}

// ErrAmbiguousRequest is returned by lookups that find more than one
// object with the requested name in the requested scope.
type ErrAmbiguousRequest struct {
	Kind  string
	Name  string
	Scope string

	// Count is the number of candidates found.
	Count int
}

func (e ErrAmbiguousRequest) Error() string {
	return fmt.Sprintf("Multiple %ss found%s named: %s (%d candidates)", e.Kind, scope(e.Scope), e.Name, e.Count)
}

// ErrConflictingData is returned by creation functions when an object
// with the requested name already exists and overwriting was not
// requested.
type ErrConflictingData struct {
	Kind  string
	Name  string
	Scope string
}

func (e ErrConflictingData) Error() string {
	return fmt.Sprintf("There is already a %s named %s%s", e.Kind, e.Name, scope(e.Scope))
}

// ErrUpload is returned by creation and upload functions when the
// server does not report success.
type ErrUpload struct {
	// Status is the HTTP status code of the response.
	Status int

	// Body is the server's response text.
	Body string
}

func (e ErrUpload) Error() string {
	return fmt.Sprintf("upload failed with status %d: %s", e.Status, e.Body)
}

// ErrFailedRequest is returned when a fetch, save, or delete does not
// succeed.
type ErrFailedRequest struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e ErrFailedRequest) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.URL, e.Status, e.Body)
}

// IsNotFound returns true if err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	var notFound ErrNotFound
	return errors.As(err, &notFound)
}

// IsAmbiguous returns true if err is, or wraps, ErrAmbiguousRequest.
func IsAmbiguous(err error) bool {
	var ambiguous ErrAmbiguousRequest
	return errors.As(err, &ambiguous)
}
