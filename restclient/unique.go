// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import "github.com/diffeo/go-gsconfig/gsconfig"

// unique applies the lookup contract to a set of candidates: exactly
// one is returned, none is ErrNotFound, and more than one is
// ErrAmbiguousRequest.
func unique[T any](kind, name, scope string, candidates []T) (T, error) {
	var zero T
	switch len(candidates) {
	case 0:
		return zero, gsconfig.ErrNotFound{Kind: kind, Name: name, Scope: scope}
	case 1:
		return candidates[0], nil
	default:
		return zero, gsconfig.ErrAmbiguousRequest{
			Kind:  kind,
			Name:  name,
			Scope: scope,
			Count: len(candidates),
		}
	}
}

// gather runs find once per scope and collects what it finds.  A
// scope where find reports ErrNotFound contributes nothing; any other
// error stops the search.
func gather[S, T any](scopes []S, find func(S) ([]T, error)) ([]T, error) {
	var found []T
	for _, scope := range scopes {
		more, err := find(scope)
		if gsconfig.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		found = append(found, more...)
	}
	return found, nil
}
