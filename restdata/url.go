// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import "strings"

// SplitQualifiedName splits a layer name like "topp:states" into its
// workspace prefix and local name.  An unqualified name returns an
// empty workspace.  Only the first colon separates; local names may
// not contain colons but this does not check.
func SplitQualifiedName(name string) (workspace, local string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// QualifyName is the dual of SplitQualifiedName.  An empty workspace
// returns name unchanged.
func QualifyName(workspace, name string) string {
	if workspace == "" {
		return name
	}
	return workspace + ":" + name
}
