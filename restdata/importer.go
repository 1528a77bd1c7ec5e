// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

// This file holds the JSON representations used by GeoServer's
// importer extension, rooted at /imports.  Unlike the configuration
// API these are JSON, and every document is wrapped in a single-key
// envelope naming its type.

import (
	"github.com/ugorji/go/codec"
)

// Import states reported by the server.
const (
	StatePending    = "PENDING"
	StateReady      = "READY"
	StateRunning    = "RUNNING"
	StateIncomplete = "INCOMPLETE"
	StateComplete   = "COMPLETE"
	StateError      = "ERROR"
)

// Update modes of an import task.
const (
	UpdateCreate  = "CREATE"
	UpdateReplace = "REPLACE"
	UpdateAppend  = "APPEND"
)

// ImportEnvelope wraps every importer document.  Exactly one field is
// set in a well-formed response.
type ImportEnvelope struct {
	Import  *Import  `json:"import,omitempty"`
	Imports []Import `json:"imports,omitempty"`
	Task    *Task    `json:"task,omitempty"`
	Tasks   []Task   `json:"tasks,omitempty"`
}

// Import is one import session.
type Import struct {
	ID              int        `json:"id"`
	Href            string     `json:"href,omitempty"`
	State           string     `json:"state,omitempty"`
	Archive         bool       `json:"archive,omitempty"`
	TargetWorkspace *TargetRef `json:"targetWorkspace,omitempty"`
	Tasks           []Task     `json:"tasks,omitempty"`
}

// TargetRef names a workspace or store in an importer document.
type TargetRef struct {
	Workspace *NameRef `json:"workspace,omitempty"`
	DataStore *NameRef `json:"dataStore,omitempty"`
}

// NameRef is a bare {"name": ...} object.
type NameRef struct {
	Name      string   `json:"name"`
	Workspace *NameRef `json:"workspace,omitempty"`
}

// Task is one unit of work in an import session: a file or set of
// files and where they will be published.  The server describes the
// files in Data; a client changing the character set sends Source.
type Task struct {
	ID             int             `json:"id"`
	Href           string          `json:"href,omitempty"`
	State          string          `json:"state,omitempty"`
	Progress       string          `json:"progress,omitempty"`
	UpdateMode     string          `json:"updateMode,omitempty"`
	Data           *ImportData     `json:"data,omitempty"`
	Source         *ImportData     `json:"source,omitempty"`
	Target         *TargetRef      `json:"target,omitempty"`
	Layer          *ImportLayer    `json:"layer,omitempty"`
	TransformChain *TransformChain `json:"transformChain,omitempty"`
}

// ImportData describes the source data of a task.  A missing format
// means the server did not recognize the data.
type ImportData struct {
	Type    string   `json:"type,omitempty"`
	Format  string   `json:"format,omitempty"`
	Charset string   `json:"charset,omitempty"`
	File    string   `json:"file,omitempty"`
	Files   []string `json:"files,omitempty"`
}

// ImportLayer describes the layer a task will publish.
type ImportLayer struct {
	Name         string `json:"name"`
	Href         string `json:"href,omitempty"`
	OriginalName string `json:"originalName,omitempty"`
	NativeName   string `json:"nativeName,omitempty"`
	SRS          string `json:"srs,omitempty"`
}

// TransformChain lists the transforms applied to a task's data.
type TransformChain struct {
	Type       string                   `json:"type"`
	Transforms []map[string]interface{} `json:"transforms"`
}

// ImportProgress is the body of a task's progress resource.
type ImportProgress struct {
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
	State    string `json:"state,omitempty"`
	Message  string `json:"message,omitempty"`
}

// DecodeJSON parses an importer payload fetched from url.  Failures
// are returned as ErrDecode, the same as for XML.
func DecodeJSON(url string, payload []byte, out interface{}) error {
	json := &codec.JsonHandle{}
	decoder := codec.NewDecoderBytes(payload, json)
	if err := decoder.Decode(out); err != nil {
		return ErrDecode{URL: url, Payload: string(payload), Err: err}
	}
	return nil
}

// EncodeJSON produces an importer request body.
func EncodeJSON(in interface{}) (out []byte, err error) {
	json := &codec.JsonHandle{}
	encoder := codec.NewEncoderBytes(&out, json)
	err = encoder.Encode(in)
	return
}
