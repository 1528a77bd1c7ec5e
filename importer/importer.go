// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package importer is a client for GeoServer's importer extension,
// which stages uploaded files in import sessions and publishes them
// when the session is committed.
//
// An import session holds tasks, one per uploaded file or set of
// files.  Each task can be pointed at a target store or workspace and
// have its update mode or character set changed before the session
// is committed.  Unlike the configuration API the importer speaks
// JSON; documents are encoded with the same codec as the rest of the
// module's JSON.
package importer

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restclient"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/sirupsen/logrus"
)

// Client talks to the importer API of one GeoServer.
type Client struct {
	rest *restclient.Resource
}

// New creates an importer client for the REST service at serviceURL,
// the same URL the catalog client uses.  It does not contact the
// server.
func New(serviceURL string, opts restclient.Options) (*Client, error) {
	rest, err := restclient.NewResource(serviceURL, opts)
	if err != nil {
		return nil, err
	}
	rest.Accept = restdata.JSONMediaType
	return &Client{rest: rest}, nil
}

// Session is a snapshot of one import session.
type Session struct {
	ID    int
	Href  string
	State string

	// TargetWorkspace is where tasks publish unless they name a
	// target of their own.  Empty means the server's default
	// workspace.
	TargetWorkspace string

	Tasks []*Task
}

// Task is a snapshot of one task of an import session.
type Task struct {
	ID      int
	Session int
	Href    string
	State   string

	// Format is the data format the server detected, or empty if
	// it did not recognize the upload.
	Format  string
	Charset string
	Files   []string

	UpdateMode      string
	TargetStore     string
	TargetWorkspace string

	// Layer is the name the task's data will be published as.
	Layer string

	Transforms []map[string]interface{}
}

// TargetLayerName returns the workspace-qualified name the task will
// publish, such as "topp:roads".
func (t *Task) TargetLayerName() string {
	return restdata.QualifyName(t.TargetWorkspace, t.Layer)
}

// Progress reports how far a task has gotten.
type Progress struct {
	Done    int
	Total   int
	State   string
	Message string
}

// File is one file of a multi-file upload.
type File struct {
	Name string
	Data io.Reader
}

const (
	importsTemplate  = "imports"
	importTemplate   = "imports/{import}{?async}"
	tasksTemplate    = "imports/{import}/tasks"
	taskTemplate     = "imports/{import}/tasks/{task}"
	progressTemplate = "imports/{import}/tasks/{task}/progress"
)

func (c *Client) url(template string, vars map[string]interface{}) (*url.URL, error) {
	return c.rest.Template(template, vars)
}

func sessionVars(session int) map[string]interface{} {
	return map[string]interface{}{"import": strconv.Itoa(session)}
}

func taskVars(task *Task) map[string]interface{} {
	return map[string]interface{}{
		"import": strconv.Itoa(task.Session),
		"task":   strconv.Itoa(task.ID),
	}
}

// send makes a request and fails unless the response has the wanted
// status.  The response body is returned on success.
func (c *Client) send(method string, u *url.URL, contentType string, body io.Reader, want int) ([]byte, error) {
	status, payload, err := c.rest.Do(method, u, contentType, body)
	if err != nil {
		return nil, err
	}
	if status != want {
		return nil, gsconfig.ErrFailedRequest{
			Method: method,
			URL:    u.String(),
			Status: status,
			Body:   string(payload),
		}
	}
	return payload, nil
}

// envelope decodes a response document.
func envelope(u *url.URL, payload []byte) (restdata.ImportEnvelope, error) {
	var env restdata.ImportEnvelope
	err := restdata.DecodeJSON(u.String(), payload, &env)
	return env, err
}

// missing builds the decode error for a response that lacks the
// expected document.
func missing(u *url.URL, payload []byte, kind string) error {
	return restdata.ErrDecode{
		URL:     u.String(),
		Payload: string(payload),
		Err:     fmt.Errorf("response has no %s document", kind),
	}
}

func sessionFrom(repr restdata.Import) *Session {
	session := &Session{
		ID:    repr.ID,
		Href:  repr.Href,
		State: repr.State,
	}
	if repr.TargetWorkspace != nil && repr.TargetWorkspace.Workspace != nil {
		session.TargetWorkspace = repr.TargetWorkspace.Workspace.Name
	}
	for _, task := range repr.Tasks {
		session.Tasks = append(session.Tasks, taskFrom(session.ID, session.TargetWorkspace, task))
	}
	return session
}

func taskFrom(session int, workspace string, repr restdata.Task) *Task {
	task := &Task{
		ID:              repr.ID,
		Session:         session,
		Href:            repr.Href,
		State:           repr.State,
		UpdateMode:      repr.UpdateMode,
		TargetWorkspace: workspace,
	}
	if data := repr.Data; data != nil {
		task.Format = data.Format
		task.Charset = data.Charset
		task.Files = data.Files
		if data.File != "" {
			task.Files = []string{data.File}
		}
	}
	if target := repr.Target; target != nil {
		if target.Workspace != nil {
			task.TargetWorkspace = target.Workspace.Name
		}
		if target.DataStore != nil {
			task.TargetStore = target.DataStore.Name
			if target.DataStore.Workspace != nil {
				task.TargetWorkspace = target.DataStore.Workspace.Name
			}
		}
	}
	if repr.Layer != nil {
		task.Layer = repr.Layer.Name
	}
	if repr.TransformChain != nil {
		task.Transforms = repr.TransformChain.Transforms
	}
	return task
}

// CreateSession starts a new import session.  If targetWorkspace is
// not empty, tasks publish into that workspace by default.
func (c *Client) CreateSession(targetWorkspace string) (*Session, error) {
	u, err := c.url(importsTemplate, nil)
	if err != nil {
		return nil, err
	}
	repr := restdata.Import{}
	if targetWorkspace != "" {
		repr.TargetWorkspace = &restdata.TargetRef{
			Workspace: &restdata.NameRef{Name: targetWorkspace},
		}
	}
	body, err := restdata.EncodeJSON(restdata.ImportEnvelope{Import: &repr})
	if err != nil {
		return nil, err
	}
	payload, err := c.send(http.MethodPost, u, restdata.JSONMediaType, bytes.NewReader(body), http.StatusCreated)
	if err != nil {
		return nil, err
	}
	env, err := envelope(u, payload)
	if err != nil {
		return nil, err
	}
	if env.Import == nil {
		return nil, missing(u, payload, "import")
	}
	session := sessionFrom(*env.Import)
	c.rest.Log().WithField("import", session.ID).Info("created import session")
	return session, nil
}

// Session fetches an import session by ID.
func (c *Client) Session(id int) (*Session, error) {
	u, err := c.url(importTemplate, sessionVars(id))
	if err != nil {
		return nil, err
	}
	payload, err := c.rest.Get(u)
	if err != nil {
		return nil, err
	}
	env, err := envelope(u, payload)
	if err != nil {
		return nil, err
	}
	if env.Import == nil {
		return nil, missing(u, payload, "import")
	}
	return sessionFrom(*env.Import), nil
}

// Sessions fetches every import session.
func (c *Client) Sessions() ([]*Session, error) {
	u, err := c.url(importsTemplate, nil)
	if err != nil {
		return nil, err
	}
	payload, err := c.rest.Get(u)
	if err != nil {
		return nil, err
	}
	env, err := envelope(u, payload)
	if err != nil {
		return nil, err
	}
	sessions := make([]*Session, 0, len(env.Imports))
	for _, repr := range env.Imports {
		sessions = append(sessions, sessionFrom(repr))
	}
	return sessions, nil
}

// addedTask decodes the response to an upload.
func addedTask(session *Session, u *url.URL, payload []byte) (*Task, error) {
	env, err := envelope(u, payload)
	if err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, missing(u, payload, "task")
	}
	task := taskFrom(session.ID, session.TargetWorkspace, *env.Task)
	session.Tasks = append(session.Tasks, task)
	return task, nil
}

// UploadZip uploads a zip archive as a new task of session.  The
// returned task is also appended to session.Tasks.
func (c *Client) UploadZip(session *Session, filename string, r io.Reader) (*Task, error) {
	u, err := c.url(taskTemplate, map[string]interface{}{
		"import": strconv.Itoa(session.ID),
		"task":   path.Base(filename),
	})
	if err != nil {
		return nil, err
	}
	payload, err := c.send(http.MethodPut, u, restdata.ZipMediaType, r, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return addedTask(session, u, payload)
}

// UploadFiles uploads several files, such as the parts of a
// shapefile, as one new task of session.
func (c *Client) UploadFiles(session *Session, files []File) (*Task, error) {
	u, err := c.url(tasksTemplate, sessionVars(session.ID))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("filedata", path.Base(f.Name))
		if err != nil {
			return nil, err
		}
		if _, err = io.Copy(part, f.Data); err != nil {
			return nil, err
		}
	}
	if err = w.Close(); err != nil {
		return nil, err
	}
	payload, err := c.send(http.MethodPost, u, w.FormDataContentType(), &buf, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return addedTask(session, u, payload)
}

// Commit runs the import, publishing every ready task.  With async
// the server may respond before the import finishes; poll Session or
// Progress to see the outcome.
func (c *Client) Commit(session *Session, async bool) error {
	vars := sessionVars(session.ID)
	if async {
		vars["async"] = "true"
	}
	u, err := c.url(importTemplate, vars)
	if err != nil {
		return err
	}
	if _, err = c.send(http.MethodPost, u, "", nil, http.StatusNoContent); err != nil {
		return err
	}
	c.rest.Log().WithFields(logrus.Fields{
		"import": session.ID,
		"async":  async,
	}).Info("committed import session")
	return nil
}

// DeleteSession discards an import session and its staged files.
func (c *Client) DeleteSession(session *Session) error {
	u, err := c.url(importTemplate, sessionVars(session.ID))
	if err != nil {
		return err
	}
	_, err = c.send(http.MethodDelete, u, "", nil, http.StatusNoContent)
	return err
}

// updateTask sends a partial task document.
func (c *Client) updateTask(task *Task, repr restdata.Task) error {
	u, err := c.url(taskTemplate, taskVars(task))
	if err != nil {
		return err
	}
	body, err := restdata.EncodeJSON(restdata.ImportEnvelope{Task: &repr})
	if err != nil {
		return err
	}
	_, err = c.send(http.MethodPut, u, restdata.JSONMediaType, bytes.NewReader(body), http.StatusNoContent)
	return err
}

// SetTarget points a task at an existing data store.  An empty
// workspace leaves the task's workspace unchanged.
func (c *Client) SetTarget(task *Task, store, workspace string) error {
	target := &restdata.NameRef{Name: store}
	if workspace != "" {
		target.Workspace = &restdata.NameRef{Name: workspace}
	}
	err := c.updateTask(task, restdata.Task{
		ID:     task.ID,
		Target: &restdata.TargetRef{DataStore: target},
	})
	if err != nil {
		return err
	}
	task.TargetStore = store
	if workspace != "" {
		task.TargetWorkspace = workspace
	}
	return nil
}

// SetUpdateMode changes what happens when the task's layer already
// exists: restdata.UpdateCreate, UpdateReplace or UpdateAppend.
func (c *Client) SetUpdateMode(task *Task, mode string) error {
	err := c.updateTask(task, restdata.Task{ID: task.ID, UpdateMode: mode})
	if err == nil {
		task.UpdateMode = mode
	}
	return err
}

// SetCharset changes the character set the task's data is read with.
func (c *Client) SetCharset(task *Task, charset string) error {
	err := c.updateTask(task, restdata.Task{
		ID:     task.ID,
		Source: &restdata.ImportData{Charset: charset},
	})
	if err == nil {
		task.Charset = charset
	}
	return err
}

// SetTransforms replaces the transforms applied to the task's data.
func (c *Client) SetTransforms(task *Task, transforms []map[string]interface{}) error {
	if transforms == nil {
		transforms = []map[string]interface{}{}
	}
	err := c.updateTask(task, restdata.Task{
		ID:             task.ID,
		TransformChain: &restdata.TransformChain{Type: "vector", Transforms: transforms},
	})
	if err == nil {
		task.Transforms = transforms
	}
	return err
}

// DeleteTask removes a task from its session.
func (c *Client) DeleteTask(task *Task) error {
	u, err := c.url(taskTemplate, taskVars(task))
	if err != nil {
		return err
	}
	_, err = c.send(http.MethodDelete, u, "", nil, http.StatusNoContent)
	return err
}

// Task fetches the current state of a task.
func (c *Client) Task(session, id int) (*Task, error) {
	u, err := c.url(taskTemplate, taskVars(&Task{Session: session, ID: id}))
	if err != nil {
		return nil, err
	}
	payload, err := c.rest.Get(u)
	if err != nil {
		return nil, err
	}
	env, err := envelope(u, payload)
	if err != nil {
		return nil, err
	}
	if env.Task == nil {
		return nil, missing(u, payload, "task")
	}
	return taskFrom(session, "", *env.Task), nil
}

// Progress fetches how far along a task is.
func (c *Client) Progress(task *Task) (Progress, error) {
	u, err := c.url(progressTemplate, taskVars(task))
	if err != nil {
		return Progress{}, err
	}
	payload, err := c.rest.Get(u)
	if err != nil {
		return Progress{}, err
	}
	var repr restdata.ImportProgress
	if err = restdata.DecodeJSON(u.String(), payload, &repr); err != nil {
		return Progress{}, err
	}
	return Progress{
		Done:    repr.Progress,
		Total:   repr.Total,
		State:   repr.State,
		Message: repr.Message,
	}, nil
}
