// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file serves the importer extension's JSON API.

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"mime"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/diffeo/go-gsconfig/memory"
	"github.com/diffeo/go-gsconfig/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) populateImports(r *mux.Router) {
	r.Path("/imports").Name("imports").Handler(&resourceHandler{
		Representation: restdata.ImportEnvelope{},
		JSON:           true,
		Context:        api.Context,
		Get:            api.ImportsGet,
		Post:           api.ImportsPost,
	})
	r.Path("/imports/{import}").Name("import").Handler(&resourceHandler{
		JSON:    true,
		Context: api.Context,
		Get:     api.ImportGet,
		Post:    api.ImportPost,
		Delete:  api.ImportDelete,
	})
	r.Path("/imports/{import}/tasks").Name("tasks").Handler(&resourceHandler{
		JSON:    true,
		Context: api.Context,
		Get:     api.TasksGet,
		Post:    api.TasksPost,
	})
	r.Path("/imports/{import}/tasks/{task}").Name("task").Handler(&resourceHandler{
		JSON:    true,
		Context: api.Context,
		Get:     api.TaskGet,
		Put:     api.TaskPut,
		Delete:  api.TaskDelete,
	})
	r.Path("/imports/{import}/tasks/{task}/progress").Name("progress").Handler(&resourceHandler{
		JSON:    true,
		Context: api.Context,
		Get:     api.ProgressGet,
	})
}

// taskRepresentation builds the JSON form of a task.
func taskRepresentation(urls *urlBuilder, session memory.ImportSession, task memory.ImportTask) restdata.Task {
	id, taskID := strconv.Itoa(session.ID), strconv.Itoa(task.ID)
	repr := restdata.Task{
		ID:         task.ID,
		Href:       urls.URL("task", "import", id, "task", taskID),
		State:      task.State,
		Progress:   urls.URL("progress", "import", id, "task", taskID),
		UpdateMode: task.UpdateMode,
		Data: &restdata.ImportData{
			Type:    "file",
			Format:  task.Format,
			Charset: task.Charset,
		},
	}
	if len(task.Files) == 1 {
		repr.Data.File = task.Files[0]
	} else {
		repr.Data.Type = "directory"
		repr.Data.Files = task.Files
	}
	workspace := task.TargetWorkspace
	if workspace == "" {
		workspace = session.TargetWorkspace
	}
	if task.TargetStore != "" {
		repr.Target = &restdata.TargetRef{DataStore: &restdata.NameRef{Name: task.TargetStore}}
		if workspace != "" {
			repr.Target.DataStore.Workspace = &restdata.NameRef{Name: workspace}
		}
	} else if workspace != "" {
		repr.Target = &restdata.TargetRef{Workspace: &restdata.NameRef{Name: workspace}}
	}
	if task.Layer != "" {
		repr.Layer = &restdata.ImportLayer{Name: task.Layer, OriginalName: task.Layer}
	}
	if task.Transforms != nil {
		repr.TransformChain = &restdata.TransformChain{Type: "vector", Transforms: task.Transforms}
	}
	return repr
}

// importRepresentation builds the JSON form of an import session.
func importRepresentation(urls *urlBuilder, session memory.ImportSession) restdata.Import {
	repr := restdata.Import{
		ID:    session.ID,
		Href:  urls.URL("import", "import", strconv.Itoa(session.ID)),
		State: session.State,
	}
	if session.TargetWorkspace != "" {
		repr.TargetWorkspace = &restdata.TargetRef{
			Workspace: &restdata.NameRef{Name: session.TargetWorkspace},
		}
	}
	for _, task := range session.Tasks {
		repr.Tasks = append(repr.Tasks, taskRepresentation(urls, session, task))
	}
	return repr
}

func (api *restAPI) ImportsGet(ctx *context) (interface{}, error) {
	urls := buildURLs(api.Router, ctx)
	resp := restdata.ImportEnvelope{Imports: []restdata.Import{}}
	for _, id := range api.Catalog.ImportIDs() {
		session, err := api.Catalog.Import(id)
		if err != nil {
			// deleted while we were listing
			continue
		}
		resp.Imports = append(resp.Imports, importRepresentation(urls, session))
	}
	return resp, urls.Error
}

func (api *restAPI) ImportsPost(ctx *context, in interface{}) (interface{}, error) {
	env, valid := in.(restdata.ImportEnvelope)
	if !valid {
		return nil, errUnmarshal
	}
	workspace := ""
	if env.Import != nil && env.Import.TargetWorkspace != nil && env.Import.TargetWorkspace.Workspace != nil {
		workspace = env.Import.TargetWorkspace.Workspace.Name
	}
	session, err := api.Catalog.CreateImport(workspace)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	repr := importRepresentation(urls, session)
	return responseCreated{
		Location: repr.Href,
		Body:     restdata.ImportEnvelope{Import: &repr},
	}, urls.Error
}

func (api *restAPI) ImportGet(ctx *context) (interface{}, error) {
	session, err := api.Catalog.Import(ctx.Import)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	repr := importRepresentation(urls, session)
	return restdata.ImportEnvelope{Import: &repr}, urls.Error
}

// ImportPost commits an import session.  Asynchronous commits are
// accepted but run to completion before responding.
func (api *restAPI) ImportPost(ctx *context, in interface{}) (interface{}, error) {
	return nil, api.Catalog.CommitImport(ctx.Import)
}

func (api *restAPI) ImportDelete(ctx *context) (interface{}, error) {
	return nil, api.Catalog.DeleteImport(ctx.Import)
}

func (api *restAPI) TasksGet(ctx *context) (interface{}, error) {
	session, err := api.Catalog.Import(ctx.Import)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	resp := restdata.ImportEnvelope{Tasks: []restdata.Task{}}
	for _, task := range session.Tasks {
		resp.Tasks = append(resp.Tasks, taskRepresentation(urls, session, task))
	}
	return resp, urls.Error
}

// multipartFiles reads every file part of a multipart/form-data body.
func multipartFiles(contentType string, body []byte) ([]memory.ImportFile, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, restdata.ErrUnsupportedMediaType{Type: mediaType}
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	var files []memory.ImportFile
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, restdata.ErrBadRequest{Err: err}
		}
		name := part.FileName()
		if name == "" {
			continue
		}
		data, err := ioutil.ReadAll(part)
		if err != nil {
			return nil, restdata.ErrBadRequest{Err: err}
		}
		files = append(files, memory.ImportFile{Name: name, Data: data})
	}
	return files, nil
}

// addTask adds one task to the current import session and builds its
// creation response.
func (api *restAPI) addTask(ctx *context, files []memory.ImportFile) (interface{}, error) {
	task, err := api.Catalog.AddImportTask(ctx.Import, files)
	if err != nil {
		return nil, err
	}
	session, err := api.Catalog.Import(ctx.Import)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	repr := taskRepresentation(urls, session, task)
	return responseCreated{
		Location: repr.Href,
		Body:     restdata.ImportEnvelope{Task: &repr},
	}, urls.Error
}

// TasksPost uploads a set of files as one new task.
func (api *restAPI) TasksPost(ctx *context, in interface{}) (interface{}, error) {
	body, valid := in.([]byte)
	if !valid {
		return nil, errUnmarshal
	}
	files, err := multipartFiles(ctx.ContentType, body)
	if err != nil {
		return nil, err
	}
	return api.addTask(ctx, files)
}

func (api *restAPI) TaskGet(ctx *context) (interface{}, error) {
	taskID, err := ctx.TaskID()
	if err != nil {
		return nil, err
	}
	session, err := api.Catalog.Import(ctx.Import)
	if err != nil {
		return nil, err
	}
	task, err := api.Catalog.ImportTask(ctx.Import, taskID)
	if err != nil {
		return nil, err
	}
	urls := buildURLs(api.Router, ctx)
	repr := taskRepresentation(urls, session, task)
	return restdata.ImportEnvelope{Task: &repr}, urls.Error
}

// TaskPut either changes a task's settings, given a JSON task
// document, or uploads a single file named by the last part of the
// URL as a new task.
func (api *restAPI) TaskPut(ctx *context, in interface{}) (interface{}, error) {
	body, valid := in.([]byte)
	if !valid {
		return nil, errUnmarshal
	}
	mediaType, _, _ := mime.ParseMediaType(ctx.ContentType)
	if mediaType != restdata.JSONMediaType {
		return api.addTask(ctx, []memory.ImportFile{{Name: ctx.Task, Data: body}})
	}

	taskID, err := ctx.TaskID()
	if err != nil {
		return nil, err
	}
	var env restdata.ImportEnvelope
	if err = restdata.DecodeJSON("", body, &env); err != nil {
		return nil, restdata.ErrBadRequest{Err: err}
	}
	if env.Task == nil {
		return nil, restdata.ErrBadRequest{Err: errors.New("Expected a task document")}
	}
	return nil, api.Catalog.UpdateImportTask(ctx.Import, taskID, taskUpdate(*env.Task))
}

// taskUpdate extracts the settings a client may change from a task
// document.
func taskUpdate(task restdata.Task) memory.ImportTaskUpdate {
	update := memory.ImportTaskUpdate{UpdateMode: task.UpdateMode}
	if target := task.Target; target != nil {
		if target.Workspace != nil {
			update.TargetWorkspace = target.Workspace.Name
		}
		if target.DataStore != nil {
			update.TargetStore = target.DataStore.Name
			if target.DataStore.Workspace != nil {
				update.TargetWorkspace = target.DataStore.Workspace.Name
			}
		}
	}
	for _, data := range []*restdata.ImportData{task.Data, task.Source} {
		if data != nil && data.Charset != "" {
			update.Charset = data.Charset
		}
	}
	if task.TransformChain != nil {
		update.Transforms = task.TransformChain.Transforms
	}
	return update
}

func (api *restAPI) TaskDelete(ctx *context) (interface{}, error) {
	taskID, err := ctx.TaskID()
	if err != nil {
		return nil, err
	}
	return nil, api.Catalog.DeleteImportTask(ctx.Import, taskID)
}

func (api *restAPI) ProgressGet(ctx *context) (interface{}, error) {
	taskID, err := ctx.TaskID()
	if err != nil {
		return nil, err
	}
	done, total, state, message, err := api.Catalog.ImportProgress(ctx.Import, taskID)
	if err != nil {
		return nil, err
	}
	return restdata.ImportProgress{
		Progress: done,
		Total:    total,
		State:    state,
		Message:  message,
	}, nil
}
