// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

// This file emulates the importer extension: upload sessions whose
// files are examined when added and published when committed.

import (
	"archive/zip"
	"bytes"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/diffeo/go-gsconfig/restdata"
)

// ImportSession is one import session.
type ImportSession struct {
	ID int

	// State is one of the restdata.State* values.
	State string

	// TargetWorkspace is where tasks publish unless they say
	// otherwise; empty means the default workspace.
	TargetWorkspace string

	Tasks []ImportTask
}

// ImportTask is one upload within an import session.
type ImportTask struct {
	ID    int
	State string

	// Files are the names of the uploaded files.
	Files []string

	// Format is the detected data format, "Shapefile" or
	// "GeoTIFF", or empty if the data was not recognized.
	Format string

	// Layer is the name the data will be published under.
	Layer string

	Charset         string
	UpdateMode      string
	TargetStore     string
	TargetWorkspace string
	Transforms      []map[string]interface{}

	// Message describes why a task failed.
	Message string
}

// ImportFile is one uploaded file.
type ImportFile struct {
	Name string
	Data []byte
}

// ImportTaskUpdate changes settings of an import task.  Empty fields
// are left unchanged.
type ImportTaskUpdate struct {
	TargetStore     string
	TargetWorkspace string
	UpdateMode      string
	Charset         string
	Transforms      []map[string]interface{}
}

type memImport struct {
	session ImportSession
	data    map[int][]byte
}

func (c *Catalog) importSession(id int) (*memImport, error) {
	imp := c.imports[id]
	if imp == nil {
		return nil, notFound("import", strconv.Itoa(id), "")
	}
	return imp, nil
}

func (imp *memImport) task(id int) (*ImportTask, error) {
	for i := range imp.session.Tasks {
		if imp.session.Tasks[i].ID == id {
			return &imp.session.Tasks[i], nil
		}
	}
	return nil, notFound("task", strconv.Itoa(id), "import "+strconv.Itoa(imp.session.ID))
}

// updateState recomputes the session state from its tasks.
func (imp *memImport) updateState() {
	if imp.session.State == restdata.StateComplete || imp.session.State == restdata.StateIncomplete {
		return
	}
	imp.session.State = restdata.StateReady
	if len(imp.session.Tasks) == 0 {
		imp.session.State = restdata.StatePending
	}
	for _, task := range imp.session.Tasks {
		if task.State != restdata.StateReady {
			imp.session.State = restdata.StatePending
		}
	}
}

func cloneSession(s ImportSession) ImportSession {
	s.Tasks = append([]ImportTask(nil), s.Tasks...)
	return s
}

// CreateImport starts a new import session.  If targetWorkspace is
// not empty it must exist.
func (c *Catalog) CreateImport(targetWorkspace string) (ImportSession, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	if targetWorkspace != "" {
		if _, err := c.workspace(targetWorkspace); err != nil {
			return ImportSession{}, err
		}
	}
	imp := &memImport{
		session: ImportSession{
			ID:              c.nextImport,
			State:           restdata.StatePending,
			TargetWorkspace: targetWorkspace,
		},
		data: make(map[int][]byte),
	}
	c.imports[imp.session.ID] = imp
	c.nextImport++
	return cloneSession(imp.session), nil
}

// ImportIDs returns the IDs of all import sessions, in order.
func (c *Catalog) ImportIDs() []int {
	c.sem.Lock()
	defer c.sem.Unlock()

	ids := make([]int, 0, len(c.imports))
	for id := range c.imports {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Import returns a copy of an import session.
func (c *Catalog) Import(id int) (ImportSession, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	imp, err := c.importSession(id)
	if err != nil {
		return ImportSession{}, err
	}
	return cloneSession(imp.session), nil
}

// DeleteImport discards an import session and its uploaded data.
func (c *Catalog) DeleteImport(id int) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	if _, err := c.importSession(id); err != nil {
		return err
	}
	delete(c.imports, id)
	return nil
}

// AddImportTask adds a task for a set of uploaded files: a single zip
// archive, or the loose parts of a shapefile or a GeoTIFF.  The data
// format is detected immediately.
func (c *Catalog) AddImportTask(id int, files []ImportFile) (ImportTask, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	imp, err := c.importSession(id)
	if err != nil {
		return ImportTask{}, err
	}
	if len(files) == 0 {
		return ImportTask{}, badRequest("no files uploaded")
	}
	if imp.session.State == restdata.StateComplete {
		return ImportTask{}, badRequest("import %d is already complete", id)
	}

	task := ImportTask{
		ID:         len(imp.session.Tasks),
		State:      restdata.StatePending,
		UpdateMode: restdata.UpdateCreate,
	}
	for _, f := range files {
		task.Files = append(task.Files, f.Name)
	}
	if n := len(imp.session.Tasks); n > 0 {
		task.ID = imp.session.Tasks[n-1].ID + 1
	}

	data, err := bundleFiles(files)
	if err != nil {
		return ImportTask{}, err
	}
	if shapefiles, _ := zipMembers(data, ".shp"); len(shapefiles) > 0 {
		task.Format = "Shapefile"
		task.Layer = shapefiles[0]
	} else if name, tiff := singleTIFF(files); tiff {
		task.Format = "GeoTIFF"
		task.Layer = name
		data = files[0].Data
	}
	if task.Format != "" {
		task.State = restdata.StateReady
	}

	imp.session.Tasks = append(imp.session.Tasks, task)
	imp.data[task.ID] = data
	imp.updateState()
	return task, nil
}

// bundleFiles returns a single zip archive holding files.  A single
// zip file is returned as is.
func bundleFiles(files []ImportFile) ([]byte, error) {
	if len(files) == 1 && strings.EqualFold(path.Ext(files[0].Name), ".zip") {
		return files[0].Data, nil
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range files {
		member, err := w.Create(path.Base(f.Name))
		if err != nil {
			return nil, err
		}
		if _, err = member.Write(f.Data); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// singleTIFF checks whether files is exactly one TIFF image, and
// returns its base name.
func singleTIFF(files []ImportFile) (string, bool) {
	if len(files) != 1 || !isTIFF(files[0].Data) {
		return "", false
	}
	base := path.Base(files[0].Name)
	return strings.TrimSuffix(base, path.Ext(base)), true
}

// ImportTask returns a copy of one task of an import session.
func (c *Catalog) ImportTask(id, taskID int) (ImportTask, error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	imp, err := c.importSession(id)
	if err != nil {
		return ImportTask{}, err
	}
	task, err := imp.task(taskID)
	if err != nil {
		return ImportTask{}, err
	}
	return *task, nil
}

// UpdateImportTask changes the target, update mode, character set, or
// transforms of a task.  A new target workspace must exist.
func (c *Catalog) UpdateImportTask(id, taskID int, update ImportTaskUpdate) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	imp, err := c.importSession(id)
	if err != nil {
		return err
	}
	task, err := imp.task(taskID)
	if err != nil {
		return err
	}
	if update.TargetWorkspace != "" {
		if _, err = c.workspace(update.TargetWorkspace); err != nil {
			return badRequest("no such workspace %s", update.TargetWorkspace)
		}
		task.TargetWorkspace = update.TargetWorkspace
	}
	if update.TargetStore != "" {
		task.TargetStore = update.TargetStore
	}
	switch update.UpdateMode {
	case "":
	case restdata.UpdateCreate, restdata.UpdateReplace, restdata.UpdateAppend:
		task.UpdateMode = update.UpdateMode
	default:
		return badRequest("invalid update mode %q", update.UpdateMode)
	}
	if update.Charset != "" {
		task.Charset = update.Charset
	}
	if update.Transforms != nil {
		task.Transforms = update.Transforms
	}
	return nil
}

// DeleteImportTask removes one task from an import session.
func (c *Catalog) DeleteImportTask(id, taskID int) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	imp, err := c.importSession(id)
	if err != nil {
		return err
	}
	if _, err = imp.task(taskID); err != nil {
		return err
	}
	tasks := imp.session.Tasks[:0]
	for _, task := range imp.session.Tasks {
		if task.ID != taskID {
			tasks = append(tasks, task)
		}
	}
	imp.session.Tasks = tasks
	delete(imp.data, taskID)
	imp.updateState()
	return nil
}

// CommitImport publishes every ready task of an import session.
// Tasks that fail are marked with an error state and message; the
// session is complete only if every task succeeded.
func (c *Catalog) CommitImport(id int) error {
	c.sem.Lock()
	defer c.sem.Unlock()

	imp, err := c.importSession(id)
	if err != nil {
		return err
	}
	if imp.session.State == restdata.StateComplete {
		return badRequest("import %d is already complete", id)
	}

	complete := true
	for i := range imp.session.Tasks {
		task := &imp.session.Tasks[i]
		if task.State != restdata.StateReady {
			complete = complete && task.State == restdata.StateComplete
			continue
		}
		if err := c.commitTask(imp, task); err != nil {
			task.State = restdata.StateError
			task.Message = err.Error()
			complete = false
			continue
		}
		task.State = restdata.StateComplete
	}
	if complete {
		imp.session.State = restdata.StateComplete
	} else {
		imp.session.State = restdata.StateIncomplete
	}
	return nil
}

// commitTask publishes one task.  It assumes the global lock.
func (c *Catalog) commitTask(imp *memImport, task *ImportTask) error {
	workspace := task.TargetWorkspace
	if workspace == "" {
		workspace = imp.session.TargetWorkspace
	}
	if workspace == "" {
		var err error
		if workspace, err = c.defaultWorkspaceName(); err != nil {
			return err
		}
	}
	store := task.TargetStore
	if store == "" {
		store = task.Layer
	}
	data := imp.data[task.ID]

	if task.Format == "GeoTIFF" {
		return c.uploadCoverage(workspace, store, "geotiff", data)
	}
	update := ""
	if task.UpdateMode == restdata.UpdateReplace {
		update = "overwrite"
	}
	return c.uploadShapefile(workspace, store, data, update, task.Charset)
}

// ImportProgress reports how far along a task is, as a count of
// items done out of a total.
func (c *Catalog) ImportProgress(id, taskID int) (done, total int, state, message string, err error) {
	c.sem.Lock()
	defer c.sem.Unlock()

	imp, err := c.importSession(id)
	if err != nil {
		return 0, 0, "", "", err
	}
	task, err := imp.task(taskID)
	if err != nil {
		return 0, 0, "", "", err
	}
	total = 1
	if task.State == restdata.StateComplete {
		done = 1
	}
	return done, total, task.State, task.Message, nil
}
