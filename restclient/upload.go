// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"io"
	"io/ioutil"
	"net/http"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/diffeo/go-gsconfig/restdata"
)

// uploadVars builds the template variables of a file upload.  Empty
// optional values are left out of the query string.
func uploadVars(workspace, store string, overwrite bool, charset string) map[string]interface{} {
	vars := map[string]interface{}{
		"workspace": workspace,
		"store":     store,
	}
	if overwrite {
		vars["update"] = "overwrite"
	}
	if charset != "" {
		vars["charset"] = charset
	}
	return vars
}

// checkNoStore returns ErrConflictingData if a store named name
// exists in workspace.
func (c *restCatalog) checkNoStore(name, workspace string) error {
	existing, err := c.existingStore(name, workspace)
	if err != nil {
		return err
	}
	if existing != nil {
		return gsconfig.ErrConflictingData{Kind: "store", Name: name, Scope: workspace}
	}
	return nil
}

func (c *restCatalog) CreateShapefileStore(name, workspace string, bundle io.Reader, overwrite bool, charset string) error {
	workspace, err := c.workspaceName(workspace)
	if err != nil {
		return err
	}
	if !overwrite {
		if err = c.checkNoStore(name, workspace); err != nil {
			return err
		}
	}
	body, err := ioutil.ReadAll(bundle)
	if err != nil {
		return err
	}
	vars := uploadVars(workspace, name, false, charset)
	return c.upload(http.MethodPut, dataStoreFilePath, vars, restdata.ZipMediaType, body, exactly(http.StatusCreated))
}

func (c *restCatalog) AddDataToStore(store, workspace string, bundle io.Reader, overwrite bool, charset string) error {
	target, err := c.Store(store, workspace)
	if err != nil {
		return err
	}
	body, err := ioutil.ReadAll(bundle)
	if err != nil {
		return err
	}
	vars := uploadVars(target.Workspace, target.Name, overwrite, charset)
	return c.upload(http.MethodPut, dataStoreFilePath, vars, restdata.ZipMediaType, body, exactly(http.StatusCreated))
}

func (c *restCatalog) CreateCoverageStore(name, workspace string, data io.Reader, format gsconfig.CoverageFormat, overwrite bool) error {
	workspace, err := c.workspaceName(workspace)
	if err != nil {
		return err
	}
	if !overwrite {
		if err = c.checkNoStore(name, workspace); err != nil {
			return err
		}
	}
	body, err := ioutil.ReadAll(data)
	if err != nil {
		return err
	}
	contentType := restdata.GeoTIFFMediaType
	if format == gsconfig.WorldImage {
		contentType = restdata.ArchiveMediaType
	}
	vars := map[string]interface{}{
		"workspace": workspace,
		"store":     name,
		"extension": format.Extension(),
	}
	return c.upload(http.MethodPut, coverageStoreFilePath, vars, contentType, body, exactly(http.StatusCreated))
}
