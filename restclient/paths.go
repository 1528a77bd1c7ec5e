// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import "github.com/diffeo/go-gsconfig/gsconfig"

// URI templates of the REST configuration API, relative to the
// service root.
const (
	versionPath = "about/version.xml"
	aboutPath   = "about/version.html"
	reloadPath  = "reload"

	workspacesPath       = "workspaces.xml"
	workspacePath        = "workspaces/{workspace}.xml"
	defaultWorkspacePath = "workspaces/default.xml"
	namespacesPath       = "namespaces"

	dataStoresPath    = "workspaces/{workspace}/datastores.xml"
	dataStorePath     = "workspaces/{workspace}/datastores/{store}.xml"
	dataStoreFilePath = "workspaces/{workspace}/datastores/{store}/file.shp{?charset,update}"
	featureTypesPath  = "workspaces/{workspace}/datastores/{store}/featuretypes.xml"
	featureTypePath   = "workspaces/{workspace}/datastores/{store}/featuretypes/{resource}.xml"

	coverageStoresPath    = "workspaces/{workspace}/coveragestores.xml"
	coverageStorePath     = "workspaces/{workspace}/coveragestores/{store}.xml"
	coverageStoreFilePath = "workspaces/{workspace}/coveragestores/{store}/file.{extension}"
	coveragesPath         = "workspaces/{workspace}/coveragestores/{store}/coverages.xml"
	coveragePath          = "workspaces/{workspace}/coveragestores/{store}/coverages/{resource}.xml"

	layersPath = "layers.xml"
	layerPath  = "layers/{layer}.xml"

	stylesPath            = "styles.xml"
	createStylePath       = "styles{?name}"
	stylePath             = "styles/{style}.xml"
	styleSLDPath          = "styles/{style}.sld"
	workspaceStylesPath   = "workspaces/{workspace}/styles.xml"
	workspaceStylePath    = "workspaces/{workspace}/styles/{style}.xml"
	workspaceStyleSLDPath = "workspaces/{workspace}/styles/{style}.sld"

	layerGroupsPath      = "layergroups.xml"
	createLayerGroupPath = "layergroups"
	layerGroupPath       = "layergroups/{group}.xml"
)

// storePaths returns the store, index, and member templates for a
// kind of store.
func storePaths(kind gsconfig.StoreKind) (store, resources, resource string) {
	if kind == gsconfig.CoverageStoreKind {
		return coverageStorePath, coveragesPath, coveragePath
	}
	return dataStorePath, featureTypesPath, featureTypePath
}
