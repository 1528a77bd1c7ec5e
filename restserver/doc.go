// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes an in-memory catalog from the memory
// package as a GeoServer-compatible REST configuration service.  The
// restclient and importer packages are matching clients.
//
// The documents exchanged are defined in the restdata package.
//
// HTTP Considerations
//
// Every configuration resource answers at its path both with and
// without an ".xml" suffix, and always responds with XML.  Request
// bodies must be application/xml or text/xml, except for file
// uploads and style bodies, which are taken as they are.
//
// This interface does not check authentication headers; any
// credentials are accepted.
//
// Errors are reported with the same status codes GeoServer uses:
// 404 if a named object does not exist, 403 if deleting something
// that still has dependents without ?recurse=true, 409 on creating
// something that already exists, and 400 for malformed requests.  The
// response body is a plain-text message.
//
// URL Scheme
//
// Resources follow the natural hierarchy of the catalog:
//
//     /workspaces/{workspace}
//     /workspaces/{workspace}/datastores/{store}
//     /workspaces/{workspace}/datastores/{store}/featuretypes/{resource}
//     /workspaces/{workspace}/coveragestores/{store}/coverages/{resource}
//     /layers/{layer}
//     /styles/{style}
//     /workspaces/{workspace}/styles/{style}
//     /layergroups/{group}
//
// PUT of a shapefile bundle to
// /workspaces/{workspace}/datastores/{store}/file.shp, or of a raster
// to /workspaces/{workspace}/coveragestores/{store}/file.geotiff,
// creates the store and publishes its contents, responding 201
// Created.
//
// The importer extension lives under /imports and speaks JSON.
// Committing or deleting an import responds 204 No Content.
package restserver
