// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package postgis checks that the database behind a PostGIS data
// store is reachable, from the client's side of the network.  The
// connection settings are the same ones GeoServer is given, so a
// failure here usually means GeoServer cannot connect either.
package postgis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/diffeo/go-gsconfig/gsconfig"
	"github.com/lib/pq"
)

// ErrNotPostGIS is returned by Options when a store is not a PostGIS
// data store.
var ErrNotPostGIS = errors.New("store is not a PostGIS data store")

// ErrNoExtension is returned by Version when the database does not
// have the PostGIS extension installed.
var ErrNoExtension = errors.New("database does not have the PostGIS extension")

// Options recovers PostGIS connection options from the connection
// parameters of a data store.  Missing parameters take the values of
// gsconfig.DefaultPostGISOptions().
func Options(store *gsconfig.Store) (gsconfig.PostGISOptions, error) {
	opts := gsconfig.DefaultPostGISOptions()
	params := store.ConnectionParameters
	if store.Kind != gsconfig.DataStoreKind || !strings.EqualFold(params["dbtype"], "postgis") {
		return opts, ErrNotPostGIS
	}
	if host := params["host"]; host != "" {
		opts.Host = host
	}
	if port := params["port"]; port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return opts, fmt.Errorf("invalid port %q: %w", port, err)
		}
		opts.Port = n
	}
	if database := params["database"]; database != "" {
		opts.Database = database
	}
	if schema := params["schema"]; schema != "" {
		opts.Schema = schema
	}
	if user := params["user"]; user != "" {
		opts.User = user
	}
	opts.Password = params["passwd"]
	return opts, nil
}

// quote makes a value safe for a key/value connection string.
func quote(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	value = strings.Replace(value, `\`, `\\`, -1)
	value = strings.Replace(value, `'`, `\'`, -1)
	return "'" + value + "'"
}

// DSN builds a lib/pq key/value connection string from options.  The
// schema is made the connection's search path.  Keys are sorted, so
// equal options always produce equal strings.
func DSN(opts gsconfig.PostGISOptions) string {
	params := map[string]string{
		"host":    opts.Host,
		"dbname":  opts.Database,
		"sslmode": "disable",
	}
	if opts.Port != 0 {
		params["port"] = strconv.Itoa(opts.Port)
	}
	if opts.User != "" {
		params["user"] = opts.User
	}
	if opts.Password != "" {
		params["password"] = opts.Password
	}
	if opts.Schema != "" {
		params["search_path"] = opts.Schema
	}

	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+quote(params[key]))
	}
	return strings.Join(parts, " ")
}

// Normalize turns a connection string into key/value form.  It may be
// a key/value string already, a "postgres:" URL, or a URL without a
// scheme:
//
//     "host=localhost user=postgres dbname=gis"
//     "postgres://postgres@localhost/gis"
//     "//postgres@localhost/gis"
func Normalize(connectionString string) (string, error) {
	if strings.HasPrefix(connectionString, "//") {
		connectionString = "postgres:" + connectionString
	}
	if strings.HasPrefix(connectionString, "postgres://") || strings.HasPrefix(connectionString, "postgresql://") {
		return pq.ParseURL(connectionString)
	}
	return connectionString, nil
}

// Open returns a connection pool for a connection string in any form
// Normalize accepts.  It does not contact the database.
func Open(connectionString string) (*sql.DB, error) {
	dsn, err := Normalize(connectionString)
	if err != nil {
		return nil, err
	}
	return sql.Open("postgres", dsn)
}

// Ping checks that the database described by opts accepts
// connections.
func Ping(ctx context.Context, opts gsconfig.PostGISOptions) error {
	db, err := Open(DSN(opts))
	if err != nil {
		return err
	}
	defer db.Close()
	return db.PingContext(ctx)
}

// Version returns the version of the PostGIS extension in db.  If the
// extension is missing returns ErrNoExtension.
func Version(ctx context.Context, db *sql.DB) (string, error) {
	var version string
	err := db.QueryRowContext(ctx, "SELECT postgis_lib_version()").Scan(&version)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "undefined_function" {
		return "", ErrNoExtension
	}
	return version, err
}
