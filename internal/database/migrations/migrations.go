// Package migrations embeds the SQL schema for the PostgreSQL and MySQL record stores.
package migrations

import "embed"

// FS holds one directory of golang-migrate files per driver.
//
//go:embed postgresql/*.sql mysql/*.sql
var FS embed.FS
