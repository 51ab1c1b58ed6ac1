// Package migrations embeds SQL migration files for the SQLite store.
package migrations

import "embed"

// FS contains the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
