// Package migrations embeds the goose schema migrations, one directory per
// SQL dialect.
package migrations

import "embed"

// FS holds the "postgres" and "sqlite" migration directories.
//
//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
