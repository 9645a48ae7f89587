// Package migrations embeds the PostgreSQL schema migrations applied by
// cmd/migrate and by the server when database.auto_migrate is set.
package migrations

import "embed"

// FS holds the golang-migrate up/down SQL files.
//
//go:embed *.sql
var FS embed.FS
