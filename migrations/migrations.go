// Package migrations embeds the versioned PostgreSQL schema so the migrate
// command works without the SQL files on disk.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
