// Package migrations embeds the goose SQL migrations of the todo store.
// Every file is written in the SQL subset shared by SQLite and PostgreSQL.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
