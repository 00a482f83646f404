// Package migrations embeds the goose SQL migrations for the PostgreSQL backend.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
