// Package migrations embeds the goose SQL migrations for the foundathon schema.
package migrations

import "embed"

// Migrations holds the *.sql files applied by goose.
//
//go:embed *.sql
var Migrations embed.FS
