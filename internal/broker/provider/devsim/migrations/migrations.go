// Package migrations embeds the simulator's schema migration files so the
// binary carries its own schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
