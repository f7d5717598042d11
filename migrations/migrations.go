// Package migrations embeds the schema migration files so the binary can
// create and upgrade the target database without shipping SQL alongside it.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
