package migrations

import "embed"

// Files holds the embedded Goose SQL migrations.
//
//go:embed *.sql
var Files embed.FS
