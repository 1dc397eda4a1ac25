// Package migrations holds the system-of-record schema applied to a direct
// Postgres backend
package migrations

import "embed"

// FS contains the goose migration files
//
//go:embed *.sql
var FS embed.FS
