// Package migrations holds the embedded schema of the sync engine.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
