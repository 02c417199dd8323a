// Package migrations ships the engine schema as an embedded filesystem so
// the binary carries its own migrations instead of depending on a directory
// on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
