// Package migrations holds the SQL schema, embedded into the server and
// migrate binaries.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
