// Package migrations embeds the encounter journal schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
