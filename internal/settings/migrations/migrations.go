// Package migrations embeds the mod settings schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
