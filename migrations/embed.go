// Package migrations embeds the SQL schema applied by `crrs-engine migrate up`.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
