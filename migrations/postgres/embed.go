// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the *_up.sql / *_down.sql migrations, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
