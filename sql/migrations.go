// Package sql embeds the goose migrations of the profile session schema.
package sql

import "embed"

//go:embed *.sql
var FS embed.FS
