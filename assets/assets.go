// Package assets embeds SQL files for stitchcheck.
// go:embed directives cannot reference parent directories, so schema
// files live under this package rather than under internal/history.
package assets

import "embed"

// SchemaFS contains embedded SQL schema files.
//
//go:embed schema/*.sql
var SchemaFS embed.FS
