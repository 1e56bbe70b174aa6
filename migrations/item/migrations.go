// Package item embeds the goose migrations for the items table.
package item

import "embed"

// FS holds the item migrations at its root, ready for migrator.RunMigrations.
//
//go:embed *.sql
var FS embed.FS
