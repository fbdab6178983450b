// Package migrations embeds SQL migration files for the relational store.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time,
// under sqlite/ and postgres/.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
