// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the SQL migrations, one directory per database driver.
//
//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var Migrations embed.FS
