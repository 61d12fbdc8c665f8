package messaging

import (
	"embed"
	"io/fs"
)

// Postgres migrations live at data/sql/migrations; the sqlite/ subdirectory
// carries the dialect alternatives used by the integration tests.
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var migrationsFS embed.FS

// GetCoreMigrationsFS returns the embedded CRM messaging schema migrations.
func GetCoreMigrationsFS() fs.FS {
	return migrationsFS
}
