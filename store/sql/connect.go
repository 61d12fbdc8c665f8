package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

// PersistenceConfig is the configuration surface go-persistence-bun reads
// when opening a client.
type PersistenceConfig interface {
	GetDebug() bool
	GetDriver() string
	GetServer() string
	GetPingTimeout() time.Duration
	GetOtelIdentifier() string
}

// DialectFor maps a database driver name to the bun dialect the persistence
// client needs. Postgres runs production; SQLite covers tests and local
// development.
func DialectFor(driver string) (schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "pg", "pgx":
		return pgdialect.New(), nil
	case "sqlite", "sqlite3":
		return sqlitedialect.New(), nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// NewPersistenceClient builds a persistence client with the dialect derived
// from the configured driver.
func NewPersistenceClient(cfg PersistenceConfig, sqlDB *sql.DB) (*persistence.Client, error) {
	if sqlDB == nil {
		return nil, fmt.Errorf("sqlstore: sql db is required")
	}
	dialect, err := DialectFor(cfg.GetDriver())
	if err != nil {
		return nil, err
	}
	return persistence.New(cfg, sqlDB, dialect)
}
