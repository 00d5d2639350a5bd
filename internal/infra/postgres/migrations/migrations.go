package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema change; files register themselves by version prefix.
var Migrations = migrate.NewMigrations()
