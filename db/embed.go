package db

import "embed"

// Migrations holds the goose SQL migrations, applied by cmd/migrate and the store integration tests
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that goose reads
const MigrationsDir = "migrations"
