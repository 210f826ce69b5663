package repository

import "embed"

// Migrations holds the schema migrations of the feeds tables
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files
const MigrationsDir = "migrations"
