package auth

import (
	"embed"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded schema migrations so host
// applications can run them through their own migrator.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
