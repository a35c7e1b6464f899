// Package migrations embeds the SQL migration files into the binary so
// Lights Core can migrate its schema without the files being present on
// the filesystem.
package migrations

import (
	"embed"

	"github.com/lumakit/lights-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "." // files sit at the root of the embedded FS
}
