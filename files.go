package identity

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"sort"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

//go:embed data/sql/migrations
var migrations embed.FS

const migrationsDir = "data/sql/migrations"

// MigrationsFS exposes the embedded schema migrations.
func MigrationsFS() fs.FS {
	return migrations
}

// RunMigrations applies the embedded schema files in lexical order.
// Statements are idempotent so re-running on boot is safe.
func RunMigrations(ctx context.Context, db *bun.DB) error {
	entries, err := migrations.ReadDir(migrationsDir)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read migrations")
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && path.Ext(entry.Name()) == ".sql" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		content, err := migrations.ReadFile(path.Join(migrationsDir, name))
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to read migration "+name)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to apply migration "+name)
		}
	}

	return nil
}
