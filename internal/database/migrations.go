package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Migration is one embedded schema step. Files are named
// NNNNNN_name.up.sql with a matching NNNNNN_name.down.sql.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

func (m Migration) String() string {
	return fmt.Sprintf("%06d_%s", m.Version, m.Name)
}

//go:embed migrations/*.sql
var migrationFiles embed.FS

var (
	embeddedOnce sync.Once
	embedded     []Migration
	embeddedErr  error
)

// Migrations returns the embedded migrations ordered by version.
func Migrations() ([]Migration, error) {
	embeddedOnce.Do(func() {
		embedded, embeddedErr = parseMigrations(migrationFiles, "migrations")
	})
	return embedded, embeddedErr
}

// parseMigrations reads every *.up.sql under dir. A malformed name, a
// missing down script or a repeated version is an error, so a broken
// build fails at startup instead of skipping a table.
func parseMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var out []Migration
	seen := map[int]string{}
	for _, entry := range entries {
		file := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(file, ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(file, ".up.sql")
		num, name, ok := strings.Cut(base, "_")
		if !ok || name == "" {
			return nil, fmt.Errorf("migration %s: want NNNNNN_name.up.sql", file)
		}
		version, err := strconv.Atoi(num)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: bad version %q", file, num)
		}
		if prev, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration version %d used by %s and %s", version, prev, file)
		}
		seen[version] = file

		up, err := fs.ReadFile(fsys, path.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		down, err := fs.ReadFile(fsys, path.Join(dir, base+".down.sql"))
		if err != nil {
			return nil, fmt.Errorf("migration %s has no down script: %w", file, err)
		}
		out = append(out, Migration{Version: version, Name: name, Up: string(up), Down: string(down)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
