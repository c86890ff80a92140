// Package mapstore keeps named grid maps in a SQLite database.
package mapstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/pdrpinto/gridastar/grid"
)

var (
	// ErrNotFound is returned when no map is stored under a name.
	ErrNotFound = errors.New("map not found")
	// ErrInvalidName is returned for empty map names.
	ErrInvalidName = errors.New("map name cannot be empty")
)

// Store persists grids in their text form, one row per name.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path. ":memory:" keeps everything in memory.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "gridastar.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would get its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS maps (
		name TEXT PRIMARY KEY,
		diagonal INTEGER NOT NULL,
		body TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create maps table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Save stores g under name, replacing any previous map with that name.
// Maps are kept in text form, so grids whose costs that form cannot hold
// are refused with grid.ErrLossyFormat.
func (s *Store) Save(ctx context.Context, name string, g *grid.Grid) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	if err := g.CheckFormat(); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	diagonal := 0
	if g.Diagonal {
		diagonal = 1
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO maps (name, diagonal, body) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET diagonal = excluded.diagonal, body = excluded.body`,
		name, diagonal, g.String(),
	); err != nil {
		return fmt.Errorf("save %q: %w", name, err)
	}
	return nil
}

// Load returns the map stored under name.
func (s *Store) Load(ctx context.Context, name string) (*grid.Grid, error) {
	var (
		diagonal int
		body     string
	)
	err := s.db.QueryRowContext(ctx, `SELECT diagonal, body FROM maps WHERE name = ?`, name).Scan(&diagonal, &body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	g, err := grid.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", name, err)
	}
	g.Diagonal = diagonal != 0
	return g, nil
}

// List returns the stored map names in order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM maps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan map name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the map stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM maps WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %q: %w", name, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
