package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps the catalog as a JSON document on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load() (Catalog, bool, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Catalog{}, false, nil
	}
	if err != nil {
		return Catalog{}, false, err
	}
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return Catalog{}, false, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return c, true, nil
}

// Save writes to a temporary file and renames it over the previous document.
func (f *FileStore) Save(c Catalog) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// SQLStore keeps the catalog in the catalog_* tables.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Load() (Catalog, bool, error) {
	var savedAt int64
	err := s.db.QueryRow("SELECT saved_at FROM catalog_meta WHERE id = 1").Scan(&savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Catalog{}, false, nil
	}
	if err != nil {
		return Catalog{}, false, err
	}

	rows, err := s.db.Query(`
		SELECT p.name, s.stat
		FROM catalog_positions p
		LEFT JOIN catalog_stats s ON s.position = p.name
		ORDER BY p.ordinal, s.ordinal
	`)
	if err != nil {
		return Catalog{}, false, err
	}
	defer rows.Close()

	c := Catalog{Positions: []Position{}}
	for rows.Next() {
		var name string
		var stat sql.NullString
		if err := rows.Scan(&name, &stat); err != nil {
			return Catalog{}, false, err
		}
		n := len(c.Positions)
		if n == 0 || c.Positions[n-1].Name != name {
			c.Positions = append(c.Positions, Position{Name: name, Stats: []string{}})
			n++
		}
		if stat.Valid {
			c.Positions[n-1].Stats = append(c.Positions[n-1].Stats, stat.String)
		}
	}
	return c, true, rows.Err()
}

func (s *SQLStore) Save(c Catalog) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := saveTx(tx, c); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func saveTx(tx *sql.Tx, c Catalog) error {
	if _, err := tx.Exec("DELETE FROM catalog_stats"); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM catalog_positions"); err != nil {
		return err
	}
	for i, p := range c.Positions {
		if _, err := tx.Exec("INSERT INTO catalog_positions (name, ordinal) VALUES (?, ?)", p.Name, i); err != nil {
			return err
		}
		for j, stat := range p.Stats {
			if _, err := tx.Exec("INSERT INTO catalog_stats (position, ordinal, stat) VALUES (?, ?, ?)", p.Name, j, stat); err != nil {
				return err
			}
		}
	}
	_, err := tx.Exec(`
		INSERT INTO catalog_meta (id, saved_at) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at
	`, time.Now().Unix())
	return err
}
