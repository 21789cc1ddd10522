package world

import (
	"bytes"
	"database/sql"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"voxelfield/internal/voxel"
)

// SQLiteStorageProvider keeps all chunk columns in a single SQLite database.
// One provider holds one connection; per-chunk storages share it and scope
// their queries by chunk coordinate.
type SQLiteStorageProvider struct {
	db *sql.DB
}

func NewSQLiteStorageProvider(path string) (*SQLiteStorageProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initColumnPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initColumnSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStorageProvider{db: db}, nil
}

func initColumnPragmas(db *sql.DB) error {
	// WAL suits the append-heavy write pattern of chunk generation.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initColumnSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS columns (
		cx INTEGER NOT NULL,
		cy INTEGER NOT NULL,
		cz INTEGER NOT NULL,
		col_idx INTEGER NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (cx, cy, cz, col_idx)
	);`)
	return err
}

func (p *SQLiteStorageProvider) NewStorage(key ChunkCoord, edge int) (ColumnStorage, error) {
	return &sqliteColumnStorage{db: p.db, key: key}, nil
}

// Close closes the shared database. Call only after all chunk storages are done.
func (p *SQLiteStorageProvider) Close() error {
	return p.db.Close()
}

type sqliteColumnStorage struct {
	db  *sql.DB
	key ChunkCoord
}

func (s *sqliteColumnStorage) LoadColumn(index int) ([]voxel.Voxel, bool, error) {
	var data []byte
	err := s.db.QueryRow(
		`SELECT data FROM columns WHERE cx=? AND cy=? AND cz=? AND col_idx=?`,
		s.key.X, s.key.Y, s.key.Z, index,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query column: %w", err)
	}
	var column []voxel.Voxel
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&column); err != nil {
		return nil, false, fmt.Errorf("decode column: %w", err)
	}
	return column, true, nil
}

func (s *sqliteColumnStorage) SaveColumn(index int, column []voxel.Voxel) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(column); err != nil {
		return fmt.Errorf("encode column: %w", err)
	}
	_, err := s.db.Exec(
		`INSERT INTO columns (cx, cy, cz, col_idx, data) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (cx, cy, cz, col_idx) DO UPDATE SET data=excluded.data`,
		s.key.X, s.key.Y, s.key.Z, index, payload.Bytes(),
	)
	if err != nil {
		return fmt.Errorf("upsert column: %w", err)
	}
	return nil
}

func (s *sqliteColumnStorage) Delete(index int) error {
	_, err := s.db.Exec(
		`DELETE FROM columns WHERE cx=? AND cy=? AND cz=? AND col_idx=?`,
		s.key.X, s.key.Y, s.key.Z, index,
	)
	if err != nil {
		return fmt.Errorf("delete column: %w", err)
	}
	return nil
}

func (s *sqliteColumnStorage) ForEach(fn func(index int, column []voxel.Voxel) bool) error {
	rows, err := s.db.Query(
		`SELECT col_idx, data FROM columns WHERE cx=? AND cy=? AND cz=?`,
		s.key.X, s.key.Y, s.key.Z,
	)
	if err != nil {
		return fmt.Errorf("query columns: %w", err)
	}
	defer rows.Close()

	type entry struct {
		index  int
		column []voxel.Voxel
	}
	var entries []entry
	for rows.Next() {
		var idx int
		var data []byte
		if err := rows.Scan(&idx, &data); err != nil {
			return fmt.Errorf("scan column: %w", err)
		}
		var column []voxel.Voxel
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&column); err != nil {
			return fmt.Errorf("decode column %d: %w", idx, err)
		}
		entries = append(entries, entry{index: idx, column: column})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate columns: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })
	for _, e := range entries {
		if !fn(e.index, e.column) {
			break
		}
	}
	return nil
}

// Close is a no-op; the database belongs to the provider.
func (s *sqliteColumnStorage) Close() error {
	return nil
}
