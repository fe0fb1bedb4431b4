// Package chunkdb is the durable-storage collaborator for chunks: a SQLite
// database keyed by chunk coordinate, voxel grids stored as zstd-compressed
// blobs. Save and Load failures are reported to the caller and are never
// fatal to the world; terrain is always regenerable.
package chunkdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"voxelforge.dev/internal/sim/world"
)

// Store implements world.Persistence on a single-connection SQLite database.
// All calls come from the world loop, so one connection is enough and keeps
// the writer serialized.
type Store struct {
	db    *sql.DB
	codec *blobCodec
}

func Open(path string) (*Store, error) {
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

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	codec, err := newBlobCodec()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, codec: codec}, nil
}

func (s *Store) Close() error {
	s.codec.close()
	return s.db.Close()
}

func initPragmas(db *sql.DB) error {
	// WAL suits the save-on-evict write pattern; NORMAL is a fair
	// durability tradeoff for state that can be regenerated.
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

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS chunks (
			cx INTEGER NOT NULL,
			cy INTEGER NOT NULL,
			cz INTEGER NOT NULL,
			size INTEGER NOT NULL,
			voxels BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (cx, cy, cz)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts one chunk. Called for modified chunks on eviction and at
// shutdown; saving the same coordinate twice keeps the latest grid.
func (s *Store) Save(ch *world.ChunkData) error {
	blob, err := s.codec.encode(ch.Voxels)
	if err != nil {
		return fmt.Errorf("encode chunk %v: %w", ch.Coord, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO chunks (cx, cy, cz, size, voxels, updated_at)
		 VALUES (?, ?, ?, ?, ?, datetime('now'))
		 ON CONFLICT (cx, cy, cz) DO UPDATE SET
		   size = excluded.size,
		   voxels = excluded.voxels,
		   updated_at = excluded.updated_at;`,
		ch.Coord.X, ch.Coord.Y, ch.Coord.Z, ch.Size, blob,
	)
	if err != nil {
		return fmt.Errorf("save chunk %v: %w", ch.Coord, err)
	}
	return nil
}

// Load returns the saved chunk for a coordinate, or (nil, nil) when none
// exists. Loaded chunks keep Modified set: their state still diverges from
// generated terrain, so they must be re-offered to Save on eviction.
func (s *Store) Load(c world.ChunkCoord) (*world.ChunkData, error) {
	var (
		size int
		blob []byte
	)
	err := s.db.QueryRow(
		`SELECT size, voxels FROM chunks WHERE cx = ? AND cy = ? AND cz = ?;`,
		c.X, c.Y, c.Z,
	).Scan(&size, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load chunk %v: %w", c, err)
	}

	voxels, err := s.codec.decode(blob, size*size*size)
	if err != nil {
		return nil, fmt.Errorf("decode chunk %v: %w", c, err)
	}
	ch := world.NewChunkData(c, size)
	ch.Voxels = voxels
	ch.Modified = true
	return ch, nil
}

// Count reports how many chunks are persisted.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
