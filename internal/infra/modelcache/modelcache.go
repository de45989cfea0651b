// Package modelcache persists a worker's locally-discovered model list
// to disk. The worker runs discovery against its model runtime on every
// start and writes the result here; it reads the cache back only when
// that discovery fails, and then advertises the cached models instead.
package modelcache

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fogmesh/fogllm/internal/domain"
)

// Cache wraps a SQLite-backed store of discovered model descriptors.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if necessary) the cache database at path and
// applies its schema migration.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open model cache: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite is not safe for concurrent writers

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate model cache: %w", err)
	}
	return c, nil
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS discovered_models (
		name             TEXT PRIMARY KEY,
		parameters       INTEGER NOT NULL,
		size_gb          REAL NOT NULL,
		complexity_rank  INTEGER NOT NULL,
		supports_vision  INTEGER NOT NULL DEFAULT 0,
		discovered_at    TEXT NOT NULL
	)`)
	return err
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Put records (or refreshes) one discovered model.
func (c *Cache) Put(info domain.ModelInfo) error {
	_, err := c.db.Exec(
		`INSERT INTO discovered_models (name, parameters, size_gb, complexity_rank, supports_vision, discovered_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   parameters=excluded.parameters,
		   size_gb=excluded.size_gb,
		   complexity_rank=excluded.complexity_rank,
		   supports_vision=excluded.supports_vision,
		   discovered_at=excluded.discovered_at`,
		info.Name, info.Parameters, info.SizeGB, info.ComplexityScore, boolToInt(info.SupportsVision), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// PutAll persists a batch of discovered models in one transaction.
func (c *Cache) PutAll(infos []domain.ModelInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	for _, info := range infos {
		if _, err := tx.Exec(
			`INSERT INTO discovered_models (name, parameters, size_gb, complexity_rank, supports_vision, discovered_at)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(name) DO UPDATE SET
			   parameters=excluded.parameters,
			   size_gb=excluded.size_gb,
			   complexity_rank=excluded.complexity_rank,
			   supports_vision=excluded.supports_vision,
			   discovered_at=excluded.discovered_at`,
			info.Name, info.Parameters, info.SizeGB, info.ComplexityScore, boolToInt(info.SupportsVision), time.Now().UTC().Format(time.RFC3339),
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// All returns every cached model descriptor.
func (c *Cache) All() ([]domain.ModelInfo, error) {
	rows, err := c.db.Query(`SELECT name, parameters, size_gb, complexity_rank, supports_vision FROM discovered_models ORDER BY parameters ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ModelInfo
	for rows.Next() {
		var (
			info   domain.ModelInfo
			vision int
		)
		if err := rows.Scan(&info.Name, &info.Parameters, &info.SizeGB, &info.ComplexityScore, &vision); err != nil {
			return nil, err
		}
		info.SupportsVision = vision != 0
		out = append(out, info)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
