// Package storage defines the key/value persistence port used for client-local
// state, with in-memory, JSON-file, and SQLite implementations.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/sonic57/internal/repositories"
	"github.com/desertthunder/sonic57/internal/shared"
)

// Store is a small durable key/value area. Values are opaque bytes.
//
// Get returns [shared.ErrKeyNotFound] for an absent key; all other failures
// wrap [shared.ErrStorage].
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open selects a backend from cfg. An empty path falls back to the user's data directory.
func Open(ctx context.Context, cfg shared.LibraryConfig) (Store, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		path, err := pathOrDefault(cfg.Path, "library.db")
		if err != nil {
			return nil, err
		}
		db, err := shared.OpenDatabase(ctx, shared.DatabaseConfig{Path: path, MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		return NewSQLiteStore(db, true), nil
	case "", "file":
		path, err := pathOrDefault(cfg.Path, "library.json")
		if err != nil {
			return nil, err
		}
		return NewFileStore(path)
	default:
		return nil, fmt.Errorf("%w: unknown library backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}

func pathOrDefault(path, name string) (string, error) {
	if path != "" {
		return path, nil
	}
	return shared.DataPath(name)
}

// SQLiteStore adapts [repositories.KVRepository] to [Store].
type SQLiteStore struct {
	repo   *repositories.KVRepository
	db     *sql.DB
	ownsDB bool
}

// NewSQLiteStore wraps db, which must already have the kv migration applied.
// When ownsDB is true Close also closes db.
func NewSQLiteStore(db *sql.DB, ownsDB bool) *SQLiteStore {
	return &SQLiteStore{repo: repositories.NewKVRepository(db), db: db, ownsDB: ownsDB}
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.repo.Get(ctx, key)
}

func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	return s.repo.Set(ctx, key, value)
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	return s.repo.Keys(ctx)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *SQLiteStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
