package kvstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteOpener opens one sqlite file per store kind under dir, on a
// cgo-free driver.
type SQLiteOpener struct {
	dir string
}

// NewSQLiteOpener returns an Opener rooted at dir. dir is created by Open
// if missing.
func NewSQLiteOpener(dir string) *SQLiteOpener {
	return &SQLiteOpener{dir: dir}
}

func (o *SQLiteOpener) Open(kind Kind) (Store, error) {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", o.dir, err)
	}
	path := filepath.Join(o.dir, string(kind)+".db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table in %s: %w", path, err)
	}
	return &sqliteStore{db: db}, nil
}

type sqliteStore struct {
	db *sql.DB
}

func (s *sqliteStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *sqliteStore) Batch() Batch {
	return &sqliteBatch{db: s.db, puts: make(map[string]string)}
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

type sqliteBatch struct {
	db   *sql.DB
	puts map[string]string
}

func (b *sqliteBatch) Put(key, value string) {
	b.puts[key] = value
}

func (b *sqliteBatch) Commit() error {
	if len(b.puts) == 0 {
		return nil
	}
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for key, value := range b.puts {
		if _, err := stmt.Exec(key, value); err != nil {
			tx.Rollback()
			return fmt.Errorf("exec: %w", err)
		}
	}
	return tx.Commit()
}
