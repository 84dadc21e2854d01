// Package sqlstore implements a SQLite-backed object store, for
// deployments that keep repository objects in a single database file
// instead of a loose-object directory.
package sqlstore

import (
	"context"
	"database/sql"
	stderrs "errors"
	"fmt"

	"github.com/bobg/sqlutil"
	_ "github.com/mattn/go-sqlite3" // register the sqlite3 driver for sql.Open
	"github.com/pkg/errors"

	"github.com/draftline/quill/pkg/object"
)

var _ object.Store = (*Store)(nil)

// Store is a SQLite-based object store.
type Store struct {
	db *sql.DB
}

// Schema is the SQL that New executes. It creates the `objects` table
// if it does not exist. (If it does exist, it must have the columns
// and constraints described here.)
const Schema = `
CREATE TABLE IF NOT EXISTS objects (
  hash TEXT PRIMARY KEY NOT NULL,
  type TEXT NOT NULL,
  data BLOB NOT NULL
);
`

// New produces a new Store using `db` for storage, creating the
// objects table as needed.
func New(db *sql.DB) (*Store, error) {
	_, err := db.Exec(Schema)
	return &Store{db: db}, errors.Wrap(err, "creating schema")
}

// Open opens (or creates) the SQLite database at path and returns a
// Store over it.
func Open(path string) (*Store, *sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening db")
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, db, nil
}

// Put adds an object to the store if it wasn't already present.
func (s *Store) Put(h object.Hash, objType object.ObjectType, data []byte) error {
	const q = `INSERT INTO objects (hash, type, data) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`

	_, err := s.db.Exec(q, string(h), string(objType), data)
	return errors.Wrapf(err, "inserting object %s", h)
}

// Get gets the object with the given hash.
func (s *Store) Get(h object.Hash) (object.ObjectType, []byte, error) {
	const q = `SELECT type, data FROM objects WHERE hash = $1`

	var (
		objType string
		data    []byte
	)
	err := s.db.QueryRow(q, string(h)).Scan(&objType, &data)
	if stderrs.Is(err, sql.ErrNoRows) {
		return "", nil, fmt.Errorf("object get %s: %w", h, object.ErrNotFound)
	}
	if err != nil {
		return "", nil, errors.Wrapf(err, "querying object %s", h)
	}
	return object.ObjectType(objType), data, nil
}

// Has reports whether an object with the given hash exists.
func (s *Store) Has(h object.Hash) bool {
	const q = `SELECT 1 FROM objects WHERE hash = $1`

	var one int
	err := s.db.QueryRow(q, string(h)).Scan(&one)
	return err == nil
}

// ListHashes produces all object hashes in the store, in lexicographic
// order, calling f for each.
func (s *Store) ListHashes(f func(object.Hash, object.ObjectType) error) error {
	const q = `SELECT hash, type FROM objects ORDER BY hash`
	return sqlutil.ForQueryRows(context.Background(), s.db, q, func(hash, objType string) error {
		return f(object.Hash(hash), object.ObjectType(objType))
	})
}
