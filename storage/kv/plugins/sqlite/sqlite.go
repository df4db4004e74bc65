// Package sqlite provides a kv driver backed by a single
// sqlite database file. All maps share one table keyed
// by (map, key).
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/keys"
	"github.com/jrife/tally/utils/uuid"

	// registers the sqlite3 database/sql driver
	_ "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the name this plugin registers under
	DriverName = "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	map   BLOB NOT NULL,
	key   BLOB NOT NULL,
	value BLOB NOT NULL,
	PRIMARY KEY (map, key)
) WITHOUT ROWID`

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&SQLitePlugin{},
	}
}

var _ kv.Plugin = (*SQLitePlugin)(nil)

// SQLitePlugin builds root stores backed by sqlite
type SQLitePlugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *SQLitePlugin) Name() string {
	return DriverName
}

// NewRootStore implements kv.Plugin.NewRootStore
func (plugin *SQLitePlugin) NewRootStore(options kv.PluginOptions) (kv.RootStore, error) {
	path, ok := options["path"]

	if !ok {
		return nil, fmt.Errorf("\"path\" is required")
	}

	pathString, ok := path.(string)

	if !ok {
		return nil, fmt.Errorf("\"path\" must be a string")
	}

	return New(pathString)
}

// NewTempRootStore implements kv.Plugin.NewTempRootStore
func (plugin *SQLitePlugin) NewTempRootStore() (kv.RootStore, error) {
	return plugin.NewRootStore(kv.PluginOptions{
		"path": filepath.Join(os.TempDir(), fmt.Sprintf("sqlite-%s.db", uuid.MustUUID())),
	})
}

var _ kv.RootStore = (*SQLiteRootStore)(nil)

// SQLiteRootStore implements kv.RootStore
type SQLiteRootStore struct {
	path string
	db   *sql.DB
	// sqlite allows one writer at a time. Serializing writers here
	// avoids SQLITE_BUSY errors when two transactions try to upgrade
	// their locks at the same time.
	writer sync.Mutex
}

// New opens or creates the sqlite database at path
func New(path string) (*SQLiteRootStore, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000", path))

	if err != nil {
		return nil, fmt.Errorf("could not open sqlite store at %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()

		return nil, fmt.Errorf("could not ensure kv table exists: %w", err)
	}

	return &SQLiteRootStore{path: path, db: db}, nil
}

// Begin implements kv.RootStore.Begin
func (store *SQLiteRootStore) Begin(writable bool) (kv.Transaction, error) {
	if writable {
		store.writer.Lock()
	}

	transaction, err := store.db.Begin()

	if err != nil {
		if writable {
			store.writer.Unlock()
		}

		if strings.Contains(err.Error(), "database is closed") {
			return nil, kv.ErrClosed
		}

		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}

	return &SQLiteTransaction{store: store, transaction: transaction, writable: writable}, nil
}

// Close implements kv.RootStore.Close
func (store *SQLiteRootStore) Close() error {
	return store.db.Close()
}

// Delete implements kv.RootStore.Delete
func (store *SQLiteRootStore) Delete() error {
	if err := store.Close(); err != nil {
		return fmt.Errorf("could not close store: %w", err)
	}

	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.RemoveAll(store.path + suffix); err != nil {
			return fmt.Errorf("could not remove path %s: %w", store.path+suffix, err)
		}
	}

	return nil
}

var _ kv.Transaction = (*SQLiteTransaction)(nil)

// SQLiteTransaction implements kv.Transaction
type SQLiteTransaction struct {
	store       *SQLiteRootStore
	transaction *sql.Tx
	writable    bool
	done        bool
}

// Map implements kv.Transaction.Map. Maps are implicit in the
// kv table so nothing needs to be created.
func (transaction *SQLiteTransaction) Map(name []byte) (kv.Map, error) {
	if transaction.done {
		return nil, kv.ErrClosed
	}

	return &SQLiteMap{transaction: transaction, name: name}, nil
}

// Commit implements kv.Transaction.Commit
func (transaction *SQLiteTransaction) Commit() error {
	if transaction.done {
		return nil
	}

	defer transaction.finish()

	return transaction.transaction.Commit()
}

// Rollback implements kv.Transaction.Rollback
func (transaction *SQLiteTransaction) Rollback() error {
	if transaction.done {
		return nil
	}

	transaction.finish()

	if err := transaction.transaction.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (transaction *SQLiteTransaction) finish() {
	transaction.done = true

	if transaction.writable {
		transaction.store.writer.Unlock()
	}
}

var _ kv.Map = (*SQLiteMap)(nil)

// SQLiteMap implements kv.Map as the rows of the
// kv table whose map column equals name
type SQLiteMap struct {
	transaction *SQLiteTransaction
	name        []byte
}

// Get implements kv.Map.Get
func (m *SQLiteMap) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	var value []byte

	err := m.transaction.transaction.QueryRow(`SELECT value FROM kv WHERE map = ? AND key = ?`, m.name, key).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("could not read key: %w", err)
	}

	return value, nil
}

// Put implements kv.Map.Put
func (m *SQLiteMap) Put(key []byte, value []byte) error {
	if err := kv.CheckPut(key, value); err != nil {
		return err
	}

	if !m.transaction.writable {
		return kv.ErrReadOnly
	}

	if _, err := m.transaction.transaction.Exec(`INSERT INTO kv (map, key, value) VALUES (?, ?, ?) ON CONFLICT (map, key) DO UPDATE SET value = excluded.value`, m.name, key, value); err != nil {
		return fmt.Errorf("could not write key: %w", err)
	}

	return nil
}

// Delete implements kv.Map.Delete
func (m *SQLiteMap) Delete(key []byte) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}

	if !m.transaction.writable {
		return kv.ErrReadOnly
	}

	if _, err := m.transaction.transaction.Exec(`DELETE FROM kv WHERE map = ? AND key = ?`, m.name, key); err != nil {
		return fmt.Errorf("could not delete key: %w", err)
	}

	return nil
}

// Keys implements kv.Map.Keys. Matching rows are read eagerly
// so that the map can be written to once iteration is done
// without an open cursor holding the connection.
func (m *SQLiteMap) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	query := `SELECT key, value FROM kv WHERE map = ?`
	args := []interface{}{m.name}

	if keys.Min != nil {
		query += ` AND key >= ?`
		args = append(args, keys.Min)
	}

	if keys.Max != nil {
		query += ` AND key < ?`
		args = append(args, keys.Max)
	}

	if order == kv.SortOrderDesc {
		query += ` ORDER BY key DESC`
	} else {
		query += ` ORDER BY key ASC`
	}

	rows, err := m.transaction.transaction.Query(query, args...)

	if err != nil {
		return nil, fmt.Errorf("could not query keys: %w", err)
	}

	defer rows.Close()

	iter := &kv.SliceIterator{}

	for rows.Next() {
		var key, value []byte

		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("could not scan row: %w", err)
		}

		iter.Append(key, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iteration error: %w", err)
	}

	return iter, nil
}
