// Package postgres provides a kv driver backed by a postgres
// table. All maps share one table keyed by (map, key).
package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/keys"
	"github.com/jrife/tally/utils/uuid"
)

const (
	// DriverName is the name this plugin registers under
	DriverName = "postgres"
	// DSNEnv names the environment variable NewTempRootStore
	// reads its connection string from
	DSNEnv = "TALLY_POSTGRES_DSN"
	// DefaultTable is the table used when the "table" option is not set
	DefaultTable = "tally_kv"
)

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&PostgresPlugin{},
	}
}

var _ kv.Plugin = (*PostgresPlugin)(nil)

// PostgresPlugin builds root stores backed by postgres
type PostgresPlugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *PostgresPlugin) Name() string {
	return DriverName
}

// NewRootStore implements kv.Plugin.NewRootStore
func (plugin *PostgresPlugin) NewRootStore(options kv.PluginOptions) (kv.RootStore, error) {
	config := PostgresRootStoreConfig{Table: DefaultTable}

	if dsn, ok := options["dsn"]; !ok {
		return nil, fmt.Errorf("\"dsn\" is required")
	} else if dsnString, ok := dsn.(string); !ok {
		return nil, fmt.Errorf("\"dsn\" must be a string")
	} else {
		config.DSN = dsnString
	}

	if table, ok := options["table"]; ok {
		if tableString, ok := table.(string); !ok {
			return nil, fmt.Errorf("\"table\" must be a string")
		} else {
			config.Table = tableString
		}
	}

	return New(context.Background(), config)
}

// NewTempRootStore implements kv.Plugin.NewTempRootStore. It
// creates a uniquely named table in the database named by
// TALLY_POSTGRES_DSN. Delete drops the table.
func (plugin *PostgresPlugin) NewTempRootStore() (kv.RootStore, error) {
	dsn := os.Getenv(DSNEnv)

	if dsn == "" {
		return nil, fmt.Errorf("%s is not set: %w", DSNEnv, kv.ErrNotConfigured)
	}

	return plugin.NewRootStore(kv.PluginOptions{
		"dsn":   dsn,
		"table": fmt.Sprintf("tally_kv_%s", uuid.MustIdentifier()),
	})
}

// PostgresRootStoreConfig configures a postgres root store
type PostgresRootStoreConfig struct {
	DSN   string
	Table string
}

var _ kv.RootStore = (*PostgresRootStore)(nil)

// PostgresRootStore implements kv.RootStore
type PostgresRootStore struct {
	pool  *pgxpool.Pool
	table string
	// writers are serialized within a process so that
	// serializable transactions from this process never
	// abort each other
	writer sync.Mutex
	mu     sync.RWMutex
	closed bool
}

// New connects to postgres and ensures the kv table exists
func New(ctx context.Context, config PostgresRootStoreConfig) (*PostgresRootStore, error) {
	if !tableName.MatchString(config.Table) {
		return nil, fmt.Errorf("invalid table name %q", config.Table)
	}

	poolConfig, err := pgxpool.ParseConfig(config.DSN)

	if err != nil {
		return nil, fmt.Errorf("could not parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)

	if err != nil {
		return nil, fmt.Errorf("could not connect to postgres: %w", err)
	}

	store := &PostgresRootStore{pool: pool, table: pgx.Identifier{config.Table}.Sanitize()}

	if _, err := pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		map   BYTEA NOT NULL,
		key   BYTEA NOT NULL,
		value BYTEA NOT NULL,
		PRIMARY KEY (map, key)
	)`, store.table)); err != nil {
		pool.Close()

		return nil, fmt.Errorf("could not ensure kv table exists: %w", err)
	}

	return store, nil
}

// Begin implements kv.RootStore.Begin
func (store *PostgresRootStore) Begin(writable bool) (kv.Transaction, error) {
	options := pgx.TxOptions{IsoLevel: pgx.Serializable, AccessMode: pgx.ReadOnly}

	if writable {
		options.AccessMode = pgx.ReadWrite
		store.writer.Lock()
	}

	store.mu.RLock()
	defer store.mu.RUnlock()

	if store.closed {
		if writable {
			store.writer.Unlock()
		}

		return nil, kv.ErrClosed
	}

	transaction, err := store.pool.BeginTx(context.Background(), options)

	if err != nil {
		if writable {
			store.writer.Unlock()
		}

		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}

	return &PostgresTransaction{store: store, transaction: transaction, writable: writable}, nil
}

// Close implements kv.RootStore.Close
func (store *PostgresRootStore) Close() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.closed {
		return nil
	}

	store.closed = true
	// waits for acquired connections to be released
	store.pool.Close()

	return nil
}

// Delete implements kv.RootStore.Delete
func (store *PostgresRootStore) Delete() error {
	store.mu.RLock()
	closed := store.closed
	store.mu.RUnlock()

	if !closed {
		if _, err := store.pool.Exec(context.Background(), fmt.Sprintf(`DROP TABLE IF EXISTS %s`, store.table)); err != nil {
			return fmt.Errorf("could not drop table %s: %w", store.table, err)
		}
	}

	return store.Close()
}

var _ kv.Transaction = (*PostgresTransaction)(nil)

// PostgresTransaction implements kv.Transaction
type PostgresTransaction struct {
	store       *PostgresRootStore
	transaction pgx.Tx
	writable    bool
	done        bool
}

// Map implements kv.Transaction.Map
func (transaction *PostgresTransaction) Map(name []byte) (kv.Map, error) {
	if transaction.done {
		return nil, kv.ErrClosed
	}

	return &PostgresMap{transaction: transaction, name: name}, nil
}

// Commit implements kv.Transaction.Commit
func (transaction *PostgresTransaction) Commit() error {
	if transaction.done {
		return nil
	}

	defer transaction.finish()

	return transaction.transaction.Commit(context.Background())
}

// Rollback implements kv.Transaction.Rollback
func (transaction *PostgresTransaction) Rollback() error {
	if transaction.done {
		return nil
	}

	transaction.finish()

	if err := transaction.transaction.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return err
	}

	return nil
}

func (transaction *PostgresTransaction) finish() {
	transaction.done = true

	if transaction.writable {
		transaction.store.writer.Unlock()
	}
}

var _ kv.Map = (*PostgresMap)(nil)

// PostgresMap implements kv.Map as the rows of the
// kv table whose map column equals name
type PostgresMap struct {
	transaction *PostgresTransaction
	name        []byte
}

func (m *PostgresMap) table() string {
	return m.transaction.store.table
}

// Get implements kv.Map.Get
func (m *PostgresMap) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	var value []byte

	err := m.transaction.transaction.QueryRow(context.Background(), fmt.Sprintf(`SELECT value FROM %s WHERE map = $1 AND key = $2`, m.table()), m.name, key).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("could not read key: %w", err)
	}

	return value, nil
}

// Put implements kv.Map.Put
func (m *PostgresMap) Put(key []byte, value []byte) error {
	if err := kv.CheckPut(key, value); err != nil {
		return err
	}

	if !m.transaction.writable {
		return kv.ErrReadOnly
	}

	if _, err := m.transaction.transaction.Exec(context.Background(), fmt.Sprintf(`INSERT INTO %s (map, key, value) VALUES ($1, $2, $3) ON CONFLICT (map, key) DO UPDATE SET value = EXCLUDED.value`, m.table()), m.name, key, value); err != nil {
		return fmt.Errorf("could not write key: %w", err)
	}

	return nil
}

// Delete implements kv.Map.Delete
func (m *PostgresMap) Delete(key []byte) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}

	if !m.transaction.writable {
		return kv.ErrReadOnly
	}

	if _, err := m.transaction.transaction.Exec(context.Background(), fmt.Sprintf(`DELETE FROM %s WHERE map = $1 AND key = $2`, m.table()), m.name, key); err != nil {
		return fmt.Errorf("could not delete key: %w", err)
	}

	return nil
}

// Keys implements kv.Map.Keys
func (m *PostgresMap) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	query := fmt.Sprintf(`SELECT key, value FROM %s WHERE map = $1`, m.table())
	args := []interface{}{m.name}

	if keys.Min != nil {
		args = append(args, keys.Min)
		query += fmt.Sprintf(` AND key >= $%d`, len(args))
	}

	if keys.Max != nil {
		args = append(args, keys.Max)
		query += fmt.Sprintf(` AND key < $%d`, len(args))
	}

	if order == kv.SortOrderDesc {
		query += ` ORDER BY key DESC`
	} else {
		query += ` ORDER BY key ASC`
	}

	rows, err := m.transaction.transaction.Query(context.Background(), query, args...)

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
