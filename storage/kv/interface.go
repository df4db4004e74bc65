package kv

import (
	"errors"

	"github.com/jrife/tally/storage/kv/keys"
)

var (
	// ErrClosed indicates that the root store was closed
	ErrClosed = errors.New("root store was closed")
	// ErrReadOnly is returned when a read-only transaction attempts an update operation
	ErrReadOnly = errors.New("transaction is read-only")
	// ErrEmptyKey is returned by Put, Get and Delete when the key is nil or empty
	ErrEmptyKey = errors.New("key must not be empty")
	// ErrNilValue is returned by Put when the value is nil
	ErrNilValue = errors.New("value must not be nil")
	// ErrNotConfigured is returned by NewTempRootStore when a plugin
	// cannot create a temporary store in the current environment, for example
	// because it needs an external database that nobody pointed it at.
	ErrNotConfigured = errors.New("plugin is not configured for this environment")
)

// SortOrder describes the order in which an iterator
// visits keys
type SortOrder int

const (
	// SortOrderAsc visits keys in ascending byte order
	SortOrderAsc SortOrder = iota
	// SortOrderDesc visits keys in descending byte order
	SortOrderDesc
)

// PluginOptions is a bag of driver specific options
// such as a file path or a connection string
type PluginOptions map[string]interface{}

// Plugin represents a kv storage plugin
type Plugin interface {
	// Name returns the name of the storage plugin
	Name() string
	// NewRootStore returns an instance of the plugin store
	NewRootStore(options PluginOptions) (RootStore, error)
	// NewTempRootStore returns an instance of the plugin store
	// initialized with some sane defaults. It is meant for
	// tests that need an initialized instance of the plugin's
	// store without knowing how to initialize it. It returns
	// ErrNotConfigured if the environment can't support one.
	NewTempRootStore() (RootStore, error)
}

// RootStore is the parent store from which all maps are descended.
// A root store holds any number of named maps. A transaction begun
// on the root store spans all of its maps so that updates to several
// maps commit or roll back together.
type RootStore interface {
	// Begin starts a transaction. writable should be true for read-write
	// transactions and false for read-only transactions. It must return
	// ErrClosed if it is called after Close() returns. Transactions must
	// be strictly serializable: a transaction that begins after another
	// commits observes its effects.
	Begin(writable bool) (Transaction, error)
	// Close closes the store. Close must not return until all
	// transactions have either rolled back or committed.
	Close() error
	// Delete closes then deletes this store and all its contents.
	// If the root store doesn't exist it should return nil and have
	// no effect.
	Delete() error
}

// Transaction is a transaction for a root store. It must only be
// used by one goroutine at a time.
type Transaction interface {
	// Map returns a handle to the map with this name. A writable
	// transaction creates the map if it does not exist yet. A read-only
	// transaction returns an empty map in that case.
	Map(name []byte) (Map, error)
	// Commit commits the transaction
	Commit() error
	// Rollback rolls back the transaction. Calling Rollback
	// after Commit has no effect.
	Rollback() error
}

// MapUpdater is an interface for updating a sorted
// key-value map
type MapUpdater interface {
	// Put puts a key. Put must return an error
	// if either key or value is nil or empty.
	Put(key, value []byte) error
	// Delete deletes a key. It must return an error if the key
	// is nil or empty. If the key doesn't exist it has no effect
	// and returns nil.
	Delete(key []byte) error
}

// MapReader is an interface for reading a sorted
// key-value map
type MapReader interface {
	// Get gets a key. It must observe updates to that key made
	// previously by this transation. Get must return an error
	// if the key is nil or empty. It must return nil if the
	// requested key does not exist.
	Get(key []byte) ([]byte, error)
	// Keys creates an iterator that iterates over the range
	// of keys
	Keys(keys keys.Range, order SortOrder) (Iterator, error)
}

// Map combines MapReader and MapUpdater
type Map interface {
	MapUpdater
	MapReader
}

// Iterator iterates over a set of keys. It must only be
// used by one goroutine at a time. Consumers should not
// attempt to use an iterator once its parent transaction
// has been rolled back. Behavior is undefined in this case.
// The transaction must not mutate the map while the iterator
// is in use.
type Iterator interface {
	// Next advances the iterator to the next key
	// A fresh iterator must call Next once to
	// advance to the first key. Next returns false
	// if there is no next key or if it encounters an
	// error.
	Next() bool
	// Key returns the current key
	Key() []byte
	// Value returns the current value
	Value() []byte
	// Error returns the error, if any.
	Error() error
}
