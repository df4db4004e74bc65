package bbolt

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/keys"
	"github.com/jrife/tally/utils/uuid"
	bolt "go.etcd.io/bbolt"
)

const (
	// DriverName is the name this plugin registers under
	DriverName = "bbolt"
)

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&BBoltPlugin{},
	}
}

var _ kv.Plugin = (*BBoltPlugin)(nil)

// BBoltPlugin builds root stores backed by a single bbolt file
type BBoltPlugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *BBoltPlugin) Name() string {
	return DriverName
}

// NewRootStore implements kv.Plugin.NewRootStore
func (plugin *BBoltPlugin) NewRootStore(options kv.PluginOptions) (kv.RootStore, error) {
	var config BBoltRootStoreConfig

	if path, ok := options["path"]; !ok {
		return nil, fmt.Errorf("\"path\" is required")
	} else if pathString, ok := path.(string); !ok {
		return nil, fmt.Errorf("\"path\" must be a string")
	} else {
		config.Path = pathString
	}

	if noSync, ok := options["no_sync"]; ok {
		if noSyncBool, ok := noSync.(bool); !ok {
			return nil, fmt.Errorf("\"no_sync\" must be a bool")
		} else {
			config.NoSync = noSyncBool
		}
	}

	return New(config)
}

// NewTempRootStore implements kv.Plugin.NewTempRootStore
func (plugin *BBoltPlugin) NewTempRootStore() (kv.RootStore, error) {
	return plugin.NewRootStore(kv.PluginOptions{
		"path": filepath.Join(os.TempDir(), fmt.Sprintf("bbolt-%s", uuid.MustUUID())),
	})
}

// BBoltRootStoreConfig configures a bbolt root store
type BBoltRootStoreConfig struct {
	Path string
	// NoSync skips fsync on commit. Only for tests.
	NoSync bool
}

var _ kv.RootStore = (*BBoltRootStore)(nil)

// New opens or creates the bbolt file at config.Path
func New(config BBoltRootStoreConfig) (*BBoltRootStore, error) {
	db, err := bolt.Open(config.Path, 0666, nil)

	if err != nil {
		return nil, fmt.Errorf("could not open bbolt store at %s: %w", config.Path, err)
	}

	db.NoSync = config.NoSync

	return &BBoltRootStore{db: db, path: config.Path}, nil
}

// BBoltRootStore implements kv.RootStore. Each map
// is a top-level bucket.
type BBoltRootStore struct {
	db   *bolt.DB
	path string
}

// Begin implements kv.RootStore.Begin
func (store *BBoltRootStore) Begin(writable bool) (kv.Transaction, error) {
	transaction, err := store.db.Begin(writable)

	if err == bolt.ErrDatabaseNotOpen {
		return nil, kv.ErrClosed
	} else if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}

	return &BBoltTransaction{transaction: transaction}, nil
}

// Close implements kv.RootStore.Close
func (store *BBoltRootStore) Close() error {
	return store.db.Close()
}

// Delete implements kv.RootStore.Delete
func (store *BBoltRootStore) Delete() error {
	if err := store.Close(); err != nil {
		return fmt.Errorf("could not close store: %w", err)
	}

	if err := os.RemoveAll(store.path); err != nil {
		return fmt.Errorf("could not remove path %s: %w", store.path, err)
	}

	return nil
}

var _ kv.Transaction = (*BBoltTransaction)(nil)

// BBoltTransaction implements kv.Transaction
type BBoltTransaction struct {
	transaction *bolt.Tx
}

// Map implements kv.Transaction.Map
func (transaction *BBoltTransaction) Map(name []byte) (kv.Map, error) {
	if !transaction.transaction.Writable() {
		bucket := transaction.transaction.Bucket(name)

		if bucket == nil {
			return emptyMap{}, nil
		}

		return &BBoltMap{bucket: bucket}, nil
	}

	bucket, err := transaction.transaction.CreateBucketIfNotExists(name)

	if err != nil {
		return nil, fmt.Errorf("could not create bucket %s: %w", name, err)
	}

	return &BBoltMap{bucket: bucket}, nil
}

// Commit implements kv.Transaction.Commit
func (transaction *BBoltTransaction) Commit() error {
	if !transaction.transaction.Writable() {
		return transaction.Rollback()
	}

	return transaction.transaction.Commit()
}

// Rollback implements kv.Transaction.Rollback
func (transaction *BBoltTransaction) Rollback() error {
	if err := transaction.transaction.Rollback(); err != nil && err != bolt.ErrTxClosed {
		return err
	}

	return nil
}

var _ kv.Map = (*BBoltMap)(nil)

// BBoltMap implements kv.Map on top of a bucket
type BBoltMap struct {
	bucket *bolt.Bucket
}

// Get implements kv.Map.Get
func (m *BBoltMap) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	value := m.bucket.Get(key)

	if value == nil {
		return nil, nil
	}

	// bbolt values are only valid for the life of the transaction
	result := make([]byte, len(value))
	copy(result, value)

	return result, nil
}

// Put implements kv.Map.Put
func (m *BBoltMap) Put(key []byte, value []byte) error {
	if err := kv.CheckPut(key, value); err != nil {
		return err
	}

	if !m.bucket.Writable() {
		return kv.ErrReadOnly
	}

	return m.bucket.Put(key, value)
}

// Delete implements kv.Map.Delete
func (m *BBoltMap) Delete(key []byte) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}

	if !m.bucket.Writable() {
		return kv.ErrReadOnly
	}

	return m.bucket.Delete(key)
}

// Keys implements kv.Map.Keys
func (m *BBoltMap) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	return &BBoltIterator{cursor: m.bucket.Cursor(), keys: keys, order: order}, nil
}

var _ kv.Iterator = (*BBoltIterator)(nil)

// BBoltIterator implements kv.Iterator with a bucket cursor
type BBoltIterator struct {
	cursor  *bolt.Cursor
	keys    keys.Range
	order   kv.SortOrder
	started bool
	key     []byte
	value   []byte
}

// Next implements kv.Iterator.Next
func (iter *BBoltIterator) Next() bool {
	var k, v []byte

	if !iter.started {
		iter.started = true
		k, v = iter.first()
	} else if iter.key != nil {
		if iter.order == kv.SortOrderDesc {
			k, v = iter.cursor.Prev()
		} else {
			k, v = iter.cursor.Next()
		}
	}

	// nested buckets have nil values and are skipped
	for k != nil && v == nil {
		if iter.order == kv.SortOrderDesc {
			k, v = iter.cursor.Prev()
		} else {
			k, v = iter.cursor.Next()
		}
	}

	if k == nil || !iter.keys.Contains(k) {
		iter.key = nil
		iter.value = nil

		return false
	}

	iter.key = k
	iter.value = v

	return true
}

func (iter *BBoltIterator) first() ([]byte, []byte) {
	if iter.order != kv.SortOrderDesc {
		if iter.keys.Min == nil {
			return iter.cursor.First()
		}

		return iter.cursor.Seek(iter.keys.Min)
	}

	if iter.keys.Max == nil {
		return iter.cursor.Last()
	}

	// Seek lands on the first key >= Max which is
	// outside the range, so step back once
	k, _ := iter.cursor.Seek(iter.keys.Max)

	if k == nil {
		return iter.cursor.Last()
	}

	return iter.cursor.Prev()
}

// Key implements kv.Iterator.Key
func (iter *BBoltIterator) Key() []byte {
	return iter.key
}

// Value implements kv.Iterator.Value
func (iter *BBoltIterator) Value() []byte {
	return iter.value
}

// Error implements kv.Iterator.Error
func (iter *BBoltIterator) Error() error {
	return nil
}

type emptyMap struct{}

func (emptyMap) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	return nil, nil
}

func (emptyMap) Put(key, value []byte) error {
	return kv.ErrReadOnly
}

func (emptyMap) Delete(key []byte) error {
	return kv.ErrReadOnly
}

func (emptyMap) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	return emptyIterator{}, nil
}

type emptyIterator struct{}

func (emptyIterator) Next() bool    { return false }
func (emptyIterator) Key() []byte   { return nil }
func (emptyIterator) Value() []byte { return nil }
func (emptyIterator) Error() error  { return nil }
