// Package memory provides a kv driver that keeps every map in
// memory. It is not durable and exists for tests and local development.
package memory

import (
	"bytes"
	"sync"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/keys"
)

const (
	// DriverName is the name this plugin registers under
	DriverName = "memory"
)

// Plugins returns the plugins provided by this package
func Plugins() []kv.Plugin {
	return []kv.Plugin{
		&MemoryPlugin{},
	}
}

var _ kv.Plugin = (*MemoryPlugin)(nil)

// MemoryPlugin builds in-memory root stores
type MemoryPlugin struct {
}

// Name implements kv.Plugin.Name
func (plugin *MemoryPlugin) Name() string {
	return DriverName
}

// NewRootStore implements kv.Plugin.NewRootStore
func (plugin *MemoryPlugin) NewRootStore(options kv.PluginOptions) (kv.RootStore, error) {
	return New(), nil
}

// NewTempRootStore implements kv.Plugin.NewTempRootStore
func (plugin *MemoryPlugin) NewTempRootStore() (kv.RootStore, error) {
	return New(), nil
}

func newTreeMap() *treemap.Map {
	return treemap.NewWith(func(a, b interface{}) int {
		return bytes.Compare(a.([]byte), b.([]byte))
	})
}

func copyTreeMap(m *treemap.Map) *treemap.Map {
	c := newTreeMap()
	iter := m.Iterator()

	for iter.Next() {
		c.Put(iter.Key(), iter.Value())
	}

	return c
}

var _ kv.RootStore = (*MemoryRootStore)(nil)

// MemoryRootStore implements kv.RootStore. Committed maps are never
// mutated: a writable transaction copies each map it touches and
// swaps the copies in on commit. Readers just hold on to the maps
// that were current when they began.
type MemoryRootStore struct {
	// writer serializes writable transactions
	writer sync.Mutex
	mu     sync.RWMutex
	maps   map[string]*treemap.Map
	closed bool
}

// New creates an empty MemoryRootStore
func New() *MemoryRootStore {
	return &MemoryRootStore{maps: map[string]*treemap.Map{}}
}

// Begin implements kv.RootStore.Begin
func (store *MemoryRootStore) Begin(writable bool) (kv.Transaction, error) {
	if writable {
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

	snapshot := make(map[string]*treemap.Map, len(store.maps))

	for name, m := range store.maps {
		snapshot[name] = m
	}

	return &MemoryTransaction{
		store:    store,
		writable: writable,
		maps:     snapshot,
		dirty:    map[string]bool{},
	}, nil
}

// Close implements kv.RootStore.Close
func (store *MemoryRootStore) Close() error {
	// wait for the current writer, if any
	store.writer.Lock()
	defer store.writer.Unlock()

	store.mu.Lock()
	defer store.mu.Unlock()

	store.closed = true

	return nil
}

// Delete implements kv.RootStore.Delete
func (store *MemoryRootStore) Delete() error {
	if err := store.Close(); err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.maps = map[string]*treemap.Map{}

	return nil
}

var _ kv.Transaction = (*MemoryTransaction)(nil)

// MemoryTransaction implements kv.Transaction
type MemoryTransaction struct {
	store    *MemoryRootStore
	writable bool
	done     bool
	maps     map[string]*treemap.Map
	dirty    map[string]bool
}

// Map implements kv.Transaction.Map
func (transaction *MemoryTransaction) Map(name []byte) (kv.Map, error) {
	if transaction.done {
		return nil, kv.ErrClosed
	}

	m, ok := transaction.maps[string(name)]

	if !ok {
		m = newTreeMap()

		if transaction.writable {
			transaction.maps[string(name)] = m
			transaction.dirty[string(name)] = true
		}
	} else if transaction.writable && !transaction.dirty[string(name)] {
		m = copyTreeMap(m)
		transaction.maps[string(name)] = m
		transaction.dirty[string(name)] = true
	}

	return &MemoryMap{m: m, writable: transaction.writable}, nil
}

// Commit implements kv.Transaction.Commit
func (transaction *MemoryTransaction) Commit() error {
	if transaction.done {
		return nil
	}

	transaction.done = true

	if !transaction.writable {
		return nil
	}

	defer transaction.store.writer.Unlock()

	transaction.store.mu.Lock()
	defer transaction.store.mu.Unlock()

	if transaction.store.closed {
		return kv.ErrClosed
	}

	for name := range transaction.dirty {
		transaction.store.maps[name] = transaction.maps[name]
	}

	return nil
}

// Rollback implements kv.Transaction.Rollback
func (transaction *MemoryTransaction) Rollback() error {
	if transaction.done {
		return nil
	}

	transaction.done = true

	if transaction.writable {
		transaction.store.writer.Unlock()
	}

	return nil
}

var _ kv.Map = (*MemoryMap)(nil)

// MemoryMap is an in-memory implementation of the
// kv.Map interface
type MemoryMap struct {
	m        *treemap.Map
	writable bool
}

// Put implements kv.Map.Put
func (m *MemoryMap) Put(key, value []byte) error {
	if err := kv.CheckPut(key, value); err != nil {
		return err
	}

	if !m.writable {
		return kv.ErrReadOnly
	}

	k := make([]byte, len(key))
	v := make([]byte, len(value))
	copy(k, key)
	copy(v, value)
	m.m.Put(k, v)

	return nil
}

// Delete implements kv.Map.Delete
func (m *MemoryMap) Delete(key []byte) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}

	if !m.writable {
		return kv.ErrReadOnly
	}

	m.m.Remove(key)

	return nil
}

// Get implements kv.Map.Get
func (m *MemoryMap) Get(key []byte) ([]byte, error) {
	if err := kv.CheckKey(key); err != nil {
		return nil, err
	}

	v, ok := m.m.Get(key)

	if !ok {
		return nil, nil
	}

	value := make([]byte, len(v.([]byte)))
	copy(value, v.([]byte))

	return value, nil
}

// Keys implements kv.Map.Keys
func (m *MemoryMap) Keys(keys keys.Range, order kv.SortOrder) (kv.Iterator, error) {
	iter := m.m.Iterator()

	if order == kv.SortOrderDesc {
		iter.End()
	} else {
		iter.Begin()
	}

	return &MemoryIterator{iter: iter, keys: keys, order: order}, nil
}

var _ kv.Iterator = (*MemoryIterator)(nil)

// MemoryIterator is the iterator implementation for MemoryMap
type MemoryIterator struct {
	iter  treemap.Iterator
	keys  keys.Range
	order kv.SortOrder
	done  bool
}

// Next implements kv.Iterator.Next
func (iter *MemoryIterator) Next() bool {
	if iter.done {
		return false
	}

	hasMore := false

	if iter.order == kv.SortOrderDesc {
		for hasMore = iter.iter.Prev(); hasMore && iter.keys.Max != nil && keys.Compare(iter.iter.Key().([]byte), iter.keys.Max) >= 0; hasMore = iter.iter.Prev() {
		}
	} else {
		for hasMore = iter.iter.Next(); hasMore && iter.keys.Min != nil && keys.Compare(iter.iter.Key().([]byte), iter.keys.Min) < 0; hasMore = iter.iter.Next() {
		}
	}

	if !hasMore || !iter.keys.Contains(iter.iter.Key().([]byte)) {
		iter.done = true

		return false
	}

	return true
}

// Key implements kv.Iterator.Key
func (iter *MemoryIterator) Key() []byte {
	if iter.done {
		return nil
	}

	return iter.iter.Key().([]byte)
}

// Value implements kv.Iterator.Value
func (iter *MemoryIterator) Value() []byte {
	if iter.done {
		return nil
	}

	return iter.iter.Value().([]byte)
}

// Error implements kv.Iterator.Error
func (iter *MemoryIterator) Error() error {
	return nil
}
