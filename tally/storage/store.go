// Package storage persists posts and the ledger of
// votes cast on them. Both live in one kv root store
// so that a single transaction can update them together.
package storage

import (
	"context"
	"fmt"

	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/marshaled"
	"github.com/jrife/tally/tally/tallypb"
	"github.com/jrife/tally/utils/log"
	"go.uber.org/zap"
)

const (
	// PostsMap names the map holding post records
	PostsMap = "posts"
	// VotesMap names the map holding ledger entries
	VotesMap = "votes"
	// DefaultMaxPostSize is the default maximum encoded size of a post
	DefaultMaxPostSize = 1024
	// DefaultMaxLedgerSize is the default maximum encoded size of a ledger entry
	DefaultMaxLedgerSize = 1 << 20
)

// StoreConfig contains configuration
// for a store
type StoreConfig struct {
	Logger    *zap.Logger
	RootStore kv.RootStore
	// MaxPostSize bounds the encoded size of a post.
	// DefaultMaxPostSize is used if it is 0.
	MaxPostSize int
	// MaxLedgerSize bounds the encoded size of a ledger entry.
	// DefaultMaxLedgerSize is used if it is 0.
	MaxLedgerSize int
}

// Txn groups the post and ledger tables
// of one kv transaction
type Txn struct {
	Posts  *Posts
	Ledger *Ledger
}

// Store is the top object for accessing
// posts and ledger entries
type Store struct {
	logger        *zap.Logger
	rootStore     kv.RootStore
	maxPostSize   int
	maxLedgerSize int
}

// New creates a Store backed by a kv root store
func New(config StoreConfig) *Store {
	store := &Store{
		logger:        config.Logger,
		rootStore:     config.RootStore,
		maxPostSize:   config.MaxPostSize,
		maxLedgerSize: config.MaxLedgerSize,
	}

	if store.logger == nil {
		store.logger = zap.L()
	}

	if store.maxPostSize == 0 {
		store.maxPostSize = DefaultMaxPostSize
	}

	if store.maxLedgerSize == 0 {
		store.maxLedgerSize = DefaultMaxLedgerSize
	}

	return store
}

// View runs fn inside a read-only transaction
func (store *Store) View(fn func(txn *Txn) error) error {
	return store.run(false, fn)
}

// Update runs fn inside a writable transaction. The transaction
// commits if fn returns nil and rolls back otherwise, so either
// every change fn made is kept or none are.
func (store *Store) Update(fn func(txn *Txn) error) error {
	return store.run(true, fn)
}

func (store *Store) run(writable bool, fn func(txn *Txn) error) error {
	transaction, err := store.rootStore.Begin(writable)

	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	defer transaction.Rollback()

	posts, err := transaction.Map([]byte(PostsMap))

	if err != nil {
		return fmt.Errorf("could not open %s map: %w", PostsMap, err)
	}

	votes, err := transaction.Map([]byte(VotesMap))

	if err != nil {
		return fmt.Errorf("could not open %s map: %w", VotesMap, err)
	}

	txn := &Txn{
		Posts:  &Posts{m: marshaled.New(posts, newPost, store.maxPostSize)},
		Ledger: &Ledger{m: marshaled.New(votes, newLedger, store.maxLedgerSize)},
	}

	if err := fn(txn); err != nil {
		return err
	}

	if err := transaction.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// Get returns the post with this id or nil
func (store *Store) Get(ctx context.Context, id uint32) (*tallypb.Post, error) {
	logger := log.WithContext(ctx, store.logger).With(zap.String("operation", "Get"))
	logger.Debug("start Get()", zap.Uint32("id", id))

	var post *tallypb.Post

	err := store.View(func(txn *Txn) error {
		var err error
		post, err = txn.Posts.Get(id)

		return err
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from Get()", zap.Stringer("return", post))

	return post, nil
}

// List returns every post in ascending id order
func (store *Store) List(ctx context.Context) ([]*tallypb.Post, error) {
	logger := log.WithContext(ctx, store.logger).With(zap.String("operation", "List"))
	logger.Debug("start List()")

	var posts []*tallypb.Post

	err := store.View(func(txn *Txn) error {
		var err error
		posts, err = txn.Posts.List()

		return err
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from List()", zap.Int("count", len(posts)))

	return posts, nil
}

// Insert stores post, replacing any post with the same id,
// and returns the replaced post or nil. It does not touch
// the ledger.
func (store *Store) Insert(ctx context.Context, post *tallypb.Post) (*tallypb.Post, error) {
	logger := log.WithContext(ctx, store.logger).With(zap.String("operation", "Insert"))
	logger.Debug("start Insert()", zap.Stringer("post", post))

	var previous *tallypb.Post

	err := store.Update(func(txn *Txn) error {
		var err error
		previous, err = txn.Posts.Insert(post)

		return err
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from Insert()", zap.Stringer("return", previous))

	return previous, nil
}

// Remove deletes the post with this id and returns it or nil.
// It does not touch the ledger.
func (store *Store) Remove(ctx context.Context, id uint32) (*tallypb.Post, error) {
	logger := log.WithContext(ctx, store.logger).With(zap.String("operation", "Remove"))
	logger.Debug("start Remove()", zap.Uint32("id", id))

	var removed *tallypb.Post

	err := store.Update(func(txn *Txn) error {
		var err error
		removed, err = txn.Posts.Remove(id)

		return err
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from Remove()", zap.Stringer("return", removed))

	return removed, nil
}

// Entry returns the ledger entry for a post
func (store *Store) Entry(ctx context.Context, postID uint32) (*tallypb.Ledger, error) {
	logger := log.WithContext(ctx, store.logger).With(zap.String("operation", "Entry"))
	logger.Debug("start Entry()", zap.Uint32("post", postID))

	var entry *tallypb.Ledger

	err := store.View(func(txn *Txn) error {
		var err error
		entry, err = txn.Ledger.Entry(postID)

		return err
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from Entry()", zap.Int("ballots", len(entry.Ballots)))

	return entry, nil
}

// Close closes the underlying root store
func (store *Store) Close() error {
	return store.rootStore.Close()
}

// Purge deletes the underlying root store and everything in it
func (store *Store) Purge() error {
	return store.rootStore.Delete()
}
