// Package voting implements the rules for casting votes on posts.
// Each voter holds at most one ballot per post and a post's score
// is always the sum of the ballots cast on it.
package voting

import (
	"context"
	"fmt"

	"github.com/jrife/tally/tally/storage"
	"github.com/jrife/tally/tally/tallypb"
	"github.com/jrife/tally/utils/lockmap"
	"github.com/jrife/tally/utils/log"
	"go.uber.org/zap"
)

// EngineConfig contains configuration
// for an engine
type EngineConfig struct {
	Logger       *zap.Logger
	Store        *storage.Store
	OppositeVote OppositeVote
}

// Engine applies votes to posts. Every mutating call holds
// the post's lock for the lifetime of one writable transaction
// so the ledger and the score change together or not at all.
type Engine struct {
	logger *zap.Logger
	store  *storage.Store
	policy OppositeVote
	locks  lockmap.LockMap
}

// New creates an engine
func New(config EngineConfig) *Engine {
	engine := &Engine{
		logger: config.Logger,
		store:  config.Store,
		policy: config.OppositeVote,
	}

	if engine.logger == nil {
		engine.logger = zap.L()
	}

	return engine
}

// Store returns the store this engine writes to
func (engine *Engine) Store() *storage.Store {
	return engine.store
}

// CastVote casts voter's vote in direction on a post and
// returns the updated post. It returns storage.ErrNotFound
// if the post does not exist.
func (engine *Engine) CastVote(ctx context.Context, postID uint32, voter string, direction tallypb.Direction) (*tallypb.Post, error) {
	logger := log.WithContext(ctx, engine.logger).With(zap.String("operation", "CastVote"))
	logger.Debug("start CastVote()", zap.Uint32("post", postID), zap.String("voter", voter), zap.Stringer("direction", direction))

	var post *tallypb.Post

	err := engine.update(postID, func(txn *storage.Txn) error {
		var err error
		post, err = txn.Posts.Get(postID)

		if err != nil {
			return err
		}

		if post == nil {
			return fmt.Errorf("could not cast vote on post %d: %w", postID, storage.ErrNotFound)
		}

		ballot, ok, err := txn.Ledger.Ballot(postID, voter)

		if err != nil {
			return err
		}

		state := StateOf(ballot, ok)
		next, delta, err := Transition(state, direction, engine.policy)

		if err != nil {
			return err
		}

		if nextDirection, ok := next.Direction(); ok {
			err = txn.Ledger.UpsertVoter(postID, voter, nextDirection)
		} else {
			err = txn.Ledger.RemoveVoter(postID, voter)
		}

		if err != nil {
			return err
		}

		post.Votes += delta

		if _, err := txn.Posts.Insert(post); err != nil {
			return err
		}

		logger.Debug("transition", zap.Stringer("from", state), zap.Stringer("to", next), zap.Int64("delta", delta))

		return nil
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from CastVote()", zap.Stringer("return", post))

	return post, nil
}

// InsertPost stores post and returns the post it replaced or nil.
// Creating a post that did not exist also drops any ballots left
// over under its id so that a recreated post starts from a clean
// ledger. Replacing an existing post keeps its ledger.
func (engine *Engine) InsertPost(ctx context.Context, post *tallypb.Post) (*tallypb.Post, error) {
	logger := log.WithContext(ctx, engine.logger).With(zap.String("operation", "InsertPost"))
	logger.Debug("start InsertPost()", zap.Stringer("post", post))

	if post == nil {
		return nil, storage.ErrNilPost
	}

	var previous *tallypb.Post

	err := engine.update(post.Id, func(txn *storage.Txn) error {
		var err error
		previous, err = txn.Posts.Insert(post)

		if err != nil {
			return err
		}

		if previous == nil {
			return txn.Ledger.RemoveEntry(post.Id)
		}

		return nil
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from InsertPost()", zap.Stringer("return", previous))

	return previous, nil
}

// RemovePost clears the ledger entry for a post then
// removes the post. It returns the removed post or nil
// if there was no such post. The ledger entry is cleared
// either way.
func (engine *Engine) RemovePost(ctx context.Context, postID uint32) (*tallypb.Post, error) {
	logger := log.WithContext(ctx, engine.logger).With(zap.String("operation", "RemovePost"))
	logger.Debug("start RemovePost()", zap.Uint32("post", postID))

	var removed *tallypb.Post

	err := engine.update(postID, func(txn *storage.Txn) error {
		if err := txn.Ledger.RemoveEntry(postID); err != nil {
			return err
		}

		var err error
		removed, err = txn.Posts.Remove(postID)

		return err
	})

	if err != nil {
		logger.Debug("error", zap.Error(err))

		return nil, err
	}

	logger.Debug("return from RemovePost()", zap.Stringer("return", removed))

	return removed, nil
}

func (engine *Engine) update(postID uint32, fn func(txn *storage.Txn) error) error {
	engine.locks.Lock(postID)
	defer engine.locks.Unlock(postID)

	return engine.store.Update(fn)
}
