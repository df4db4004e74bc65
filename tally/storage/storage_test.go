package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/marshaled"
	"github.com/jrife/tally/storage/kv/plugins"
	"github.com/jrife/tally/tally/storage"
	"github.com/jrife/tally/tally/tallypb"
)

type storeBuilder func(t *testing.T, config storage.StoreConfig) *storage.Store

func builder(plugin kv.Plugin) storeBuilder {
	return func(t *testing.T, config storage.StoreConfig) *storage.Store {
		rootStore, err := plugin.NewTempRootStore()

		if errors.Is(err, kv.ErrNotConfigured) {
			t.Skipf("%s store is not available: %s", plugin.Name(), err.Error())
		} else if err != nil {
			t.Fatalf("could not build a %s store: %s", plugin.Name(), err.Error())
		}

		config.RootStore = rootStore
		store := storage.New(config)

		t.Cleanup(func() {
			if err := store.Purge(); err != nil {
				t.Errorf("could not purge store: %s", err.Error())
			}
		})

		return store
	}
}

func TestStore(t *testing.T) {
	for _, plugin := range plugins.Plugins() {
		builder := builder(plugin)

		t.Run(plugin.Name(), func(t *testing.T) {
			t.Run("posts", func(t *testing.T) { testPosts(builder, t) })
			t.Run("ledger", func(t *testing.T) { testLedger(builder, t) })
			t.Run("rollback", func(t *testing.T) { testRollback(builder, t) })
			t.Run("max-size", func(t *testing.T) { testMaxSize(builder, t) })
		})
	}
}

func testPosts(builder storeBuilder, t *testing.T) {
	ctx := context.Background()
	store := builder(t, storage.StoreConfig{})

	post, err := store.Get(ctx, 1)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if post != nil {
		t.Fatalf("expected nil post, got %#v", post)
	}

	for _, id := range []uint32{300, 1, 65536, 2} {
		previous, err := store.Insert(ctx, &tallypb.Post{Id: id, Content: "post"})

		if err != nil {
			t.Fatalf("expected err to be nil, got %#v", err)
		}

		if previous != nil {
			t.Errorf("expected no previous post, got %#v", previous)
		}
	}

	previous, err := store.Insert(ctx, &tallypb.Post{Id: 2, Content: "edited", Votes: 4})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Post{Id: 2, Content: "post"}, previous); diff != "" {
		t.Errorf(diff)
	}

	post, err = store.Get(ctx, 2)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Post{Id: 2, Content: "edited", Votes: 4}, post); diff != "" {
		t.Errorf(diff)
	}

	posts, err := store.List(ctx)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	ids := []uint32{}

	for _, post := range posts {
		ids = append(ids, post.Id)
	}

	if diff := cmp.Diff([]uint32{1, 2, 300, 65536}, ids); diff != "" {
		t.Errorf(diff)
	}

	removed, err := store.Remove(ctx, 300)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Post{Id: 300, Content: "post"}, removed); diff != "" {
		t.Errorf(diff)
	}

	removed, err = store.Remove(ctx, 300)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if removed != nil {
		t.Errorf("expected nil, got %#v", removed)
	}

	if _, err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrNilPost) {
		t.Errorf("expected ErrNilPost, got %#v", err)
	}
}

func testLedger(builder storeBuilder, t *testing.T) {
	ctx := context.Background()
	store := builder(t, storage.StoreConfig{})

	err := store.Update(func(txn *storage.Txn) error {
		for voter, direction := range map[string]tallypb.Direction{"carol": tallypb.Direction_UP, "alice": tallypb.Direction_DOWN, "bob": tallypb.Direction_UP} {
			if err := txn.Ledger.UpsertVoter(7, voter, direction); err != nil {
				return err
			}
		}

		// replaces alice's earlier ballot
		return txn.Ledger.UpsertVoter(7, "alice", tallypb.Direction_UP)
	})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	entry, err := store.Entry(ctx, 7)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	expected := &tallypb.Ledger{Ballots: []*tallypb.Ballot{
		{Voter: "alice", Direction: tallypb.Direction_UP},
		{Voter: "bob", Direction: tallypb.Direction_UP},
		{Voter: "carol", Direction: tallypb.Direction_UP},
	}}

	if diff := cmp.Diff(expected, entry); diff != "" {
		t.Errorf(diff)
	}

	if score := storage.Score(entry); score != 3 {
		t.Errorf("expected score 3, got %d", score)
	}

	err = store.View(func(txn *storage.Txn) error {
		direction, ok, err := txn.Ledger.Ballot(7, "bob")

		if err != nil {
			return err
		}

		if !ok || direction != tallypb.Direction_UP {
			t.Errorf("expected bob to have voted UP, got %v %v", direction, ok)
		}

		if _, ok, err := txn.Ledger.Ballot(7, "dave"); err != nil {
			return err
		} else if ok {
			t.Errorf("expected dave not to have voted")
		}

		return nil
	})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	err = store.Update(func(txn *storage.Txn) error {
		for _, voter := range []string{"alice", "bob", "nobody"} {
			if err := txn.Ledger.RemoveVoter(7, voter); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	entry, err = store.Entry(ctx, 7)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Ledger{Ballots: []*tallypb.Ballot{{Voter: "carol", Direction: tallypb.Direction_UP}}}, entry); diff != "" {
		t.Errorf(diff)
	}

	err = store.Update(func(txn *storage.Txn) error {
		return txn.Ledger.RemoveVoter(7, "carol")
	})

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	entry, err = store.Entry(ctx, 7)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if len(entry.Ballots) != 0 {
		t.Errorf("expected an empty entry, got %#v", entry)
	}

	// RemoveEntry on a post nobody voted on has no effect
	if err := store.Update(func(txn *storage.Txn) error { return txn.Ledger.RemoveEntry(8) }); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}
}

func testRollback(builder storeBuilder, t *testing.T) {
	ctx := context.Background()
	store := builder(t, storage.StoreConfig{})
	failure := errors.New("failure")

	err := store.Update(func(txn *storage.Txn) error {
		if _, err := txn.Posts.Insert(&tallypb.Post{Id: 1, Votes: 1}); err != nil {
			return err
		}

		if err := txn.Ledger.UpsertVoter(1, "alice", tallypb.Direction_UP); err != nil {
			return err
		}

		return failure
	})

	if !errors.Is(err, failure) {
		t.Fatalf("expected failure, got %#v", err)
	}

	if post, err := store.Get(ctx, 1); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if post != nil {
		t.Errorf("expected no post, got %#v", post)
	}

	if entry, err := store.Entry(ctx, 1); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if len(entry.Ballots) != 0 {
		t.Errorf("expected an empty entry, got %#v", entry)
	}
}

func testMaxSize(builder storeBuilder, t *testing.T) {
	ctx := context.Background()
	store := builder(t, storage.StoreConfig{MaxPostSize: 64, MaxLedgerSize: 64})

	_, err := store.Insert(ctx, &tallypb.Post{Id: 1, Content: strings.Repeat("x", 100)})

	var encodingError *marshaled.EncodingError

	if !errors.As(err, &encodingError) {
		t.Fatalf("expected an EncodingError, got %#v", err)
	}

	if post, err := store.Get(ctx, 1); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if post != nil {
		t.Errorf("expected no post, got %#v", post)
	}

	err = store.Update(func(txn *storage.Txn) error {
		for _, voter := range []string{"aaaaaaaaaaaaaaaa", "bbbbbbbbbbbbbbbb", "cccccccccccccccc", "dddddddddddddddd"} {
			if err := txn.Ledger.UpsertVoter(1, voter, tallypb.Direction_UP); err != nil {
				return err
			}
		}

		return nil
	})

	if !errors.As(err, &encodingError) {
		t.Fatalf("expected an EncodingError, got %#v", err)
	}

	if !errors.Is(err, marshaled.ErrTooLarge) {
		t.Errorf("expected err to wrap ErrTooLarge, got %#v", err)
	}
}
