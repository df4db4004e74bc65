package marshaled_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/google/go-cmp/cmp"
	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/keys"
	"github.com/jrife/tally/storage/kv/marshaled"
	"github.com/jrife/tally/storage/kv/plugins/memory"
	"github.com/jrife/tally/tally/tallypb"
)

func newPost() proto.Message {
	return &tallypb.Post{}
}

func begin(t *testing.T) kv.Map {
	store := memory.New()
	transaction, err := store.Begin(true)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	t.Cleanup(func() { transaction.Rollback() })

	m, err := transaction.Map([]byte("posts"))

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	return m
}

func TestPutGet(t *testing.T) {
	m := marshaled.New(begin(t), newPost, 1024)
	post := &tallypb.Post{Id: 7, Content: "hello", Votes: -3}

	if err := m.Put(keys.Uint32ToKey(7), post); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	value, err := m.Get(keys.Uint32ToKey(7))

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(post, value); diff != "" {
		t.Errorf(diff)
	}

	value, err = m.Get(keys.Uint32ToKey(8))

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if value != nil {
		t.Errorf("expected nil for a missing key, got %#v", value)
	}
}

func TestPutEmptyMessage(t *testing.T) {
	m := marshaled.New(begin(t), newPost, 1024)

	if err := m.Put(keys.Uint32ToKey(0), &tallypb.Post{}); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	value, err := m.Get(keys.Uint32ToKey(0))

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	if diff := cmp.Diff(&tallypb.Post{}, value); diff != "" {
		t.Errorf(diff)
	}
}

func TestTooLarge(t *testing.T) {
	raw := begin(t)
	m := marshaled.New(raw, newPost, 16)

	err := m.Put(keys.Uint32ToKey(1), &tallypb.Post{Id: 1, Content: strings.Repeat("a", 32)})

	var encodingError *marshaled.EncodingError

	if !errors.As(err, &encodingError) {
		t.Fatalf("expected an EncodingError, got %#v", err)
	}

	if !errors.Is(err, marshaled.ErrTooLarge) {
		t.Errorf("expected err to wrap ErrTooLarge, got %#v", err)
	}

	if encodingError.IsDecode() {
		t.Errorf("expected an encode error")
	}

	// nothing was written
	if value, err := raw.Get(keys.Uint32ToKey(1)); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if value != nil {
		t.Errorf("expected no value to be written, got %x", value)
	}

	// no limit
	if err := marshaled.New(raw, newPost, 0).Put(keys.Uint32ToKey(1), &tallypb.Post{Id: 1, Content: strings.Repeat("a", 32)}); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}
}

func TestCorruptValue(t *testing.T) {
	raw := begin(t)

	if err := raw.Put(keys.Uint32ToKey(2), []byte{0xff}); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	m := marshaled.New(raw, newPost, 1024)

	_, err := m.Get(keys.Uint32ToKey(2))

	var encodingError *marshaled.EncodingError

	if !errors.As(err, &encodingError) {
		t.Fatalf("expected an EncodingError, got %#v", err)
	}

	if !encodingError.IsDecode() {
		t.Errorf("expected a decode error")
	}

	// the stored value is untouched
	if value, err := raw.Get(keys.Uint32ToKey(2)); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	} else if diff := cmp.Diff([]byte{0xff}, value); diff != "" {
		t.Errorf(diff)
	}
}

func TestIterator(t *testing.T) {
	raw := begin(t)
	m := marshaled.New(raw, newPost, 1024)
	posts := []*tallypb.Post{{Id: 1, Content: "a"}, {Id: 2, Content: "b"}, {Id: 3, Content: "c"}}

	for _, post := range posts {
		if err := m.Put(keys.Uint32ToKey(post.Id), post); err != nil {
			t.Fatalf("expected err to be nil, got %#v", err)
		}
	}

	iter, err := m.Keys(keys.All(), kv.SortOrderAsc)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	result := []*tallypb.Post{}

	for iter.Next() {
		result = append(result, iter.Value().(*tallypb.Post))
	}

	if iter.Error() != nil {
		t.Fatalf("expected err to be nil, got %#v", iter.Error())
	}

	if diff := cmp.Diff(posts, result); diff != "" {
		t.Errorf(diff)
	}

	// iteration stops at the first value that can't be decoded
	if err := raw.Put(keys.Uint32ToKey(2), []byte{0xff}); err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	iter, err = m.Keys(keys.All(), kv.SortOrderAsc)

	if err != nil {
		t.Fatalf("expected err to be nil, got %#v", err)
	}

	count := 0

	for iter.Next() {
		count++
	}

	if count != 1 {
		t.Errorf("expected iteration to stop after 1 value, got %d", count)
	}

	var encodingError *marshaled.EncodingError

	if !errors.As(iter.Error(), &encodingError) {
		t.Errorf("expected an EncodingError, got %#v", iter.Error())
	}
}
