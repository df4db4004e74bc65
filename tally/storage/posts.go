package storage

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/keys"
	"github.com/jrife/tally/storage/kv/marshaled"
	"github.com/jrife/tally/tally/tallypb"
)

func newPost() proto.Message {
	return &tallypb.Post{}
}

// Posts reads and writes post records inside
// a single transaction. Posts are keyed by id.
type Posts struct {
	m *marshaled.Map
}

// Get returns the post with this id
// or nil if there is no such post
func (posts *Posts) Get(id uint32) (*tallypb.Post, error) {
	value, err := posts.m.Get(keys.Uint32ToKey(id))

	if err != nil {
		return nil, fmt.Errorf("could not read post %d: %w", id, err)
	}

	if value == nil {
		return nil, nil
	}

	return value.(*tallypb.Post), nil
}

// List returns every post in ascending id order
func (posts *Posts) List() ([]*tallypb.Post, error) {
	iter, err := posts.m.Keys(keys.All(), kv.SortOrderAsc)

	if err != nil {
		return nil, fmt.Errorf("could not list posts: %w", err)
	}

	result := []*tallypb.Post{}

	for iter.Next() {
		result = append(result, iter.Value().(*tallypb.Post))
	}

	if iter.Error() != nil {
		return nil, fmt.Errorf("could not list posts: %w", iter.Error())
	}

	return result, nil
}

// Insert stores post under post.Id, replacing any post
// with the same id. It returns the replaced post or nil.
func (posts *Posts) Insert(post *tallypb.Post) (*tallypb.Post, error) {
	if post == nil {
		return nil, ErrNilPost
	}

	previous, err := posts.Get(post.Id)

	if err != nil {
		return nil, err
	}

	if err := posts.m.Put(keys.Uint32ToKey(post.Id), post); err != nil {
		return nil, fmt.Errorf("could not write post %d: %w", post.Id, err)
	}

	return previous, nil
}

// Remove deletes the post with this id. It returns the
// removed post or nil if there was no such post.
func (posts *Posts) Remove(id uint32) (*tallypb.Post, error) {
	previous, err := posts.Get(id)

	if err != nil {
		return nil, err
	}

	if previous == nil {
		return nil, nil
	}

	if err := posts.m.Delete(keys.Uint32ToKey(id)); err != nil {
		return nil, fmt.Errorf("could not delete post %d: %w", id, err)
	}

	return previous, nil
}
