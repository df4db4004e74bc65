package storage

import (
	"fmt"
	"sort"

	"github.com/gogo/protobuf/proto"
	"github.com/jrife/tally/storage/kv/keys"
	"github.com/jrife/tally/storage/kv/marshaled"
	"github.com/jrife/tally/tally/tallypb"
)

func newLedger() proto.Message {
	return &tallypb.Ledger{}
}

// Ledger records who voted on which post inside a single
// transaction. Each post has at most one entry, a list of
// ballots sorted by voter. An entry is created by the
// first ballot and deleted along with the last one.
type Ledger struct {
	m *marshaled.Map
}

// Entry returns the ledger entry for a post. It
// returns an empty entry if nobody voted on it.
func (ledger *Ledger) Entry(postID uint32) (*tallypb.Ledger, error) {
	value, err := ledger.m.Get(keys.Uint32ToKey(postID))

	if err != nil {
		return nil, fmt.Errorf("could not read ledger entry for post %d: %w", postID, err)
	}

	if value == nil {
		return &tallypb.Ledger{}, nil
	}

	return value.(*tallypb.Ledger), nil
}

// Ballot returns the direction voter voted in on a post.
// ok is false if voter has not voted on it.
func (ledger *Ledger) Ballot(postID uint32, voter string) (direction tallypb.Direction, ok bool, err error) {
	entry, err := ledger.Entry(postID)

	if err != nil {
		return tallypb.Direction_DIRECTION_UNSPECIFIED, false, err
	}

	i, found := search(entry, voter)

	if !found {
		return tallypb.Direction_DIRECTION_UNSPECIFIED, false, nil
	}

	return entry.Ballots[i].Direction, true, nil
}

// UpsertVoter records that voter voted in direction on a post,
// replacing any earlier ballot by the same voter
func (ledger *Ledger) UpsertVoter(postID uint32, voter string, direction tallypb.Direction) error {
	entry, err := ledger.Entry(postID)

	if err != nil {
		return err
	}

	i, found := search(entry, voter)

	if found {
		entry.Ballots[i].Direction = direction
	} else {
		entry.Ballots = append(entry.Ballots, nil)
		copy(entry.Ballots[i+1:], entry.Ballots[i:])
		entry.Ballots[i] = &tallypb.Ballot{Voter: voter, Direction: direction}
	}

	return ledger.put(postID, entry)
}

// RemoveVoter removes voter's ballot from a post.
// It has no effect if voter has not voted on it.
func (ledger *Ledger) RemoveVoter(postID uint32, voter string) error {
	entry, err := ledger.Entry(postID)

	if err != nil {
		return err
	}

	i, found := search(entry, voter)

	if !found {
		return nil
	}

	entry.Ballots = append(entry.Ballots[:i], entry.Ballots[i+1:]...)

	if len(entry.Ballots) == 0 {
		return ledger.RemoveEntry(postID)
	}

	return ledger.put(postID, entry)
}

// RemoveEntry removes every ballot cast on a post
func (ledger *Ledger) RemoveEntry(postID uint32) error {
	if err := ledger.m.Delete(keys.Uint32ToKey(postID)); err != nil {
		return fmt.Errorf("could not delete ledger entry for post %d: %w", postID, err)
	}

	return nil
}

func (ledger *Ledger) put(postID uint32, entry *tallypb.Ledger) error {
	if err := ledger.m.Put(keys.Uint32ToKey(postID), entry); err != nil {
		return fmt.Errorf("could not write ledger entry for post %d: %w", postID, err)
	}

	return nil
}

// search returns the index of voter's ballot in
// entry or the index it should be inserted at
func search(entry *tallypb.Ledger, voter string) (int, bool) {
	i := sort.Search(len(entry.Ballots), func(i int) bool {
		return entry.Ballots[i].Voter >= voter
	})

	return i, i < len(entry.Ballots) && entry.Ballots[i].Voter == voter
}

// Score returns the sum of the weights of
// every ballot in a ledger entry
func Score(entry *tallypb.Ledger) int64 {
	var score int64

	for _, ballot := range entry.GetBallots() {
		score += ballot.Direction.Weight()
	}

	return score
}
