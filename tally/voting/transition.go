package voting

import (
	"errors"
	"fmt"

	"github.com/jrife/tally/tally/tallypb"
)

var (
	// ErrDuplicateVote is returned when a voter casts
	// the same direction on a post twice in a row
	ErrDuplicateVote = errors.New("voter already voted in this direction")
	// ErrInvalidDirection is returned when a vote is neither UP nor DOWN
	ErrInvalidDirection = errors.New("direction must be UP or DOWN")
)

// State is the voting state of one voter on one post
type State int

const (
	// NoVote means the voter has no ballot on the post
	NoVote State = iota
	// VotedUp means the voter's ballot is UP
	VotedUp
	// VotedDown means the voter's ballot is DOWN
	VotedDown
)

func (state State) String() string {
	switch state {
	case NoVote:
		return "NoVote"
	case VotedUp:
		return "VotedUp"
	case VotedDown:
		return "VotedDown"
	}

	return fmt.Sprintf("State(%d)", int(state))
}

// Direction returns the direction of the ballot
// held in this state. It returns false for NoVote.
func (state State) Direction() (tallypb.Direction, bool) {
	switch state {
	case VotedUp:
		return tallypb.Direction_UP, true
	case VotedDown:
		return tallypb.Direction_DOWN, true
	}

	return tallypb.Direction_DIRECTION_UNSPECIFIED, false
}

// StateOf returns the state corresponding to a ballot.
// ok is false if there is no ballot.
func StateOf(direction tallypb.Direction, ok bool) State {
	if !ok {
		return NoVote
	}

	switch direction {
	case tallypb.Direction_UP:
		return VotedUp
	case tallypb.Direction_DOWN:
		return VotedDown
	}

	return NoVote
}

// OppositeVote decides what a vote against a
// voter's current ballot does
type OppositeVote int

const (
	// Retract removes the current ballot. Voting UP then DOWN
	// leaves the voter with no ballot and the score where it started.
	Retract OppositeVote = iota
	// Flip replaces the current ballot. Voting UP then DOWN
	// leaves the voter with a DOWN ballot.
	Flip
)

func (policy OppositeVote) String() string {
	switch policy {
	case Retract:
		return "retract"
	case Flip:
		return "flip"
	}

	return fmt.Sprintf("OppositeVote(%d)", int(policy))
}

// ParseOppositeVote parses "retract" or "flip".
// An empty string means Retract.
func ParseOppositeVote(s string) (OppositeVote, error) {
	switch s {
	case "", "retract":
		return Retract, nil
	case "flip":
		return Flip, nil
	}

	return Retract, fmt.Errorf("unknown opposite vote policy %q", s)
}

// Transition returns the state a voter moves to when casting
// direction from state along with the resulting change in the
// post's score. It returns ErrDuplicateVote if direction matches
// the current ballot and ErrInvalidDirection if direction is
// neither UP nor DOWN.
func Transition(state State, direction tallypb.Direction, policy OppositeVote) (State, int64, error) {
	if direction != tallypb.Direction_UP && direction != tallypb.Direction_DOWN {
		return state, 0, ErrInvalidDirection
	}

	current, ok := state.Direction()

	if !ok {
		return StateOf(direction, true), direction.Weight(), nil
	}

	if current == direction {
		return state, 0, ErrDuplicateVote
	}

	if policy == Flip {
		return StateOf(direction, true), direction.Weight() - current.Weight(), nil
	}

	return NoVote, -current.Weight(), nil
}
