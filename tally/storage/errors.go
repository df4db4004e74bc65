package storage

import (
	"errors"
)

var (
	// ErrNotFound is returned when an operation
	// refers to a post that does not exist
	ErrNotFound = errors.New("post not found")
	// ErrNilPost is returned by Insert when it is given no post
	ErrNilPost = errors.New("post must not be nil")
)
