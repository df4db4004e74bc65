// Package marshaled wraps kv maps so that values are
// protobuf messages instead of raw bytes.
package marshaled

import (
	"errors"
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/jrife/tally/storage/kv"
	"github.com/jrife/tally/storage/kv/keys"
)

// ErrTooLarge is wrapped by an EncodingError when an
// encoded value exceeds the maximum size of its map
var ErrTooLarge = errors.New("encoded value exceeds maximum size")

// EncodingError is returned when a value cannot be encoded
// for storage or when a stored value cannot be decoded
type EncodingError struct {
	// Op is either "encode" or "decode"
	Op  string
	Key []byte
	Err error
}

// Error implements error.Error
func (err *EncodingError) Error() string {
	return fmt.Sprintf("could not %s value at key %x: %s", err.Op, err.Key, err.Err.Error())
}

// Unwrap returns the underlying error
func (err *EncodingError) Unwrap() error {
	return err.Err
}

// IsDecode returns true if stored data could not be decoded
func (err *EncodingError) IsDecode() bool {
	return err.Op == "decode"
}

// Factory returns a new, empty message for a map
// to decode values into
type Factory func() proto.Message

// Map is like kv.Map except values are protobuf messages.
// Values whose encoding is larger than MaxSize are rejected.
// A MaxSize <= 0 means there is no limit.
type Map struct {
	m       kv.Map
	factory Factory
	maxSize int
}

// New wraps m
func New(m kv.Map, factory Factory, maxSize int) *Map {
	return &Map{m: m, factory: factory, maxSize: maxSize}
}

// Put is like kv.MapUpdater.Put except it marshals the value
func (m *Map) Put(key []byte, value proto.Message) error {
	if m.maxSize > 0 {
		if size := proto.Size(value); size > m.maxSize {
			return &EncodingError{Op: "encode", Key: key, Err: fmt.Errorf("%d bytes > %d bytes: %w", size, m.maxSize, ErrTooLarge)}
		}
	}

	marshaledValue, err := proto.Marshal(value)

	if err != nil {
		return &EncodingError{Op: "encode", Key: key, Err: err}
	}

	// empty messages encode to zero bytes which
	// the kv layer would otherwise see as a nil value
	if marshaledValue == nil {
		marshaledValue = []byte{}
	}

	return m.m.Put(key, marshaledValue)
}

// Delete is like kv.MapUpdater.Delete
func (m *Map) Delete(key []byte) error {
	return m.m.Delete(key)
}

// Get is like kv.MapReader.Get except it unmarshals the value.
// It returns nil if the key does not exist.
func (m *Map) Get(key []byte) (proto.Message, error) {
	value, err := m.m.Get(key)

	if err != nil {
		return nil, err
	}

	if value == nil {
		return nil, nil
	}

	return m.unmarshal(key, value)
}

// Keys is like kv.MapReader.Keys except the returned iterator unmarshals values
func (m *Map) Keys(keys keys.Range, order kv.SortOrder) (*Iterator, error) {
	iter, err := m.m.Keys(keys, order)

	if err != nil {
		return nil, err
	}

	return &Iterator{
		Iterator: iter,
		m:        m,
	}, nil
}

func (m *Map) unmarshal(key []byte, value []byte) (proto.Message, error) {
	message := m.factory()

	if err := proto.Unmarshal(value, message); err != nil {
		return nil, &EncodingError{Op: "decode", Key: key, Err: err}
	}

	return message, nil
}

// Iterator is like kv.Iterator except it unmarshals values
type Iterator struct {
	kv.Iterator
	m     *Map
	value proto.Message
	err   error
}

// Next is like kv.Iterator.Next. It returns false if
// a value can't be decoded. Error returns the reason.
func (iterator *Iterator) Next() bool {
	if iterator.err != nil {
		return false
	}

	if !iterator.Iterator.Next() {
		iterator.value = nil
		iterator.err = iterator.Iterator.Error()

		return false
	}

	iterator.value, iterator.err = iterator.m.unmarshal(iterator.Iterator.Key(), iterator.Iterator.Value())

	return iterator.err == nil
}

// Value returns the unmarshaled value at the current iterator position
func (iterator *Iterator) Value() proto.Message {
	return iterator.value
}

// Error is like kv.Iterator.Error
func (iterator *Iterator) Error() error {
	if iterator.err != nil {
		return iterator.err
	}

	return iterator.Iterator.Error()
}
