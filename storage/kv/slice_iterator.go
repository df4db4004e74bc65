package kv

var _ Iterator = (*SliceIterator)(nil)

// SliceIterator iterates over key-value pairs that
// were already read into memory. Drivers whose native
// cursors can't outlive a query use it.
type SliceIterator struct {
	kvs [][2][]byte
	pos int
}

// Append adds a pair to the end of the iterator
func (iter *SliceIterator) Append(key, value []byte) {
	iter.kvs = append(iter.kvs, [2][]byte{key, value})
}

// Next implements Iterator.Next
func (iter *SliceIterator) Next() bool {
	if iter.pos >= len(iter.kvs) {
		iter.pos = len(iter.kvs) + 1

		return false
	}

	iter.pos++

	return true
}

// Key implements Iterator.Key
func (iter *SliceIterator) Key() []byte {
	if iter.pos == 0 || iter.pos > len(iter.kvs) {
		return nil
	}

	return iter.kvs[iter.pos-1][0]
}

// Value implements Iterator.Value
func (iter *SliceIterator) Value() []byte {
	if iter.pos == 0 || iter.pos > len(iter.kvs) {
		return nil
	}

	return iter.kvs[iter.pos-1][1]
}

// Error implements Iterator.Error
func (iter *SliceIterator) Error() error {
	return nil
}
