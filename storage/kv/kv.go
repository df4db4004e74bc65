package kv

// Keys drains up to limit key-value pairs from an iterator.
// limit < 0 means no limit. Each element of the result
// is a [key, value] pair.
func Keys(iter Iterator, limit int) ([][2][]byte, error) {
	result := [][2][]byte{}

	for (limit < 0 || len(result) < limit) && iter.Next() {
		result = append(result, [2][]byte{iter.Key(), iter.Value()})
	}

	if iter.Error() != nil {
		return nil, iter.Error()
	}

	return result, nil
}

// CheckPut validates the arguments to MapUpdater.Put
func CheckPut(key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	if value == nil {
		return ErrNilValue
	}

	return nil
}

// CheckKey validates a key passed to Get or Delete
func CheckKey(key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}

	return nil
}
