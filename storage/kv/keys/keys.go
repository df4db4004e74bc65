package keys

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Uint32ToKey constructs a key from a uint32.
// Big-endian encoding keeps byte order and
// numeric order the same.
func Uint32ToKey(i uint32) []byte {
	k := make([]byte, 4)

	binary.BigEndian.PutUint32(k, i)

	return k
}

// KeyToUint32 decodes a key created by Uint32ToKey
func KeyToUint32(k []byte) (uint32, error) {
	if len(k) != 4 {
		return 0, fmt.Errorf("expected a 4 byte key, got %d bytes", len(k))
	}

	return binary.BigEndian.Uint32(k), nil
}

// Key is a single key
type Key []byte

// Compare compares two keys
// -1 means a < b
// 1 means a > b
// 0 means a = b
func Compare(a, b Key) int {
	return bytes.Compare(a, b)
}
