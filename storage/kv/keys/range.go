package keys

import (
	"bytes"
)

// Range is the half-open interval [Min, Max) of keys.
// A nil Min starts at the first key and a nil Max runs
// past the last one. Chained refinements intersect.
type Range struct {
	Min []byte
	Max []byte
}

// All returns the range of every key
func All() Range {
	return Range{}
}

// Eq narrows r to the single key k
func (r Range) Eq(k []byte) Range {
	return r.Gte(k).Lte(k)
}

// Gt narrows r to keys after k
func (r Range) Gt(k []byte) Range {
	return r.withMin(successor(k))
}

// Gte narrows r to k and the keys after it
func (r Range) Gte(k []byte) Range {
	return r.withMin(k)
}

// Lt narrows r to keys before k
func (r Range) Lt(k []byte) Range {
	return r.withMax(k)
}

// Lte narrows r to k and the keys before it
func (r Range) Lte(k []byte) Range {
	return r.withMax(successor(k))
}

// Contains reports whether k falls inside r
func (r Range) Contains(k []byte) bool {
	return (r.Min == nil || bytes.Compare(k, r.Min) >= 0) && (r.Max == nil || bytes.Compare(k, r.Max) < 0)
}

func (r Range) withMin(min []byte) Range {
	if r.Min == nil || bytes.Compare(min, r.Min) > 0 {
		r.Min = min
	}

	return r
}

func (r Range) withMax(max []byte) Range {
	if r.Max == nil || bytes.Compare(max, r.Max) < 0 {
		r.Max = max
	}

	return r
}

// successor is the smallest key greater than k: k with a zero byte appended
func successor(k []byte) []byte {
	next := make([]byte, len(k)+1)
	copy(next, k)

	return next
}
