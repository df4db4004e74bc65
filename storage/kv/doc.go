// Package kv provides an interface for implementing
// kv drivers that can be used to build more complex storage
// interfaces.
//
// A kv plugin is a factory for root store instances. A root store
// contains zero or more named maps. Transactions are begun on the
// root store and can read and write any of its maps, so a single
// commit can change several maps at once.
//
//	root store
//	  map "posts"
//	    key1: abc
//	    key2: def
//	  map "votes"
//	    key1: aaa
//
// Each map is an ordered byte-keyed map. Keys are compared
// lexicographically, so callers that need numeric order encode
// numbers big-endian (see package keys).
//
// Drivers live under storage/kv/plugins and register themselves
// with the plugins package.
package kv
