// Package kv provides the ordered key-value store the graph layer is built
// on. Keys are hierarchical paths (e.g. ["g", "v", "<id>"]) encoded with the
// ASCII unit separator, so segments may carry ':' and '/' freely.
//
// Two implementations are provided: Badger for persistent graphs and Memory
// for tests and dry runs.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")

	// ErrInvalidKey is returned when a key segment contains Separator.
	ErrInvalidKey = errors.New("kv: invalid key")
)

// Separator joins key segments in the encoded form.
const Separator byte = 0x1f

// Key is a hierarchical path represented as a slice of string segments.
type Key []string

// String returns the key joined with ':' for display.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Append returns a new key with segs appended. The receiver is not modified.
func (k Key) Append(segs ...string) Key {
	out := make(Key, 0, len(k)+len(segs))
	out = append(out, k...)
	return append(out, segs...)
}

// Entry is a key-value pair returned by List and used by BatchSet.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is an ordered key-value store with path-based keys.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// List iterates over all entries strictly below prefix in lexicographic
	// order of the encoded key. A nil prefix lists everything.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet atomically stores multiple entries.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete atomically removes multiple keys. Missing keys are ignored.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases any resources held by the store.
	Close() error
}

// CheckSegment reports whether s can be used as a key segment.
func CheckSegment(s string) error {
	if strings.IndexByte(s, Separator) >= 0 {
		return fmt.Errorf("%w: segment %q contains separator", ErrInvalidKey, s)
	}
	return nil
}

func encode(k Key) ([]byte, error) {
	n := 0
	for _, seg := range k {
		if err := CheckSegment(seg); err != nil {
			return nil, err
		}
		n += len(seg) + 1
	}
	buf := make([]byte, 0, n)
	for i, seg := range k {
		if i > 0 {
			buf = append(buf, Separator)
		}
		buf = append(buf, seg...)
	}
	return buf, nil
}

// encodePrefix encodes prefix with a trailing separator so that "a:b" does
// not match "a:bc". A nil prefix encodes to nil (scan everything).
func encodePrefix(prefix Key) ([]byte, error) {
	if len(prefix) == 0 {
		return nil, nil
	}
	p, err := encode(prefix)
	if err != nil {
		return nil, err
	}
	return append(p, Separator), nil
}

func decode(b []byte) Key {
	return strings.Split(string(b), string(Separator))
}
