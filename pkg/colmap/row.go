package colmap

import (
	"strconv"
)

// Header maps column names to positions. It is built once per input and
// shared read-only by every row.
type Header struct {
	names []string
	index map[string]int
}

// NewHeader creates a header from column names. When a name repeats, the
// first occurrence wins.
func NewHeader(names []string) *Header {
	h := &Header{names: append([]string(nil), names...), index: make(map[string]int, len(names))}
	for i, n := range names {
		if _, dup := h.index[n]; !dup && n != "" {
			h.index[n] = i
		}
	}
	return h
}

// Names returns the column names in order.
func (h *Header) Names() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.names...)
}

// Lookup resolves col to a position: a header name first, then a 0-based
// numeric index.
func (h *Header) Lookup(col string) (int, bool) {
	if h != nil {
		if i, ok := h.index[col]; ok {
			return i, true
		}
	}
	i, err := strconv.Atoi(col)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// Has reports whether col names a header column or is a numeric index.
func (h *Header) Has(col string) bool {
	_, ok := h.Lookup(col)
	return ok
}

// Row is one record of tabular input.
type Row struct {
	// Num is the 1-based record number in the input, counting skipped and
	// header rows.
	Num int

	// Values holds the raw cell values.
	Values []string

	// Header resolves column names. May be nil, in which case only numeric
	// column references resolve.
	Header *Header
}

// Value returns the cell for col. ok is false when col does not resolve or
// the row is too short.
func (r Row) Value(col string) (string, bool) {
	i, ok := r.Header.Lookup(col)
	if !ok || i >= len(r.Values) {
		return "", false
	}
	return r.Values[i], true
}

// Map returns the row keyed by column name, falling back to the decimal
// index for unnamed columns.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.Values))
	var names []string
	if r.Header != nil {
		names = r.Header.names
	}
	for i, v := range r.Values {
		key := strconv.Itoa(i)
		if i < len(names) && names[i] != "" {
			key = names[i]
		}
		if _, dup := m[key]; !dup {
			m[key] = v
		}
	}
	return m
}
