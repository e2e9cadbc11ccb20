// Package prefixmap implements PrefixMap: a mapping from string prefixes
// to values, supporting exact lookup and longest-prefix-match resolution.
// Ledger prefixes are opaque strings ending in "." by convention; the
// longest-prefix-match relation used throughout this module is ordinary
// string prefix, not label-wise matching the way a DNS or BGP trie would
// do it.
package prefixmap

import "sort"

// Map is a mapping from prefix strings to arbitrary values. The zero value
// is ready to use. Values are stored as interface{} rather than behind a
// generic type parameter, passing around concrete-typed values and
// asserting at the call site (see routing.Table, which stores
// map[string]*route.Route values in a Map, and routing.Tables, which
// stores *routing.Table values).
type Map struct {
	entries map[string]interface{}
	// sorted caches entries' keys in ascending order; it is invalidated
	// (set to nil) on every mutation and rebuilt lazily by the first
	// operation that needs ordering.
	sorted []string
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: make(map[string]interface{})}
}

// Insert stores value under prefix, returning it. An existing entry for
// the same prefix is overwritten.
func (m *Map) Insert(prefix string, value interface{}) interface{} {
	m.ensureInit()
	if _, exists := m.entries[prefix]; !exists {
		m.sorted = nil
	}
	m.entries[prefix] = value
	return value
}

// Get performs an exact-prefix lookup.
func (m *Map) Get(prefix string) (interface{}, bool) {
	m.ensureInit()
	v, ok := m.entries[prefix]
	return v, ok
}

// Resolve performs a longest-prefix match: the entry whose stored prefix
// is the longest string that is a prefix of key. Keys are unique, so ties
// cannot occur.
func (m *Map) Resolve(key string) (interface{}, string, bool) {
	m.ensureInit()
	m.ensureSorted()

	bestPrefix := ""
	bestLen := -1
	for _, p := range m.sorted {
		if len(p) <= bestLen {
			continue
		}
		if isPrefix(p, key) {
			bestPrefix = p
			bestLen = len(p)
		}
	}
	if bestLen == -1 {
		return nil, "", false
	}
	return m.entries[bestPrefix], bestPrefix, true
}

// Each iterates all (value, prefix) pairs in prefix-sorted order. It stops
// early if fn returns false.
func (m *Map) Each(fn func(value interface{}, prefix string) bool) {
	m.ensureInit()
	m.ensureSorted()
	for _, p := range m.sorted {
		if !fn(m.entries[p], p) {
			return
		}
	}
}

// Keys returns all stored prefixes in sorted order.
func (m *Map) Keys() []string {
	m.ensureInit()
	m.ensureSorted()
	out := make([]string, len(m.sorted))
	copy(out, m.sorted)
	return out
}

// Size returns the number of stored entries.
func (m *Map) Size() int {
	m.ensureInit()
	return len(m.entries)
}

// Delete removes the entry for prefix, if any.
func (m *Map) Delete(prefix string) {
	m.ensureInit()
	if _, exists := m.entries[prefix]; exists {
		delete(m.entries, prefix)
		m.sorted = nil
	}
}

// GetAppliesToPrefix returns the shortest ledger-segment-aligned prefix P
// of targetAddress — that is, a prefix ending at a "." boundary, no
// shorter than storedPrefix — such that no stored prefix other than
// storedPrefix extends beyond P. If no such short prefix disambiguates
// targetAddress among the other stored peers, the full targetAddress is
// returned. This is used to compute a compact broadcast-form prefix that
// still disambiguates the destination among stored peers. When
// targetAddress equals storedPrefix exactly, storedPrefix is returned.
func (m *Map) GetAppliesToPrefix(storedPrefix, targetAddress string) string {
	m.ensureInit()
	m.ensureSorted()

	for i := 0; i < len(targetAddress); i++ {
		if targetAddress[i] != '.' {
			continue
		}
		candidate := targetAddress[:i+1]
		if len(candidate) < len(storedPrefix) {
			continue
		}
		if m.disambiguates(storedPrefix, candidate) {
			return candidate
		}
	}
	return targetAddress
}

// disambiguates reports whether no stored prefix other than storedPrefix
// extends beyond candidate — i.e. advertising a route under candidate
// would not shadow a more specific route actually stored for some other
// peer.
func (m *Map) disambiguates(storedPrefix, candidate string) bool {
	for _, p := range m.sorted {
		if p == storedPrefix {
			continue
		}
		if isPrefix(candidate, p) {
			return false
		}
	}
	return true
}

func (m *Map) ensureInit() {
	if m.entries == nil {
		m.entries = make(map[string]interface{})
	}
}

func (m *Map) ensureSorted() {
	if m.sorted != nil {
		return
	}
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	m.sorted = keys
}

func isPrefix(prefix, s string) bool {
	return len(prefix) <= len(s) && s[:len(prefix)] == prefix
}
