package sanitize

import (
	"sort"
	"strings"
)

// Set is the read-only view of a block list the sanitizer needs
type Set interface {
	// Contains reports whether the lowercase key must be stripped
	Contains(key string) bool
}

// BlockList is an ordered set of unique lowercase parameter names.
// The zero value is an empty, usable list.
type BlockList struct {
	names []string
	index map[string]struct{}
}

// NewBlockList builds a list from names, normalizing each to lowercase and
// dropping empties and duplicates while keeping first-seen order.
func NewBlockList(names ...string) BlockList {
	var b BlockList
	for _, n := range names {
		_, _ = b.Add(n)
	}
	return b
}

// DefaultBlockList returns a fresh list seeded with the default tracking parameters
func DefaultBlockList() BlockList {
	return NewBlockList(defaultTrackingParams...)
}

// NormalizeParam trims and lowercases a parameter name
func NormalizeParam(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Contains reports whether key (compared case-insensitively) is blocked
func (b BlockList) Contains(key string) bool {
	if b.index == nil {
		return false
	}
	_, ok := b.index[strings.ToLower(key)]
	return ok
}

// Len returns the number of blocked names
func (b BlockList) Len() int {
	return len(b.names)
}

// Names returns a copy of the names in insertion order
func (b BlockList) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Sorted returns a copy of the names in alphabetical order, for display
func (b BlockList) Sorted() []string {
	out := b.Names()
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the list
func (b BlockList) Clone() BlockList {
	return NewBlockList(b.names...)
}

// Add inserts a normalized name. It returns the normalized form and
// ErrEmptyParam or ErrDuplicateParam when nothing was added.
func (b *BlockList) Add(name string) (string, error) {
	normalized := NormalizeParam(name)
	if normalized == "" {
		return "", ErrEmptyParam
	}
	if b.index == nil {
		b.index = make(map[string]struct{})
	}
	if _, exists := b.index[normalized]; exists {
		return normalized, ErrDuplicateParam
	}
	b.index[normalized] = struct{}{}
	b.names = append(b.names, normalized)
	return normalized, nil
}

// Remove deletes name from the list and reports whether it was present
func (b *BlockList) Remove(name string) bool {
	normalized := NormalizeParam(name)
	if _, exists := b.index[normalized]; !exists {
		return false
	}
	delete(b.index, normalized)
	kept := make([]string, 0, len(b.names)-1)
	for _, n := range b.names {
		if n != normalized {
			kept = append(kept, n)
		}
	}
	b.names = kept
	return true
}

// Reset replaces the contents with the default tracking parameters
func (b *BlockList) Reset() {
	*b = DefaultBlockList()
}
