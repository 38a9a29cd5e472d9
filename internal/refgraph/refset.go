package refgraph

import "strings"

// ReferenceSet is the set of literal strings extracted from
// import/require-like expressions across a source tree. It is built once
// per detection run and read-only afterwards.
type ReferenceSet struct {
	refs map[string]struct{}
}

// NewReferenceSet returns an empty set.
func NewReferenceSet() *ReferenceSet {
	return &ReferenceSet{refs: make(map[string]struct{})}
}

// Add inserts a reference verbatim.
func (s *ReferenceSet) Add(ref string) {
	if ref != "" {
		s.refs[ref] = struct{}{}
	}
}

// Contains reports whether ref is in the set exactly.
func (s *ReferenceSet) Contains(ref string) bool {
	_, ok := s.refs[ref]
	return ok
}

// ContainsSubstring reports whether any reference contains sub. This is
// the deliberately loose keep-fallback: it trades precision for fewer
// false deletions, so it must not be tightened into an exact match.
func (s *ReferenceSet) ContainsSubstring(sub string) bool {
	if sub == "" {
		return false
	}
	for ref := range s.refs {
		if strings.Contains(ref, sub) {
			return true
		}
	}
	return false
}

// Len returns the number of distinct references.
func (s *ReferenceSet) Len() int {
	return len(s.refs)
}
