package fstype

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// orderedSet keeps the first occurrence of each name in insertion order
type orderedSet struct {
	items []string
	seen  sets.Set[string]
}

func newOrderedSet() *orderedSet {
	return &orderedSet{
		seen: sets.New[string](),
	}
}

// Add appends names that have not been seen before
func (s *orderedSet) Add(names ...string) {
	for _, name := range names {
		if s.seen.Has(name) {
			continue
		}
		s.seen.Insert(name)
		s.items = append(s.items, name)
	}
}

// Has reports whether name was added
func (s *orderedSet) Has(name string) bool {
	return s.seen.Has(name)
}

// List returns the names in first-insertion order
func (s *orderedSet) List() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of distinct names
func (s *orderedSet) Len() int {
	return len(s.items)
}
