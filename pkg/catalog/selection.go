package catalog

import "slices"

// Selection is a set of course identifiers chosen by the advisor.
//
// The zero value is an empty selection. A Selection is never modified after
// construction; build a new one to change it.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns a selection containing ids. Duplicates collapse.
func NewSelection(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected identifiers.
func (s Selection) Len() int { return len(s.ids) }

// IDs returns the selected identifiers in sorted order. An empty selection
// yields an empty, non-nil slice.
func (s Selection) IDs() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
