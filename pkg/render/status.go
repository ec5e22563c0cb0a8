package render

import "github.com/matzehuels/coursegraph/pkg/catalog"

// Status is the highlight class of a course in one render pass.
type Status int

const (
	StatusNeutral Status = iota
	StatusPrerequisite
	StatusSelected
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusSelected:
		return "selected"
	case StatusPrerequisite:
		return "prerequisite"
	default:
		return "neutral"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// statusOf resolves the two relations into one class. Selection takes
// precedence over being a prerequisite.
func statusOf(selected, prerequisite bool) Status {
	switch {
	case selected:
		return StatusSelected
	case prerequisite:
		return StatusPrerequisite
	default:
		return StatusNeutral
	}
}

// Classify returns the status of every catalog course.
//
// A course is a prerequisite when it appears in the prerequisite list of a
// selected course. Selected identifiers that are not in the catalog do not
// contribute prerequisites.
func Classify(cat *catalog.Catalog, sel catalog.Selection) map[string]Status {
	required := make(map[string]bool)
	for _, id := range sel.IDs() {
		for _, p := range cat.Prerequisites(id) {
			required[p] = true
		}
	}

	statuses := make(map[string]Status, cat.Len())
	for _, id := range cat.IDs() {
		statuses[id] = statusOf(sel.Has(id), required[id])
	}
	return statuses
}
