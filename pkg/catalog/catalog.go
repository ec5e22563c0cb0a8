package catalog

import (
	"errors"
	"slices"

	cgerrors "github.com/matzehuels/coursegraph/pkg/errors"
)

var (
	// ErrEmptyID is returned by [New] when a course has no identifier.
	ErrEmptyID = errors.New("course ID must not be empty")

	// ErrDuplicateID is returned by [New] when two courses share an identifier.
	ErrDuplicateID = errors.New("duplicate course ID")

	// ErrSelfPrerequisite is returned by [New] when a course lists its own
	// identifier as a prerequisite.
	ErrSelfPrerequisite = errors.New("course cannot be its own prerequisite")

	// ErrInvalidCourse is returned by [New] when a course fails field
	// validation (unknown category, negative credits, missing name).
	ErrInvalidCourse = errors.New("invalid course")
)

// Category is the closed set of catalog tags.
type Category string

const (
	CategoryCore       Category = "core"
	CategoryFinance    Category = "finance"
	CategoryMarketing  Category = "marketing"
	CategoryManagement Category = "management"
	CategoryElective   Category = "elective"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryCore, CategoryFinance, CategoryMarketing, CategoryManagement, CategoryElective}

// Valid reports whether c is one of [Categories].
func (c Category) Valid() bool { return slices.Contains(Categories, c) }

// Course is a single catalog record.
type Course struct {
	ID            string   `json:"id" toml:"id" yaml:"id" validate:"required,max=32"`
	Name          string   `json:"name" toml:"name" yaml:"name" validate:"required"`
	Description   string   `json:"description,omitempty" toml:"description" yaml:"description,omitempty"`
	Credits       int      `json:"credits" toml:"credits" yaml:"credits" validate:"gte=0"`
	Category      Category `json:"category" toml:"category" yaml:"category" validate:"required,oneof=core finance marketing management elective"`
	Prerequisites []string `json:"prerequisites,omitempty" toml:"prerequisites" yaml:"prerequisites,omitempty" validate:"dive,required"`
}

// HasPrerequisite reports whether id is one of the course's prerequisites.
func (c Course) HasPrerequisite(id string) bool { return slices.Contains(c.Prerequisites, id) }

func (c Course) clone() Course {
	c.Prerequisites = slices.Clone(c.Prerequisites)
	return c
}

// Edge is a prerequisite relation between two catalog courses:
// From must be taken before To.
type Edge struct {
	From string // prerequisite ID
	To   string // dependent course ID
}

// Catalog is an immutable, ordered collection of courses.
//
// The zero value and a nil *Catalog both behave as an empty catalog.
// Catalog is safe for concurrent reads.
type Catalog struct {
	courses []Course
	index   map[string]int
}

// New validates courses and builds a catalog that preserves their order.
//
// New fails on empty or duplicate identifiers, self prerequisites and field
// validation errors. Prerequisite identifiers that do not name a catalog
// course are kept as-is; consumers skip them.
func New(courses []Course) (*Catalog, error) {
	c := &Catalog{
		courses: make([]Course, 0, len(courses)),
		index:   make(map[string]int, len(courses)),
	}
	for i, course := range courses {
		if course.ID == "" {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, ErrEmptyID, "course at index %d", i)
		}
		if _, exists := c.index[course.ID]; exists {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, ErrDuplicateID, "course %q", course.ID)
		}
		if course.HasPrerequisite(course.ID) {
			return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidCatalog, ErrSelfPrerequisite, "course %q", course.ID)
		}
		if err := validateCourse(course); err != nil {
			return nil, err
		}
		c.index[course.ID] = len(c.courses)
		c.courses = append(c.courses, course.clone())
	}
	return c, nil
}

// MustNew is like [New] but panics on invalid input. It is intended for
// static catalogs in tests and examples.
func MustNew(courses []Course) *Catalog {
	c, err := New(courses)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of courses.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.courses)
}

// Courses returns a copy of all courses in catalog order.
func (c *Catalog) Courses() []Course {
	if c == nil {
		return nil
	}
	out := make([]Course, len(c.courses))
	for i, course := range c.courses {
		out[i] = course.clone()
	}
	return out
}

// IDs returns course identifiers in catalog order.
func (c *Catalog) IDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.courses))
	for i, course := range c.courses {
		ids[i] = course.ID
	}
	return ids
}

// Get returns the course with the given identifier.
func (c *Catalog) Get(id string) (Course, bool) {
	if c == nil {
		return Course{}, false
	}
	i, ok := c.index[id]
	if !ok {
		return Course{}, false
	}
	return c.courses[i].clone(), true
}

// Has reports whether id names a catalog course.
func (c *Catalog) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.index[id]
	return ok
}

// Prerequisites returns the prerequisite identifiers of id in declaration
// order, including identifiers missing from the catalog.
func (c *Catalog) Prerequisites(id string) []string {
	if c == nil {
		return nil
	}
	i, ok := c.index[id]
	if !ok {
		return nil
	}
	return slices.Clone(c.courses[i].Prerequisites)
}

// Edges returns every prerequisite relation whose endpoints are both in the
// catalog, ordered by dependent course and then by declaration order.
func (c *Catalog) Edges() []Edge {
	if c == nil {
		return nil
	}
	var edges []Edge
	for _, course := range c.courses {
		for _, p := range course.Prerequisites {
			if c.Has(p) {
				edges = append(edges, Edge{From: p, To: course.ID})
			}
		}
	}
	return edges
}

// MissingPrerequisites returns, in catalog order, every (course, prerequisite)
// reference whose prerequisite is not in the catalog.
func (c *Catalog) MissingPrerequisites() []Edge {
	if c == nil {
		return nil
	}
	var missing []Edge
	for _, course := range c.courses {
		for _, p := range course.Prerequisites {
			if !c.Has(p) {
				missing = append(missing, Edge{From: p, To: course.ID})
			}
		}
	}
	return missing
}

// Partition splits ids into those present in the catalog and those that are
// not, preserving input order and dropping duplicates.
func (c *Catalog) Partition(ids []string) (known, unknown []string) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if c.Has(id) {
			known = append(known, id)
		} else {
			unknown = append(unknown, id)
		}
	}
	return known, unknown
}
