package layout

import "github.com/matzehuels/coursegraph/pkg/catalog"

// AssignLayers computes the layer depth of every course in the catalog.
//
// The depth of a course is the length of the longest prerequisite chain that
// ends at it:
//   - A course with no prerequisites in the catalog has depth 0
//   - Otherwise depth is 1 + the maximum depth of its prerequisites
//
// Prerequisite identifiers that are not in the catalog are skipped.
//
// # Cycles
//
// AssignLayers never fails on cyclic input. Each course is resolved with a
// depth-first walk that tracks the courses on the current path; a
// prerequisite that is already on the path contributes depth 0, which breaks
// the cycle. For A requires B and B requires A, both courses get depth 2.
//
// # Performance
//
// The walk uses an explicit stack, so deep prerequisite chains cannot
// exhaust the goroutine stack. Depths of subtrees that never reach the
// current path do not depend on the starting course and are memoized, which
// makes acyclic catalogs O(V + E). Subtrees that touch a cycle are
// recomputed for every starting course.
func AssignLayers(cat *catalog.Catalog) map[string]int {
	ids := cat.IDs()
	depths := make(map[string]int, len(ids))
	memo := make(map[string]int, len(ids))
	for _, id := range ids {
		depths[id] = resolveDepth(cat, id, memo)
	}
	return depths
}

// frame is one course being resolved on the explicit DFS stack.
type frame struct {
	id      string
	prereqs []string
	next    int  // index of the next prerequisite to visit
	depth   int  // best depth found so far
	cyclic  bool // a prerequisite on the current path was reached
}

func resolveDepth(cat *catalog.Catalog, root string, memo map[string]int) int {
	if d, ok := memo[root]; ok {
		return d
	}

	onPath := map[string]bool{root: true}
	stack := []*frame{{id: root, prereqs: cat.Prerequisites(root)}}

	for {
		top := stack[len(stack)-1]

		if top.next < len(top.prereqs) {
			p := top.prereqs[top.next]
			top.next++

			switch {
			case !cat.Has(p):
				// dangling reference
			case onPath[p]:
				top.depth = max(top.depth, 1)
				top.cyclic = true
			default:
				if d, ok := memo[p]; ok {
					top.depth = max(top.depth, d+1)
					continue
				}
				onPath[p] = true
				stack = append(stack, &frame{id: p, prereqs: cat.Prerequisites(p)})
			}
			continue
		}

		stack = stack[:len(stack)-1]
		delete(onPath, top.id)
		if !top.cyclic {
			memo[top.id] = top.depth
		}
		if len(stack) == 0 {
			return top.depth
		}

		parent := stack[len(stack)-1]
		parent.depth = max(parent.depth, top.depth+1)
		parent.cyclic = parent.cyclic || top.cyclic
	}
}
