// Package repair connects structural lines that cross or touch in plan but
// are unaware of each other in the source model. Crossing segments grouped by
// elevation get a shared node, "mother" lines are split into "child" lines at
// those nodes, member attributes migrate from mother to children, and the
// lineage maps relate every original line to its fragments so downstream
// results can be reduced back onto it.
package repair

import (
	"fmt"
	"sort"

	"github.com/framemend/backend/internal/models"
)

// Options configures the repair pass.
type Options struct {
	// Tol is the geometric tolerance used for coordinate, collinearity and
	// parametric comparisons.
	Tol float64

	// ElevationTol is the maximum difference between two lines' average
	// elevations for them to be considered coplanar. Zero means derive it
	// as max(Tol, 10*Tol), which accepts minor out-of-plane modeling noise
	// without merging genuinely different stories.
	ElevationTol float64
}

// DefaultOptions returns the default repair options.
func DefaultOptions() Options {
	return Options{Tol: 1e-6}
}

func (o Options) elevationTol() float64 {
	if o.ElevationTol > 0 {
		return o.ElevationTol
	}
	t := o.Tol
	if 10*o.Tol > t {
		t = 10 * o.Tol
	}
	return t
}

// Result is the atomic outcome of one repair pass. Model is a new value; the
// caller's input is never mutated.
type Result struct {
	Model   *models.StructuralModel
	Lineage models.Lineage

	// SyntheticNodes lists the ids of nodes created at intersections,
	// ascending by discovery order.
	SyntheticNodes []int

	// SplitMothers lists the original line ids that were subdivided and
	// removed from the output line collection.
	SplitMothers []int

	// NextNodeID and NextLineID are the id counters after the pass, for
	// callers that keep allocating.
	NextNodeID int
	NextLineID int
}

// Connect runs the full repair: intersection collection, splitting,
// pre-existing-segment augmentation and mapping finalization. It returns an
// error only for contract violations (a line referencing an absent node);
// geometric degeneracies are normal no-intersection outcomes.
func Connect(model *models.StructuralModel, opts Options) (*Result, error) {
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("repair: %w", err)
	}

	p := &pass{
		in:         model,
		out:        model.Clone(),
		opts:       opts,
		splits:     make(map[int][]splitEntry, len(model.Lines)),
		nextNodeID: nextID(model.Nodes),
		nextLineID: nextIDLines(model.Lines),
	}

	p.seedSplits()
	p.collectIntersections()
	p.buildChildren()
	p.augmentExistingSegments()
	p.finalizeMappings()

	return &Result{
		Model: p.out,
		Lineage: models.Lineage{
			MotherToChildren: p.motherToChildren,
			ChildToMother:    p.childToMother,
		},
		SyntheticNodes: p.syntheticNodes,
		SplitMothers:   p.splitMothers,
		NextNodeID:     p.nextNodeID,
		NextLineID:     p.nextLineID,
	}, nil
}

// splitEntry is one split parameter on a line: the parametric position along
// Ni->Nj and the node resolved at that position.
type splitEntry struct {
	t    float64
	node int
}

// pass holds the working state of a single Connect call.
type pass struct {
	in   *models.StructuralModel
	out  *models.StructuralModel
	opts Options

	splits     map[int][]splitEntry
	nextNodeID int
	nextLineID int

	motherToChildren models.MotherToChildren
	childToMother    models.ChildToMother

	syntheticNodes []int
	splitMothers   []int
}

// seedSplits initializes each line's split list with its own endpoints.
func (p *pass) seedSplits() {
	for id, l := range p.out.Lines {
		p.splits[id] = []splitEntry{{t: 0, node: l.Ni}, {t: 1, node: l.Nj}}
	}
}

// finalizeMappings guarantees every original line id is a key of the
// mother-to-children map. A line whose entry is still empty and that
// survives in the output collection maps to itself, unless the augmenter
// already claimed it for another mother.
func (p *pass) finalizeMappings() {
	for _, id := range sortedLineIDs(p.in.Lines) {
		if _, ok := p.motherToChildren[id]; !ok {
			p.motherToChildren[id] = []int{}
		}
		if len(p.motherToChildren[id]) > 0 {
			continue
		}
		if _, survives := p.out.Lines[id]; !survives {
			continue
		}
		if _, claimed := p.childToMother[id]; claimed {
			continue
		}
		p.motherToChildren[id] = []int{id}
		p.childToMother[id] = id
	}
}

func nextID(nodes map[int]models.Node) int {
	next := 1
	for id := range nodes {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

func nextIDLines(lines map[int]models.Line) int {
	next := 1
	for id := range lines {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

func sortedLineIDs(lines map[int]models.Line) []int {
	ids := make([]int, 0, len(lines))
	for id := range lines {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func sortedNodeIDs(nodes map[int]models.Node) []int {
	ids := make([]int, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
