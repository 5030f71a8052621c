package models

// MotherToChildren maps an original line id to the ids of the lines that are
// geometrically part of it after splitting and augmentation. A line that was
// never split maps to itself.
type MotherToChildren map[int][]int

// ChildToMother is the inverse index: child line id -> owning mother id.
type ChildToMother map[int]int

// Lineage bundles both directions of the mother/child index. Downstream
// consumers use it to reduce per-child analysis results back onto the
// original line.
type Lineage struct {
	MotherToChildren MotherToChildren `json:"motherToChildren"`
	ChildToMother    ChildToMother    `json:"childToMother"`
}

// Children returns the child list for a mother, or nil.
func (l *Lineage) Children(motherID int) []int {
	return l.MotherToChildren[motherID]
}

// Mother resolves the owning mother of a line id. A mother line resolves to
// itself when it survived unsplit.
func (l *Lineage) Mother(childID int) (int, bool) {
	m, ok := l.ChildToMother[childID]
	return m, ok
}
