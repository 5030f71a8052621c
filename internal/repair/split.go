package repair

import (
	"sort"

	"github.com/framemend/backend/internal/models"
)

// buildChildren converts each line's split list into child lines. A line with
// no interior split points maps to itself; otherwise the mother is removed,
// its member record deleted, and a child line plus member copy is created for
// every consecutive pair of distinct nodes.
func (p *pass) buildChildren() {
	p.motherToChildren = make(models.MotherToChildren, len(p.out.Lines))
	p.childToMother = make(models.ChildToMother)

	var remove []int
	for _, lid := range sortedLineIDs(p.out.Lines) {
		entries := p.splits[lid]
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].t < entries[j].t })

		// Collapse consecutive entries resolving to the same node; these
		// are near-zero-length fragments not worth building.
		dedup := entries[:0:0]
		for _, e := range entries {
			if len(dedup) == 0 || e.node != dedup[len(dedup)-1].node {
				dedup = append(dedup, e)
			}
		}

		if len(dedup) <= 2 {
			p.motherToChildren[lid] = []int{lid}
			p.childToMother[lid] = lid
			continue
		}

		remove = append(remove, lid)
		p.motherToChildren[lid] = []int{}
		member, hadMember := p.removeMember(lid)

		for k := 0; k+1 < len(dedup); k++ {
			a, b := dedup[k].node, dedup[k+1].node
			if a == b {
				continue
			}
			childID := p.nextLineID
			p.nextLineID++
			p.out.Lines[childID] = models.Line{ID: childID, Ni: a, Nj: b}
			p.motherToChildren[lid] = append(p.motherToChildren[lid], childID)
			p.childToMother[childID] = lid
			if hadMember {
				p.out.Members[childID] = models.Member{
					LineID:         childID,
					CrossSectionID: member.CrossSectionID,
					MaterialName:   member.MaterialName,
				}
			}
		}
	}

	p.splitMothers = remove
	for _, lid := range remove {
		delete(p.out.Lines, lid)
	}
}

// removeMember locates and deletes the member record attached to a line.
// Members are usually keyed by their line id, but the record is matched on
// its LineID field since exports may key members independently.
func (p *pass) removeMember(lineID int) (models.Member, bool) {
	keys := make([]int, 0, len(p.out.Members))
	for k := range p.out.Members {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		if m := p.out.Members[k]; m.LineID == lineID {
			delete(p.out.Members, k)
			return m, true
		}
	}
	return models.Member{}, false
}
