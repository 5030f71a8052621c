package repair

import (
	"github.com/framemend/backend/internal/geometry"
)

// augmentExistingSegments attaches lines that already coincide with part of a
// mother's span (a duplicate shorter segment drawn on top of a longer one)
// to that mother's children list. Such segments share the mother's supporting
// line instead of crossing it, so the intersection collector never sees them.
// No geometry is created and no member records change; only the lineage maps
// are updated.
//
// Mother spans are taken from the original input geometry: a mother that was
// split no longer exists in the output collection, but its span is still the
// claim region. Mothers are scanned in ascending id order and a claimed line
// is never re-claimed, so the first matching mother wins.
func (p *pass) augmentExistingSegments() {
	elevTol := p.opts.elevationTol()
	tol := p.opts.Tol

	candidates := sortedLineIDs(p.out.Lines)

	for _, motherID := range sortedLineIDs(p.in.Lines) {
		// A mother that was itself claimed as a sub-segment no longer
		// claims anything.
		if owner, ok := p.childToMother[motherID]; ok && owner != motherID {
			continue
		}

		ml := p.in.Lines[motherID]
		a, b := p.endpointXY(ml.Ni), p.endpointXY(ml.Nj)
		// A degenerate span is collinear with everything; it claims nothing.
		ab := geometry.Sub(a, b)
		if geometry.DotXY(ab, ab) <= tol*tol {
			continue
		}
		zm := p.avgZ(ml)

		for _, candID := range candidates {
			if candID == motherID {
				continue
			}
			// Eligible candidates are unclaimed or still self-mapped.
			if owner, ok := p.childToMother[candID]; ok && owner != candID {
				continue
			}
			cl := p.out.Lines[candID]
			if abs(p.avgZ(cl)-zm) > elevTol {
				continue
			}
			c1, c2 := p.endpointXY(cl.Ni), p.endpointXY(cl.Nj)
			if !geometry.CollinearXY(a, b, c1, tol) || !geometry.CollinearXY(a, b, c2, tol) {
				continue
			}
			if !geometry.PointOnSegmentXY(a, b, c1, tol) || !geometry.PointOnSegmentXY(a, b, c2, tol) {
				continue
			}

			p.motherToChildren[motherID] = append(p.motherToChildren[motherID], candID)
			p.childToMother[candID] = motherID
			p.dropSelfMapping(candID)
		}
	}
}

// dropSelfMapping removes a claimed line's self-reference from its own
// children entry so the lineage stays a partition: the line now belongs to
// its new mother only. The entry itself is kept for coverage.
func (p *pass) dropSelfMapping(id int) {
	entry := p.motherToChildren[id]
	for i, c := range entry {
		if c == id {
			p.motherToChildren[id] = append(entry[:i:i], entry[i+1:]...)
			return
		}
	}
}
