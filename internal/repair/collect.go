package repair

import (
	"github.com/framemend/backend/internal/geometry"
	"github.com/framemend/backend/internal/models"
)

// collectIntersections scans every unordered pair of lines that share an
// elevation band and records a split parameter on both lines at each planar
// intersection. The scan is deliberately quadratic: model exports are tens of
// thousands of lines at most, and an auditable all-pairs pass beats a
// sweep-line here. Line ids are visited in ascending order so synthetic node
// ids are reproducible across runs.
func (p *pass) collectIntersections() {
	ids := sortedLineIDs(p.out.Lines)
	elevTol := p.opts.elevationTol()

	for i := 0; i < len(ids); i++ {
		li := p.out.Lines[ids[i]]
		p1, p2 := p.endpointXY(li.Ni), p.endpointXY(li.Nj)
		zi := p.avgZ(li)

		for j := i + 1; j < len(ids); j++ {
			lj := p.out.Lines[ids[j]]
			zj := p.avgZ(lj)
			if abs(zi-zj) > elevTol {
				continue
			}

			q1, q2 := p.endpointXY(lj.Ni), p.endpointXY(lj.Nj)
			hit, ok := geometry.SegmentIntersectionXY(p1, p2, q1, q2, p.opts.Tol)
			if !ok {
				continue
			}

			z := (zi + zj) * 0.5
			nid := p.findOrCreateNode(hit.X, hit.Y, z)
			p.splits[ids[i]] = append(p.splits[ids[i]], splitEntry{t: hit.T, node: nid})
			p.splits[ids[j]] = append(p.splits[ids[j]], splitEntry{t: hit.U, node: nid})
		}
	}
}

// findOrCreateNode returns the id of an existing node whose coordinates match
// within tolerance on all three axes, or allocates a new one. Only synthetic
// intersection points go through here; pre-existing duplicate nodes are an
// upstream concern.
func (p *pass) findOrCreateNode(x, y, z float64) int {
	tol := p.opts.Tol
	for _, id := range sortedNodeIDs(p.out.Nodes) {
		n := p.out.Nodes[id]
		if abs(n.X-x) <= tol && abs(n.Y-y) <= tol && abs(n.Z-z) <= tol {
			return id
		}
	}
	id := p.nextNodeID
	p.nextNodeID++
	p.out.Nodes[id] = models.Node{ID: id, X: x, Y: y, Z: z}
	p.syntheticNodes = append(p.syntheticNodes, id)
	return id
}

func (p *pass) endpointXY(nodeID int) geometry.Point {
	n := p.out.Nodes[nodeID]
	return geometry.Point{X: n.X, Y: n.Y}
}

// avgZ is the mean elevation of a line's endpoints.
func (p *pass) avgZ(l models.Line) float64 {
	return (p.out.Nodes[l.Ni].Z + p.out.Nodes[l.Nj].Z) * 0.5
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
