package solver

import (
	"math"
	"sort"

	"github.com/framemend/backend/internal/models"
)

// Reduce folds per-child solver results back onto the original mother lines:
// for every mother the governing value is the child displacement with the
// largest magnitude across all iterations. Children without a result (for
// example augmented sub-segments the solver never saw) simply do not
// contribute. Mothers with no scored child are omitted from the result.
func Reduce(lineage models.Lineage, outputs *Outputs) map[int]models.GoverningResult {
	governing := make(map[int]models.GoverningResult)

	mothers := make([]int, 0, len(lineage.MotherToChildren))
	for m := range lineage.MotherToChildren {
		mothers = append(mothers, m)
	}
	sort.Ints(mothers)

	for _, mother := range mothers {
		children := lineage.MotherToChildren[mother]
		best := models.GoverningResult{MotherID: mother, ChildCount: len(children)}
		found := false
		for _, child := range children {
			for _, iter := range outputs.Iterations {
				disp, ok := iter[child]
				if !ok {
					continue
				}
				if !found || math.Abs(disp) > math.Abs(best.MaxDisplacement) {
					best.MaxDisplacement = disp
					best.GoverningChild = child
					found = true
				}
			}
		}
		if found {
			governing[mother] = best
		}
	}
	return governing
}
