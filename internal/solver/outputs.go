package solver

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/framemend/backend/internal/models"
)

// Outputs is the decoded solver result document: one displacement map per
// analysis iteration, keyed by line id.
type Outputs struct {
	Iterations []map[int]float64
}

// ParseOutputs reads the solver result file, a JSON document of the form
// {"iterations": [{"<line id>": maxDisplacement, ...}, ...]}.
func ParseOutputs(r io.Reader) (*Outputs, error) {
	var raw struct {
		Iterations []map[string]float64 `json:"iterations"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding solver outputs: %w", err)
	}
	if len(raw.Iterations) == 0 {
		return nil, fmt.Errorf("solver outputs contain no iterations")
	}

	out := &Outputs{Iterations: make([]map[int]float64, 0, len(raw.Iterations))}
	for i, iter := range raw.Iterations {
		decoded := make(map[int]float64, len(iter))
		for key, disp := range iter {
			id, err := strconv.Atoi(key)
			if err != nil {
				return nil, fmt.Errorf("solver outputs: iteration %d: non-integer line id %q", i, key)
			}
			decoded[id] = disp
		}
		out.Iterations = append(out.Iterations, decoded)
	}
	return out, nil
}

// Results flattens the iterations into MemberResult records.
func (o *Outputs) Results(loadCase int) []models.MemberResult {
	var results []models.MemberResult
	for i, iter := range o.Iterations {
		for id, disp := range iter {
			results = append(results, models.MemberResult{
				LineID:          id,
				LoadCase:        loadCase,
				Iteration:       i,
				MaxDisplacement: disp,
			})
		}
	}
	return results
}
