package solver

import (
	"bytes"
	"strings"
	"testing"

	"github.com/framemend/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleModel() *models.StructuralModel {
	m := models.NewStructuralModel()
	m.Nodes[1] = models.Node{ID: 1, X: 0, Y: 0, Z: 0}
	m.Nodes[2] = models.Node{ID: 2, X: 10, Y: 0, Z: 0}
	m.Lines[1] = models.Line{ID: 1, Ni: 1, Nj: 2}
	m.Members[1] = models.Member{LineID: 1, CrossSectionID: 4, MaterialName: "Steel"}
	m.CrossSections[4] = models.CrossSection{
		ID: 4, Name: "HEA200", A: 0.00538, Iz: 3.692e-5, Iy: 1.336e-5, Jxx: 2.1e-7, B: 0.2, H: 0.19,
	}
	return m
}

func TestWriteInputsRoundTrip(t *testing.T) {
	model := sampleModel()

	var buf bytes.Buffer
	require.NoError(t, WriteInputs(&buf, model, "HEA200"))

	decoded, sectionName, err := ReadInputs(&buf)
	require.NoError(t, err)
	assert.Equal(t, "HEA200", sectionName)
	assert.Equal(t, model.Nodes, decoded.Nodes)
	assert.Equal(t, model.Lines, decoded.Lines)
	assert.Equal(t, model.Members, decoded.Members)
	assert.Equal(t, model.CrossSections, decoded.CrossSections)
}

func TestWriteInputsUsesStringKeys(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInputs(&buf, sampleModel(), "HEA200"))

	s := buf.String()
	assert.Contains(t, s, `"1"`)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(s), "["))
}

func TestParseOutputs(t *testing.T) {
	raw := `{"iterations": [{"3": 0.012, "4": -0.034}, {"3": 0.011}]}`

	out, err := ParseOutputs(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, out.Iterations, 2)
	assert.InDelta(t, -0.034, out.Iterations[0][4], 1e-12)

	results := out.Results(1)
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Iteration)
	assert.Equal(t, 1, results[0].LoadCase)
}

func TestParseOutputsRejectsBadKeys(t *testing.T) {
	_, err := ParseOutputs(strings.NewReader(`{"iterations": [{"abc": 1.0}]}`))
	assert.Error(t, err)
}

func TestParseOutputsRejectsEmpty(t *testing.T) {
	_, err := ParseOutputs(strings.NewReader(`{"iterations": []}`))
	assert.Error(t, err)
}

func TestReduceGoverning(t *testing.T) {
	lineage := models.Lineage{
		MotherToChildren: models.MotherToChildren{
			1: {3, 4},
			2: {2},
		},
		ChildToMother: models.ChildToMother{3: 1, 4: 1, 2: 2},
	}
	out := &Outputs{Iterations: []map[int]float64{
		{3: 0.012, 4: -0.034, 2: 0.005},
		{3: 0.040, 2: 0.004},
	}}

	governing := Reduce(lineage, out)
	require.Len(t, governing, 2)

	g1 := governing[1]
	assert.Equal(t, 3, g1.GoverningChild)
	assert.InDelta(t, 0.040, g1.MaxDisplacement, 1e-12)
	assert.Equal(t, 2, g1.ChildCount)

	g2 := governing[2]
	assert.Equal(t, 2, g2.GoverningChild)
	assert.InDelta(t, 0.005, g2.MaxDisplacement, 1e-12)
}

func TestReduceSkipsUnscoredMothers(t *testing.T) {
	lineage := models.Lineage{
		MotherToChildren: models.MotherToChildren{1: {3}, 2: {4}},
		ChildToMother:    models.ChildToMother{3: 1, 4: 2},
	}
	out := &Outputs{Iterations: []map[int]float64{{3: 0.01}}}

	governing := Reduce(lineage, out)
	require.Len(t, governing, 1)
	_, ok := governing[2]
	assert.False(t, ok)
}
