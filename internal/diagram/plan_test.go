package diagram

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/framemend/backend/internal/models"
)

func planModel() *models.StructuralModel {
	m := models.NewStructuralModel()
	m.Nodes[1] = models.Node{ID: 1, X: 0, Y: 0}
	m.Nodes[2] = models.Node{ID: 2, X: 10, Y: 10}
	m.Nodes[3] = models.Node{ID: 3, X: 0, Y: 10}
	m.Nodes[4] = models.Node{ID: 4, X: 10, Y: 0}
	m.Nodes[5] = models.Node{ID: 5, X: 5, Y: 5}
	for i, pair := range [][2]int{{1, 5}, {5, 2}, {3, 5}, {5, 4}} {
		m.Lines[i+1] = models.Line{ID: i + 1, Ni: pair[0], Nj: pair[1]}
	}
	return m
}

func TestWritePlanPNG(t *testing.T) {
	var buf bytes.Buffer
	err := WritePlanPNG(&buf, PlanData{Model: planModel(), SyntheticNodes: []int{5}})
	if err != nil {
		t.Fatalf("Failed to render plan: %v", err)
	}

	// PNG signature
	head := buf.Bytes()
	if len(head) < 8 || head[0] != 0x89 || string(head[1:4]) != "PNG" {
		t.Error("Expected PNG output")
	}
}

func TestWritePlanPNGRequiresModel(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlanPNG(&buf, PlanData{}); err == nil {
		t.Error("Expected error for missing model")
	}
}

func TestExportPlanDiagram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.png")
	err := ExportPlanDiagram(PlanData{Model: planModel()}, path)
	if err != nil {
		t.Fatalf("Failed to export plan: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected plan file to exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("Expected non-empty plan file")
	}
}

func TestExportPlanDiagramDefaultsToPNG(t *testing.T) {
	base := filepath.Join(t.TempDir(), "plan")
	if err := ExportPlanDiagram(PlanData{Model: planModel()}, base); err != nil {
		t.Fatalf("Failed to export plan: %v", err)
	}
	if _, err := os.Stat(base + ".png"); err != nil {
		t.Errorf("Expected .png suffix to be added: %v", err)
	}
}
