// Package models contains domain types for the FrameMend backend.
package models

import "fmt"

// Material is the structural material of a member.
type Material string

const (
	MaterialSteel    Material = "Steel"
	MaterialConcrete Material = "Concrete"
)

// Node is a point of the analytical model in 3D space.
// Identity is the integer id; coordinates are the only semantic content.
type Node struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// Line is a straight connector between two nodes, referenced by id.
type Line struct {
	ID int `json:"id"`
	Ni int `json:"Ni"`
	Nj int `json:"Nj"`
}

// Member carries the section/material attributes assigned to a line.
// At most one member references a given line id.
type Member struct {
	LineID         int      `json:"line_id"`
	CrossSectionID int      `json:"cross_section_id"`
	MaterialName   Material `json:"material_name"`
}

// CrossSection describes a catalog section referenced by members.
// Mirrors what the Revit analytical export carries per section type.
type CrossSection struct {
	ID   int     `json:"id"`
	Name string  `json:"name"`
	A    float64 `json:"A"`   // area
	Iz   float64 `json:"Iz"`  // inertia, strong axis
	Iy   float64 `json:"Iy"`  // inertia, weak axis
	Jxx  float64 `json:"Jxx"` // torsional inertia
	B    float64 `json:"b"`   // width
	H    float64 `json:"h"`   // height
}

// StructuralModel is the full member graph: nodes, lines, members and the
// section catalog, all keyed by integer id. Members are keyed by line id.
type StructuralModel struct {
	Nodes         map[int]Node         `json:"nodes"`
	Lines         map[int]Line         `json:"lines"`
	Members       map[int]Member       `json:"members"`
	CrossSections map[int]CrossSection `json:"cross_sections"`
}

// NewStructuralModel creates an empty model.
func NewStructuralModel() *StructuralModel {
	return &StructuralModel{
		Nodes:         make(map[int]Node),
		Lines:         make(map[int]Line),
		Members:       make(map[int]Member),
		CrossSections: make(map[int]CrossSection),
	}
}

// Clone returns a deep copy. The repair pass works on a copy so the caller's
// model is never mutated.
func (m *StructuralModel) Clone() *StructuralModel {
	out := &StructuralModel{
		Nodes:         make(map[int]Node, len(m.Nodes)),
		Lines:         make(map[int]Line, len(m.Lines)),
		Members:       make(map[int]Member, len(m.Members)),
		CrossSections: make(map[int]CrossSection, len(m.CrossSections)),
	}
	for id, n := range m.Nodes {
		out.Nodes[id] = n
	}
	for id, l := range m.Lines {
		out.Lines[id] = l
	}
	for id, mb := range m.Members {
		out.Members[id] = mb
	}
	for id, cs := range m.CrossSections {
		out.CrossSections[id] = cs
	}
	return out
}

// Validate checks referential integrity: every line must reference existing
// nodes and every member an existing line. The upstream parser is expected to
// deliver a consistent model; a violation here is a contract error.
func (m *StructuralModel) Validate() error {
	for id, l := range m.Lines {
		if _, ok := m.Nodes[l.Ni]; !ok {
			return fmt.Errorf("line %d references missing node %d", id, l.Ni)
		}
		if _, ok := m.Nodes[l.Nj]; !ok {
			return fmt.Errorf("line %d references missing node %d", id, l.Nj)
		}
	}
	for id, mb := range m.Members {
		if _, ok := m.Lines[mb.LineID]; !ok {
			return fmt.Errorf("member %d references missing line %d", id, mb.LineID)
		}
	}
	return nil
}
