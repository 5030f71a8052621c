package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/framemend/backend/internal/models"
)

// RevitExportParser reads the analytical-member JSON produced by the Revit
// worker (output.json). Each member record carries its endpoint nodes with
// coordinates and a section description; nodes referenced by several members
// are emitted once.
type RevitExportParser struct {
	rules *models.MaterialRules
}

// NewRevitExportParser creates the parser. rules may be nil, in which case
// every member is treated as steel.
func NewRevitExportParser(rules *models.MaterialRules) *RevitExportParser {
	return &RevitExportParser{rules: rules}
}

func (p *RevitExportParser) Name() string {
	return "revit_export"
}

// SetRules swaps the material rules used for subsequent parses.
func (p *RevitExportParser) SetRules(rules *models.MaterialRules) {
	p.rules = rules
}

func (p *RevitExportParser) CanParse(filePath string) (bool, error) {
	head, err := readHead(filePath, 64*1024)
	if err != nil {
		return false, err
	}
	if bytesContain(head, `"analytical_members"`) {
		return true, nil
	}
	// Older worker versions emit a bare "members" array; the endpoint shape
	// distinguishes it from the keyed model format.
	return bytesContain(head, `"members"`) && bytesContain(head, `"endpoints"`), nil
}

// analyticalMember mirrors one record of the worker export.
type analyticalMember struct {
	ID        *int `json:"id"`
	NodeI     *int `json:"nodeI"`
	NodeJ     *int `json:"nodeJ"`
	Endpoints struct {
		I []float64 `json:"i"`
		J []float64 `json:"j"`
	} `json:"endpoints"`
	Section struct {
		TypeID     *int   `json:"type_id"`
		TypeName   string `json:"type_name"`
		FamilyName string `json:"family_name"`
	} `json:"section"`
	SectionProperties map[string]float64 `json:"section_properties"`
	Material          string             `json:"material,omitempty"`
}

type revitExport struct {
	AnalyticalMembers []analyticalMember `json:"analytical_members"`
	Members           []analyticalMember `json:"members"`
}

func (p *RevitExportParser) Parse(filePath string) (*models.StructuralModel, []models.ParseError, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	var export revitExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, nil, fmt.Errorf("decoding revit export: %w", err)
	}
	records := export.AnalyticalMembers
	if len(records) == 0 {
		records = export.Members
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no analytical members found in export")
	}

	model := models.NewStructuralModel()
	var errs []models.ParseError

	for idx, m := range records {
		if m.NodeI == nil || m.NodeJ == nil {
			errs = append(errs, models.ParseError{Record: idx, Reason: "member missing node references"})
			continue
		}
		if len(m.Endpoints.I) < 3 || len(m.Endpoints.J) < 3 {
			errs = append(errs, models.ParseError{Record: idx, Reason: "member missing endpoint coordinates"})
			continue
		}

		memberID := idx
		if m.ID != nil {
			memberID = *m.ID
		}

		ni, nj := *m.NodeI, *m.NodeJ
		if _, ok := model.Nodes[ni]; !ok {
			model.Nodes[ni] = models.Node{ID: ni, X: m.Endpoints.I[0], Y: m.Endpoints.I[1], Z: m.Endpoints.I[2]}
		}
		if _, ok := model.Nodes[nj]; !ok {
			model.Nodes[nj] = models.Node{ID: nj, X: m.Endpoints.J[0], Y: m.Endpoints.J[1], Z: m.Endpoints.J[2]}
		}

		model.Lines[memberID] = models.Line{ID: memberID, Ni: ni, Nj: nj}

		csID := memberID
		if m.Section.TypeID != nil {
			csID = *m.Section.TypeID
		}
		if _, ok := model.CrossSections[csID]; !ok {
			model.CrossSections[csID] = p.crossSection(csID, m)
		}

		matName := m.Material
		if matName == "" {
			matName = sectionName(m)
		}
		model.Members[memberID] = models.Member{
			LineID:         memberID,
			CrossSectionID: csID,
			MaterialName:   MatchMaterial(p.rules, matName),
		}
	}

	if len(model.Lines) == 0 {
		return nil, errs, fmt.Errorf("export contained no usable members")
	}
	return model, errs, nil
}

// crossSection pulls the section geometry out of the Revit parameter map,
// falling back to nominal values the way the reference worker does.
func (p *RevitExportParser) crossSection(id int, m analyticalMember) models.CrossSection {
	props := m.SectionProperties
	h := propOr(props, 0.3, "STRUCTURAL_SECTION_COMMON_HEIGHT", "HEIGHT")
	return models.CrossSection{
		ID:   id,
		Name: sectionName(m),
		A:    propOr(props, 0.01, "STRUCTURAL_SECTION_AREA"),
		Iz:   propOr(props, 1e-4, "STRUCTURAL_SECTION_COMMON_MOMENT_OF_INERTIA_STRONG_AXIS"),
		Iy:   propOr(props, 1e-5, "STRUCTURAL_SECTION_COMMON_MOMENT_OF_INERTIA_WEAK_AXIS"),
		Jxx:  propOr(props, 1e-6, "STRUCTURAL_SECTION_COMMON_TORSIONAL_MOMENT_OF_INERTIA"),
		B:    propOr(props, h, "STRUCTURAL_SECTION_COMMON_WIDTH", "WIDTH"),
		H:    h,
	}
}

func sectionName(m analyticalMember) string {
	if m.Section.TypeName != "" {
		return m.Section.TypeName
	}
	if m.Section.FamilyName != "" {
		return m.Section.FamilyName
	}
	return "Section"
}

func propOr(props map[string]float64, fallback float64, keys ...string) float64 {
	for _, k := range keys {
		if v, ok := props[k]; ok && v != 0 {
			return v
		}
	}
	return fallback
}
