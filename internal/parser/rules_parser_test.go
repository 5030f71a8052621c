package parser

import (
	"strings"
	"testing"

	"github.com/framemend/backend/internal/models"
)

const rulesYAML = `
default_material: Steel
materials:
  - pattern: "Concrete*"
    material: Concrete
    priority: 10
  - pattern: "*C30/37*"
    material: Concrete
    priority: 20
  - pattern: "UB*"
    material: Steel
    priority: 10
`

func TestParseMaterialRules(t *testing.T) {
	rules, err := ParseMaterialRulesFromReader(strings.NewReader(rulesYAML))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}
	if rules.DefaultMaterial != models.MaterialSteel {
		t.Errorf("default = %s", rules.DefaultMaterial)
	}
	if len(rules.Materials) != 3 {
		t.Fatalf("expected 3 mappings, got %d", len(rules.Materials))
	}
}

func TestMatchMaterial(t *testing.T) {
	rules, err := ParseMaterialRulesFromReader(strings.NewReader(rulesYAML))
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}

	cases := []struct {
		name string
		want models.Material
	}{
		{"Concrete - Cast-in-Place", models.MaterialConcrete},
		{"Beam C30/37 rectangular", models.MaterialConcrete},
		{"UB305x165x40", models.MaterialSteel},
		{"Timber glulam", models.MaterialSteel}, // falls back to default
	}
	for _, tc := range cases {
		if got := MatchMaterial(rules, tc.name); got != tc.want {
			t.Errorf("MatchMaterial(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}

	// Nil rules keep the reference behavior: everything is steel.
	if got := MatchMaterial(nil, "anything"); got != models.MaterialSteel {
		t.Errorf("MatchMaterial(nil) = %s", got)
	}
}

func TestWildcardMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		want          bool
	}{
		{"Concrete*", "Concrete C30", true},
		{"Concrete*", "concrete c30", true},
		{"*305*", "UB305x165x40", true},
		{"UB*x40", "UB305x165x40", true},
		{"UB*x40", "UB305x165x46", false},
		{"exact", "exact", true},
		{"exact", "exactly", false},
	}
	for _, tc := range cases {
		if got := wildcardMatch(tc.pattern, tc.name); got != tc.want {
			t.Errorf("wildcardMatch(%q, %q) = %v, want %v", tc.pattern, tc.name, got, tc.want)
		}
	}
}
