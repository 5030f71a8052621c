// Package parser ingests structural model exports into a StructuralModel.
package parser

import (
	"strings"

	"github.com/framemend/backend/internal/models"
)

// Parser defines the interface for model export parsers.
type Parser interface {
	// Name returns the unique name of the parser.
	Name() string
	// CanParse returns true if this parser can handle the given file.
	CanParse(filePath string) (bool, error)
	// Parse parses the whole file. Malformed records are skipped and
	// reported; only an unreadable/undecodable file is an error.
	Parse(filePath string) (*models.StructuralModel, []models.ParseError, error)
}

// MatchMaterial resolves a CAD material or section name against the rules
// file. Mappings are evaluated by descending priority; the first matching
// wildcard pattern wins. Without rules, or without a match, the default
// applies (Steel when nothing is configured, matching the Revit worker's
// behavior).
func MatchMaterial(rules *models.MaterialRules, name string) models.Material {
	if rules == nil {
		return models.MaterialSteel
	}
	best := models.MaterialMapping{Priority: -1}
	for _, m := range rules.Materials {
		if m.Priority > best.Priority && wildcardMatch(m.Pattern, name) {
			best = m
		}
	}
	if best.Priority >= 0 {
		return best.Material
	}
	if rules.DefaultMaterial != "" {
		return rules.DefaultMaterial
	}
	return models.MaterialSteel
}

// wildcardMatch matches name against a pattern with * wildcards,
// case-insensitively.
func wildcardMatch(pattern, name string) bool {
	pattern = strings.ToLower(pattern)
	name = strings.ToLower(name)

	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == name
	}
	if !strings.HasPrefix(name, parts[0]) {
		return false
	}
	name = name[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		idx := strings.Index(name, part)
		if idx < 0 {
			return false
		}
		name = name[idx+len(part):]
	}
	return strings.HasSuffix(name, parts[len(parts)-1])
}
