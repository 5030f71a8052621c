package parser

import (
	"io"
	"os"

	"github.com/framemend/backend/internal/models"
	"gopkg.in/yaml.v3"
)

// ParseMaterialRules parses a YAML rules file mapping CAD material/section
// name patterns to the solver material enum.
func ParseMaterialRules(filePath string) (*models.MaterialRules, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseMaterialRulesFromReader(file)
}

// ParseMaterialRulesFromReader parses rules from an io.Reader.
func ParseMaterialRulesFromReader(r io.Reader) (*models.MaterialRules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rules models.MaterialRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}

	return &rules, nil
}
