package models

// MaterialRules defines the YAML configuration that maps CAD material and
// section names onto the solver material enum. The Revit analytical export
// carries free-form material names; the solver only understands Steel and
// Concrete, so deployments ship a rules file next to the binary.
type MaterialRules struct {
	DefaultMaterial Material          `json:"defaultMaterial" yaml:"default_material"`
	Materials       []MaterialMapping `json:"materials" yaml:"materials"`
}

// MaterialMapping maps a material/section name pattern (with * wildcards)
// to a Material. Higher priority mappings are evaluated first.
type MaterialMapping struct {
	Pattern  string   `json:"pattern" yaml:"pattern"`
	Material Material `json:"material" yaml:"material"`
	Priority int      `json:"priority" yaml:"priority"`
}
