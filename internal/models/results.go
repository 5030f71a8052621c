package models

// MemberResult is one solver result for a single (child) line: maximum
// section displacement in the vertical direction and the position along the
// member where it occurs.
type MemberResult struct {
	LineID          int     `json:"lineId"`
	LoadCase        int     `json:"loadCase"`
	Iteration       int     `json:"iteration"`
	MaxDisplacement float64 `json:"maxDisplacement"`
	Position        float64 `json:"position,omitempty"`
}

// GoverningResult is the worst-case reduction of all child results belonging
// to one mother line. This is the value written back onto the original
// member in the authoring tool.
type GoverningResult struct {
	MotherID        int     `json:"motherId"`
	GoverningChild  int     `json:"governingChild"`
	MaxDisplacement float64 `json:"maxDisplacement"`
	ChildCount      int     `json:"childCount"`
}
