// Package solver handles the exchange with the external frame solver: writing
// its input file from a repaired model, reading its result file back and
// reducing per-child results onto the original mother lines.
package solver

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/framemend/backend/internal/models"
)

// WriteInputs serializes a repaired model into the solver input document:
// a 5-element JSON array [nodes, lines, section_name, members,
// cross_sections]. Collections are keyed by stringified id because JSON
// objects cannot key by integer; the automation script on the solver side
// consumes exactly this shape.
func WriteInputs(w io.Writer, model *models.StructuralModel, sectionName string) error {
	nodes := make(map[string]models.Node, len(model.Nodes))
	for id, n := range model.Nodes {
		nodes[strconv.Itoa(id)] = n
	}
	lines := make(map[string]models.Line, len(model.Lines))
	for id, l := range model.Lines {
		lines[strconv.Itoa(id)] = l
	}
	members := make(map[string]models.Member, len(model.Members))
	for id, m := range model.Members {
		members[strconv.Itoa(id)] = m
	}
	sections := make(map[string]models.CrossSection, len(model.CrossSections))
	for id, cs := range model.CrossSections {
		sections[strconv.Itoa(id)] = cs
	}

	doc := []interface{}{nodes, lines, sectionName, members, sections}
	enc := json.NewEncoder(w)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding solver inputs: %w", err)
	}
	return nil
}

// ReadInputs decodes a solver input document back into a model, for the CLI
// round trip and for tests.
func ReadInputs(r io.Reader) (*models.StructuralModel, string, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, "", fmt.Errorf("decoding solver inputs: %w", err)
	}
	if len(raw) != 5 {
		return nil, "", fmt.Errorf("solver inputs: expected 5 elements, got %d", len(raw))
	}

	model := models.NewStructuralModel()
	var sectionName string

	if err := decodeKeyed(raw[0], func(id int, data json.RawMessage) error {
		var n models.Node
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		n.ID = id
		model.Nodes[id] = n
		return nil
	}); err != nil {
		return nil, "", err
	}
	if err := decodeKeyed(raw[1], func(id int, data json.RawMessage) error {
		var l models.Line
		if err := json.Unmarshal(data, &l); err != nil {
			return err
		}
		l.ID = id
		model.Lines[id] = l
		return nil
	}); err != nil {
		return nil, "", err
	}
	if err := json.Unmarshal(raw[2], &sectionName); err != nil {
		return nil, "", fmt.Errorf("solver inputs: section name: %w", err)
	}
	if err := decodeKeyed(raw[3], func(id int, data json.RawMessage) error {
		var m models.Member
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		if m.LineID == 0 {
			m.LineID = id
		}
		model.Members[id] = m
		return nil
	}); err != nil {
		return nil, "", err
	}
	if err := decodeKeyed(raw[4], func(id int, data json.RawMessage) error {
		var cs models.CrossSection
		if err := json.Unmarshal(data, &cs); err != nil {
			return err
		}
		cs.ID = id
		model.CrossSections[id] = cs
		return nil
	}); err != nil {
		return nil, "", err
	}

	return model, sectionName, nil
}

func decodeKeyed(data json.RawMessage, add func(id int, data json.RawMessage) error) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("solver inputs: %w", err)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		id, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("solver inputs: non-integer key %q", k)
		}
		if err := add(id, m[k]); err != nil {
			return fmt.Errorf("solver inputs: key %s: %w", k, err)
		}
	}
	return nil
}
