package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/framemend/backend/internal/models"
)

// ModelJSONParser reads the plain keyed-collection format: objects of nodes,
// lines, members and cross sections keyed by their id. This is the same
// shape the solver input file uses (JSON object keys are strings, so ids are
// decoded back to integers).
type ModelJSONParser struct{}

func NewModelJSONParser() *ModelJSONParser {
	return &ModelJSONParser{}
}

func (p *ModelJSONParser) Name() string {
	return "model_json"
}

func (p *ModelJSONParser) CanParse(filePath string) (bool, error) {
	head, err := readHead(filePath, 64*1024)
	if err != nil {
		return false, err
	}
	return bytesContain(head, `"nodes"`) && bytesContain(head, `"lines"`) &&
		!bytesContain(head, `"analytical_members"`), nil
}

type modelJSON struct {
	Nodes         map[string]models.Node         `json:"nodes"`
	Lines         map[string]models.Line         `json:"lines"`
	Members       map[string]models.Member       `json:"members"`
	CrossSections map[string]models.CrossSection `json:"cross_sections"`
}

func (p *ModelJSONParser) Parse(filePath string) (*models.StructuralModel, []models.ParseError, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	var raw modelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decoding model json: %w", err)
	}
	if len(raw.Nodes) == 0 || len(raw.Lines) == 0 {
		return nil, nil, fmt.Errorf("model json has no nodes or lines")
	}

	model := models.NewStructuralModel()
	var errs []models.ParseError
	record := 0

	for key, n := range raw.Nodes {
		record++
		id, err := strconv.Atoi(key)
		if err != nil {
			errs = append(errs, models.ParseError{Record: record, Content: key, Reason: "non-integer node key"})
			continue
		}
		n.ID = id
		model.Nodes[id] = n
	}
	for key, l := range raw.Lines {
		record++
		id, err := strconv.Atoi(key)
		if err != nil {
			errs = append(errs, models.ParseError{Record: record, Content: key, Reason: "non-integer line key"})
			continue
		}
		l.ID = id
		model.Lines[id] = l
	}
	for key, m := range raw.Members {
		record++
		id, err := strconv.Atoi(key)
		if err != nil {
			errs = append(errs, models.ParseError{Record: record, Content: key, Reason: "non-integer member key"})
			continue
		}
		if m.LineID == 0 {
			m.LineID = id
		}
		model.Members[id] = m
	}
	for key, cs := range raw.CrossSections {
		record++
		id, err := strconv.Atoi(key)
		if err != nil {
			errs = append(errs, models.ParseError{Record: record, Content: key, Reason: "non-integer cross section key"})
			continue
		}
		cs.ID = id
		model.CrossSections[id] = cs
	}

	return model, errs, nil
}

// readHead reads at most n bytes from the start of a file.
func readHead(filePath string, n int) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, n)
	read, err := f.Read(buf)
	if read == 0 && err != nil {
		return nil, err
	}
	return buf[:read], nil
}

func bytesContain(b []byte, s string) bool {
	return bytes.Contains(b, []byte(s))
}
