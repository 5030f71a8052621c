// Package diagram renders plan-view images of structural models.
package diagram

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/framemend/backend/internal/models"
)

// PlanData holds everything the plan view draws.
type PlanData struct {
	Model          *models.StructuralModel
	SyntheticNodes []int  // highlighted as repair insertions
	Title          string // optional, defaults to "Member Plan View"
}

// buildPlanPlot assembles the plan figure: one line per member projected on
// the XY plane, original nodes in gray, synthetic nodes in red.
func buildPlanPlot(data PlanData) (*plot.Plot, error) {
	if data.Model == nil {
		return nil, fmt.Errorf("no model to draw")
	}

	p := plot.New()
	p.Title.Text = data.Title
	if p.Title.Text == "" {
		p.Title.Text = "Member Plan View"
	}
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"

	synthetic := make(map[int]bool, len(data.SyntheticNodes))
	for _, id := range data.SyntheticNodes {
		synthetic[id] = true
	}

	lineIDs := make([]int, 0, len(data.Model.Lines))
	for id := range data.Model.Lines {
		lineIDs = append(lineIDs, id)
	}
	sort.Ints(lineIDs)

	for _, id := range lineIDs {
		l := data.Model.Lines[id]
		ni, okI := data.Model.Nodes[l.Ni]
		nj, okJ := data.Model.Nodes[l.Nj]
		if !okI || !okJ {
			continue
		}

		seg, err := plotter.NewLine(plotter.XYs{
			{X: ni.X, Y: ni.Y},
			{X: nj.X, Y: nj.Y},
		})
		if err != nil {
			return nil, err
		}
		seg.LineStyle.Width = vg.Points(1.5)
		seg.LineStyle.Color = color.Black
		p.Add(seg)
	}

	nodeIDs := make([]int, 0, len(data.Model.Nodes))
	for id := range data.Model.Nodes {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Ints(nodeIDs)

	var originalPts, syntheticPts plotter.XYs
	for _, id := range nodeIDs {
		n := data.Model.Nodes[id]
		if synthetic[id] {
			syntheticPts = append(syntheticPts, plotter.XY{X: n.X, Y: n.Y})
		} else {
			originalPts = append(originalPts, plotter.XY{X: n.X, Y: n.Y})
		}
	}

	if len(originalPts) > 0 {
		nodes, err := plotter.NewScatter(originalPts)
		if err != nil {
			return nil, err
		}
		nodes.GlyphStyle.Color = color.Gray{Y: 96}
		nodes.GlyphStyle.Radius = vg.Points(2.5)
		nodes.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(nodes)
	}

	if len(syntheticPts) > 0 {
		inserted, err := plotter.NewScatter(syntheticPts)
		if err != nil {
			return nil, err
		}
		inserted.GlyphStyle.Color = color.RGBA{R: 220, G: 20, B: 60, A: 255}
		inserted.GlyphStyle.Radius = vg.Points(4)
		inserted.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(inserted)
		p.Legend.Add("inserted node", inserted)
	}

	return p, nil
}

// WritePlanPNG renders the plan view as a PNG to the given writer.
func WritePlanPNG(w io.Writer, data PlanData) error {
	p, err := buildPlanPlot(data)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// ExportPlanDiagram renders the plan view to an image file. The format is
// taken from the file extension, defaulting to PNG.
func ExportPlanDiagram(data PlanData, filename string) error {
	p, err := buildPlanPlot(data)
	if err != nil {
		return err
	}

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		os.MkdirAll(dir, 0755)
	}

	width := 8 * vg.Inch
	height := 8 * vg.Inch

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
