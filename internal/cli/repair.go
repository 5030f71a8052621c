package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/framemend/backend/internal/diagram"
	"github.com/framemend/backend/internal/parser"
	"github.com/framemend/backend/internal/repair"
	"github.com/spf13/cobra"
)

var (
	repairTol     float64
	repairElevTol float64
	repairRules   string
	repairOut     string
	repairPlan    string
)

var repairCmd = &cobra.Command{
	Use:   "repair <model file>",
	Short: "Repair crossing members in a model export",
	Long: `Parse a model export, split crossing members at their planar
intersections and insert shared nodes.

The repaired model can be written back out as JSON with --out, and a
plan view diagram of the result can be rendered with --plan.

Examples:
  # Repair and print a summary
  repairctl repair tower.json

  # Write the repaired model and a plan diagram
  repairctl repair tower.json --out tower_repaired.json --plan tower.png

  # Use a coarser tolerance for hand-drawn geometry
  repairctl repair sketch.json --tol 1e-3`,
	Args: cobra.ExactArgs(1),
	RunE: runRepair,
}

func init() {
	rootCmd.AddCommand(repairCmd)

	repairCmd.Flags().Float64Var(&repairTol, "tol", 1e-6, "Geometric tolerance")
	repairCmd.Flags().Float64Var(&repairElevTol, "elev-tol", 0, "Elevation band tolerance (0 derives it from --tol)")
	repairCmd.Flags().StringVar(&repairRules, "rules", "", "Material rules YAML file for CAD exports")
	repairCmd.Flags().StringVarP(&repairOut, "out", "o", "", "Write the repaired model JSON to this file")
	repairCmd.Flags().StringVar(&repairPlan, "plan", "", "Render a plan view diagram to this file (.png, .svg or .pdf)")
}

// loadAndRepair parses a model export and runs the repair pass over it.
func loadAndRepair(path string) (*repair.Result, string, error) {
	registry := parser.GetGlobalRegistry()

	if repairRules != "" {
		rules, err := parser.ParseMaterialRules(repairRules)
		if err != nil {
			return nil, "", fmt.Errorf("loading material rules: %w", err)
		}
		registry.ApplyMaterialRules(rules)
	}

	p, err := registry.FindParser(path)
	if err != nil {
		return nil, "", fmt.Errorf("no parser accepts %s: %w", path, err)
	}

	model, parseErrs, err := p.Parse(path)
	if err != nil {
		return nil, "", fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, pe := range parseErrs {
		fmt.Fprintf(os.Stderr, "warning: record %d: %s\n", pe.Record, pe.Reason)
	}

	result, err := repair.Connect(model, repair.Options{
		Tol:          repairTol,
		ElevationTol: repairElevTol,
	})
	if err != nil {
		return nil, "", fmt.Errorf("repairing model: %w", err)
	}
	return result, p.Name(), nil
}

func runRepair(cmd *cobra.Command, args []string) error {
	result, parserName, err := loadAndRepair(args[0])
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     MEMBER GRAPH REPAIR")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Parser:\t%s\n", parserName)
	fmt.Fprintf(w, "  Nodes:\t%d\n", len(result.Model.Nodes))
	fmt.Fprintf(w, "  Lines:\t%d\n", len(result.Model.Lines))
	fmt.Fprintf(w, "  Inserted nodes:\t%d\n", len(result.SyntheticNodes))
	fmt.Fprintf(w, "  Split members:\t%d\n", len(result.SplitMothers))
	w.Flush()

	if len(result.SplitMothers) > 0 {
		fmt.Println()
		fmt.Println("SPLIT MEMBERS:")
		fmt.Println("───────────────────────────────────────────────────────────────")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		mothers := append([]int(nil), result.SplitMothers...)
		sort.Ints(mothers)
		for _, mother := range mothers {
			children := result.Lineage.Children(mother)
			fmt.Fprintf(w, "  member %d\t→ %d pieces %v\n", mother, len(children), children)
		}
		w.Flush()
	}
	fmt.Println()

	if repairOut != "" {
		data, err := json.MarshalIndent(result.Model, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding repaired model: %w", err)
		}
		if err := os.WriteFile(repairOut, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", repairOut, err)
		}
		fmt.Printf("Repaired model written to %s\n", repairOut)
	}

	if repairPlan != "" {
		err := diagram.ExportPlanDiagram(diagram.PlanData{
			Model:          result.Model,
			SyntheticNodes: result.SyntheticNodes,
			Title:          "Repaired plan view",
		}, repairPlan)
		if err != nil {
			return fmt.Errorf("rendering plan diagram: %w", err)
		}
		fmt.Printf("Plan diagram written to %s\n", repairPlan)
	}

	return nil
}
