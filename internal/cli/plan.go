package cli

import (
	"fmt"

	"github.com/framemend/backend/internal/diagram"
	"github.com/spf13/cobra"
)

var planOut string

var planCmd = &cobra.Command{
	Use:   "plan <model file>",
	Short: "Render a plan view diagram of a repaired model",
	Long: `Repair a model export and render a top-down plan view of the result.

Members are drawn as line segments, original nodes as grey circles and
inserted intersection nodes as highlighted markers. The output format
follows the file extension (.png, .svg or .pdf).

Example:
  repairctl plan tower.json --out tower_plan.png`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planOut, "out", "o", "plan.png", "Output image file")
	planCmd.Flags().Float64Var(&repairTol, "tol", 1e-6, "Geometric tolerance")
	planCmd.Flags().Float64Var(&repairElevTol, "elev-tol", 0, "Elevation band tolerance (0 derives it from --tol)")
	planCmd.Flags().StringVar(&repairRules, "rules", "", "Material rules YAML file for CAD exports")
}

func runPlan(cmd *cobra.Command, args []string) error {
	result, _, err := loadAndRepair(args[0])
	if err != nil {
		return err
	}

	err = diagram.ExportPlanDiagram(diagram.PlanData{
		Model:          result.Model,
		SyntheticNodes: result.SyntheticNodes,
		Title:          "Repaired plan view",
	}, planOut)
	if err != nil {
		return fmt.Errorf("rendering plan diagram: %w", err)
	}

	fmt.Printf("Plan diagram written to %s\n", planOut)
	return nil
}
