package cli

import (
	"fmt"
	"os"

	"github.com/framemend/backend/internal/solver"
	"github.com/spf13/cobra"
)

var (
	inputsSection string
	inputsOut     string
)

var inputsCmd = &cobra.Command{
	Use:   "inputs <model file>",
	Short: "Generate a solver input document from a model export",
	Long: `Repair a model export and write the solver input document for it.

The document is a JSON array of nodes, lines, section name, members and
cross sections, keyed the way the iteration solver expects.

Examples:
  repairctl inputs tower.json --out solver_inputs.json
  repairctl inputs tower.json --section IPE300`,
	Args: cobra.ExactArgs(1),
	RunE: runInputs,
}

func init() {
	rootCmd.AddCommand(inputsCmd)

	inputsCmd.Flags().StringVar(&inputsSection, "section", "HEA200", "Cross section name for members without one")
	inputsCmd.Flags().StringVarP(&inputsOut, "out", "o", "", "Output file (default stdout)")

	inputsCmd.Flags().Float64Var(&repairTol, "tol", 1e-6, "Geometric tolerance")
	inputsCmd.Flags().Float64Var(&repairElevTol, "elev-tol", 0, "Elevation band tolerance (0 derives it from --tol)")
	inputsCmd.Flags().StringVar(&repairRules, "rules", "", "Material rules YAML file for CAD exports")
}

func runInputs(cmd *cobra.Command, args []string) error {
	result, _, err := loadAndRepair(args[0])
	if err != nil {
		return err
	}

	out := os.Stdout
	if inputsOut != "" {
		f, err := os.Create(inputsOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", inputsOut, err)
		}
		defer f.Close()
		out = f
	}

	if err := solver.WriteInputs(out, result.Model, inputsSection); err != nil {
		return fmt.Errorf("writing solver inputs: %w", err)
	}
	if inputsOut != "" {
		fmt.Printf("Solver inputs written to %s\n", inputsOut)
	}
	return nil
}
