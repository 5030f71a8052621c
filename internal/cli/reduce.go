package cli

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/framemend/backend/internal/solver"
	"github.com/spf13/cobra"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce <model file> <solver outputs file>",
	Short: "Reduce solver outputs onto the original members",
	Long: `Repair a model export, read the solver's displacement outputs for the
repaired members and report the worst case displacement per original
member.

Each original member that was split reports the largest absolute
displacement found among its pieces, across all solver iterations.

Example:
  repairctl reduce tower.json solver_outputs.json`,
	Args: cobra.ExactArgs(2),
	RunE: runReduce,
}

func init() {
	rootCmd.AddCommand(reduceCmd)

	reduceCmd.Flags().Float64Var(&repairTol, "tol", 1e-6, "Geometric tolerance")
	reduceCmd.Flags().Float64Var(&repairElevTol, "elev-tol", 0, "Elevation band tolerance (0 derives it from --tol)")
	reduceCmd.Flags().StringVar(&repairRules, "rules", "", "Material rules YAML file for CAD exports")
}

func runReduce(cmd *cobra.Command, args []string) error {
	result, _, err := loadAndRepair(args[0])
	if err != nil {
		return err
	}

	f, err := os.Open(args[1])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[1], err)
	}
	defer f.Close()

	outputs, err := solver.ParseOutputs(f)
	if err != nil {
		return fmt.Errorf("reading solver outputs: %w", err)
	}

	governing := solver.Reduce(result.Lineage, outputs)
	if len(governing) == 0 {
		fmt.Println("No members were scored by the solver outputs.")
		return nil
	}

	mothers := make([]int, 0, len(governing))
	for id := range governing {
		mothers = append(mothers, id)
	}
	sort.Ints(mothers)

	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println("     GOVERNING DISPLACEMENTS")
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Member\tPieces\tGoverning piece\tMax displacement\n")
	for _, id := range mothers {
		g := governing[id]
		fmt.Fprintf(w, "  %d\t%d\t%d\t%.6f\n", g.MotherID, g.ChildCount, g.GoverningChild, g.MaxDisplacement)
	}
	w.Flush()
	fmt.Println()

	return nil
}
