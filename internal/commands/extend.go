package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"evalgo.org/packsmith/internal/pack"
)

var extendCmd = &cobra.Command{
	Use:     "extend <model>",
	Short:   "Register an existing model on more materials",
	Example: `  packsmith extend ruby_sword --materials golden_sword,iron_sword`,
	Args:    cobra.ExactArgs(1),
	PreRunE: requirePackRoot,
	RunE:    runExtend,
}

func init() {
	extendCmd.Flags().String("materials", "", "comma separated materials to add (required)")
	_ = extendCmd.MarkFlagRequired("materials") //nolint:errcheck
}

func runExtend(cmd *cobra.Command, args []string) error {
	materialsFlag, _ := cmd.Flags().GetString("materials")

	result, err := newPackService(newLogger()).Extend(pack.ExtendRequest{
		Materials: splitList(materialsFlag),
		Name:      args[0],
	})
	if result != nil {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s Extended model %s\n", okMark, result.Name)
		printMaterials(out, result.Materials.Added, result.Materials.Skipped)
	}
	if err != nil {
		return fmt.Errorf("failed to extend model: %w", err)
	}
	return nil
}
