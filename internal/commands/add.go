package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"evalgo.org/packsmith/internal/pack"
	"evalgo.org/packsmith/internal/schema"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom model to the pack",
}

var addModelCmd = &cobra.Command{
	Use:   "model <image.png>",
	Short: "Add a 2D model from a PNG texture",
	Long: `Add a 2D model from a 16x16 PNG texture and register it on materials.

The model name defaults to the image file name. With --frametime the image
is an animation strip of 16x16 frames stacked vertically.`,
	Example: `  packsmith add model ruby_sword.png --materials diamond_sword,netherite_sword
  packsmith add model flame.png --name blue_flame --materials blaze_rod --frametime 2 --parent generated`,
	Args:    cobra.ExactArgs(1),
	PreRunE: requirePackRoot,
	RunE:    runAddModel,
}

var addModel3DCmd = &cobra.Command{
	Use:   "model3d <model.json> <layer.png>...",
	Short: "Add a 3D model from a model JSON template and layer textures",
	Long: `Add a 3D model from a model JSON template, for example a Blockbench
export. The numeric texture keys of the template are rewritten to point at
the layer textures, which are given in key order.`,
	Example: `  packsmith add model3d lamp.json 0.png 1.png --name desk_lamp --materials torch`,
	Args:    cobra.MinimumNArgs(2),
	PreRunE: requirePackRoot,
	RunE:    runAddModel3D,
}

func init() {
	parent := schema.DefaultParent
	addModelCmd.Flags().String("materials", "", "comma separated materials to register the model on (required)")
	addModelCmd.Flags().String("name", "", "model name (default: image file name)")
	addModelCmd.Flags().Uint32("frametime", 0, "ticks per frame; marks the texture as animated")
	addModelCmd.Flags().Var(&parent, "parent", fmt.Sprintf("in-hand style (%s)", strings.Join(schema.ParentNames(), ", ")))
	_ = addModelCmd.MarkFlagRequired("materials") //nolint:errcheck

	addModel3DCmd.Flags().String("materials", "", "comma separated materials to register the model on (required)")
	addModel3DCmd.Flags().String("name", "", "model name (required)")
	_ = addModel3DCmd.MarkFlagRequired("materials") //nolint:errcheck
	_ = addModel3DCmd.MarkFlagRequired("name")      //nolint:errcheck

	addCmd.AddCommand(addModelCmd)
	addCmd.AddCommand(addModel3DCmd)
}

func runAddModel(cmd *cobra.Command, args []string) error {
	materialsFlag, _ := cmd.Flags().GetString("materials")
	name, _ := cmd.Flags().GetString("name")

	req := pack.AddModelRequest{
		Materials: splitList(materialsFlag),
		Name:      name,
		ImagePath: args[0],
		Parent:    schema.DefaultParent,
	}
	if cmd.Flags().Changed("parent") {
		if p, ok := cmd.Flags().Lookup("parent").Value.(*schema.Parent); ok {
			req.Parent = *p
		}
	}
	if cmd.Flags().Changed("frametime") {
		ft, _ := cmd.Flags().GetUint32("frametime")
		req.Frametime = &ft
	}

	result, err := newPackService(newLogger()).AddModel(req)
	if result != nil {
		printAddResult(cmd.OutOrStdout(), result)
	}
	if err != nil {
		return fmt.Errorf("failed to add model: %w", err)
	}
	return nil
}

func runAddModel3D(cmd *cobra.Command, args []string) error {
	materialsFlag, _ := cmd.Flags().GetString("materials")
	name, _ := cmd.Flags().GetString("name")

	req := pack.AddModel3DRequest{
		Materials:    splitList(materialsFlag),
		Name:         name,
		TemplatePath: args[0],
		Layers:       args[1:],
	}

	result, err := newPackService(newLogger()).AddModel3D(req)
	if result != nil {
		printAddResult(cmd.OutOrStdout(), result)
	}
	if err != nil {
		return fmt.Errorf("failed to add 3D model: %w", err)
	}
	return nil
}

func printAddResult(out io.Writer, r *pack.AddResult) {
	rel := resolver().Rel
	fmt.Fprintf(out, "%s Added model %s\n", okMark, r.Name)
	fmt.Fprintf(out, "  %s model:   %s\n", bullet, rel(r.ModelPath))
	for _, t := range r.TexturePaths {
		fmt.Fprintf(out, "  %s texture: %s\n", bullet, rel(t))
	}
	if r.AnimationPath != "" {
		fmt.Fprintf(out, "  %s animation: %s\n", bullet, rel(r.AnimationPath))
	}
	if len(r.Materials.Added)+len(r.Materials.Skipped) > 0 {
		fmt.Fprintln(out, "Materials:")
		printMaterials(out, r.Materials.Added, r.Materials.Skipped)
	}
}
