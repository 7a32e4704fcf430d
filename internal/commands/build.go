package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"evalgo.org/packsmith/internal/archive"
	"evalgo.org/packsmith/internal/gallery"
	"evalgo.org/packsmith/internal/gitrepo"
	"evalgo.org/packsmith/internal/metadata"
)

var modelsCmd = &cobra.Command{
	Use:     "models",
	Aliases: []string{"gallery"},
	Short:   "Generate the models.json gallery manifest",
	Long: `Scan the pack for custom models and write models.json with the
materials of every model, the date it was added and its animation details.

Dates come from the git history of the model file, falling back to the file
modification time.`,
	PreRunE: requirePackRoot,
	RunE:    runModels,
}

var zipCmd = &cobra.Command{
	Use:     "zip",
	Short:   "Build the pack archive",
	PreRunE: requirePackRoot,
	RunE:    runZip,
}

var metadataCmd = &cobra.Command{
	Use:   "metadata",
	Short: "Generate metadata.json for the pack archive",
	Long: `Write metadata.json describing the pack archive: a timestamp version,
SHA-1 and size of the zip, the HEAD commit and the most recently merged
pull request.`,
	PreRunE: requirePackRoot,
	RunE:    runMetadata,
}

var generateCmd = &cobra.Command{
	Use:     "generate",
	Short:   "Build the archive, models.json and metadata.json",
	PreRunE: requirePackRoot,
	RunE:    runGenerate,
}

func init() {
	modelsCmd.Flags().String("output", "", "output path (default: gallery.output)")
	modelsCmd.Flags().Bool("no-git", false, "use file modification times instead of git history")

	zipCmd.Flags().String("output", "", "archive path (default: archive.output)")
	zipCmd.Flags().String("include", "", "comma separated files, directories or globs (default: archive.include)")

	metadataCmd.Flags().String("zip", "", "archive to describe (default: archive.output)")
	metadataCmd.Flags().String("output", "", "output path (default: metadata.output)")

	generateCmd.Flags().Bool("no-git", false, "use file modification times instead of git history")
}

func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}

func runModels(cmd *cobra.Command, args []string) error {
	noGit, _ := cmd.Flags().GetBool("no-git")
	output := flagOr(cmd, "output", inRoot(cfg.Gallery.Output))
	return buildGallery(cmd.Context(), cmd.OutOrStdout(), newLogger(), output, noGit)
}

func runZip(cmd *cobra.Command, args []string) error {
	output := flagOr(cmd, "output", inRoot(cfg.Archive.Output))
	include := cfg.Archive.Include
	if v, _ := cmd.Flags().GetString("include"); v != "" {
		include = splitList(v)
	}
	_, err := buildArchive(cmd.OutOrStdout(), output, include)
	return err
}

func runMetadata(cmd *cobra.Command, args []string) error {
	zipPath := flagOr(cmd, "zip", inRoot(cfg.Archive.Output))
	output := flagOr(cmd, "output", inRoot(cfg.Metadata.Output))
	return buildMetadata(cmd.Context(), cmd.OutOrStdout(), zipPath, output)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := newLogger()
	noGit, _ := cmd.Flags().GetBool("no-git")

	zipPath := inRoot(cfg.Archive.Output)
	if _, err := buildArchive(out, zipPath, cfg.Archive.Include); err != nil {
		return err
	}
	if err := buildGallery(ctx, out, logger, inRoot(cfg.Gallery.Output), noGit); err != nil {
		return err
	}
	return buildMetadata(ctx, out, zipPath, inRoot(cfg.Metadata.Output))
}

func buildGallery(ctx context.Context, out io.Writer, logger zerolog.Logger, output string, noGit bool) error {
	var dates gallery.DateSource
	if !noGit {
		dates = gitrepo.New(cfg.Pack.Root)
	}

	manifest, err := gallery.NewGenerator(resolver(), dates, logger).Write(ctx, output)
	if err != nil {
		return fmt.Errorf("failed to generate models.json: %w", err)
	}

	fmt.Fprintf(out, "%s Wrote %s (%d models)\n", okMark, output, manifest.Count)
	return nil
}

func buildArchive(out io.Writer, output string, include []string) (*archive.Result, error) {
	result, err := archive.Build(cfg.Pack.Root, output, include)
	if err != nil {
		return nil, fmt.Errorf("failed to build archive: %w", err)
	}

	fmt.Fprintf(out, "%s Wrote %s (%d files, %s)\n", okMark, result.Output, result.Files, formatBytes(result.Size))
	return result, nil
}

func buildMetadata(ctx context.Context, out io.Writer, zipPath, output string) error {
	collector := &metadata.Collector{History: gitrepo.New(cfg.Pack.Root)}
	if cfg.GitHub.Owner != "" && cfg.GitHub.Repo != "" {
		collector.RepositoryURL = cfg.GitHub.RepositoryURL()
	}

	m, err := collector.Write(ctx, zipPath, output)
	if err != nil {
		return fmt.Errorf("failed to generate metadata.json: %w", err)
	}

	fmt.Fprintf(out, "%s Wrote %s\n", okMark, output)
	fmt.Fprintf(out, "  %s version: %s\n", bullet, m.Version)
	fmt.Fprintf(out, "  %s sha1:    %s\n", bullet, m.SHA1)
	fmt.Fprintf(out, "  %s size:    %s\n", bullet, formatBytes(m.Size))
	fmt.Fprintf(out, "  %s commit:  %s\n", bullet, m.Commit)
	if m.LatestPR != nil {
		fmt.Fprintf(out, "  %s latest:  #%d %s\n", bullet, m.LatestPR.Number, m.LatestPR.Title)
	}
	return nil
}
