package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/github"
	"evalgo.org/packsmith/internal/logging"
	"evalgo.org/packsmith/internal/materials"
	"evalgo.org/packsmith/internal/pack"
	"evalgo.org/packsmith/internal/paths"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	failMark = color.New(color.FgRed).Sprint("✗")
	bullet   = color.New(color.FgCyan).Sprint("•")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

func newLogger() zerolog.Logger {
	return logging.New(cfg.Logging)
}

func resolver() paths.Resolver {
	return paths.New(cfg.Pack.Root)
}

// inRoot resolves a configured output path against the pack root.
func inRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Pack.Root, p)
}

// requirePackRoot fails unless the pack root holds pack.mcmeta or assets/.
func requirePackRoot(cmd *cobra.Command, args []string) error {
	root := cfg.Pack.Root
	st, err := os.Stat(root)
	if err != nil || !st.IsDir() {
		return apperr.NotFound("pack root", root)
	}
	for _, marker := range []string{"pack.mcmeta", "assets"} {
		if _, err := os.Stat(filepath.Join(root, marker)); err == nil {
			return nil
		}
	}
	return apperr.Validation("not a resource pack (no pack.mcmeta or assets/)", root)
}

func newPackService(logger zerolog.Logger) *pack.Service {
	r := resolver()
	catalog := cfg.Pack.Catalog
	if catalog == "" {
		catalog = paths.CatalogFile
	}
	return pack.NewService(r, materials.Lazy(inRoot(catalog)), logger)
}

func newGitHubClient(logger zerolog.Logger) (*github.Client, error) {
	return github.NewClient(github.Options{
		BaseURL:   cfg.GitHub.APIURL,
		Token:     cfg.GitHub.Token,
		Owner:     cfg.GitHub.Owner,
		Repo:      cfg.GitHub.Repo,
		UserAgent: cfg.GitHub.UserAgent,
		Timeout:   cfg.GitHub.Timeout,
		RateLimit: cfg.GitHub.RateLimit,
		Logger:    logger,
	})
}

// splitList splits a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func printMaterials(out io.Writer, added, skipped []string) {
	for _, m := range added {
		fmt.Fprintf(out, "  %s %s\n", okMark, m)
	}
	for _, m := range skipped {
		fmt.Fprintf(out, "  %s %s (already registered)\n", warnMark, m)
	}
}
