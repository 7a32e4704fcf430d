package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"evalgo.org/packsmith/internal/config"
	"evalgo.org/packsmith/internal/version"
)

var (
	cfgFile   string
	rootDir   string
	logLevel  string
	logFormat string
	cfg       *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "packsmith",
	Short: "Custom model data tooling for Minecraft resource packs",
	Long: `packsmith registers custom models in a Minecraft resource pack.

Add 2D and 3D models, attach existing models to more materials, build the
gallery manifest, the pack archive and its release metadata, and turn
GitHub issues into pull requests from a workflow.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	rootCmd.Version = version.Version
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./packsmith.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "resource pack root (default: .)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (json, text)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(extendCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(zipCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(runnerCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "%s" .Version}}
`)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over file and environment.
	if rootDir != "" {
		cfg.Pack.Root = rootDir
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Get()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, info.String())

		if cmd.Flag("verbose").Changed {
			fmt.Fprintf(out, "\nDetails:\n")
			fmt.Fprintf(out, "  Version:    %s\n", info.Version)
			fmt.Fprintf(out, "  Git Commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "  Built:      %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "  Platform:   %s\n", info.Platform)
		}
	},
}

func init() {
	versionCmd.Flags().BoolP("verbose", "v", false, "verbose version output")
}
