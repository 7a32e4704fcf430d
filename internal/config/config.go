// Package config provides configuration management for packsmith.
//
// This package handles loading configuration from multiple sources:
//   - YAML configuration files
//   - Environment variables (with PACKSMITH_ prefix)
//   - .env files
//   - Default values
//
// # Configuration Sources Priority
//
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Default values (hardcoded)
//  2. Configuration files (./packsmith.yaml, ./configs/packsmith.yaml, ~/.packsmith/packsmith.yaml)
//  3. .env files
//  4. Environment variables (PACKSMITH_ prefix)
//
// # Environment Variables
//
// Use the PACKSMITH_ prefix and underscores for nested keys:
//   - PACKSMITH_PACK_ROOT=/srv/pack
//   - PACKSMITH_PREVIEW_SIZE=128
//   - PACKSMITH_LOGGING_LEVEL=debug
//
// The variables set by GitHub Actions are honoured as well: GITHUB_TOKEN,
// GITHUB_REPOSITORY, GITHUB_OUTPUT, GITHUB_SERVER_URL and GITHUB_RUN_ID, plus
// PR_BRANCH for the pull request branch of the issue runner.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration structure for packsmith.
type Config struct {
	// Pack locates the resource pack
	Pack PackConfig `mapstructure:"pack" yaml:"pack"`

	// Gallery configures models.json generation
	Gallery GalleryConfig `mapstructure:"gallery" yaml:"gallery"`

	// Archive configures the pack zip
	Archive ArchiveConfig `mapstructure:"archive" yaml:"archive"`

	// Metadata configures metadata.json generation
	Metadata MetadataConfig `mapstructure:"metadata" yaml:"metadata"`

	// Preview configures preview images
	Preview PreviewConfig `mapstructure:"preview" yaml:"preview"`

	// GitHub contains API access settings
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`

	// Runner contains issue automation settings
	Runner RunnerConfig `mapstructure:"runner" yaml:"runner"`

	// Logging contains logging settings
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// PackConfig locates the resource pack.
type PackConfig struct {
	// Root is the resource pack root directory (default: .)
	Root string `mapstructure:"root" yaml:"root"`

	// Catalog is the material catalog file, relative to Root
	Catalog string `mapstructure:"catalog" yaml:"catalog"`

	// Name is the pack name, used for the default archive name
	Name string `mapstructure:"name" yaml:"name"`
}

type GalleryConfig struct {
	// Output is the models.json path
	Output string `mapstructure:"output" yaml:"output"`
}

// ArchiveConfig configures the pack zip.
type ArchiveConfig struct {
	// Output is the zip path (default: <pack.name>.zip)
	Output string `mapstructure:"output" yaml:"output"`

	// Include lists files, directories or doublestar globs relative to the pack root
	Include []string `mapstructure:"include" yaml:"include"`
}

type MetadataConfig struct {
	// Output is the metadata.json path
	Output string `mapstructure:"output" yaml:"output"`
}

type PreviewConfig struct {
	// Size is the preview edge length in pixels
	Size int `mapstructure:"size" yaml:"size"`
}

// GitHubConfig contains API access settings.
type GitHubConfig struct {
	// APIURL is the REST API base URL
	APIURL string `mapstructure:"api_url" yaml:"api_url"`

	// ServerURL is the web URL used for links to pull requests and runs
	ServerURL string `mapstructure:"server_url" yaml:"server_url"`

	// Repository is "owner/repo"; Owner and Repo are derived from it when empty
	Repository string `mapstructure:"repository" yaml:"repository"`
	Owner      string `mapstructure:"owner" yaml:"owner"`
	Repo       string `mapstructure:"repo" yaml:"repo"`

	// Token is the bearer token (GITHUB_TOKEN)
	Token string `mapstructure:"token" yaml:"-"`

	// BaseBranch is the pull request target branch
	BaseBranch string `mapstructure:"base_branch" yaml:"base_branch"`

	// Timeout bounds each API request
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// RateLimit is the maximum requests per second (0 disables pacing)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`

	// UserAgent is sent with every request
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// RunnerConfig contains issue automation settings.
type RunnerConfig struct {
	// Branch is the pull request branch (PR_BRANCH); empty means BranchPrefix + issue number
	Branch string `mapstructure:"branch" yaml:"branch"`

	// BranchPrefix prefixes the issue number in generated branch names
	BranchPrefix string `mapstructure:"branch_prefix" yaml:"branch_prefix"`

	// AuthorName and AuthorEmail are used for the commit
	AuthorName  string `mapstructure:"author_name" yaml:"author_name"`
	AuthorEmail string `mapstructure:"author_email" yaml:"author_email"`

	// DownloadTimeout bounds each asset download
	DownloadTimeout time.Duration `mapstructure:"download_timeout" yaml:"download_timeout"`

	// MaxDownloadBytes caps the size of a downloaded asset
	MaxDownloadBytes int64 `mapstructure:"max_download_bytes" yaml:"max_download_bytes"`

	// OutputFile receives key=value step outputs (GITHUB_OUTPUT)
	OutputFile string `mapstructure:"output_file" yaml:"output_file"`

	// RunID identifies the workflow run for failure links (GITHUB_RUN_ID)
	RunID string `mapstructure:"run_id" yaml:"run_id"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the log level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log format (json, text)
	Format string `mapstructure:"format" yaml:"format"`
}

var cfg *Config

// Load reads configuration from a file and environment variables.
// If cfgFile is empty, it searches for packsmith.yaml in standard locations.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("packsmith")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.packsmith")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgFile != "" {
			if !isFileNotFoundError(err) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		} else {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.MergeInConfig() // Ignore error if .env file doesn't exist

	v.SetEnvPrefix("PACKSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindActionsEnv(v)

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	c.normalize()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = c
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pack.root", ".")
	v.SetDefault("pack.catalog", "items_textures.json")
	v.SetDefault("pack.name", "OfroPack")

	v.SetDefault("gallery.output", "models.json")

	v.SetDefault("archive.output", "")
	v.SetDefault("archive.include", []string{"assets", "pack.mcmeta", "pack.png"})

	v.SetDefault("metadata.output", "metadata.json")

	v.SetDefault("preview.size", 256)

	v.SetDefault("github.api_url", "https://api.github.com")
	v.SetDefault("github.server_url", "https://github.com")
	v.SetDefault("github.repository", "")
	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_branch", "main")
	v.SetDefault("github.timeout", "30s")
	v.SetDefault("github.rate_limit", 5.0)
	v.SetDefault("github.user_agent", "packsmith")

	v.SetDefault("runner.branch", "")
	v.SetDefault("runner.branch_prefix", "custom-model/issue-")
	v.SetDefault("runner.author_name", "github-actions[bot]")
	v.SetDefault("runner.author_email", "41898282+github-actions[bot]@users.noreply.github.com")
	v.SetDefault("runner.download_timeout", "30s")
	v.SetDefault("runner.max_download_bytes", 10<<20)
	v.SetDefault("runner.output_file", "")
	v.SetDefault("runner.run_id", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// bindActionsEnv maps the GitHub Actions variables onto config keys. The
// PACKSMITH_ form still wins when both are set.
func bindActionsEnv(v *viper.Viper) {
	bindings := map[string][]string{
		"github.token":       {"PACKSMITH_GITHUB_TOKEN", "GITHUB_TOKEN"},
		"github.repository":  {"PACKSMITH_GITHUB_REPOSITORY", "GITHUB_REPOSITORY"},
		"github.server_url":  {"PACKSMITH_GITHUB_SERVER_URL", "GITHUB_SERVER_URL"},
		"github.api_url":     {"PACKSMITH_GITHUB_API_URL", "GITHUB_API_URL"},
		"runner.branch":      {"PACKSMITH_RUNNER_BRANCH", "PR_BRANCH"},
		"runner.output_file": {"PACKSMITH_RUNNER_OUTPUT_FILE", "GITHUB_OUTPUT"},
		"runner.run_id":      {"PACKSMITH_RUNNER_RUN_ID", "GITHUB_RUN_ID"},
		"pack.root":          {"PACKSMITH_PACK_ROOT", "PACKSMITH_ROOT"},
	}
	for key, envs := range bindings {
		_ = v.BindEnv(append([]string{key}, envs...)...) //nolint:errcheck
	}
}

func (c *Config) normalize() {
	if c.GitHub.Repository != "" && (c.GitHub.Owner == "" || c.GitHub.Repo == "") {
		if owner, repo, ok := strings.Cut(c.GitHub.Repository, "/"); ok {
			if c.GitHub.Owner == "" {
				c.GitHub.Owner = owner
			}
			if c.GitHub.Repo == "" {
				c.GitHub.Repo = repo
			}
		}
	}
	if c.Archive.Output == "" {
		c.Archive.Output = c.Pack.Name + ".zip"
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Pack.Root == "" {
		return fmt.Errorf("pack root is required")
	}

	if c.Pack.Name == "" {
		return fmt.Errorf("pack name is required")
	}

	if c.Preview.Size < 1 {
		return fmt.Errorf("invalid preview size: %d", c.Preview.Size)
	}

	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("invalid github timeout: %s", c.GitHub.Timeout)
	}

	if c.GitHub.RateLimit < 0 {
		return fmt.Errorf("invalid github rate limit: %v", c.GitHub.RateLimit)
	}

	if c.Runner.DownloadTimeout <= 0 {
		return fmt.Errorf("invalid download timeout: %s", c.Runner.DownloadTimeout)
	}

	if c.Runner.MaxDownloadBytes <= 0 {
		return fmt.Errorf("invalid max download bytes: %d", c.Runner.MaxDownloadBytes)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid logging format: %q", c.Logging.Format)
	}

	return nil
}

// RepositoryURL is the web URL of the configured repository.
func (c *GitHubConfig) RepositoryURL() string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.ServerURL, "/"), c.Owner, c.Repo)
}

// WorkflowRunURL links to the current workflow run, or the repository's
// Actions page when no run ID is known.
func (c *Config) WorkflowRunURL() string {
	if c.Runner.RunID == "" {
		return c.GitHub.RepositoryURL() + "/actions"
	}
	return fmt.Sprintf("%s/actions/runs/%s", c.GitHub.RepositoryURL(), c.Runner.RunID)
}

func Get() *Config {
	return cfg
}

// isFileNotFoundError checks if an error is a file not found error.
func isFileNotFoundError(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Is(pathErr, os.ErrNotExist)
	}
	return false
}
