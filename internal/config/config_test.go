package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearActionsEnv blanks the GitHub Actions variables so CI runs see defaults.
func clearActionsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GITHUB_TOKEN", "GITHUB_REPOSITORY", "GITHUB_OUTPUT", "GITHUB_RUN_ID",
		"GITHUB_SERVER_URL", "GITHUB_API_URL", "PR_BRANCH", "PACKSMITH_ROOT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// TestLoadDefaults tests that default configuration values are loaded correctly.
func TestLoadDefaults(t *testing.T) {
	clearActionsEnv(t)

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}

	if cfg.Pack.Root != "." {
		t.Errorf("Expected default pack root '.', got '%s'", cfg.Pack.Root)
	}
	if cfg.Pack.Catalog != "items_textures.json" {
		t.Errorf("Expected default catalog 'items_textures.json', got '%s'", cfg.Pack.Catalog)
	}
	if cfg.Archive.Output != "OfroPack.zip" {
		t.Errorf("Expected default archive output 'OfroPack.zip', got '%s'", cfg.Archive.Output)
	}
	if len(cfg.Archive.Include) != 3 {
		t.Errorf("Expected 3 default archive includes, got %v", cfg.Archive.Include)
	}
	if cfg.Gallery.Output != "models.json" {
		t.Errorf("Expected default gallery output 'models.json', got '%s'", cfg.Gallery.Output)
	}
	if cfg.Metadata.Output != "metadata.json" {
		t.Errorf("Expected default metadata output 'metadata.json', got '%s'", cfg.Metadata.Output)
	}
	if cfg.Preview.Size != 256 {
		t.Errorf("Expected default preview size 256, got %d", cfg.Preview.Size)
	}
	if cfg.GitHub.APIURL != "https://api.github.com" {
		t.Errorf("Expected default api url, got '%s'", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.Timeout != 30*time.Second {
		t.Errorf("Expected default github timeout 30s, got %v", cfg.GitHub.Timeout)
	}
	if cfg.GitHub.BaseBranch != "main" {
		t.Errorf("Expected default base branch 'main', got '%s'", cfg.GitHub.BaseBranch)
	}
	if cfg.Runner.BranchPrefix != "custom-model/issue-" {
		t.Errorf("Expected default branch prefix, got '%s'", cfg.Runner.BranchPrefix)
	}
	if cfg.Runner.MaxDownloadBytes != 10<<20 {
		t.Errorf("Expected default max download bytes %d, got %d", 10<<20, cfg.Runner.MaxDownloadBytes)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected default logging level 'info', got '%s'", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default logging format 'text', got '%s'", cfg.Logging.Format)
	}
	if Get() != cfg {
		t.Error("Expected Get() to return the loaded config")
	}
}

// TestLoadFromEnvironment tests that prefixed and GitHub Actions variables override defaults.
func TestLoadFromEnvironment(t *testing.T) {
	clearActionsEnv(t)
	t.Setenv("PACKSMITH_PREVIEW_SIZE", "128")
	t.Setenv("PACKSMITH_LOGGING_LEVEL", "DEBUG")
	t.Setenv("GITHUB_TOKEN", "ghs_test")
	t.Setenv("GITHUB_REPOSITORY", "ofro/pack")
	t.Setenv("PR_BRANCH", "custom-model/issue-7")
	t.Setenv("GITHUB_RUN_ID", "42")

	cfg, err := Load("nonexistent.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Preview.Size != 128 {
		t.Errorf("Expected preview size 128, got %d", cfg.Preview.Size)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Expected logging level 'debug', got '%s'", cfg.Logging.Level)
	}
	if cfg.GitHub.Token != "ghs_test" {
		t.Errorf("Expected token from GITHUB_TOKEN, got '%s'", cfg.GitHub.Token)
	}
	if cfg.GitHub.Owner != "ofro" || cfg.GitHub.Repo != "pack" {
		t.Errorf("Expected owner/repo 'ofro/pack', got '%s/%s'", cfg.GitHub.Owner, cfg.GitHub.Repo)
	}
	if cfg.Runner.Branch != "custom-model/issue-7" {
		t.Errorf("Expected branch from PR_BRANCH, got '%s'", cfg.Runner.Branch)
	}
	if got := cfg.WorkflowRunURL(); got != "https://github.com/ofro/pack/actions/runs/42" {
		t.Errorf("Unexpected workflow run url '%s'", got)
	}
}

// TestLoadFromFile tests loading a YAML configuration file.
func TestLoadFromFile(t *testing.T) {
	clearActionsEnv(t)
	path := filepath.Join(t.TempDir(), "packsmith.yaml")
	content := `pack:
  root: /srv/pack
  name: MyPack
github:
  owner: someone
  repo: things
  timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Pack.Root != "/srv/pack" {
		t.Errorf("Expected pack root '/srv/pack', got '%s'", cfg.Pack.Root)
	}
	if cfg.Archive.Output != "MyPack.zip" {
		t.Errorf("Expected archive output 'MyPack.zip', got '%s'", cfg.Archive.Output)
	}
	if cfg.GitHub.Timeout != 5*time.Second {
		t.Errorf("Expected github timeout 5s, got %v", cfg.GitHub.Timeout)
	}
	if cfg.GitHub.RepositoryURL() != "https://github.com/someone/things" {
		t.Errorf("Unexpected repository url '%s'", cfg.GitHub.RepositoryURL())
	}
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Pack:    PackConfig{Root: ".", Name: "OfroPack"},
			Preview: PreviewConfig{Size: 256},
			GitHub:  GitHubConfig{Timeout: time.Second, RateLimit: 1},
			Runner:  RunnerConfig{DownloadTimeout: time.Second, MaxDownloadBytes: 1},
			Logging: LoggingConfig{Level: "info", Format: "json"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"empty root", func(c *Config) { c.Pack.Root = "" }, true},
		{"zero preview size", func(c *Config) { c.Preview.Size = 0 }, true},
		{"negative rate limit", func(c *Config) { c.GitHub.RateLimit = -1 }, true},
		{"zero timeout", func(c *Config) { c.GitHub.Timeout = 0 }, true},
		{"zero download cap", func(c *Config) { c.Runner.MaxDownloadBytes = 0 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
