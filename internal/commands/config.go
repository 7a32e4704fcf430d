package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/jsonstore"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runShowConfig,
}

var initConfigCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file",
	RunE:  runInitConfig,
}

func init() {
	initConfigCmd.Flags().String("output", "packsmith.yaml", "file to write")
	initConfigCmd.Flags().Bool("force", false, "overwrite an existing file")

	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(initConfigCmd)
}

func runShowConfig(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

const defaultConfig = `# packsmith configuration

pack:
  root: .
  name: OfroPack
  catalog: items_textures.json

gallery:
  output: models.json

archive:
  # output defaults to <pack.name>.zip
  include:
    - assets
    - pack.mcmeta
    - pack.png

metadata:
  output: metadata.json

preview:
  size: 256

github:
  # repository is read from GITHUB_REPOSITORY and the token from GITHUB_TOKEN
  api_url: https://api.github.com
  server_url: https://github.com
  base_branch: main
  timeout: 30s
  rate_limit: 5

runner:
  branch_prefix: custom-model/issue-
  author_name: github-actions[bot]
  author_email: 41898282+github-actions[bot]@users.noreply.github.com
  download_timeout: 30s
  max_download_bytes: 10485760

logging:
  level: info
  format: text
`

func runInitConfig(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if jsonstore.Exists(output) && !force {
		return apperr.Conflict("config file already exists, use --force to overwrite", output)
	}
	if err := jsonstore.WriteFile(output, []byte(defaultConfig), 0o644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s Created %s\n", okMark, output)
	return nil
}
