package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/github"
	"evalgo.org/packsmith/internal/gitrepo"
	"evalgo.org/packsmith/internal/preview"
	"evalgo.org/packsmith/internal/runner"
)

// Environment fallbacks for values a workflow usually passes from the event.
const (
	issueNumberEnv = "ISSUE_NUMBER"
	issueBodyEnv   = "ISSUE_BODY"
)

var runnerCmd = &cobra.Command{
	Use:   "runner",
	Short: "GitHub Actions steps for model request issues",
	Long: `Steps for a workflow that turns a model request issue into a pull
request. Step outputs are printed as key=value lines and appended to
$GITHUB_OUTPUT when it is set.

The issue number is read from --issue or $ISSUE_NUMBER and the issue body
from --body, --body-file or $ISSUE_BODY.`,
}

var processIssueCmd = &cobra.Command{
	Use:   "process-issue",
	Short: "Apply a model request issue to the pack",
	Long: `React to the issue, parse its body, download the attachments, add or
extend the model and render a preview.

With --create-pr the change is committed to a new branch and a pull request
is opened. With --notify the issue gets a success comment, or a failure
comment after which it is closed.`,
	PreRunE: requirePackRoot,
	RunE:    runProcessIssue,
}

var parseIssueCmd = &cobra.Command{
	Use:   "parse-issue",
	Short: "Parse an issue body and print its fields",
	RunE:  runParseIssue,
}

var postSuccessCmd = &cobra.Command{
	Use:   "post-success",
	Short: "Comment on the issue with the pull request and preview",
	RunE:  runPostSuccess,
}

var postExtendSuccessCmd = &cobra.Command{
	Use:   "post-extend-success",
	Short: "Comment on the issue with the pull request and added materials",
	RunE:  runPostExtendSuccess,
}

var postFailureCmd = &cobra.Command{
	Use:   "post-failure",
	Short: "Comment on the issue with an error and close it",
	RunE:  runPostFailure,
}

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Post a comment on the issue",
	RunE:  runComment,
}

var reactCmd = &cobra.Command{
	Use:   "react",
	Short: "Add a reaction to the issue",
	RunE:  runReact,
}

var closeIssueCmd = &cobra.Command{
	Use:   "close-issue",
	Short: "Close the issue",
	RunE:  runCloseIssue,
}

var generatePreviewCmd = &cobra.Command{
	Use:   "generate-preview <texture.png>",
	Short: "Render a preview image and print its raw URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runGeneratePreview,
}

var (
	issueType = runner.IssueModel
	reaction  = github.ReactionEyes
)

func init() {
	typeUsage := fmt.Sprintf("issue template (%s)", strings.Join(runner.IssueTypeNames(), ", "))

	runnerCmd.PersistentFlags().Int("issue", 0, "issue number (default: $ISSUE_NUMBER)")

	for _, c := range []*cobra.Command{processIssueCmd, parseIssueCmd} {
		c.Flags().Var(&issueType, "type", typeUsage)
		c.Flags().String("body", "", "issue body (default: $ISSUE_BODY)")
		c.Flags().String("body-file", "", "read the issue body from a file, - for stdin")
	}
	processIssueCmd.Flags().Bool("create-pr", false, "commit the change and open a pull request")
	processIssueCmd.Flags().Bool("notify", false, "comment the outcome on the issue")

	postSuccessCmd.Flags().Int("pr", 0, "pull request number")
	postSuccessCmd.Flags().String("preview-url", "", "preview image URL")
	_ = postSuccessCmd.MarkFlagRequired("pr") //nolint:errcheck

	postExtendSuccessCmd.Flags().Int("pr", 0, "pull request number")
	postExtendSuccessCmd.Flags().String("materials", "", "comma separated materials that were added")
	_ = postExtendSuccessCmd.MarkFlagRequired("pr") //nolint:errcheck

	postFailureCmd.Flags().String("error-message", "", "error to report")
	postFailureCmd.Flags().String("workflow-url", "", "link to the failed run (default: current run)")
	_ = postFailureCmd.MarkFlagRequired("error-message") //nolint:errcheck

	commentCmd.Flags().String("body", "", "comment text")
	commentCmd.Flags().String("body-file", "", "read the comment from a file, - for stdin")

	reactCmd.Flags().Var(&reaction, "reaction", fmt.Sprintf("reaction (%s)", strings.Join(github.ReactionNames(), ", ")))

	generatePreviewCmd.Flags().String("output", "", "preview path (default: preview/<name>.png under the pack root)")
	generatePreviewCmd.Flags().Int("size", 0, "preview edge length (default: preview.size)")
	generatePreviewCmd.Flags().String("branch", "", "branch for the raw URL (default: runner.branch or github.base_branch)")

	runnerCmd.AddCommand(processIssueCmd)
	runnerCmd.AddCommand(parseIssueCmd)
	runnerCmd.AddCommand(postSuccessCmd)
	runnerCmd.AddCommand(postExtendSuccessCmd)
	runnerCmd.AddCommand(postFailureCmd)
	runnerCmd.AddCommand(commentCmd)
	runnerCmd.AddCommand(reactCmd)
	runnerCmd.AddCommand(closeIssueCmd)
	runnerCmd.AddCommand(generatePreviewCmd)
}

func issueNumber(cmd *cobra.Command) (int, error) {
	n, _ := cmd.Flags().GetInt("issue")
	if n == 0 {
		if env := os.Getenv(issueNumberEnv); env != "" {
			v, err := strconv.Atoi(strings.TrimSpace(env))
			if err != nil {
				return 0, apperr.Validation("invalid issue number", env)
			}
			n = v
		}
	}
	if n <= 0 {
		return 0, apperr.Validation("issue number is required (--issue or $ISSUE_NUMBER)", strconv.Itoa(n))
	}
	return n, nil
}

// readText returns --body, else the content of --body-file, else env.
func readText(cmd *cobra.Command, env string) (string, error) {
	if body, _ := cmd.Flags().GetString("body"); body != "" {
		return body, nil
	}
	if file, _ := cmd.Flags().GetString("body-file"); file != "" {
		var (
			data []byte
			err  error
		)
		if file == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return "", apperr.IO("read", file, err)
		}
		return string(data), nil
	}
	if env != "" {
		if body := os.Getenv(env); body != "" {
			return body, nil
		}
	}
	return "", apperr.Validation("text is required (--body or --body-file)", "")
}

func githubForCommand(cmd *cobra.Command) (*github.Client, int, zerolog.Logger, error) {
	logger := newLogger()
	number, err := issueNumber(cmd)
	if err != nil {
		return nil, 0, logger, err
	}
	client, err := newGitHubClient(logger)
	if err != nil {
		return nil, 0, logger, err
	}
	return client, number, logger, nil
}

func runProcessIssue(cmd *cobra.Command, args []string) error {
	createPR, _ := cmd.Flags().GetBool("create-pr")
	notify, _ := cmd.Flags().GetBool("notify")

	client, number, logger, err := githubForCommand(cmd)
	if err != nil {
		return err
	}
	body, err := readText(cmd, issueBodyEnv)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	notifier := &runner.Notifier{GitHub: client}

	fail := func(err error) error {
		if notify {
			if nerr := notifier.PostFailure(ctx, number, err.Error(), cfg.WorkflowRunURL()); nerr != nil {
				logger.Error().Err(nerr).Int("issue", number).Msg("Failed to report failure on issue")
			}
		}
		return err
	}

	processor := runner.NewProcessor(
		newPackService(logger),
		client,
		runner.NewDownloader(cfg.Runner.DownloadTimeout, cfg.Runner.MaxDownloadBytes, logger),
		runner.ProcessorOptions{
			Owner:        cfg.GitHub.Owner,
			Repo:         cfg.GitHub.Repo,
			Branch:       cfg.Runner.Branch,
			BranchPrefix: cfg.Runner.BranchPrefix,
			PreviewSize:  cfg.Preview.Size,
		},
		logger,
	)

	result, err := processor.Process(ctx, number, issueType, body)
	if err != nil {
		return fail(err)
	}
	outputs := result.Outputs()

	if createPR {
		creator := &runner.PRCreator{
			Git:         gitrepo.New(cfg.Pack.Root),
			GitHub:      client,
			AuthorName:  cfg.Runner.AuthorName,
			AuthorEmail: cfg.Runner.AuthorEmail,
			BaseBranch:  cfg.GitHub.BaseBranch,
			Logger:      logger,
		}
		title, prBody := runner.PullRequestText(number, result)
		prNumber, err := creator.Create(ctx, result.Branch, title, prBody)
		if err != nil {
			return fail(err)
		}
		outputs = append(outputs, runner.Output{Key: "pr_number", Value: strconv.Itoa(prNumber)})

		if notify {
			if result.Type == runner.IssueExtend {
				err = notifier.PostExtendSuccess(ctx, number, prNumber, result.AddedMaterials)
			} else {
				err = notifier.PostSuccess(ctx, number, prNumber, result.PreviewURL)
			}
			if err != nil {
				return err
			}
		}
	}

	return runner.WriteOutputs(cmd.OutOrStdout(), cfg.Runner.OutputFile, outputs)
}

func runParseIssue(cmd *cobra.Command, args []string) error {
	body, err := readText(cmd, issueBodyEnv)
	if err != nil {
		return err
	}
	parsed, err := runner.ParseIssue(body, issueType)
	if err != nil {
		return err
	}
	return runner.WriteOutputs(cmd.OutOrStdout(), cfg.Runner.OutputFile, parsed.Outputs())
}

func runPostSuccess(cmd *cobra.Command, args []string) error {
	pr, _ := cmd.Flags().GetInt("pr")
	previewURL, _ := cmd.Flags().GetString("preview-url")

	client, number, _, err := githubForCommand(cmd)
	if err != nil {
		return err
	}
	notifier := &runner.Notifier{GitHub: client}
	if err := notifier.PostSuccess(cmd.Context(), number, pr, previewURL); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Posted success comment on #%d\n", okMark, number)
	return nil
}

func runPostExtendSuccess(cmd *cobra.Command, args []string) error {
	pr, _ := cmd.Flags().GetInt("pr")
	materialsFlag, _ := cmd.Flags().GetString("materials")

	client, number, _, err := githubForCommand(cmd)
	if err != nil {
		return err
	}
	notifier := &runner.Notifier{GitHub: client}
	if err := notifier.PostExtendSuccess(cmd.Context(), number, pr, splitList(materialsFlag)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Posted success comment on #%d\n", okMark, number)
	return nil
}

func runPostFailure(cmd *cobra.Command, args []string) error {
	message, _ := cmd.Flags().GetString("error-message")
	workflowURL := flagOr(cmd, "workflow-url", cfg.WorkflowRunURL())

	client, number, _, err := githubForCommand(cmd)
	if err != nil {
		return err
	}
	notifier := &runner.Notifier{GitHub: client}
	if err := notifier.PostFailure(cmd.Context(), number, message, workflowURL); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Posted failure comment on #%d and closed it\n", okMark, number)
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	body, err := readText(cmd, "")
	if err != nil {
		return err
	}
	client, number, _, err := githubForCommand(cmd)
	if err != nil {
		return err
	}
	if err := client.CommentIssue(cmd.Context(), number, body); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Commented on #%d\n", okMark, number)
	return nil
}

func runReact(cmd *cobra.Command, args []string) error {
	client, number, _, err := githubForCommand(cmd)
	if err != nil {
		return err
	}
	if err := client.ReactIssue(cmd.Context(), number, reaction); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Reacted %s on #%d\n", okMark, reaction, number)
	return nil
}

func runCloseIssue(cmd *cobra.Command, args []string) error {
	client, number, _, err := githubForCommand(cmd)
	if err != nil {
		return err
	}
	if err := client.CloseIssue(cmd.Context(), number); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Closed #%d\n", okMark, number)
	return nil
}

func runGeneratePreview(cmd *cobra.Command, args []string) error {
	src := args[0]
	r := resolver()

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = r.PreviewPath(strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)))
	}
	size, _ := cmd.Flags().GetInt("size")
	if size == 0 {
		size = cfg.Preview.Size
	}
	branch, _ := cmd.Flags().GetString("branch")
	if branch == "" {
		branch = cfg.Runner.Branch
	}
	if branch == "" {
		branch = cfg.GitHub.BaseBranch
	}

	if err := preview.Generate(src, output, size); err != nil {
		return fmt.Errorf("failed to generate preview: %w", err)
	}

	outputs := []runner.Output{{Key: "preview_path", Value: r.Rel(output)}}
	if cfg.GitHub.Owner != "" && cfg.GitHub.Repo != "" {
		url := preview.RawURL(cfg.GitHub.Owner, cfg.GitHub.Repo, branch, r.Rel(output))
		outputs = append(outputs, runner.Output{Key: "preview_url", Value: url})
	}
	return runner.WriteOutputs(cmd.OutOrStdout(), cfg.Runner.OutputFile, outputs)
}
