package runner

import (
	"context"
	"fmt"
	"strings"

	"evalgo.org/packsmith/internal/github"
)

// SuccessComment is posted when a new model is ready for review.
func SuccessComment(prNumber int, previewURL string) string {
	return fmt.Sprintf(`## ✅ Custom model processed!

**Pull Request:** #%d

### Preview (256×256, pixel perfect)

![Custom Model Preview](%s)

Review and merge the pull request to add this model to the resource pack.`, prNumber, previewURL)
}

// ExtendSuccessComment is posted when a model was attached to more materials.
func ExtendSuccessComment(prNumber int, materials []string) string {
	items := make([]string, 0, len(materials))
	for _, m := range materials {
		items = append(items, fmt.Sprintf("- `%s`", m))
	}
	return fmt.Sprintf(`## ✅ Materials extended!

**Pull Request:** #%d

### Added materials

%s

The existing custom model now applies to the materials above. Review and merge the pull request.`, prNumber, strings.Join(items, "\n"))
}

// FailureComment explains a failed run and asks for a new issue.
func FailureComment(errMessage, workflowURL string) string {
	return fmt.Sprintf(`## ❌ Custom model processing failed

The workflow hit an error. See the [workflow log](%s) for details.

### Error

`+"```"+`
%s
`+"```"+`

### Next steps

1. Check the log to find the cause
2. Fix the input
3. **Open a new issue** with the corrected details

⚠️ **Note:** editing this issue does not re-run the workflow. Please open a new issue.`, workflowURL, errMessage)
}

// Notifier reports results back on the issue.
type Notifier struct {
	GitHub IssueAPI
}

// PostSuccess comments with the pull request and preview, then reacts +1.
func (n *Notifier) PostSuccess(ctx context.Context, issue, prNumber int, previewURL string) error {
	if err := n.GitHub.CommentIssue(ctx, issue, SuccessComment(prNumber, previewURL)); err != nil {
		return err
	}
	return n.GitHub.ReactIssue(ctx, issue, github.ReactionThumbsUp)
}

// PostExtendSuccess comments with the pull request and materials, then reacts +1.
func (n *Notifier) PostExtendSuccess(ctx context.Context, issue, prNumber int, materials []string) error {
	if err := n.GitHub.CommentIssue(ctx, issue, ExtendSuccessComment(prNumber, materials)); err != nil {
		return err
	}
	return n.GitHub.ReactIssue(ctx, issue, github.ReactionThumbsUp)
}

// PostFailure comments with the error, reacts -1 and closes the issue.
func (n *Notifier) PostFailure(ctx context.Context, issue int, errMessage, workflowURL string) error {
	if err := n.GitHub.CommentIssue(ctx, issue, FailureComment(errMessage, workflowURL)); err != nil {
		return err
	}
	if err := n.GitHub.ReactIssue(ctx, issue, github.ReactionThumbsDown); err != nil {
		return err
	}
	return n.GitHub.CloseIssue(ctx, issue)
}
