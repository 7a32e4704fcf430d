package runner

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"evalgo.org/packsmith/internal/github"
)

// Workspace is the git working tree a pull request is made from.
// *gitrepo.Repo implements it.
type Workspace interface {
	ConfigureAuthor(ctx context.Context, name, email string) error
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, message string) error
	CheckoutNewBranch(ctx context.Context, branch string) error
	Push(ctx context.Context, branch string) error
}

// PRCreator commits the working tree to a new branch and opens a pull
// request for it.
type PRCreator struct {
	Git    Workspace
	GitHub IssueAPI

	AuthorName  string
	AuthorEmail string
	BaseBranch  string

	Logger zerolog.Logger
}

// Create runs git config, add, commit, checkout -b and push, then opens
// the pull request and returns its number.
func (c *PRCreator) Create(ctx context.Context, branch, title, body string) (int, error) {
	base := c.BaseBranch
	if base == "" {
		base = "main"
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"configure git author", func() error { return c.Git.ConfigureAuthor(ctx, c.AuthorName, c.AuthorEmail) }},
		{"stage changes", func() error { return c.Git.AddAll(ctx) }},
		{"commit", func() error { return c.Git.Commit(ctx, title) }},
		{"create branch", func() error { return c.Git.CheckoutNewBranch(ctx, branch) }},
		{"push", func() error { return c.Git.Push(ctx, branch) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return 0, fmt.Errorf("failed to %s: %w", s.name, err)
		}
		c.Logger.Debug().Str("step", s.name).Msg("Git step done")
	}
	c.Logger.Info().Str("branch", branch).Msg("Branch pushed")

	return c.GitHub.CreatePullRequest(ctx, github.PullRequest{
		Head:  branch,
		Base:  base,
		Title: title,
		Body:  body,
	})
}

// PullRequestText is the title and body of the pull request for a result.
func PullRequestText(issue int, r *ProcessResult) (title, body string) {
	switch r.Type {
	case IssueExtend:
		title = fmt.Sprintf("Extend custom model: %s", r.CustomModelData)
		body = fmt.Sprintf("Adds materials %v to `%s`.\n\nCloses #%d", r.AddedMaterials, r.CustomModelData, issue)
	default:
		title = fmt.Sprintf("Add custom model: %s", r.CustomModelData)
		body = fmt.Sprintf("Adds `%s`.\n\n![Preview](%s)\n\nCloses #%d", r.CustomModelData, r.PreviewURL, issue)
	}
	return title, body
}
