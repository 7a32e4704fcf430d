// Package gitrepo runs git in a working tree.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// UnknownCommit is reported when HEAD cannot be resolved.
const UnknownCommit = "unknown"

// Repo is a git working tree.
type Repo struct {
	Dir string

	// Binary is the git executable (default: git)
	Binary string
}

func New(dir string) *Repo {
	return &Repo{Dir: dir, Binary: "git"}
}

// Run executes git with args and returns trimmed stdout. A non-zero exit is
// an error carrying stderr.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// HeadCommit returns the full hash of HEAD, or UnknownCommit outside a repository.
func (r *Repo) HeadCommit(ctx context.Context) string {
	out, err := r.Run(ctx, "rev-parse", "HEAD")
	if err != nil || out == "" {
		return UnknownCommit
	}
	return out
}

// Addition describes the commit that first added a file.
type Addition struct {
	Date   time.Time
	Author string
}

// FirstAdded returns the author date and name of the commit that added path.
// ok is false when git has no record of the file.
func (r *Repo) FirstAdded(ctx context.Context, path string) (Addition, bool) {
	rel, err := r.relative(path)
	if err != nil {
		return Addition{}, false
	}

	out, err := r.Run(ctx, "log", "--diff-filter=A", "--follow", "--format=%aI|%an", "--", filepath.ToSlash(rel))
	if err != nil || out == "" {
		return Addition{}, false
	}

	// Newest first; the addition that counts is the oldest.
	lines := strings.Split(out, "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	dateStr, author, _ := strings.Cut(last, "|")
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return Addition{}, false
	}
	return Addition{Date: date, Author: author}, true
}

// relative expresses path, which is relative to the process working
// directory or absolute, relative to the repository directory.
func (r *Repo) relative(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir, err := filepath.Abs(r.Dir)
	if err != nil {
		return "", err
	}
	return filepath.Rel(dir, abs)
}

// MergeCommit is one merge commit from the log.
type MergeCommit struct {
	Hash    string
	Subject string
	Body    string
}

// PullRequestMerges lists up to limit merge commits whose subject starts
// with "Merge pull request", newest first.
func (r *Repo) PullRequestMerges(ctx context.Context, limit int) ([]MergeCommit, error) {
	out, err := r.Run(ctx, "log", "--merges", fmt.Sprintf("-%d", limit),
		"--grep=^Merge pull request", "--format=%H%x1f%s%x1f%b%x1e")
	if err != nil {
		return nil, err
	}
	return ParseMergeLog(out), nil
}

// ParseMergeLog splits output of the --format used by PullRequestMerges.
func ParseMergeLog(out string) []MergeCommit {
	var commits []MergeCommit
	for _, record := range strings.Split(out, "\x1e") {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, "\x1f", 3)
		if len(fields) < 2 {
			continue
		}
		c := MergeCommit{Hash: fields[0], Subject: fields[1]}
		if len(fields) == 3 {
			c.Body = strings.TrimSpace(fields[2])
		}
		commits = append(commits, c)
	}
	return commits
}

// ConfigureAuthor sets user.name and user.email for the repository.
func (r *Repo) ConfigureAuthor(ctx context.Context, name, email string) error {
	if _, err := r.Run(ctx, "config", "user.name", name); err != nil {
		return err
	}
	_, err := r.Run(ctx, "config", "user.email", email)
	return err
}

// AddAll stages every change in the working tree.
func (r *Repo) AddAll(ctx context.Context) error {
	_, err := r.Run(ctx, "add", ".")
	return err
}

func (r *Repo) Commit(ctx context.Context, message string) error {
	_, err := r.Run(ctx, "commit", "-m", message)
	return err
}

// CheckoutNewBranch creates and switches to branch.
func (r *Repo) CheckoutNewBranch(ctx context.Context, branch string) error {
	_, err := r.Run(ctx, "checkout", "-b", branch)
	return err
}

// Push pushes branch to origin and sets it as upstream.
func (r *Repo) Push(ctx context.Context, branch string) error {
	_, err := r.Run(ctx, "push", "-u", "origin", branch)
	return err
}
