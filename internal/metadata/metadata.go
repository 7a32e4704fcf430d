// Package metadata describes a built pack archive for the download site:
// its checksum, size, source commit and the pull request it came from.
package metadata

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/gitrepo"
	"evalgo.org/packsmith/internal/jsonstore"
)

const (
	// VersionLayout formats the UTC build time as the pack version.
	VersionLayout = "20060102-150405"

	mergeSubjectPrefix = "Merge pull request #"
	mergeScanLimit     = 50
	noTitle            = "No title"
)

// Metadata is the content of metadata.json.
type Metadata struct {
	Version   string    `json:"version"`
	SHA1      string    `json:"sha1"`
	Size      int64     `json:"size"`
	Commit    string    `json:"commit"`
	UpdatedAt string    `json:"updated_at"`
	LatestPR  *LatestPR `json:"latest_pr"`
}

type LatestPR struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// History is the part of git metadata depends on. *gitrepo.Repo implements it.
type History interface {
	HeadCommit(ctx context.Context) string
	PullRequestMerges(ctx context.Context, limit int) ([]gitrepo.MergeCommit, error)
}

// Collector gathers metadata for an archive.
type Collector struct {
	History History

	// RepositoryURL prefixes pull request links, e.g. https://github.com/o/r
	RepositoryURL string

	Now func() time.Time
}

// Collect describes the archive at zipPath.
func (c *Collector) Collect(ctx context.Context, zipPath string) (*Metadata, error) {
	sum, size, err := Checksum(zipPath)
	if err != nil {
		return nil, err
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	ts := now().UTC()

	m := &Metadata{
		Version:   ts.Format(VersionLayout),
		SHA1:      sum,
		Size:      size,
		Commit:    gitrepo.UnknownCommit,
		UpdatedAt: ts.Format(time.RFC3339),
	}

	if c.History != nil {
		m.Commit = c.History.HeadCommit(ctx)
		// History is best effort; a shallow clone or missing git leaves latest_pr null.
		if merges, err := c.History.PullRequestMerges(ctx, mergeScanLimit); err == nil {
			m.LatestPR = LatestMerged(merges, c.RepositoryURL)
		}
	}

	return m, nil
}

// Write collects metadata and stores it at output.
func (c *Collector) Write(ctx context.Context, zipPath, output string) (*Metadata, error) {
	m, err := c.Collect(ctx, zipPath)
	if err != nil {
		return nil, err
	}
	if err := jsonstore.Write(output, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Checksum returns the hex SHA-1 and byte size of the file at path.
func Checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", 0, apperr.NotFound("archive", path)
		}
		return "", 0, apperr.IO("open archive", path, err)
	}
	defer f.Close()

	h := sha1.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, apperr.IO("read archive", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// LatestMerged picks the first merge whose subject names a pull request
// number. The title is the first line of the merge body.
func LatestMerged(merges []gitrepo.MergeCommit, repoURL string) *LatestPR {
	for _, mc := range merges {
		rest, ok := strings.CutPrefix(mc.Subject, mergeSubjectPrefix)
		if !ok {
			continue
		}
		numStr, _, _ := strings.Cut(rest, " ")
		number, err := strconv.Atoi(numStr)
		if err != nil || number <= 0 {
			continue
		}

		title, _, _ := strings.Cut(mc.Body, "\n")
		title = strings.TrimSpace(title)
		if title == "" {
			title = noTitle
		}

		return &LatestPR{
			Number: number,
			Title:  title,
			URL:    fmt.Sprintf("%s/pull/%d", strings.TrimSuffix(repoURL, "/"), number),
		}
	}
	return nil
}
