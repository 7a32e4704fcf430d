package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"evalgo.org/packsmith/internal/github"
	"evalgo.org/packsmith/internal/pack"
	"evalgo.org/packsmith/internal/preview"
)

// IssueAPI is the part of the GitHub API the runner uses. *github.Client
// implements it.
type IssueAPI interface {
	CommentIssue(ctx context.Context, number int, body string) error
	ReactIssue(ctx context.Context, number int, reaction github.Reaction) error
	CloseIssue(ctx context.Context, number int) error
	CreatePullRequest(ctx context.Context, pr github.PullRequest) (int, error)
}

// DefaultBranchPrefix prefixes the issue number in pull request branches.
const DefaultBranchPrefix = "custom-model/issue-"

// ProcessorOptions holds repository coordinates for preview links.
type ProcessorOptions struct {
	Owner string
	Repo  string

	// Branch overrides the generated pull request branch (PR_BRANCH)
	Branch       string
	BranchPrefix string

	PreviewSize int
}

// ProcessResult is what a processed issue produced.
type ProcessResult struct {
	Type            IssueType `json:"type"`
	CustomModelData string    `json:"custom_model_data"`
	Branch          string    `json:"branch"`

	// PreviewURL is set for new models
	PreviewURL string `json:"preview_url,omitempty"`

	// AddedMaterials is set for extend requests
	AddedMaterials []string `json:"added_materials,omitempty"`
}

// Outputs are the step outputs of a processed issue.
func (r *ProcessResult) Outputs() []Output {
	var out []Output
	if r.PreviewURL != "" {
		out = append(out, Output{"preview_url", r.PreviewURL})
	}
	out = append(out, Output{"custom_model_data", r.CustomModelData}, Output{"branch", r.Branch})
	if len(r.AddedMaterials) > 0 {
		out = append(out, Output{"added_materials", strings.Join(r.AddedMaterials, ",")})
	}
	return out
}

// Processor applies the request of an issue to the pack.
type Processor struct {
	pack       *pack.Service
	github     IssueAPI
	downloader *Downloader
	opts       ProcessorOptions
	logger     zerolog.Logger
}

func NewProcessor(svc *pack.Service, gh IssueAPI, dl *Downloader, opts ProcessorOptions, logger zerolog.Logger) *Processor {
	if opts.BranchPrefix == "" {
		opts.BranchPrefix = DefaultBranchPrefix
	}
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = preview.DefaultSize
	}
	return &Processor{
		pack:       svc,
		github:     gh,
		downloader: dl,
		opts:       opts,
		logger:     logger.With().Str("component", "runner").Logger(),
	}
}

// BranchFor is the pull request branch of an issue.
func (p *Processor) BranchFor(number int) string {
	if p.opts.Branch != "" {
		return p.opts.Branch
	}
	return fmt.Sprintf("%s%d", p.opts.BranchPrefix, number)
}

// Process acknowledges the issue with a rocket reaction, parses its body,
// downloads the attachments into a temporary directory and applies the
// request. New models also get a preview.
func (p *Processor) Process(ctx context.Context, number int, typ IssueType, body string) (*ProcessResult, error) {
	log := p.logger.With().Int("issue", number).Stringer("type", typ).Logger()
	log.Info().Msg("Processing issue")

	if err := p.github.ReactIssue(ctx, number, github.ReactionRocket); err != nil {
		return nil, err
	}

	parsed, err := ParseIssue(body, typ)
	if err != nil {
		return nil, fmt.Errorf("failed to parse issue: %w", err)
	}
	log.Info().Strs("materials", parsed.Materials).Str("model", parsed.Name).Msg("Issue parsed")

	result := &ProcessResult{Type: typ, CustomModelData: parsed.Name, Branch: p.BranchFor(number)}

	if typ == IssueExtend {
		if _, err := p.pack.Extend(pack.ExtendRequest{Materials: parsed.Materials, Name: parsed.Name}); err != nil {
			return nil, err
		}
		result.AddedMaterials = parsed.Materials
		log.Info().Msg("Issue processed")
		return result, nil
	}

	tmp, err := os.MkdirTemp("", "packsmith-issue-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	var previewSource string
	switch typ {
	case IssueModel:
		previewSource, err = p.addModel(ctx, tmp, parsed)
	case IssueModel3D:
		previewSource, err = p.addModel3D(ctx, tmp, parsed)
	}
	if err != nil {
		return nil, err
	}

	resolver := p.pack.Paths()
	previewPath := resolver.PreviewPath(parsed.Name)
	if err := preview.Generate(previewSource, previewPath, p.opts.PreviewSize); err != nil {
		return nil, fmt.Errorf("failed to generate preview: %w", err)
	}
	result.PreviewURL = preview.RawURL(p.opts.Owner, p.opts.Repo, result.Branch, resolver.Rel(previewPath))

	log.Info().Str("preview_url", result.PreviewURL).Msg("Issue processed")
	return result, nil
}

func (p *Processor) addModel(ctx context.Context, tmp string, parsed *ParsedIssue) (string, error) {
	image := filepath.Join(tmp, parsed.Name+".png")
	if err := p.downloader.DownloadImage(ctx, parsed.ImageURL, image); err != nil {
		return "", err
	}

	res, err := p.pack.AddModel(pack.AddModelRequest{
		Materials: parsed.Materials,
		Name:      parsed.Name,
		Frametime: parsed.Frametime,
		ImagePath: image,
		Parent:    parsed.Parent,
	})
	if err != nil {
		return "", err
	}
	return res.TexturePaths[0], nil
}

func (p *Processor) addModel3D(ctx context.Context, tmp string, parsed *ParsedIssue) (string, error) {
	template := filepath.Join(tmp, "model.json")
	if err := p.downloader.DownloadJSON(ctx, parsed.ModelJSONURL, template); err != nil {
		return "", err
	}

	layers := make([]string, 0, len(parsed.LayerURLs))
	for i, url := range parsed.LayerURLs {
		layer := filepath.Join(tmp, fmt.Sprintf("%d.png", i))
		if err := p.downloader.DownloadImage(ctx, url, layer); err != nil {
			return "", err
		}
		layers = append(layers, layer)
	}

	res, err := p.pack.AddModel3D(pack.AddModel3DRequest{
		Materials:    parsed.Materials,
		Name:         parsed.Name,
		TemplatePath: template,
		Layers:       layers,
	})
	if err != nil {
		return "", err
	}
	return res.TexturePaths[0], nil
}
