// Package runner turns model request issues into pack changes and pull
// requests inside a GitHub Actions workflow.
package runner

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/schema"
	"evalgo.org/packsmith/internal/validation"
)

// IssueType selects the issue template a body was written from.
type IssueType int

const (
	IssueModel IssueType = iota
	IssueModel3D
	IssueExtend
)

var issueTypeNames = []struct {
	typ  IssueType
	name string
}{
	{IssueModel, "model"},
	{IssueModel3D, "model3d"},
	{IssueExtend, "extend"},
}

func IssueTypeNames() []string {
	names := make([]string, 0, len(issueTypeNames))
	for _, e := range issueTypeNames {
		names = append(names, e.name)
	}
	return names
}

func ParseIssueType(s string) (IssueType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, e := range issueTypeNames {
		if e.name == s {
			return e.typ, nil
		}
	}
	return 0, fmt.Errorf("%q is not a valid issue type (want one of %s)", s, strings.Join(IssueTypeNames(), ", "))
}

func (t IssueType) String() string {
	for _, e := range issueTypeNames {
		if e.typ == t {
			return e.name
		}
	}
	return fmt.Sprintf("IssueType(%d)", int(t))
}

// Set implements pflag.Value.
func (t *IssueType) Set(s string) error {
	v, err := ParseIssueType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Type implements pflag.Value.
func (t *IssueType) Type() string {
	return "issue-type"
}

// noResponse is what issue forms write for an empty optional field.
const noResponse = "_No response_"

// field is an issue form section, known by its English and Japanese headings.
type field struct {
	label    string
	headings []string
}

var (
	fieldMaterials = field{"materials", []string{"Materials", "マテリアル"}}
	fieldName      = field{"custom model data", []string{"Custom Model Data", "カスタムモデルデータ名"}}
	fieldImageURL  = field{"image URL", []string{"Image URL", "画像URL"}}
	fieldParent    = field{"model parent", []string{"Model Parent", "モデル親"}}
	fieldFrametime = field{"frametime", []string{"Frametime", "Frametime（アニメーション用・任意）"}}
	fieldModelJSON = field{"model JSON URL", []string{"Model JSON URL", "モデルJSONのURL"}}
	fieldLayers    = field{"layer image URLs", []string{"Layer Image URLs", "レイヤー画像のURLリスト"}}
)

// ParsedIssue is the request carried by an issue body. Which fields are
// set depends on Type.
type ParsedIssue struct {
	Type      IssueType `json:"type"`
	Materials []string  `json:"materials" validate:"required,min=1,dive,snake_case"`
	Name      string    `json:"custom_model_data" validate:"required,snake_case"`

	ImageURL  string        `json:"image_url,omitempty" validate:"omitempty,http_url"`
	Parent    schema.Parent `json:"parent"`
	Frametime *uint32       `json:"frametime,omitempty"`

	ModelJSONURL string   `json:"model_json_url,omitempty" validate:"omitempty,http_url"`
	LayerURLs    []string `json:"layer_urls,omitempty" validate:"omitempty,dive,http_url"`
}

// ParseIssue extracts a request from an issue form body.
func ParseIssue(body string, typ IssueType) (*ParsedIssue, error) {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	p := &ParsedIssue{Type: typ, Parent: schema.DefaultParent}

	materials, err := required(body, fieldMaterials)
	if err != nil {
		return nil, err
	}
	p.Materials = splitList(materials, ",")
	if len(p.Materials) == 0 {
		return nil, apperr.Validation("at least one material is required", materials)
	}

	if p.Name, err = required(body, fieldName); err != nil {
		return nil, err
	}

	switch typ {
	case IssueModel:
		if p.ImageURL, err = required(body, fieldImageURL); err != nil {
			return nil, err
		}
		if s, ok := optional(body, fieldParent); ok {
			if p.Parent, err = schema.ParseParent(s); err != nil {
				return nil, apperr.Validation(err.Error(), s)
			}
		}
		if s, ok := optional(body, fieldFrametime); ok {
			n, err := strconv.ParseUint(s, 10, 32)
			if err != nil || n == 0 {
				return nil, apperr.Validation("frametime must be a positive integer", s)
			}
			ft := uint32(n)
			p.Frametime = &ft
		}

	case IssueModel3D:
		if p.ModelJSONURL, err = required(body, fieldModelJSON); err != nil {
			return nil, err
		}
		layers, err := required(body, fieldLayers)
		if err != nil {
			return nil, err
		}
		p.LayerURLs = splitList(layers, "\n")

	case IssueExtend:

	default:
		return nil, apperr.Validation("unknown issue type", typ.String())
	}

	if err := validation.New().ValidateStruct(p).Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// Outputs are the step outputs describing the request.
func (p *ParsedIssue) Outputs() []Output {
	out := []Output{
		{"issue_type", p.Type.String()},
		{"materials", strings.Join(p.Materials, ",")},
		{"custom_model_data", p.Name},
	}
	if p.ImageURL != "" {
		out = append(out, Output{"image_url", p.ImageURL})
	}
	return out
}

func required(body string, f field) (string, error) {
	v, ok := optional(body, f)
	if !ok {
		return "", apperr.Validation(f.label+" is required", "")
	}
	return v, nil
}

// optional returns the trimmed section text. ok is false when the section
// is absent, empty or "_No response_".
func optional(body string, f field) (string, bool) {
	for _, h := range f.headings {
		v, found := extractSection(body, h)
		if !found {
			continue
		}
		if v == "" || v == noResponse {
			return "", false
		}
		return v, true
	}
	return "", false
}

// extractSection returns the first text block after "### heading": leading
// blank lines are skipped and the block ends at a blank line, the next
// heading or the end of the body.
func extractSection(body, heading string) (string, bool) {
	re := regexp.MustCompile(`(?m)^###[ \t]*` + regexp.QuoteMeta(heading) + `[ \t]*$`)
	loc := re.FindStringIndex(body)
	if loc == nil {
		return "", false
	}

	var block []string
	for _, line := range strings.Split(body[loc[1]:], "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "###") {
			break
		}
		if trimmed == "" {
			if len(block) > 0 {
				break
			}
			continue
		}
		block = append(block, trimmed)
	}
	return strings.Join(block, "\n"), true
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
