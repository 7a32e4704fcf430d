package integrity

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/schema"
	"evalgo.org/packsmith/internal/validation"
)

const animationSuffix = ".png.mcmeta"

func (s *Service) newIssue(typ IssueType, severity Severity, path, subject, description string) Issue {
	return Issue{
		ID:          uuid.New().String(),
		Type:        typ,
		Severity:    severity,
		File:        s.paths.Rel(path),
		Subject:     subject,
		Description: description,
		DetectedAt:  s.now(),
	}
}

// scanItems checks every item file.
func (s *Service) scanItems(_ context.Context) ([]Issue, int, error) {
	names, err := listJSON(s.paths.ItemsDir())
	if err != nil {
		return nil, 0, err
	}

	var issues []Issue
	for _, material := range names {
		path := s.paths.ItemPath(material)

		if !validation.IsSnakeCase(material) {
			issues = append(issues, s.newIssue(IssueTypeInvalidName, SeverityLow, path, material,
				fmt.Sprintf("material file name %q is not snake_case", material)))
		}

		resource, err := jsonstore.Read[schema.ItemResource](path)
		if err != nil {
			issues = append(issues, s.unreadable(path, material, err))
			continue
		}

		if dupes := repeatedCases(resource.CaseNames()); len(dupes) > 0 {
			issue := s.newIssue(IssueTypeDuplicateCase, SeverityMedium, path, material,
				fmt.Sprintf("cases repeated: %s", strings.Join(dupes, ", ")))
			issue.Details = map[string]interface{}{"models": dupes}
			issue.SuggestedResolution = &Resolution{
				Risk:        RiskLow,
				Description: "Keep the first case of each model",
				Operations: []RepairOperation{{
					ID:     uuid.New().String(),
					Type:   OpDedupeCases,
					File:   issue.File,
					Action: "Remove repeated cases",
					Risk:   RiskLow,
				}},
			}
			issues = append(issues, issue)
		}

		seen := make(map[string]bool)
		for _, model := range resource.CaseNames() {
			if seen[model] {
				continue
			}
			seen[model] = true
			if jsonstore.Exists(s.paths.ModelPath(model)) {
				continue
			}
			issue := s.newIssue(IssueTypeDanglingCase, SeverityHigh, path, material,
				fmt.Sprintf("case %q names a missing model", model))
			issue.Details = map[string]interface{}{"model": model}
			issue.SuggestedResolution = &Resolution{
				Risk:        RiskMedium,
				Description: fmt.Sprintf("Remove the case for %s", model),
				Operations: []RepairOperation{{
					ID:     uuid.New().String(),
					Type:   OpRemoveCase,
					File:   issue.File,
					Model:  model,
					Action: fmt.Sprintf("Remove case %s", model),
					Risk:   RiskMedium,
				}},
			}
			issues = append(issues, issue)
		}
	}

	return issues, len(names), nil
}

// scanModels checks every model file.
func (s *Service) scanModels(_ context.Context) ([]Issue, int, error) {
	names, err := listJSON(s.paths.ModelsDir())
	if err != nil {
		return nil, 0, err
	}

	var issues []Issue
	for _, name := range names {
		path := s.paths.ModelPath(name)

		if !validation.IsSnakeCase(name) {
			issues = append(issues, s.newIssue(IssueTypeInvalidName, SeverityLow, path, name,
				fmt.Sprintf("model name %q is not snake_case", name)))
		}

		if _, err := jsonstore.Read[map[string]interface{}](path); err != nil {
			issues = append(issues, s.unreadable(path, name, err))
			continue
		}

		if !jsonstore.Exists(s.paths.TexturePath(name)) && !hasLayers(s.paths.TextureDir(name)) {
			issues = append(issues, s.newIssue(IssueTypeMissingTexture, SeverityHigh, path, name,
				fmt.Sprintf("model %q has no texture or layer textures", name)))
		}
	}

	return issues, len(names), nil
}

// scanAnimations finds animation metadata whose texture is gone.
func (s *Service) scanAnimations(_ context.Context) ([]Issue, int, error) {
	dir := s.paths.TexturesDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, apperr.IO("read directory", dir, err)
	}

	var issues []Issue
	scanned := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), animationSuffix) {
			continue
		}
		scanned++
		name := strings.TrimSuffix(e.Name(), animationSuffix)
		path := filepath.Join(dir, e.Name())

		if jsonstore.Exists(s.paths.TexturePath(name)) {
			if _, err := jsonstore.Read[schema.AnimationInfo](path); err != nil {
				issues = append(issues, s.unreadable(path, name, err))
			}
			continue
		}

		issue := s.newIssue(IssueTypeOrphanAnimation, SeverityMedium, path, name,
			fmt.Sprintf("animation metadata for %q has no texture", name))
		issue.SuggestedResolution = &Resolution{
			Risk:        RiskMedium,
			Description: "Delete the stray metadata file",
			Operations: []RepairOperation{{
				ID:     uuid.New().String(),
				Type:   OpDeleteFile,
				File:   issue.File,
				Action: "Delete " + e.Name(),
				Risk:   RiskMedium,
			}},
		}
		issues = append(issues, issue)
	}

	return issues, scanned, nil
}

func (s *Service) unreadable(path, subject string, err error) Issue {
	issue := s.newIssue(IssueTypeUnreadable, SeverityHigh, path, subject, "file cannot be parsed")
	issue.Details = map[string]interface{}{"error": err.Error()}
	return issue
}

// repeatedCases returns the names that occur more than once, sorted.
func repeatedCases(names []string) []string {
	counts := make(map[string]int, len(names))
	for _, n := range names {
		counts[n]++
	}
	var dupes []string
	for n, c := range counts {
		if c > 1 {
			dupes = append(dupes, n)
		}
	}
	sort.Strings(dupes)
	return dupes
}

func listJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperr.IO("read directory", dir, err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return names, nil
}

func hasLayers(dir string) bool {
	found := false
	_ = filepath.WalkDir(dir, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(d.Name()) == ".png" {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}
