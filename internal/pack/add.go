package pack

import (
	"path/filepath"
	"strings"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/imagecheck"
	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/schema"
	"evalgo.org/packsmith/internal/validation"
)

// AddModelRequest describes a new 2D model.
type AddModelRequest struct {
	// Materials that should display the model
	Materials []string `json:"materials" validate:"required,min=1,dive,snake_case"`

	// Name is the model name; derived from the image file name when empty
	Name string `json:"name,omitempty"`

	// Frametime marks the texture as animated, in ticks per frame
	Frametime *uint32 `json:"frametime,omitempty" validate:"omitempty,gt=0"`

	// ImagePath is the PNG texture to import
	ImagePath string `json:"image_path" validate:"required"`

	// Parent is the in-hand rendering style
	Parent schema.Parent `json:"parent"`
}

// AddResult lists the files written by an add operation.
type AddResult struct {
	Name          string         `json:"name"`
	ModelPath     string         `json:"model_path"`
	TexturePaths  []string       `json:"texture_paths"`
	AnimationPath string         `json:"animation_path,omitempty"`
	Materials     MaterialUpdate `json:"materials"`
}

// AddModel creates a 2D model from a PNG texture and registers it on every
// requested material.
func (s *Service) AddModel(req AddModelRequest) (*AddResult, error) {
	if err := s.validator.ValidateStruct(req).Err(); err != nil {
		return nil, err
	}
	if err := s.requireCatalogued(req.Materials); err != nil {
		return nil, err
	}

	if !jsonstore.Exists(req.ImagePath) {
		return nil, apperr.NotFound("image", req.ImagePath)
	}

	name, err := resolveName(req.Name, req.ImagePath)
	if err != nil {
		return nil, err
	}

	modelPath := s.paths.ModelPath(name)
	texturePath := s.paths.TexturePath(name)
	if jsonstore.Exists(modelPath) {
		return nil, apperr.Conflict("model already exists, use `extend` to add materials to it", modelPath)
	}
	if jsonstore.Exists(texturePath) {
		return nil, apperr.Conflict("texture already exists, use `extend` to add materials to it", texturePath)
	}

	animated := req.Frametime != nil
	img, err := imagecheck.Open(req.ImagePath)
	if err != nil {
		return nil, err
	}
	if err := img.CheckModel(animated); err != nil {
		return nil, err
	}

	log := s.logger.With().Str("model", name).Logger()
	log.Info().
		Int("width", img.Width).
		Int("height", img.Height).
		Bool("animated", animated).
		Msg("Adding model")

	if err := jsonstore.Write(modelPath, schema.NewItemModel(req.Parent, name)); err != nil {
		return nil, err
	}

	result := &AddResult{
		Name:         name,
		ModelPath:    modelPath,
		TexturePaths: []string{texturePath},
	}

	if animated {
		result.AnimationPath = s.paths.AnimationPath(name)
		if err := jsonstore.Write(result.AnimationPath, schema.NewAnimationInfo(*req.Frametime)); err != nil {
			return nil, err
		}
		log.Debug().
			Uint32("frametime", *req.Frametime).
			Int("frames", img.FrameCount()).
			Msg("Wrote animation metadata")
	}

	if err := jsonstore.CopyFile(req.ImagePath, texturePath); err != nil {
		return nil, err
	}

	result.Materials, err = s.updateMaterials(req.Materials, name)
	if err != nil {
		return result, err
	}

	return result, nil
}

// resolveName lowercases an explicit name or derives one from the image
// file name, and checks it is snake_case.
func resolveName(explicit, imagePath string) (string, error) {
	name := strings.ToLower(explicit)
	if explicit == "" {
		base := filepath.Base(imagePath)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if err := validation.RequireSnakeCase(name); err != nil {
		return "", err
	}
	return name, nil
}
