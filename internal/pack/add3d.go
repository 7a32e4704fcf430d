package pack

import (
	"fmt"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/imagecheck"
	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/schema"
)

// AddModel3DRequest describes a new 3D model built from a template.
type AddModel3DRequest struct {
	Materials []string `json:"materials" validate:"required,min=1,dive,snake_case"`
	Name      string   `json:"name" validate:"required,snake_case"`

	// TemplatePath is a model JSON whose numeric texture keys are placeholders
	TemplatePath string `json:"template_path" validate:"required"`

	// Layers are the layer textures, in key order "0", "1", ...
	Layers []string `json:"layers" validate:"required,min=1,dive,required"`
}

type templateTextures struct {
	Textures schema.Textures `json:"textures"`
}

// AddModel3D writes a 3D model from a template, rewriting its texture keys
// to point at the supplied layers, copies the layers into the pack and
// registers the model on every requested material.
func (s *Service) AddModel3D(req AddModel3DRequest) (*AddResult, error) {
	if err := s.validator.ValidateStruct(req).Err(); err != nil {
		return nil, err
	}

	modelPath := s.paths.ModelPath(req.Name)
	if jsonstore.Exists(modelPath) {
		return nil, apperr.Conflict("model already exists, use `extend` to add materials to it", modelPath)
	}

	// The template is kept as an opaque document so that elements, display
	// transforms and any unknown keys pass through untouched.
	doc, err := jsonstore.Read[map[string]interface{}](req.TemplatePath)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	// Only textures is decoded; template parents such as "block/block"
	// are outside the 2D parent set and stay in the opaque document.
	typed, err := jsonstore.Read[templateTextures](req.TemplatePath)
	if err != nil {
		return nil, err
	}
	if typed.Textures == nil {
		typed.Textures = schema.Textures{}
	}

	layerCount := typed.Textures.OverwriteLayers(req.Name)
	if layerCount != len(req.Layers) {
		mismatch := apperr.Mismatch("layer count", layerCount, len(req.Layers))
		mismatch.Details = fmt.Sprintf("template %s has %d numeric texture keys but %d layer images were given",
			req.TemplatePath, layerCount, len(req.Layers))
		return nil, mismatch
	}

	textures := make(map[string]interface{}, len(typed.Textures))
	for k, v := range typed.Textures {
		textures[k] = v
	}
	delete(doc, "textures")
	merged := jsonstore.Merge(doc, map[string]interface{}{"textures": textures})

	log := s.logger.With().Str("model", req.Name).Logger()
	log.Info().Int("layers", layerCount).Msg("Adding 3D model")

	if err := jsonstore.Write(modelPath, merged); err != nil {
		return nil, err
	}

	result := &AddResult{
		Name:      req.Name,
		ModelPath: modelPath,
	}

	for i, layer := range req.Layers {
		if !jsonstore.Exists(layer) {
			return result, apperr.NotFound(fmt.Sprintf("layer image %d", i), layer)
		}
		if _, err := imagecheck.Open(layer); err != nil {
			return result, fmt.Errorf("layer %d: %w", i, err)
		}
		dst := s.paths.TextureLayerPath(req.Name, i)
		if err := jsonstore.CopyFile(layer, dst); err != nil {
			return result, err
		}
		result.TexturePaths = append(result.TexturePaths, dst)
		log.Debug().Int("layer", i).Str("path", dst).Msg("Copied layer texture")
	}

	result.Materials, err = s.updateMaterials(req.Materials, req.Name)
	if err != nil {
		return result, err
	}

	return result, nil
}
