package pack

import (
	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/jsonstore"
)

// ExtendRequest attaches an existing model to more materials.
type ExtendRequest struct {
	Materials []string `json:"materials" validate:"required,min=1,dive,snake_case"`
	Name      string   `json:"name" validate:"required,snake_case"`
}

// ExtendResult reports the materials touched by Extend.
type ExtendResult struct {
	Name      string         `json:"name"`
	Materials MaterialUpdate `json:"materials"`
}

// Extend registers an existing model on more materials. Only the model file
// has to exist; 3D models have no single texture file.
func (s *Service) Extend(req ExtendRequest) (*ExtendResult, error) {
	if err := s.validator.ValidateStruct(req).Err(); err != nil {
		return nil, err
	}

	modelPath := s.paths.ModelPath(req.Name)
	if !jsonstore.Exists(modelPath) {
		return nil, apperr.NotFound("model "+req.Name, modelPath)
	}

	s.logger.Info().
		Str("model", req.Name).
		Strs("materials", req.Materials).
		Msg("Extending model")

	update, err := s.updateMaterials(req.Materials, req.Name)
	result := &ExtendResult{Name: req.Name, Materials: update}
	if err != nil {
		return result, err
	}
	return result, nil
}
