// Package pack implements the operations that register custom models in a
// resource pack: adding 2D and 3D models and extending existing models to
// further materials.
//
// Every operation re-reads, mutates and rewrites the JSON records it touches.
// Nothing is cached between operations and no file locks are taken, so two
// processes working on the same pack at the same time can lose an update to
// a shared material file. Callers are expected to serialize invocations.
//
// Material updates are applied one material at a time. When a later material
// fails, the materials already written stay written; each update is
// idempotent, so rerunning the operation completes the rest.
package pack

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/materials"
	"evalgo.org/packsmith/internal/paths"
	"evalgo.org/packsmith/internal/schema"
	"evalgo.org/packsmith/internal/validation"
)

// Service performs pack mutations under one root.
type Service struct {
	paths     paths.Resolver
	catalog   materials.Loader
	validator *validation.Validator
	logger    zerolog.Logger
}

// NewService creates a Service. catalog is invoked when a 2D model is added
// and when a material file has to be created; it may be nil, in which case
// materials are not checked and new ones fall back to minecraft:item/<material>.
func NewService(resolver paths.Resolver, catalog materials.Loader, logger zerolog.Logger) *Service {
	return &Service{
		paths:     resolver,
		catalog:   catalog,
		validator: validation.New(),
		logger:    logger.With().Str("component", "pack").Logger(),
	}
}

// Paths exposes the resolver used by the service.
func (s *Service) Paths() paths.Resolver {
	return s.paths
}

// MaterialUpdate reports what happened to each material.
type MaterialUpdate struct {
	// Added lists materials that gained a case
	Added []string `json:"added"`

	// Skipped lists materials that already had the case
	Skipped []string `json:"skipped,omitempty"`
}

// updateMaterials registers name on every material, in order.
func (s *Service) updateMaterials(materialNames []string, name string) (MaterialUpdate, error) {
	var update MaterialUpdate
	for _, material := range materialNames {
		added, err := s.applyCase(material, name)
		if err != nil {
			return update, fmt.Errorf("material %s: %w", material, err)
		}
		if added {
			update.Added = append(update.Added, material)
		} else {
			update.Skipped = append(update.Skipped, material)
		}
	}
	return update, nil
}

// applyCase reads or creates the item resource of material and appends a
// case for name unless one exists. It reports whether the file changed.
func (s *Service) applyCase(material, name string) (bool, error) {
	path := s.paths.ItemPath(material)

	var resource *schema.ItemResource
	if jsonstore.Exists(path) {
		existing, err := jsonstore.Read[schema.ItemResource](path)
		if err != nil {
			return false, err
		}
		resource = &existing
	} else {
		fallback, err := s.fallbackFor(material)
		if err != nil {
			return false, err
		}
		resource = schema.NewItemResource(fallback)
		s.logger.Debug().
			Str("material", material).
			Str("fallback", fallback).
			Msg("Creating item resource")
	}

	if resource.HasCase(name) {
		s.logger.Warn().
			Str("material", material).
			Str("model", name).
			Msg("Material already has this model, skipping")
		return false, nil
	}

	resource.AddCase(name)
	if err := jsonstore.Write(path, resource); err != nil {
		return false, err
	}

	s.logger.Info().
		Str("material", material).
		Str("model", name).
		Msg("Registered model on material")
	return true, nil
}

// fallbackFor picks the fallback model of a material that has no item file
// yet: the catalog entry when there is one, else minecraft:item/<material>.
func (s *Service) fallbackFor(material string) (string, error) {
	literal := "minecraft:item/" + material
	if s.catalog == nil {
		return literal, nil
	}

	mapping, err := s.catalog()
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.logger.Debug().Err(err).Msg("Material catalog not available")
			return literal, nil
		}
		return "", fmt.Errorf("load material catalog: %w", err)
	}

	if fallback, err := mapping.ResolveFallback(material); err == nil {
		return fallback, nil
	}
	return literal, nil
}

// requireCatalogued rejects materials the catalog does not list. 2D models are
// only registered on materials the catalog knows.
func (s *Service) requireCatalogued(materialNames []string) error {
	if s.catalog == nil {
		return nil
	}

	mapping, err := s.catalog()
	if err != nil {
		return fmt.Errorf("load material catalog: %w", err)
	}

	var unknown []string
	for _, material := range materialNames {
		if !mapping.Contains(material) {
			unknown = append(unknown, material)
		}
	}
	if len(unknown) > 0 {
		return apperr.Validation("unsupported material", strings.Join(unknown, ", "))
	}
	return nil
}
