// Package schema defines the JSON records that register a custom model in a
// resource pack: the per-material item resource, the per-model item model and
// the optional animation metadata.
package schema

const (
	// SelectType selects a model by a component property
	SelectType = "minecraft:select"

	// CustomModelDataProperty is the property selected on
	CustomModelDataProperty = "minecraft:custom_model_data"

	// ModelType references a model file
	ModelType = "minecraft:model"
)

// ItemResource is assets/minecraft/items/<material>.json.
type ItemResource struct {
	Model ItemSelector `json:"model"`
}

// ItemSelector picks a model by custom model data.
type ItemSelector struct {
	Type     string     `json:"type"`
	Property string     `json:"property"`
	Fallback ModelRef   `json:"fallback"`
	Cases    []ItemCase `json:"cases"`
}

// ModelRef points at a model file.
type ModelRef struct {
	Type  string `json:"type"`
	Model string `json:"model"`
}

// ItemCase maps one custom model data value to a model.
type ItemCase struct {
	When  string   `json:"when"`
	Model ModelRef `json:"model"`
}

// NewItemResource returns a resource with no cases and the given fallback.
func NewItemResource(fallback string) *ItemResource {
	return &ItemResource{
		Model: ItemSelector{
			Type:     SelectType,
			Property: CustomModelDataProperty,
			Fallback: ModelRef{Type: ModelType, Model: fallback},
			Cases:    []ItemCase{},
		},
	}
}

// NewItemCase builds the case for model name.
func NewItemCase(name string) ItemCase {
	return ItemCase{
		When:  name,
		Model: ModelRef{Type: ModelType, Model: ModelReference(name)},
	}
}

// ModelReference is the pack-relative reference to a model or 2D texture.
func ModelReference(name string) string {
	return "item/" + name
}

// AddCase appends a case for name. It does not check for duplicates;
// callers use HasCase first.
func (r *ItemResource) AddCase(name string) {
	r.Model.Cases = append(r.Model.Cases, NewItemCase(name))
}

// HasCase reports whether a case for name exists.
func (r *ItemResource) HasCase(name string) bool {
	for _, c := range r.Model.Cases {
		if c.When == name {
			return true
		}
	}
	return false
}

// CaseNames returns the `when` values in order.
func (r *ItemResource) CaseNames() []string {
	names := make([]string, 0, len(r.Model.Cases))
	for _, c := range r.Model.Cases {
		names = append(names, c.When)
	}
	return names
}

// DedupeCases drops every case whose `when` repeats an earlier one and
// returns how many were removed.
func (r *ItemResource) DedupeCases() int {
	seen := make(map[string]struct{}, len(r.Model.Cases))
	kept := r.Model.Cases[:0]
	for _, c := range r.Model.Cases {
		if _, ok := seen[c.When]; ok {
			continue
		}
		seen[c.When] = struct{}{}
		kept = append(kept, c)
	}
	removed := len(r.Model.Cases) - len(kept)
	r.Model.Cases = kept
	return removed
}

// RemoveCase drops every case for name and returns how many were removed.
func (r *ItemResource) RemoveCase(name string) int {
	kept := r.Model.Cases[:0]
	for _, c := range r.Model.Cases {
		if c.When != name {
			kept = append(kept, c)
		}
	}
	removed := len(r.Model.Cases) - len(kept)
	r.Model.Cases = kept
	return removed
}
