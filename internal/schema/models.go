package schema

import (
	"fmt"
	"strconv"
)

// ItemModel is assets/minecraft/models/item/<name>.json.
type ItemModel struct {
	Parent   *Parent  `json:"parent,omitempty"`
	Textures Textures `json:"textures"`
}

// Textures maps a layer key to a texture reference. encoding/json writes map
// keys sorted, which keeps files stable across rewrites.
type Textures map[string]string

// NewItemModel builds a 2D model with a single layer0 texture.
func NewItemModel(parent Parent, name string) *ItemModel {
	p := parent
	return &ItemModel{
		Parent:   &p,
		Textures: Textures{"layer0": ModelReference(name)},
	}
}

// LayerReference is the texture reference of a 3D model layer.
func LayerReference(name string, index int) string {
	return fmt.Sprintf("item/%s/%d", name, index)
}

// NumericKeys counts keys made only of ASCII digits.
func (t Textures) NumericKeys() int {
	n := 0
	for k := range t {
		if isDigits(k) {
			n++
		}
	}
	return n
}

// OverwriteLayers counts the numeric keys, clears the map and writes keys
// "0".."N-1" pointing at the layer textures of name. It returns N.
// Non-numeric keys such as "particle" are dropped and not counted.
func (t Textures) OverwriteLayers(name string) int {
	n := t.NumericKeys()
	for k := range t {
		delete(t, k)
	}
	for i := 0; i < n; i++ {
		t[strconv.Itoa(i)] = LayerReference(name, i)
	}
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
