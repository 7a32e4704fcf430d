package apperr

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "error with details",
			err:  &Error{Kind: KindValidation, Message: "invalid name", Details: "Abc"},
			want: "invalid name: Abc",
		},
		{
			name: "error without details",
			err:  &Error{Kind: KindConflict, Message: "model exists"},
			want: "model exists",
		},
		{
			name: "error with cause",
			err:  &Error{Kind: KindIO, Message: "failed to write", Details: "a.json", Err: os.ErrPermission},
			want: "failed to write: a.json: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotFound(t *testing.T) {
	err := NotFound("model", "assets/minecraft/models/item/sword.json")

	if err.Kind != KindNotFound {
		t.Errorf("NotFound().Kind = %v, want %v", err.Kind, KindNotFound)
	}
	if err.Message != "model not found" {
		t.Errorf("NotFound().Message = %v, want %v", err.Message, "model not found")
	}
	if p, ok := err.Context["path"].(string); !ok || p != "assets/minecraft/models/item/sword.json" {
		t.Errorf("NotFound().Context['path'] = %v", p)
	}
}

func TestMismatch(t *testing.T) {
	err := Mismatch("layer count", 2, 3)

	if err.Error() != "layer count mismatch: expected 2, got 3" {
		t.Errorf("Mismatch().Error() = %v", err.Error())
	}
}

func TestIs(t *testing.T) {
	base := Conflict("model already exists", "sword")
	wrapped := fmt.Errorf("add model: %w", base)

	if !Is(wrapped, KindConflict) {
		t.Error("Is(wrapped, KindConflict) = false, want true")
	}
	if Is(wrapped, KindNotFound) {
		t.Error("Is(wrapped, KindNotFound) = true, want false")
	}
	if Is(errors.New("plain"), KindConflict) {
		t.Error("Is(plain, KindConflict) = true, want false")
	}
	if KindOf(wrapped) != KindConflict {
		t.Errorf("KindOf(wrapped) = %v, want %v", KindOf(wrapped), KindConflict)
	}
}

func TestUnwrap(t *testing.T) {
	err := IO("read file", "x.json", os.ErrNotExist)
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is(IO(..., os.ErrNotExist), os.ErrNotExist) = false")
	}
}
