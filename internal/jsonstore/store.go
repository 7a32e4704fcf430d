// Package jsonstore reads, writes and merges JSON records on disk.
//
// Writes are pretty-printed with two-space indentation and a trailing
// newline. A write goes to a temporary file in the target directory which is
// then renamed over the target, so a failed write leaves either the previous
// content or no file at all.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"evalgo.org/packsmith/internal/apperr"
)

// Read decodes the JSON file at path into a T.
// A missing file is a NotFound error, any other read failure is an IO error
// and malformed content is a Parse error.
func Read[T any](path string) (T, error) {
	var v T

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return v, &apperr.Error{
				Kind:    apperr.KindNotFound,
				Message: "file not found",
				Details: path,
				Err:     err,
			}
		}
		return v, apperr.IO("read file", path, err)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, apperr.Parse("JSON", path, err)
	}

	return v, nil
}

// Write encodes v and replaces the file at path, creating parent directories.
func Write(path string, v interface{}) error {
	data, err := Marshal(v)
	if err != nil {
		return apperr.IO("encode JSON", path, err)
	}
	return WriteFile(path, data, 0o644)
}

// Marshal encodes v the way Write stores it.
func Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.IO("create directory", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return apperr.IO("create temp file", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return apperr.IO("write file", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return apperr.IO("write file", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return apperr.IO("chmod file", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return apperr.IO("replace file", path, err)
	}

	return nil
}

// CopyFile copies src to dst through WriteFile.
func CopyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperr.NotFound("file", src)
		}
		return apperr.IO("read file", src, err)
	}
	return WriteFile(dst, data, 0o644)
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Merge folds patch into target. Two objects are merged key by key,
// recursively; any other pairing is replaced by patch. The result is returned
// and target maps are modified in place.
func Merge(target, patch interface{}) interface{} {
	t, tok := target.(map[string]interface{})
	p, pok := patch.(map[string]interface{})
	if !tok || !pok {
		return patch
	}

	for k, pv := range p {
		if tv, exists := t[k]; exists {
			t[k] = Merge(tv, pv)
		} else {
			t[k] = pv
		}
	}
	return t
}
