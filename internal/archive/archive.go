// Package archive packs the resource pack files into a distributable zip.
package archive

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"evalgo.org/packsmith/internal/apperr"
)

// DefaultIncludes are the pack entries shipped to players.
var DefaultIncludes = []string{"assets/", "pack.mcmeta", "pack.png"}

// Result describes a written archive.
type Result struct {
	Output string
	Files  int
	Size   int64
}

// Build zips the files matched by patterns, relative to root, into output.
// A pattern is a path or a doublestar glob; directories are added
// recursively. Every pattern must match something. An existing output is
// replaced only after the new archive is complete.
func Build(root, output string, patterns []string) (*Result, error) {
	if len(patterns) == 0 {
		patterns = DefaultIncludes
	}

	files, err := collect(root, output, patterns)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.IO("create directory", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".packsmith-*.zip")
	if err != nil {
		return nil, apperr.IO("create archive", output, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp, root, files); err != nil {
		tmp.Close()
		return nil, apperr.IO("write archive", output, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, apperr.IO("write archive", output, err)
	}

	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return nil, apperr.IO("remove existing archive", output, err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return nil, apperr.IO("rename archive", output, err)
	}

	st, err := os.Stat(output)
	if err != nil {
		return nil, apperr.IO("stat archive", output, err)
	}
	return &Result{Output: output, Files: len(files), Size: st.Size()}, nil
}

// collect resolves patterns to a sorted, de-duplicated list of regular
// files relative to root.
func collect(root, output string, patterns []string) ([]string, error) {
	fsys := os.DirFS(root)
	skip := ""
	if rel, err := filepath.Rel(root, output); err == nil && !strings.HasPrefix(rel, "..") {
		skip = filepath.ToSlash(rel)
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if p != skip && !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, pattern := range patterns {
		clean := strings.TrimSuffix(filepath.ToSlash(pattern), "/")
		if clean == "" {
			continue
		}
		matches, err := doublestar.Glob(fsys, clean)
		if err != nil {
			return nil, apperr.Validation("invalid include pattern", pattern)
		}
		if len(matches) == 0 {
			return nil, apperr.NotFound("file", filepath.Join(root, clean))
		}

		for _, m := range matches {
			err := fs.WalkDir(fsys, m, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.Type().IsRegular() {
					add(p)
				}
				return nil
			})
			if err != nil {
				return nil, apperr.IO("walk", filepath.Join(root, m), err)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func write(w io.Writer, root string, files []string) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	for _, name := range files {
		if err := addFile(zw, root, name); err != nil {
			return err
		}
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, root, name string) error {
	path := filepath.Join(root, filepath.FromSlash(name))
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, f)
	return err
}
