package runner

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evalgo.org/packsmith/internal/apperr"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

// assetServer serves fixed bodies by path; unknown paths are 404.
func assetServer(t *testing.T, assets map[string][]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := assets[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloader(t *testing.T) {
	var jpg bytes.Buffer
	require.NoError(t, jpeg.Encode(&jpg, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil))

	srv := assetServer(t, map[string][]byte{
		"/ok.png":     encodePNG(t, 16, 16),
		"/photo.png":  jpg.Bytes(),
		"/model.json": []byte(`{"textures":{"0":"x"}}`),
		"/bad.json":   []byte(`{"textures":`),
		"/big.bin":    bytes.Repeat([]byte("x"), 2048),
	})
	d := NewDownloader(5*time.Second, 1024, zerolog.Nop())
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("png", func(t *testing.T) {
		dest := filepath.Join(dir, "ok.png")
		require.NoError(t, d.DownloadImage(ctx, srv.URL+"/ok.png", dest))
		_, err := os.Stat(dest)
		assert.NoError(t, err)
	})

	t.Run("json", func(t *testing.T) {
		dest := filepath.Join(dir, "model.json")
		require.NoError(t, d.DownloadJSON(ctx, srv.URL+"/model.json", dest))
	})

	tests := []struct {
		name string
		run  func(dest string) error
		kind apperr.Kind
	}{
		{"not png", func(dest string) error { return d.DownloadImage(ctx, srv.URL+"/photo.png", dest) }, apperr.KindValidation},
		{"invalid json", func(dest string) error { return d.DownloadJSON(ctx, srv.URL+"/bad.json", dest) }, apperr.KindParse},
		{"too large", func(dest string) error { return d.DownloadJSON(ctx, srv.URL+"/big.bin", dest) }, apperr.KindValidation},
		{"not found", func(dest string) error { return d.DownloadImage(ctx, srv.URL+"/missing.png", dest) }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dest := filepath.Join(dir, "rejected-"+tt.name)
			err := tt.run(dest)
			require.Error(t, err)
			if tt.kind != "" {
				assert.True(t, apperr.Is(err, tt.kind), "got %v", err)
			}
			_, statErr := os.Stat(dest)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}
