package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/imagecheck"
	"evalgo.org/packsmith/internal/jsonstore"
)

// DefaultMaxDownloadBytes caps a single download.
const DefaultMaxDownloadBytes = 10 << 20

// Downloader fetches issue attachments.
type Downloader struct {
	client    *http.Client
	maxBytes  int64
	userAgent string
	logger    zerolog.Logger
}

// NewDownloader creates a Downloader. A zero timeout or size cap selects
// the defaults.
func NewDownloader(timeout time.Duration, maxBytes int64, logger zerolog.Logger) *Downloader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDownloadBytes
	}
	return &Downloader{
		client:    &http.Client{Timeout: timeout},
		maxBytes:  maxBytes,
		userAgent: "packsmith-downloader",
		logger:    logger.With().Str("component", "downloader").Logger(),
	}
}

// Fetch returns the body of url. Non-2xx responses and bodies over the
// size cap are errors.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperr.Validation("invalid download URL", url)
	}
	req.Header.Set("User-Agent", d.userAgent)

	d.logger.Info().Str("url", url).Msg("Downloading")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to download %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, apperr.Validation(fmt.Sprintf("download exceeds %d bytes", d.maxBytes), url)
	}
	return data, nil
}

// DownloadImage fetches a PNG to dest. Anything that does not decode as PNG
// is rejected before it is written.
func (d *Downloader) DownloadImage(ctx context.Context, url, dest string) error {
	data, err := d.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if _, err := imagecheck.Decode(url, data); err != nil {
		return err
	}
	return jsonstore.WriteFile(dest, data, 0o644)
}

// DownloadJSON fetches a JSON document to dest.
func (d *Downloader) DownloadJSON(ctx context.Context, url, dest string) error {
	data, err := d.Fetch(ctx, url)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return apperr.New(apperr.KindParse, "downloaded model is not valid JSON", url)
	}
	return jsonstore.WriteFile(dest, data, 0o644)
}
