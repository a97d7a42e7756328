// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/httputil"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// Downloader stores PDF bodies under <WorkDir>/pdf_<year>/.
type Downloader struct {
	Fetcher *httputil.Fetcher
	WorkDir string
	Timeout time.Duration
	Log     *zap.Logger
}

// Download fetches rec's PDF and writes it to <sanitized-title>.pdf,
// replacing any existing file of that name. Records without a link are
// a no-op. It reports the written path and whether a file was written.
func (d *Downloader) Download(ctx context.Context, rec types.PdfLinkRecord, year int) (string, bool) {
	if !rec.HasPDF() {
		return "", false
	}

	body, ok := d.Fetcher.Fetch(ctx, *rec.PDFLink, d.Timeout)
	if !ok {
		return "", false
	}

	dir := PDFDir(d.WorkDir, year)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger(d.Log).Warn("creating PDF directory failed", zap.String("dir", dir), zap.Error(err))
		return "", false
	}

	path := PDFPath(d.WorkDir, year, rec.Title)
	if err := WriteFile(path, body); err != nil {
		logger(d.Log).Warn("writing PDF failed", zap.String("title", rec.Title), zap.Error(err))
		return "", false
	}

	logger(d.Log).Info("downloaded", zap.String("title", rec.Title), zap.Int("bytes", len(body)))
	return path, true
}
