// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape implements phase 1 of the pipeline: fetch a proceedings
// listing per year, resolve each paper's PDF link, and download the PDFs.
// Every stage writes its output to a JSON checkpoint in the work directory
// and the next stage reads that checkpoint back, so stages can be rerun
// independently.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/httputil"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// YearResult holds the outcome of phase 1 for one year.
type YearResult struct {
	Year       int
	Listed     int
	Resolved   int
	Unresolved int
	Downloaded int
	Failed     int

	// Aborted is set when a stage could not run for this year, e.g.
	// because its input checkpoint was missing.
	Aborted bool
}

// BatchResult holds the outcome of a phase 1 run.
type BatchResult struct {
	Years []YearResult
}

// HasFailures reports whether any year aborted or any download failed.
func (r BatchResult) HasFailures() bool {
	for _, y := range r.Years {
		if y.Aborted || y.Failed > 0 {
			return true
		}
	}
	return false
}

// Pipeline runs the phase 1 stages. One Fetcher, and so one request pool,
// serves every stage and every year.
type Pipeline struct {
	Fetcher *httputil.Fetcher
	Config  types.ScrapeConfig
	Log     *zap.Logger
}

// Run fetches all listings concurrently, then resolves and downloads each
// year in turn. A failing year never stops its siblings. A per-year
// summary line is written to w.
func (p *Pipeline) Run(ctx context.Context, years []int, w io.Writer) BatchResult {
	results := httputil.Batch(ctx, years, func(ctx context.Context, _ int, year int) YearResult {
		res := YearResult{Year: year}
		n, err := p.FetchListing(ctx, year)
		if err != nil {
			p.yearLog(year).Warn("listing stage failed", zap.Error(err))
		}
		res.Listed = n
		return res
	})

	for i := range results {
		res := &results[i]

		resolved, unresolved, err := p.ResolveLinks(ctx, res.Year)
		if err != nil {
			p.yearLog(res.Year).Warn("resolve stage aborted", zap.Error(err))
			res.Aborted = true
			fmt.Fprintf(w, "year %d: aborted (%v)\n", res.Year, err)
			continue
		}
		res.Resolved, res.Unresolved = resolved, unresolved

		downloaded, failed, err := p.DownloadPDFs(ctx, res.Year)
		if err != nil {
			p.yearLog(res.Year).Warn("download stage aborted", zap.Error(err))
			res.Aborted = true
			fmt.Fprintf(w, "year %d: aborted (%v)\n", res.Year, err)
			continue
		}
		res.Downloaded, res.Failed = downloaded, failed

		fmt.Fprintf(w, "year %d: %d listed, %d resolved, %d without link, %d downloaded, %d failed\n",
			res.Year, res.Listed, res.Resolved, res.Unresolved, res.Downloaded, res.Failed)
	}

	return BatchResult{Years: results}
}

// FetchListing downloads the year's listing page, saves it to
// page_<year>.html and writes the extracted records to papers_<year>.json.
// A failed fetch writes nothing and reports zero papers.
func (p *Pipeline) FetchListing(ctx context.Context, year int) (int, error) {
	url := ListingURL(p.baseURL(), p.Config.ListingPath, year)
	html, ok := p.Fetcher.Fetch(ctx, url, p.Config.PageTimeout)
	if !ok {
		return 0, nil
	}

	if err := os.MkdirAll(p.workDir(), 0o755); err != nil {
		return 0, fmt.Errorf("creating work directory: %w", err)
	}

	papers := ExtractListing(html, p.baseURL())
	p.yearLog(year).Info("found papers", zap.Int("count", len(papers)))

	if err := WriteJSON(PapersPath(p.workDir(), year), papers); err != nil {
		return 0, err
	}
	if err := WriteFile(PageHTMLPath(p.workDir(), year), html); err != nil {
		return len(papers), err
	}
	return len(papers), nil
}

// ResolveLinks reads papers_<year>.json, resolves every PDF link through
// the shared pool and writes pdf_links_<year>.json in listing order.
func (p *Pipeline) ResolveLinks(ctx context.Context, year int) (resolved, unresolved int, err error) {
	var papers []types.PaperRecord
	if err := ReadJSON(PapersPath(p.workDir(), year), &papers); err != nil {
		return 0, 0, err
	}

	p.yearLog(year).Info("resolving PDF links", zap.Int("papers", len(papers)))

	r := &Resolver{
		Fetcher: p.Fetcher,
		BaseURL: p.baseURL(),
		Timeout: p.Config.PageTimeout,
		Log:     p.yearLog(year),
	}
	links := httputil.Batch(ctx, papers, func(ctx context.Context, _ int, paper types.PaperRecord) types.PdfLinkRecord {
		return r.Resolve(ctx, paper)
	})
	if links == nil {
		links = []types.PdfLinkRecord{}
	}

	for _, l := range links {
		if l.HasPDF() {
			resolved++
		} else {
			unresolved++
		}
	}

	if err := WriteJSON(PDFLinksPath(p.workDir(), year), links); err != nil {
		return resolved, unresolved, err
	}
	return resolved, unresolved, nil
}

// DownloadPDFs reads pdf_links_<year>.json and downloads every record that
// has a link through the shared pool.
func (p *Pipeline) DownloadPDFs(ctx context.Context, year int) (downloaded, failed int, err error) {
	var links []types.PdfLinkRecord
	if err := ReadJSON(PDFLinksPath(p.workDir(), year), &links); err != nil {
		return 0, 0, err
	}

	var pending []types.PdfLinkRecord
	for _, l := range links {
		if l.HasPDF() {
			pending = append(pending, l)
		}
	}

	d := &Downloader{
		Fetcher: p.Fetcher,
		WorkDir: p.workDir(),
		Timeout: p.Config.PDFTimeout,
		Log:     p.yearLog(year),
	}
	oks := httputil.Batch(ctx, pending, func(ctx context.Context, _ int, rec types.PdfLinkRecord) bool {
		_, ok := d.Download(ctx, rec, year)
		return ok
	})

	for _, ok := range oks {
		if ok {
			downloaded++
		} else {
			failed++
		}
	}
	return downloaded, failed, nil
}

// IsCheckpointMissing reports whether err came from a missing checkpoint.
func IsCheckpointMissing(err error) bool {
	return errors.Is(err, ErrCheckpointMissing)
}

func (p *Pipeline) baseURL() string {
	if p.Config.BaseURL == "" {
		return DefaultBaseURL
	}
	return p.Config.BaseURL
}

func (p *Pipeline) yearLog(year int) *zap.Logger {
	return logger(p.Log).With(zap.Int("year", year))
}

func (p *Pipeline) workDir() string {
	if p.Config.WorkDir == "" {
		return "."
	}
	return p.Config.WorkDir
}
