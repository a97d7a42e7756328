// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify implements phase 2 of the pipeline: read the first page
// of each downloaded PDF, ask a generative model for a category vocabulary,
// ask it again to label every paper, and merge the labels onto the
// resolution checkpoint.
//
// Phase 2 shares no memory with phase 1. Its only inputs are
// pdf_links_<year>.json and the pdf_<year>/ directory.
package classify

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-sorter/internal/scrape"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// Backend abstracts the generative model so tests can supply a mock.
// Prompts and replies are plain text.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// callWithRetry calls the backend with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		reply, err := backend.Generate(ctx, prompt)
		if err == nil {
			return reply, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// Classifier runs discovery and classification against a backend.
type Classifier struct {
	Backend    Backend
	MaxRetries int

	// Canonicalize maps near-miss labels onto the discovered vocabulary.
	Canonicalize bool

	Log *zap.Logger
}

// Discover asks for five category labels covering papers.
func (c *Classifier) Discover(ctx context.Context, papers []types.PaperText) (types.CategorySet, error) {
	prompt, err := renderDiscoveryPrompt(papers)
	if err != nil {
		return nil, fmt.Errorf("rendering discovery prompt: %w", err)
	}
	c.log().Debug("discovery prompt", zap.String("prompt", prompt))

	reply, err := callWithRetry(ctx, c.Backend, prompt, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("discovering categories: %w", err)
	}
	c.log().Debug("discovery reply", zap.String("reply", reply))

	cats := ParseCategoryList(reply)
	if len(cats) != 5 {
		c.log().Warn("model returned unexpected category count", zap.Int("count", len(cats)))
	}
	return cats, nil
}

// Classify asks for one or more labels per paper. The result has at least
// len(papers) entries; missing trailing entries are Uncategorized.
func (c *Classifier) Classify(ctx context.Context, papers []types.PaperText, categories types.CategorySet) ([][]string, error) {
	prompt, err := renderClassificationPrompt(papers, categories)
	if err != nil {
		return nil, fmt.Errorf("rendering classification prompt: %w", err)
	}
	c.log().Debug("classification prompt", zap.String("prompt", prompt))

	reply, err := callWithRetry(ctx, c.Backend, prompt, c.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("classifying papers: %w", err)
	}
	c.log().Debug("classification reply", zap.String("reply", reply))

	classified := ParseClassifications(reply, len(papers))
	c.log().Info("classification parsed",
		zap.Int("expected", len(papers)), zap.Int("received", len(classified)))

	if c.Canonicalize {
		for i, labels := range classified {
			classified[i] = Canonicalize(labels, categories)
		}
	}
	return classified, nil
}

func (c *Classifier) log() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// Merge attaches classified[i] to records[i]. It merges only when the
// counts are equal; otherwise it returns the records without categories
// and false, since a positional join of unequal lists would mislabel
// papers.
func Merge(records []types.PdfLinkRecord, classified [][]string) ([]types.ClassifiedPaperRecord, bool) {
	out := make([]types.ClassifiedPaperRecord, len(records))
	for i, r := range records {
		out[i] = types.ClassifiedPaperRecord{Title: r.Title, PDFLink: r.PDFLink}
	}
	if len(records) != len(classified) {
		return out, false
	}
	for i := range out {
		out[i].Categories = classified[i]
	}
	return out, true
}

// UpdateCategories classifies papers, merges the result onto
// pdf_links_<year>.json and writes pdf_links_<year>_updated.json. On a
// count mismatch the records are written without categories and merged
// is false.
func (c *Classifier) UpdateCategories(ctx context.Context, workDir string, year int, papers []types.PaperText, categories types.CategorySet) (merged bool, err error) {
	classified, err := c.Classify(ctx, papers, categories)
	if err != nil {
		return false, err
	}

	var records []types.PdfLinkRecord
	if err := scrape.ReadJSON(scrape.PDFLinksPath(workDir, year), &records); err != nil {
		return false, err
	}

	c.log().Info("merging categories",
		zap.Int("papers", len(records)), zap.Int("classified", len(classified)))

	out, merged := Merge(records, classified)
	if !merged {
		c.log().Warn("count mismatch, categories not merged",
			zap.Int("papers", len(records)), zap.Int("classified", len(classified)))
	}

	if err := scrape.WriteJSON(scrape.UpdatedPath(workDir, year), out); err != nil {
		return false, err
	}
	return merged, nil
}

// CategoriesPath is the discovered vocabulary report for a year.
func CategoriesPath(workDir string, year int) string {
	return filepath.Join(workDir, fmt.Sprintf("categories_%d.yaml", year))
}

// writeCategoryReport records the discovered vocabulary as YAML.
func writeCategoryReport(path string, report types.CategoryReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling category report: %w", err)
	}
	return scrape.WriteFile(path, data)
}

// ReadCategoryReport loads a report written by a previous run.
func ReadCategoryReport(path string) (types.CategoryReport, error) {
	var report types.CategoryReport
	data, err := os.ReadFile(path)
	if err != nil {
		return report, err
	}
	if err := yaml.Unmarshal(data, &report); err != nil {
		return report, fmt.Errorf("parsing %s: %w", path, err)
	}
	return report, nil
}
