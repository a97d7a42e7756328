// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/scrape"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// Summary holds the outcome of phase 2 for one year.
type Summary struct {
	Year       int
	Records    int
	Texts      int
	Categories types.CategorySet
	Merged     bool
}

// Runner drives phase 2 for one year at a time.
type Runner struct {
	Classifier *Classifier
	Config     types.ClassifyConfig

	// Extract defaults to FirstPageText.
	Extract TextExtractor

	Log *zap.Logger
}

// Run extracts texts from pdf_<year>/, discovers (or reuses) the category
// vocabulary, writes categories_<year>.yaml and produces
// pdf_links_<year>_updated.json. A missing checkpoint or PDF directory
// aborts the year with an error and writes nothing.
func (r *Runner) Run(ctx context.Context, year int) (Summary, error) {
	log := r.log().With(zap.Int("year", year))
	sum := Summary{Year: year}
	workDir := r.workDir()

	var records []types.PdfLinkRecord
	if err := scrape.ReadJSON(scrape.PDFLinksPath(workDir, year), &records); err != nil {
		return sum, err
	}
	sum.Records = len(records)

	extract := r.Extract
	if extract == nil {
		extract = FirstPageText
	}
	texts, err := LoadPaperTexts(scrape.PDFDir(workDir, year), records, extract, log)
	if err != nil {
		return sum, err
	}
	sum.Texts = len(texts)
	if len(texts) == 0 {
		return sum, fmt.Errorf("no readable PDFs in %s", scrape.PDFDir(workDir, year))
	}
	log.Info("extracted first-page text", zap.Int("pdfs", len(texts)), zap.Int("records", len(records)))

	cats, err := r.categories(ctx, year, texts, log)
	if err != nil {
		return sum, err
	}
	sum.Categories = cats
	log.Info("categories", zap.Strings("categories", cats))

	merged, err := r.Classifier.UpdateCategories(ctx, workDir, year, texts, cats)
	if err != nil {
		return sum, err
	}
	sum.Merged = merged
	return sum, nil
}

// categories reuses a previous report when configured to, otherwise runs
// discovery and records the result.
func (r *Runner) categories(ctx context.Context, year int, texts []types.PaperText, log *zap.Logger) (types.CategorySet, error) {
	path := CategoriesPath(r.workDir(), year)

	if r.Config.ReuseCategories {
		report, err := ReadCategoryReport(path)
		switch {
		case err == nil && len(report.Categories) > 0:
			log.Info("reusing discovered categories", zap.String("path", path))
			return report.Categories, nil
		case err != nil && !os.IsNotExist(err):
			log.Warn("ignoring unreadable category report", zap.String("path", path), zap.Error(err))
		}
	}

	cats, err := r.Classifier.Discover(ctx, texts)
	if err != nil {
		return nil, err
	}

	report := types.CategoryReport{
		Year:         year,
		Model:        r.Config.Model,
		DiscoveredAt: time.Now().UTC(),
		Papers:       len(texts),
		Categories:   cats,
	}
	if err := writeCategoryReport(path, report); err != nil {
		log.Warn("writing category report failed", zap.Error(err))
	}
	return cats, nil
}

func (r *Runner) workDir() string {
	if r.Config.WorkDir == "" {
		return "."
	}
	return r.Config.WorkDir
}

func (r *Runner) log() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
