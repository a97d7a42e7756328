// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/scrape"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// TextExtractor returns the first-page text of the PDF at path.
type TextExtractor func(path string) (string, error)

// FirstPageText reads only the first page of a PDF and returns its text,
// one output line per baseline, top of the page first.
func FirstPageText(path string) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	if reader.NumPage() < 1 {
		return "", fmt.Errorf("pdf %s has no pages", path)
	}
	page := reader.Page(1)
	if page.V.IsNull() {
		return "", fmt.Errorf("pdf %s: first page is empty", path)
	}

	return strings.Join(textLines(page.Content().Text), "\n"), nil
}

const (
	// lineTolerance is the baseline distance, as a fraction of the font
	// size, within which glyphs belong to the same line.
	lineTolerance = 0.5

	// wordGap is the horizontal gap between glyphs, as a fraction of the
	// font size, above which a space is inserted. Kerning stays below it.
	wordGap = 0.15
)

// textLine collects the glyphs that share one baseline.
type textLine struct {
	y      float64
	size   float64
	glyphs []pdf.Text
}

// textLines rebuilds lines from positioned glyphs. Glyphs are grouped by
// baseline, lines are ordered top-down and glyphs left to right; equal
// positions keep content-stream order.
func textLines(glyphs []pdf.Text) []string {
	var lines []*textLine
	for _, g := range glyphs {
		if isLayoutOnly(g.S) {
			continue
		}
		l := lineFor(lines, g)
		if l == nil {
			l = &textLine{y: g.Y, size: fontScale(g)}
			lines = append(lines, l)
		}
		l.glyphs = append(l.glyphs, g)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := l.text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lineFor(lines []*textLine, g pdf.Text) *textLine {
	for _, l := range lines {
		if math.Abs(l.y-g.Y) <= lineTolerance*math.Max(l.size, fontScale(g)) {
			return l
		}
	}
	return nil
}

func (l *textLine) text() string {
	sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })

	var b strings.Builder
	for i, g := range l.glyphs {
		if i > 0 {
			prev := l.glyphs[i-1]
			if g.X-(prev.X+prev.W) > wordGap*fontScale(g) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// fontScale is the glyph's font size, never below one point.
func fontScale(g pdf.Text) float64 {
	return math.Max(math.Abs(g.FontSize), 1)
}

// isLayoutOnly reports glyphs that carry no visible text, such as the
// line break the reader emits after each TJ array.
func isLayoutOnly(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if !unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// ParseTitleAbstract splits first-page text into a title and an abstract.
// The title is the first line exactly as extracted. The abstract is the
// first line whose lowercase form starts with "abstract", or "" if none.
// Multi-column layouts and running headers can defeat both heuristics.
func ParseTitleAbstract(text string) (title, abstract string) {
	lines := strings.Split(text, "\n")
	title = lines[0]
	for _, line := range lines {
		if strings.HasPrefix(strings.ToLower(line), "abstract") {
			return title, line
		}
	}
	return title, ""
}

// LoadPaperTexts extracts title/abstract pairs for the PDFs in dir.
// PDFs belonging to records are visited first, in record order, so that
// results line up with the checkpoint; any other PDFs in dir follow in
// lexical order. PDFs that cannot be read are logged and skipped.
func LoadPaperTexts(dir string, records []types.PdfLinkRecord, extract TextExtractor, log *zap.Logger) ([]types.PaperText, error) {
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading PDF directory %s: %w", dir, err)
	}

	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".pdf") {
			present[e.Name()] = true
		}
	}

	var order []string
	seen := make(map[string]bool, len(present))
	for _, rec := range records {
		name := scrape.SanitizeFilename(rec.Title) + ".pdf"
		if present[name] && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, e := range entries {
		if present[e.Name()] && !seen[e.Name()] {
			seen[e.Name()] = true
			order = append(order, e.Name())
		}
	}

	var texts []types.PaperText
	for _, name := range order {
		path := filepath.Join(dir, name)
		text, err := extract(path)
		if err != nil {
			log.Warn("skipping unreadable PDF", zap.String("path", path), zap.Error(err))
			continue
		}
		title, abstract := ParseTitleAbstract(text)
		texts = append(texts, types.PaperText{Title: title, Abstract: abstract, Path: path})
	}
	return texts, nil
}
