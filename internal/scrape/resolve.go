// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/httputil"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// pdfAnchorText is the visible text of the download link on a detail page.
const pdfAnchorText = "Paper"

// ExtractPDFLink returns the absolute URL of the first anchor whose text
// is exactly "Paper", or nil if the page has none. Surrounding whitespace
// or sibling markup inside the anchor disqualifies it.
func ExtractPDFLink(html []byte, baseURL string) (*string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	anchor := doc.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		text, ok := soleText(s)
		return ok && text == pdfAnchorText
	}).First()

	href, ok := anchor.Attr("href")
	if !ok {
		return nil, nil
	}
	link := absoluteURL(baseURL, href)
	return &link, nil
}

// soleText returns the text of s when s holds a single text node, directly
// or through a chain of single-child elements.
func soleText(s *goquery.Selection) (string, bool) {
	c := s.Contents()
	if c.Length() != 1 {
		return "", false
	}
	if goquery.NodeName(c) == "#text" {
		return c.Text(), true
	}
	return soleText(c)
}

// Resolver visits detail pages to find PDF links.
type Resolver struct {
	Fetcher *httputil.Fetcher
	BaseURL string
	Timeout time.Duration
	Log     *zap.Logger
}

// Resolve fetches the paper's detail page and extracts its PDF link.
// Any failure yields a record with a nil PDFLink; it never aborts the batch.
func (r *Resolver) Resolve(ctx context.Context, paper types.PaperRecord) types.PdfLinkRecord {
	rec := types.PdfLinkRecord{Title: paper.Title}

	html, ok := r.Fetcher.Fetch(ctx, paper.Link, r.Timeout)
	if !ok {
		return rec
	}

	link, err := ExtractPDFLink(html, r.BaseURL)
	if err != nil {
		logger(r.Log).Warn("parsing detail page failed",
			zap.String("title", paper.Title), zap.String("url", paper.Link), zap.Error(err))
		r.Fetcher.Pause(ctx)
		return rec
	}
	if link == nil {
		logger(r.Log).Debug("no PDF link on detail page",
			zap.String("title", paper.Title), zap.String("url", paper.Link))
	}
	rec.PDFLink = link
	return rec
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
