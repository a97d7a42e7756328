// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// UncategorizedLabel pads classification results the model did not return.
// It is a sentinel, never a discovered category.
const UncategorizedLabel = "Uncategorized"

// PaperRecord is one entry of a conference listing page.
// Written to papers_<year>.json by the listing stage.
type PaperRecord struct {
	// Title is the trimmed anchor text from the listing.
	Title string `json:"title"`

	// Link is the absolute URL of the paper's detail page.
	Link string `json:"link"`
}

// PdfLinkRecord is the outcome of detail page resolution for one paper.
// Written to pdf_links_<year>.json by the resolve stage.
type PdfLinkRecord struct {
	Title string `json:"title"`

	// PDFLink is nil when the detail page could not be fetched or had no
	// "Paper" anchor. Serialized as JSON null in that case.
	PDFLink *string `json:"pdf_link"`
}

// HasPDF reports whether the record carries a download link.
func (r PdfLinkRecord) HasPDF() bool {
	return r.PDFLink != nil && *r.PDFLink != ""
}

// ClassifiedPaperRecord is a PdfLinkRecord with its assigned categories.
// Categories is omitted when the merge was skipped, so an unmerged
// pdf_links_<year>_updated.json has the same shape as the input checkpoint.
type ClassifiedPaperRecord struct {
	Title      string   `json:"title"`
	PDFLink    *string  `json:"pdf_link"`
	Categories []string `json:"categories,omitempty"`
}

// CategorySet is the ordered label vocabulary discovered for a year.
// Five entries are requested from the model but the count is not enforced.
type CategorySet []string

// Contains reports whether label is an exact member of the set.
func (c CategorySet) Contains(label string) bool {
	for _, l := range c {
		if l == label {
			return true
		}
	}
	return false
}

// PaperText is the title/abstract pair parsed from a PDF's first page.
type PaperText struct {
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`

	// Path is the PDF the text came from.
	Path string `json:"path" yaml:"path"`
}

// CategoryReport is persisted to categories_<year>.yaml after discovery.
type CategoryReport struct {
	Year         int         `yaml:"year"`
	Model        string      `yaml:"model"`
	DiscoveredAt time.Time   `yaml:"discovered_at"`
	Papers       int         `yaml:"papers"`
	Categories   CategorySet `yaml:"categories"`
}
