// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-sorter/pkg/types"
)

const (
	// DefaultBaseURL is the proceedings site root.
	DefaultBaseURL = "https://papers.nips.cc"

	// DefaultListingPath is the per-year listing path format.
	DefaultListingPath = "/paper/%d"
)

// listingSelector locates paper entries on a year listing page.
const listingSelector = ".container-fluid .col ul li"

// fallbackSelector is tried only when listingSelector matches nothing,
// e.g. for a bare list without the page chrome.
const fallbackSelector = "ul li"

// ListingURL returns the listing page URL for year.
func ListingURL(baseURL, listingPath string, year int) string {
	if listingPath == "" {
		listingPath = DefaultListingPath
	}
	return strings.TrimRight(baseURL, "/") + fmt.Sprintf(listingPath, year)
}

// ExtractListing parses a listing page into paper records. Each entry's
// first anchor supplies the trimmed title and the detail link. A page
// that matches neither selector yields an empty, non-nil slice.
func ExtractListing(html []byte, baseURL string) []types.PaperRecord {
	papers := []types.PaperRecord{}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return papers
	}

	items := doc.Find(listingSelector)
	if items.Length() == 0 {
		items = doc.Find(fallbackSelector)
	}

	items.Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a").First()
		href, ok := a.Attr("href")
		if !ok {
			return
		}
		papers = append(papers, types.PaperRecord{
			Title: strings.TrimSpace(a.Text()),
			Link:  absoluteURL(baseURL, href),
		})
	})
	return papers
}

// absoluteURL prefixes site-relative hrefs with the base URL.
func absoluteURL(baseURL, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(baseURL, "/") + href
}
