// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-sorter/pkg/types"
)

const sampleListingHTML = `<html><body>
<div class="container-fluid">
  <div class="col">
    <ul>
      <li><a href="/paper/2021/hash/aaa-Abstract.html">  Attention Is Still All You Need  </a> <i>A. Author</i></li>
      <li><a href="/paper/2021/hash/bbb-Abstract.html">Graph Networks &amp; Friends</a></li>
      <li>No anchor here</li>
    </ul>
  </div>
</div>
<ul class="nav"><li><a href="/about">About</a></li></ul>
</body></html>`

func TestExtractListing(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []types.PaperRecord
	}{
		{
			name: "bare list",
			html: `<ul><li><a href="/paper/abc">My Title</a></li></ul>`,
			want: []types.PaperRecord{{Title: "My Title", Link: "https://papers.nips.cc/paper/abc"}},
		},
		{
			name: "listing page uses container selector only",
			html: sampleListingHTML,
			want: []types.PaperRecord{
				{Title: "Attention Is Still All You Need", Link: "https://papers.nips.cc/paper/2021/hash/aaa-Abstract.html"},
				{Title: "Graph Networks & Friends", Link: "https://papers.nips.cc/paper/2021/hash/bbb-Abstract.html"},
			},
		},
		{
			name: "absolute hrefs kept",
			html: `<ul><li><a href="https://mirror.example/paper/x">X</a></li></ul>`,
			want: []types.PaperRecord{{Title: "X", Link: "https://mirror.example/paper/x"}},
		},
		{
			name: "no match yields empty",
			html: `<html><body><p>maintenance</p></body></html>`,
			want: []types.PaperRecord{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractListing([]byte(tt.html), DefaultBaseURL)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListingURL(t *testing.T) {
	assert.Equal(t, "https://papers.nips.cc/paper/2021", ListingURL(DefaultBaseURL, "", 2021))
	assert.Equal(t, "http://x/paper_files/paper/2022", ListingURL("http://x/", "/paper_files/paper/%d", 2022))
}
