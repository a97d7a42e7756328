// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Integration tests: listing -> resolve -> download against a mock
// proceedings site.

package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-sorter/internal/httputil"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

func TestMain(m *testing.M) {
	httputil.RetryBaseDelay = time.Millisecond
	os.Exit(m.Run())
}

const mockListingHTML = `<html><body><div class="container-fluid"><div class="col"><ul>
<li><a href="/paper/2021/hash/one-Abstract.html">Deep Nets: Revisited</a></li>
<li><a href="/paper/2021/hash/two-Abstract.html">Bandits at Scale</a></li>
<li><a href="/paper/2021/hash/three-Abstract.html">Unresolvable Paper</a></li>
</ul></div></div></body></html>`

// newSiteServer serves a listing for 2021 only, detail pages and PDFs.
func newSiteServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/paper/2021":
			fmt.Fprint(w, mockListingHTML)
		case strings.HasPrefix(r.URL.Path, "/paper/2021/hash/three"):
			fmt.Fprint(w, `<a href="/x">Supplemental</a>`)
		case strings.HasPrefix(r.URL.Path, "/paper/2021/hash/"):
			id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/paper/2021/hash/"), "-Abstract.html")
			fmt.Fprintf(w, `<a href="/paper/2021/file/%s-Paper.pdf">Paper</a>`, id)
		case strings.HasPrefix(r.URL.Path, "/paper/2021/file/"):
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestPipeline(ts *httptest.Server, dir string) *Pipeline {
	return &Pipeline{
		Fetcher: testFetcher(ts),
		Config: types.ScrapeConfig{
			HTTPConfig: types.HTTPConfig{PageTimeout: time.Second, PDFTimeout: time.Second},
			BaseURL:    ts.URL,
			WorkDir:    dir,
		},
	}
}

func TestPipelineRun(t *testing.T) {
	ts := newSiteServer(t)
	defer ts.Close()
	dir := t.TempDir()

	var out bytes.Buffer
	result := newTestPipeline(ts, dir).Run(context.Background(), []int{2021}, &out)

	require.Len(t, result.Years, 1)
	y := result.Years[0]
	assert.Equal(t, 3, y.Listed)
	assert.Equal(t, 2, y.Resolved)
	assert.Equal(t, 1, y.Unresolved)
	assert.Equal(t, 2, y.Downloaded)
	assert.Equal(t, 0, y.Failed)
	assert.False(t, result.HasFailures())
	assert.Contains(t, out.String(), "year 2021: 3 listed, 2 resolved")

	assert.FileExists(t, PageHTMLPath(dir, 2021))

	var papers []types.PaperRecord
	require.NoError(t, ReadJSON(PapersPath(dir, 2021), &papers))
	require.Len(t, papers, 3)
	assert.Equal(t, "Deep Nets: Revisited", papers[0].Title)
	assert.Equal(t, ts.URL+"/paper/2021/hash/one-Abstract.html", papers[0].Link)

	var links []types.PdfLinkRecord
	require.NoError(t, ReadJSON(PDFLinksPath(dir, 2021), &links))
	require.Len(t, links, 3)
	assert.Equal(t, ts.URL+"/paper/2021/file/one-Paper.pdf", *links[0].PDFLink)
	assert.Equal(t, ts.URL+"/paper/2021/file/two-Paper.pdf", *links[1].PDFLink)
	assert.Nil(t, links[2].PDFLink)

	assert.FileExists(t, filepath.Join(dir, "pdf_2021", "Deep Nets_ Revisited.pdf"))
	assert.FileExists(t, filepath.Join(dir, "pdf_2021", "Bandits at Scale.pdf"))
}

func TestPipelineRun_MissingListingAbortsOnlyThatYear(t *testing.T) {
	ts := newSiteServer(t)
	defer ts.Close()
	dir := t.TempDir()

	var out bytes.Buffer
	result := newTestPipeline(ts, dir).Run(context.Background(), []int{2019, 2021}, &out)

	require.Len(t, result.Years, 2)
	assert.Equal(t, 2019, result.Years[0].Year)
	assert.True(t, result.Years[0].Aborted)
	assert.False(t, result.Years[1].Aborted)
	assert.Equal(t, 2, result.Years[1].Downloaded)
	assert.True(t, result.HasFailures())
	assert.Contains(t, out.String(), "year 2019: aborted")
	assert.NoFileExists(t, PapersPath(dir, 2019))
}

func TestResolveLinks_MissingCheckpoint(t *testing.T) {
	ts := newSiteServer(t)
	defer ts.Close()

	_, _, err := newTestPipeline(ts, t.TempDir()).ResolveLinks(context.Background(), 2021)
	require.Error(t, err)
	assert.True(t, IsCheckpointMissing(err))
}

func TestDownloadPDFs_MissingCheckpoint(t *testing.T) {
	ts := newSiteServer(t)
	defer ts.Close()

	_, _, err := newTestPipeline(ts, t.TempDir()).DownloadPDFs(context.Background(), 2021)
	assert.True(t, IsCheckpointMissing(err))
}

func TestResolveLinks_IdempotentForStableInput(t *testing.T) {
	ts := newSiteServer(t)
	defer ts.Close()
	dir := t.TempDir()
	p := newTestPipeline(ts, dir)

	_, err := p.FetchListing(context.Background(), 2021)
	require.NoError(t, err)

	_, _, err = p.ResolveLinks(context.Background(), 2021)
	require.NoError(t, err)
	first, err := os.ReadFile(PDFLinksPath(dir, 2021))
	require.NoError(t, err)

	_, _, err = p.ResolveLinks(context.Background(), 2021)
	require.NoError(t, err)
	second, err := os.ReadFile(PDFLinksPath(dir, 2021))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestResolveLinks_EmptyListingWritesEmptyArray(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(PapersPath(dir, 2021), []types.PaperRecord{}))

	p := &Pipeline{Fetcher: &httputil.Fetcher{Pool: httputil.NewPool(1)}, Config: types.ScrapeConfig{WorkDir: dir}}
	resolved, unresolved, err := p.ResolveLinks(context.Background(), 2021)
	require.NoError(t, err)
	assert.Zero(t, resolved)
	assert.Zero(t, unresolved)

	data, err := os.ReadFile(PDFLinksPath(dir, 2021))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestWriteJSON_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, WriteJSON(path, []types.PdfLinkRecord{{Title: "Café <Nets>"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[\n    {\n        \"title\": \"Café <Nets>\",\n        \"pdf_link\": null\n    }\n]\n", string(data))
}
