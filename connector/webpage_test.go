package connector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Sample</title><style>body { color: red }</style></head>
<body>
  <nav>Home | About</nav>
  <script>console.log("noise")</script>
  <h1>Release Notes</h1>
  <p>Version 2 ships  today.</p>

  <footer>Copyright</footer>
</body>
</html>`

func TestPageExtractorFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	extractor := NewPageExtractor()
	text, err := extractor.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, text, "Release Notes")
	assert.Contains(t, text, "Version 2 ships  today.")
	// script/style/nav/footer content must be stripped
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "color: red")
	assert.NotContains(t, text, "Home | About")
	assert.NotContains(t, text, "Copyright")
}

func TestPageExtractorFetchNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewPageExtractor().Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestPageExtractorMaxTextLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>aaaaaaaaaaaaaaaaaaaa</p></body></html>"))
	}))
	defer srv.Close()

	extractor := NewPageExtractor(func(o *PageExtractorOptions) { o.MaxTextLength = 5 })
	text, err := extractor.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "aaaaa", text)
}

func TestGoogleSearchFallsBackToSnippet(t *testing.T) {
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer pages.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"items":[{"link":"` + pages.URL + `","snippet":"fallback snippet"}]}`))
	}))
	defer api.Close()

	search := NewGoogleSearch("key", "cx", func(o *GoogleSearchOptions) {
		o.BaseURL = api.URL
	})
	results, err := search.Search(context.Background(), "anything", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, pages.URL, results[0].Link)
	assert.Equal(t, "fallback snippet", results[0].Text)
}

func TestGoogleSearchNoItems(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer api.Close()

	search := NewGoogleSearch("key", "cx", func(o *GoogleSearchOptions) { o.BaseURL = api.URL })
	results, err := search.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}
