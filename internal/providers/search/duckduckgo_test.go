package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/tuskchat/internal/core"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div id="links" class="results">
  <div class="result results_links results_links_deep result--ad">
    <h2 class="result__title"><a class="result__a" href="https://ads.example/x">Buy umbrellas</a></h2>
    <a class="result__snippet" href="https://ads.example/x">Sponsored</a>
  </div>
  <div class="result results_links results_links_deep web-result">
    <h2 class="result__title">
      <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fweather.example%2Ftaipei&amp;rut=abc">Taipei Weather</a>
    </h2>
    <a class="result__snippet" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fweather.example%2Ftaipei">Today in <b>Taipei</b>: 28°C sunny &amp; humid</a>
  </div>
  <div class="result results_links results_links_deep web-result">
    <h2 class="result__title"><a class="result__a" href="https://news.example/typhoon">Typhoon watch</a></h2>
    <a class="result__snippet" href="https://news.example/typhoon">No typhoon expected this week.</a>
  </div>
  <div class="result results_links web-result">
    <h2 class="result__title"><a class="result__a" href="https://third.example/">Third</a></h2>
  </div>
</div>
</body></html>`

func TestParseDuckDuckGo(t *testing.T) {
	results, err := parseDuckDuckGo(strings.NewReader(resultsPage), 10)
	require.NoError(t, err)

	assert.Equal(t, []core.SearchResult{
		{Title: "Taipei Weather", Snippet: "Today in Taipei: 28°C sunny & humid", Source: "https://weather.example/taipei"},
		{Title: "Typhoon watch", Snippet: "No typhoon expected this week.", Source: "https://news.example/typhoon"},
		{Title: "Third", Snippet: "", Source: "https://third.example/"},
	}, results)
}

func TestParseDuckDuckGo_Bounded(t *testing.T) {
	results, err := parseDuckDuckGo(strings.NewReader(resultsPage), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Taipei Weather", results[0].Title)
}

func TestParseDuckDuckGo_NoResults(t *testing.T) {
	results, err := parseDuckDuckGo(strings.NewReader(`<html><body><div class="no-results">No results.</div></body></html>`), 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestUnwrapRedirect(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fa.example%2Fp%3Fq%3D1&rut=x", "https://a.example/p?q=1"},
		{"https://b.example/", "https://b.example/"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, unwrapRedirect(tt.href), tt.href)
	}
}

func TestDuckDuckGo_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "weather in Taipei", r.PostForm.Get("q"))
		fmt.Fprint(w, resultsPage)
	}))
	defer srv.Close()

	results, err := NewDuckDuckGo(srv.URL).Search(context.Background(), "weather in Taipei", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestDuckDuckGo_SearchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, err := NewDuckDuckGo(srv.URL).Search(context.Background(), "q", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "202")
}
