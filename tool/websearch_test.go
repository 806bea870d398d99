package tool

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/researchmesh/guardrail"
)

const litePage = `<html><body><table>
<tr><td><a rel="nofollow" class='result-link' href='https://example.com/go'>Go Programming</a></td></tr>
<tr><td class='result-snippet'>Go is an open source programming language.</td></tr>
<tr><td><a rel="nofollow" class='result-link' href='https://spam.com/offer'>Cheap Offers</a></td></tr>
<tr><td class='result-snippet'>Totally legitimate.</td></tr>
<tr><td><a rel="nofollow" class='result-link' href='https://example.org/news'>Go &amp; Friends</a></td></tr>
<tr><td class='result-snippet'>News about Go.</td></tr>
</table></body></html>`

func newTestSearchTool(t *testing.T, limit int) (*WebSearchTool, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(litePage))
	}))
	t.Cleanup(srv.Close)

	limiter := guardrail.NewRateLimiter(limit, time.Minute)
	tool := NewWebSearchTool(limiter, func(o *WebSearchOptions) {
		o.Endpoint = srv.URL
		o.HTTPClient = srv.Client()
	})
	return tool, srv
}

func TestWebSearchTool_Search(t *testing.T) {
	tool, _ := newTestSearchTool(t, 10)

	results, err := tool.Search(context.Background(), "golang")
	require.NoError(t, err)
	require.Len(t, results, 2, "blocked domain result should be dropped")

	assert.Equal(t, "Go Programming", results[0].Title)
	assert.Equal(t, "https://example.com/go", results[0].URL)
	assert.Equal(t, "Go is an open source programming language.", results[0].Snippet)
	assert.Equal(t, "duckduckgo", results[0].Source)
	assert.NotEmpty(t, results[0].Timestamp)

	assert.Equal(t, "Go & Friends", results[1].Title)
}

func TestWebSearchTool_RateLimited(t *testing.T) {
	tool, _ := newTestSearchTool(t, 1)

	_, err := tool.Search(context.Background(), "first")
	require.NoError(t, err)

	_, err = tool.Search(context.Background(), "second")
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeRateLimit, toolErr.Code)

	var rateErr *guardrail.RateLimitError
	assert.True(t, errors.As(err, &rateErr), "rate limit cause must stay unwrappable")
}

func TestWebSearchTool_EmptyQuery(t *testing.T) {
	tool, _ := newTestSearchTool(t, 10)

	_, err := tool.Search(context.Background(), `<>"'%;()&+`)
	require.Error(t, err)

	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestWebSearchTool_Call(t *testing.T) {
	tool, _ := newTestSearchTool(t, 10)

	out, err := tool.Call(context.Background(), map[string]interface{}{"query": "golang"})
	require.NoError(t, err)
	assert.Contains(t, out, "https://example.com/go")

	_, err = tool.Call(context.Background(), map[string]interface{}{})
	var toolErr *ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestSanitizeQuery(t *testing.T) {
	assert.Equal(t, "drop table users", SanitizeQuery(`drop table users;`))
	assert.Equal(t, "scriptalertxss/script", SanitizeQuery(`<script>alert('xss')</script>`))
	assert.Equal(t, "golang", SanitizeQuery("  golang  "))
}

func TestParseLiteResults_Fallback(t *testing.T) {
	page := `<html><body>
<a href="/internal">Internal Navigation</a>
<a href="https://duckduckgo.com/about">About DuckDuckGo</a>
<a href="https://example.com/article">A Real External Article</a>
</body></html>`

	results := parseLiteResults(page)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/article", results[0].URL)
}
