package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hupe1980/researchmesh/guardrail"
)

// DefaultBlockedDomains lists domains that search results and fetches
// must never reference.
var DefaultBlockedDomains = []string{"spam.com", "malware.com"}

// querySanitizer removes characters commonly used for injection from
// search queries before they are sent upstream.
var querySanitizer = regexp.MustCompile(`[<>"'%;()&+]`)

// WebResult is a single search hit returned by WebSearchTool.
type WebResult struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// WebSearchOptions configures the WebSearchTool.
type WebSearchOptions struct {
	// MaxResults caps the number of results returned per search.
	MaxResults int
	// BlockedDomains are dropped from results. Defaults to DefaultBlockedDomains.
	BlockedDomains []string
	// HTTPClient performs the upstream request. Defaults to a 15s-timeout client.
	HTTPClient *http.Client
	// Endpoint is the search endpoint. Defaults to the DuckDuckGo lite page.
	Endpoint string
}

// WebSearchTool searches the web by scraping the DuckDuckGo lite HTML
// interface. Every call is gated by a shared rate limiter so agents
// cannot hammer the upstream service.
type WebSearchTool struct {
	opts    WebSearchOptions
	limiter *guardrail.RateLimiter
	now     func() time.Time
}

var _ Tool = (*WebSearchTool)(nil)

// NewWebSearchTool creates a web search tool gated by the given rate limiter.
func NewWebSearchTool(limiter *guardrail.RateLimiter, optFns ...func(o *WebSearchOptions)) *WebSearchTool {
	opts := WebSearchOptions{
		MaxResults:     8,
		BlockedDomains: DefaultBlockedDomains,
		HTTPClient:     &http.Client{Timeout: 15 * time.Second},
		Endpoint:       "https://lite.duckduckgo.com/lite/",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &WebSearchTool{
		opts:    opts,
		limiter: limiter,
		now:     time.Now,
	}
}

// Name implements Tool.
func (t *WebSearchTool) Name() string { return "search_web" }

// Description implements Tool.
func (t *WebSearchTool) Description() string {
	return "Search the web for information on a given topic. Returns a JSON list of results with title, url and snippet."
}

// Parameters implements Tool.
func (t *WebSearchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	}
}

// Call implements Tool. The result is a JSON encoded []WebResult.
func (t *WebSearchTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	query, err := stringArg(t.Name(), args, "query")
	if err != nil {
		return "", err
	}

	results, err := t.Search(ctx, query)
	if err != nil {
		return "", err
	}

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	return string(encoded), nil
}

// Search runs a rate-limited, sanitized query and returns filtered results.
func (t *WebSearchTool) Search(ctx context.Context, query string) ([]WebResult, error) {
	if verdict := t.limiter.Allow(t.Name()); !verdict.Allowed {
		cause := &guardrail.RateLimitError{Actor: t.Name()}
		return nil, &ToolError{Tool: t.Name(), Message: cause.Error(), Code: CodeRateLimit, Err: cause}
	}

	query = SanitizeQuery(query)
	if query == "" {
		return nil, NewToolError(t.Name(), "query is empty after sanitization", CodeValidation)
	}

	body, err := t.fetchResultsPage(ctx, query)
	if err != nil {
		return nil, NewToolError(t.Name(), err.Error(), CodeExecution)
	}

	var results []WebResult
	stamp := t.now().Format(time.RFC3339)
	for _, r := range parseLiteResults(body) {
		if !t.safeURL(r.URL) {
			continue
		}
		r.Timestamp = stamp
		r.Source = "duckduckgo"
		results = append(results, r)
		if len(results) >= t.opts.MaxResults {
			break
		}
	}
	return results, nil
}

func (t *WebSearchTool) fetchResultsPage(ctx context.Context, query string) (string, error) {
	formData := url.Values{}
	formData.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.Endpoint, strings.NewReader(formData.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.opts.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errors.New("upstream rate limited the search request")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search endpoint returned http %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

func (t *WebSearchTool) safeURL(raw string) bool {
	for _, domain := range t.opts.BlockedDomains {
		if strings.Contains(raw, domain) {
			return false
		}
	}
	return true
}

// SanitizeQuery strips characters commonly used for injection and trims whitespace.
func SanitizeQuery(query string) string {
	return strings.TrimSpace(querySanitizer.ReplaceAllString(query, ""))
}

// Patterns for the lite results page. The page is simple table markup with
// result-link anchors and result-snippet cells.
var (
	liteLinkPattern    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	liteLinkPatternAlt = regexp.MustCompile(`<a[^>]*href=['"]([^'"]+)['"][^>]*class=['"]result-link['"][^>]*>([^<]+)</a>`)
	liteSnippetPattern = regexp.MustCompile(`<td[^>]*class=['"]result-snippet['"][^>]*>([^<]+(?:<[^>]+>[^<]*</[^>]+>)*[^<]*)</td>`)
	anyLinkPattern     = regexp.MustCompile(`<a[^>]+href=['"]([^'"]+)['"][^>]*>([^<]+)</a>`)
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
)

// parseLiteResults extracts search results from the DuckDuckGo lite HTML.
func parseLiteResults(html string) []WebResult {
	var results []WebResult

	matches := liteLinkPattern.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		matches = liteLinkPatternAlt.FindAllStringSubmatch(html, -1)
	}
	snippets := liteSnippetPattern.FindAllStringSubmatch(html, -1)

	for i, match := range matches {
		if len(match) < 3 {
			continue
		}
		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(match[2])
		if urlStr == "" || title == "" {
			continue
		}
		snippet := ""
		if i < len(snippets) && len(snippets[i]) > 1 {
			snippet = cleanHTML(snippets[i][1])
		}
		results = append(results, WebResult{Title: title, URL: urlStr, Snippet: snippet})
	}

	if len(results) == 0 {
		results = fallbackParse(html)
	}
	return results
}

// fallbackParse scans for any external-looking links when the structured
// patterns matched nothing.
func fallbackParse(html string) []WebResult {
	var results []WebResult
	seen := make(map[string]bool)

	for _, match := range anyLinkPattern.FindAllStringSubmatch(html, -1) {
		if len(match) < 3 {
			continue
		}
		urlStr := strings.TrimSpace(match[1])
		title := cleanHTML(match[2])

		if strings.Contains(urlStr, "duckduckgo.com") ||
			strings.HasPrefix(urlStr, "/") ||
			strings.HasPrefix(urlStr, "#") ||
			strings.HasPrefix(urlStr, "javascript:") {
			continue
		}
		if len(title) < 5 || seen[urlStr] {
			continue
		}
		seen[urlStr] = true

		results = append(results, WebResult{Title: title, URL: urlStr})
	}
	return results
}

// cleanHTML removes HTML tags and decodes common entities.
func cleanHTML(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(s)
}
