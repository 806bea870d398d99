package tool

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hupe1980/researchmesh/guardrail"
)

// DefaultFetchMaxRunes caps the extracted text length of a fetched page.
const DefaultFetchMaxRunes = 5000

// FetchOptions configures the FetchTool.
type FetchOptions struct {
	// MaxRunes truncates extracted text beyond this length.
	MaxRunes int
	// BlockedDomains are refused before any request is made.
	BlockedDomains []string
	// HTTPClient performs the request. Defaults to a 10s-timeout client.
	HTTPClient *http.Client
}

// FetchTool downloads a web page and extracts its readable text, skipping
// script, style and navigation chrome.
type FetchTool struct {
	opts FetchOptions
}

var _ Tool = (*FetchTool)(nil)

// NewFetchTool creates a page fetching tool.
func NewFetchTool(optFns ...func(o *FetchOptions)) *FetchTool {
	opts := FetchOptions{
		MaxRunes:       DefaultFetchMaxRunes,
		BlockedDomains: DefaultBlockedDomains,
		HTTPClient:     &http.Client{Timeout: 10 * time.Second},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &FetchTool{opts: opts}
}

// Name implements Tool.
func (t *FetchTool) Name() string { return "fetch_webpage" }

// Description implements Tool.
func (t *FetchTool) Description() string {
	return "Fetch and extract the readable text content from a specific webpage URL."
}

// Parameters implements Tool.
func (t *FetchTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"url": map[string]interface{}{
				"type":        "string",
				"description": "The http(s) URL of the page to fetch",
			},
		},
		"required": []string{"url"},
	}
}

// Call implements Tool.
func (t *FetchTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	raw, err := stringArg(t.Name(), args, "url")
	if err != nil {
		return "", err
	}
	return t.Fetch(ctx, raw)
}

// Fetch validates the URL, downloads the page and extracts its text.
func (t *FetchTool) Fetch(ctx context.Context, raw string) (string, error) {
	clean, err := guardrail.SanitizeURL(raw)
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeValidation)
	}
	for _, domain := range t.opts.BlockedDomains {
		if strings.Contains(clean, domain) {
			return "", NewToolError(t.Name(), fmt.Sprintf("domain %s is blocked", domain), CodeValidation)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, clean, nil)
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeValidation)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := t.opts.HTTPClient.Do(req)
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), CodeExecution)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewToolError(t.Name(), fmt.Sprintf("fetch returned http %d", resp.StatusCode), CodeExecution)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return "", NewToolError(t.Name(), fmt.Sprintf("failed to parse html: %v", err), CodeExecution)
	}

	text := extractText(doc)
	runes := []rune(text)
	if len(runes) > t.opts.MaxRunes {
		text = string(runes[:t.opts.MaxRunes]) + "..."
	}
	return text, nil
}

// skippedElements are removed wholesale during text extraction.
var skippedElements = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"footer": true,
	"header": true,
}

// extractText walks the parse tree collecting visible text, one line per
// text node, with blank lines dropped.
func extractText(doc *html.Node) string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if line := strings.TrimSpace(n.Data); line != "" {
				lines = append(lines, line)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(lines, "\n")
}
