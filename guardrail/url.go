package guardrail

import (
	"fmt"
	"net/url"
	"strings"
)

// SanitizeURL validates and normalizes a URL before it is fetched. Only http
// and https schemes are accepted; javascript:, data:, file: and similar
// protocols are rejected outright.
func SanitizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("url is empty")
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("blocked url protocol: %s", scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("url missing host")
	}
	return parsed.String(), nil
}
