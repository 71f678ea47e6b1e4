package tool

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	readability "codeberg.org/readeck/go-readability/v2"
)

const (
	defaultSearchBase = "https://lite.duckduckgo.com"
	searchTimeout     = 10 * time.Second
	fetchTimeout      = 30 * time.Second
	maxSearchResults  = 5
	maxRawPreview     = 3000
	maxFetchSize      = 50 * 1024
	userAgent         = "Mozilla/5.0"
)

// --- WebSearch ---

var (
	resultAnchorRe = regexp.MustCompile(`(?is)(<a\b[^>]*class=['"]result-link['"][^>]*>)(.*?)</a>`)
	hrefAttrRe     = regexp.MustCompile(`(?i)href=['"]([^'"]+)['"]`)
	htmlTagRe      = regexp.MustCompile(`(?s)<[^>]+>`)
)

// WebSearchTool scrapes the DuckDuckGo Lite results page. No API key.
type WebSearchTool struct {
	BaseURL string       // test override, default lite.duckduckgo.com
	Client  *http.Client // default 10s timeout
}

func (t *WebSearchTool) Name() string { return "web_search" }
func (t *WebSearchTool) Description() string {
	return "Search the web and return the top results as 'url | title' lines."
}
func (t *WebSearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "Search query"},
		},
		"required": []string{"query"},
	}
}

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query, envelope, ok := requiredParam(params, "query")
	if !ok {
		return envelope, nil
	}
	if strings.TrimSpace(query) == "" {
		return errorJSON("query is required"), nil
	}

	base := t.BaseURL
	if base == "" {
		base = defaultSearchBase
	}
	reqURL := strings.TrimSuffix(base, "/") + "/lite/?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errorJSON("Search failed: " + err.Error()), nil
	}
	req.Header.Set("User-Agent", userAgent)

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: searchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return errorJSON("Search failed: " + err.Error()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errorJSON(fmt.Sprintf("Search failed: HTTP %d", resp.StatusCode)), nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return errorJSON("Search failed: " + err.Error()), nil
	}
	page := string(body)

	results := parseResults(page)
	if len(results) == 0 {
		preview := page
		if len(preview) > maxRawPreview {
			preview = preview[:maxRawPreview]
		}
		return jsonString(map[string]any{
			"query":       query,
			"raw_preview": preview,
		}), nil
	}

	return jsonString(map[string]any{
		"query":   query,
		"results": results,
	}), nil
}

// parseResults extracts up to maxSearchResults "href | title" lines from
// the Lite results markup.
func parseResults(page string) []string {
	var results []string
	for _, m := range resultAnchorRe.FindAllStringSubmatch(page, -1) {
		openTag, inner := m[1], m[2]

		hm := hrefAttrRe.FindStringSubmatch(openTag)
		if hm == nil {
			continue
		}
		href := unwrapRedirect(html.UnescapeString(hm[1]))

		title := html.UnescapeString(htmlTagRe.ReplaceAllString(inner, ""))
		title = strings.Join(strings.Fields(title), " ")
		if href == "" || title == "" {
			continue
		}

		results = append(results, href+" | "+title)
		if len(results) == maxSearchResults {
			break
		}
	}
	return results
}

// unwrapRedirect resolves DuckDuckGo's /l/?uddg= redirect wrapper to the
// target URL.
func unwrapRedirect(href string) string {
	if !strings.Contains(href, "uddg=") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// --- WebFetch ---

// WebFetchTool fetches a URL and extracts readable article text.
type WebFetchTool struct {
	Client *http.Client // default 30s timeout
}

func (t *WebFetchTool) Name() string { return "web_fetch" }
func (t *WebFetchTool) Description() string {
	return "Fetch a URL and extract its readable text content."
}
func (t *WebFetchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{"type": "string", "description": "URL to fetch"},
		},
		"required": []string{"url"},
	}
}

func (t *WebFetchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	rawURL, envelope, ok := requiredParam(params, "url")
	if !ok {
		return envelope, nil
	}
	if strings.TrimSpace(rawURL) == "" {
		return errorJSON("url is required"), nil
	}

	fetchError := func(msg string) string {
		return jsonString(map[string]any{"error": msg, "url": rawURL})
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fetchError("Invalid URL: " + err.Error()), nil
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fetchError("Invalid URL: scheme must be http or https"), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fetchError("Fetch failed: " + err.Error()), nil
	}
	req.Header.Set("User-Agent", userAgent)

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fetchError("Fetch failed: " + err.Error()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fetchError(fmt.Sprintf("Fetch failed: HTTP %d", resp.StatusCode)), nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/html") {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
		text := string(body)
		truncated := len(text) > maxFetchSize
		if truncated {
			text = text[:maxFetchSize]
		}
		return jsonString(map[string]any{
			"url":        rawURL,
			"title":      "",
			"word_count": len(strings.Fields(text)),
			"content":    text,
			"truncated":  truncated,
		}), nil
	}

	article, err := readability.FromReader(resp.Body, parsedURL)
	if err != nil {
		return fetchError("Could not extract content: " + err.Error()), nil
	}

	var textBuf bytes.Buffer
	if err := article.RenderText(&textBuf); err != nil {
		return fetchError("Could not extract content: " + err.Error()), nil
	}

	text := textBuf.String()
	wordCount := len(strings.Fields(text))
	truncated := len(text) > maxFetchSize
	if truncated {
		text = text[:maxFetchSize]
	}

	return jsonString(map[string]any{
		"url":        rawURL,
		"title":      article.Title(),
		"word_count": wordCount,
		"content":    text,
		"truncated":  truncated,
	}), nil
}
