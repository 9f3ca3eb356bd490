package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"google.golang.org/genai"
)

// newHTTPClient builds the client shared by web tools.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

const fetchUserAgent = "gozen/1.0 (+https://github.com/gozen-dev/gozen)"

// maxFetchBytes caps the response body read from a fetched page.
const maxFetchBytes = 2 << 20

// WebFetchTool loads a URL and extracts readable text from HTML pages.
type WebFetchTool struct {
	client *http.Client
}

func NewWebFetchTool(timeout time.Duration) *WebFetchTool {
	return &WebFetchTool{client: newHTTPClient(timeout)}
}

func (t *WebFetchTool) Name() string { return "web_fetch" }

func (t *WebFetchTool) Description() string {
	return "Fetch a URL and return its readable text content"
}

func (t *WebFetchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"url": {Type: genai.TypeString, Description: "HTTP or HTTPS URL to fetch"},
			},
			Required: []string{"url"},
		},
	}
}

func (t *WebFetchTool) Validate(args map[string]any) error {
	raw, ok := GetString(args, "url")
	if !ok || raw == "" {
		return ValidationError{Field: "url", Message: "required string argument missing"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ValidationError{Field: "url", Message: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ValidationError{Field: "url", Message: "only http and https URLs are supported"}
	}
	return nil
}

func (t *WebFetchTool) Execute(ctx context.Context, args map[string]any) Result {
	rawURL, _ := GetString(args, "url")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Fail("building request: %v", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := t.client.Do(req)
	if err != nil {
		return Fail("fetching %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Fail("fetching %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return Fail("reading %s: %v", rawURL, err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	text := string(body)
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "xhtml") {
		if extracted, err := extractText(text); err == nil {
			text = extracted
		}
	}
	return OkWithMeta(text, map[string]any{"url": rawURL, "status": resp.StatusCode})
}

// extractText strips tags, scripts, and styles from an HTML document.
func extractText(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				sb.WriteString(trimmed)
				sb.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String(), nil
}

// WebSearchTool queries the DuckDuckGo HTML endpoint and returns result
// titles with URLs. No API key needed.
type WebSearchTool struct {
	client   *http.Client
	endpoint string
}

func NewWebSearchTool(timeout time.Duration) *WebSearchTool {
	return &WebSearchTool{
		client:   newHTTPClient(timeout),
		endpoint: "https://html.duckduckgo.com/html/",
	}
}

func (t *WebSearchTool) Name() string { return "web_search" }

func (t *WebSearchTool) Description() string {
	return "Search the web and return result titles with URLs"
}

func (t *WebSearchTool) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"query":       {Type: genai.TypeString, Description: "Search query"},
				"num_results": {Type: genai.TypeInteger, Description: "Number of results, default 5, max 10"},
			},
			Required: []string{"query"},
		},
	}
}

func (t *WebSearchTool) Validate(args map[string]any) error {
	return requireString(args, "query")
}

// searchResult is one parsed search hit.
type searchResult struct {
	Title string
	URL   string
}

func (t *WebSearchTool) Execute(ctx context.Context, args map[string]any) Result {
	query, _ := GetString(args, "query")
	numResults := GetIntDefault(args, "num_results", 5)
	if numResults < 1 || numResults > 10 {
		numResults = 5
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return Fail("building request: %v", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := t.client.Do(req)
	if err != nil {
		return Fail("searching: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Fail("searching: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return Fail("reading results: %v", err)
	}

	results := parseSearchResults(string(body), numResults)
	if len(results) == 0 {
		return Ok("No results for " + query)
	}

	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, r.Title, r.URL)
	}
	return OkWithMeta(sb.String(), map[string]any{"results": len(results)})
}

// parseSearchResults pulls result anchors out of the response page.
func parseSearchResults(doc string, limit int) []searchResult {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	var results []searchResult
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= limit {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && hasClass(n, "result__a") {
			href := attr(n, "href")
			title := strings.TrimSpace(nodeText(n))
			if href != "" && title != "" {
				results = append(results, searchResult{Title: title, URL: cleanResultURL(href)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return results
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// cleanResultURL unwraps the redirect parameter the endpoint wraps hrefs in.
func cleanResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
