package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const fallbackUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	scriptPattern     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
)

// FetchFallback does a plain GET with a browser user-agent and strips the
// HTML down to readable text. Used when the rendered scrape fails or comes
// back empty.
func FetchFallback(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", fallbackUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fallback fetch returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	return StripHTML(string(body)), nil
}

// StripHTML removes script/style/navigation markup and collapses whitespace,
// returning plain text. Falls back to a regex tag strip if the document does
// not parse.
func StripHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		stripped := scriptPattern.ReplaceAllString(html, " ")
		stripped = stylePattern.ReplaceAllString(stripped, " ")
		stripped = tagPattern.ReplaceAllString(stripped, " ")
		return strings.TrimSpace(whitespacePattern.ReplaceAllString(stripped, " "))
	}

	doc.Find("script, style, noscript, iframe, nav, header, footer").Remove()
	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
}
