package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/mindset-labs/rag-ai/internal/core/domain"
)

// Scraper fetches a web page and extracts its visible text. Runes
// outside the ASCII range are dropped to keep the downstream pipeline on
// the character set the embedding prompts expect.
type Scraper struct {
	client *http.Client
}

func New(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

func (s *Scraper) Scrape(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build scrape request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "fetch "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.WrapError(domain.ErrInvalidInput, fmt.Sprintf("fetch %s: status %d", url, resp.StatusCode), nil)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	text := Sanitize(extractText(root))
	if text == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "page has no visible text: "+url, nil)
	}
	return text, nil
}

// extractText walks the DOM collecting text nodes, skipping script and
// style subtrees.
func extractText(n *html.Node) string {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return ""
		}
	}
	var sb strings.Builder
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(extractText(c))
	}
	return sb.String()
}

// Sanitize drops non-ASCII runes, collapses whitespace runs and trims
// the result.
func Sanitize(text string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		if r < 0x80 {
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
