package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// fetch retrieves url and returns its clean text content.
func (p *Provider) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	return htmlToText(resp.Body)
}

// htmlToText converts HTML content to clean plain text, preferring the
// page's main/article content over boilerplate chrome.
func htmlToText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg, nav, footer, header").Remove()

	var buf strings.Builder
	if title := doc.Find("title").First().Text(); title != "" {
		buf.WriteString("# ")
		buf.WriteString(strings.TrimSpace(title))
		buf.WriteString("\n\n")
	}

	var mainContent *goquery.Selection
	if article := doc.Find("article, main, [role='main']").First(); article.Length() > 0 {
		mainContent = article
	} else {
		mainContent = doc.Find("body")
	}

	mainContent.Find("h1, h2, h3, h4, h5, h6, p, li, pre, code, blockquote").Each(func(i int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	})

	return strings.TrimSpace(buf.String()), nil
}
