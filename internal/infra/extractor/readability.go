package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"

	"readlist-reconciler/internal/resilience/retry"
)

// readabilityProvider extracts articles locally: it fetches the page itself,
// runs the Mozilla Readability algorithm over the HTML, and converts the
// resulting article fragment to markdown. No API credential is required.
type readabilityProvider struct {
	client      *http.Client
	converter   *md.Converter
	maxBodySize int64
}

func newReadabilityProvider(client *http.Client, maxBodySize int64) *readabilityProvider {
	return &readabilityProvider{
		client:      client,
		converter:   md.NewConverter("", true, nil),
		maxBodySize: maxBodySize,
	}
}

func (p *readabilityProvider) name() string { return string(ProviderReadability) }

func (p *readabilityProvider) extract(ctx context.Context, pageURL string) (*Extraction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create page request: %w", err)
	}
	req.Header.Set("User-Agent", "ReadlistReconcilerBot/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	// Size limit is enforced while reading, not from Content-Length.
	limitedReader := io.LimitReader(resp.Body, p.maxBodySize+1)
	htmlBytes, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("read page body: %w", err))
	}
	if int64(len(htmlBytes)) > p.maxBodySize {
		return nil, retry.Transient(fmt.Errorf("page body exceeds %d bytes", p.maxBodySize))
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = nil // Readability can work without the URL
	}
	if resp.Request != nil && resp.Request.URL != nil {
		parsedURL = resp.Request.URL
	}

	article, err := readability.FromReader(bytes.NewReader(htmlBytes), parsedURL)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("readability extraction failed: %w", err))
	}

	markdown, err := p.converter.ConvertString(article.Content)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("markdown conversion failed: %w", err))
	}

	return &Extraction{
		Content: markdown,
		Title:   article.Title,
	}, nil
}
