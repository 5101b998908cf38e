package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"readlist-reconciler/internal/resilience/retry"
)

// jinaProvider extracts article markdown through the Jina Reader API.
// The reader is addressed as GET {base}/{page-url} and returns the article
// as JSON when asked for it via the Accept header.
type jinaProvider struct {
	client  *http.Client
	apiKey  string
	baseURL *url.URL
}

// jinaResponse is the JSON envelope returned by the Jina Reader API.
type jinaResponse struct {
	Code int `json:"code"`
	Data struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"data"`
}

func (p *jinaProvider) name() string { return string(ProviderJina) }

func (p *jinaProvider) extract(ctx context.Context, pageURL string) (*Extraction, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: Jina AI APIキーが設定されていません", ErrMissingAPIKey)
	}

	// The reader proxies the target page: GET {base}/{page-url}.
	endpoint := strings.TrimRight(p.baseURL.String(), "/") + "/" + pageURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create jina request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Return-Format", "markdown")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jina request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retry.Transient(fmt.Errorf("read jina response: %w", err))
	}

	var parsed jinaResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, retry.Transient(fmt.Errorf("decode jina response: %w", err))
	}

	return &Extraction{
		Content: parsed.Data.Content,
		Title:   parsed.Data.Title,
	}, nil
}
