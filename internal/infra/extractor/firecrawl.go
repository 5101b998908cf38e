package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"readlist-reconciler/internal/resilience/retry"
)

// firecrawlProvider extracts article markdown through the Firecrawl scrape API.
type firecrawlProvider struct {
	client  *http.Client
	apiKey  string
	baseURL *url.URL
}

// firecrawlRequest is the JSON body for POST /v1/scrape.
type firecrawlRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

// firecrawlResponse is the JSON envelope returned by the scrape endpoint.
type firecrawlResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
		Metadata struct {
			Title string `json:"title"`
		} `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

func (p *firecrawlProvider) name() string { return string(ProviderFirecrawl) }

func (p *firecrawlProvider) extract(ctx context.Context, pageURL string) (*Extraction, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: Firecrawl APIキーが設定されていません", ErrMissingAPIKey)
	}

	payload, err := json.Marshal(firecrawlRequest{
		URL:     pageURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal firecrawl request: %w", err)
	}

	endpoint := strings.TrimRight(p.baseURL.String(), "/") + "/v1/scrape"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create firecrawl request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firecrawl request failed: %w", err)
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
		return nil, retry.Transient(fmt.Errorf("read firecrawl response: %w", err))
	}

	var parsed firecrawlResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, retry.Transient(fmt.Errorf("decode firecrawl response: %w", err))
	}

	// An unsuccessful envelope is a provider-side failure, retried like
	// any other transient scrape problem.
	if !parsed.Success {
		if parsed.Error != "" {
			return nil, retry.Transient(fmt.Errorf("firecrawl scrape failed: %s", parsed.Error))
		}
		return nil, retry.Transient(fmt.Errorf("firecrawl scrape failed"))
	}

	return &Extraction{
		Content: parsed.Data.Markdown,
		Title:   parsed.Data.Metadata.Title,
	}, nil
}
