package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAdapter(t *testing.T, cfg Config) *Adapter {
	t.Helper()
	adapter, err := New(cfg)
	require.NoError(t, err)
	// Keep retries fast in tests.
	adapter.retryConfig.InitialDelay = time.Millisecond
	adapter.retryConfig.MaxDelay = 5 * time.Millisecond
	return adapter
}

func TestNew_MissingAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderJina
	cfg.JinaAPIKey = ""

	_, err := New(cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Contains(t, err.Error(), "Jina AI APIキーが設定されていません")
}

func TestNew_MissingFirecrawlKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderFirecrawl

	_, err := New(cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
	assert.Contains(t, err.Error(), "Firecrawl APIキーが設定されていません")
}

func TestNew_MalformedBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
	}{
		{"no scheme", "r.jina.ai"},
		{"spaces", "ht tp://r.jina.ai"},
		{"empty host", "https://"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Provider = ProviderJina
			cfg.JinaAPIKey = "key"
			cfg.JinaBaseURL = tt.baseURL

			_, err := New(cfg)

			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidBaseURL))
		})
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = Provider("mercury")

	_, err := New(cfg)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProvider))
}

func TestExtract_JinaSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "markdown", r.Header.Get("X-Return-Format"))
		assert.True(t, strings.HasPrefix(r.URL.Path, "/https://example.com"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"data":{"title":"An Article","content":"# Heading\n\nBody text."}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderJina
	cfg.JinaAPIKey = "test-key"
	cfg.JinaBaseURL = server.URL
	adapter := testAdapter(t, cfg)

	result, err := adapter.Extract(context.Background(), "https://example.com/article")

	require.NoError(t, err)
	assert.Equal(t, "An Article", result.Title)
	assert.Equal(t, "# Heading\n\nBody text.", result.Content)
}

func TestExtract_TitleFallsBackToHostname(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"data":{"content":"Body text."}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderJina
	cfg.JinaAPIKey = "test-key"
	cfg.JinaBaseURL = server.URL
	adapter := testAdapter(t, cfg)

	result, err := adapter.Extract(context.Background(), "https://blog.example.com/post/42")

	require.NoError(t, err)
	assert.Equal(t, "blog.example.com", result.Title)
}

func TestExtract_HTTPErrorEmbedsStatus(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderJina
	cfg.JinaAPIKey = "test-key"
	cfg.JinaBaseURL = server.URL
	adapter := testAdapter(t, cfg)

	_, err := adapter.Extract(context.Background(), "https://example.com/missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "Not Found")
	// Client errors are transient like any other non-2xx response and
	// consume the full attempt budget.
	assert.Equal(t, 3, requests)
}

func TestExtract_EmptyContentIsRetried(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"code":200,"data":{"title":"T","content":"   \n  "}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderJina
	cfg.JinaAPIKey = "test-key"
	cfg.JinaBaseURL = server.URL
	adapter := testAdapter(t, cfg)

	_, err := adapter.Extract(context.Background(), "https://example.com/empty")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyContent))
	assert.Equal(t, 3, requests)
}

func TestExtract_TransientFailureThenSuccess(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"code":200,"data":{"title":"T","content":"Recovered body."}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderJina
	cfg.JinaAPIKey = "test-key"
	cfg.JinaBaseURL = server.URL
	adapter := testAdapter(t, cfg)

	result, err := adapter.Extract(context.Background(), "https://example.com/flaky")

	require.NoError(t, err)
	assert.Equal(t, "Recovered body.", result.Content)
	assert.Equal(t, 3, requests)
}

func TestExtract_FirecrawlSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/scrape", r.URL.Path)
		assert.Equal(t, "Bearer fc-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":{"markdown":"Scraped body.","metadata":{"title":"Scraped"}}}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderFirecrawl
	cfg.FirecrawlAPIKey = "fc-key"
	cfg.FirecrawlBaseURL = server.URL
	adapter := testAdapter(t, cfg)

	result, err := adapter.Extract(context.Background(), "https://example.com/article")

	require.NoError(t, err)
	assert.Equal(t, "Scraped", result.Title)
	assert.Equal(t, "Scraped body.", result.Content)
}

func TestExtract_FirecrawlReportsAPIError(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"success":false,"error":"unsupported page"}`))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderFirecrawl
	cfg.FirecrawlAPIKey = "fc-key"
	cfg.FirecrawlBaseURL = server.URL
	adapter := testAdapter(t, cfg)

	_, err := adapter.Extract(context.Background(), "https://example.com/article")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported page")
	assert.Equal(t, 3, requests)
}

func TestExtract_ReadabilityProvider(t *testing.T) {
	page := `<!DOCTYPE html><html><head><title>Readable Page</title></head><body>
<article><h1>Readable Page</h1>` + strings.Repeat("<p>Paragraph with enough text to satisfy the readability scorer and some more words.</p>", 20) + `</article>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.Provider = ProviderReadability
	adapter := testAdapter(t, cfg)

	result, err := adapter.Extract(context.Background(), server.URL+"/post")

	require.NoError(t, err)
	assert.Contains(t, result.Content, "Paragraph with enough text")
}
