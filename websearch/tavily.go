package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// minRelevance 归一化阶段丢弃低相关结果的下限。
const minRelevance = 0.5

// TavilyConfig Tavily AI Search 客户端配置。
type TavilyConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout"`

	// RequestsPerSecond 客户端侧限速，0 表示不限。
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second"`
}

// TavilyClient Tavily AI Search 提供者实现。
type TavilyClient struct {
	cfg     TavilyConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewTavilyClient 创建 Tavily 搜索客户端。
func NewTavilyClient(cfg TavilyConfig, logger *zap.Logger) *TavilyClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &TavilyClient{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger.With(zap.String("component", "tavily_client")),
	}
}

// Name 实现 Provider 接口。
func (t *TavilyClient) Name() string { return "tavily" }

// Healthy 实现 Provider 接口。
func (t *TavilyClient) Healthy() bool { return t.cfg.APIKey != "" }

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	IncludeAnswer  bool     `json:"include_answer"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Answer  string `json:"answer"`
	Results []struct {
		Title         string  `json:"title"`
		URL           string  `json:"url"`
		Content       string  `json:"content"`
		Score         float64 `json:"score"`
		PublishedDate string  `json:"published_date"`
	} `json:"results"`
}

// Search 实现 Provider 接口。
// 相关度低于 minRelevance 的结果在这里即被丢弃。
func (t *TavilyClient) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	if t.cfg.APIKey == "" {
		return nil, fmt.Errorf("websearch: tavily api key not configured")
	}
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("websearch: rate limit wait: %w", err)
		}
	}

	depth := opts.SearchDepth
	if depth == "" {
		depth = "basic"
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:         t.cfg.APIKey,
		Query:          query,
		SearchDepth:    depth,
		MaxResults:     maxResults,
		IncludeAnswer:  opts.IncludeAnswer,
		IncludeDomains: opts.IncludeDomains,
		ExcludeDomains: opts.ExcludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("websearch: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("websearch: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	t.logger.Info("tavily search",
		zap.String("query", query),
		zap.String("depth", depth),
		zap.Int("max_results", maxResults))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("websearch: tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("websearch: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("websearch: tavily api key invalid")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("websearch: tavily quota exhausted")
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("websearch: tavily returned status %d: %s", resp.StatusCode, firstN(respBody, 200))
	}

	var parsed tavilyResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("websearch: parse response: %w", err)
	}

	out := &Response{Query: parsed.Query, Answer: parsed.Answer}
	for _, r := range parsed.Results {
		if r.Score < minRelevance {
			continue
		}
		out.Results = append(out.Results, SearchResult{
			Title:         r.Title,
			URL:           r.URL,
			Content:       r.Content,
			Relevance:     r.Score,
			PublishedDate: r.PublishedDate,
		})
	}

	t.logger.Info("tavily search completed",
		zap.Int("results", len(out.Results)),
		zap.Bool("has_answer", out.Answer != ""))

	return out, nil
}

func firstN(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
