package websearch

import "context"

// SearchResult 归一化后的单条网页搜索结果。
type SearchResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Relevance     float64 `json:"relevance"`
	PublishedDate string  `json:"published_date,omitempty"`
}

// Response 一次搜索的归一化结果。
// Answer 为提供商基于多源生成的 AI 综合答案，可为空。
type Response struct {
	Query   string         `json:"query"`
	Answer  string         `json:"answer,omitempty"`
	Results []SearchResult `json:"results"`
}

// Options 单次搜索的选项。
type Options struct {
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth,omitempty"` // basic / advanced
	IncludeAnswer  bool     `json:"include_answer"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
}

// Provider 联网搜索提供者接口。
type Provider interface {
	// Name 返回渠道名（如 "tavily"）。
	Name() string

	// Healthy 报告该渠道当前是否可用（配置完整等）。
	Healthy() bool

	// Search 执行搜索并返回归一化结果。
	Search(ctx context.Context, query string, opts Options) (*Response, error)
}
