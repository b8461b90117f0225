// Package answercore provides a top-level convenience entry point for creating
// a retrieval engine with minimal boilerplate.
//
// Usage:
//
//	import "github.com/cbit-ai/answercore"
//
//	eng, err := answercore.New(
//		answercore.WithEmbedder(provider),
//		answercore.WithVectorIndex(index),
//		answercore.WithTavily(apiKey),
//	)
//	outcome := eng.Retrieve(ctx, "sme有哪些专业", answercore.DefaultConfig(), pairs, bases)
//
// This is a thin wrapper around [retrieval.NewEngine]; both produce identical
// results. Use this package when you prefer the shorter import path.
package answercore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/embedding"
	"github.com/cbit-ai/answercore/retrieval"
	"github.com/cbit-ai/answercore/types"
	"github.com/cbit-ai/answercore/vectorstore"
	"github.com/cbit-ai/answercore/websearch"
)

// 常用类型的短路径别名，调用方无需 import 子包。
type (
	Engine        = retrieval.Engine
	Config        = config.RetrievalConfig
	Outcome       = types.RetrievalOutcome
	FixedQAPair   = retrieval.FixedQAPair
	KnowledgeBase = retrieval.KnowledgeBase
)

// DefaultConfig 返回全默认的检索配置。
func DefaultConfig() Config { return config.DefaultRetrievalConfig() }

// Option configures the engine created by [New].
type Option func(*retrieval.Options)

// WithEmbedder 设置嵌入提供者（必填）。
func WithEmbedder(p embedding.Provider) Option {
	return func(o *retrieval.Options) { o.Embedder = p }
}

// WithVectorIndex 设置向量索引。缺省时知识库来源被降级。
func WithVectorIndex(idx vectorstore.Index) Option {
	return func(o *retrieval.Options) { o.Index = idx }
}

// WithSearchProvider 追加一个联网搜索提供者。
func WithSearchProvider(p websearch.Provider) Option {
	return func(o *retrieval.Options) { o.SearchProviders = append(o.SearchProviders, p) }
}

// WithTavily 用 API key 追加一个 Tavily 搜索提供者。
func WithTavily(apiKey string) Option {
	return func(o *retrieval.Options) {
		o.SearchProviders = append(o.SearchProviders,
			websearch.NewTavilyClient(websearch.TavilyConfig{APIKey: apiKey}, o.Logger))
	}
}

// WithUsageStore 设置搜索用量计数存储。
func WithUsageStore(u *websearch.UsageStore) Option {
	return func(o *retrieval.Options) { o.Usage = u }
}

// WithMetrics 设置 Prometheus 指标集。
func WithMetrics(m *retrieval.Metrics) Option {
	return func(o *retrieval.Options) { o.Metrics = m }
}

// WithLogger sets a custom zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *retrieval.Options) { o.Logger = l }
}

// New creates a [retrieval.Engine] with minimal configuration.
// At minimum, an embedding provider must be specified via [WithEmbedder].
func New(opts ...Option) (*retrieval.Engine, error) {
	var o retrieval.Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Embedder == nil {
		return nil, fmt.Errorf("answercore: embedding provider is required")
	}
	return retrieval.NewEngine(o), nil
}
