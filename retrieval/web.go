package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/types"
	"github.com/cbit-ai/answercore/websearch"
)

// composedAnswerRelevance AI 综合答案没有提供商打分，给固定相关度。
const composedAnswerRelevance = 0.90

// WebRetriever 条件触发的联网搜索。
// 按 SearchChannels 顺序选取第一个健康的提供者，成功后记一次用量。
type WebRetriever struct {
	providers []websearch.Provider
	usage     *websearch.UsageStore
	logger    *zap.Logger
}

// NewWebRetriever 创建联网搜索检索器。usage 可为 nil（不计用量）。
func NewWebRetriever(providers []websearch.Provider, usage *websearch.UsageStore, logger *zap.Logger) *WebRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebRetriever{
		providers: providers,
		usage:     usage,
		logger:    logger.With(zap.String("component", "web_retriever")),
	}
}

// ShouldTrigger 判断在本地最高原始分为 bestLocal 时是否联网。
//
// 触发规则按优先级：
//  1. 联网未启用则不触发。
//  2. 触发阈值为 0 视为调用方已获用户授权的无条件联网。
//  3. safe_priority 模式从不自动联网。
//  4. realtime_knowledge 模式按自动阈值触发。
//  5. 旧版行为按触发阈值触发。
func (w *WebRetriever) ShouldTrigger(cfg *config.RetrievalConfig, bestLocal float64) bool {
	if !cfg.EnableWebSearch {
		return false
	}
	if cfg.WebSearchTriggerThreshold == 0 {
		return true
	}
	switch cfg.StrategyMode {
	case config.ModeSafePriority:
		return false
	case config.ModeRealtimeKnowledge:
		return bestLocal < cfg.WebSearchAutoThreshold
	default:
		return bestLocal < cfg.WebSearchTriggerThreshold
	}
}

// Search 执行联网搜索并把结果转为候选。
// 没有健康提供者时返回来源不可用错误。
func (w *WebRetriever) Search(ctx context.Context, query string, cfg *config.RetrievalConfig) ([]types.Candidate, error) {
	provider := w.pickProvider(cfg.SearchChannels)
	if provider == nil {
		return nil, types.NewSourceError(types.ErrSourceUnavailable, types.SourceWeb,
			"no healthy search provider")
	}

	resp, err := provider.Search(ctx, query, websearch.Options{
		MaxResults:    cfg.MaxResults,
		IncludeAnswer: true,
	})
	if err != nil {
		return nil, types.NewSourceError(types.ErrSourceUnavailable, types.SourceWeb,
			"search failed").WithCause(err)
	}

	var out []types.Candidate
	if resp.Answer != "" {
		out = append(out, types.Candidate{
			Source:        types.SourceWeb,
			RawScore:      composedAnswerRelevance,
			WeightedScore: composedAnswerRelevance * cfg.WebSearchWeight,
			Text:          resp.Answer,
			Web:           &types.WebPayload{Title: "AI综合答案", ComposedAnswer: true},
		})
	}
	for _, r := range resp.Results {
		out = append(out, types.Candidate{
			Source:        types.SourceWeb,
			RawScore:      r.Relevance,
			WeightedScore: r.Relevance * cfg.WebSearchWeight,
			Text:          r.Content,
			Web: &types.WebPayload{
				Title:         r.Title,
				URL:           r.URL,
				PublishedDate: r.PublishedDate,
			},
		})
	}

	if w.usage != nil {
		if _, err := w.usage.Increment(ctx, provider.Name()); err != nil {
			// 计数失败不影响检索结果
			w.logger.Warn("usage increment failed",
				zap.String("provider", provider.Name()), zap.Error(err))
		}
	}

	w.logger.Info("web search completed",
		zap.String("provider", provider.Name()),
		zap.Int("candidates", len(out)))
	return out, nil
}

// pickProvider 按 channels 顺序取第一个健康提供者；
// channels 为空时按注册顺序取。
func (w *WebRetriever) pickProvider(channels []string) websearch.Provider {
	if len(channels) == 0 {
		for _, p := range w.providers {
			if p.Healthy() {
				return p
			}
		}
		return nil
	}
	byName := make(map[string]websearch.Provider, len(w.providers))
	for _, p := range w.providers {
		byName[p.Name()] = p
	}
	for _, name := range channels {
		if p, ok := byName[name]; ok && p.Healthy() {
			return p
		}
	}
	return nil
}
