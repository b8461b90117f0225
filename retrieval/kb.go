package retrieval

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/embedding"
	"github.com/cbit-ai/answercore/types"
	"github.com/cbit-ai/answercore/vectorstore"
)

// KnowledgeBase 一个可检索的向量知识库。
// Weight 与 BoostFactor 为 0 时按 1.0 处理。
type KnowledgeBase struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Collection  string  `json:"collection"`
	Weight      float64 `json:"weight,omitempty"`
	BoostFactor float64 `json:"boost_factor,omitempty"`
}

// KBRetriever 向量知识库检索器，逐库语义检索后合并。
//
// 距离到相似度的换算为 1/(1+d)。单库失败只记日志并跳过，
// 不影响其他库的结果。
type KBRetriever struct {
	index    vectorstore.Index
	embedder embedding.Provider
	logger   *zap.Logger
}

// NewKBRetriever 创建知识库检索器。
func NewKBRetriever(index vectorstore.Index, embedder embedding.Provider, logger *zap.Logger) *KBRetriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KBRetriever{
		index:    index,
		embedder: embedder,
		logger:   logger.With(zap.String("component", "kb_retriever")),
	}
}

// Retrieve 在全部启用的知识库中检索查询。
// 返回按加权分降序、截断到 MaxResults 的候选。
func (r *KBRetriever) Retrieve(ctx context.Context, query string, bases []KnowledgeBase, cfg *config.RetrievalConfig) ([]types.Candidate, error) {
	if r.index == nil || r.embedder == nil {
		return nil, types.NewSourceError(types.ErrConfigIncomplete, types.SourceKnowledgeBase,
			"vector index or embedding provider not configured")
	}
	if len(bases) == 0 {
		return nil, nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, types.NewSourceError(types.ErrSourceUnavailable, types.SourceKnowledgeBase,
			"embed query").WithCause(err)
	}

	var merged []types.Candidate
	for _, kb := range bases {
		results, err := r.index.Query(ctx, kb.Collection, vector, cfg.MaxResults)
		if err != nil {
			r.logger.Warn("knowledge base query failed",
				zap.String("kb_id", kb.ID),
				zap.String("kb_name", kb.Name),
				zap.Error(err))
			continue
		}

		weight := kb.Weight
		if weight == 0 {
			weight = 1.0
		}
		boost := kb.BoostFactor
		if boost == 0 {
			boost = 1.0
		}

		for _, res := range results {
			sim := 1.0 / (1.0 + res.Distance)
			if sim < cfg.KBMinThreshold {
				continue
			}
			merged = append(merged, types.Candidate{
				Source:        types.SourceKnowledgeBase,
				RawScore:      sim,
				WeightedScore: sim * cfg.VectorKBWeight * weight * boost,
				Text:          res.Document,
				KB: &types.KBPayload{
					KBID:       kb.ID,
					KBName:     kb.Name,
					DocumentID: res.DocumentID,
					Metadata:   res.Metadata,
				},
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].WeightedScore > merged[j].WeightedScore
	})
	if cfg.MaxResults > 0 && len(merged) > cfg.MaxResults {
		merged = merged[:cfg.MaxResults]
	}

	r.logger.Debug("knowledge base retrieved",
		zap.String("query", query),
		zap.Int("bases", len(bases)),
		zap.Int("candidates", len(merged)))
	return merged, nil
}
