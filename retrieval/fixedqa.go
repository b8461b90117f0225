package retrieval

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/embedding"
	"github.com/cbit-ai/answercore/types"
)

// 关键词加成参数：每命中一个关键词加 keywordBonusPerHit，上限 keywordBonusCap。
const (
	keywordBonusPerHit = 0.05
	keywordBonusCap    = 0.15
)

// FixedQAPair 固定 Q&A 表中的一条问答对。
// Embedding 为标准问题的预计算向量，缺失时该条不参与匹配。
type FixedQAPair struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category,omitempty"`
	Priority  int       `json:"priority"`
	Embedding []float64 `json:"-"`
	IsActive  bool      `json:"is_active"`
}

// FixedQAMatcher 固定 Q&A 检索器。
//
// 匹配分 = 查询各同义问法与标准问题向量的最大余弦相似度 + 关键词加成，
// 截断到 1.0。低于 QAMinThreshold 的问答对直接丢弃。
type FixedQAMatcher struct {
	embedder embedding.Provider
	expander *Expander
	logger   *zap.Logger
}

// NewFixedQAMatcher 创建固定 Q&A 检索器。
func NewFixedQAMatcher(embedder embedding.Provider, expander *Expander, logger *zap.Logger) *FixedQAMatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if expander == nil {
		expander = NewExpander()
	}
	return &FixedQAMatcher{
		embedder: embedder,
		expander: expander,
		logger:   logger.With(zap.String("component", "fixed_qa_matcher")),
	}
}

// Match 在问答对列表中检索查询，返回按分数降序的候选。
// 分数相同时优先级高的在前。
func (m *FixedQAMatcher) Match(ctx context.Context, query string, pairs []FixedQAPair, cfg *config.RetrievalConfig) ([]types.Candidate, error) {
	if m.embedder == nil {
		return nil, types.NewSourceError(types.ErrConfigIncomplete, types.SourceFixedQA,
			"embedding provider not configured")
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	variants := m.expander.Expand(query)
	vectors, err := m.embedder.EmbedBatch(ctx, variants)
	if err != nil {
		return nil, types.NewSourceError(types.ErrSourceUnavailable, types.SourceFixedQA,
			"embed query variants").WithCause(err)
	}

	keywords := m.expander.Keywords(query)

	var scored []types.Candidate
	for _, pair := range pairs {
		if !pair.IsActive || len(pair.Embedding) == 0 {
			continue
		}

		best := 0.0
		for _, v := range vectors {
			if sim := embedding.CosineSimilarity(v, pair.Embedding); sim > best {
				best = sim
			}
		}

		score := best + keywordBonus(pair.Question, keywords)
		if score > 1.0 {
			score = 1.0
		}
		if score < cfg.QAMinThreshold {
			continue
		}

		scored = append(scored, types.Candidate{
			Source:        types.SourceFixedQA,
			RawScore:      score,
			WeightedScore: score * cfg.FixedQAWeight,
			Text:          pair.Answer,
			FixedQA: &types.FixedQAPayload{
				ID:       pair.ID,
				Question: pair.Question,
				Category: pair.Category,
				Priority: pair.Priority,
			},
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RawScore != scored[j].RawScore {
			return scored[i].RawScore > scored[j].RawScore
		}
		return scored[i].FixedQA.Priority > scored[j].FixedQA.Priority
	})

	out := m.classify(scored, cfg)

	m.logger.Debug("fixed qa matched",
		zap.String("query", query),
		zap.Int("variants", len(variants)),
		zap.Int("candidates", len(out)))
	return out, nil
}

// classify 按匹配模式给候选打 direct/suggest 标并截断。
func (m *FixedQAMatcher) classify(scored []types.Candidate, cfg *config.RetrievalConfig) []types.Candidate {
	mode := cfg.QAMatchMode
	if mode == "" {
		mode = config.QAModeSmart
	}

	var out []types.Candidate
	switch mode {
	case config.QAModeSuggest:
		// 始终只给建议
		for _, c := range scored {
			if c.RawScore < cfg.QASuggestThreshold {
				break
			}
			c.MatchType = types.MatchSuggest
			out = append(out, c)
			if len(out) >= cfg.MaxSuggestions {
				break
			}
		}

	case config.QAModeStrict:
		// 仅极高相似度直答，最多一条
		if len(scored) > 0 && scored[0].RawScore >= cfg.QADirectThreshold {
			c := scored[0]
			c.MatchType = types.MatchDirect
			out = append(out, c)
		}

	default: // smart
		// MaxSuggestions 只限建议档，直答档不占名额
		suggests := 0
		for _, c := range scored {
			switch {
			case c.RawScore >= cfg.QADirectThreshold:
				c.MatchType = types.MatchDirect
			case c.RawScore >= cfg.QASuggestThreshold:
				if suggests >= cfg.MaxSuggestions {
					continue
				}
				c.MatchType = types.MatchSuggest
				suggests++
			default:
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// keywordBonus 统计标准问题包含的查询关键词数并换算为加成分。
func keywordBonus(question string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lower := strings.ToLower(question)
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits++
		}
	}
	bonus := float64(hits) * keywordBonusPerHit
	if bonus > keywordBonusCap {
		bonus = keywordBonusCap
	}
	return bonus
}
