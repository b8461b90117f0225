package retrieval

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/types"
)

// 通用策略的分档线（accurate_priority 有自己的一套判定）。
const (
	genericTierAThreshold = 0.85
	genericTierBThreshold = 0.70
)

// defaultNoResultMessage 无可用答案时的兜底话术。
const defaultNoResultMessage = "抱歉，我在现有资料中没有找到足够可靠的答案。您可以换个问法，或选择联网搜索获取最新信息。"

// FusionEngine 把多来源候选融合为单一结果，按配置分发到七种策略。
type FusionEngine struct {
	logger *zap.Logger
}

// NewFusionEngine 创建融合引擎。
func NewFusionEngine(logger *zap.Logger) *FusionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FusionEngine{logger: logger.With(zap.String("component", "fusion_engine"))}
}

// Fuse 执行融合。候选为空时返回 C 档拒答结果。
// 同一输入总是产生同一输出，策略内部没有随机性。
func (f *FusionEngine) Fuse(candidates []types.Candidate, cfg *config.RetrievalConfig) *types.FusionResult {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = config.StrategyWeightedAvg
	}

	if strategy == config.StrategyAccuratePriority {
		return f.accuratePriority(candidates, cfg)
	}

	if len(candidates) == 0 {
		return f.refusal(cfg, false)
	}

	var winner *types.Candidate
	switch strategy {
	case config.StrategyPriority:
		winner = f.byPriority(candidates, cfg)
	case config.StrategyMaxScore:
		winner = maxByRaw(candidates)
	case config.StrategyVoting:
		winner = f.byVoting(candidates)
	case config.StrategyMultiSourceFusion:
		winner = f.byMultiSourceFusion(candidates, cfg)
	case config.StrategyKBPriority:
		winner = f.byKBPriority(candidates, cfg)
	default: // weighted_avg
		winner = maxByWeighted(candidates)
	}

	if winner == nil {
		return f.refusal(cfg, false)
	}
	return f.buildStandardResult(winner, candidates, strategy, cfg)
}

// byPriority 按固定来源顺序取第一个达到高阈值的来源，
// 都不达标则退回最高加权分。
func (f *FusionEngine) byPriority(candidates []types.Candidate, cfg *config.RetrievalConfig) *types.Candidate {
	order := []types.Source{types.SourceFixedQA, types.SourceKnowledgeBase, types.SourceWeb}
	for _, src := range order {
		best := types.BestBySource(candidates, src)
		if best != nil && best.RawScore >= cfg.HighThreshold {
			return best
		}
	}
	return maxByWeighted(candidates)
}

// byVoting 按答案文本分组，组内加权分求和，票数最高的组胜出。
// 胜出组内取原始分最高的候选作为代表，平票时按候选顺序。
func (f *FusionEngine) byVoting(candidates []types.Candidate) *types.Candidate {
	votes := make(map[string]float64)
	for _, c := range candidates {
		votes[c.Text] += c.WeightedScore
	}

	var winner *types.Candidate
	bestVote := -1.0
	for i := range candidates {
		c := &candidates[i]
		vote := votes[c.Text]
		if vote > bestVote || (vote == bestVote && c.RawScore > winner.RawScore) {
			bestVote = vote
			winner = c
		}
	}
	return winner
}

// byMultiSourceFusion 在达到低阈值的候选中取最高加权分，
// 无人达标则退回全局最高加权分。
func (f *FusionEngine) byMultiSourceFusion(candidates []types.Candidate, cfg *config.RetrievalConfig) *types.Candidate {
	var eligible []types.Candidate
	for _, c := range candidates {
		if c.RawScore >= cfg.LowThreshold {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) > 0 {
		return maxByWeighted(eligible)
	}
	return maxByWeighted(candidates)
}

// byKBPriority 知识库优先策略。
//
// 判定顺序：极高分 Q&A 无条件直答；知识库达到绝对优先线则不看其他
// 来源；达到优先线时网络结果必须高出奖励幅度才能翻盘；否则按加权分
// 公开竞争。
func (f *FusionEngine) byKBPriority(candidates []types.Candidate, cfg *config.RetrievalConfig) *types.Candidate {
	qaBest := types.BestBySource(candidates, types.SourceFixedQA)
	if qaBest != nil && qaBest.RawScore >= cfg.QADirectThreshold {
		return qaBest
	}

	kbBest := types.BestBySource(candidates, types.SourceKnowledgeBase)
	if kbBest != nil {
		if kbBest.RawScore >= cfg.KBAbsolutePriorityThreshold {
			return kbBest
		}
		if kbBest.RawScore >= cfg.KBPriorityThreshold {
			webBest := types.BestBySource(candidates, types.SourceWeb)
			if webBest != nil && webBest.RawScore > kbBest.RawScore+cfg.KBPriorityBonus {
				return webBest
			}
			return kbBest
		}
	}
	return maxByWeighted(candidates)
}

// buildStandardResult 通用策略的统一出口：按原始分分档并补齐引用、
// 建议和解释。
func (f *FusionEngine) buildStandardResult(winner *types.Candidate, candidates []types.Candidate, strategy config.Strategy, cfg *config.RetrievalConfig) *types.FusionResult {
	var tier types.Tier
	var level types.ConfidenceLevel
	switch {
	case winner.RawScore >= genericTierAThreshold:
		tier, level = types.TierA, types.ConfidenceHigh
	case winner.RawScore >= genericTierBThreshold:
		tier, level = types.TierB, types.ConfidenceModerate
	default:
		tier, level = types.TierC, types.ConfidenceLow
	}

	result := &types.FusionResult{
		Winner:          winner,
		Tier:            tier,
		ConfidenceLevel: level,
		Citations:       BuildCitations(winner, candidates, cfg),
		Suggestions:     BuildSuggestions(winner, candidates, cfg),
		Explanation: fmt.Sprintf("策略 %s 选中来源 %s，相似度 %.2f（加权 %.2f）",
			strategy, winner.Source, winner.RawScore, winner.WeightedScore),
	}

	f.logger.Debug("fusion selected",
		zap.String("strategy", string(strategy)),
		zap.String("source", string(winner.Source)),
		zap.Float64("raw_score", winner.RawScore),
		zap.String("tier", string(tier)))
	return result
}

// refusal C 档拒答结果。webOffered 标记是否向用户提供联网选项。
func (f *FusionEngine) refusal(cfg *config.RetrievalConfig, webOffered bool) *types.FusionResult {
	msg := cfg.NoResultMessage
	if msg == "" {
		msg = defaultNoResultMessage
	}
	return &types.FusionResult{
		Tier:             types.TierC,
		ConfidenceLevel:  types.ConfidenceLow,
		Explanation:      "没有来源达到可用阈值",
		WebSearchOffered: webOffered,
		CustomMessage:    msg,
	}
}

func maxByWeighted(candidates []types.Candidate) *types.Candidate {
	var best *types.Candidate
	for i := range candidates {
		if best == nil || candidates[i].WeightedScore > best.WeightedScore {
			best = &candidates[i]
		}
	}
	return best
}

func maxByRaw(candidates []types.Candidate) *types.Candidate {
	var best *types.Candidate
	for i := range candidates {
		if best == nil || candidates[i].RawScore > best.RawScore {
			best = &candidates[i]
		}
	}
	return best
}
