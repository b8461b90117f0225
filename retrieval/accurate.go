package retrieval

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/types"
)

// accurate_priority 的网络翻盘判定参数。三项条件必须同时满足，
// 网络结果才能压过语境档的知识库答案。
const (
	webConsensusThreshold = 0.88 // 共识分下限：mean × max(0, 1-2σ)
	webAdvantageThreshold = 0.15 // 网络最高分必须高出知识库的幅度
	webRecencyThreshold   = 2.0  // 时效分下限

	// webFallbackRelevance 本地全部失守时网络兜底答案的最低相关度。
	webFallbackRelevance = 0.60
)

// 时效信号词，出现在结果文本/标题/日期中计 0.5 分。
// 年份标记、中英文时效词、权威发布用语各算一类信号。
var recencyTokens = []string{
	"2024", "2025", "2026",
	"最新", "更新", "新版", "现在", "今年", "近期",
	"latest", "update", "new", "current", "recent", "recently",
	"官方", "公告", "通知",
	"official", "announcement", "notice",
}

// 权威域名特征，URL 命中计 1 分。
var authoritativeDomainTokens = []string{
	".gov.", ".edu.", "news", "press", "blog", "official",
}

// 分档话术。
const (
	webOverrideMessage = "ℹ️ 以下信息来自网络搜索，请注意甄别"
	kbCautiousMessage  = "⚠️ 现有资料不够充分，以下答案仅供参考。您也可以选择联网搜索获取最新信息"
)

// accuratePriority 精确优先策略：本地来源按置信度分档，
// 网络结果只有通过共识/优势/时效三重检验才能在 B 档翻盘。
func (f *FusionEngine) accuratePriority(candidates []types.Candidate, cfg *config.RetrievalConfig) *types.FusionResult {
	qaBest := types.BestBySource(candidates, types.SourceFixedQA)
	kbBest := types.BestBySource(candidates, types.SourceKnowledgeBase)
	webCands := types.FilterBySource(candidates, types.SourceWeb)

	// 档位 A：极高分 Q&A 或高置信知识库直接作答，网络无权参与。
	if qaBest != nil && qaBest.RawScore >= cfg.QADirectThreshold {
		return f.accurateResult(qaBest, candidates, types.TierA, types.ConfidenceHigh, cfg,
			"固定问答高置信命中", false, "")
	}
	if kbBest != nil && kbBest.RawScore >= cfg.KBHighConfidenceThreshold {
		return f.accurateResult(kbBest, candidates, types.TierA, types.ConfidenceHigh, cfg,
			"知识库高置信命中", false, "")
	}

	// 档位 B：知识库语境档，保守作答，除非网络通过翻盘检验。
	if kbBest != nil && kbBest.RawScore >= cfg.KBContextThreshold {
		if override, reason := f.webOverrides(kbBest, webCands); override {
			webBest := types.BestBySource(candidates, types.SourceWeb)
			return f.accurateResult(webBest, candidates, types.TierB, types.ConfidenceModerate, cfg,
				"网络结果通过翻盘检验："+reason, false, webOverrideMessage)
		}
		return f.accurateResult(kbBest, candidates, types.TierB, types.ConfidenceModerate, cfg,
			"知识库语境档保守作答", true, kbCautiousMessage)
	}

	// 档位 C：本地全部失守，网络达到兜底相关度则回退到网络答案。
	webBest := types.BestBySource(candidates, types.SourceWeb)
	if webBest != nil && webBest.RawScore >= webFallbackRelevance {
		return f.accurateResult(webBest, candidates, types.TierC, types.ConfidenceModerate, cfg,
			"本地来源均未达标，回退网络搜索", false, webOverrideMessage)
	}
	return f.refusal(cfg, true)
}

// accurateResult 统一出口。
func (f *FusionEngine) accurateResult(winner *types.Candidate, candidates []types.Candidate, tier types.Tier, level types.ConfidenceLevel, cfg *config.RetrievalConfig, explanation string, webOffered bool, customMsg string) *types.FusionResult {
	result := &types.FusionResult{
		Winner:           winner,
		Tier:             tier,
		ConfidenceLevel:  level,
		Citations:        BuildCitations(winner, candidates, cfg),
		Suggestions:      BuildSuggestions(winner, candidates, cfg),
		Explanation:      explanation,
		WebSearchOffered: webOffered,
		CustomMessage:    customMsg,
	}

	f.logger.Debug("accurate priority decided",
		zap.String("tier", string(tier)),
		zap.String("source", string(winner.Source)),
		zap.Float64("raw_score", winner.RawScore),
		zap.String("explanation", explanation))
	return result
}

// webOverrides 网络翻盘三重检验：共识、优势、时效缺一不可。
// 返回是否翻盘及简短说明。
func (f *FusionEngine) webOverrides(kbBest *types.Candidate, webCands []types.Candidate) (bool, string) {
	if len(webCands) == 0 {
		return false, ""
	}

	if !webConsensus(webCands) {
		return false, ""
	}

	webBest := 0.0
	for _, c := range webCands {
		if c.RawScore > webBest {
			webBest = c.RawScore
		}
	}
	if webBest < kbBest.RawScore+webAdvantageThreshold {
		return false, ""
	}

	if recencyScore(webCands) < webRecencyThreshold {
		return false, ""
	}
	return true, "多源共识且显著领先、时效性强"
}

// webConsensus 共识检验：至少两个不同域名，且分数
// mean × max(0, 1-2σ) 达到共识线。高方差说明来源间分歧大。
func webConsensus(webCands []types.Candidate) bool {
	domains := make(map[string]struct{})
	var scores []float64
	for _, c := range webCands {
		scores = append(scores, c.RawScore)
		if c.Web != nil && c.Web.URL != "" {
			if d := extractDomain(c.Web.URL); d != "" {
				domains[d] = struct{}{}
			}
		}
	}
	if len(domains) < 2 {
		return false
	}

	mean := 0.0
	for _, s := range scores {
		mean += s
	}
	mean /= float64(len(scores))

	variance := 0.0
	for _, s := range scores {
		variance += (s - mean) * (s - mean)
	}
	variance /= float64(len(scores))
	sigma := math.Sqrt(variance)

	consensus := mean * math.Max(0, 1-2*sigma)
	return consensus >= webConsensusThreshold
}

// recencyScore 时效分：AI 综合答案 +3，含时效信号词的结果各 +0.5，
// 权威域名的结果各 +1。
func recencyScore(webCands []types.Candidate) float64 {
	score := 0.0
	for _, c := range webCands {
		if c.Web == nil {
			continue
		}
		if c.Web.ComposedAnswer {
			score += 3.0
			continue
		}

		haystack := strings.ToLower(c.Text + " " + c.Web.Title + " " + c.Web.PublishedDate)
		for _, token := range recencyTokens {
			if strings.Contains(haystack, token) {
				score += 0.5
				break
			}
		}

		urlLower := strings.ToLower(c.Web.URL)
		for _, token := range authoritativeDomainTokens {
			if strings.Contains(urlLower, token) {
				score += 1.0
				break
			}
		}
	}
	return score
}
