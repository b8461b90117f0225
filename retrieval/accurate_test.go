package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/types"
)

func accurateConfig() *config.RetrievalConfig {
	cfg := testConfig()
	cfg.Strategy = config.StrategyAccuratePriority
	return cfg
}

// 通过翻盘三重检验的网络候选：两个不同权威域名、零方差高分、带时效信号。
func strongWebCands(cfg *config.RetrievalConfig) []types.Candidate {
	return []types.Candidate{
		webCand(0.92, "2025年学费调整公告", "https://www.example.edu.cn/fees", "2025年最新学费标准", cfg),
		webCand(0.92, "2025学年收费标准", "https://news.other.edu.cn/tuition", "2025学年收费公示", cfg),
	}
}

func TestAccurateQADirectAnswer(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	cands := []types.Candidate{
		qaCand(0.93, "学费标准", "每年9.5万元", cfg),
		kbCand(0.95, "知识库答案", cfg),
	}
	result := f.Fuse(cands, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceFixedQA, result.Winner.Source)
	assert.Equal(t, types.TierA, result.Tier)
	assert.Equal(t, types.ConfidenceHigh, result.ConfidenceLevel)
	assert.False(t, result.WebSearchOffered)
}

func TestAccurateKBHighConfidence(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	// 知识库高置信时即使网络满分也无权参与
	cands := append([]types.Candidate{kbCand(0.87, "知识库答案", cfg)}, strongWebCands(cfg)...)
	result := f.Fuse(cands, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceKnowledgeBase, result.Winner.Source)
	assert.Equal(t, types.TierA, result.Tier)
	assert.False(t, result.WebSearchOffered)
	assert.Empty(t, result.CustomMessage)
}

func TestAccurateKBContextCautious(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	// 语境档且无网络结果：保守作答并提供联网选项
	result := f.Fuse([]types.Candidate{kbCand(0.75, "知识库答案", cfg)}, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceKnowledgeBase, result.Winner.Source)
	assert.Equal(t, types.TierB, result.Tier)
	assert.Equal(t, types.ConfidenceModerate, result.ConfidenceLevel)
	assert.True(t, result.WebSearchOffered)
	assert.Contains(t, result.CustomMessage, "⚠️")
}

func TestAccurateWebOverride(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	// 共识 0.92、优势 0.17、时效分 3.0，三重检验全部通过
	cands := append([]types.Candidate{kbCand(0.75, "旧知识库答案", cfg)}, strongWebCands(cfg)...)
	result := f.Fuse(cands, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceWeb, result.Winner.Source)
	assert.Equal(t, types.TierB, result.Tier)
	assert.Equal(t, types.ConfidenceModerate, result.ConfidenceLevel)
	assert.False(t, result.WebSearchOffered)
	assert.Contains(t, result.CustomMessage, "ℹ️")
}

func TestAccurateWebOverrideDeniedOnAdvantage(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	// 共识达标但优势只有 0.13，检验不通过，知识库保守作答
	cands := []types.Candidate{
		kbCand(0.75, "知识库答案", cfg),
		webCand(0.88, "2025公告", "https://www.example.edu.cn/a", "2025最新", cfg),
		webCand(0.88, "2025标准", "https://news.other.edu.cn/b", "2025公示", cfg),
	}
	result := f.Fuse(cands, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceKnowledgeBase, result.Winner.Source)
	assert.True(t, result.WebSearchOffered)
}

func TestAccurateWebOverrideDeniedOnSingleDomain(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	// 两条结果同域名，缺乏共识
	cands := []types.Candidate{
		kbCand(0.75, "知识库答案", cfg),
		webCand(0.92, "2025公告", "https://www.example.edu.cn/a", "2025最新", cfg),
		webCand(0.92, "2025标准", "https://www.example.edu.cn/b", "2025公示", cfg),
	}
	result := f.Fuse(cands, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceKnowledgeBase, result.Winner.Source)
}

func TestAccurateWebOverrideDeniedOnHighVariance(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	// 分数分歧大，mean × max(0, 1-2σ) 落到共识线以下
	cands := []types.Candidate{
		kbCand(0.75, "知识库答案", cfg),
		webCand(0.99, "2025公告", "https://www.example.edu.cn/a", "2025最新", cfg),
		webCand(0.55, "旧闻", "https://news.other.edu.cn/b", "2023旧信息", cfg),
	}
	result := f.Fuse(cands, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceKnowledgeBase, result.Winner.Source)
}

func TestAccurateWebFallback(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	// 本地全部失守，网络达到兜底相关度
	cands := []types.Candidate{
		kbCand(0.55, "低分知识库", cfg),
		webCand(0.70, "页面", "https://a.com/x", "网络答案", cfg),
	}
	result := f.Fuse(cands, cfg)
	require.NotNil(t, result.Winner)
	assert.Equal(t, types.SourceWeb, result.Winner.Source)
	assert.Equal(t, types.TierC, result.Tier)
	assert.Equal(t, types.ConfidenceModerate, result.ConfidenceLevel)
}

func TestAccurateRefusal(t *testing.T) {
	f := NewFusionEngine(nil)
	cfg := accurateConfig()

	cands := []types.Candidate{
		kbCand(0.55, "低分知识库", cfg),
		webCand(0.50, "页面", "https://a.com/x", "低分网络", cfg),
	}
	result := f.Fuse(cands, cfg)
	assert.Nil(t, result.Winner)
	assert.Equal(t, types.TierC, result.Tier)
	assert.True(t, result.WebSearchOffered)
	assert.NotEmpty(t, result.CustomMessage)
}

func TestAccurateRefusalNoCandidates(t *testing.T) {
	f := NewFusionEngine(nil)
	result := f.Fuse(nil, accurateConfig())
	assert.Nil(t, result.Winner)
	assert.Equal(t, types.TierC, result.Tier)
}

func TestRecencyScore(t *testing.T) {
	cfg := testConfig()

	// AI 综合答案 +3
	assert.InDelta(t, 3.0, recencyScore([]types.Candidate{composedCand(0.9, "答案", cfg)}), 1e-9)

	// 时效词 +0.5，权威域名 +1
	cands := []types.Candidate{
		webCand(0.9, "2025年公告", "https://www.example.edu.cn/a", "内容", cfg),
	}
	assert.InDelta(t, 1.5, recencyScore(cands), 1e-9)

	// 权威发布用语与英文时效词同样计 0.5 分
	official := []types.Candidate{
		webCand(0.9, "官方通知", "https://a.com/n", "内容", cfg),
	}
	assert.InDelta(t, 0.5, recencyScore(official), 1e-9)

	current := []types.Candidate{
		webCand(0.9, "current fee schedule", "https://a.com/f", "tuition", cfg),
	}
	assert.InDelta(t, 0.5, recencyScore(current), 1e-9)

	// 每条结果的时效词只计一次
	stacked := []types.Candidate{
		webCand(0.9, "最新官方公告", "https://a.com/g", "更新内容", cfg),
	}
	assert.InDelta(t, 0.5, recencyScore(stacked), 1e-9)

	// 无任何信号
	plain := []types.Candidate{
		webCand(0.9, "普通页面", "https://a.com/x", "内容", cfg),
	}
	assert.InDelta(t, 0.0, recencyScore(plain), 1e-9)
}

func TestWebConsensus(t *testing.T) {
	cfg := testConfig()

	assert.True(t, webConsensus(strongWebCands(cfg)))

	// 单域名
	single := []types.Candidate{
		webCand(0.92, "a", "https://x.com/1", "t", cfg),
		webCand(0.92, "b", "https://x.com/2", "t", cfg),
	}
	assert.False(t, webConsensus(single))

	// 均分不足
	low := []types.Candidate{
		webCand(0.80, "a", "https://x.com/1", "t", cfg),
		webCand(0.80, "b", "https://y.com/2", "t", cfg),
	}
	assert.False(t, webConsensus(low))
}
