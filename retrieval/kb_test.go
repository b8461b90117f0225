package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cbit-ai/answercore/types"
	"github.com/cbit-ai/answercore/vectorstore"
)

func TestKBRetrieve(t *testing.T) {
	idx := &stubIndex{results: map[string][]vectorstore.QueryResult{
		"main": {
			{DocumentID: "d1", Document: "学费为每年9.5万元。住宿费另计。", Distance: 0.25},
			{DocumentID: "d2", Document: "不相关的旧文档", Distance: 1.5},
		},
	}}
	r := NewKBRetriever(idx, newStubEmbedder(nil), nil)
	cfg := testConfig()

	bases := []KnowledgeBase{{ID: "kb-1", Name: "招生手册", Collection: "main"}}
	cands, err := r.Retrieve(context.Background(), "学费", bases, cfg)
	require.NoError(t, err)

	// 距离 1.5 换算相似度 0.4，低于下限被过滤
	require.Len(t, cands, 1)
	c := cands[0]
	assert.Equal(t, types.SourceKnowledgeBase, c.Source)
	assert.InDelta(t, 0.8, c.RawScore, 1e-9) // 1/(1+0.25)
	assert.InDelta(t, 0.8*cfg.VectorKBWeight, c.WeightedScore, 1e-9)
	assert.Equal(t, "招生手册", c.KB.KBName)
	assert.Equal(t, "d1", c.KB.DocumentID)
}

func TestKBRetrieveAppliesWeightAndBoost(t *testing.T) {
	idx := &stubIndex{results: map[string][]vectorstore.QueryResult{
		"a": {{DocumentID: "da", Document: "A库文档", Distance: 0.25}},
		"b": {{DocumentID: "db", Document: "B库文档", Distance: 0.25}},
	}}
	r := NewKBRetriever(idx, newStubEmbedder(nil), nil)
	cfg := testConfig()

	bases := []KnowledgeBase{
		{ID: "kb-a", Name: "A", Collection: "a", Weight: 0.5},
		{ID: "kb-b", Name: "B", Collection: "b", Weight: 1.0, BoostFactor: 1.2},
	}
	cands, err := r.Retrieve(context.Background(), "q", bases, cfg)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	// 加权分降序：B 库有 boost 排在前
	assert.Equal(t, "db", cands[0].KB.DocumentID)
	assert.InDelta(t, 0.8*1.0*1.2, cands[0].WeightedScore, 1e-9)
	assert.InDelta(t, 0.8*0.5, cands[1].WeightedScore, 1e-9)
	// 原始分不受权重影响
	assert.InDelta(t, cands[0].RawScore, cands[1].RawScore, 1e-9)
}

func TestKBRetrieveSkipsFailingBase(t *testing.T) {
	idx := &stubIndex{
		results: map[string][]vectorstore.QueryResult{
			"good": {{DocumentID: "d1", Document: "正常文档", Distance: 0.1}},
		},
		errOn: map[string]error{"bad": errors.New("connection refused")},
	}
	r := NewKBRetriever(idx, newStubEmbedder(nil), nil)

	bases := []KnowledgeBase{
		{ID: "kb-bad", Name: "坏库", Collection: "bad"},
		{ID: "kb-good", Name: "好库", Collection: "good"},
	}
	cands, err := r.Retrieve(context.Background(), "q", bases, testConfig())
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "kb-good", cands[0].KB.KBID)
}

func TestKBRetrieveTruncatesToMaxResults(t *testing.T) {
	hits := make([]vectorstore.QueryResult, 8)
	for i := range hits {
		hits[i] = vectorstore.QueryResult{DocumentID: "d", Document: "x", Distance: 0.1}
	}
	idx := &stubIndex{results: map[string][]vectorstore.QueryResult{"main": hits}}
	r := NewKBRetriever(idx, newStubEmbedder(nil), nil)

	cfg := testConfig()
	cfg.MaxResults = 3
	cands, err := r.Retrieve(context.Background(), "q", []KnowledgeBase{{ID: "k", Collection: "main"}}, cfg)
	require.NoError(t, err)
	assert.Len(t, cands, 3)
}

func TestKBRetrieveMissingDependencies(t *testing.T) {
	r := NewKBRetriever(nil, nil, nil)
	_, err := r.Retrieve(context.Background(), "q", []KnowledgeBase{{ID: "k"}}, testConfig())
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigIncomplete, types.GetErrorCode(err))
}

func TestKBRetrieveEmbedderFailure(t *testing.T) {
	embedder := newStubEmbedder(nil)
	embedder.fail = true
	r := NewKBRetriever(&stubIndex{}, embedder, nil)

	_, err := r.Retrieve(context.Background(), "q", []KnowledgeBase{{ID: "k", Collection: "c"}}, testConfig())
	require.Error(t, err)
	assert.Equal(t, types.ErrSourceUnavailable, types.GetErrorCode(err))
}

func TestKBRetrieveNoBases(t *testing.T) {
	r := NewKBRetriever(&stubIndex{}, newStubEmbedder(nil), nil)
	cands, err := r.Retrieve(context.Background(), "q", nil, testConfig())
	require.NoError(t, err)
	assert.Empty(t, cands)
}
