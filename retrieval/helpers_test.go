package retrieval

import (
	"context"
	"errors"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/types"
	"github.com/cbit-ai/answercore/vectorstore"
	"github.com/cbit-ai/answercore/websearch"
)

// stubEmbedder 按文本查表返回向量，未知文本返回 fallback。
type stubEmbedder struct {
	vectors  map[string][]float64
	fallback []float64
	fail     bool
}

func newStubEmbedder(vectors map[string][]float64) *stubEmbedder {
	return &stubEmbedder{vectors: vectors, fallback: []float64{0, 0, 1}}
}

func (s *stubEmbedder) Name() string    { return "stub" }
func (s *stubEmbedder) Dimensions() int { return 3 }

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if s.fail {
		return nil, errors.New("embedder down")
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return s.fallback, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// stubIndex 按集合名查表返回固定结果。
type stubIndex struct {
	results map[string][]vectorstore.QueryResult
	errOn   map[string]error
}

func (s *stubIndex) Query(ctx context.Context, collection string, vector []float64, topK int) ([]vectorstore.QueryResult, error) {
	if err, ok := s.errOn[collection]; ok {
		return nil, err
	}
	res, ok := s.results[collection]
	if !ok {
		return nil, errors.New("collection not found")
	}
	if topK > 0 && len(res) > topK {
		res = res[:topK]
	}
	return res, nil
}

// stubProvider 返回预设搜索响应。
type stubProvider struct {
	name    string
	healthy bool
	resp    *websearch.Response
	err     error
	calls   int
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Healthy() bool { return s.healthy }

func (s *stubProvider) Search(ctx context.Context, query string, opts websearch.Options) (*websearch.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

// 候选构造器

func qaCand(raw float64, question, answer string, cfg *config.RetrievalConfig) types.Candidate {
	return types.Candidate{
		Source:        types.SourceFixedQA,
		RawScore:      raw,
		WeightedScore: raw * cfg.FixedQAWeight,
		Text:          answer,
		FixedQA:       &types.FixedQAPayload{ID: "qa-" + question, Question: question},
	}
}

func kbCand(raw float64, text string, cfg *config.RetrievalConfig) types.Candidate {
	return types.Candidate{
		Source:        types.SourceKnowledgeBase,
		RawScore:      raw,
		WeightedScore: raw * cfg.VectorKBWeight,
		Text:          text,
		KB:            &types.KBPayload{KBID: "kb-1", KBName: "招生手册", DocumentID: "doc-" + text},
	}
}

func webCand(raw float64, title, url, text string, cfg *config.RetrievalConfig) types.Candidate {
	return types.Candidate{
		Source:        types.SourceWeb,
		RawScore:      raw,
		WeightedScore: raw * cfg.WebSearchWeight,
		Text:          text,
		Web:           &types.WebPayload{Title: title, URL: url},
	}
}

func composedCand(raw float64, text string, cfg *config.RetrievalConfig) types.Candidate {
	return types.Candidate{
		Source:        types.SourceWeb,
		RawScore:      raw,
		WeightedScore: raw * cfg.WebSearchWeight,
		Text:          text,
		Web:           &types.WebPayload{Title: "AI综合答案", ComposedAnswer: true},
	}
}

func testConfig() *config.RetrievalConfig {
	cfg := config.MergeWithDefaults(config.RetrievalConfig{})
	cfg.WebSearchTriggerThreshold = 0.70
	return &cfg
}
