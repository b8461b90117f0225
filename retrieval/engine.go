package retrieval

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/embedding"
	"github.com/cbit-ai/answercore/types"
	"github.com/cbit-ai/answercore/vectorstore"
	"github.com/cbit-ai/answercore/websearch"
)

// sensitiveFilteredMessage 查询命中敏感词过滤时的回复。
const sensitiveFilteredMessage = "抱歉，您的问题涉及敏感内容，无法提供回答。"

// Options 引擎的协作方注入。
// Embedder 为必填；其余协作方缺失时对应来源被降级而非报错。
type Options struct {
	Embedder        embedding.Provider
	Index           vectorstore.Index
	SearchProviders []websearch.Provider
	Usage           *websearch.UsageStore
	Metrics         *Metrics
	Tracer          trace.Tracer
	Logger          *zap.Logger
}

// Engine 检索引擎：retrieve 统一入口的持有者。
// 本身无状态，同一实例可被并发使用。
type Engine struct {
	fixedQA *FixedQAMatcher
	kb      *KBRetriever
	web     *WebRetriever
	fusion  *FusionEngine
	metrics *Metrics
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewEngine 组装检索引擎。
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("answercore/retrieval")
	}

	expander := NewExpander()
	return &Engine{
		fixedQA: NewFixedQAMatcher(opts.Embedder, expander, logger),
		kb:      NewKBRetriever(opts.Index, opts.Embedder, logger),
		web:     NewWebRetriever(opts.SearchProviders, opts.Usage, logger),
		fusion:  NewFusionEngine(logger),
		metrics: opts.Metrics,
		tracer:  tracer,
		logger:  logger.With(zap.String("component", "retrieval_engine")),
	}
}

// Retrieve 执行一次完整检索。
//
// 固定 Q&A 与知识库并发检索，联网搜索在两者之后按触发规则执行
// （它的触发条件依赖本地最高分）。任何来源的失败都被降级为该源
// 零候选并记录在 Path 中，本方法不返回错误。
func (e *Engine) Retrieve(ctx context.Context, query string, cfg config.RetrievalConfig, pairs []FixedQAPair, bases []KnowledgeBase) *types.RetrievalOutcome {
	start := time.Now()
	merged := config.MergeWithDefaults(cfg)
	c := &merged

	traceID := uuid.NewString()
	ctx, span := e.tracer.Start(ctx, "retrieval.retrieve",
		trace.WithAttributes(
			attribute.String("trace_id", traceID),
			attribute.String("strategy", string(c.Strategy)),
		))
	defer span.End()

	outcome := &types.RetrievalOutcome{
		Query:   query,
		TraceID: traceID,
	}

	// 预处理
	prepStart := time.Now()
	prep, filtered := preprocess(query, c)
	outcome.Preprocessing = prep
	outcome.Timing.PreprocessingMS = msSince(prepStart)
	if filtered {
		outcome.Tier = types.TierC
		outcome.ConfidenceLevel = types.ConfidenceLow
		outcome.CustomMessage = sensitiveFilteredMessage
		outcome.Timing.TotalMS = msSince(start)
		e.logger.Info("query filtered", zap.String("trace_id", traceID))
		return outcome
	}
	query = prep.ProcessedQuery

	// 本地来源并发检索
	retrStart := time.Now()
	var qaCands, kbCands []types.Candidate
	var qaPath, kbPath types.PathEntry

	g, gctx := errgroup.WithContext(ctx)
	if c.FixedQAEnabled() {
		g.Go(func() error {
			qaCands, qaPath = e.runSource(gctx, types.SourceFixedQA, c, func(sctx context.Context) ([]types.Candidate, error) {
				return e.fixedQA.Match(sctx, query, pairs, c)
			})
			return nil
		})
	} else {
		qaPath = types.PathEntry{Source: types.SourceFixedQA}
	}
	if c.VectorKBEnabled() {
		g.Go(func() error {
			kbCands, kbPath = e.runSource(gctx, types.SourceKnowledgeBase, c, func(sctx context.Context) ([]types.Candidate, error) {
				return e.kb.Retrieve(sctx, query, bases, c)
			})
			return nil
		})
	} else {
		kbPath = types.PathEntry{Source: types.SourceKnowledgeBase}
	}
	_ = g.Wait() // runSource 不向上传播错误

	candidates := append(append([]types.Candidate{}, qaCands...), kbCands...)

	// 联网搜索在本地结果之后，触发条件依赖本地最高分
	webPath := types.PathEntry{Source: types.SourceWeb}
	if e.web.ShouldTrigger(c, types.MaxRawScore(candidates)) {
		var webCands []types.Candidate
		webCands, webPath = e.runSource(ctx, types.SourceWeb, c, func(sctx context.Context) ([]types.Candidate, error) {
			return e.web.Search(sctx, query, c)
		})
		candidates = append(candidates, webCands...)
	}
	outcome.Path = []types.PathEntry{qaPath, kbPath, webPath}
	outcome.Timing.RetrievalMS = msSince(retrStart)

	// 融合
	fusionStart := time.Now()
	fusion := e.fusion.Fuse(candidates, c)
	outcome.Timing.FusionMS = msSince(fusionStart)

	outcome.Tier = fusion.Tier
	outcome.ConfidenceLevel = fusion.ConfidenceLevel
	outcome.Citations = fusion.Citations
	outcome.Explanation = fusion.Explanation
	outcome.WebSearchOffered = fusion.WebSearchOffered
	outcome.CustomMessage = fusion.CustomMessage
	outcome.Suggestions = fusion.Suggestions
	outcome.FusionDetails = types.FusionDetails{
		Strategy:        string(c.Strategy),
		TotalCandidates: len(candidates),
		Selected:        fusion.Winner != nil,
	}
	if fusion.Winner != nil {
		outcome.MatchedSource = fusion.Winner.Source
		outcome.ConfidenceScore = fusion.Winner.RawScore
		outcome.WeightedScore = fusion.Winner.WeightedScore
		outcome.Answer = fusion.Winner.Text
	}
	outcome.References = buildReferences(candidates, outcome.Path)
	outcome.Timing.TotalMS = msSince(start)

	e.metrics.ObserveRetrieval(string(c.Strategy), fusion.Tier, time.Since(start))
	span.SetAttributes(
		attribute.String("tier", string(fusion.Tier)),
		attribute.Int("candidates", len(candidates)),
	)

	e.logger.Info("retrieval completed",
		zap.String("trace_id", traceID),
		zap.String("strategy", string(c.Strategy)),
		zap.String("tier", string(fusion.Tier)),
		zap.String("matched_source", string(outcome.MatchedSource)),
		zap.Float64("confidence", outcome.ConfidenceScore),
		zap.Float64("total_ms", outcome.Timing.TotalMS))
	return outcome
}

// runSource 带独立超时执行一个检索源，把失败降级为路径记录。
func (e *Engine) runSource(ctx context.Context, src types.Source, cfg *config.RetrievalConfig, fn func(context.Context) ([]types.Candidate, error)) ([]types.Candidate, types.PathEntry) {
	sctx, cancel := context.WithTimeout(ctx, cfg.SourceTimeout)
	defer cancel()

	start := time.Now()
	cands, err := fn(sctx)
	entry := types.PathEntry{
		Source:      src,
		Consulted:   true,
		ResultCount: len(cands),
		DurationMS:  msSince(start),
	}

	var errCode types.ErrorCode
	if err != nil {
		errCode = types.GetErrorCode(err)
		if errors.Is(err, context.DeadlineExceeded) {
			errCode = types.ErrTimeout
		}
		if errCode == "" {
			errCode = types.ErrSourceUnavailable
		}
		entry.ErrorCode = string(errCode)
		entry.ErrorMessage = err.Error()
		e.logger.Warn("retrieval source failed",
			zap.String("source", string(src)),
			zap.String("code", string(errCode)),
			zap.Error(err))
		cands = nil
		entry.ResultCount = 0
	}

	e.metrics.ObserveSource(src, time.Since(start), entry.ResultCount, errCode)
	return cands, entry
}

// preprocess 查询预处理：清洗、语言检测、意图识别、敏感词过滤。
// 第二个返回值为 true 时查询被过滤，检索不再进行。
func preprocess(query string, cfg *config.RetrievalConfig) (types.PreprocessingInfo, bool) {
	info := types.PreprocessingInfo{
		OriginalQuery:  query,
		ProcessedQuery: strings.TrimSpace(query),
	}
	if !cfg.PreprocessingEnabled() {
		info.ProcessedQuery = query
		return info, false
	}

	if cfg.LanguageDetectionEnabled() {
		info.DetectedLanguage = detectLanguage(info.ProcessedQuery)
	}
	if cfg.IntentRecognitionEnabled() {
		info.DetectedIntent = detectIntent(info.ProcessedQuery)
	}
	if cfg.EnableSensitiveFilter {
		lower := strings.ToLower(info.ProcessedQuery)
		for _, w := range cfg.SensitiveWords {
			if w != "" && strings.Contains(lower, strings.ToLower(w)) {
				info.IsFiltered = true
				return info, true
			}
		}
	}
	return info, false
}

// detectLanguage 含汉字判中文，否则判英文。
func detectLanguage(s string) string {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return "zh"
		}
	}
	return "en"
}

// detectIntent 粗粒度意图识别：疑问、求助或一般陈述。
func detectIntent(s string) string {
	lower := strings.ToLower(s)
	questionMarkers := []string{"？", "?", "什么", "哪些", "如何", "怎么", "为什么", "多少", "何时"}
	for _, m := range questionMarkers {
		if strings.Contains(lower, m) {
			return "question"
		}
	}
	helpMarkers := []string{"帮我", "帮忙", "help", "请"}
	for _, m := range helpMarkers {
		if strings.Contains(lower, m) {
			return "help"
		}
	}
	return "general"
}

// buildReferences 为每个实际咨询过的来源挑出最多两条高分候选。
func buildReferences(candidates []types.Candidate, path []types.PathEntry) []types.Reference {
	consulted := make(map[types.Source]bool, len(path))
	for _, p := range path {
		consulted[p.Source] = p.Consulted
	}

	var refs []types.Reference
	for _, src := range []types.Source{types.SourceFixedQA, types.SourceKnowledgeBase, types.SourceWeb} {
		if !consulted[src] {
			continue
		}
		picked := 0
		for _, c := range candidates {
			if c.Source != src {
				continue
			}
			refs = append(refs, toReference(c))
			picked++
			if picked >= 2 {
				break
			}
		}
	}
	return refs
}

func toReference(c types.Candidate) types.Reference {
	ref := types.Reference{
		SourceType:      c.Source,
		Similarity:      c.RawScore,
		WeightedScore:   c.WeightedScore,
		ConfidenceLabel: confidenceLabel(c.RawScore),
	}
	switch c.Source {
	case types.SourceFixedQA:
		ref.SourceDisplay = "固定问答库"
		if c.FixedQA != nil {
			ref.Question = c.FixedQA.Question
			ref.Category = c.FixedQA.Category
		}
		ref.Text = c.Text
	case types.SourceKnowledgeBase:
		ref.SourceDisplay = "知识库"
		if c.KB != nil {
			ref.KBName = c.KB.KBName
			ref.DocumentID = c.KB.DocumentID
			ref.SourceDetail = c.KB.KBName
		}
		ref.Snippet = truncateRunes(c.Text, 150)
	case types.SourceWeb:
		ref.SourceDisplay = "网络搜索"
		if c.Web != nil {
			ref.Title = c.Web.Title
			ref.URL = c.Web.URL
			ref.SourceDetail = extractDomain(c.Web.URL)
		}
		ref.Snippet = truncateRunes(c.Text, 150)
	}
	return ref
}

// confidenceLabel 相似度到展示标签的映射。
func confidenceLabel(score float64) string {
	switch {
	case score >= 0.90:
		return "极高"
	case score >= 0.80:
		return "高"
	case score >= 0.70:
		return "中等"
	case score >= 0.60:
		return "较低"
	default:
		return "低"
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
