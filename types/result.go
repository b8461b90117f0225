package types

// Tier 置信度档位分类。
// A 档直接作答，B 档保守作答并提供联网选项，C 档放弃作答或回退联网。
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// ConfidenceLevel 对外展示的置信度等级。
type ConfidenceLevel string

const (
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceModerate ConfidenceLevel = "moderate"
	ConfidenceLow      ConfidenceLevel = "low"
)

// CitationType 引用来源类型。
type CitationType string

const (
	CitationKB  CitationType = "kb"
	CitationQA  CitationType = "qa"
	CitationWeb CitationType = "web"
)

// Citation 编号引用（仿 OpenAI 格式）。
// InternalScore 仅用于内部判定和排序，不向最终用户展示。
type Citation struct {
	ID            int          `json:"id"` // 1-based，结果内稳定
	Type          CitationType `json:"type"`
	Label         string       `json:"label"`
	Title         string       `json:"title"`
	SourceName    string       `json:"source_name"`
	Date          string       `json:"date,omitempty"`
	Snippet       string       `json:"snippet"`
	URL           string       `json:"url,omitempty"`
	InternalScore float64      `json:"-"`
}

// FusionResult 融合策略的统一输出。
// Winner 仅在 C 档且无联网回退时为 nil。
type FusionResult struct {
	Winner           *Candidate      `json:"winner,omitempty"`
	Tier             Tier            `json:"tier"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	Citations        []Citation      `json:"citations"`
	Explanation      string          `json:"explanation"`
	WebSearchOffered bool            `json:"web_search_offered"`
	CustomMessage    string          `json:"custom_message,omitempty"`
	Suggestions      []string        `json:"suggestions,omitempty"`
}

// PathEntry 检索路径中单个来源的追踪记录。
type PathEntry struct {
	Source       Source  `json:"source"`
	Consulted    bool    `json:"consulted"`
	ResultCount  int     `json:"results_count"`
	DurationMS   float64 `json:"time_ms"`
	ErrorCode    string  `json:"error_code,omitempty"`
	ErrorMessage string  `json:"error,omitempty"`
}

// PreprocessingInfo 查询预处理信息。
type PreprocessingInfo struct {
	OriginalQuery    string `json:"original_query"`
	ProcessedQuery   string `json:"processed_query"`
	DetectedLanguage string `json:"detected_language"`
	DetectedIntent   string `json:"detected_intent"`
	IsFiltered       bool   `json:"is_filtered"`
}

// FusionDetails 融合阶段的调试信息。
type FusionDetails struct {
	Strategy        string `json:"strategy"`
	TotalCandidates int    `json:"total_candidates"`
	Selected        bool   `json:"selected"`
}

// Timing 各阶段耗时（毫秒）。
type Timing struct {
	PreprocessingMS float64 `json:"preprocessing_ms"`
	RetrievalMS     float64 `json:"retrieval_ms"`
	FusionMS        float64 `json:"fusion_ms"`
	TotalMS         float64 `json:"total_ms"`
}

// Reference 面向审计的引用条目，可超过 3 条（每个实际咨询过的来源最多 2 条）。
type Reference struct {
	SourceType      Source  `json:"source_type"`
	SourceDisplay   string  `json:"source_display"`
	SourceDetail    string  `json:"source_detail,omitempty"`
	Similarity      float64 `json:"similarity"`
	WeightedScore   float64 `json:"weighted_score"`
	ConfidenceLabel string  `json:"confidence_level"`

	// 来源专属字段
	Question   string `json:"question,omitempty"`
	Category   string `json:"category,omitempty"`
	KBName     string `json:"kb_name,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Snippet    string `json:"text_snippet,omitempty"`
	Title      string `json:"title,omitempty"`
	URL        string `json:"url,omitempty"`
}

// RetrievalOutcome retrieve 入口返回的完整结果。
// 任何降级路径都以一个合法的 RetrievalOutcome 结束，入口不向调用方抛错。
type RetrievalOutcome struct {
	Query           string  `json:"query"`
	TraceID         string  `json:"trace_id"`
	MatchedSource   Source  `json:"matched_source,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"` // 胜者原始分，无胜者为 0
	WeightedScore   float64 `json:"weighted_score"`
	Answer          string  `json:"answer,omitempty"` // 胜者文本，无胜者为空

	Tier             Tier            `json:"tier"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	Citations        []Citation      `json:"citations"`
	Explanation      string          `json:"explanation"`
	WebSearchOffered bool            `json:"web_search_offered"`
	CustomMessage    string          `json:"custom_message,omitempty"`

	References    []Reference       `json:"references"`
	Suggestions   []string          `json:"suggestions"`
	Path          []PathEntry       `json:"retrieval_path"`
	Preprocessing PreprocessingInfo `json:"preprocessing_info"`
	FusionDetails FusionDetails     `json:"fusion_details"`
	Timing        Timing            `json:"timing"`
}
