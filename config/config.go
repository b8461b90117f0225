package config

import (
	"fmt"
	"time"
)

// Strategy 融合策略选择器。
type Strategy string

const (
	StrategyPriority          Strategy = "priority"
	StrategyWeightedAvg       Strategy = "weighted_avg"
	StrategyMaxScore          Strategy = "max_score"
	StrategyVoting            Strategy = "voting"
	StrategyMultiSourceFusion Strategy = "multi_source_fusion"
	StrategyKBPriority        Strategy = "kb_priority"
	StrategyAccuratePriority  Strategy = "accurate_priority"
)

// Mode 策略模式，决定联网搜索的触发方式。
// 空值表示旧版行为（按 WebSearchTriggerThreshold 自动触发）。
type Mode string

const (
	ModeSafePriority      Mode = "safe_priority"      // 不自动联网，由调用方在用户授权后强制触发
	ModeRealtimeKnowledge Mode = "realtime_knowledge" // 低于自动阈值时主动联网
)

// QAMatchMode 固定 Q&A 匹配模式。
type QAMatchMode string

const (
	QAModeSmart   QAMatchMode = "smart"   // 按相似度自动决定直答或建议
	QAModeSuggest QAMatchMode = "suggest" // 始终只给建议
	QAModeStrict  QAMatchMode = "strict"  // 仅极高相似度直答，最多一条
)

// RetrievalConfig 单次检索的完整配置，调用方构造后只读传入。
type RetrievalConfig struct {
	// 来源开关。默认开启的开关使用 *bool：nil 表示未设置，由
	// MergeWithDefaults 回填；显式的 false（Bool(false)）会被保留。
	EnableFixedQA   *bool `yaml:"enable_fixed_qa" env:"ENABLE_FIXED_QA"`
	EnableVectorKB  *bool `yaml:"enable_vector_kb" env:"ENABLE_VECTOR_KB"`
	EnableWebSearch bool  `yaml:"enable_web_search" env:"ENABLE_WEB_SEARCH"`

	// 来源权重
	FixedQAWeight   float64 `yaml:"fixed_qa_weight" env:"FIXED_QA_WEIGHT"`
	VectorKBWeight  float64 `yaml:"vector_kb_weight" env:"VECTOR_KB_WEIGHT"`
	WebSearchWeight float64 `yaml:"web_search_weight" env:"WEB_SEARCH_WEIGHT"`

	// 固定 Q&A 三区间阈值
	QADirectThreshold  float64 `yaml:"qa_direct_threshold" env:"QA_DIRECT_THRESHOLD"`
	QASuggestThreshold float64 `yaml:"qa_suggest_threshold" env:"QA_SUGGEST_THRESHOLD"`
	QAMinThreshold     float64 `yaml:"qa_min_threshold" env:"QA_MIN_THRESHOLD"`

	// 知识库三区间阈值
	KBHighConfidenceThreshold float64 `yaml:"kb_high_confidence_threshold" env:"KB_HIGH_CONFIDENCE_THRESHOLD"`
	KBContextThreshold        float64 `yaml:"kb_context_threshold" env:"KB_CONTEXT_THRESHOLD"`
	KBMinThreshold            float64 `yaml:"kb_min_threshold" env:"KB_MIN_THRESHOLD"`

	// 联网搜索阈值。
	// WebSearchTriggerThreshold == 0 表示无条件联网（调用方在用户
	// 明确授权后显式覆盖），MergeWithDefaults 不回填该字段。
	WebSearchTriggerThreshold float64 `yaml:"web_search_trigger_threshold" env:"WEB_SEARCH_TRIGGER_THRESHOLD"`
	WebSearchAutoThreshold    float64 `yaml:"web_search_auto_threshold" env:"WEB_SEARCH_AUTO_THRESHOLD"`

	// 通用高低阈值（priority / multi_source_fusion 策略使用）
	HighThreshold float64 `yaml:"similarity_threshold_high" env:"SIMILARITY_THRESHOLD_HIGH"`
	LowThreshold  float64 `yaml:"similarity_threshold_low" env:"SIMILARITY_THRESHOLD_LOW"`

	// kb_priority 策略参数
	KBAbsolutePriorityThreshold float64 `yaml:"kb_absolute_priority_threshold" env:"KB_ABSOLUTE_PRIORITY_THRESHOLD"`
	KBPriorityThreshold         float64 `yaml:"kb_priority_threshold" env:"KB_PRIORITY_THRESHOLD"`
	KBPriorityBonus             float64 `yaml:"kb_priority_bonus" env:"KB_PRIORITY_BONUS"`

	// 策略选择
	Strategy     Strategy    `yaml:"fusion_strategy" env:"FUSION_STRATEGY"`
	StrategyMode Mode        `yaml:"strategy_mode" env:"STRATEGY_MODE"`
	QAMatchMode  QAMatchMode `yaml:"qa_match_mode" env:"QA_MATCH_MODE"`

	// 数量上限
	MaxResults     int `yaml:"max_results" env:"MAX_RESULTS"`
	MaxSuggestions int `yaml:"max_suggestions" env:"MAX_SUGGESTIONS"`

	// 每个检索源的独立超时
	SourceTimeout time.Duration `yaml:"source_timeout" env:"SOURCE_TIMEOUT"`

	// 预处理
	EnablePreprocessing     *bool    `yaml:"enable_preprocessing" env:"ENABLE_PREPROCESSING"`
	EnableLanguageDetection *bool    `yaml:"enable_language_detection" env:"ENABLE_LANGUAGE_DETECTION"`
	EnableIntentRecognition *bool    `yaml:"enable_intent_recognition" env:"ENABLE_INTENT_RECOGNITION"`
	EnableSensitiveFilter   bool     `yaml:"enable_sensitive_filter" env:"ENABLE_SENSITIVE_FILTER"`
	SensitiveWords          []string `yaml:"sensitive_words" env:"-"`

	// 输出
	EnableCitation  *bool  `yaml:"enable_citation" env:"ENABLE_CITATION"`
	NoResultMessage string `yaml:"no_result_message" env:"NO_RESULT_MESSAGE"`

	// 联网搜索渠道，按顺序取第一个健康渠道
	SearchChannels []string `yaml:"search_channels" env:"-"`
}

// Bool 返回指向 v 的指针，用于显式设置默认开启的开关。
func Bool(v bool) *bool { return &v }

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// FixedQAEnabled 报告固定 Q&A 来源是否启用，未设置时视为启用。
func (c *RetrievalConfig) FixedQAEnabled() bool { return boolOr(c.EnableFixedQA, true) }

// VectorKBEnabled 报告向量知识库来源是否启用，未设置时视为启用。
func (c *RetrievalConfig) VectorKBEnabled() bool { return boolOr(c.EnableVectorKB, true) }

// PreprocessingEnabled 报告查询预处理是否启用，未设置时视为启用。
func (c *RetrievalConfig) PreprocessingEnabled() bool { return boolOr(c.EnablePreprocessing, true) }

// LanguageDetectionEnabled 报告语言检测是否启用，未设置时视为启用。
func (c *RetrievalConfig) LanguageDetectionEnabled() bool {
	return boolOr(c.EnableLanguageDetection, true)
}

// IntentRecognitionEnabled 报告意图识别是否启用，未设置时视为启用。
func (c *RetrievalConfig) IntentRecognitionEnabled() bool {
	return boolOr(c.EnableIntentRecognition, true)
}

// CitationEnabled 报告引用来源构建是否启用，未设置时视为启用。
func (c *RetrievalConfig) CitationEnabled() bool { return boolOr(c.EnableCitation, true) }

// Validate 检查阈值区间的基本一致性。
func (c *RetrievalConfig) Validate() error {
	for name, v := range map[string]float64{
		"qa_direct_threshold":          c.QADirectThreshold,
		"qa_suggest_threshold":         c.QASuggestThreshold,
		"qa_min_threshold":             c.QAMinThreshold,
		"kb_high_confidence_threshold": c.KBHighConfidenceThreshold,
		"kb_context_threshold":         c.KBContextThreshold,
		"kb_min_threshold":             c.KBMinThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("config: %s must be in [0,1], got %v", name, v)
		}
	}
	if c.QASuggestThreshold > c.QADirectThreshold {
		return fmt.Errorf("config: qa_suggest_threshold %v exceeds qa_direct_threshold %v",
			c.QASuggestThreshold, c.QADirectThreshold)
	}
	if c.KBContextThreshold > c.KBHighConfidenceThreshold {
		return fmt.Errorf("config: kb_context_threshold %v exceeds kb_high_confidence_threshold %v",
			c.KBContextThreshold, c.KBHighConfidenceThreshold)
	}
	return nil
}
