package config

import "time"

// DefaultRetrievalConfig 返回所有配置项的合理默认值。
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		EnableFixedQA:   Bool(true),
		EnableVectorKB:  Bool(true),
		EnableWebSearch: false,

		FixedQAWeight:   1.0,
		VectorKBWeight:  1.0,
		WebSearchWeight: 0.6,

		QADirectThreshold:  0.90,
		QASuggestThreshold: 0.70,
		QAMinThreshold:     0.50,

		KBHighConfidenceThreshold: 0.85,
		KBContextThreshold:        0.70,
		KBMinThreshold:            0.50,

		WebSearchTriggerThreshold: 0.70,
		WebSearchAutoThreshold:    0.50,

		HighThreshold: 0.90,
		LowThreshold:  0.75,

		KBAbsolutePriorityThreshold: 0.85,
		KBPriorityThreshold:         0.70,
		KBPriorityBonus:             0.15,

		Strategy:     StrategyWeightedAvg,
		StrategyMode: ModeSafePriority,
		QAMatchMode:  QAModeSmart,

		MaxResults:     5,
		MaxSuggestions: 3,

		SourceTimeout: 15 * time.Second,

		EnablePreprocessing:     Bool(true),
		EnableLanguageDetection: Bool(true),
		EnableIntentRecognition: Bool(true),
		EnableSensitiveFilter:   false,

		EnableCitation: Bool(true),
	}
}

// MergeWithDefaults 将未设置（零值或 nil）的字段回填为默认值，返回合并后的副本。
// 这是配置归一化的唯一入口：引擎内部不做任何内联回退。
// 默认开启的开关为 *bool，只有 nil 会被回填，显式的 Bool(false) 保持不变。
//
// 例外: WebSearchTriggerThreshold 为 0 是一个有语义的取值
// （无条件联网，调用方在用户授权后显式设置），不会被回填。
func MergeWithDefaults(c RetrievalConfig) RetrievalConfig {
	d := DefaultRetrievalConfig()

	if c.EnableFixedQA == nil {
		c.EnableFixedQA = d.EnableFixedQA
	}
	if c.EnableVectorKB == nil {
		c.EnableVectorKB = d.EnableVectorKB
	}
	if c.EnablePreprocessing == nil {
		c.EnablePreprocessing = d.EnablePreprocessing
	}
	if c.EnableLanguageDetection == nil {
		c.EnableLanguageDetection = d.EnableLanguageDetection
	}
	if c.EnableIntentRecognition == nil {
		c.EnableIntentRecognition = d.EnableIntentRecognition
	}
	if c.EnableCitation == nil {
		c.EnableCitation = d.EnableCitation
	}

	if c.FixedQAWeight == 0 {
		c.FixedQAWeight = d.FixedQAWeight
	}
	if c.VectorKBWeight == 0 {
		c.VectorKBWeight = d.VectorKBWeight
	}
	if c.WebSearchWeight == 0 {
		c.WebSearchWeight = d.WebSearchWeight
	}

	if c.QADirectThreshold == 0 {
		c.QADirectThreshold = d.QADirectThreshold
	}
	if c.QASuggestThreshold == 0 {
		c.QASuggestThreshold = d.QASuggestThreshold
	}
	if c.QAMinThreshold == 0 {
		c.QAMinThreshold = d.QAMinThreshold
	}

	if c.KBHighConfidenceThreshold == 0 {
		c.KBHighConfidenceThreshold = d.KBHighConfidenceThreshold
	}
	if c.KBContextThreshold == 0 {
		c.KBContextThreshold = d.KBContextThreshold
	}
	if c.KBMinThreshold == 0 {
		c.KBMinThreshold = d.KBMinThreshold
	}

	if c.WebSearchAutoThreshold == 0 {
		c.WebSearchAutoThreshold = d.WebSearchAutoThreshold
	}

	if c.HighThreshold == 0 {
		c.HighThreshold = d.HighThreshold
	}
	if c.LowThreshold == 0 {
		c.LowThreshold = d.LowThreshold
	}

	if c.KBAbsolutePriorityThreshold == 0 {
		c.KBAbsolutePriorityThreshold = d.KBAbsolutePriorityThreshold
	}
	if c.KBPriorityThreshold == 0 {
		c.KBPriorityThreshold = d.KBPriorityThreshold
	}
	if c.KBPriorityBonus == 0 {
		c.KBPriorityBonus = d.KBPriorityBonus
	}

	if c.Strategy == "" {
		c.Strategy = d.Strategy
	}
	if c.QAMatchMode == "" {
		c.QAMatchMode = d.QAMatchMode
	}

	if c.MaxResults == 0 {
		c.MaxResults = d.MaxResults
	}
	if c.MaxSuggestions == 0 {
		c.MaxSuggestions = d.MaxSuggestions
	}
	if c.SourceTimeout == 0 {
		c.SourceTimeout = d.SourceTimeout
	}

	return c
}
