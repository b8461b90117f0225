package config

// Preset 策略预设：一组成套的阈值和联网行为。
type Preset struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Scenario    string `yaml:"scenario" json:"scenario"`

	QADirectThreshold  float64 `yaml:"qa_direct_threshold" json:"qa_direct_threshold"`
	QASuggestThreshold float64 `yaml:"qa_suggest_threshold" json:"qa_suggest_threshold"`
	QAMinThreshold     float64 `yaml:"qa_min_threshold" json:"qa_min_threshold"`

	KBHighConfidenceThreshold float64 `yaml:"kb_high_confidence_threshold" json:"kb_high_confidence_threshold"`
	KBContextThreshold        float64 `yaml:"kb_context_threshold" json:"kb_context_threshold"`
	KBMinThreshold            float64 `yaml:"kb_min_threshold" json:"kb_min_threshold"`

	WebSearchTriggerThreshold float64 `yaml:"web_search_trigger_threshold" json:"web_search_trigger_threshold"`
	WebSearchAutoThreshold    float64 `yaml:"web_search_auto_threshold" json:"web_search_auto_threshold"`

	Mode Mode `yaml:"strategy_mode" json:"strategy_mode"`
}

// presets 两种内置预设，取值来自线上调参结果。
var presets = map[Mode]Preset{
	// 安全优先：教育、医疗、法律、金融。宁可不答，不可乱答。
	ModeSafePriority: {
		Name:        "安全优先",
		Description: "高准确性，低置信度时需要用户授权联网。",
		Scenario:    "教育、医疗、法律、金融",

		QADirectThreshold:  0.92,
		QASuggestThreshold: 0.80,
		QAMinThreshold:     0.60,

		KBHighConfidenceThreshold: 0.88,
		KBContextThreshold:        0.72,
		KBMinThreshold:            0.50,

		WebSearchTriggerThreshold: 0.72,
		WebSearchAutoThreshold:    0.50,

		Mode: ModeSafePriority,
	},

	// 实时知识：新闻资讯、实时数据。积极联网获取最新信息。
	ModeRealtimeKnowledge: {
		Name:        "实时知识",
		Description: "积极联网获取最新信息，适合需要时效性的场景。",
		Scenario:    "新闻、实时数据、动态信息",

		QADirectThreshold:  0.85,
		QASuggestThreshold: 0.70,
		QAMinThreshold:     0.45,

		KBHighConfidenceThreshold: 0.75,
		KBContextThreshold:        0.55,
		KBMinThreshold:            0.35,

		WebSearchTriggerThreshold: 0.55,
		WebSearchAutoThreshold:    0.55,

		Mode: ModeRealtimeKnowledge,
	},
}

// GetPreset 按模式取预设，未知模式回落到安全优先。
func GetPreset(mode Mode) Preset {
	if p, ok := presets[mode]; ok {
		return p
	}
	return presets[ModeSafePriority]
}

// AllPresets 返回所有内置预设。
func AllPresets() map[Mode]Preset {
	out := make(map[Mode]Preset, len(presets))
	for k, v := range presets {
		out[k] = v
	}
	return out
}

// ApplyPreset 将预设的阈值成套写入配置并返回副本。
func ApplyPreset(c RetrievalConfig, mode Mode) RetrievalConfig {
	p := GetPreset(mode)

	c.QADirectThreshold = p.QADirectThreshold
	c.QASuggestThreshold = p.QASuggestThreshold
	c.QAMinThreshold = p.QAMinThreshold
	c.KBHighConfidenceThreshold = p.KBHighConfidenceThreshold
	c.KBContextThreshold = p.KBContextThreshold
	c.KBMinThreshold = p.KBMinThreshold
	c.WebSearchTriggerThreshold = p.WebSearchTriggerThreshold
	c.WebSearchAutoThreshold = p.WebSearchAutoThreshold
	c.StrategyMode = p.Mode

	return c
}
