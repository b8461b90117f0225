package types

// Source 标识候选结果的来源，封闭枚举。
type Source string

const (
	SourceFixedQA       Source = "fixed_qa"
	SourceKnowledgeBase Source = "kb"
	SourceWeb           Source = "web"
)

// MatchType 标识固定 Q&A 候选的匹配档位。
type MatchType string

const (
	MatchDirect  MatchType = "direct"  // 相似度达到直答阈值
	MatchSuggest MatchType = "suggest" // 仅作为"您是否想问"建议
)

// FixedQAPayload 固定 Q&A 候选的来源信息。
type FixedQAPayload struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
	Priority int    `json:"priority"`
}

// KBPayload 向量知识库候选的来源信息。
type KBPayload struct {
	KBID       string         `json:"kb_id"`
	KBName     string         `json:"kb_name"`
	DocumentID string         `json:"document_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// WebPayload 联网搜索候选的来源信息。
type WebPayload struct {
	Title         string `json:"title"`
	URL           string `json:"url,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	// ComposedAnswer 标记 AI 综合答案（由搜索提供商基于多源生成）。
	ComposedAnswer bool `json:"composed_answer,omitempty"`
}

// Candidate 单条打分候选。
// 不变量: 0 <= RawScore <= 1; WeightedScore = RawScore × 权重 × boost。
type Candidate struct {
	Source        Source    `json:"source"`
	RawScore      float64   `json:"raw_score"`
	WeightedScore float64   `json:"weighted_score"`
	Text          string    `json:"text"`
	MatchType     MatchType `json:"match_type,omitempty"` // 仅 FixedQA

	FixedQA *FixedQAPayload `json:"fixed_qa,omitempty"`
	KB      *KBPayload      `json:"kb,omitempty"`
	Web     *WebPayload     `json:"web,omitempty"`
}

// FilterBySource 返回指定来源的候选子集（保持原顺序）。
func FilterBySource(cands []Candidate, src Source) []Candidate {
	var out []Candidate
	for _, c := range cands {
		if c.Source == src {
			out = append(out, c)
		}
	}
	return out
}

// BestBySource 返回指定来源中原始分最高的候选，不存在时返回 nil。
func BestBySource(cands []Candidate, src Source) *Candidate {
	var best *Candidate
	for i := range cands {
		if cands[i].Source != src {
			continue
		}
		if best == nil || cands[i].RawScore > best.RawScore {
			best = &cands[i]
		}
	}
	return best
}

// MaxRawScore 返回候选集中的最高原始分，空集返回 0。
func MaxRawScore(cands []Candidate) float64 {
	max := 0.0
	for _, c := range cands {
		if c.RawScore > max {
			max = c.RawScore
		}
	}
	return max
}
