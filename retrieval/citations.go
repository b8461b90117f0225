package retrieval

import (
	"net/url"
	"sort"
	"strings"

	"github.com/cbit-ai/answercore/config"
	"github.com/cbit-ai/answercore/types"
)

const (
	maxCitations = 3

	// citationSupportThreshold 非胜者候选进入引用列表的最低原始分。
	citationSupportThreshold = 0.60
)

// BuildCitations 为胜者构建编号引用。
//
// 规则：网络胜出时只引用网络来源（内部资料既然落选就不为答案背书）；
// 本地来源胜出时胜者必入选，剩余名额先给同源候选、再给其它本地候选，
// 网络候选不混入。入选后按内部分降序、1 起编号，最多 maxCitations 条。
func BuildCitations(winner *types.Candidate, candidates []types.Candidate, cfg *config.RetrievalConfig) []types.Citation {
	if !cfg.CitationEnabled() || winner == nil {
		return nil
	}

	var picked []types.Candidate
	if winner.Source == types.SourceWeb {
		picked = types.FilterBySource(candidates, types.SourceWeb)
		sort.SliceStable(picked, func(i, j int) bool {
			return picked[i].RawScore > picked[j].RawScore
		})
		if len(picked) > maxCitations {
			picked = picked[:maxCitations]
		}
	} else {
		// 名额在收集阶段就封顶，避免高分支持者把胜者挤出列表
		picked = append(picked, *winner)
		for _, sameSource := range []bool{true, false} {
			for _, c := range candidates {
				if len(picked) >= maxCitations {
					break
				}
				if c.Source == types.SourceWeb || sameCandidate(&c, winner) {
					continue
				}
				if (c.Source == winner.Source) != sameSource {
					continue
				}
				if c.RawScore > citationSupportThreshold {
					picked = append(picked, c)
				}
			}
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].RawScore > picked[j].RawScore
	})

	citations := make([]types.Citation, 0, len(picked))
	for i, c := range picked {
		cit := formatCitation(c)
		cit.ID = i + 1
		citations = append(citations, cit)
	}
	return citations
}

// BuildSuggestions 构建"您是否想问"与相关内容建议。
// 固定 Q&A 建议取建议档候选，知识库建议取语境档（未达高置信）候选。
func BuildSuggestions(winner *types.Candidate, candidates []types.Candidate, cfg *config.RetrievalConfig) []string {
	max := cfg.MaxSuggestions
	if max <= 0 {
		max = 3
	}

	var out []string
	for _, c := range candidates {
		if len(out) >= max {
			break
		}
		if winner != nil && sameCandidate(&c, winner) {
			continue
		}
		switch c.Source {
		case types.SourceFixedQA:
			if c.FixedQA != nil && c.RawScore >= cfg.QASuggestThreshold && c.RawScore < cfg.QADirectThreshold {
				out = append(out, "您是否想问："+c.FixedQA.Question)
			}
		case types.SourceKnowledgeBase:
			if c.RawScore >= cfg.KBContextThreshold && c.RawScore < cfg.KBHighConfidenceThreshold {
				out = append(out, "相关内容："+truncateRunes(c.Text, 100))
			}
		}
	}
	return out
}

// formatCitation 按来源类型生成展示字段（编号由调用方回填）。
func formatCitation(c types.Candidate) types.Citation {
	cit := types.Citation{
		Snippet:       truncateRunes(c.Text, 100),
		InternalScore: c.RawScore,
	}

	switch c.Source {
	case types.SourceKnowledgeBase:
		cit.Type = types.CitationKB
		cit.Label = "KB"
		cit.Title = titleFromText(c.Text)
		if c.KB != nil {
			cit.SourceName = c.KB.KBName
		}

	case types.SourceFixedQA:
		cit.Type = types.CitationQA
		cit.Label = "固定Q&A"
		cit.SourceName = "固定问答库"
		if c.FixedQA != nil {
			cit.Title = truncateRunes(c.FixedQA.Question, 30)
		}

	case types.SourceWeb:
		cit.Type = types.CitationWeb
		if c.Web != nil && c.Web.ComposedAnswer {
			cit.Label = "网络搜索"
			cit.Title = "AI综合答案"
			cit.SourceName = "网络搜索"
		} else {
			cit.Label = "网络搜索"
			cit.SourceName = "网络搜索"
			if c.Web != nil {
				cit.Title = truncateRunes(c.Web.Title, 40)
				cit.URL = c.Web.URL
				cit.Date = c.Web.PublishedDate
				if domain := extractDomain(c.Web.URL); domain != "" {
					cit.SourceName = domain
				}
			}
		}
	}
	return cit
}

// titleFromText 取首句（第一个句号前）作为标题，过长则截断。
func titleFromText(text string) string {
	if i := strings.Index(text, "。"); i > 0 {
		text = text[:i]
	}
	return truncateRunes(text, 30)
}

// truncateRunes 按字符数截断，截断时追加省略号。
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// extractDomain 提取 URL 的主机名并去掉 www. 前缀。
func extractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

// sameCandidate 判断两个候选指向同一条结果。
func sameCandidate(a, b *types.Candidate) bool {
	if a.Source != b.Source {
		return false
	}
	switch a.Source {
	case types.SourceFixedQA:
		return a.FixedQA != nil && b.FixedQA != nil && a.FixedQA.ID == b.FixedQA.ID
	case types.SourceKnowledgeBase:
		return a.KB != nil && b.KB != nil &&
			a.KB.KBID == b.KB.KBID && a.KB.DocumentID == b.KB.DocumentID && a.Text == b.Text
	default:
		return a.Text == b.Text
	}
}
