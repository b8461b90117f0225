package retrieval

import (
	"fmt"
	"regexp"
	"strings"
)

// abbreviationMap 常见简称与全称的双向映射表。
// 命中即生成替换后的同义问法，同时用于关键词扩展。
var abbreviationMap = map[string][]string{
	"sme":    {"经管学院", "理工学院经管学部", "经济管理学院"},
	"经管":     {"经管学院", "经济管理学院"},
	"cuhksz": {"香港中文大学（深圳）", "港中深", "港中文深圳"},
	"港中深":    {"香港中文大学（深圳）", "cuhksz"},
	"大数据":    {"数据科学", "大数据分析"},
	"ai":     {"人工智能", "artificial intelligence"},
	"cs":     {"计算机科学", "computer science"},
	"mkt":    {"市场营销", "marketing"},
	"申请":     {"报名", "入学"},
	"学费":     {"费用", "收费", "tuition"},
	"专业":     {"学科", "项目", "课程", "program"},
	"招生":     {"录取", "招收", "入学"},
	"要求":     {"条件", "标准", "资格"},
	"就业":     {"工作", "career", "就业前景"},
}

// questionPattern 问题模板：正则命中后按捕获组代入模板生成改写。
type questionPattern struct {
	re        *regexp.Regexp
	templates []string // fmt 模板，%[n]s 对应第 n 个捕获组
}

var questionPatterns = []questionPattern{
	{regexp.MustCompile(`^(.+)有(什么|哪些)(.+)$`), []string{"%[1]s开设%[3]s", "%[1]s提供%[3]s", "%[1]s的%[3]s是什么"}},
	{regexp.MustCompile(`^(.+)怎么(.+)$`), []string{"%[1]s如何%[2]s", "%[1]s%[2]s的方法", "如何%[2]s%[1]s"}},
	{regexp.MustCompile(`^(.+)是什么$`), []string{"%[1]s的介绍", "什么是%[1]s", "%[1]s概况"}},
	{regexp.MustCompile(`^如何(.+)$`), []string{"怎么%[1]s", "%[1]s的方法", "%[1]s流程"}},
}

// stopwords 关键词提取的停用词集合。
var stopwords = map[string]struct{}{
	"的": {}, "了": {}, "是": {}, "在": {}, "有": {}, "和": {}, "与": {},
	"及": {}, "或": {}, "等": {}, "什么": {}, "哪些": {}, "如何": {},
	"怎么": {}, "为什么": {}, "吗": {}, "呢": {}, "吧": {}, "请问": {},
	"可以": {}, "能": {}, "会": {},
}

// tokenRe 简单分词：连续的汉字/字母/数字。
var tokenRe = regexp.MustCompile(`[\p{Han}a-zA-Z0-9]+`)

// abbrevRes 简称的大小写不敏感替换正则，启动时编译一次。
var abbrevRes = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(abbreviationMap))
	for abbr := range abbreviationMap {
		m[abbr] = regexp.MustCompile("(?i)" + regexp.QuoteMeta(abbr))
	}
	return m
}()

// Expander 问题扩展器：将查询改写为若干同义问法并提取关键词。
// 纯文本变换，无任何 I/O。
type Expander struct{}

// NewExpander 创建问题扩展器。
func NewExpander() *Expander { return &Expander{} }

// Expand 扩展问题，返回以原问题开头的同义问法列表（去重，保持顺序）。
func (e *Expander) Expand(question string) []string {
	expanded := []string{question}
	expanded = append(expanded, e.expandAbbreviations(question)...)
	expanded = append(expanded, e.expandPatterns(question)...)
	return dedupe(expanded)
}

// expandAbbreviations 将命中的简称替换为各全称。
func (e *Expander) expandAbbreviations(question string) []string {
	var out []string
	lower := strings.ToLower(question)

	for abbr, fullForms := range abbreviationMap {
		if !strings.Contains(lower, strings.ToLower(abbr)) {
			continue
		}
		re := abbrevRes[abbr]
		for _, full := range fullForms {
			rewritten := re.ReplaceAllString(question, full)
			if rewritten != question {
				out = append(out, rewritten)
			}
		}
	}
	return out
}

// expandPatterns 按问题模板改写，只使用第一个命中的模板。
func (e *Expander) expandPatterns(question string) []string {
	for _, p := range questionPatterns {
		groups := p.re.FindStringSubmatch(question)
		if groups == nil {
			continue
		}
		args := make([]any, len(groups)-1)
		for i := 1; i < len(groups); i++ {
			args[i-1] = groups[i]
		}
		var out []string
		for _, tmpl := range p.templates {
			rewritten := fmt.Sprintf(tmpl, args...)
			if rewritten != question {
				out = append(out, rewritten)
			}
		}
		return out
	}
	return nil
}

// Keywords 提取查询关键词：分词、去停用词、保留长度 ≥2 的词，
// 并补充命中简称的全称，去重。
func (e *Expander) Keywords(question string) []string {
	words := tokenRe.FindAllString(question, -1)

	var keywords []string
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if len([]rune(w)) < 2 {
			continue
		}
		keywords = append(keywords, w)
	}

	expanded := append([]string{}, keywords...)
	for _, kw := range keywords {
		if fulls, ok := abbreviationMap[strings.ToLower(kw)]; ok {
			expanded = append(expanded, fulls...)
		}
	}
	return dedupe(expanded)
}

// dedupe 去重并保持首次出现的顺序。
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
