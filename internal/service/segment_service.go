package service

import (
	"fair_exam_backend/internal/util"
	"regexp"
	"strings"
)

const (
	// 候选数低于该值时继续尝试下一级策略；同时也是上游接受分析的最低题数
	minSegmentCandidates = 3
	// 单卷最多保留的题目数
	maxQuestions = 50
	// 归一化后短于该长度的候选一律丢弃
	minQuestionLen = 15
	// 编号/字母条目捕获的噪声过滤长度
	tierNoiseLen = 10
	// 段落切分候选的最短原始长度
	paragraphMinLen = 20
)

// segmentStrategy 提取策略：text -> 原始候选列表。纯函数，无副作用。
type segmentStrategy struct {
	name    string
	extract func(text string) []string
}

// SegmentService 题目切分：按精度递减的策略级联执行，
// 前一级产出不足 minSegmentCandidates 时才启用下一级。
type SegmentService struct {
	strategies []segmentStrategy
}

func NewSegmentService() *SegmentService {
	return &SegmentService{
		strategies: []segmentStrategy{
			{name: "numbered", extract: extractNumberedItems},
			{name: "lettered", extract: extractLetteredItems},
			{name: "paragraph", extract: extractParagraphChunks},
		},
	}
}

// SegmentQuestions 将试卷文本切分为有序题目列表（0..50 条）。
func (s *SegmentService) SegmentQuestions(examText string) []string {
	var candidates []string
	for _, strategy := range s.strategies {
		if len(candidates) >= minSegmentCandidates {
			break
		}
		candidates = append(candidates, strategy.extract(examText)...)
	}

	// 统一后处理：归一化 → 按首次出现去重 → 长度过滤 → 截断
	seen := make(map[string]bool, len(candidates))
	questions := make([]string, 0, len(candidates))
	for _, c := range candidates {
		q := util.NormalizeText(c)
		if len(q) < minQuestionLen || seen[q] {
			continue
		}
		seen[q] = true
		questions = append(questions, q)
		if len(questions) == maxQuestions {
			break
		}
	}

	return questions
}

// 行首的数字编号标记，可选 Q 前缀：1.  2)  Q3.  q 4)
var numberedMarkerRegex = regexp.MustCompile(`(?m)^[ \t]*(?:[Qq]\.?[ \t]*)?\d+[.)]`)

// extractNumberedItems 捕获相邻编号标记之间的全部文本（可跨行）。
func extractNumberedItems(text string) []string {
	locs := numberedMarkerRegex.FindAllStringIndex(text, -1)
	var out []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		capture := strings.TrimSpace(text[loc[1]:end])
		if len(capture) >= tierNoiseLen {
			out = append(out, capture)
		}
	}
	return out
}

// 行首的小写字母条目：a)  b.  仅捕获该行剩余部分
var letteredItemRegex = regexp.MustCompile(`(?m)^[ \t]*[a-z][.)][ \t]*([^\n]+)`)

func extractLetteredItems(text string) []string {
	matches := letteredItemRegex.FindAllStringSubmatch(text, -1)
	var out []string
	for _, m := range matches {
		capture := strings.TrimSpace(m[1])
		if len(capture) >= tierNoiseLen {
			out = append(out, capture)
		}
	}
	return out
}

// extractParagraphChunks 空行切分兜底：无结构文本也能产出候选。
func extractParagraphChunks(text string) []string {
	chunks := strings.Split(text, "\n\n")
	var out []string
	for _, chunk := range chunks {
		if len(strings.TrimSpace(chunk)) > paragraphMinLen {
			out = append(out, chunk)
		}
	}
	return out
}
