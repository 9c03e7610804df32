package util

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// 保留单词字符、空白与常见句读，其余字符一律替换为空格
	specialCharRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s.,;:?!()'"-]+`)
)

// NormalizeText 文本归一化：压缩空白、剔除非语义字符、去除首尾空格。
// 对任意输入都成立（包括空串），且满足幂等性。
func NormalizeText(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = specialCharRegex.ReplaceAllString(text, " ")
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}

// minValidDocumentLen 结构嗅探的长度门槛，低于此长度直接拒绝
const minValidDocumentLen = 50

var examIndicators = []*regexp.Regexp{
	regexp.MustCompile(`\d+[.)]`),     // 编号题干
	regexp.MustCompile(`Q\d+`),        // Q1、Q2 等
	regexp.MustCompile(`(?i)question`),
	regexp.MustCompile(`(?i)answer`),
}

var syllabusIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)unit`),
	regexp.MustCompile(`(?i)module`),
	regexp.MustCompile(`(?i)chapter`),
	regexp.MustCompile(`(?i)syllabus`),
	regexp.MustCompile(`(?i)course`),
	regexp.MustCompile(`(?i)objective`),
}

func countIndicators(text string, patterns []*regexp.Regexp) int {
	matches := 0
	for _, p := range patterns {
		if p.MatchString(text) {
			matches++
		}
	}
	return matches
}

// LooksLikeExamPaper 结构嗅探：文本是否像一份试卷。
// 只是廉价的启发式预筛，不是语义判断。
func LooksLikeExamPaper(text string) bool {
	if len(text) < minValidDocumentLen {
		return false
	}
	return countIndicators(text, examIndicators) >= 2
}

// LooksLikeSyllabus 结构嗅探：文本是否像一份教学大纲。
func LooksLikeSyllabus(text string) bool {
	if len(text) < minValidDocumentLen {
		return false
	}
	return countIndicators(text, syllabusIndicators) >= 2
}
