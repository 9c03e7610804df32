package service

import (
	"context"
	"encoding/json"
	"fair_exam_backend/internal/model"
	"fair_exam_backend/internal/util"
	"fair_exam_backend/pkg/logger"
	"fair_exam_backend/pkg/monitoring"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	// 大纲主题数上限
	maxTopics = 15
	// 主路径提示词携带的大纲文本上限（字节）
	maxSyllabusPromptLen = 4000
	// 主路径提示词中单题文本上限
	maxQuestionPromptLen = 200
	// 映射记录里题目的展示长度
	questionDisplayLen = 100
	// 回退匹配的单词重叠权重
	overlapConfidenceStep = 0.2
)

// TopicService 大纲主题抽取与题目-主题匹配。
// 与分类服务一致：外部服务为主路径，确定性启发式为回退。
type TopicService struct {
	ai *AIService
}

func NewTopicService(ai *AIService) *TopicService {
	return &TopicService{ai: ai}
}

// ---- 主题抽取 ----

const topicExtractionPromptTemplate = `Extract the main topics, units, and concepts from this syllabus.
Return ONLY a JSON array of topic strings (10-15 topics maximum).

Syllabus:
%s

Return format: ["Topic 1", "Topic 2", ...]`

// ExtractTopics 从大纲文本抽取不超过 15 个主题。
// 主路径不去重（与回退路径的集合语义不同，兼容性要求保留该差异）。
func (s *TopicService) ExtractTopics(ctx context.Context, syllabusText string) []string {
	if s.ai.Configured() {
		topics, err := s.extractTopicsAI(ctx, syllabusText)
		if err == nil {
			return topics
		}
		logger.Log.Warn("topic extraction degraded to fallback", zap.Error(err))
	}
	monitoring.RecordFallback("topic_extraction")
	return s.fallbackExtractTopics(syllabusText)
}

func (s *TopicService) extractTopicsAI(ctx context.Context, syllabusText string) ([]string, error) {
	prompt := fmt.Sprintf(topicExtractionPromptTemplate, truncateUTF8(syllabusText, maxSyllabusPromptLen))

	out, err := s.ai.Chat(ctx, "", prompt, 500)
	if err != nil {
		return nil, err
	}

	var topics []string
	if err := json.Unmarshal([]byte(StripJSONFence(out)), &topics); err != nil {
		return nil, fmt.Errorf("decode topic list: %w", err)
	}

	if len(topics) > maxTopics {
		topics = topics[:maxTopics]
	}
	return topics, nil
}

// 编号小节：Unit 1: xxx / Module 2 - xxx / Chapter 3 xxx
var unitHeadingRegex = regexp.MustCompile(`(?i)(?:Unit|Module|Chapter|Topic)\s+\d+[:\-\s]+([^\n.]+)`)

// fallbackExtractTopics 启发式抽取：编号小节 + 中等长度的标题/列表行。
// 集合去重，顺序不保证；一无所获时退化为单个通用主题。
func (s *TopicService) fallbackExtractTopics(syllabusText string) []string {
	var topics []string

	for _, m := range unitHeadingRegex.FindAllStringSubmatch(syllabusText, -1) {
		topics = append(topics, strings.TrimSpace(m[1]))
	}

	for _, line := range strings.Split(syllabusText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) <= 10 || len(line) >= 100 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(line)
		if unicode.IsUpper(first) || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "•") {
			cleaned := strings.TrimSpace(strings.TrimLeft(line, "-•"))
			if cleaned != "" {
				topics = append(topics, cleaned)
			}
		}
	}

	set := make(map[string]bool, len(topics))
	unique := make([]string, 0, len(topics))
	for _, t := range topics {
		if !set[t] {
			set[t] = true
			unique = append(unique, t)
		}
	}

	if len(unique) == 0 {
		return []string{"General Topics"}
	}
	if len(unique) > maxTopics {
		unique = unique[:maxTopics]
	}
	return unique
}

// ---- 题目-主题匹配 ----

const topicMatchingPromptTemplate = `Match each question to the most relevant syllabus topics.
Return ONLY a JSON object mapping question indices to arrays of matching topic names.

Topics: %s

Questions:
%s

Return format: {"0": ["Topic A", "Topic B"], "1": ["Topic C"], ...}`

// MatchQuestionsToTopics 将每道题指派到主题并统计覆盖情况。
// 主路径批量一次调用；返回的未知主题名一律丢弃。
// 覆盖计数只统计每题唯一的 best_match，次要匹配不计入。
func (s *TopicService) MatchQuestionsToTopics(ctx context.Context, questions, topics []string) model.CoverageAnalysis {
	if s.ai.Configured() {
		result, err := s.matchTopicsAI(ctx, questions, topics)
		if err == nil {
			return result
		}
		logger.Log.Warn("topic matching degraded to fallback", zap.Error(err))
	}
	monitoring.RecordFallback("topic_matching")
	return s.fallbackMatchTopics(questions, topics)
}

func (s *TopicService) matchTopicsAI(ctx context.Context, questions, topics []string) (model.CoverageAnalysis, error) {
	topicsJSON, err := json.Marshal(topics)
	if err != nil {
		return model.CoverageAnalysis{}, err
	}

	prompted := make([]string, len(questions))
	for i, q := range questions {
		prompted[i] = fmt.Sprintf("Q%d: %s", i+1, truncateUTF8(q, maxQuestionPromptLen))
	}
	questionsJSON, err := json.Marshal(prompted)
	if err != nil {
		return model.CoverageAnalysis{}, err
	}

	out, err := s.ai.Chat(ctx, "", fmt.Sprintf(topicMatchingPromptTemplate, topicsJSON, questionsJSON), 1000)
	if err != nil {
		return model.CoverageAnalysis{}, err
	}

	var matchData map[string][]string
	if err := json.Unmarshal([]byte(StripJSONFence(out)), &matchData); err != nil {
		return model.CoverageAnalysis{}, fmt.Errorf("decode topic matches: %w", err)
	}

	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t] = true
	}

	coverage := newCoverageCounter(topics)
	mapping := make([]model.QuestionTopicMapping, 0, len(questions))

	for i, question := range questions {
		var matched []model.TopicMatch
		for _, name := range matchData[strconv.Itoa(i)] {
			if known[name] {
				matched = append(matched, model.TopicMatch{Topic: name, Confidence: 0.8})
			}
		}

		if len(matched) == 0 {
			matched = []model.TopicMatch{{Topic: "Unmatched", Confidence: 0}}
		}

		best := matched[0].Topic
		if _, ok := coverage[best]; ok {
			coverage[best]++
		}

		mapping = append(mapping, model.QuestionTopicMapping{
			Question:      truncateForDisplay(question),
			MatchedTopics: matched,
			BestMatch:     best,
		})
	}

	return buildCoverageAnalysis(mapping, coverage, topics, len(questions)), nil
}

// fallbackMatchTopics 小写分词后按单词重叠打分：min(重叠数*0.2, 1.0)。
func (s *TopicService) fallbackMatchTopics(questions, topics []string) model.CoverageAnalysis {
	coverage := newCoverageCounter(topics)
	mapping := make([]model.QuestionTopicMapping, 0, len(questions))

	for _, question := range questions {
		questionWords := wordSet(question)

		var matches []model.TopicMatch
		for _, topic := range topics {
			overlap := 0
			for w := range wordSet(topic) {
				if questionWords[w] {
					overlap++
				}
			}
			if overlap > 0 {
				matches = append(matches, model.TopicMatch{
					Topic:      topic,
					Confidence: math.Min(float64(overlap)*overlapConfidenceStep, 1.0),
				})
			}
		}

		// 稳定排序：置信度相同时保持主题原顺序
		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Confidence > matches[j].Confidence
		})

		best := model.TopicMatch{Topic: "General", Confidence: 0}
		if len(matches) > 0 {
			best = matches[0]
		}

		matched := matches
		if len(matched) > 3 {
			matched = matched[:3]
		}
		if len(matched) == 0 {
			matched = []model.TopicMatch{best}
		}

		if _, ok := coverage[best.Topic]; ok {
			coverage[best.Topic]++
		}

		mapping = append(mapping, model.QuestionTopicMapping{
			Question:      truncateForDisplay(question),
			MatchedTopics: matched,
			BestMatch:     best.Topic,
		})
	}

	return buildCoverageAnalysis(mapping, coverage, topics, len(questions))
}

// ---- 覆盖统计，两条路径共用同一套算法 ----

func newCoverageCounter(topics []string) map[string]int {
	coverage := make(map[string]int, len(topics))
	for _, t := range topics {
		coverage[t] = 0
	}
	return coverage
}

func buildCoverageAnalysis(mapping []model.QuestionTopicMapping, coverage map[string]int, topics []string, totalQuestions int) model.CoverageAnalysis {
	totalTopics := len(topics)

	covered := 0
	for _, count := range coverage {
		if count > 0 {
			covered++
		}
	}

	coveragePercentage := 0.0
	avgQuestionsPerTopic := 0.0
	if totalTopics > 0 {
		coveragePercentage = util.Round2(float64(covered) / float64(totalTopics) * 100)
		avgQuestionsPerTopic = float64(totalQuestions) / float64(totalTopics)
	}

	overRepresented := []string{}
	ignoredTopics := []string{}
	for _, t := range topics {
		if float64(coverage[t]) > avgQuestionsPerTopic*1.5 {
			overRepresented = append(overRepresented, t)
		}
		if coverage[t] == 0 {
			ignoredTopics = append(ignoredTopics, t)
		}
	}

	return model.CoverageAnalysis{
		QuestionTopicMapping: mapping,
		TopicCoverage:        coverage,
		CoveragePercentage:   coveragePercentage,
		CoveredTopics:        covered,
		TotalTopics:          totalTopics,
		OverRepresented:      overRepresented,
		IgnoredTopics:        ignoredTopics,
	}
}

func wordSet(text string) map[string]bool {
	words := strings.Fields(strings.ToLower(text))
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func truncateForDisplay(question string) string {
	runes := []rune(question)
	if len(runes) <= questionDisplayLen {
		return question
	}
	return string(runes[:questionDisplayLen]) + "..."
}

func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
