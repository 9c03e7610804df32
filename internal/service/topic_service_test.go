package service

import (
	"context"
	"math"
	"testing"

	"fair_exam_backend/internal/config"
)

func newOfflineTopicService() *TopicService {
	return NewTopicService(NewAIService(config.AIConfig{}))
}

func TestExtractTopicsFallbackUnitHeadings(t *testing.T) {
	syllabus := `Unit 1: Computer Networks
Unit 2 - Operating Systems
Chapter 3: Database Design
Some body text that is far too long to qualify as a heading line because it keeps going on and on.`

	s := newOfflineTopicService()
	got := s.ExtractTopics(context.Background(), syllabus)

	wantFirst := []string{"Computer Networks", "Operating Systems", "Database Design"}
	if len(got) < 3 {
		t.Fatalf("got %v, want at least the three unit headings", got)
	}
	for i, w := range wantFirst {
		if got[i] != w {
			t.Errorf("topic %d = %q, want %q", i, got[i], w)
		}
	}
}

func TestExtractTopicsFallbackBulletsAndDedup(t *testing.T) {
	syllabus := `- Sorting algorithms
- Sorting algorithms
• Graph traversal basics
short
this line is lowercase and not a bullet so it is skipped`

	s := newOfflineTopicService()
	got := s.ExtractTopics(context.Background(), syllabus)

	want := []string{"Sorting algorithms", "Graph traversal basics"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("topic %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractTopicsFallbackDefault(t *testing.T) {
	s := newOfflineTopicService()
	got := s.ExtractTopics(context.Background(), "nothing usable here")

	if len(got) != 1 || got[0] != "General Topics" {
		t.Fatalf("got %v, want the single default topic", got)
	}
}

func TestExtractTopicsFallbackCap(t *testing.T) {
	var syllabus string
	for i := 0; i < 20; i++ {
		syllabus += "Unit " + string(rune('1'+i%9)) + ": Topic heading number " + string(rune('A'+i)) + "\n"
	}

	s := newOfflineTopicService()
	got := s.ExtractTopics(context.Background(), syllabus)

	if len(got) > 15 {
		t.Fatalf("got %d topics, want at most 15", len(got))
	}
}

func TestMatchQuestionsToTopicsFallback(t *testing.T) {
	questions := []string{
		"Explain how computer networks route packets between hosts.",
		"Describe database normalization and its normal forms.",
		"What color is the sky?",
	}
	topics := []string{"Computer Networks", "Database Design", "Security"}

	s := newOfflineTopicService()
	got := s.MatchQuestionsToTopics(context.Background(), questions, topics)

	if got.TotalTopics != 3 {
		t.Fatalf("total_topics = %d, want 3", got.TotalTopics)
	}
	if got.CoveredTopics != 2 {
		t.Errorf("covered_topics = %d, want 2", got.CoveredTopics)
	}
	if want := 66.67; got.CoveragePercentage != want {
		t.Errorf("coverage_percentage = %v, want %v", got.CoveragePercentage, want)
	}

	if got.QuestionTopicMapping[0].BestMatch != "Computer Networks" {
		t.Errorf("best match 0 = %q", got.QuestionTopicMapping[0].BestMatch)
	}
	if got.QuestionTopicMapping[1].BestMatch != "Database Design" {
		t.Errorf("best match 1 = %q", got.QuestionTopicMapping[1].BestMatch)
	}
	// 零重叠的题目落到 General，且不计入任何主题
	if got.QuestionTopicMapping[2].BestMatch != "General" {
		t.Errorf("best match 2 = %q, want General", got.QuestionTopicMapping[2].BestMatch)
	}

	if got.TopicCoverage["Computer Networks"] != 1 || got.TopicCoverage["Database Design"] != 1 || got.TopicCoverage["Security"] != 0 {
		t.Errorf("topic_coverage = %v", got.TopicCoverage)
	}
	if len(got.IgnoredTopics) != 1 || got.IgnoredTopics[0] != "Security" {
		t.Errorf("ignored_topics = %v, want [Security]", got.IgnoredTopics)
	}
}

func TestMatchQuestionsToTopicsOverlapConfidence(t *testing.T) {
	questions := []string{"Discuss computer networks and network security protocols."}
	topics := []string{"Computer Networks"}

	s := newOfflineTopicService()
	got := s.MatchQuestionsToTopics(context.Background(), questions, topics)

	matched := got.QuestionTopicMapping[0].MatchedTopics
	if len(matched) != 1 {
		t.Fatalf("matched = %v", matched)
	}
	// 两个重叠单词 computer、networks，置信度 2*0.2
	if want := 0.4; math.Abs(matched[0].Confidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", matched[0].Confidence, want)
	}
}

func TestMatchQuestionsToTopicsConfidenceCapped(t *testing.T) {
	questions := []string{"alpha beta gamma delta epsilon zeta overlap question text"}
	topics := []string{"alpha beta gamma delta epsilon zeta"}

	s := newOfflineTopicService()
	got := s.MatchQuestionsToTopics(context.Background(), questions, topics)

	matched := got.QuestionTopicMapping[0].MatchedTopics
	if len(matched) != 1 {
		t.Fatalf("matched = %v", matched)
	}
	if matched[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want capped at 1.0", matched[0].Confidence)
	}
}

func TestMatchQuestionsToTopicsOverRepresentation(t *testing.T) {
	questions := []string{
		"Explain computer networks question one in detail.",
		"Explain computer networks question two in detail.",
		"Explain computer networks question three in detail.",
		"Describe database design briefly for contrast here.",
	}
	topics := []string{"computer networks", "database design", "security"}

	s := newOfflineTopicService()
	got := s.MatchQuestionsToTopics(context.Background(), questions, topics)

	// 平均每主题 4/3 题，1.5 倍阈值为 2.0，3 题的主题属于过度集中
	if len(got.OverRepresented) != 1 || got.OverRepresented[0] != "computer networks" {
		t.Errorf("over_represented = %v", got.OverRepresented)
	}
}

func TestMatchQuestionsToTopicsNoTopics(t *testing.T) {
	s := newOfflineTopicService()
	got := s.MatchQuestionsToTopics(context.Background(), []string{"Explain recursion with an example."}, nil)

	if got.TotalTopics != 0 || got.CoveragePercentage != 0 {
		t.Errorf("empty topic list should yield zero coverage, got %+v", got)
	}
	if got.QuestionTopicMapping[0].BestMatch != "General" {
		t.Errorf("best match = %q, want General", got.QuestionTopicMapping[0].BestMatch)
	}
}

func TestTruncateForDisplay(t *testing.T) {
	long := ""
	for i := 0; i < 120; i++ {
		long += "x"
	}
	got := truncateForDisplay(long)
	if len([]rune(got)) != questionDisplayLen+3 {
		t.Errorf("truncated length = %d", len([]rune(got)))
	}
	if got[len(got)-3:] != "..." {
		t.Errorf("missing ellipsis suffix: %q", got[len(got)-10:])
	}

	short := "short question"
	if truncateForDisplay(short) != short {
		t.Errorf("short question should pass through unchanged")
	}
}
