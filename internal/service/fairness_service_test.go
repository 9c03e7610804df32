package service

import (
	"strings"
	"testing"

	"fair_exam_backend/internal/model"
)

func difficultyDist(easy, medium, hard int) model.DifficultyAnalysis {
	return model.DifficultyAnalysis{
		Distribution: map[model.Difficulty]int{
			model.DifficultyEasy:   easy,
			model.DifficultyMedium: medium,
			model.DifficultyHard:   hard,
		},
		TotalQuestions: easy + medium + hard,
	}
}

func TestDifficultyBalanceScore(t *testing.T) {
	s := NewFairnessService()

	tests := []struct {
		name string
		in   model.DifficultyAnalysis
		want float64
	}{
		{"ideal 30/50/20", difficultyDist(3, 5, 2), 100.0},
		{"skewed 40/20/40", difficultyDist(4, 2, 4), 60.0},
		// 偏差 70/50/20，平均 46.67，100-93.33
		{"all easy", difficultyDist(10, 0, 0), 6.67},
		{"no questions", model.DifficultyAnalysis{Distribution: map[model.Difficulty]int{}}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.difficultyBalanceScore(tt.in); got != tt.want {
				t.Errorf("difficultyBalanceScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBloomsBalanceScore(t *testing.T) {
	s := NewFairnessService()

	tests := []struct {
		name string
		dist map[model.BloomsLevel]int
		want float64
	}{
		{
			"all six levels no concentration",
			map[model.BloomsLevel]int{
				model.BloomsRemember: 2, model.BloomsUnderstand: 2, model.BloomsApply: 2,
				model.BloomsAnalyze: 2, model.BloomsEvaluate: 1, model.BloomsCreate: 1,
			},
			100.0,
		},
		{
			"three levels evenly",
			map[model.BloomsLevel]int{
				model.BloomsRemember: 2, model.BloomsUnderstand: 2, model.BloomsApply: 2,
			},
			50.0,
		},
		{
			"single level fully concentrated",
			map[model.BloomsLevel]int{model.BloomsRemember: 10},
			0.0,
		},
		{
			"concentration penalty",
			// 4 of 5 on one level: rep 2/6*100=33.33, conc 80 → penalty 60
			map[model.BloomsLevel]int{model.BloomsRemember: 4, model.BloomsApply: 1},
			0.0,
		},
		{"no questions", map[model.BloomsLevel]int{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := 0
			for _, c := range tt.dist {
				total += c
			}
			in := model.BloomsAnalysis{Distribution: tt.dist, TotalQuestions: total}
			if got := s.bloomsBalanceScore(in); got != tt.want {
				t.Errorf("bloomsBalanceScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCoverageScore(t *testing.T) {
	s := NewFairnessService()

	tests := []struct {
		name string
		in   model.CoverageAnalysis
		want float64
	}{
		{
			"full coverage no penalties",
			model.CoverageAnalysis{CoveragePercentage: 100, TotalTopics: 4},
			100.0,
		},
		{
			"half coverage one ignored of two",
			model.CoverageAnalysis{
				CoveragePercentage: 50,
				TotalTopics:        2,
				IgnoredTopics:      []string{"Security"},
			},
			35.0,
		},
		{
			"over representation penalty",
			model.CoverageAnalysis{
				CoveragePercentage: 100,
				TotalTopics:        2,
				OverRepresented:    []string{"Networks"},
			},
			90.0,
		},
		{
			"floors at zero",
			model.CoverageAnalysis{
				CoveragePercentage: 10,
				TotalTopics:        2,
				IgnoredTopics:      []string{"A", "B"},
			},
			0.0,
		},
		{
			"zero topics clamps denominator",
			model.CoverageAnalysis{CoveragePercentage: 0, TotalTopics: 0},
			0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.coverageScore(tt.in); got != tt.want {
				t.Errorf("coverageScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpretScoreTiers(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{92, "Excellent"},
		{85, "Excellent"},
		{84.99, "Good"},
		{70, "Good"},
		{69.99, "Fair"},
		{55, "Fair"},
		{54.99, "Needs Improvement"},
		{40, "Needs Improvement"},
		{39.99, "Poor"},
		{0, "Poor"},
	}
	for _, tt := range tests {
		got := interpretScore(tt.score)
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("interpretScore(%v) = %q, want prefix %q", tt.score, got, tt.want)
		}
	}
}

func TestCalculateWeightsAndFinalScore(t *testing.T) {
	s := NewFairnessService()

	difficulty := difficultyDist(4, 2, 4) // 60.0
	blooms := model.BloomsAnalysis{
		Distribution: map[model.BloomsLevel]int{
			model.BloomsRemember: 2, model.BloomsUnderstand: 2, model.BloomsApply: 2,
			model.BloomsAnalyze: 2, model.BloomsEvaluate: 1, model.BloomsCreate: 1,
		},
		TotalQuestions: 10,
	} // 100.0
	coverage := model.CoverageAnalysis{
		CoveragePercentage: 50,
		CoveredTopics:      1,
		TotalTopics:        2,
		IgnoredTopics:      []string{"Security"},
	} // 35.0

	got := s.Calculate(difficulty, blooms, coverage)

	if got.FairnessScore != 64.5 {
		t.Errorf("fairness_score = %v, want 64.5", got.FairnessScore)
	}
	if !strings.HasPrefix(got.Interpretation, "Fair") {
		t.Errorf("interpretation = %q", got.Interpretation)
	}

	cs := got.ComponentScores
	if cs.DifficultyBalance.Score != 60.0 || cs.DifficultyBalance.Weight != 40 || cs.DifficultyBalance.WeightedContribution != 24.0 {
		t.Errorf("difficulty component = %+v", cs.DifficultyBalance)
	}
	if cs.BloomsBalance.Score != 100.0 || cs.BloomsBalance.Weight != 30 || cs.BloomsBalance.WeightedContribution != 30.0 {
		t.Errorf("blooms component = %+v", cs.BloomsBalance)
	}
	if cs.SyllabusCoverage.Score != 35.0 || cs.SyllabusCoverage.Weight != 30 || cs.SyllabusCoverage.WeightedContribution != 10.5 {
		t.Errorf("coverage component = %+v", cs.SyllabusCoverage)
	}
}

func TestCalculateSuggestionsOrderAndContent(t *testing.T) {
	s := NewFairnessService()

	got := s.Calculate(
		difficultyDist(4, 2, 4),
		model.BloomsAnalysis{
			Distribution: map[model.BloomsLevel]int{
				model.BloomsRemember: 2, model.BloomsUnderstand: 2, model.BloomsApply: 2,
				model.BloomsAnalyze: 2, model.BloomsEvaluate: 1, model.BloomsCreate: 1,
			},
			TotalQuestions: 10,
		},
		model.CoverageAnalysis{
			CoveragePercentage: 50,
			CoveredTopics:      1,
			TotalTopics:        2,
			IgnoredTopics:      []string{"Security"},
		},
	)

	want := []string{
		"⚠️ Increase medium-difficulty questions to better assess core understanding.",
		"⚠️ Too many hard questions may disadvantage students. Consider reducing complexity.",
		"⚠️ 1 syllabus topic(s) not covered: Security",
		"⚠️ Less than 60% of syllabus covered. Add questions for missing topics.",
	}
	if len(got.Suggestions) != len(want) {
		t.Fatalf("suggestions = %v", got.Suggestions)
	}
	for i := range want {
		if got.Suggestions[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, got.Suggestions[i], want[i])
		}
	}
}

func TestSuggestionEasyBoundaryStrict(t *testing.T) {
	s := NewFairnessService()

	// 正好 40% Easy 不触发；41% 以上触发
	atBoundary := s.generateSuggestions(difficultyDist(4, 5, 1), model.BloomsAnalysis{}, model.CoverageAnalysis{}, 50, 100, 100)
	for _, sg := range atBoundary {
		if strings.Contains(sg, "Too many easy") {
			t.Errorf("40%% easy should not trigger the easy-heavy suggestion: %v", atBoundary)
		}
	}

	above := s.generateSuggestions(difficultyDist(5, 4, 1), model.BloomsAnalysis{}, model.CoverageAnalysis{}, 50, 100, 100)
	found := false
	for _, sg := range above {
		if sg == "⚠️ Too many easy questions. Consider replacing some with medium-difficulty questions." {
			found = true
		}
	}
	if !found {
		t.Errorf("50%% easy should trigger the easy-heavy suggestion: %v", above)
	}
}

func TestSuggestionLowDifficultyRules(t *testing.T) {
	s := NewFairnessService()

	// 10% easy, 30% medium, 60% hard
	got := s.generateSuggestions(difficultyDist(1, 3, 6), model.BloomsAnalysis{}, model.CoverageAnalysis{}, 40, 100, 100)

	want := []string{
		"⚠️ Add more easy questions to ensure accessibility for all students.",
		"⚠️ Increase medium-difficulty questions to better assess core understanding.",
		"⚠️ Too many hard questions may disadvantage students. Consider reducing complexity.",
	}
	if len(got) != len(want) {
		t.Fatalf("suggestions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestionHardScarcity(t *testing.T) {
	s := NewFairnessService()

	// 30% easy, 65% medium, 5% hard
	got := s.generateSuggestions(difficultyDist(6, 13, 1), model.BloomsAnalysis{}, model.CoverageAnalysis{}, 60, 100, 100)

	found := false
	for _, sg := range got {
		if sg == "⚠️ Add challenging questions to differentiate high-performing students." {
			found = true
		}
	}
	if !found {
		t.Errorf("5%% hard should trigger the challenge suggestion: %v", got)
	}
}

func TestSuggestionCognitiveRules(t *testing.T) {
	s := NewFairnessService()

	blooms := model.BloomsAnalysis{
		Distribution: map[model.BloomsLevel]int{
			model.BloomsRemember:   3,
			model.BloomsUnderstand: 2,
		},
		TotalQuestions: 5,
	}

	got := s.generateSuggestions(model.DifficultyAnalysis{}, blooms, model.CoverageAnalysis{}, 100, 30, 100)

	want := []string{
		"⚠️ Too many lower-order thinking questions. Add more analysis and application questions.",
		"⚠️ No higher-order thinking questions detected. Include questions requiring analysis or evaluation.",
	}
	if len(got) != len(want) {
		t.Fatalf("suggestions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestionCognitiveSkippedWhenScoreHigh(t *testing.T) {
	s := NewFairnessService()

	blooms := model.BloomsAnalysis{
		Distribution:   map[model.BloomsLevel]int{model.BloomsRemember: 5},
		TotalQuestions: 5,
	}

	got := s.generateSuggestions(model.DifficultyAnalysis{}, blooms, model.CoverageAnalysis{}, 100, 70, 100)
	for _, sg := range got {
		if strings.Contains(sg, "lower-order") || strings.Contains(sg, "higher-order") {
			t.Errorf("cognitive rules should not run at score 70: %v", got)
		}
	}
}

func TestSuggestionCoverageTopicLists(t *testing.T) {
	s := NewFairnessService()

	coverage := model.CoverageAnalysis{
		CoveragePercentage: 70,
		TotalTopics:        8,
		IgnoredTopics:      []string{"A", "B", "C", "D"},
		OverRepresented:    []string{"X", "Y", "Z", "W"},
	}

	got := s.generateSuggestions(model.DifficultyAnalysis{}, model.BloomsAnalysis{}, coverage, 100, 100, 50)

	want := []string{
		"⚠️ 4 syllabus topic(s) not covered: A, B, C...",
		"⚠️ Over-emphasis on: X, Y, Z. Distribute questions more evenly.",
	}
	if len(got) != len(want) {
		t.Fatalf("suggestions = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suggestion %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSuggestionPositiveFallback(t *testing.T) {
	s := NewFairnessService()

	got := s.generateSuggestions(
		difficultyDist(3, 5, 2),
		model.BloomsAnalysis{},
		model.CoverageAnalysis{},
		100, 100, 100,
	)

	if len(got) != 1 || got[0] != "✅ Exam paper shows excellent balance across all fairness dimensions." {
		t.Errorf("suggestions = %v, want the single positive message", got)
	}
}
