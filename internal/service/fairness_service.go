package service

import (
	"fair_exam_backend/internal/model"
	"fair_exam_backend/internal/util"
	"fmt"
	"math"
	"strings"
)

// 公平性得分权重，固定策略常量：40% 难度均衡 + 30% 认知均衡 + 30% 大纲覆盖
const (
	difficultyWeight = 0.40
	bloomsWeight     = 0.30
	coverageWeight   = 0.30
)

// 难度分布的理想目标：30% Easy / 50% Medium / 20% Hard
const (
	idealEasyPct   = 30.0
	idealMediumPct = 50.0
	idealHardPct   = 20.0
)

// FairnessService 公平性引擎：纯函数，三个独立分布 → 一个可解释的综合得分。
// 无外部依赖、无副作用、无阻塞点。
type FairnessService struct{}

func NewFairnessService() *FairnessService {
	return &FairnessService{}
}

// Calculate 计算综合公平性得分、分项得分、解释文本与改进建议。
func (s *FairnessService) Calculate(
	difficulty model.DifficultyAnalysis,
	blooms model.BloomsAnalysis,
	coverage model.CoverageAnalysis,
) model.FairnessResult {
	difficultyScore := s.difficultyBalanceScore(difficulty)
	bloomsScore := s.bloomsBalanceScore(blooms)
	coverageScore := s.coverageScore(coverage)

	finalScore := util.Round2(
		difficultyScore*difficultyWeight +
			bloomsScore*bloomsWeight +
			coverageScore*coverageWeight,
	)

	return model.FairnessResult{
		FairnessScore:  finalScore,
		Interpretation: interpretScore(finalScore),
		ComponentScores: model.ComponentScores{
			DifficultyBalance: model.ComponentScore{
				Score:                difficultyScore,
				Weight:               40,
				WeightedContribution: util.Round2(difficultyScore * difficultyWeight),
			},
			BloomsBalance: model.ComponentScore{
				Score:                bloomsScore,
				Weight:               30,
				WeightedContribution: util.Round2(bloomsScore * bloomsWeight),
			},
			SyllabusCoverage: model.ComponentScore{
				Score:                coverageScore,
				Weight:               30,
				WeightedContribution: util.Round2(coverageScore * coverageWeight),
			},
		},
		Suggestions: s.generateSuggestions(difficulty, blooms, coverage, difficultyScore, bloomsScore, coverageScore),
	}
}

// difficultyBalanceScore 以各难度占比对理想分布的平均绝对偏差计分：
// score = max(0, 100 - 2*avgDeviation)，零题得 0。
func (s *FairnessService) difficultyBalanceScore(analysis model.DifficultyAnalysis) float64 {
	total := analysis.TotalQuestions
	if total == 0 {
		return 0.0
	}

	easyPct := percentage(analysis.Distribution[model.DifficultyEasy], total)
	mediumPct := percentage(analysis.Distribution[model.DifficultyMedium], total)
	hardPct := percentage(analysis.Distribution[model.DifficultyHard], total)

	avgDeviation := (math.Abs(easyPct-idealEasyPct) +
		math.Abs(mediumPct-idealMediumPct) +
		math.Abs(hardPct-idealHardPct)) / 3

	return util.Round2(math.Max(0, 100-avgDeviation*2))
}

// bloomsBalanceScore 认知层级均衡：层级覆盖度打底，单层过度集中扣分。
func (s *FairnessService) bloomsBalanceScore(analysis model.BloomsAnalysis) float64 {
	total := analysis.TotalQuestions
	if total == 0 {
		return 0.0
	}

	levelsRepresented := 0
	maxConcentration := 0.0
	for _, level := range model.AllBloomsLevels {
		count := analysis.Distribution[level]
		if count > 0 {
			levelsRepresented++
		}
		if pct := percentage(count, total); pct > maxConcentration {
			maxConcentration = pct
		}
	}

	representationScore := float64(levelsRepresented) / float64(len(model.AllBloomsLevels)) * 100

	// 单层占比超过 50% 开始惩罚
	concentrationPenalty := math.Max(0, (maxConcentration-50)*2)

	return util.Round2(math.Max(0, representationScore-concentrationPenalty))
}

// coverageScore 覆盖率打底，忽略主题与过度集中主题按比例扣分。
func (s *FairnessService) coverageScore(coverage model.CoverageAnalysis) float64 {
	totalTopics := coverage.TotalTopics
	if totalTopics == 0 {
		totalTopics = 1
	}

	ignoredPenalty := float64(len(coverage.IgnoredTopics)) / float64(totalTopics) * 30
	overRepPenalty := float64(len(coverage.OverRepresented)) / float64(totalTopics) * 20

	return util.Round2(math.Max(0, coverage.CoveragePercentage-ignoredPenalty-overRepPenalty))
}

// 解释文本的五档阈值
func interpretScore(score float64) string {
	switch {
	case score >= 85:
		return "Excellent - This exam paper demonstrates strong fairness characteristics with well-balanced difficulty, comprehensive cognitive level coverage, and appropriate syllabus distribution."
	case score >= 70:
		return "Good - This exam paper shows good fairness with minor areas for improvement in balance and coverage."
	case score >= 55:
		return "Fair - This exam paper is acceptable but has noticeable imbalances that could affect student outcomes."
	case score >= 40:
		return "Needs Improvement - This exam paper has significant fairness issues that should be addressed before use."
	default:
		return "Poor - This exam paper requires substantial revision to meet fairness standards."
	}
}

// generateSuggestions 规则式建议，仅在对应分项低于 70 分时评估，
// 输出顺序固定：难度 → 认知层级 → 覆盖 → 正向兜底。
func (s *FairnessService) generateSuggestions(
	difficulty model.DifficultyAnalysis,
	blooms model.BloomsAnalysis,
	coverage model.CoverageAnalysis,
	difficultyScore, bloomsScore, coverageScore float64,
) []string {
	var suggestions []string

	if difficultyScore < 70 && difficulty.TotalQuestions > 0 {
		total := difficulty.TotalQuestions
		easyPct := percentage(difficulty.Distribution[model.DifficultyEasy], total)
		mediumPct := percentage(difficulty.Distribution[model.DifficultyMedium], total)
		hardPct := percentage(difficulty.Distribution[model.DifficultyHard], total)

		if easyPct > 40 {
			suggestions = append(suggestions, "⚠️ Too many easy questions. Consider replacing some with medium-difficulty questions.")
		} else if easyPct < 20 {
			suggestions = append(suggestions, "⚠️ Add more easy questions to ensure accessibility for all students.")
		}

		if mediumPct < 40 {
			suggestions = append(suggestions, "⚠️ Increase medium-difficulty questions to better assess core understanding.")
		}

		if hardPct > 30 {
			suggestions = append(suggestions, "⚠️ Too many hard questions may disadvantage students. Consider reducing complexity.")
		} else if hardPct < 10 {
			suggestions = append(suggestions, "⚠️ Add challenging questions to differentiate high-performing students.")
		}
	}

	if bloomsScore < 70 {
		lowerOrder := blooms.Distribution[model.BloomsRemember] + blooms.Distribution[model.BloomsUnderstand]

		// 注意：这里的分母是出现过的层级个数而非总题数。
		// 上游策略即如此定义，为兼容性原样保留，勿"修正"为占比判断。
		if float64(lowerOrder) > float64(len(blooms.Distribution))*0.6 {
			suggestions = append(suggestions, "⚠️ Too many lower-order thinking questions. Add more analysis and application questions.")
		}

		higherOrder := blooms.Distribution[model.BloomsAnalyze] +
			blooms.Distribution[model.BloomsEvaluate] +
			blooms.Distribution[model.BloomsCreate]
		if higherOrder == 0 {
			suggestions = append(suggestions, "⚠️ No higher-order thinking questions detected. Include questions requiring analysis or evaluation.")
		}
	}

	if coverageScore < 70 {
		if len(coverage.IgnoredTopics) > 0 {
			suggestions = append(suggestions, formatTopicListSuggestion(
				fmt.Sprintf("⚠️ %d syllabus topic(s) not covered: ", len(coverage.IgnoredTopics)),
				coverage.IgnoredTopics,
			))
		}

		if len(coverage.OverRepresented) > 0 {
			named := coverage.OverRepresented
			if len(named) > 3 {
				named = named[:3]
			}
			suggestions = append(suggestions, fmt.Sprintf("⚠️ Over-emphasis on: %s. Distribute questions more evenly.", strings.Join(named, ", ")))
		}

		if coverage.CoveragePercentage < 60 {
			suggestions = append(suggestions, "⚠️ Less than 60% of syllabus covered. Add questions for missing topics.")
		}
	}

	if len(suggestions) == 0 {
		suggestions = append(suggestions, "✅ Exam paper shows excellent balance across all fairness dimensions.")
	}

	return suggestions
}

func formatTopicListSuggestion(prefix string, topics []string) string {
	named := topics
	ellipsis := ""
	if len(named) > 3 {
		named = named[:3]
		ellipsis = "..."
	}
	return prefix + strings.Join(named, ", ") + ellipsis
}

func percentage(count, total int) float64 {
	return float64(count) / float64(total) * 100
}
