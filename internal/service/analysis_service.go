package service

import (
	"context"
	"fmt"

	"fair_exam_backend/internal/model"
	"fair_exam_backend/internal/util"
	"fair_exam_backend/pkg/logger"
	"fair_exam_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// minUsableQuestions 少于 3 题无法给出有意义的分布统计
const minUsableQuestions = 3

// UploadedDocument 上传文件的原始内容与文件名
type UploadedDocument struct {
	Filename string
	Data     []byte
}

// AnalysisService 分析流水线编排器，按固定顺序串联各阶段服务
type AnalysisService struct {
	document   *DocumentService
	segment    *SegmentService
	classifier *ClassifierService
	topic      *TopicService
	fairness   *FairnessService
}

func NewAnalysisService(
	document *DocumentService,
	segment *SegmentService,
	classifier *ClassifierService,
	topic *TopicService,
	fairness *FairnessService,
) *AnalysisService {
	return &AnalysisService{
		document:   document,
		segment:    segment,
		classifier: classifier,
		topic:      topic,
		fairness:   fairness,
	}
}

// Analyze 执行完整分析流程：
// 提取文本 → 内容校验 → 切分题目 → 难度/认知分类 → 大纲主题匹配 → 偏见检测 → 公平性评分。
// 输入问题（文件类型、内容不合法、题目不足）返回 util.IsInputError 可识别的哨兵错误。
func (s *AnalysisService) Analyze(ctx context.Context, examPaper, syllabus UploadedDocument) (*model.AnalysisReport, error) {
	examText, err := s.document.ExtractText(examPaper.Data, examPaper.Filename)
	if err != nil {
		return nil, fmt.Errorf("extract exam paper: %w", err)
	}
	syllabusText, err := s.document.ExtractText(syllabus.Data, syllabus.Filename)
	if err != nil {
		return nil, fmt.Errorf("extract syllabus: %w", err)
	}

	if !util.LooksLikeExamPaper(examText) {
		return nil, util.ErrNotAnExamPaper
	}
	if !util.LooksLikeSyllabus(syllabusText) {
		return nil, util.ErrNotASyllabus
	}

	logger.Log.Info("documents extracted",
		zap.String("exam", examPaper.Filename),
		zap.Int("exam_chars", len(examText)),
		zap.String("syllabus", syllabus.Filename),
		zap.Int("syllabus_chars", len(syllabusText)))

	questions := s.segment.SegmentQuestions(examText)
	if len(questions) < minUsableQuestions {
		return nil, util.ErrTooFewQuestions
	}
	logger.Log.Info("questions segmented", zap.Int("count", len(questions)))

	difficultyAnalysis := s.classifier.AnalyzeDifficulty(ctx, questions)
	bloomsAnalysis := s.classifier.AnalyzeBlooms(ctx, questions)

	topics := s.topic.ExtractTopics(ctx, syllabusText)
	logger.Log.Info("syllabus topics extracted", zap.Int("count", len(topics)))

	coverage := s.topic.MatchQuestionsToTopics(ctx, questions, topics)

	biasAnalysis := s.classifier.DetectBias(ctx, questions)

	fairnessResult := s.fairness.Calculate(difficultyAnalysis, bloomsAnalysis, coverage)

	monitoring.RecordAnalysis(fairnessResult.FairnessScore)
	logger.Log.Info("analysis complete", zap.Float64("fairness_score", fairnessResult.FairnessScore))

	return &model.AnalysisReport{
		FairnessScore:   fairnessResult.FairnessScore,
		Interpretation:  fairnessResult.Interpretation,
		ComponentScores: fairnessResult.ComponentScores,
		Suggestions:     fairnessResult.Suggestions,
		DifficultyAnalysis: model.DifficultyAnalysis{
			Distribution:   difficultyAnalysis.Distribution,
			TotalQuestions: difficultyAnalysis.TotalQuestions,
		},
		BloomsAnalysis: model.BloomsAnalysis{
			Distribution:   bloomsAnalysis.Distribution,
			TotalQuestions: bloomsAnalysis.TotalQuestions,
		},
		CoverageAnalysis: model.CoverageSummary{
			CoveragePercentage: coverage.CoveragePercentage,
			CoveredTopics:      coverage.CoveredTopics,
			TotalTopics:        coverage.TotalTopics,
			TopicCoverage:      coverage.TopicCoverage,
			OverRepresented:    coverage.OverRepresented,
			IgnoredTopics:      coverage.IgnoredTopics,
		},
		BiasAnalysis: biasAnalysis,
		ExamMetadata: model.ExamMetadata{
			TotalQuestions:   len(questions),
			SyllabusTopics:   topics,
			ExamFilename:     examPaper.Filename,
			SyllabusFilename: syllabus.Filename,
		},
	}, nil
}
