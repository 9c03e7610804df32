package service

import (
	"context"
	"encoding/json"
	"fair_exam_backend/internal/model"
	"fair_exam_backend/pkg/logger"
	"fair_exam_backend/pkg/monitoring"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 单次分析内逐题分类的并发上限
const maxClassifyConcurrency = 8

// ClassifierService 逐题分类：难度与布鲁姆认知层级。
// 主路径走外部分类服务；服务未配置或单次调用失败时，
// 该次调用立即降级到确定性的关键词回退，不影响其他调用。
type ClassifierService struct {
	ai *AIService
}

func NewClassifierService(ai *AIService) *ClassifierService {
	return &ClassifierService{ai: ai}
}

// ---- 难度分类 ----

const difficultySystemPrompt = "You are an educational assessment expert analyzing exam questions."

const difficultyPromptTemplate = `Analyze this exam question and classify its difficulty level.

Question: %s

Classify as: Easy, Medium, or Hard

Criteria:
- Easy: Recall of facts, definitions, simple concepts
- Medium: Application of concepts, problem-solving, moderate analysis
- Hard: Deep analysis, synthesis, evaluation, complex problem-solving

Respond in JSON format:
{
  "difficulty": "Easy|Medium|Hard",
  "reasoning": "Brief explanation of why"
}`

// 回退关键词表。Easy 在 Hard 之前检查，命中即停，顺序即平局规则。
var (
	easyKeywords = []string{"define", "list", "name", "what is", "who is", "when"}
	hardKeywords = []string{"analyze", "evaluate", "design", "propose", "justify", "critique", "synthesize"}
)

func (s *ClassifierService) ClassifyDifficulty(ctx context.Context, question string) model.DifficultyDetail {
	if s.ai.Configured() {
		detail, err := s.classifyDifficultyAI(ctx, question)
		if err == nil {
			return detail
		}
		logger.Log.Warn("difficulty classification degraded to fallback", zap.Error(err))
	}
	monitoring.RecordFallback("difficulty")
	return s.fallbackDifficulty(question)
}

func (s *ClassifierService) classifyDifficultyAI(ctx context.Context, question string) (model.DifficultyDetail, error) {
	out, err := s.ai.Chat(ctx, difficultySystemPrompt, fmt.Sprintf(difficultyPromptTemplate, question), 300)
	if err != nil {
		return model.DifficultyDetail{}, err
	}

	// 动态负载在边界处校验到固定枚举，校验失败同样触发回退
	var payload struct {
		Difficulty string `json:"difficulty"`
		Reasoning  string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(StripJSONFence(out)), &payload); err != nil {
		return model.DifficultyDetail{}, fmt.Errorf("decode difficulty response: %w", err)
	}
	if !model.ValidDifficulty(payload.Difficulty) {
		return model.DifficultyDetail{}, fmt.Errorf("invalid difficulty label %q", payload.Difficulty)
	}

	return model.DifficultyDetail{
		Question:   question,
		Difficulty: model.Difficulty(payload.Difficulty),
		Reasoning:  payload.Reasoning,
	}, nil
}

// fallbackDifficulty 确定性关键词回退，必须逐位可复现。
func (s *ClassifierService) fallbackDifficulty(question string) model.DifficultyDetail {
	lower := strings.ToLower(question)

	if containsAny(lower, easyKeywords) {
		return model.DifficultyDetail{
			Question:   question,
			Difficulty: model.DifficultyEasy,
			Reasoning:  "Question requires basic recall or definition",
		}
	}
	if containsAny(lower, hardKeywords) {
		return model.DifficultyDetail{
			Question:   question,
			Difficulty: model.DifficultyHard,
			Reasoning:  "Question requires deep analysis or evaluation",
		}
	}
	return model.DifficultyDetail{
		Question:   question,
		Difficulty: model.DifficultyMedium,
		Reasoning:  "Question requires application of concepts",
	}
}

// AnalyzeDifficulty 逐题分类后聚合为频次分布，输出保持原始题目顺序。
func (s *ClassifierService) AnalyzeDifficulty(ctx context.Context, questions []string) model.DifficultyAnalysis {
	details := make([]model.DifficultyDetail, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxClassifyConcurrency)
	for i, q := range questions {
		i, q := i, q
		g.Go(func() error {
			details[i] = s.ClassifyDifficulty(gctx, q)
			return nil
		})
	}
	g.Wait()

	distribution := make(map[model.Difficulty]int)
	for _, d := range details {
		distribution[d.Difficulty]++
	}

	return model.DifficultyAnalysis{
		Distribution:   distribution,
		TotalQuestions: len(questions),
		Details:        details,
	}
}

// ---- 布鲁姆认知层级 ----

const bloomsSystemPrompt = "You are an educational assessment expert specializing in Bloom's Taxonomy."

const bloomsPromptTemplate = `Analyze this exam question and map it to Bloom's Taxonomy.

Question: %s

Bloom's Taxonomy Levels:
1. Remember: Recall facts and basic concepts
2. Understand: Explain ideas or concepts
3. Apply: Use information in new situations
4. Analyze: Draw connections among ideas
5. Evaluate: Justify a stand or decision
6. Create: Produce new or original work

Identify action verbs and classify the cognitive level required.

Respond in JSON format:
{
  "blooms_level": "Remember|Understand|Apply|Analyze|Evaluate|Create",
  "explanation": "Brief reasoning with identified action verbs"
}`

// 回退动词表，按 Remember→Create 固定顺序检查，首个命中层级生效
var bloomsKeywordTable = []struct {
	level model.BloomsLevel
	verbs []string
}{
	{model.BloomsRemember, []string{"define", "list", "name", "recall", "identify", "label"}},
	{model.BloomsUnderstand, []string{"explain", "describe", "summarize", "interpret", "classify"}},
	{model.BloomsApply, []string{"apply", "demonstrate", "solve", "use", "implement"}},
	{model.BloomsAnalyze, []string{"analyze", "compare", "contrast", "examine", "differentiate"}},
	{model.BloomsEvaluate, []string{"evaluate", "assess", "judge", "critique", "justify"}},
	{model.BloomsCreate, []string{"create", "design", "develop", "propose", "construct", "formulate"}},
}

func (s *ClassifierService) ClassifyBloomsLevel(ctx context.Context, question string) model.BloomsDetail {
	if s.ai.Configured() {
		detail, err := s.classifyBloomsAI(ctx, question)
		if err == nil {
			return detail
		}
		logger.Log.Warn("blooms mapping degraded to fallback", zap.Error(err))
	}
	monitoring.RecordFallback("blooms")
	return s.fallbackBlooms(question)
}

func (s *ClassifierService) classifyBloomsAI(ctx context.Context, question string) (model.BloomsDetail, error) {
	out, err := s.ai.Chat(ctx, bloomsSystemPrompt, fmt.Sprintf(bloomsPromptTemplate, question), 300)
	if err != nil {
		return model.BloomsDetail{}, err
	}

	var payload struct {
		BloomsLevel string `json:"blooms_level"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(StripJSONFence(out)), &payload); err != nil {
		return model.BloomsDetail{}, fmt.Errorf("decode blooms response: %w", err)
	}
	if !model.ValidBloomsLevel(payload.BloomsLevel) {
		return model.BloomsDetail{}, fmt.Errorf("invalid blooms level %q", payload.BloomsLevel)
	}

	return model.BloomsDetail{
		Question:    question,
		BloomsLevel: model.BloomsLevel(payload.BloomsLevel),
		Explanation: payload.Explanation,
	}, nil
}

func (s *ClassifierService) fallbackBlooms(question string) model.BloomsDetail {
	lower := strings.ToLower(question)

	for _, entry := range bloomsKeywordTable {
		if containsAny(lower, entry.verbs) {
			return model.BloomsDetail{
				Question:    question,
				BloomsLevel: entry.level,
				Explanation: fmt.Sprintf("Question contains action verbs indicating %s level", entry.level),
			}
		}
	}
	return model.BloomsDetail{
		Question:    question,
		BloomsLevel: model.BloomsUnderstand,
		Explanation: "Default classification based on question structure",
	}
}

// AnalyzeBlooms 逐题映射认知层级并聚合分布。
func (s *ClassifierService) AnalyzeBlooms(ctx context.Context, questions []string) model.BloomsAnalysis {
	details := make([]model.BloomsDetail, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxClassifyConcurrency)
	for i, q := range questions {
		i, q := i, q
		g.Go(func() error {
			details[i] = s.ClassifyBloomsLevel(gctx, q)
			return nil
		})
	}
	g.Wait()

	distribution := make(map[model.BloomsLevel]int)
	for _, d := range details {
		distribution[d.BloomsLevel]++
	}

	return model.BloomsAnalysis{
		Distribution:   distribution,
		TotalQuestions: len(questions),
		Details:        details,
	}
}

// ---- 偏见与歧义检测 ----

const biasSystemPrompt = "You are an expert in educational fairness and responsible AI."

const biasPromptTemplate = `Analyze these exam questions for potential bias and ambiguity issues.

Questions:
%s

Check for:
1. Cultural bias
2. Gender bias
3. Socioeconomic bias
4. Ambiguous wording
5. Assumptions about background knowledge

Respond in JSON format:
{
  "bias_detected": true/false,
  "issues": ["list of specific issues found"],
  "suggestions": ["improvement suggestions"],
  "fairness_indicators": {
    "cultural_neutrality": 0-100,
    "clarity": 0-100,
    "accessibility": 0-100
  }
}`

// DetectBias 整卷一次调用检测偏见与歧义。结果不参与公平性得分。
func (s *ClassifierService) DetectBias(ctx context.Context, questions []string) model.BiasAnalysis {
	if s.ai.Configured() {
		result, err := s.detectBiasAI(ctx, questions)
		if err == nil {
			return result
		}
		logger.Log.Warn("bias detection degraded to fallback", zap.Error(err))
	}
	monitoring.RecordFallback("bias")
	return fallbackBiasAnalysis()
}

func (s *ClassifierService) detectBiasAI(ctx context.Context, questions []string) (model.BiasAnalysis, error) {
	numbered := make([]string, len(questions))
	for i, q := range questions {
		numbered[i] = fmt.Sprintf("%d. %s", i+1, q)
	}

	out, err := s.ai.Chat(ctx, biasSystemPrompt, fmt.Sprintf(biasPromptTemplate, strings.Join(numbered, "\n")), 800)
	if err != nil {
		return model.BiasAnalysis{}, err
	}

	var result model.BiasAnalysis
	if err := json.Unmarshal([]byte(StripJSONFence(out)), &result); err != nil {
		return model.BiasAnalysis{}, fmt.Errorf("decode bias response: %w", err)
	}
	if result.Issues == nil {
		result.Issues = []string{}
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	return result, nil
}

func fallbackBiasAnalysis() model.BiasAnalysis {
	return model.BiasAnalysis{
		BiasDetected: false,
		Issues:       []string{},
		Suggestions: []string{
			"Questions appear to be culturally neutral",
			"Consider adding more diverse examples",
		},
		FairnessIndicators: model.FairnessIndicators{
			CulturalNeutrality: 85,
			Clarity:            90,
			Accessibility:      88,
		},
	}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
