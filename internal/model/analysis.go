package model

// Difficulty 题目难度等级
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ValidDifficulty reports whether s is one of the three known levels.
func ValidDifficulty(s string) bool {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// BloomsLevel 布鲁姆认知层级
type BloomsLevel string

const (
	BloomsRemember   BloomsLevel = "Remember"
	BloomsUnderstand BloomsLevel = "Understand"
	BloomsApply      BloomsLevel = "Apply"
	BloomsAnalyze    BloomsLevel = "Analyze"
	BloomsEvaluate   BloomsLevel = "Evaluate"
	BloomsCreate     BloomsLevel = "Create"
)

// AllBloomsLevels lists the six levels in taxonomy order. The keyword
// fallback and the balance score both depend on this ordering.
var AllBloomsLevels = []BloomsLevel{
	BloomsRemember,
	BloomsUnderstand,
	BloomsApply,
	BloomsAnalyze,
	BloomsEvaluate,
	BloomsCreate,
}

// ValidBloomsLevel reports whether s is one of the six known levels.
func ValidBloomsLevel(s string) bool {
	for _, l := range AllBloomsLevels {
		if BloomsLevel(s) == l {
			return true
		}
	}
	return false
}

// DifficultyDetail 单题难度分类结果
type DifficultyDetail struct {
	Question   string     `json:"question"`
	Difficulty Difficulty `json:"difficulty"`
	Reasoning  string     `json:"reasoning"`
}

// DifficultyAnalysis 全卷难度分布
type DifficultyAnalysis struct {
	Distribution   map[Difficulty]int `json:"distribution"`
	TotalQuestions int                `json:"total_questions"`
	Details        []DifficultyDetail `json:"details,omitempty"`
}

// BloomsDetail 单题认知层级结果
type BloomsDetail struct {
	Question    string      `json:"question"`
	BloomsLevel BloomsLevel `json:"blooms_level"`
	Explanation string      `json:"explanation"`
}

// BloomsAnalysis 全卷认知层级分布
type BloomsAnalysis struct {
	Distribution   map[BloomsLevel]int `json:"distribution"`
	TotalQuestions int                 `json:"total_questions"`
	Details        []BloomsDetail      `json:"details,omitempty"`
}

// TopicMatch 题目与大纲主题的一次匹配
type TopicMatch struct {
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// QuestionTopicMapping 单题的主题匹配记录。Question 仅用于展示，
// 超过 100 字符会被截断，分类始终使用完整文本。
type QuestionTopicMapping struct {
	Question      string       `json:"question"`
	MatchedTopics []TopicMatch `json:"matched_topics"`
	BestMatch     string       `json:"best_match"`
}

// CoverageAnalysis 大纲覆盖分析
type CoverageAnalysis struct {
	QuestionTopicMapping []QuestionTopicMapping `json:"question_topic_mapping"`
	TopicCoverage        map[string]int         `json:"topic_coverage"`
	CoveragePercentage   float64                `json:"coverage_percentage"`
	CoveredTopics        int                    `json:"covered_topics"`
	TotalTopics          int                    `json:"total_topics"`
	OverRepresented      []string               `json:"over_represented"`
	IgnoredTopics        []string               `json:"ignored_topics"`
}

// CoverageSummary is the coverage block exposed on the wire: the full
// per-question mapping is dropped from the response, everything else kept.
type CoverageSummary struct {
	CoveragePercentage float64        `json:"coverage_percentage"`
	CoveredTopics      int            `json:"covered_topics"`
	TotalTopics        int            `json:"total_topics"`
	TopicCoverage      map[string]int `json:"topic_coverage"`
	OverRepresented    []string       `json:"over_represented"`
	IgnoredTopics      []string       `json:"ignored_topics"`
}

// ComponentScore 单项得分：分数、固定权重与加权贡献
type ComponentScore struct {
	Score                float64 `json:"score"`
	Weight               int     `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
}

// ComponentScores 三个组成项，权重固定为 40/30/30
type ComponentScores struct {
	DifficultyBalance ComponentScore `json:"difficulty_balance"`
	BloomsBalance     ComponentScore `json:"blooms_balance"`
	SyllabusCoverage  ComponentScore `json:"syllabus_coverage"`
}

// FairnessResult 公平性引擎输出
type FairnessResult struct {
	FairnessScore   float64         `json:"fairness_score"`
	Interpretation  string          `json:"interpretation"`
	ComponentScores ComponentScores `json:"component_scores"`
	Suggestions     []string        `json:"suggestions"`
}

// FairnessIndicators 偏见检测指标
type FairnessIndicators struct {
	CulturalNeutrality int `json:"cultural_neutrality"`
	Clarity            int `json:"clarity"`
	Accessibility      int `json:"accessibility"`
}

// BiasAnalysis 偏见与歧义检测结果
type BiasAnalysis struct {
	BiasDetected       bool               `json:"bias_detected"`
	Issues             []string           `json:"issues"`
	Suggestions        []string           `json:"suggestions"`
	FairnessIndicators FairnessIndicators `json:"fairness_indicators"`
}

// ExamMetadata 本次分析的元信息
type ExamMetadata struct {
	TotalQuestions   int      `json:"total_questions"`
	SyllabusTopics   []string `json:"syllabus_topics"`
	ExamFilename     string   `json:"exam_filename"`
	SyllabusFilename string   `json:"syllabus_filename"`
}

// AnalysisReport is the aggregate record returned to the consumer. Field
// names and nesting are the wire contract the frontend renders; do not
// rename them.
type AnalysisReport struct {
	FairnessScore      float64            `json:"fairness_score"`
	Interpretation     string             `json:"interpretation"`
	ComponentScores    ComponentScores    `json:"component_scores"`
	Suggestions        []string           `json:"suggestions"`
	DifficultyAnalysis DifficultyAnalysis `json:"difficulty_analysis"`
	BloomsAnalysis     BloomsAnalysis     `json:"blooms_analysis"`
	CoverageAnalysis   CoverageSummary    `json:"coverage_analysis"`
	BiasAnalysis       BiasAnalysis       `json:"bias_analysis"`
	ExamMetadata       ExamMetadata       `json:"exam_metadata"`
}
