package models

// MoveClassification labels the quality of a single move based on the
// evaluation swing it caused.
type MoveClassification string

const (
	MoveBlunder    MoveClassification = "blunder"
	MoveMistake    MoveClassification = "mistake"
	MoveInaccuracy MoveClassification = "inaccuracy"
	MoveOK         MoveClassification = "ok"
	MoveUnknown    MoveClassification = "unknown"
)

// MistakeStats aggregates move classifications across a set of moves.
type MistakeStats struct {
	TotalMoves     int     `json:"total_moves"`
	Blunders       int     `json:"blunders"`
	Mistakes       int     `json:"mistakes"`
	Inaccuracies   int     `json:"inaccuracies"`
	GoodMoves      int     `json:"good_moves"`
	Unknown        int     `json:"unknown"`
	BlunderRate    float64 `json:"blunder_rate"`
	MistakeRate    float64 `json:"mistake_rate"`
	InaccuracyRate float64 `json:"inaccuracy_rate"`
	GoodMoveRate   float64 `json:"good_move_rate"`
}

// OpeningStats holds per-opening game counts and result rates.
type OpeningStats struct {
	TotalGames int     `json:"total_games"`
	Wins       int     `json:"wins"`
	Losses     int     `json:"losses"`
	Draws      int     `json:"draws"`
	WinRate    float64 `json:"win_rate"`
	DrawRate   float64 `json:"draw_rate"`
	LossRate   float64 `json:"loss_rate"`
}

// RecommendationType grades how urgently an opening needs study.
type RecommendationType string

const (
	RecommendationCritical RecommendationType = "critical_weakness"
	RecommendationMajor    RecommendationType = "major_weakness"
	RecommendationModerate RecommendationType = "moderate_weakness"
	RecommendationMinor    RecommendationType = "minor_improvement"
)

// Recommendation is one prioritized opening study suggestion.
type Recommendation struct {
	Opening        string             `json:"opening"`
	PriorityScore  float64            `json:"priority_score"`
	TotalMoves     int                `json:"total_moves"`
	BlunderRate    float64            `json:"blunder_rate"`
	MistakeRate    float64            `json:"mistake_rate"`
	InaccuracyRate float64            `json:"inaccuracy_rate"`
	GoodMoveRate   float64            `json:"good_move_rate"`
	Type           RecommendationType `json:"recommendation_type"`
	StudyFocus     []string           `json:"study_focus"`
	Confidence     float64            `json:"confidence"`
}

// StudyPlanEntry ranks a recommended opening inside a study plan.
type StudyPlanEntry struct {
	Rank          int                `json:"rank"`
	Opening       string             `json:"opening"`
	PriorityScore float64            `json:"priority_score"`
	Type          RecommendationType `json:"recommendation_type"`
	StudyFocus    []string           `json:"study_focus"`
}

// StudyPlan is the aggregate plan built from all recommendations.
type StudyPlan struct {
	TotalRecommendations int              `json:"total_recommendations"`
	PriorityOpenings     []StudyPlanEntry `json:"priority_openings"`
	FocusAreas           []string         `json:"focus_areas"`
	EstimatedHours       int              `json:"estimated_hours"`
}

// AnalysisReport is the structured output of a completed analysis job.
type AnalysisReport struct {
	GamesParsed         int                     `json:"games_parsed"`
	MovesEvaluated      int                     `json:"moves_evaluated"`
	MistakeStats        MistakeStats            `json:"mistake_stats"`
	OpeningStats        map[string]OpeningStats `json:"opening_stats"`
	OpeningMistakeStats map[string]MistakeStats `json:"opening_mistake_stats"`
	Recommendations     []Recommendation        `json:"recommendations"`
	StudyPlan           StudyPlan               `json:"study_plan"`
}
