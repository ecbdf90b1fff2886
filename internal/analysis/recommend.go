package analysis

import (
	"sort"

	"github.com/openingcoach/openingcoach/pkg/models"
)

// RecommendOptions bounds the recommendation output.
type RecommendOptions struct {
	TopOpenings        int // max recommendations returned
	MinMovesPerOpening int // openings with fewer analyzed moves are skipped
}

// Recommend turns per-opening mistake statistics into a prioritized list of
// openings to study. Blunders weigh three times as much as inaccuracies;
// openings backed by more moves get a confidence boost.
func Recommend(openingStats map[string]models.MistakeStats, opts RecommendOptions) []models.Recommendation {
	recs := make([]models.Recommendation, 0, len(openingStats))

	for opening, stats := range openingStats {
		if stats.TotalMoves < opts.MinMovesPerOpening {
			continue
		}
		score := priorityScore(stats)
		if score <= 0 {
			continue
		}
		recs = append(recs, models.Recommendation{
			Opening:        opening,
			PriorityScore:  score,
			TotalMoves:     stats.TotalMoves,
			BlunderRate:    stats.BlunderRate,
			MistakeRate:    stats.MistakeRate,
			InaccuracyRate: stats.InaccuracyRate,
			GoodMoveRate:   stats.GoodMoveRate,
			Type:           recommendationType(stats),
			StudyFocus:     studyFocus(stats),
			Confidence:     confidence(stats),
		})
	}

	sort.Slice(recs, func(i, j int) bool {
		if recs[i].PriorityScore != recs[j].PriorityScore {
			return recs[i].PriorityScore > recs[j].PriorityScore
		}
		return recs[i].Opening < recs[j].Opening
	})

	if opts.TopOpenings > 0 && len(recs) > opts.TopOpenings {
		recs = recs[:opts.TopOpenings]
	}
	return recs
}

func priorityScore(stats models.MistakeStats) float64 {
	weighted := 3.0*stats.BlunderRate + 2.0*stats.MistakeRate + 1.0*stats.InaccuracyRate

	boost := float64(stats.TotalMoves) / 50.0
	if boost > 1.0 {
		boost = 1.0
	}
	return weighted * (1.0 + boost)
}

func recommendationType(stats models.MistakeStats) models.RecommendationType {
	switch {
	case stats.BlunderRate > 0.15:
		return models.RecommendationCritical
	case stats.MistakeRate > 0.25:
		return models.RecommendationMajor
	case stats.InaccuracyRate > 0.4:
		return models.RecommendationModerate
	default:
		return models.RecommendationMinor
	}
}

func studyFocus(stats models.MistakeStats) []string {
	var focus []string
	if stats.BlunderRate > 0.1 {
		focus = append(focus, "tactical_awareness", "calculation")
	}
	if stats.MistakeRate > 0.2 {
		focus = append(focus, "positional_understanding", "opening_principles")
	}
	if stats.InaccuracyRate > 0.3 {
		focus = append(focus, "move_quality", "planning")
	}
	if len(focus) == 0 {
		focus = append(focus, "general_improvement")
	}
	return focus
}

func confidence(stats models.MistakeStats) float64 {
	c := float64(stats.TotalMoves) / 100.0
	if c > 1.0 {
		c = 1.0
	}
	return c
}

var studyHours = map[models.RecommendationType]int{
	models.RecommendationCritical: 8,
	models.RecommendationMajor:    6,
	models.RecommendationModerate: 4,
	models.RecommendationMinor:    2,
}

// BuildStudyPlan rolls the recommendations up into a ranked plan with merged
// focus areas and a total study-time estimate.
func BuildStudyPlan(recs []models.Recommendation) models.StudyPlan {
	plan := models.StudyPlan{
		TotalRecommendations: len(recs),
		PriorityOpenings:     make([]models.StudyPlanEntry, 0, len(recs)),
		FocusAreas:           []string{},
	}

	seen := make(map[string]bool)
	for i, rec := range recs {
		plan.PriorityOpenings = append(plan.PriorityOpenings, models.StudyPlanEntry{
			Rank:          i + 1,
			Opening:       rec.Opening,
			PriorityScore: rec.PriorityScore,
			Type:          rec.Type,
			StudyFocus:    rec.StudyFocus,
		})
		for _, f := range rec.StudyFocus {
			if !seen[f] {
				seen[f] = true
				plan.FocusAreas = append(plan.FocusAreas, f)
			}
		}
		plan.EstimatedHours += studyHours[rec.Type]
	}
	return plan
}
