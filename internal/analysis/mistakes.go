package analysis

import "github.com/openingcoach/openingcoach/pkg/models"

// MistakeThresholds are centipawn-loss cutoffs from the mover's point of
// view: a move whose evaluation delta is at or below a threshold gets that
// label. Chess.com-style defaults: losing 2 pawns is a blunder.
type MistakeThresholds struct {
	Blunder    int // delta <= Blunder
	Mistake    int // delta <= Mistake
	Inaccuracy int // delta <= Inaccuracy
}

// DefaultMistakeThresholds matches the conventional -200/-100/-50 cutoffs.
func DefaultMistakeThresholds() MistakeThresholds {
	return MistakeThresholds{Blunder: -200, Mistake: -100, Inaccuracy: -50}
}

// ClassifyMove labels a move by the evaluation it cost the mover. Both
// evaluations are side-to-move relative, so the post-move score (opponent to
// move) is negated before comparing.
func (t MistakeThresholds) ClassifyMove(evalBefore, evalAfter *int) models.MoveClassification {
	if evalBefore == nil || evalAfter == nil {
		return models.MoveUnknown
	}
	delta := -*evalAfter - *evalBefore
	switch {
	case delta <= t.Blunder:
		return models.MoveBlunder
	case delta <= t.Mistake:
		return models.MoveMistake
	case delta <= t.Inaccuracy:
		return models.MoveInaccuracy
	default:
		return models.MoveOK
	}
}

// MistakeStats tallies classifications and their rates for a set of moves.
func MistakeStats(classifications []models.MoveClassification) models.MistakeStats {
	stats := models.MistakeStats{TotalMoves: len(classifications)}

	for _, c := range classifications {
		switch c {
		case models.MoveBlunder:
			stats.Blunders++
		case models.MoveMistake:
			stats.Mistakes++
		case models.MoveInaccuracy:
			stats.Inaccuracies++
		case models.MoveOK:
			stats.GoodMoves++
		default:
			stats.Unknown++
		}
	}

	if stats.TotalMoves > 0 {
		total := float64(stats.TotalMoves)
		stats.BlunderRate = float64(stats.Blunders) / total
		stats.MistakeRate = float64(stats.Mistakes) / total
		stats.InaccuracyRate = float64(stats.Inaccuracies) / total
		stats.GoodMoveRate = float64(stats.GoodMoves) / total
	}
	return stats
}
