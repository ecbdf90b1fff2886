package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openingcoach/openingcoach/pkg/models"
)

// Options configures an Analyzer.
type Options struct {
	Limits     ParseLimits
	Thresholds MistakeThresholds
	Recommend  RecommendOptions

	// EnginePath points at a UCI engine binary. When empty, positions are
	// scored by material balance instead.
	EnginePath       string
	EngineDepth      int
	EngineMoveTimeMS int
}

// Analyzer is the work function behind analysis jobs: it turns a staged PGN
// file into an AnalysisReport. Safe for concurrent use; any per-job state
// (such as an engine subprocess) lives inside Analyze.
type Analyzer struct {
	opts Options
}

func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// Analyze runs the full pipeline: parse, evaluate, classify mistakes and
// openings, and generate recommendations. ctx carries the job deadline; the
// engine subprocess (if any) dies with it.
func (a *Analyzer) Analyze(ctx context.Context, pgnPath string) (*models.AnalysisReport, error) {
	games, err := ParseFile(ctx, pgnPath, a.opts.Limits)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, fmt.Errorf("no analyzable games found in PGN file")
	}

	evaluator, cleanup, err := a.newEvaluator(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	report := &models.AnalysisReport{GamesParsed: len(games)}

	// Evaluate every move and classify it. Evaluation failures degrade the
	// move to "unknown" rather than failing the whole job.
	openings := make(map[string]string, len(games))
	moveClasses := make(map[string][]models.MoveClassification, len(games))
	var allClasses []models.MoveClassification

	for gi := range games {
		game := &games[gi]
		openings[game.GameID] = ClassifyOpening(game.SANMoves)

		for mi := range game.Moves {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			move := &game.Moves[mi]
			evaluateMove(ctx, evaluator, move)
			if move.EvalBefore != nil {
				report.MovesEvaluated++
			}

			class := a.opts.Thresholds.ClassifyMove(move.EvalBefore, move.EvalAfter)
			moveClasses[game.GameID] = append(moveClasses[game.GameID], class)
			allClasses = append(allClasses, class)
		}
	}

	report.MistakeStats = MistakeStats(allClasses)
	report.OpeningStats = OpeningStats(games, openings)

	// Regroup per-game classifications by opening.
	byOpening := make(map[string][]models.MoveClassification)
	for gameID, classes := range moveClasses {
		opening := openings[gameID]
		byOpening[opening] = append(byOpening[opening], classes...)
	}
	report.OpeningMistakeStats = make(map[string]models.MistakeStats, len(byOpening))
	for opening, classes := range byOpening {
		report.OpeningMistakeStats[opening] = MistakeStats(classes)
	}

	report.Recommendations = Recommend(report.OpeningMistakeStats, a.opts.Recommend)
	report.StudyPlan = BuildStudyPlan(report.Recommendations)

	slog.Info("analysis complete",
		"games_parsed", report.GamesParsed,
		"moves_evaluated", report.MovesEvaluated,
		"recommendations", len(report.Recommendations),
	)
	return report, nil
}

func (a *Analyzer) newEvaluator(ctx context.Context) (Evaluator, func(), error) {
	if a.opts.EnginePath == "" {
		return MaterialEvaluator{}, func() {}, nil
	}
	engine, err := NewUCIEngine(ctx, a.opts.EnginePath, a.opts.EngineDepth, a.opts.EngineMoveTimeMS)
	if err != nil {
		return nil, nil, fmt.Errorf("start uci engine: %w", err)
	}
	return engine, engine.Close, nil
}

func evaluateMove(ctx context.Context, ev Evaluator, move *MoveRecord) {
	before, err := ev.EvaluateFEN(ctx, move.FENBefore)
	if err != nil {
		slog.Warn("evaluating position failed", "game_id", move.GameID, "move", move.UCI, "error", err)
		return
	}
	after, err := ev.EvaluateFEN(ctx, move.FENAfter)
	if err != nil {
		slog.Warn("evaluating position failed", "game_id", move.GameID, "move", move.UCI, "error", err)
		return
	}
	move.EvalBefore = &before
	move.EvalAfter = &after
}
