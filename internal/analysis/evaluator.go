package analysis

import (
	"context"
	"fmt"

	"github.com/notnil/chess"
)

// Evaluator scores a chess position in centipawns from the side-to-move's
// point of view.
type Evaluator interface {
	EvaluateFEN(ctx context.Context, fen string) (int, error)
}

// MaterialEvaluator is the engine-free fallback: it scores positions by raw
// material balance. Crude, but deterministic, which also makes it the
// evaluator of choice in tests.
type MaterialEvaluator struct{}

var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
}

func (MaterialEvaluator) EvaluateFEN(_ context.Context, fen string) (int, error) {
	fenOpt, err := chess.FEN(fen)
	if err != nil {
		return 0, fmt.Errorf("parse fen: %w", err)
	}
	game := chess.NewGame(fenOpt)
	pos := game.Position()

	var white, black int
	for _, piece := range pos.Board().SquareMap() {
		value := pieceValues[piece.Type()]
		if piece.Color() == chess.White {
			white += value
		} else {
			black += value
		}
	}

	score := white - black
	if pos.Turn() == chess.Black {
		score = -score
	}
	return score, nil
}
