package analysis_test

import (
	"context"
	"testing"

	"github.com/openingcoach/openingcoach/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialEvaluator(t *testing.T) {
	ev := analysis.MaterialEvaluator{}
	ctx := context.Background()

	tests := []struct {
		name string
		fen  string
		want int
	}{
		{
			"starting position is balanced",
			"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			0,
		},
		{
			"extra rook, white to move",
			"k7/8/8/8/8/8/8/K2R4 w - - 0 1",
			500,
		},
		{
			"extra rook, black to move",
			"k7/8/8/8/8/8/8/K2R4 b - - 0 1",
			-500,
		},
		{
			"queen versus knight and bishop, white to move",
			"k1nb4/8/8/8/8/8/8/K2Q4 w - - 0 1",
			900 - 320 - 330,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ev.EvaluateFEN(ctx, tt.fen)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaterialEvaluator_InvalidFEN(t *testing.T) {
	ev := analysis.MaterialEvaluator{}

	_, err := ev.EvaluateFEN(context.Background(), "this is not a fen")
	assert.Error(t, err)
}
