package analysis

import (
	"context"
	"fmt"
	"os"

	"github.com/notnil/chess"
)

// MoveRecord is a single move with the context needed for evaluation and
// classification. FENs are captured before and after the move; evaluations
// are filled in later and stay nil when the evaluator could not score the
// position.
type MoveRecord struct {
	GameID     string
	MoveNumber int
	Player     string // "white" or "black"
	FENBefore  string
	FENAfter   string
	UCI        string
	SAN        string
	EvalBefore *int // centipawns, side-to-move perspective
	EvalAfter  *int
}

// ParsedGame is one game extracted from a PGN file.
type ParsedGame struct {
	GameID      string
	WhitePlayer string
	BlackPlayer string
	Result      string
	Moves       []MoveRecord
	SANMoves    []string
}

// ParseLimits bounds how much of a PGN file is analyzed.
type ParseLimits struct {
	MinMoves int // games with fewer moves are skipped
	MaxMoves int // per-game move cap
	MaxGames int
}

// ParseFile reads a multi-game PGN file and extracts per-move records.
// Games that fail to parse are skipped; an empty result is not an error
// here (the analyzer decides whether zero games is a failure).
func ParseFile(ctx context.Context, path string, limits ParseLimits) ([]ParsedGame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pgn file: %w", err)
	}
	defer f.Close()

	var games []ParsedGame
	scanner := chess.NewScanner(f)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if limits.MaxGames > 0 && len(games) >= limits.MaxGames {
			break
		}

		game := scanner.Next()
		if game == nil {
			continue
		}

		parsed := parseGame(game, fmt.Sprintf("game_%d", len(games)), limits.MaxMoves)
		if len(parsed.Moves) < limits.MinMoves {
			continue
		}
		games = append(games, parsed)
	}
	if err := scanner.Err(); err != nil && len(games) == 0 {
		return nil, fmt.Errorf("parse pgn: %w", err)
	}
	return games, nil
}

func parseGame(game *chess.Game, gameID string, maxMoves int) ParsedGame {
	parsed := ParsedGame{
		GameID:      gameID,
		WhitePlayer: tagValue(game, "White"),
		BlackPlayer: tagValue(game, "Black"),
		Result:      game.Outcome().String(),
	}

	moves := game.Moves()
	positions := game.Positions() // len(moves)+1 entries
	notation := chess.AlgebraicNotation{}

	for i, move := range moves {
		if maxMoves > 0 && i >= maxMoves {
			break
		}
		player := "white"
		if i%2 == 1 {
			player = "black"
		}
		san := notation.Encode(positions[i], move)
		parsed.Moves = append(parsed.Moves, MoveRecord{
			GameID:     gameID,
			MoveNumber: i/2 + 1,
			Player:     player,
			FENBefore:  positions[i].String(),
			FENAfter:   positions[i+1].String(),
			UCI:        move.String(),
			SAN:        san,
		})
		parsed.SANMoves = append(parsed.SANMoves, san)
	}
	return parsed
}

func tagValue(game *chess.Game, key string) string {
	if tp := game.GetTagPair(key); tp != nil {
		return tp.Value
	}
	return "Unknown"
}
