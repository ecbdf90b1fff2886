package analysis

import (
	"strings"

	"github.com/openingcoach/openingcoach/pkg/models"
)

const unknownOpening = "Unknown Opening"

// openingBook maps SAN move-sequence prefixes to opening names with ECO
// codes. Deliberately small; longest-prefix matching makes deeper lines
// fall back to their parent opening.
var openingBook = map[string]string{
	// King's Pawn openings
	"e4 e5":                    "C20-C99 King's Pawn Game",
	"e4 e5 Nf3":                "C40 King's Knight Opening",
	"e4 e5 Nf3 Nc6":            "C50 Giuoco Piano",
	"e4 e5 Nf3 Nc6 Bc4":        "C50 Giuoco Piano",
	"e4 e5 Nf3 Nc6 Bc4 Bc5":    "C50 Giuoco Piano",
	"e4 e5 Nf3 Nc6 Bb5":        "C60 Ruy Lopez",
	"e4 e5 Nf3 Nc6 Bb5 a6":     "C60 Ruy Lopez",
	"e4 e5 Nf3 Nc6 Bb5 a6 Ba4": "C60 Ruy Lopez",
	// Sicilian Defense
	"e4 c5":                     "B20 Sicilian Defense",
	"e4 c5 Nf3":                 "B20 Sicilian Defense",
	"e4 c5 Nf3 d6":              "B40 Sicilian Defense",
	"e4 c5 Nf3 d6 d4":           "B40 Sicilian Defense",
	"e4 c5 Nf3 d6 d4 cxd4":      "B40 Sicilian Defense",
	"e4 c5 Nf3 d6 d4 cxd4 Nxd4": "B40 Sicilian Defense",
	// French Defense
	"e4 e6":          "C00 French Defense",
	"e4 e6 d4":       "C00 French Defense",
	"e4 e6 d4 d5":    "C00 French Defense",
	"e4 e6 d4 d5 e5": "C00 French Defense",
	// Caro-Kann Defense
	"e4 c6":       "B10 Caro-Kann Defense",
	"e4 c6 d4":    "B10 Caro-Kann Defense",
	"e4 c6 d4 d5": "B10 Caro-Kann Defense",
	// Queen's Pawn openings
	"d4":            "D00 Queen's Pawn Game",
	"d4 d5":         "D00 Queen's Pawn Game",
	"d4 d5 c4":      "D20 Queen's Gambit",
	"d4 d5 c4 dxc4": "D20 Queen's Gambit",
	"d4 d5 c4 e6":   "D30 Queen's Gambit Declined",
	"d4 Nf6":        "A40 Queen's Pawn Game",
	"d4 Nf6 c4":     "A40 Queen's Pawn Game",
	"d4 Nf6 c4 e6":  "E00 Indian Game",
	"d4 Nf6 c4 g6":  "E60 King's Indian Defense",
	// English Opening
	"c4":     "A10 English Opening",
	"c4 e5":  "A10 English Opening",
	"c4 Nf6": "A10 English Opening",
	"c4 e6":  "A10 English Opening",
}

// classifyOpeningLookahead bounds how many opening moves are matched.
const classifyOpeningLookahead = 10

// ClassifyOpening names the opening of a game given its SAN moves, using
// the longest matching prefix of the first ten moves.
func ClassifyOpening(sanMoves []string) string {
	if len(sanMoves) == 0 {
		return unknownOpening
	}
	n := len(sanMoves)
	if n > classifyOpeningLookahead {
		n = classifyOpeningLookahead
	}
	for i := n; i > 0; i-- {
		if name, ok := openingBook[strings.Join(sanMoves[:i], " ")]; ok {
			return name
		}
	}
	return unknownOpening
}

// OpeningStats aggregates game counts and result rates per opening.
func OpeningStats(games []ParsedGame, openings map[string]string) map[string]models.OpeningStats {
	stats := make(map[string]models.OpeningStats)

	for _, game := range games {
		opening := openings[game.GameID]
		if opening == "" {
			opening = unknownOpening
		}
		s := stats[opening]
		s.TotalGames++
		switch game.Result {
		case "1-0":
			s.Wins++
		case "0-1":
			s.Losses++
		case "1/2-1/2":
			s.Draws++
		}
		stats[opening] = s
	}

	for opening, s := range stats {
		total := s.Wins + s.Losses + s.Draws
		if total > 0 {
			s.WinRate = float64(s.Wins) / float64(total)
			s.DrawRate = float64(s.Draws) / float64(total)
			s.LossRate = float64(s.Losses) / float64(total)
		}
		stats[opening] = s
	}
	return stats
}
