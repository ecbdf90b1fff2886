package analysis

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeEngineScript builds a shell script that speaks just enough UCI to
// drive the handshake and one evaluation, answering every "go" command with
// the given lines.
func writeEngineScript(t *testing.T, goLines ...string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	b.WriteString("while read line; do\n")
	b.WriteString("  case \"$line\" in\n")
	b.WriteString("    uci) echo 'id name fakefish'; echo 'uciok';;\n")
	b.WriteString("    isready) echo 'readyok';;\n")
	b.WriteString("    go*)\n")
	for _, line := range goLines {
		fmt.Fprintf(&b, "      echo '%s'\n", line)
	}
	b.WriteString("      ;;\n")
	b.WriteString("    quit) exit 0;;\n")
	b.WriteString("  esac\n")
	b.WriteString("done\n")

	path := filepath.Join(t.TempDir(), "fakefish")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o755))
	return path
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestUCIEngine_EvaluateFEN(t *testing.T) {
	path := writeEngineScript(t,
		"info depth 1 score cp 23 nodes 10",
		"bestmove e2e4",
	)

	e, err := NewUCIEngine(context.Background(), path, 1, 10)
	require.NoError(t, err)
	defer e.Close()

	score, err := e.EvaluateFEN(context.Background(), startFEN)
	require.NoError(t, err)
	assert.Equal(t, 23, score)
}

func TestUCIEngine_EvaluateFEN_KeepsLastScore(t *testing.T) {
	path := writeEngineScript(t,
		"info depth 1 score cp 5 nodes 10",
		"info depth 2 score cp -40 nodes 80",
		"bestmove d2d4",
	)

	e, err := NewUCIEngine(context.Background(), path, 2, 10)
	require.NoError(t, err)
	defer e.Close()

	score, err := e.EvaluateFEN(context.Background(), startFEN)
	require.NoError(t, err)
	assert.Equal(t, -40, score)
}

func TestUCIEngine_EvaluateFEN_MateScore(t *testing.T) {
	path := writeEngineScript(t,
		"info depth 1 score mate 2 nodes 10",
		"bestmove d8h4",
	)

	e, err := NewUCIEngine(context.Background(), path, 1, 10)
	require.NoError(t, err)
	defer e.Close()

	score, err := e.EvaluateFEN(context.Background(), startFEN)
	require.NoError(t, err)
	assert.Equal(t, mateScore, score)
}

func TestUCIEngine_EvaluateFEN_NoScore(t *testing.T) {
	path := writeEngineScript(t, "bestmove e2e4")

	e, err := NewUCIEngine(context.Background(), path, 1, 10)
	require.NoError(t, err)
	defer e.Close()

	_, err = e.EvaluateFEN(context.Background(), startFEN)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no score")
}

func TestUCIEngine_EvaluateFEN_CancelledContext(t *testing.T) {
	path := writeEngineScript(t,
		"info depth 1 score cp 23 nodes 10",
		"bestmove e2e4",
	)

	e, err := NewUCIEngine(context.Background(), path, 1, 10)
	require.NoError(t, err)
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.EvaluateFEN(ctx, startFEN)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewUCIEngine_HandshakeFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake engine script requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "brokenfish")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	_, err := NewUCIEngine(context.Background(), path, 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uciok")
}

func TestNewUCIEngine_MissingBinary(t *testing.T) {
	_, err := NewUCIEngine(context.Background(), filepath.Join(t.TempDir(), "missing"), 1, 10)
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
		ok   bool
	}{
		{
			"centipawn score",
			"info depth 12 seldepth 17 multipv 1 score cp 34 nodes 51423 pv e2e4",
			34, true,
		},
		{
			"negative centipawns",
			"info depth 10 score cp -120 nodes 9000",
			-120, true,
		},
		{
			"mate for the mover",
			"info depth 8 score mate 3 nodes 512",
			10000, true,
		},
		{
			"mate against the mover",
			"info depth 8 score mate -2 nodes 512",
			-10000, true,
		},
		{"no score field", "info depth 5 nodes 100 time 3", 0, false},
		{"truncated score", "info depth 5 score cp", 0, false},
		{"garbage value", "info score cp abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseScore(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
