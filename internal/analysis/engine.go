package analysis

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// mateScore is the centipawn value assigned to a forced mate, mirroring the
// convention of capping mate scores at a large finite number.
const mateScore = 10000

// UCIEngine evaluates positions through a UCI chess engine subprocess
// (typically Stockfish). The subprocess is the isolation boundary for native
// analysis work: it is started under the task's context, so a timed-out or
// abandoned job kills the engine rather than leaking it.
//
// An engine instance is not safe for concurrent use; the analyzer creates
// one per job.
type UCIEngine struct {
	cmd    *exec.Cmd
	stdin  *bufio.Writer
	stdout *bufio.Scanner

	depth      int
	moveTimeMS int
}

// NewUCIEngine starts the engine binary and completes the UCI handshake.
func NewUCIEngine(ctx context.Context, path string, depth, moveTimeMS int) (*UCIEngine, error) {
	cmd := exec.CommandContext(ctx, path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}

	e := &UCIEngine{
		cmd:        cmd,
		stdin:      bufio.NewWriter(stdin),
		stdout:     bufio.NewScanner(stdout),
		depth:      depth,
		moveTimeMS: moveTimeMS,
	}

	e.send("uci")
	if !e.waitFor("uciok") {
		e.Close()
		return nil, fmt.Errorf("engine %s: no uciok response", path)
	}
	e.send("isready")
	if !e.waitFor("readyok") {
		e.Close()
		return nil, fmt.Errorf("engine %s: no readyok response", path)
	}
	return e, nil
}

func (e *UCIEngine) send(cmd string) {
	e.stdin.WriteString(cmd + "\n")
	e.stdin.Flush()
}

func (e *UCIEngine) waitFor(expected string) bool {
	for e.stdout.Scan() {
		if strings.Contains(e.stdout.Text(), expected) {
			return true
		}
	}
	return false
}

// EvaluateFEN scores a position from the side-to-move's point of view.
func (e *UCIEngine) EvaluateFEN(ctx context.Context, fen string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.send("position fen " + fen)
	e.send(fmt.Sprintf("go depth %d movetime %d", e.depth, e.moveTimeMS))

	var score int
	var seen bool
	for e.stdout.Scan() {
		line := e.stdout.Text()
		if strings.HasPrefix(line, "info") {
			if cp, ok := parseScore(line); ok {
				score = cp
				seen = true
			}
		}
		if strings.HasPrefix(line, "bestmove") {
			break
		}
	}
	if err := e.stdout.Err(); err != nil {
		return 0, fmt.Errorf("read engine output: %w", err)
	}
	if !seen {
		return 0, fmt.Errorf("engine produced no score for position")
	}
	return score, nil
}

// parseScore extracts "score cp N" or "score mate N" from a UCI info line.
func parseScore(line string) (int, bool) {
	fields := strings.Fields(line)
	for i, field := range fields {
		if field != "score" || i+2 >= len(fields) {
			continue
		}
		n, err := strconv.Atoi(fields[i+2])
		if err != nil {
			return 0, false
		}
		switch fields[i+1] {
		case "cp":
			return n, true
		case "mate":
			if n < 0 {
				return -mateScore, true
			}
			return mateScore, true
		}
	}
	return 0, false
}

// Close asks the engine to quit and reaps the subprocess.
func (e *UCIEngine) Close() {
	e.send("quit")
	e.cmd.Wait()
}
