package gitexec

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/0xb0rn3/gitnav/internal/domain"
	apperrors "github.com/0xb0rn3/gitnav/internal/errors"
)

// ProgressFunc receives filtered progress lines during a clone.
type ProgressFunc func(line string)

// Executor runs the external version-control binary for a single
// repository. Both operations block until the child process exits and
// report the result as a structured Outcome; a failed process is never a
// Go error. The one fatal condition is a missing binary, surfaced as
// OutcomeToolMissing.
type Executor struct {
	GitBinary string
}

// New creates an executor that invokes the given binary.
func New(binary string) *Executor {
	return &Executor{GitBinary: binary}
}

// Clone runs `clone --progress` into destPath. The process's progress
// channel is streamed line by line and only recognized progress markers are
// forwarded to the sink; everything else is kept as diagnostic text for the
// failure reason.
func (e *Executor) Clone(ctx context.Context, cloneURL, destPath string, progress ProgressFunc) domain.Outcome {
	cmd := exec.CommandContext(ctx, e.GitBinary, "clone", "--progress", cloneURL, destPath)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return domain.Outcome{Kind: domain.OutcomeCloneFailed, Reason: err.Error()}
	}

	if err := cmd.Start(); err != nil {
		return startFailure(e.GitBinary, err, domain.OutcomeCloneFailed)
	}

	var diag []string
	scanner := bufio.NewScanner(stderr)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if IsProgressLine(line) {
			if progress != nil {
				progress(line)
			}
			continue
		}
		diag = appendBounded(diag, line)
	}

	if err := cmd.Wait(); err != nil {
		return domain.Outcome{
			Kind:   domain.OutcomeCloneFailed,
			Reason: reasonFromDiag(diag, err),
		}
	}
	return domain.Outcome{Kind: domain.OutcomeCloned}
}

// Update runs `pull --all` against an existing local checkout. The
// up-to-date case is distinguished from applied changes for display only.
func (e *Executor) Update(ctx context.Context, localPath string) domain.Outcome {
	cmd := exec.CommandContext(ctx, e.GitBinary, "pull", "--all")
	cmd.Dir = localPath

	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return startFailure(e.GitBinary, err, domain.OutcomeUpdateFailed)
		}
		return domain.Outcome{
			Kind:   domain.OutcomeUpdateFailed,
			Reason: reasonFromOutput(out, err),
		}
	}

	if bytes.Contains(out, []byte("Already up to date")) ||
		bytes.Contains(out, []byte("Already up-to-date")) {
		return domain.Outcome{Kind: domain.OutcomeUpToDate}
	}
	return domain.Outcome{Kind: domain.OutcomeUpdated}
}

// IsProgressLine reports whether a clone stderr line is one of the known
// object-transfer progress markers.
func IsProgressLine(line string) bool {
	for _, marker := range progressMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

var progressMarkers = []string{
	"Counting objects",
	"Compressing objects",
	"Receiving objects",
	"Resolving deltas",
}

func startFailure(binary string, err error, fallback domain.OutcomeKind) domain.Outcome {
	if errors.Is(err, exec.ErrNotFound) {
		return domain.Outcome{
			Kind:   domain.OutcomeToolMissing,
			Reason: apperrors.NewToolUnavailableError(binary, err).Error(),
		}
	}
	return domain.Outcome{Kind: fallback, Reason: err.Error()}
}

func reasonFromDiag(diag []string, err error) string {
	if len(diag) == 0 {
		return err.Error()
	}
	return strings.Join(diag, "; ")
}

func reasonFromOutput(out []byte, err error) string {
	text := strings.TrimSpace(string(out))
	if text == "" {
		return err.Error()
	}
	lines := strings.Split(text, "\n")
	var diag []string
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			diag = appendBounded(diag, line)
		}
	}
	return strings.Join(diag, "; ")
}

// appendBounded keeps only the most recent diagnostic lines so a chatty
// process cannot grow the failure reason without limit.
func appendBounded(diag []string, line string) []string {
	const maxDiagLines = 10
	diag = append(diag, line)
	if len(diag) > maxDiagLines {
		diag = diag[1:]
	}
	return diag
}

// scanProgressLines splits on both LF and CR so in-place progress updates
// (git rewrites the same line with \r) arrive as individual tokens.
func scanProgressLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
