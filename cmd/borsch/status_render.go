package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"borsch/internal/execution"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const statusLabelWidth = 12

var titleCaser = cases.Title(language.Und)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	line := fmt.Sprintf("%-*s %s", statusLabelWidth, label+":", message)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + line + ansiReset
		}
	}
	return line
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

// stateLabel renders a state as a heading, e.g. "Running Error".
func stateLabel(state execution.State) string {
	return titleCaser.String(state.String())
}

func stateKind(snap execution.Snapshot) statusKind {
	switch {
	case snap.State.Failed():
		return statusError
	case snap.State == execution.StateFinished && snap.ExitCode != 0:
		return statusWarn
	case snap.State == execution.StateFinished:
		return statusOK
	default:
		return statusInfo
	}
}

// stateMessage is the detail shown next to the state label.
func stateMessage(snap execution.Snapshot) string {
	switch snap.State {
	case execution.StateStarting:
		return "submitting program"
	case execution.StateRunning:
		return fmt.Sprintf("job %s, %d line(s) so far", snap.JobID, len(snap.Transcript))
	case execution.StateFinished:
		return fmt.Sprintf("exit code %d", snap.ExitCode)
	case execution.StateStartingError, execution.StateRunningError:
		return snap.ErrorMessage
	default:
		return "no job"
	}
}

func renderState(snap execution.Snapshot, colorize bool) string {
	return renderStatusLine(stateLabel(snap.State), stateKind(snap), stateMessage(snap), colorize)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
