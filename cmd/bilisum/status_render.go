package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bilisum/internal/jobs"
	"bilisum/internal/session"
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
	clearLine  = "\r\x1b[2K"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var stateTitler = cases.Title(language.English)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return paint(base, kind, colorize)
}

func paint(line string, kind statusKind, colorize bool) string {
	if !colorize {
		return line
	}
	if color := statusKindColor(kind); color != "" {
		return color + line + ansiReset
	}
	return line
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
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

// stateLabel renders a job state for humans, e.g. "Processing".
func stateLabel(state jobs.State) string {
	return stateTitler.String(string(state))
}

func stateKind(status jobs.Status) statusKind {
	switch {
	case status.Transient():
		return statusWarn
	case status.State == jobs.StateSucceeded:
		return statusOK
	case status.State == jobs.StateFailed:
		return statusError
	default:
		return statusInfo
	}
}

func updateKind(kind session.UpdateKind) statusKind {
	switch kind {
	case session.UpdateSucceeded:
		return statusOK
	case session.UpdateWarning, session.UpdateDeliveryFailed:
		return statusWarn
	case session.UpdateSubmitFailed, session.UpdateFailed:
		return statusError
	default:
		return statusInfo
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// updatePrinter renders session updates as status lines. On a terminal,
// progress lines overwrite each other in place; otherwise a progress line is
// printed only when the reported backend status changes.
type updatePrinter struct {
	mu           sync.Mutex
	w            io.Writer
	interactive  bool
	inPlace      bool
	lastProgress string
}

func newUpdatePrinter(w io.Writer) *updatePrinter {
	return &updatePrinter{w: w, interactive: shouldColorize(w)}
}

func (p *updatePrinter) Publish(u session.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	line := paint(u.Message, updateKind(u.Kind), p.interactive)
	if u.Kind == session.UpdateProgress {
		if p.interactive {
			fmt.Fprint(p.w, clearLine+line)
			p.inPlace = true
			return
		}
		key := u.Status.Reported
		if key == "" {
			key = string(u.Status.State)
		}
		if key == p.lastProgress {
			return
		}
		p.lastProgress = key
	}
	if p.inPlace {
		fmt.Fprint(p.w, clearLine)
		p.inPlace = false
	}
	fmt.Fprintln(p.w, line)
}

// Close terminates a pending in-place progress line.
func (p *updatePrinter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inPlace {
		fmt.Fprintln(p.w)
		p.inPlace = false
	}
}

func statusLines(handle jobs.Handle, status jobs.Status, colorize bool) []string {
	lines := []string{renderStatusLine("Task "+handle.JobID, stateKind(status), stateLabel(status.State), colorize)}
	if status.Reported != "" && !strings.EqualFold(status.Reported, string(status.State)) {
		lines = append(lines, renderStatusLine("Reported", statusInfo, status.Reported, colorize))
	}
	if status.Error != "" {
		lines = append(lines, renderStatusLine("Error", statusError, status.Error, colorize))
	}
	return lines
}
