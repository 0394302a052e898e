package game

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/pthm-cable/menagerie/creature"
)

// eventLog prints one-line event summaries to stderr for interactive
// runs. Structured logging stays on slog; this is the human channel,
// colored only when stderr is a terminal.
type eventLog struct {
	color bool
}

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

func newEventLog() *eventLog {
	return &eventLog{
		color: isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
	}
}

func (l *eventLog) paint(code, s string) string {
	if !l.color {
		return s
	}
	return code + s + ansiReset
}

func (l *eventLog) birth(childID, parentA, parentB int) {
	fmt.Fprintf(os.Stderr, "%s creature %d born to %d + %d\n",
		l.paint(ansiGreen, "birth"), childID, parentA, parentB)
}

func (l *eventLog) death(victimID, killerID int, cause creature.DeathCause, age float64) {
	lived := humanize.RelTime(time.Now().Add(-time.Duration(age*float64(time.Second))), time.Now(), "", "")
	if killerID >= 0 {
		fmt.Fprintf(os.Stderr, "%s creature %d killed by %d after %s\n",
			l.paint(ansiRed, "death"), victimID, killerID, lived)
		return
	}
	fmt.Fprintf(os.Stderr, "%s creature %d (%s) after %s\n",
		l.paint(ansiYellow, "death"), victimID, cause, lived)
}

func (l *eventLog) generation(generation int, tick int64) {
	fmt.Fprintf(os.Stderr, "%s generation %d begins at tick %s\n",
		l.paint(ansiCyan, "epoch"), generation, humanize.Comma(tick))
}
