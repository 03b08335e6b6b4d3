package tui

import (
	"fmt"
	"io"
	"time"
)

// tracker records model events between two renders. It is shared by
// pointer so every copy of the bubbletea model sees the same state.
type tracker struct {
	dirty      bool
	calculated int
	lastError  string
}

func (t *tracker) ModelChanged() {
	t.dirty = true
	t.lastError = ""
}

func (t *tracker) ValidationError(msg string) { t.lastError = msg }

func (t *tracker) Calculated() { t.calculated++ }

// Console prints model events as timestamped lines.
type Console struct {
	w     io.Writer
	name  string
	start time.Time
}

func NewConsole(w io.Writer, name string) *Console {
	return &Console{w: w, name: name, start: time.Now()}
}

func (c *Console) line(format string, args ...any) {
	fmt.Fprintf(c.w, "[%7.3fs] %s: %s\n", time.Since(c.start).Seconds(), c.name, fmt.Sprintf(format, args...))
}

func (c *Console) ModelChanged()              { c.line("model changed") }
func (c *Console) ValidationError(msg string) { c.line("validation error: %s", msg) }
func (c *Console) Calculated()                { c.line("calculated") }
