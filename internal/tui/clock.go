package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tempo/internal/stats"
)

const defaultRefresh = time.Minute

// clockModel samples "now" on a fixed interval. Computations only need to
// rerun when the sampled minute changes, so sample reports that.
type clockModel struct {
	source   func() time.Time
	loc      *time.Location
	interval time.Duration

	now    time.Time
	bucket string
	ticks  int
	moves  int
}

func newClockModel(source func() time.Time, loc *time.Location, interval time.Duration) clockModel {
	if source == nil {
		source = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if interval <= 0 {
		interval = defaultRefresh
	}
	c := clockModel{source: source, loc: loc, interval: interval}
	c.sample()
	return c
}

// sample re-reads the source and reports whether the minute bucket moved.
func (c *clockModel) sample() bool {
	c.ticks++
	c.now = c.source().In(c.loc)
	b := stats.NowBucket(c.now)
	if b == c.bucket {
		return false
	}
	c.bucket = b
	c.moves++
	return true
}

func (c clockModel) tick() tea.Cmd {
	return tea.Tick(c.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (c clockModel) today() string {
	return c.now.Format("Mon 02 Jan 2006 15:04")
}
