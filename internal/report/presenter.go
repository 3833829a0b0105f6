package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ekmektech/tcpdumpdashboard/internal/record"
	"github.com/ekmektech/tcpdumpdashboard/internal/stats"
)

const (
	DefaultMaxLines = 20
	DefaultRefresh  = 2 * time.Second
)

// timeLayout renders e.g. "Tue 14 Nov 2023 22:13:20 GMT".
const timeLayout = "Mon 02 Jan 2006 15:04:05 GMT"

// Source is the read side of the aggregator.
type Source interface {
	Entries() []stats.KeyedEntry
}

// Options controls snapshot shape and the banner contents.
type Options struct {
	MaxLines   int
	Sorted     bool
	Refresh    time.Duration
	StartTime  time.Time
	MirrorPath string // empty when the mirror log is disabled
}

// Row is one rendered aggregate.
type Row struct {
	Kind     record.FlagKind
	Flow     record.FlowKey
	LastTime string
	Count    uint64
}

// Snapshot is an immutable, point-in-time rendering of the aggregator.
type Snapshot struct {
	Taken  time.Time
	Banner string
	Rows   []Row
	Table  string
	Text   string // Banner followed by Table
	Flows  int    // distinct keys before truncation
}

// Presenter builds snapshots from a Source.
type Presenter struct {
	src       Source
	opts      Options
	malformed func() uint64
	now       func() time.Time
}

// NewPresenter returns a presenter over src. malformed, when non-nil,
// reports the number of skipped records for the banner.
func NewPresenter(src Source, opts Options, malformed func() uint64) *Presenter {
	if opts.MaxLines <= 0 {
		opts.MaxLines = DefaultMaxLines
	}
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.StartTime.IsZero() {
		opts.StartTime = time.Now()
	}
	return &Presenter{src: src, opts: opts, malformed: malformed, now: time.Now}
}

// Options returns the effective options.
func (p *Presenter) Options() Options { return p.opts }

// Build takes a snapshot of the source.
func (p *Presenter) Build() Snapshot {
	entries := p.src.Entries()

	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			Kind:     e.Kind,
			Flow:     e.Flow,
			LastTime: FormatTimestamp(e.Last),
			Count:    e.Count,
		}
	}
	if p.opts.Sorted {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Count > rows[j].Count })
	}
	if len(rows) > p.opts.MaxLines {
		rows = rows[:p.opts.MaxLines]
	}

	var malformed uint64
	if p.malformed != nil {
		malformed = p.malformed()
	}

	snap := Snapshot{
		Taken: p.now(),
		Rows:  rows,
		Flows: len(entries),
	}
	snap.Banner = p.banner(len(entries), malformed)
	snap.Table = RenderTable(rows)
	snap.Text = snap.Banner + "\n" + snap.Table + "\n"
	return snap
}

func (p *Presenter) banner(flows int, malformed uint64) string {
	const rule = "--------------------------------------------"

	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Start time: %s\n", p.opts.StartTime.Format("2006-01-02 15:04:05.000000"))
	if p.opts.MirrorPath != "" {
		fmt.Fprintf(&b, "Temp file location: %s\n", p.opts.MirrorPath)
	}
	if p.opts.Sorted {
		b.WriteString("lines printed are sorted by count\n")
	} else {
		b.WriteString("lines printed are not sorted by count - use -s to sort\n")
	}
	fmt.Fprintf(&b, "Outputing a maximum of %d lines to screen - use -l to set\n", p.opts.MaxLines)
	fmt.Fprintf(&b, "Refreshing every %s - use -r to set\n", formatInterval(p.opts.Refresh))
	fmt.Fprintf(&b, "Tracking %d flows, %d malformed records skipped\n", flows, malformed)
	b.WriteString(rule + "\n")
	return b.String()
}

func formatInterval(d time.Duration) string {
	if d%time.Second == 0 {
		n := int(d / time.Second)
		if n == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", n)
	}
	return d.String()
}

// FormatTimestamp renders epoch seconds, truncated to milliseconds, in UTC.
func FormatTimestamp(ts float64) string {
	ms := int64(ts * 1000)
	return time.UnixMilli(ms).UTC().Format(timeLayout)
}
