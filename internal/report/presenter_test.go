package report

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ekmektech/tcpdumpdashboard/internal/record"
	"github.com/ekmektech/tcpdumpdashboard/internal/stats"
)

// fixedSource returns entries in the given order, which makes enumeration
// order observable in tests.
type fixedSource []stats.KeyedEntry

func (f fixedSource) Entries() []stats.KeyedEntry {
	out := make([]stats.KeyedEntry, len(f))
	copy(out, f)
	return out
}

func entry(kind record.FlagKind, src, dst string, count uint64, last float64) stats.KeyedEntry {
	return stats.KeyedEntry{
		Key:   stats.Key{Kind: kind, Flow: record.FlowKey{Src: src, Dst: dst}},
		Entry: stats.Entry{Count: count, Last: last},
	}
}

func socketLines(table string) []string {
	var out []string
	for _, l := range strings.Split(table, "\n") {
		if strings.Contains(l, " -> ") {
			out = append(out, l)
		}
	}
	return out
}

func TestFormatTimestamp(t *testing.T) {
	got := FormatTimestamp(1700000000.123)
	if got != "Tue 14 Nov 2023 22:13:20 GMT" {
		t.Fatalf("got %q", got)
	}
	if FormatTimestamp(1700000000.999) != "Tue 14 Nov 2023 22:13:20 GMT" {
		t.Fatal("sub-second part must be truncated, not rounded up")
	}
}

func TestBuild_SortedTruncatesToTopCount(t *testing.T) {
	src := fixedSource{
		entry(record.Syn, "a", "b", 3, 1700000000),
		entry(record.Syn, "c", "d", 5, 1700000000),
		entry(record.Fin, "e", "f", 1, 1700000000),
	}
	p := NewPresenter(src, Options{MaxLines: 1, Sorted: true}, nil)

	snap := p.Build()
	if len(snap.Rows) != 1 || snap.Rows[0].Count != 5 {
		t.Fatalf("expected only the count=5 row, got %+v", snap.Rows)
	}
	lines := socketLines(snap.Table)
	if len(lines) != 1 || !strings.Contains(lines[0], "c -> d") {
		t.Fatalf("table rows: %q", lines)
	}
	if snap.Flows != 3 {
		t.Fatalf("Flows should count all keys, got %d", snap.Flows)
	}
}

func TestBuild_SortedNonIncreasingAndStable(t *testing.T) {
	src := fixedSource{
		entry(record.Syn, "h1", "x", 2, 1),
		entry(record.Syn, "h2", "x", 7, 1),
		entry(record.Syn, "h3", "x", 2, 1),
		entry(record.Syn, "h4", "x", 9, 1),
		entry(record.Syn, "h5", "x", 2, 1),
	}
	snap := NewPresenter(src, Options{Sorted: true}, nil).Build()

	for i := 1; i < len(snap.Rows); i++ {
		if snap.Rows[i].Count > snap.Rows[i-1].Count {
			t.Fatalf("row %d count %d > previous %d", i, snap.Rows[i].Count, snap.Rows[i-1].Count)
		}
	}
	var ties []string
	for _, r := range snap.Rows {
		if r.Count == 2 {
			ties = append(ties, r.Flow.Src)
		}
	}
	if strings.Join(ties, ",") != "h1,h3,h5" {
		t.Fatalf("equal counts must keep enumeration order, got %v", ties)
	}
}

func TestBuild_UnsortedKeepsEnumerationOrder(t *testing.T) {
	src := fixedSource{
		entry(record.Syn, "h1", "x", 1, 1),
		entry(record.Syn, "h2", "x", 9, 1),
		entry(record.Syn, "h3", "x", 5, 1),
	}
	snap := NewPresenter(src, Options{MaxLines: 2}, nil).Build()
	if len(snap.Rows) != 2 || snap.Rows[0].Flow.Src != "h1" || snap.Rows[1].Flow.Src != "h2" {
		t.Fatalf("unexpected rows %+v", snap.Rows)
	}
}

func TestBuild_NeverExceedsMaxLines(t *testing.T) {
	agg := stats.NewAggregator()
	for i := 0; i < 500; i++ {
		agg.Record(record.Reset, record.FlowKey{Src: fmt.Sprintf("10.0.%d.%d", i/256, i%256), Dst: "10.1.0.1"}, 1700000000)
	}
	for _, sorted := range []bool{false, true} {
		snap := NewPresenter(agg, Options{Sorted: sorted}, nil).Build()
		if len(snap.Rows) != DefaultMaxLines {
			t.Fatalf("sorted=%v: expected %d rows, got %d", sorted, DefaultMaxLines, len(snap.Rows))
		}
		if n := len(socketLines(snap.Table)); n != DefaultMaxLines {
			t.Fatalf("sorted=%v: table has %d rows", sorted, n)
		}
	}
}

func TestBuild_TableLayout(t *testing.T) {
	src := fixedSource{entry(record.Syn, "web1", "10.0.0.2", 1, 1700000000.123)}
	snap := NewPresenter(src, Options{}, nil).Build()

	lines := strings.Split(snap.Table, "\n")
	header := lines[0]
	for _, h := range Headers {
		if !strings.Contains(header, h) {
			t.Fatalf("header %q missing %q", header, h)
		}
	}
	if strings.Index(header, "Type") > strings.Index(header, "Socket") ||
		strings.Index(header, "Socket") > strings.Index(header, "Last Time") ||
		strings.Index(header, "Last Time") > strings.Index(header, "Count") {
		t.Fatalf("column order wrong: %q", header)
	}

	row := socketLines(snap.Table)
	if len(row) != 1 {
		t.Fatalf("expected one row, got %q", row)
	}
	for _, want := range []string{"Syn", "web1 -> 10.0.0.2", "Tue 14 Nov 2023 22:13:20 GMT", "1"} {
		if !strings.Contains(row[0], want) {
			t.Errorf("row %q missing %q", row[0], want)
		}
	}
	if strings.Contains(snap.Table, "\x1b[") {
		t.Fatal("table must be plain text")
	}
}

func TestBuild_Banner(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p := NewPresenter(fixedSource{}, Options{
		MaxLines:   50,
		Sorted:     true,
		Refresh:    10 * time.Second,
		StartTime:  start,
		MirrorPath: "/tmp/abc.log",
	}, func() uint64 { return 4 })

	snap := p.Build()
	for _, want := range []string{
		"Start time: 2024-03-01 12:00:00",
		"Temp file location: /tmp/abc.log",
		"lines printed are sorted by count",
		"maximum of 50 lines",
		"Refreshing every 10 seconds",
		"4 malformed records skipped",
	} {
		if !strings.Contains(snap.Banner, want) {
			t.Errorf("banner missing %q:\n%s", want, snap.Banner)
		}
	}
	if !strings.HasPrefix(snap.Text, snap.Banner) || !strings.Contains(snap.Text, snap.Table) {
		t.Fatal("Text should be banner followed by table")
	}

	unsorted := NewPresenter(fixedSource{}, Options{}, nil).Build()
	if strings.Contains(unsorted.Banner, "Temp file location") {
		t.Fatal("mirror path shown while disabled")
	}
	if !strings.Contains(unsorted.Banner, "not sorted by count - use -s to sort") {
		t.Fatalf("unsorted banner:\n%s", unsorted.Banner)
	}
	if !strings.Contains(unsorted.Banner, "Refreshing every 2 seconds") {
		t.Fatalf("default refresh missing:\n%s", unsorted.Banner)
	}
}

func TestRenderTable_CountRightAligned(t *testing.T) {
	table := RenderTable([]Row{
		{Kind: record.Syn, Flow: record.FlowKey{Src: "a", Dst: "b"}, LastTime: "t", Count: 5},
		{Kind: record.Fin, Flow: record.FlowKey{Src: "a", Dst: "b"}, LastTime: "t", Count: 12345},
	})

	lines := strings.Split(table, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, rule and 2 rows, got %q", lines)
	}
	if !strings.HasSuffix(lines[0], "| Count |") {
		t.Errorf("header count cell: %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], "|     5 |") {
		t.Errorf("count not right aligned: %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "| 12345 |") {
		t.Errorf("wide count: %q", lines[3])
	}
}
