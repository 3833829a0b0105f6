package record

import (
	"regexp"
	"strconv"
	"strings"
)

// leadingTimestamp matches the epoch timestamp tcpdump -tt prints at the
// start of each packet.
var leadingTimestamp = regexp.MustCompile(`^\s*(\d{5,}\.\d+)`)

// Record is one logical capture record: the timestamp line joined with its
// detail line (or a single combined line).
type Record struct {
	Timestamp float64
	Text      string
}

// Joiner pairs timestamp-only lines with the detail line that follows them.
// It is not safe for concurrent use; the ingestion path owns it.
type Joiner struct {
	pending   string
	pendingTS float64
	hasPend   bool

	lastTS float64
	seenTS bool
}

// NewJoiner returns an empty joiner.
func NewJoiner() *Joiner {
	return &Joiner{}
}

// Feed consumes one raw line. It reports a record when the line completes one.
//
// A timestamp line that carries no endpoints is held as pending; a second
// timestamp-only line replaces it. A detail line is appended to the pending
// line, or emitted alone under the last seen timestamp. Detail lines seen
// before any timestamp are dropped.
func (j *Joiner) Feed(line string) (Record, bool) {
	line = strings.TrimRight(line, "\r\n")
	if ts, ok := parseLeadingTimestamp(line); ok {
		j.lastTS, j.seenTS = ts, true
		if !endpointPattern.MatchString(line) {
			j.pending, j.pendingTS, j.hasPend = line, ts, true
			return Record{}, false
		}
		// Already combined.
		j.clearPending()
		return Record{Timestamp: ts, Text: line}, true
	}

	if strings.TrimSpace(line) == "" {
		return Record{}, false
	}

	if j.hasPend {
		rec := Record{Timestamp: j.pendingTS, Text: j.pending + " " + strings.TrimSpace(line)}
		j.clearPending()
		return rec, true
	}
	if !j.seenTS {
		return Record{}, false
	}
	return Record{Timestamp: j.lastTS, Text: line}, true
}

// Pending reports whether a timestamp line is waiting for its detail line.
func (j *Joiner) Pending() bool { return j.hasPend }

func (j *Joiner) clearPending() {
	j.pending, j.pendingTS, j.hasPend = "", 0, false
}

func parseLeadingTimestamp(line string) (float64, bool) {
	m := leadingTimestamp.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	ts, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}
