package ingest

import (
	"errors"
	"log"
	"sync/atomic"

	"github.com/ekmektech/tcpdumpdashboard/internal/record"
	"github.com/ekmektech/tcpdumpdashboard/internal/stats"
)

// maxMalformedLogs caps how many malformed records are logged verbatim.
const maxMalformedLogs = 10

// Resolver substitutes display names for an IP address.
type Resolver interface {
	Resolve(ip string) string
}

// Observer receives pipeline counters. metrics.PromObs implements it.
type Observer interface {
	IncCounter(name string, v float64)
	IncEvent(kind record.FlagKind)
	SetGauge(name string, v float64)
}

// Counter names passed to Observer.IncCounter.
const (
	CounterLines        = "lines"
	CounterRecords      = "records"
	CounterUnclassified = "unclassified"
	CounterMalformed    = "malformed"
	GaugeFlows          = "flows"
)

// Stats is a point-in-time copy of the pipeline counters.
type Stats struct {
	Lines        uint64
	Records      uint64
	Events       uint64
	Unclassified uint64
	Malformed    uint64
}

// Pipeline is the ingestion write path: raw line -> joined record ->
// classified event -> resolved flow -> aggregator. HandleLine is called from
// a single goroutine; Stats may be read from any.
type Pipeline struct {
	joiner   *record.Joiner
	resolver Resolver
	agg      *stats.Aggregator
	obs      Observer

	lines        atomic.Uint64
	records      atomic.Uint64
	events       atomic.Uint64
	unclassified atomic.Uint64
	malformed    atomic.Uint64
}

// New builds a pipeline. resolver and obs may be nil.
func New(agg *stats.Aggregator, resolver Resolver, obs Observer) *Pipeline {
	return &Pipeline{
		joiner:   record.NewJoiner(),
		resolver: resolver,
		agg:      agg,
		obs:      obs,
	}
}

// HandleLine feeds one raw capture line through the pipeline.
func (p *Pipeline) HandleLine(line []byte) {
	p.lines.Add(1)
	p.inc(CounterLines)

	rec, ok := p.joiner.Feed(string(line))
	if !ok {
		return
	}
	p.records.Add(1)
	p.inc(CounterRecords)

	ev, err := record.Extract(rec)
	switch {
	case err == nil:
	case errors.Is(err, record.ErrUnclassified):
		p.unclassified.Add(1)
		p.inc(CounterUnclassified)
		return
	default:
		n := p.malformed.Add(1)
		p.inc(CounterMalformed)
		if n <= maxMalformedLogs {
			log.Printf("ingest: skipping record: %v: %q", err, rec.Text)
		}
		return
	}

	var resolve func(string) string
	if p.resolver != nil {
		resolve = p.resolver.Resolve
	}
	p.agg.Record(ev.Kind, ev.Flow(resolve), ev.Timestamp)
	p.events.Add(1)

	if p.obs != nil {
		p.obs.IncEvent(ev.Kind)
		p.obs.SetGauge(GaugeFlows, float64(p.agg.Len()))
	}
}

func (p *Pipeline) inc(name string) {
	if p.obs != nil {
		p.obs.IncCounter(name, 1)
	}
}

// Stats returns the current counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Lines:        p.lines.Load(),
		Records:      p.records.Load(),
		Events:       p.events.Load(),
		Unclassified: p.unclassified.Load(),
		Malformed:    p.malformed.Load(),
	}
}

// Malformed returns the number of skipped malformed records.
func (p *Pipeline) Malformed() uint64 { return p.malformed.Load() }
