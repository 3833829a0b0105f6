package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ekmektech/tcpdumpdashboard/internal/ingest"
	"github.com/ekmektech/tcpdumpdashboard/internal/record"
)

// PromObs exposes pipeline counters to Prometheus.
type PromObs struct {
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	events   *prometheus.CounterVec
}

// NewPromObs registers the tcpdash collectors on reg.
func NewPromObs(reg prometheus.Registerer) *PromObs {
	lines := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tcpdash_lines_total",
		Help: "Raw lines read from the capture process.",
	})
	records := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tcpdash_records_total",
		Help: "Joined capture records.",
	})
	unclassified := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tcpdash_unclassified_total",
		Help: "Records without a SYN/FIN/RST marker.",
	})
	malformed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tcpdash_malformed_total",
		Help: "Classified records skipped because no endpoint pair could be parsed.",
	})
	flows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tcpdash_flows",
		Help: "Distinct (flag kind, flow) keys tracked.",
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tcpdash_events_total",
		Help: "Counted control-flag events by kind.",
	}, []string{"kind"})

	reg.MustRegister(lines, records, unclassified, malformed, flows, events)

	// Pre-create every kind so all series exist from the first scrape.
	for _, k := range record.Kinds {
		events.WithLabelValues(k.String())
	}

	return &PromObs{
		counters: map[string]prometheus.Counter{
			ingest.CounterLines:        lines,
			ingest.CounterRecords:      records,
			ingest.CounterUnclassified: unclassified,
			ingest.CounterMalformed:    malformed,
		},
		gauges: map[string]prometheus.Gauge{
			ingest.GaugeFlows: flows,
		},
		events: events,
	}
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) IncEvent(kind record.FlagKind) {
	p.events.WithLabelValues(kind.String()).Inc()
}
