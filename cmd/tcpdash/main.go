// Command tcpdash runs tcpdump filtered to TCP SYN, FIN and RST segments
// and shows a live table of how often each flag kind was seen per flow.
//
// Lines are read straight from the tcpdump pipe. There is no queue or drop
// policy: if ingestion falls behind, tcpdump blocks writing to the pipe.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ekmektech/tcpdumpdashboard/internal/capture"
	"github.com/ekmektech/tcpdumpdashboard/internal/config"
	"github.com/ekmektech/tcpdumpdashboard/internal/ingest"
	"github.com/ekmektech/tcpdumpdashboard/internal/metrics"
	"github.com/ekmektech/tcpdumpdashboard/internal/output"
	"github.com/ekmektech/tcpdumpdashboard/internal/refresh"
	"github.com/ekmektech/tcpdumpdashboard/internal/report"
	"github.com/ekmektech/tcpdumpdashboard/internal/resolve"
	"github.com/ekmektech/tcpdumpdashboard/internal/stats"
	"github.com/ekmektech/tcpdumpdashboard/internal/ui"
	"github.com/ekmektech/tcpdumpdashboard/internal/version"
)

func main() {
	log.SetFlags(0)

	flags, err := parseFlags(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(parseExitCode(err))
	}

	if flags.version {
		fmt.Print(version.Banner())
		return
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	os.Exit(run(cfg))
}

func uiMode(o config.OutputConfig) ui.Mode {
	switch {
	case o.Quiet:
		return ui.ModeSilent
	case o.NoTUI || !isatty.IsTerminal(os.Stdout.Fd()):
		return ui.ModeText
	default:
		return ui.ModeTUI
	}
}

func captureOptions(cfg *config.Config) capture.Options {
	return capture.Options{
		Binary:    cfg.Capture.Binary,
		Interface: cfg.Capture.Interface,
		Filter:    cfg.Capture.Filter,
		Snaplen:   cfg.Capture.Snaplen,
		Sudo:      cfg.Capture.Sudo,
		KeepLog:   cfg.Output.KeepLog,
		LogDir:    cfg.Output.LogDir,
	}
}

// run wires the pipeline and blocks until the capture stream ends.
// It returns the process exit code.
func run(cfg *config.Config) int {
	opts := captureOptions(cfg)

	// ── Startup checks ─────────────────────────────────────────────────
	if err := capture.CheckDependencies(opts); err != nil {
		log.Printf("%v", err)
		return 1
	}
	if err := capture.CheckInterface(opts.Interface); err != nil {
		log.Printf("%v", err)
		return 1
	}
	filter := opts.Filter
	if filter == "" {
		filter = capture.DefaultFilter
	}
	if _, err := capture.ValidateFilter(filter, opts.Snaplen); err != nil {
		log.Printf("%v", err)
		return 1
	}

	var hosts *resolve.Hosts
	if cfg.Display.Hosts != "" {
		var err error
		if hosts, err = resolve.LoadHosts(cfg.Display.Hosts); err != nil {
			log.Printf("hosts: %v", err)
			return 1
		}
		log.Printf("hosts: loaded %d addresses from %s", hosts.Len(), cfg.Display.Hosts)
	}

	var fileSink *output.FileSink
	if cfg.Output.File != "" {
		var err error
		if fileSink, err = output.NewFileSink(cfg.Output.File); err != nil {
			log.Printf("%v", err)
			return 1
		}
	}

	mode := uiMode(cfg.Output)
	if mode == ui.ModeTUI {
		if cfg.Output.Debug != "" {
			f, err := tea.LogToFile(cfg.Output.Debug, "tcpdash")
			if err != nil {
				log.Printf("debug log: %v", err)
				return 1
			}
			defer f.Close()
		} else {
			log.SetOutput(io.Discard)
		}
	}

	// ── Capture ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		mirror     io.WriteCloser
		mirrorPath string
	)
	if opts.KeepLog {
		m, err := capture.OpenMirror(opts.LogDir)
		if err != nil {
			log.Printf("capture: open log: %v", err)
			return 1
		}
		mirror, mirrorPath = m, m.Path()
	}

	reader, err := capture.Start(ctx, opts, mirror)
	if err != nil {
		if mirror != nil {
			mirror.Close()
		}
		log.Printf("%v", err)
		return 1
	}

	// ── Pipeline ───────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	obs := metrics.NewPromObs(reg)
	agg := stats.NewAggregator()
	var resolver ingest.Resolver
	if hosts != nil {
		resolver = hosts
	}
	pipe := ingest.New(agg, resolver, obs)

	presenter := report.NewPresenter(agg, report.Options{
		MaxLines:   cfg.Display.Lines,
		Sorted:     cfg.Display.Sorted,
		Refresh:    cfg.Display.Refresh.Duration,
		StartTime:  time.Now(),
		MirrorPath: mirrorPath,
	}, pipe.Malformed)

	latest := &output.Latest{}
	sinks := output.NewFanout(latest)
	if fileSink != nil {
		sinks.Add(fileSink)
	}

	var program *tea.Program
	switch mode {
	case ui.ModeTUI:
		program = tea.NewProgram(ui.NewModel("tcpdash "+version.Version), tea.WithAltScreen())
		sinks.Add(ui.ProgramRenderer{P: program})
	case ui.ModeText:
		sinks.Add(output.NewTextSink(os.Stdout))
	}

	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, reg, latest)
		if err := srv.Start(); err != nil {
			log.Printf("metrics: %v", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				srv.Shutdown(sctx)
			}()
		}
	}

	// ── Goroutines ─────────────────────────────────────────────────────
	go func() {
		if err := reader.Run(pipe.HandleLine); err != nil {
			log.Printf("%v", err)
		}
		// End of stream stops everything else too.
		stop()
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		loop := refresh.Loop{
			Interval: cfg.Display.Refresh.Duration,
			Tick: func(now time.Time) {
				sinks.Render(presenter.Build())
				if program != nil {
					program.Send(ui.StatusMsg{
						Lines:     reader.Lines(),
						Events:    agg.Total(),
						Malformed: pipe.Malformed(),
						State:     reader.State().String(),
						Elapsed:   time.Since(presenter.Options().StartTime),
					})
				}
			},
		}
		loop.Run(ctx)
	}()

	if program != nil {
		go func() {
			<-ctx.Done()
			program.Quit()
		}()
		if _, err := program.Run(); err != nil {
			log.Printf("ui: %v", err)
		}
		stop()
	} else {
		<-ctx.Done()
	}

	// ── Shutdown ───────────────────────────────────────────────────────
	<-reader.Done()
	wg.Wait()

	if fileSink != nil {
		fileSink.Render(presenter.Build())
	}
	sinks.Close()

	s := pipe.Stats()
	log.Printf("tcpdash: %d lines, %d records, %d events, %d malformed",
		s.Lines, s.Records, s.Events, s.Malformed)
	if mirrorPath != "" {
		log.Printf("tcpdash: raw log kept at %s", mirrorPath)
	}
	return 0
}
