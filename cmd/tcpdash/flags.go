package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/ekmektech/tcpdumpdashboard/internal/config"
)

// cliFlags holds the parsed command line. Each long flag shares its
// variable with the short alias.
type cliFlags struct {
	refresh  int
	lines    int
	keepLog  bool
	toFile   string
	sorted   bool
	hosts    string
	version  bool
	config   string
	iface    string
	filter   string
	logDir   string
	listen   string
	noTUI    bool
	quiet    bool
	debugLog string

	set map[string]bool // flags given on the command line, by name
}

func parseFlags(name string, args []string, errOut io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)

	f := &cliFlags{}
	fs.IntVar(&f.refresh, "refresh", 2, "Refresh interval in seconds")
	fs.IntVar(&f.refresh, "r", 2, "Refresh interval in seconds (alias for -refresh)")
	fs.IntVar(&f.lines, "lines", 20, "Maximum number of rows to display")
	fs.IntVar(&f.lines, "l", 20, "Maximum number of rows (alias for -lines)")
	fs.BoolVar(&f.keepLog, "keeplog", false, "Mirror raw tcpdump lines to a log file")
	fs.BoolVar(&f.keepLog, "k", false, "Mirror raw tcpdump lines (alias for -keeplog)")
	fs.StringVar(&f.toFile, "tofile", "", "Overwrite this file with each snapshot")
	fs.StringVar(&f.toFile, "f", "", "Output file (alias for -tofile)")
	fs.BoolVar(&f.sorted, "sorted", false, "Sort rows by count, descending")
	fs.BoolVar(&f.sorted, "s", false, "Sort rows (alias for -sorted)")
	fs.StringVar(&f.hosts, "hosts", "", "Hosts file used to name addresses")
	fs.StringVar(&f.hosts, "u", "", "Hosts file (alias for -hosts)")
	fs.BoolVar(&f.version, "version", false, "Print version and exit")
	fs.BoolVar(&f.version, "v", false, "Print version (alias for -version)")
	fs.StringVar(&f.config, "config", "", "Config file (YAML)")
	fs.StringVar(&f.config, "c", "", "Config file (alias for -config)")
	fs.StringVar(&f.iface, "iface", "", "Capture interface")
	fs.StringVar(&f.iface, "i", "", "Capture interface (alias for -iface)")
	fs.StringVar(&f.filter, "filter", "", "BPF filter expression")
	fs.StringVar(&f.logDir, "logdir", "", "Directory for the raw log (default: temp dir)")
	fs.StringVar(&f.listen, "listen", "", "Serve /metrics and /snapshot on this address")
	fs.BoolVar(&f.noTUI, "no-tui", false, "Disable TUI (text mode)")
	fs.BoolVar(&f.quiet, "q", false, "Silent mode (no terminal output)")
	fs.BoolVar(&f.quiet, "quiet", false, "Silent mode (alias for -q)")
	fs.StringVar(&f.debugLog, "debug", "", "Write logs to this file while the TUI is active")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.set = map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// parseExitCode maps a parseFlags error to the process exit code: -h is a
// normal finish, anything else a usage error.
func parseExitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 1
}

func (f *cliFlags) isSet(names ...string) bool {
	for _, n := range names {
		if f.set[n] {
			return true
		}
	}
	return false
}

// applyFlags overlays flags given on the command line onto cfg. Values
// from the config file survive unless the matching flag was passed.
func applyFlags(cfg *config.Config, f *cliFlags) {
	d := &cfg.Display
	o := &cfg.Output
	c := &cfg.Capture

	if f.isSet("refresh", "r") {
		d.Refresh = config.Duration{Duration: time.Duration(f.refresh) * time.Second}
	}
	if f.isSet("lines", "l") {
		d.Lines = f.lines
	}
	if f.isSet("sorted", "s") {
		d.Sorted = f.sorted
	}
	if f.isSet("hosts", "u") {
		d.Hosts = f.hosts
	}
	if f.isSet("keeplog", "k") {
		o.KeepLog = f.keepLog
	}
	if f.isSet("tofile", "f") {
		o.File = f.toFile
	}
	if f.isSet("logdir") {
		o.LogDir = f.logDir
	}
	if f.isSet("no-tui") {
		o.NoTUI = f.noTUI
	}
	if f.isSet("q", "quiet") {
		o.Quiet = f.quiet
	}
	if f.isSet("debug") {
		o.Debug = f.debugLog
	}
	if f.isSet("iface", "i") {
		c.Interface = f.iface
	}
	if f.isSet("filter") {
		c.Filter = f.filter
	}
	if f.isSet("listen") {
		cfg.Metrics.Addr = f.listen
	}
}

// loadConfig returns the config file merged with the command line.
func loadConfig(f *cliFlags) (*config.Config, error) {
	cfg := config.Default()
	if f.config != "" {
		var err error
		if cfg, err = config.LoadConfig(f.config); err != nil {
			return nil, fmt.Errorf("%s: %w", f.config, err)
		}
	}
	applyFlags(cfg, f)
	return cfg, cfg.Validate()
}
