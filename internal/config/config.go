package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level configuration structure.
type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Display DisplayConfig `yaml:"display"`
	Output  OutputConfig  `yaml:"output"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// CaptureConfig holds settings for the tcpdump subprocess.
type CaptureConfig struct {
	Binary    string `yaml:"binary"`    // capture tool, default "tcpdump"
	Interface string `yaml:"interface"` // -i argument, empty for tcpdump's default
	Filter    string `yaml:"filter"`    // BPF expression
	Snaplen   int    `yaml:"snaplen"`   // -s argument
	Sudo      string `yaml:"sudo"`      // "auto", "always", "never"
}

// DisplayConfig controls the snapshot.
type DisplayConfig struct {
	Refresh Duration `yaml:"refresh"` // e.g. "2s"
	Lines   int      `yaml:"lines"`   // max rendered rows
	Sorted  bool     `yaml:"sorted"`  // sort by count descending
	Hosts   string   `yaml:"hosts"`   // hosts-style name mapping
}

// OutputConfig controls where snapshots and raw lines go.
type OutputConfig struct {
	File    string `yaml:"file"`     // overwritten with each snapshot
	KeepLog bool   `yaml:"keep_log"` // mirror raw capture lines
	LogDir  string `yaml:"log_dir"`  // mirror directory, default os.TempDir()
	NoTUI   bool   `yaml:"no_tui"`   // print snapshots as text
	Quiet   bool   `yaml:"quiet"`    // no terminal output
	Debug   string `yaml:"debug"`    // log file while the TUI is active
}

// MetricsConfig enables the HTTP status endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // e.g. ":9102", empty disables
}

// Duration wraps time.Duration for YAML unmarshalling from strings like "5s", "10m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Capture: CaptureConfig{
			Binary:  "tcpdump",
			Snaplen: 68,
			Sudo:    "auto",
		},
		Display: DisplayConfig{
			Refresh: Duration{2 * time.Second},
			Lines:   20,
		},
	}
}

// LoadConfig reads a YAML configuration file from the specified path.
// Fields absent from the file keep their Default values. The result is not
// validated; callers merge command line overrides first and then call Validate.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the dashboard cannot run with.
func (c *Config) Validate() error {
	if c.Display.Refresh.Duration <= 0 {
		return fmt.Errorf("display.refresh must be positive, got %s", c.Display.Refresh)
	}
	if c.Display.Lines <= 0 {
		return fmt.Errorf("display.lines must be positive, got %d", c.Display.Lines)
	}
	if c.Capture.Snaplen < 0 {
		return fmt.Errorf("capture.snaplen must not be negative, got %d", c.Capture.Snaplen)
	}
	switch c.Capture.Sudo {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("capture.sudo must be auto, always or never, got %q", c.Capture.Sudo)
	}
	return nil
}
