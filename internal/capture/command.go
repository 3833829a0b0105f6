package capture

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"golang.org/x/sys/unix"
)

var (
	// ErrDependencyMissing means the capture binary (or sudo) is not installed.
	ErrDependencyMissing = errors.New("capture: dependency missing")
	// ErrSpawn means the capture process could not be started.
	ErrSpawn = errors.New("capture: spawn failed")
)

// DefaultFilter selects TCP segments carrying SYN, FIN or RST.
const DefaultFilter = "tcp[tcpflags] & (tcp-syn|tcp-fin|tcp-rst) != 0"

const (
	DefaultBinary  = "tcpdump"
	DefaultSnaplen = 68
)

// Sudo policy values.
const (
	SudoAuto   = "auto"
	SudoAlways = "always"
	SudoNever  = "never"
)

// Options configures the capture subprocess.
type Options struct {
	Binary    string
	Interface string
	Filter    string
	Snaplen   int
	Sudo      string // auto | always | never

	KeepLog bool
	LogDir  string // mirror log directory, defaults to os.TempDir()
}

func (o Options) withDefaults() Options {
	if o.Binary == "" {
		o.Binary = DefaultBinary
	}
	if o.Filter == "" {
		o.Filter = DefaultFilter
	}
	if o.Snaplen <= 0 {
		o.Snaplen = DefaultSnaplen
	}
	if o.Sudo == "" {
		o.Sudo = SudoAuto
	}
	return o
}

// geteuid is swapped in tests.
var geteuid = unix.Geteuid

func (o Options) useSudo() bool {
	switch o.Sudo {
	case SudoAlways:
		return true
	case SudoNever:
		return false
	default:
		return geteuid() != 0
	}
}

// Command returns the argv used to run the capture tool: line buffered,
// numeric, verbose, absolute sequence numbers and epoch timestamps.
func Command(o Options) []string {
	o = o.withDefaults()

	var argv []string
	if o.useSudo() {
		argv = append(argv, "sudo")
	}
	argv = append(argv, o.Binary, "-l", "-nn", "-vvv", "-S", "-s", strconv.Itoa(o.Snaplen), "-tt")
	if o.Interface != "" {
		argv = append(argv, "-i", o.Interface)
	}
	return append(argv, o.Filter)
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// CheckDependencies verifies that every binary in the capture argv exists.
func CheckDependencies(o Options) error {
	o = o.withDefaults()
	bins := []string{o.Binary}
	if o.useSudo() {
		bins = append([]string{"sudo"}, bins...)
	}
	for _, b := range bins {
		if _, err := lookPath(b); err != nil {
			return fmt.Errorf("%w: %s not found in PATH, please install it then rerun", ErrDependencyMissing, b)
		}
	}
	return nil
}
