package capture

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync/atomic"
	"time"
)

// State is the reader lifecycle: Starting -> Streaming -> Draining -> Stopped.
type State int32

const (
	Starting State = iota
	Streaming
	Draining
	Stopped
)

func (s State) String() string {
	switch s {
	case Starting:
		return "starting"
	case Streaming:
		return "streaming"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// waitDelay bounds how long Run waits for the capture process after
// cancellation before it is killed outright.
const waitDelay = 3 * time.Second

// Reader delivers the capture stream line by line.
type Reader struct {
	src    io.Reader
	mirror io.WriteCloser
	cmd    *exec.Cmd
	ctx    context.Context

	state atomic.Int32
	lines atomic.Uint64
	done  chan struct{}
}

// NewReader reads lines from src, copying each raw line to mirror when it
// is non-nil. The reader owns mirror and closes it when the stream ends.
func NewReader(src io.Reader, mirror io.WriteCloser) *Reader {
	return &Reader{
		src:    src,
		mirror: mirror,
		ctx:    context.Background(),
		done:   make(chan struct{}),
	}
}

// Start spawns the capture tool. Cancelling ctx interrupts the process,
// which ends the stream and moves the reader to Draining.
func Start(ctx context.Context, o Options, mirror io.WriteCloser) (*Reader, error) {
	return startArgv(ctx, Command(o), mirror)
}

func startArgv(ctx context.Context, argv []string, mirror io.WriteCloser) (*Reader, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = waitDelay
	cmd.Stderr = &logWriter{prefix: "capture: "}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrDependencyMissing, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}
	log.Printf("capture: started %v (pid %d)", argv, cmd.Process.Pid)

	r := NewReader(stdout, mirror)
	r.cmd = cmd
	r.ctx = ctx
	r.state.Store(int32(Streaming))
	return r, nil
}

// State returns the current lifecycle state.
func (r *Reader) State() State { return State(r.state.Load()) }

// Lines returns the number of raw lines read so far.
func (r *Reader) Lines() uint64 { return r.lines.Load() }

// Done is closed once the reader reaches Stopped.
func (r *Reader) Done() <-chan struct{} { return r.done }

// Run blocks until end of stream, calling fn for every line without its
// trailing newline. fn must not retain the slice. The mirror log is flushed
// and closed before Run returns.
func (r *Reader) Run(fn func(line []byte)) error {
	r.state.CompareAndSwap(int32(Starting), int32(Streaming))

	br := bufio.NewReaderSize(r.src, 64*1024)
	var readErr error
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			r.lines.Add(1)
			if r.mirror != nil {
				r.mirror.Write(line)
			}
			fn(bytes.TrimRight(line, "\r\n"))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				readErr = fmt.Errorf("capture: read: %w", err)
			}
			break
		}
	}

	r.state.Store(int32(Draining))
	defer func() {
		r.state.Store(int32(Stopped))
		close(r.done)
	}()

	var waitErr error
	if r.cmd != nil {
		if err := r.cmd.Wait(); err != nil && r.ctx.Err() == nil {
			waitErr = fmt.Errorf("capture: %s exited: %w", r.cmd.Path, err)
		}
	}

	var closeErr error
	if r.mirror != nil {
		closeErr = r.mirror.Close()
	}

	return errors.Join(readErr, waitErr, closeErr)
}

// logWriter forwards subprocess stderr to the process log, one line per entry.
type logWriter struct {
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		if line := bytes.TrimSpace(w.buf[:i]); len(line) > 0 {
			log.Printf("%s%s", w.prefix, line)
		}
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}
