package output

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/ekmektech/tcpdumpdashboard/internal/report"
)

// FileSink overwrites a file with every snapshot. The new content is written
// to a temporary file in the same directory and renamed over the target, so
// readers never see a half-written snapshot.
type FileSink struct {
	path string

	mu     sync.Mutex
	failed bool // a failure was reported and no write has succeeded since
}

// NewFileSink checks that the target directory is writable and returns a sink.
func NewFileSink(path string) (*FileSink, error) {
	dir := filepath.Dir(path)
	probe, err := os.CreateTemp(dir, ".tcpdash-*")
	if err != nil {
		return nil, fmt.Errorf("output file %s: %w", path, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return &FileSink{path: path}, nil
}

// Path returns the output file path.
func (f *FileSink) Path() string { return f.path }

// Render replaces the file content with the snapshot text. The first error
// after a success is logged; repeats are returned but not logged again.
func (f *FileSink) Render(s report.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := f.write([]byte(s.Text))
	if err != nil {
		if !f.failed {
			log.Printf("output: write %s: %v", f.path, err)
		}
		f.failed = true
		return err
	}
	if f.failed {
		log.Printf("output: write %s recovered", f.path)
		f.failed = false
	}
	return nil
}

func (f *FileSink) write(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".tcpdash-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, f.path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
