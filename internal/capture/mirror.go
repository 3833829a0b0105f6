package capture

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Mirror is the optional raw-line copy of the capture stream.
type Mirror struct {
	mu       sync.Mutex
	file     *os.File
	w        *bufio.Writer
	path     string
	reported bool
}

// OpenMirror creates a uniquely named log file under dir (os.TempDir() if empty).
func OpenMirror(dir string) (*Mirror, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, uuid.NewString()+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &Mirror{file: f, w: bufio.NewWriterSize(f, 64*1024), path: path}, nil
}

// Path returns the mirror log location.
func (m *Mirror) Path() string { return m.path }

// Write appends p verbatim. The first failure is logged; later lines are
// still attempted so a transient error (e.g. disk full) does not end the run.
func (m *Mirror) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err := m.w.Write(p)
	if err != nil {
		if !m.reported {
			m.reported = true
			log.Printf("mirror: write %s: %v", m.path, err)
		}
		// bufio errors are sticky; drop the failed buffer and retry on the next line.
		m.w.Reset(m.file)
	}
	return n, err
}

// Close flushes buffered lines and closes the file.
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	flushErr := m.w.Flush()
	if err := m.file.Close(); err != nil {
		return err
	}
	return flushErr
}
