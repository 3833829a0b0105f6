package resolve

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Hosts maps an IP string to the display names loaded from a hosts-style
// file. It is read-only after loading and safe for concurrent use.
type Hosts struct {
	names map[string]string
}

// LoadHosts reads a hosts-style file from path.
func LoadHosts(path string) (*Hosts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := ParseHosts(f)
	if err != nil {
		return nil, fmt.Errorf("hosts %s: %w", path, err)
	}
	return h, nil
}

// ParseHosts reads "IP name1 name2 ..." records. Blank lines and lines
// starting with '#' are skipped, trailing comments are stripped. A later
// record for the same IP replaces the earlier one.
func ParseHosts(r io.Reader) (*Hosts, error) {
	h := &Hosts{names: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		h.names[fields[0]] = strings.Join(dedupe(fields[1:]), " ")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return h, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Resolve returns the names for ip joined by a space, or ip itself when
// there is no mapping.
func (h *Hosts) Resolve(ip string) string {
	if h == nil {
		return ip
	}
	if n, ok := h.names[ip]; ok {
		return n
	}
	return ip
}

// Len returns the number of mapped addresses.
func (h *Hosts) Len() int {
	if h == nil {
		return 0
	}
	return len(h.names)
}
