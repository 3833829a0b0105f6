package record

import (
	"errors"
	"fmt"
	"net/netip"
	"regexp"
	"strconv"
)

var (
	// ErrUnclassified marks a record with no SYN/FIN/RST marker. Such records
	// are expected and dropped without being counted as errors.
	ErrUnclassified = errors.New("record: no flag marker")

	// ErrMalformedRecord marks a classified record without a usable endpoint pair.
	ErrMalformedRecord = errors.New("record: malformed record")
)

// endpointPattern matches "a.b.c.d.port > e.f.g.h.port".
var endpointPattern = regexp.MustCompile(
	`(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\.(\d+)\s+>\s+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\.(\d+)`)

// MalformedError describes why a classified record was rejected.
type MalformedError struct {
	Kind   FlagKind
	Reason string
	Text   string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("record: malformed %s record: %s", e.Kind, e.Reason)
}

func (e *MalformedError) Unwrap() error { return ErrMalformedRecord }

// Extract classifies rec and pulls out the first endpoint pair.
func Extract(rec Record) (Event, error) {
	kind, ok := Classify(rec.Text)
	if !ok {
		return Event{}, ErrUnclassified
	}

	m := endpointPattern.FindStringSubmatch(rec.Text)
	if m == nil {
		return Event{}, &MalformedError{Kind: kind, Reason: "no endpoint pair", Text: rec.Text}
	}

	src, err := parseEndpoint(m[1], m[2])
	if err != nil {
		return Event{}, &MalformedError{Kind: kind, Reason: "source " + err.Error(), Text: rec.Text}
	}
	dst, err := parseEndpoint(m[3], m[4])
	if err != nil {
		return Event{}, &MalformedError{Kind: kind, Reason: "destination " + err.Error(), Text: rec.Text}
	}

	return Event{Kind: kind, Src: src, Dst: dst, Timestamp: rec.Timestamp}, nil
}

func parseEndpoint(ip, port string) (Endpoint, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		return Endpoint{}, fmt.Errorf("address %q invalid", ip)
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return Endpoint{}, fmt.Errorf("port %q invalid", port)
	}
	return Endpoint{Addr: addr, Port: uint16(p)}, nil
}
