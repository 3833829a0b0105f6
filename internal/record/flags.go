package record

import "strings"

// FlagKind classifies a TCP control-flag segment.
type FlagKind uint8

const (
	Syn FlagKind = iota
	SynAck
	Fin
	FinAck
	Reset
	ResetAck
)

// Kinds lists every FlagKind in declaration order.
var Kinds = []FlagKind{Syn, SynAck, Fin, FinAck, Reset, ResetAck}

var kindNames = [...]string{
	Syn:      "Syn",
	SynAck:   "Syn-Ack",
	Fin:      "Fin",
	FinAck:   "Fin-Ack",
	Reset:    "Reset",
	ResetAck: "Reset-Ack",
}

func (k FlagKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// flagMarkers is checked in order; the ".", i.e. ACK, variants must come
// before their bare prefix since "[S" also matches "[S.".
var flagMarkers = []struct {
	marker string
	kind   FlagKind
}{
	{"[S.", SynAck},
	{"[S", Syn},
	{"[F.", FinAck},
	{"[F", Fin},
	{"[R.", ResetAck},
	{"[R", Reset},
}

// Classify returns the flag kind of the first matching marker in text.
func Classify(text string) (FlagKind, bool) {
	for _, m := range flagMarkers {
		if strings.Contains(text, m.marker) {
			return m.kind, true
		}
	}
	return 0, false
}
