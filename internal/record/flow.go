package record

import (
	"net/netip"
	"strconv"
)

// Endpoint is one side of a captured segment.
type Endpoint struct {
	Addr netip.Addr
	Port uint16
}

func (e Endpoint) String() string {
	return e.Addr.String() + "." + strconv.Itoa(int(e.Port))
}

// FlowKey identifies a flow by its display hosts. Direction matters:
// A -> B and B -> A are different keys. Ports are not part of the key.
type FlowKey struct {
	Src string
	Dst string
}

func (f FlowKey) String() string {
	return f.Src + " -> " + f.Dst
}

// Event is a classified record with its endpoints.
type Event struct {
	Kind      FlagKind
	Src       Endpoint
	Dst       Endpoint
	Timestamp float64
}

// Flow builds the flow key, passing each address through resolve first.
// A nil resolve keeps raw addresses.
func (e Event) Flow(resolve func(ip string) string) FlowKey {
	src, dst := e.Src.Addr.String(), e.Dst.Addr.String()
	if resolve != nil {
		src, dst = resolve(src), resolve(dst)
	}
	return FlowKey{Src: src, Dst: dst}
}
