package capture

import (
	"fmt"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"
	"golang.org/x/net/bpf"
)

// ValidateFilter compiles filter with libpcap and checks that the resulting
// program decodes as classic BPF. It returns the instruction count.
func ValidateFilter(filter string, snaplen int) (int, error) {
	if snaplen <= 0 {
		snaplen = DefaultSnaplen
	}
	insts, err := pcap.CompileBPFFilter(layers.LinkTypeEthernet, snaplen, filter)
	if err != nil {
		return 0, fmt.Errorf("capture: invalid filter %q: %w", filter, err)
	}

	raw := make([]bpf.RawInstruction, len(insts))
	for i, ins := range insts {
		raw[i] = bpf.RawInstruction{Op: ins.Code, Jt: ins.Jt, Jf: ins.Jf, K: ins.K}
	}
	if _, ok := bpf.Disassemble(raw); !ok {
		return 0, fmt.Errorf("capture: filter %q compiled to undecodable BPF", filter)
	}
	return len(raw), nil
}
