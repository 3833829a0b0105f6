package capture

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrInterface means the requested capture interface does not exist or is down.
var ErrInterface = errors.New("capture: bad interface")

// interfaces is swapped in tests.
var interfaces = net.Interfaces

// CheckInterface verifies that name is an existing interface that is up.
// An empty name means tcpdump's default and always passes.
func CheckInterface(name string) error {
	if name == "" || name == "any" {
		return nil
	}
	ifaces, err := interfaces()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInterface, err)
	}

	names := make([]string, 0, len(ifaces))
	for _, iface := range ifaces {
		if iface.Name != name {
			names = append(names, iface.Name)
			continue
		}
		if iface.Flags&net.FlagUp == 0 {
			return fmt.Errorf("%w: %s is down", ErrInterface, name)
		}
		return nil
	}
	return fmt.Errorf("%w: %s not found (have: %s)", ErrInterface, name, strings.Join(names, ", "))
}
