package netutil

import (
	"fmt"
	"net"
	"strings"

	"pxelab/internal/errors"
)

// Params is the server-side network identity every generated configuration
// refers to. It is built once at startup and never modified.
type Params struct {
	// Interface is empty when the address was supplied explicitly.
	Interface string
	Address   string
	Netmask   string
}

// Seams for tests.
var (
	hostInterfaces = net.Interfaces
	interfaceAddrs = func(ifi net.Interface) ([]net.Addr, error) { return ifi.Addrs() }
)

// Resolve produces complete network parameters from whatever the user
// supplied. An explicit address requires an explicit netmask. Without an
// address, an interface is resolved (explicit or the single non-loopback
// candidate) and its first IPv4 binding supplies address and netmask.
func Resolve(ifaceName, address, netmask string) (*Params, error) {
	const op = "resolve network"

	if address != "" {
		if netmask == "" {
			return nil, errors.Ef(op, errors.Config, "netmask required when address is explicit")
		}
		return &Params{Address: address, Netmask: netmask}, nil
	}

	ifaces, err := hostInterfaces()
	if err != nil {
		return nil, errors.E(op, errors.Config, err)
	}

	var selected *net.Interface
	if ifaceName != "" {
		for i := range ifaces {
			if ifaces[i].Name == ifaceName {
				selected = &ifaces[i]
				break
			}
		}
		if selected == nil {
			return nil, errors.Ef(op, errors.Config, "interface %q does not exist on this host", ifaceName)
		}
	} else {
		var candidates []net.Interface
		for i := range ifaces {
			if ifaces[i].Flags&net.FlagLoopback == 0 {
				candidates = append(candidates, ifaces[i])
			}
		}
		if len(candidates) != 1 {
			names := make([]string, 0, len(candidates))
			for _, c := range candidates {
				names = append(names, c.Name)
			}
			return nil, errors.Ef(op, errors.AmbiguousEnv,
				"cannot auto-select a network interface, found %d candidates [%s]; use --interface",
				len(candidates), strings.Join(names, ", "))
		}
		selected = &candidates[0]
	}

	addr, mask, err := firstIPv4(*selected)
	if err != nil {
		return nil, err
	}
	return &Params{Interface: selected.Name, Address: addr, Netmask: mask}, nil
}

func firstIPv4(ifi net.Interface) (string, string, error) {
	addrs, err := interfaceAddrs(ifi)
	if err != nil {
		return "", "", errors.E("resolve network", errors.Config, err)
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip4 := ipnet.IP.To4()
		if ip4 == nil {
			continue
		}
		return ip4.String(), net.IP(ipnet.Mask).String(), nil
	}
	return "", "", errors.Ef("resolve network", errors.Config, "interface %q has no IPv4 address", ifi.Name)
}

// Network returns the CIDR of the subnet containing Address, used for the
// export table, e.g. "192.168.1.0/24".
func (p *Params) Network() (string, error) {
	ip := net.ParseIP(p.Address)
	maskIP := net.ParseIP(p.Netmask)
	if ip == nil || maskIP == nil || ip.To4() == nil || maskIP.To4() == nil {
		return "", errors.Ef("compute network", errors.Config,
			"invalid IPv4 address/netmask pair %q/%q", p.Address, p.Netmask)
	}
	mask := net.IPMask(maskIP.To4())
	ones, _ := mask.Size()
	return fmt.Sprintf("%s/%d", ip.To4().Mask(mask).String(), ones), nil
}
