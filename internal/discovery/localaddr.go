package discovery

import (
	"net"
	"strings"
)

// virtualIfacePrefixes names interface name prefixes that typically belong
// to USB-C/RNDIS/CDC-Ethernet virtual adapters rather than a real LAN link.
// Discovery prefers a non-virtual interface so broadcast traffic reaches the
// actual network the companion is on, not a point-to-point tether link.
var virtualIfacePrefixes = []string{
	"rndis", "cdc", "usb", "vEthernet", "VMware", "VirtualBox", "utun", "bridge100",
}

// PreferredLocalAddress returns the first non-loopback IPv4 address bound to
// a non-virtual interface, falling back to any non-loopback IPv4 address if
// none qualifies.
func PreferredLocalAddress() (net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var fallback net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ip := addrIPv4(a)
			if ip == nil {
				continue
			}
			if isVirtualIface(iface.Name) {
				if fallback == nil {
					fallback = ip
				}
				continue
			}
			return ip, nil
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, net.UnknownNetworkError("no usable local IPv4 address found")
}

func addrIPv4(a net.Addr) net.IP {
	var ip net.IP
	switch v := a.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return nil
	}
	return ip.To4()
}

func isVirtualIface(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range virtualIfacePrefixes {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
