// Package hostinfo fills in the Handshake's DeviceName/Platform fields from
// the local machine's identity, via gopsutil rather than hand-rolled
// os.Hostname-only probing.
package hostinfo

import (
	"context"

	"github.com/shirou/gopsutil/v3/host"
)

// Platform names as the Handshake JSON expects them.
const (
	PlatformWindows = "Windows"
	PlatformMacOS   = "macOS"
)

// Identity is the subset of host.InfoStat the Handshake needs.
type Identity struct {
	DeviceName string
	Platform   string
}

// Collect reads local host identity. platform is supplied by the caller
// (the binary already knows which side it is) rather than inferred from
// host.InfoStat.OS, since gopsutil's OS string ("windows", "darwin") doesn't
// match the Handshake's "Windows"/"macOS" vocabulary.
func Collect(ctx context.Context, platform string) (Identity, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		DeviceName: info.Hostname,
		Platform:   platform,
	}, nil
}
