package collector

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// Source is the set of probes the collector reads. Each may fail
// independently. Tests replace individual probes.
type Source struct {
	HostInfo      func(ctx context.Context) (*host.InfoStat, error)
	CPUCounts     func(ctx context.Context, logical bool) (int, error)
	CPUInfo       func(ctx context.Context) ([]cpu.InfoStat, error)
	CPUPercent    func(ctx context.Context) (float64, error)
	VirtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	Partitions    func(ctx context.Context) ([]disk.PartitionStat, error)
	DiskUsage     func(ctx context.Context, path string) (*disk.UsageStat, error)
	Interfaces    func(ctx context.Context) (psnet.InterfaceStatList, error)
	Hostname      func() (string, error)
	FQDN          func(ctx context.Context, hostname string) (string, error)
	LocalIP       func(ctx context.Context) (string, error)
	PublicIP      func(ctx context.Context) (string, error)
}

// SystemSource returns probes backed by gopsutil and the OS resolver.
// publicIP may be nil to disable the public address lookup.
func SystemSource(cfg Config, publicIP *PublicIPClient) Source {
	src := Source{
		HostInfo:  host.InfoWithContext,
		CPUCounts: cpu.CountsWithContext,
		CPUInfo:   cpu.InfoWithContext,
		CPUPercent: func(ctx context.Context) (float64, error) {
			// Zero interval compares against the previous call.
			pct, err := cpu.PercentWithContext(ctx, 0, false)
			if err != nil {
				return 0, err
			}
			if len(pct) == 0 {
				return 0, fmt.Errorf("cpu percent: no samples")
			}
			return pct[0], nil
		},
		VirtualMemory: mem.VirtualMemoryWithContext,
		Partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, false)
		},
		DiskUsage:  disk.UsageWithContext,
		Interfaces: psnet.InterfacesWithContext,
		Hostname:   os.Hostname,
		FQDN:       lookupFQDN,
		LocalIP: func(ctx context.Context) (string, error) {
			return localIP(ctx, cfg.LocalIPProbe)
		},
		PublicIP: func(context.Context) (string, error) {
			return "", fmt.Errorf("public ip lookup disabled")
		},
	}
	if publicIP != nil {
		src.PublicIP = publicIP.Lookup
	}
	return src
}

// localIP returns the source address the kernel picks for probe. UDP dial
// sends nothing.
func localIP(ctx context.Context, probe string) (string, error) {
	var d net.Dialer
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	conn, err := d.DialContext(ctx, "udp4", probe)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "", fmt.Errorf("unexpected local address %T", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}

// lookupFQDN resolves hostname forward then back. It falls back to hostname
// when no reverse name exists.
func lookupFQDN(ctx context.Context, hostname string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupHost(ctx, hostname)
	if err != nil || len(addrs) == 0 {
		return hostname, nil
	}
	names, err := net.DefaultResolver.LookupAddr(ctx, addrs[0])
	if err != nil || len(names) == 0 {
		return hostname, nil
	}
	return strings.TrimSuffix(names[0], "."), nil
}

// ipv4Interfaces maps interface names to their IPv4 addresses. Interfaces
// without an IPv4 address map to an empty list.
func ipv4Interfaces(list psnet.InterfaceStatList) map[string][]string {
	out := make(map[string][]string, len(list))
	for _, iface := range list {
		addrs := []string{}
		for _, a := range iface.Addrs {
			ip := net.ParseIP(a.Addr)
			if ip == nil {
				ip, _, _ = net.ParseCIDR(a.Addr)
			}
			if ip != nil && ip.To4() != nil {
				addrs = append(addrs, ip.String())
			}
		}
		out[iface.Name] = addrs
	}
	return out
}
