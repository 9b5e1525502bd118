package collector

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/rickgao/host-agent/internal/model"
)

var errNoCPUInfo = errors.New("no cpu info")

// Collector produces telemetry snapshots.
type Collector struct {
	cfg    Config
	src    Source
	logger *slog.Logger
}

// New creates a Collector on the running host.
func New(cfg Config, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}

	var publicIP *PublicIPClient
	if !cfg.DisablePublicIP && cfg.PublicIPURL != "" {
		opts := []PublicIPOption{
			WithRetries(cfg.PublicIPRetries, 500*time.Millisecond),
			WithTTL(cfg.PublicIPTTL),
			WithLogger(logger),
		}
		if cfg.PublicIPTimeout > 0 {
			opts = append(opts, WithTimeout(cfg.PublicIPTimeout))
		}
		publicIP = NewPublicIPClient(cfg.PublicIPURL, opts...)
	}
	return NewWithSource(cfg, SystemSource(cfg, publicIP), logger)
}

// NewWithSource creates a Collector reading from src.
func NewWithSource(cfg Config, src Source, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{cfg: cfg, src: src, logger: logger}
}

// Hardware returns static host facts.
func (c *Collector) Hardware(ctx context.Context) model.HardwareInfo {
	info := model.HardwareInfo{
		Network:      c.Network(ctx),
		AgentVersion: c.cfg.AgentVersion,
		Disks:        []model.DiskInfo{},
	}

	if hi, err := c.src.HostInfo(ctx); err == nil && hi != nil {
		info.OS.System = nonEmpty(titleOS(hi.OS))
		info.OS.Release = nonEmpty(hi.KernelVersion)
		info.OS.Version = nonEmpty(strings.TrimSpace(hi.Platform + " " + hi.PlatformVersion))
		info.OS.Machine = nonEmpty(hi.KernelArch)
	} else {
		c.logger.Debug("telemetry field unavailable", "field", "os", "error", err)
	}

	cpus, cpuErr := c.src.CPUInfo(ctx)
	if cpuErr == nil && len(cpus) == 0 {
		cpuErr = errNoCPUInfo
	}
	if cpuErr == nil {
		info.OS.Processor = nonEmpty(cpus[0].ModelName)
		if cpus[0].Mhz > 0 {
			info.CPU.MaxFrequencyMHz = model.Ptr(cpus[0].Mhz)
		}
	} else {
		c.logger.Debug("telemetry field unavailable", "field", "cpu.info", "error", cpuErr)
	}

	info.CPU.PhysicalCores = optional(c.logger, "cpu.physical_cores", func() (int, error) {
		return c.src.CPUCounts(ctx, false)
	})
	info.CPU.LogicalCores = optional(c.logger, "cpu.logical_cores", func() (int, error) {
		return c.src.CPUCounts(ctx, true)
	})
	info.MemTotalGiB = optional(c.logger, "mem_total_gib", func() (float64, error) {
		vm, err := c.src.VirtualMemory(ctx)
		if err != nil {
			return 0, err
		}
		return model.BytesToGiB(vm.Total), nil
	})

	parts, err := c.src.Partitions(ctx)
	if err != nil {
		c.logger.Debug("telemetry field unavailable", "field", "disks", "error", err)
		return info
	}
	for _, p := range parts {
		mount := p.Mountpoint
		info.Disks = append(info.Disks, model.DiskInfo{
			Device:     nonEmpty(p.Device),
			Mountpoint: nonEmpty(mount),
			FSType:     nonEmpty(p.Fstype),
			TotalGiB: optional(c.logger, "disks.total_gib", func() (float64, error) {
				du, err := c.src.DiskUsage(ctx, mount)
				if err != nil {
					return 0, err
				}
				return model.BytesToGiB(du.Total), nil
			}),
		})
	}
	return info
}

// Usage returns live utilisation.
func (c *Collector) Usage(ctx context.Context) model.UsageInfo {
	usage := model.UsageInfo{
		Network: c.Network(ctx),
		Disks:   []model.DiskUsage{},
	}

	usage.CPUPct = optional(c.logger, "cpu_pct", func() (float64, error) {
		return c.src.CPUPercent(ctx)
	})
	usage.MemUsedGiB = optional(c.logger, "mem_used_gib", func() (float64, error) {
		vm, err := c.src.VirtualMemory(ctx)
		if err != nil {
			return 0, err
		}
		return model.BytesToGiB(vm.Used), nil
	})

	parts, err := c.src.Partitions(ctx)
	if err != nil {
		c.logger.Debug("telemetry field unavailable", "field", "disks", "error", err)
		return usage
	}
	for _, p := range parts {
		mount := p.Mountpoint
		usage.Disks = append(usage.Disks, model.DiskUsage{
			Device: nonEmpty(p.Device),
			UsedGiB: optional(c.logger, "disks.used_gib", func() (float64, error) {
				du, err := c.src.DiskUsage(ctx, mount)
				if err != nil {
					return 0, err
				}
				return model.BytesToGiB(du.Used), nil
			}),
		})
	}
	return usage
}

// Network returns host identity and addresses.
func (c *Collector) Network(ctx context.Context) model.NetworkInfo {
	info := model.NetworkInfo{
		Interfaces: map[string][]string{},
	}

	info.Hostname = optional(c.logger, "network.hostname", c.src.Hostname)
	if info.Hostname != nil {
		info.FQDN = optional(c.logger, "network.fqdn", func() (string, error) {
			return c.src.FQDN(ctx, *info.Hostname)
		})
	}
	info.LocalIP = optional(c.logger, "network.local_ip", func() (string, error) {
		return c.src.LocalIP(ctx)
	})
	info.PublicIP = optional(c.logger, "network.public_ip", func() (string, error) {
		return c.src.PublicIP(ctx)
	})

	if ifaces, err := c.src.Interfaces(ctx); err == nil {
		info.Interfaces = ipv4Interfaces(ifaces)
	} else {
		c.logger.Debug("telemetry field unavailable", "field", "network.interfaces", "error", err)
	}
	return info
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// titleOS maps GOOS-style names to the conventional display form.
func titleOS(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "windows":
		return "Windows"
	case "darwin":
		return "Darwin"
	case "freebsd":
		return "FreeBSD"
	case "":
		return ""
	default:
		return strings.ToUpper(goos[:1]) + goos[1:]
	}
}
