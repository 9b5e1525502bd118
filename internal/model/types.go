package model

import "math"

// -----------------------------------------------------------------------------
// Static Hardware Types (sent once per connection)
// -----------------------------------------------------------------------------

// HardwareInfo is the static machine profile sent in a hardware_info message.
type HardwareInfo struct {
	Network      NetworkInfo `json:"network"`
	OS           OSInfo      `json:"os"`
	CPU          CPUInfo     `json:"cpu"`
	MemTotalGiB  *float64    `json:"mem_total_gib"`
	Disks        []DiskInfo  `json:"disks"`
	AgentVersion string      `json:"agent_version,omitempty"`
}

// OSInfo describes the operating system.
type OSInfo struct {
	System    *string `json:"system"`    // e.g. "Linux"
	Release   *string `json:"release"`   // Kernel release
	Version   *string `json:"version"`   // Platform version
	Machine   *string `json:"machine"`   // e.g. "x86_64"
	Processor *string `json:"processor"` // CPU model name
}

// CPUInfo describes the processor topology.
type CPUInfo struct {
	PhysicalCores   *int     `json:"physical_cores"`
	LogicalCores    *int     `json:"logical_cores"`
	MaxFrequencyMHz *float64 `json:"max_frequency_mhz"`
}

// DiskInfo describes one mounted partition.
type DiskInfo struct {
	Device     *string  `json:"device"`
	Mountpoint *string  `json:"mountpoint"`
	FSType     *string  `json:"fstype"`
	TotalGiB   *float64 `json:"total_gib"`
}

// NetworkInfo is the host's network identity.
type NetworkInfo struct {
	Hostname   *string             `json:"hostname"`
	FQDN       *string             `json:"fqdn"`
	LocalIP    *string             `json:"local_ip"`
	PublicIP   *string             `json:"public_ip"`
	Interfaces map[string][]string `json:"interfaces"` // interface name → IPv4 addresses
}

// -----------------------------------------------------------------------------
// Live Usage Types (sent every tick)
// -----------------------------------------------------------------------------

// UsageInfo is the live utilisation snapshot sent in a usage_info message.
type UsageInfo struct {
	CPUPct     *float64    `json:"cpu_pct"`
	MemUsedGiB *float64    `json:"mem_used_gib"`
	Disks      []DiskUsage `json:"disks"`
	Network    NetworkInfo `json:"network"`
}

// DiskUsage is the used space of one partition.
type DiskUsage struct {
	Device  *string  `json:"device"`
	UsedGiB *float64 `json:"used_gib"`
}

// -----------------------------------------------------------------------------
// Service Types
// -----------------------------------------------------------------------------

// ServiceInfo is one entry of a service listing. systemd fills Load/Active/Sub,
// the Windows service manager fills State.
type ServiceInfo struct {
	Name   string `json:"name"`
	Load   string `json:"load,omitempty"`
	Active string `json:"active,omitempty"`
	Sub    string `json:"sub,omitempty"`
	State  string `json:"state,omitempty"`
}

// ServiceStatus is the status of one watched service.
// IsRunning is nil when no definitive running state could be determined.
type ServiceStatus struct {
	Name          string  `json:"name"`
	IsRunning     *bool   `json:"is_running"`
	StatusMessage *string `json:"status_message"`
}

// RestartResult is the outcome of a service restart.
type RestartResult struct {
	Name    string `json:"name"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// BytesToGiB converts bytes to GiB with one decimal precision.
func BytesToGiB(v uint64) float64 {
	return math.Round(float64(v)/(1<<30)*10) / 10
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
