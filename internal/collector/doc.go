// Package collector gathers host telemetry for hardware_info and usage_info.
//
// Collection never fails as a whole. Each leaf value is read independently and
// left nil when its source errors, so one broken probe (an unreadable mount, a
// missing cpufreq driver, no route to the public IP service) only blanks the
// fields it feeds.
//
// Host metrics come from gopsutil. The public IP is looked up over HTTP and
// cached for a configurable TTL so the periodic usage tick does not pay a
// network round trip every interval.
package collector
