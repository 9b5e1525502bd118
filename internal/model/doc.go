// Package model defines the wire and telemetry types shared across the host agent.
//
// Conventions:
//   - Timestamps on the wire: float64 seconds since Unix epoch (fractional)
//   - Sizes: GiB rounded to one decimal place
//   - Optional values are pointers; nil encodes as JSON null
package model
