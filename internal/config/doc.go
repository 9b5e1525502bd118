// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Durations accept Go duration strings ("1m30s") or plain numbers of seconds.
// See configs/agent.example.yaml for the full schema.
package config
