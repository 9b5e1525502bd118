package collector

import "log/slog"

// optional runs fn and returns a pointer to its result, or nil when fn fails.
func optional[T any](logger *slog.Logger, field string, fn func() (T, error)) *T {
	v, err := fn()
	if err != nil {
		logger.Debug("telemetry field unavailable", "field", field, "error", err)
		return nil
	}
	return &v
}
