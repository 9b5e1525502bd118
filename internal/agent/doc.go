// Package agent implements the per-connection session.
//
// On every new connection the session:
//   - Asks the collector for the watch list (get_watch_services)
//   - Sends one hardware_info snapshot
//   - Runs the transmitter (usage_info every interval) and the receiver
//     (command dispatch) until either stops
//
// Both loops are bound to the session's errgroup, so neither outlives the
// connection. The watch list is the only state shared between them.
package agent
