// Package connection implements the Connection Manager component.
//
// The Connection Manager:
//   - Maintains a single WebSocket connection to the collector
//   - Hands each live connection to a Session and waits for it to finish
//   - Retries after a constant delay derived from the send interval
//   - Stops for good only on endpoint or handshake rejection (FatalError)
//
// The Client serialises writes behind a mutex with a write deadline, and a
// single read goroutine delivers inbound frames in order on Messages().
package connection
