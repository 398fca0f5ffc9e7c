// Package session implements the client-side engine maintaining a persistent
// session with a single mesh-radio device.
//
// A Session owns a connection.Connection capability and supervises four
// concerns on top of it:
//
//   - Lifecycle: Start/Stop with supervised background activities that
//     restart after a cool-down on failure.
//   - Reconnection: automatic transport recovery with randomized retry
//     delays and a config-sync handshake after every reconnect.
//   - Ingestion: a single consumer drains the inbound frame stream, updates
//     the node store, and fans frames out to stream and port listeners.
//   - Correlation: request/response helpers that race delivery
//     acknowledgements, application replies, and timeouts.
//
// One Session instance manages exactly one device. A cleanly stopped Session
// can be started again.
package session
