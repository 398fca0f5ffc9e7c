// Package connection defines the capability the session engine consumes to
// talk to a mesh-radio device, plus the pieces layered directly on it:
// queue-backed packet stream listeners, the jittered reconnect delay
// calculator, and the reconnection state machine that supervises the
// capability across transport failures.
//
// Implementations of Connection own the physical transport (serial, BLE, TCP)
// and the byte-level framing; this package never touches raw bytes.
//
// # Reconnection Strategy
//
// A transport stall is retried immediately: connect attempts run under a
// timeout, and a timed-out attempt loops straight back into the next one.
// A hard failure instead sleeps a random delay drawn uniformly from
// [5s, 30s] before retrying, so a fleet of clients does not hammer a
// recovering device in lockstep. After a successful reconnect the config-sync
// handshake re-runs; if the handshake times out the next connect attempt is
// forced to tear the transport down first.
package connection
