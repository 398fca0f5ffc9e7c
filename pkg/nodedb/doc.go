// Package nodedb maintains the in-memory database of known mesh nodes and
// the locally-connected device's identity, channel table, and configuration.
//
// The store is built incrementally by merging inbound frames: topology
// records create or update typed node records, telemetry reports merge into
// the originating node, and config sub-messages merge field-by-field into
// cumulative local snapshots. Nodes first seen through traffic get a
// deterministic stub identity derived from their node number.
package nodedb
