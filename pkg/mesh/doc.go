// Package mesh defines the decoded frame and payload model exchanged with a
// mesh-radio device, plus the CBOR codec used on the wire.
//
// A FromRadio frame is one decoded inbound protocol unit. Exactly one of its
// sub-fields is populated per frame. Application payloads travel inside
// MeshPacket.Decoded and are tagged with a PortNum identifying their schema;
// DecodeAppPayload maps known ports to their typed messages.
//
// All wire structs use CBOR integer keys for compactness. Encoding is
// deterministic, decoding is lenient for forward compatibility.
package mesh
