package nodedb

import (
	"fmt"

	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// Node is the typed record kept per mesh node. Known fields are merged as
// records arrive; fields absent from an update are retained.
type Node struct {
	// Num is the node number, unique within the store.
	Num uint32

	// User is the node's last-known identity. Always populated; nodes known
	// only by number carry a stub identity.
	User mesh.User

	// Position is the last-known location, with fixed-point latitude and
	// longitude already converted to degrees.
	Position *NodePosition

	// SNR is the signal-to-noise ratio of the last received packet.
	SNR float32

	// LastHeard is the Unix time the node was last heard.
	LastHeard uint32

	// Channel is the channel index the node was heard on.
	Channel int32

	// ViaMQTT reports whether the node was heard through an MQTT gateway.
	ViaMQTT bool

	// HopsAway is the hop distance, when known.
	HopsAway *uint32

	// HasPKC reports whether the node supports public-key admin channels.
	HasPKC bool

	// Telemetry metric groups merged from traffic.
	DeviceMetrics      *mesh.DeviceMetrics
	EnvironmentMetrics *mesh.EnvironmentMetrics
	AirQualityMetrics  *mesh.AirQualityMetrics
	PowerMetrics       *mesh.PowerMetrics

	// TelemetryTime is the timestamp of the last merged telemetry report.
	TelemetryTime uint32
}

// NodePosition is a decoded location with degrees alongside the raw
// fixed-point fields.
type NodePosition struct {
	Latitude   *float64
	Longitude  *float64
	LatitudeI  *int32
	LongitudeI *int32
	Altitude   *int32
	Time       uint32
}

// MeshNode is the lightweight lookup result handed to callers and listeners.
type MeshNode struct {
	ID        uint32
	UserID    string
	ShortName string
	LongName  string
}

// StubNode builds the deterministic placeholder identity for a node known
// only by number: user id "!%08x", names derived from its last four hex
// characters.
func StubNode(num uint32) MeshNode {
	userID := fmt.Sprintf("!%08x", num)
	suffix := userID[len(userID)-4:]
	return MeshNode{
		ID:        num,
		UserID:    userID,
		ShortName: suffix,
		LongName:  "Meshlink " + suffix,
	}
}

// stubUser is the stored form of a stub identity.
func stubUser(num uint32) mesh.User {
	stub := StubNode(num)
	return mesh.User{
		ID:        stub.UserID,
		ShortName: stub.ShortName,
		LongName:  stub.LongName,
		HwModel:   "UNSET",
	}
}

// meshNode converts a stored record to its lookup form.
func (n *Node) meshNode() MeshNode {
	return MeshNode{
		ID:        n.Num,
		UserID:    n.User.ID,
		ShortName: n.User.ShortName,
		LongName:  n.User.LongName,
	}
}
