package scene

// NodeSnapshot is the full state of one node for one tick.
type NodeSnapshot struct {
	ID         int32
	ParentID   int32 // 0 = root
	Name       string
	Active     bool
	Transform  Transform
	Components []Component
}

// Component returns the first component of the given kind.
func (n NodeSnapshot) Component(kind ComponentKind) (Component, bool) {
	for _, c := range n.Components {
		if c.Kind() == kind {
			return c, true
		}
	}
	return nil, false
}

// Message is one tick's payload. Nodes is always the complete node set;
// Meshes and Images hold only assets introduced since the previous tick.
type Message struct {
	Nodes  []NodeSnapshot
	Meshes []MeshAsset
	Images []ImageAsset
}

// NodeIDs returns the set of node ids carried by the message.
func (m Message) NodeIDs() map[int32]struct{} {
	ids := make(map[int32]struct{}, len(m.Nodes))
	for _, n := range m.Nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// TransformDelta is a single-node authoritative transform correction sent
// outside the snapshot cadence.
type TransformDelta struct {
	NodeID    int32
	Transform Transform
}
