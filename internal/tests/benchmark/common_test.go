package benchmark

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// NodeCounts defines the scene sizes for benchmarking.
var NodeCounts = []int{10, 100, 1000, 10000}

// newMessage builds a message of n nodes in a shallow tree. Every tenth
// node carries a mesh and material; withAssets adds the referenced meshes
// and images as a first tick would.
func newMessage(n int, withAssets bool) scene.Message {
	m := scene.Message{Nodes: make([]scene.NodeSnapshot, 0, n)}
	for i := 1; i <= n; i++ {
		node := scene.NodeSnapshot{
			ID:       int32(i),
			ParentID: int32(i / 10),
			Name:     fmt.Sprintf("node-%d", i),
			Active:   true,
			Transform: scene.Transform{
				Position: mgl32.Vec3{float32(i), 0, float32(-i)},
				Rotation: mgl32.QuatIdent(),
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		}
		if i%10 == 0 {
			meshID, imageID := int32(1000+i), int32(2000+i)
			node.Components = []scene.Component{
				scene.MeshRef{MeshID: meshID},
				scene.MaterialRef{ImageID: imageID, Shader: "Standard"},
			}
			if withAssets {
				m.Meshes = append(m.Meshes, newMesh(meshID))
				m.Images = append(m.Images, newImage(imageID))
			}
		}
		m.Nodes = append(m.Nodes, node)
	}
	return m
}

func newMesh(id int32) scene.MeshAsset {
	return scene.MeshAsset{
		ID:        id,
		Name:      fmt.Sprintf("mesh-%d", id),
		Vertices:  []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}},
		Triangles: []int32{0, 1, 2, 2, 1, 3},
		Normals:   []mgl32.Vec3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		UV:        []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}},
	}
}

func newImage(id int32) scene.ImageAsset {
	const side = 16
	return scene.ImageAsset{
		ID:     id,
		Name:   fmt.Sprintf("image-%d", id),
		Width:  side,
		Height: side,
		Format: scene.FormatRGBA32,
		Pixels: make([]byte, side*side*4),
	}
}
