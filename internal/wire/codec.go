package wire

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// Component discriminators.
const (
	discMeshRef            = "MeshRef"
	discMaterialRef        = "MaterialRef"
	discSkinnedMaterialRef = "SkinnedMaterialRef"
)

// IsProtocolError reports whether err came from decoding malformed or
// unrecognized input.
func IsProtocolError(err error) bool {
	return errors.Is(err, scene.ErrMalformedFrame) ||
		errors.Is(err, scene.ErrUnknownComponent) ||
		errors.Is(err, scene.ErrUnknownFrameKind)
}

// EncodeMessage serializes a message payload.
func EncodeMessage(m scene.Message) []byte {
	e := newEncoder(messageSizeHint(m))
	encodeMessage(e, m)
	return e.bytes()
}

// DecodeMessage parses a message payload. Lists in the result are never nil.
func DecodeMessage(b []byte) (scene.Message, error) {
	d := newDecoder(b)
	m := decodeMessage(d)
	if err := d.finish(); err != nil {
		return scene.Message{}, err
	}
	return m, nil
}

func messageSizeHint(m scene.Message) int {
	n := 12 + len(m.Nodes)*(minNode+32)
	for _, mesh := range m.Meshes {
		n += minMesh + len(mesh.Name) + len(mesh.Vertices)*sizeVec3 + len(mesh.Triangles)*sizeInt32 +
			len(mesh.Normals)*sizeVec3 + len(mesh.UV)*sizeVec2
	}
	for _, img := range m.Images {
		n += minImage + len(img.Name) + len(img.Pixels)
	}
	return n
}

func encodeMessage(e *encoder, m scene.Message) {
	e.int32(int32(len(m.Nodes)))
	for _, n := range m.Nodes {
		encodeNode(e, n)
	}
	e.int32(int32(len(m.Meshes)))
	for _, mesh := range m.Meshes {
		encodeMesh(e, mesh)
	}
	e.int32(int32(len(m.Images)))
	for _, img := range m.Images {
		encodeImage(e, img)
	}
}

func decodeMessage(d *decoder) scene.Message {
	m := scene.Message{}

	n := d.count(minNode)
	m.Nodes = make([]scene.NodeSnapshot, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		m.Nodes = append(m.Nodes, decodeNode(d))
	}

	n = d.count(minMesh)
	m.Meshes = make([]scene.MeshAsset, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		m.Meshes = append(m.Meshes, decodeMesh(d))
	}

	n = d.count(minImage)
	m.Images = make([]scene.ImageAsset, 0, n)
	for i := 0; i < n && d.err == nil; i++ {
		m.Images = append(m.Images, decodeImage(d))
	}
	return m
}

func encodeTransform(e *encoder, t scene.Transform) {
	e.vec3(t.Position)
	e.quat(t.Rotation)
	e.vec3(t.Scale)
}

func decodeTransform(d *decoder) scene.Transform {
	return scene.Transform{
		Position: d.vec3(),
		Rotation: d.quat(),
		Scale:    d.vec3(),
	}
}

func encodeNode(e *encoder, n scene.NodeSnapshot) {
	e.string(n.Name)
	e.int32(n.ID)
	e.int32(n.ParentID)
	e.bool(n.Active)
	encodeTransform(e, n.Transform)
	e.int32(int32(len(n.Components)))
	for _, c := range n.Components {
		encodeComponent(e, c)
	}
}

func decodeNode(d *decoder) scene.NodeSnapshot {
	n := scene.NodeSnapshot{
		Name:     d.string(),
		ID:       d.int32(),
		ParentID: d.int32(),
		Active:   d.bool(),
	}
	n.Transform = decodeTransform(d)

	count := d.count(minComponent)
	n.Components = make([]scene.Component, 0, count)
	for i := 0; i < count && d.err == nil; i++ {
		if c := decodeComponent(d); c != nil {
			n.Components = append(n.Components, c)
		}
	}
	return n
}

// encodeComponent panics on a nil component; the variant set is closed so
// any other value is one of the three known types.
func encodeComponent(e *encoder, c scene.Component) {
	switch v := c.(type) {
	case scene.MeshRef:
		e.string(discMeshRef)
		e.int32(v.MeshID)
	case scene.MaterialRef:
		e.string(discMaterialRef)
		e.int32(v.ImageID)
		e.string(v.Shader)
	case scene.SkinnedMaterialRef:
		e.string(discSkinnedMaterialRef)
		e.int32(v.ImageID)
		e.int32(v.RootBoneID)
		e.string(v.Shader)
	default:
		panic("wire: nil component")
	}
}

func decodeComponent(d *decoder) scene.Component {
	disc := d.string()
	if d.err != nil {
		return nil
	}
	switch disc {
	case discMeshRef:
		return scene.MeshRef{MeshID: d.int32()}
	case discMaterialRef:
		return scene.MaterialRef{ImageID: d.int32(), Shader: d.string()}
	case discSkinnedMaterialRef:
		return scene.SkinnedMaterialRef{ImageID: d.int32(), RootBoneID: d.int32(), Shader: d.string()}
	default:
		d.err = scene.ErrUnknownComponent.WithDetails(disc)
		return nil
	}
}

func encodeMesh(e *encoder, m scene.MeshAsset) {
	e.string(m.Name)
	e.int32(m.ID)
	e.int32(int32(len(m.Vertices)))
	for _, v := range m.Vertices {
		e.vec3(v)
	}
	e.int32(int32(len(m.Triangles)))
	for _, i := range m.Triangles {
		e.int32(i)
	}
	e.int32(int32(len(m.Normals)))
	for _, v := range m.Normals {
		e.vec3(v)
	}
	e.int32(int32(len(m.UV)))
	for _, v := range m.UV {
		e.vec2(v)
	}
}

func decodeMesh(d *decoder) scene.MeshAsset {
	m := scene.MeshAsset{
		Name: d.string(),
		ID:   d.int32(),
	}
	m.Vertices = decodeVec3s(d)
	n := d.count(sizeInt32)
	m.Triangles = make([]int32, n)
	for i := range m.Triangles {
		m.Triangles[i] = d.int32()
	}
	m.Normals = decodeVec3s(d)
	n = d.count(sizeVec2)
	m.UV = make([]mgl32.Vec2, n)
	for i := range m.UV {
		m.UV[i] = d.vec2()
	}
	return m
}

func decodeVec3s(d *decoder) []mgl32.Vec3 {
	n := d.count(sizeVec3)
	out := make([]mgl32.Vec3, n)
	for i := range out {
		out[i] = d.vec3()
	}
	return out
}

func encodeImage(e *encoder, img scene.ImageAsset) {
	e.string(img.Name)
	e.int32(img.ID)
	e.int32(img.Width)
	e.int32(img.Height)
	e.int32(int32(img.Format))
	e.bool(img.AlphaIsTransparency)
	e.int32(img.AnisoLevel)
	e.int32(int32(img.Filter))
	e.int32(int32(img.Wrap))
	e.raw(img.Pixels)
}

func decodeImage(d *decoder) scene.ImageAsset {
	return scene.ImageAsset{
		Name:                d.string(),
		ID:                  d.int32(),
		Width:               d.int32(),
		Height:              d.int32(),
		Format:              scene.PixelFormat(d.int32()),
		AlphaIsTransparency: d.bool(),
		AnisoLevel:          d.int32(),
		Filter:              scene.FilterMode(d.int32()),
		Wrap:                scene.WrapMode(d.int32()),
		Pixels:              d.raw(),
	}
}
