// Package wire implements the binary codec for scene messages and transform
// deltas.
//
// All functions are pure: no I/O, no shared state. Encoding is deterministic
// so both ends produce byte-identical output for equal values.
//
// Primitive layout:
//
//	int32    4 bytes little-endian, two's complement
//	float32  4 bytes little-endian IEEE-754
//	bool     1 byte, 0 or 1
//	string   int32 byte length + UTF-8 bytes
//	Vec2/3   2/3 consecutive float32
//	Quat     4 consecutive float32 in x, y, z, w order
//	list     int32 element count + elements (nil and empty are identical)
//
// Message payload:
//
//	[nodes: list<Node>][meshes: list<Mesh>][images: list<Image>]
//	Node  = name, id, parentId, active, position, rotation, scale, list<Component>
//	Mesh  = name, id, list<Vec3> vertices, list<int32> triangles,
//	        list<Vec3> normals, list<Vec2> uv
//	Image = name, id, width, height, format, alphaIsTransparency, anisoLevel,
//	        filter, wrap, bytes
//
// Component = discriminator string followed by the variant fields:
//
//	"MeshRef"            meshId
//	"MaterialRef"        imageId, shader
//	"SkinnedMaterialRef" imageId, rootBoneId, shader
//
// Frames on the transport carry one leading kind byte:
//
//	[1][Message payload]            snapshot
//	[42][nodeId][pos][rot][scale]   transform delta (45 bytes)
package wire
