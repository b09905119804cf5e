package scene

// ComponentKind identifies a render capability attached to a node.
type ComponentKind uint8

const (
	KindMesh ComponentKind = iota + 1
	KindMaterial
	KindSkinnedMaterial
)

// String returns the wire discriminator of the kind.
func (k ComponentKind) String() string {
	switch k {
	case KindMesh:
		return "MeshRef"
	case KindMaterial:
		return "MaterialRef"
	case KindSkinnedMaterial:
		return "SkinnedMaterialRef"
	default:
		return "Unknown"
	}
}

// Component is a render capability record. The set of implementations is
// closed: MeshRef, MaterialRef and SkinnedMaterialRef.
type Component interface {
	Kind() ComponentKind
	component()
}

// MeshRef attaches geometry by mesh id.
type MeshRef struct {
	MeshID int32
}

// MaterialRef binds a shader and an optional main image (0 = none).
type MaterialRef struct {
	ImageID int32
	Shader  string
}

// SkinnedMaterialRef binds a shader and image to a skinned renderer rooted at
// another node.
type SkinnedMaterialRef struct {
	ImageID    int32
	Shader     string
	RootBoneID int32
}

func (MeshRef) Kind() ComponentKind            { return KindMesh }
func (MaterialRef) Kind() ComponentKind        { return KindMaterial }
func (SkinnedMaterialRef) Kind() ComponentKind { return KindSkinnedMaterial }

func (MeshRef) component()            {}
func (MaterialRef) component()        {}
func (SkinnedMaterialRef) component() {}
