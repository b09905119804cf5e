package engine

import (
	"context"
	"errors"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// ErrImageNotFound is returned by Host.NewImage when an image without pixel
// data cannot be resolved by name.
var ErrImageNotFound = errors.New("engine: image not found by name")

// SourceScene is the live scene walked by the producer once per tick.
// Both methods are called from the producer tick goroutine only.
type SourceScene interface {
	// Roots returns the top-level nodes in hierarchy order.
	Roots() []SourceNode
	// ApplyTransform moves node id. It reports false if id is unknown.
	ApplyTransform(id int32, t scene.Transform) bool
}

// SourceNode is one node of the live scene.
type SourceNode interface {
	ID() int32
	Name() string
	Active() bool
	// Hidden reports a node excluded from the hierarchy, together with its
	// subtree.
	Hidden() bool
	Transform() scene.Transform
	Children() []SourceNode
	Renderers() Renderers
}

// Renderers lists the render descriptors attached to a node. Nil fields are
// absent.
type Renderers struct {
	Mesh     *scene.MeshAsset
	Material *SourceMaterial
	Skinned  *SourceSkinned
}

// SourceImage is an image referenced by a material.
type SourceImage struct {
	// Asset carries Pixels only when Readable is true.
	Asset    scene.ImageAsset
	Readable bool
}

// SourceMaterial is a mesh renderer's material.
type SourceMaterial struct {
	Shader string
	Image  *SourceImage
}

// SourceSkinned is a skinned renderer's material and root bone.
type SourceSkinned struct {
	Shader     string
	Image      *SourceImage
	RootBoneID int32
}

// Readback fetches pixel data that is not readable on the CPU.
type Readback interface {
	// Supports reports whether format can be read back at all.
	Supports(format scene.PixelFormat) bool
	// Request starts an asynchronous read. done is invoked exactly once,
	// from any goroutine, unless ctx is cancelled first.
	Request(ctx context.Context, img scene.ImageAsset, done func(pixels []byte, err error))
}

// Host constructs mirrored objects and resources on the consumer. It is used
// from the consumer tick goroutine only.
type Host interface {
	NewObject(id int32, name string) Object
	NewMesh(asset scene.MeshAsset) (Mesh, error)
	// NewImage instantiates an image. Assets without pixels are resolved by
	// name; a miss returns ErrImageNotFound.
	NewImage(asset scene.ImageAsset) (Image, error)
}

// Object is a mirrored node owned by the consumer.
type Object interface {
	SetName(name string)
	// SetParent attaches the object under parent, or to the root when nil.
	SetParent(parent Object)
	SetActive(active bool)
	SetTransform(t scene.Transform)
	// SetMesh attaches geometry; nil detaches it.
	SetMesh(m Mesh)
	// SetMaterial binds a material; nil detaches it.
	SetMaterial(b *MaterialBinding)
	// SetSkinned binds a skinned renderer; nil detaches it.
	SetSkinned(b *SkinnedBinding)
	Destroy()
}

// Mesh is an instantiated geometry resource.
type Mesh interface {
	Name() string
}

// Image is an instantiated image resource.
type Image interface {
	Name() string
}

// MaterialBinding is the render state of a mesh renderer.
type MaterialBinding struct {
	Shader string
	Image  Image // nil = no texture
}

// SkinnedBinding is the render state of a skinned renderer.
type SkinnedBinding struct {
	Shader   string
	Image    Image  // nil = no texture
	RootBone Object // nil = unresolved
}

// EditSource reports transforms changed by local interaction since the last
// poll. Called from the consumer tick goroutine.
type EditSource interface {
	PollEdits() []scene.TransformDelta
}
