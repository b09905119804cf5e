package scene

import "github.com/go-gl/mathgl/mgl32"

// PixelFormat is the engine-defined texture format tag.
type PixelFormat int32

// Common pixel formats. Other values pass through untouched.
const (
	FormatAlpha8 PixelFormat = 1
	FormatRGB24  PixelFormat = 3
	FormatRGBA32 PixelFormat = 4
	FormatARGB32 PixelFormat = 5
	FormatDXT1   PixelFormat = 10
	FormatDXT5   PixelFormat = 12
)

// FilterMode is the sampling filter of an image.
type FilterMode int32

const (
	FilterPoint FilterMode = iota
	FilterBilinear
	FilterTrilinear
)

// WrapMode is the addressing mode of an image.
type WrapMode int32

const (
	WrapRepeat WrapMode = iota
	WrapClamp
	WrapMirror
	WrapMirrorOnce
)

// MeshAsset is immutable geometry, sent at most once per producer session.
type MeshAsset struct {
	ID        int32
	Name      string
	Vertices  []mgl32.Vec3
	Triangles []int32
	Normals   []mgl32.Vec3
	UV        []mgl32.Vec2
}

// ImageAsset is an immutable image, sent at most once per producer session.
// Empty Pixels means the consumer must resolve the image by Name.
type ImageAsset struct {
	ID                  int32
	Name                string
	Width               int32
	Height              int32
	Format              PixelFormat
	AlphaIsTransparency bool
	AnisoLevel          int32
	Filter              FilterMode
	Wrap                WrapMode
	Pixels              []byte
}

// NeedsLookup reports whether the image carries no pixel data.
func (a ImageAsset) NeedsLookup() bool {
	return len(a.Pixels) == 0
}
