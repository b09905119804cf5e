package memory

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/scenelink/internal/core/scene"
)

// SceneSpec is the file form of a source scene.
type SceneSpec struct {
	Images []ImageSpec `yaml:"images"`
	Meshes []MeshSpec  `yaml:"meshes"`
	Nodes  []NodeSpec  `yaml:"nodes"`
}

// NodeSpec describes one node and its subtree.
type NodeSpec struct {
	ID       int32     `yaml:"id"`
	Name     string    `yaml:"name"`
	Active   *bool     `yaml:"active,omitempty"`
	Hidden   bool      `yaml:"hidden,omitempty"`
	Position []float32 `yaml:"position,omitempty"`
	Rotation []float32 `yaml:"rotation,omitempty"` // x, y, z, w
	Scale    []float32 `yaml:"scale,omitempty"`

	Mesh     int32         `yaml:"mesh,omitempty"`
	Material *MaterialSpec `yaml:"material,omitempty"`
	Skinned  *SkinnedSpec  `yaml:"skinned,omitempty"`

	Children []NodeSpec `yaml:"children,omitempty"`
}

// MaterialSpec binds a shader and an optional image id.
type MaterialSpec struct {
	Shader string `yaml:"shader"`
	Image  int32  `yaml:"image,omitempty"`
}

// SkinnedSpec binds a skinned renderer.
type SkinnedSpec struct {
	Shader   string `yaml:"shader"`
	Image    int32  `yaml:"image,omitempty"`
	RootBone int32  `yaml:"root_bone,omitempty"`
}

// MeshSpec describes geometry.
type MeshSpec struct {
	ID        int32       `yaml:"id"`
	Name      string      `yaml:"name"`
	Vertices  [][]float32 `yaml:"vertices"`
	Triangles []int32     `yaml:"triangles"`
	Normals   [][]float32 `yaml:"normals,omitempty"`
	UV        [][]float32 `yaml:"uv,omitempty"`
}

// ImageSpec describes an image. Pixels is base64; Fill repeats one pixel
// over Width*Height when Pixels is empty.
type ImageSpec struct {
	ID                  int32  `yaml:"id"`
	Name                string `yaml:"name"`
	Width               int32  `yaml:"width"`
	Height              int32  `yaml:"height"`
	Format              int32  `yaml:"format"`
	AlphaIsTransparency bool   `yaml:"alpha_is_transparency,omitempty"`
	AnisoLevel          int32  `yaml:"aniso_level,omitempty"`
	Filter              int32  `yaml:"filter,omitempty"`
	Wrap                int32  `yaml:"wrap,omitempty"`
	Readable            *bool  `yaml:"readable,omitempty"`
	Pixels              string `yaml:"pixels,omitempty"`
	Fill                []int  `yaml:"fill,omitempty,flow"`
}

// LoadSpecFile reads a scene description from a YAML file.
func LoadSpecFile(path string) (*SceneSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses a YAML scene description.
func ParseSpec(data []byte) (*SceneSpec, error) {
	var spec SceneSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return &spec, nil
}

func (s ImageSpec) asset() (scene.ImageAsset, error) {
	a := scene.ImageAsset{
		ID:                  s.ID,
		Name:                s.Name,
		Width:               s.Width,
		Height:              s.Height,
		Format:              scene.PixelFormat(s.Format),
		AlphaIsTransparency: s.AlphaIsTransparency,
		AnisoLevel:          s.AnisoLevel,
		Filter:              scene.FilterMode(s.Filter),
		Wrap:                scene.WrapMode(s.Wrap),
	}
	switch {
	case s.Pixels != "":
		px, err := base64.StdEncoding.DecodeString(s.Pixels)
		if err != nil {
			return a, fmt.Errorf("image %d: decode pixels: %w", s.ID, err)
		}
		a.Pixels = px
	case len(s.Fill) > 0:
		n := int(s.Width) * int(s.Height)
		if n < 0 {
			return a, fmt.Errorf("image %d: negative size", s.ID)
		}
		px := make([]byte, len(s.Fill))
		for i, v := range s.Fill {
			if v < 0 || v > 255 {
				return a, fmt.Errorf("image %d: fill value %d out of range", s.ID, v)
			}
			px[i] = byte(v)
		}
		a.Pixels = make([]byte, 0, n*len(px))
		for i := 0; i < n; i++ {
			a.Pixels = append(a.Pixels, px...)
		}
	}
	return a, nil
}

func (s ImageSpec) readable() bool {
	return s.Readable == nil || *s.Readable
}

func (s MeshSpec) asset() (scene.MeshAsset, error) {
	a := scene.MeshAsset{ID: s.ID, Name: s.Name, Triangles: s.Triangles}
	var err error
	if a.Vertices, err = vec3s(s.Vertices); err != nil {
		return a, fmt.Errorf("mesh %d vertices: %w", s.ID, err)
	}
	if a.Normals, err = vec3s(s.Normals); err != nil {
		return a, fmt.Errorf("mesh %d normals: %w", s.ID, err)
	}
	for _, uv := range s.UV {
		if len(uv) != 2 {
			return a, fmt.Errorf("mesh %d uv: want 2 components, got %d", s.ID, len(uv))
		}
		a.UV = append(a.UV, mgl32.Vec2{uv[0], uv[1]})
	}
	for _, idx := range s.Triangles {
		if idx < 0 || int(idx) >= len(a.Vertices) {
			return a, fmt.Errorf("mesh %d: triangle index %d out of range", s.ID, idx)
		}
	}
	return a, nil
}

func vec3s(in [][]float32) ([]mgl32.Vec3, error) {
	out := make([]mgl32.Vec3, 0, len(in))
	for _, v := range in {
		if len(v) != 3 {
			return nil, fmt.Errorf("want 3 components, got %d", len(v))
		}
		out = append(out, mgl32.Vec3{v[0], v[1], v[2]})
	}
	return out, nil
}

func (s NodeSpec) transform() (scene.Transform, error) {
	t := scene.IdentityTransform()
	switch len(s.Position) {
	case 0:
	case 3:
		t.Position = mgl32.Vec3{s.Position[0], s.Position[1], s.Position[2]}
	default:
		return t, fmt.Errorf("node %d: position needs 3 components", s.ID)
	}
	switch len(s.Rotation) {
	case 0:
	case 4:
		t.Rotation = mgl32.Quat{V: mgl32.Vec3{s.Rotation[0], s.Rotation[1], s.Rotation[2]}, W: s.Rotation[3]}
	default:
		return t, fmt.Errorf("node %d: rotation needs 4 components", s.ID)
	}
	switch len(s.Scale) {
	case 0:
	case 3:
		t.Scale = mgl32.Vec3{s.Scale[0], s.Scale[1], s.Scale[2]}
	default:
		return t, fmt.Errorf("node %d: scale needs 3 components", s.ID)
	}
	return t, nil
}

// LoadLibraryFile builds a Library from the images section of a scene
// description. Nodes and meshes in the file are ignored.
func LoadLibraryFile(path string) (*Library, error) {
	spec, err := LoadSpecFile(path)
	if err != nil {
		return nil, err
	}
	lib := NewLibrary()
	for _, is := range spec.Images {
		img, err := is.asset()
		if err != nil {
			return nil, err
		}
		lib.Add(img)
	}
	return lib, nil
}
