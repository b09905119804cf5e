package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/engine"
)

const sampleYAML = `
images:
  - id: 20
    name: Checker
    width: 2
    height: 2
    format: 4
    fill: [255, 0, 0, 255]
  - id: 21
    name: Baked
    width: 1
    height: 1
    format: 4
    readable: false
    fill: [1, 2, 3, 4]
meshes:
  - id: 10
    name: Triangle
    vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
    triangles: [0, 1, 2]
nodes:
  - id: 1
    name: Root
    position: [1, 2, 3]
    mesh: 10
    material: {shader: Standard, image: 20}
    children:
      - id: 2
        name: Child
        active: false
        material: {shader: Unlit, image: 21}
  - id: 3
    name: Hidden
    hidden: true
`

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	if len(spec.Images) != 2 || len(spec.Meshes) != 1 || len(spec.Nodes) != 2 {
		t.Fatalf("counts = %d/%d/%d, want 2/1/2", len(spec.Images), len(spec.Meshes), len(spec.Nodes))
	}
	if got := spec.Nodes[0].Children[0].Material.Shader; got != "Unlit" {
		t.Errorf("child shader = %q, want %q", got, "Unlit")
	}
}

func TestNewScene(t *testing.T) {
	spec, err := ParseSpec([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("ParseSpec: %v", err)
	}
	s, err := NewScene(spec)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	roots := s.Roots()
	if len(roots) != 2 {
		t.Fatalf("roots = %d, want 2", len(roots))
	}

	root := roots[0]
	if got := root.Transform().Position; got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("position = %v, want [1 2 3]", got)
	}
	r := root.Renderers()
	if r.Mesh == nil || r.Mesh.ID != 10 {
		t.Fatalf("mesh = %+v, want id 10", r.Mesh)
	}
	if r.Material == nil || r.Material.Image == nil || !r.Material.Image.Readable {
		t.Fatalf("material = %+v, want readable image", r.Material)
	}
	if got := len(r.Material.Image.Asset.Pixels); got != 16 {
		t.Errorf("filled pixels = %d, want 16", got)
	}

	child := root.Children()[0]
	if child.Active() {
		t.Error("child should be inactive")
	}
	img := child.Renderers().Material.Image
	if img.Readable || len(img.Asset.Pixels) != 0 {
		t.Error("non-readable image should not expose pixels")
	}
	if !roots[1].Hidden() {
		t.Error("node 3 should be hidden")
	}
}

func TestNewScene_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec SceneSpec
	}{
		{"zero node id", SceneSpec{Nodes: []NodeSpec{{Name: "x"}}}},
		{"duplicate node", SceneSpec{Nodes: []NodeSpec{{ID: 1}, {ID: 1}}}},
		{"unknown mesh", SceneSpec{Nodes: []NodeSpec{{ID: 1, Mesh: 5}}}},
		{"unknown image", SceneSpec{Nodes: []NodeSpec{{ID: 1, Material: &MaterialSpec{Image: 9}}}}},
		{"bad position", SceneSpec{Nodes: []NodeSpec{{ID: 1, Position: []float32{1}}}}},
		{"bad triangle", SceneSpec{Meshes: []MeshSpec{{ID: 1, Vertices: [][]float32{{0, 0, 0}}, Triangles: []int32{3}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScene(&tt.spec); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestScene_ApplyTransform(t *testing.T) {
	s, err := NewScene(&SceneSpec{Nodes: []NodeSpec{{ID: 1, Name: "a"}}})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	moved := scene.IdentityTransform()
	moved.Position = mgl32.Vec3{4, 5, 6}

	if !s.ApplyTransform(1, moved) {
		t.Fatal("ApplyTransform(1) = false")
	}
	n, _ := s.Node(1)
	if !n.Transform().Equal(moved) {
		t.Errorf("transform = %+v, want %+v", n.Transform(), moved)
	}
	if s.ApplyTransform(99, moved) {
		t.Error("ApplyTransform on unknown id should report false")
	}
}

func TestScene_Replace(t *testing.T) {
	s, err := NewScene(&SceneSpec{Nodes: []NodeSpec{{ID: 1}}})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	old := s.Roots()

	if err := s.Replace(&SceneSpec{Nodes: []NodeSpec{{ID: 2}, {ID: 3}}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if len(s.Roots()) != 2 {
		t.Errorf("roots = %d, want 2", len(s.Roots()))
	}
	if old[0].ID() != 1 {
		t.Error("previously fetched roots should be unaffected")
	}
	if err := s.Replace(&SceneSpec{Nodes: []NodeSpec{{ID: 0}}}); err == nil {
		t.Error("invalid replacement should fail")
	}
	if len(s.Roots()) != 2 {
		t.Error("failed replace should keep the current tree")
	}
}

func TestLoadSpecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadSpecFile(path)
	if err != nil {
		t.Fatalf("LoadSpecFile: %v", err)
	}
	if len(spec.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(spec.Nodes))
	}
	if _, err := LoadSpecFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestReadback(t *testing.T) {
	spec, _ := ParseSpec([]byte(sampleYAML))
	s, err := NewScene(spec)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	rb := NewReadback(s, time.Millisecond)

	if rb.Supports(scene.FormatDXT1) {
		t.Error("DXT1 should not be supported")
	}
	if !rb.Supports(scene.FormatRGBA32) {
		t.Error("RGBA32 should be supported")
	}

	type result struct {
		px  []byte
		err error
	}
	ch := make(chan result, 2)
	done := func(px []byte, err error) { ch <- result{px, err} }

	rb.Request(context.Background(), scene.ImageAsset{ID: 21}, done)
	select {
	case r := <-ch:
		if r.err != nil {
			t.Fatalf("readback error: %v", r.err)
		}
		if string(r.px) != string([]byte{1, 2, 3, 4}) {
			t.Errorf("pixels = %v, want [1 2 3 4]", r.px)
		}
	case <-time.After(time.Second):
		t.Fatal("readback did not complete")
	}

	rb.Request(context.Background(), scene.ImageAsset{ID: 20}, done)
	select {
	case r := <-ch:
		if r.err == nil {
			t.Error("readable image has no gpu data; expected error")
		}
	case <-time.After(time.Second):
		t.Fatal("readback did not complete")
	}
}

func TestReadback_Cancelled(t *testing.T) {
	s, _ := NewScene(&SceneSpec{})
	rb := NewReadback(s, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{}, 1)
	rb.Request(ctx, scene.ImageAsset{ID: 1}, func([]byte, error) { called <- struct{}{} })
	cancel()

	select {
	case <-called:
		t.Error("done should not run after cancellation")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHost_Objects(t *testing.T) {
	h := NewHost(nil)
	a := h.NewObject(1, "a").(*Object)
	b := h.NewObject(2, "b").(*Object)

	b.SetParent(a)
	if b.Parent() != a || len(a.Children()) != 1 {
		t.Fatal("b should be a child of a")
	}
	b.SetParent(nil)
	if b.Parent() != nil || len(a.Children()) != 0 {
		t.Fatal("b should be detached")
	}

	b.SetParent(a)
	a.Destroy()
	if !a.Destroyed() {
		t.Error("a should be destroyed")
	}
	if b.Parent() != nil {
		t.Error("children of a destroyed object move to the root")
	}
	if _, ok := h.Object(1); ok {
		t.Error("destroyed object should be removed from the host")
	}
	created, destroyed, reparents := h.Stats()
	if created != 2 || destroyed != 1 || reparents != 3 {
		t.Errorf("Stats() = %d/%d/%d, want 2/1/3", created, destroyed, reparents)
	}
}

func TestHost_NewImage(t *testing.T) {
	lib := NewLibrary()
	lib.Add(scene.ImageAsset{Name: "Brick", Width: 1, Height: 1, Pixels: []byte{9, 9, 9, 9}})
	h := NewHost(lib)

	img, err := h.NewImage(scene.ImageAsset{ID: 5, Name: "Brick"})
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	if got := img.(*Image).Asset; got.ID != 5 || len(got.Pixels) != 4 {
		t.Errorf("resolved asset = %+v", got)
	}

	_, err = h.NewImage(scene.ImageAsset{ID: 6, Name: "Missing"})
	if !errors.Is(err, engine.ErrImageNotFound) {
		t.Errorf("err = %v, want ErrImageNotFound", err)
	}

	if _, err := h.NewImage(scene.ImageAsset{ID: 7, Pixels: []byte{1}}); err != nil {
		t.Errorf("image with pixels: %v", err)
	}
}

func TestHost_NewMesh(t *testing.T) {
	h := NewHost(nil)
	if _, err := h.NewMesh(scene.MeshAsset{ID: 1, Vertices: make([]mgl32.Vec3, 3), Triangles: []int32{0, 1, 2}}); err != nil {
		t.Errorf("valid mesh: %v", err)
	}
	if _, err := h.NewMesh(scene.MeshAsset{ID: 2, Triangles: []int32{0}}); err == nil {
		t.Error("out-of-range index should fail")
	}
}

func TestEditQueue(t *testing.T) {
	q := NewEditQueue()
	if q.PollEdits() != nil {
		t.Error("empty queue should poll nil")
	}

	first := scene.IdentityTransform()
	second := scene.IdentityTransform()
	second.Position = mgl32.Vec3{1, 0, 0}

	q.Push(scene.TransformDelta{NodeID: 2, Transform: first})
	q.Push(scene.TransformDelta{NodeID: 1, Transform: first})
	q.Push(scene.TransformDelta{NodeID: 2, Transform: second})

	edits := q.PollEdits()
	if len(edits) != 2 {
		t.Fatalf("edits = %d, want 2", len(edits))
	}
	if edits[0].NodeID != 2 || !edits[0].Transform.Equal(second) {
		t.Errorf("edits[0] = %+v, want node 2 with latest transform", edits[0])
	}
	if edits[1].NodeID != 1 {
		t.Errorf("edits[1].NodeID = %d, want 1", edits[1].NodeID)
	}
	if q.PollEdits() != nil {
		t.Error("queue should be empty after poll")
	}
}

func TestLoadLibraryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	lib, err := LoadLibraryFile(path)
	if err != nil {
		t.Fatalf("LoadLibraryFile: %v", err)
	}
	img, ok := lib.Lookup("Checker")
	if !ok {
		t.Fatal("Checker not in library")
	}
	if len(img.Pixels) != 16 {
		t.Errorf("Checker pixels = %d, want 16", len(img.Pixels))
	}
	if _, ok := lib.Lookup("Triangle"); ok {
		t.Error("meshes must not enter the library")
	}
}
