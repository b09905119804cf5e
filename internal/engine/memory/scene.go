package memory

import (
	"fmt"
	"sync"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/engine"
)

// Node is a source scene node. Its fields are read and written by the
// producer tick goroutine only.
type Node struct {
	id        int32
	name      string
	active    bool
	hidden    bool
	transform scene.Transform
	renderers engine.Renderers
	children  []*Node
}

func (n *Node) ID() int32                   { return n.id }
func (n *Node) Name() string                { return n.name }
func (n *Node) Active() bool                { return n.active }
func (n *Node) Hidden() bool                { return n.hidden }
func (n *Node) Transform() scene.Transform  { return n.transform }
func (n *Node) Renderers() engine.Renderers { return n.renderers }

// SetTransform moves the node.
func (n *Node) SetTransform(t scene.Transform) { n.transform = t }

// Children implements engine.SourceNode.
func (n *Node) Children() []engine.SourceNode {
	out := make([]engine.SourceNode, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// tree is one immutable build of a SceneSpec.
type tree struct {
	roots []*Node
	index map[int32]*Node
	gpu   map[int32][]byte // pixels of non-readable images
}

// Scene is an in-memory engine.SourceScene. Replace may be called from any
// goroutine; a tick that already fetched the roots keeps walking the old
// tree.
type Scene struct {
	mu   sync.RWMutex
	tree *tree
}

// NewScene builds a scene from spec.
func NewScene(spec *SceneSpec) (*Scene, error) {
	t, err := build(spec)
	if err != nil {
		return nil, err
	}
	return &Scene{tree: t}, nil
}

// Replace swaps in a new description.
func (s *Scene) Replace(spec *SceneSpec) error {
	t, err := build(spec)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tree = t
	s.mu.Unlock()
	return nil
}

// Roots implements engine.SourceScene.
func (s *Scene) Roots() []engine.SourceNode {
	s.mu.RLock()
	t := s.tree
	s.mu.RUnlock()

	out := make([]engine.SourceNode, len(t.roots))
	for i, n := range t.roots {
		out[i] = n
	}
	return out
}

// Node returns the node with id.
func (s *Scene) Node(id int32) (*Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.tree.index[id]
	return n, ok
}

// ApplyTransform implements engine.SourceScene.
func (s *Scene) ApplyTransform(id int32, t scene.Transform) bool {
	n, ok := s.Node(id)
	if !ok {
		return false
	}
	n.transform = t
	return true
}

// Len returns the number of nodes.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tree.index)
}

func (s *Scene) gpuPixels(id int32) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	px, ok := s.tree.gpu[id]
	return px, ok
}

func build(spec *SceneSpec) (*tree, error) {
	if spec == nil {
		spec = &SceneSpec{}
	}
	t := &tree{
		index: make(map[int32]*Node),
		gpu:   make(map[int32][]byte),
	}

	images := make(map[int32]*engine.SourceImage, len(spec.Images))
	for _, is := range spec.Images {
		if is.ID == 0 {
			return nil, fmt.Errorf("image %q: id must be non-zero", is.Name)
		}
		if _, dup := images[is.ID]; dup {
			return nil, fmt.Errorf("image %d: duplicate id", is.ID)
		}
		a, err := is.asset()
		if err != nil {
			return nil, err
		}
		src := &engine.SourceImage{Asset: a, Readable: is.readable()}
		if !src.Readable {
			t.gpu[a.ID] = a.Pixels
			src.Asset.Pixels = nil
		}
		images[is.ID] = src
	}

	meshes := make(map[int32]*scene.MeshAsset, len(spec.Meshes))
	for _, ms := range spec.Meshes {
		if ms.ID == 0 {
			return nil, fmt.Errorf("mesh %q: id must be non-zero", ms.Name)
		}
		if _, dup := meshes[ms.ID]; dup {
			return nil, fmt.Errorf("mesh %d: duplicate id", ms.ID)
		}
		a, err := ms.asset()
		if err != nil {
			return nil, err
		}
		meshes[ms.ID] = &a
	}

	lookupImage := func(id int32) (*engine.SourceImage, error) {
		if id == 0 {
			return nil, nil
		}
		img, ok := images[id]
		if !ok {
			return nil, fmt.Errorf("unknown image %d", id)
		}
		return img, nil
	}

	var add func(ns NodeSpec) (*Node, error)
	add = func(ns NodeSpec) (*Node, error) {
		if ns.ID == 0 {
			return nil, fmt.Errorf("node %q: id must be non-zero", ns.Name)
		}
		if _, dup := t.index[ns.ID]; dup {
			return nil, fmt.Errorf("node %d: duplicate id", ns.ID)
		}
		tr, err := ns.transform()
		if err != nil {
			return nil, err
		}
		n := &Node{
			id:        ns.ID,
			name:      ns.Name,
			active:    ns.Active == nil || *ns.Active,
			hidden:    ns.Hidden,
			transform: tr,
		}
		t.index[n.id] = n

		if ns.Mesh != 0 {
			m, ok := meshes[ns.Mesh]
			if !ok {
				return nil, fmt.Errorf("node %d: unknown mesh %d", ns.ID, ns.Mesh)
			}
			n.renderers.Mesh = m
		}
		if ns.Material != nil {
			img, err := lookupImage(ns.Material.Image)
			if err != nil {
				return nil, fmt.Errorf("node %d material: %w", ns.ID, err)
			}
			n.renderers.Material = &engine.SourceMaterial{Shader: ns.Material.Shader, Image: img}
		}
		if ns.Skinned != nil {
			img, err := lookupImage(ns.Skinned.Image)
			if err != nil {
				return nil, fmt.Errorf("node %d skinned: %w", ns.ID, err)
			}
			n.renderers.Skinned = &engine.SourceSkinned{
				Shader:     ns.Skinned.Shader,
				Image:      img,
				RootBoneID: ns.Skinned.RootBone,
			}
		}

		for _, cs := range ns.Children {
			c, err := add(cs)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, c)
		}
		return n, nil
	}

	for _, ns := range spec.Nodes {
		n, err := add(ns)
		if err != nil {
			return nil, err
		}
		t.roots = append(t.roots, n)
	}
	return t, nil
}
