package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/engine"
)

// Library resolves images by name for assets that arrive without pixels.
type Library struct {
	mu     sync.RWMutex
	images map[string]scene.ImageAsset
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{images: make(map[string]scene.ImageAsset)}
}

// Add registers an image under its name.
func (l *Library) Add(img scene.ImageAsset) {
	l.mu.Lock()
	l.images[img.Name] = img
	l.mu.Unlock()
}

// Lookup returns the image registered under name.
func (l *Library) Lookup(name string) (scene.ImageAsset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.images[name]
	return img, ok
}

// Mesh is an instantiated mesh.
type Mesh struct {
	Asset scene.MeshAsset
}

// Name implements engine.Mesh.
func (m *Mesh) Name() string { return m.Asset.Name }

// Image is an instantiated image.
type Image struct {
	Asset scene.ImageAsset
}

// Name implements engine.Image.
func (i *Image) Name() string { return i.Asset.Name }

// Object is a mirrored node.
type Object struct {
	host      *Host
	id        int32
	name      string
	parent    *Object
	children  []*Object
	active    bool
	transform scene.Transform
	mesh      engine.Mesh
	material  *engine.MaterialBinding
	skinned   *engine.SkinnedBinding
	destroyed bool
}

func (o *Object) ID() int32                         { return o.id }
func (o *Object) Name() string                      { return o.name }
func (o *Object) Parent() *Object                   { return o.parent }
func (o *Object) Active() bool                      { return o.active }
func (o *Object) Transform() scene.Transform        { return o.transform }
func (o *Object) Mesh() engine.Mesh                 { return o.mesh }
func (o *Object) Material() *engine.MaterialBinding { return o.material }
func (o *Object) Skinned() *engine.SkinnedBinding   { return o.skinned }
func (o *Object) Destroyed() bool                   { return o.destroyed }

// Children returns the attached children in attach order.
func (o *Object) Children() []*Object {
	return append([]*Object(nil), o.children...)
}

// SetName implements engine.Object.
func (o *Object) SetName(name string) { o.name = name }

// SetParent implements engine.Object.
func (o *Object) SetParent(parent engine.Object) {
	var p *Object
	if parent != nil {
		p = parent.(*Object)
	}
	if p == o.parent {
		return
	}
	if o.parent != nil {
		o.parent.removeChild(o)
	}
	o.parent = p
	if p != nil {
		p.children = append(p.children, o)
	}
	o.host.reparents++
}

func (o *Object) removeChild(c *Object) {
	for i, x := range o.children {
		if x == c {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// SetActive implements engine.Object.
func (o *Object) SetActive(active bool) { o.active = active }

// SetTransform implements engine.Object.
func (o *Object) SetTransform(t scene.Transform) { o.transform = t }

// SetMesh implements engine.Object.
func (o *Object) SetMesh(m engine.Mesh) { o.mesh = m }

// SetMaterial implements engine.Object.
func (o *Object) SetMaterial(b *engine.MaterialBinding) { o.material = b }

// SetSkinned implements engine.Object.
func (o *Object) SetSkinned(b *engine.SkinnedBinding) { o.skinned = b }

// Destroy implements engine.Object. Children are detached to the root.
func (o *Object) Destroy() {
	if o.destroyed {
		return
	}
	if o.parent != nil {
		o.parent.removeChild(o)
		o.parent = nil
	}
	for _, c := range o.children {
		c.parent = nil
	}
	o.children = nil
	o.destroyed = true
	delete(o.host.objects, o.id)
	o.host.destroyed++
}

// Host is an in-memory engine.Host. It is not safe for concurrent use.
type Host struct {
	library   *Library
	objects   map[int32]*Object
	created   int
	destroyed int
	reparents int
}

// NewHost returns a host that resolves pixel-less images through library,
// which may be nil.
func NewHost(library *Library) *Host {
	return &Host{
		library: library,
		objects: make(map[int32]*Object),
	}
}

// NewObject implements engine.Host.
func (h *Host) NewObject(id int32, name string) engine.Object {
	o := &Object{
		host:      h,
		id:        id,
		name:      name,
		active:    true,
		transform: scene.IdentityTransform(),
	}
	h.objects[id] = o
	h.created++
	return o
}

// NewMesh implements engine.Host.
func (h *Host) NewMesh(asset scene.MeshAsset) (engine.Mesh, error) {
	for _, idx := range asset.Triangles {
		if idx < 0 || int(idx) >= len(asset.Vertices) {
			return nil, fmt.Errorf("mesh %d: triangle index %d out of range", asset.ID, idx)
		}
	}
	return &Mesh{Asset: asset}, nil
}

// NewImage implements engine.Host.
func (h *Host) NewImage(asset scene.ImageAsset) (engine.Image, error) {
	if !asset.NeedsLookup() {
		return &Image{Asset: asset}, nil
	}
	if h.library != nil {
		if found, ok := h.library.Lookup(asset.Name); ok {
			found.ID = asset.ID
			return &Image{Asset: found}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", engine.ErrImageNotFound, asset.Name)
}

// Object returns the live object for id.
func (h *Host) Object(id int32) (*Object, bool) {
	o, ok := h.objects[id]
	return o, ok
}

// Len returns the number of live objects.
func (h *Host) Len() int { return len(h.objects) }

// Roots returns live objects without a parent, ordered by id.
func (h *Host) Roots() []*Object {
	var out []*Object
	for _, o := range h.objects {
		if o.parent == nil {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Stats returns lifetime counters: objects created, destroyed and re-parented.
func (h *Host) Stats() (created, destroyed, reparents int) {
	return h.created, h.destroyed, h.reparents
}
