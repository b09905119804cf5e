package consumer

import (
	"errors"
	"sort"
	"sync/atomic"

	"github.com/yndnr/scenelink/internal/core/scene"
	"github.com/yndnr/scenelink/internal/engine"
	"github.com/yndnr/scenelink/internal/telemetry/logger"
	"github.com/yndnr/scenelink/internal/telemetry/metric"
)

// mirrored is the consumer-side record of one node and what has been
// applied to its object.
type mirrored struct {
	obj       engine.Object
	name      string
	active    bool
	transform scene.Transform
	parentID  int32 // applied parent; 0 = root

	meshID int32 // attached mesh; 0 = none

	hasMaterial   bool
	materialState bindingState

	hasSkinned   bool
	skinnedState bindingState
	rootBoneID   int32 // applied root bone; 0 = none
}

type bindingState struct {
	shader  string
	imageID int32 // bound image; 0 = no texture
}

// pendingSkin is a skinned binding whose root bone is created later in the
// same Message.
type pendingSkin struct {
	node *mirrored
	ref  scene.SkinnedMaterialRef
}

// pendingParent is a parent created later in the same Message.
type pendingParent struct {
	node     *mirrored
	parentID int32
}

// NodeSummary describes one mirrored node for the admin API.
type NodeSummary struct {
	ID       int32  `json:"id"`
	Name     string `json:"name"`
	ParentID int32  `json:"parent_id"`
	Active   bool   `json:"active"`
	MeshID   int32  `json:"mesh_id,omitempty"`
	ImageID  int32  `json:"image_id,omitempty"`
	Shader   string `json:"shader,omitempty"`
}

// Summary is an immutable view of the mirror.
type Summary struct {
	Nodes         []NodeSummary `json:"nodes"`
	Meshes        int           `json:"meshes"`
	Images        int           `json:"images"`
	PendingImages int           `json:"pending_images"`
	Unresolved    int           `json:"unresolved"`
	Messages      uint64        `json:"messages"`
	Deltas        uint64        `json:"deltas"`
}

// Reconciler applies snapshot Messages to a mirror built through an
// engine.Host. It is owned by the consumer tick goroutine.
type Reconciler struct {
	host      engine.Host
	authority *Authority
	log       logger.Logger
	metrics   *metric.Registry

	nodes  map[int32]*mirrored
	meshes map[int32]engine.Mesh
	images map[int32]engine.Image
	// pendingImages are pixel-less images whose name lookup missed.
	pendingImages map[int32]scene.ImageAsset
	// failedMeshes were rejected by the host and are never retried.
	failedMeshes map[int32]struct{}

	messages, deltas uint64
	unresolved       int

	summary atomic.Pointer[Summary]
}

// NewReconciler creates an empty mirror. authority may be nil.
func NewReconciler(host engine.Host, authority *Authority, log logger.Logger, metrics *metric.Registry) *Reconciler {
	if authority == nil {
		authority = NewAuthority()
	}
	if log == nil {
		log = logger.Component("reconciler")
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	r := &Reconciler{
		host:          host,
		authority:     authority,
		log:           log,
		metrics:       metrics,
		nodes:         make(map[int32]*mirrored),
		meshes:        make(map[int32]engine.Mesh),
		images:        make(map[int32]engine.Image),
		pendingImages: make(map[int32]scene.ImageAsset),
		failedMeshes:  make(map[int32]struct{}),
	}
	r.publish()
	return r
}

// Has reports whether id is currently mirrored.
func (r *Reconciler) Has(id int32) bool {
	_, ok := r.nodes[id]
	return ok
}

// Len returns the number of mirrored nodes.
func (r *Reconciler) Len() int { return len(r.nodes) }

// Summary returns the view published after the last Apply or ApplyDelta.
// Safe for concurrent use.
func (r *Reconciler) Summary() Summary {
	return *r.summary.Load()
}

// Apply makes the mirror match msg. After Apply the set of mirrored ids
// equals the set of node ids in msg.
func (r *Reconciler) Apply(msg scene.Message) {
	before := make([]int32, 0, len(r.nodes))
	for id := range r.nodes {
		before = append(before, id)
	}
	present := msg.NodeIDs()

	r.materialize(msg)

	r.unresolved = 0
	var (
		pendingParents []pendingParent
		pendingSkins   []pendingSkin
	)
	for _, snap := range msg.Nodes {
		m, created := r.lookupOrCreate(snap)
		if skin, ok := r.applyComponents(m, snap, present); ok {
			pendingSkins = append(pendingSkins, skin)
		}
		if !r.applyParent(m, snap, present, created) {
			pendingParents = append(pendingParents, pendingParent{node: m, parentID: snap.ParentID})
		}
		if created || m.active != snap.Active {
			m.obj.SetActive(snap.Active)
			m.active = snap.Active
		}
		if !r.authority.Claimed(snap.ID) && (created || !m.transform.Equal(snap.Transform)) {
			m.obj.SetTransform(snap.Transform)
			m.transform = snap.Transform
		}
	}

	// Forward references to nodes created later in this Message.
	for _, pp := range pendingParents {
		pp.node.obj.SetParent(r.nodes[pp.parentID].obj)
		pp.node.parentID = pp.parentID
	}
	for _, ps := range pendingSkins {
		r.bindSkinned(ps.node, ps.ref, r.nodes[ps.ref.RootBoneID].obj)
	}

	destroyed := 0
	for _, id := range before {
		if _, ok := present[id]; ok {
			continue
		}
		m := r.nodes[id]
		m.obj.Destroy()
		delete(r.nodes, id)
		destroyed++
	}

	r.messages++
	r.metrics.MessagesApplied.Inc()
	r.metrics.NodesDestroyed.Add(float64(destroyed))
	r.metrics.MirroredNodes.Set(float64(len(r.nodes)))
	r.metrics.UnresolvedRefs.Set(float64(r.unresolved + len(r.pendingImages)))
	r.publish()
}

// ApplyDelta moves a mirrored node. Unknown ids are ignored.
func (r *Reconciler) ApplyDelta(td scene.TransformDelta) bool {
	m, ok := r.nodes[td.NodeID]
	if !ok {
		r.metrics.DeltasApplied.WithLabelValues("unknown_node").Inc()
		return false
	}
	m.obj.SetTransform(td.Transform)
	m.transform = td.Transform
	r.deltas++
	r.metrics.DeltasApplied.WithLabelValues("applied").Inc()
	r.publish()
	return true
}

// moveLocal records a local edit of a mirrored node.
func (r *Reconciler) moveLocal(td scene.TransformDelta) {
	m, ok := r.nodes[td.NodeID]
	if !ok {
		return
	}
	if !m.transform.Equal(td.Transform) {
		m.obj.SetTransform(td.Transform)
		m.transform = td.Transform
	}
}

// materialize instantiates assets introduced by msg. The first asset seen
// for an id wins.
func (r *Reconciler) materialize(msg scene.Message) {
	for _, a := range msg.Meshes {
		if _, ok := r.meshes[a.ID]; ok {
			continue
		}
		if _, ok := r.failedMeshes[a.ID]; ok {
			continue
		}
		mesh, err := r.host.NewMesh(a)
		if err != nil {
			r.failedMeshes[a.ID] = struct{}{}
			r.log.Warn("mesh rejected by host", "mesh", a.ID, "name", a.Name, "error", err)
			continue
		}
		r.meshes[a.ID] = mesh
	}

	for _, a := range msg.Images {
		if _, ok := r.images[a.ID]; ok {
			continue
		}
		if _, ok := r.pendingImages[a.ID]; ok {
			continue
		}
		r.pendingImages[a.ID] = a
	}
	// Name lookups that missed earlier are retried every Message.
	for id, a := range r.pendingImages {
		img, err := r.host.NewImage(a)
		if err != nil {
			if !errors.Is(err, engine.ErrImageNotFound) {
				r.log.Warn("image rejected by host", "image", id, "name", a.Name, "error", err)
			}
			continue
		}
		r.images[id] = img
		delete(r.pendingImages, id)
	}
}

func (r *Reconciler) lookupOrCreate(snap scene.NodeSnapshot) (*mirrored, bool) {
	if m, ok := r.nodes[snap.ID]; ok {
		if m.name != snap.Name {
			m.obj.SetName(snap.Name)
			m.name = snap.Name
		}
		return m, false
	}
	m := &mirrored{
		obj:  r.host.NewObject(snap.ID, snap.Name),
		name: snap.Name,
	}
	r.nodes[snap.ID] = m
	return m, true
}

// applyComponents attaches the capabilities listed in snap and detaches the
// ones that disappeared. It returns a pending skin when the root bone is part
// of the Message but not created yet.
func (r *Reconciler) applyComponents(m *mirrored, snap scene.NodeSnapshot, present map[int32]struct{}) (pendingSkin, bool) {
	var (
		meshRef     *scene.MeshRef
		materialRef *scene.MaterialRef
		skinnedRef  *scene.SkinnedMaterialRef
	)
	for _, c := range snap.Components {
		switch c := c.(type) {
		case scene.MeshRef:
			meshRef = &c
		case scene.MaterialRef:
			materialRef = &c
		case scene.SkinnedMaterialRef:
			skinnedRef = &c
		}
	}

	switch {
	case meshRef == nil:
		if m.meshID != 0 {
			m.obj.SetMesh(nil)
			m.meshID = 0
		}
	case m.meshID != meshRef.MeshID:
		if mesh, ok := r.meshes[meshRef.MeshID]; ok {
			m.obj.SetMesh(mesh)
			m.meshID = meshRef.MeshID
		} else {
			if m.meshID != 0 {
				m.obj.SetMesh(nil)
				m.meshID = 0
			}
			r.unresolved++
		}
	}

	if materialRef == nil {
		if m.hasMaterial {
			m.obj.SetMaterial(nil)
			m.hasMaterial = false
			m.materialState = bindingState{}
		}
	} else {
		img, state := r.resolveImage(materialRef.ImageID, materialRef.Shader)
		if !m.hasMaterial || m.materialState != state {
			m.obj.SetMaterial(&engine.MaterialBinding{Shader: materialRef.Shader, Image: img})
			m.hasMaterial = true
			m.materialState = state
		}
	}

	if skinnedRef == nil {
		if m.hasSkinned {
			m.obj.SetSkinned(nil)
			m.hasSkinned = false
			m.skinnedState = bindingState{}
			m.rootBoneID = 0
		}
		return pendingSkin{}, false
	}

	var bone engine.Object
	if id := skinnedRef.RootBoneID; id != 0 {
		if _, ok := present[id]; !ok {
			r.unresolved++
		} else if b, ok := r.nodes[id]; ok {
			bone = b.obj
		} else {
			return pendingSkin{node: m, ref: *skinnedRef}, true
		}
	}
	r.bindSkinned(m, *skinnedRef, bone)
	return pendingSkin{}, false
}

func (r *Reconciler) bindSkinned(m *mirrored, ref scene.SkinnedMaterialRef, bone engine.Object) {
	img, state := r.resolveImage(ref.ImageID, ref.Shader)
	boneID := int32(0)
	if bone != nil {
		boneID = ref.RootBoneID
	}
	if m.hasSkinned && m.skinnedState == state && m.rootBoneID == boneID {
		return
	}
	m.obj.SetSkinned(&engine.SkinnedBinding{Shader: ref.Shader, Image: img, RootBone: bone})
	m.hasSkinned = true
	m.skinnedState = state
	m.rootBoneID = boneID
}

// resolveImage returns the bound image for id, or nil while it is
// unresolved.
func (r *Reconciler) resolveImage(id int32, shader string) (engine.Image, bindingState) {
	state := bindingState{shader: shader}
	if id == 0 {
		return nil, state
	}
	img, ok := r.images[id]
	if !ok {
		r.unresolved++
		return nil, state
	}
	state.imageID = id
	return img, state
}

// applyParent attaches m to its parent. It reports false when the parent is
// part of the Message but has not been created yet.
func (r *Reconciler) applyParent(m *mirrored, snap scene.NodeSnapshot, present map[int32]struct{}, created bool) bool {
	want := snap.ParentID
	if want == snap.ID {
		want = 0
	}
	if want != 0 {
		if _, ok := present[want]; !ok {
			r.unresolved++
			want = 0
		} else if _, ok := r.nodes[want]; !ok {
			if m.parentID != 0 {
				m.obj.SetParent(nil)
				m.parentID = 0
			}
			return false
		}
	}
	if !created && m.parentID == want {
		return true
	}
	if want == 0 {
		if m.parentID != 0 {
			m.obj.SetParent(nil)
		}
	} else {
		m.obj.SetParent(r.nodes[want].obj)
	}
	m.parentID = want
	return true
}

func (r *Reconciler) publish() {
	s := &Summary{
		Nodes:         make([]NodeSummary, 0, len(r.nodes)),
		Meshes:        len(r.meshes),
		Images:        len(r.images),
		PendingImages: len(r.pendingImages),
		Unresolved:    r.unresolved,
		Messages:      r.messages,
		Deltas:        r.deltas,
	}
	for id, m := range r.nodes {
		ns := NodeSummary{
			ID:       id,
			Name:     m.name,
			ParentID: m.parentID,
			Active:   m.active,
			MeshID:   m.meshID,
		}
		switch {
		case m.hasMaterial:
			ns.ImageID, ns.Shader = m.materialState.imageID, m.materialState.shader
		case m.hasSkinned:
			ns.ImageID, ns.Shader = m.skinnedState.imageID, m.skinnedState.shader
		}
		s.Nodes = append(s.Nodes, ns)
	}
	sort.Slice(s.Nodes, func(i, j int) bool { return s.Nodes[i].ID < s.Nodes[j].ID })
	r.summary.Store(s)
}
