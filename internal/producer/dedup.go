package producer

// AssetKind selects one of the two disjoint dedup sets.
type AssetKind uint8

const (
	AssetMesh AssetKind = iota
	AssetImage
	numAssetKinds
)

func (k AssetKind) String() string {
	switch k {
	case AssetMesh:
		return "mesh"
	case AssetImage:
		return "image"
	default:
		return "unknown"
	}
}

// Cache remembers which assets were already emitted in this producer
// session. Entries are only ever added; Reset starts a new session.
type Cache struct {
	sent [numAssetKinds]map[int32]struct{}
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.Reset()
	return c
}

// ShouldSend reports whether the asset has not been emitted yet.
func (c *Cache) ShouldSend(kind AssetKind, id int32) bool {
	if kind >= numAssetKinds {
		return false
	}
	_, ok := c.sent[kind][id]
	return !ok
}

// MarkSent records the asset as emitted.
func (c *Cache) MarkSent(kind AssetKind, id int32) {
	if kind >= numAssetKinds {
		return
	}
	c.sent[kind][id] = struct{}{}
}

// Len returns the number of emitted assets of kind.
func (c *Cache) Len(kind AssetKind) int {
	if kind >= numAssetKinds {
		return 0
	}
	return len(c.sent[kind])
}

// Reset forgets every asset.
func (c *Cache) Reset() {
	for i := range c.sent {
		c.sent[i] = make(map[int32]struct{})
	}
}

// assetSet is a scratch set of asset ids per kind.
type assetSet [numAssetKinds]map[int32]struct{}

func newAssetSet() assetSet {
	var a assetSet
	a.reset()
	return a
}

func (a *assetSet) reset() {
	for i := range a {
		if len(a[i]) == 0 && a[i] != nil {
			continue
		}
		a[i] = make(map[int32]struct{})
	}
}

func (a assetSet) has(kind AssetKind, id int32) bool {
	_, ok := a[kind][id]
	return ok
}

func (a assetSet) add(kind AssetKind, id int32) {
	a[kind][id] = struct{}{}
}
