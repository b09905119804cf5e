package consumer

// Authority is the set of nodes edited locally during the current tick.
// While a node is claimed, snapshot transforms for it are not applied.
type Authority struct {
	claimed map[int32]struct{}
}

// NewAuthority returns an empty set.
func NewAuthority() *Authority {
	return &Authority{claimed: make(map[int32]struct{})}
}

// Claim marks id as locally authoritative until the next Reset.
func (a *Authority) Claim(id int32) {
	a.claimed[id] = struct{}{}
}

// Claimed reports whether id is claimed.
func (a *Authority) Claimed(id int32) bool {
	_, ok := a.claimed[id]
	return ok
}

// Len returns the number of claimed nodes.
func (a *Authority) Len() int { return len(a.claimed) }

// Reset releases every claim.
func (a *Authority) Reset() {
	clear(a.claimed)
}
