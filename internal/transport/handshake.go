package transport

// Control tokens exchanged as text messages.
const (
	TokenHello   = "Hello"
	TokenWelcome = "Welcome"
	TokenBye     = "Bye"
)

// PeerState is the handshake state of a routing identity.
type PeerState uint8

const (
	StateUnverified PeerState = iota
	StateVerified
	// StateClosed is terminal: the identity was rejected or said Bye, and
	// frames still buffered from its connection are dropped until it is
	// removed.
	StateClosed
)

func (s PeerState) String() string {
	switch s {
	case StateVerified:
		return "verified"
	case StateClosed:
		return "closed"
	default:
		return "unverified"
	}
}

// Verdict is what the router must do with an observed frame.
type Verdict uint8

const (
	// VerdictWelcome: reply with the Welcome token.
	VerdictWelcome Verdict = iota + 1
	// VerdictData: classify the frame and deliver it.
	VerdictData
	// VerdictBye: the peer is leaving; close its connection.
	VerdictBye
	// VerdictIgnore: drop the frame and keep the connection as it is.
	VerdictIgnore
	// VerdictViolation: drop the frame and close the connection.
	VerdictViolation
)

func (v Verdict) String() string {
	switch v {
	case VerdictWelcome:
		return "welcome"
	case VerdictData:
		return "data"
	case VerdictBye:
		return "bye"
	case VerdictIgnore:
		return "ignore"
	case VerdictViolation:
		return "violation"
	default:
		return "unknown"
	}
}

// Sessions tracks the handshake state of every identity seen by a router.
// It is owned by a single goroutine.
type Sessions struct {
	states map[PeerID]PeerState
}

// NewSessions returns an empty table.
func NewSessions() *Sessions {
	return &Sessions{states: make(map[PeerID]PeerState)}
}

// Observe advances the state machine for id with one frame and returns the
// action to take. An unknown id starts Unverified; a closed id stays closed.
func (s *Sessions) Observe(id PeerID, text bool, data []byte) Verdict {
	switch s.states[id] {
	case StateClosed:
		return VerdictIgnore
	case StateUnverified:
		if text && string(data) == TokenHello {
			s.states[id] = StateVerified
			return VerdictWelcome
		}
		s.states[id] = StateClosed
		return VerdictViolation
	}

	if !text {
		return VerdictData
	}
	switch string(data) {
	case TokenBye:
		s.states[id] = StateClosed
		return VerdictBye
	case TokenHello:
		return VerdictWelcome
	default:
		return VerdictIgnore
	}
}

// State returns the state of id; unknown ids are Unverified.
func (s *Sessions) State(id PeerID) PeerState {
	return s.states[id]
}

// Close marks id closed. Only Remove takes it out of that state.
func (s *Sessions) Close(id PeerID) {
	s.states[id] = StateClosed
}

// Remove forgets id. Call it once the connection is gone.
func (s *Sessions) Remove(id PeerID) {
	delete(s.states, id)
}

// Verified returns the number of verified identities.
func (s *Sessions) Verified() int {
	n := 0
	for _, st := range s.states {
		if st == StateVerified {
			n++
		}
	}
	return n
}
