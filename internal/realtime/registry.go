package realtime

import (
	"sync"

	"github.com/inneratlas/backend/internal/model/session"
)

// Peer is one live outbound channel to a connected participant. Send reports
// whether the event was accepted; a false return means the peer is gone or too
// slow and has been disconnected.
type Peer interface {
	Send(v any) bool
	Close()
}

type memberKey struct {
	role   session.Role
	userID string
}

// Registry is the single source of truth mapping session id to the set of
// attached peers, each tagged with (userID, role). Empty session entries are
// removed immediately.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]map[memberKey]Peer
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]map[memberKey]Peer)}
}

// Add registers a peer under (sessionID, role, userID). A prior peer for the
// exact same tuple is replaced, not stacked, and returned so the caller can
// close it.
func (r *Registry) Add(sessionID string, role session.Role, userID string, p Peer) (replaced Peer) {
	key := memberKey{role: role, userID: userID}

	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.sessions[sessionID]
	if members == nil {
		members = make(map[memberKey]Peer)
		r.sessions[sessionID] = members
	}

	if prev, ok := members[key]; ok && prev != p {
		replaced = prev
	}
	members[key] = p
	return replaced
}

// Remove deletes the entry for (sessionID, role, userID) if it is held by p.
// The instance check keeps a superseded channel's late cleanup from evicting
// its replacement. Reports whether an entry was removed.
func (r *Registry) Remove(sessionID string, role session.Role, userID string, p Peer) bool {
	key := memberKey{role: role, userID: userID}

	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	current, ok := members[key]
	if !ok || current != p {
		return false
	}

	delete(members, key)
	if len(members) == 0 {
		delete(r.sessions, sessionID)
	}
	return true
}

// Peers returns every peer attached to the session.
func (r *Registry) Peers(sessionID string) []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.sessions[sessionID]
	peers := make([]Peer, 0, len(members))
	for _, p := range members {
		peers = append(peers, p)
	}
	return peers
}

// PeersExcept returns every peer attached to the session other than except.
func (r *Registry) PeersExcept(sessionID string, except Peer) []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := r.sessions[sessionID]
	peers := make([]Peer, 0, len(members))
	for _, p := range members {
		if p == except {
			continue
		}
		peers = append(peers, p)
	}
	return peers
}

// Participants derives the instantaneous participant set for a session: a role
// is present iff at least one channel for that role is open.
func (r *Registry) Participants(sessionID string) Presence {
	r.mu.Lock()
	defer r.mu.Unlock()

	var presence Presence
	for key := range r.sessions[sessionID] {
		switch key.role {
		case session.RoleTherapist:
			presence.Therapist = true
		case session.RoleClient:
			presence.Client = true
		}
	}
	return presence
}

// SessionCount reports how many sessions currently have attached peers.
func (r *Registry) SessionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
