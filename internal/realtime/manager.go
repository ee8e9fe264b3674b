package realtime

import (
	"context"
	"log"
	"sync"

	"github.com/inneratlas/backend/internal/model/session"
)

// MessageStore is the slice of the persistence layer the manager depends on.
type MessageStore interface {
	CreateMessage(ctx context.Context, sessionID, senderID string, senderRole session.Role, messageType, content string) (session.ChatMessage, error)
}

// membership records what a peer last successfully joined as, so an abrupt
// disconnect can be cleaned up without a leave envelope.
type membership struct {
	sessionID string
	userID    string
	role      session.Role
}

type sessionLock struct {
	sync.Mutex
	refs int
}

// Manager validates and routes every envelope. Envelopes for the same session
// are processed under that session's lock, held across the persistence call in
// the message path, so broadcast order matches processing order per session.
// Unrelated sessions proceed in parallel.
type Manager struct {
	store    MessageStore
	registry *Registry

	mu      sync.Mutex
	members map[Peer]membership
	locks   map[string]*sessionLock
}

// NewManager creates a manager persisting chat messages through store.
func NewManager(store MessageStore) *Manager {
	return &Manager{
		store:    store,
		registry: NewRegistry(),
		members:  make(map[Peer]membership),
		locks:    make(map[string]*sessionLock),
	}
}

// Registry exposes the live connection registry, read by tests and stats.
func (m *Manager) Registry() *Registry {
	return m.registry
}

func (m *Manager) lockSession(sessionID string) *sessionLock {
	m.mu.Lock()
	l := m.locks[sessionID]
	if l == nil {
		l = &sessionLock{}
		m.locks[sessionID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return l
}

func (m *Manager) unlockSession(sessionID string, l *sessionLock) {
	l.Unlock()

	m.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, sessionID)
	}
	m.mu.Unlock()
}

// HandleEnvelope routes one inbound envelope from p. Errors never close the
// connection; they are reported back to p alone.
func (m *Manager) HandleEnvelope(ctx context.Context, p Peer, env Envelope) {
	switch env.Type {
	case TypeJoin:
		m.handleJoin(p, env)
	case TypeLeave:
		m.handleLeave(p, env)
	case TypeMessage:
		m.handleMessage(ctx, p, env)
	case TypePartUpdate, TypeProtocolUpdate, TypeNoteUpdate:
		m.handleStateUpdate(p, env)
	default:
		// Forward compatibility: tolerate event types this server predates.
		log.Printf("[realtime] ignoring unknown envelope type %q session=%s", env.Type, env.SessionID)
	}
}

func (m *Manager) handleJoin(p Peer, env Envelope) {
	role := session.Role(env.Role)
	if env.SessionID == "" || env.UserID == "" || !role.Valid() {
		p.Send(newErrorEvent("join requires sessionId, userId and a valid role"))
		return
	}

	m.mu.Lock()
	prev, joined := m.members[p]
	m.mu.Unlock()
	if joined && prev.sessionID != env.SessionID {
		// One channel belongs to one session; switching requires reconnecting.
		p.Send(newErrorEvent("channel already joined to another session"))
		return
	}

	l := m.lockSession(env.SessionID)
	defer m.unlockSession(env.SessionID, l)

	// A channel holds one (userId, role) pair at a time. Re-identifying drops
	// the prior registry entry, otherwise the channel would receive every
	// broadcast twice and the old role would stay present after disconnect.
	if joined && (prev.role != role || prev.userID != env.UserID) {
		m.registry.Remove(prev.sessionID, prev.role, prev.userID, p)
	}

	replaced := m.registry.Add(env.SessionID, role, env.UserID, p)
	if replaced != nil {
		m.forget(replaced)
		replaced.Close()
	}

	m.mu.Lock()
	m.members[p] = membership{sessionID: env.SessionID, userID: env.UserID, role: role}
	m.mu.Unlock()

	event := participantJoinedEvent{
		Type:         EventParticipantJoined,
		Participants: m.registry.Participants(env.SessionID),
	}
	for _, peer := range m.registry.Peers(env.SessionID) {
		peer.Send(event)
	}

	log.Printf("[realtime] join session=%s user=%s role=%s", env.SessionID, env.UserID, role)
}

func (m *Manager) handleLeave(p Peer, env Envelope) {
	role := session.Role(env.Role)
	if env.SessionID == "" || env.UserID == "" || !role.Valid() {
		p.Send(newErrorEvent("leave requires sessionId, userId and a valid role"))
		return
	}

	l := m.lockSession(env.SessionID)
	defer m.unlockSession(env.SessionID, l)

	// Idempotent: leaving a session the channel never joined is a no-op.
	if !m.registry.Remove(env.SessionID, role, env.UserID, p) {
		return
	}
	m.forget(p)

	event := participantLeftEvent{Type: EventParticipantLeft, Role: role}
	for _, peer := range m.registry.Peers(env.SessionID) {
		peer.Send(event)
	}

	log.Printf("[realtime] leave session=%s user=%s role=%s", env.SessionID, env.UserID, role)
}

func (m *Manager) handleMessage(ctx context.Context, p Peer, env Envelope) {
	if env.SessionID == "" || env.UserID == "" {
		p.Send(newErrorEvent("message requires sessionId and userId"))
		return
	}

	var payload messagePayload
	if len(env.Data) > 0 {
		if err := unmarshalPayload(env.Data, &payload); err != nil {
			p.Send(newErrorEvent("message data is malformed"))
			return
		}
	}
	if payload.Content == nil {
		p.Send(newErrorEvent("message requires data.content"))
		return
	}

	role := m.senderRole(p, env)
	if !role.Valid() {
		// History rows only ever hold the two documented roles.
		p.Send(newErrorEvent("message requires a joined channel or a valid role"))
		return
	}

	l := m.lockSession(env.SessionID)
	defer m.unlockSession(env.SessionID, l)

	// Persist before broadcasting so peers never see history that was lost.
	msg, err := m.store.CreateMessage(ctx, env.SessionID, env.UserID, role, payload.MessageType, *payload.Content)
	if err != nil {
		log.Printf("[realtime] persist message failed session=%s user=%s: %v", env.SessionID, env.UserID, err)
		p.Send(newErrorEvent("message could not be saved"))
		return
	}

	event := newMessageEvent{Type: EventNewMessage, Message: msg}
	echoed := false
	for _, peer := range m.registry.Peers(env.SessionID) {
		if peer == p {
			echoed = true
		}
		peer.Send(event)
	}
	// The sender's echo is the single source of truth for ordering on the
	// client, so it is delivered even if the sender never joined.
	if !echoed {
		p.Send(event)
	}
}

func (m *Manager) handleStateUpdate(p Peer, env Envelope) {
	if env.SessionID == "" || len(env.Data) == 0 {
		p.Send(newErrorEvent(env.Type + " requires sessionId and data"))
		return
	}

	l := m.lockSession(env.SessionID)
	defer m.unlockSession(env.SessionID, l)

	// Sender holds the authoritative local state already; fan out to others.
	event := stateUpdateEvent(env.Type, env.Data)
	for _, peer := range m.registry.PeersExcept(env.SessionID, p) {
		peer.Send(event)
	}
}

// HandleClose performs the implicit leave for an abruptly closed channel. It
// is the only guaranteed cleanup path; explicit leave envelopes may never
// arrive before a hard disconnect.
func (m *Manager) HandleClose(p Peer) {
	m.mu.Lock()
	mb, joined := m.members[p]
	m.mu.Unlock()
	if !joined {
		return
	}

	l := m.lockSession(mb.sessionID)
	defer m.unlockSession(mb.sessionID, l)

	if !m.registry.Remove(mb.sessionID, mb.role, mb.userID, p) {
		m.forget(p)
		return
	}
	m.forget(p)

	event := participantLeftEvent{Type: EventParticipantLeft, Role: mb.role}
	for _, peer := range m.registry.Peers(mb.sessionID) {
		peer.Send(event)
	}

	log.Printf("[realtime] disconnect session=%s user=%s role=%s", mb.sessionID, mb.userID, mb.role)
}

func (m *Manager) forget(p Peer) {
	m.mu.Lock()
	delete(m.members, p)
	m.mu.Unlock()
}

// senderRole resolves the role a chat message is persisted under: the role the
// channel joined with wins over whatever the envelope claims.
func (m *Manager) senderRole(p Peer, env Envelope) session.Role {
	m.mu.Lock()
	mb, joined := m.members[p]
	m.mu.Unlock()
	if joined {
		return mb.role
	}
	return session.Role(env.Role)
}
