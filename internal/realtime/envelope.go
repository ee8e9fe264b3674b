// Package realtime implements the collaborative session channel: envelope
// routing, participant tracking and chat persistence bridging.
package realtime

import (
	"encoding/json"

	"github.com/inneratlas/backend/internal/model/session"
)

// Inbound envelope types.
const (
	TypeJoin           = "join"
	TypeLeave          = "leave"
	TypeMessage        = "message"
	TypePartUpdate     = "part_update"
	TypeProtocolUpdate = "protocol_update"
	TypeNoteUpdate     = "note_update"
)

// Outbound event types.
const (
	EventNewMessage        = "new_message"
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
	EventPartUpdated       = "part_updated"
	EventProtocolUpdated   = "protocol_updated"
	EventNoteUpdated       = "note_updated"
	EventError             = "error"
)

// Envelope is the single wire format for all realtime traffic. Data is opaque
// to this layer for state updates; it is only parsed for chat messages.
type Envelope struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	UserID    string          `json:"userId"`
	UserName  string          `json:"userName,omitempty"`
	Role      string          `json:"role,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// messagePayload is the parsed data of a "message" envelope. Content is a
// pointer so field presence can be distinguished from an empty string; empty
// content is still routed.
type messagePayload struct {
	Content     *string `json:"content"`
	MessageType string  `json:"messageType,omitempty"`
}

// Presence is the derived participant set for one session.
type Presence struct {
	Therapist bool `json:"therapist"`
	Client    bool `json:"client"`
}

type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type newMessageEvent struct {
	Type    string              `json:"type"`
	Message session.ChatMessage `json:"message"`
}

type participantJoinedEvent struct {
	Type         string   `json:"type"`
	Participants Presence `json:"participants"`
}

type participantLeftEvent struct {
	Type string       `json:"type"`
	Role session.Role `json:"role"`
}

func newErrorEvent(message string) errorEvent {
	return errorEvent{Type: EventError, Message: message}
}

func unmarshalPayload(data json.RawMessage, v any) error {
	return json.Unmarshal(data, v)
}

// stateUpdateEvent builds the renamed broadcast for an opaque state update.
// The payload field name depends on the update kind.
func stateUpdateEvent(inboundType string, data json.RawMessage) map[string]any {
	switch inboundType {
	case TypePartUpdate:
		return map[string]any{"type": EventPartUpdated, "part": data}
	case TypeNoteUpdate:
		return map[string]any{"type": EventNoteUpdated, "note": data}
	default:
		return map[string]any{"type": EventProtocolUpdated, "data": data}
	}
}
