package cipherlink

import (
	"encoding/json"
	"time"
)

// FrameType discriminates the frames exchanged with the relay.
type FrameType string

// Frame types routed over the session transport. The relay forwards
// message content opaquely; only these envelope types are visible to it.
const (
	// FrameConnected is dispatched locally after a (re)connection opens.
	FrameConnected FrameType = "connected"

	FrameMessage        FrameType = "message"
	FrameMessageSent    FrameType = "message_sent"
	FrameMessageDeleted FrameType = "message_deleted"

	FramePresence          FrameType = "presence"
	FramePresenceSubscribe FrameType = "presence_subscribe"
	FrameTyping            FrameType = "typing"
	FrameDeliveryReceipt   FrameType = "delivery_receipt"
	FrameReadReceipt       FrameType = "read_receipt"

	FrameCallOffer        FrameType = "call_offer"
	FrameCallAnswer       FrameType = "call_answer"
	FrameCallICECandidate FrameType = "call_ice_candidate"
	FrameCallEnd          FrameType = "call_end"

	FrameFriendRequest  FrameType = "friend_request"
	FrameFriendAccepted FrameType = "friend_accepted"
	FrameFriendRejected FrameType = "friend_rejected"

	// FramePing/FramePong carry the heartbeat. Pongs are consumed by the
	// session itself and never reach handlers.
	FramePing FrameType = "ping"
	FramePong FrameType = "pong"

	// FrameError carries transport-level failures, including the terminal
	// connectivity error after the reconnect budget is spent.
	FrameError FrameType = "error"
)

// Frame is the unit exchanged over the session transport.
type Frame struct {
	Type      FrameType       `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewFrame builds a frame of the given type with payload marshalled to
// JSON and the timestamp set to now.
func NewFrame(t FrameType, payload interface{}) (*Frame, error) {
	frame := &Frame{Type: t, Timestamp: time.Now().UTC()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &EncodingError{Field: "payload", Err: err}
		}
		frame.Payload = data
	}
	return frame, nil
}

// DecodePayload unmarshals the frame payload into v.
func (f *Frame) DecodePayload(v interface{}) error {
	if len(f.Payload) == 0 {
		return ErrMalformedMessage
	}
	if err := json.Unmarshal(f.Payload, v); err != nil {
		return &EncodingError{Field: "payload", Err: err}
	}
	return nil
}

// MessagePayload carries an encrypted message to or from a peer. Content
// is the sealed EncryptedMessage; the relay stores and routes it without
// ever decrypting.
type MessagePayload struct {
	// ClientMessageID is assigned by the sender for acknowledgement
	// matching before the relay allocates a durable ID.
	ClientMessageID string            `json:"client_message_id,omitempty"`
	MessageID       string            `json:"message_id,omitempty"`
	Sender          string            `json:"sender,omitempty"`
	Recipient       string            `json:"recipient,omitempty"`
	Content         *EncryptedMessage `json:"content"`
	// ExpiryType tags disappearing messages ("none", "on_read", "timed").
	ExpiryType string `json:"expiry_type,omitempty"`
}

// MessageSentPayload acknowledges a sent message back to its author.
type MessageSentPayload struct {
	MessageID       string `json:"message_id"`
	ClientMessageID string `json:"client_message_id,omitempty"`
	Status          string `json:"status"`
}

// ReceiptPayload reports a delivery or read event for a message.
type ReceiptPayload struct {
	MessageID string `json:"message_id"`
	Sender    string `json:"sender,omitempty"`
	Reader    string `json:"reader,omitempty"`
}

// TypingPayload signals a peer's typing state.
type TypingPayload struct {
	Sender   string `json:"sender,omitempty"`
	IsTyping bool   `json:"is_typing"`
}

// PresencePayload reports a peer going online or offline.
type PresencePayload struct {
	Username string `json:"username"`
	IsOnline bool   `json:"is_online"`
}

// PresenceSubscribePayload asks the relay for presence updates on peers.
type PresenceSubscribePayload struct {
	Usernames []string `json:"usernames"`
}

// CallSignalPayload carries call signaling between peers. Signal holds
// the sealed SDP or ICE material as an EncryptedMessage; the media
// transport itself is out of scope here.
type CallSignalPayload struct {
	CallID    string            `json:"call_id"`
	Sender    string            `json:"sender,omitempty"`
	Recipient string            `json:"recipient,omitempty"`
	Signal    *EncryptedMessage `json:"signal,omitempty"`
}

// FriendEventPayload carries friend-request lifecycle events.
type FriendEventPayload struct {
	Sender    string `json:"sender,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorPayload is dispatched on FrameError frames.
type ErrorPayload struct {
	Message string `json:"message"`
	// Terminal marks the connectivity-exhausted error: the session will
	// not reconnect on its own and is now disconnected.
	Terminal bool `json:"terminal,omitempty"`
}
