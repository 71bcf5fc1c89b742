package ws

import (
	"chat-wire/domain"
	"encoding/json"
)

// Wire envelope types. Everything crossing the socket is a tagged
// envelope so clients can dispatch on Type without guessing.
const (
	TypeSendMessage = "sendMessage" // client -> server
	TypeAck         = "ack"         // server -> submitting client only
	TypeError       = "error"       // server -> submitting client only
	TypeNewMessage  = "newMessage"  // server -> receiver connection only
	TypeOnlineUsers = "onlineUsers" // server -> every active connection
)

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SendMessagePayload is the inbound submit frame.
type SendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text,omitempty"`
	Image      string `json:"image,omitempty"`
}

type OnlineUsersPayload struct {
	Online []string `json:"online"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func envelope(kind string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: kind, Payload: raw}, nil
}

func newMessageEnvelope(message domain.Message) (Envelope, error) {
	return envelope(TypeNewMessage, message)
}

func onlineUsersEnvelope(online []string) (Envelope, error) {
	return envelope(TypeOnlineUsers, OnlineUsersPayload{Online: online})
}

func ackEnvelope(message domain.Message) (Envelope, error) {
	return envelope(TypeAck, message)
}

func errorEnvelope(message string) Envelope {
	env, _ := envelope(TypeError, ErrorPayload{Message: message})
	return env
}
