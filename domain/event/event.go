// Package event defines the outbound payloads the coordinator emits to
// topics and private queues, mirroring the state of the domain packages.
package event

// Event is any payload accepted by the dispatcher. The wire
// discriminator lives in each payload's Type field.
type Event interface {
	EventType() string
}

// PresenceTopic is the single global broadcast address for user status.
const PresenceTopic = "user-status"

// RoomTopic is the broadcast address of one game room.
func RoomTopic(code string) string {
	return "room." + code
}

// ErrorEvent is delivered privately to the acting user when an
// operation is rejected. Rejections are never broadcast.
type ErrorEvent struct {
	Type    string `json:"type"`
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}

func (e ErrorEvent) EventType() string { return "error" }

// NewError builds the private rejection payload.
func NewError(roomID, message string) ErrorEvent {
	return ErrorEvent{Type: "error", RoomID: roomID, Message: message}
}
