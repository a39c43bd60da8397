package event

import "gamechat/domain/chat"

// IncomingMessage is delivered to the recipient's private queue.
type IncomingMessage struct {
	Type        string `json:"type"`
	MessageID   string `json:"messageId"`
	From        string `json:"fromUsername"`
	Body        string `json:"message"`
	MessageType string `json:"messageType"`
	FileName    string `json:"fileName,omitempty"`
	MediaRef    string `json:"mediaRef,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	ReplyText   string `json:"replyText,omitempty"`
	ReplySender string `json:"replySenderName,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

func (e IncomingMessage) EventType() string { return "message" }

// IncomingMessageFrom mirrors a stored message for delivery.
func IncomingMessageFrom(m chat.Message) IncomingMessage {
	return IncomingMessage{
		Type:        "message",
		MessageID:   m.ID,
		From:        m.From,
		Body:        m.Body,
		MessageType: string(m.Type),
		FileName:    m.FileName,
		MediaRef:    m.MediaRef,
		MimeType:    m.MimeType,
		ReplyText:   m.ReplyText,
		ReplySender: m.ReplySender,
		CreatedAt:   m.CreatedAt.UnixMilli(),
	}
}

// SendAck correlates a delivery acknowledgment with the client-supplied
// temporary id.
type SendAck struct {
	Type      string `json:"type"`
	TempID    string `json:"tempId"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"`
}

func (e SendAck) EventType() string { return "send_ack" }

// MessageEdited goes to both participants after a successful edit.
type MessageEdited struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Body      string `json:"message"`
	EditedBy  string `json:"editedBy"`
	EditedAt  int64  `json:"editedAt"`
}

func (e MessageEdited) EventType() string { return "message_edit" }

// EditAck reports the outcome of an edit to the editor only. Reason is
// set on failure for client UX.
type EditAck struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
}

func (e EditAck) EventType() string { return "edit_ack" }

// MessageReaction goes to both participants. An empty reaction clears.
type MessageReaction struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
	Reaction  string `json:"reaction"`
	By        string `json:"fromUsername"`
}

func (e MessageReaction) EventType() string { return "message_reaction" }

// ReadReceipt goes to the peer whose messages were read.
type ReadReceipt struct {
	Type   string `json:"type"`
	Reader string `json:"readerUsername"`
	Peer   string `json:"peerUsername"`
	ReadAt int64  `json:"readAt"`
}

func (e ReadReceipt) EventType() string { return "read_receipt" }

// Typing is a pure relay to the recipient, never persisted.
type Typing struct {
	Type   string `json:"type"`
	From   string `json:"fromUsername"`
	Typing bool   `json:"typing"`
}

func (e Typing) EventType() string { return "typing" }

// UserStatus reports one user going online or offline. LastSeenAt is
// set for offline only.
type UserStatus struct {
	Type       string `json:"type"`
	Username   string `json:"username"`
	Status     string `json:"status"` // online or offline
	LastSeenAt int64  `json:"lastSeenAt,omitempty"`
}

func (e UserStatus) EventType() string { return "user_status" }
