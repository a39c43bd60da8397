// Package chat defines the direct-message model and its validation
// rules. Durability lives in the repositories package.
package chat

import (
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"

	"gamechat/errors"
)

// EditWindow is the duration after creation during which the sender may
// revise a message body. Measured against wall clock, not prior edits.
const EditWindow = 15 * time.Minute

const maxReactionRunes = 16

type MessageType string

const (
	TypeText  MessageType = "text"
	TypeImage MessageType = "image"
	TypeVideo MessageType = "video"
	TypeVoice MessageType = "voice"
	TypeFile  MessageType = "file"
)

// Message is one direct message between two users. The ID and CreatedAt
// are assigned by the store on save.
type Message struct {
	ID          string
	From        string
	To          string
	Body        string
	Type        MessageType
	FileName    string
	MediaRef    string
	MimeType    string
	ReplyText   string
	ReplySender string
	Reaction    string
	Edited      bool
	EditedAt    time.Time
	CreatedAt   time.Time
}

// CanEdit enforces the edit policy: only the original sender, only
// within the fixed window from creation.
func (m Message) CanEdit(editor string, now time.Time) error {
	if editor == "" || editor != m.From {
		return errors.ErrEditNotAllowed
	}
	if now.Sub(m.CreatedAt) > EditWindow {
		return errors.ErrEditWindowExpired
	}
	return nil
}

// Involves reports whether username is a participant of this message.
func (m Message) Involves(username string) bool {
	return username != "" && (username == m.From || username == m.To)
}

// ValidReaction accepts an empty string (clear), or 1 to 16 runes of
// symbol-class characters. Letters, digits, spaces and control
// characters disqualify the whole input.
func ValidReaction(symbol string) bool {
	if symbol == "" {
		return true
	}
	count := 0
	for _, r := range symbol {
		if unicode.IsLetter(r) || unicode.IsDigit(r) ||
			unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
		count++
	}
	return count <= maxReactionRunes
}

// DeriveType trusts the declared type when present and otherwise falls
// back to sniffing the declared mime string of the attachment.
func DeriveType(declared MessageType, mimeStr string) MessageType {
	switch declared {
	case TypeText, TypeImage, TypeVideo, TypeVoice, TypeFile:
		return declared
	}
	if mt := mimetype.Lookup(strings.TrimSpace(mimeStr)); mt != nil {
		switch {
		case strings.HasPrefix(mt.String(), "image/"):
			return TypeImage
		case strings.HasPrefix(mt.String(), "video/"):
			return TypeVideo
		case strings.HasPrefix(mt.String(), "audio/"):
			return TypeVoice
		default:
			return TypeFile
		}
	}
	if mimeStr != "" {
		return TypeFile
	}
	return TypeText
}

// Preview is the push-notification body for a message: the full text
// for plain messages, a type-specific line otherwise.
func Preview(msgType MessageType, body string) string {
	switch msgType {
	case TypeImage:
		return "Sent an image"
	case TypeVideo:
		return "Sent a video"
	case TypeVoice:
		return "Sent a voice message"
	case TypeFile:
		return "Sent a file"
	default:
		return body
	}
}
