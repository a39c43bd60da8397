package ws

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Frame is the envelope of every inbound client message. The op selects
// the payload shape; the raw frame is decoded a second time into the
// op-specific request struct.
type Frame struct {
	Op string `json:"op" validate:"required"`
}

const (
	opGameCreate = "game.create"
	opGameJoin   = "game.join"
	opGameMove   = "game.move"
	opGameReplay = "game.replay"
	opGameLeave  = "game.leave"

	opChatSend   = "chat.send"
	opChatEdit   = "chat.edit"
	opChatReact  = "chat.react"
	opChatRead   = "chat.read"
	opChatTyping = "chat.typing"

	opPresenceOnline  = "presence.online"
	opPresenceOffline = "presence.offline"
)

type gameCreateRequest struct {
	Game       string `json:"game" validate:"required,oneof=tictactoe snakesladders"`
	RoomID     string `json:"roomId"`
	Size       int    `json:"size"`
	Difficulty string `json:"difficulty"`
}

type gameRoomRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type gameMoveRequest struct {
	RoomID string `json:"roomId" validate:"required"`
	Cell   int    `json:"cell"`
}

type chatSendRequest struct {
	To          string `json:"toUsername" validate:"required"`
	TempID      string `json:"tempId"`
	Body        string `json:"message" validate:"required"`
	MessageType string `json:"messageType"`
	FileName    string `json:"fileName"`
	MediaRef    string `json:"mediaRef"`
	MimeType    string `json:"mimeType"`
	ReplyText   string `json:"replyText"`
	ReplySender string `json:"replySenderName"`
}

type chatEditRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Body      string `json:"message" validate:"required"`
}

type chatReactRequest struct {
	MessageID string `json:"messageId" validate:"required"`
	Reaction  string `json:"reaction"`
}

type chatReadRequest struct {
	Peer   string `json:"peerUsername" validate:"required"`
	ReadAt int64  `json:"readAt"`
}

type chatTypingRequest struct {
	To     string `json:"toUsername" validate:"required"`
	Typing bool   `json:"typing"`
}
