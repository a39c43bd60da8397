package services

import (
	goerrors "errors"
	"log/slog"
	"sync"
	"time"

	"gamechat/contract"
	"gamechat/domain"
	"gamechat/domain/chat"
	"gamechat/domain/event"
	"gamechat/errors"
	"gamechat/moderation"
	"gamechat/repositories"
	"gamechat/runtime/workers"
)

type pair struct {
	Reader string
	Peer   string
}

// ChatService routes direct messages between two users: persist first,
// then deliver, then acknowledge. Every outcome the sender cares about
// comes back on their private queue.
type ChatService struct {
	log           *slog.Logger
	dispatcher    contract.IDispatcher
	presence      *PresenceService
	messages      repositories.IMessageRepository
	receipts      repositories.IReceiptRepository
	moderator     *moderation.Moderator
	notifications chan<- workers.NotificationRequest
	notifyOnline  bool

	mu       sync.Mutex
	lastRead map[pair]int64
	now      func() time.Time
}

func NewChatService(
	log *slog.Logger,
	dispatcher contract.IDispatcher,
	presence *PresenceService,
	messages repositories.IMessageRepository,
	receipts repositories.IReceiptRepository,
	moderator *moderation.Moderator,
	notifications chan<- workers.NotificationRequest,
	notifyOnline bool,
) *ChatService {
	s := &ChatService{
		log:           log,
		dispatcher:    dispatcher,
		presence:      presence,
		messages:      messages,
		receipts:      receipts,
		moderator:     moderator,
		notifications: notifications,
		notifyOnline:  notifyOnline,
		lastRead:      make(map[pair]int64),
		now:           time.Now,
	}
	s.hydrateReceipts()
	return s
}

// hydrateReceipts reloads the read watermarks persisted by previous
// runs, so monotonicity survives a restart.
func (s *ChatService) hydrateReceipts() {
	if s.receipts == nil {
		return
	}
	stored, err := s.receipts.All()
	if err != nil {
		s.log.Warn("Failed to hydrate read receipts", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, receipt := range stored {
		s.lastRead[pair{Reader: receipt.Reader, Peer: receipt.Peer}] = receipt.ReadAt
	}
}

// Send persists a message and delivers it to the recipient's private
// queue. The sender gets a SendAck carrying their temporary id so the
// client can reconcile its optimistic entry.
func (s *ChatService) Send(from, to, tempID, body string, msgType chat.MessageType, fileName, mediaRef, mimeType, replyText, replySender string) {
	from = domain.NormalizeUsername(from)
	to = domain.NormalizeUsername(to)
	if from == "" || to == "" || body == "" {
		return
	}

	msgType = chat.DeriveType(msgType, mimeType)
	if msgType == chat.TypeText && s.moderator != nil {
		body = s.moderator.Censor(body)
	}

	saved, err := s.messages.Save(chat.Message{
		From:        from,
		To:          to,
		Body:        body,
		Type:        msgType,
		FileName:    fileName,
		MediaRef:    mediaRef,
		MimeType:    mimeType,
		ReplyText:   replyText,
		ReplySender: replySender,
	})
	if err != nil {
		s.log.Error("Failed to persist message", "from", from, "to", to, "error", err)
		s.dispatcher.Send(from, event.SendAck{Type: "send_ack", TempID: tempID, Success: false})
		return
	}

	s.dispatcher.Send(to, event.IncomingMessageFrom(saved))
	s.dispatcher.Send(from, event.SendAck{
		Type:      "send_ack",
		TempID:    tempID,
		Success:   true,
		MessageID: saved.ID,
		CreatedAt: saved.CreatedAt.UnixMilli(),
	})

	if s.notifyOnline || !s.presence.IsOnline(to) {
		s.notify(workers.NotificationRequest{
			Username: to,
			Title:    from,
			Body:     chat.Preview(saved.Type, saved.Body),
			Link:     "/chat/" + from,
		})
	}
}

// Edit rewrites the body of a recent message. Only the sender may edit
// and only inside the edit window; failures come back as a negative ack
// with a human-readable reason.
func (s *ChatService) Edit(editor, messageID, newBody string) {
	editor = domain.NormalizeUsername(editor)
	if messageID == "" || newBody == "" {
		return
	}

	message, err := s.messages.FindByID(messageID)
	if err != nil {
		s.editFailed(editor, messageID, "Message not found.")
		return
	}
	if err := message.CanEdit(editor, s.now()); err != nil {
		reason := "Only the sender can edit a message."
		if goerrors.Is(err, errors.ErrEditWindowExpired) {
			reason = "Message can only be edited within 15 minutes."
		}
		s.editFailed(editor, messageID, reason)
		return
	}

	if message.Type == chat.TypeText && s.moderator != nil {
		newBody = s.moderator.Censor(newBody)
	}
	updated, err := s.messages.UpdateBody(messageID, newBody, s.now().UTC())
	if err != nil {
		s.log.Error("Failed to update message body", "messageId", messageID, "error", err)
		s.editFailed(editor, messageID, "Edit failed.")
		return
	}

	edited := event.MessageEdited{
		Type:      "message_edit",
		MessageID: updated.ID,
		Body:      updated.Body,
		EditedBy:  editor,
		EditedAt:  updated.EditedAt.UnixMilli(),
	}
	s.dispatcher.Send(updated.From, edited)
	s.dispatcher.Send(updated.To, edited)
	s.dispatcher.Send(editor, event.EditAck{Type: "edit_ack", MessageID: updated.ID, Success: true})
}

func (s *ChatService) editFailed(editor, messageID, reason string) {
	s.dispatcher.Send(editor, event.EditAck{
		Type:      "edit_ack",
		MessageID: messageID,
		Success:   false,
		Reason:    reason,
	})
}

// React sets or clears the reaction on a message. Invalid requests are
// dropped without feedback.
func (s *ChatService) React(reactor, messageID, symbol string) {
	reactor = domain.NormalizeUsername(reactor)
	if messageID == "" {
		return
	}

	message, err := s.messages.FindByID(messageID)
	if err != nil {
		s.log.Debug("Reaction on unknown message", "messageId", messageID)
		return
	}
	if !message.Involves(reactor) || !chat.ValidReaction(symbol) {
		s.log.Debug("Reaction rejected", "messageId", messageID, "by", reactor)
		return
	}

	updated, err := s.messages.UpdateReaction(messageID, symbol)
	if err != nil {
		s.log.Error("Failed to update reaction", "messageId", messageID, "error", err)
		return
	}

	reaction := event.MessageReaction{
		Type:      "message_reaction",
		MessageID: updated.ID,
		Reaction:  updated.Reaction,
		By:        reactor,
	}
	s.dispatcher.Send(updated.From, reaction)
	s.dispatcher.Send(updated.To, reaction)
}

// MarkRead advances the reader's watermark for one conversation and
// tells the peer. Timestamps never move backwards.
func (s *ChatService) MarkRead(reader, peer string, readAt int64) {
	reader = domain.NormalizeUsername(reader)
	peer = domain.NormalizeUsername(peer)
	if reader == "" || peer == "" {
		return
	}
	nowMillis := s.now().UnixMilli()
	if readAt <= 0 || readAt > nowMillis {
		readAt = nowMillis
	}

	key := pair{Reader: reader, Peer: peer}
	s.mu.Lock()
	if readAt <= s.lastRead[key] {
		s.mu.Unlock()
		return
	}
	s.lastRead[key] = readAt
	s.mu.Unlock()

	if s.receipts != nil {
		if err := s.receipts.Save(reader, peer, readAt); err != nil {
			s.log.Warn("Failed to persist read receipt", "reader", reader, "peer", peer, "error", err)
		}
	}

	s.dispatcher.Send(peer, event.ReadReceipt{
		Type:   "read_receipt",
		Reader: reader,
		Peer:   peer,
		ReadAt: readAt,
	})
}

// Typing relays a typing indicator. Nothing is stored.
func (s *ChatService) Typing(from, to string, typing bool) {
	from = domain.NormalizeUsername(from)
	to = domain.NormalizeUsername(to)
	if from == "" || to == "" {
		return
	}
	s.dispatcher.Send(to, event.Typing{Type: "typing", From: from, Typing: typing})
}

// ReplayReceipts pushes every read watermark that concerns the user's
// own sent messages, used when a client connects.
func (s *ChatService) ReplayReceipts(username string) {
	username = domain.NormalizeUsername(username)

	s.mu.Lock()
	replay := make([]event.ReadReceipt, 0)
	for key, readAt := range s.lastRead {
		if key.Peer == username {
			replay = append(replay, event.ReadReceipt{
				Type:   "read_receipt",
				Reader: key.Reader,
				Peer:   key.Peer,
				ReadAt: readAt,
			})
		}
	}
	s.mu.Unlock()

	for _, receipt := range replay {
		s.dispatcher.Send(username, receipt)
	}
}

func (s *ChatService) notify(request workers.NotificationRequest) {
	if s.notifications == nil {
		return
	}
	select {
	case s.notifications <- request:
	default:
		s.log.Debug("Notification queue full, dropping", "username", request.Username)
	}
}
