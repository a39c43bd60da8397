package services

import (
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"gamechat/domain/chat"
	"gamechat/domain/event"
	"gamechat/moderation"
	"gamechat/repositories"
	"gamechat/runtime/workers"
)

type chatFixture struct {
	service       *ChatService
	dispatcher    *fakeDispatcher
	presence      *PresenceService
	messages      repositories.MessageRepository
	notifications chan workers.NotificationRequest
}

func newChatFixture(t *testing.T, moderator *moderation.Moderator) chatFixture {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dispatcher := newFakeDispatcher()
	presence := NewPresenceService(log, dispatcher)
	messages := repositories.NewMessageRepository(db, log)
	receipts := repositories.NewReceiptRepository(db, log)
	notifications := make(chan workers.NotificationRequest, 8)

	service := NewChatService(log, dispatcher, presence, messages, receipts, moderator, notifications, false)
	return chatFixture{
		service:       service,
		dispatcher:    dispatcher,
		presence:      presence,
		messages:      messages,
		notifications: notifications,
	}
}

func lastEvent[T event.Event](t *testing.T, events []event.Event) T {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if typed, ok := events[i].(T); ok {
			return typed
		}
	}
	var zero T
	t.Fatalf("no %T in %d events", zero, len(events))
	return zero
}

func Test_Send_Delivers_Acks_And_Notifies_Offline_Recipient(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	// When alice sends to an offline bob
	f.service.Send("Alice", "Bob", "tmp-1", "hello", chat.TypeText, "", "", "", "", "")

	// Then bob's private queue carries the message
	incoming := lastEvent[event.IncomingMessage](t, f.dispatcher.sentTo("bob"))
	req.Equal("alice", incoming.From)
	req.Equal("hello", incoming.Body)
	req.NotEmpty(incoming.MessageID)

	// And alice gets a positive ack correlated by temp id
	ack := lastEvent[event.SendAck](t, f.dispatcher.sentTo("alice"))
	req.True(ack.Success)
	req.Equal("tmp-1", ack.TempID)
	req.Equal(incoming.MessageID, ack.MessageID)

	// And a push notification is queued for bob
	select {
	case notification := <-f.notifications:
		req.Equal("bob", notification.Username)
		req.Equal("alice", notification.Title)
		req.Equal("hello", notification.Body)
		req.Equal("/chat/alice", notification.Link)
	default:
		req.Fail("expected a queued notification")
	}
}

func Test_Send_Skips_Notification_When_Recipient_Is_Online(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	// Given bob is online with a live session
	f.dispatcher.Attach("bob", nil)
	f.presence.MarkOnline("bob")

	f.service.Send("alice", "bob", "tmp-1", "hello", chat.TypeText, "", "", "", "", "")

	select {
	case <-f.notifications:
		req.Fail("online recipients must not be notified")
	default:
	}
}

func Test_Send_Ignores_Blank_Input(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	f.service.Send("alice", "", "tmp-1", "hello", chat.TypeText, "", "", "", "", "")
	f.service.Send("alice", "bob", "tmp-1", "", chat.TypeText, "", "", "", "", "")

	req.Empty(f.dispatcher.sentTo("alice"))
	req.Empty(f.dispatcher.sentTo("bob"))
}

func Test_Send_Censors_Text_Bodies(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	moderator, err := moderation.NewModerator([]string{"badger"}, '*', log)
	req.NoError(err)
	f := newChatFixture(t, moderator)

	f.service.Send("alice", "bob", "tmp-1", "what a badger move", chat.TypeText, "", "", "", "", "")

	incoming := lastEvent[event.IncomingMessage](t, f.dispatcher.sentTo("bob"))
	req.Equal("what a ****** move", incoming.Body)
}

func Test_Edit_Within_The_Window(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	f.service.Send("alice", "bob", "tmp-1", "helo", chat.TypeText, "", "", "", "", "")
	messageID := lastEvent[event.SendAck](t, f.dispatcher.sentTo("alice")).MessageID

	// When alice edits 14 minutes later
	f.service.now = func() time.Time { return time.Now().Add(14 * time.Minute) }
	f.service.Edit("alice", messageID, "hello")

	// Then both sides observe the edit and alice gets a positive ack
	edited := lastEvent[event.MessageEdited](t, f.dispatcher.sentTo("bob"))
	req.Equal("hello", edited.Body)
	req.Equal("alice", edited.EditedBy)
	ack := lastEvent[event.EditAck](t, f.dispatcher.sentTo("alice"))
	req.True(ack.Success)

	// And the store carries the new body
	stored, err := f.messages.FindByID(messageID)
	req.NoError(err)
	req.Equal("hello", stored.Body)
	req.True(stored.Edited)
}

func Test_Edit_Rejections(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	f.service.Send("alice", "bob", "tmp-1", "hi", chat.TypeText, "", "", "", "", "")
	messageID := lastEvent[event.SendAck](t, f.dispatcher.sentTo("alice")).MessageID

	// Unknown message
	f.service.Edit("alice", "nope", "x")
	ack := lastEvent[event.EditAck](t, f.dispatcher.sentTo("alice"))
	req.False(ack.Success)
	req.Equal("Message not found.", ack.Reason)

	// Not the sender
	f.service.Edit("bob", messageID, "x")
	ack = lastEvent[event.EditAck](t, f.dispatcher.sentTo("bob"))
	req.False(ack.Success)
	req.Equal("Only the sender can edit a message.", ack.Reason)

	// Window expired
	f.service.now = func() time.Time { return time.Now().Add(16 * time.Minute) }
	f.service.Edit("alice", messageID, "x")
	ack = lastEvent[event.EditAck](t, f.dispatcher.sentTo("alice"))
	req.False(ack.Success)
	req.Equal("Message can only be edited within 15 minutes.", ack.Reason)

	// And the body never changed
	stored, err := f.messages.FindByID(messageID)
	req.NoError(err)
	req.Equal("hi", stored.Body)
}

func Test_React_And_Clear(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	f.service.Send("alice", "bob", "tmp-1", "hi", chat.TypeText, "", "", "", "", "")
	messageID := lastEvent[event.SendAck](t, f.dispatcher.sentTo("alice")).MessageID

	// When bob reacts
	f.service.React("bob", messageID, "👍")
	reaction := lastEvent[event.MessageReaction](t, f.dispatcher.sentTo("alice"))
	req.Equal("👍", reaction.Reaction)
	req.Equal("bob", reaction.By)

	// Outsiders and junk are dropped silently and leave the stored reaction alone
	before := len(f.dispatcher.sentTo("alice"))
	f.service.React("carol", messageID, "👍")
	f.service.React("bob", messageID, "not an emoji at all")
	f.service.React("bob", "unknown", "👍")
	req.Len(f.dispatcher.sentTo("alice"), before)
	stored, err := f.messages.FindByID(messageID)
	req.NoError(err)
	req.Equal("👍", stored.Reaction)

	// When bob clears it
	f.service.React("bob", messageID, "")
	reaction = lastEvent[event.MessageReaction](t, f.dispatcher.sentTo("alice"))
	req.Empty(reaction.Reaction)
}

func Test_MarkRead_Is_Monotonic(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)
	f.service.now = func() time.Time { return time.UnixMilli(1_000_000) }

	// When bob reads at 100
	f.service.MarkRead("bob", "alice", 100)
	receipt := lastEvent[event.ReadReceipt](t, f.dispatcher.sentTo("alice"))
	req.Equal(int64(100), receipt.ReadAt)

	// Then an older timestamp changes nothing
	before := len(f.dispatcher.sentTo("alice"))
	f.service.MarkRead("bob", "alice", 50)
	req.Len(f.dispatcher.sentTo("alice"), before)

	// And zero or future timestamps clamp to now
	f.service.MarkRead("bob", "alice", 0)
	receipt = lastEvent[event.ReadReceipt](t, f.dispatcher.sentTo("alice"))
	req.Equal(int64(1_000_000), receipt.ReadAt)
}

func Test_Receipts_Survive_A_Restart(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	dispatcher := newFakeDispatcher()
	presence := NewPresenceService(log, dispatcher)
	messages := repositories.NewMessageRepository(db, log)
	receipts := repositories.NewReceiptRepository(db, log)

	service := NewChatService(log, dispatcher, presence, messages, receipts, nil, nil, false)
	service.MarkRead("bob", "alice", 100)

	// When a fresh service hydrates from the same store
	restarted := NewChatService(log, newFakeDispatcher(), presence, messages, receipts, nil, nil, false)

	// Then an older read is still ignored
	freshDispatcher := restarted.dispatcher.(*fakeDispatcher)
	restarted.MarkRead("bob", "alice", 50)
	req.Empty(freshDispatcher.sentTo("alice"))

	// And alice gets her receipts replayed on connect
	restarted.ReplayReceipts("alice")
	receipt := lastEvent[event.ReadReceipt](t, freshDispatcher.sentTo("alice"))
	req.Equal("bob", receipt.Reader)
	req.Equal(int64(100), receipt.ReadAt)
}

func Test_Typing_Is_A_Pure_Relay(t *testing.T) {
	req := require.New(t)
	f := newChatFixture(t, nil)

	f.service.Typing("alice", "bob", true)
	typing := lastEvent[event.Typing](t, f.dispatcher.sentTo("bob"))
	req.Equal("alice", typing.From)
	req.True(typing.Typing)

	f.service.Typing("alice", "", true)
	req.Empty(f.dispatcher.sentTo(""))
}
