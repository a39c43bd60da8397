//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"gamechat/domain/chat"
	"gamechat/errors"
)

type IMessageRepository interface {
	Save(message chat.Message) (chat.Message, error)
	FindByID(id string) (chat.Message, error)
	FindConversation(userA, userB string) ([]chat.Message, error)
	UpdateBody(id, body string, editedAt time.Time) (chat.Message, error)
	UpdateReaction(id, reaction string) (chat.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// diskMessage is the stored shape of a chat.Message.
type diskMessage struct {
	ID          string `json:"id"`
	From        string `json:"from"`
	To          string `json:"to"`
	Body        string `json:"body"`
	Type        string `json:"type"`
	FileName    string `json:"fileName,omitempty"`
	MediaRef    string `json:"mediaRef,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
	ReplyText   string `json:"replyText,omitempty"`
	ReplySender string `json:"replySender,omitempty"`
	Reaction    string `json:"reaction,omitempty"`
	Edited      bool   `json:"edited,omitempty"`
	EditedAt    int64  `json:"editedAt,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// conversationKey is direction-independent: both orderings of a pair
// land under the same prefix.
func conversationKey(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

// primaryKey is formatted as "msg:{conversation}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using the message id as a collision disconnector if
//     two messages arrive at the same nanosecond.
func primaryKey(message chat.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		conversationKey(message.From, message.To),
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

// pointerKey resolves a bare message id to its primary key, so lookups
// by id do not need the conversation or the timestamp.
func pointerKey(id string) []byte {
	return []byte("msgid:" + id)
}

// Save assigns the id and creation time and persists the message under
// both keys in one transaction.
func (m MessageRepository) Save(message chat.Message) (chat.Message, error) {
	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	primary := primaryKey(message)
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return chat.Message{}, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(primary, bytes); err != nil {
			return err
		}
		return txn.Set(pointerKey(message.ID), primary)
	})
	if err != nil {
		return chat.Message{}, err
	}
	return message, nil
}

func (m MessageRepository) FindByID(id string) (chat.Message, error) {
	var message chat.Message
	err := m.db.View(func(txn *badger.Txn) error {
		found, err := m.readByID(txn, id)
		if err != nil {
			return err
		}
		message = found
		return nil
	})
	return message, err
}

// FindConversation returns every message between two users ordered by
// creation time, oldest first. Thanks to the padded timestamp in the
// key, the prefix scan is naturally sorted.
func (m MessageRepository) FindConversation(userA, userB string) ([]chat.Message, error) {
	var disk []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte("msg:" + conversationKey(userA, userB) + ":")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				var dm diskMessage
				if err := json.Unmarshal(value, &dm); err != nil {
					return err
				}
				disk = append(disk, dm)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Map(disk, func(dm diskMessage, _ int) chat.Message {
		return toMessage(dm)
	}), nil
}

// UpdateBody rewrites the body and stamps the edit, read-modify-write
// inside one transaction.
func (m MessageRepository) UpdateBody(id, body string, editedAt time.Time) (chat.Message, error) {
	return m.update(id, func(message *chat.Message) {
		message.Body = body
		message.Edited = true
		message.EditedAt = editedAt
	})
}

// UpdateReaction stores the single current reaction, last write wins.
func (m MessageRepository) UpdateReaction(id, reaction string) (chat.Message, error) {
	return m.update(id, func(message *chat.Message) {
		message.Reaction = reaction
	})
}

func (m MessageRepository) update(id string, mutate func(*chat.Message)) (chat.Message, error) {
	var message chat.Message
	err := m.db.Update(func(txn *badger.Txn) error {
		found, err := m.readByID(txn, id)
		if err != nil {
			return err
		}
		mutate(&found)
		bytes, err := json.Marshal(fromMessage(found))
		if err != nil {
			return err
		}
		if err := txn.Set(primaryKey(found), bytes); err != nil {
			return err
		}
		message = found
		return nil
	})
	return message, err
}

func (m MessageRepository) readByID(txn *badger.Txn, id string) (chat.Message, error) {
	item, err := txn.Get(pointerKey(id))
	if err == badger.ErrKeyNotFound {
		return chat.Message{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}
	primary, err := item.ValueCopy(nil)
	if err != nil {
		return chat.Message{}, err
	}
	item, err = txn.Get(primary)
	if err == badger.ErrKeyNotFound {
		return chat.Message{}, errors.ErrMessageNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}
	var dm diskMessage
	err = item.Value(func(value []byte) error {
		return json.Unmarshal(value, &dm)
	})
	if err != nil {
		return chat.Message{}, err
	}
	return toMessage(dm), nil
}

// DecodeStored turns a raw badger value back into a message. Used by
// the operator viewer, which scans keys without going through lookups.
func DecodeStored(value []byte) (chat.Message, error) {
	var dm diskMessage
	if err := json.Unmarshal(value, &dm); err != nil {
		return chat.Message{}, err
	}
	return toMessage(dm), nil
}

func fromMessage(message chat.Message) diskMessage {
	dm := diskMessage{
		ID:          message.ID,
		From:        message.From,
		To:          message.To,
		Body:        message.Body,
		Type:        string(message.Type),
		FileName:    message.FileName,
		MediaRef:    message.MediaRef,
		MimeType:    message.MimeType,
		ReplyText:   message.ReplyText,
		ReplySender: message.ReplySender,
		Reaction:    message.Reaction,
		Edited:      message.Edited,
		CreatedAt:   message.CreatedAt.UnixNano(),
	}
	if message.Edited {
		dm.EditedAt = message.EditedAt.UnixNano()
	}
	return dm
}

func toMessage(dm diskMessage) chat.Message {
	message := chat.Message{
		ID:          dm.ID,
		From:        dm.From,
		To:          dm.To,
		Body:        dm.Body,
		Type:        chat.MessageType(dm.Type),
		FileName:    dm.FileName,
		MediaRef:    dm.MediaRef,
		MimeType:    dm.MimeType,
		ReplyText:   dm.ReplyText,
		ReplySender: dm.ReplySender,
		Reaction:    dm.Reaction,
		Edited:      dm.Edited,
		CreatedAt:   time.Unix(0, dm.CreatedAt).UTC(),
	}
	if dm.Edited {
		message.EditedAt = time.Unix(0, dm.EditedAt).UTC()
	}
	return message
}
