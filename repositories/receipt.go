//go:generate go run go.uber.org/mock/mockgen -source=receipt.go -destination=../mocks/mock_receipt_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

type IReceiptRepository interface {
	Save(reader, peer string, readAt int64) error
	All() ([]Receipt, error)
}

// Receipt records the latest read timestamp of one reader/peer pair.
type Receipt struct {
	Reader string
	Peer   string
	ReadAt int64
}

// ReceiptRepository persists read receipts so a restart does not
// regress them. Monotonicity is enforced by the chat service, which
// owns the in-memory view; this store just keeps the latest value.
type ReceiptRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewReceiptRepository(db *badger.DB, log *slog.Logger) ReceiptRepository {
	return ReceiptRepository{db: db, log: log}
}

type diskReceipt struct {
	ReadAt int64 `json:"readAt"`
}

func receiptKey(reader, peer string) []byte {
	return []byte(fmt.Sprintf("receipt:%s:%s", reader, peer))
}

func (r ReceiptRepository) Save(reader, peer string, readAt int64) error {
	bytes, err := json.Marshal(diskReceipt{ReadAt: readAt})
	if err != nil {
		return err
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(receiptKey(reader, peer), bytes)
	})
}

// All loads every stored receipt, used to hydrate the chat service at
// startup.
func (r ReceiptRepository) All() ([]Receipt, error) {
	var receipts []Receipt
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte("receipt:")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			parts := strings.SplitN(string(item.Key()), ":", 3)
			if len(parts) != 3 {
				continue
			}
			err := item.Value(func(value []byte) error {
				var dr diskReceipt
				if err := json.Unmarshal(value, &dr); err != nil {
					return err
				}
				receipts = append(receipts, Receipt{Reader: parts[1], Peer: parts[2], ReadAt: dr.ReadAt})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return receipts, err
}
