//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"chat-wire/errors"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(message DiskMessage) (DiskMessage, error)
	GetConversation(userA, userB string) ([]DiskMessage, error)
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// DiskMessage is the storage-layer representation of a direct message.
type DiskMessage struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	ImageURL   string    `json:"image,omitempty"`
	At         time.Time `json:"at"`
}

// pairKey builds a direction-independent conversation identifier so that
// A→B and B→A land under the same prefix.
func pairKey(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

// StoreMessage persists a message in BadgerDB, assigning its id and UTC
// timestamp. The key is formatted as "chat:{pair}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two messages
//     arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message DiskMessage) (DiskMessage, error) {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.At.IsZero() {
		message.At = time.Now().UTC()
	}

	key := fmt.Sprintf("chat:%s:%019d:%s",
		pairKey(message.SenderID, message.ReceiverID),
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return DiskMessage{}, err
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return DiskMessage{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return message, nil
}

// GetConversation retrieves the full history between two users using a
// prefix scan. Thanks to the padded timestamp in the key, messages come
// out naturally sorted by creation time ascending. When a message limit
// is configured, only the most recent messages are kept.
func (m MessageRepository) GetConversation(userA, userB string) ([]DiskMessage, error) {
	var diskMessages []DiskMessage
	prefix := []byte(fmt.Sprintf("chat:%s:", pairKey(userA, userB)))

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var dm DiskMessage
				if err := json.Unmarshal(val, &dm); err != nil {
					return err
				}
				diskMessages = append(diskMessages, dm)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	if m.limitMessages != nil && len(diskMessages) > *m.limitMessages {
		diskMessages = diskMessages[len(diskMessages)-*m.limitMessages:]
	}
	return diskMessages, nil
}
