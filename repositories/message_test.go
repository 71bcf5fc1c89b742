package repositories

import (
	"chat-wire/errors"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestStoreMessage_Assigns_ID_And_Timestamp(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)

	// Given a message without id or timestamp
	message := DiskMessage{
		SenderID:   uuid.NewString(),
		ReceiverID: uuid.NewString(),
		Text:       "hello",
	}

	// When it is stored
	stored, err := repository.StoreMessage(message)

	// Then identity and time are filled in by the store
	req.NoError(err)
	req.NotEqual(uuid.Nil, stored.ID)
	req.False(stored.At.IsZero())
	req.Equal("hello", stored.Text)
}

func TestStoreMessage_Then_GetConversation_Roundtrip(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)
	alice := uuid.NewString()
	bob := uuid.NewString()

	// Given a stored message from alice to bob
	stored, err := repository.StoreMessage(DiskMessage{
		SenderID:   alice,
		ReceiverID: bob,
		Text:       "are you there?",
	})
	req.NoError(err)

	// When the conversation is read from either side
	fromAlice, err := repository.GetConversation(alice, bob)
	req.NoError(err)
	fromBob, err := repository.GetConversation(bob, alice)
	req.NoError(err)

	// Then both see the same single message
	req.Len(fromAlice, 1)
	req.Equal(stored.ID, fromAlice[0].ID)
	req.Equal(fromAlice, fromBob)
}

func TestGetConversation_Returns_Messages_In_Chronological_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)
	alice := uuid.NewString()
	bob := uuid.NewString()
	base := time.Now().UTC()

	// Given three messages stored out of order
	for _, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		_, err := repository.StoreMessage(DiskMessage{
			SenderID:   alice,
			ReceiverID: bob,
			Text:       offset.String(),
			At:         base.Add(offset),
		})
		req.NoError(err)
	}

	// When the conversation is read
	conversation, err := repository.GetConversation(alice, bob)
	req.NoError(err)

	// Then messages come out sorted by creation time ascending
	req.Len(conversation, 3)
	for i := 1; i < len(conversation); i++ {
		req.True(conversation[i-1].At.Before(conversation[i].At))
	}
}

func TestGetConversation_Does_Not_Leak_Other_Conversations(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default(), nil)
	alice := uuid.NewString()
	bob := uuid.NewString()
	carol := uuid.NewString()

	// Given messages in two distinct conversations
	_, err := repository.StoreMessage(DiskMessage{SenderID: alice, ReceiverID: bob, Text: "for bob"})
	req.NoError(err)
	_, err = repository.StoreMessage(DiskMessage{SenderID: alice, ReceiverID: carol, Text: "for carol"})
	req.NoError(err)

	// When alice reads her conversation with bob
	conversation, err := repository.GetConversation(alice, bob)
	req.NoError(err)

	// Then carol's conversation stays private
	req.Len(conversation, 1)
	req.Equal("for bob", conversation[0].Text)
}

func TestGetConversation_Keeps_Only_The_Most_Recent_When_Limited(t *testing.T) {
	req := require.New(t)
	limit := 2
	repository := NewMessageRepository(openTestDB(t), slog.Default(), &limit)
	alice := uuid.NewString()
	bob := uuid.NewString()
	base := time.Now().UTC()

	// Given five messages in the same conversation
	for i := 0; i < 5; i++ {
		_, err := repository.StoreMessage(DiskMessage{
			SenderID:   alice,
			ReceiverID: bob,
			Text:       string(rune('a' + i)),
			At:         base.Add(time.Duration(i) * time.Second),
		})
		req.NoError(err)
	}

	// When the conversation is read
	conversation, err := repository.GetConversation(alice, bob)
	req.NoError(err)

	// Then only the most recent tail survives
	req.Len(conversation, limit)
	req.Equal("d", conversation[0].Text)
	req.Equal("e", conversation[1].Text)
}

func TestStoreMessage_On_Closed_Database_Is_A_Persistence_Error(t *testing.T) {
	req := require.New(t)
	db := openTestDB(t)
	repository := NewMessageRepository(db, slog.Default(), nil)
	req.NoError(db.Close())

	// When storing against a closed database
	_, err := repository.StoreMessage(DiskMessage{
		SenderID:   uuid.NewString(),
		ReceiverID: uuid.NewString(),
		Text:       "too late",
	})

	// Then the error carries the persistence sentinel
	req.ErrorIs(err, errors.ErrPersistence)
}
