//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"chat-wire/contract"
	"chat-wire/domain"
	"chat-wire/domain/event"
	"chat-wire/errors"
	"chat-wire/moderation"
	"chat-wire/observability"
	"chat-wire/repositories"
	"context"
	"log/slog"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"
)

type IChatService interface {
	Deliver(ctx context.Context, senderID, receiverID, text, image string) (domain.Message, error)
	History(userID, otherID string) ([]domain.Message, error)
	Users(excludeID string) ([]domain.User, error)
}

// ChatService orchestrates message delivery: moderate, persist, then
// push. Persistence always comes first so that a message is observable
// in realtime only if it is also retrievable later.
type ChatService struct {
	log          *slog.Logger
	messages     repositories.IMessageRepository
	users        repositories.IUserRepository
	orchestrator contract.IOrchestrator
	moderator    moderation.Moderator
	images       ImageHost
	monitor      *observability.Monitor
}

func NewChatService(log *slog.Logger, messages repositories.IMessageRepository,
	users repositories.IUserRepository, orchestrator contract.IOrchestrator,
	moderator moderation.Moderator, images ImageHost,
	monitor *observability.Monitor) *ChatService {
	return &ChatService{
		log:          log,
		messages:     messages,
		users:        users,
		orchestrator: orchestrator,
		moderator:    moderator,
		images:       images,
		monitor:      monitor,
	}
}

// Deliver validates, persists, and then pushes a message to the
// receiver's live connection if one exists.
//
// The returned Message is the sender's copy: the sender never receives
// its own message through the push path. The push itself is dispatched
// fire-and-forget after persistence succeeds; a failing or absent
// receiver connection never fails the call.
func (s *ChatService) Deliver(ctx context.Context, senderID, receiverID, text, image string) (domain.Message, error) {
	if text == "" && image == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}

	censored, foundWords := s.moderator.Censor(text)
	if len(foundWords) > 0 {
		s.monitor.IncrCensoredMessages()
		info := whatlanggo.Detect(text)
		s.log.Warn("Message censored",
			"sender_id", senderID,
			"lang", info.Lang.Iso6391(),
			"words", len(foundWords))
	}

	var imageURL string
	if image != "" {
		data, extension, err := decodeImagePayload(image)
		if err != nil {
			return domain.Message{}, err
		}
		imageURL, err = s.images.Upload(ctx, data, extension)
		if err != nil {
			return domain.Message{}, err
		}
	}

	persisted, err := s.messages.StoreMessage(repositories.DiskMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       censored,
		ImageURL:   imageURL,
	})
	if err != nil {
		// No partial state: nothing was pushed, the sender may retry.
		return domain.Message{}, err
	}

	message := fromDiskMessage(persisted)
	s.orchestrator.Dispatch(event.MessageDelivered{Message: message})
	return message, nil
}

// History returns the conversation between two users, oldest first.
func (s *ChatService) History(userID, otherID string) ([]domain.Message, error) {
	diskMessages, err := s.messages.GetConversation(userID, otherID)
	if err != nil {
		return nil, err
	}
	return lo.Map(diskMessages, func(item repositories.DiskMessage, _ int) domain.Message {
		return fromDiskMessage(item)
	}), nil
}

// Users lists every known account except the caller's, for the sidebar.
func (s *ChatService) Users(excludeID string) ([]domain.User, error) {
	users, err := s.users.ListUsers(excludeID)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(item repositories.User, _ int) domain.User {
		return fromRepositoryUser(item)
	}), nil
}

func fromDiskMessage(item repositories.DiskMessage) domain.Message {
	return domain.Message{
		ID:         item.ID,
		SenderID:   item.SenderID,
		ReceiverID: item.ReceiverID,
		Text:       item.Text,
		ImageURL:   item.ImageURL,
		CreatedAt:  item.At,
	}
}

func fromRepositoryUser(item repositories.User) domain.User {
	return domain.User{
		ID:        item.ID,
		FullName:  item.FullName,
		Email:     item.Email,
		AvatarURL: item.AvatarURL,
		CreatedAt: item.CreatedAt,
	}
}
