package services

import (
	"context"
	"strings"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// MessageService is the message store. It owns the unread-counter invariant:
// a send zeroes the sender's counter and increments everyone else's, a read
// zeroes the reader's.
type MessageService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	users         *UserService
	notifier      Notifier
}

func NewMessageService(conversations repositories.ConversationRepository, messages repositories.MessageRepository, users *UserService, notifier Notifier) *MessageService {
	return &MessageService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		notifier:      notifierOrNoop(notifier),
	}
}

// SendMessage stores a message from a participant and updates counters and the
// conversation's last message in the same step.
func (s *MessageService) SendMessage(ctx context.Context, conversationID, senderID int64, body string) (models.MessageView, error) {
	if strings.TrimSpace(body) == "" {
		return models.MessageView{}, apperrors.Validation("message body must not be empty")
	}
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return models.MessageView{}, err
	}
	if !conv.HasParticipant(senderID) {
		return models.MessageView{}, apperrors.Forbidden("not a conversation participant")
	}

	msg, err := s.messages.CreateMessage(ctx, conversationID, senderID, body)
	if err != nil {
		return models.MessageView{}, err
	}
	view, err := s.view(ctx, msg)
	if err != nil {
		return models.MessageView{}, err
	}

	observability.IncMessageSent()
	s.notifier.BroadcastConversation(conversationID, models.ConversationEvent{
		Type:           models.EventMessageCreated,
		ConversationID: conversationID,
		Message:        &view,
	})
	refreshConversationLists(ctx, s.notifier, s.conversations, conversationID, conv.ParticipantIDs)
	publishDomainEvent(ctx, "message_sent", map[string]interface{}{
		"conversation_id": conversationID,
		"message_id":      msg.ID,
		"sender_id":       senderID,
	})
	return view, nil
}

// ListMessages returns the conversation's messages oldest first with sender
// snapshots resolved now, never cached.
func (s *MessageService) ListMessages(ctx context.Context, conversationID int64) ([]models.MessageView, error) {
	if _, err := s.conversations.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	senderIDs := make([]int64, 0, len(msgs))
	seen := map[int64]struct{}{}
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; !ok {
			seen[m.SenderID] = struct{}{}
			senderIDs = append(senderIDs, m.SenderID)
		}
	}
	snapshots, err := s.users.SenderSnapshots(ctx, senderIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, models.MessageView{Message: m, Sender: snapshots[m.SenderID]})
	}
	return views, nil
}

func (s *MessageService) GetMessage(ctx context.Context, messageID int64) (models.MessageView, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return models.MessageView{}, err
	}
	return s.view(ctx, msg)
}

// EditMessage replaces the body and stamps updatedAt; position is unchanged.
func (s *MessageService) EditMessage(ctx context.Context, messageID int64, newBody string) (models.MessageView, error) {
	if strings.TrimSpace(newBody) == "" {
		return models.MessageView{}, apperrors.Validation("message body must not be empty")
	}
	msg, err := s.messages.UpdateMessageBody(ctx, messageID, newBody)
	if err != nil {
		return models.MessageView{}, err
	}
	view, err := s.view(ctx, msg)
	if err != nil {
		return models.MessageView{}, err
	}

	observability.IncMessageEdited()
	s.notifier.BroadcastConversation(msg.ConversationID, models.ConversationEvent{
		Type:           models.EventMessageUpdated,
		ConversationID: msg.ConversationID,
		Message:        &view,
	})
	publishDomainEvent(ctx, "message_edited", map[string]interface{}{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
	})
	return view, nil
}

// MarkConversationRead zeroes userID's unread counter. Idempotent.
func (s *MessageService) MarkConversationRead(ctx context.Context, conversationID, userID int64) error {
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(userID) {
		return apperrors.Forbidden("not a conversation participant")
	}
	if err := s.messages.MarkConversationRead(ctx, conversationID, userID); err != nil {
		return err
	}

	observability.IncConversationRead()
	s.notifier.BroadcastConversation(conversationID, models.ConversationEvent{
		Type:           models.EventConversationRead,
		ConversationID: conversationID,
		UserID:         userID,
	})
	refreshConversationLists(ctx, s.notifier, s.conversations, conversationID, []int64{userID})
	return nil
}

func (s *MessageService) view(ctx context.Context, msg models.Message) (models.MessageView, error) {
	snapshots, err := s.users.SenderSnapshots(ctx, []int64{msg.SenderID})
	if err != nil {
		return models.MessageView{}, err
	}
	return models.MessageView{Message: msg, Sender: snapshots[msg.SenderID]}, nil
}
