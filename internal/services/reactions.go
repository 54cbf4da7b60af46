package services

import (
	"context"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// ReactionService is the reaction ledger: one active reaction per user per message.
type ReactionService struct {
	conversations repositories.ConversationRepository
	messages      repositories.MessageRepository
	reactions     repositories.ReactionRepository
	notifier      Notifier
}

func NewReactionService(conversations repositories.ConversationRepository, messages repositories.MessageRepository, reactions repositories.ReactionRepository, notifier Notifier) *ReactionService {
	return &ReactionService{
		conversations: conversations,
		messages:      messages,
		reactions:     reactions,
		notifier:      notifierOrNoop(notifier),
	}
}

// SetReaction replaces any previous reaction by actorID on the message.
func (s *ReactionService) SetReaction(ctx context.Context, messageID, actorID int64, reaction models.ReactionType) ([]models.Reaction, error) {
	if actorID <= 0 {
		return nil, apperrors.Auth("authentication required to react")
	}
	if !reaction.Valid() {
		return nil, apperrors.Validation("unknown reaction %q", reaction)
	}
	msg, err := s.authorize(ctx, messageID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.reactions.UpsertReaction(ctx, messageID, actorID, reaction); err != nil {
		return nil, err
	}
	observability.IncReaction("set")
	return s.broadcast(ctx, msg)
}

// RemoveReaction clears actorID's reaction. Removing an absent reaction succeeds.
func (s *ReactionService) RemoveReaction(ctx context.Context, messageID, actorID int64) ([]models.Reaction, error) {
	if actorID <= 0 {
		return nil, apperrors.Auth("authentication required to react")
	}
	msg, err := s.authorize(ctx, messageID, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.reactions.DeleteReaction(ctx, messageID, actorID); err != nil {
		return nil, err
	}
	observability.IncReaction("remove")
	return s.broadcast(ctx, msg)
}

func (s *ReactionService) ListReactions(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	if _, err := s.messages.GetMessage(ctx, messageID); err != nil {
		return nil, err
	}
	return s.reactions.ListReactions(ctx, messageID)
}

func (s *ReactionService) authorize(ctx context.Context, messageID, actorID int64) (models.Message, error) {
	msg, err := s.messages.GetMessage(ctx, messageID)
	if err != nil {
		return models.Message{}, err
	}
	member, err := s.conversations.IsParticipant(ctx, msg.ConversationID, actorID)
	if err != nil {
		return models.Message{}, err
	}
	if !member {
		return models.Message{}, apperrors.Forbidden("not a conversation participant")
	}
	return msg, nil
}

func (s *ReactionService) broadcast(ctx context.Context, msg models.Message) ([]models.Reaction, error) {
	reactions, err := s.reactions.ListReactions(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	s.notifier.BroadcastConversation(msg.ConversationID, models.ConversationEvent{
		Type:           models.EventReactionUpdated,
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
		Reactions:      reactions,
	})
	publishDomainEvent(ctx, "reaction_updated", map[string]interface{}{
		"conversation_id": msg.ConversationID,
		"message_id":      msg.ID,
	})
	return reactions, nil
}
