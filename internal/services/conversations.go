package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/observability"
	"messenger-service/internal/repositories"
)

// ConversationService is the conversation registry.
type ConversationService struct {
	users         repositories.UserRepository
	conversations repositories.ConversationRepository
	notifier      Notifier
}

func NewConversationService(users repositories.UserRepository, conversations repositories.ConversationRepository, notifier Notifier) *ConversationService {
	return &ConversationService{
		users:         users,
		conversations: conversations,
		notifier:      notifierOrNoop(notifier),
	}
}

// CreatePersonalConversation returns the pair's conversation, creating it when
// absent. created is false when an existing conversation was returned.
func (s *ConversationService) CreatePersonalConversation(ctx context.Context, userA, userB int64, displayImage string) (conv models.Conversation, created bool, err error) {
	if userA == userB {
		return models.Conversation{}, false, apperrors.Validation("cannot start a personal conversation with yourself")
	}
	members, err := s.resolveUsers(ctx, []int64{userA, userB})
	if err != nil {
		return models.Conversation{}, false, err
	}

	existing, err := s.conversations.FindPersonalConversation(ctx, userA, userB)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return models.Conversation{}, false, err
	}

	conv, err = s.conversations.CreateConversation(ctx, models.NewConversation{
		Type:           models.ConversationPersonal,
		ParticipantIDs: []int64{userA, userB},
		DisplayName:    fmt.Sprintf("%s and %s", members[0].Name, members[1].Name),
		DisplayImage:   displayImage,
	})
	if errors.Is(err, apperrors.ErrConflict) {
		// Another request created the pair between our lookup and insert.
		existing, findErr := s.conversations.FindPersonalConversation(ctx, userA, userB)
		return existing, false, findErr
	}
	if err != nil {
		return models.Conversation{}, false, err
	}

	s.announce(ctx, conv)
	return conv, true, nil
}

// CreateGroupConversation creates a group from at least two distinct existing users.
// Membership is not unique across groups.
func (s *ConversationService) CreateGroupConversation(ctx context.Context, participantIDs []int64, displayName, displayImage string) (models.Conversation, error) {
	ids := dedupeIDs(participantIDs)
	if len(ids) < 2 {
		return models.Conversation{}, apperrors.Validation("a group conversation needs at least 2 participants")
	}
	members, err := s.resolveUsers(ctx, ids)
	if err != nil {
		return models.Conversation{}, err
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "Group with " + members[0].Name
	}

	conv, err := s.conversations.CreateConversation(ctx, models.NewConversation{
		Type:           models.ConversationGroup,
		ParticipantIDs: ids,
		DisplayName:    name,
		DisplayImage:   displayImage,
	})
	if err != nil {
		return models.Conversation{}, err
	}

	s.announce(ctx, conv)
	return conv, nil
}

// ListConversationsForUser never fails for an unknown user; it returns an empty list.
func (s *ConversationService) ListConversationsForUser(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	summaries, err := s.conversations.ListConversationsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = []models.ConversationSummary{}
	}
	return summaries, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	return s.conversations.GetConversation(ctx, conversationID)
}

// ExistingPersonalConversation is symmetric in its two arguments.
func (s *ConversationService) ExistingPersonalConversation(ctx context.Context, userA, userB int64) (models.PersonalLookup, error) {
	if userA == userB {
		return models.PersonalLookup{Exists: false}, nil
	}
	conv, err := s.conversations.FindPersonalConversation(ctx, userA, userB)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.PersonalLookup{Exists: false}, nil
	}
	if err != nil {
		return models.PersonalLookup{}, err
	}
	id := conv.ID
	return models.PersonalLookup{Exists: true, ConversationID: &id}, nil
}

// PeerOf returns the other participant of a personal conversation.
func (s *ConversationService) PeerOf(ctx context.Context, conversationID, userID int64) (models.User, error) {
	conv, err := s.conversations.GetConversation(ctx, conversationID)
	if err != nil {
		return models.User{}, err
	}
	if conv.Type != models.ConversationPersonal || !conv.HasParticipant(userID) {
		return models.User{}, apperrors.NotFound("peer")
	}
	for _, id := range conv.ParticipantIDs {
		if id != userID {
			return s.users.GetUser(ctx, id)
		}
	}
	return models.User{}, apperrors.NotFound("peer")
}

// IsParticipant reports whether userID belongs to the conversation.
func (s *ConversationService) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	return s.conversations.IsParticipant(ctx, conversationID, userID)
}

// resolveUsers loads ids in order; any unknown id is a validation failure.
func (s *ConversationService) resolveUsers(ctx context.Context, ids []int64) ([]models.User, error) {
	for _, id := range ids {
		if id <= 0 {
			return nil, apperrors.Validation("invalid user id %d", id)
		}
	}
	users, err := s.users.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	ordered := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, ok := byID[id]
		if !ok {
			return nil, apperrors.Validation("user %d does not exist", id)
		}
		ordered = append(ordered, u)
	}
	return ordered, nil
}

func (s *ConversationService) announce(ctx context.Context, conv models.Conversation) {
	observability.IncConversationCreated(string(conv.Type))
	refreshConversationLists(ctx, s.notifier, s.conversations, conv.ID, conv.ParticipantIDs)
	publishDomainEvent(ctx, "conversation_created", map[string]interface{}{
		"conversation_id": conv.ID,
		"type":            conv.Type,
		"participant_ids": conv.ParticipantIDs,
	})
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
