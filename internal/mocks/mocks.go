package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, name, email, avatarImage string) (models.User, error) {
	args := m.Called(ctx, name, email, avatarImage)
	return userArg(args, 0), args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	return userArg(args, 0), args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	return userArg(args, 0), args.Error(1)
}

func (m *UserRepositoryMock) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) GetUsers(ctx context.Context, userIDs []int64) ([]models.User, error) {
	args := m.Called(ctx, userIDs)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *UserRepositoryMock) UpdateUser(ctx context.Context, userID int64, patch models.UserPatch) (models.User, error) {
	args := m.Called(ctx, userID, patch)
	return userArg(args, 0), args.Error(1)
}

func (m *UserRepositoryMock) UpdateAvatar(ctx context.Context, userID int64, avatarImage string) (models.User, error) {
	args := m.Called(ctx, userID, avatarImage)
	return userArg(args, 0), args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) CreateConversation(ctx context.Context, input models.NewConversation) (models.Conversation, error) {
	args := m.Called(ctx, input)
	return conversationArg(args, 0), args.Error(1)
}

func (m *ConversationRepositoryMock) GetConversation(ctx context.Context, conversationID int64) (models.Conversation, error) {
	args := m.Called(ctx, conversationID)
	return conversationArg(args, 0), args.Error(1)
}

func (m *ConversationRepositoryMock) FindPersonalConversation(ctx context.Context, userA, userB int64) (models.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	return conversationArg(args, 0), args.Error(1)
}

func (m *ConversationRepositoryMock) ListConversationsForUser(ctx context.Context, userID int64) ([]models.ConversationSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ConversationSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ConversationSummary)
	}
	return list, args.Error(1)
}

func (m *ConversationRepositoryMock) GetSummary(ctx context.Context, conversationID, userID int64) (models.ConversationSummary, error) {
	args := m.Called(ctx, conversationID, userID)
	var summary models.ConversationSummary
	if val := args.Get(0); val != nil {
		summary = val.(models.ConversationSummary)
	}
	return summary, args.Error(1)
}

func (m *ConversationRepositoryMock) IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, conversationID, senderID int64, body string) (models.Message, error) {
	args := m.Called(ctx, conversationID, senderID, body)
	return messageArg(args, 0), args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, conversationID int64) ([]models.Message, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int64) (models.Message, error) {
	args := m.Called(ctx, messageID)
	return messageArg(args, 0), args.Error(1)
}

func (m *MessageRepositoryMock) UpdateMessageBody(ctx context.Context, messageID int64, body string) (models.Message, error) {
	args := m.Called(ctx, messageID, body)
	return messageArg(args, 0), args.Error(1)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, conversationID, userID int64) error {
	args := m.Called(ctx, conversationID, userID)
	return args.Error(0)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) UpsertReaction(ctx context.Context, messageID, userID int64, reaction models.ReactionType) error {
	args := m.Called(ctx, messageID, userID, reaction)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) DeleteReaction(ctx context.Context, messageID, userID int64) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *ReactionRepositoryMock) ListReactions(ctx context.Context, messageID int64) ([]models.Reaction, error) {
	args := m.Called(ctx, messageID)
	var reactions []models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.([]models.Reaction)
	}
	return reactions, args.Error(1)
}

func userArg(args mock.Arguments, i int) models.User {
	var user models.User
	if val := args.Get(i); val != nil {
		user = val.(models.User)
	}
	return user
}

func conversationArg(args mock.Arguments, i int) models.Conversation {
	var conv models.Conversation
	if val := args.Get(i); val != nil {
		conv = val.(models.Conversation)
	}
	return conv
}

func messageArg(args mock.Arguments, i int) models.Message {
	var msg models.Message
	if val := args.Get(i); val != nil {
		msg = val.(models.Message)
	}
	return msg
}

var (
	_ repositories.UserRepository         = (*UserRepositoryMock)(nil)
	_ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
	_ repositories.MessageRepository      = (*MessageRepositoryMock)(nil)
	_ repositories.ReactionRepository     = (*ReactionRepositoryMock)(nil)
)
