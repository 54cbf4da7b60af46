package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
)

// MemoryStore keeps every table in process memory behind one mutex, so each
// call is a single linearizable step. It implements all repository interfaces
// and backs local development (STORAGE=memory) and scenario tests.
type MemoryStore struct {
	mu  sync.Mutex
	now func() time.Time

	nextUserID         int64
	nextConversationID int64
	nextMessageID      int64
	nextJoinSeq        int64

	users         map[int64]models.User
	emails        map[string]int64
	conversations map[int64]models.Conversation
	personalKeys  map[string]int64
	participants  map[int64]map[int64]*memParticipant
	messages      map[int64]models.Message
	messageOrder  map[int64][]int64
	reads         map[int64]map[int64]struct{}
	readOrder     map[int64][]int64
	reactions     map[int64]map[int64]models.ReactionType
}

type memParticipant struct {
	unread  int
	joinSeq int64
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:           time.Now,
		users:         map[int64]models.User{},
		emails:        map[string]int64{},
		conversations: map[int64]models.Conversation{},
		personalKeys:  map[string]int64{},
		participants:  map[int64]map[int64]*memParticipant{},
		messages:      map[int64]models.Message{},
		messageOrder:  map[int64][]int64{},
		reads:         map[int64]map[int64]struct{}{},
		readOrder:     map[int64][]int64{},
		reactions:     map[int64]map[int64]models.ReactionType{},
	}
}

// WithClock replaces the time source.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// users

func (s *MemoryStore) CreateUser(_ context.Context, name, email, avatarImage string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email = strings.ToLower(email)
	if _, taken := s.emails[email]; taken {
		return models.User{}, apperrors.Conflict("record already exists", nil)
	}
	s.nextUserID++
	user := models.User{
		ID:          s.nextUserID,
		Name:        name,
		Email:       email,
		AvatarImage: avatarImage,
		CreatedAt:   s.now(),
	}
	s.users[user.ID] = user
	s.emails[email] = user.ID
	return s.userWithConversations(user), nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.userWithConversations(user), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return s.userWithConversations(s.users[id]), nil
}

func (s *MemoryStore) EmailExists(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.emails[strings.ToLower(email)]
	return ok, nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) GetUsers(_ context.Context, userIDs []int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := []models.User{}
	seen := map[int64]struct{}{}
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, userID int64, patch models.UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	if patch.Email != nil {
		email := strings.ToLower(*patch.Email)
		if owner, taken := s.emails[email]; taken && owner != userID {
			return models.User{}, apperrors.Conflict("record already exists", nil)
		}
		delete(s.emails, user.Email)
		s.emails[email] = userID
		user.Email = email
	}
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	s.users[userID] = user
	return s.userWithConversations(user), nil
}

func (s *MemoryStore) UpdateAvatar(_ context.Context, userID int64, avatarImage string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	user.AvatarImage = avatarImage
	s.users[userID] = user
	return s.userWithConversations(user), nil
}

// conversations

func (s *MemoryStore) CreateConversation(_ context.Context, input models.NewConversation) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var key string
	if input.Type == models.ConversationPersonal && len(input.ParticipantIDs) == 2 {
		key = models.PersonalKey(input.ParticipantIDs[0], input.ParticipantIDs[1])
		if _, taken := s.personalKeys[key]; taken {
			return models.Conversation{}, apperrors.Conflict("record already exists", nil)
		}
	}
	for _, id := range input.ParticipantIDs {
		if _, ok := s.users[id]; !ok {
			return models.Conversation{}, ErrUserNotFound
		}
	}

	s.nextConversationID++
	conv := models.Conversation{
		ID:           s.nextConversationID,
		Type:         input.Type,
		DisplayName:  input.DisplayName,
		DisplayImage: input.DisplayImage,
		CreatedAt:    s.now(),
	}
	s.conversations[conv.ID] = conv
	if key != "" {
		s.personalKeys[key] = conv.ID
	}
	members := map[int64]*memParticipant{}
	for _, id := range input.ParticipantIDs {
		if _, dup := members[id]; dup {
			continue
		}
		s.nextJoinSeq++
		members[id] = &memParticipant{joinSeq: s.nextJoinSeq}
	}
	s.participants[conv.ID] = members
	return s.conversationWithMembers(conv), nil
}

func (s *MemoryStore) GetConversation(_ context.Context, conversationID int64) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.Conversation{}, ErrConversationNotFound
	}
	return s.conversationWithMembers(conv), nil
}

func (s *MemoryStore) FindPersonalConversation(_ context.Context, userA, userB int64) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.personalKeys[models.PersonalKey(userA, userB)]
	if !ok {
		return models.Conversation{}, ErrConversationNotFound
	}
	return s.conversationWithMembers(s.conversations[id]), nil
}

func (s *MemoryStore) ListConversationsForUser(_ context.Context, userID int64) ([]models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := []models.ConversationSummary{}
	for _, id := range s.conversationIDsFor(userID) {
		summaries = append(summaries, summaryFor(s.conversationWithMembers(s.conversations[id]), userID))
	}
	return summaries, nil
}

func (s *MemoryStore) GetSummary(_ context.Context, conversationID, userID int64) (models.ConversationSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.ConversationSummary{}, ErrConversationNotFound
	}
	if _, member := s.participants[conversationID][userID]; !member {
		return models.ConversationSummary{}, ErrConversationNotFound
	}
	return summaryFor(s.conversationWithMembers(conv), userID), nil
}

func (s *MemoryStore) IsParticipant(_ context.Context, conversationID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.participants[conversationID][userID]
	return ok, nil
}

// messages

func (s *MemoryStore) CreateMessage(_ context.Context, conversationID, senderID int64, body string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return models.Message{}, ErrConversationNotFound
	}

	s.nextMessageID++
	msg := models.Message{
		ID:             s.nextMessageID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      s.now(),
	}
	s.messages[msg.ID] = msg
	s.messageOrder[conversationID] = append(s.messageOrder[conversationID], msg.ID)

	for userID, p := range s.participants[conversationID] {
		if userID == senderID {
			p.unread = 0
		} else {
			p.unread++
		}
	}
	text := body
	conv.LastMessageText = &text
	s.conversations[conversationID] = conv

	return s.messageWithState(msg), nil
}

func (s *MemoryStore) ListMessages(_ context.Context, conversationID int64) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.messageOrder[conversationID]
	msgs := make([]models.Message, 0, len(ids))
	for _, id := range ids {
		msgs = append(msgs, s.messageWithState(s.messages[id]))
	}
	// Stable sort keeps insertion order for equal timestamps.
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	return msgs, nil
}

func (s *MemoryStore) GetMessage(_ context.Context, messageID int64) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[messageID]
	if !ok {
		return models.Message{}, ErrMessageNotFound
	}
	return s.messageWithState(msg), nil
}

func (s *MemoryStore) UpdateMessageBody(_ context.Context, messageID int64, body string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg, ok := s.messages[messageID]
	if !ok {
		return models.Message{}, ErrMessageNotFound
	}
	updated := s.now()
	if !updated.After(msg.CreatedAt) {
		updated = msg.CreatedAt.Add(time.Microsecond)
	}
	msg.Body = body
	msg.UpdatedAt = &updated
	s.messages[messageID] = msg
	return s.messageWithState(msg), nil
}

func (s *MemoryStore) MarkConversationRead(_ context.Context, conversationID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return ErrConversationNotFound
	}
	if p, ok := s.participants[conversationID][userID]; ok {
		p.unread = 0
	}
	for _, id := range s.messageOrder[conversationID] {
		if s.messages[id].SenderID == userID {
			continue
		}
		readers, ok := s.reads[id]
		if !ok {
			readers = map[int64]struct{}{}
			s.reads[id] = readers
		}
		if _, already := readers[userID]; already {
			continue
		}
		readers[userID] = struct{}{}
		s.readOrder[id] = append(s.readOrder[id], userID)
	}
	return nil
}

// reactions

func (s *MemoryStore) UpsertReaction(_ context.Context, messageID, userID int64, reaction models.ReactionType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[messageID]; !ok {
		return ErrMessageNotFound
	}
	byUser, ok := s.reactions[messageID]
	if !ok {
		byUser = map[int64]models.ReactionType{}
		s.reactions[messageID] = byUser
	}
	byUser[userID] = reaction
	return nil
}

func (s *MemoryStore) DeleteReaction(_ context.Context, messageID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reactions[messageID], userID)
	return nil
}

func (s *MemoryStore) ListReactions(_ context.Context, messageID int64) ([]models.Reaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.reactionsFor(messageID), nil
}

// helpers; callers hold s.mu

func (s *MemoryStore) userWithConversations(user models.User) models.User {
	user.ConversationIDs = s.conversationIDsFor(user.ID)
	return user
}

func (s *MemoryStore) conversationIDsFor(userID int64) []int64 {
	type joined struct {
		conversationID int64
		seq            int64
	}
	var memberships []joined
	for convID, members := range s.participants {
		if p, ok := members[userID]; ok {
			memberships = append(memberships, joined{conversationID: convID, seq: p.joinSeq})
		}
	}
	sort.Slice(memberships, func(i, j int) bool { return memberships[i].seq < memberships[j].seq })

	ids := make([]int64, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.conversationID)
	}
	return ids
}

func (s *MemoryStore) conversationWithMembers(conv models.Conversation) models.Conversation {
	members := s.participants[conv.ID]
	ids := make([]int64, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return members[ids[i]].joinSeq < members[ids[j]].joinSeq })

	conv.ParticipantIDs = ids
	conv.UnreadCounts = make(map[int64]int, len(members))
	for id, p := range members {
		conv.UnreadCounts[id] = p.unread
	}
	if conv.LastMessageText != nil {
		text := *conv.LastMessageText
		conv.LastMessageText = &text
	}
	return conv
}

func (s *MemoryStore) messageWithState(msg models.Message) models.Message {
	msg.ReadBy = append([]int64{}, s.readOrder[msg.ID]...)
	msg.Reactions = s.reactionsFor(msg.ID)
	if msg.UpdatedAt != nil {
		updated := *msg.UpdatedAt
		msg.UpdatedAt = &updated
	}
	return msg
}

func (s *MemoryStore) reactionsFor(messageID int64) []models.Reaction {
	byUser := s.reactions[messageID]
	reactions := make([]models.Reaction, 0, len(byUser))
	for userID, r := range byUser {
		reactions = append(reactions, models.Reaction{MessageID: messageID, UserID: userID, Reaction: r})
	}
	sort.Slice(reactions, func(i, j int) bool { return reactions[i].UserID < reactions[j].UserID })
	return reactions
}

var (
	_ UserRepository         = (*MemoryStore)(nil)
	_ ConversationRepository = (*MemoryStore)(nil)
	_ MessageRepository      = (*MemoryStore)(nil)
	_ ReactionRepository     = (*MemoryStore)(nil)

	_ UserRepository         = (*UserRepo)(nil)
	_ ConversationRepository = (*ConversationRepo)(nil)
	_ MessageRepository      = (*MessageRepo)(nil)
	_ ReactionRepository     = (*ReactionRepo)(nil)
)
