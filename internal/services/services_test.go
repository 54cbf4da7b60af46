package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/apperrors"
	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type recordingNotifier struct {
	mu            sync.Mutex
	conversations []models.ConversationEvent
	users         map[int64][]models.UserEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{users: map[int64][]models.UserEvent{}}
}

func (n *recordingNotifier) BroadcastConversation(_ int64, event models.ConversationEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.conversations = append(n.conversations, event)
}

func (n *recordingNotifier) NotifyUser(userID int64, event models.UserEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users[userID] = append(n.users[userID], event)
}

type fixture struct {
	store         *repositories.MemoryStore
	notifier      *recordingNotifier
	users         *UserService
	conversations *ConversationService
	messages      *MessageService
	reactions     *ReactionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	notifier := newRecordingNotifier()
	users := NewUserService(store)
	return &fixture{
		store:         store,
		notifier:      notifier,
		users:         users,
		conversations: NewConversationService(store, store, notifier),
		messages:      NewMessageService(store, store, users, notifier),
		reactions:     NewReactionService(store, store, store, notifier),
	}
}

func (f *fixture) user(t *testing.T, name string) models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), name, name+"@example.com", "/avatars/"+name+".png")
	require.NoError(t, err)
	return u
}

func unread(t *testing.T, f *fixture, conversationID int64) map[int64]int {
	t.Helper()
	conv, err := f.conversations.GetConversation(context.Background(), conversationID)
	require.NoError(t, err)
	return conv.UnreadCounts
}

func TestPersonalConversationScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := f.user(t, "alice")
	u2 := f.user(t, "bob")

	c1, created, err := f.conversations.CreatePersonalConversation(ctx, u1.ID, u2.ID, "")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.ConversationPersonal, c1.Type)
	assert.Equal(t, "alice and bob", c1.DisplayName)
	assert.Equal(t, map[int64]int{u1.ID: 0, u2.ID: 0}, c1.UnreadCounts)

	_, err = f.messages.SendMessage(ctx, c1.ID, u1.ID, "hi")
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{u1.ID: 0, u2.ID: 1}, unread(t, f, c1.ID))

	_, err = f.messages.SendMessage(ctx, c1.ID, u2.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{u1.ID: 1, u2.ID: 0}, unread(t, f, c1.ID))

	require.NoError(t, f.messages.MarkConversationRead(ctx, c1.ID, u1.ID))
	assert.Equal(t, map[int64]int{u1.ID: 0, u2.ID: 0}, unread(t, f, c1.ID))

	msgs, err := f.messages.ListMessages(ctx, c1.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[0].Body)
	assert.Equal(t, "hello", msgs[1].Body)
	assert.Equal(t, models.SenderSnapshot{Name: "alice", AvatarImage: "/avatars/alice.png"}, msgs[0].Sender)
	assert.Equal(t, []int64{u1.ID}, msgs[1].ReadBy)

	conv, err := f.conversations.GetConversation(ctx, c1.ID)
	require.NoError(t, err)
	require.NotNil(t, conv.LastMessageText)
	assert.Equal(t, "hello", *conv.LastMessageText)
}

func TestCreatePersonalConversationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	first, created, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.conversations.CreatePersonalConversation(ctx, b.ID, a.ID, "")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	user, err := f.users.GetUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{first.ID}, user.ConversationIDs)
}

func TestCreatePersonalConversationConcurrentCallersShareOneConversation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")

	const callers = 16
	ids := make([]int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userA, userB := a.ID, b.ID
			if i%2 == 1 {
				userA, userB = userB, userA
			}
			conv, _, err := f.conversations.CreatePersonalConversation(ctx, userA, userB, "")
			assert.NoError(t, err)
			ids[i] = conv.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	list, err := f.conversations.ListConversationsForUser(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCreatePersonalConversationValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")

	_, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, a.ID, "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, _, err = f.conversations.CreatePersonalConversation(ctx, a.ID, 404, "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestExistingPersonalConversationIsOrderIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")

	before, err := f.conversations.ExistingPersonalConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, before.Exists)
	assert.Nil(t, before.ConversationID)

	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)

	ab, err := f.conversations.ExistingPersonalConversation(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := f.conversations.ExistingPersonalConversation(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
	require.NotNil(t, ab.ConversationID)
	assert.Equal(t, conv.ID, *ab.ConversationID)

	ac, err := f.conversations.ExistingPersonalConversation(ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ac.Exists)
}

func TestGroupConversationScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u1 := f.user(t, "alice")
	u2 := f.user(t, "bob")
	u3 := f.user(t, "carol")

	group, err := f.conversations.CreateGroupConversation(ctx, []int64{u1.ID, u2.ID, u3.ID}, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.ConversationGroup, group.Type)
	assert.Equal(t, "Group with alice", group.DisplayName)
	assert.Equal(t, []int64{u1.ID, u2.ID, u3.ID}, group.ParticipantIDs)

	_, err = f.conversations.CreateGroupConversation(ctx, []int64{u1.ID}, "", "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.conversations.CreateGroupConversation(ctx, []int64{u1.ID, u1.ID}, "", "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.conversations.CreateGroupConversation(ctx, []int64{u1.ID, 999}, "", "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	again, err := f.conversations.CreateGroupConversation(ctx, []int64{u1.ID, u2.ID, u3.ID}, "Team", "")
	require.NoError(t, err)
	assert.NotEqual(t, group.ID, again.ID)
	assert.Equal(t, "Team", again.DisplayName)

	_, err = f.messages.SendMessage(ctx, group.ID, u2.ID, "standup?")
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{u1.ID: 1, u2.ID: 0, u3.ID: 1}, unread(t, f, group.ID))
}

func TestListConversationsForUserCarriesOwnUnreadCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := f.messages.SendMessage(ctx, conv.ID, a.ID, "ping")
		require.NoError(t, err)
	}

	list, err := f.conversations.ListConversationsForUser(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 3, list[0].UnreadCount)

	require.NoError(t, f.messages.MarkConversationRead(ctx, conv.ID, b.ID))
	list, err = f.conversations.ListConversationsForUser(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, list[0].UnreadCount)

	unknown, err := f.conversations.ListConversationsForUser(ctx, 12345)
	require.NoError(t, err)
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestSendMessageErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	outsider := f.user(t, "eve")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)

	_, err = f.messages.SendMessage(ctx, conv.ID, a.ID, "   ")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.messages.SendMessage(ctx, 777, a.ID, "hi")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = f.messages.SendMessage(ctx, conv.ID, outsider.ID, "hi")
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	assert.Equal(t, map[int64]int{a.ID: 0, b.ID: 0}, unread(t, f, conv.ID))
}

func TestConcurrentSendsDoNotLoseIncrements(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	group, err := f.conversations.CreateGroupConversation(ctx, []int64{a.ID, b.ID, c.ID}, "", "")
	require.NoError(t, err)

	const perSender = 25
	var wg sync.WaitGroup
	for _, sender := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(sender int64) {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				_, err := f.messages.SendMessage(ctx, group.ID, sender, "msg")
				assert.NoError(t, err)
			}
		}(sender)
	}
	wg.Wait()

	assert.Equal(t, 2*perSender, unread(t, f, group.ID)[c.ID])
	msgs, err := f.messages.ListMessages(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 2*perSender)
}

func TestUnreadCountTracksMessagesSinceLastRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)

	send := func(sender int64) {
		_, err := f.messages.SendMessage(ctx, conv.ID, sender, "x")
		require.NoError(t, err)
	}

	send(a.ID)
	send(a.ID)
	require.NoError(t, f.messages.MarkConversationRead(ctx, conv.ID, b.ID))
	send(a.ID)
	send(b.ID)
	send(a.ID)

	counts := unread(t, f, conv.ID)
	// b's own message reset b, so only the final message from a counts.
	assert.Equal(t, 1, counts[b.ID])
	assert.Equal(t, 0, counts[a.ID])
}

func TestListMessagesOrderAndUnknownSender(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	users := NewUserService(store)
	messages := NewMessageService(store, store, users, nil)
	conversations := NewConversationService(store, store, nil)

	a, _ := users.CreateUser(ctx, "a", "a@x", "")
	b, _ := users.CreateUser(ctx, "b", "b@x", "")
	conv, _, err := conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)

	bodies := []string{"one", "two", "three", "four"}
	for i, body := range bodies {
		sender := a.ID
		if i%2 == 1 {
			sender = b.ID
		}
		_, err := messages.SendMessage(ctx, conv.ID, sender, body)
		require.NoError(t, err)
	}

	views, err := messages.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, views, len(bodies))
	for i := range bodies {
		assert.Equal(t, bodies[i], views[i].Body)
		if i > 0 {
			assert.False(t, views[i].CreatedAt.Before(views[i-1].CreatedAt))
		}
	}

	snapshots, err := users.SenderSnapshots(ctx, []int64{a.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, models.UnknownSender, snapshots[999])
	assert.Equal(t, "a", snapshots[a.ID].Name)

	_, err = messages.ListMessages(ctx, 4040)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestEditMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	first, err := f.messages.SendMessage(ctx, conv.ID, a.ID, "frist")
	require.NoError(t, err)
	_, err = f.messages.SendMessage(ctx, conv.ID, b.ID, "typo")
	require.NoError(t, err)

	_, err = f.messages.EditMessage(ctx, 9999, "x")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = f.messages.EditMessage(ctx, first.ID, "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	edited, err := f.messages.EditMessage(ctx, first.ID, "first")
	require.NoError(t, err)
	assert.Equal(t, "first", edited.Body)
	require.NotNil(t, edited.UpdatedAt)
	assert.True(t, edited.UpdatedAt.After(edited.CreatedAt))

	msgs, err := f.messages.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, "first", msgs[0].Body)

	// Edits never touch counters.
	assert.Equal(t, map[int64]int{a.ID: 1, b.ID: 0}, unread(t, f, conv.ID))
}

func TestMarkConversationReadErrorsAndIdempotence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	group, err := f.conversations.CreateGroupConversation(ctx, []int64{a.ID, b.ID, c.ID}, "", "")
	require.NoError(t, err)
	_, err = f.messages.SendMessage(ctx, group.ID, a.ID, "hey")
	require.NoError(t, err)

	assert.True(t, errors.Is(f.messages.MarkConversationRead(ctx, 5050, a.ID), apperrors.ErrNotFound))

	require.NoError(t, f.messages.MarkConversationRead(ctx, group.ID, b.ID))
	require.NoError(t, f.messages.MarkConversationRead(ctx, group.ID, b.ID))
	assert.Equal(t, map[int64]int{a.ID: 0, b.ID: 0, c.ID: 1}, unread(t, f, group.ID))
}

func TestReactionsOverwriteAndRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	msg, err := f.messages.SendMessage(ctx, conv.ID, a.ID, "nice")
	require.NoError(t, err)

	_, err = f.reactions.SetReaction(ctx, msg.ID, b.ID, models.ReactionLove)
	require.NoError(t, err)
	got, err := f.reactions.SetReaction(ctx, msg.ID, b.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.Equal(t, []models.Reaction{{MessageID: msg.ID, UserID: b.ID, Reaction: models.ReactionLike}}, got)

	_, err = f.reactions.SetReaction(ctx, msg.ID, a.ID, models.ReactionWow)
	require.NoError(t, err)
	listed, err := f.reactions.ListReactions(ctx, msg.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	remaining, err := f.reactions.RemoveReaction(ctx, msg.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Reaction{{MessageID: msg.ID, UserID: a.ID, Reaction: models.ReactionWow}}, remaining)

	_, err = f.reactions.RemoveReaction(ctx, msg.ID, b.ID)
	assert.NoError(t, err)

	view, err := f.messages.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Len(t, view.Reactions, 1)
}

func TestReactionErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	outsider := f.user(t, "eve")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	msg, err := f.messages.SendMessage(ctx, conv.ID, a.ID, "nice")
	require.NoError(t, err)

	_, err = f.reactions.SetReaction(ctx, msg.ID, 0, models.ReactionLike)
	assert.True(t, errors.Is(err, apperrors.ErrAuth))

	_, err = f.reactions.SetReaction(ctx, msg.ID, b.ID, models.ReactionType("thumbs"))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = f.reactions.SetReaction(ctx, 31337, b.ID, models.ReactionLike)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = f.reactions.SetReaction(ctx, msg.ID, outsider.ID, models.ReactionLike)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	_, err = f.reactions.RemoveReaction(ctx, msg.ID, 0)
	assert.True(t, errors.Is(err, apperrors.ErrAuth))

	_, err = f.reactions.ListReactions(ctx, 31337)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestPeerOf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	c := f.user(t, "c")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	group, err := f.conversations.CreateGroupConversation(ctx, []int64{a.ID, b.ID, c.ID}, "", "")
	require.NoError(t, err)

	peer, err := f.conversations.PeerOf(ctx, conv.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, peer.ID)

	_, err = f.conversations.PeerOf(ctx, group.ID, a.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = f.conversations.PeerOf(ctx, conv.ID, c.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestLiveEventsArePushed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)

	_, err = f.messages.SendMessage(ctx, conv.ID, a.ID, "hi")
	require.NoError(t, err)

	f.notifier.mu.Lock()
	defer f.notifier.mu.Unlock()
	require.NotEmpty(t, f.notifier.conversations)
	last := f.notifier.conversations[len(f.notifier.conversations)-1]
	assert.Equal(t, models.EventMessageCreated, last.Type)
	require.NotNil(t, last.Message)
	assert.Equal(t, "hi", last.Message.Body)

	bEvents := f.notifier.users[b.ID]
	require.NotEmpty(t, bEvents)
	latest := bEvents[len(bEvents)-1]
	require.NotNil(t, latest.Conversation)
	assert.Equal(t, 1, latest.Conversation.UnreadCount)
}

func TestUserDirectory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.CreateUser(ctx, " ", "x@example.com", "")
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	ann := f.user(t, "ann")
	_, err = f.users.CreateUser(ctx, "Ann Again", "ANN@example.com", "")
	assert.True(t, errors.Is(err, apperrors.ErrConflict))

	byEmail, err := f.users.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, ann.ID, byEmail.ID)

	exists, err := f.users.EmailExists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	name := "Annie"
	updated, err := f.users.UpdateUser(ctx, ann.ID, models.UserPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Annie", updated.Name)
	assert.Equal(t, "ann@example.com", updated.Email)

	withAvatar, err := f.users.UpdateAvatar(ctx, ann.ID, "/avatars/new.png")
	require.NoError(t, err)
	assert.Equal(t, "/avatars/new.png", withAvatar.AvatarImage)

	_, err = f.users.GetUser(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	all, err := f.users.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSenderSnapshotResolvedFreshOnRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.user(t, "a")
	b := f.user(t, "b")
	conv, _, err := f.conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	_, err = f.messages.SendMessage(ctx, conv.ID, a.ID, "hi")
	require.NoError(t, err)

	renamed := "Alexandra"
	_, err = f.users.UpdateUser(ctx, a.ID, models.UserPatch{Name: &renamed})
	require.NoError(t, err)

	msgs, err := f.messages.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alexandra", msgs[0].Sender.Name)
}

func TestMemoryStoreClockInjection(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := base
	store := repositories.NewMemoryStore().WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	users := NewUserService(store)
	conversations := NewConversationService(store, store, nil)
	messages := NewMessageService(store, store, users, nil)

	a, _ := users.CreateUser(ctx, "a", "a@x", "")
	b, _ := users.CreateUser(ctx, "b", "b@x", "")
	conv, _, err := conversations.CreatePersonalConversation(ctx, a.ID, b.ID, "")
	require.NoError(t, err)
	sent, err := messages.SendMessage(ctx, conv.ID, a.ID, "tick")
	require.NoError(t, err)

	edited, err := messages.EditMessage(ctx, sent.ID, "tock")
	require.NoError(t, err)
	assert.Equal(t, sent.CreatedAt.Add(time.Second), *edited.UpdatedAt)
}
