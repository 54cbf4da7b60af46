package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

func TestListConversationsSuccess(t *testing.T) {
	d := setupRouter()
	d.conversations.On("ListConversationsForUser", mock.Anything, int64(1)).
		Return([]models.ConversationSummary{{ID: 3, Type: models.ConversationPersonal, UnreadCount: 2}}, nil).Once()

	rec := doJSON(d.router, http.MethodGet, "/conversations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode(t, rec)["conversations"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, float64(2), list[0].(map[string]any)["unread_count"])
	d.assertExpectations(t)
}

func TestListConversationsRepoError(t *testing.T) {
	d := setupRouter()
	d.conversations.On("ListConversationsForUser", mock.Anything, int64(1)).Return(nil, assert.AnError).Once()

	rec := doJSON(d.router, http.MethodGet, "/conversations", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	d.assertExpectations(t)
}

func TestCreatePersonalCreatesNew(t *testing.T) {
	d := setupRouter()
	d.users.On("GetUsers", mock.Anything, []int64{1, 2}).
		Return([]models.User{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}}, nil).Once()
	d.conversations.On("FindPersonalConversation", mock.Anything, int64(1), int64(2)).
		Return(models.Conversation{}, repositories.ErrConversationNotFound).Once()
	d.conversations.On("CreateConversation", mock.Anything, models.NewConversation{
		Type:           models.ConversationPersonal,
		ParticipantIDs: []int64{1, 2},
		DisplayName:    "Ann and Bob",
	}).Return(models.Conversation{ID: 10, Type: models.ConversationPersonal, ParticipantIDs: []int64{1, 2}, DisplayName: "Ann and Bob"}, nil).Once()
	d.conversations.On("GetSummary", mock.Anything, int64(10), mock.Anything).
		Return(models.ConversationSummary{ID: 10}, nil).Twice()

	rec := doJSON(d.router, http.MethodPost, "/conversations/personal", `{"user_id":2}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ann and Bob", decode(t, rec)["display_name"])
	d.assertExpectations(t)
}

func TestCreatePersonalReturnsExisting(t *testing.T) {
	d := setupRouter()
	d.users.On("GetUsers", mock.Anything, []int64{1, 2}).
		Return([]models.User{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}}, nil).Once()
	d.conversations.On("FindPersonalConversation", mock.Anything, int64(1), int64(2)).
		Return(models.Conversation{ID: 10, Type: models.ConversationPersonal, ParticipantIDs: []int64{2, 1}}, nil).Once()

	rec := doJSON(d.router, http.MethodPost, "/conversations/personal", `{"user_id":2}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(10), decode(t, rec)["id"])
	d.assertExpectations(t)
}

func TestCreatePersonalWithSelf(t *testing.T) {
	d := setupRouter()
	rec := doJSON(d.router, http.MethodPost, "/conversations/personal", `{"user_id":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	d.assertExpectations(t)
}

func TestCreatePersonalUnknownPeer(t *testing.T) {
	d := setupRouter()
	d.users.On("GetUsers", mock.Anything, []int64{1, 99}).
		Return([]models.User{{ID: 1, Name: "Ann"}}, nil).Once()

	rec := doJSON(d.router, http.MethodPost, "/conversations/personal", `{"user_id":99}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	d.assertExpectations(t)
}

func TestCreateGroupSuccess(t *testing.T) {
	d := setupRouter()
	d.users.On("GetUsers", mock.Anything, []int64{1, 2, 3}).
		Return([]models.User{{ID: 1, Name: "Ann"}, {ID: 2, Name: "Bob"}, {ID: 3, Name: "Cy"}}, nil).Once()
	d.conversations.On("CreateConversation", mock.Anything, models.NewConversation{
		Type:           models.ConversationGroup,
		ParticipantIDs: []int64{1, 2, 3},
		DisplayName:    "Group with Ann",
	}).Return(models.Conversation{ID: 11, Type: models.ConversationGroup, ParticipantIDs: []int64{1, 2, 3}, DisplayName: "Group with Ann"}, nil).Once()
	d.conversations.On("GetSummary", mock.Anything, int64(11), mock.Anything).
		Return(models.ConversationSummary{ID: 11}, nil).Times(3)

	rec := doJSON(d.router, http.MethodPost, "/conversations/group", `{"participant_ids":[2,3,1]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Group with Ann", decode(t, rec)["display_name"])
	d.assertExpectations(t)
}

func TestCreateGroupTooFewParticipants(t *testing.T) {
	d := setupRouter()

	rec := doJSON(d.router, http.MethodPost, "/conversations/group", `{"participant_ids":[1]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "at least 2 participants")
	d.assertExpectations(t)
}

func TestCreateGroupMissingParticipants(t *testing.T) {
	d := setupRouter()
	rec := doJSON(d.router, http.MethodPost, "/conversations/group", `{"display_name":"x"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersonalExists(t *testing.T) {
	d := setupRouter()
	d.conversations.On("FindPersonalConversation", mock.Anything, int64(1), int64(2)).
		Return(models.Conversation{ID: 10}, nil).Once()

	rec := doJSON(d.router, http.MethodGet, "/conversations/personal/exists?user_id=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["exists"])
	assert.Equal(t, float64(10), resp["conversation_id"])
	d.assertExpectations(t)
}

func TestPersonalExistsAbsent(t *testing.T) {
	d := setupRouter()
	d.conversations.On("FindPersonalConversation", mock.Anything, int64(1), int64(5)).
		Return(models.Conversation{}, repositories.ErrConversationNotFound).Once()

	rec := doJSON(d.router, http.MethodGet, "/conversations/personal/exists?user_id=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, false, resp["exists"])
	assert.NotContains(t, resp, "conversation_id")
	d.assertExpectations(t)
}

func TestPersonalExistsInvalidUser(t *testing.T) {
	d := setupRouter()
	rec := doJSON(d.router, http.MethodGet, "/conversations/personal/exists?user_id=x", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationForbiddenForOutsider(t *testing.T) {
	d := setupRouter()
	d.conversations.On("GetConversation", mock.Anything, int64(8)).
		Return(models.Conversation{ID: 8, ParticipantIDs: []int64{2, 3}}, nil).Once()

	rec := doJSON(d.router, http.MethodGet, "/conversations/8", "")

	require.Equal(t, http.StatusForbidden, rec.Code)
	d.assertExpectations(t)
}

func TestGetConversationNotFound(t *testing.T) {
	d := setupRouter()
	d.conversations.On("GetConversation", mock.Anything, int64(8)).
		Return(models.Conversation{}, repositories.ErrConversationNotFound).Once()

	rec := doJSON(d.router, http.MethodGet, "/conversations/8", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	d.assertExpectations(t)
}

func TestGetPeer(t *testing.T) {
	d := setupRouter()
	d.conversations.On("GetConversation", mock.Anything, int64(10)).
		Return(models.Conversation{ID: 10, Type: models.ConversationPersonal, ParticipantIDs: []int64{1, 2}}, nil).Once()
	d.users.On("GetUser", mock.Anything, int64(2)).Return(models.User{ID: 2, Name: "Bob"}, nil).Once()

	rec := doJSON(d.router, http.MethodGet, "/conversations/10/peer", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bob", decode(t, rec)["name"])
	d.assertExpectations(t)
}
