package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"messenger-service/internal/mocks"
	"messenger-service/internal/services"
)

type testDeps struct {
	users         *mocks.UserRepositoryMock
	conversations *mocks.ConversationRepositoryMock
	messages      *mocks.MessageRepositoryMock
	reactions     *mocks.ReactionRepositoryMock
	router        *gin.Engine
}

func (d *testDeps) assertExpectations(t *testing.T) {
	d.users.AssertExpectations(t)
	d.conversations.AssertExpectations(t)
	d.messages.AssertExpectations(t)
	d.reactions.AssertExpectations(t)
}

// setupRouter wires real services over repository mocks and authenticates
// every request as user 1.
func setupRouter() *testDeps {
	gin.SetMode(gin.TestMode)
	d := &testDeps{
		users:         new(mocks.UserRepositoryMock),
		conversations: new(mocks.ConversationRepositoryMock),
		messages:      new(mocks.MessageRepositoryMock),
		reactions:     new(mocks.ReactionRepositoryMock),
	}

	userService := services.NewUserService(d.users)
	conversationService := services.NewConversationService(d.users, d.conversations, nil)
	messageService := services.NewMessageService(d.conversations, d.messages, userService, nil)
	reactionService := services.NewReactionService(d.conversations, d.messages, d.reactions, nil)

	r := gin.New()
	fakeAuth := func(c *gin.Context) {
		c.Set("userID", int64(1))
		c.Next()
	}
	RegisterRoutes(r, fakeAuth, Set{
		Users:         NewUserHandler(userService, nil),
		Conversations: NewConversationHandler(conversationService, nil),
		Messages:      NewMessageHandler(messageService, conversationService),
		Reactions:     NewReactionHandler(reactionService, messageService, conversationService),
	})
	d.router = r
	return d
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
