package services

import (
	"context"
	"log/slog"

	"messenger-service/internal/models"
	"messenger-service/internal/observability"
)

// Notifier pushes live updates to subscribed clients. ws.Hub implements it.
type Notifier interface {
	BroadcastConversation(conversationID int64, event models.ConversationEvent)
	NotifyUser(userID int64, event models.UserEvent)
}

type noopNotifier struct{}

func (noopNotifier) BroadcastConversation(int64, models.ConversationEvent) {}
func (noopNotifier) NotifyUser(int64, models.UserEvent)                    {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}

// summarySource is the slice of ConversationRepository needed to refresh lists.
type summarySource interface {
	GetSummary(ctx context.Context, conversationID, userID int64) (models.ConversationSummary, error)
}

// refreshConversationLists tells each participant their conversation list changed.
func refreshConversationLists(ctx context.Context, notifier Notifier, source summarySource, conversationID int64, userIDs []int64) {
	for _, userID := range userIDs {
		summary, err := source.GetSummary(ctx, conversationID, userID)
		if err != nil {
			slog.Warn("conversation summary for push failed", "conversation_id", conversationID, "user_id", userID, "error", err)
			continue
		}
		notifier.NotifyUser(userID, models.UserEvent{Type: models.EventConversationUpdated, Conversation: &summary})
	}
}

// publishDomainEvent emits a chat_events.<name> message; failures are logged only.
func publishDomainEvent(ctx context.Context, name string, payload map[string]interface{}) {
	err := observability.PublishEvent(ctx, "chat_events."+name, observability.EventEnvelope{
		EventType: "chat_events",
		EventName: name,
		Payload:   payload,
	}, observability.HeadersFromContext(ctx))
	if err != nil {
		slog.Warn("domain event publish failed", "event", name, "error", err)
	}
}
