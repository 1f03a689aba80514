package ports

import (
	"context"

	"github.com/bnema/uccx-chat-client/internal/domain"
)

// EventSink receives a copy of every event the dispatcher processed.
type EventSink interface {
	Publish(ctx context.Context, sessionID string, event domain.Event) error
}
