package audit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/egannguyen/go-ordering-service/internal/entity"
	"github.com/egannguyen/go-ordering-service/internal/repository"
)

// Auditor feeds the event store from the published event stream. The
// command path never writes the event log itself; this consumer appends
// every committed transition asynchronously.
type Auditor struct {
	events repository.EventStore
}

func NewAuditor(events repository.EventStore) *Auditor {
	return &Auditor{events: events}
}

// Run consumes messages until the channel closes. Malformed payloads
// and duplicate or outdated events are acked so they are not
// redelivered forever; transient append failures are nacked for retry.
func (a *Auditor) Run(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		var event entity.DomainEvent
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			slog.Error("Dropping unreadable event message", "message_id", msg.UUID, "err", err)
			msg.Ack()
			continue
		}

		if err := a.events.Append(ctx, &event); err != nil {
			if errors.Is(err, entity.ErrPersistence) || errors.Is(err, entity.ErrEntityOutdated) {
				slog.Info("Event already recorded, skipping", "event_id", event.ID, "err", err)
				msg.Ack()
				continue
			}
			slog.Error("Failed to append event, retrying", "event_id", event.ID, "err", err)
			msg.Nack()
			continue
		}

		slog.Debug("Event appended to store", "event_id", event.ID, "event_name", event.EventName)
		msg.Ack()
	}
}
