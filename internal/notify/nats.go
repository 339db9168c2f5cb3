package notify

import (
	"context"
	"time"

	"github.com/blockedby/recruiting-os/internal/logger"
)

// NATS subjects for notification events.
const (
	SubjectSuccess = "admin.notify.success"
	SubjectError   = "admin.notify.error"
)

// Publisher is the messaging capability the NATS notifier needs.
// Satisfied by *nats.Client.
type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
}

// NATS publishes notification envelopes to JetStream subjects.
// Delivery is fire-and-forget: publish failures are logged, never
// surfaced to the mutation pipeline.
type NATS struct {
	pub Publisher
	log *logger.Logger
}

// NewNATS creates a NATS-backed notifier.
func NewNATS(pub Publisher, log *logger.Logger) *NATS {
	if log == nil {
		log = logger.Get()
	}
	return &NATS{pub: pub, log: log}
}

func (n *NATS) Success(text string) {
	n.publish(SubjectSuccess, Event{Level: LevelSuccess, Text: text, At: time.Now().UTC()})
}

func (n *NATS) Error(text string) {
	n.publish(SubjectError, Event{Level: LevelError, Text: text, At: time.Now().UTC()})
}

func (n *NATS) publish(subject string, evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.pub.Publish(ctx, subject, evt); err != nil {
		n.log.Warn().Err(err).Str("subject", subject).Msg("notification publish failed")
	}
}
