package notify

import (
	"context"

	"go.uber.org/zap"
)

// Event is an outbound notification. Dispatch is always best-effort:
// callers fire and forget, and a failed send must never fail the
// database mutation that triggered it.
type Event struct {
	Title   string
	Message string
	// Level steers webhook formatting: "info", "warning" or "critical"
	Level string
}

// Sender delivers one event to one channel
type Sender interface {
	Send(ctx context.Context, event Event) error
	Name() string
}

// Notifier fans an event out to every configured channel, logging
// failures and swallowing them.
type Notifier struct {
	senders []Sender
	logger  *zap.Logger
}

func NewNotifier(logger *zap.Logger, senders ...Sender) *Notifier {
	return &Notifier{senders: senders, logger: logger}
}

// Dispatch sends the event to all channels. Errors are logged, never
// returned.
func (n *Notifier) Dispatch(ctx context.Context, event Event) {
	for _, sender := range n.senders {
		if err := sender.Send(ctx, event); err != nil {
			n.logger.Warn("notification dispatch failed",
				zap.String("channel", sender.Name()),
				zap.String("title", event.Title),
				zap.Error(err),
			)
		}
	}
}
