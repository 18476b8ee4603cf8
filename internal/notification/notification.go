package notification

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

const (
	// KindOTP carries a phone verification code.
	KindOTP = "otp"
	// KindAdhoc is a user-initiated message to their own phone.
	KindAdhoc = "adhoc"
	// KindSOS is an emergency alert to a contact.
	KindSOS = "sos"

	defaultBroadcastWorkers = 8
)

// ErrNoDestination is reported for messages without a phone number.
var ErrNoDestination = errors.New("message has no destination")

// Message describes a text to deliver to one phone number.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers a single message to a downstream gateway.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub gateway that writes messages to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if message.Destination == "" {
		return ErrNoDestination
	}
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}

// Result is the delivery outcome of one broadcast message.
type Result struct {
	Message Message
	Err     error
}

// Broadcast sends every message concurrently and returns one Result per
// message, in input order. Individual failures do not stop other sends.
func Broadcast(ctx context.Context, n Notifier, messages []Message) []Result {
	results := make([]Result, len(messages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultBroadcastWorkers)
	for i, msg := range messages {
		i, msg := i, msg
		results[i].Message = msg
		if msg.Destination == "" {
			results[i].Err = ErrNoDestination
			continue
		}
		g.Go(func() error {
			results[i].Err = n.Send(gctx, msg)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed counts the results carrying an error.
func Failed(results []Result) int {
	var n int
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
