// Package watch streams live venue activity for the tracked mint over a
// log subscription.
package watch

import (
	"context"

	"github.com/rs/zerolog"

	"solana-whale-scan/internal/domain"
	"solana-whale-scan/internal/ingest"
	"solana-whale-scan/internal/solana"
)

// Watcher subscribes to logs mentioning the tracked mint and reports each
// transaction's venue as a structured event. It observes only; nothing is
// decoded or persisted.
type Watcher struct {
	ws     solana.WSClient
	mint   string
	logger zerolog.Logger
}

// New creates a watcher for the tracked mint.
func New(ws solana.WSClient, mint string, logger zerolog.Logger) *Watcher {
	return &Watcher{ws: ws, mint: mint, logger: logger}
}

// Event is one observed transaction.
type Event struct {
	Signature string
	Slot      int64
	Venue     domain.Venue
	Failed    bool
}

// Watch subscribes and classifies notifications until the context is
// cancelled or the subscription channel closes. Events are delivered on the
// returned channel and logged.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, error) {
	notifications, err := w.ws.SubscribeLogs(ctx, solana.LogsFilter{
		Mentions: []string{w.mint},
	})
	if err != nil {
		return nil, err
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-notifications:
				if !ok {
					return
				}
				ev := Event{
					Signature: n.Signature,
					Slot:      n.Slot,
					Venue:     ingest.Classify(n.Logs),
					Failed:    n.Err != nil,
				}
				w.logger.Info().
					Str("signature", ev.Signature).
					Int64("slot", ev.Slot).
					Str("venue", string(ev.Venue)).
					Bool("failed", ev.Failed).
					Msg("live transaction")
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return events, nil
}
