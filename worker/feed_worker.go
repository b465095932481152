package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"cims/realtime"
)

// FeedWorker is a background worker that consumes the complaint change feed
// and logs every change for the dashboard audit trail. It resubscribes after
// feed failures so a Redis restart does not kill the consumer.
type FeedWorker struct {
	feed     realtime.Feed
	stopChan chan struct{}
	running  bool
}

// NewFeedWorker creates a new feed worker
func NewFeedWorker(feed realtime.Feed) *FeedWorker {
	return &FeedWorker{
		feed:     feed,
		stopChan: make(chan struct{}),
	}
}

// Start starts the feed worker in a separate goroutine
func (w *FeedWorker) Start() {
	if w.running {
		log.Warn().Msg("feed worker is already running")
		return
	}
	w.running = true
	log.Info().Msg("feed worker started")
	go w.run()
}

// Stop stops the feed worker
func (w *FeedWorker) Stop() {
	if !w.running {
		return
	}
	close(w.stopChan)
	w.running = false
	log.Info().Msg("feed worker stopped")
}

func (w *FeedWorker) run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-w.stopChan
		cancel()
	}()

	for {
		if err := w.consume(ctx); err != nil {
			log.Warn().Err(err).Msg("feed subscription failed, retrying")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// consume runs one subscription until the channel closes or the worker stops.
func (w *FeedWorker) consume(ctx context.Context) error {
	events, cancel, err := w.feed.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			log.Info().
				Str("complaint_id", event.ComplaintID).
				Time("changed_at", event.ChangedAt).
				Msg("complaint changed")
		}
	}
}
