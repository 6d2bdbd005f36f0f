package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ventech/ventech_api/internal/pkg/clock"
	"github.com/ventech/ventech_api/internal/sse"
)

// ExpiredDealCloser flips deals past their end date to inactive.
type ExpiredDealCloser interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// CacheInvalidator drops cached deal listings.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// DealExpiryWorker periodically deactivates ended deals.
type DealExpiryWorker struct {
	deals    ExpiredDealCloser
	cache    CacheInvalidator
	clock    clock.Clock
	notifier sse.ChangeNotifier
	interval time.Duration
}

// NewDealExpiryWorker constructs a DealExpiryWorker.
func NewDealExpiryWorker(deals ExpiredDealCloser, cache CacheInvalidator, clk clock.Clock, interval time.Duration) *DealExpiryWorker {
	if clk == nil {
		clk = clock.System{}
	}
	return &DealExpiryWorker{deals: deals, cache: cache, clock: clk, notifier: sse.NopNotifier{}, interval: interval}
}

// SetNotifier sets the notifier told about expired deals.
func (w *DealExpiryWorker) SetNotifier(n sse.ChangeNotifier) {
	w.notifier = n
}

// Start begins the expiry loop and listens for context cancellation.
func (w *DealExpiryWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting deal expiry worker")

	// Run immediately on start
	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Deal expiry worker stopped")
			return
		}
	}
}

func (w *DealExpiryWorker) run(ctx context.Context) {
	n, err := w.deals.DeactivateExpired(ctx, w.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to deactivate expired deals")
		return
	}
	if n == 0 {
		return
	}

	w.cache.InvalidateCache(ctx)
	w.notifier.NotifyDealsExpired(n)
	log.Info().Int64("deals", n).Msg("Deactivated expired deals")
}
