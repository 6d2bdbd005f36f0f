package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// FlashRefresher recomputes and caches the default flash-deal carousel.
type FlashRefresher interface {
	RefreshFlash(ctx context.Context) (int, error)
}

// FlashDealWarmer keeps the homepage carousel cached.
type FlashDealWarmer struct {
	deals    FlashRefresher
	interval time.Duration
}

// NewFlashDealWarmer constructs a FlashDealWarmer.
func NewFlashDealWarmer(deals FlashRefresher, interval time.Duration) *FlashDealWarmer {
	return &FlashDealWarmer{deals: deals, interval: interval}
}

// Start begins the warm loop and listens for context cancellation.
func (w *FlashDealWarmer) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting flash deal warmer")

	w.run(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Flash deal warmer stopped")
			return
		}
	}
}

func (w *FlashDealWarmer) run(ctx context.Context) {
	start := time.Now()
	n, err := w.deals.RefreshFlash(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to warm flash deals")
		return
	}
	log.Debug().Int("products", n).Dur("duration", time.Since(start)).Msg("Flash deals warmed")
}
