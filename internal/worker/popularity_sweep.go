package worker

import (
	"context"
	"time"

	"bartab_backend/internal/cache"
	"bartab_backend/internal/repositories"
	"bartab_backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PopularitySweep periodically recomputes popularity scores for the whole
// catalog. Orders already recompute scores for the products they touch; the
// sweep exists so products that stop selling decay as their sale events age
// out of the recency window.
type PopularitySweep struct {
	db          repositories.DB
	productRepo repositories.ProductRepository
	ranking     *cache.RankingCache
	interval    time.Duration
}

// NewPopularitySweep creates the sweep worker. Interval must be positive.
func NewPopularitySweep(
	db repositories.DB,
	productRepo repositories.ProductRepository,
	ranking *cache.RankingCache,
	interval time.Duration,
) *PopularitySweep {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &PopularitySweep{
		db:          db,
		productRepo: productRepo,
		ranking:     ranking,
		interval:    interval,
	}
}

// Start launches the sweep loop in its own goroutine. One pass runs
// immediately, then one per interval until the context is cancelled.
func (w *PopularitySweep) Start(ctx context.Context) {
	go func() {
		log.Info().Dur("interval", w.interval).Msg("Popularity sweep started")
		w.runOnce()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Popularity sweep stopped")
				return
			case <-ticker.C:
				w.runOnce()
			}
		}
	}()
}

func (w *PopularitySweep) runOnce() {
	started := time.Now()
	ids, err := w.productRepo.GetProductIDs()
	if err != nil {
		log.Error().Err(err).Msg("Popularity sweep: listing products failed")
		return
	}

	swept, failed := 0, 0
	for _, id := range ids {
		if err := w.sweepProduct(id); err != nil {
			failed++
			log.Error().Err(err).Int64("product_id", id).Msg("Popularity sweep: product failed")
			continue
		}
		swept++
	}
	log.Info().
		Int("swept", swept).
		Int("failed", failed).
		Dur("elapsed", time.Since(started)).
		Msg("Popularity sweep pass finished")
}

// sweepProduct prunes aged sale events and recomputes one product's score in
// its own transaction, so a single bad row cannot stall the whole pass.
func (w *PopularitySweep) sweepProduct(productID int64) error {
	tx, err := w.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := w.productRepo.PruneSaleEvents(tx, productID, now.Add(-services.RecentSalesWindow)); err != nil {
		return err
	}
	recent, err := w.productRepo.RecentQuantity(tx, productID, now.Add(-services.RecentSalesWindow))
	if err != nil {
		return err
	}
	total, err := w.productRepo.TotalQuantitySold(tx, productID)
	if err != nil {
		return err
	}

	score := services.PopularityScore(recent, total)
	if err := w.productRepo.SetPopularityScore(tx, productID, score); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	w.ranking.SetScore(productID, score)
	return nil
}
