// Package billing mirrors the payment provider's plan catalog into the
// local store.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opsboard/opsboard/internal/billing/payments"
	"github.com/opsboard/opsboard/internal/store"
	"github.com/opsboard/opsboard/internal/tenant"
)

// Syncer walks the provider catalog and upserts plans and prices.
type Syncer struct {
	client  payments.Client
	db      store.BillingStore
	logger  *slog.Logger
	timeout time.Duration
}

// NewSyncer creates a catalog syncer. The timeout bounds one full sync;
// provider pagination is otherwise unbounded.
func NewSyncer(client payments.Client, db store.BillingStore, logger *slog.Logger, timeout time.Duration) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	return &Syncer{client: client, db: db, logger: logger, timeout: timeout}
}

// SyncPlans pulls every product and price page from the provider and
// upserts them locally. Provider product IDs are the upsert identity.
func (s *Syncer) SyncPlans(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()

	planIDs, err := s.syncProducts(ctx)
	if err != nil {
		return err
	}

	priceCount, err := s.syncPrices(ctx, planIDs)
	if err != nil {
		return err
	}

	s.logger.Info("plan sync completed",
		slog.Int("plans", len(planIDs)),
		slog.Int("prices", priceCount),
		slog.Duration("duration", time.Since(start)),
	)

	return nil
}

// syncProducts returns provider product ID -> local plan ID for the
// price pass.
func (s *Syncer) syncProducts(ctx context.Context) (map[string]string, error) {
	planIDs := make(map[string]string)
	cursor := ""

	for {
		page, err := s.client.ListProducts(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}

		for _, prod := range page.Data {
			plan := &store.Plan{
				ID:         uuid.New().String(),
				ProviderID: prod.ID,
				Slug:       tenant.Slugify(prod.Name),
				Name:       prod.Name,
				Active:     prod.Active,
			}
			if err := s.db.UpsertPlan(ctx, plan); err != nil {
				return nil, fmt.Errorf("upsert plan %s: %w", prod.ID, err)
			}
		}

		if !page.HasMore || len(page.Data) == 0 {
			break
		}
		cursor = page.Data[len(page.Data)-1].ID
	}

	// Re-read so upserts that kept an earlier local ID map correctly
	plans, err := s.db.ListPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("list local plans: %w", err)
	}
	for _, p := range plans {
		planIDs[p.ProviderID] = p.ID
	}

	return planIDs, nil
}

func (s *Syncer) syncPrices(ctx context.Context, planIDs map[string]string) (int, error) {
	count := 0
	cursor := ""

	for {
		page, err := s.client.ListPrices(ctx, cursor)
		if err != nil {
			return count, fmt.Errorf("list prices: %w", err)
		}

		for _, pr := range page.Data {
			planID, ok := planIDs[pr.ProductID]
			if !ok {
				// Price for a product outside the synced catalog
				s.logger.Warn("skipping price with unknown product",
					slog.String("price", pr.ID),
					slog.String("product", pr.ProductID),
				)
				continue
			}

			price := &store.Price{
				ID:         uuid.New().String(),
				PlanID:     planID,
				ProviderID: pr.ID,
				Interval:   pr.Interval,
				UnitAmount: pr.UnitAmount,
				Currency:   pr.Currency,
			}
			if err := s.db.UpsertPrice(ctx, price); err != nil {
				return count, fmt.Errorf("upsert price %s: %w", pr.ID, err)
			}
			count++
		}

		if !page.HasMore || len(page.Data) == 0 {
			break
		}
		cursor = page.Data[len(page.Data)-1].ID
	}

	return count, nil
}
