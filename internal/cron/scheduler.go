package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"paybridge/internal/config"
	"paybridge/internal/models"
)

// OrderStore is the slice of the order repository the scheduler uses.
// Implemented by repository.OrderRepository.
type OrderStore interface {
	FindStalePending(olderThan time.Duration, limit int) ([]models.Order, error)
	UpdateStatus(id uint, status, note string) error
}

// Scheduler runs the background maintenance jobs of the bridge.
type Scheduler struct {
	cron   *cron.Cron
	cfg    *config.Config
	orders OrderStore
	logger *zap.Logger
}

// New creates a new cron scheduler.
func New(cfg *config.Config, orders OrderStore, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		cfg:    cfg,
		orders: orders,
		logger: logger,
	}
}

// Start registers and starts all cron jobs.
func (s *Scheduler) Start() {
	if s.cfg.Store.PendingTTL > 0 {
		// Expire abandoned payments - every 5 minutes
		s.cron.AddFunc("0 */5 * * * *", func() {
			s.logger.Debug("Running: expire stale pending orders")
			s.expireStalePayments()
		})
	}

	s.cron.Start()
}

// Stop stops the scheduler; the returned context is done once running
// jobs have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// expireStalePayments cancels orders that stayed pending past the
// configured window. A payer who never returned from the hosted page
// leaves the order pending forever otherwise.
func (s *Scheduler) expireStalePayments() {
	stale, err := s.orders.FindStalePending(s.cfg.Store.PendingTTL, 100)
	if err != nil {
		s.logger.Error("failed to query stale pending orders", zap.Error(err))
		return
	}

	for _, order := range stale {
		if err := s.orders.UpdateStatus(order.ID, models.OrderStatusCancelled, "payment window expired"); err != nil {
			s.logger.Error("failed to expire order",
				zap.Uint("order_id", order.ID),
				zap.Error(err))
			continue
		}
	}

	if len(stale) > 0 {
		s.logger.Info("expired stale pending orders", zap.Int("count", len(stale)))
	}
}
