package service

import (
	"context"
	"sync"
	"time"

	"github.com/isabelayared/pharmastock-system/internal/inventory/events"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// ExpiryScanner periodically sweeps the stock for batches inside the alert
// horizon and publishes an expiring event for each one found.
type ExpiryScanner struct {
	service   *InventoryService
	publisher *events.InventoryEventPublisher
	interval  time.Duration
	horizon   int
	logger    *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewExpiryScanner creates a new expiry scanner
func NewExpiryScanner(
	service *InventoryService,
	publisher *events.InventoryEventPublisher,
	interval time.Duration,
	horizonDays int,
	log *logger.Logger,
) *ExpiryScanner {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	if horizonDays <= 0 {
		horizonDays = DefaultAlertHorizonDays
	}
	return &ExpiryScanner{
		service:   service,
		publisher: publisher,
		interval:  interval,
		horizon:   horizonDays,
		logger:    log,
	}
}

// Start launches the scan loop. The first sweep runs immediately, then
// once per interval until Stop or context cancellation.
func (s *ExpiryScanner) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.scan(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.scan(ctx)
			}
		}
	}()

	s.logger.Info().
		Dur("interval", s.interval).
		Int("horizon_days", s.horizon).
		Msg("expiry scanner started")
}

// Stop halts the scan loop and waits for an in-flight sweep to finish
func (s *ExpiryScanner) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info().Msg("expiry scanner stopped")
}

func (s *ExpiryScanner) scan(ctx context.Context) {
	alerts, err := s.service.Alerts(ctx, s.horizon)
	if err != nil {
		s.logger.Error().Err(err).Msg("expiry scan failed")
		return
	}

	for _, alert := range alerts {
		s.publisher.PublishBatchExpiring(ctx, alert.ProductName, alert.BatchID, alert.DaysRemaining)
	}

	if len(alerts) > 0 {
		s.logger.Info().Int("count", len(alerts)).Msg("expiring batches detected")
	}
}
