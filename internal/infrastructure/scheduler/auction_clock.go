// Package scheduler runs background jobs for the auction marketplace.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuctionClockConfig holds sweep configuration
type AuctionClockConfig struct {
	Enabled       bool
	SweepInterval time.Duration
	BatchSize     int
}

// DefaultAuctionClockConfig returns default sweep configuration
func DefaultAuctionClockConfig() AuctionClockConfig {
	return AuctionClockConfig{
		Enabled:       true,
		SweepInterval: 30 * time.Second,
		BatchSize:     100,
	}
}

// AuctionClock periodically sweeps auctions whose start or end time has
// passed and applies the temporal transitions. Reads already apply the
// same transitions lazily; the sweep exists so auctions nobody is
// looking at still end on time.
type AuctionClock struct {
	config    AuctionClockConfig
	auctions  auction.Repository
	publisher shared.EventPublisher
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewAuctionClock creates a new auction clock sweeper
func NewAuctionClock(cfg AuctionClockConfig, auctions auction.Repository, publisher shared.EventPublisher, logger *zap.Logger) *AuctionClock {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &AuctionClock{
		config:    cfg,
		auctions:  auctions,
		publisher: publisher,
		logger:    logger.Named("auction_clock"),
	}
}

// Start begins the background sweep loop
func (c *AuctionClock) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return errors.New("auction clock is already running")
	}
	if !c.config.Enabled {
		c.logger.Info("auction clock disabled")
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.isRunning = true

	c.wg.Add(1)
	go c.run(ctx)

	c.logger.Info("auction clock started",
		zap.Duration("sweep_interval", c.config.SweepInterval),
		zap.Int("batch_size", c.config.BatchSize),
	)
	return nil
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish
func (c *AuctionClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		return
	}
	c.cancel()
	c.wg.Wait()
	c.isRunning = false
	c.logger.Info("auction clock stopped")
}

func (c *AuctionClock) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			transitioned, err := c.SweepOnce(ctx)
			if err != nil {
				c.logger.Error("sweep failed", zap.Error(err))
				continue
			}
			if transitioned > 0 {
				c.logger.Info("sweep transitioned auctions", zap.Int("count", transitioned))
			}
		}
	}
}

// SweepOnce finds auctions due for a transition and applies it. Version
// conflicts are skipped; a concurrent bid or read already advanced the
// auction and the next sweep picks up whatever remains.
func (c *AuctionClock) SweepOnce(ctx context.Context) (int, error) {
	now := time.Now()

	due, err := c.auctions.FindDueForTransition(ctx, now, c.config.BatchSize)
	if err != nil {
		return 0, err
	}

	transitioned := 0
	for i := range due {
		a := &due[i]
		if !a.EvaluateClock(now) {
			continue
		}

		if err := c.auctions.SaveWithLock(ctx, a); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				continue
			}
			c.logger.Error("failed to persist auction transition",
				zap.String("auction_id", a.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if c.publisher != nil {
			if err := c.publisher.Publish(ctx, a.GetDomainEvents()...); err != nil {
				c.logger.Error("failed to publish auction events",
					zap.String("auction_id", a.ID.String()),
					zap.Error(err),
				)
			}
		}
		a.ClearDomainEvents()
		transitioned++
	}

	return transitioned, nil
}
