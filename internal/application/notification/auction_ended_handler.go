package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/auction"
	"github.com/auctionhouse/backend/internal/domain/shared"
)

// AuctionEndedHandler notifies the winner and the seller when an
// auction closes
type AuctionEndedHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewAuctionEndedHandler creates a handler for auction ended events
func NewAuctionEndedHandler(notifier Notifier, logger *zap.Logger) *AuctionEndedHandler {
	return &AuctionEndedHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *AuctionEndedHandler) EventTypes() []string {
	return []string{"AuctionEnded"}
}

// Handle notifies the parties of a closed auction. Delivery failures
// are returned so the bus can log them; the auction state is already
// committed and unaffected.
func (h *AuctionEndedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	ended, ok := event.(*auction.AuctionEndedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected AuctionEnded, got %s", event.EventType())
	}

	if ended.WinnerID != nil {
		if err := h.notifier.Deliver(ctx, Notice{
			UserID:  *ended.WinnerID,
			Kind:    KindAuctionWon,
			Subject: "You won the auction",
			Body:    fmt.Sprintf("Your bid of %s won. Submit your payment to receive the seller's contact details.", ended.FinalPrice.String()),
			RefID:   ended.AuctionID,
			RefType: "Auction",
		}); err != nil {
			return fmt.Errorf("failed to notify winner: %w", err)
		}
	}

	if err := h.notifier.Deliver(ctx, Notice{
		UserID:  ended.SellerID,
		Kind:    KindAuctionEnded,
		Subject: "Your auction has ended",
		Body:    auctionOutcome(ended),
		RefID:   ended.AuctionID,
		RefType: "Auction",
	}); err != nil {
		return fmt.Errorf("failed to notify seller: %w", err)
	}

	h.logger.Debug("auction ended notifications sent",
		zap.String("auction_id", ended.AuctionID.String()),
		zap.Bool("has_winner", ended.WinnerID != nil),
	)
	return nil
}

func auctionOutcome(e *auction.AuctionEndedEvent) string {
	if e.WinnerID == nil {
		return "Your auction closed without a winner."
	}
	return fmt.Sprintf("Your auction closed with a winning bid of %s.", e.FinalPrice.String())
}

var _ shared.EventHandler = (*AuctionEndedHandler)(nil)
