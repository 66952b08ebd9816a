package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/auctionhouse/backend/internal/domain/payment"
	"github.com/auctionhouse/backend/internal/domain/shared"
)

// PaymentResolvedHandler notifies the submitter when an admin approves
// or rejects their payment request
type PaymentResolvedHandler struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewPaymentResolvedHandler creates a handler for payment resolution events
func NewPaymentResolvedHandler(notifier Notifier, logger *zap.Logger) *PaymentResolvedHandler {
	return &PaymentResolvedHandler{notifier: notifier, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentResolvedHandler) EventTypes() []string {
	return []string{"PaymentRequestApproved", "PaymentRequestRejected"}
}

// Handle notifies the payment submitter of the verification outcome
func (h *PaymentResolvedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var notice Notice

	switch e := event.(type) {
	case *payment.PaymentRequestApprovedEvent:
		notice = Notice{
			UserID:  e.UserID,
			Kind:    KindPaymentApproved,
			Subject: "Payment verified",
			Body:    approvedBody(e.PaymentType),
			RefID:   e.RequestID,
			RefType: "PaymentRequest",
		}
	case *payment.PaymentRequestRejectedEvent:
		body := "Your payment could not be verified. Please review and resubmit."
		if e.Notes != "" {
			body = fmt.Sprintf("Your payment could not be verified: %s. Please review and resubmit.", e.Notes)
		}
		notice = Notice{
			UserID:  e.UserID,
			Kind:    KindPaymentRejected,
			Subject: "Payment rejected",
			Body:    body,
			RefID:   e.RequestID,
			RefType: "PaymentRequest",
		}
	default:
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}

	if err := h.notifier.Deliver(ctx, notice); err != nil {
		return fmt.Errorf("failed to notify payment submitter: %w", err)
	}

	h.logger.Debug("payment resolution notification sent",
		zap.String("user_id", notice.UserID.String()),
		zap.String("kind", string(notice.Kind)),
	)
	return nil
}

func approvedBody(ptype payment.PaymentType) string {
	if ptype == payment.TypeWinnerPayment {
		return "Your winner payment was verified. The seller's contact details are now visible on the auction page."
	}
	return "Your payment was verified."
}

var _ shared.EventHandler = (*PaymentResolvedHandler)(nil)
