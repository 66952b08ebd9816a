// Package notification delivers user-facing notices for auction and
// payment lifecycle events. Delivery is pluggable; the default notifier
// writes structured log entries that an external worker can ship to
// email or push channels.
package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind classifies a notification
type Kind string

const (
	KindAuctionWon      Kind = "auction_won"
	KindAuctionEnded    Kind = "auction_ended"
	KindPaymentApproved Kind = "payment_approved"
	KindPaymentRejected Kind = "payment_rejected"
)

// Notice is a single message addressed to one user
type Notice struct {
	UserID  uuid.UUID
	Kind    Kind
	Subject string
	Body    string
	RefID   uuid.UUID // Auction or payment request the notice is about
	RefType string
}

// Notifier delivers notices to users
type Notifier interface {
	Deliver(ctx context.Context, n Notice) error
}

// LogNotifier writes notices to the application log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-backed notifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Deliver logs the notice
func (n *LogNotifier) Deliver(_ context.Context, notice Notice) error {
	n.logger.Info("notification",
		zap.String("user_id", notice.UserID.String()),
		zap.String("kind", string(notice.Kind)),
		zap.String("subject", notice.Subject),
		zap.String("ref_type", notice.RefType),
		zap.String("ref_id", notice.RefID.String()),
	)
	return nil
}

var _ Notifier = (*LogNotifier)(nil)
