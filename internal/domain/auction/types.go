package auction

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AuctionType identifies the bidding format of an auction
type AuctionType string

const (
	TypeEnglish AuctionType = "english"
	TypeDutch   AuctionType = "dutch"
	TypeSealed  AuctionType = "sealed"
	TypeReserve AuctionType = "reserve"
)

// IsValid returns true if the auction type is known
func (t AuctionType) IsValid() bool {
	switch t {
	case TypeEnglish, TypeDutch, TypeSealed, TypeReserve:
		return true
	}
	return false
}

// RequiresApproval returns true if auctions of this type need admin
// approval before going live
func (t AuctionType) RequiresApproval() bool {
	return t == TypeReserve
}

// ApprovalStatus tracks the admin approval state of a reserve auction
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Status tracks the temporal state of an auction
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusActive   Status = "active"
	StatusEnded    Status = "ended"
	StatusStopped  Status = "stopped"
	StatusDeleted  Status = "deleted"
)

// IsTerminal returns true if the status can never change again
func (s Status) IsTerminal() bool {
	return s == StatusEnded || s == StatusDeleted
}

// CanAcceptBids returns true if bids may be placed in this status
func (s Status) CanAcceptBids() bool {
	return s == StatusActive
}

// MediaList stores an ordered list of media URIs as a JSON text column
type MediaList []string

// Value implements driver.Valuer for database storage
func (l MediaList) Value() (driver.Value, error) {
	if l == nil {
		l = MediaList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for database retrieval
func (l *MediaList) Scan(value interface{}) error {
	if value == nil {
		*l = MediaList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into MediaList", value)
	}
}
