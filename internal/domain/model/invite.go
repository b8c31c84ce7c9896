package model

import (
	"time"
)

// RecipientInvite is one issued gift invitation. The token is the only credential
// an unauthenticated recipient presents.
type RecipientInvite struct {
	ID          string
	CampaignID  string
	Name        string
	Email       string
	Designation string
	Department  string
	Phone       string
	Token       string

	LinkExpiresAt *time.Time // nil means the link never expires
	CreatedAt     time.Time

	// Written exactly once, at claim time. ClaimedAt and OrderID are set together.
	ClaimedAt           *time.Time
	OrderID             *string
	SelectedProductID   *string
	ShippingAddress     *ShippingAddress
	SizeColorPreference *string
}

func (i *RecipientInvite) IsClaimed() bool { return i.ClaimedAt != nil }

// IsExpiredAt reports whether the link deadline has passed at t.
func (i *RecipientInvite) IsExpiredAt(t time.Time) bool {
	return i.LinkExpiresAt != nil && !t.Before(*i.LinkExpiresAt)
}

// Claim records a committed selection for persistence by the ledger.
type Claim struct {
	OrderID             string
	ProductID           string
	ShippingAddress     ShippingAddress
	SizeColorPreference *string
	ClaimedAt           time.Time
}

// RecipientInput is one row of an issuance request.
type RecipientInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Designation string `json:"designation,omitempty"`
	Department  string `json:"department,omitempty"`
	Phone       string `json:"phone,omitempty"`
}
