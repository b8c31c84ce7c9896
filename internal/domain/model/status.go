package model

import "time"

type DisplayStatus string

const (
	DisplayStatusPending DisplayStatus = "Pending"
	DisplayStatusExpired DisplayStatus = "Expired"
)

// GiftStatusRow joins an invite with its campaign, chosen product and order.
type GiftStatusRow struct {
	InviteID      string        `json:"invite_id"`
	CampaignID    string        `json:"campaign_id"`
	CampaignName  string        `json:"campaign_name"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	LinkExpiresAt *time.Time    `json:"link_expires_at,omitempty"`
	ClaimedAt     *time.Time    `json:"claimed_at,omitempty"`
	ProductID     *string       `json:"product_id,omitempty"`
	ProductName   string        `json:"product_name,omitempty"`
	OrderID       *string       `json:"order_id,omitempty"`
	OrderNumber   string        `json:"order_number,omitempty"`
	OrderStatus   OrderStatus   `json:"order_status,omitempty"`
	DisplayStatus DisplayStatus `json:"display_status"`
}

// DeriveDisplayStatus must run on every read; expiry depends on now.
func DeriveDisplayStatus(inv *RecipientInvite, order *Order, now time.Time) DisplayStatus {
	if inv.IsClaimed() {
		if order != nil && order.Status != "" {
			return DisplayStatus(capitalize(string(order.Status)))
		}
		return DisplayStatusPending
	}
	if inv.IsExpiredAt(now) {
		return DisplayStatusExpired
	}
	return DisplayStatusPending
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
