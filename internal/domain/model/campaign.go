package model

import "time"

// Campaign owns budget and catalog constraints for a batch of invites.
type Campaign struct {
	ID                 string
	OrganizationID     string
	Name               string
	PerRecipientBudget *int64 // minor units; nil means no ceiling
	Currency           string
	SelectedProducts   []string
	CreatedAt          time.Time
}

// Offers reports whether productID is one of the campaign's eligible products.
func (c *Campaign) Offers(productID string) bool {
	for _, id := range c.SelectedProducts {
		if id == productID {
			return true
		}
	}
	return false
}

// WithinBudget reports whether price fits the per-recipient ceiling (inclusive).
func (c *Campaign) WithinBudget(price int64) bool {
	return c.PerRecipientBudget == nil || price <= *c.PerRecipientBudget
}
