package adapter

import (
	"context"
	"time"
)

type InviteMessage struct {
	To           string
	Name         string
	CampaignName string
	Link         string
	ExpiresAt    *time.Time
}

type ConfirmationMessage struct {
	To          string
	Name        string
	OrderNumber string
	ProductName string
}

// Notifier delivers transactional email. Callers treat failures as non-fatal.
type Notifier interface {
	SendInvite(ctx context.Context, msg InviteMessage) error
	SendConfirmation(ctx context.Context, msg ConfirmationMessage) error
}
