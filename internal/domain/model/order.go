package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"    // created by a redemption, awaiting fulfillment
	OrderStatusProcessing OrderStatus = "processing" // picked up by fulfillment
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the durable record of a committed gift selection.
type Order struct {
	ID                  string
	OrderNumber         string
	CampaignRecipientID string
	UserID              *string // nil: redemptions are unauthenticated
	Status              OrderStatus
	Total               int64
	Currency            string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OrderLineItem snapshots the product price at purchase time.
type OrderLineItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	UnitPrice int64
	Currency  string
}
