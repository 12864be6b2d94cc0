package order

import (
	"context"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
)

// Fragments is every stored piece of order data an aggregation needs.
type Fragments struct {
	AllOrders  []docstore.Document
	Orders     []docstore.Document
	UserOrders []docstore.Document
	// Emails maps user id to the email on the profile at users/{uid}.
	Emails map[string]string
}

// PlaceInput is a new order and the locations it is written to.
type PlaceInput struct {
	Order domain.Order
	Paths []string
	// SaveAddress, when set, is stored under the customer's addresses in the
	// same commit as the order.
	SaveAddress *domain.Address
}

// RefundDecision is an admin decision mirrored to both order copies.
type RefundDecision struct {
	UserID       string
	OrderID      string
	Status       string
	Note         string
	At           time.Time
	UserVersion  *int64
	Notification domain.Notification
}

type Repository interface {
	// Fragments loads allOrders, orders and every users/{uid}/orders subtree.
	Fragments(ctx context.Context) (Fragments, error)
	// UserFragments loads one customer's nested orders plus the flat
	// fragments sharing their ids.
	UserFragments(ctx context.Context, uid string) (Fragments, error)
	// OrderFragments loads every fragment of one order. uid may be empty,
	// in which case nested copies are found by scanning users.
	OrderFragments(ctx context.Context, uid, id string) (Fragments, error)

	Place(ctx context.Context, in PlaceInput) error
	// SetStatus writes status and updatedAt to exactly one path. A non-nil
	// version makes the write conditional.
	SetStatus(ctx context.Context, path, status string, at time.Time, version *int64) error
	// RequestRefund writes req to the user copy, conditional on userVersion,
	// and to allOrders/{id} in one commit.
	RequestRefund(ctx context.Context, uid, id string, userVersion int64, req domain.RefundRequest) error
	// DecideRefund writes the decision to both copies and the notification in
	// one commit.
	DecideRefund(ctx context.Context, d RefundDecision) error
}
