package customer

import (
	"context"

	"latthi-storefront/internal/domain"
)

// Repository persists the customer record at users/{uid} and its
// addresses and notifications subcollections.
type Repository interface {
	GetProfile(ctx context.Context, uid string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, p domain.Profile) (*domain.Profile, error)

	ListAddresses(ctx context.Context, uid string) ([]domain.Address, error)
	AddAddress(ctx context.Context, uid string, a domain.Address) (*domain.Address, error)
	DeleteAddress(ctx context.Context, uid, id string) error

	ListNotifications(ctx context.Context, uid string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, uid, id string) error
}
