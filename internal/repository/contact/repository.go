package contact

import (
	"context"

	"latthi-storefront/internal/domain"
)

// Repository appends and lists newsletter subscribers and site feedback.
type Repository interface {
	AddSubscriber(ctx context.Context, s domain.Subscriber) (*domain.Subscriber, error)
	ListSubscribers(ctx context.Context) ([]domain.Subscriber, error)
	AddFeedback(ctx context.Context, f domain.Feedback) (*domain.Feedback, error)
	ListFeedback(ctx context.Context) ([]domain.Feedback, error)
}
