package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	orderrepo "latthi-storefront/internal/repository/order"
)

type Service struct {
	repo   orderRepo
	logger *log.Logger
	now    func() time.Time
}

type orderRepo interface {
	Fragments(ctx context.Context) (orderrepo.Fragments, error)
	UserFragments(ctx context.Context, uid string) (orderrepo.Fragments, error)
	OrderFragments(ctx context.Context, uid, id string) (orderrepo.Fragments, error)
	SetStatus(ctx context.Context, path, status string, at time.Time, version *int64) error
}

func New(repo orderrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Tracking is the customer's view of one order.
type Tracking struct {
	domain.Order
	Progress []domain.DeliveryStep `json:"progress"`
}

// StatusUpdate targets the exact fragment an order was read from.
type StatusUpdate struct {
	Status     string `json:"status"`
	SourcePath string `json:"sourcePath"`
	// Version, when set, is the version the caller saw. The write then fails
	// with domain.ErrVersionConflict if someone else changed the order first.
	Version *int64 `json:"version,omitempty"`
}

// ListAll returns every order in the store, merged across locations.
func (s *Service) ListAll(ctx context.Context) ([]domain.Order, error) {
	f, err := s.repo.Fragments(ctx)
	if err != nil {
		return nil, err
	}
	return Aggregate(f), nil
}

// ListForUser returns the orders nested under one customer.
func (s *Service) ListForUser(ctx context.Context, uid string) ([]domain.Order, error) {
	if !docstore.ValidID(uid) {
		return nil, fmt.Errorf("%w: user id", domain.ErrInvalid)
	}
	f, err := s.repo.UserFragments(ctx, uid)
	if err != nil {
		return nil, err
	}
	return Aggregate(f), nil
}

// Get returns one of the customer's orders with its delivery progress.
func (s *Service) Get(ctx context.Context, uid, id string) (*Tracking, error) {
	if !docstore.ValidID(uid) {
		return nil, fmt.Errorf("%w: user id", domain.ErrInvalid)
	}
	o, err := s.find(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != uid {
		return nil, domain.ErrNotFound
	}
	return &Tracking{Order: *o, Progress: domain.DeliveryProgress(o.Status)}, nil
}

// Find returns the merged order with the given id from any location.
func (s *Service) Find(ctx context.Context, id string) (*domain.Order, error) {
	return s.find(ctx, "", id)
}

// FindForUser is Find narrowed to one customer's copies.
func (s *Service) FindForUser(ctx context.Context, uid, id string) (*domain.Order, error) {
	if !docstore.ValidID(uid) {
		return nil, fmt.Errorf("%w: user id", domain.ErrInvalid)
	}
	return s.find(ctx, uid, id)
}

func (s *Service) find(ctx context.Context, uid, id string) (*domain.Order, error) {
	if !docstore.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	f, err := s.repo.OrderFragments(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	orders := Aggregate(f)
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return &orders[0], nil
}

// UpdateStatus writes the new status to the single path the order was read
// from. It never guesses a location: without a source path the caller has
// stale state and must reload.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, in StatusUpdate) error {
	path := strings.TrimSpace(in.SourcePath)
	if path == "" {
		s.logger.Printf("order service: status update id=%s refused, no source path", orderID)
		return domain.ErrUnknownSource
	}
	loc, ok := docstore.ParseOrderPath(path)
	if !ok {
		return fmt.Errorf("%w: %q is not an order location", domain.ErrInvalid, path)
	}
	if loc.OrderID != orderID {
		return fmt.Errorf("%w: source path %q does not belong to order %s", domain.ErrInvalid, path, orderID)
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if !domain.ValidStatus(status) {
		return fmt.Errorf("%w: status %q", domain.ErrInvalid, in.Status)
	}
	if in.Version != nil && *in.Version <= 0 {
		return fmt.Errorf("%w: version %d, stored orders start at 1", domain.ErrInvalid, *in.Version)
	}

	if err := s.repo.SetStatus(ctx, path, status, s.now(), in.Version); err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrVersionConflict) {
			s.logger.Printf("order service: status update id=%s path=%s error=%v", orderID, path, err)
		}
		return err
	}
	s.logger.Printf("order service: status update id=%s path=%s (%s) status=%s", orderID, path, loc.Kind, status)
	return nil
}
