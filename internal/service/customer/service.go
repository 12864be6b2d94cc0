package customer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	custrepo "latthi-storefront/internal/repository/customer"
)

// MaxAddresses caps the saved addresses per customer.
const MaxAddresses = 10

// Service manages the customer's own records: profile, saved addresses and
// notifications. The caller is already identified; uid comes from the auth
// layer in front of the API.
type Service struct {
	repo   custrepo.Repository
	logger *log.Logger
}

func New(repo custrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// ProfileInput mirrors incoming profile payloads.
type ProfileInput struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Profile returns the stored profile. A customer who never saved one gets an
// empty profile rather than an error.
func (s *Service) Profile(ctx context.Context, uid string) (*domain.Profile, error) {
	if err := validUser(uid); err != nil {
		return nil, err
	}
	p, err := s.repo.GetProfile(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Profile{UserID: uid}, nil
	}
	return p, err
}

// SaveProfile stores the email the order views fall back to.
func (s *Service) SaveProfile(ctx context.Context, uid string, in ProfileInput) (*domain.Profile, error) {
	if err := validUser(uid); err != nil {
		return nil, err
	}
	email, ok := domain.NormalizeEmail(in.Email)
	if !ok {
		return nil, fmt.Errorf("%w: email %q", domain.ErrInvalid, in.Email)
	}
	p, err := s.repo.SaveProfile(ctx, domain.Profile{UserID: uid, Email: email, Name: strings.TrimSpace(in.Name)})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("customer service: profile saved uid=%s", uid)
	return p, nil
}

func (s *Service) Addresses(ctx context.Context, uid string) ([]domain.Address, error) {
	if err := validUser(uid); err != nil {
		return nil, err
	}
	return s.repo.ListAddresses(ctx, uid)
}

func (s *Service) AddAddress(ctx context.Context, uid string, a domain.Address) (*domain.Address, error) {
	if err := validUser(uid); err != nil {
		return nil, err
	}
	a, err := domain.ValidateAddress(a)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.ListAddresses(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxAddresses {
		return nil, fmt.Errorf("%w: at most %d saved addresses", domain.ErrInvalid, MaxAddresses)
	}
	a.ID = ""
	return s.repo.AddAddress(ctx, uid, a)
}

func (s *Service) DeleteAddress(ctx context.Context, uid, id string) error {
	if err := validUser(uid); err != nil {
		return err
	}
	if !docstore.ValidID(id) {
		return domain.ErrNotFound
	}
	return s.repo.DeleteAddress(ctx, uid, id)
}

// Notifications lists the customer's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, uid string) ([]domain.Notification, error) {
	if err := validUser(uid); err != nil {
		return nil, err
	}
	return s.repo.ListNotifications(ctx, uid)
}

func (s *Service) MarkRead(ctx context.Context, uid, id string) error {
	if err := validUser(uid); err != nil {
		return err
	}
	if !docstore.ValidID(id) {
		return domain.ErrNotFound
	}
	return s.repo.MarkNotificationRead(ctx, uid, id)
}

func validUser(uid string) error {
	if !docstore.ValidID(uid) {
		return fmt.Errorf("%w: user id required", domain.ErrInvalid)
	}
	return nil
}
