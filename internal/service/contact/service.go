package contact

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"unicode/utf8"

	"latthi-storefront/internal/domain"
	contactrepo "latthi-storefront/internal/repository/contact"
)

const (
	MaxMessageLength = 2000
	MaxRating        = 5
)

type Service struct {
	repo   contactrepo.Repository
	logger *log.Logger
}

func New(repo contactrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// FeedbackInput mirrors the contact form.
type FeedbackInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

// Subscribe appends a newsletter subscriber. Repeat sign-ups are stored as
// separate records.
func (s *Service) Subscribe(ctx context.Context, email string) (*domain.Subscriber, error) {
	normalized, ok := domain.NormalizeEmail(email)
	if !ok {
		return nil, fmt.Errorf("%w: email %q", domain.ErrInvalid, email)
	}
	sub, err := s.repo.AddSubscriber(ctx, domain.Subscriber{Email: normalized})
	if err != nil {
		return nil, err
	}
	s.logger.Printf("contact service: subscribed id=%s", sub.ID)
	return sub, nil
}

func (s *Service) SubmitFeedback(ctx context.Context, in FeedbackInput) (*domain.Feedback, error) {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	email, ok := domain.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name required", domain.ErrInvalid)
	case !ok:
		return nil, fmt.Errorf("%w: email %q", domain.ErrInvalid, in.Email)
	case message == "":
		return nil, fmt.Errorf("%w: message required", domain.ErrInvalid)
	case utf8.RuneCountInString(message) > MaxMessageLength:
		return nil, fmt.Errorf("%w: message longer than %d characters", domain.ErrInvalid, MaxMessageLength)
	case in.Rating < 0 || in.Rating > MaxRating:
		return nil, fmt.Errorf("%w: rating must be between 0 and %d", domain.ErrInvalid, MaxRating)
	}
	return s.repo.AddFeedback(ctx, domain.Feedback{Name: name, Email: email, Message: message, Rating: in.Rating})
}

// Subscribers lists subscribers, newest first.
func (s *Service) Subscribers(ctx context.Context) ([]domain.Subscriber, error) {
	list, err := s.repo.ListSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// Feedback lists feedback, newest first.
func (s *Service) Feedback(ctx context.Context) ([]domain.Feedback, error) {
	list, err := s.repo.ListFeedback(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}
