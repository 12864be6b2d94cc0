package refund

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	orderrepo "latthi-storefront/internal/repository/order"
	ordersvc "latthi-storefront/internal/service/order"
)

// MaxReasonLength caps the customer's refund reason, in characters.
const MaxReasonLength = 500

// DefaultWindow is how long after delivery a refund may be requested.
const DefaultWindow = 30 * 24 * time.Hour

type Service struct {
	repo     refundRepo
	window   time.Duration
	currency string
	logger   *log.Logger
	now      func() time.Time
}

type refundRepo interface {
	OrderFragments(ctx context.Context, uid, id string) (orderrepo.Fragments, error)
	RequestRefund(ctx context.Context, uid, id string, userVersion int64, req domain.RefundRequest) error
	DecideRefund(ctx context.Context, d orderrepo.RefundDecision) error
}

func New(repo orderrepo.Repository, window time.Duration, currency string, logger *log.Logger) *Service {
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		repo:     repo,
		window:   window,
		currency: currency,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Decision is an admin's answer to a pending request.
type Decision struct {
	Status string `json:"status"`
	Note   string `json:"adminNote"`
}

// Request records a customer's refund request on their copy of the order and
// on the allOrders copy. Only one request may ever exist per order; a second
// attempt fails before anything is written.
func (s *Service) Request(ctx context.Context, uid, orderID, reason string) (*domain.RefundRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: refund reason required", domain.ErrInvalid)
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return nil, fmt.Errorf("%w: refund reason longer than %d characters", domain.ErrInvalid, MaxReasonLength)
	}
	if !docstore.ValidID(uid) || !docstore.ValidID(orderID) {
		return nil, domain.ErrNotFound
	}

	f, err := s.repo.OrderFragments(ctx, uid, orderID)
	if err != nil {
		return nil, err
	}
	if len(f.UserOrders) == 0 {
		return nil, domain.ErrNotFound
	}
	userVersion := f.UserOrders[len(f.UserOrders)-1].Version

	orders := ordersvc.Aggregate(f)
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	o := orders[0]

	if o.RefundRequest != nil {
		return nil, domain.ErrRefundExists
	}
	if o.Status != domain.StatusDelivered && o.Status != domain.StatusCancelled {
		return nil, fmt.Errorf("%w: order is %s", domain.ErrRefundNotAllowed, o.Status)
	}
	now := s.now()
	if base := windowBase(o); base.IsZero() || now.Sub(base) > s.window {
		return nil, fmt.Errorf("%w: refund window has closed", domain.ErrRefundNotAllowed)
	}

	req := domain.RefundRequest{
		Reason:      reason,
		RequestedAt: now,
		Status:      domain.RefundPending,
		Amount:      o.Total,
	}
	if err := s.repo.RequestRefund(ctx, uid, orderID, userVersion, req); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			// The user copy changed since it was read, almost always a
			// duplicate request racing this one.
			return nil, domain.ErrRefundExists
		}
		return nil, err
	}
	s.logger.Printf("refund service: requested uid=%s id=%s amount=%d", uid, orderID, req.Amount)
	return &req, nil
}

// Decide approves or rejects a pending request. Both order copies and a new
// customer notification are written in one commit; a failed commit is
// reported to the caller and nothing is retried.
func (s *Service) Decide(ctx context.Context, orderID string, in Decision) (*domain.Order, error) {
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status != domain.RefundApproved && status != domain.RefundRejected {
		return nil, fmt.Errorf("%w: decision must be approved or rejected", domain.ErrInvalid)
	}
	note := strings.TrimSpace(in.Note)
	if utf8.RuneCountInString(note) > MaxReasonLength {
		return nil, fmt.Errorf("%w: admin note longer than %d characters", domain.ErrInvalid, MaxReasonLength)
	}
	if !docstore.ValidID(orderID) {
		return nil, domain.ErrNotFound
	}

	f, err := s.repo.OrderFragments(ctx, "", orderID)
	if err != nil {
		return nil, err
	}
	orders := ordersvc.Aggregate(f)
	if len(orders) == 0 {
		return nil, domain.ErrNotFound
	}
	o := orders[0]
	if o.RefundRequest == nil {
		return nil, fmt.Errorf("%w: no refund request on order %s", domain.ErrNotFound, orderID)
	}
	if o.RefundRequest.Status != domain.RefundPending {
		return nil, domain.ErrRefundDecided
	}
	loc, ok := docstore.ParseOrderPath(o.SourcePath)
	if !ok || loc.Kind != docstore.KindUserOrders {
		return nil, fmt.Errorf("%w: order %s has no customer copy", domain.ErrInvalid, orderID)
	}

	now := s.now()
	version := o.Version
	d := orderrepo.RefundDecision{
		UserID:       loc.UserID,
		OrderID:      orderID,
		Status:       status,
		Note:         note,
		At:           now,
		UserVersion:  &version,
		Notification: s.notificationFor(orderID, status, note, o.RefundRequest.Amount, now),
	}
	if err := s.repo.DecideRefund(ctx, d); err != nil {
		return nil, err
	}
	s.logger.Printf("refund service: decided id=%s uid=%s status=%s", orderID, loc.UserID, status)

	o.RefundRequest.Status = status
	o.RefundRequest.AdminNote = note
	o.RefundRequest.ProcessedAt = now
	return &o, nil
}

func (s *Service) notificationFor(orderID, status, note string, amount domain.Amount, at time.Time) domain.Notification {
	n := domain.Notification{
		Type:      "refund",
		OrderID:   orderID,
		CreatedAt: at,
	}
	if status == domain.RefundApproved {
		n.Title = "Refund approved"
		n.Message = fmt.Sprintf("Your refund of %s for order %s has been approved.", amount.Format(s.currency), orderID)
	} else {
		n.Title = "Refund rejected"
		n.Message = fmt.Sprintf("Your refund request for order %s was not approved.", orderID)
	}
	if note != "" {
		n.Message += " Note: " + note
	}
	return n
}

// windowBase is the time a refund window is measured from.
func windowBase(o domain.Order) time.Time {
	switch {
	case !o.DeliveredAt.IsZero():
		return o.DeliveredAt
	case !o.UpdatedAt.IsZero():
		return o.UpdatedAt
	default:
		return o.CreatedAt
	}
}
