package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	cartrepo "latthi-storefront/internal/repository/cart"
	orderrepo "latthi-storefront/internal/repository/order"
	productrepo "latthi-storefront/internal/repository/product"
)

const (
	// ModeCart places the whole cart and clears it afterwards.
	ModeCart = "cart"
	// ModeBuyNow places a single product without touching the cart.
	ModeBuyNow = "buy-now"
)

type Service struct {
	orders   orderPlacer
	carts    cartStore
	products productGetter
	currency string
	logger   *log.Logger
	now      func() time.Time
}

type orderPlacer interface {
	Place(ctx context.Context, in orderrepo.PlaceInput) error
}

type cartStore interface {
	Load(ctx context.Context, session string) ([]domain.CartLine, error)
	Clear(ctx context.Context, session string) error
}

type productGetter interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

func New(orders orderrepo.Repository, carts cartrepo.Repository, products productrepo.Repository, currency string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		orders:   orders,
		carts:    carts,
		products: products,
		currency: strings.ToUpper(currency),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Item is the product bought in buy-now mode.
type Item struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// Selection names what is being bought: the session's cart or one item.
type Selection struct {
	Mode string `json:"mode"`
	Item *Item  `json:"item,omitempty"`
}

// Input is a checkout submission.
type Input struct {
	Selection
	Address       domain.Address `json:"address"`
	SaveAddress   bool           `json:"saveAddress"`
	Email         string         `json:"email"`
	PaymentMethod string         `json:"paymentMethod"`
	// PaymentID is the gateway's opaque confirmation, required for online payment.
	PaymentID string `json:"paymentId"`
}

// Handoff is what the payment widget needs to collect a payment.
type Handoff struct {
	Amount      domain.Amount `json:"amount"`
	AmountMinor int64         `json:"amountMinor"`
	Currency    string        `json:"currency"`
	Reference   string        `json:"reference"`
	Display     string        `json:"display"`
}

// PaymentHandoff prices a selection for the payment gateway.
func (s *Service) PaymentHandoff(ctx context.Context, session string, sel Selection) (*Handoff, error) {
	items, err := s.items(ctx, session, sel)
	if err != nil {
		return nil, err
	}
	total := itemsTotal(items)
	if total <= 0 {
		return nil, fmt.Errorf("%w: nothing to pay for", domain.ErrInvalid)
	}
	return &Handoff{
		Amount:      total,
		AmountMinor: total.Minor(),
		Currency:    s.currency,
		Reference:   "rcpt_" + strings.ReplaceAll(docstore.NewKey(), "-", ""),
		Display:     total.Format(s.currency),
	}, nil
}

// PlaceOrder validates the submission and writes the order to the locations
// its mode uses. Nothing is written when validation fails.
func (s *Service) PlaceOrder(ctx context.Context, uid, session string, in Input) (*domain.Order, error) {
	if !docstore.ValidID(uid) {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalid)
	}
	addr, err := domain.ValidateAddress(in.Address)
	if err != nil {
		return nil, err
	}
	method, paymentStatus, err := payment(in.PaymentMethod, in.PaymentID)
	if err != nil {
		return nil, err
	}
	items, err := s.items(ctx, session, in.Selection)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := domain.Order{
		UserID:        uid,
		Email:         firstNonEmpty(strings.TrimSpace(in.Email), addr.Email),
		Items:         items,
		Address:       &addr,
		PaymentMethod: method,
		PaymentStatus: paymentStatus,
		PaymentID:     strings.TrimSpace(in.PaymentID),
		Total:         itemsTotal(items),
		Status:        domain.StatusPending,
		CreatedAt:     now,
	}
	var paths []string
	switch in.Mode {
	case ModeBuyNow:
		o.ID = "ORD" + strconv.FormatInt(now.UnixMilli(), 10)
		paths = []string{docstore.OrderPath(o.ID), docstore.UserOrderPath(uid, o.ID)}
	default:
		o.ID = docstore.NewKey()
		paths = []string{docstore.UserOrderPath(uid, o.ID), docstore.AllOrderPath(o.ID)}
	}
	o.SourcePath = docstore.UserOrderPath(uid, o.ID)
	o.Version = 1

	place := orderrepo.PlaceInput{Order: o, Paths: paths}
	if in.SaveAddress {
		saved := addr
		saved.ID = ""
		place.SaveAddress = &saved
	}
	if err := s.orders.Place(ctx, place); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, fmt.Errorf("%w: order %s", domain.ErrAlreadyExists, o.ID)
		}
		return nil, err
	}
	s.logger.Printf("checkout service: placed id=%s uid=%s mode=%s method=%s total=%d", o.ID, uid, modeName(in.Mode), method, o.Total)

	if in.Mode != ModeBuyNow {
		if err := s.carts.Clear(ctx, session); err != nil {
			// Order stands even if the cart survives.
			s.logger.Printf("checkout service: clear cart session=%s error=%v", session, err)
		}
	}
	return &o, nil
}

func (s *Service) items(ctx context.Context, session string, sel Selection) ([]domain.OrderItem, error) {
	switch sel.Mode {
	case ModeCart, "":
		return s.cartItems(ctx, session)
	case ModeBuyNow:
		return s.buyNowItems(ctx, sel.Item)
	default:
		return nil, fmt.Errorf("%w: unknown checkout mode %q", domain.ErrInvalid, sel.Mode)
	}
}

func (s *Service) cartItems(ctx context.Context, session string) ([]domain.OrderItem, error) {
	if strings.TrimSpace(session) == "" {
		return nil, fmt.Errorf("%w: cart session required", domain.ErrInvalid)
	}
	lines, err := s.carts.Load(ctx, session)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalid)
	}
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Size:      l.Size,
			Quantity:  max(l.Quantity, 1),
			PriceText: l.PriceText,
			Image:     l.Image,
		})
	}
	return items, nil
}

func (s *Service) buyNowItems(ctx context.Context, item *Item) ([]domain.OrderItem, error) {
	if item == nil || strings.TrimSpace(item.ProductID) == "" {
		return nil, fmt.Errorf("%w: buy-now needs a product", domain.ErrInvalid)
	}
	p, err := s.products.Get(ctx, strings.TrimSpace(item.ProductID))
	if err != nil {
		return nil, err
	}
	size := strings.TrimSpace(item.Size)
	if !p.HasSize(size) {
		return nil, fmt.Errorf("%w: size %q not offered for %s", domain.ErrInvalid, size, p.ID)
	}
	return []domain.OrderItem{{
		ProductID: p.ID,
		Name:      p.Name,
		Size:      size,
		Quantity:  max(item.Quantity, 1),
		PriceText: p.PriceText,
		Image:     p.Image(),
	}}, nil
}

func payment(method, paymentID string) (string, string, error) {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case domain.PaymentCOD:
		return domain.PaymentCOD, domain.PaymentStatusPending, nil
	case domain.PaymentOnline:
		if strings.TrimSpace(paymentID) == "" {
			return "", "", fmt.Errorf("%w: online payment needs a payment id", domain.ErrInvalid)
		}
		return domain.PaymentOnline, domain.PaymentStatusPaid, nil
	default:
		return "", "", fmt.Errorf("%w: payment method must be cod or online", domain.ErrInvalid)
	}
}

func itemsTotal(items []domain.OrderItem) domain.Amount {
	var total domain.Amount
	for _, it := range items {
		total += domain.ParseAmount(it.PriceText).Times(it.Quantity)
	}
	return total
}

func modeName(mode string) string {
	if mode == "" {
		return ModeCart
	}
	return mode
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
