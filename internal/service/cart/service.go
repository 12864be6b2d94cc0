package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"latthi-storefront/internal/domain"
	cartrepo "latthi-storefront/internal/repository/cart"
)

// MaxSessionLength bounds the client-chosen cart session id.
const MaxSessionLength = 128

type Service struct {
	repo        cartRepo
	productRepo productRepo
	logger      *log.Logger
	now         func() time.Time
}

type cartRepo interface {
	Load(ctx context.Context, session string) ([]domain.CartLine, error)
	Save(ctx context.Context, session string, lines []domain.CartLine) error
	Clear(ctx context.Context, session string) error
}

type productRepo interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, productRepo: productRepo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// LineInput identifies a cart line and, for mutations, its quantity.
type LineInput struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (s *Service) Get(ctx context.Context, session string) (domain.Cart, error) {
	if err := validSession(session); err != nil {
		return domain.Cart{}, err
	}
	lines, err := s.repo.Load(ctx, session)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(lines), nil
}

// Add puts a product in the cart, snapshotting its name, price and image.
// Adding an existing (product, size) pair increases that line's quantity.
func (s *Service) Add(ctx context.Context, session string, in LineInput) (domain.Cart, error) {
	if err := validSession(session); err != nil {
		return domain.Cart{}, err
	}
	productID := strings.TrimSpace(in.ProductID)
	size := strings.TrimSpace(in.Size)
	if productID == "" {
		return domain.Cart{}, fmt.Errorf("%w: productId required", domain.ErrInvalid)
	}
	if s.productRepo == nil {
		return domain.Cart{}, errors.New("product repository unavailable")
	}
	product, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Cart{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
		}
		return domain.Cart{}, err
	}
	if !product.HasSize(size) {
		return domain.Cart{}, fmt.Errorf("%w: size %q not offered for %s", domain.ErrInvalid, size, productID)
	}

	lines, err := s.repo.Load(ctx, session)
	if err != nil {
		return domain.Cart{}, err
	}
	lines = domain.AddLine(lines, domain.CartLine{
		ProductID: product.ID,
		Size:      size,
		Quantity:  in.Quantity,
		Name:      product.Name,
		PriceText: product.PriceText,
		Image:     product.Image(),
		AddedAt:   s.now(),
	})
	if err := s.repo.Save(ctx, session, lines); err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(lines), nil
}

// SetQuantity replaces a line's quantity, flooring it to 1.
func (s *Service) SetQuantity(ctx context.Context, session string, in LineInput) (domain.Cart, error) {
	if err := validSession(session); err != nil {
		return domain.Cart{}, err
	}
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}
	lines, err := s.repo.Load(ctx, session)
	if err != nil {
		return domain.Cart{}, err
	}
	key := domain.CartLine{ProductID: strings.TrimSpace(in.ProductID), Size: strings.TrimSpace(in.Size)}.Key()
	found := false
	for i := range lines {
		if lines[i].Key() == key {
			lines[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		return domain.Cart{}, fmt.Errorf("%w: cart line %s", domain.ErrNotFound, key)
	}
	if err := s.repo.Save(ctx, session, lines); err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(lines), nil
}

// Remove drops a line. Removing a line that is not there is not an error.
func (s *Service) Remove(ctx context.Context, session string, in LineInput) (domain.Cart, error) {
	if err := validSession(session); err != nil {
		return domain.Cart{}, err
	}
	lines, err := s.repo.Load(ctx, session)
	if err != nil {
		return domain.Cart{}, err
	}
	key := domain.CartLine{ProductID: strings.TrimSpace(in.ProductID), Size: strings.TrimSpace(in.Size)}.Key()
	kept := lines[:0]
	for _, l := range lines {
		if l.Key() != key {
			kept = append(kept, l)
		}
	}
	if err := s.repo.Save(ctx, session, kept); err != nil {
		return domain.Cart{}, err
	}
	return domain.NewCart(kept), nil
}

func (s *Service) Clear(ctx context.Context, session string) error {
	if err := validSession(session); err != nil {
		return err
	}
	return s.repo.Clear(ctx, session)
}

func validSession(session string) error {
	if strings.TrimSpace(session) == "" {
		return fmt.Errorf("%w: cart session required", domain.ErrInvalid)
	}
	if len(session) > MaxSessionLength {
		return fmt.Errorf("%w: cart session too long", domain.ErrInvalid)
	}
	return nil
}
