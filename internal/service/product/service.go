package product

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	productrepo "latthi-storefront/internal/repository/product"
)

type Service struct {
	repo   productrepo.Repository
	logger *log.Logger
}

func New(repo productrepo.Repository, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger}
}

// Input is the editable part of a product.
type Input struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Fabric      string   `json:"fabric"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Images      []string `json:"images"`
	Features    []string `json:"features"`
	Care        []string `json:"care"`
}

// List returns the catalog, newest first. A non-empty category keeps only
// products in it, compared case-insensitively.
func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	if category != "" {
		kept := products[:0]
		for _, p := range products {
			if strings.EqualFold(p.Category, category) {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*domain.Product, error) {
	p, err := in.product()
	if err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Product, error) {
	if !docstore.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	p, err := in.product()
	if err != nil {
		return nil, err
	}
	p.ID = id
	return s.repo.Upsert(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Printf("product service: deleted id=%s", id)
	return nil
}

func (in Input) product() (domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: product name required", domain.ErrInvalid)
	}
	price := strings.TrimSpace(in.Price)
	if !domain.ValidPrice(price) {
		return domain.Product{}, fmt.Errorf("%w: price %q must be between 1 and %d", domain.ErrInvalid, in.Price, domain.MaxAmount)
	}
	return domain.Product{
		Name:        name,
		PriceText:   price,
		Description: strings.TrimSpace(in.Description),
		Fabric:      strings.TrimSpace(in.Fabric),
		Category:    strings.TrimSpace(in.Category),
		Sizes:       clean(in.Sizes),
		Images:      clean(in.Images),
		Features:    clean(in.Features),
		Care:        clean(in.Care),
	}, nil
}

// clean trims entries and drops empty ones.
func clean(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
