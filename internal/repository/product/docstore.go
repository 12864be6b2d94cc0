package product

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
)

type docRepo struct {
	store  docstore.Store
	logger *log.Logger
	now    func() time.Time
}

func New(store docstore.Store, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &docRepo{store: store, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (r *docRepo) List(ctx context.Context) ([]domain.Product, error) {
	docs, err := r.store.List(ctx, docstore.Products)
	if err != nil {
		r.logger.Printf("product repo: list error=%v", err)
		return nil, err
	}
	result := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		if _, ok := docstore.ParseChild(docstore.Products, d.Path); !ok {
			continue
		}
		result = append(result, decode(d))
	}
	r.logger.Printf("product repo: list count=%d", len(result))
	return result, nil
}

func (r *docRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	if !docstore.ValidID(id) {
		return nil, domain.ErrNotFound
	}
	d, err := r.store.Get(ctx, docstore.ProductPath(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, err
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	p := decode(*d)
	return &p, nil
}

func (r *docRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	now := r.now()
	if p.ID == "" {
		p.ID = docstore.NewKey()
		p.CreatedAt = now
	} else if existing, err := r.Get(ctx, p.ID); err == nil {
		p.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.Price = domain.ParseAmount(p.PriceText)

	if err := r.store.Commit(ctx, docstore.Replace(docstore.ProductPath(p.ID), encode(p))); err != nil {
		r.logger.Printf("product repo: upsert id=%s error=%v", p.ID, err)
		return nil, err
	}
	r.logger.Printf("product repo: upsert id=%s name=%q", p.ID, p.Name)
	return &p, nil
}

func (r *docRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.store.Commit(ctx, docstore.Remove(docstore.ProductPath(id))); err != nil {
		r.logger.Printf("product repo: delete id=%s error=%v", id, err)
		return err
	}
	return nil
}

func encode(p domain.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":        p.Name,
		"price":       p.PriceText,
		"description": p.Description,
		"fabric":      p.Fabric,
		"category":    p.Category,
		"sizes":       p.Sizes,
		"images":      p.Images,
		"features":    p.Features,
		"care":        p.Care,
		"createdAt":   domain.FormatTimestamp(p.CreatedAt),
		"updatedAt":   domain.FormatTimestamp(p.UpdatedAt),
	}
}

func decode(d docstore.Document) domain.Product {
	m := d.Data
	p := domain.Product{
		ID:          d.ID(),
		Name:        docstore.String(m, "name"),
		PriceText:   docstore.String(m, "price"),
		Description: docstore.String(m, "description"),
		Fabric:      docstore.String(m, "fabric"),
		Category:    docstore.String(m, "category"),
		Sizes:       docstore.Strings(m, "sizes"),
		Images:      docstore.Strings(m, "images"),
		Features:    docstore.Strings(m, "features"),
		Care:        docstore.Strings(m, "care"),
	}
	if len(p.Images) == 0 {
		p.Images = docstore.Strings(m, "image")
	}
	p.Price = domain.ParseAmount(p.PriceText)
	p.CreatedAt, _ = domain.ParseTimestamp(m["createdAt"])
	p.UpdatedAt, _ = domain.ParseTimestamp(m["updatedAt"])
	return p
}
