package product

import (
	"context"
	"errors"
	"testing"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
)

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := New(docstore.NewMemory(), nil)

	p, err := repo.Upsert(ctx, domain.Product{
		Name:      "Chanderi Kurta",
		PriceText: "₹1,299",
		Category:  "kurta",
		Sizes:     []string{"S", "M"},
		Images:    []string{"https://example.com/1.jpg"},
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if p.ID == "" {
		t.Fatalf("expected ID set")
	}
	if p.Price != 1299 {
		t.Fatalf("expected parsed price 1299, got %d", p.Price)
	}

	got, err := repo.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Chanderi Kurta" || got.PriceText != "₹1,299" || len(got.Sizes) != 2 {
		t.Fatalf("unexpected product %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt stored")
	}

	updated, err := repo.Upsert(ctx, domain.Product{ID: p.ID, Name: "Chanderi Kurta", PriceText: "1499"})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if updated.ID != p.ID {
		t.Fatalf("expected same ID after update")
	}
	if !updated.CreatedAt.Equal(got.CreatedAt) {
		t.Fatalf("createdAt changed on update: %v vs %v", updated.CreatedAt, got.CreatedAt)
	}
	if updated.Price != 1499 {
		t.Fatalf("unexpected price %d", updated.Price)
	}
}

func TestListReadsLegacyShapes(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	err := store.Commit(ctx,
		docstore.Replace("products/a", map[string]interface{}{"name": "A", "price": 799, "image": "https://example.com/a.jpg"}),
		docstore.Replace("products/b", map[string]interface{}{"name": "B", "price": "Rs. 450/-", "sizes": map[string]interface{}{"0": "M", "1": "L"}}),
	)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	list, err := New(store, nil).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 products, got %d", len(list))
	}
	if list[0].Price != 799 || list[0].Image() != "https://example.com/a.jpg" {
		t.Fatalf("unexpected first product %+v", list[0])
	}
	if list[1].Price != 450 || len(list[1].Sizes) != 2 || list[1].Sizes[1] != "L" {
		t.Fatalf("unexpected second product %+v", list[1])
	}
}

func TestDeleteMissing(t *testing.T) {
	repo := New(docstore.NewMemory(), nil)
	if err := repo.Delete(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
