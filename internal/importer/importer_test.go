package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	"latthi-storefront/internal/repository/product"
)

type stubProductRepo struct {
	items []domain.Product
	err   error
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `id,name,price,description,fabric,category,sizes,images,features,care
kurta-01,Indigo Kurta,₹799,Hand block printed,Cotton,Kurtas,S;M; L,https://example.com/k1.jpg,Side pockets;Straight cut,Hand wash
,,,,,,,https://example.com/k2.jpg;https://example.com/k3.jpg,,
,Mulmul Stole,Rs. 350,,Mulmul,Stoles,,,,
`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 products saved, got %d", len(repo.items))
	}

	kurta := repo.items[0]
	if kurta.ID != "kurta-01" || kurta.Name != "Indigo Kurta" || kurta.PriceText != "₹799" || kurta.Category != "Kurtas" {
		t.Fatalf("unexpected product data: %+v", kurta)
	}
	if len(kurta.Images) != 3 {
		t.Fatalf("expected 3 images on first product, got %v", kurta.Images)
	}
	if strings.Join(kurta.Sizes, ",") != "S,M,L" || len(kurta.Features) != 2 || len(kurta.Care) != 1 {
		t.Fatalf("unexpected list columns: %+v", kurta)
	}
	if repo.items[1].ID != "" || repo.items[1].Name != "Mulmul Stole" {
		t.Fatalf("expected new stole without id, got %+v", repo.items[1])
	}
}

func TestCSVImporter_RejectsBadRows(t *testing.T) {
	cases := map[string]string{
		"missing price": "id,name,price\np1,Kurta,\n",
		"free price":    "id,name,price\np1,Kurta,Rs. 0\n",
		"bad id":        "id,name,price\nbad/id,Kurta,₹799\n",
		"huge price":    "id,name,price\np1,Kurta,₹18446744073709551617\n",
		"no name col":   "id,price\np1,₹799\n",
	}
	for name, data := range cases {
		repo := &stubProductRepo{}
		if _, err := NewCSVImporter(strings.NewReader(data), repo).Run(context.Background()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if len(repo.items) != 0 {
			t.Fatalf("%s: expected no writes, got %d", name, len(repo.items))
		}
	}
}

func TestCSVImporter_StopsOnWriteError(t *testing.T) {
	repo := &stubProductRepo{err: errors.New("store down")}
	count, err := NewCSVImporter(strings.NewReader("name,price\nKurta,₹799\n"), repo).Run(context.Background())
	if err == nil || count != 0 {
		t.Fatalf("expected error and 0 imported, got %d %v", count, err)
	}
}

func TestCSVImporter_IntoDocstore(t *testing.T) {
	store := docstore.NewMemory()
	repo := product.New(store, nil)
	csvData := "id,name,price,sizes\nstole-1,Stole,₹350,\nstole-1,Stole,₹399,Free\n"

	count, err := NewCSVImporter(strings.NewReader(csvData), repo).Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 rows imported, got %d", count)
	}
	p, err := repo.Get(context.Background(), "stole-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.Price != 399 || len(p.Sizes) != 1 {
		t.Fatalf("expected second row to replace the first, got %+v", p)
	}
}
