package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"latthi-storefront/internal/domain"
	"latthi-storefront/internal/migrate"
)

func TestPostgres_CommitAndList(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetDocuments(ctx, t, pool)

	store := NewPostgres(pool, nil)

	err := store.Commit(ctx,
		Replace("allOrders/o1", map[string]interface{}{"status": "pending", "userId": "u1"}),
		Replace("users/u1/orders/o1", map[string]interface{}{"status": "pending"}),
	)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	doc, err := store.Get(ctx, "allOrders/o1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Version != 1 || doc.Data["userId"] != "u1" {
		t.Fatalf("unexpected document %+v", doc)
	}

	err = store.Commit(ctx, Patch("allOrders/o1", map[string]interface{}{"status": "shipped"}).Expect(1))
	if err != nil {
		t.Fatalf("Commit patch: %v", err)
	}
	doc, err = store.Get(ctx, "allOrders/o1")
	if err != nil {
		t.Fatalf("Get after patch: %v", err)
	}
	if doc.Version != 2 || doc.Data["status"] != "shipped" || doc.Data["userId"] != "u1" {
		t.Fatalf("unexpected patched document %+v", doc)
	}

	docs, err := store.List(ctx, "users/u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].Path != "users/u1/orders/o1" {
		t.Fatalf("unexpected list %+v", docs)
	}
}

func TestPostgres_ConflictRollsBackBatch(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetDocuments(ctx, t, pool)

	store := NewPostgres(pool, nil)
	if err := store.Commit(ctx, Replace("orders/o1", map[string]interface{}{"status": "pending"})); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := store.Commit(ctx,
		Patch("orders/o1", map[string]interface{}{"status": "shipped"}),
		Patch("users/u1/orders/o1", map[string]interface{}{"status": "shipped"}).Expect(4),
	)
	if err == nil {
		t.Fatalf("expected conflict")
	}

	doc, err := store.Get(ctx, "orders/o1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Data["status"] != "pending" {
		t.Fatalf("batch was not rolled back: %+v", doc)
	}
	if _, err := store.Get(ctx, "users/u1/orders/o1"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgres_ConcurrentCreateHasOneWinner(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetDocuments(ctx, t, pool)

	store := NewPostgres(pool, nil)
	const writers = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan error, writers)
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs <- store.Commit(ctx, Replace("orders/ORD1718020800000", map[string]interface{}{
				"paymentId": fmt.Sprintf("pay_%d", i),
			}).Expect(0))
		}(i)
	}
	close(start)
	wg.Wait()
	close(errs)

	won := 0
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrVersionConflict):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 {
		t.Fatalf("expected exactly one create to win, got %d", won)
	}

	doc, err := store.Get(ctx, "orders/ORD1718020800000")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Version != 1 {
		t.Fatalf("expected untouched first version, got %d", doc.Version)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("database unavailable: %v", err)
	}
	return pool
}

func resetDocuments(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE documents`); err != nil {
		t.Fatalf("truncate documents: %v", err)
	}
}
