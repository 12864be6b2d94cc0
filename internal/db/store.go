package db

import (
	"context"
	"fmt"
	"log"

	"latthi-storefront/internal/config"
	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/migrate"
)

// OpenStore connects the document store selected by cfg.StoreDriver. The
// Postgres backend is migrated before use. The returned func releases the
// connection.
func OpenStore(ctx context.Context, cfg config.Config, logger *log.Logger) (docstore.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrate.Apply(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
		return docstore.NewPostgres(pool, logger), pool.Close, nil
	case config.DriverMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }
		return docstore.NewMongo(client, client.Database(cfg.MongoDB), logger), closeFn, nil
	case config.DriverMemory:
		logger.Printf("using in-memory store, data is lost on exit")
		return docstore.NewMemory(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
