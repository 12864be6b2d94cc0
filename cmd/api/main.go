package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"latthi-storefront/internal/config"
	"latthi-storefront/internal/db"
	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/httpserver"
	"latthi-storefront/internal/live"
	cartrepo "latthi-storefront/internal/repository/cart"
	contactrepo "latthi-storefront/internal/repository/contact"
	customerrepo "latthi-storefront/internal/repository/customer"
	orderrepo "latthi-storefront/internal/repository/order"
	productrepo "latthi-storefront/internal/repository/product"
	cartsvc "latthi-storefront/internal/service/cart"
	checkoutsvc "latthi-storefront/internal/service/checkout"
	contactsvc "latthi-storefront/internal/service/contact"
	customersvc "latthi-storefront/internal/service/customer"
	ordersvc "latthi-storefront/internal/service/order"
	productsvc "latthi-storefront/internal/service/product"
	refundsvc "latthi-storefront/internal/service/refund"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, closeStore, err := db.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer closeStore()

	var (
		cartRepo cartrepo.Repository
		broker   live.Broker
	)
	if cfg.RedisAddr != "" {
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("connect redis: %v", err)
		}
		defer client.Close()
		cartRepo = cartrepo.NewRedis(client, cartrepo.DefaultTTL, logger)
		rb := live.NewRedis(client, live.DefaultChannel, logger)
		go func() {
			if err := rb.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("live redis relay stopped: %v", err)
			}
		}()
		broker = rb
	} else {
		logger.Printf("REDIS_ADDR not set, carts and live updates stay in this process")
		cartRepo = cartrepo.NewMemory()
		broker = live.NewMemory(logger)
	}
	store = docstore.WithPublisher(store, broker, logger)

	productRepo := productrepo.New(store, logger)
	orderRepo := orderrepo.New(store, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Products:    productsvc.New(productRepo, logger),
		Cart:        cartsvc.New(cartRepo, productRepo, logger),
		Checkout:    checkoutsvc.New(orderRepo, cartRepo, productRepo, cfg.Currency, logger),
		Orders:      ordersvc.New(orderRepo, logger),
		Refunds:     refundsvc.New(orderRepo, cfg.RefundWindow, cfg.Currency, logger),
		Customers:   customersvc.New(customerrepo.New(store, logger), logger),
		Contact:     contactsvc.New(contactrepo.New(store, logger), logger),
		Store:       store,
		Live:        broker,
		AdminToken:  cfg.AdminToken,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}
	if cfg.AdminToken == "" {
		logger.Printf("ADMIN_TOKEN not set, /admin is open")
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	stop()
}
