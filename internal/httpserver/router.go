package httpserver

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"latthi-storefront/internal/domain"
	"latthi-storefront/internal/live"
	cartsvc "latthi-storefront/internal/service/cart"
	checkoutsvc "latthi-storefront/internal/service/checkout"
	contactsvc "latthi-storefront/internal/service/contact"
	customersvc "latthi-storefront/internal/service/customer"
	ordersvc "latthi-storefront/internal/service/order"
	productsvc "latthi-storefront/internal/service/product"
	refundsvc "latthi-storefront/internal/service/refund"
)

type ProductService interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, in productsvc.Input) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.Input) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartService interface {
	Get(ctx context.Context, session string) (domain.Cart, error)
	Add(ctx context.Context, session string, in cartsvc.LineInput) (domain.Cart, error)
	SetQuantity(ctx context.Context, session string, in cartsvc.LineInput) (domain.Cart, error)
	Remove(ctx context.Context, session string, in cartsvc.LineInput) (domain.Cart, error)
	Clear(ctx context.Context, session string) error
}

type CheckoutService interface {
	PaymentHandoff(ctx context.Context, session string, sel checkoutsvc.Selection) (*checkoutsvc.Handoff, error)
	PlaceOrder(ctx context.Context, uid, session string, in checkoutsvc.Input) (*domain.Order, error)
}

type OrderService interface {
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListForUser(ctx context.Context, uid string) ([]domain.Order, error)
	Get(ctx context.Context, uid, id string) (*ordersvc.Tracking, error)
	UpdateStatus(ctx context.Context, orderID string, in ordersvc.StatusUpdate) error
}

type RefundService interface {
	Request(ctx context.Context, uid, orderID, reason string) (*domain.RefundRequest, error)
	Decide(ctx context.Context, orderID string, in refundsvc.Decision) (*domain.Order, error)
}

type CustomerService interface {
	Profile(ctx context.Context, uid string) (*domain.Profile, error)
	SaveProfile(ctx context.Context, uid string, in customersvc.ProfileInput) (*domain.Profile, error)
	Addresses(ctx context.Context, uid string) ([]domain.Address, error)
	AddAddress(ctx context.Context, uid string, a domain.Address) (*domain.Address, error)
	DeleteAddress(ctx context.Context, uid, id string) error
	Notifications(ctx context.Context, uid string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, uid, id string) error
}

type ContactService interface {
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)
	SubmitFeedback(ctx context.Context, in contactsvc.FeedbackInput) (*domain.Feedback, error)
	Subscribers(ctx context.Context) ([]domain.Subscriber, error)
	Feedback(ctx context.Context) ([]domain.Feedback, error)
}

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles the services the router dispatches to.
type Deps struct {
	Products  ProductService
	Cart      CartService
	Checkout  CheckoutService
	Orders    OrderService
	Refunds   RefundService
	Customers CustomerService
	Contact   ContactService
	Store     Pinger
	// Live feeds the admin order websocket. Without it the route answers 503.
	Live live.Broker

	// AdminToken guards /admin when non-empty.
	AdminToken  string
	CORSOrigins []string
	// RateLimit is the number of public writes allowed per client per minute.
	// Zero disables limiting.
	RateLimit int
}

func (d Deps) validate() error {
	switch {
	case d.Products == nil:
		return errors.New("httpserver: product service required")
	case d.Cart == nil:
		return errors.New("httpserver: cart service required")
	case d.Checkout == nil:
		return errors.New("httpserver: checkout service required")
	case d.Orders == nil:
		return errors.New("httpserver: order service required")
	case d.Refunds == nil:
		return errors.New("httpserver: refund service required")
	case d.Customers == nil:
		return errors.New("httpserver: customer service required")
	case d.Contact == nil:
		return errors.New("httpserver: contact service required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, deps Deps) (*gin.Engine, error) {
	return newRouter(logger, deps, nil)
}

func newRouter(logger *log.Logger, deps Deps, closing <-chan struct{}) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery(), corsMiddleware(deps.CORSOrigins))

	h := &handlers{deps: deps, logger: logger, closing: closing}
	limit := newRateLimiter(deps.RateLimit, 10*time.Minute).middleware()

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Store))

	router.GET("/products", h.listProducts)
	router.GET("/products/:id", h.getProduct)

	cart := router.Group("/cart", cartSessionMiddleware(true))
	cart.GET("", h.getCart)
	cart.DELETE("", h.clearCart)
	cart.POST("/lines", h.addCartLine)
	cart.PATCH("/lines", h.setCartLine)
	cart.DELETE("/lines", h.removeCartLine)

	checkout := router.Group("/checkout", limit, userMiddleware(), cartSessionMiddleware(false))
	checkout.POST("/handoff", h.paymentHandoff)
	checkout.POST("/orders", h.placeOrder)

	me := router.Group("/me", userMiddleware())
	me.GET("/orders", h.myOrders)
	me.GET("/orders/:id", h.myOrder)
	me.POST("/orders/:id/refund", limit, h.requestRefund)
	me.GET("/profile", h.getProfile)
	me.PUT("/profile", h.saveProfile)
	me.GET("/addresses", h.listAddresses)
	me.POST("/addresses", h.addAddress)
	me.DELETE("/addresses/:id", h.deleteAddress)
	me.GET("/notifications", h.listNotifications)
	me.POST("/notifications/:id/read", h.markNotificationRead)

	router.POST("/subscribers", limit, h.subscribe)
	router.POST("/feedback", limit, h.submitFeedback)

	admin := router.Group("/admin", adminMiddleware(deps.AdminToken))
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/orders", h.allOrders)
	admin.GET("/orders/live", h.liveOrders)
	admin.PATCH("/orders/:id/status", h.updateOrderStatus)
	admin.POST("/orders/:id/refund", h.decideRefund)
	admin.GET("/subscribers", h.listSubscribers)
	admin.GET("/feedback", h.listFeedback)

	return router, nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerUserID, headerCartSession},
		AllowWebSockets:  true,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || containsWildcard(origins) {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
