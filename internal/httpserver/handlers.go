package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"latthi-storefront/internal/domain"
	cartsvc "latthi-storefront/internal/service/cart"
	checkoutsvc "latthi-storefront/internal/service/checkout"
	contactsvc "latthi-storefront/internal/service/contact"
	customersvc "latthi-storefront/internal/service/customer"
	productsvc "latthi-storefront/internal/service/product"
)

type handlers struct {
	deps    Deps
	logger  *log.Logger
	closing <-chan struct{}
}

type listResponse struct {
	Total   int         `json:"total"`
	Results interface{} `json:"results"`
}

func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("invalid request body"))
		return false
	}
	return true
}

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.deps.Products.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		h.fail(c, "list products", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Total: len(products), Results: products})
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get product", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) createProduct(c *gin.Context) {
	var in productsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.deps.Products.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "create product", err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handlers) updateProduct(c *gin.Context) {
	var in productsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.deps.Products.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, "update product", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) deleteProduct(c *gin.Context) {
	if err := h.deps.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, "delete product", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) getCart(c *gin.Context) {
	ctx := c.Request.Context()
	cart, err := h.deps.Cart.Get(ctx, sessionFromContext(ctx))
	if err != nil {
		h.fail(c, "get cart", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) addCartLine(c *gin.Context) {
	var in cartsvc.LineInput
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	cart, err := h.deps.Cart.Add(ctx, sessionFromContext(ctx), in)
	if err != nil {
		h.fail(c, "add cart line", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) setCartLine(c *gin.Context) {
	var in cartsvc.LineInput
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	cart, err := h.deps.Cart.SetQuantity(ctx, sessionFromContext(ctx), in)
	if err != nil {
		h.fail(c, "set cart line", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) removeCartLine(c *gin.Context) {
	in := cartsvc.LineInput{ProductID: c.Query("productId"), Size: c.Query("size")}
	if in.ProductID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("productId query parameter required"))
		return
	}
	ctx := c.Request.Context()
	cart, err := h.deps.Cart.Remove(ctx, sessionFromContext(ctx), in)
	if err != nil {
		h.fail(c, "remove cart line", err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) clearCart(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.deps.Cart.Clear(ctx, sessionFromContext(ctx)); err != nil {
		h.fail(c, "clear cart", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) paymentHandoff(c *gin.Context) {
	var sel checkoutsvc.Selection
	if !bindJSON(c, &sel) {
		return
	}
	ctx := c.Request.Context()
	handoff, err := h.deps.Checkout.PaymentHandoff(ctx, sessionFromContext(ctx), sel)
	if err != nil {
		h.fail(c, "payment handoff", err)
		return
	}
	c.JSON(http.StatusOK, handoff)
}

func (h *handlers) placeOrder(c *gin.Context) {
	var in checkoutsvc.Input
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	o, err := h.deps.Checkout.PlaceOrder(ctx, userFromContext(ctx), sessionFromContext(ctx), in)
	if err != nil {
		h.fail(c, "place order", err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *handlers) getProfile(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.deps.Customers.Profile(ctx, userFromContext(ctx))
	if err != nil {
		h.fail(c, "get profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) saveProfile(c *gin.Context) {
	var in customersvc.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	p, err := h.deps.Customers.SaveProfile(ctx, userFromContext(ctx), in)
	if err != nil {
		h.fail(c, "save profile", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handlers) listAddresses(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.deps.Customers.Addresses(ctx, userFromContext(ctx))
	if err != nil {
		h.fail(c, "list addresses", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Total: len(list), Results: list})
}

func (h *handlers) addAddress(c *gin.Context) {
	var in domain.Address
	if !bindJSON(c, &in) {
		return
	}
	ctx := c.Request.Context()
	a, err := h.deps.Customers.AddAddress(ctx, userFromContext(ctx), in)
	if err != nil {
		h.fail(c, "add address", err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *handlers) deleteAddress(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.deps.Customers.DeleteAddress(ctx, userFromContext(ctx), c.Param("id")); err != nil {
		h.fail(c, "delete address", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) listNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.deps.Customers.Notifications(ctx, userFromContext(ctx))
	if err != nil {
		h.fail(c, "list notifications", err)
		return
	}
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(list), "unread": unread, "results": list})
}

func (h *handlers) markNotificationRead(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.deps.Customers.MarkRead(ctx, userFromContext(ctx), c.Param("id")); err != nil {
		h.fail(c, "mark notification read", err)
		return
	}
	c.Status(http.StatusNoContent)
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *handlers) subscribe(c *gin.Context) {
	var in subscribeRequest
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.deps.Contact.Subscribe(c.Request.Context(), in.Email)
	if err != nil {
		h.fail(c, "subscribe", err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *handlers) submitFeedback(c *gin.Context) {
	var in contactsvc.FeedbackInput
	if !bindJSON(c, &in) {
		return
	}
	f, err := h.deps.Contact.SubmitFeedback(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "submit feedback", err)
		return
	}
	c.JSON(http.StatusCreated, f)
}

func (h *handlers) listSubscribers(c *gin.Context) {
	list, err := h.deps.Contact.Subscribers(c.Request.Context())
	if err != nil {
		h.fail(c, "list subscribers", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Total: len(list), Results: list})
}

func (h *handlers) listFeedback(c *gin.Context) {
	list, err := h.deps.Contact.Feedback(c.Request.Context())
	if err != nil {
		h.fail(c, "list feedback", err)
		return
	}
	c.JSON(http.StatusOK, listResponse{Total: len(list), Results: list})
}
