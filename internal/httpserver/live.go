package httpserver

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	"latthi-storefront/internal/live"
)

const (
	liveWriteWait  = 10 * time.Second
	livePingPeriod = 30 * time.Second
)

type liveMessage struct {
	Type   string         `json:"type"`
	Orders []domain.Order `json:"orders,omitempty"`
	Error  string         `json:"error,omitempty"`
	At     time.Time      `json:"at"`
}

func (h *handlers) upgrader() websocket.Upgrader {
	origins := h.deps.CORSOrigins
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(origins) == 0 || containsWildcard(origins) {
				return true
			}
			if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
				return true
			}
			for _, o := range origins {
				if o == origin {
					return true
				}
			}
			return false
		},
	}
}

// liveOrders pushes the full merged order list on connect and again after
// every committed change to an order fragment or customer profile.
func (h *handlers) liveOrders(c *gin.Context) {
	if h.deps.Live == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, errorBody("live updates unavailable"))
		return
	}
	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Printf("api: live orders upgrade error=%v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	events, unsubscribe := h.deps.Live.Subscribe(ctx)
	defer unsubscribe()

	// The client never sends anything we need; reading detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	push := func() error {
		msg := liveMessage{Type: "orders", At: time.Now().UTC()}
		orders, err := h.deps.Orders.ListAll(ctx)
		if err != nil {
			h.logger.Printf("api: live orders aggregate error=%v", err)
			msg = liveMessage{Type: "error", Error: "orders unavailable", At: msg.At}
		} else {
			msg.Orders = orders
		}
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		return conn.WriteJSON(msg)
	}

	if err := push(); err != nil {
		return
	}
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(liveWriteWait))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			hit := touchesOrders(ev)
			if drainOrders(events) {
				hit = true
			}
			if !hit {
				continue
			}
			if err := push(); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		}
	}
}

func touchesOrders(ev live.Event) bool {
	for _, p := range ev.Paths {
		if docstore.IsOrderPath(p) {
			return true
		}
	}
	return false
}

// drainOrders empties events already queued so a burst of commits costs one
// aggregation. It reports whether any drained event touched orders.
func drainOrders(events <-chan live.Event) bool {
	hit := false
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return hit
			}
			hit = hit || touchesOrders(ev)
		default:
			return hit
		}
	}
}
