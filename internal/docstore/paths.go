package docstore

import (
	"strings"

	"github.com/google/uuid"
)

// Top-level collections. These names are the storage contract shared with
// every client that has ever written to the database.
const (
	Products      = "products"
	Orders        = "orders"
	AllOrders     = "allOrders"
	Users         = "users"
	Subscribers   = "subscribers"
	FeedbackColl  = "feedback"
	userOrders    = "orders"
	addresses     = "addresses"
	notifications = "notifications"
)

func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

func Base(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ValidID reports whether id can be used as a single path segment.
func ValidID(id string) bool {
	return id != "" && !strings.ContainsAny(id, "/.#$[]") && strings.TrimSpace(id) == id
}

// NewKey returns a time-ordered generated key.
func NewKey() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func ProductPath(id string) string { return Join(Products, id) }
func OrderPath(id string) string { return Join(Orders, id) }
func AllOrderPath(id string) string { return Join(AllOrders, id) }
func UserPath(uid string) string { return Join(Users, uid) }
func UserOrdersPath(uid string) string { return Join(Users, uid, userOrders) }
func UserOrderPath(uid, id string) string { return Join(Users, uid, userOrders, id) }
func AddressesPath(uid string) string { return Join(Users, uid, addresses) }
func AddressPath(uid, id string) string { return Join(Users, uid, addresses, id) }
func NotificationsPath(uid string) string { return Join(Users, uid, notifications) }
func NotificationPath(uid, id string) string { return Join(Users, uid, notifications, id) }
func SubscriberPath(id string) string { return Join(Subscribers, id) }
func FeedbackPath(id string) string { return Join(FeedbackColl, id) }

// ParseChild returns the id when path is exactly collection/{id}.
func ParseChild(collection, path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, collection+"/")
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// OrderKind names the collection an order fragment lives in.
type OrderKind int

const (
	KindUnknown OrderKind = iota
	KindAllOrders
	KindOrders
	KindUserOrders
)

func (k OrderKind) String() string {
	switch k {
	case KindAllOrders:
		return AllOrders
	case KindOrders:
		return Orders
	case KindUserOrders:
		return "users/*/orders"
	default:
		return "unknown"
	}
}

// OrderLocation is a parsed order fragment path.
type OrderLocation struct {
	Kind    OrderKind
	UserID  string
	OrderID string
}

// ParseOrderPath recognises the three order fragment locations.
func ParseOrderPath(path string) (OrderLocation, bool) {
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return OrderLocation{}, false
		}
	}
	switch {
	case len(segs) == 2 && segs[0] == AllOrders:
		return OrderLocation{Kind: KindAllOrders, OrderID: segs[1]}, true
	case len(segs) == 2 && segs[0] == Orders:
		return OrderLocation{Kind: KindOrders, OrderID: segs[1]}, true
	case len(segs) == 4 && segs[0] == Users && segs[2] == userOrders:
		return OrderLocation{Kind: KindUserOrders, UserID: segs[1], OrderID: segs[3]}, true
	}
	return OrderLocation{}, false
}

// IsOrderPath reports whether a changed path can affect the merged order view.
// Writes below an order (e.g. users/u/orders/o) and user profiles both count.
func IsOrderPath(path string) bool {
	if _, ok := ParseOrderPath(path); ok {
		return true
	}
	segs := strings.Split(path, "/")
	return len(segs) == 2 && segs[0] == Users
}
