package order

import (
	"math"
	"sort"
	"strings"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	customerrepo "latthi-storefront/internal/repository/customer"
	orderrepo "latthi-storefront/internal/repository/order"
)

// NoEmail is shown when no email can be resolved for an order.
const NoEmail = "No email found"

type merged struct {
	id      string
	data    map[string]interface{}
	path    string
	version int64
	userID  string
}

// Aggregate merges order fragments into one order per id.
//
// allOrders fragments seed the view, orders fragments overlay them and
// nested users/{uid}/orders copies overlay last. Each overlay is shallow:
// a top-level key present in a later fragment replaces the earlier value
// wholesale. SourcePath and Version come from the last fragment applied.
// The result is sorted newest first; orders without a readable date sort
// last and ties fall back to id order.
func Aggregate(f orderrepo.Fragments) []domain.Order {
	byID := make(map[string]*merged)
	var ids []string

	overlay := func(d docstore.Document, userID string) {
		id := d.ID()
		m, ok := byID[id]
		if !ok {
			m = &merged{id: id, data: make(map[string]interface{})}
			byID[id] = m
			ids = append(ids, id)
		}
		for k, v := range d.Data {
			m.data[k] = v
		}
		m.path = d.Path
		m.version = d.Version
		if userID != "" {
			m.userID = userID
		}
	}

	for _, d := range f.AllOrders {
		overlay(d, "")
	}
	for _, d := range f.Orders {
		overlay(d, "")
	}
	for _, d := range f.UserOrders {
		loc, ok := docstore.ParseOrderPath(d.Path)
		if !ok || loc.Kind != docstore.KindUserOrders {
			continue
		}
		overlay(d, loc.UserID)
	}

	orders := make([]domain.Order, 0, len(ids))
	sortable := make(map[string]bool, len(ids))
	for _, id := range ids {
		o, ok := decode(byID[id], f.Emails)
		orders = append(orders, o)
		sortable[id] = ok
	}

	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		ai, bi := sortable[a.ID], sortable[b.ID]
		if ai != bi {
			return ai
		}
		if ai && !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return orders
}

// decode builds the display view of a merged order. The bool reports whether
// a creation time could be read.
func decode(m *merged, emails map[string]string) (domain.Order, bool) {
	data := m.data
	o := domain.Order{
		ID:            m.id,
		SourcePath:    m.path,
		Version:       m.version,
		UserID:        m.userID,
		PaymentMethod: docstore.String(data, "paymentMethod"),
		PaymentStatus: docstore.String(data, "paymentStatus"),
		PaymentID:     docstore.String(data, "paymentId"),
		Status:        strings.TrimSpace(docstore.String(data, "status")),
		Items:         decodeItems(data),
	}
	if o.UserID == "" {
		o.UserID = docstore.String(data, "userId")
	}
	if o.Status == "" {
		o.Status = domain.StatusPending
	}

	addr := docstore.Map(data, "address")
	if addr == nil {
		addr = docstore.Map(data, "shippingAddress")
	}
	if addr != nil {
		a := customerrepo.DecodeAddress("", addr)
		o.Address = &a
	}
	o.Email = resolveEmail(data, o.UserID, emails)
	o.Total = resolveTotal(data, o.Items)

	created, ok := domain.ParseTimestamp(data["createdAt"])
	if !ok {
		created, ok = domain.ParseTimestamp(data["timestamp"])
	}
	o.CreatedAt = created
	o.UpdatedAt, _ = domain.ParseTimestamp(data["updatedAt"])
	o.DeliveredAt, _ = domain.ParseTimestamp(data["deliveredAt"])
	o.RefundRequest = decodeRefund(docstore.Map(data, "refundRequest"))
	return o, ok
}

// resolveEmail tries the order, its address, then the customer profile.
func resolveEmail(data map[string]interface{}, userID string, emails map[string]string) string {
	if e := strings.TrimSpace(docstore.String(data, "email")); e != "" {
		return e
	}
	for _, key := range []string{"address", "shippingAddress"} {
		if e := strings.TrimSpace(docstore.String(docstore.Map(data, key), "email")); e != "" {
			return e
		}
	}
	if e := strings.TrimSpace(emails[userID]); userID != "" && e != "" {
		return e
	}
	return NoEmail
}

func resolveTotal(data map[string]interface{}, items []domain.OrderItem) domain.Amount {
	for _, key := range []string{"total", "totalAmount"} {
		switch v := data[key].(type) {
		case float64:
			return domain.Amount(math.Round(v))
		case string:
			if a := domain.ParseAmount(v); a > 0 {
				return a
			}
		}
	}
	var sum domain.Amount
	for _, it := range items {
		sum += domain.ParseAmount(it.PriceText).Times(it.Quantity)
	}
	return sum
}

func decodeItems(data map[string]interface{}) []domain.OrderItem {
	raw := docstore.Maps(data, "items")
	if len(raw) == 0 {
		if single := docstore.Map(data, "item"); single != nil {
			raw = append(raw, single)
		}
	}
	items := make([]domain.OrderItem, 0, len(raw))
	for _, m := range raw {
		qty, ok := docstore.Int(m, "quantity")
		if !ok || qty < 1 {
			qty = 1
		}
		id := docstore.String(m, "productId")
		if id == "" {
			id = docstore.String(m, "id")
		}
		items = append(items, domain.OrderItem{
			ProductID: id,
			Name:      docstore.String(m, "name"),
			Size:      docstore.String(m, "size"),
			Quantity:  qty,
			PriceText: docstore.String(m, "price"),
			Image:     docstore.String(m, "image"),
		})
	}
	return items
}

func decodeRefund(m map[string]interface{}) *domain.RefundRequest {
	if m == nil {
		return nil
	}
	r := &domain.RefundRequest{
		Reason:    docstore.String(m, "reason"),
		Status:    docstore.String(m, "status"),
		AdminNote: docstore.String(m, "adminNote"),
	}
	if r.Status == "" {
		r.Status = domain.RefundPending
	}
	if n, ok := docstore.Int(m, "amount"); ok {
		r.Amount = domain.Amount(n)
	} else {
		r.Amount = domain.ParseAmount(docstore.String(m, "amount"))
	}
	r.RequestedAt, _ = domain.ParseTimestamp(m["requestedAt"])
	r.ProcessedAt, _ = domain.ParseTimestamp(m["processedAt"])
	return r
}
