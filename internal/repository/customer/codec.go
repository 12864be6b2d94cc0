package customer

import (
	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
)

// EncodeAddress is the stored form of an address, shared by saved addresses
// and the snapshot carried on orders.
func EncodeAddress(a domain.Address) map[string]interface{} {
	m := map[string]interface{}{
		"fullName": a.FullName,
		"phone":    a.Phone,
		"line1":    a.Line1,
		"city":     a.City,
		"state":    a.State,
		"pincode":  a.Pincode,
	}
	if a.Email != "" {
		m["email"] = a.Email
	}
	if a.Line2 != "" {
		m["line2"] = a.Line2
	}
	if a.Country != "" {
		m["country"] = a.Country
	}
	return m
}

// DecodeAddress reads an address, including the field names older checkout
// forms used (name, address, zip).
func DecodeAddress(id string, m map[string]interface{}) domain.Address {
	return domain.Address{
		ID:       id,
		FullName: firstOf(m, "fullName", "name"),
		Phone:    firstOf(m, "phone", "mobile"),
		Email:    docstore.String(m, "email"),
		Line1:    firstOf(m, "line1", "address", "street"),
		Line2:    docstore.String(m, "line2"),
		City:     docstore.String(m, "city"),
		State:    docstore.String(m, "state"),
		Pincode:  firstOf(m, "pincode", "zip", "postalCode"),
		Country:  docstore.String(m, "country"),
	}
}

// EncodeNotification is the stored form of a notification.
func EncodeNotification(n domain.Notification) map[string]interface{} {
	m := map[string]interface{}{
		"type":      n.Type,
		"title":     n.Title,
		"message":   n.Message,
		"read":      n.Read,
		"createdAt": domain.FormatTimestamp(n.CreatedAt),
	}
	if n.OrderID != "" {
		m["orderId"] = n.OrderID
	}
	return m
}

func decodeNotification(d docstore.Document) domain.Notification {
	n := domain.Notification{
		ID:      d.ID(),
		Type:    docstore.String(d.Data, "type"),
		OrderID: docstore.String(d.Data, "orderId"),
		Title:   docstore.String(d.Data, "title"),
		Message: docstore.String(d.Data, "message"),
		Read:    docstore.Bool(d.Data, "read"),
	}
	n.CreatedAt, _ = domain.ParseTimestamp(d.Data["createdAt"])
	return n
}

func firstOf(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v := docstore.String(m, k); v != "" {
			return v
		}
	}
	return ""
}
