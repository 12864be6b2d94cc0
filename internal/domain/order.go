package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a writable lifecycle status. "pending" is
// only ever a display default for orders without a status field.
func ValidStatus(s string) bool {
	switch s {
	case StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

const (
	PaymentCOD    = "cod"
	PaymentOnline = "online"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

type OrderItem struct {
	ProductID string `json:"productId,omitempty"`
	Name      string `json:"name"`
	Size      string `json:"size,omitempty"`
	Quantity  int    `json:"quantity"`
	PriceText string `json:"price"`
	Image     string `json:"image,omitempty"`
}

// Order is the merged, display-ready view of all fragments sharing an id.
type Order struct {
	ID            string         `json:"id"`
	SourcePath    string         `json:"sourcePath"`
	Version       int64          `json:"version"`
	UserID        string         `json:"userId,omitempty"`
	Email         string         `json:"email"`
	Items         []OrderItem    `json:"items"`
	Address       *Address       `json:"address,omitempty"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	PaymentStatus string         `json:"paymentStatus,omitempty"`
	PaymentID     string         `json:"paymentId,omitempty"`
	Total         Amount         `json:"total"`
	Status        string         `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt,omitempty"`
	DeliveredAt   time.Time      `json:"deliveredAt,omitempty"`
	RefundRequest *RefundRequest `json:"refundRequest,omitempty"`
}

const (
	RefundPending  = "pending"
	RefundApproved = "approved"
	RefundRejected = "rejected"
)

type RefundRequest struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
	Status      string    `json:"status"`
	AdminNote   string    `json:"adminNote,omitempty"`
	Amount      Amount    `json:"amount"`
	ProcessedAt time.Time `json:"processedAt,omitempty"`
}

// DeliveryStep is one stage of the customer-facing tracking view.
type DeliveryStep struct {
	Status string `json:"status"`
	Done   bool   `json:"done"`
}

// DeliveryProgress derives the tracking steps for an order status.
// Cancelled orders report a single completed cancelled step after placement.
func DeliveryProgress(status string) []DeliveryStep {
	if status == StatusCancelled {
		return []DeliveryStep{{Status: "placed", Done: true}, {Status: StatusCancelled, Done: true}}
	}
	stages := []string{"placed", StatusProcessing, StatusShipped, StatusDelivered}
	reached := 0
	switch status {
	case StatusProcessing:
		reached = 1
	case StatusShipped:
		reached = 2
	case StatusDelivered:
		reached = 3
	}
	steps := make([]DeliveryStep, 0, len(stages))
	for i, s := range stages {
		steps = append(steps, DeliveryStep{Status: s, Done: i <= reached})
	}
	return steps
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006, 3:04:05 PM",
	"02/01/2006",
}

// ParseTimestamp accepts the shapes orders have been stored with: RFC 3339
// strings, a handful of locale strings, and epoch milliseconds as a number
// or numeric string. It reports false for anything else.
func ParseTimestamp(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case int64:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(t).UTC(), true
	case int:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case int32:
		if t <= 0 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(t)).UTC(), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			if ms <= 0 {
				return time.Time{}, false
			}
			return time.UnixMilli(ms).UTC(), true
		}
		for _, layout := range timestampLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// FormatTimestamp is the canonical stored form of timestamps written by this service.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
