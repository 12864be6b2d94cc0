package seed

import (
	"context"
	"fmt"
	"time"

	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	orderrepo "latthi-storefront/internal/repository/order"
)

// DemoUser owns the seeded orders.
const DemoUser = "demo-customer"

type productSeed struct {
	ID          string
	Name        string
	Price       string
	Description string
	Fabric      string
	Category    string
	Sizes       []string
	Image       string
}

var products = []productSeed{
	{
		ID:          "demo-indigo-kurta",
		Name:        "Indigo Block Print Kurta",
		Price:       "₹1,299",
		Description: "Hand block printed straight kurta",
		Fabric:      "Cotton",
		Category:    "Kurtas",
		Sizes:       []string{"S", "M", "L", "XL"},
		Image:       "https://example.com/img/indigo-kurta.jpg",
	},
	{
		ID:          "demo-mulmul-stole",
		Name:        "Mulmul Stole",
		Price:       "₹450",
		Description: "Lightweight mulmul stole",
		Fabric:      "Mulmul",
		Category:    "Stoles",
		Image:       "https://example.com/img/mulmul-stole.jpg",
	},
	{
		ID:          "demo-chanderi-dupatta",
		Name:        "Chanderi Dupatta",
		Price:       "Rs. 899/-",
		Description: "Zari border dupatta",
		Fabric:      "Chanderi silk",
		Category:    "Dupattas",
		Image:       "https://example.com/img/chanderi-dupatta.jpg",
	},
}

// Apply writes demo catalog and order data for manual testing. Every write
// replaces a fixed path, so running it again is harmless.
//
// The orders are deliberately stored the way older clients left them: one
// order split across allOrders and the customer's copy with different
// fields on each, and one buy-now order under orders/.
func Apply(ctx context.Context, store docstore.Store, now time.Time) error {
	now = now.UTC()
	var writes []docstore.Write
	for _, p := range products {
		writes = append(writes, docstore.Replace(docstore.ProductPath(p.ID), map[string]interface{}{
			"name":        p.Name,
			"price":       p.Price,
			"description": p.Description,
			"fabric":      p.Fabric,
			"category":    p.Category,
			"sizes":       p.Sizes,
			"images":      []string{p.Image},
			"createdAt":   domain.FormatTimestamp(now),
		}))
	}

	writes = append(writes, docstore.Replace(docstore.UserPath(DemoUser), map[string]interface{}{
		"email": "demo.customer@example.com",
		"name":  "Demo Customer",
	}))

	placed := now.Add(-72 * time.Hour)
	legacyID := "LEGACY-1001"
	writes = append(writes,
		docstore.Replace(docstore.AllOrderPath(legacyID), map[string]interface{}{
			"userId": DemoUser,
			"items": []interface{}{
				map[string]interface{}{"name": products[0].Name, "size": "M", "quantity": 1, "price": products[0].Price},
				map[string]interface{}{"name": products[1].Name, "quantity": 2, "price": products[1].Price},
			},
			"status":    domain.StatusShipped,
			"timestamp": placed.Format("02/01/2006"),
		}),
		docstore.Replace(docstore.UserOrderPath(DemoUser, legacyID), map[string]interface{}{
			"shippingAddress": map[string]interface{}{
				"name":    "Demo Customer",
				"mobile":  9876543210,
				"address": "12 Lake Road",
				"city":    "Jaipur",
				"state":   "Rajasthan",
				"zip":     "302001",
			},
			"paymentMethod": domain.PaymentCOD,
			"createdAt":     placed.UnixMilli(),
		}),
	)

	buyNow := domain.Order{
		ID:     fmt.Sprintf("ORD%d", now.Add(-2*time.Hour).UnixMilli()),
		UserID: DemoUser,
		Items: []domain.OrderItem{{
			ProductID: products[2].ID,
			Name:      products[2].Name,
			Quantity:  1,
			PriceText: products[2].Price,
			Image:     products[2].Image,
		}},
		PaymentMethod: domain.PaymentOnline,
		PaymentStatus: domain.PaymentStatusPaid,
		PaymentID:     "pay_demo_0001",
		Total:         domain.ParseAmount(products[2].Price),
		Status:        domain.StatusPending,
		CreatedAt:     now.Add(-2 * time.Hour),
	}
	data := orderrepo.EncodeOrder(buyNow)
	writes = append(writes,
		docstore.Replace(docstore.OrderPath(buyNow.ID), data),
		docstore.Replace(docstore.UserOrderPath(DemoUser, buyNow.ID), data),
	)

	if err := store.Commit(ctx, writes...); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	return nil
}
