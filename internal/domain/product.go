package domain

import "time"

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PriceText   string    `json:"price"`
	Price       Amount    `json:"priceAmount"`
	Description string    `json:"description,omitempty"`
	Fabric      string    `json:"fabric,omitempty"`
	Category    string    `json:"category,omitempty"`
	Sizes       []string  `json:"sizes,omitempty"`
	Images      []string  `json:"images,omitempty"`
	Features    []string  `json:"features,omitempty"`
	Care        []string  `json:"care,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Image returns the first image URL or an empty string.
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// HasSize reports whether size is offered. Products without sizes accept any.
func (p Product) HasSize(size string) bool {
	if len(p.Sizes) == 0 {
		return true
	}
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
