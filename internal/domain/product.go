package domain

import "time"

// Product is a catalog entry staff pick from when queueing an order.
// Products are created whole and deleted whole - never mutated in place.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Sizes     []string  `json:"sizes"`
	Colors    []string  `json:"colors"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProduct carries caller-provided fields for product creation.
// ID and timestamps are assigned by the storage backend.
type NewProduct struct {
	Name   string   `json:"name"`
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}
