package model

import "time"

type Product struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	DiscountedPrice *float64  `json:"discountedPrice,omitempty"`
	Stock           int64     `json:"stock"`
	CategoryID      string    `json:"category,omitempty"`
	Images          []string  `json:"images,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
