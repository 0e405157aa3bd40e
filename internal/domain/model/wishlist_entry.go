package model

import "strings"

// お気に入りの1件。数量は持たない（集合として扱う）。
type WishlistEntry struct {
	ProductID       string   `json:"_id"`
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
	Stock           int64    `json:"stock"`
	Images          []string `json:"images,omitempty"`
	Dirty           bool     `json:"dirty,omitempty"`
}

func (e WishlistEntry) IsLocalOnly() bool {
	return strings.HasPrefix(e.ProductID, LocalIDPrefix)
}

func PlaceholderEntry(productID string) WishlistEntry {
	return WishlistEntry{
		ProductID: productID,
		Name:      "Unknown Product",
		Price:     0,
		Stock:     0,
	}
}
