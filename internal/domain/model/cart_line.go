package model

import "strings"

// オフライン作成した行のID接頭辞。サーバー同期の対象外。
const LocalIDPrefix = "local-"

// カートの1行。identityはProductID（同一商品は1行に集約）。
type CartLine struct {
	ProductID       string   `json:"_id"`
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
	Quantity        int64    `json:"quantity"`
	Stock           int64    `json:"stock"`
	Images          []string `json:"images,omitempty"`
	Dirty           bool     `json:"dirty,omitempty"` // リモート同期が未完了ならtrue
}

// 実売価格（割引があれば割引後）
func (l CartLine) UnitPrice() float64 {
	if l.DiscountedPrice != nil {
		return *l.DiscountedPrice
	}
	return l.Price
}

// オフライン専用行かどうか
func (l CartLine) IsLocalOnly() bool {
	return strings.HasPrefix(l.ProductID, LocalIDPrefix)
}

// 商品が解決できない行の退避表現。削除はせずUI側で消せる形を残す。
func PlaceholderLine(productID string, quantity int64) CartLine {
	return CartLine{
		ProductID: productID,
		Name:      "Unknown Product",
		Price:     0,
		Quantity:  quantity,
		Stock:     0,
	}
}
