package model

import "time"

// 割引クーポン。Discountは割引率（%）。
type Coupon struct {
	ID        string    `json:"_id"`
	Code      string    `json:"code"`
	Discount  float64   `json:"discount"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"isActive"`
}

func (c Coupon) Usable(now time.Time) bool {
	return c.IsActive && now.Before(c.ExpiresAt)
}
