package model

import "time"

type Review struct {
	ID        string    `json:"_id"`
	ProductID string    `json:"product"`
	UserID    string    `json:"user"`
	Rating    int       `json:"rating"` // 1〜5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// お問い合わせ（admin画面で閲覧）
type ContactMessage struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
