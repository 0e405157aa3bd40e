package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"storefront/internal/domain/model"
	"storefront/internal/mockapi"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	s := mockapi.New(mockapi.Options{
		JWTSecret: os.Getenv("JWT_SECRET"),
		AccessTTL: 15 * time.Minute,
	})

	//開発用の初期データ
	s.SeedUser("Admin", "admin@example.com", "password123", model.RoleAdmin)
	s.SeedUser("Customer", "user@example.com", "password123", model.RoleUser)
	s.SeedProducts(
		model.Product{Name: "Handmade Mug", Description: "ceramic mug", Price: 18.5, Stock: 12, CategoryID: "kitchen"},
		model.Product{Name: "Wool Scarf", Description: "hand knitted", Price: 32, Stock: 5, CategoryID: "apparel"},
		model.Product{Name: "Oak Cutting Board", Description: "solid oak", Price: 45, Stock: 8, CategoryID: "kitchen"},
	)
	s.SeedCoupon("WELCOME10", 10, time.Now().Add(30*24*time.Hour))

	addr := ":5000"
	if v := os.Getenv("PORT"); v != "" {
		if v[0] != ':' {
			addr = ":" + v
		} else {
			addr = v
		}
	}

	log.Info("mock api listening", "addr", addr)
	if err := s.Start(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
