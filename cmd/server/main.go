package main

import (
	"fmt"
	"os"

	"go-catalog/internal/api"
	"go-catalog/internal/config"
	"go-catalog/internal/db"
	"go-catalog/internal/mail"
	redisdb "go-catalog/internal/redis"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)
	mailer := mail.NewFromConfig(cfg)

	r := api.SetupRouter(cfg, rdb, mailer)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s\n", addr)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
