package main

import (
	"errors"
	"log"
	"net/http"

	"auth-service/internal/config"
	"auth-service/internal/server"
)

func main() {
	cfg := config.Load()

	srv := server.NewServer(cfg)

	log.Printf("Auth service listening on %s", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http serve: %v", err)
	}
}
