package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/sentra-ppob/api/internal/config"
	"github.com/sentra-ppob/api/internal/router"
	"github.com/sentra-ppob/api/internal/store"
	"github.com/sentra-ppob/api/internal/store/memory"
	"github.com/sentra-ppob/api/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	var repo store.Repository
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, using in-memory store with seeded demo accounts")
		repo = memory.NewSeeded()
	} else {
		pg, err := postgres.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Unable to connect to database: %v", err)
		}
		defer pg.Close()
		repo = pg
		log.Println("Connected to database")
	}

	r := router.New(cfg, repo)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
