package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/szalonlabs/booking-api/internal/booking/app"

	// Embedded zone data so Europe/Budapest resolves on zoneless hosts.
	_ "time/tzdata"
)

func main() {
	// Best effort; production deployments set real environment variables.
	_ = godotenv.Load()

	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
