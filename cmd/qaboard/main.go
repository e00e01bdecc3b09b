package main

import (
	"context"
	"flag"
	"log"

	"github.com/aussiebroadwan/qaboard/internal/qa/app"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file merged into the environment")
	flag.Parse()

	cfg, err := app.LoadConfig(context.Background(), *envFile)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
