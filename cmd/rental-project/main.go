package main

import (
	"context"
	"log"
	"rental-project/internal"
	"rental-project/internal/configs"

	"github.com/spf13/pflag"
)

func main() {
	envFile := pflag.String("env-file", "", "path to a .env file (default: ./.env when present)")
	addr := pflag.String("addr", "", "HTTP listen address, overrides HTTP_ADDR")
	pflag.Parse()

	appConfig, err := configs.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Error loading application configuration: %v", err)
	}
	if *addr != "" {
		appConfig.HTTP.Addr = *addr
	}

	application, err := internal.NewApp(context.Background(), appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application run failed: %v", err)
	}
}
