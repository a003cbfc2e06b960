// Command mytutor-api serves the tutoring API: accounts, tutor assignment
// and quiz generation.
package main

import (
	"flag"
	"log"

	"mytutor/internal/app"
	"mytutor/internal/config"
	"mytutor/pkg/logger"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer logger.Log.Sync()

	if err := application.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
