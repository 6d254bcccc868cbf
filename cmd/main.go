package main

import (
	"flag"
	"log"
	"os"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config (overrides CONFIG_PATH)")
	flag.Parse()
	if *configPath != "" {
		if err := os.Setenv("CONFIG_PATH", *configPath); err != nil {
			log.Fatalf("marketplace: %v", err)
		}
	}

	marketplace, err := app.New(config.MustLoad())
	if err != nil {
		log.Fatalf("marketplace: startup failed: %v", err)
	}
	marketplace.Run()
}
