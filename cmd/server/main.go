package main

import (
	"log"

	"github.com/hotelops/bookingrisk/pkg/api"
	"github.com/hotelops/bookingrisk/pkg/config"
	"github.com/hotelops/bookingrisk/pkg/predict"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	svc, err := predict.NewService(cfg.ArtifactPath)
	if err != nil {
		log.Fatalf("Failed to load model artifact: %v", err)
	}

	server := api.NewServer(svc, cfg)
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
