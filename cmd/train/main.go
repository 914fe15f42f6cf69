package main

import (
	"flag"
	"log"
	"os"

	"github.com/hotelops/bookingrisk/pkg/config"
	"github.com/hotelops/bookingrisk/pkg/train"
)

func main() {
	configPath := flag.String("config", "training.yaml", "path to the YAML training config")
	flag.Parse()

	var cfg *config.TrainingConfig
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := config.LoadTrainingConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load training config: %v", err)
		}
		cfg = loaded
	} else {
		log.Printf("No training config at %s, using defaults", *configPath)
		cfg = config.DefaultTrainingConfig()
	}

	result, err := train.NewOrchestrator(cfg).Run()
	if err != nil {
		log.Fatalf("Training run failed: %v", err)
	}

	log.Printf("Training run %s complete", result.RunID)
	log.Printf("Selected %s (f1=%.4f) over %d features; artifact at %s",
		result.Selected, result.Metrics[result.Selected].F1, result.FeatureCount, result.ArtifactPath)
}
