package main

import (
	"log"

	"github.com/MrSnakeDoc/kompas/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ kompas failed to start: %v", err)
	}
}
