package main

import (
	"context"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/cv-project/internal/config"
	"alfredoptarigan/cv-project/internal/repositories"
	"alfredoptarigan/cv-project/internal/services"
)

// Rebuilds the Qdrant search index from every CV in the database.
func main() {
	log.Println("🚀 Starting CV reindex...")

	cfg := config.Load()
	if cfg.Qdrant.URL == "" {
		log.Fatal("❌ QDRANT_URL is not set")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := config.InitDatabase(cfg, logger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini, logger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		logger,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	index := services.NewCVIndex(qdrantService, geminiService)

	cvs, err := repositories.NewCVRepository(db).ListAll()
	if err != nil {
		log.Fatalf("❌ Failed to load CVs: %v", err)
	}

	successCount := 0
	failCount := 0
	for i := range cvs {
		cv := &cvs[i]
		log.Printf("📄 Indexing CV %d: %s", cv.ID, cv.FullName())
		if err := index.IndexCV(ctx, cv); err != nil {
			log.Printf("   ❌ Failed: %v", err)
			failCount++
			continue
		}
		successCount++
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("📊 Reindex Summary:")
	log.Printf("   ✅ Indexed: %d CVs", successCount)
	log.Printf("   ❌ Failed: %d CVs", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		os.Exit(1)
	}
	log.Println("✅ All CVs indexed successfully!")
}
