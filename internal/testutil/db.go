package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/cv-project/internal/config"
	"alfredoptarigan/cv-project/internal/models"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := config.OpenDatabase(sqlite.Open(dsn), logger.Discard)
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func NewCV(firstname, lastname string) *models.CV {
	return &models.CV{
		Firstname: firstname,
		Lastname:  lastname,
		Skills:    "Go, PostgreSQL, Docker, Kubernetes",
		Projects:  "Built a CV management platform",
		Bio:       "Backend engineer with a decade of experience.",
		Contacts:  firstname + "@example.com",
	}
}

func Logger() *zap.Logger {
	return zap.NewNop()
}

func NewUUID() uuid.UUID {
	return uuid.New()
}
