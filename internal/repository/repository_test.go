package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/db"
	"storefront/internal/model"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// newTestDB opens a migrated SQLite database with foreign keys enforced.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open("sqlite", filepath.Join(t.TempDir(), "storefront.db"), false)
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gormDB.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func createCategory(t *testing.T, gormDB *gorm.DB, name string) *model.Category {
	t.Helper()
	category := &model.Category{Name: name, Slug: name}
	require.NoError(t, NewCategoryRepository(gormDB).Create(context.Background(), category))
	return category
}

type productSeed struct {
	name        string
	description string
	price       int64
	category    *model.Category
	photoID     string
	age         time.Duration
}

func createProduct(t *testing.T, gormDB *gorm.DB, seed productSeed) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:        seed.name,
		Slug:        seed.name,
		Description: seed.description,
		Price:       decimal.NewFromInt(seed.price),
		CategoryID:  seed.category.ID,
		Quantity:    1,
		PhotoID:     seed.photoID,
		CreatedAt:   baseTime.Add(-seed.age),
	}
	if product.Description == "" {
		product.Description = "plain"
	}
	require.NoError(t, NewProductRepository(gormDB).Create(context.Background(), product))
	return product
}

func names(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func ids(products []model.Product) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
