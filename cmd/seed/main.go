package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/db"
	apperrors "storefront/internal/errors"
	"storefront/internal/logging"
	"storefront/internal/model"
	"storefront/internal/repository"
)

//go:embed seed.json
var defaultSeed []byte

// SeedData is the catalog and admin account loaded into a fresh database.
type SeedData struct {
	Admin struct {
		Name     string        `json:"name"`
		Email    string        `json:"email"`
		Password string        `json:"password"`
		Phone    string        `json:"phone"`
		Address  model.Address `json:"address"`
		Answer   string        `json:"answer"`
	} `json:"admin"`
	Categories []string      `json:"categories"`
	Products   []SeedProduct `json:"products"`
}

// SeedProduct is a product row keyed by category name.
type SeedProduct struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	Shipping    bool            `json:"shipping"`
}

type seedCounts struct {
	created int
	updated int
}

func main() {
	file := flag.String("file", "", "seed JSON file (defaults to the bundled catalog)")
	flag.Parse()

	cfg := config.Load()
	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting seed")

	data, err := loadSeed(*file)
	if err != nil {
		logger.Fatal("load seed data", zap.Error(err))
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN(), false)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)

	if err := seedAdmin(ctx, userRepo, data); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}
	logger.Info("admin ready", zap.String("email", data.Admin.Email))

	categories, counts, err := seedCategories(ctx, categoryRepo, data.Categories)
	if err != nil {
		logger.Fatal("seed categories", zap.Error(err))
	}
	logger.Info("categories seeded", zap.Int("created", counts.created), zap.Int("existing", counts.updated))

	counts, err = seedProducts(ctx, productRepo, categories, data.Products)
	if err != nil {
		logger.Fatal("seed products", zap.Error(err))
	}
	logger.Info("products seeded", zap.Int("created", counts.created), zap.Int("updated", counts.updated))
}

func loadSeed(path string) (*SeedData, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed JSON: %w", err)
	}
	return &data, nil
}

// seedAdmin creates the admin account or promotes an existing one.
func seedAdmin(ctx context.Context, repo repository.UserRepository, data *SeedData) error {
	email := strings.ToLower(strings.TrimSpace(data.Admin.Email))
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	if existing != nil {
		if existing.IsAdmin() {
			return nil
		}
		existing.Role = model.RoleAdmin
		return repo.Update(ctx, existing)
	}

	passwordHash, err := auth.HashPassword(data.Admin.Password)
	if err != nil {
		return err
	}
	answerHash, err := auth.HashAnswer(data.Admin.Answer)
	if err != nil {
		return err
	}
	return repo.Create(ctx, &model.User{
		Name:         data.Admin.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        data.Admin.Phone,
		Address:      data.Admin.Address,
		AnswerHash:   answerHash,
		Role:         model.RoleAdmin,
	})
}

// seedCategories returns every named category keyed by name, creating missing ones.
func seedCategories(ctx context.Context, repo repository.CategoryRepository, names []string) (map[string]*model.Category, seedCounts, error) {
	var counts seedCounts
	out := make(map[string]*model.Category, len(names))
	for _, name := range names {
		existing, err := repo.FindByName(ctx, name)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, counts, fmt.Errorf("check category %s: %w", name, err)
		}
		if existing != nil {
			out[name] = existing
			counts.updated++
			continue
		}
		category := &model.Category{Name: name, Slug: slug.Make(name)}
		if err := repo.Create(ctx, category); err != nil {
			return nil, counts, fmt.Errorf("create category %s: %w", name, err)
		}
		out[name] = category
		counts.created++
	}
	return out, counts, nil
}

// seedProducts creates new products or refreshes existing ones matched by slug.
func seedProducts(ctx context.Context, repo repository.ProductRepository, categories map[string]*model.Category, products []SeedProduct) (seedCounts, error) {
	var counts seedCounts
	for _, item := range products {
		category, ok := categories[item.Category]
		if !ok {
			return counts, fmt.Errorf("product %s: unknown category %q", item.Name, item.Category)
		}

		existing, err := repo.FindBySlug(ctx, slug.Make(item.Name))
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return counts, fmt.Errorf("check product %s: %w", item.Name, err)
		}

		if existing != nil {
			existing.Description = item.Description
			existing.Price = item.Price
			existing.CategoryID = category.ID
			existing.Category = nil
			existing.Quantity = item.Quantity
			existing.Shipping = item.Shipping
			if err := repo.Update(ctx, existing); err != nil {
				return counts, fmt.Errorf("update product %s: %w", item.Name, err)
			}
			counts.updated++
			continue
		}

		product := &model.Product{
			Name:        item.Name,
			Slug:        slug.Make(item.Name),
			Description: item.Description,
			Price:       item.Price,
			CategoryID:  category.ID,
			Quantity:    item.Quantity,
			Shipping:    item.Shipping,
		}
		if err := repo.Create(ctx, product); err != nil {
			return counts, fmt.Errorf("create product %s: %w", item.Name, err)
		}
		counts.created++
	}
	return counts, nil
}
