package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"storefront/internal/cache"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const (
	categoriesCacheKey = "categories:all"
	categoryCacheTTL   = 10 * time.Minute
)

// CategoryService manages the catalog's categories.
type CategoryService interface {
	// Create returns the existing category together with ErrCategoryExists
	// when the name is taken.
	Create(ctx context.Context, name string) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	cache  *cache.Client
	logger *zap.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, cache *cache.Client, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, cache: cache, logger: logger}
}

func requireCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.NewValidationError("name", "Name is required", http.StatusUnauthorized)
	}
	return name, nil
}

func (s *categoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	name, err := requireCategoryName(name)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return existing, apperrors.ErrCategoryExists
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check category: %w", err)
	}

	category := &model.Category{Name: name, Slug: slug.Make(name)}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, name string) (*model.Category, error) {
	name, err := requireCategoryName(name)
	if err != nil {
		return nil, err
	}

	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	category.Slug = slug.Make(name)
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	s.invalidate(ctx)
	return category, nil
}

// List returns all categories ordered by name.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	var cached []model.Category
	if s.cache.GetJSON(ctx, categoriesCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, categoriesCacheKey, categories, categoryCacheTTL)
	return categories, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// invalidate drops the category list and every cached product, since cached
// products embed their category.
func (s *categoryService) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, categoriesCacheKey); err != nil {
		s.logger.Warn("invalidate categories", zap.Error(err))
	}
	_ = s.cache.DeletePrefix(ctx, productCachePrefix)
}
