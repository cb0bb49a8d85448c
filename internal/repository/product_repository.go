package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/model"
)

// ProductFilter narrows a product query. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryIDs []uuid.UUID
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
}

// IsEmpty reports whether the filter has no constraint.
func (f ProductFilter) IsEmpty() bool {
	return len(f.CategoryIDs) == 0 && f.MinPrice == nil && f.MaxPrice == nil
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	Latest(ctx context.Context, limit int) ([]model.Product, error)
	Filter(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
	Page(ctx context.Context, page, perPage int) ([]model.Product, error)
	Search(ctx context.Context, keyword string) ([]model.Product, error)
	Related(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]model.Product, error)
	ByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error)
	CountByPhoto(ctx context.Context, photoID string) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{}).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

// FindBySlug loads a product with its category.
func (r *productRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, notFound(err, "product")
	}
	return &product, nil
}

// Latest returns the newest products with their category.
func (r *productRepository) Latest(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Order("created_at DESC").Limit(limit).Find(&products).Error
	return products, err
}

// Filter matches category membership and an inclusive price range.
func (r *productRepository) Filter(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx)
	if len(filter.CategoryIDs) > 0 {
		q = q.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.MinPrice != nil {
		q = q.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("price <= ?", *filter.MaxPrice)
	}
	var products []model.Product
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error
	return total, err
}

// Page returns one page of products, newest first. Pages start at 1.
func (r *productRepository) Page(ctx context.Context, page, perPage int) ([]model.Product, error) {
	if page < 1 {
		page = 1
	}
	var products []model.Product
	err := r.db.WithContext(ctx).Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).Find(&products).Error
	return products, err
}

// Search matches keyword case-insensitively against name or description.
func (r *productRepository) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'", pattern, pattern).
		Find(&products).Error
	return products, err
}

// Related returns other products of the same category.
func (r *productRepository) Related(ctx context.Context, productID, categoryID uuid.UUID, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Where("category_id = ? AND id <> ?", categoryID, productID).
		Limit(limit).Find(&products).Error
	return products, err
}

func (r *productRepository) ByCategory(ctx context.Context, categoryID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Category").
		Where("category_id = ?", categoryID).Find(&products).Error
	return products, err
}

// CountByPhoto counts products referencing a photo blob.
func (r *productRepository) CountByPhoto(ctx context.Context, photoID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("photo_id = ?", photoID).Count(&total).Error
	return total, err
}

// likeEscaper uses '!' since backslash is not a portable LIKE escape.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
