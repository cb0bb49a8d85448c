package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/blob"
	"storefront/internal/cache"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

const (
	// DefaultMaxPhotoSize is the largest accepted photo in bytes.
	DefaultMaxPhotoSize int64 = 1000000
	// LatestProductsLimit is the size of the storefront landing list.
	LatestProductsLimit = 12
	// ProductsPerPage is the page size of the paginated product list.
	ProductsPerPage = 6
	// RelatedProductsLimit caps the "similar products" list.
	RelatedProductsLimit = 3

	productCachePrefix = "product:"
	productCacheTTL    = 5 * time.Minute
)

// PhotoUpload describes an uploaded photo. Open is only called once the rest
// of the form validated.
type PhotoUpload struct {
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// ProductInput carries the raw product form fields.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Category    string
	Quantity    string
	Shipping    string
	Photo       *PhotoUpload
}

// FilterInput is the storefront filter form: checked category ids and an
// optional [min, max] price range.
type FilterInput struct {
	Checked []string          `json:"checked"`
	Radio   []decimal.Decimal `json:"radio"`
}

// ProductService manages the catalog's products and their photos.
type ProductService interface {
	Create(ctx context.Context, in ProductInput) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Latest(ctx context.Context) ([]model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	Photo(ctx context.Context, id uuid.UUID) (*blob.Blob, error)
	Filter(ctx context.Context, in FilterInput) ([]model.Product, error)
	Count(ctx context.Context) (int64, error)
	Page(ctx context.Context, page int) ([]model.Product, error)
	Search(ctx context.Context, keyword string) ([]model.Product, error)
	Related(ctx context.Context, productID, categoryID uuid.UUID) ([]model.Product, error)
	ByCategory(ctx context.Context, categorySlug string) (*model.Category, []model.Product, error)
}

type productService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
	photos       blob.Store
	cache        *cache.Client
	logger       *zap.Logger
	maxPhotoSize int64
	// photoLocks holds one *sync.Mutex per photo id.
	photoLocks sync.Map
}

// NewProductService creates a new product service. A non-positive
// maxPhotoSize falls back to DefaultMaxPhotoSize.
func NewProductService(
	repo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	photos blob.Store,
	cache *cache.Client,
	logger *zap.Logger,
	maxPhotoSize int64,
) ProductService {
	if maxPhotoSize <= 0 {
		maxPhotoSize = DefaultMaxPhotoSize
	}
	return &productService{
		repo:         repo,
		categoryRepo: categoryRepo,
		photos:       photos,
		cache:        cache,
		logger:       logger,
		maxPhotoSize: maxPhotoSize,
	}
}

type productFields struct {
	name        string
	description string
	price       decimal.Decimal
	categoryID  uuid.UUID
	quantity    int
	shipping    bool
}

// validate checks the form in the order the storefront reports problems:
// name, description, price, category, quantity, then photo size.
func (s *productService) validate(in ProductInput) (*productFields, error) {
	f := &productFields{
		name:        strings.TrimSpace(in.Name),
		description: strings.TrimSpace(in.Description),
	}
	if f.name == "" {
		return nil, apperrors.Required("Name")
	}
	if f.description == "" {
		return nil, apperrors.Required("Description")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil || price.IsNegative() {
		return nil, apperrors.Required("Price")
	}
	f.price = price

	categoryID, err := uuid.Parse(strings.TrimSpace(in.Category))
	if err != nil {
		return nil, apperrors.Required("Category")
	}
	f.categoryID = categoryID

	quantity, err := strconv.Atoi(strings.TrimSpace(in.Quantity))
	if err != nil || quantity < 0 {
		return nil, apperrors.Required("Quantity")
	}
	f.quantity = quantity

	if in.Photo != nil && in.Photo.Size > s.maxPhotoSize {
		return nil, s.photoTooLarge()
	}

	f.shipping, _ = strconv.ParseBool(strings.TrimSpace(in.Shipping))
	return f, nil
}

func (s *productService) photoTooLarge() error {
	return apperrors.NewValidationError("photo",
		"photo is Required and should be less than 1mb", http.StatusInternalServerError)
}

// storePhoto reads the upload and stores it, returning the content address.
// The photo stays locked until the returned unlock is called, which the caller
// does once the product row referencing it is written.
func (s *productService) storePhoto(ctx context.Context, upload *PhotoUpload) (id, contentType string, unlock func(), err error) {
	rc, err := upload.Open()
	if err != nil {
		return "", "", nil, fmt.Errorf("open photo: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, s.maxPhotoSize+1))
	if err != nil {
		return "", "", nil, fmt.Errorf("read photo: %w", err)
	}
	if int64(len(data)) > s.maxPhotoSize {
		return "", "", nil, s.photoTooLarge()
	}

	contentType = upload.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	unlock = s.lockPhoto(blob.Key(data))
	id, err = s.photos.Put(ctx, data, contentType)
	if err != nil {
		unlock()
		return "", "", nil, fmt.Errorf("store photo: %w", err)
	}
	return id, contentType, unlock, nil
}

// lockPhoto serialises storing and releasing one blob. The lock is local to
// this process; instances sharing a blob store can still race a release
// against a create of identical bytes.
func (s *productService) lockPhoto(id string) func() {
	v, _ := s.photoLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// releasePhoto deletes a photo blob once no product references it.
func (s *productService) releasePhoto(ctx context.Context, photoID string) {
	if photoID == "" {
		return
	}
	unlock := s.lockPhoto(photoID)
	defer unlock()
	s.releasePhotoLocked(ctx, photoID)
}

// releasePhotoLocked is releasePhoto for a caller already holding the lock.
func (s *productService) releasePhotoLocked(ctx context.Context, photoID string) {
	refs, err := s.repo.CountByPhoto(ctx, photoID)
	if err != nil {
		s.logger.Warn("count photo references", zap.String("photo_id", photoID), zap.Error(err))
		return
	}
	if refs > 0 {
		return
	}
	if err := s.photos.Delete(ctx, photoID); err != nil {
		s.logger.Warn("delete photo", zap.String("photo_id", photoID), zap.Error(err))
	}
}

func (s *productService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	f, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:        f.name,
		Slug:        slug.Make(f.name),
		Description: f.description,
		Price:       f.price,
		CategoryID:  f.categoryID,
		Quantity:    f.quantity,
		Shipping:    f.shipping,
	}
	if in.Photo != nil {
		var unlock func()
		if product.PhotoID, product.PhotoContentType, unlock, err = s.storePhoto(ctx, in.Photo); err != nil {
			return nil, err
		}
		defer unlock()
	}

	if err := s.repo.Create(ctx, product); err != nil {
		if product.PhotoID != "" {
			s.releasePhotoLocked(ctx, product.PhotoID)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error) {
	f, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug, oldPhoto := product.Slug, product.PhotoID

	product.Name = f.name
	product.Slug = slug.Make(f.name)
	product.Description = f.description
	product.Price = f.price
	product.CategoryID = f.categoryID
	product.Quantity = f.quantity
	product.Shipping = f.shipping
	unlock := func() {}
	if in.Photo != nil {
		if product.PhotoID, product.PhotoContentType, unlock, err = s.storePhoto(ctx, in.Photo); err != nil {
			return nil, err
		}
	}

	err = s.repo.Update(ctx, product)
	if err != nil && product.PhotoID != oldPhoto {
		s.releasePhotoLocked(ctx, product.PhotoID)
	}
	unlock()
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	if product.PhotoID != oldPhoto {
		s.releasePhoto(ctx, oldPhoto)
	}
	_ = s.cache.Delete(ctx, productCachePrefix+oldSlug)
	_ = s.cache.Delete(ctx, productCachePrefix+product.Slug)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.releasePhoto(ctx, product.PhotoID)
	_ = s.cache.Delete(ctx, productCachePrefix+product.Slug)
	return nil
}

// Latest returns the newest products with their category.
func (s *productService) Latest(ctx context.Context) ([]model.Product, error) {
	return s.repo.Latest(ctx, LatestProductsLimit)
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	key := productCachePrefix + slug
	var cached model.Product
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, product, productCacheTTL)
	return product, nil
}

// Photo returns the stored photo of a product.
func (s *productService) Photo(ctx context.Context, id uuid.UUID) (*blob.Blob, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.HasPhoto() {
		return nil, apperrors.ErrPhotoNotFound
	}
	photo, err := s.photos.Get(ctx, product.PhotoID)
	if err != nil {
		if apperrors.Is(err, blob.ErrNotFound) {
			return nil, apperrors.ErrPhotoNotFound
		}
		return nil, fmt.Errorf("load photo: %w", err)
	}
	if product.PhotoContentType != "" {
		photo.ContentType = product.PhotoContentType
	}
	return photo, nil
}

// Filter matches any checked category and, when radio holds two bounds, an
// inclusive price range.
func (s *productService) Filter(ctx context.Context, in FilterInput) ([]model.Product, error) {
	var filter repository.ProductFilter
	for _, raw := range in.Checked {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", raw, apperrors.ErrInvalidID)
		}
		filter.CategoryIDs = append(filter.CategoryIDs, id)
	}
	if len(in.Radio) == 2 {
		lo, hi := in.Radio[0], in.Radio[1]
		filter.MinPrice, filter.MaxPrice = &lo, &hi
	}
	return s.repo.Filter(ctx, filter)
}

func (s *productService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *productService) Page(ctx context.Context, page int) ([]model.Product, error) {
	if page < 1 {
		page = 1
	}
	return s.repo.Page(ctx, page, ProductsPerPage)
}

func (s *productService) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []model.Product{}, nil
	}
	return s.repo.Search(ctx, keyword)
}

func (s *productService) Related(ctx context.Context, productID, categoryID uuid.UUID) ([]model.Product, error) {
	return s.repo.Related(ctx, productID, categoryID, RelatedProductsLimit)
}

func (s *productService) ByCategory(ctx context.Context, categorySlug string) (*model.Category, []model.Product, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.repo.ByCategory(ctx, category.ID)
	if err != nil {
		return nil, nil, err
	}
	return category, products, nil
}
