// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ghanadude/backend/internal/config"
	"github.com/ghanadude/backend/internal/models"
	"github.com/ghanadude/backend/internal/utils"
)

type CatalogService struct {
	db      *gorm.DB
	config  *config.Config
	storage *StorageService
}

func NewCatalogService(db *gorm.DB, cfg *config.Config, storage *StorageService) *CatalogService {
	return &CatalogService{
		db:      db,
		config:  cfg,
		storage: storage,
	}
}

type CreateProductRequest struct {
	Name               string   `json:"name" validate:"required,max=255"`
	Description        string   `json:"description"`
	Price              float64  `json:"price" validate:"required,gt=0"`
	Percentage         float64  `json:"percentage" validate:"gte=0,lte=100"`
	CategoryID         uint     `json:"category_id" validate:"required"`
	BrandID            uint     `json:"brand_id" validate:"required"`
	Stock              int      `json:"stock" validate:"gte=0"`
	OnSale             bool     `json:"on_sale"`
	DiscountPercentage int      `json:"discount_percentage" validate:"gte=0,lte=100"`
	BulkSale           bool     `json:"bulk_sale"`
	Season             string   `json:"season" validate:"omitempty,oneof=summer winter all_seasons"`
	Sizes              []string `json:"sizes"`
}

// LowStockAlert is recorded during stock reservation and handed to the
// notifier only after the reserving transaction commits, so no email is
// sent while the stock row lock is held.
type LowStockAlert struct {
	ProductID   uint
	ProductName string
	Remaining   int
}

func (s *CatalogService) GetProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{}).
		Preload("Category").Preload("Brand").Preload("Images")

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}

	if params.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.name = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = utils.ApplySort(query, params, "created_at", "price", "name")
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *CatalogService) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Category").Preload("Brand").Preload("Images").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *CatalogService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	season := models.Season(req.Season)
	if season == "" {
		season = models.SeasonAllSeasons
	}

	product := &models.Product{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Percentage:         req.Percentage,
		CategoryID:         req.CategoryID,
		BrandID:            req.BrandID,
		Stock:              req.Stock,
		OnSale:             req.OnSale,
		DiscountPercentage: req.DiscountPercentage,
		BulkSale:           req.BulkSale,
		Season:             season,
		Sizes:              req.Sizes,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) AddProductImage(productID uint, file multipart.File, header *multipart.FileHeader) (*models.ProductImage, error) {
	if _, err := s.GetProduct(productID); err != nil {
		return nil, err
	}

	result, err := s.storage.UploadFile(file, header, s.storage.GetDefaultUploadOptions("products"))
	if err != nil {
		return nil, fmt.Errorf("failed to upload product image: %w", err)
	}

	image := &models.ProductImage{
		ProductID: productID,
		ImageKey:  result.Key,
	}
	if err := s.db.Create(image).Error; err != nil {
		return nil, fmt.Errorf("failed to save product image: %w", err)
	}

	return image, nil
}

// ReserveStock decrements a product's stock inside the caller's
// transaction. The row is locked FOR UPDATE so concurrent checkouts
// racing on the same product serialize and stock never goes negative.
// On failure it returns an InsufficientStockError that must abort the
// whole checkout, not just the line. If the reservation pushes stock
// below the low-stock threshold an alert is returned for the caller to
// dispatch after commit.
func (s *CatalogService) ReserveStock(tx *gorm.DB, productID uint, quantity int) (*models.Product, *LowStockAlert, error) {
	var product models.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrProductNotFound
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	if product.Stock < quantity {
		return nil, nil, &InsufficientStockError{
			ProductID:   product.ID,
			ProductName: product.Name,
			Requested:   quantity,
			Available:   product.Stock,
		}
	}

	if err := tx.Model(&product).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to update stock: %w", err)
	}
	product.Stock -= quantity

	var alert *LowStockAlert
	if product.Stock < s.config.Store.LowStockThreshold {
		alert = &LowStockAlert{
			ProductID:   product.ID,
			ProductName: product.Name,
			Remaining:   product.Stock,
		}
	}

	return &product, alert, nil
}
