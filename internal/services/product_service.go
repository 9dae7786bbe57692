package services

import (
	"errors"
	"fmt"
	"strings"

	"bartab_backend/internal/cache"
	"bartab_backend/internal/models"
	"bartab_backend/internal/repositories"
	"bartab_backend/pkg/utils"
)

// --- Custom Service Errors for Product/Category ---
var (
	ErrCatalogProductNotFound = errors.New("catalog product not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrCategoryExists         = errors.New("category name already exists")
	ErrCategoryInUse          = errors.New("category cannot be deleted while products reference it")
)

// --- Product/Category DTOs ---

type CreateCategoryRequest struct {
	Name      string `json:"name" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	Name      *string `json:"name"`
	SortOrder *int    `json:"sort_order"`
}

type CreateProductRequest struct {
	Name       string `json:"name" binding:"required"`
	CategoryID *int64 `json:"category_id"`
	Price      int64  `json:"price" binding:"min=0"` // minor-currency units
	Stock      int    `json:"stock" binding:"min=0"`
}

type UpdateProductRequest struct {
	Name       *string `json:"name"`
	CategoryID *int64  `json:"category_id"`
	Price      *int64  `json:"price"`
	Stock      *int    `json:"stock"`
	Active     *bool   `json:"active"`
}

// --- ProductService Interface ---
type ProductService interface {
	CreateCategory(req CreateCategoryRequest) (*models.Category, error)
	GetCategories() ([]models.Category, error)
	UpdateCategory(categoryID int64, req UpdateCategoryRequest) (*models.Category, error)
	DeleteCategory(categoryID int64) error

	CreateProduct(req CreateProductRequest) (*models.Product, error)
	GetProductByID(productID int64) (*models.Product, error)
	GetProducts(filters models.ProductFilters) ([]models.Product, int, error)
	GetPopularProducts(limit int) ([]models.Product, error)
	UpdateProduct(productID int64, req UpdateProductRequest) (*models.Product, error)
	DeactivateProduct(productID int64) error
}

// --- productService Implementation ---
type productService struct {
	productRepo repositories.ProductRepository
	ranking     *cache.RankingCache
	db          repositories.DB
}

// NewProductService creates a new instance of ProductService.
func NewProductService(pr repositories.ProductRepository, ranking *cache.RankingCache, db repositories.DB) ProductService {
	return &productService{productRepo: pr, ranking: ranking, db: db}
}

// --- Category Methods ---

func (s *productService) CreateCategory(req CreateCategoryRequest) (*models.Category, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: category name cannot be empty", ErrValidation)
	}
	category := models.Category{Name: strings.TrimSpace(req.Name), SortOrder: req.SortOrder}
	if _, err := s.productRepo.CreateCategory(s.db, &category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

func (s *productService) GetCategories() ([]models.Category, error) {
	categories, err := s.productRepo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *productService) UpdateCategory(categoryID int64, req UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.productRepo.GetCategoryByID(categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to fetch category %d: %w", categoryID, err)
	}

	if req.Name != nil {
		if utils.IsEmpty(*req.Name) {
			return nil, fmt.Errorf("%w: category name cannot be empty", ErrValidation)
		}
		category.Name = strings.TrimSpace(*req.Name)
	}
	if req.SortOrder != nil {
		category.SortOrder = *req.SortOrder
	}

	if err := s.productRepo.UpdateCategory(s.db, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCategoryExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

func (s *productService) DeleteCategory(categoryID int64) error {
	if err := s.productRepo.DeleteCategory(s.db, categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCategoryNotFound
		}
		if errors.Is(err, repositories.ErrForeignKeyViolation) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// --- Product Methods ---

func (s *productService) CreateProduct(req CreateProductRequest) (*models.Product, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
	}
	if req.CategoryID != nil {
		if _, err := s.productRepo.GetCategoryByID(*req.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to fetch category %d: %w", *req.CategoryID, err)
		}
	}

	product := models.Product{
		Name:       strings.TrimSpace(req.Name),
		CategoryID: req.CategoryID,
		Price:      req.Price,
		Stock:      req.Stock,
		Active:     true,
	}
	if _, err := s.productRepo.CreateProduct(s.db, &product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	// New products start at score zero; seed the ranking so they appear.
	s.ranking.SetScore(product.ID, 0)
	return &product, nil
}

func (s *productService) GetProductByID(productID int64) (*models.Product, error) {
	product, err := s.productRepo.GetProductByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCatalogProductNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID: %w", err)
	}
	return product, nil
}

func (s *productService) GetProducts(filters models.ProductFilters) ([]models.Product, int, error) {
	products, totalCount, err := s.productRepo.GetProducts(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get products: %w", err)
	}
	return products, totalCount, nil
}

// GetPopularProducts serves the ranking from the Redis sorted set when it is
// available and falls back to ordering by the persisted popularity score.
func (s *productService) GetPopularProducts(limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 10
	}

	if ids, ok := s.ranking.TopProducts(limit); ok {
		products := make([]models.Product, 0, len(ids))
		for _, id := range ids {
			product, err := s.productRepo.GetProductByID(id)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					// Stale cache entry; skip it, the sweep will clean up.
					continue
				}
				return nil, fmt.Errorf("failed to resolve ranked product %d: %w", id, err)
			}
			if product.Active {
				products = append(products, *product)
			}
		}
		if len(products) > 0 {
			return products, nil
		}
	}

	products, err := s.productRepo.GetPopularProducts(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get popular products: %w", err)
	}
	return products, nil
}

func (s *productService) UpdateProduct(productID int64, req UpdateProductRequest) (*models.Product, error) {
	product, err := s.GetProductByID(productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if utils.IsEmpty(*req.Name) {
			return nil, fmt.Errorf("%w: product name cannot be empty", ErrValidation)
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.CategoryID != nil {
		if _, catErr := s.productRepo.GetCategoryByID(*req.CategoryID); catErr != nil {
			if errors.Is(catErr, repositories.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to fetch category %d: %w", *req.CategoryID, catErr)
		}
		product.CategoryID = req.CategoryID
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock must not be negative", ErrValidation)
		}
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	if err := s.productRepo.UpdateProduct(s.db, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCatalogProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if req.Active != nil && !*req.Active {
		s.ranking.Remove(productID)
	}
	return s.GetProductByID(productID)
}

func (s *productService) DeactivateProduct(productID int64) error {
	if err := s.productRepo.DeactivateProduct(s.db, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrCatalogProductNotFound
		}
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	s.ranking.Remove(productID)
	return nil
}
