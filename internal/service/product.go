package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/metrics"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
	"github.com/mimos-de-madera/backoffice-service/internal/pricing"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
)

// ProductService handles catalogue business logic, including derived pricing.
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	productCache repository.ProductCache
	config       *config.Config
	logger       *logging.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	productCache repository.ProductCache,
	cfg *config.Config,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		productCache: productCache,
		config:       cfg,
		logger:       logging.NewLogger("product-service"),
	}
}

// PriceQuote is the pricing breakdown returned alongside a derived price.
type PriceQuote struct {
	BasePrice    money.Money `json:"base_price"`
	TaxInclusive money.Money `json:"tax_inclusive"`
	Rounded      bool        `json:"rounded"`
}

// CreateProduct creates a product. When costing inputs are present and no
// explicit price was given, the price is derived from them.
func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if err := ValidateCreateProductRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:             uuid.New().String(),
		Name:           req.Name,
		Description:    req.Description,
		CategoryID:     req.CategoryID,
		Price:          req.Price,
		Stock:          req.Stock,
		Active:         true,
		ProductionCost: req.ProductionCost,
		ProfitMargin:   req.ProfitMargin,
		ShippingCost:   req.ShippingCost,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if product.Price.IsZero() && product.ProductionCost != nil {
		quote := s.derivePrice(product)
		product.Price = quote.BasePrice
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to create product", logging.Fields{
			"name":  product.Name,
			"error": err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Product created", logging.Fields{
		"product_id": product.ID,
		"name":       product.Name,
		"price":      product.Price.String(),
	})
	return product, nil
}

// GetProduct retrieves a product by ID, cache first.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if s.config.Features.EnableCaching {
		if product, err := s.productCache.Get(ctx, id); err == nil && product != nil {
			return product, nil
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableCaching {
		if err := s.productCache.Set(ctx, product); err != nil {
			s.logger.Warn("Failed to cache product", logging.Fields{
				"product_id": id,
				"error":      err.Error(),
			})
		}
	}
	return product, nil
}

// ListProducts retrieves products with pagination.
func (s *ProductService) ListProducts(ctx context.Context, skip, limit int) ([]*models.Product, int, error) {
	skip, limit = clampPagination(skip, limit)
	return s.productRepo.List(ctx, skip, limit)
}

// UpdateProduct applies field updates. Changing any costing input while the
// price was derived re-derives the price.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	if err := ValidateUpdateProductRequest(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	costingChanged := false
	if req.ProductionCost != nil {
		product.ProductionCost = req.ProductionCost
		costingChanged = true
	}
	if req.ShippingCost != nil {
		product.ShippingCost = req.ShippingCost
		costingChanged = true
	}
	if req.ProfitMargin != nil {
		product.ProfitMargin = req.ProfitMargin
		costingChanged = true
	}

	switch {
	case req.Price != nil:
		product.Price = *req.Price
	case costingChanged && product.ProductionCost != nil:
		quote := s.derivePrice(product)
		product.Price = quote.BasePrice
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	return product, nil
}

// DeleteProduct removes a product from the catalogue.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	return nil
}

// ToggleProductStatus flips a product between active and inactive.
func (s *ProductService) ToggleProductStatus(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.productRepo.ToggleStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, id)
	return product, nil
}

// QuotePrice computes the recommended price for the given costing inputs
// without touching any product.
func (s *ProductService) QuotePrice(ctx context.Context, productionCost, shippingCost money.Money, marginPercent float64) (*PriceQuote, error) {
	if marginPercent == 0 {
		marginPercent = pricing.DefaultProfitMargin
	}

	quote, err := pricing.RecommendedPrice(productionCost, shippingCost, marginPercent)
	if err != nil {
		return nil, err
	}

	metrics.PricingIterations.Observe(float64(quote.Iterations))
	return &PriceQuote{
		BasePrice:    quote.BasePrice,
		TaxInclusive: quote.TaxInclusive,
		Rounded:      true,
	}, nil
}

// derivePrice computes the product's recommended base price from its costing
// inputs. When rounding cannot settle, the unrounded price is used so a save
// never fails over a display nicety.
func (s *ProductService) derivePrice(product *models.Product) PriceQuote {
	shipping := money.Zero
	if product.ShippingCost != nil {
		shipping = *product.ShippingCost
	}
	margin := pricing.DefaultProfitMargin
	if product.ProfitMargin != nil {
		margin = *product.ProfitMargin
	}

	quote, err := pricing.RecommendedPrice(*product.ProductionCost, shipping, margin)
	if err != nil {
		cost := product.ProductionCost.Add(shipping)
		base := cost.MulFactor(marginFactor(margin))
		s.logger.Warn("Price rounding did not settle, using unrounded price", logging.Fields{
			"product_id": product.ID,
			"base_price": base.String(),
			"error":      err.Error(),
		})
		return PriceQuote{
			BasePrice:    base,
			TaxInclusive: pricing.TaxInclusive(base, pricing.DefaultTaxRate),
			Rounded:      false,
		}
	}

	metrics.PricingIterations.Observe(float64(quote.Iterations))
	return PriceQuote{
		BasePrice:    quote.BasePrice,
		TaxInclusive: quote.TaxInclusive,
		Rounded:      true,
	}
}

func (s *ProductService) invalidateCache(ctx context.Context, id string) {
	if !s.config.Features.EnableCaching {
		return
	}
	if err := s.productCache.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate product cache", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
	}
}

// CreateCategory creates a category.
func (s *ProductService) CreateCategory(ctx context.Context, req *models.CategoryRequest) (*models.Category, error) {
	if err := ValidateCategoryRequest(req); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories retrieves all categories.
func (s *ProductService) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.List(ctx)
}

// UpdateCategory updates a category's name and description.
func (s *ProductService) UpdateCategory(ctx context.Context, id string, req *models.CategoryRequest) (*models.Category, error) {
	if err := ValidateCategoryRequest(req); err != nil {
		return nil, err
	}

	category := &models.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory removes a category.
func (s *ProductService) DeleteCategory(ctx context.Context, id string) error {
	return s.categoryRepo.Delete(ctx, id)
}

// ToggleCategoryStatus flips a category between active and inactive.
func (s *ProductService) ToggleCategoryStatus(ctx context.Context, id string) (*models.Category, error) {
	return s.categoryRepo.ToggleStatus(ctx, id)
}
