package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/storage"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

type ImageUpload struct {
	Filename string
	Data     []byte
}

type CreateProductInput struct {
	Name            string
	Description     string
	Category        string
	Images          []string
	BasePrice       float64
	PriceDiscount   *float64
	SellingPrice    *float64
	Stock           int
	AllowBargaining bool
	MinBargainPrice *float64
}

// UpdateProductInput changes only the fields that are set.
type UpdateProductInput struct {
	Name            *string
	Description     *string
	Category        *string
	Images          []string
	BasePrice       *float64
	PriceDiscount   *float64
	SellingPrice    *float64
	Stock           *int
	AllowBargaining *bool
	MinBargainPrice *float64
	ClearMinBargain bool
}

type ProductService interface {
	Create(ctx context.Context, userID string, in CreateProductInput, uploads []ImageUpload) (*entity.Product, error)
	Update(ctx context.Context, userID, productID string, in UpdateProductInput, uploads []ImageUpload) (*entity.Product, error)
	Delete(ctx context.Context, userID, productID string) error
	// Get returns an active product, served from the cache when possible.
	Get(ctx context.Context, productID string) (*entity.Product, error)
	List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error)
	ListMine(ctx context.Context, userID string, params repository.ListProductsParams) (*repository.ListProductsResult, error)
}

type ProductServiceConfig struct {
	CacheTTL time.Duration
	MaxFiles int
}

type productService struct {
	products  repository.ProductRepository
	sellers   repository.SellerRepository
	cache     repository.ProductCache
	images    storage.ImageStore
	processor storage.Processor
	cfg       ProductServiceConfig
	log       logger.Logger
}

func NewProductService(
	products repository.ProductRepository,
	sellers repository.SellerRepository,
	cache repository.ProductCache,
	images storage.ImageStore,
	processor storage.Processor,
	cfg ProductServiceConfig,
	log logger.Logger,
) ProductService {
	return &productService{
		products:  products,
		sellers:   sellers,
		cache:     cache,
		images:    images,
		processor: processor,
		cfg:       cfg,
		log:       log.Named("ProductService"),
	}
}

func pricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidBasePrice):
		return apperror.Field("basePrice", err.Error())
	case errors.Is(err, pricing.ErrInvalidDiscount):
		return apperror.Field("priceDiscount", err.Error())
	case errors.Is(err, pricing.ErrSellingAboveBase), errors.Is(err, pricing.ErrInvalidSelling):
		return apperror.Field("sellingPrice", err.Error())
	default:
		return apperror.Validation(err.Error(), nil)
	}
}

func (s *productService) Create(ctx context.Context, userID string, in CreateProductInput, uploads []ImageUpload) (*entity.Product, error) {
	seller, err := approvedSeller(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	s.log.Infof("Seller %s creating product %q", seller.ID, in.Name)

	if in.Stock < 0 {
		return nil, apperror.Field("stock", "stock cannot be negative")
	}
	product := &entity.Product{
		SellerID:        seller.ID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Category:        strings.TrimSpace(in.Category),
		Images:          append([]string{}, in.Images...),
		Stock:           in.Stock,
		AllowBargaining: in.AllowBargaining,
		MinBargainPrice: in.MinBargainPrice,
		IsActive:        true,
	}
	if err := product.ApplyPricing(entity.PriceInput{BasePrice: in.BasePrice, PriceDiscount: in.PriceDiscount, SellingPrice: in.SellingPrice}); err != nil {
		return nil, pricingError(err)
	}
	if err := product.Validate(); err != nil {
		return nil, apperror.Validation(err.Error(), nil)
	}

	urls, err := s.storeImages(ctx, uploads)
	if err != nil {
		return nil, err
	}
	product.Images = append(product.Images, urls...)

	if _, err := s.products.Create(ctx, product); err != nil {
		s.log.Errorf("Failed to create product for seller %s: %v", seller.ID, err)
		return nil, storeError(err, "product")
	}
	s.log.Infof("Product %s created at %.2f", product.ID, product.SellingPrice)
	return product, nil
}

func (s *productService) Update(ctx context.Context, userID, productID string, in UpdateProductInput, uploads []ImageUpload) (*entity.Product, error) {
	product, err := s.ownedProduct(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.AllowBargaining != nil {
		product.AllowBargaining = *in.AllowBargaining
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, apperror.Field("stock", "stock cannot be negative")
		}
		product.Stock = *in.Stock
	}
	switch {
	case in.ClearMinBargain:
		product.MinBargainPrice = nil
	case in.MinBargainPrice != nil:
		product.MinBargainPrice = in.MinBargainPrice
	}
	if in.Images != nil {
		product.Images = append([]string{}, in.Images...)
	}

	if in.BasePrice != nil || in.PriceDiscount != nil || in.SellingPrice != nil {
		price := entity.PriceInput{BasePrice: product.BasePrice, PriceDiscount: in.PriceDiscount, SellingPrice: in.SellingPrice}
		if in.BasePrice != nil {
			price.BasePrice = *in.BasePrice
			// a new base keeps the discount unless a price was supplied
			if in.PriceDiscount == nil && in.SellingPrice == nil {
				d := product.PriceDiscount
				price.PriceDiscount = &d
			}
		}
		if err := product.ApplyPricing(price); err != nil {
			return nil, pricingError(err)
		}
	}
	if err := product.Validate(); err != nil {
		return nil, apperror.Validation(err.Error(), nil)
	}

	urls, err := s.storeImages(ctx, uploads)
	if err != nil {
		return nil, err
	}
	product.Images = append(product.Images, urls...)

	if err := s.products.Update(ctx, product); err != nil {
		return nil, storeError(err, "product")
	}
	s.invalidate(ctx, product.ID)
	s.log.Infof("Product %s updated", product.ID)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, userID, productID string) error {
	product, err := s.ownedProduct(ctx, userID, productID)
	if err != nil {
		return err
	}
	if err := s.products.SetActive(ctx, product.ID, false); err != nil {
		return storeError(err, "product")
	}
	s.invalidate(ctx, product.ID)
	s.log.Infof("Product %s deactivated", product.ID)
	return nil
}

func (s *productService) Get(ctx context.Context, productID string) (*entity.Product, error) {
	cached, err := s.cache.Get(ctx, productID)
	if err == nil && cached.IsActive {
		return cached, nil
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnf("Product cache read failed for %s: %v", productID, err)
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, storeError(err, "product")
	}
	if !product.IsActive {
		return nil, apperror.NotFound("product not found")
	}
	if err := s.cache.Set(ctx, product, s.cfg.CacheTTL); err != nil {
		s.log.Warnf("Failed to cache product %s: %v", productID, err)
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	params.IncludeInactive = false
	if err := checkProductSort(params.SortBy); err != nil {
		return nil, err
	}
	result, err := s.products.List(ctx, params)
	if err != nil {
		return nil, storeError(err, "products")
	}
	return result, nil
}

func (s *productService) ListMine(ctx context.Context, userID string, params repository.ListProductsParams) (*repository.ListProductsResult, error) {
	sellerID, err := sellerIDOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	if sellerID == "" {
		return nil, apperror.Forbidden("a seller profile is required")
	}
	if err := checkProductSort(params.SortBy); err != nil {
		return nil, err
	}
	params.SellerID = sellerID
	params.IncludeInactive = true
	result, err := s.products.List(ctx, params)
	if err != nil {
		return nil, storeError(err, "products")
	}
	return result, nil
}

func checkProductSort(sortBy string) error {
	switch sortBy {
	case "", "price", "created_at", "sales", "name":
		return nil
	}
	return apperror.Field("sort", "sort must be one of price, created_at, sales, name")
}

func (s *productService) ownedProduct(ctx context.Context, userID, productID string) (*entity.Product, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, storeError(err, "product")
	}
	sellerID, err := sellerIDOf(ctx, s.sellers, userID)
	if err != nil {
		return nil, err
	}
	if !product.IsOwnedBy(sellerID) {
		s.log.Warnf("User %s attempted to modify product %s of seller %s", userID, productID, product.SellerID)
		return nil, apperror.Forbidden("you do not own this product")
	}
	return product, nil
}

func (s *productService) storeImages(ctx context.Context, uploads []ImageUpload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	if s.cfg.MaxFiles > 0 && len(uploads) > s.cfg.MaxFiles {
		return nil, apperror.Field("images", fmt.Sprintf("at most %d images per request", s.cfg.MaxFiles))
	}
	urls := make([]string, 0, len(uploads))
	for _, up := range uploads {
		data, contentType, err := s.processor.Prepare(up.Data)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedType) || errors.Is(err, storage.ErrTooLarge) || errors.Is(err, storage.ErrEmptyFile) {
				return nil, apperror.Field("images", fmt.Sprintf("%s: %v", up.Filename, err))
			}
			return nil, apperror.Internal("failed to process image", err)
		}
		name := up.Filename
		if filepath.Ext(name) == "" {
			name += storage.ExtensionFor(contentType)
		}
		url, err := s.images.Save(ctx, name, data)
		if err != nil {
			s.log.Errorf("Failed to store image %s: %v", up.Filename, err)
			return nil, apperror.Internal("failed to store image", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *productService) invalidate(ctx context.Context, ids ...string) {
	if err := s.cache.Delete(ctx, ids...); err != nil {
		s.log.Warnf("Failed to invalidate cached products %v: %v", ids, err)
	}
}
