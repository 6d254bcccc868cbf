package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/apperror"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/domain/pricing"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/repository"
)

// CheckoutInput places one order. SellerID picks which seller's lines to buy
// and may be empty only when the cart holds a single seller.
type CheckoutInput struct {
	SellerID      string
	PaymentMethod string
	Delivery      entity.DeliveryInfo
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (*entity.CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*entity.CartView, error)
	RemoveItem(ctx context.Context, userID, productID string) (*entity.CartView, error)
	ClearCart(ctx context.Context, userID string) error
	Checkout(ctx context.Context, userID string, in CheckoutInput) (*entity.Order, error)
}

type CartServiceConfig struct {
	CartTTL time.Duration
}

type cartService struct {
	cartRepo repository.CartRepository
	products ProductService
	orders   OrderService
	log      logger.Logger
	cfg      CartServiceConfig
}

func NewCartService(
	cartRepo repository.CartRepository,
	products ProductService,
	orders OrderService,
	log logger.Logger,
	cfg CartServiceConfig,
) CartService {
	return &cartService{
		cartRepo: cartRepo,
		products: products,
		orders:   orders,
		log:      log.Named("CartService"),
		cfg:      cfg,
	}
}

func (s *cartService) load(ctx context.Context, userID string) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Failed to get cart for user %s: %v", userID, err)
		return nil, apperror.Internal("failed to retrieve cart", err)
	}
	return cart, nil
}

func (s *cartService) save(ctx context.Context, cart *entity.Cart) error {
	if err := s.cartRepo.Save(ctx, cart, s.cfg.CartTTL); err != nil {
		s.log.Errorf("Failed to save cart for user %s: %v", cart.UserID, err)
		return apperror.Internal("failed to save cart", err)
	}
	return nil
}

// view prices the cart against the live catalog. Lines whose product is gone
// or inactive are left out.
func (s *cartService) view(ctx context.Context, cart *entity.Cart) (*entity.CartView, error) {
	view := &entity.CartView{UserID: cart.UserID, Items: make([]entity.CartLine, 0, len(cart.Items)), UpdatedAt: cart.UpdatedAt}
	perSeller := make(map[string][]pricing.Line)
	var all []pricing.Line
	for _, item := range cart.Items {
		product, err := s.products.Get(ctx, item.ProductID)
		if err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				s.log.Debugf("Skipping unavailable product %s in cart of %s", item.ProductID, cart.UserID)
				continue
			}
			return nil, err
		}
		line := entity.CartLine{
			ProductID: product.ID,
			SellerID:  product.SellerID,
			Name:      product.Name,
			Price:     product.SellingPrice,
			Quantity:  item.Quantity,
			Stock:     product.Stock,
			LineTotal: pricing.LineTotal(product.SellingPrice, item.Quantity),
		}
		if len(product.Images) > 0 {
			line.Image = product.Images[0]
		}
		view.Items = append(view.Items, line)
		priced := pricing.Line{UnitPrice: product.SellingPrice, Quantity: item.Quantity}
		all = append(all, priced)
		perSeller[product.SellerID] = append(perSeller[product.SellerID], priced)
	}
	view.Subtotal = pricing.Subtotal(all)
	view.Sellers = make([]entity.CartSellerGroup, 0, len(perSeller))
	for _, sellerID := range cart.SellerIDs() {
		lines, ok := perSeller[sellerID]
		if !ok {
			continue
		}
		view.Sellers = append(view.Sellers, entity.CartSellerGroup{SellerID: sellerID, Items: len(lines), Subtotal: pricing.Subtotal(lines)})
	}
	return view, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*entity.CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*entity.CartView, error) {
	s.log.Infof("Adding %d of product %s to cart of user %s", quantity, productID, userID)
	if quantity < 1 {
		return nil, apperror.Field("quantity", "quantity must be at least 1")
	}
	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !product.HasStock(cart.Quantity(productID) + quantity) {
		return nil, apperror.Conflict(fmt.Sprintf("only %d units of %s are in stock", product.Stock, product.Name))
	}
	if err := cart.Add(productID, product.SellerID, quantity); err != nil {
		return nil, apperror.Validation(err.Error(), nil)
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*entity.CartView, error) {
	if quantity < 0 {
		return nil, apperror.Field("quantity", "quantity cannot be negative")
	}
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if quantity > 0 {
		product, err := s.products.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		if !product.HasStock(quantity) {
			return nil, apperror.Conflict(fmt.Sprintf("only %d units of %s are in stock", product.Stock, product.Name))
		}
	}
	if err := cart.SetQuantity(productID, quantity); err != nil {
		if errors.Is(err, entity.ErrCartItemNotFound) {
			return nil, apperror.NotFound("item not found in cart")
		}
		return nil, apperror.Validation(err.Error(), nil)
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string) (*entity.CartView, error) {
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cart.Remove(productID); err != nil {
		return nil, apperror.NotFound("item not found in cart")
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return s.view(ctx, cart)
}

func (s *cartService) ClearCart(ctx context.Context, userID string) error {
	if err := s.cartRepo.DeleteByUserID(ctx, userID); err != nil {
		s.log.Errorf("Failed to clear cart for user %s: %v", userID, err)
		return apperror.Internal("failed to clear cart", err)
	}
	return nil
}

func (s *cartService) Checkout(ctx context.Context, userID string, in CheckoutInput) (*entity.Order, error) {
	s.log.Infof("Checking out cart of user %s (seller %q)", userID, in.SellerID)
	cart, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperror.Validation("cart is empty", nil)
	}

	sellerID := in.SellerID
	if sellerID == "" {
		sellers := cart.SellerIDs()
		if len(sellers) > 1 {
			return nil, apperror.Field("sellerId", "cart holds items from several sellers, choose one to check out")
		}
		sellerID = sellers[0]
	}
	lines := cart.ItemsFrom(sellerID)
	if len(lines) == 0 {
		return nil, apperror.Field("sellerId", "no items from this seller in the cart")
	}

	items := make([]OrderItemInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItemInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	order, err := s.orders.Create(ctx, userID, CreateOrderInput{
		Items:         items,
		PaymentMethod: in.PaymentMethod,
		Delivery:      in.Delivery,
	})
	if err != nil {
		return nil, err
	}

	// The order stands even if the cart cannot be trimmed.
	cart.DropSeller(sellerID)
	if cart.IsEmpty() {
		err = s.cartRepo.DeleteByUserID(ctx, userID)
	} else {
		err = s.cartRepo.Save(ctx, cart, s.cfg.CartTTL)
	}
	if err != nil {
		s.log.Warnf("Failed to trim cart of user %s after order %s: %v", userID, order.ID, err)
	}
	return order, nil
}
