package entity

import (
	"errors"
	"sort"
	"time"
)

var (
	ErrCartItemNotFound = errors.New("item not found in cart")
	ErrCartQuantity     = errors.New("quantity must be positive")
	ErrCartProduct      = errors.New("product id is required")
)

// CartItem is one product line. SellerID is taken from the product when the
// line is first added so checkout can split the cart without a catalog lookup.
type CartItem struct {
	ProductID string    `json:"productId"`
	SellerID  string    `json:"sellerId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}, UpdatedAt: time.Now().UTC()}
}

func (c *Cart) indexOf(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity reports how many units of productID are in the cart.
func (c *Cart) Quantity(productID string) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// Add merges quantity into an existing line or appends a new one.
func (c *Cart) Add(productID, sellerID string, quantity int) error {
	if productID == "" {
		return ErrCartProduct
	}
	if quantity <= 0 {
		return ErrCartQuantity
	}
	now := time.Now().UTC()
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += quantity
		if c.Items[i].SellerID == "" {
			c.Items[i].SellerID = sellerID
		}
	} else {
		c.Items = append(c.Items, CartItem{ProductID: productID, SellerID: sellerID, Quantity: quantity, AddedAt: now})
	}
	c.UpdatedAt = now
	return nil
}

// SetQuantity replaces the quantity of a line; zero drops the line.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrCartItemNotFound
	}
	if quantity < 0 {
		return ErrCartQuantity
	}
	if quantity == 0 {
		c.drop(i)
	} else {
		c.Items[i].Quantity = quantity
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Cart) Remove(productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrCartItemNotFound
	}
	c.drop(i)
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Cart) drop(i int) {
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
}

// SellerIDs lists the sellers present in the cart in the order their first
// line was added.
func (c *Cart) SellerIDs() []string {
	seen := make(map[string]struct{}, len(c.Items))
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.ordered() {
		if _, ok := seen[item.SellerID]; ok {
			continue
		}
		seen[item.SellerID] = struct{}{}
		ids = append(ids, item.SellerID)
	}
	return ids
}

// ItemsFrom returns copies of the lines that belong to sellerID.
func (c *Cart) ItemsFrom(sellerID string) []CartItem {
	var out []CartItem
	for _, item := range c.Items {
		if item.SellerID == sellerID {
			out = append(out, item)
		}
	}
	return out
}

// DropSeller removes every line of sellerID and reports how many went.
func (c *Cart) DropSeller(sellerID string) int {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.SellerID != sellerID {
			kept = append(kept, item)
		}
	}
	removed := len(c.Items) - len(kept)
	c.Items = kept
	if removed > 0 {
		c.UpdatedAt = time.Now().UTC()
	}
	return removed
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) ordered() []CartItem {
	items := append([]CartItem(nil), c.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].AddedAt.Before(items[j].AddedAt) })
	return items
}

// CartLine is a cart item priced against the live catalog.
type CartLine struct {
	ProductID string  `json:"productId"`
	SellerID  string  `json:"sellerId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Stock     int     `json:"stock"`
	LineTotal float64 `json:"lineTotal"`
}

// CartSellerGroup is what a single checkout of sellerId would cost.
type CartSellerGroup struct {
	SellerID string  `json:"sellerId"`
	Items    int     `json:"items"`
	Subtotal float64 `json:"subtotal"`
}

type CartView struct {
	UserID    string            `json:"userId"`
	Items     []CartLine        `json:"items"`
	Sellers   []CartSellerGroup `json:"sellers"`
	Subtotal  float64           `json:"subtotal"`
	UpdatedAt time.Time         `json:"updatedAt"`
}
