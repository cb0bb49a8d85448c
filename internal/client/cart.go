package client

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// Cart is the shopper's cart, mirrored to the "cart" storage key on every
// change.
type Cart struct {
	mu      sync.RWMutex
	items   []model.CartItem
	storage LocalStorage
}

// LoadCart hydrates the cart from storage.
func LoadCart(storage LocalStorage) (*Cart, error) {
	c := &Cart{storage: storage}
	raw, ok, err := storage.GetItem(CartKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(raw), &c.items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", CartKey, err)
	}
	return c, nil
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []model.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.CartItem(nil), c.items...)
}

// Len returns the number of lines.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Total sums the line prices.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Price)
	}
	return total
}

// Add appends a line. Adding the same product twice adds two lines.
func (c *Cart) Add(item model.CartItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replace(append(append([]model.CartItem(nil), c.items...), item))
}

// Remove drops the first line holding the product and reports whether one was found.
func (c *Cart) Remove(productID uuid.UUID) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.ID != productID {
			continue
		}
		next := append(append([]model.CartItem(nil), c.items[:i]...), c.items[i+1:]...)
		return true, c.replace(next)
	}
	return false, nil
}

// Clear empties the cart and drops the stored copy.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.storage.RemoveItem(CartKey); err != nil {
		return err
	}
	c.items = nil
	return nil
}

func (c *Cart) replace(items []model.CartItem) error {
	if items == nil {
		items = []model.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.storage.SetItem(CartKey, string(data)); err != nil {
		return err
	}
	c.items = items
	return nil
}
