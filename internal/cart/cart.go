// Package cart holds the shopper's basket between checkout attempts.
package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	"streamaccts/internal/model"
)

type Item struct {
	ProductID string        `json:"productId"`
	Quantity  int           `json:"quantity"`
	Product   model.Product `json:"product"`
}

type Cart struct {
	Items []Item  `json:"items"`
	Total float64 `json:"total"`
}

type StockError struct {
	Product   string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("Sorry, only %d items available in stock.", e.Available)
}

func (c *Cart) find(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add merges quantity into an existing line. It refuses to hold more units
// than the product has in stock.
func (c *Cart) Add(product model.Product, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}

	current := 0
	idx := c.find(product.ID)
	if idx >= 0 {
		current = c.Items[idx].Quantity
	}
	if current+quantity > product.StockCount {
		return &StockError{Product: product.Name, Available: product.StockCount}
	}

	c.add(product, quantity)
	return nil
}

func (c *Cart) add(product model.Product, quantity int) {
	if idx := c.find(product.ID); idx >= 0 {
		c.Items[idx].Quantity += quantity
	} else {
		c.Items = append(c.Items, Item{ProductID: product.ID, Quantity: quantity, Product: product})
	}
	c.recompute()
}

func (c *Cart) Remove(productID string) bool {
	idx := c.find(productID)
	if idx < 0 {
		return false
	}
	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.recompute()
	return true
}

// UpdateQuantity sets a line's quantity; zero or less drops the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	idx := c.find(productID)
	if quantity <= 0 {
		if idx >= 0 {
			c.Remove(productID)
		}
		return nil
	}
	if idx < 0 {
		return nil
	}

	product := c.Items[idx].Product
	if quantity > product.StockCount {
		return &StockError{Product: product.Name, Available: product.StockCount}
	}

	c.Items[idx].Quantity = quantity
	c.recompute()
	return nil
}

func (c *Cart) Clear() {
	c.Items = nil
	c.Total = 0
}

func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

func (c *Cart) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(decimal.NewFromFloat(item.Product.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (c *Cart) recompute() {
	c.Total = c.TotalAmount().InexactFloat64()
}

// OrderItems converts the cart into the line items an order is created with.
func (c *Cart) OrderItems() []model.OrderItem {
	items := make([]model.OrderItem, 0, len(c.Items))
	for _, item := range c.Items {
		unit := decimal.NewFromFloat(item.Product.Price)
		items = append(items, model.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price,
			TotalPrice:  unit.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2).InexactFloat64(),
		})
	}
	return items
}
