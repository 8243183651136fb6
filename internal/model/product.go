package model

import "time"

type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;size:64;not null" firestore:"-"`
	Name        string    `json:"name" gorm:"size:255;not null" firestore:"name"`
	Description string    `json:"description" gorm:"type:text" firestore:"description"`
	Price       float64   `json:"price" gorm:"not null" firestore:"price"`
	StockCount  int       `json:"stockCount" gorm:"not null;default:0" firestore:"stockCount"`
	Category    string    `json:"category" gorm:"size:64;index" firestore:"category"`
	ImageURL    string    `json:"imageUrl,omitempty" gorm:"size:1024" firestore:"imageUrl"`
	IsActive    bool      `json:"isActive" gorm:"index;not null" firestore:"isActive"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// StockDecrement is one line of stock to take off a product when an order is
// written. Products that no longer exist are skipped.
type StockDecrement struct {
	ProductID string
	Quantity  int
}

// MergeDecrements folds lines for the same product into one decrement,
// keeping the order in which products first appear.
func MergeDecrements(decrements []StockDecrement) []StockDecrement {
	merged := make([]StockDecrement, 0, len(decrements))
	index := make(map[string]int, len(decrements))
	for _, d := range decrements {
		if i, ok := index[d.ProductID]; ok {
			merged[i].Quantity += d.Quantity
			continue
		}
		index[d.ProductID] = len(merged)
		merged = append(merged, d)
	}
	return merged
}
