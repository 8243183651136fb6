package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads a saved cart. A missing file is an empty cart. Lines are
// replayed through the reducer so duplicates merge and the total is rebuilt.
func Load(path string) (*Cart, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	var saved Cart
	if err := json.Unmarshal(b, &saved); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", path, err)
	}

	c := &Cart{}
	for _, item := range saved.Items {
		if item.Quantity > 0 {
			c.add(item.Product, item.Quantity)
		}
	}
	return c, nil
}

func Save(path string, c *Cart) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cart dir: %w", err)
	}

	if c.Items == nil {
		c.Items = []Item{}
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}
