package service

import (
	"time"

	"streamaccts/internal/model"
)

func SampleProducts(now time.Time) []*model.Product {
	p := func(id, name, description string, price float64, stock int, category, image string) *model.Product {
		return &model.Product{
			ID:          id,
			Name:        name,
			Description: description,
			Price:       price,
			StockCount:  stock,
			Category:    category,
			ImageURL:    image,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	return []*model.Product{
		p("netflix-premium", "Netflix Premium Account",
			"Netflix Premium subscription with 4K streaming and up to 4 devices. Valid for 1 month.",
			15.99, 10, "Streaming", "https://images.unsplash.com/photo-1611162617474-5b21e879e113?w=400&h=300&fit=crop"),
		p("spotify-premium", "Spotify Premium Account",
			"Spotify Premium with ad-free music streaming and offline downloads. Valid for 1 month.",
			9.99, 15, "Music", "https://images.unsplash.com/photo-1611339555312-e607c8352fd7?w=400&h=300&fit=crop"),
		p("disney-plus-premium", "Disney+ Premium Account",
			"Disney+ Premium with access to Disney, Marvel, Star Wars, and National Geographic content. Valid for 1 month.",
			12.99, 8, "Streaming", "https://images.unsplash.com/photo-1626814026160-2237a95fc5a0?w=400&h=300&fit=crop"),
		p("youtube-premium", "YouTube Premium Account",
			"YouTube Premium with ad-free videos, YouTube Music, and offline downloads. Valid for 1 month.",
			11.99, 12, "Streaming", "https://images.unsplash.com/photo-1611162616305-c69b3fa7fbe0?w=400&h=300&fit=crop"),
		p("amazon-prime-video", "Amazon Prime Video Account",
			"Amazon Prime Video with access to thousands of movies and TV shows. Valid for 1 month.",
			8.99, 6, "Streaming", "https://images.unsplash.com/photo-1560472354-b33ff0c44a43?w=400&h=300&fit=crop"),
		p("apple-music", "Apple Music Account",
			"Apple Music with access to over 100 million songs and exclusive content. Valid for 1 month.",
			10.99, 9, "Music", "https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=400&h=300&fit=crop"),
	}
}
