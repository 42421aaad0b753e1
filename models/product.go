package models

import "time"

type Product struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url"`
	CatalogID   int       `json:"catalog_id"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Catalog struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CatalogRequest struct {
	Name string `json:"name" binding:"required"`
}
