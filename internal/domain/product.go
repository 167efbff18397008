package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry. ImagePath is the web-relative path of the
// attached image, empty when the product has none.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	IsDigital   bool      `json:"isDigital"`
	ImagePath   string    `json:"image,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
