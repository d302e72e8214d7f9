package domain

import "time"

type Venue struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	City        string    `gorm:"index" json:"city"`
	Category    string    `gorm:"index" json:"category"` // restaurant|cafe|bar|activity
	Capacity    int       `json:"capacity"`
	PriceRange  string    `json:"price_range"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
