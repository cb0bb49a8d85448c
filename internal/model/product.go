package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Storefront clients treat prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is a catalog entry. The photo itself lives in the blob store; the
// product only keeps its content address.
type Product struct {
	ID               uuid.UUID       `json:"_id" gorm:"type:char(36);primaryKey"`
	Name             string          `json:"name" gorm:"size:255;not null;index"`
	Slug             string          `json:"slug" gorm:"size:255;not null;index"`
	Description      string          `json:"description" gorm:"type:text;not null"`
	Price            decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;index"`
	CategoryID       uuid.UUID       `json:"-" gorm:"type:char(36);not null;index"`
	Quantity         int             `json:"quantity" gorm:"not null"`
	PhotoID          string          `json:"-" gorm:"size:64;index"`
	PhotoContentType string          `json:"-" gorm:"size:100"`
	Shipping         bool            `json:"shipping" gorm:"default:false"`
	CreatedAt        time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt        time.Time       `json:"updatedAt"`

	// Relations
	Category *Category `json:"-" gorm:"foreignKey:CategoryID"`
}

// HasPhoto reports whether a photo reference is attached.
func (p *Product) HasPhoto() bool {
	return p.PhotoID != ""
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// MarshalJSON renders category as the populated object when loaded and as the
// bare id otherwise.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	var category interface{} = p.CategoryID
	if p.Category != nil {
		category = p.Category
	}
	return json.Marshal(struct {
		alias
		Category interface{} `json:"category"`
	}{alias: alias(p), Category: category})
}
