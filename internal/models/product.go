package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ColorEntry is a named color variant of a product together with the stored
// filenames of its photos. Entries live inside their product's colors column
// and have no lifecycle of their own.
type ColorEntry struct {
	Name   string   `json:"name" validate:"required"`
	Photos []string `json:"photos"`
}

// ColorList is stored as a single JSON column so the product row keeps the
// document shape of the original record.
type ColorList []ColorEntry

func (c ColorList) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ColorList) Scan(value interface{}) error {
	if value == nil {
		*c = ColorList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into ColorList", value)
	}
}

// SizeList is the ordered list of size labels, stored as JSON.
type SizeList []string

func (s SizeList) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SizeList) Scan(value interface{}) error {
	if value == nil {
		*s = SizeList{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into SizeList", value)
	}
}

// Product represents a catalog product. SKU is unique across all products;
// the constraint is enforced by the store.
type Product struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Brand              string    `json:"brand" validate:"required"`
	Title              string    `json:"title" validate:"required"`
	Description        string    `json:"description" validate:"required"`
	SKU                string    `json:"sku" gorm:"uniqueIndex;type:varchar(100)" validate:"required"`
	Price              float64   `json:"price" validate:"required,gt=0"`
	DiscountPercentage float64   `json:"discountPercentage" validate:"gte=0,lte=100"`
	Stock              int       `json:"stock" validate:"gte=0"`
	Sizes              SizeList  `json:"sizes" gorm:"type:text" validate:"required,min=1"`
	Colors             ColorList `json:"colors" gorm:"type:text"`
	ViewCount          int       `json:"viewCount" validate:"gte=0"`
	CreatedAt          time.Time `json:"createdAt"`
	ModifiedAt         time.Time `json:"modifiedAt"`
}
