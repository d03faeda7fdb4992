package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Prices maps an ISO 4217 currency code to an amount.
type Prices map[string]float64

// CREATE TABLE public.products (
//     id              BIGSERIAL PRIMARY KEY,
//     name            TEXT NOT NULL,
//     description     TEXT NOT NULL,
//     prices          JSONB NOT NULL,
//     stock_quantity  INTEGER NOT NULL DEFAULT 0,
//     created_at      TIMESTAMPTZ,
//     updated_at      TIMESTAMPTZ
// );

type Product struct {
	ID            uint                       `gorm:"primaryKey" json:"id"`
	Name          string                     `gorm:"column:name;type:text;not null" json:"name"`
	Description   string                     `gorm:"column:description;type:text;not null" json:"description"`
	Prices        datatypes.JSONType[Prices] `gorm:"column:prices;type:jsonb;not null" json:"prices"`
	StockQuantity int                        `gorm:"column:stock_quantity;not null" json:"stock_quantity"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

func NewPrices(p Prices) datatypes.JSONType[Prices] {
	return datatypes.NewJSONType(p)
}

// ProductFields is a partial update; nil fields are left untouched.
type ProductFields struct {
	Name          *string
	Description   *string
	Prices        Prices
	StockQuantity *int
}

// Apply merges the set fields into p and returns the changed columns.
func (f ProductFields) Apply(p *Product) []string {
	var columns []string

	if f.Name != nil {
		p.Name = *f.Name
		columns = append(columns, "name")
	}

	if f.Description != nil {
		p.Description = *f.Description
		columns = append(columns, "description")
	}

	if f.Prices != nil {
		p.Prices = NewPrices(f.Prices)
		columns = append(columns, "prices")
	}

	if f.StockQuantity != nil {
		p.StockQuantity = *f.StockQuantity
		columns = append(columns, "stock_quantity")
	}

	return columns
}
