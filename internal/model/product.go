package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents an item in the catalogue.
type Product struct {
	ID         string          `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Category   string          `json:"category" db:"category"`
	StockCount int             `json:"stockCount" db:"stock_count"`
	InStock    bool            `json:"inStock" db:"in_stock"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
}

// Available reports whether the product can cover the given quantity.
func (p Product) Available(quantity int) bool {
	return p.InStock && p.StockCount >= quantity
}

// ProductSort names a catalogue ordering.
type ProductSort string

const (
	SortByName      ProductSort = "name"
	SortByPriceLow  ProductSort = "price-low"
	SortByPriceHigh ProductSort = "price-high"
	SortByNewest    ProductSort = "newest"
)

// Valid reports whether s is a known ordering. The empty value means SortByName.
func (s ProductSort) Valid() bool {
	switch s {
	case "", SortByName, SortByPriceLow, SortByPriceHigh, SortByNewest:
		return true
	}
	return false
}

// ProductFilter narrows a catalogue listing.
type ProductFilter struct {
	Category    string
	Search      string
	InStockOnly bool
	Sort        ProductSort
	Limit       int
	Offset      int
}

// ProductPage is one page of a filtered listing. Total counts every match.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// CategorySummary counts the products filed under one category.
type CategorySummary struct {
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
	InStockCount int    `json:"inStockCount"`
}
