// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package listing is the marketplace aggregate: a seller's offer of one product,
its lifecycle status and its tags.

A listing references its product by (listing_type, product_id) without a
foreign key, so the product may be gone while the listing remains. Reads that
embed the product report it as null in that case.
*/
package listing

import (
	"time"

	"github.com/taibuivan/yarnswap/internal/core/product"
)

// # Domain Enums

// Status is the lifecycle state of a listing. Any state may follow any other.
type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusArchived  Status = "archived"
)

// Field names used in validation errors.
const (
	FieldSellerID    = "seller_id"
	FieldListingType = "listing_type"
	FieldProductID   = "product_id"
	FieldStatus      = "status"
	FieldTagID       = "tag_id"
	FieldQuery       = "q"
)

// # Core Entities

// Listing is a seller's offer of one product.
type Listing struct {
	ID          int          `json:"id"`
	SellerID    int          `json:"seller_id"`
	ListingType product.Kind `json:"listing_type"`
	ProductID   int          `json:"product_id"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
}

// WithProduct is a listing with its resolved product, or a null product when
// the reference dangles.
type WithProduct struct {
	Listing
	Product product.Product `json:"product"`
}

// Draft carries the input for creating a listing.
type Draft struct {
	SellerID    int      `json:"seller_id"`
	ListingType string   `json:"listing_type"`
	ProductID   int      `json:"product_id"`
	Tags        []string `json:"tags"`
}

// Filter narrows yarn listings. Nil criteria are ignored.
type Filter struct {
	PriceMin *float64
	PriceMax *float64
	Quality  *string
	// Location matches the seller's location as a case-insensitive substring.
	Location *string
}

// TypeShare is the number and share of listings of one type.
type TypeShare struct {
	ListingType product.Kind `json:"listing_type"`
	Count       int          `json:"type_count"`
	Total       int          `json:"total_count"`
	Percentage  float64      `json:"type_percent"`
}
