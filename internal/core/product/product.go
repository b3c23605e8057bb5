// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package product defines the sellable goods behind a marketplace listing.

A listing references its product through a (kind, product id) pair. Each kind
lives in its own table with its own record shape:

  - Yarn: skeins with fibre, weight and needle/hook guidance.
  - Notion: tools and accessories (stitch markers, needles, buttons).
  - FinishedObject: completed knitted or crocheted items.

All variants share ownership, description and pricing, exposed through the
[Product] interface. The package resolves a pair to its concrete record with a
fixed kind-to-table dispatch.
*/
package product

import (
	"fmt"
	"net/http"
	"time"

	"github.com/taibuivan/yarnswap/internal/platform/apperr"
	"github.com/taibuivan/yarnswap/pkg/pointer"
)

// # Domain Enums

// Kind is the listing type discriminator selecting the product table.
type Kind string

const (
	KindYarn           Kind = "yarn"
	KindNotion         Kind = "notion"
	KindFinishedObject Kind = "finished_object"
)

// Kinds lists every known variant in a stable order.
var Kinds = []Kind{KindYarn, KindNotion, KindFinishedObject}

// IsValid reports whether k is a recognised [Kind].
func (k Kind) IsValid() bool {
	switch k {
	case KindYarn, KindNotion, KindFinishedObject:
		return true
	}
	return false
}

// ErrUnknownListingType is returned for a discriminator outside [Kinds].
var ErrUnknownListingType = apperr.New(http.StatusBadRequest, apperr.CodeUnknownListingType, "Unknown listing type")

// ParseKind converts raw input into a [Kind].
func ParseKind(raw string) (Kind, error) {
	kind := Kind(raw)
	if !kind.IsValid() {
		return "", ErrUnknownListingType.WithCause(fmt.Errorf("listing type %q", raw))
	}
	return kind, nil
}

// Quality describes the condition of an item.
type Quality string

const (
	QualityNew       Quality = "new"
	QualityGood      Quality = "good"
	QualityFair      Quality = "fair"
	QualityWellLoved Quality = "well-loved"
)

// TradeType describes how the seller wants to part with an item.
type TradeType string

const (
	TradeSell   TradeType = "sell"
	TradeSwap   TradeType = "swap"
	TradeDonate TradeType = "donate"
)

// Field names used in validation errors.
const (
	FieldUserID    = "user_id"
	FieldName      = "name"
	FieldQuality   = "quality"
	FieldTradeType = "type"
	FieldPrice     = "price"
	FieldQuantity  = "quantity"
	FieldSize      = "size"
	FieldType      = "listing_type"
	FieldAmount    = "amount"
	FieldMinPrice  = "minPrice"
	FieldMaxPrice  = "maxPrice"
	FieldMinAmount = "minAmount"
	FieldMaxAmount = "maxAmount"
	FieldQualities = "qualities"
	FieldTypes     = "types"
)

// # Core Entities

// Product is the capability set shared by every variant.
type Product interface {
	// Kind returns the variant discriminator.
	Kind() Kind
	// ProductID returns the primary key within the variant table.
	ProductID() int
	// OwnerID returns the id of the user owning the item.
	OwnerID() int
	// Summary returns the free-text description, or "" when none was given.
	Summary() string
	// AskingPrice returns the price, or nil for swaps and donations without one.
	AskingPrice() *float64
}

// Common holds the attributes every product table carries.
type Common struct {
	ID          int        `json:"id"`
	Pictures    []string   `json:"pictures"`
	Quality     *Quality   `json:"quality"`
	TradeType   *TradeType `json:"type"`
	Price       *float64   `json:"price"`
	Location    *string    `json:"location"`
	UserID      int        `json:"user_id"`
	Description *string    `json:"description"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (c *Common) ProductID() int        { return c.ID }
func (c *Common) OwnerID() int          { return c.UserID }
func (c *Common) AskingPrice() *float64 { return c.Price }
func (c *Common) Summary() string       { return pointer.Val(c.Description) }

// Yarn is a yarn product.
type Yarn struct {
	Common
	Brand        *string `json:"brand"`
	Amount       *int    `json:"amount"`
	LengthYards  *int    `json:"length_yards"`
	LengthMeters *int    `json:"length_meters"`
	Weight       *string `json:"weight"`
	Color        *string `json:"color"`
	Composition  *string `json:"composition"`
	NeedleSize   *string `json:"needle_size"`
	HookSize     *string `json:"hook_size"`
}

// Kind implements [Product].
func (y *Yarn) Kind() Kind { return KindYarn }

// Notion is a tool or accessory.
type Notion struct {
	Common
	Name     string `json:"name"`
	Quantity *int   `json:"quantity"`
}

// Kind implements [Product].
func (n *Notion) Kind() Kind { return KindNotion }

// FinishedObject is a completed handmade item.
type FinishedObject struct {
	Common
	Name string  `json:"name"`
	Size *string `json:"size"`
}

// Kind implements [Product].
func (f *FinishedObject) Kind() Kind { return KindFinishedObject }

// # Search

// YarnFilter narrows a yarn search. Every criterion is optional and the set
// ones are combined with AND. A list criterion matches any of its values.
type YarnFilter struct {
	PriceMin     *float64 `json:"minPrice"`
	PriceMax     *float64 `json:"maxPrice"`
	AmountMin    *int     `json:"minAmount"`
	AmountMax    *int     `json:"maxAmount"`
	Brands       []string `json:"brands"`
	Colors       []string `json:"colors"`
	Qualities    []string `json:"qualities"`
	Compositions []string `json:"compositions"`
	Types        []string `json:"types"`
	Locations    []string `json:"locations"`
	Weight       *string  `json:"weight"`
	NeedleSizes  []string `json:"needle_sizes"`
	HookSizes    []string `json:"hook_sizes"`
}
