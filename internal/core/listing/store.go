// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"

	"github.com/taibuivan/yarnswap/internal/core/product"
)

// # Listing Data Access

// Repository defines the data access contract for listings.
//
// List methods return rows ordered by id.
type Repository interface {
	// Create inserts l and fills its ID, Status and CreatedAt.
	Create(ctx context.Context, l *Listing) error
	FindByID(ctx context.Context, id int) (*Listing, error)
	UpdateStatus(ctx context.Context, id int, status Status) (*Listing, error)
	Delete(ctx context.Context, id int) (*Listing, error)

	List(ctx context.Context) ([]*Listing, error)
	ListByIDs(ctx context.Context, ids []int) ([]*Listing, error)
	ListByStatus(ctx context.Context, status Status) ([]*Listing, error)
	ListBySeller(ctx context.Context, sellerID int) ([]*Listing, error)
	ListArchivedBySeller(ctx context.Context, sellerID int) ([]*Listing, error)
	ListByType(ctx context.Context, kind product.Kind) ([]*Listing, error)
	// Search matches query as a substring of the product id, seller id or listing type.
	Search(ctx context.Context, query string) ([]*Listing, error)
	// Filter returns yarn listings matching every non-nil criterion.
	Filter(ctx context.Context, filter Filter) ([]*Listing, error)

	// TypeCounts returns the number of listings per type, plus the total.
	TypeCounts(ctx context.Context) (map[product.Kind]int, int, error)
}
