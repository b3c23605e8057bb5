// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import "context"

// # Product Data Access

// Repository defines the data access contract for the three product tables.
//
// Every Find method returns an apperr NOT_FOUND error when the row is absent.
type Repository interface {
	FindYarn(ctx context.Context, id int) (*Yarn, error)
	FindNotion(ctx context.Context, id int) (*Notion, error)
	FindFinishedObject(ctx context.Context, id int) (*FinishedObject, error)

	// CreateYarn inserts y and fills its ID and CreatedAt.
	CreateYarn(ctx context.Context, y *Yarn) error
	CreateNotion(ctx context.Context, n *Notion) error
	CreateFinishedObject(ctx context.Context, f *FinishedObject) error

	// UpdateYarn overwrites the mutable attributes of y. Owner and creation
	// time are kept, and y is refreshed from the stored row.
	UpdateYarn(ctx context.Context, y *Yarn) error
	FilterYarn(ctx context.Context, filter YarnFilter) ([]*Yarn, error)

	ListYarnByOwner(ctx context.Context, userID int) ([]*Yarn, error)
	ListNotionsByOwner(ctx context.Context, userID int) ([]*Notion, error)
	ListFinishedObjects(ctx context.Context) ([]*FinishedObject, error)
	ListFinishedObjectsByOwner(ctx context.Context, userID int) ([]*FinishedObject, error)
	ListFinishedObjectsBySize(ctx context.Context, size string) ([]*FinishedObject, error)
}
