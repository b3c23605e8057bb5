// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import "context"

// # Tag Data Access

// Repository defines the data access contract for tags and the listing_tags junction.
type Repository interface {
	ListTags(ctx context.Context) ([]*Tag, error)
	FindByID(ctx context.Context, id int) (*Tag, error)
	// FindByNames returns the tags whose name exactly matches one of names, in any order.
	FindByNames(ctx context.Context, names []string) ([]*Tag, error)
	// InsertMissing creates a row for every name not already stored.
	InsertMissing(ctx context.Context, names []string) error
	// NameTakenByOther reports whether a tag other than excludeID has name, ignoring case.
	NameTakenByOther(ctx context.Context, name string, excludeID int) (bool, error)
	Rename(ctx context.Context, id int, name string) (*Tag, error)
	Delete(ctx context.Context, id int) (*Tag, error)

	// Attach links every tag id to the listing; existing links are left alone.
	Attach(ctx context.Context, listingID int, tagIDs []int) error
	Detach(ctx context.Context, listingID, tagID int) (bool, error)
	ClearListing(ctx context.Context, listingID int) (int, error)
	ClearTag(ctx context.Context, tagID int) (int, error)
	TagsForListing(ctx context.Context, listingID int) ([]*Tag, error)

	ListingIDsByName(ctx context.Context, name string) ([]int, error)
	ListingIDsByTagID(ctx context.Context, tagID int) ([]int, error)
	// SearchListingIDs matches tag names containing fragment, case-insensitively.
	SearchListingIDs(ctx context.Context, fragment string) ([]int, error)

	UsageCount(ctx context.Context, tagID int) (int, error)
	TopTags(ctx context.Context, limit int) ([]*Usage, error)
	// UsageCounts returns every tag with its count, plus the total number of listings.
	UsageCounts(ctx context.Context) ([]*Usage, int, error)
}
