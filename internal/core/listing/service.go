// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/taibuivan/yarnswap/internal/core/product"
	"github.com/taibuivan/yarnswap/internal/core/tag"
	"github.com/taibuivan/yarnswap/internal/platform/apperr"
	"github.com/taibuivan/yarnswap/internal/platform/postgres"
	"github.com/taibuivan/yarnswap/internal/platform/validate"
	"github.com/taibuivan/yarnswap/pkg/stats"
)

// # Collaborators

// TagManager is the subset of the tag service the listing aggregate uses.
type TagManager interface {
	EnsureTagsExist(ctx context.Context, names []string) ([]*tag.Tag, error)
	AttachTags(ctx context.Context, listingID int, tagIDs []int) error
	DetachTag(ctx context.Context, listingID, tagID int) (bool, error)
	ClearTags(ctx context.Context, listingID int) (int, error)
	TagsForListing(ctx context.Context, listingID int) ([]*tag.Tag, error)
	ListingsForTagName(ctx context.Context, name string) ([]int, error)
	ListingsForTagID(ctx context.Context, tagID int) ([]int, error)
	SearchListingsByTagName(ctx context.Context, fragment string) ([]int, error)
}

// ProductResolver loads the product a listing references.
type ProductResolver interface {
	ResolveProduct(ctx context.Context, kind product.Kind, productID int) (product.Product, error)
}

// # Service Layer

// Service orchestrates listings together with their tags and products.
type Service struct {
	repo     Repository
	tags     TagManager
	products ProductResolver
	tx       postgres.Transactor
	logger   *slog.Logger
}

// NewService constructs a new [Service] with its collaborators.
func NewService(repo Repository, tags TagManager, products ProductResolver, tx postgres.Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		tags:     tags,
		products: products,
		tx:       tx,
		logger:   logger,
	}
}

// # Listing Management

/*
CreateListing stores a listing and attaches its tags.

Description: The listing row, any new tag rows and the junction rows are
written in one transaction. The product must already exist; it is referenced,
never created.

Parameters:
  - ctx: context.Context
  - draft: Draft (Seller, type, product reference and tag names)

Returns:
  - *Listing: The stored listing with its id, status and timestamp
  - error: VALIDATION_ERROR, UNKNOWN_LISTING_TYPE, or store errors
*/
func (service *Service) CreateListing(ctx context.Context, draft Draft) (*Listing, error) {
	validator := &validate.Validator{}
	validator.PositiveID(FieldSellerID, draft.SellerID).PositiveID(FieldProductID, draft.ProductID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	kind, err := product.ParseKind(draft.ListingType)
	if err != nil {
		return nil, err
	}

	listing := &Listing{SellerID: draft.SellerID, ListingType: kind, ProductID: draft.ProductID}

	err = service.tx.InTx(ctx, func(ctx context.Context) error {
		if err := service.repo.Create(ctx, listing); err != nil {
			return err
		}

		if len(draft.Tags) == 0 {
			return nil
		}

		tags, err := service.tags.EnsureTagsExist(ctx, draft.Tags)
		if err != nil {
			return err
		}
		return service.tags.AttachTags(ctx, listing.ID, tagIDs(tags))
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("listing_created",
		slog.Int("listing_id", listing.ID),
		slog.Int("seller_id", listing.SellerID),
		slog.String("listing_type", string(listing.ListingType)),
		slog.Int("product_id", listing.ProductID),
		slog.Int("tag_count", len(draft.Tags)),
	)
	return listing, nil
}

// GetListing fetches a listing by id.
func (service *Service) GetListing(ctx context.Context, listingID int) (*Listing, error) {
	return service.repo.FindByID(ctx, listingID)
}

// GetListingWithProduct fetches a listing and the product it references.
// A product that no longer exists is reported as nil rather than as an error.
func (service *Service) GetListingWithProduct(ctx context.Context, listingID int) (*WithProduct, error) {
	listing, err := service.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	item, err := service.products.ResolveProduct(ctx, listing.ListingType, listing.ProductID)
	switch {
	case err == nil:
	case apperr.IsNotFound(err), errors.Is(err, product.ErrUnknownListingType):
		item = nil
	default:
		return nil, err
	}

	return &WithProduct{Listing: *listing, Product: item}, nil
}

// UpdateStatus sets a listing's status. Transitions are not restricted.
func (service *Service) UpdateStatus(ctx context.Context, listingID int, status Status) (*Listing, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	listing, err := service.repo.UpdateStatus(ctx, listingID, status)
	if err != nil {
		return nil, err
	}

	service.logger.Info("listing_status_updated",
		slog.Int("listing_id", listingID),
		slog.String("status", string(status)),
	)
	return listing, nil
}

// DeleteListing removes a listing and its tag links in one transaction and
// returns the deleted row. The product row is left untouched.
func (service *Service) DeleteListing(ctx context.Context, listingID int) (*Listing, error) {
	var deleted *Listing
	err := service.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := service.repo.FindByID(ctx, listingID); err != nil {
			return err
		}

		if _, err := service.tags.ClearTags(ctx, listingID); err != nil {
			return err
		}

		var err error
		deleted, err = service.repo.Delete(ctx, listingID)
		return err
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("listing_deleted", slog.Int("listing_id", listingID))
	return deleted, nil
}

// # Listing Queries

// ListListings returns every listing.
func (service *Service) ListListings(ctx context.Context) ([]*Listing, error) {
	return service.repo.List(ctx)
}

// ListAvailable returns listings still on offer.
func (service *Service) ListAvailable(ctx context.Context) ([]*Listing, error) {
	return service.repo.ListByStatus(ctx, StatusAvailable)
}

// ListByStatus returns listings in one lifecycle state.
func (service *Service) ListByStatus(ctx context.Context, status Status) ([]*Listing, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	return service.repo.ListByStatus(ctx, status)
}

// ListArchivedByUser returns a seller's archived listings.
func (service *Service) ListArchivedByUser(ctx context.Context, userID int) ([]*Listing, error) {
	validator := &validate.Validator{}
	if err := validator.PositiveID(FieldSellerID, userID).Err(); err != nil {
		return nil, err
	}
	return service.repo.ListArchivedBySeller(ctx, userID)
}

// ListBySeller returns every listing of one seller.
func (service *Service) ListBySeller(ctx context.Context, userID int) ([]*Listing, error) {
	validator := &validate.Validator{}
	if err := validator.PositiveID(FieldSellerID, userID).Err(); err != nil {
		return nil, err
	}
	return service.repo.ListBySeller(ctx, userID)
}

// ListByType returns listings of one product type.
func (service *Service) ListByType(ctx context.Context, rawKind string) ([]*Listing, error) {
	kind, err := product.ParseKind(rawKind)
	if err != nil {
		return nil, err
	}
	return service.repo.ListByType(ctx, kind)
}

// Search matches the query against product id, seller id and listing type.
func (service *Service) Search(ctx context.Context, query string) ([]*Listing, error) {
	validator := &validate.Validator{}
	if err := validator.Required(FieldQuery, query).Err(); err != nil {
		return nil, err
	}
	return service.repo.Search(ctx, query)
}

// FilterListings returns yarn listings matching every criterion given.
func (service *Service) FilterListings(ctx context.Context, filter Filter) ([]*Listing, error) {
	validator := &validate.Validator{}
	validator.NonNegative("price_min", filter.PriceMin).NonNegative("price_max", filter.PriceMax)
	if filter.PriceMin != nil && filter.PriceMax != nil {
		validator.Custom("price_max", *filter.PriceMax < *filter.PriceMin, "Must not be below price_min")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}
	return service.repo.Filter(ctx, filter)
}

// ListingTypePercentages reports the share of listings per type, largest first.
func (service *Service) ListingTypePercentages(ctx context.Context) ([]*TypeShare, error) {
	counts, total, err := service.repo.TypeCounts(ctx)
	if err != nil {
		return nil, err
	}
	return typeShares(counts, total), nil
}

func typeShares(counts map[product.Kind]int, total int) []*TypeShare {
	shares := make([]*TypeShare, 0, len(counts))
	for kind, count := range counts {
		shares = append(shares, &TypeShare{
			ListingType: kind,
			Count:       count,
			Total:       total,
			Percentage:  stats.Percent(count, total),
		})
	}

	slices.SortFunc(shares, func(a, b *TypeShare) int {
		if byShare := cmp.Compare(b.Percentage, a.Percentage); byShare != 0 {
			return byShare
		}
		return cmp.Compare(a.ListingType, b.ListingType)
	})
	return shares
}

// # Tag Passthroughs

// AddTag attaches one tag and returns the listing's tags afterwards.
func (service *Service) AddTag(ctx context.Context, listingID, tagID int) ([]*tag.Tag, error) {
	validator := &validate.Validator{}
	if err := validator.PositiveID(FieldTagID, tagID).Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.FindByID(ctx, listingID); err != nil {
		return nil, err
	}

	if err := service.tags.AttachTags(ctx, listingID, []int{tagID}); err != nil {
		return nil, err
	}
	return service.tags.TagsForListing(ctx, listingID)
}

// RemoveTag detaches one tag and reports whether the link existed.
func (service *Service) RemoveTag(ctx context.Context, listingID, tagID int) (bool, error) {
	return service.tags.DetachTag(ctx, listingID, tagID)
}

// ClearTags detaches every tag and returns how many links were removed.
func (service *Service) ClearTags(ctx context.Context, listingID int) (int, error) {
	return service.tags.ClearTags(ctx, listingID)
}

// TagsForListing returns a listing's tags, or NOT_FOUND for an unknown listing.
func (service *Service) TagsForListing(ctx context.Context, listingID int) ([]*tag.Tag, error) {
	if _, err := service.repo.FindByID(ctx, listingID); err != nil {
		return nil, err
	}
	return service.tags.TagsForListing(ctx, listingID)
}

// ListingsForTagName returns the listings carrying a tag, matched exactly by name.
func (service *Service) ListingsForTagName(ctx context.Context, name string) ([]*Listing, error) {
	ids, err := service.tags.ListingsForTagName(ctx, name)
	if err != nil {
		return nil, err
	}
	return service.ListByIDs(ctx, ids)
}

// ListingsForTagID returns the listings carrying a tag.
func (service *Service) ListingsForTagID(ctx context.Context, tagID int) ([]*Listing, error) {
	ids, err := service.tags.ListingsForTagID(ctx, tagID)
	if err != nil {
		return nil, err
	}
	return service.ListByIDs(ctx, ids)
}

// SearchByTagName returns the listings carrying any tag whose name contains fragment.
func (service *Service) SearchByTagName(ctx context.Context, fragment string) ([]*Listing, error) {
	ids, err := service.tags.SearchListingsByTagName(ctx, fragment)
	if err != nil {
		return nil, err
	}
	return service.ListByIDs(ctx, ids)
}

// ListByIDs loads listings by id, ordered by id. Unknown ids are skipped.
func (service *Service) ListByIDs(ctx context.Context, ids []int) ([]*Listing, error) {
	if len(ids) == 0 {
		return []*Listing{}, nil
	}
	return service.repo.ListByIDs(ctx, ids)
}

func validateStatus(status Status) error {
	validator := &validate.Validator{}
	validator.OneOf(FieldStatus, string(status),
		string(StatusAvailable),
		string(StatusSold),
		string(StatusArchived),
	)
	return validator.Err()
}

func tagIDs(tags []*tag.Tag) []int {
	ids := make([]int, 0, len(tags))
	for _, t := range tags {
		ids = append(ids, t.ID)
	}
	return ids
}
