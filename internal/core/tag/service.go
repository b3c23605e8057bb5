// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"log/slog"

	"github.com/taibuivan/yarnswap/internal/platform/constants"
	"github.com/taibuivan/yarnswap/internal/platform/dberr"
	"github.com/taibuivan/yarnswap/internal/platform/postgres"
	"github.com/taibuivan/yarnswap/internal/platform/validate"
	"github.com/taibuivan/yarnswap/pkg/slice"
	"github.com/taibuivan/yarnswap/pkg/stats"
)

// # Service Layer

// Service is the tag association manager: it owns tag rows, the
// listing_tags junction and the usage analytics over both.
type Service struct {
	repo   Repository
	tx     postgres.Transactor
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, tx postgres.Transactor, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tx:     tx,
		logger: logger,
	}
}

// # Tag Lookups

// ListTags returns every tag ordered by name.
func (service *Service) ListTags(ctx context.Context) ([]*Tag, error) {
	return service.repo.ListTags(ctx)
}

// GetTag fetches a single tag by id.
func (service *Service) GetTag(ctx context.Context, tagID int) (*Tag, error) {
	return service.repo.FindByID(ctx, tagID)
}

/*
EnsureTagsExist returns one tag per distinct name, creating the missing ones.

Description: Names are trimmed and NFC-normalised, then deduplicated keeping
their first appearance. Missing names are inserted with ON CONFLICT DO NOTHING
and all rows are re-read in the same transaction, so concurrent callers agree
on the ids.

Parameters:
  - ctx: context.Context
  - names: []string (Raw tag names)

Returns:
  - []*Tag: Tags in the order their names first appear
  - error: VALIDATION_ERROR for blank or oversized names, or store errors
*/
func (service *Service) EnsureTagsExist(ctx context.Context, names []string) ([]*Tag, error) {
	normalized := slice.Unique(slice.Map(names, NormalizeName))
	if len(normalized) == 0 {
		return []*Tag{}, nil
	}

	validator := &validate.Validator{}
	for _, name := range normalized {
		validator.Required(FieldNames, name).MaxLen(FieldNames, name, MaxNameLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var tags []*Tag
	err := service.tx.InTx(ctx, func(ctx context.Context) error {
		if err := service.repo.InsertMissing(ctx, normalized); err != nil {
			return err
		}

		stored, err := service.repo.FindByNames(ctx, normalized)
		if err != nil {
			return err
		}

		tags = orderByNames(stored, normalized)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tags, nil
}

// orderByNames arranges tags to follow the order of names.
func orderByNames(tags []*Tag, names []string) []*Tag {
	byName := make(map[string]*Tag, len(tags))
	for _, tag := range tags {
		byName[tag.Name] = tag
	}

	ordered := make([]*Tag, 0, len(names))
	for _, name := range names {
		if tag, ok := byName[name]; ok {
			ordered = append(ordered, tag)
		}
	}
	return ordered
}

// # Associations

// AttachTags links the tags to a listing. Links that already exist are kept,
// so repeated calls converge on the same set.
func (service *Service) AttachTags(ctx context.Context, listingID int, tagIDs []int) error {
	tagIDs = slice.Unique(tagIDs)
	if len(tagIDs) == 0 {
		return nil
	}

	validator := &validate.Validator{}
	for _, tagID := range tagIDs {
		validator.PositiveID(FieldTagID, tagID)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	return service.tx.InTx(ctx, func(ctx context.Context) error {
		return service.repo.Attach(ctx, listingID, tagIDs)
	})
}

// DetachTag removes one link and reports whether it existed.
func (service *Service) DetachTag(ctx context.Context, listingID, tagID int) (bool, error) {
	return service.repo.Detach(ctx, listingID, tagID)
}

// ClearTags removes every tag from a listing and returns how many links were deleted.
func (service *Service) ClearTags(ctx context.Context, listingID int) (int, error) {
	return service.repo.ClearListing(ctx, listingID)
}

// ClearTagsForTag removes a tag from every listing and returns how many links were deleted.
func (service *Service) ClearTagsForTag(ctx context.Context, tagID int) (int, error) {
	return service.repo.ClearTag(ctx, tagID)
}

// TagsForListing returns the tags on a listing ordered by id.
func (service *Service) TagsForListing(ctx context.Context, listingID int) ([]*Tag, error) {
	return service.repo.TagsForListing(ctx, listingID)
}

// # Reverse Lookups

// ListingsForTagName returns the ids of listings carrying the exact tag name.
// The name may still be percent-encoded, as taken from a URL.
func (service *Service) ListingsForTagName(ctx context.Context, name string) ([]int, error) {
	return service.repo.ListingIDsByName(ctx, DecodeName(name))
}

// ListingsForTagID returns the ids of listings carrying the tag.
func (service *Service) ListingsForTagID(ctx context.Context, tagID int) ([]int, error) {
	return service.repo.ListingIDsByTagID(ctx, tagID)
}

// SearchListingsByTagName returns the ids of listings carrying any tag whose
// name contains fragment, ignoring case.
func (service *Service) SearchListingsByTagName(ctx context.Context, fragment string) ([]int, error) {
	fragment = DecodeName(fragment)

	validator := &validate.Validator{}
	if err := validator.Required(FieldName, fragment).Err(); err != nil {
		return nil, err
	}

	return service.repo.SearchListingIDs(ctx, fragment)
}

// # Analytics

// UsageCount returns how many listings carry the tag.
func (service *Service) UsageCount(ctx context.Context, tagID int) (int, error) {
	if _, err := service.repo.FindByID(ctx, tagID); err != nil {
		return 0, err
	}
	return service.repo.UsageCount(ctx, tagID)
}

// TopTags returns the most used tags. A non-positive limit selects the default
// and larger values are capped.
func (service *Service) TopTags(ctx context.Context, limit int) ([]*Usage, error) {
	return service.repo.TopTags(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultTopTagsLimit
	}
	return min(limit, constants.MaxTopTagsLimit)
}

// UsagePercentages reports, for every tag, the share of all listings carrying it.
func (service *Service) UsagePercentages(ctx context.Context) ([]*UsageShare, error) {
	usage, total, err := service.repo.UsageCounts(ctx)
	if err != nil {
		return nil, err
	}

	return slice.Map(usage, func(item *Usage) *UsageShare {
		return &UsageShare{Usage: *item, Percentage: stats.Percent(item.Count, total)}
	}), nil
}

// # Tag Management

/*
RenameTag changes a tag's name.

Description: The existence check, the case-insensitive collision check and the
update run in one transaction. Renaming a tag to a different casing of its own
name is allowed.

Parameters:
  - ctx: context.Context
  - tagID: int
  - newName: string

Returns:
  - *Tag: The renamed tag
  - error: NOT_FOUND, DUPLICATE_NAME, VALIDATION_ERROR, or store errors
*/
func (service *Service) RenameTag(ctx context.Context, tagID int, newName string) (*Tag, error) {
	newName = NormalizeName(newName)

	validator := &validate.Validator{}
	validator.Required(FieldName, newName).MaxLen(FieldName, newName, MaxNameLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	var renamed *Tag
	err := service.tx.InTx(ctx, func(ctx context.Context) error {
		current, err := service.repo.FindByID(ctx, tagID)
		if err != nil {
			return err
		}

		taken, err := service.repo.NameTakenByOther(ctx, newName, tagID)
		if err != nil {
			return err
		}
		if taken {
			return ErrDuplicateName
		}

		// A concurrent insert can still win the unique index after the check.
		renamed, err = service.repo.Rename(ctx, tagID, newName)
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicateName.WithCause(err)
		}
		if err != nil {
			return err
		}

		service.logger.Info("tag_renamed",
			slog.Int("tag_id", tagID),
			slog.String("from", current.Name),
			slog.String("to", renamed.Name),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return renamed, nil
}

// DeleteTagCompletely removes a tag and all of its listing links in one
// transaction, returning the deleted tag.
func (service *Service) DeleteTagCompletely(ctx context.Context, tagID int) (*Tag, error) {
	var deleted *Tag
	err := service.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := service.repo.FindByID(ctx, tagID); err != nil {
			return err
		}

		cleared, err := service.repo.ClearTag(ctx, tagID)
		if err != nil {
			return err
		}

		deleted, err = service.repo.Delete(ctx, tagID)
		if err != nil {
			return err
		}

		service.logger.Info("tag_deleted",
			slog.Int("tag_id", tagID),
			slog.String("name", deleted.Name),
			slog.Int("links_cleared", cleared),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}
