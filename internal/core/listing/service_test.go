// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yarnswap/internal/core/product"
	"github.com/taibuivan/yarnswap/internal/core/tag"
	"github.com/taibuivan/yarnswap/internal/platform/apperr"
	"github.com/taibuivan/yarnswap/internal/platform/postgres/pgtest"
	"github.com/taibuivan/yarnswap/pkg/pointer"
)

// # Fakes

// memoryRepository is an in-memory [Repository]. Seller ids listed in
// missingSellers fail creation the way a foreign key would.
type memoryRepository struct {
	listings       []*Listing
	missingSellers map[int]bool
	nextID         int
}

func (m *memoryRepository) Create(_ context.Context, l *Listing) error {
	if m.missingSellers[l.SellerID] {
		return apperr.NotFound("Seller")
	}
	m.nextID++
	l.ID = m.nextID
	l.Status = StatusAvailable
	l.CreatedAt = time.Now()
	copied := *l
	m.listings = append(m.listings, &copied)
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id int) (*Listing, error) {
	for _, l := range m.listings {
		if l.ID == id {
			copied := *l
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Listing")
}

func (m *memoryRepository) UpdateStatus(_ context.Context, id int, status Status) (*Listing, error) {
	for _, l := range m.listings {
		if l.ID == id {
			l.Status = status
			copied := *l
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Listing")
}

func (m *memoryRepository) Delete(_ context.Context, id int) (*Listing, error) {
	for i, l := range m.listings {
		if l.ID == id {
			m.listings = slices.Delete(m.listings, i, i+1)
			return l, nil
		}
	}
	return nil, apperr.NotFound("Listing")
}

func (m *memoryRepository) where(match func(*Listing) bool) []*Listing {
	out := []*Listing{}
	for _, l := range m.listings {
		if match(l) {
			out = append(out, l)
		}
	}
	return out
}

func (m *memoryRepository) List(context.Context) ([]*Listing, error) {
	return m.where(func(*Listing) bool { return true }), nil
}

func (m *memoryRepository) ListByIDs(_ context.Context, ids []int) ([]*Listing, error) {
	return m.where(func(l *Listing) bool { return slices.Contains(ids, l.ID) }), nil
}

func (m *memoryRepository) ListByStatus(_ context.Context, status Status) ([]*Listing, error) {
	return m.where(func(l *Listing) bool { return l.Status == status }), nil
}

func (m *memoryRepository) ListBySeller(_ context.Context, sellerID int) ([]*Listing, error) {
	return m.where(func(l *Listing) bool { return l.SellerID == sellerID }), nil
}

func (m *memoryRepository) ListArchivedBySeller(_ context.Context, sellerID int) ([]*Listing, error) {
	return m.where(func(l *Listing) bool { return l.SellerID == sellerID && l.Status == StatusArchived }), nil
}

func (m *memoryRepository) ListByType(_ context.Context, kind product.Kind) ([]*Listing, error) {
	return m.where(func(l *Listing) bool { return l.ListingType == kind }), nil
}

func (m *memoryRepository) Search(_ context.Context, query string) ([]*Listing, error) {
	query = strings.ToLower(query)
	return m.where(func(l *Listing) bool {
		return strings.Contains(strconv.Itoa(l.ProductID), query) ||
			strings.Contains(strconv.Itoa(l.SellerID), query) ||
			strings.Contains(string(l.ListingType), query)
	}), nil
}

func (m *memoryRepository) Filter(context.Context, Filter) ([]*Listing, error) {
	return m.where(func(l *Listing) bool { return l.ListingType == product.KindYarn }), nil
}

func (m *memoryRepository) TypeCounts(context.Context) (map[product.Kind]int, int, error) {
	counts := map[product.Kind]int{}
	for _, l := range m.listings {
		counts[l.ListingType]++
	}
	return counts, len(m.listings), nil
}

type tagLink struct{ listingID, tagID int }

// memoryTags is an in-memory [TagManager].
type memoryTags struct {
	tags  []*tag.Tag
	links map[tagLink]bool
	fail  error
}

func newMemoryTags() *memoryTags {
	return &memoryTags{links: map[tagLink]bool{}}
}

func (m *memoryTags) EnsureTagsExist(_ context.Context, names []string) ([]*tag.Tag, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	out := []*tag.Tag{}
	for _, name := range names {
		name = tag.NormalizeName(name)
		index := slices.IndexFunc(m.tags, func(t *tag.Tag) bool { return t.Name == name })
		if index < 0 {
			m.tags = append(m.tags, &tag.Tag{ID: len(m.tags) + 1, Name: name})
			index = len(m.tags) - 1
		}
		if !slices.Contains(out, m.tags[index]) {
			out = append(out, m.tags[index])
		}
	}
	return out, nil
}

func (m *memoryTags) AttachTags(_ context.Context, listingID int, tagIDs []int) error {
	for _, tagID := range tagIDs {
		if tagID > len(m.tags) {
			return apperr.NotFound("Tag or listing")
		}
		m.links[tagLink{listingID, tagID}] = true
	}
	return nil
}

func (m *memoryTags) DetachTag(_ context.Context, listingID, tagID int) (bool, error) {
	key := tagLink{listingID, tagID}
	existed := m.links[key]
	delete(m.links, key)
	return existed, nil
}

func (m *memoryTags) ClearTags(_ context.Context, listingID int) (int, error) {
	removed := 0
	for key := range m.links {
		if key.listingID == listingID {
			delete(m.links, key)
			removed++
		}
	}
	return removed, nil
}

func (m *memoryTags) TagsForListing(_ context.Context, listingID int) ([]*tag.Tag, error) {
	out := []*tag.Tag{}
	for _, t := range m.tags {
		if m.links[tagLink{listingID, t.ID}] {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memoryTags) listingIDs(match func(*tag.Tag) bool) []int {
	out := []int{}
	for key := range m.links {
		if match(m.tags[key.tagID-1]) && !slices.Contains(out, key.listingID) {
			out = append(out, key.listingID)
		}
	}
	slices.Sort(out)
	return out
}

func (m *memoryTags) ListingsForTagName(_ context.Context, name string) ([]int, error) {
	name = tag.DecodeName(name)
	return m.listingIDs(func(t *tag.Tag) bool { return t.Name == name }), nil
}

func (m *memoryTags) ListingsForTagID(_ context.Context, tagID int) ([]int, error) {
	return m.listingIDs(func(t *tag.Tag) bool { return t.ID == tagID }), nil
}

func (m *memoryTags) SearchListingsByTagName(_ context.Context, fragment string) ([]int, error) {
	fragment = strings.ToLower(tag.DecodeName(fragment))
	return m.listingIDs(func(t *tag.Tag) bool { return strings.Contains(strings.ToLower(t.Name), fragment) }), nil
}

// stubProducts resolves only the yarn it holds.
type stubProducts struct {
	yarn map[int]*product.Yarn
	err  error
}

func (s *stubProducts) ResolveProduct(_ context.Context, kind product.Kind, productID int) (product.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if kind == product.KindYarn {
		if yarn, ok := s.yarn[productID]; ok {
			return yarn, nil
		}
	}
	return nil, apperr.NotFound("Yarn")
}

type fixture struct {
	service  *Service
	repo     *memoryRepository
	tags     *memoryTags
	products *stubProducts
}

func newFixture() *fixture {
	f := &fixture{
		repo:     &memoryRepository{missingSellers: map[int]bool{}},
		tags:     newMemoryTags(),
		products: &stubProducts{yarn: map[int]*product.Yarn{}},
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	f.service = NewService(f.repo, f.tags, f.products, pgtest.PassThrough{}, logger)
	return f
}

func (f *fixture) create(t *testing.T, draft Draft) *Listing {
	t.Helper()
	listing, err := f.service.CreateListing(context.Background(), draft)
	require.NoError(t, err)
	return listing
}

// # Tests

func TestCreateListing(t *testing.T) {
	ctx := context.Background()

	t.Run("with_tags", func(t *testing.T) {
		f := newFixture()
		listing := f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 10, Tags: []string{"wool", "aran", "wool"}})

		assert.Equal(t, StatusAvailable, listing.Status)
		assert.Equal(t, product.KindYarn, listing.ListingType)

		tags, err := f.service.TagsForListing(ctx, listing.ID)
		require.NoError(t, err)
		assert.Len(t, tags, 2)
	})

	t.Run("without_tags", func(t *testing.T) {
		f := newFixture()
		listing := f.create(t, Draft{SellerID: 1, ListingType: "notion", ProductID: 3})

		tags, err := f.service.TagsForListing(ctx, listing.ID)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})

	t.Run("unknown_type", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateListing(ctx, Draft{SellerID: 1, ListingType: "kit", ProductID: 3})
		assert.ErrorIs(t, err, product.ErrUnknownListingType)
		assert.Empty(t, f.repo.listings)
	})

	t.Run("invalid_ids", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.CreateListing(ctx, Draft{SellerID: 0, ListingType: "yarn", ProductID: -1})
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	})

	t.Run("missing_seller", func(t *testing.T) {
		f := newFixture()
		f.repo.missingSellers[42] = true
		_, err := f.service.CreateListing(ctx, Draft{SellerID: 42, ListingType: "yarn", ProductID: 1})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("tag_failure_propagates", func(t *testing.T) {
		f := newFixture()
		f.tags.fail = apperr.Internal(errors.New("boom"))
		_, err := f.service.CreateListing(ctx, Draft{SellerID: 1, ListingType: "yarn", ProductID: 1, Tags: []string{"x"}})
		assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
	})
}

func TestGetListingWithProduct(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.products.yarn[10] = &product.Yarn{Common: product.Common{ID: 10, UserID: 1}, Brand: pointer.To("Malabrigo")}

	resolved := f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 10})
	dangling := f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 99})

	t.Run("resolved", func(t *testing.T) {
		got, err := f.service.GetListingWithProduct(ctx, resolved.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Product)
		assert.Equal(t, 10, got.Product.ProductID())
		assert.Equal(t, resolved.ID, got.ID)
	})

	t.Run("dangling_product_is_nil", func(t *testing.T) {
		got, err := f.service.GetListingWithProduct(ctx, dangling.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Product)
	})

	t.Run("missing_listing", func(t *testing.T) {
		_, err := f.service.GetListingWithProduct(ctx, 404)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("resolver_failure", func(t *testing.T) {
		f.products.err = apperr.Internal(errors.New("db down"))
		defer func() { f.products.err = nil }()

		_, err := f.service.GetListingWithProduct(ctx, resolved.ID)
		assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	listing := f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 1})

	for _, status := range []Status{StatusSold, StatusAvailable, StatusArchived} {
		updated, err := f.service.UpdateStatus(ctx, listing.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	_, err := f.service.UpdateStatus(ctx, listing.ID, "reserved")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.UpdateStatus(ctx, 404, StatusSold)
	assert.True(t, apperr.IsNotFound(err))

	archived, err := f.service.ListArchivedByUser(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, archived, 1)

	available, err := f.service.ListAvailable(ctx)
	require.NoError(t, err)
	assert.Empty(t, available)
}

func TestDeleteListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	listing := f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 1, Tags: []string{"a", "b"}})
	other := f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 2, Tags: []string{"a"}})

	deleted, err := f.service.DeleteListing(ctx, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, listing.ID, deleted.ID)
	assert.Len(t, f.tags.links, 1, "only the other listing keeps its tag")

	_, err = f.service.GetListing(ctx, listing.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.service.DeleteListing(ctx, listing.ID)
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.service.GetListing(ctx, other.ID)
	assert.NoError(t, err)
}

func TestListingQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 11})
	f.create(t, Draft{SellerID: 2, ListingType: "notion", ProductID: 12})
	f.create(t, Draft{SellerID: 2, ListingType: "finished_object", ProductID: 13})

	bySeller, err := f.service.ListBySeller(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, bySeller, 2)

	_, err = f.service.ListBySeller(ctx, 0)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	byType, err := f.service.ListByType(ctx, "notion")
	require.NoError(t, err)
	assert.Len(t, byType, 1)

	_, err = f.service.ListByType(ctx, "kit")
	assert.ErrorIs(t, err, product.ErrUnknownListingType)

	found, err := f.service.Search(ctx, "finished")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = f.service.Search(ctx, "")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.ListByStatus(ctx, "gone")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestFilterListings_RejectsInvertedRange(t *testing.T) {
	f := newFixture()
	minPrice, maxPrice := 20.0, 10.0

	_, err := f.service.FilterListings(context.Background(), Filter{PriceMin: &minPrice, PriceMax: &maxPrice})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	negative := -1.0
	_, err = f.service.FilterListings(context.Background(), Filter{PriceMin: &negative})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

func TestListingTypePercentages(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	shares, err := f.service.ListingTypePercentages(ctx)
	require.NoError(t, err)
	assert.Empty(t, shares)

	f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 1})
	f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 2})
	f.create(t, Draft{SellerID: 1, ListingType: "notion", ProductID: 3})
	f.create(t, Draft{SellerID: 1, ListingType: "finished_object", ProductID: 4})

	shares, err = f.service.ListingTypePercentages(ctx)
	require.NoError(t, err)
	require.Len(t, shares, 3)

	assert.Equal(t, product.KindYarn, shares[0].ListingType)
	assert.Equal(t, 50.0, shares[0].Percentage)
	assert.Equal(t, 4, shares[0].Total)

	// Equal shares fall back to type order.
	assert.Equal(t, product.KindFinishedObject, shares[1].ListingType)
	assert.Equal(t, product.KindNotion, shares[2].ListingType)
	assert.Equal(t, 25.0, shares[2].Percentage)
}

func TestListingTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	listing := f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 1, Tags: []string{"#film"}})
	f.create(t, Draft{SellerID: 1, ListingType: "yarn", ProductID: 2, Tags: []string{"wool"}})

	t.Run("lookup_by_encoded_name", func(t *testing.T) {
		listings, err := f.service.ListingsForTagName(ctx, "%23film")
		require.NoError(t, err)
		require.Len(t, listings, 1)
		assert.Equal(t, listing.ID, listings[0].ID)
	})

	t.Run("search_by_fragment", func(t *testing.T) {
		listings, err := f.service.SearchByTagName(ctx, "FIL")
		require.NoError(t, err)
		assert.Len(t, listings, 1)
	})

	t.Run("unknown_tag_is_empty", func(t *testing.T) {
		listings, err := f.service.ListingsForTagID(ctx, 99)
		require.NoError(t, err)
		assert.NotNil(t, listings)
		assert.Empty(t, listings)
	})

	t.Run("add_and_remove", func(t *testing.T) {
		tags, err := f.service.AddTag(ctx, listing.ID, 2)
		require.NoError(t, err)
		assert.Len(t, tags, 2)

		_, err = f.service.AddTag(ctx, 404, 2)
		assert.True(t, apperr.IsNotFound(err))

		removed, err := f.service.RemoveTag(ctx, listing.ID, 2)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = f.service.RemoveTag(ctx, listing.ID, 2)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("clear", func(t *testing.T) {
		cleared, err := f.service.ClearTags(ctx, listing.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, cleared)

		_, err = f.service.TagsForListing(ctx, 404)
		assert.True(t, apperr.IsNotFound(err))
	})
}
