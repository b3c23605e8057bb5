// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yarnswap/internal/platform/apperr"
	"github.com/taibuivan/yarnswap/pkg/pointer"
)

// memoryRepository is an in-memory [Repository] for service and handler tests.
type memoryRepository struct {
	yarn    map[int]*Yarn
	notions map[int]*Notion
	objects map[int]*FinishedObject
	nextID  int
	failing error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		yarn:    map[int]*Yarn{},
		notions: map[int]*Notion{},
		objects: map[int]*FinishedObject{},
	}
}

func (m *memoryRepository) stamp(common *Common) {
	m.nextID++
	common.ID = m.nextID
	common.CreatedAt = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
}

func (m *memoryRepository) FindYarn(_ context.Context, id int) (*Yarn, error) {
	if m.failing != nil {
		return nil, m.failing
	}
	if y, ok := m.yarn[id]; ok {
		return y, nil
	}
	return nil, apperr.NotFound("Yarn")
}

func (m *memoryRepository) FindNotion(_ context.Context, id int) (*Notion, error) {
	if n, ok := m.notions[id]; ok {
		return n, nil
	}
	return nil, apperr.NotFound("Notion")
}

func (m *memoryRepository) FindFinishedObject(_ context.Context, id int) (*FinishedObject, error) {
	if f, ok := m.objects[id]; ok {
		return f, nil
	}
	return nil, apperr.NotFound("Finished object")
}

func (m *memoryRepository) CreateYarn(_ context.Context, y *Yarn) error {
	m.stamp(&y.Common)
	m.yarn[y.ID] = y
	return nil
}

func (m *memoryRepository) CreateNotion(_ context.Context, n *Notion) error {
	m.stamp(&n.Common)
	m.notions[n.ID] = n
	return nil
}

func (m *memoryRepository) CreateFinishedObject(_ context.Context, f *FinishedObject) error {
	m.stamp(&f.Common)
	m.objects[f.ID] = f
	return nil
}

func (m *memoryRepository) UpdateYarn(_ context.Context, y *Yarn) error {
	stored, ok := m.yarn[y.ID]
	if !ok {
		return apperr.NotFound("Yarn")
	}
	y.UserID, y.CreatedAt = stored.UserID, stored.CreatedAt
	m.yarn[y.ID] = y
	return nil
}

// FilterYarn mirrors the SQL semantics for the criteria the tests use.
func (m *memoryRepository) FilterYarn(_ context.Context, filter YarnFilter) ([]*Yarn, error) {
	out := []*Yarn{}
	for id := 1; id <= m.nextID; id++ {
		y, ok := m.yarn[id]
		if !ok {
			continue
		}
		if filter.PriceMax != nil && (y.Price == nil || *y.Price > *filter.PriceMax) {
			continue
		}
		if filter.AmountMin != nil && (y.Amount == nil || *y.Amount < *filter.AmountMin) {
			continue
		}
		if len(filter.Colors) > 0 && (y.Color == nil || !slices.Contains(filter.Colors, *y.Color)) {
			continue
		}
		out = append(out, y)
	}
	return out, nil
}

func (m *memoryRepository) ListYarnByOwner(_ context.Context, userID int) ([]*Yarn, error) {
	out := []*Yarn{}
	for id := 1; id <= m.nextID; id++ {
		if y, ok := m.yarn[id]; ok && y.UserID == userID {
			out = append(out, y)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListNotionsByOwner(_ context.Context, userID int) ([]*Notion, error) {
	out := []*Notion{}
	for id := 1; id <= m.nextID; id++ {
		if n, ok := m.notions[id]; ok && n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListFinishedObjects(_ context.Context) ([]*FinishedObject, error) {
	out := []*FinishedObject{}
	for id := 1; id <= m.nextID; id++ {
		if f, ok := m.objects[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListFinishedObjectsByOwner(_ context.Context, userID int) ([]*FinishedObject, error) {
	out := []*FinishedObject{}
	for id := 1; id <= m.nextID; id++ {
		if f, ok := m.objects[id]; ok && f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memoryRepository) ListFinishedObjectsBySize(_ context.Context, size string) ([]*FinishedObject, error) {
	out := []*FinishedObject{}
	for id := 1; id <= m.nextID; id++ {
		if f, ok := m.objects[id]; ok && f.Size != nil && *f.Size == size {
			out = append(out, f)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memoryRepository) {
	repo := newMemoryRepository()
	return NewService(repo, slog.New(slog.NewJSONHandler(io.Discard, nil))), repo
}

func TestResolveProduct(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	yarn := &Yarn{Common: Common{UserID: 1, Description: pointer.To("Soft merino")}, Brand: pointer.To("Malabrigo")}
	require.NoError(t, service.CreateYarn(ctx, yarn))
	notion := &Notion{Common: Common{UserID: 2}, Name: "Stitch markers"}
	require.NoError(t, service.CreateNotion(ctx, notion))

	t.Run("dispatches_by_kind", func(t *testing.T) {
		got, err := service.ResolveProduct(ctx, KindYarn, yarn.ID)
		require.NoError(t, err)
		assert.Equal(t, KindYarn, got.Kind())
		assert.Equal(t, "Soft merino", got.Summary())
		assert.Same(t, yarn, got)

		got, err = service.ResolveProduct(ctx, KindNotion, notion.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.OwnerID())
	})

	t.Run("wrong_table_is_not_found", func(t *testing.T) {
		got, err := service.ResolveProduct(ctx, KindFinishedObject, yarn.ID)
		assert.True(t, apperr.IsNotFound(err))
		assert.Nil(t, got)
	})

	t.Run("unknown_kind", func(t *testing.T) {
		_, err := service.ResolveProduct(ctx, Kind("spindle"), 1)
		assert.ErrorIs(t, err, ErrUnknownListingType)
	})
}

func TestResolveProduct_StoreErrorPropagates(t *testing.T) {
	service, repo := newTestService()
	repo.failing = apperr.Internal(errors.New("connection reset"))

	_, err := service.ResolveProduct(context.Background(), KindYarn, 1)
	assert.True(t, apperr.HasCode(err, apperr.CodeInternal))
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		parsed, err := ParseKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := ParseKind("Yarn")
	assert.ErrorIs(t, err, ErrUnknownListingType)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnknownListingType))
}

func TestCreate_Validation(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		create func() error
		field  string
	}{
		{"missing_owner", func() error {
			return service.CreateYarn(ctx, &Yarn{})
		}, FieldUserID},
		{"bad_quality", func() error {
			return service.CreateYarn(ctx, &Yarn{Common: Common{UserID: 1, Quality: pointer.To(Quality("mint"))}})
		}, FieldQuality},
		{"bad_trade_type", func() error {
			return service.CreateNotion(ctx, &Notion{Common: Common{UserID: 1, TradeType: pointer.To(TradeType("rent"))}, Name: "Hooks"})
		}, FieldTradeType},
		{"negative_price", func() error {
			return service.CreateFinishedObject(ctx, &FinishedObject{Common: Common{UserID: 1, Price: pointer.To(-1.0)}, Name: "Hat"})
		}, FieldPrice},
		{"notion_without_name", func() error {
			return service.CreateNotion(ctx, &Notion{Common: Common{UserID: 1}})
		}, FieldName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.create()
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}

	assert.Zero(t, repo.nextID, "invalid products must not be stored")
}

func TestListByOwner(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, service.CreateFinishedObject(ctx, &FinishedObject{Common: Common{UserID: 4}, Name: "Shawl", Size: pointer.To("M")}))
	require.NoError(t, service.CreateFinishedObject(ctx, &FinishedObject{Common: Common{UserID: 5}, Name: "Mittens", Size: pointer.To("S")}))
	require.NoError(t, service.CreateFinishedObject(ctx, &FinishedObject{Common: Common{UserID: 4}, Name: "Cardigan", Size: pointer.To("M")}))

	items, err := service.ListByOwner(ctx, KindFinishedObject, 4)
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, 4, item.OwnerID())
	}

	bySize, err := service.ListFinishedObjectsBySize(ctx, "M")
	require.NoError(t, err)
	assert.Len(t, bySize, 2)

	_, err = service.ListFinishedObjectsBySize(ctx, " ")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.ListByOwner(ctx, Kind("loom"), 4)
	assert.ErrorIs(t, err, ErrUnknownListingType)
}

func TestUpdateYarn(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	yarn := &Yarn{Common: Common{UserID: 6, Price: pointer.To(12.0)}, Color: pointer.To("teal")}
	require.NoError(t, service.CreateYarn(ctx, yarn))

	t.Run("overwrites_attributes_and_keeps_owner", func(t *testing.T) {
		update := &Yarn{Common: Common{ID: yarn.ID, UserID: 99, Price: pointer.To(9.5)}, Color: pointer.To("rust")}
		require.NoError(t, service.UpdateYarn(ctx, update))

		stored := repo.yarn[yarn.ID]
		assert.Equal(t, 6, stored.UserID)
		assert.Equal(t, "rust", pointer.Val(stored.Color))
		assert.Equal(t, 9.5, pointer.Val(stored.Price))
	})

	t.Run("missing_yarn", func(t *testing.T) {
		err := service.UpdateYarn(ctx, &Yarn{Common: Common{ID: 404}})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("invalid_attributes", func(t *testing.T) {
		err := service.UpdateYarn(ctx, &Yarn{Common: Common{ID: yarn.ID, Quality: pointer.To(Quality("mint"))}, Amount: pointer.To(-2)})
		ae := apperr.As(err)
		require.NotNil(t, ae)
		require.Len(t, ae.Details, 2)
		assert.Equal(t, FieldQuality, ae.Details[0].Field)
		assert.Equal(t, FieldAmount, ae.Details[1].Field)
	})
}

func TestFilterYarn(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, service.CreateYarn(ctx, &Yarn{Common: Common{UserID: 1, Price: pointer.To(8.0)}, Color: pointer.To("teal"), Amount: pointer.To(3)}))
	require.NoError(t, service.CreateYarn(ctx, &Yarn{Common: Common{UserID: 1, Price: pointer.To(30.0)}, Color: pointer.To("teal"), Amount: pointer.To(5)}))
	require.NoError(t, service.CreateYarn(ctx, &Yarn{Common: Common{UserID: 2, Price: pointer.To(6.0)}, Color: pointer.To("ochre"), Amount: pointer.To(1)}))

	items, err := service.FilterYarn(ctx, YarnFilter{Colors: []string{"teal", "rust"}, PriceMax: pointer.To(10.0)})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, pointer.Val(items[0].Amount))

	items, err = service.FilterYarn(ctx, YarnFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 3)

	tests := []struct {
		name   string
		filter YarnFilter
		field  string
	}{
		{"negative_price", YarnFilter{PriceMin: pointer.To(-1.0)}, FieldMinPrice},
		{"inverted_price", YarnFilter{PriceMin: pointer.To(20.0), PriceMax: pointer.To(10.0)}, FieldMinPrice},
		{"inverted_amount", YarnFilter{AmountMin: pointer.To(5), AmountMax: pointer.To(2)}, FieldMinAmount},
		{"negative_amount", YarnFilter{AmountMin: pointer.To(-1)}, FieldMinAmount},
		{"unknown_quality", YarnFilter{Qualities: []string{"good", "mint"}}, FieldQualities},
		{"unknown_trade_type", YarnFilter{Types: []string{"rent"}}, FieldTypes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.FilterYarn(ctx, tt.filter)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

func TestListFinishedObjects(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, service.CreateFinishedObject(ctx, &FinishedObject{Common: Common{UserID: 1}, Name: "Socks"}))
	require.NoError(t, service.CreateYarn(ctx, &Yarn{Common: Common{UserID: 1}}))
	require.NoError(t, service.CreateFinishedObject(ctx, &FinishedObject{Common: Common{UserID: 2}, Name: "Scarf"}))

	items, err := service.ListFinishedObjects(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Socks", items[0].Name)
	assert.Equal(t, "Scarf", items[1].Name)
}
