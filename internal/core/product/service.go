// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"log/slog"
	"math"

	"github.com/taibuivan/yarnswap/internal/platform/validate"
)

// # Service Layer

// finder loads one variant by primary key and returns it as a [Product].
type finder func(ctx context.Context, id int) (Product, error)

// lift adapts a typed repository lookup to a [finder].
//
// A failed lookup returns a nil interface, never a typed nil pointer.
func lift[T Product](find func(context.Context, int) (T, error)) finder {
	return func(ctx context.Context, id int) (Product, error) {
		item, err := find(ctx, id)
		if err != nil {
			return nil, err
		}
		return item, nil
	}
}

// Service resolves listing references to product records and manages the
// product tables.
type Service struct {
	repo    Repository
	finders map[Kind]finder
	logger  *slog.Logger
}

// NewService constructs a new [Service] with its repository.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo: repo,
		finders: map[Kind]finder{
			KindYarn:           lift(repo.FindYarn),
			KindNotion:         lift(repo.FindNotion),
			KindFinishedObject: lift(repo.FindFinishedObject),
		},
		logger: logger,
	}
}

// # Resolution

/*
ResolveProduct fetches the product a listing points at.

Description: The kind selects the table through a fixed dispatch map, so no
input ever reaches a SQL identifier.

Parameters:
  - ctx: context.Context
  - kind: Kind (The listing type discriminator)
  - productID: int (Primary key within the variant table)

Returns:
  - Product: The concrete variant record
  - error: ErrUnknownListingType, a NOT_FOUND AppError, or a store error
*/
func (service *Service) ResolveProduct(ctx context.Context, kind Kind, productID int) (Product, error) {
	find, ok := service.finders[kind]
	if !ok {
		return nil, ErrUnknownListingType
	}
	return find(ctx, productID)
}

// ListByOwner returns every product of one kind owned by userID.
func (service *Service) ListByOwner(ctx context.Context, kind Kind, userID int) ([]Product, error) {
	switch kind {
	case KindYarn:
		items, err := service.repo.ListYarnByOwner(ctx, userID)
		return widen(items, err)
	case KindNotion:
		items, err := service.repo.ListNotionsByOwner(ctx, userID)
		return widen(items, err)
	case KindFinishedObject:
		items, err := service.repo.ListFinishedObjectsByOwner(ctx, userID)
		return widen(items, err)
	}
	return nil, ErrUnknownListingType
}

// ListFinishedObjectsBySize returns finished objects with an exact size label.
func (service *Service) ListFinishedObjectsBySize(ctx context.Context, size string) ([]*FinishedObject, error) {
	validator := &validate.Validator{}
	if err := validator.Required(FieldSize, size).Err(); err != nil {
		return nil, err
	}
	return service.repo.ListFinishedObjectsBySize(ctx, size)
}

// ListFinishedObjects returns every finished object in id order.
func (service *Service) ListFinishedObjects(ctx context.Context) ([]*FinishedObject, error) {
	return service.repo.ListFinishedObjects(ctx)
}

/*
FilterYarn returns yarn matching every set criterion.

Description: Price and amount bounds may be given alone or together. Quality
and trade type lists are checked against their enums, the remaining lists are
free text matched exactly.

Parameters:
  - ctx: context.Context
  - filter: YarnFilter

Returns:
  - []*Yarn: Matching yarn in id order
  - error: A VALIDATION_ERROR AppError, or a store error
*/
func (service *Service) FilterYarn(ctx context.Context, filter YarnFilter) ([]*Yarn, error) {
	validator := &validate.Validator{}
	validator.NonNegative(FieldMinPrice, filter.PriceMin).NonNegative(FieldMaxPrice, filter.PriceMax)
	if filter.PriceMin != nil && filter.PriceMax != nil {
		validator.Custom(FieldMinPrice, *filter.PriceMin > *filter.PriceMax, "Must not exceed maxPrice")
	}

	upper := math.MaxInt32
	if filter.AmountMax != nil {
		validator.Range(FieldMaxAmount, *filter.AmountMax, 0, upper)
		upper = *filter.AmountMax
	}
	if filter.AmountMin != nil {
		validator.Range(FieldMinAmount, *filter.AmountMin, 0, upper)
	}

	for _, quality := range filter.Qualities {
		validator.OneOf(FieldQualities, quality, qualityValues...)
	}
	for _, tradeType := range filter.Types {
		validator.OneOf(FieldTypes, tradeType, tradeTypeValues...)
	}

	if err := validator.Err(); err != nil {
		return nil, err
	}
	return service.repo.FilterYarn(ctx, filter)
}

// widen converts a typed slice into a slice of the [Product] interface.
func widen[T Product](items []T, err error) ([]Product, error) {
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(items))
	for _, item := range items {
		products = append(products, item)
	}
	return products, nil
}

// # Product Management

// CreateYarn validates and stores a yarn product.
func (service *Service) CreateYarn(ctx context.Context, yarn *Yarn) error {
	validator := validateCommon(&validate.Validator{}, &yarn.Common)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateYarn(ctx, yarn); err != nil {
		return err
	}

	service.logCreated(yarn)
	return nil
}

// CreateNotion validates and stores a notion.
func (service *Service) CreateNotion(ctx context.Context, notion *Notion) error {
	validator := validateCommon(&validate.Validator{}, &notion.Common)
	validator.Required(FieldName, notion.Name).MaxLen(FieldName, notion.Name, 255)
	if notion.Quantity != nil {
		validator.Custom(FieldQuantity, *notion.Quantity < 0, "Must not be negative")
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateNotion(ctx, notion); err != nil {
		return err
	}

	service.logCreated(notion)
	return nil
}

// CreateFinishedObject validates and stores a finished object.
func (service *Service) CreateFinishedObject(ctx context.Context, object *FinishedObject) error {
	validator := validateCommon(&validate.Validator{}, &object.Common)
	validator.Required(FieldName, object.Name).MaxLen(FieldName, object.Name, 255)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.CreateFinishedObject(ctx, object); err != nil {
		return err
	}

	service.logCreated(object)
	return nil
}

// UpdateYarn validates and overwrites the mutable attributes of a stored yarn.
func (service *Service) UpdateYarn(ctx context.Context, yarn *Yarn) error {
	validator := validateAttributes(&validate.Validator{}, &yarn.Common)
	validator.PositiveID("id", yarn.ID)
	if yarn.Amount != nil {
		validator.Custom(FieldAmount, *yarn.Amount < 0, "Must not be negative")
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateYarn(ctx, yarn); err != nil {
		return err
	}

	service.logger.Info("product_updated",
		slog.String("kind", string(KindYarn)),
		slog.Int("product_id", yarn.ID),
	)
	return nil
}

var (
	qualityValues   = []string{string(QualityNew), string(QualityGood), string(QualityFair), string(QualityWellLoved)}
	tradeTypeValues = []string{string(TradeSell), string(TradeSwap), string(TradeDonate)}
)

// validateCommon checks the attributes every variant shares on creation.
func validateCommon(validator *validate.Validator, common *Common) *validate.Validator {
	validator.PositiveID(FieldUserID, common.UserID)
	return validateAttributes(validator, common)
}

// validateAttributes checks the shared attributes a seller may change.
func validateAttributes(validator *validate.Validator, common *Common) *validate.Validator {
	validator.NonNegative(FieldPrice, common.Price)
	if common.Quality != nil {
		validator.OneOf(FieldQuality, string(*common.Quality), qualityValues...)
	}
	if common.TradeType != nil {
		validator.OneOf(FieldTradeType, string(*common.TradeType), tradeTypeValues...)
	}
	return validator
}

func (service *Service) logCreated(item Product) {
	service.logger.Info("product_created",
		slog.String("kind", string(item.Kind())),
		slog.Int("product_id", item.ProductID()),
		slog.Int("user_id", item.OwnerID()),
	)
}
