// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yarnswap/internal/platform/database/schema"
	"github.com/taibuivan/yarnswap/internal/platform/dberr"
	"github.com/taibuivan/yarnswap/internal/platform/postgres"
)

// # PostgreSQL Repository

// PostgresRepository is the pgx implementation of [Repository].
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a product repository over the shared pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	yarnColumns = strings.Join([]string{
		schema.ProductYarn.ID, schema.ProductYarn.Pictures, schema.ProductYarn.Quality,
		schema.ProductYarn.TradeType, schema.ProductYarn.Price, schema.ProductYarn.Location,
		schema.ProductYarn.UserID, schema.ProductYarn.Description, schema.ProductYarn.CreatedAt,
		schema.ProductYarn.Brand, schema.ProductYarn.Amount, schema.ProductYarn.LengthYards,
		schema.ProductYarn.LengthMeters, schema.ProductYarn.Weight, schema.ProductYarn.Color,
		schema.ProductYarn.Composition, schema.ProductYarn.NeedleSize, schema.ProductYarn.HookSize,
	}, ", ")

	// yarnMutableColumns is the SET list of UpdateYarn, in bind order.
	yarnMutableColumns = []string{
		schema.ProductYarn.Pictures, schema.ProductYarn.Quality, schema.ProductYarn.TradeType,
		schema.ProductYarn.Price, schema.ProductYarn.Location, schema.ProductYarn.Description,
		schema.ProductYarn.Brand, schema.ProductYarn.Amount, schema.ProductYarn.LengthYards,
		schema.ProductYarn.LengthMeters, schema.ProductYarn.Weight, schema.ProductYarn.Color,
		schema.ProductYarn.Composition, schema.ProductYarn.NeedleSize, schema.ProductYarn.HookSize,
	}

	notionColumns = strings.Join([]string{
		schema.ProductNotion.ID, schema.ProductNotion.Pictures, schema.ProductNotion.Quality,
		schema.ProductNotion.TradeType, schema.ProductNotion.Price, schema.ProductNotion.Location,
		schema.ProductNotion.UserID, schema.ProductNotion.Description, schema.ProductNotion.CreatedAt,
		schema.ProductNotion.Name, schema.ProductNotion.Quantity,
	}, ", ")

	finishedObjectColumns = strings.Join([]string{
		schema.ProductFinishedObject.ID, schema.ProductFinishedObject.Pictures, schema.ProductFinishedObject.Quality,
		schema.ProductFinishedObject.TradeType, schema.ProductFinishedObject.Price, schema.ProductFinishedObject.Location,
		schema.ProductFinishedObject.UserID, schema.ProductFinishedObject.Description, schema.ProductFinishedObject.CreatedAt,
		schema.ProductFinishedObject.Name, schema.ProductFinishedObject.Size,
	}, ", ")
)

// # Yarn

func (repository *PostgresRepository) FindYarn(ctx context.Context, id int) (*Yarn, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		yarnColumns, schema.ProductYarn.Table, schema.ProductYarn.ID)

	yarn, err := scanYarn(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Yarn", "find_yarn")
	}
	return yarn, nil
}

func (repository *PostgresRepository) CreateYarn(ctx context.Context, yarn *Yarn) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING %s, %s
	`,
		schema.ProductYarn.Table,
		schema.ProductYarn.Pictures, schema.ProductYarn.Quality, schema.ProductYarn.TradeType,
		schema.ProductYarn.Price, schema.ProductYarn.Location, schema.ProductYarn.UserID,
		schema.ProductYarn.Description, schema.ProductYarn.Brand, schema.ProductYarn.Amount,
		schema.ProductYarn.LengthYards, schema.ProductYarn.LengthMeters, schema.ProductYarn.Weight,
		schema.ProductYarn.Color, schema.ProductYarn.Composition, schema.ProductYarn.NeedleSize,
		schema.ProductYarn.HookSize,
		schema.ProductYarn.ID, schema.ProductYarn.CreatedAt,
	)

	err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query,
		pictures(yarn.Pictures), yarn.Quality, yarn.TradeType,
		yarn.Price, yarn.Location, yarn.UserID,
		yarn.Description, yarn.Brand, yarn.Amount,
		yarn.LengthYards, yarn.LengthMeters, yarn.Weight,
		yarn.Color, yarn.Composition, yarn.NeedleSize,
		yarn.HookSize,
	).Scan(&yarn.ID, &yarn.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "Yarn", "create_yarn")
	}
	return nil
}

func (repository *PostgresRepository) ListYarnByOwner(ctx context.Context, userID int) ([]*Yarn, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		yarnColumns, schema.ProductYarn.Table, schema.ProductYarn.UserID, schema.ProductYarn.ID)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Yarn", "list_yarn_by_owner")
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Yarn, error) {
		return scanYarn(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Yarn", "scan_yarn")
	}
	return items, nil
}

func (repository *PostgresRepository) UpdateYarn(ctx context.Context, yarn *Yarn) error {
	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1 RETURNING %s`,
		schema.ProductYarn.Table, assignments(yarnMutableColumns, 2), schema.ProductYarn.ID, yarnColumns)

	updated, err := scanYarn(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query,
		yarn.ID,
		pictures(yarn.Pictures), yarn.Quality, yarn.TradeType,
		yarn.Price, yarn.Location, yarn.Description,
		yarn.Brand, yarn.Amount, yarn.LengthYards,
		yarn.LengthMeters, yarn.Weight, yarn.Color,
		yarn.Composition, yarn.NeedleSize, yarn.HookSize,
	))
	if err != nil {
		return dberr.Wrap(err, "Yarn", "update_yarn")
	}

	*yarn = *updated
	return nil
}

/*
FilterYarn returns yarn matching every set criterion of filter.

Description: List criteria bind as a single text[] placeholder compared with
= ANY, so the statement shape depends only on which criteria are set. An
empty filter returns all yarn.
*/
func (repository *PostgresRepository) FilterYarn(ctx context.Context, filter YarnFilter) ([]*Yarn, error) {
	var (
		conditions []string
		args       []any
	)

	add := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}
	anyOf := func(column string, values []string) {
		if len(values) > 0 {
			add(column+" = ANY($%d)", values)
		}
	}

	if filter.PriceMin != nil {
		add(schema.ProductYarn.Price+" >= $%d", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		add(schema.ProductYarn.Price+" <= $%d", *filter.PriceMax)
	}
	if filter.AmountMin != nil {
		add(schema.ProductYarn.Amount+" >= $%d", *filter.AmountMin)
	}
	if filter.AmountMax != nil {
		add(schema.ProductYarn.Amount+" <= $%d", *filter.AmountMax)
	}
	if filter.Weight != nil {
		add(schema.ProductYarn.Weight+" = $%d", *filter.Weight)
	}

	anyOf(schema.ProductYarn.Brand, filter.Brands)
	anyOf(schema.ProductYarn.Color, filter.Colors)
	anyOf(schema.ProductYarn.Quality, filter.Qualities)
	anyOf(schema.ProductYarn.Composition, filter.Compositions)
	anyOf(schema.ProductYarn.TradeType, filter.Types)
	anyOf(schema.ProductYarn.Location, filter.Locations)
	anyOf(schema.ProductYarn.NeedleSize, filter.NeedleSizes)
	anyOf(schema.ProductYarn.HookSize, filter.HookSizes)

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s ASC`,
		yarnColumns, schema.ProductYarn.Table, where, schema.ProductYarn.ID)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Yarn", "filter_yarn")
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Yarn, error) {
		return scanYarn(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Yarn", "scan_yarn")
	}
	return items, nil
}

// # Notions

func (repository *PostgresRepository) FindNotion(ctx context.Context, id int) (*Notion, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		notionColumns, schema.ProductNotion.Table, schema.ProductNotion.ID)

	notion, err := scanNotion(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Notion", "find_notion")
	}
	return notion, nil
}

func (repository *PostgresRepository) CreateNotion(ctx context.Context, notion *Notion) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s
	`,
		schema.ProductNotion.Table,
		schema.ProductNotion.Pictures, schema.ProductNotion.Name, schema.ProductNotion.Quantity,
		schema.ProductNotion.Quality, schema.ProductNotion.TradeType, schema.ProductNotion.Price,
		schema.ProductNotion.Location, schema.ProductNotion.UserID, schema.ProductNotion.Description,
		schema.ProductNotion.ID, schema.ProductNotion.CreatedAt,
	)

	err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query,
		pictures(notion.Pictures), notion.Name, notion.Quantity,
		notion.Quality, notion.TradeType, notion.Price,
		notion.Location, notion.UserID, notion.Description,
	).Scan(&notion.ID, &notion.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "Notion", "create_notion")
	}
	return nil
}

func (repository *PostgresRepository) ListNotionsByOwner(ctx context.Context, userID int) ([]*Notion, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		notionColumns, schema.ProductNotion.Table, schema.ProductNotion.UserID, schema.ProductNotion.ID)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "Notion", "list_notions_by_owner")
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Notion, error) {
		return scanNotion(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Notion", "scan_notion")
	}
	return items, nil
}

// # Finished Objects

func (repository *PostgresRepository) FindFinishedObject(ctx context.Context, id int) (*FinishedObject, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		finishedObjectColumns, schema.ProductFinishedObject.Table, schema.ProductFinishedObject.ID)

	object, err := scanFinishedObject(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Finished object", "find_finished_object")
	}
	return object, nil
}

func (repository *PostgresRepository) CreateFinishedObject(ctx context.Context, object *FinishedObject) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s, %s
	`,
		schema.ProductFinishedObject.Table,
		schema.ProductFinishedObject.Pictures, schema.ProductFinishedObject.Name, schema.ProductFinishedObject.Size,
		schema.ProductFinishedObject.Quality, schema.ProductFinishedObject.TradeType, schema.ProductFinishedObject.Price,
		schema.ProductFinishedObject.Location, schema.ProductFinishedObject.UserID, schema.ProductFinishedObject.Description,
		schema.ProductFinishedObject.ID, schema.ProductFinishedObject.CreatedAt,
	)

	err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query,
		pictures(object.Pictures), object.Name, object.Size,
		object.Quality, object.TradeType, object.Price,
		object.Location, object.UserID, object.Description,
	).Scan(&object.ID, &object.CreatedAt)
	if err != nil {
		return dberr.Wrap(err, "Finished object", "create_finished_object")
	}
	return nil
}

func (repository *PostgresRepository) ListFinishedObjects(ctx context.Context) ([]*FinishedObject, error) {
	return repository.listFinishedObjects(ctx, "")
}

func (repository *PostgresRepository) ListFinishedObjectsByOwner(ctx context.Context, userID int) ([]*FinishedObject, error) {
	return repository.listFinishedObjects(ctx, schema.ProductFinishedObject.UserID, userID)
}

func (repository *PostgresRepository) ListFinishedObjectsBySize(ctx context.Context, size string) ([]*FinishedObject, error) {
	return repository.listFinishedObjects(ctx, schema.ProductFinishedObject.Size, size)
}

// listFinishedObjects filters on a single column taken from the schema
// package. An empty column lists the whole table.
func (repository *PostgresRepository) listFinishedObjects(ctx context.Context, column string, args ...any) ([]*FinishedObject, error) {
	where := ""
	if column != "" {
		where = fmt.Sprintf("WHERE %s = $1", column)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s ASC`,
		finishedObjectColumns, schema.ProductFinishedObject.Table, where, schema.ProductFinishedObject.ID)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Finished object", "list_finished_objects")
	}

	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*FinishedObject, error) {
		return scanFinishedObject(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Finished object", "scan_finished_object")
	}
	return items, nil
}

// # Row Mapping

func scanCommon(common *Common) []any {
	return []any{
		&common.ID, &common.Pictures, &common.Quality,
		&common.TradeType, &common.Price, &common.Location,
		&common.UserID, &common.Description, &common.CreatedAt,
	}
}

func scanYarn(row pgx.Row) (*Yarn, error) {
	yarn := &Yarn{}
	targets := append(scanCommon(&yarn.Common),
		&yarn.Brand, &yarn.Amount, &yarn.LengthYards,
		&yarn.LengthMeters, &yarn.Weight, &yarn.Color,
		&yarn.Composition, &yarn.NeedleSize, &yarn.HookSize,
	)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return yarn, nil
}

func scanNotion(row pgx.Row) (*Notion, error) {
	notion := &Notion{}
	targets := append(scanCommon(&notion.Common), &notion.Name, &notion.Quantity)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return notion, nil
}

func scanFinishedObject(row pgx.Row) (*FinishedObject, error) {
	object := &FinishedObject{}
	targets := append(scanCommon(&object.Common), &object.Name, &object.Size)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	return object, nil
}

// assignments renders "column = $n" pairs numbered from offset.
func assignments(columns []string, offset int) string {
	pairs := make([]string, len(columns))
	for i, column := range columns {
		pairs[i] = fmt.Sprintf("%s = $%d", column, i+offset)
	}
	return strings.Join(pairs, ", ")
}

// pictures keeps the NOT NULL array column satisfied when no images were sent.
func pictures(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}
