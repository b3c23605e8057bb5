// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yarnswap/internal/core/product"
	"github.com/taibuivan/yarnswap/internal/platform/database/schema"
	"github.com/taibuivan/yarnswap/internal/platform/dberr"
	"github.com/taibuivan/yarnswap/internal/platform/postgres"
)

// # PostgreSQL Repository

// PostgresRepository is the pgx implementation of [Repository].
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a listing repository over the shared pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// listingColumns returns the listing columns qualified with alias.
func listingColumns(alias string) string {
	columns := schema.MarketListing.Columns()
	for i, column := range columns {
		columns[i] = alias + "." + column
	}
	return strings.Join(columns, ", ")
}

// # Writes

func (repository *PostgresRepository) Create(ctx context.Context, listing *Listing) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, $3)
		RETURNING %s, %s, %s
	`,
		schema.MarketListing.Table,
		schema.MarketListing.SellerID, schema.MarketListing.ListingType, schema.MarketListing.ProductID,
		schema.MarketListing.ID, schema.MarketListing.Status, schema.MarketListing.CreatedAt,
	)

	err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query,
		listing.SellerID, listing.ListingType, listing.ProductID,
	).Scan(&listing.ID, &listing.Status, &listing.CreatedAt)
	if err != nil {
		// The only foreign key is the seller.
		return dberr.Wrap(err, "Seller", "create_listing")
	}
	return nil
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id int) (*Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s l WHERE l.%s = $1`,
		listingColumns("l"), schema.MarketListing.Table, schema.MarketListing.ID)

	listing, err := scanListing(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Listing", "find_listing")
	}
	return listing, nil
}

func (repository *PostgresRepository) UpdateStatus(ctx context.Context, id int, status Status) (*Listing, error) {
	query := fmt.Sprintf(`UPDATE %s l SET %s = $1 WHERE l.%s = $2 RETURNING %s`,
		schema.MarketListing.Table, schema.MarketListing.Status, schema.MarketListing.ID, listingColumns("l"))

	listing, err := scanListing(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, status, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Listing", "update_listing_status")
	}
	return listing, nil
}

func (repository *PostgresRepository) Delete(ctx context.Context, id int) (*Listing, error) {
	query := fmt.Sprintf(`DELETE FROM %s l WHERE l.%s = $1 RETURNING %s`,
		schema.MarketListing.Table, schema.MarketListing.ID, listingColumns("l"))

	listing, err := scanListing(postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Listing", "delete_listing")
	}
	return listing, nil
}

// # Reads

func (repository *PostgresRepository) List(ctx context.Context) ([]*Listing, error) {
	return repository.listWhere(ctx, "list_listings", "TRUE")
}

func (repository *PostgresRepository) ListByIDs(ctx context.Context, ids []int) ([]*Listing, error) {
	return repository.listWhere(ctx, "list_listings_by_ids",
		fmt.Sprintf("l.%s = ANY($1)", schema.MarketListing.ID), ids)
}

func (repository *PostgresRepository) ListByStatus(ctx context.Context, status Status) ([]*Listing, error) {
	return repository.listWhere(ctx, "list_listings_by_status",
		fmt.Sprintf("l.%s = $1", schema.MarketListing.Status), status)
}

func (repository *PostgresRepository) ListBySeller(ctx context.Context, sellerID int) ([]*Listing, error) {
	return repository.listWhere(ctx, "list_listings_by_seller",
		fmt.Sprintf("l.%s = $1", schema.MarketListing.SellerID), sellerID)
}

func (repository *PostgresRepository) ListArchivedBySeller(ctx context.Context, sellerID int) ([]*Listing, error) {
	return repository.listWhere(ctx, "list_archived_listings",
		fmt.Sprintf("l.%s = $1 AND l.%s = $2", schema.MarketListing.SellerID, schema.MarketListing.Status),
		sellerID, StatusArchived)
}

func (repository *PostgresRepository) ListByType(ctx context.Context, kind product.Kind) ([]*Listing, error) {
	return repository.listWhere(ctx, "list_listings_by_type",
		fmt.Sprintf("l.%s = $1", schema.MarketListing.ListingType), kind)
}

func (repository *PostgresRepository) Search(ctx context.Context, query string) ([]*Listing, error) {
	contains := fmt.Sprintf(postgres.ContainsClause, 1)
	clause := fmt.Sprintf(`
		CAST(l.%s AS TEXT) %s
		OR CAST(l.%s AS TEXT) %s
		OR l.%s %s
	`,
		schema.MarketListing.ProductID, contains,
		schema.MarketListing.SellerID, contains,
		schema.MarketListing.ListingType, contains,
	)

	return repository.listWhere(ctx, "search_listings", clause, postgres.EscapeLike(query))
}

/*
Filter returns yarn listings matching the criteria.

Description: Only yarn carries the filtered attributes, so the query joins the
yarn table on the listing reference and the seller for location. Every
criterion is optional and adds one placeholder.
*/
func (repository *PostgresRepository) Filter(ctx context.Context, filter Filter) ([]*Listing, error) {
	var (
		conditions = []string{fmt.Sprintf("l.%s = $1", schema.MarketListing.ListingType)}
		args       = []any{product.KindYarn}
	)

	add := func(format string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}

	if filter.PriceMin != nil {
		add("y."+schema.ProductYarn.Price+" >= $%d", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		add("y."+schema.ProductYarn.Price+" <= $%d", *filter.PriceMax)
	}
	if filter.Quality != nil {
		add("y."+schema.ProductYarn.Quality+" = $%d", *filter.Quality)
	}
	if filter.Location != nil {
		add("u."+schema.MarketUser.Location+" "+postgres.ContainsClause, postgres.EscapeLike(*filter.Location))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s l
		JOIN %s u ON u.%s = l.%s
		JOIN %s y ON y.%s = l.%s
		WHERE %s
		ORDER BY l.%s ASC
	`,
		listingColumns("l"),
		schema.MarketListing.Table,
		schema.MarketUser.Table, schema.MarketUser.ID, schema.MarketListing.SellerID,
		schema.ProductYarn.Table, schema.ProductYarn.ID, schema.MarketListing.ProductID,
		strings.Join(conditions, " AND "),
		schema.MarketListing.ID,
	)

	return repository.collect(ctx, "filter_listings", query, args...)
}

// # Analytics

func (repository *PostgresRepository) TypeCounts(ctx context.Context) (map[product.Kind]int, int, error) {
	query := fmt.Sprintf(`SELECT %s, COUNT(*) FROM %s GROUP BY %s`,
		schema.MarketListing.ListingType, schema.MarketListing.Table, schema.MarketListing.ListingType)

	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Listing", "listing_type_counts")
	}
	defer rows.Close()

	counts := make(map[product.Kind]int)
	total := 0
	for rows.Next() {
		var (
			kind  product.Kind
			count int
		)
		if err := rows.Scan(&kind, &count); err != nil {
			return nil, 0, dberr.Wrap(err, "Listing", "scan_listing_type_count")
		}
		counts[kind] = count
		total += count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Listing", "listing_type_counts")
	}

	return counts, total, nil
}

// # Row Mapping

// listWhere selects listings matching a WHERE clause built from schema constants.
func (repository *PostgresRepository) listWhere(ctx context.Context, action, clause string, args ...any) ([]*Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s l WHERE %s ORDER BY l.%s ASC`,
		listingColumns("l"), schema.MarketListing.Table, clause, schema.MarketListing.ID)

	return repository.collect(ctx, action, query, args...)
}

func (repository *PostgresRepository) collect(ctx context.Context, action, query string, args ...any) ([]*Listing, error) {
	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Listing", action)
	}

	listings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Listing, error) {
		return scanListing(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Listing", action)
	}
	return listings, nil
}

func scanListing(row pgx.Row) (*Listing, error) {
	listing := &Listing{}
	err := row.Scan(
		&listing.ID, &listing.SellerID, &listing.ListingType,
		&listing.ProductID, &listing.Status, &listing.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return listing, nil
}
