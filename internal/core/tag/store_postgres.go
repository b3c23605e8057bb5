// Copyright (c) 2026 Yarnswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package tag

import (
	"context"
	"fmt"

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

// NewPostgresRepository creates a tag repository over the shared pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// # Tags

func (repository *PostgresRepository) ListTags(ctx context.Context) ([]*Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s ORDER BY %s ASC, %s ASC`,
		schema.MarketTag.ID, schema.MarketTag.Name, schema.MarketTag.Table,
		schema.MarketTag.Name, schema.MarketTag.ID)

	return repository.queryTags(ctx, "list_tags", query)
}

func (repository *PostgresRepository) FindByID(ctx context.Context, id int) (*Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		schema.MarketTag.ID, schema.MarketTag.Name, schema.MarketTag.Table, schema.MarketTag.ID)

	tag := &Tag{}
	if err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id).Scan(&tag.ID, &tag.Name); err != nil {
		return nil, dberr.Wrap(err, "Tag", "find_tag")
	}
	return tag, nil
}

func (repository *PostgresRepository) FindByNames(ctx context.Context, names []string) ([]*Tag, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ANY($1)`,
		schema.MarketTag.ID, schema.MarketTag.Name, schema.MarketTag.Table, schema.MarketTag.Name)

	return repository.queryTags(ctx, "find_tags_by_name", query, names)
}

func (repository *PostgresRepository) InsertMissing(ctx context.Context, names []string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		SELECT UNNEST($1::text[])
		ON CONFLICT (%s) DO NOTHING
	`, schema.MarketTag.Table, schema.MarketTag.Name, schema.MarketTag.Name)

	if _, err := postgres.Conn(ctx, repository.pool).Exec(ctx, query, names); err != nil {
		return dberr.Wrap(err, "Tag", "insert_tags")
	}
	return nil
}

func (repository *PostgresRepository) NameTakenByOther(ctx context.Context, name string, excludeID int) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE LOWER(%s) = LOWER($1) AND %s <> $2)`,
		schema.MarketTag.Table, schema.MarketTag.Name, schema.MarketTag.ID)

	var taken bool
	if err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, name, excludeID).Scan(&taken); err != nil {
		return false, dberr.Wrap(err, "Tag", "check_tag_name")
	}
	return taken, nil
}

func (repository *PostgresRepository) Rename(ctx context.Context, id int, name string) (*Tag, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2 RETURNING %s, %s`,
		schema.MarketTag.Table, schema.MarketTag.Name, schema.MarketTag.ID,
		schema.MarketTag.ID, schema.MarketTag.Name)

	tag := &Tag{}
	if err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, name, id).Scan(&tag.ID, &tag.Name); err != nil {
		return nil, dberr.Wrap(err, "Tag", "rename_tag")
	}
	return tag, nil
}

func (repository *PostgresRepository) Delete(ctx context.Context, id int) (*Tag, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 RETURNING %s, %s`,
		schema.MarketTag.Table, schema.MarketTag.ID, schema.MarketTag.ID, schema.MarketTag.Name)

	tag := &Tag{}
	if err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, id).Scan(&tag.ID, &tag.Name); err != nil {
		return nil, dberr.Wrap(err, "Tag", "delete_tag")
	}
	return tag, nil
}

// # Associations

func (repository *PostgresRepository) Attach(ctx context.Context, listingID int, tagIDs []int) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) ON CONFLICT (%s, %s) DO NOTHING`,
		schema.MarketListingTag.Table, schema.MarketListingTag.ListingID, schema.MarketListingTag.TagID,
		schema.MarketListingTag.ListingID, schema.MarketListingTag.TagID)

	batch := &pgx.Batch{}
	for _, tagID := range tagIDs {
		batch.Queue(query, listingID, tagID)
	}

	// The junction references both tables; a missing row means the tag or listing is unknown.
	if err := postgres.Conn(ctx, repository.pool).SendBatch(ctx, batch).Close(); err != nil {
		return dberr.Wrap(err, "Tag or listing", "attach_tags")
	}
	return nil
}

func (repository *PostgresRepository) Detach(ctx context.Context, listingID, tagID int) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.MarketListingTag.Table, schema.MarketListingTag.ListingID, schema.MarketListingTag.TagID)

	result, err := postgres.Conn(ctx, repository.pool).Exec(ctx, query, listingID, tagID)
	if err != nil {
		return false, dberr.Wrap(err, "Listing tag", "detach_tag")
	}
	return result.RowsAffected() > 0, nil
}

func (repository *PostgresRepository) ClearListing(ctx context.Context, listingID int) (int, error) {
	return repository.clearWhere(ctx, schema.MarketListingTag.ListingID, listingID)
}

func (repository *PostgresRepository) ClearTag(ctx context.Context, tagID int) (int, error) {
	return repository.clearWhere(ctx, schema.MarketListingTag.TagID, tagID)
}

func (repository *PostgresRepository) clearWhere(ctx context.Context, column string, id int) (int, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.MarketListingTag.Table, column)

	result, err := postgres.Conn(ctx, repository.pool).Exec(ctx, query, id)
	if err != nil {
		return 0, dberr.Wrap(err, "Listing tag", "clear_listing_tags")
	}
	return int(result.RowsAffected()), nil
}

func (repository *PostgresRepository) TagsForListing(ctx context.Context, listingID int) ([]*Tag, error) {
	query := fmt.Sprintf(`
		SELECT t.%s, t.%s
		FROM %s t
		JOIN %s lt ON lt.%s = t.%s
		WHERE lt.%s = $1
		ORDER BY t.%s ASC
	`,
		schema.MarketTag.ID, schema.MarketTag.Name,
		schema.MarketTag.Table,
		schema.MarketListingTag.Table, schema.MarketListingTag.TagID, schema.MarketTag.ID,
		schema.MarketListingTag.ListingID,
		schema.MarketTag.ID,
	)

	return repository.queryTags(ctx, "tags_for_listing", query, listingID)
}

// # Reverse Lookups

func (repository *PostgresRepository) ListingIDsByName(ctx context.Context, name string) ([]int, error) {
	query := fmt.Sprintf(`
		SELECT lt.%s
		FROM %s lt
		JOIN %s t ON t.%s = lt.%s
		WHERE t.%s = $1
		ORDER BY lt.%s ASC
	`,
		schema.MarketListingTag.ListingID,
		schema.MarketListingTag.Table,
		schema.MarketTag.Table, schema.MarketTag.ID, schema.MarketListingTag.TagID,
		schema.MarketTag.Name,
		schema.MarketListingTag.ListingID,
	)

	return repository.queryIDs(ctx, "listings_by_tag_name", query, name)
}

func (repository *PostgresRepository) ListingIDsByTagID(ctx context.Context, tagID int) ([]int, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s ASC`,
		schema.MarketListingTag.ListingID, schema.MarketListingTag.Table,
		schema.MarketListingTag.TagID, schema.MarketListingTag.ListingID)

	return repository.queryIDs(ctx, "listings_by_tag_id", query, tagID)
}

func (repository *PostgresRepository) SearchListingIDs(ctx context.Context, fragment string) ([]int, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT lt.%s
		FROM %s lt
		JOIN %s t ON t.%s = lt.%s
		WHERE t.%s %s
		ORDER BY lt.%s ASC
	`,
		schema.MarketListingTag.ListingID,
		schema.MarketListingTag.Table,
		schema.MarketTag.Table, schema.MarketTag.ID, schema.MarketListingTag.TagID,
		schema.MarketTag.Name, fmt.Sprintf(postgres.ContainsClause, 1),
		schema.MarketListingTag.ListingID,
	)

	return repository.queryIDs(ctx, "search_listings_by_tag", query, postgres.EscapeLike(fragment))
}

// # Analytics

func (repository *PostgresRepository) UsageCount(ctx context.Context, tagID int) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`,
		schema.MarketListingTag.Table, schema.MarketListingTag.TagID)

	var count int
	if err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, query, tagID).Scan(&count); err != nil {
		return 0, dberr.Wrap(err, "Tag", "tag_usage_count")
	}
	return count, nil
}

func (repository *PostgresRepository) TopTags(ctx context.Context, limit int) ([]*Usage, error) {
	query := fmt.Sprintf(`%s ORDER BY usage_count DESC, t.%s ASC LIMIT $1`, usageSelect(), schema.MarketTag.ID)

	return repository.queryUsage(ctx, "top_tags", query, limit)
}

func (repository *PostgresRepository) UsageCounts(ctx context.Context) ([]*Usage, int, error) {
	usage, err := repository.queryUsage(ctx, "tag_usage_counts",
		fmt.Sprintf(`%s ORDER BY usage_count DESC, t.%s ASC`, usageSelect(), schema.MarketTag.ID))
	if err != nil {
		return nil, 0, err
	}

	var total int
	totalQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.MarketListing.Table)
	if err := postgres.Conn(ctx, repository.pool).QueryRow(ctx, totalQuery).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Listing", "count_listings")
	}

	return usage, total, nil
}

// usageSelect counts associations per tag, keeping unused tags at zero.
func usageSelect() string {
	return fmt.Sprintf(`
		SELECT t.%s, t.%s, COUNT(lt.%s) AS usage_count
		FROM %s t
		LEFT JOIN %s lt ON lt.%s = t.%s
		GROUP BY t.%s, t.%s
	`,
		schema.MarketTag.ID, schema.MarketTag.Name, schema.MarketListingTag.ListingID,
		schema.MarketTag.Table,
		schema.MarketListingTag.Table, schema.MarketListingTag.TagID, schema.MarketTag.ID,
		schema.MarketTag.ID, schema.MarketTag.Name,
	)
}

// # Row Mapping

func (repository *PostgresRepository) queryTags(ctx context.Context, action, query string, args ...any) ([]*Tag, error) {
	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag", action)
	}

	tags, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Tag, error) {
		tag := &Tag{}
		return tag, row.Scan(&tag.ID, &tag.Name)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Tag", action)
	}
	return tags, nil
}

func (repository *PostgresRepository) queryIDs(ctx context.Context, action, query string, args ...any) ([]int, error) {
	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Listing tag", action)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, dberr.Wrap(err, "Listing tag", action)
	}
	return ids, nil
}

func (repository *PostgresRepository) queryUsage(ctx context.Context, action, query string, args ...any) ([]*Usage, error) {
	rows, err := postgres.Conn(ctx, repository.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "Tag", action)
	}

	usage, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Usage, error) {
		item := &Usage{}
		return item, row.Scan(&item.ID, &item.Name, &item.Count)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Tag", action)
	}
	return usage, nil
}
