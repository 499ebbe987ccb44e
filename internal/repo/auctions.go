// Package repo contains the PostgreSQL implementations of the repository
// interfaces the crawler and notification services consume.
package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// Auctions persists auction records.
type Auctions struct {
	pool *pgxpool.Pool
}

// NewAuctions constructs the auctions repository.
func NewAuctions(pool *pgxpool.Pool) *Auctions {
	return &Auctions{pool: pool}
}

const auctionColumns = `id, case_id, court, category, address, area,
	estimated_price, minimum_price, etc, status, failed_auction_count,
	auction_date, sido_code, sigu_code, thumbnail_src, created_at, updated_at`

// FetchByDateRange returns records created inside [start, end], the
// pre-filter the reconciliation engine compares fresh results against.
func (r *Auctions) FetchByDateRange(ctx context.Context, start, end time.Time) ([]model.AuctionRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+auctionColumns+`
		 FROM auctions
		 WHERE created_at >= $1 AND created_at <= $2`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("query auctions by date range: %w", err)
	}
	defer rows.Close()

	var records []model.AuctionRecord
	for rows.Next() {
		rec, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertMany stores the new records and returns their assigned ids in
// input order.
func (r *Auctions) InsertMany(ctx context.Context, records []model.AuctionRecord) ([]int64, error) {
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO auctions
			   (case_id, court, category, address, area, estimated_price,
			    minimum_price, etc, status, failed_auction_count, auction_date,
			    sido_code, sigu_code, thumbnail_src, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			 RETURNING id`,
			rec.CaseID, rec.Court, rec.Category, rec.Address, rec.Area,
			rec.EstimatedPrice, rec.MinimumPrice, rec.Etc, rec.Status,
			rec.FailedAuctionCount, rec.AuctionDate, rec.SidoCode, rec.SiguCode,
			rec.ThumbnailSrc, rec.CreatedAt, rec.UpdatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	ids := make([]int64, 0, len(records))
	for range records {
		var id int64
		if err := results.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("insert auction: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// UpdateByID applies the partial status update to one record.
func (r *Auctions) UpdateByID(ctx context.Context, update model.AuctionUpdate, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE auctions
		 SET minimum_price = $1, status = $2, failed_auction_count = $3, updated_at = $4
		 WHERE id = $5`,
		update.MinimumPrice, update.Status, update.FailedAuctionCount, update.UpdatedAt, id,
	)
	if err != nil {
		return fmt.Errorf("update auction %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update auction %d: no such record", id)
	}
	return nil
}

func scanAuction(rows pgx.Rows) (model.AuctionRecord, error) {
	var rec model.AuctionRecord
	err := rows.Scan(
		&rec.ID, &rec.CaseID, &rec.Court, &rec.Category, &rec.Address, &rec.Area,
		&rec.EstimatedPrice, &rec.MinimumPrice, &rec.Etc, &rec.Status,
		&rec.FailedAuctionCount, &rec.AuctionDate, &rec.SidoCode, &rec.SiguCode,
		&rec.ThumbnailSrc, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}
