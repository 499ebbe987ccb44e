package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

const regionNameCacheTTL = 24 * time.Hour

// CrawlLogs opens and closes per-region crawl_logs rows. Region code →
// name lookups hit the sido_code/sigu_code tables and are cached in Redis
// when a client is available.
type CrawlLogs struct {
	pool *pgxpool.Pool
	rdb  *redis.Client // optional
}

// NewCrawlLogs constructs the crawl log repository. rdb may be nil.
func NewCrawlLogs(pool *pgxpool.Pool, rdb *redis.Client) *CrawlLogs {
	return &CrawlLogs{pool: pool, rdb: rdb}
}

// Start inserts a crawl_logs row for one region and returns its id.
func (r *CrawlLogs) Start(ctx context.Context, region model.RegionTarget) (int64, error) {
	sidoName := r.regionName(ctx, "sido_code", "sido_name", region.SidoCode)
	// The sigu_code table keys rows by the full sido+sigu concatenation.
	siguName := r.regionName(ctx, "sigu_code", "sigu_name", region.SidoCode+region.SiguCode)

	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO crawl_logs (sido_code, sigu_code, sido_name, sigu_name, started_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id`,
		region.SidoCode, region.SiguCode, sidoName, siguName,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert crawl log: %w", err)
	}
	return id, nil
}

// Finish closes the crawl_logs row with the detected counts.
func (r *CrawlLogs) Finish(ctx context.Context, logID int64, newCount, updatedCount int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE crawl_logs
		 SET ended_at = NOW(), new_count = $1, updated_count = $2
		 WHERE id = $3`,
		newCount, updatedCount, logID,
	)
	if err != nil {
		return fmt.Errorf("finish crawl log %d: %w", logID, err)
	}
	return nil
}

// Latest returns the most recently started crawl log, or nil when none
// exist yet.
func (r *CrawlLogs) Latest(ctx context.Context) (*model.CrawlLog, error) {
	logs, err := r.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return &logs[0], nil
}

// Recent returns up to limit crawl logs, newest first.
func (r *CrawlLogs) Recent(ctx context.Context, limit int) ([]model.CrawlLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, sido_code, sigu_code, COALESCE(sido_name, ''), COALESCE(sigu_name, ''),
		        started_at, ended_at, COALESCE(new_count, 0), COALESCE(updated_count, 0)
		 FROM crawl_logs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query crawl logs: %w", err)
	}
	defer rows.Close()

	var logs []model.CrawlLog
	for rows.Next() {
		var l model.CrawlLog
		if err := rows.Scan(
			&l.ID, &l.SidoCode, &l.SiguCode, &l.SidoName, &l.SiguName,
			&l.StartedAt, &l.EndedAt, &l.NewCount, &l.UpdatedCount,
		); err != nil {
			return nil, fmt.Errorf("scan crawl log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// regionName resolves a region code to its display name. Misses are not
// errors — the log row simply stores an empty name.
func (r *CrawlLogs) regionName(ctx context.Context, table, column, code string) string {
	cacheKey := "courtauction:region:" + table + ":" + code

	if r.rdb != nil {
		if name, err := r.rdb.Get(ctx, cacheKey).Result(); err == nil {
			return name
		}
	}

	var name string
	err := r.pool.QueryRow(ctx,
		// table/column names come from the two call sites above, never user input
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, column, table, table),
		code,
	).Scan(&name)
	if err != nil {
		return ""
	}

	if r.rdb != nil {
		r.rdb.Set(ctx, cacheKey, name, regionNameCacheTTL)
	}
	return name
}
