// Package crawler implements the crawl-and-reconcile engine: it queries
// the court-auction search API per monitored region, classifies each raw
// result as new, changed or unchanged against previously stored state, and
// produces the new/updated output sets for persistence and notification.
package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/courtauction"
	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

// ImageSource resolves the picture list for a case. A nil/empty return
// means the case has no publicly noticed images.
type ImageSource interface {
	ListImages(ctx context.Context, caseID, courtCode string, region model.RegionTarget) []courtauction.ImageAsset
}

// ImageStore persists the representative asset of a case and returns its
// public URL. ok is false when no asset was available.
type ImageStore interface {
	PersistRepresentative(assets []courtauction.ImageAsset) (url string, ok bool, err error)
}

// Reconciler classifies raw search results against stored records.
type Reconciler struct {
	images ImageSource
	store  ImageStore
	log    *slog.Logger
	now    func() time.Time
}

// NewReconciler constructs a Reconciler.
func NewReconciler(images ImageSource, store ImageStore, log *slog.Logger) *Reconciler {
	return &Reconciler{images: images, store: store, log: log, now: time.Now}
}

// Reconcile processes one region's raw results against the existing
// records (pre-filtered to the crawl window by the caller; no date
// filtering happens here) and returns the new records and partial updates.
//
// Per result:
//   - unknown case_id with at least one resolvable image → full new record
//   - unknown case_id with zero images → skipped entirely (the site only
//     publishes images for actively noticed listings)
//   - known case_id with unchanged failed-bid count → no output
//   - known case_id with changed failed-bid count → partial update
//
// A known case whose other fields (address, price) drifted without a
// failed-bid-count change produces no update; that silent drop matches the
// long-standing behaviour of the crawler and is intentional.
//
// Duplicate case_ids within one batch violate the data contract; they are
// processed independently against the same snapshot of existing records.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	region model.RegionTarget,
	results []courtauction.SearchResult,
	existing []model.AuctionRecord,
) (newAuctions []model.AuctionRecord, updatedAuctions []model.AuctionUpdate) {
	// Index once per call; the per-cycle volumes are modest but there is
	// no reason to rescan the slice per result.
	byCaseID := make(map[string]*model.AuctionRecord, len(existing))
	for i := range existing {
		byCaseID[existing[i].CaseID] = &existing[i]
	}

	for _, raw := range results {
		failedCount := atoiOr(raw.FailedBidCount, 0)
		status := model.StatusNewCase
		if failedCount > 0 {
			status = model.StatusFailedBid
		}

		stored, known := byCaseID[raw.CaseID]
		if !known {
			rec, ok := r.buildNewRecord(ctx, region, raw, status, failedCount)
			if !ok {
				continue
			}
			newAuctions = append(newAuctions, rec)
			continue
		}

		if failedCount == stored.FailedAuctionCount {
			continue // unchanged — the common case on every cycle
		}

		updatedAuctions = append(updatedAuctions, model.AuctionUpdate{
			ID:                 stored.ID,
			MinimumPrice:       raw.MinimumPrice,
			Status:             status,
			FailedAuctionCount: failedCount,
			UpdatedAt:          r.now(),
		})
	}

	return newAuctions, updatedAuctions
}

func (r *Reconciler) buildNewRecord(
	ctx context.Context,
	region model.RegionTarget,
	raw courtauction.SearchResult,
	status string,
	failedCount int,
) (model.AuctionRecord, bool) {
	assets := r.images.ListImages(ctx, raw.CaseID, raw.CourtCode, region)
	if len(assets) == 0 {
		// Not an error: absence of images means the listing is not (or no
		// longer) publicly noticed, so it is excluded from the output.
		r.log.Debug("crawler: skipping case without images", "case_id", raw.CaseID)
		return model.AuctionRecord{}, false
	}

	thumbnailURL, ok, err := r.store.PersistRepresentative(assets)
	if err != nil {
		r.log.Warn("crawler: failed to persist thumbnail, skipping case",
			"case_id", raw.CaseID, "error", err)
		return model.AuctionRecord{}, false
	}
	if !ok {
		return model.AuctionRecord{}, false
	}

	now := r.now()
	return model.AuctionRecord{
		CaseID:             raw.CaseID,
		Court:              raw.CourtName,
		Category:           raw.Category,
		Address:            raw.Address,
		Area:               extractArea(raw.BuildingDetail),
		EstimatedPrice:     raw.EstimatedPrice,
		MinimumPrice:       raw.MinimumPrice,
		Etc:                raw.Remarks,
		Status:             status,
		FailedAuctionCount: failedCount,
		AuctionDate:        dottedDate(raw.AuctionDateCompact),
		SidoCode:           region.SidoCode,
		SiguCode:           region.SiguCode,
		ThumbnailSrc:       thumbnailURL,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, true
}
