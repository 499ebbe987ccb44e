package crawler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/courtauction"
	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

type fakeSearch struct {
	byRegion map[model.RegionTarget][]courtauction.SearchResult
	errFor   map[model.RegionTarget]error
	queried  []model.RegionTarget
}

func (f *fakeSearch) Search(ctx context.Context, region model.RegionTarget, start, end time.Time) ([]courtauction.SearchResult, error) {
	f.queried = append(f.queried, region)
	if err := f.errFor[region]; err != nil {
		return nil, err
	}
	return f.byRegion[region], nil
}

type fakeAuctionRepo struct {
	existing  []model.AuctionRecord
	fetchErr  error
	inserted  []model.AuctionRecord
	insertErr error
	updates   []model.AuctionUpdate
}

func (f *fakeAuctionRepo) FetchByDateRange(ctx context.Context, start, end time.Time) ([]model.AuctionRecord, error) {
	return f.existing, f.fetchErr
}

func (f *fakeAuctionRepo) InsertMany(ctx context.Context, records []model.AuctionRecord) ([]int64, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, records...)
	ids := make([]int64, len(records))
	for i := range records {
		ids[i] = int64(100 + i)
	}
	return ids, nil
}

func (f *fakeAuctionRepo) UpdateByID(ctx context.Context, update model.AuctionUpdate, id int64) error {
	f.updates = append(f.updates, update)
	return nil
}

type fakeNotifier struct {
	received []model.AuctionRecord
}

func (f *fakeNotifier) ProcessNewAuctions(ctx context.Context, auctions []model.AuctionRecord) {
	f.received = append(f.received, auctions...)
}

type staticTargets []model.RegionTarget

func (s staticTargets) Targets(ctx context.Context) []model.RegionTarget { return s }

func newCycleCrawler(search *fakeSearch, repo *fakeAuctionRepo, notifier *fakeNotifier, targets []model.RegionTarget) *Crawler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	images := &fakeImageSource{byCase: map[string][]courtauction.ImageAsset{
		"2024타경1001": oneImage("2024타경1001"),
		"2024타경2001": oneImage("2024타경2001"),
	}}
	rec := NewReconciler(images, &fakeImageStore{}, log)
	return New(search, rec, repo, staticTargets(targets), Options{Notifier: notifier}, log)
}

func TestRun_PersistsNewAndNotifiesWithAssignedIDs(t *testing.T) {
	region := model.RegionTarget{SidoCode: "26", SiguCode: "350"}
	search := &fakeSearch{byRegion: map[model.RegionTarget][]courtauction.SearchResult{
		region: {rawResult("2024타경1001", "0")},
	}}
	repo := &fakeAuctionRepo{}
	notifier := &fakeNotifier{}
	c := newCycleCrawler(search, repo, notifier, []model.RegionTarget{region})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.NewCount != 1 || summary.UpdatedCount != 0 {
		t.Errorf("summary = %+v, want 1 new / 0 updated", summary)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(repo.inserted))
	}
	if len(notifier.received) != 1 {
		t.Fatalf("notifier received %d auctions, want 1", len(notifier.received))
	}
	if notifier.received[0].ID != 100 {
		t.Errorf("notified auction ID = %d, want store-assigned 100", notifier.received[0].ID)
	}
}

func TestRun_AppliesPartialUpdates(t *testing.T) {
	region := model.RegionTarget{SidoCode: "26", SiguCode: "350"}
	search := &fakeSearch{byRegion: map[model.RegionTarget][]courtauction.SearchResult{
		region: {rawResult("2024타경1001", "2")},
	}}
	repo := &fakeAuctionRepo{existing: []model.AuctionRecord{
		{ID: 7, CaseID: "2024타경1001", FailedAuctionCount: 0},
	}}
	notifier := &fakeNotifier{}
	c := newCycleCrawler(search, repo, notifier, []model.RegionTarget{region})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if summary.UpdatedCount != 1 {
		t.Errorf("summary.UpdatedCount = %d, want 1", summary.UpdatedCount)
	}
	if len(repo.updates) != 1 || repo.updates[0].ID != 7 {
		t.Fatalf("repo.updates = %+v, want one update for id 7", repo.updates)
	}
	if len(notifier.received) != 0 {
		t.Errorf("updates must not trigger new-auction notifications, got %d", len(notifier.received))
	}
}

func TestRun_RegionFailureDoesNotAbortOthers(t *testing.T) {
	broken := model.RegionTarget{SidoCode: "11", SiguCode: "110"}
	healthy := model.RegionTarget{SidoCode: "26", SiguCode: "350"}
	search := &fakeSearch{
		byRegion: map[model.RegionTarget][]courtauction.SearchResult{
			healthy: {rawResult("2024타경2001", "0")},
		},
		errFor: map[model.RegionTarget]error{
			broken: &courtauction.SearchError{Region: broken, Err: errors.New("502")},
		},
	}
	repo := &fakeAuctionRepo{}
	c := newCycleCrawler(search, repo, &fakeNotifier{}, []model.RegionTarget{broken, healthy})

	summary, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(search.queried) != 2 {
		t.Errorf("queried %d regions, want both despite the first failing", len(search.queried))
	}
	if summary.NewCount != 1 {
		t.Errorf("summary.NewCount = %d, want 1 from the healthy region", summary.NewCount)
	}
}

func TestRun_FetchExistingFailureAbortsCycle(t *testing.T) {
	region := model.RegionTarget{SidoCode: "26", SiguCode: "350"}
	search := &fakeSearch{}
	repo := &fakeAuctionRepo{fetchErr: errors.New("db down")}
	c := newCycleCrawler(search, repo, &fakeNotifier{}, []model.RegionTarget{region})

	if _, err := c.Run(context.Background()); err == nil {
		t.Fatal("Run expected error when existing state cannot be loaded")
	}
	if len(search.queried) != 0 {
		t.Error("no region may be queried when the snapshot load fails")
	}
}

func TestRun_CooldownHonoursContextCancellation(t *testing.T) {
	r1 := model.RegionTarget{SidoCode: "26", SiguCode: "350"}
	r2 := model.RegionTarget{SidoCode: "11", SiguCode: "110"}
	search := &fakeSearch{}
	repo := &fakeAuctionRepo{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := NewReconciler(&fakeImageSource{}, &fakeImageStore{}, log)
	c := New(search, rec, repo, staticTargets([]model.RegionTarget{r1, r2}),
		Options{Cooldown: time.Hour}, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		// Cancel while the crawler waits out the inter-region cooldown.
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	if _, err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if len(search.queried) != 1 {
		t.Errorf("queried %d regions before cancellation, want 1", len(search.queried))
	}
}
