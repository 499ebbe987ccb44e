// Package courtauction is the HTTP client for the court-auction site's
// internal search and image endpoints. The JSON contract is treated as
// fixed; transport or parse failures surface as SearchError so the caller
// can degrade to an empty result for that region and move on.
package courtauction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dhdbtkd/courtauction-crawler/internal/model"
)

const (
	defaultBaseURL = "https://www.courtauction.go.kr"
	httpTimeout    = 15 * time.Second
	dateLayout     = "20060102"
)

// SearchError marks a failed search call for one region. A failure in one
// region must not abort the others, so callers check for this type, log it
// and continue the cycle.
type SearchError struct {
	Region model.RegionTarget
	Err    error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("courtauction search (sido %s, sigu %s): %v", e.Region.SidoCode, e.Region.SiguCode, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Client issues requests against the court-auction API.
type Client struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewClient constructs a Client with a shared HTTP client.
func NewClient(log *slog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
		log:     log,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string, log *slog.Logger) *Client {
	c := NewClient(log)
	c.baseURL = baseURL
	return c
}

// Search queries one region for auction listings whose bidding window
// falls inside [windowStart, windowEnd]. A single page of 50 rows is
// requested; the monitored districts never exceed that, and the response's
// total count is compared against the received rows so truncation is at
// least observable.
func (c *Client) Search(ctx context.Context, region model.RegionTarget, windowStart, windowEnd time.Time) ([]SearchResult, error) {
	req := searchRequest{
		PageInfo: pageInfo{
			PageNo:   1,
			PageSize: defaultPageSize,
			TotalYn:  "Y",
		},
		SearchInfo: newSearchInfo(region, windowStart, windowEnd),
	}

	var resp searchResponse
	if err := c.postJSON(ctx, searchPath, req, &resp); err != nil {
		return nil, &SearchError{Region: region, Err: err}
	}

	results := resp.Data.Results
	if total, err := strconv.Atoi(resp.Data.PageInfo.TotalCnt); err == nil && total > len(results) {
		c.log.Warn("courtauction: search results truncated to one page",
			"sido_code", region.SidoCode, "sigu_code", region.SiguCode,
			"total", total, "received", len(results))
	}

	return results, nil
}

// ListImages queries the picture list for one case. Any transport or parse
// failure is logged and reported as an empty list: the caller treats "no
// images" as a legitimate terminal state, not an error.
func (c *Client) ListImages(ctx context.Context, caseID, courtCode string, region model.RegionTarget) []ImageAsset {
	var req imageRequest
	req.Search.CsNo = caseID
	req.Search.CortOfcCd = courtCode
	req.Search.DspslGdsSeq = "1"
	req.Search.PgmID = programID
	req.Search.SrchInfo = imageSearchInfo{
		searchInfo: newSearchInfo(region, time.Time{}, time.Time{}),
		SideDvsCd:  "2",
		MenuNm:     "물건상세검색",
	}
	req.Search.SrchInfo.CortOfcCd = courtCode

	var resp imageResponse
	if err := c.postJSON(ctx, imagePath, req, &resp); err != nil {
		c.log.Warn("courtauction: image lookup failed", "case_id", caseID, "error", err)
		return nil
	}

	if len(resp.Data.Result.Pictures) == 0 {
		c.log.Debug("courtauction: no images for case", "case_id", caseID)
		return nil
	}
	return resp.Data.Result.Pictures
}

func newSearchInfo(region model.RegionTarget, windowStart, windowEnd time.Time) searchInfo {
	info := searchInfo{
		BidDvsCd:            bidDivisionCode,
		MvprpRletDvsCd:      realEstateCode,
		CortAuctnSrchCondCd: searchConditionCode,
		RprsAdongSdCd:       region.SidoCode,
		RprsAdongSggCd:      region.SiguCode,
		CortOfcCd:           defaultCourtCode,
		LclDspslGdsLstUsgCd: usageLargeCode,
		MclDspslGdsLstUsgCd: usageMediumCode,
		SclDspslGdsLstUsgCd: usageSmallCode,
		NotifyLoc:           "on",
		PgmID:               programID,
		CortStDvs:           "2",
		StatNum:             1,
	}
	if !windowStart.IsZero() {
		info.BidBgngYmd = windowStart.Format(dateLayout)
	}
	if !windowEnd.IsZero() {
		info.BidEndYmd = windowEnd.Format(dateLayout)
	}
	return info
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", refererURL)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("courtauction returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
