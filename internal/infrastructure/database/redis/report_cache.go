package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/agroledger/eudr-engine/internal/application/compliance"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

const reportKeyPrefix = "report:"

// ReportCache stores validation reports in Redis keyed by the geolocation
// content hash. Cache failures degrade to misses; validation always has a
// computable fallback.
type ReportCache struct {
	client *Client
	ttl    time.Duration
	logger logging.Logger
}

// NewReportCache builds a report cache with the given entry TTL; zero uses
// the client default.
func NewReportCache(client *Client, ttl time.Duration, log logging.Logger) *ReportCache {
	if log == nil {
		log = logging.NewNop()
	}
	return &ReportCache{client: client, ttl: ttl, logger: log.Named("report_cache")}
}

var _ compliance.ReportCache = (*ReportCache)(nil)

// GetReport loads a cached report by content hash.
func (c *ReportCache) GetReport(ctx context.Context, hash string) (*compliance.Report, bool) {
	data, ok, err := c.client.Get(ctx, reportKeyPrefix+hash)
	if err != nil {
		c.logger.Warn("report cache read failed", logging.Err(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var report compliance.Report
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.Warn("report cache entry corrupt, evicting",
			logging.String("hash", hash), logging.Err(err))
		_ = c.client.Delete(ctx, reportKeyPrefix+hash)
		return nil, false
	}
	return &report, true
}

// SetReport stores a report by content hash.
func (c *ReportCache) SetReport(ctx context.Context, hash string, report *compliance.Report) {
	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("report cache encode failed", logging.Err(err))
		return
	}
	if err := c.client.Set(ctx, reportKeyPrefix+hash, data, c.ttl); err != nil {
		c.logger.Warn("report cache write failed", logging.Err(err))
	}
}
