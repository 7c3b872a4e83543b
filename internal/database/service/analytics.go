package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/craftlist/craftlist/internal/database/models"
	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/craftlist/craftlist/internal/database/types/enum"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// visitorHashLen is the number of hex characters kept from the visitor hash.
const visitorHashLen = 16

// DailyAggregateRetention is how long rolled-up daily rows are kept.
const DailyAggregateRetention = 365 * 24 * time.Hour

// Visitor carries the request context attached to an interaction event.
type Visitor struct {
	IP        string
	UserAgent string
	Referrer  string
	SessionID string
}

// AnalyticsService handles interaction event recording and summaries.
type AnalyticsService struct {
	analytics *models.AnalyticsModel
	logger    *zap.Logger
}

// NewAnalytics creates a new analytics service.
func NewAnalytics(analytics *models.AnalyticsModel, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{
		analytics: analytics,
		logger:    logger.Named("analytics_service"),
	}
}

// HashVisitorIP derives the stored visitor identifier: the address
// concatenated with a fixed salt, SHA-256 hashed, truncated. The raw address
// never reaches the database.
func HashVisitorIP(ip, salt string) string {
	sum := sha256.Sum256([]byte(ip + salt))
	return hex.EncodeToString(sum[:])[:visitorHashLen]
}

// RecordEvent appends one interaction event. The daily aggregate row is
// maintained by a database trigger on the insert. Events without a client
// session token get a fresh one so a page's events still group together.
func (s *AnalyticsService) RecordEvent(
	ctx context.Context, serverID int64, kind enum.EventKind,
	visitor Visitor, salt string, metadata map[string]any,
) error {
	if visitor.SessionID == "" {
		visitor.SessionID = uuid.NewString()
	}

	event := &types.AnalyticsEvent{
		ServerID:  serverID,
		Kind:      kind,
		IPHash:    HashVisitorIP(visitor.IP, salt),
		UserAgent: visitor.UserAgent,
		Referrer:  visitor.Referrer,
		SessionID: visitor.SessionID,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	return s.analytics.InsertEvent(ctx, event)
}

// Summary aggregates the trailing 30 days of daily rows into totals and
// derived rates.
func (s *AnalyticsService) Summary(ctx context.Context, serverID int64) (*types.AnalyticsSummary, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	rows, err := s.analytics.GetDailyRange(ctx, serverID, from, to)
	if err != nil {
		return nil, err
	}

	return types.Summarize(serverID, rows), nil
}

// Cleanup deletes events past the configured retention and daily aggregates
// older than one year.
func (s *AnalyticsService) Cleanup(ctx context.Context, eventRetention time.Duration) error {
	now := time.Now().UTC()

	if err := s.analytics.PurgeOldEvents(ctx, now.Add(-eventRetention)); err != nil {
		return err
	}

	return s.analytics.PurgeOldDaily(ctx, now.Add(-DailyAggregateRetention))
}
