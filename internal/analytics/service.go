// Activitylens - Audit Activity Reporting and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/activitylens

// Package analytics computes derived statistics over filtered activity
// sets: headline counters, event breakdowns with display colors, top users,
// timelines, heatmaps, anomaly detection, and per-user profiles. Results
// are cached under keys derived from the filter's canonical serialization.
package analytics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/tomtom215/activitylens/internal/cache"
	"github.com/tomtom215/activitylens/internal/config"
	"github.com/tomtom215/activitylens/internal/database"
	"github.com/tomtom215/activitylens/internal/metrics"
	"github.com/tomtom215/activitylens/internal/models"
)

// profileCacheTTL is shorter than the main analytics TTL: profiles embed
// recent records and go stale faster than aggregate counters.
const profileCacheTTL = 30 * time.Minute

// Service is the analytics aggregator. All methods are read-only over the
// activity store and safe for concurrent use.
type Service struct {
	db    *database.DB
	cache *cache.Cache
	cfg   *config.AnalyticsConfig

	// now is swappable for tests.
	now func() time.Time
}

// New builds an analytics service with its own cache sized by the
// configured TTL.
func New(db *database.DB, cfg *config.AnalyticsConfig) *Service {
	return &Service{
		db:    db,
		cache: cache.New(cfg.CacheTTL),
		cfg:   cfg,
		now:   time.Now,
	}
}

// CacheStats exposes the analytics cache counters for observability.
func (s *Service) CacheStats() cache.Stats {
	stats := s.cache.GetStats()
	metrics.SetCacheSize("analytics", stats.TotalKeys)
	return stats
}

func (s *Service) fromCache(key string) (interface{}, bool) {
	v, ok := s.cache.Get(key)
	metrics.RecordCacheAccess("analytics", ok)
	return v, ok
}

// ClearCache drops all cached analytics results.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// AvailableFilters returns the distinct event, causer, and subject types
// present in the store. The result changes only when new activity types
// appear, so it shares the analytics cache rather than hitting DuckDB on
// every dropdown render.
func (s *Service) AvailableFilters(ctx context.Context) (*models.AvailableFilters, error) {
	const key = "analytics:available_filters"
	if v, found := s.fromCache(key); found {
		if filters, ok := v.(*models.AvailableFilters); ok {
			return filters, nil
		}
	}

	filters, err := s.db.AvailableFilters(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, filters)
	return filters, nil
}

// Summary computes the headline counters for a filtered activity set:
// total, today, this week (since Monday), this month, and distinct active
// causers over the trailing 30 days.
func (s *Service) Summary(ctx context.Context, filter *models.ActivityFilter) (*models.AnalyticsSummary, error) {
	key := cache.GenerateKey("analytics:summary", filter)
	if v, found := s.fromCache(key); found {
		if sum, ok := v.(*models.AnalyticsSummary); ok {
			return sum, nil
		}
	}

	now := s.now()

	total, err := s.db.CountActivities(ctx, filter)
	if err != nil {
		return nil, err
	}
	today, err := s.db.CountInRange(ctx, filter, startOfDay(now), now)
	if err != nil {
		return nil, err
	}
	thisWeek, err := s.db.CountInRange(ctx, filter, startOfWeek(now), now)
	if err != nil {
		return nil, err
	}
	thisMonth, err := s.db.CountInRange(ctx, filter, startOfMonth(now), now)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.db.CountDistinctCausers(ctx, filter, now.AddDate(0, 0, -30))
	if err != nil {
		return nil, err
	}

	summary := &models.AnalyticsSummary{
		Total:       total,
		Today:       today,
		ThisWeek:    thisWeek,
		ThisMonth:   thisMonth,
		ActiveUsers: activeUsers,
	}
	s.cache.Set(key, summary)
	return summary, nil
}

// EventBreakdown groups the filtered set by event tag with percentage of
// total and a display color per event. Percentages are 0 when the total is
// 0, and the empty event tag displays as "unknown".
func (s *Service) EventBreakdown(ctx context.Context, filter *models.ActivityFilter) ([]models.EventBreakdownEntry, error) {
	key := cache.GenerateKey("analytics:breakdown", filter)
	if v, found := s.fromCache(key); found {
		if entries, ok := v.([]models.EventBreakdownEntry); ok {
			return entries, nil
		}
	}

	counts, err := s.db.EventBreakdownCounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	resolver := newColorResolver(s.cfg.Colors)
	entries := make([]models.EventBreakdownEntry, 0, len(counts))
	for _, c := range counts {
		event := c.Event
		if event == "" {
			event = "unknown"
		}
		entries = append(entries, models.EventBreakdownEntry{
			Event:      event,
			Count:      c.Count,
			Percentage: percentage(c.Count, total),
			Color:      resolver.colorFor(c.Event),
		})
	}

	s.cache.Set(key, entries)
	return entries, nil
}

// TopUsers ranks causers by activity count, descending. Causers that no
// longer resolve to a display name are excluded, so the underlying query
// over-fetches before the cut to the configured limit.
func (s *Service) TopUsers(ctx context.Context, filter *models.ActivityFilter) ([]models.TopUserEntry, error) {
	key := cache.GenerateKey("analytics:top_users", filter)
	if v, found := s.fromCache(key); found {
		if entries, ok := v.([]models.TopUserEntry); ok {
			return entries, nil
		}
	}

	limit := s.cfg.TopUsersLimit
	if limit < 1 {
		limit = 10
	}

	counts, err := s.db.TopCausers(ctx, filter, limit*3)
	if err != nil {
		return nil, err
	}

	entries := make([]models.TopUserEntry, 0, limit)
	for _, c := range counts {
		name, ok := s.db.Resolvers().Resolve(ctx, c.CauserType, c.CauserID)
		if !ok {
			continue
		}
		entries = append(entries, models.TopUserEntry{
			CauserType: c.CauserType,
			CauserID:   c.CauserID,
			Name:       name,
			Count:      c.Count,
		})
		if len(entries) == limit {
			break
		}
	}

	s.cache.Set(key, entries)
	return entries, nil
}

// PopularSubjects groups the filtered set by subject type with percentage
// of the subject-bearing total.
func (s *Service) PopularSubjects(ctx context.Context, filter *models.ActivityFilter) ([]models.BreakdownEntry, error) {
	key := cache.GenerateKey("analytics:subjects", filter)
	if v, found := s.fromCache(key); found {
		if entries, ok := v.([]models.BreakdownEntry); ok {
			return entries, nil
		}
	}

	counts, err := s.db.SubjectTypeBreakdownCounts(ctx, filter)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	entries := make([]models.BreakdownEntry, 0, len(counts))
	for _, c := range counts {
		entries = append(entries, models.BreakdownEntry{
			Key:        c.Key,
			Count:      c.Count,
			Percentage: percentage(c.Count, total),
		})
	}

	s.cache.Set(key, entries)
	return entries, nil
}

// Timeline returns zero-filled per-day counts over the filter's effective
// date range, each with its percentage of the range maximum. An unbounded
// filter defaults to the trailing 7 days; any range is clamped to the
// configured maximum span.
func (s *Service) Timeline(ctx context.Context, filter *models.ActivityFilter) ([]models.TimelinePoint, error) {
	key := cache.GenerateKey("analytics:timeline", filter)
	if v, found := s.fromCache(key); found {
		if points, ok := v.([]models.TimelinePoint); ok {
			return points, nil
		}
	}

	start, end, err := s.effectiveRange(filter, 7)
	if err != nil {
		return nil, err
	}

	counts, err := s.db.CountsByDay(ctx, filter, start, end)
	if err != nil {
		return nil, err
	}
	byDay := map[string]int{}
	for _, c := range counts {
		byDay[c.Date] = c.Count
	}

	days := dayKeys(start, end)
	max := 0
	for _, d := range days {
		if byDay[d] > max {
			max = byDay[d]
		}
	}

	points := make([]models.TimelinePoint, 0, len(days))
	for _, d := range days {
		points = append(points, models.TimelinePoint{
			Date:       d,
			Count:      byDay[d],
			Percentage: percentage(byDay[d], max),
		})
	}

	s.cache.Set(key, points)
	return points, nil
}

// Heatmap returns per-day counts over a trailing window with intensity
// levels. days <= 0 uses the configured window (default 365). The window
// length is part of the cache key.
func (s *Service) Heatmap(ctx context.Context, filter *models.ActivityFilter, days int) ([]models.HeatmapDay, error) {
	if days <= 0 {
		days = s.cfg.HeatmapDays
	}
	if days <= 0 {
		days = 365
	}

	key := cache.GenerateKey("analytics:heatmap:"+strconv.Itoa(days), filter)
	if v, found := s.fromCache(key); found {
		if heatmap, ok := v.([]models.HeatmapDay); ok {
			return heatmap, nil
		}
	}

	now := s.now()
	end := now
	start := startOfDay(now.AddDate(0, 0, -(days - 1)))

	counts, err := s.db.CountsByDay(ctx, filter, start, end)
	if err != nil {
		return nil, err
	}
	byDay := map[string]int{}
	max := 0
	for _, c := range counts {
		byDay[c.Date] = c.Count
		if c.Count > max {
			max = c.Count
		}
	}

	dayList := dayKeys(start, end)
	heatmap := make([]models.HeatmapDay, 0, len(dayList))
	for _, d := range dayList {
		heatmap = append(heatmap, models.HeatmapDay{
			Date:  d,
			Count: byDay[d],
			Level: heatLevel(byDay[d], max),
		})
	}

	s.cache.Set(key, heatmap)
	return heatmap, nil
}

// Anomalies flags days in the trailing window whose count exceeds the
// window mean by more than two population standard deviations. A window
// with zero variance yields no anomalies.
func (s *Service) Anomalies(ctx context.Context, filter *models.ActivityFilter) ([]models.Anomaly, error) {
	key := cache.GenerateKey("analytics:anomalies", filter)
	if v, found := s.fromCache(key); found {
		if anomalies, ok := v.([]models.Anomaly); ok {
			return anomalies, nil
		}
	}

	window := s.cfg.AnomalyWindow
	if window <= 0 {
		window = 30
	}

	now := s.now()
	start := startOfDay(now.AddDate(0, 0, -(window - 1)))

	counts, err := s.db.CountsByDay(ctx, filter, start, now)
	if err != nil {
		return nil, err
	}
	byDay := map[string]int{}
	for _, c := range counts {
		byDay[c.Date] = c.Count
	}

	days := dayKeys(start, now)
	mean, stddev := meanStddev(days, byDay)

	anomalies := []models.Anomaly{}
	if stddev > 0 {
		threshold := mean + 2*stddev
		for _, d := range days {
			count := byDay[d]
			if float64(count) > threshold {
				anomalies = append(anomalies, models.Anomaly{
					Date:      d,
					Count:     count,
					Expected:  int(math.Round(mean)),
					Deviation: round2((float64(count) - mean) / stddev),
				})
			}
		}
	}

	s.cache.Set(key, anomalies)
	return anomalies, nil
}

// Trends returns per-event zero-filled daily series over the filter's
// effective range, sharing one date axis, with colors per event.
func (s *Service) Trends(ctx context.Context, filter *models.ActivityFilter) (*models.ActivityTrends, error) {
	key := cache.GenerateKey("analytics:trends", filter)
	if v, found := s.fromCache(key); found {
		if trends, ok := v.(*models.ActivityTrends); ok {
			return trends, nil
		}
	}

	start, end, err := s.effectiveRange(filter, 7)
	if err != nil {
		return nil, err
	}

	counts, err := s.db.CountsByDayPerEvent(ctx, filter, start, end)
	if err != nil {
		return nil, err
	}

	days := dayKeys(start, end)
	dayIndex := map[string]int{}
	for i, d := range days {
		dayIndex[d] = i
	}

	resolver := newColorResolver(s.cfg.Colors)
	trends := &models.ActivityTrends{Dates: days, Datasets: []models.TrendDataset{}}
	eventIndex := map[string]int{}
	for _, c := range counts {
		i, ok := eventIndex[c.Event]
		if !ok {
			i = len(trends.Datasets)
			eventIndex[c.Event] = i
			trends.Datasets = append(trends.Datasets, models.TrendDataset{
				Event: c.Event,
				Color: resolver.colorFor(c.Event),
				Data:  make([]int, len(days)),
			})
		}
		if di, ok := dayIndex[c.Date]; ok {
			trends.Datasets[i].Data[di] = c.Count
		}
	}

	s.cache.Set(key, trends)
	return trends, nil
}

// UserProfile aggregates one causer's activity: totals, first/last
// timestamps, event and subject breakdowns against the user's own total, a
// fixed 30-day zero-filled daily series, and the 10 most recent records.
// Returns NotFoundError when the causer has no recorded activity.
func (s *Service) UserProfile(ctx context.Context, causerType string, causerID int64) (*models.UserProfile, error) {
	key := cache.GenerateKey("analytics:profile", fmt.Sprintf("%s:%d", causerType, causerID))
	if v, found := s.fromCache(key); found {
		if profile, ok := v.(*models.UserProfile); ok {
			return profile, nil
		}
	}

	total, first, last, err := s.db.CauserStats(ctx, causerType, causerID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, models.NewNotFoundError("user profile", fmt.Sprintf("%s #%d", causerType, causerID))
	}

	name, ok := s.db.Resolvers().Resolve(ctx, causerType, causerID)
	if !ok {
		name = fmt.Sprintf("%s #%d", causerType, causerID)
	}

	events, err := s.db.CauserEventBreakdown(ctx, causerType, causerID)
	if err != nil {
		return nil, err
	}
	subjects, err := s.db.CauserSubjectBreakdown(ctx, causerType, causerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start := startOfDay(now.AddDate(0, 0, -29))
	daily, err := s.db.CauserCountsByDay(ctx, causerType, causerID, start, now)
	if err != nil {
		return nil, err
	}
	byDay := map[string]int{}
	max := 0
	for _, c := range daily {
		byDay[c.Date] = c.Count
		if c.Count > max {
			max = c.Count
		}
	}
	series := []models.TimelinePoint{}
	for _, d := range dayKeys(start, now) {
		series = append(series, models.TimelinePoint{
			Date:       d,
			Count:      byDay[d],
			Percentage: percentage(byDay[d], max),
		})
	}

	recentPage, err := s.db.ListActivities(ctx, &models.ActivityFilter{
		CauserType: causerType,
		CauserID:   strconv.FormatInt(causerID, 10),
	}, 1, 10)
	if err != nil {
		return nil, err
	}

	profile := &models.UserProfile{
		CauserType:       causerType,
		CauserID:         causerID,
		Name:             name,
		Total:            total,
		FirstActivity:    first,
		LastActivity:     last,
		EventBreakdown:   keyCountsToBreakdown(events, total),
		SubjectBreakdown: keyCountsToBreakdown(subjects, total),
		DailyActivity:    series,
		RecentActivities: recentPage.Activities,
	}

	s.cache.SetWithTTL(key, profile, profileCacheTTL)
	return profile, nil
}

// effectiveRange resolves the filter's date bounds, defaulting an unbounded
// filter to the trailing defaultDays and clamping the span to the
// configured maximum.
func (s *Service) effectiveRange(filter *models.ActivityFilter, defaultDays int) (time.Time, time.Time, error) {
	now := s.now()

	start, end, err := filter.DateRange(now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	effectiveEnd := now
	if end != nil {
		effectiveEnd = *end
	}

	var effectiveStart time.Time
	if start != nil {
		effectiveStart = *start
	} else {
		effectiveStart = startOfDay(effectiveEnd.AddDate(0, 0, -(defaultDays - 1)))
	}

	maxDays := s.cfg.TimelineMaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	if earliest := startOfDay(effectiveEnd.AddDate(0, 0, -(maxDays - 1))); effectiveStart.Before(earliest) {
		effectiveStart = earliest
	}

	return effectiveStart, effectiveEnd, nil
}

func keyCountsToBreakdown(counts []database.KeyCount, total int) []models.BreakdownEntry {
	entries := make([]models.BreakdownEntry, 0, len(counts))
	for _, c := range counts {
		entries = append(entries, models.BreakdownEntry{
			Key:        c.Key,
			Count:      c.Count,
			Percentage: percentage(c.Count, total),
		})
	}
	return entries
}

// heatLevel buckets a day's count into a 0-4 intensity from its percentage
// of the window maximum.
func heatLevel(count, max int) int {
	if count == 0 || max == 0 {
		return 0
	}
	ratio := float64(count) / float64(max) * 100
	switch {
	case ratio < 25:
		return 1
	case ratio < 50:
		return 2
	case ratio < 75:
		return 3
	default:
		return 4
	}
}

// meanStddev computes the mean and population standard deviation of the
// zero-filled daily counts.
func meanStddev(days []string, byDay map[string]int) (float64, float64) {
	if len(days) == 0 {
		return 0, 0
	}

	sum := 0
	for _, d := range days {
		sum += byDay[d]
	}
	mean := float64(sum) / float64(len(days))

	variance := 0.0
	for _, d := range days {
		diff := float64(byDay[d]) - mean
		variance += diff * diff
	}
	variance /= float64(len(days))

	return mean, math.Sqrt(variance)
}

// percentage returns part/total as a percentage rounded to one decimal,
// 0 when the total is 0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// dayKeys lists every calendar day in [start, end] as "2006-01-02" keys.
func dayKeys(start, end time.Time) []string {
	days := []string{}
	for d := startOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(models.DateFormat))
	}
	return days
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the preceding Monday's midnight.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
