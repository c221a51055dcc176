package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"nonprofit-platform/config"
	"nonprofit-platform/models"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

const dashboardCacheKey = "analytics:dashboard"

// AnalyticsService aggregates dashboard numbers from full-table reads.
// Every section is computed independently and a failed read zeroes its
// section instead of failing the dashboard; the assembled result is
// cached in Redis for a short TTL.
type AnalyticsService struct {
	app   core.App
	redis *redis.Client
	cfg   *config.Config
}

func NewAnalyticsService(app core.App, redisClient *redis.Client, cfg *config.Config) *AnalyticsService {
	return &AnalyticsService{
		app:   app,
		redis: redisClient,
		cfg:   cfg,
	}
}

func (s *AnalyticsService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	if cached, err := s.redis.Get(ctx, dashboardCacheKey).Result(); err == nil {
		var stats models.DashboardStats
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			stats.FromCache = true
			return &stats, nil
		}
	}

	stats := s.compute(ctx)

	if data, err := json.Marshal(stats); err == nil {
		if err := s.redis.Set(ctx, dashboardCacheKey, data, s.cfg.AnalyticsCacheTTL).Err(); err != nil {
			slog.Error("analytics: cache write failed", "error", err)
		}
	}

	return stats, nil
}

// InvalidateCache drops the cached dashboard. Called from record hooks
// when payment rows change.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if err := s.redis.Del(ctx, dashboardCacheKey).Err(); err != nil {
		slog.Error("analytics: cache invalidation failed", "error", err)
	}
}

func (s *AnalyticsService) compute(ctx context.Context) *models.DashboardStats {
	stats := &models.DashboardStats{
		GeneratedAt: time.Now().UTC(),
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	// Each section runs independently; failures are logged and leave
	// the section at its zero value.
	section := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				slog.Error("analytics: section failed", "section", name, "error", err)
			}
		}()
	}

	section("donations", func() error {
		var row struct {
			Total float64 `db:"total"`
			Count int     `db:"count"`
		}
		err := s.app.DB().NewQuery(
			"SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count FROM donations WHERE payment_status = 'success'",
		).WithContext(ctx).One(&row)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.DonationTotal = row.Total
		stats.DonationCount = row.Count
		mu.Unlock()
		return nil
	})

	section("tickets", func() error {
		var row struct {
			Revenue float64 `db:"revenue"`
			Sold    int     `db:"sold"`
		}
		err := s.app.DB().NewQuery(
			"SELECT COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(quantity), 0) AS sold FROM ticket_purchases WHERE payment_status = 'success'",
		).WithContext(ctx).One(&row)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TicketRevenue = row.Revenue
		stats.TicketsSold = row.Sold
		mu.Unlock()
		return nil
	})

	section("orders", func() error {
		var row struct {
			Revenue float64 `db:"revenue"`
			Count   int     `db:"count"`
		}
		err := s.app.DB().NewQuery(
			"SELECT COALESCE(SUM(total), 0) AS revenue, COUNT(*) AS count FROM orders WHERE payment_status = 'success'",
		).WithContext(ctx).One(&row)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.OrderRevenue = row.Revenue
		stats.OrderCount = row.Count
		mu.Unlock()
		return nil
	})

	section("events_by_status", func() error {
		rows, err := s.statusCounts(ctx, "events")
		if err != nil {
			return err
		}
		mu.Lock()
		stats.EventsByStatus = rows
		mu.Unlock()
		return nil
	})

	section("orders_by_status", func() error {
		rows, err := s.statusCounts(ctx, "orders")
		if err != nil {
			return err
		}
		mu.Lock()
		stats.OrdersByStatus = rows
		mu.Unlock()
		return nil
	})

	section("donations_by_month", func() error {
		var rows []struct {
			Month string  `db:"month"`
			Total float64 `db:"total"`
			Count int     `db:"count"`
		}
		err := s.app.DB().NewQuery(
			"SELECT strftime('%Y-%m', created) AS month, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count " +
				"FROM donations WHERE payment_status = 'success' GROUP BY month ORDER BY month DESC LIMIT 12",
		).WithContext(ctx).All(&rows)
		if err != nil {
			return err
		}
		buckets := make([]models.MonthlyTotal, 0, len(rows))
		for _, r := range rows {
			buckets = append(buckets, models.MonthlyTotal{Month: r.Month, Total: r.Total, Count: r.Count})
		}
		mu.Lock()
		stats.DonationsByMonth = buckets
		mu.Unlock()
		return nil
	})

	section("subscribers", func() error {
		var row struct {
			Count int `db:"count"`
		}
		err := s.app.DB().NewQuery(
			"SELECT COUNT(*) AS count FROM newsletter_subscribers WHERE subscribed = TRUE",
		).WithContext(ctx).One(&row)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.SubscriberCount = row.Count
		mu.Unlock()
		return nil
	})

	section("unread_messages", func() error {
		var row struct {
			Count int `db:"count"`
		}
		err := s.app.DB().NewQuery(
			"SELECT COUNT(*) AS count FROM contact_messages WHERE read = FALSE",
		).WithContext(ctx).One(&row)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.UnreadMessages = row.Count
		mu.Unlock()
		return nil
	})

	wg.Wait()

	return stats
}

func (s *AnalyticsService) statusCounts(ctx context.Context, table string) ([]models.StatusCount, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	err := s.app.DB().NewQuery(
		"SELECT status, COUNT(*) AS count FROM " + table + " GROUP BY status",
	).WithContext(ctx).All(&rows)
	if err != nil {
		return nil, err
	}

	counts := make([]models.StatusCount, 0, len(rows))
	for _, r := range rows {
		counts = append(counts, models.StatusCount{Status: r.Status, Count: r.Count})
	}
	return counts, nil
}
