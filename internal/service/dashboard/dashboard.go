// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"
	"time"

	"isp-billing-service/internal/domain/dashboard"
	"isp-billing-service/internal/domain/invoice"
	xerrors "isp-billing-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DashboardService struct {
	repo   dashboard.Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardService(repo dashboard.Repository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, logger: logger, now: time.Now}
}

// Stats runs the headline counters concurrently.
func (s *DashboardService) Stats(ctx context.Context) (*dashboard.Stats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	nextMonth := monthStart.AddDate(0, 1, 0)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var stats dashboard.Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.repo.CountActiveCustomers(ctx)
		stats.TotalCustomers = n
		return err
	})
	g.Go(func() error {
		sum, err := s.repo.RevenueBetween(ctx, monthStart, nextMonth)
		stats.MonthlyRevenue = sum
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountInvoices(ctx, invoice.StatusPending)
		stats.PendingInvoices = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountPendingDueOn(ctx, today)
		stats.DueTodayInvoices = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountInvoices(ctx, invoice.StatusOverdue)
		stats.OverdueInvoices = n
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load dashboard stats", zap.Error(err))
		return nil, err
	}
	return &stats, nil
}

// RevenueChart returns twelve monthly points for year; year 0 means the current year.
func (s *DashboardService) RevenueChart(ctx context.Context, year int) ([]dashboard.RevenuePoint, error) {
	if year == 0 {
		year = s.now().Year()
	}
	if year < 2000 || year > 9999 {
		return nil, xerrors.Validation("Invalid year")
	}

	byMonth, err := s.repo.MonthlyRevenue(ctx, year)
	if err != nil {
		return nil, err
	}

	points := make([]dashboard.RevenuePoint, 0, 12)
	for m := time.January; m <= time.December; m++ {
		revenue, ok := byMonth[int(m)]
		if !ok {
			revenue = decimal.Zero
		}
		points = append(points, dashboard.RevenuePoint{Month: m.String()[:3], Revenue: revenue})
	}
	return points, nil
}
