// Package dashboard assembles the overview figures shown on the home screen.
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Totals are the headline counters
type Totals struct {
	Articles      int64           `json:"articles"`
	ActiveStaff   int64           `json:"active_staff"`
	CriticalStock int64           `json:"critical_stock"`
	StockValue    decimal.Decimal `json:"stock_value"`
	UnitsInStock  int64           `json:"units_in_stock"`
	UnitsIssued   int64           `json:"units_issued"`
}

// TypeQuantity is the stock on hand for one article type
type TypeQuantity struct {
	Type     string `json:"type"`
	Quantity int64  `json:"quantity"`
}

// ArticleUsage is the issued quantity of one article
type ArticleUsage struct {
	ArticleID   string `json:"article_id"`
	ArticleName string `json:"article_name"`
	Size        string `json:"size"`
	Issued      int64  `json:"issued"`
}

// MonthlyDeliveries is the number of units delivered in one month (YYYY-MM)
type MonthlyDeliveries struct {
	Month    string `json:"month"`
	Quantity int64  `json:"quantity"`
}

// Reader runs the aggregate queries behind the dashboard
type Reader interface {
	Totals(ctx context.Context, criticalThreshold int) (*Totals, error)
	QuantityByType(ctx context.Context) ([]TypeQuantity, error)
	TopAssigned(ctx context.Context, limit int) ([]ArticleUsage, error)
	MonthlyDeliveries(ctx context.Context, since time.Time) ([]MonthlyDeliveries, error)
}

// Response is the full dashboard payload
type Response struct {
	Totals            Totals              `json:"totals"`
	QuantityByType    []TypeQuantity      `json:"quantity_by_type"`
	TopAssigned       []ArticleUsage      `json:"top_assigned"`
	MonthlyDeliveries []MonthlyDeliveries `json:"monthly_deliveries"`
	CriticalThreshold int                 `json:"critical_threshold"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

// Service builds the dashboard
type Service struct {
	reader            Reader
	criticalThreshold int
	topLimit          int
	trendMonths       int
	now               func() time.Time
}

// NewService creates a new dashboard Service
func NewService(reader Reader, criticalThreshold int) *Service {
	return &Service{
		reader:            reader,
		criticalThreshold: criticalThreshold,
		topLimit:          5,
		trendMonths:       12,
		now:               time.Now,
	}
}

// Get runs the dashboard queries concurrently and assembles the result
func (s *Service) Get(ctx context.Context) (*Response, error) {
	now := s.now()
	resp := &Response{
		CriticalThreshold: s.criticalThreshold,
		GeneratedAt:       now,
	}
	since := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(s.trendMonths - 1), 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.reader.Totals(gctx, s.criticalThreshold)
		if err != nil {
			return err
		}
		resp.Totals = *totals
		return nil
	})
	g.Go(func() error {
		byType, err := s.reader.QuantityByType(gctx)
		resp.QuantityByType = byType
		return err
	})
	g.Go(func() error {
		top, err := s.reader.TopAssigned(gctx, s.topLimit)
		resp.TopAssigned = top
		return err
	})
	g.Go(func() error {
		monthly, err := s.reader.MonthlyDeliveries(gctx, since)
		if err != nil {
			return err
		}
		resp.MonthlyDeliveries = fillMonths(monthly, since, s.trendMonths)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// fillMonths returns one bucket per month starting at since, with zero for
// months without deliveries
func fillMonths(rows []MonthlyDeliveries, since time.Time, months int) []MonthlyDeliveries {
	byMonth := make(map[string]int64, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r.Quantity
	}
	out := make([]MonthlyDeliveries, months)
	for i := 0; i < months; i++ {
		month := since.AddDate(0, i, 0).Format("2006-01")
		out[i] = MonthlyDeliveries{Month: month, Quantity: byMonth[month]}
	}
	return out
}
