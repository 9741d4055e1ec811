package services

import (
	"errors"
	"fmt"
	"time"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/repositories"
)

var ErrInvalidDateRange = errors.New("invalid date range")

const defaultTopProductsLimit = 10

// ReportRange is the parsed, inclusive date window a report covers.
// End is expanded to the last instant of its day so "2026-08-28" covers
// the whole of the 28th.
type ReportRange struct {
	Start time.Time
	End   time.Time
}

// --- ReportService Interface ---

type ReportService interface {
	GetSalesSummary(r ReportRange) (*models.SalesSummary, error)
	GetPaymentMethodBreakdown(r ReportRange) ([]models.PaymentMethodTotal, error)
	GetTopProducts(r ReportRange, limit int) ([]models.TopProduct, error)
	GetInventoryValuation() (*models.InventoryValuation, error)
}

type reportService struct {
	reportRepo repositories.ReportRepository
}

// NewReportService creates a new instance of ReportService.
func NewReportService(rr repositories.ReportRepository) ReportService {
	return &reportService{reportRepo: rr}
}

// ParseReportRange parses start/end query values in YYYY-MM-DD form.
// Both empty means today. A single bound fills the other with the same day.
func ParseReportRange(startStr, endStr string, now time.Time) (ReportRange, error) {
	const layout = "2006-01-02"

	if startStr == "" && endStr == "" {
		day := now.Truncate(24 * time.Hour)
		return ReportRange{Start: day, End: endOfDay(day)}, nil
	}
	if startStr == "" {
		startStr = endStr
	}
	if endStr == "" {
		endStr = startStr
	}

	start, err := time.Parse(layout, startStr)
	if err != nil {
		return ReportRange{}, fmt.Errorf("%w: start date %q", ErrInvalidDateRange, startStr)
	}
	end, err := time.Parse(layout, endStr)
	if err != nil {
		return ReportRange{}, fmt.Errorf("%w: end date %q", ErrInvalidDateRange, endStr)
	}
	if end.Before(start) {
		return ReportRange{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidDateRange, endStr, startStr)
	}
	return ReportRange{Start: start, End: endOfDay(end)}, nil
}

func endOfDay(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Nanosecond)
}

func (s *reportService) GetSalesSummary(r ReportRange) (*models.SalesSummary, error) {
	summary, err := s.reportRepo.GetSalesSummary(r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales summary: %w", err)
	}
	return summary, nil
}

func (s *reportService) GetPaymentMethodBreakdown(r ReportRange) ([]models.PaymentMethodTotal, error) {
	totals, err := s.reportRepo.GetPaymentMethodBreakdown(r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment method breakdown: %w", err)
	}
	return totals, nil
}

func (s *reportService) GetTopProducts(r ReportRange, limit int) ([]models.TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopProductsLimit
	}
	products, err := s.reportRepo.GetTopProducts(r.Start, r.End, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	return products, nil
}

func (s *reportService) GetInventoryValuation() (*models.InventoryValuation, error) {
	valuation, err := s.reportRepo.GetInventoryValuation()
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory valuation: %w", err)
	}
	return valuation, nil
}
