package domain

import (
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
)

func money(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func TestCalculateMetricsRequiresRecords(t *testing.T) {
	if _, err := CalculateMetrics(nil); !errors.Is(err, ErrNoProjections) {
		t.Errorf("expected ErrNoProjections, got %v", err)
	}
}

func TestCalculateMetricsGrowthAndMargins(t *testing.T) {
	// First-to-last revenue growth: (150,000 - 100,000) / 100,000 = 0.5.
	// Records arrive out of order to exercise chronological sorting.
	records := []*ProjectionRecord{
		{Year: 2027, Revenue: money(150000), CostOfGoodsSold: money(45000)},
		{Year: 2026, Revenue: money(100000), CostOfGoodsSold: money(30000)},
	}
	m, err := CalculateMetrics(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !m.RevenueGrowthRate.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("expected growth rate 0.5, got %s", m.RevenueGrowthRate)
	}
	if !m.TotalRevenue.Equal(decimal.NewFromInt(250000)) {
		t.Errorf("expected total revenue 250000, got %s", m.TotalRevenue)
	}
	if !m.AverageMonthlyRevenue.Equal(decimal.NewFromInt(125000)) {
		t.Errorf("expected average revenue 125000, got %s", m.AverageMonthlyRevenue)
	}
	// Gross profit 70,000 + 105,000 = 175,000 over 250,000 revenue.
	if !m.GrossMargin.Equal(decimal.NewFromFloat(0.7)) {
		t.Errorf("expected gross margin 0.7, got %s", m.GrossMargin)
	}
	if !m.NetMargin.Equal(decimal.NewFromFloat(0.7)) {
		t.Errorf("expected net margin 0.7, got %s", m.NetMargin)
	}

	// Growth of exactly 0.5 sits on the boundary: strong, not exceptional.
	if !slices.Contains(m.Insights, "Strong revenue growth projected") {
		t.Errorf("expected strong-growth insight, got %v", m.Insights)
	}
	if slices.Contains(m.Insights, "Exceptional revenue growth projected") {
		t.Errorf("growth of exactly 0.5 must not read as exceptional")
	}
	if !slices.Contains(m.Insights, "Healthy gross margins indicate strong pricing power") {
		t.Errorf("expected pricing-power insight, got %v", m.Insights)
	}
}

func TestCalculateMetricsHealthGrade(t *testing.T) {
	// Net margin > 10%, gross margin > 40%, growth > 20%, no loss periods.
	records := []*ProjectionRecord{
		{Year: 2026, Revenue: money(100000), CostOfGoodsSold: money(30000)},
		{Year: 2027, Revenue: money(150000), CostOfGoodsSold: money(45000)},
	}
	m, err := CalculateMetrics(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.FinancialHealthScore != "A" {
		t.Errorf("expected grade A, got %s", m.FinancialHealthScore)
	}
	if !m.CashRunwayMonths.IsZero() {
		t.Errorf("expected zero runway without loss periods, got %s", m.CashRunwayMonths)
	}
	if !slices.Contains(m.Insights, "No loss-making periods projected; cash runway not applicable") {
		t.Errorf("expected runway-not-applicable insight, got %v", m.Insights)
	}
}

func TestCalculateMetricsCashRunway(t *testing.T) {
	// Average burn over loss periods: (10 + 30) / 2 = 20; runway = 100 / 20 = 5.0.
	records := []*ProjectionRecord{
		{Year: 2026, CashFlow: money(-10)},
		{Year: 2027, CashFlow: money(-30), CashBalance: money(100)},
	}
	m, err := CalculateMetrics(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.CashRunwayMonths.Equal(decimal.NewFromFloat(5.0)) {
		t.Errorf("expected runway 5.0 months, got %s", m.CashRunwayMonths)
	}
	if !slices.Contains(m.RiskFactors, "Short cash runway of less than 6 months") {
		t.Errorf("expected short-runway risk, got %v", m.RiskFactors)
	}
	if !slices.Contains(m.Recommendations, "Raise additional funding or improve cash flow to extend runway") {
		t.Errorf("expected funding recommendation, got %v", m.Recommendations)
	}
	if !m.TotalCashFlow.Equal(decimal.NewFromInt(-40)) {
		t.Errorf("expected total cash flow -40, got %s", m.TotalCashFlow)
	}
}

func TestCalculateMetricsNegativeMarginRisk(t *testing.T) {
	records := []*ProjectionRecord{
		{Year: 2026, Revenue: money(1000), CostOfGoodsSold: money(1500)},
	}
	m, err := CalculateMetrics(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.NetMargin.IsNegative() {
		t.Fatalf("expected negative net margin, got %s", m.NetMargin)
	}
	if !slices.Contains(m.RiskFactors, "Negative profit margins across the projection horizon") {
		t.Errorf("expected negative-margin risk, got %v", m.RiskFactors)
	}
	if !slices.Contains(m.Recommendations, "Review cost structure to optimize spending and restore profitability") {
		t.Errorf("expected cost-structure recommendation, got %v", m.Recommendations)
	}
}

func TestCalculateMetricsSingleRecordHasNoGrowth(t *testing.T) {
	records := []*ProjectionRecord{
		{Year: 2026, Revenue: money(100000)},
	}
	m, err := CalculateMetrics(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.RevenueGrowthRate.IsZero() {
		t.Errorf("growth rate needs at least two revenue records, got %s", m.RevenueGrowthRate)
	}
}
