package domain

import (
	"slices"
	"testing"
)

func TestValidateProjectionHealthyRecord(t *testing.T) {
	// Revenue bonus 10, positive net income 20, positive cash flow 15,
	// gross margin 0.6 tier 15: 50 + 60 clamps to 100.
	record := &ProjectionRecord{
		Year:            2026,
		Revenue:         money(100000),
		CostOfGoodsSold: money(40000),
		CashFlow:        money(5000),
	}
	result := ValidateProjection(record)

	if !result.IsValid {
		t.Errorf("expected valid record, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if result.HealthScore != 100 {
		t.Errorf("expected score clamped to 100, got %d", result.HealthScore)
	}
	if len(result.Suggestions) != 0 {
		t.Errorf("healthy record should carry no suggestions, got %v", result.Suggestions)
	}
}

func TestValidateProjectionNegativeRevenue(t *testing.T) {
	result := ValidateProjection(&ProjectionRecord{Year: 2026, Revenue: money(-1)})
	if result.IsValid {
		t.Error("negative revenue must invalidate the record")
	}
	if !slices.Contains(result.Errors, "revenue must not be negative") {
		t.Errorf("expected negative-revenue error, got %v", result.Errors)
	}
}

func TestValidateProjectionWarnings(t *testing.T) {
	// COGS above revenue, negative net income, negative cash flow.
	record := &ProjectionRecord{
		Year:            2026,
		Revenue:         money(10000),
		CostOfGoodsSold: money(12000),
		CashFlow:        money(-500),
	}
	result := ValidateProjection(record)

	if !result.IsValid {
		t.Errorf("warnings must not invalidate the record, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", result.Warnings)
	}
	if !slices.Contains(result.Warnings, "cost of goods sold exceeds revenue, gross profit is negative") {
		t.Errorf("missing COGS warning: %v", result.Warnings)
	}
	if !slices.Contains(result.Warnings, "projected net income is negative") {
		t.Errorf("missing net income warning: %v", result.Warnings)
	}
	if !slices.Contains(result.Warnings, "projected cash flow is negative") {
		t.Errorf("missing cash flow warning: %v", result.Warnings)
	}

	// 50 + 10 (revenue) - 10 (net loss) - 5 (negative cash flow) = 45.
	if result.HealthScore != 45 {
		t.Errorf("expected score 45, got %d", result.HealthScore)
	}
	if len(result.Suggestions) != 2 {
		t.Errorf("score below 60 should yield suggestions, got %v", result.Suggestions)
	}
}

func TestValidateProjectionEmptyRecord(t *testing.T) {
	result := ValidateProjection(&ProjectionRecord{Year: 2026})
	if !result.IsValid {
		t.Errorf("empty record is valid, got errors %v", result.Errors)
	}
	if result.HealthScore != recordBaseScore {
		t.Errorf("expected base score %d, got %d", recordBaseScore, result.HealthScore)
	}
}

func TestRecordHealthScoreMarginTiers(t *testing.T) {
	cases := []struct {
		name string
		cogs float64
		want int
	}{
		// Each case: base 50 + revenue 10 + positive net 20 + margin tier.
		{"margin above 50%", 40000, 95},
		{"margin above 30%", 65000, 90},
		{"margin above 10%", 85000, 85},
		{"margin at 10%", 90000, 80},
	}
	for _, tc := range cases {
		record := &ProjectionRecord{
			Year:            2026,
			Revenue:         money(100000),
			CostOfGoodsSold: money(tc.cogs),
		}
		if got := recordHealthScore(record); got != tc.want {
			t.Errorf("%s: expected score %d, got %d", tc.name, tc.want, got)
		}
	}
}
