package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/businessplanning/internal/projection/domain"
)

func seedExportPlan(t *testing.T, cmd *ProjectionCommandService) {
	t.Helper()
	ctx := context.Background()
	for _, c := range []CreateProjectionCommand{
		{
			BusinessPlanID: "plan-1",
			Year:           2027,
			Revenue:        &RevenueInput{Revenue: dec(150000)},
			Costs:          &CostInput{CostOfGoodsSold: dec(45000)},
		},
		{
			BusinessPlanID: "plan-1",
			Year:           2026,
			Revenue:        &RevenueInput{Revenue: dec(100000)},
			Costs:          &CostInput{CostOfGoodsSold: dec(35000), OperatingExpenses: dec(20000)},
			CashFlow:       &CashFlowInput{CashFlow: dec(45000)},
			Metrics:        &OperatingMetricsInput{Customers: intp(50)},
		},
	} {
		if _, err := cmd.Create(ctx, c); err != nil {
			t.Fatalf("seed create failed: %v", err)
		}
	}
}

func TestExportCSV(t *testing.T) {
	cmd, query, _, _ := newTestServices()
	seedExportPlan(t, cmd)

	payload, err := query.Export(context.Background(), "plan-1", FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.ContentType != "text/csv" {
		t.Errorf("expected text/csv, got %s", payload.ContentType)
	}
	if !strings.HasPrefix(payload.Filename, "financial_projections_plan-1_") || !strings.HasSuffix(payload.Filename, ".csv") {
		t.Errorf("unexpected filename %s", payload.Filename)
	}

	rows, err := csv.NewReader(bytes.NewReader(payload.Bytes)).ReadAll()
	if err != nil {
		t.Fatalf("payload is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Year" || rows[0][3] != "Revenue" {
		t.Errorf("unexpected header %v", rows[0])
	}

	// Rows come out chronologically even though 2027 was created first.
	first := rows[1]
	if first[0] != "2026" {
		t.Errorf("expected first row year 2026, got %s", first[0])
	}
	if first[3] != "100000.00" {
		t.Errorf("expected revenue cell 100000.00, got %s", first[3])
	}
	if first[4] != "35000.00" {
		t.Errorf("expected COGS cell 35000.00, got %s", first[4])
	}
	// Gross 65,000 minus 20,000 opex.
	if first[11] != "45000.00" {
		t.Errorf("expected net income cell 45000.00, got %s", first[11])
	}
	// ARPC = 100,000 / 50 customers.
	if first[18] != "2000.00" {
		t.Errorf("expected ARPC cell 2000.00, got %s", first[18])
	}
	// Annual record leaves month and quarter blank.
	if first[1] != "" || first[2] != "" {
		t.Errorf("annual record must leave month/quarter empty, got %q %q", first[1], first[2])
	}

	if rows[2][0] != "2027" || rows[2][3] != "150000.00" {
		t.Errorf("unexpected second row %v", rows[2])
	}
}

func TestExportJSON(t *testing.T) {
	cmd, query, _, _ := newTestServices()
	seedExportPlan(t, cmd)

	payload, err := query.Export(context.Background(), "plan-1", FormatJSON)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.ContentType != "application/json" {
		t.Errorf("expected application/json, got %s", payload.ContentType)
	}
	if !strings.HasSuffix(payload.Filename, ".json") {
		t.Errorf("unexpected filename %s", payload.Filename)
	}

	var out []struct {
		ProjectionID    string          `json:"projectionId"`
		BusinessPlanID  string          `json:"businessPlanId"`
		Year            int             `json:"year"`
		Revenue         decimal.Decimal `json:"revenue"`
		CostOfGoodsSold decimal.Decimal `json:"costOfGoodsSold"`
		GrossProfit     decimal.Decimal `json:"grossProfit"`
		NetIncome       decimal.Decimal `json:"netIncome"`
	}
	if err := json.Unmarshal(payload.Bytes, &out); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 exported records, got %d", len(out))
	}

	first := out[0]
	if first.Year != 2026 {
		t.Errorf("expected chronological order starting 2026, got %d", first.Year)
	}
	if first.BusinessPlanID != "plan-1" {
		t.Errorf("expected businessPlanId plan-1, got %s", first.BusinessPlanID)
	}
	if !strings.HasPrefix(first.ProjectionID, "FP") {
		t.Errorf("expected FP-prefixed projectionId, got %s", first.ProjectionID)
	}
	if !first.Revenue.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected revenue 100000, got %s", first.Revenue)
	}
	if !first.GrossProfit.Equal(decimal.NewFromInt(65000)) {
		t.Errorf("expected gross profit 65000, got %s", first.GrossProfit)
	}
	if !first.NetIncome.Equal(decimal.NewFromInt(45000)) {
		t.Errorf("expected net income 45000, got %s", first.NetIncome)
	}
}

func TestExportExcelSharesCSVLayout(t *testing.T) {
	cmd, query, _, _ := newTestServices()
	seedExportPlan(t, cmd)
	ctx := context.Background()

	excel, err := query.Export(ctx, "plan-1", FormatExcel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if excel.ContentType != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type %s", excel.ContentType)
	}
	if !strings.HasSuffix(excel.Filename, ".xlsx") {
		t.Errorf("unexpected filename %s", excel.Filename)
	}

	asCSV, err := query.Export(ctx, "plan-1", FormatCSV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(excel.Bytes, asCSV.Bytes) {
		t.Error("excel payload should carry the same tabular bytes as CSV")
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	cmd, query, _, _ := newTestServices()
	seedExportPlan(t, cmd)

	if _, err := query.Export(context.Background(), "plan-1", "pdf"); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExportEmptyPlan(t *testing.T) {
	_, query, _, _ := newTestServices()
	if _, err := query.Export(context.Background(), "plan-1", FormatCSV); !errors.Is(err, domain.ErrNoProjections) {
		t.Errorf("expected ErrNoProjections, got %v", err)
	}
}
