package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTemplateCatalogResolution(t *testing.T) {
	for _, id := range []string{"saas-startup", "ecommerce", "consulting", "restaurant", "generic"} {
		template, err := FindTemplate(id)
		if err != nil {
			t.Fatalf("expected template %s in catalog: %v", id, err)
		}
		if template.ID != id {
			t.Errorf("expected id %s, got %s", id, template.ID)
		}
	}

	if _, err := FindTemplate("food-truck"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestTemplateRequiredParameterEnforcement(t *testing.T) {
	template, err := FindTemplate("saas-startup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = template.Generate("plan-1", 2026, map[string]float64{})
	var missing *MissingParameterError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingParameterError, got %v", err)
	}
	if missing.Key != ParamMonthlyRecurringRevenue {
		t.Errorf("expected missing key %q, got %q", ParamMonthlyRecurringRevenue, missing.Key)
	}
}

func TestSaaSTemplateFormula(t *testing.T) {
	template, _ := FindTemplate("saas-startup")
	records, err := template.Generate("plan-1", 2026, map[string]float64{
		ParamMonthlyRecurringRevenue: 10000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != TemplateHorizonYears {
		t.Fatalf("expected %d records, got %d", TemplateHorizonYears, len(records))
	}

	// Year 0: 10,000 MRR * 12 = 120,000; COGS 15% = 18,000; opex 30%; marketing 25%.
	first := records[0]
	if first.Year != 2026 {
		t.Errorf("expected start year 2026, got %d", first.Year)
	}
	if !first.Revenue.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("expected year-0 revenue 120000, got %s", first.Revenue)
	}
	if !first.CostOfGoodsSold.Equal(decimal.NewFromInt(18000)) {
		t.Errorf("expected year-0 COGS 18000, got %s", first.CostOfGoodsSold)
	}
	if !first.OperatingExpenses.Equal(decimal.NewFromInt(36000)) {
		t.Errorf("expected year-0 opex 36000, got %s", first.OperatingExpenses)
	}
	if !first.MarketingExpenses.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("expected year-0 marketing 30000, got %s", first.MarketingExpenses)
	}

	// Default 30% growth compounds annually: year 1 = 120,000 * 1.3 = 156,000.
	if !records[1].Revenue.Equal(decimal.NewFromInt(156000)) {
		t.Errorf("expected year-1 revenue 156000, got %s", records[1].Revenue)
	}
}

func TestConsultingTemplateTeamGrowth(t *testing.T) {
	template, _ := FindTemplate("consulting")
	records, err := template.Generate("plan-1", 2026, map[string]float64{
		ParamHourlyRate: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Default team of 3 grows by one consultant per year.
	for i, want := range []int{3, 4, 5} {
		r := records[i]
		if r.Employees == nil || *r.Employees != want {
			t.Fatalf("year %d: expected team size %d, got %v", i, want, r.Employees)
		}
		// Salaries fold into administrative expense at $80,000 per head.
		salaries := decimal.NewFromInt(80000).Mul(decimal.NewFromInt(int64(want)))
		if !r.AdministrativeExpenses.Equal(salaries) {
			t.Errorf("year %d: expected admin expense %s, got %s", i, salaries, r.AdministrativeExpenses)
		}
		// Revenue = 150/hour * 120 hours * 12 months * team size.
		revenue := decimal.NewFromInt(150 * 120 * 12 * int64(want))
		if !r.Revenue.Equal(revenue) {
			t.Errorf("year %d: expected revenue %s, got %s", i, revenue, r.Revenue)
		}
		if r.CostOfGoodsSold != nil {
			t.Errorf("year %d: consulting has no COGS, got %s", i, r.CostOfGoodsSold)
		}
	}
}

func TestRestaurantTemplateDefaults(t *testing.T) {
	template, _ := FindTemplate("restaurant")
	records, err := template.Generate("plan-1", 2026, map[string]float64{
		ParamAverageCheckSize: 40,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Year 0: 100 covers/day * 365 * $40 = 1,460,000; food cost 28%; labor 30% as admin.
	first := records[0]
	if !first.Revenue.Equal(decimal.NewFromInt(1460000)) {
		t.Errorf("expected revenue 1460000, got %s", first.Revenue)
	}
	if !first.CostOfGoodsSold.Equal(decimal.NewFromInt(408800)) {
		t.Errorf("expected food cost 408800, got %s", first.CostOfGoodsSold)
	}
	if !first.AdministrativeExpenses.Equal(decimal.NewFromInt(438000)) {
		t.Errorf("expected labor cost 438000, got %s", first.AdministrativeExpenses)
	}
}

func TestGenericTemplateDefaults(t *testing.T) {
	// The generic fallback needs no parameters: 100,000 at 20% growth, COGS 35%.
	template := GenericTemplate()
	records, err := template.Generate("plan-1", 2026, map[string]float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !records[0].Revenue.Equal(decimal.NewFromInt(100000)) {
		t.Errorf("expected default initial revenue 100000, got %s", records[0].Revenue)
	}
	if !records[2].Revenue.Equal(decimal.NewFromInt(144000)) {
		t.Errorf("expected year-2 revenue 144000, got %s", records[2].Revenue)
	}
	if !records[2].CostOfGoodsSold.Equal(decimal.NewFromInt(50400)) {
		t.Errorf("expected year-2 COGS 50400, got %s", records[2].CostOfGoodsSold)
	}
}

func TestTemplateCatalogIsCopied(t *testing.T) {
	catalog := TemplateCatalog()
	catalog[0].ID = "mutated"
	if fresh := TemplateCatalog(); fresh[0].ID == "mutated" {
		t.Error("catalog must not be mutable through returned slice")
	}
}
