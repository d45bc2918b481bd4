// 变更说明：实现行业预测模板目录与三年期模板生成器，按封闭枚举分派行业公式。
package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// TemplateKind 行业模板枚举标签。
// 分派始终基于枚举 switch，绝不做运行期字符串反射查找。
type TemplateKind int

const (
	TemplateSaaS TemplateKind = iota
	TemplateEcommerce
	TemplateConsulting
	TemplateRestaurant
	TemplateGeneric
)

// TemplateHorizonYears 模板固定生成三年年度记录
const TemplateHorizonYears = 3

// 模板参数键
const (
	ParamMonthlyRecurringRevenue = "monthly_recurring_revenue"
	ParamGrowthRate              = "growth_rate"
	ParamAverageOrderValue       = "average_order_value"
	ParamMonthlyOrders           = "monthly_orders"
	ParamOrderGrowthRate         = "order_growth_rate"
	ParamCOGSRatio               = "cogs_ratio"
	ParamHourlyRate              = "hourly_rate"
	ParamBillableHoursPerMonth   = "billable_hours_per_month"
	ParamTeamSize                = "team_size"
	ParamAverageCheckSize        = "average_check_size"
	ParamCoversPerDay            = "covers_per_day"
	ParamFoodCostRatio           = "food_cost_ratio"
	ParamLaborCostRatio          = "labor_cost_ratio"
	ParamInitialRevenue          = "initial_revenue"
)

// ProjectionTemplate 行业模板描述符
type ProjectionTemplate struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Description        string             `json:"description"`
	Category           string             `json:"category"`
	Kind               TemplateKind       `json:"-"`
	DefaultParameters  map[string]float64 `json:"default_parameters"`
	RequiredParameters []string           `json:"required_parameters"`
}

// templateCatalog 固定目录。切片顺序即对外展示顺序。
var templateCatalog = []ProjectionTemplate{
	{
		ID:          "saas-startup",
		Name:        "SaaS Startup",
		Description: "Subscription software business driven by monthly recurring revenue",
		Category:    "technology",
		Kind:        TemplateSaaS,
		DefaultParameters: map[string]float64{
			ParamGrowthRate: 0.30,
		},
		RequiredParameters: []string{ParamMonthlyRecurringRevenue},
	},
	{
		ID:          "ecommerce",
		Name:        "E-commerce",
		Description: "Online retail business priced per order",
		Category:    "retail",
		Kind:        TemplateEcommerce,
		DefaultParameters: map[string]float64{
			ParamMonthlyOrders:   1000,
			ParamOrderGrowthRate: 0.50,
			ParamCOGSRatio:       0.40,
		},
		RequiredParameters: []string{ParamAverageOrderValue},
	},
	{
		ID:          "consulting",
		Name:        "Consulting Firm",
		Description: "Professional services billed by the hour",
		Category:    "services",
		Kind:        TemplateConsulting,
		DefaultParameters: map[string]float64{
			ParamBillableHoursPerMonth: 120,
			ParamTeamSize:              3,
		},
		RequiredParameters: []string{ParamHourlyRate},
	},
	{
		ID:          "restaurant",
		Name:        "Restaurant",
		Description: "Food service business driven by daily covers",
		Category:    "hospitality",
		Kind:        TemplateRestaurant,
		DefaultParameters: map[string]float64{
			ParamCoversPerDay:   100,
			ParamFoodCostRatio:  0.28,
			ParamLaborCostRatio: 0.30,
		},
		RequiredParameters: []string{ParamAverageCheckSize},
	},
	{
		ID:          "generic",
		Name:        "Generic Business",
		Description: "Fallback profile for businesses outside the catalog industries",
		Category:    "general",
		Kind:        TemplateGeneric,
		DefaultParameters: map[string]float64{
			ParamInitialRevenue: 100000,
			ParamGrowthRate:     0.20,
		},
		RequiredParameters: []string{},
	},
}

// TemplateCatalog 返回固定模板目录的拷贝
func TemplateCatalog() []ProjectionTemplate {
	out := make([]ProjectionTemplate, len(templateCatalog))
	copy(out, templateCatalog)
	return out
}

// FindTemplate 按 id 解析目录，未命中返回 ErrTemplateNotFound
func FindTemplate(templateID string) (*ProjectionTemplate, error) {
	for i := range templateCatalog {
		if templateCatalog[i].ID == templateID {
			t := templateCatalog[i]
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, templateID)
}

// GenericTemplate 通用兜底模板，供绕过目录解析的直接调用方使用
func GenericTemplate() *ProjectionTemplate {
	t := templateCatalog[len(templateCatalog)-1]
	return &t
}

// resolveParameters 合并默认参数与调用方参数，并校验必填键。
// 返回第一个缺失的必填键对应的 MissingParameterError。
func (t *ProjectionTemplate) resolveParameters(params map[string]float64) (map[string]float64, error) {
	for _, key := range t.RequiredParameters {
		if _, ok := params[key]; !ok {
			return nil, &MissingParameterError{Key: key}
		}
	}
	resolved := make(map[string]float64, len(t.DefaultParameters)+len(params))
	for k, v := range t.DefaultParameters {
		resolved[k] = v
	}
	for k, v := range params {
		resolved[k] = v
	}
	return resolved, nil
}

// Generate 从显式起始年份生成三年年度预测记录。
// 行业公式按 Kind 枚举分派。
func (t *ProjectionTemplate) Generate(businessPlanID string, startYear int, params map[string]float64) ([]*ProjectionRecord, error) {
	resolved, err := t.resolveParameters(params)
	if err != nil {
		return nil, err
	}

	records := make([]*ProjectionRecord, 0, TemplateHorizonYears)
	for year := 0; year < TemplateHorizonYears; year++ {
		var record *ProjectionRecord
		switch t.Kind {
		case TemplateSaaS:
			record = t.generateSaaSYear(resolved, year)
		case TemplateEcommerce:
			record = t.generateEcommerceYear(resolved, year)
		case TemplateConsulting:
			record = t.generateConsultingYear(resolved, year)
		case TemplateRestaurant:
			record = t.generateRestaurantYear(resolved, year)
		default:
			record = t.generateGenericYear(resolved, year)
		}

		record.BusinessPlanID = businessPlanID
		record.Year = startYear + year
		record.Notes = fmt.Sprintf("Generated from template: %s", t.Name)
		records = append(records, record)
	}
	return records, nil
}

// generateSaaSYear 营收 = MRR × 12 × (1+growth)^year
// 成本结构：COGS 15%，经营费用 30%，市场费用 25%。
func (t *ProjectionTemplate) generateSaaSYear(params map[string]float64, year int) *ProjectionRecord {
	mrr := decimal.NewFromFloat(params[ParamMonthlyRecurringRevenue])
	growth := params[ParamGrowthRate]

	annual := mrr.Mul(decimal.NewFromInt(MonthsPerYear))
	revenue := applyFactor(annual, math.Pow(1+growth, float64(year)))

	return templateRecord(revenue, templateCosts{
		cogsRatio:      0.15,
		opexRatio:      0.30,
		marketingRatio: 0.25,
	}, growth, fmt.Sprintf("MRR %s growing %.0f%% annually", mrr.StringFixed(2), growth*100))
}

// generateEcommerceYear 营收 = 月订单量（按年增长） × 12 × 客单价
// COGS 比例可配置（默认 40%），经营费用 20%，市场费用 15%。
func (t *ProjectionTemplate) generateEcommerceYear(params map[string]float64, year int) *ProjectionRecord {
	aov := decimal.NewFromFloat(params[ParamAverageOrderValue])
	orderGrowth := params[ParamOrderGrowthRate]

	monthlyOrders := params[ParamMonthlyOrders] * math.Pow(1+orderGrowth, float64(year))
	revenue := applyFactor(aov.Mul(decimal.NewFromInt(MonthsPerYear)), monthlyOrders)

	return templateRecord(revenue, templateCosts{
		cogsRatio:      params[ParamCOGSRatio],
		opexRatio:      0.20,
		marketingRatio: 0.15,
	}, orderGrowth, fmt.Sprintf("%.0f orders/month growing %.0f%% annually at AOV %s",
		params[ParamMonthlyOrders], orderGrowth*100, aov.StringFixed(2)))
}

// generateConsultingYear 营收 = 时薪 × 月计费工时 × 12 × 团队人数（每年 +1）
// 无销货成本；薪资 = 人数 × $80,000 计入管理费用；经营费用 15%，市场费用 5%。
func (t *ProjectionTemplate) generateConsultingYear(params map[string]float64, year int) *ProjectionRecord {
	rate := decimal.NewFromFloat(params[ParamHourlyRate])
	teamSize := int(params[ParamTeamSize]) + year

	annualHours := params[ParamBillableHoursPerMonth] * MonthsPerYear * float64(teamSize)
	revenue := applyFactor(rate, annualHours)
	salaries := decimal.NewFromInt(80000).Mul(decimal.NewFromInt(int64(teamSize)))

	record := templateRecord(revenue, templateCosts{
		opexRatio:      0.15,
		marketingRatio: 0.05,
	}, 0, fmt.Sprintf("%d consultants at %s/hour, %.0f billable hours/month each",
		teamSize, rate.StringFixed(2), params[ParamBillableHoursPerMonth]))
	record.AdministrativeExpenses = &salaries
	record.Employees = &teamSize
	return record
}

// generateRestaurantYear 营收 = 日客流（每年 +10%） × 365 × 客单价
// 食材成本默认 28%，人力成本默认 30% 计入管理费用，经营费用 25%，市场费用 3%。
func (t *ProjectionTemplate) generateRestaurantYear(params map[string]float64, year int) *ProjectionRecord {
	check := decimal.NewFromFloat(params[ParamAverageCheckSize])
	covers := params[ParamCoversPerDay] * math.Pow(1.10, float64(year))
	revenue := applyFactor(check.Mul(decimal.NewFromInt(365)), covers)

	labor := applyFactor(revenue, params[ParamLaborCostRatio])
	record := templateRecord(revenue, templateCosts{
		cogsRatio:      params[ParamFoodCostRatio],
		opexRatio:      0.25,
		marketingRatio: 0.03,
	}, 0.10, fmt.Sprintf("%.0f covers/day growing 10%% annually at %s/check",
		params[ParamCoversPerDay], check.StringFixed(2)))
	record.AdministrativeExpenses = &labor
	return record
}

// generateGenericYear 营收 = 初始营收 × (1+growth)^year
// COGS 35%，经营费用 25%，市场费用 10%。
func (t *ProjectionTemplate) generateGenericYear(params map[string]float64, year int) *ProjectionRecord {
	initial, ok := params[ParamInitialRevenue]
	if !ok {
		initial = 100000
	}
	growth, ok := params[ParamGrowthRate]
	if !ok {
		growth = 0.20
	}

	revenue := applyFactor(decimal.NewFromFloat(initial), math.Pow(1+growth, float64(year)))
	return templateRecord(revenue, templateCosts{
		cogsRatio:      0.35,
		opexRatio:      0.25,
		marketingRatio: 0.10,
	}, growth, fmt.Sprintf("initial revenue %.2f growing %.0f%% annually", initial, growth*100))
}

type templateCosts struct {
	cogsRatio      float64
	opexRatio      float64
	marketingRatio float64
}

func templateRecord(revenue decimal.Decimal, costs templateCosts, growth float64, assumptions string) *ProjectionRecord {
	growthRate := decimal.NewFromFloat(growth)
	record := &ProjectionRecord{
		Revenue:           &revenue,
		RevenueGrowthRate: &growthRate,
		Assumptions:       assumptions,
	}
	if costs.cogsRatio > 0 {
		cogs := applyFactor(revenue, costs.cogsRatio)
		record.CostOfGoodsSold = &cogs
	}
	if costs.opexRatio > 0 {
		opex := applyFactor(revenue, costs.opexRatio)
		record.OperatingExpenses = &opex
	}
	if costs.marketingRatio > 0 {
		marketing := applyFactor(revenue, costs.marketingRatio)
		record.MarketingExpenses = &marketing
	}
	return record
}
