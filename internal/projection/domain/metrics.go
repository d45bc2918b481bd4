// 变更说明：实现预测集合的汇总财务指标计算，含增长率、利润率、现金跑道与健康评级。
package domain

import (
	"github.com/shopspring/decimal"
)

// FinancialMetrics 商业计划全量预测集合的只读汇总指标。
// 即算即用，本引擎不做持久化。
type FinancialMetrics struct {
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	AverageMonthlyRevenue  decimal.Decimal `json:"average_monthly_revenue"`
	RevenueGrowthRate      decimal.Decimal `json:"revenue_growth_rate"`
	GrossMargin            decimal.Decimal `json:"gross_margin"`
	NetMargin              decimal.Decimal `json:"net_margin"`
	TotalCashFlow          decimal.Decimal `json:"total_cash_flow"`
	AverageMonthlyCashFlow decimal.Decimal `json:"average_monthly_cash_flow"`
	CashRunwayMonths       decimal.Decimal `json:"cash_runway_months"`
	FinancialHealthScore   string          `json:"financial_health_score"` // A-F
	Insights               []string        `json:"insights"`
	RiskFactors            []string        `json:"risk_factors"`
	Recommendations        []string        `json:"recommendations"`
}

// 健康评分规则：基础 50 分，逐项加分后映射为字母等级
const (
	healthBaseScore        = 50
	healthNetMarginBonus   = 20 // 净利率 > 10%
	healthGrossMarginBonus = 15 // 毛利率 > 40%
	healthGrowthBonus      = 15 // 营收增长 > 20%
	healthRunwayBonus      = 10 // 现金跑道 > 12 个月
)

// CalculateMetrics 对一个商业计划的预测集合计算汇总指标。
// 记录按期间先后排序后参与首末增长等顺序敏感的计算。
func CalculateMetrics(records []*ProjectionRecord) (*FinancialMetrics, error) {
	if len(records) == 0 {
		return nil, ErrNoProjections
	}

	sorted := make([]*ProjectionRecord, len(records))
	copy(sorted, records)
	SortChronological(sorted)

	m := &FinancialMetrics{
		Insights:        []string{},
		RiskFactors:     []string{},
		Recommendations: []string{},
	}

	var (
		revenueCount  int64
		cashFlowCount int64
		totalGross    decimal.Decimal
		totalNet      decimal.Decimal
		firstRevenue  *decimal.Decimal
		lastRevenue   *decimal.Decimal

		burnTotal decimal.Decimal // 亏损期间现金流出绝对值之和
		burnCount int64
		lastCash  *decimal.Decimal
	)

	for _, r := range sorted {
		if r.Revenue != nil {
			m.TotalRevenue = m.TotalRevenue.Add(*r.Revenue)
			revenueCount++
			if firstRevenue == nil {
				firstRevenue = r.Revenue
			}
			lastRevenue = r.Revenue
		}
		totalGross = totalGross.Add(r.GrossProfit())
		totalNet = totalNet.Add(r.NetIncome())

		if r.CashFlow != nil {
			m.TotalCashFlow = m.TotalCashFlow.Add(*r.CashFlow)
			cashFlowCount++
			if r.CashFlow.IsNegative() {
				burnTotal = burnTotal.Add(r.CashFlow.Abs())
				burnCount++
			}
		}
		if r.CashBalance != nil {
			lastCash = r.CashBalance
		}
	}

	if revenueCount > 0 {
		m.AverageMonthlyRevenue = m.TotalRevenue.Div(decimal.NewFromInt(revenueCount)).Round(2)
	}
	if cashFlowCount > 0 {
		m.AverageMonthlyCashFlow = m.TotalCashFlow.Div(decimal.NewFromInt(cashFlowCount)).Round(2)
	}

	// 首末营收增长率：需要至少两条带营收的记录且首期营收非零
	if revenueCount >= 2 && firstRevenue != nil && !firstRevenue.IsZero() {
		m.RevenueGrowthRate = lastRevenue.Sub(*firstRevenue).Div(*firstRevenue)
	}

	if !m.TotalRevenue.IsZero() {
		m.GrossMargin = totalGross.Div(m.TotalRevenue)
		m.NetMargin = totalNet.Div(m.TotalRevenue)
	}

	// 现金跑道仅由亏损期间的平均消耗推导；无亏损期间时为 0
	if burnCount > 0 && lastCash != nil {
		averageBurn := burnTotal.Div(decimal.NewFromInt(burnCount))
		if !averageBurn.IsZero() {
			m.CashRunwayMonths = lastCash.Div(averageBurn).Round(1)
		}
	}

	m.FinancialHealthScore = healthGrade(m)
	applyThresholdRules(m)
	return m, nil
}

func healthGrade(m *FinancialMetrics) string {
	score := healthBaseScore
	if m.NetMargin.GreaterThan(decimal.NewFromFloat(0.10)) {
		score += healthNetMarginBonus
	}
	if m.GrossMargin.GreaterThan(decimal.NewFromFloat(0.40)) {
		score += healthGrossMarginBonus
	}
	if m.RevenueGrowthRate.GreaterThan(decimal.NewFromFloat(0.20)) {
		score += healthGrowthBonus
	}
	if m.CashRunwayMonths.GreaterThan(decimal.NewFromInt(12)) {
		score += healthRunwayBonus
	}

	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// applyThresholdRules 按固定阈值填充洞察 / 风险 / 建议
func applyThresholdRules(m *FinancialMetrics) {
	if m.RevenueGrowthRate.GreaterThan(decimal.NewFromFloat(0.50)) {
		m.Insights = append(m.Insights, "Exceptional revenue growth projected")
	} else if m.RevenueGrowthRate.GreaterThan(decimal.NewFromFloat(0.20)) {
		m.Insights = append(m.Insights, "Strong revenue growth projected")
	}

	if m.GrossMargin.GreaterThan(decimal.NewFromFloat(0.60)) {
		m.Insights = append(m.Insights, "Healthy gross margins indicate strong pricing power")
	}

	if m.NetMargin.IsNegative() {
		m.RiskFactors = append(m.RiskFactors, "Negative profit margins across the projection horizon")
		m.Recommendations = append(m.Recommendations, "Review cost structure to optimize spending and restore profitability")
	}

	if m.CashRunwayMonths.IsZero() {
		m.Insights = append(m.Insights, "No loss-making periods projected; cash runway not applicable")
	} else {
		if m.CashRunwayMonths.LessThan(decimal.NewFromInt(6)) {
			m.RiskFactors = append(m.RiskFactors, "Short cash runway of less than 6 months")
		}
		if m.CashRunwayMonths.LessThan(decimal.NewFromInt(12)) {
			m.Recommendations = append(m.Recommendations, "Raise additional funding or improve cash flow to extend runway")
		}
	}
}
