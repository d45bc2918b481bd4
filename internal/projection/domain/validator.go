// 变更说明：实现单条预测记录的规则校验与 0-100 启发式健康评分。
package domain

import "github.com/shopspring/decimal"

// ValidationResult 单条记录的校验结论
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
	HealthScore int      `json:"health_score"` // 0-100
}

// 单记录评分规则
const (
	recordBaseScore        = 50
	recordRevenueBonus     = 10
	recordNetIncomeBonus   = 20
	recordNetIncomePenalty = 10
	recordCashFlowBonus    = 15
	recordCashFlowPenalty  = 5
	suggestionThreshold    = 60
)

// ValidateProjection 纯函数校验，无任何 I/O。
func ValidateProjection(record *ProjectionRecord) *ValidationResult {
	result := &ValidationResult{
		IsValid:     true,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}

	if record.Revenue != nil && record.Revenue.IsNegative() {
		result.IsValid = false
		result.Errors = append(result.Errors, "revenue must not be negative")
	}

	revenue := amountOrZero(record.Revenue)
	if record.CostOfGoodsSold != nil && record.CostOfGoodsSold.GreaterThan(revenue) {
		result.Warnings = append(result.Warnings, "cost of goods sold exceeds revenue, gross profit is negative")
	}
	if record.NetIncome().IsNegative() {
		result.Warnings = append(result.Warnings, "projected net income is negative")
	}
	if record.CashFlow != nil && record.CashFlow.IsNegative() {
		result.Warnings = append(result.Warnings, "projected cash flow is negative")
	}

	result.HealthScore = recordHealthScore(record)

	if result.HealthScore < suggestionThreshold {
		result.Suggestions = append(result.Suggestions,
			"Review the cost structure for this period",
			"Rebalance revenue targets against projected expenses")
	}
	return result
}

// recordHealthScore 基础 50 分的启发式评分，钳制在 [0,100]
func recordHealthScore(record *ProjectionRecord) int {
	score := recordBaseScore

	revenue := amountOrZero(record.Revenue)
	if revenue.IsPositive() {
		score += recordRevenueBonus
	}

	net := record.NetIncome()
	if net.IsPositive() {
		score += recordNetIncomeBonus
	} else if net.IsNegative() {
		score -= recordNetIncomePenalty
	}

	if record.CashFlow != nil {
		if record.CashFlow.IsPositive() {
			score += recordCashFlowBonus
		} else if record.CashFlow.IsNegative() {
			score -= recordCashFlowPenalty
		}
	}

	// 毛利率梯度加分
	if revenue.IsPositive() {
		margin := record.GrossProfit().Div(revenue)
		switch {
		case margin.GreaterThan(decimal.NewFromFloat(0.50)):
			score += 15
		case margin.GreaterThan(decimal.NewFromFloat(0.30)):
			score += 10
		case margin.GreaterThan(decimal.NewFromFloat(0.10)):
			score += 5
		}
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
