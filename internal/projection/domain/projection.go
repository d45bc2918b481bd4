// Package domain 提供商业计划财务预测引擎的核心领域模型。
// 变更说明：实现财务预测记录聚合根，包含期间描述符与派生指标计算。
package domain

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionRecord 财务预测记录聚合根
// 描述一个商业计划在单个期间（年度 / 季度 / 月度）内的财务快照。
// Month 与 Quarter 至多一个有值，两者均为空表示年度记录。
type ProjectionRecord struct {
	ID             uint      `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	ProjectionID   string    `json:"projection_id"`
	BusinessPlanID string    `json:"business_plan_id"`

	Year    int  `json:"year"`
	Month   *int `json:"month,omitempty"`   // 1-12
	Quarter *int `json:"quarter,omitempty"` // 1-4

	Revenue           *decimal.Decimal `json:"revenue,omitempty"`
	RevenueGrowthRate *decimal.Decimal `json:"revenue_growth_rate,omitempty"`

	CostOfGoodsSold        *decimal.Decimal `json:"cost_of_goods_sold,omitempty"`
	OperatingExpenses      *decimal.Decimal `json:"operating_expenses,omitempty"`
	MarketingExpenses      *decimal.Decimal `json:"marketing_expenses,omitempty"`
	RAndDExpenses          *decimal.Decimal `json:"r_and_d_expenses,omitempty"`
	AdministrativeExpenses *decimal.Decimal `json:"administrative_expenses,omitempty"`
	OtherExpenses          *decimal.Decimal `json:"other_expenses,omitempty"`

	CashFlow    *decimal.Decimal `json:"cash_flow,omitempty"`
	CashBalance *decimal.Decimal `json:"cash_balance,omitempty"`

	Employees *int `json:"employees,omitempty"`
	Customers *int `json:"customers,omitempty"`
	UnitsSold *int `json:"units_sold,omitempty"`

	Notes       string `json:"notes,omitempty"`
	Assumptions string `json:"assumptions,omitempty"`
}

// amountOrZero 空值按零参与派生计算
func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// GrossProfit 毛利 = 营收 - 销货成本
func (p *ProjectionRecord) GrossProfit() decimal.Decimal {
	return amountOrZero(p.Revenue).Sub(amountOrZero(p.CostOfGoodsSold))
}

// OperatingCosts 全部经营费用合计（不含销货成本）
func (p *ProjectionRecord) OperatingCosts() decimal.Decimal {
	return amountOrZero(p.OperatingExpenses).
		Add(amountOrZero(p.MarketingExpenses)).
		Add(amountOrZero(p.RAndDExpenses)).
		Add(amountOrZero(p.AdministrativeExpenses)).
		Add(amountOrZero(p.OtherExpenses))
}

// NetIncome 净利润 = 毛利 - 全部经营费用
func (p *ProjectionRecord) NetIncome() decimal.Decimal {
	return p.GrossProfit().Sub(p.OperatingCosts())
}

// EBITDA 息税折旧摊销前利润。
// OtherExpenses 视为非经营性科目，不计入 EBITDA。
func (p *ProjectionRecord) EBITDA() decimal.Decimal {
	return p.GrossProfit().
		Sub(amountOrZero(p.OperatingExpenses)).
		Sub(amountOrZero(p.MarketingExpenses)).
		Sub(amountOrZero(p.RAndDExpenses)).
		Sub(amountOrZero(p.AdministrativeExpenses))
}

// AverageRevenuePerCustomer 单客户平均营收；客户数缺失或为零时返回 nil
func (p *ProjectionRecord) AverageRevenuePerCustomer() *decimal.Decimal {
	if p.Customers == nil || *p.Customers <= 0 {
		return nil
	}
	arpc := amountOrZero(p.Revenue).Div(decimal.NewFromInt(int64(*p.Customers)))
	return &arpc
}

// SamePeriod 判断两条记录是否描述同一期间
func (p *ProjectionRecord) SamePeriod(year int, month, quarter *int) bool {
	if p.Year != year {
		return false
	}
	return intPtrEqual(p.Month, month) && intPtrEqual(p.Quarter, quarter)
}

// PeriodLabel 期间展示标签，如 2026 / 2026-Q2 / 2026-03
func (p *ProjectionRecord) PeriodLabel() string {
	t := time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	switch {
	case p.Month != nil:
		return t.AddDate(0, *p.Month-1, 0).Format("2006-01")
	case p.Quarter != nil:
		return t.Format("2006") + "-Q" + string(rune('0'+*p.Quarter))
	default:
		return t.Format("2006")
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ValidatePeriod 校验期间描述符的结构约束
func ValidatePeriod(year int, month, quarter *int) error {
	if year < 1900 || year > 3000 {
		return ErrInvalidPeriod
	}
	if month != nil && quarter != nil {
		return ErrInvalidPeriod
	}
	if month != nil && (*month < 1 || *month > 12) {
		return ErrInvalidPeriod
	}
	if quarter != nil && (*quarter < 1 || *quarter > 4) {
		return ErrInvalidPeriod
	}
	return nil
}

// periodOrdinal 排序用期间序号：(year, quarter, month)，空值按 0
func periodOrdinal(p *ProjectionRecord) (int, int, int) {
	q, m := 0, 0
	if p.Quarter != nil {
		q = *p.Quarter
	}
	if p.Month != nil {
		m = *p.Month
	}
	return p.Year, q, m
}

// SortChronological 按 (year, quarter, month) 升序原地排序
func SortChronological(records []*ProjectionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		yi, qi, mi := periodOrdinal(records[i])
		yj, qj, mj := periodOrdinal(records[j])
		if yi != yj {
			return yi < yj
		}
		if qi != qj {
			return qi < qj
		}
		return mi < mj
	})
}

// 错误定义
var (
	ErrBusinessPlanNotFound = errors.New("business plan not found")
	ErrProjectionNotFound   = errors.New("projection not found")
	ErrTemplateNotFound     = errors.New("projection template not found")
	ErrDuplicatePeriod      = errors.New("projection for this period already exists")
	ErrNoProjections        = errors.New("no projections exist for this business plan")
	ErrInvalidPeriod        = errors.New("invalid projection period")
	ErrNegativeAmount       = errors.New("financial amounts must not be negative")
	ErrUnsupportedFormat    = errors.New("unsupported export format")
	ErrInvalidScenario      = errors.New("invalid scenario assumptions")
)

// MissingParameterError 模板必填参数缺失
type MissingParameterError struct {
	Key string
}

func (e *MissingParameterError) Error() string {
	return "missing required template parameter: " + e.Key
}
