// 变更说明：实现场景推演生成器，将一组增长 / 成本假设展开为多期间预测记录批次。
package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ScenarioFrequency 生成频率
type ScenarioFrequency string

const (
	FrequencyYearly    ScenarioFrequency = "yearly"
	FrequencyQuarterly ScenarioFrequency = "quarterly"
	FrequencyMonthly   ScenarioFrequency = "monthly"
)

const (
	QuartersPerYear = 4
	MonthsPerYear   = 12
)

// ScenarioAssumptions 场景假设集
// 金额使用 decimal，比例与增长率使用 float64，仅用于推导期间系数。
type ScenarioAssumptions struct {
	Name      string
	Frequency ScenarioFrequency
	StartYear int
	Years     int

	InitialRevenue     decimal.Decimal
	InitialCashBalance decimal.Decimal
	InitialCustomers   int
	InitialEmployees   int

	AnnualGrowthRate   float64 // 年化营收增长率，0.2 表示 20%
	CustomerGrowthRate float64
	EmployeeGrowthRate float64

	COGSRatio         float64 // 销货成本占营收比例
	OpexRatio         float64
	MarketingRatio    float64
	SalaryPerEmployee decimal.Decimal // 人均年薪，计入管理费用

	Seasonality []float64 // 月度频率可选，按日历月索引的 12 个季节性系数
}

// QuarterlyRate 年化增长率对应的季度复利等价增长率：(1+r)^(1/4) - 1
func QuarterlyRate(annual float64) float64 {
	return math.Pow(1+annual, 1.0/QuartersPerYear) - 1
}

// MonthlyRate 年化增长率对应的月度复利等价增长率：(1+r)^(1/12) - 1
func MonthlyRate(annual float64) float64 {
	return math.Pow(1+annual, 1.0/MonthsPerYear) - 1
}

// applyFactor 以浮点系数缩放定点金额，结果保留两位小数
func applyFactor(amount decimal.Decimal, factor float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(factor)).Round(2)
}

// compoundCount 人数按年复利，四舍五入为整数
func compoundCount(initial int, rate float64, yearIndex int) int {
	return int(math.Round(float64(initial) * math.Pow(1+rate, float64(yearIndex))))
}

func (a *ScenarioAssumptions) validate() error {
	if a.Years < 1 {
		return fmt.Errorf("%w: horizon must be at least one year", ErrInvalidScenario)
	}
	switch a.Frequency {
	case FrequencyYearly, FrequencyQuarterly, FrequencyMonthly:
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidScenario, a.Frequency)
	}
	if a.InitialRevenue.IsNegative() || a.SalaryPerEmployee.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidScenario, ErrNegativeAmount)
	}
	if a.InitialCustomers < 0 || a.InitialEmployees < 0 {
		return fmt.Errorf("%w: headcounts must not be negative", ErrInvalidScenario)
	}
	if a.Seasonality != nil {
		if a.Frequency != FrequencyMonthly {
			return fmt.Errorf("%w: seasonality only applies to monthly frequency", ErrInvalidScenario)
		}
		if len(a.Seasonality) != MonthsPerYear {
			return fmt.Errorf("%w: seasonality requires exactly %d factors", ErrInvalidScenario, MonthsPerYear)
		}
		for i, f := range a.Seasonality {
			if f <= 0 {
				return fmt.Errorf("%w: seasonality factor for month %d must be positive", ErrInvalidScenario, i+1)
			}
		}
	}
	return nil
}

// GenerateScenario 将场景假设展开为一批预测记录。
// 不做任何持久化，由调用方整批写入存储。
func GenerateScenario(businessPlanID string, a ScenarioAssumptions) ([]*ProjectionRecord, error) {
	if err := a.validate(); err != nil {
		return nil, err
	}

	switch a.Frequency {
	case FrequencyYearly:
		return generateYearly(businessPlanID, a), nil
	case FrequencyQuarterly:
		return generateQuarterly(businessPlanID, a), nil
	default:
		return generateMonthly(businessPlanID, a), nil
	}
}

func generateYearly(businessPlanID string, a ScenarioAssumptions) []*ProjectionRecord {
	records := make([]*ProjectionRecord, 0, a.Years)
	cashBalance := a.InitialCashBalance

	for y := 0; y < a.Years; y++ {
		revenue := applyFactor(a.InitialRevenue, math.Pow(1+a.AnnualGrowthRate, float64(y)))
		employees := compoundCount(a.InitialEmployees, a.EmployeeGrowthRate, y)
		customers := compoundCount(a.InitialCustomers, a.CustomerGrowthRate, y)

		record := buildScenarioRecord(businessPlanID, a, scenarioPeriod{year: a.StartYear + y},
			revenue,
			applyFactor(revenue, a.COGSRatio),
			applyFactor(revenue, a.OpexRatio),
			applyFactor(revenue, a.MarketingRatio),
			a.SalaryPerEmployee.Mul(decimal.NewFromInt(int64(employees))).Round(2),
			employees, customers)

		cashBalance = advanceCash(record, cashBalance)
		records = append(records, record)
	}
	return records
}

func generateQuarterly(businessPlanID string, a ScenarioAssumptions) []*ProjectionRecord {
	records := make([]*ProjectionRecord, 0, a.Years*QuartersPerYear)
	rate := QuarterlyRate(a.AnnualGrowthRate)
	baseQuarterly := a.InitialRevenue.Div(decimal.NewFromInt(QuartersPerYear))
	cashBalance := a.InitialCashBalance

	for y := 0; y < a.Years; y++ {
		annualRevenue := applyFactor(a.InitialRevenue, math.Pow(1+a.AnnualGrowthRate, float64(y)))
		employees := compoundCount(a.InitialEmployees, a.EmployeeGrowthRate, y)
		customers := compoundCount(a.InitialCustomers, a.CustomerGrowthRate, y)
		salary := a.SalaryPerEmployee.Mul(decimal.NewFromInt(int64(employees))).
			Div(decimal.NewFromInt(QuartersPerYear)).Round(2)

		for q := 1; q <= QuartersPerYear; q++ {
			index := y*QuartersPerYear + q - 1 // 自场景起点的季度序号
			revenue := applyFactor(baseQuarterly, math.Pow(1+rate, float64(index)))
			quarter := q

			record := buildScenarioRecord(businessPlanID, a,
				scenarioPeriod{year: a.StartYear + y, quarter: &quarter},
				revenue,
				applyFactor(revenue, a.COGSRatio),
				// 经营费用按年摊提至季度
				applyFactor(annualRevenue, a.OpexRatio).Div(decimal.NewFromInt(QuartersPerYear)).Round(2),
				applyFactor(revenue, a.MarketingRatio),
				salary,
				employees, customers)

			cashBalance = advanceCash(record, cashBalance)
			records = append(records, record)
		}
	}
	return records
}

func generateMonthly(businessPlanID string, a ScenarioAssumptions) []*ProjectionRecord {
	records := make([]*ProjectionRecord, 0, a.Years*MonthsPerYear)
	rate := MonthlyRate(a.AnnualGrowthRate)
	baseMonthly := a.InitialRevenue.Div(decimal.NewFromInt(MonthsPerYear))
	cashBalance := a.InitialCashBalance

	for y := 0; y < a.Years; y++ {
		annualRevenue := applyFactor(a.InitialRevenue, math.Pow(1+a.AnnualGrowthRate, float64(y)))
		employees := compoundCount(a.InitialEmployees, a.EmployeeGrowthRate, y)
		customers := compoundCount(a.InitialCustomers, a.CustomerGrowthRate, y)
		salary := a.SalaryPerEmployee.Mul(decimal.NewFromInt(int64(employees))).
			Div(decimal.NewFromInt(MonthsPerYear)).Round(2)

		for m := 1; m <= MonthsPerYear; m++ {
			index := y*MonthsPerYear + m - 1 // 自场景起点的月份序号
			revenue := applyFactor(baseMonthly, math.Pow(1+rate, float64(index)))
			if a.Seasonality != nil {
				// 季节性系数在复利增长之后按日历月叠加
				revenue = applyFactor(revenue, a.Seasonality[m-1])
			}
			month := m

			record := buildScenarioRecord(businessPlanID, a,
				scenarioPeriod{year: a.StartYear + y, month: &month},
				revenue,
				applyFactor(revenue, a.COGSRatio),
				applyFactor(annualRevenue, a.OpexRatio).Div(decimal.NewFromInt(MonthsPerYear)).Round(2),
				applyFactor(revenue, a.MarketingRatio),
				salary,
				employees, customers)

			cashBalance = advanceCash(record, cashBalance)
			records = append(records, record)
		}
	}
	return records
}

type scenarioPeriod struct {
	year    int
	month   *int
	quarter *int
}

func buildScenarioRecord(businessPlanID string, a ScenarioAssumptions, period scenarioPeriod,
	revenue, cogs, opex, marketing, admin decimal.Decimal, employees, customers int) *ProjectionRecord {

	growth := decimal.NewFromFloat(a.AnnualGrowthRate)
	return &ProjectionRecord{
		BusinessPlanID:         businessPlanID,
		Year:                   period.year,
		Month:                  period.month,
		Quarter:                period.quarter,
		Revenue:                &revenue,
		RevenueGrowthRate:      &growth,
		CostOfGoodsSold:        &cogs,
		OperatingExpenses:      &opex,
		MarketingExpenses:      &marketing,
		AdministrativeExpenses: &admin,
		Employees:              &employees,
		Customers:              &customers,
		Notes:                  fmt.Sprintf("Scenario: %s", a.Name),
		Assumptions: fmt.Sprintf("generated %s at %.2f%% annual revenue growth (COGS %.0f%%, opex %.0f%%, marketing %.0f%%)",
			a.Frequency, a.AnnualGrowthRate*100, a.COGSRatio*100, a.OpexRatio*100, a.MarketingRatio*100),
	}
}

// advanceCash 以当期净利润滚动现金余额，并回写现金流字段
func advanceCash(record *ProjectionRecord, previous decimal.Decimal) decimal.Decimal {
	net := record.NetIncome()
	balance := previous.Add(net)
	record.CashFlow = &net
	record.CashBalance = &balance
	return balance
}
