package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/businessplanning/internal/projection/domain"
)

// ProjectionModel MySQL 预测记录表映射
// (business_plan_id, year, month, quarter) 组合唯一索引配合创建前查重
// 共同保障期间唯一性（MySQL 唯一索引对 NULL 不去重）。
type ProjectionModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
	ProjectionID   string    `gorm:"column:projection_id;type:varchar(32);uniqueIndex;not null"`
	BusinessPlanID string    `gorm:"column:business_plan_id;type:varchar(32);index;uniqueIndex:idx_plan_period;not null"`

	Year    int  `gorm:"column:year;uniqueIndex:idx_plan_period;not null"`
	Month   *int `gorm:"column:month;uniqueIndex:idx_plan_period"`
	Quarter *int `gorm:"column:quarter;uniqueIndex:idx_plan_period"`

	Revenue           *decimal.Decimal `gorm:"column:revenue;type:decimal(20,4)"`
	RevenueGrowthRate *decimal.Decimal `gorm:"column:revenue_growth_rate;type:decimal(10,6)"`

	CostOfGoodsSold        *decimal.Decimal `gorm:"column:cost_of_goods_sold;type:decimal(20,4)"`
	OperatingExpenses      *decimal.Decimal `gorm:"column:operating_expenses;type:decimal(20,4)"`
	MarketingExpenses      *decimal.Decimal `gorm:"column:marketing_expenses;type:decimal(20,4)"`
	RAndDExpenses          *decimal.Decimal `gorm:"column:r_and_d_expenses;type:decimal(20,4)"`
	AdministrativeExpenses *decimal.Decimal `gorm:"column:administrative_expenses;type:decimal(20,4)"`
	OtherExpenses          *decimal.Decimal `gorm:"column:other_expenses;type:decimal(20,4)"`

	CashFlow    *decimal.Decimal `gorm:"column:cash_flow;type:decimal(20,4)"`
	CashBalance *decimal.Decimal `gorm:"column:cash_balance;type:decimal(20,4)"`

	Employees *int `gorm:"column:employees"`
	Customers *int `gorm:"column:customers"`
	UnitsSold *int `gorm:"column:units_sold"`

	Notes       string `gorm:"column:notes;type:text"`
	Assumptions string `gorm:"column:assumptions;type:text"`
}

func (ProjectionModel) TableName() string {
	return "financial_projections"
}

// BusinessPlanModel MySQL 商业计划表映射。
// 计划的生命周期由外部系统维护，引擎仅做存在性校验。
type BusinessPlanModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
	BusinessPlanID string    `gorm:"column:business_plan_id;type:varchar(32);uniqueIndex;not null"`
	Name           string    `gorm:"column:name;type:varchar(255)"`
}

func (BusinessPlanModel) TableName() string {
	return "business_plans"
}

func toProjectionModel(record *domain.ProjectionRecord) *ProjectionModel {
	if record == nil {
		return nil
	}
	return &ProjectionModel{
		ID:                     record.ID,
		CreatedAt:              record.CreatedAt,
		UpdatedAt:              record.UpdatedAt,
		ProjectionID:           record.ProjectionID,
		BusinessPlanID:         record.BusinessPlanID,
		Year:                   record.Year,
		Month:                  record.Month,
		Quarter:                record.Quarter,
		Revenue:                record.Revenue,
		RevenueGrowthRate:      record.RevenueGrowthRate,
		CostOfGoodsSold:        record.CostOfGoodsSold,
		OperatingExpenses:      record.OperatingExpenses,
		MarketingExpenses:      record.MarketingExpenses,
		RAndDExpenses:          record.RAndDExpenses,
		AdministrativeExpenses: record.AdministrativeExpenses,
		OtherExpenses:          record.OtherExpenses,
		CashFlow:               record.CashFlow,
		CashBalance:            record.CashBalance,
		Employees:              record.Employees,
		Customers:              record.Customers,
		UnitsSold:              record.UnitsSold,
		Notes:                  record.Notes,
		Assumptions:            record.Assumptions,
	}
}

func toProjection(model *ProjectionModel) *domain.ProjectionRecord {
	if model == nil {
		return nil
	}
	return &domain.ProjectionRecord{
		ID:                     model.ID,
		CreatedAt:              model.CreatedAt,
		UpdatedAt:              model.UpdatedAt,
		ProjectionID:           model.ProjectionID,
		BusinessPlanID:         model.BusinessPlanID,
		Year:                   model.Year,
		Month:                  model.Month,
		Quarter:                model.Quarter,
		Revenue:                model.Revenue,
		RevenueGrowthRate:      model.RevenueGrowthRate,
		CostOfGoodsSold:        model.CostOfGoodsSold,
		OperatingExpenses:      model.OperatingExpenses,
		MarketingExpenses:      model.MarketingExpenses,
		RAndDExpenses:          model.RAndDExpenses,
		AdministrativeExpenses: model.AdministrativeExpenses,
		OtherExpenses:          model.OtherExpenses,
		CashFlow:               model.CashFlow,
		CashBalance:            model.CashBalance,
		Employees:              model.Employees,
		Customers:              model.Customers,
		UnitsSold:              model.UnitsSold,
		Notes:                  model.Notes,
		Assumptions:            model.Assumptions,
	}
}
