// 生成摘要：实现预测记录的 MySQL 仓储层，基于 GORM。
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/businessplanning/internal/projection/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/logging"
	"gorm.io/gorm"
)

type projectionRepository struct{ db *gorm.DB }

// NewProjectionRepository 创建预测记录仓储
func NewProjectionRepository(db *gorm.DB) domain.ProjectionRepository {
	return &projectionRepository{db: db}
}

func (r *projectionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txCtx := contextx.WithTx(ctx, tx)
		return fn(txCtx)
	})
}

func (r *projectionRepository) Add(ctx context.Context, record *domain.ProjectionRecord) error {
	model := toProjectionModel(record)
	if err := r.getDB(ctx).WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicatePeriod
		}
		logging.Error(ctx, "Failed to add projection",
			"business_plan_id", record.BusinessPlanID, "error", err)
		return err
	}
	record.ID = model.ID
	record.CreatedAt = model.CreatedAt
	record.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *projectionRepository) AddBatch(ctx context.Context, records []*domain.ProjectionRecord) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]*ProjectionModel, 0, len(records))
	for _, record := range records {
		models = append(models, toProjectionModel(record))
	}
	if err := r.getDB(ctx).WithContext(ctx).Create(&models).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicatePeriod
		}
		logging.Error(ctx, "Failed to add projection batch",
			"business_plan_id", records[0].BusinessPlanID, "count", len(records), "error", err)
		return err
	}
	for i, model := range models {
		records[i].ID = model.ID
		records[i].CreatedAt = model.CreatedAt
		records[i].UpdatedAt = model.UpdatedAt
	}
	return nil
}

func (r *projectionRepository) Save(ctx context.Context, record *domain.ProjectionRecord) error {
	model := toProjectionModel(record)
	err := r.getDB(ctx).WithContext(ctx).
		Model(&ProjectionModel{}).
		Where("projection_id = ?", model.ProjectionID).
		Updates(map[string]any{
			"revenue":                 model.Revenue,
			"revenue_growth_rate":     model.RevenueGrowthRate,
			"cost_of_goods_sold":      model.CostOfGoodsSold,
			"operating_expenses":      model.OperatingExpenses,
			"marketing_expenses":      model.MarketingExpenses,
			"r_and_d_expenses":        model.RAndDExpenses,
			"administrative_expenses": model.AdministrativeExpenses,
			"other_expenses":          model.OtherExpenses,
			"cash_flow":               model.CashFlow,
			"cash_balance":            model.CashBalance,
			"employees":               model.Employees,
			"customers":               model.Customers,
			"units_sold":              model.UnitsSold,
			"notes":                   model.Notes,
			"assumptions":             model.Assumptions,
		}).Error
	if err != nil {
		logging.Error(ctx, "Failed to update projection",
			"projection_id", record.ProjectionID, "error", err)
	}
	return err
}

func (r *projectionRepository) Remove(ctx context.Context, projectionID string) error {
	result := r.getDB(ctx).WithContext(ctx).
		Where("projection_id = ?", projectionID).
		Delete(&ProjectionModel{})
	if result.Error != nil {
		logging.Error(ctx, "Failed to remove projection",
			"projection_id", projectionID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProjectionNotFound
	}
	return nil
}

func (r *projectionRepository) FindByID(ctx context.Context, projectionID string) (*domain.ProjectionRecord, error) {
	var model ProjectionModel
	err := r.getDB(ctx).WithContext(ctx).
		Where("projection_id = ?", projectionID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toProjection(&model), nil
}

func (r *projectionRepository) FindByPeriod(ctx context.Context, businessPlanID string, year int, month, quarter *int) (*domain.ProjectionRecord, error) {
	query := r.getDB(ctx).WithContext(ctx).
		Where("business_plan_id = ? AND year = ?", businessPlanID, year)
	if month != nil {
		query = query.Where("month = ?", *month)
	} else {
		query = query.Where("month IS NULL")
	}
	if quarter != nil {
		query = query.Where("quarter = ?", *quarter)
	} else {
		query = query.Where("quarter IS NULL")
	}

	var model ProjectionModel
	err := query.First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return toProjection(&model), nil
}

func (r *projectionRepository) QueryByPlan(ctx context.Context, businessPlanID string, year *int) ([]*domain.ProjectionRecord, error) {
	query := r.getDB(ctx).WithContext(ctx).
		Where("business_plan_id = ?", businessPlanID)
	if year != nil {
		query = query.Where("year = ?", *year)
	}

	var models []ProjectionModel
	if err := query.
		Order("year ASC, quarter ASC, month ASC").
		Find(&models).Error; err != nil {
		logging.Error(ctx, "Failed to query projections",
			"business_plan_id", businessPlanID, "error", err)
		return nil, err
	}

	records := make([]*domain.ProjectionRecord, 0, len(models))
	for i := range models {
		records = append(records, toProjection(&models[i]))
	}
	return records, nil
}

func (r *projectionRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
