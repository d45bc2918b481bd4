package mysql

import (
	"context"

	"github.com/wyfcoding/businessplanning/internal/projection/domain"
	"github.com/wyfcoding/pkg/contextx"
	"gorm.io/gorm"
)

type businessPlanRepository struct{ db *gorm.DB }

// NewBusinessPlanRepository 创建商业计划存在性校验仓储
func NewBusinessPlanRepository(db *gorm.DB) domain.BusinessPlanRepository {
	return &businessPlanRepository{db: db}
}

func (r *businessPlanRepository) Exists(ctx context.Context, businessPlanID string) (bool, error) {
	var count int64
	err := r.getDB(ctx).WithContext(ctx).
		Model(&BusinessPlanModel{}).
		Where("business_plan_id = ?", businessPlanID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *businessPlanRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
