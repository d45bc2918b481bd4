package application

import (
	"context"

	"github.com/wyfcoding/businessplanning/internal/projection/domain"
)

// ProjectionQueryService 预测记录查询服务，只读消费当前已持久化的记录
type ProjectionQueryService struct {
	repo domain.ProjectionRepository
}

// NewProjectionQueryService 创建查询服务实例
func NewProjectionQueryService(repo domain.ProjectionRepository) *ProjectionQueryService {
	return &ProjectionQueryService{repo: repo}
}

// List 按 (year, quarter, month) 升序返回商业计划的预测记录，可按年份过滤
func (s *ProjectionQueryService) List(ctx context.Context, businessPlanID string, year *int) ([]*domain.ProjectionRecord, error) {
	records, err := s.repo.QueryByPlan(ctx, businessPlanID, year)
	if err != nil {
		return nil, err
	}
	domain.SortChronological(records)
	return records, nil
}

// Get 按记录 ID 查询
func (s *ProjectionQueryService) Get(ctx context.Context, projectionID string) (*domain.ProjectionRecord, error) {
	record, err := s.repo.FindByID(ctx, projectionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrProjectionNotFound
	}
	return record, nil
}

// ComputeMetrics 对计划的全量预测集合计算汇总指标；无记录时报错
func (s *ProjectionQueryService) ComputeMetrics(ctx context.Context, businessPlanID string) (*domain.FinancialMetrics, error) {
	records, err := s.repo.QueryByPlan(ctx, businessPlanID, nil)
	if err != nil {
		return nil, err
	}
	return domain.CalculateMetrics(records)
}

// Validate 对单条已持久化记录执行规则校验
func (s *ProjectionQueryService) Validate(ctx context.Context, projectionID string) (*domain.ValidationResult, error) {
	record, err := s.Get(ctx, projectionID)
	if err != nil {
		return nil, err
	}
	return domain.ValidateProjection(record), nil
}

// Templates 返回静态行业模板目录
func (s *ProjectionQueryService) Templates() []domain.ProjectionTemplate {
	return domain.TemplateCatalog()
}
