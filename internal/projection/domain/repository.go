package domain

import "context"

// ProjectionRepository 预测记录仓储
type ProjectionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	Add(ctx context.Context, record *ProjectionRecord) error
	AddBatch(ctx context.Context, records []*ProjectionRecord) error
	Save(ctx context.Context, record *ProjectionRecord) error
	Remove(ctx context.Context, projectionID string) error
	FindByID(ctx context.Context, projectionID string) (*ProjectionRecord, error)
	FindByPeriod(ctx context.Context, businessPlanID string, year int, month, quarter *int) (*ProjectionRecord, error)
	QueryByPlan(ctx context.Context, businessPlanID string, year *int) ([]*ProjectionRecord, error)
}

// BusinessPlanRepository 商业计划存在性校验（计划本身由外部系统维护）
type BusinessPlanRepository interface {
	Exists(ctx context.Context, businessPlanID string) (bool, error)
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
	PublishInTx(ctx context.Context, tx any, topic string, key string, event any) error
}
