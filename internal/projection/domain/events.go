package domain

import "time"

// 事件主题
const (
	ProjectionCreatedEventType   = "projection.created"
	ProjectionGeneratedEventType = "projection.batch_generated"
	ProjectionDeletedEventType   = "projection.deleted"
)

// ProjectionCreatedEvent 单条预测记录创建事件
type ProjectionCreatedEvent struct {
	ProjectionID   string    `json:"projection_id"`
	BusinessPlanID string    `json:"business_plan_id"`
	Year           int       `json:"year"`
	Month          *int      `json:"month,omitempty"`
	Quarter        *int      `json:"quarter,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// ProjectionGeneratedEvent 批量生成事件（场景推演或行业模板）
type ProjectionGeneratedEvent struct {
	BusinessPlanID string    `json:"business_plan_id"`
	Source         string    `json:"source"` // scenario | template
	Name           string    `json:"name"`
	RecordCount    int       `json:"record_count"`
	StartYear      int       `json:"start_year"`
	Timestamp      time.Time `json:"timestamp"`
}

// ProjectionDeletedEvent 预测记录删除事件
type ProjectionDeletedEvent struct {
	ProjectionID   string    `json:"projection_id"`
	BusinessPlanID string    `json:"business_plan_id"`
	Timestamp      time.Time `json:"timestamp"`
}
