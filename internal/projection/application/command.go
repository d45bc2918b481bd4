package application

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/businessplanning/internal/projection/domain"
	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/pkg/idgen"
)

// RevenueInput 营收字段组
type RevenueInput struct {
	Revenue    *decimal.Decimal
	GrowthRate *decimal.Decimal
}

// CostInput 成本字段组，各科目可独立设置
type CostInput struct {
	CostOfGoodsSold        *decimal.Decimal
	OperatingExpenses      *decimal.Decimal
	MarketingExpenses      *decimal.Decimal
	RAndDExpenses          *decimal.Decimal
	AdministrativeExpenses *decimal.Decimal
	OtherExpenses          *decimal.Decimal
}

// CashFlowInput 现金流字段组
type CashFlowInput struct {
	CashFlow    *decimal.Decimal
	CashBalance *decimal.Decimal
}

// OperatingMetricsInput 经营指标字段组
type OperatingMetricsInput struct {
	Employees *int
	Customers *int
	UnitsSold *int
}

// NotesInput 备注字段组
type NotesInput struct {
	Notes       *string
	Assumptions *string
}

// CreateProjectionCommand 创建预测记录命令
type CreateProjectionCommand struct {
	BusinessPlanID string
	Year           int
	Month          *int
	Quarter        *int

	Revenue  *RevenueInput
	Costs    *CostInput
	CashFlow *CashFlowInput
	Metrics  *OperatingMetricsInput
	Notes    *NotesInput
}

// UpdateProjectionCommand 更新预测记录命令。
// 仅更新出现的字段组，未出现的字段组保持原值。
type UpdateProjectionCommand struct {
	ProjectionID string

	Revenue  *RevenueInput
	Costs    *CostInput
	CashFlow *CashFlowInput
	Metrics  *OperatingMetricsInput
	Notes    *NotesInput
}

// GenerateScenarioCommand 场景推演命令
type GenerateScenarioCommand struct {
	BusinessPlanID string
	Assumptions    domain.ScenarioAssumptions
}

// ApplyTemplateCommand 行业模板应用命令
type ApplyTemplateCommand struct {
	BusinessPlanID string
	TemplateID     string
	StartYear      int
	Parameters     map[string]float64
}

// ProjectionCommandService 预测记录命令服务
type ProjectionCommandService struct {
	repo      domain.ProjectionRepository
	plans     domain.BusinessPlanRepository
	publisher domain.EventPublisher
}

// NewProjectionCommandService 创建命令服务实例
func NewProjectionCommandService(
	repo domain.ProjectionRepository,
	plans domain.BusinessPlanRepository,
	publisher domain.EventPublisher,
) *ProjectionCommandService {
	return &ProjectionCommandService{repo: repo, plans: plans, publisher: publisher}
}

// Create 创建单条预测记录。
// 同一商业计划下 (year, month, quarter) 期间必须唯一，重复创建被拒绝而非覆盖。
func (s *ProjectionCommandService) Create(ctx context.Context, cmd CreateProjectionCommand) (*domain.ProjectionRecord, error) {
	if err := domain.ValidatePeriod(cmd.Year, cmd.Month, cmd.Quarter); err != nil {
		return nil, err
	}
	if err := validateAmounts(cmd.Revenue, cmd.Costs); err != nil {
		return nil, err
	}
	if err := s.requirePlan(ctx, cmd.BusinessPlanID); err != nil {
		return nil, err
	}

	record := &domain.ProjectionRecord{
		ProjectionID:   fmt.Sprintf("FP%d", idgen.GenID()),
		BusinessPlanID: cmd.BusinessPlanID,
		Year:           cmd.Year,
		Month:          cmd.Month,
		Quarter:        cmd.Quarter,
	}
	applyFieldGroups(record, cmd.Revenue, cmd.Costs, cmd.CashFlow, cmd.Metrics, cmd.Notes)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByPeriod(txCtx, cmd.BusinessPlanID, cmd.Year, cmd.Month, cmd.Quarter)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicatePeriod
		}
		if err := s.repo.Add(txCtx, record); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		event := domain.ProjectionCreatedEvent{
			ProjectionID:   record.ProjectionID,
			BusinessPlanID: record.BusinessPlanID,
			Year:           record.Year,
			Month:          record.Month,
			Quarter:        record.Quarter,
			Timestamp:      time.Now(),
		}
		return s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), domain.ProjectionCreatedEventType, record.BusinessPlanID, event)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Update 按字段组局部更新预测记录
func (s *ProjectionCommandService) Update(ctx context.Context, cmd UpdateProjectionCommand) (*domain.ProjectionRecord, error) {
	if err := validateAmounts(cmd.Revenue, cmd.Costs); err != nil {
		return nil, err
	}

	record, err := s.repo.FindByID(ctx, cmd.ProjectionID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.ErrProjectionNotFound
	}

	applyFieldGroups(record, cmd.Revenue, cmd.Costs, cmd.CashFlow, cmd.Metrics, cmd.Notes)
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete 永久删除预测记录
func (s *ProjectionCommandService) Delete(ctx context.Context, projectionID string) error {
	record, err := s.repo.FindByID(ctx, projectionID)
	if err != nil {
		return err
	}
	if record == nil {
		return domain.ErrProjectionNotFound
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Remove(txCtx, projectionID); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		event := domain.ProjectionDeletedEvent{
			ProjectionID:   record.ProjectionID,
			BusinessPlanID: record.BusinessPlanID,
			Timestamp:      time.Now(),
		}
		return s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), domain.ProjectionDeletedEventType, record.BusinessPlanID, event)
	})
}

// GenerateScenario 展开场景假设并整批持久化（全部成功或全部失败）
func (s *ProjectionCommandService) GenerateScenario(ctx context.Context, cmd GenerateScenarioCommand) ([]*domain.ProjectionRecord, error) {
	if err := s.requirePlan(ctx, cmd.BusinessPlanID); err != nil {
		return nil, err
	}

	records, err := domain.GenerateScenario(cmd.BusinessPlanID, cmd.Assumptions)
	if err != nil {
		return nil, err
	}

	if err := s.persistBatch(ctx, cmd.BusinessPlanID, records, domain.ProjectionGeneratedEvent{
		BusinessPlanID: cmd.BusinessPlanID,
		Source:         "scenario",
		Name:           cmd.Assumptions.Name,
		RecordCount:    len(records),
		StartYear:      cmd.Assumptions.StartYear,
	}); err != nil {
		return nil, err
	}
	return records, nil
}

// ApplyTemplate 解析行业模板并整批持久化三年年度预测
func (s *ProjectionCommandService) ApplyTemplate(ctx context.Context, cmd ApplyTemplateCommand) ([]*domain.ProjectionRecord, error) {
	if err := s.requirePlan(ctx, cmd.BusinessPlanID); err != nil {
		return nil, err
	}

	template, err := domain.FindTemplate(cmd.TemplateID)
	if err != nil {
		return nil, err
	}

	records, err := template.Generate(cmd.BusinessPlanID, cmd.StartYear, cmd.Parameters)
	if err != nil {
		return nil, err
	}

	if err := s.persistBatch(ctx, cmd.BusinessPlanID, records, domain.ProjectionGeneratedEvent{
		BusinessPlanID: cmd.BusinessPlanID,
		Source:         "template",
		Name:           template.ID,
		RecordCount:    len(records),
		StartYear:      cmd.StartYear,
	}); err != nil {
		return nil, err
	}
	return records, nil
}

// persistBatch 为批次分配记录 ID 并在单事务内写入与发布事件。
// 写入前检查取消信号，取消时整批丢弃。
func (s *ProjectionCommandService) persistBatch(ctx context.Context, businessPlanID string, records []*domain.ProjectionRecord, event domain.ProjectionGeneratedEvent) error {
	for _, record := range records {
		record.ProjectionID = fmt.Sprintf("FP%d", idgen.GenID())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.AddBatch(txCtx, records); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		event.Timestamp = time.Now()
		return s.publisher.PublishInTx(ctx, contextx.GetTx(txCtx), domain.ProjectionGeneratedEventType, businessPlanID, event)
	})
}

func (s *ProjectionCommandService) requirePlan(ctx context.Context, businessPlanID string) error {
	exists, err := s.plans.Exists(ctx, businessPlanID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrBusinessPlanNotFound
	}
	return nil
}

// validateAmounts 创建 / 更新共用的金额约束
func validateAmounts(revenue *RevenueInput, costs *CostInput) error {
	if revenue != nil && revenue.Revenue != nil && revenue.Revenue.IsNegative() {
		return fmt.Errorf("%w: revenue", domain.ErrNegativeAmount)
	}
	if costs == nil {
		return nil
	}
	for name, amount := range map[string]*decimal.Decimal{
		"cost_of_goods_sold":      costs.CostOfGoodsSold,
		"operating_expenses":      costs.OperatingExpenses,
		"marketing_expenses":      costs.MarketingExpenses,
		"r_and_d_expenses":        costs.RAndDExpenses,
		"administrative_expenses": costs.AdministrativeExpenses,
		"other_expenses":          costs.OtherExpenses,
	} {
		if amount != nil && amount.IsNegative() {
			return fmt.Errorf("%w: %s", domain.ErrNegativeAmount, name)
		}
	}
	return nil
}

// applyFieldGroups 将出现的字段组写入记录，nil 字段组不动
func applyFieldGroups(record *domain.ProjectionRecord, revenue *RevenueInput, costs *CostInput,
	cashFlow *CashFlowInput, metrics *OperatingMetricsInput, notes *NotesInput) {

	if revenue != nil {
		if revenue.Revenue != nil {
			record.Revenue = revenue.Revenue
		}
		if revenue.GrowthRate != nil {
			record.RevenueGrowthRate = revenue.GrowthRate
		}
	}
	if costs != nil {
		if costs.CostOfGoodsSold != nil {
			record.CostOfGoodsSold = costs.CostOfGoodsSold
		}
		if costs.OperatingExpenses != nil {
			record.OperatingExpenses = costs.OperatingExpenses
		}
		if costs.MarketingExpenses != nil {
			record.MarketingExpenses = costs.MarketingExpenses
		}
		if costs.RAndDExpenses != nil {
			record.RAndDExpenses = costs.RAndDExpenses
		}
		if costs.AdministrativeExpenses != nil {
			record.AdministrativeExpenses = costs.AdministrativeExpenses
		}
		if costs.OtherExpenses != nil {
			record.OtherExpenses = costs.OtherExpenses
		}
	}
	if cashFlow != nil {
		if cashFlow.CashFlow != nil {
			record.CashFlow = cashFlow.CashFlow
		}
		if cashFlow.CashBalance != nil {
			record.CashBalance = cashFlow.CashBalance
		}
	}
	if metrics != nil {
		if metrics.Employees != nil {
			record.Employees = metrics.Employees
		}
		if metrics.Customers != nil {
			record.Customers = metrics.Customers
		}
		if metrics.UnitsSold != nil {
			record.UnitsSold = metrics.UnitsSold
		}
	}
	if notes != nil {
		if notes.Notes != nil {
			record.Notes = *notes.Notes
		}
		if notes.Assumptions != nil {
			record.Assumptions = *notes.Assumptions
		}
	}
}
