// HTTP 处理器
// 负责财务预测引擎全部对外操作的路由与错误码转换。
package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/businessplanning/internal/projection/application"
	"github.com/wyfcoding/businessplanning/internal/projection/domain"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
)

// 对外稳定错误码
const (
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "CONFLICT"
	codeValidation = "VALIDATION"
	codeInternal   = "INTERNAL"
)

type Handler struct {
	cmd   *application.ProjectionCommandService
	query *application.ProjectionQueryService
}

func NewHandler(cmd *application.ProjectionCommandService, query *application.ProjectionQueryService) *Handler {
	return &Handler{cmd: cmd, query: query}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1")
	{
		g.GET("/templates", h.ListTemplates)

		g.POST("/plans/:plan_id/projections", h.Create)
		g.GET("/plans/:plan_id/projections", h.List)
		g.POST("/plans/:plan_id/projections/scenario", h.GenerateScenario)
		g.POST("/plans/:plan_id/projections/template", h.ApplyTemplate)
		g.GET("/plans/:plan_id/projections/metrics", h.Metrics)
		g.GET("/plans/:plan_id/projections/export", h.Export)

		g.PUT("/projections/:id", h.Update)
		g.DELETE("/projections/:id", h.Delete)
		g.GET("/projections/:id/validation", h.Validate)
	}
}

// financialFieldsRequest 创建 / 更新共用的字段组载荷
type financialFieldsRequest struct {
	Revenue           *float64 `json:"revenue"`
	RevenueGrowthRate *float64 `json:"revenue_growth_rate"`

	CostOfGoodsSold        *float64 `json:"cost_of_goods_sold"`
	OperatingExpenses      *float64 `json:"operating_expenses"`
	MarketingExpenses      *float64 `json:"marketing_expenses"`
	RAndDExpenses          *float64 `json:"r_and_d_expenses"`
	AdministrativeExpenses *float64 `json:"administrative_expenses"`
	OtherExpenses          *float64 `json:"other_expenses"`

	CashFlow    *float64 `json:"cash_flow"`
	CashBalance *float64 `json:"cash_balance"`

	Employees *int `json:"employees"`
	Customers *int `json:"customers"`
	UnitsSold *int `json:"units_sold"`

	Notes       *string `json:"notes"`
	Assumptions *string `json:"assumptions"`
}

func toDecimal(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}

func (req *financialFieldsRequest) revenueGroup() *application.RevenueInput {
	if req.Revenue == nil && req.RevenueGrowthRate == nil {
		return nil
	}
	return &application.RevenueInput{
		Revenue:    toDecimal(req.Revenue),
		GrowthRate: toDecimal(req.RevenueGrowthRate),
	}
}

func (req *financialFieldsRequest) costGroup() *application.CostInput {
	if req.CostOfGoodsSold == nil && req.OperatingExpenses == nil && req.MarketingExpenses == nil &&
		req.RAndDExpenses == nil && req.AdministrativeExpenses == nil && req.OtherExpenses == nil {
		return nil
	}
	return &application.CostInput{
		CostOfGoodsSold:        toDecimal(req.CostOfGoodsSold),
		OperatingExpenses:      toDecimal(req.OperatingExpenses),
		MarketingExpenses:      toDecimal(req.MarketingExpenses),
		RAndDExpenses:          toDecimal(req.RAndDExpenses),
		AdministrativeExpenses: toDecimal(req.AdministrativeExpenses),
		OtherExpenses:          toDecimal(req.OtherExpenses),
	}
}

func (req *financialFieldsRequest) cashFlowGroup() *application.CashFlowInput {
	if req.CashFlow == nil && req.CashBalance == nil {
		return nil
	}
	return &application.CashFlowInput{
		CashFlow:    toDecimal(req.CashFlow),
		CashBalance: toDecimal(req.CashBalance),
	}
}

func (req *financialFieldsRequest) metricsGroup() *application.OperatingMetricsInput {
	if req.Employees == nil && req.Customers == nil && req.UnitsSold == nil {
		return nil
	}
	return &application.OperatingMetricsInput{
		Employees: req.Employees,
		Customers: req.Customers,
		UnitsSold: req.UnitsSold,
	}
}

func (req *financialFieldsRequest) notesGroup() *application.NotesInput {
	if req.Notes == nil && req.Assumptions == nil {
		return nil
	}
	return &application.NotesInput{Notes: req.Notes, Assumptions: req.Assumptions}
}

// Create 创建单条预测记录
func (h *Handler) Create(c *gin.Context) {
	planID := c.Param("plan_id")
	var req struct {
		Year    int  `json:"year" binding:"required"`
		Month   *int `json:"month"`
		Quarter *int `json:"quarter"`
		financialFieldsRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), codeValidation)
		return
	}

	record, err := h.cmd.Create(c.Request.Context(), application.CreateProjectionCommand{
		BusinessPlanID: planID,
		Year:           req.Year,
		Month:          req.Month,
		Quarter:        req.Quarter,
		Revenue:        req.revenueGroup(),
		Costs:          req.costGroup(),
		CashFlow:       req.cashFlowGroup(),
		Metrics:        req.metricsGroup(),
		Notes:          req.notesGroup(),
	})
	if err != nil {
		h.writeError(c, "create_projection", planID, err)
		return
	}
	response.Success(c, record)
}

// Update 按字段组局部更新
func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	var req financialFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), codeValidation)
		return
	}

	record, err := h.cmd.Update(c.Request.Context(), application.UpdateProjectionCommand{
		ProjectionID: id,
		Revenue:      req.revenueGroup(),
		Costs:        req.costGroup(),
		CashFlow:     req.cashFlowGroup(),
		Metrics:      req.metricsGroup(),
		Notes:        req.notesGroup(),
	})
	if err != nil {
		h.writeError(c, "update_projection", id, err)
		return
	}
	response.Success(c, record)
}

// Delete 永久删除预测记录
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.cmd.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "delete_projection", id, err)
		return
	}
	response.Success(c, gin.H{"projection_id": id})
}

// List 列出计划的预测记录，可按年份过滤
func (h *Handler) List(c *gin.Context) {
	planID := c.Param("plan_id")

	var year *int
	if yearStr := c.Query("year"); yearStr != "" {
		y, err := strconv.Atoi(yearStr)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid year", codeValidation)
			return
		}
		year = &y
	}

	records, err := h.query.List(c.Request.Context(), planID, year)
	if err != nil {
		h.writeError(c, "list_projections", planID, err)
		return
	}
	response.Success(c, records)
}

// GenerateScenario 场景推演批量生成
func (h *Handler) GenerateScenario(c *gin.Context) {
	planID := c.Param("plan_id")
	var req struct {
		Name               string    `json:"name" binding:"required"`
		Frequency          string    `json:"frequency" binding:"required"`
		StartYear          int       `json:"start_year"`
		Years              int       `json:"years" binding:"required"`
		InitialRevenue     float64   `json:"initial_revenue"`
		InitialCashBalance float64   `json:"initial_cash_balance"`
		InitialCustomers   int       `json:"initial_customers"`
		InitialEmployees   int       `json:"initial_employees"`
		AnnualGrowthRate   float64   `json:"annual_growth_rate"`
		CustomerGrowthRate float64   `json:"customer_growth_rate"`
		EmployeeGrowthRate float64   `json:"employee_growth_rate"`
		COGSRatio          float64   `json:"cogs_ratio"`
		OpexRatio          float64   `json:"opex_ratio"`
		MarketingRatio     float64   `json:"marketing_ratio"`
		SalaryPerEmployee  float64   `json:"salary_per_employee"`
		Seasonality        []float64 `json:"seasonality"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), codeValidation)
		return
	}
	if req.StartYear == 0 {
		req.StartYear = time.Now().Year()
	}

	records, err := h.cmd.GenerateScenario(c.Request.Context(), application.GenerateScenarioCommand{
		BusinessPlanID: planID,
		Assumptions: domain.ScenarioAssumptions{
			Name:               req.Name,
			Frequency:          domain.ScenarioFrequency(req.Frequency),
			StartYear:          req.StartYear,
			Years:              req.Years,
			InitialRevenue:     decimal.NewFromFloat(req.InitialRevenue),
			InitialCashBalance: decimal.NewFromFloat(req.InitialCashBalance),
			InitialCustomers:   req.InitialCustomers,
			InitialEmployees:   req.InitialEmployees,
			AnnualGrowthRate:   req.AnnualGrowthRate,
			CustomerGrowthRate: req.CustomerGrowthRate,
			EmployeeGrowthRate: req.EmployeeGrowthRate,
			COGSRatio:          req.COGSRatio,
			OpexRatio:          req.OpexRatio,
			MarketingRatio:     req.MarketingRatio,
			SalaryPerEmployee:  decimal.NewFromFloat(req.SalaryPerEmployee),
			Seasonality:        req.Seasonality,
		},
	})
	if err != nil {
		h.writeError(c, "generate_scenario", planID, err)
		return
	}
	response.Success(c, records)
}

// ApplyTemplate 应用行业模板生成三年年度预测
func (h *Handler) ApplyTemplate(c *gin.Context) {
	planID := c.Param("plan_id")
	var req struct {
		TemplateID string             `json:"template_id" binding:"required"`
		StartYear  int                `json:"start_year"`
		Parameters map[string]float64 `json:"parameters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), codeValidation)
		return
	}
	if req.StartYear == 0 {
		req.StartYear = time.Now().Year()
	}
	if req.Parameters == nil {
		req.Parameters = map[string]float64{}
	}

	records, err := h.cmd.ApplyTemplate(c.Request.Context(), application.ApplyTemplateCommand{
		BusinessPlanID: planID,
		TemplateID:     req.TemplateID,
		StartYear:      req.StartYear,
		Parameters:     req.Parameters,
	})
	if err != nil {
		h.writeError(c, "apply_template", planID, err)
		return
	}
	response.Success(c, records)
}

// Metrics 计算计划的汇总财务指标
func (h *Handler) Metrics(c *gin.Context) {
	planID := c.Param("plan_id")
	metrics, err := h.query.ComputeMetrics(c.Request.Context(), planID)
	if err != nil {
		h.writeError(c, "compute_metrics", planID, err)
		return
	}
	response.Success(c, metrics)
}

// Validate 校验单条预测记录
func (h *Handler) Validate(c *gin.Context) {
	id := c.Param("id")
	result, err := h.query.Validate(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "validate_projection", id, err)
		return
	}
	response.Success(c, result)
}

// Export 导出计划的预测集合
func (h *Handler) Export(c *gin.Context) {
	planID := c.Param("plan_id")
	format := c.DefaultQuery("format", string(application.FormatCSV))

	payload, err := h.query.Export(c.Request.Context(), planID, application.ExportFormat(format))
	if err != nil {
		h.writeError(c, "export_projections", planID, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payload.Filename))
	c.Data(http.StatusOK, payload.ContentType, payload.Bytes)
}

// ListTemplates 返回静态行业模板目录
func (h *Handler) ListTemplates(c *gin.Context) {
	response.Success(c, h.query.Templates())
}

// writeError 领域错误到 HTTP 状态码与稳定错误码的边界转换。
// 未识别的错误统一记录上下文后以通用失败返回，不泄漏内部细节。
func (h *Handler) writeError(c *gin.Context, operation, subjectID string, err error) {
	var missing *domain.MissingParameterError
	switch {
	case errors.Is(err, domain.ErrBusinessPlanNotFound),
		errors.Is(err, domain.ErrProjectionNotFound),
		errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrNoProjections):
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), codeNotFound)
	case errors.Is(err, domain.ErrDuplicatePeriod):
		response.ErrorWithStatus(c, http.StatusConflict, err.Error(), codeConflict)
	case errors.As(err, &missing),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrInvalidScenario),
		errors.Is(err, domain.ErrUnsupportedFormat):
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), codeValidation)
	default:
		logging.Error(c.Request.Context(), "Projection operation failed",
			"operation", operation, "subject_id", subjectID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "internal error", codeInternal)
	}
}
