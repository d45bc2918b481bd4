// 变更说明：实现预测集合的 CSV / JSON / Excel 导出载荷生成。
package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/businessplanning/internal/projection/domain"
)

// ExportFormat 导出格式
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	// FormatExcel 目前输出与 CSV 相同的字节流，仅以电子表格 MIME 类型
	// 与 .xlsx 扩展名交付；真正的二进制工作簿序列化是独立特性。
	FormatExcel ExportFormat = "excel"
)

const (
	contentTypeCSV         = "text/csv"
	contentTypeJSON        = "application/json"
	contentTypeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportPayload 导出结果：原始字节、文件名与 MIME 类型
type ExportPayload struct {
	Bytes       []byte
	Filename    string
	ContentType string
}

// csvHeader CSV 固定列序
var csvHeader = []string{
	"Year", "Month", "Quarter",
	"Revenue", "COGS", "OpEx", "Marketing", "R&D", "Admin", "Other",
	"GrossProfit", "NetIncome", "EBITDA",
	"CashFlow", "CashBalance",
	"Employees", "Customers", "UnitsSold", "ARPC", "Notes",
}

// Export 将计划的预测集合序列化为指定格式。
// 记录按与 List 相同的期间顺序输出。
func (s *ProjectionQueryService) Export(ctx context.Context, businessPlanID string, format ExportFormat) (*ExportPayload, error) {
	switch format {
	case FormatCSV, FormatJSON, FormatExcel:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}

	records, err := s.List(ctx, businessPlanID, nil)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrNoProjections
	}

	var (
		payload []byte
		ext     string
		mime    string
	)
	switch format {
	case FormatJSON:
		payload, err = marshalJSON(records)
		ext, mime = "json", contentTypeJSON
	case FormatExcel:
		payload, err = marshalCSV(records)
		ext, mime = "xlsx", contentTypeSpreadsheet
	default:
		payload, err = marshalCSV(records)
		ext, mime = "csv", contentTypeCSV
	}
	if err != nil {
		return nil, err
	}

	return &ExportPayload{
		Bytes:       payload,
		Filename:    fmt.Sprintf("financial_projections_%s_%s.%s", businessPlanID, time.Now().Format("20060102"), ext),
		ContentType: mime,
	}, nil
}

func marshalCSV(records []*domain.ProjectionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Year),
			intCell(r.Month),
			intCell(r.Quarter),
			moneyCell(r.Revenue),
			moneyCell(r.CostOfGoodsSold),
			moneyCell(r.OperatingExpenses),
			moneyCell(r.MarketingExpenses),
			moneyCell(r.RAndDExpenses),
			moneyCell(r.AdministrativeExpenses),
			moneyCell(r.OtherExpenses),
			r.GrossProfit().StringFixed(2),
			r.NetIncome().StringFixed(2),
			r.EBITDA().StringFixed(2),
			moneyCell(r.CashFlow),
			moneyCell(r.CashBalance),
			intCell(r.Employees),
			intCell(r.Customers),
			intCell(r.UnitsSold),
			moneyCell(r.AverageRevenuePerCustomer()),
			r.Notes,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func moneyCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

func intCell(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// exportedRecord JSON 导出视图，字段名使用 lower camel case
type exportedRecord struct {
	ProjectionID              string           `json:"projectionId"`
	BusinessPlanID            string           `json:"businessPlanId"`
	Year                      int              `json:"year"`
	Month                     *int             `json:"month,omitempty"`
	Quarter                   *int             `json:"quarter,omitempty"`
	Revenue                   *decimal.Decimal `json:"revenue,omitempty"`
	RevenueGrowthRate         *decimal.Decimal `json:"revenueGrowthRate,omitempty"`
	CostOfGoodsSold           *decimal.Decimal `json:"costOfGoodsSold,omitempty"`
	OperatingExpenses         *decimal.Decimal `json:"operatingExpenses,omitempty"`
	MarketingExpenses         *decimal.Decimal `json:"marketingExpenses,omitempty"`
	RAndDExpenses             *decimal.Decimal `json:"rAndDExpenses,omitempty"`
	AdministrativeExpenses    *decimal.Decimal `json:"administrativeExpenses,omitempty"`
	OtherExpenses             *decimal.Decimal `json:"otherExpenses,omitempty"`
	GrossProfit               decimal.Decimal  `json:"grossProfit"`
	NetIncome                 decimal.Decimal  `json:"netIncome"`
	EBITDA                    decimal.Decimal  `json:"ebitda"`
	CashFlow                  *decimal.Decimal `json:"cashFlow,omitempty"`
	CashBalance               *decimal.Decimal `json:"cashBalance,omitempty"`
	Employees                 *int             `json:"employees,omitempty"`
	Customers                 *int             `json:"customers,omitempty"`
	UnitsSold                 *int             `json:"unitsSold,omitempty"`
	AverageRevenuePerCustomer *decimal.Decimal `json:"averageRevenuePerCustomer,omitempty"`
	Notes                     string           `json:"notes,omitempty"`
	Assumptions               string           `json:"assumptions,omitempty"`
}

func marshalJSON(records []*domain.ProjectionRecord) ([]byte, error) {
	out := make([]exportedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, exportedRecord{
			ProjectionID:              r.ProjectionID,
			BusinessPlanID:            r.BusinessPlanID,
			Year:                      r.Year,
			Month:                     r.Month,
			Quarter:                   r.Quarter,
			Revenue:                   r.Revenue,
			RevenueGrowthRate:         r.RevenueGrowthRate,
			CostOfGoodsSold:           r.CostOfGoodsSold,
			OperatingExpenses:         r.OperatingExpenses,
			MarketingExpenses:         r.MarketingExpenses,
			RAndDExpenses:             r.RAndDExpenses,
			AdministrativeExpenses:    r.AdministrativeExpenses,
			OtherExpenses:             r.OtherExpenses,
			GrossProfit:               r.GrossProfit(),
			NetIncome:                 r.NetIncome(),
			EBITDA:                    r.EBITDA(),
			CashFlow:                  r.CashFlow,
			CashBalance:               r.CashBalance,
			Employees:                 r.Employees,
			Customers:                 r.Customers,
			UnitsSold:                 r.UnitsSold,
			AverageRevenuePerCustomer: r.AverageRevenuePerCustomer(),
			Notes:                     r.Notes,
			Assumptions:               r.Assumptions,
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
