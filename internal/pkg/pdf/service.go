// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/your-org/fitness-inventory/internal/config"
	"github.com/your-org/fitness-inventory/internal/domain/inventory"
)

// Service handles stock report rendering
type Service struct {
	config *config.Config
	tmpl   *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	if cfg.Report.WkhtmltopdfBin != "" {
		wkhtmltopdf.SetPath(cfg.Report.WkhtmltopdfBin)
	}

	tmpl := template.Must(template.New("stock-report").Funcs(template.FuncMap{
		"money": formatCents,
	}).Parse(stockReportTemplate))

	return &Service{
		config: cfg,
		tmpl:   tmpl,
	}
}

// reportData is the template input
type reportData struct {
	Company     string
	GeneratedAt string
	Report      *inventory.StockReport
}

// RenderStockReportHTML renders the report as a standalone HTML document
func (s *Service) RenderStockReportHTML(report *inventory.StockReport) ([]byte, error) {
	data := reportData{
		Company:     s.config.Report.CompanyName,
		GeneratedAt: report.GeneratedAt.Format("January 2, 2006 15:04 MST"),
		Report:      report,
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderStockReport renders the report to PDF with wkhtmltopdf
func (s *Service) RenderStockReport(report *inventory.StockReport) (*bytes.Buffer, error) {
	htmlContent, err := s.RenderStockReportHTML(report)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	// Convert HTML to PDF
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}

	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationLandscape)
	pdfg.Title.Set(fmt.Sprintf("%s stock report", s.config.Report.CompanyName))

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(htmlContent))
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	page.Zoom.Set(0.95)

	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}

	return bytes.NewBuffer(pdfg.Bytes()), nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

const stockReportTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Company}} stock report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 0; padding: 20px; color: #333; }
        .header { margin-bottom: 24px; border-bottom: 2px solid #eee; padding-bottom: 12px; }
        .title { font-size: 24px; font-weight: bold; color: #2563eb; }
        .summary td { padding: 4px 16px 4px 0; }
        .summary .label { font-weight: bold; }
        table.items { width: 100%; border-collapse: collapse; margin-top: 20px; }
        table.items th, table.items td { border: 1px solid #ddd; padding: 6px 8px; text-align: left; font-size: 12px; }
        table.items th { background-color: #f8f9fa; }
        table.items .num { text-align: right; }
        .badge { display: inline-block; padding: 2px 6px; border-radius: 4px; font-size: 10px; color: #fff; }
        .out { background: #dc2626; }
        .low { background: #d97706; }
        .reorder { background: #7c3aed; }
    </style>
</head>
<body>
    <div class="header">
        <div class="title">{{.Company}} stock report</div>
        <div>Generated {{.GeneratedAt}}</div>
    </div>

    <table class="summary">
        <tr><td class="label">Products</td><td>{{.Report.Valuation.Items}}</td>
            <td class="label">Units on hand</td><td>{{.Report.Valuation.Units}}</td></tr>
        <tr><td class="label">Reserved</td><td>{{.Report.Valuation.ReservedUnits}}</td>
            <td class="label">Available</td><td>{{.Report.Valuation.AvailableUnits}}</td></tr>
        <tr><td class="label">Stock value</td><td>{{money .Report.Valuation.TotalValue}}</td>
            <td class="label">Alerts</td>
            <td>{{.Report.OutOfStockCount}} out of stock, {{.Report.LowStockCount}} low, {{.Report.ReorderCount}} to reorder</td></tr>
    </table>

    <table class="items">
        <thead>
            <tr>
                <th>SKU</th><th>Product</th><th>Category</th>
                <th class="num">Current</th><th class="num">Reserved</th><th class="num">Available</th>
                <th class="num">Low at</th><th class="num">Reorder at</th>
                <th class="num">Unit cost</th><th class="num">Value</th><th>Alerts</th>
            </tr>
        </thead>
        <tbody>
        {{range .Report.Rows}}
            <tr>
                <td>{{.SKU}}</td><td>{{.Name}}</td><td>{{.Category}}</td>
                <td class="num">{{.CurrentStock}}</td><td class="num">{{.ReservedStock}}</td><td class="num">{{.AvailableStock}}</td>
                <td class="num">{{.LowStockThreshold}}</td><td class="num">{{.ReorderPoint}}</td>
                <td class="num">{{money .CostPrice}}</td><td class="num">{{money .TotalValue}}</td>
                <td>
                    {{if .Alerts.OutOfStock}}<span class="badge out">OUT</span>{{else if .Alerts.LowStock}}<span class="badge low">LOW</span>{{end}}
                    {{if .Alerts.Reorder}}<span class="badge reorder">REORDER</span>{{end}}
                </td>
            </tr>
        {{else}}
            <tr><td colspan="11">No stock records</td></tr>
        {{end}}
        </tbody>
    </table>
</body>
</html>
`
