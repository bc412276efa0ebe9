package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	sheetPortfolio = "Portfolio"
	sheetRevenue   = "Revenue"
	sheetTrends    = "Trends"
)

// ExportWorkbook writes an Excel workbook with the portfolio, revenue, and
// trend summaries to w.
func (s *Service) ExportWorkbook(ctx context.Context, w io.Writer, from, to time.Time) error {
	portfolio, err := s.Portfolio(ctx)
	if err != nil {
		return err
	}
	revenue, err := s.Revenue(ctx, from, to)
	if err != nil {
		return err
	}
	trends, err := s.Trends(ctx, 24)
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close()

	file.SetSheetName("Sheet1", sheetPortfolio)
	if _, err := file.NewSheet(sheetRevenue); err != nil {
		return fmt.Errorf("failed to create revenue sheet: %w", err)
	}
	if _, err := file.NewSheet(sheetTrends); err != nil {
		return fmt.Errorf("failed to create trends sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	writePairs(file, sheetPortfolio, headerStyle, [][2]interface{}{
		{"Active Loans", portfolio.ActiveLoans},
		{"Paid Off Loans", portfolio.PaidOffLoans},
		{"Defaulted Loans", portfolio.DefaultedLoans},
		{"Archived Loans", portfolio.ArchivedLoans},
		{"Outstanding Balance", cell(portfolio.OutstandingBalance)},
		{"Total Collected", cell(portfolio.TotalCollected)},
		{"Current Loans", portfolio.CurrentLoans},
		{"Overdue Loans", portfolio.OverdueLoans},
		{"Notice Eligible", portfolio.NoticeEligible},
	})

	writePairs(file, sheetRevenue, headerStyle, [][2]interface{}{
		{"From", revenue.From.Format("2006-01-02")},
		{"To", revenue.To.Format("2006-01-02")},
		{"Total Collected", cell(revenue.TotalCollected)},
		{"Interest", cell(revenue.Interest)},
		{"Principal", cell(revenue.Principal)},
		{"Late Fees", cell(revenue.LateFees)},
		{"Notice Fees", cell(revenue.NoticeFees)},
		{"Postal Fees", cell(revenue.PostalFees)},
		{"Processing Fees", cell(revenue.ProcessingFees)},
		{"Escrow Held", cell(revenue.EscrowHeld)},
		{"Net Revenue", cell(revenue.NetRevenue)},
		{"Payments", revenue.PaymentCount},
	})

	trendHeader := []interface{}{"Month", "Collected", "Interest", "Principal", "Fees", "Escrow", "Payments"}
	if err := file.SetSheetRow(sheetTrends, "A1", &trendHeader); err != nil {
		return fmt.Errorf("failed to write trend header: %w", err)
	}
	file.SetCellStyle(sheetTrends, "A1", "G1", headerStyle)
	for i, trend := range trends {
		row := []interface{}{
			trend.Month.Format("2006-01"),
			cell(trend.Collected),
			cell(trend.Interest),
			cell(trend.Principal),
			cell(trend.Fees),
			cell(trend.Escrow),
			trend.Payments,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := file.SetSheetRow(sheetTrends, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write trend row: %w", err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writePairs(file *excelize.File, sheet string, headerStyle int, pairs [][2]interface{}) {
	for i, pair := range pairs {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		file.SetCellValue(sheet, labelCell, pair[0])
		file.SetCellValue(sheet, valueCell, pair[1])
		file.SetCellStyle(sheet, labelCell, labelCell, headerStyle)
	}
	file.SetColWidth(sheet, "A", "A", 24)
	file.SetColWidth(sheet, "B", "B", 18)
}

// cell converts a decimal amount to the float Excel stores natively.
func cell(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
