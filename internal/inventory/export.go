package inventory

import (
	"bytes"
	"fmt"

	"github.com/cuongbtq/jobcard-service/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SheetStock = "Stock"
	SheetUsage = "Usage"
)

var stockHeader = []string{
	"Name", "Category", "Unit", "Cost / Unit", "Retail / Unit",
	"Stock Level", "Min Stock", "Batch", "Expiry", "Active Ingredient", "Reg. No.", "Low Stock",
}

var usageHeader = []string{
	"Date", "Job Ref", "Client", "Item", "Qty", "Unit", "Cost",
	"Batch", "Method", "Dilution", "Target Pest",
}

// UsageRow is one material usage line with its job context
type UsageRow struct {
	JobRef string
	Client string
	Usage  domain.MaterialUsage
}

// ExportXLSX writes the stock list and usage history to a workbook
func ExportXLSX(items []domain.InventoryItem, usages []UsageRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetStock); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetUsage); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	lowStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#B91C1C"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create low stock style: %w", err)
	}

	if err := writeHeader(f, SheetStock, stockHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, it := range items {
		row := i + 2
		retail := any("")
		if it.RetailPricePerUnit != nil {
			retail = *it.RetailPricePerUnit
		}
		low := "No"
		if it.IsLowStock() {
			low = "Yes"
		}
		values := []any{
			it.Name, it.Category, it.Unit, it.CostPerUnit, retail,
			it.StockLevel, it.MinStockLevel, it.BatchNumber, it.ExpiryDate, it.ActiveIngredient, it.RegistrationNumber, low,
		}
		if err := writeRow(f, SheetStock, row, values); err != nil {
			return nil, err
		}
		if it.IsLowStock() {
			start, _ := excelize.CoordinatesToCellName(1, row)
			end, _ := excelize.CoordinatesToCellName(len(stockHeader), row)
			if err := f.SetCellStyle(SheetStock, start, end, lowStyle); err != nil {
				return nil, fmt.Errorf("failed to set low stock style: %w", err)
			}
		}
	}

	if err := writeHeader(f, SheetUsage, usageHeader, headerStyle); err != nil {
		return nil, err
	}
	for i, u := range usages {
		values := []any{
			u.Usage.Date.Format(domain.DateLayout), u.JobRef, u.Client, u.Usage.ItemName, u.Usage.QtyUsed, u.Usage.Unit, u.Usage.Cost,
			u.Usage.BatchNumber, u.Usage.ApplicationMethod, u.Usage.DilutionRate, u.Usage.TargetPest,
		}
		if err := writeRow(f, SheetUsage, i+2, values); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, header []string, style int) error {
	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
