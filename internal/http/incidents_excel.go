package httpapi

import (
	"bytes"
	"fmt"
	"time"

	"cake-tracker/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	incidentsSheet   = "Incidents"
	leaderboardSheet = "Leaderboard"
)

// IncidentsExportHeader 事件明细表头
var IncidentsExportHeader = []string{
	"ID",
	"Person",
	"Incident Date",
	"Notes",
	"Cake Delivered",
	"Created At",
}

// LeaderboardExportHeader 欠款排行表头
var LeaderboardExportHeader = []string{
	"Person",
	"Total",
	"Owed",
	"Delivered",
	"Delivery Rate (%)",
}

var (
	incidentsColumnWidths   = []float64{38, 20, 14, 40, 15, 22}
	leaderboardColumnWidths = []float64{20, 10, 10, 12, 18}
)

// GenerateIncidentsExport 生成事件导出 Excel：Incidents（按创建时间倒序）+ Leaderboard（按欠款排序）
func GenerateIncidentsExport(incidents []domain.Incident, leaderboard []domain.PersonStats) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", incidentsSheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(leaderboardSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(0)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDE9D9"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	rows := make([][]any, 0, len(incidents))
	for _, inc := range incidents {
		notes := ""
		if inc.Notes != nil {
			notes = *inc.Notes
		}
		delivered := "No"
		if inc.CakeDelivered {
			delivered = "Yes"
		}
		rows = append(rows, []any{
			inc.ID,
			inc.PersonName,
			inc.IncidentDate,
			notes,
			delivered,
			inc.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	if err := writeSheet(f, incidentsSheet, IncidentsExportHeader, incidentsColumnWidths, headerStyle, rows); err != nil {
		return nil, err
	}

	rows = make([][]any, 0, len(leaderboard))
	for _, p := range leaderboard {
		rows = append(rows, []any{p.Name, p.Total, p.Owed, p.Delivered, p.DeliveryRate})
	}
	if err := writeSheet(f, leaderboardSheet, LeaderboardExportHeader, leaderboardColumnWidths, headerStyle, rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// writeSheet 写入表头（带样式）、列宽和数据行
func writeSheet(f *excelize.File, sheet string, headers []string, widths []float64, headerStyle int, rows [][]any) error {
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i := 0; i < len(headers) && i < len(widths); i++ {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	// 冻结表头
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
