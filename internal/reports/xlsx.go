package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	tasksSheet   = "Tasks"
	summarySheet = "Summary"
)

var summaryHeader = []string{"Driver", "Driver ID", "Completed", "Accepted", "Pending", "Days Worked", "Earnings", "Avg / Day", "Rating"}

// XLSXWorkbook renders the weekly tasks and per-driver summary as a workbook.
type XLSXWorkbook struct {
	file        *excelize.File
	headerStyle int
	moneyStyle  int
}

// GenerateXLSX builds a workbook with a "Tasks" sheet (same columns as the
// CSV export) and a "Summary" sheet with per-driver weekly stats and totals.
func GenerateXLSX(rows []TaskRow, weekly *WeeklyReport) (*bytes.Buffer, error) {
	wb := &XLSXWorkbook{file: excelize.NewFile()}
	defer wb.file.Close()

	if err := wb.styles(); err != nil {
		return nil, err
	}
	if err := wb.writeTasks(rows); err != nil {
		return nil, err
	}
	if err := wb.writeSummary(weekly); err != nil {
		return nil, err
	}

	if idx, _ := wb.file.GetSheetIndex("Sheet1"); idx != -1 {
		if err := wb.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet: %w", err)
		}
	}
	if idx, err := wb.file.GetSheetIndex(tasksSheet); err == nil {
		wb.file.SetActiveSheet(idx)
	}

	buffer, err := wb.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, nil
}

func (wb *XLSXWorkbook) styles() error {
	var err error
	wb.headerStyle, err = wb.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	numFmt := "0.00"
	wb.moneyStyle, err = wb.file.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	return nil
}

func (wb *XLSXWorkbook) header(sheet string, headers []string) error {
	if _, err := wb.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := wb.file.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := wb.file.SetCellStyle(sheet, "A1", last, wb.headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return nil
}

func (wb *XLSXWorkbook) writeTasks(rows []TaskRow) error {
	if err := wb.header(tasksSheet, TaskHeader); err != nil {
		return err
	}

	widths := map[string]float64{"A": 12, "B": 8, "C": 24, "D": 14, "E": 30, "F": 40, "G": 30, "H": 10, "I": 12}
	for col, width := range widths {
		if err := wb.file.SetColWidth(tasksSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{r.Date, r.Time, r.Driver, r.PersonalID, r.Title, r.Description, r.Location, round2(r.Price), r.Status}
		if err := wb.file.SetSheetRow(tasksSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write task row %d: %w", i+2, err)
		}
	}
	if len(rows) > 0 {
		end, _ := excelize.CoordinatesToCellName(8, len(rows)+1)
		if err := wb.file.SetCellStyle(tasksSheet, "H2", end, wb.moneyStyle); err != nil {
			return fmt.Errorf("failed to style prices: %w", err)
		}
	}
	return nil
}

func (wb *XLSXWorkbook) writeSummary(weekly *WeeklyReport) error {
	if err := wb.header(summarySheet, summaryHeader); err != nil {
		return err
	}
	if weekly == nil {
		return nil
	}

	row := 2
	for _, d := range weekly.Drivers {
		s := d.WeeklyStats
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{d.Driver.Name, d.Driver.PersonalID, s.CompletedTasks, s.AcceptedTasks, s.PendingTasks, s.DaysWorked, s.Earnings, s.AveragePerDay, s.Rating}
		if err := wb.file.SetSheetRow(summarySheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", row, err)
		}
		row++
	}

	t := weekly.Totals
	cell, _ := excelize.CoordinatesToCellName(1, row)
	totals := []interface{}{"Total", "", t.CompletedTasks, t.AcceptedTasks, t.PendingTasks, t.DaysWorked, t.Earnings, t.AveragePerDay, t.AverageRating}
	if err := wb.file.SetSheetRow(summarySheet, cell, &totals); err != nil {
		return fmt.Errorf("failed to write totals row: %w", err)
	}
	return nil
}
