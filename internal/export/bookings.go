// Package export writes the customer's bookings to a spreadsheet.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"hikari/internal/profile"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{"ID", "Status", "Date", "Start", "End", "Guests", "Table", "Area", "Comment"}

// WriteBookings saves one sheet listing every booking of tabs, grouped by status in
// tab order. It returns the number of rows written below the header.
func WriteBookings(path string, tabs []profile.Tab) (int, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create export directory: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return 0, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	row := 2
	for _, tab := range tabs {
		for _, b := range tab.Bookings {
			values := []interface{}{
				b.ID,
				tab.Label,
				formatTime(b.DatetimeStart, "2006-01-02"),
				formatTime(b.DatetimeStart, "15:04"),
				formatTime(b.DatetimeEnd, "15:04"),
				b.Guests,
				firstNonEmpty(b.TableName, b.Table.Name),
				b.AreaName(),
				b.Comment,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(sheetName, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 24)
	_ = f.SetColWidth(sheetName, "C", "H", 14)
	_ = f.SetColWidth(sheetName, "I", "I", 40)

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save export: %w", err)
	}
	return row - 2, nil
}

func formatTime(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(layout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
