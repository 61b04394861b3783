package export

import (
	"fmt"
	"io"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/xuri/excelize/v2"
)

const (
	ScheduleSheet  = "Schedule"
	ConflictsSheet = "Conflicts"
)

var (
	scheduleHeader  = []any{"Course", "Name", "Department", "Year", "Students", "Date", "Start", "End", "Room", "Conflict"}
	conflictsHeader = []any{"Course", "Reason"}
)

// WriteXLSX writes a workbook with the exam rows on one sheet and the conflict report on another
func WriteXLSX(writer io.Writer, rows []ScheduleRow, conflicts []model.Conflict) error {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(ScheduleSheet)
	if err != nil {
		return fmt.Errorf("cannot create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if _, err := file.NewSheet(ConflictsSheet); err != nil {
		return fmt.Errorf("cannot create sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	//** Schedule sheet
	if err := writeRow(file, ScheduleSheet, 1, scheduleHeader); err != nil {
		return err
	}
	for i, row := range rows {
		values := []any{row.CourseId, row.CourseName, row.Department, row.Year, row.Students, row.Date, row.StartTime, row.EndTime, row.RoomId, row.Conflict}
		if err := writeRow(file, ScheduleSheet, i+2, values); err != nil {
			return err
		}
	}
	_ = file.SetColWidth(ScheduleSheet, "B", "C", 28)
	if err := file.SetCellStyle(ScheduleSheet, "A1", lastHeaderCell(len(scheduleHeader)), headerStyle); err != nil {
		return err
	}

	//** Conflicts sheet
	if err := writeRow(file, ConflictsSheet, 1, conflictsHeader); err != nil {
		return err
	}
	for i, conflict := range conflicts {
		if err := writeRow(file, ConflictsSheet, i+2, []any{conflict.CourseId, conflict.Reason}); err != nil {
			return err
		}
	}
	_ = file.SetColWidth(ConflictsSheet, "B", "B", 44)
	if err := file.SetCellStyle(ConflictsSheet, "A1", lastHeaderCell(len(conflictsHeader)), headerStyle); err != nil {
		return err
	}

	if err := file.Write(writer); err != nil {
		return fmt.Errorf("cannot write xlsx: %w", err)
	}
	return nil
}

func writeRow(file *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return file.SetSheetRow(sheet, cell, &values)
}

func lastHeaderCell(columns int) string {
	cell, _ := excelize.CoordinatesToCellName(columns, 1)
	return cell
}
