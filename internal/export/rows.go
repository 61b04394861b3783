package export

import (
	"slices"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
)

// ScheduleRow is the flat, printable form of one scheduled exam
type ScheduleRow struct {
	CourseId   string `csv:"Course"`
	CourseName string `csv:"Name"`
	Department string `csv:"Department"`
	Year       uint64 `csv:"Year"`
	Students   uint64 `csv:"Students"`
	Date       string `csv:"Date"`
	StartTime  string `csv:"Start"`
	EndTime    string `csv:"End"`
	RoomId     string `csv:"Room"` // Empty when no room fits
	Conflict   bool   `csv:"Conflict"`
}

// Rows flattens a schedule, keeping its exam order
func Rows(courses []model.Course, schedule model.Schedule) []ScheduleRow {
	coursesById := lo.KeyBy(courses, func(course model.Course) string { return course.Id })
	conflicting := lo.SliceToMap(schedule.Conflicts, func(conflict model.Conflict) (string, bool) {
		return conflict.CourseId, true
	})

	return lo.Map(schedule.Exams, func(exam model.ScheduledExam, _ int) ScheduleRow {
		course := coursesById[exam.CourseId]
		return ScheduleRow{
			CourseId:   exam.CourseId,
			CourseName: course.Name,
			Department: course.Department,
			Year:       course.Year,
			Students:   course.Students,
			Date:       exam.Date,
			StartTime:  exam.StartTime,
			EndTime:    exam.EndTime,
			RoomId:     lo.FromPtr(exam.RoomId),
			Conflict:   conflicting[exam.CourseId],
		}
	})
}

// FilterDepartment keeps the rows of one department; an empty department keeps everything
func FilterDepartment(rows []ScheduleRow, department string) []ScheduleRow {
	if department == "" {
		return rows
	}
	return lo.Filter(rows, func(row ScheduleRow, _ int) bool {
		return row.Department == department
	})
}

// Departments lists the distinct departments present in rows, sorted
func Departments(rows []ScheduleRow) []string {
	departments := lo.Uniq(lo.Map(rows, func(row ScheduleRow, _ int) string { return row.Department }))
	slices.Sort(departments)
	return departments
}
