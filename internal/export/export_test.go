package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	testCourses = []model.Course{
		{Id: "CS101", Name: "Introduction to Programming", Department: "Computer Science", Year: 1, Students: 120},
		{Id: "CS102", Name: "Discrete Mathematics", Department: "Computer Science", Year: 1, Students: 90},
		{Id: "ENG102", Name: "Technical Writing", Department: "English", Year: 1, Students: 500},
	}
	testSchedule = model.Schedule{
		Algorithm: model.GraphColoring,
		Exams: []model.ScheduledExam{
			{CourseId: "CS101", SlotIndex: 0, Date: "2025-05-12", StartTime: "9:00", EndTime: "12:00", RoomId: lo.ToPtr("HALL-A")},
			{CourseId: "CS102", SlotIndex: 0, Date: "2025-05-12", StartTime: "9:00", EndTime: "12:00", RoomId: lo.ToPtr("HALL-B")},
			{CourseId: "ENG102", SlotIndex: 1, Date: "2025-05-12", StartTime: "13:00", EndTime: "16:00", RoomId: nil},
		},
		Conflicts: []model.Conflict{{CourseId: "CS102", Reason: model.NoSlotReason}},
	}
)

func TestRows(t *testing.T) {
	//** Act
	rows := Rows(testCourses, testSchedule)

	//** Assert
	require.Len(t, rows, 3)
	assert.Equal(t, ScheduleRow{
		CourseId:   "CS101",
		CourseName: "Introduction to Programming",
		Department: "Computer Science",
		Year:       1,
		Students:   120,
		Date:       "2025-05-12",
		StartTime:  "9:00",
		EndTime:    "12:00",
		RoomId:     "HALL-A",
	}, rows[0])
	assert.True(t, rows[1].Conflict)
	assert.Empty(t, rows[2].RoomId)
}

func TestFilterDepartment(t *testing.T) {
	rows := Rows(testCourses, testSchedule)

	t.Run("One department", func(t *testing.T) {
		filtered := FilterDepartment(rows, "Computer Science")
		assert.Equal(t, []string{"CS101", "CS102"}, lo.Map(filtered, func(row ScheduleRow, _ int) string { return row.CourseId }))
	})

	t.Run("Empty keeps everything", func(t *testing.T) {
		assert.Len(t, FilterDepartment(rows, ""), 3)
	})

	t.Run("Unknown department", func(t *testing.T) {
		assert.Empty(t, FilterDepartment(rows, "Physics"))
	})

	t.Run("Departments", func(t *testing.T) {
		assert.Equal(t, []string{"Computer Science", "English"}, Departments(rows))
	})
}

func TestWriteCSV(t *testing.T) {
	//** Arrange
	var buffer bytes.Buffer

	//** Act
	err := WriteCSV(&buffer, Rows(testCourses, testSchedule))

	//** Assert
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Course,Name,Department,Year,Students,Date,Start,End,Room,Conflict", lines[0])
	assert.Equal(t, "CS101,Introduction to Programming,Computer Science,1,120,2025-05-12,9:00,12:00,HALL-A,false", lines[1])
	assert.Equal(t, "ENG102,Technical Writing,English,1,500,2025-05-12,13:00,16:00,,false", lines[3])
}

func TestWriteXLSX(t *testing.T) {
	//** Arrange
	var buffer bytes.Buffer

	//** Act
	err := WriteXLSX(&buffer, Rows(testCourses, testSchedule), testSchedule.Conflicts)

	//** Assert
	require.NoError(t, err)
	file, err := excelize.OpenReader(&buffer)
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, []string{ScheduleSheet, ConflictsSheet}, file.GetSheetList())

	scheduleRows, err := file.GetRows(ScheduleSheet)
	require.NoError(t, err)
	require.Len(t, scheduleRows, 4)
	assert.Equal(t, "Course", scheduleRows[0][0])
	assert.Equal(t, "CS101", scheduleRows[1][0])
	assert.Equal(t, "HALL-A", scheduleRows[1][8])

	conflictRows, err := file.GetRows(ConflictsSheet)
	require.NoError(t, err)
	require.Len(t, conflictRows, 2)
	assert.Equal(t, []string{"CS102", model.NoSlotReason}, conflictRows[1])
}

func TestReadCoursesCSV(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		//** Arrange
		document := "id,name,department,year,students,difficulty\n" +
			"CS101,Introduction to Programming,Computer Science,1,120,Medium\n" +
			"MATH201,Calculus II,Mathematics,2,85,hard\n"

		//** Act
		courses, err := ReadCoursesCSV(strings.NewReader(document))

		//** Assert
		require.NoError(t, err)
		require.Len(t, courses, 2)
		assert.Equal(t, model.Medium, courses[0].Difficulty)
		assert.Equal(t, model.Hard, courses[1].Difficulty)
		assert.Equal(t, uint64(85), courses[1].Students)
	})

	t.Run("Unknown difficulty", func(t *testing.T) {
		//** Arrange
		document := "id,name,department,year,students,difficulty\nCS101,Intro,CS,1,120,Extreme\n"

		//** Act
		_, err := ReadCoursesCSV(strings.NewReader(document))

		//** Assert
		var validationErr model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "courses[0].difficulty", validationErr.Field)
	})

	t.Run("Duplicate id", func(t *testing.T) {
		//** Arrange
		document := "id,name,department,year,students,difficulty\nCS101,A,CS,1,1,Easy\nCS101,B,CS,1,1,Easy\n"

		//** Act
		_, err := ReadCoursesCSV(strings.NewReader(document))

		//** Assert
		var validationErr model.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "courses[1].id", validationErr.Field)
	})
}

func TestReadRoomsCSV(t *testing.T) {
	t.Run("Available defaults to true", func(t *testing.T) {
		//** Arrange
		document := "id,name,capacity,hasProjector,hasComputers,available\n" +
			"HALL-A,Main Hall A,150,true,false,\n" +
			"LAB-1,Computer Lab 1,40,true,true,false\n"

		//** Act
		rooms, err := ReadRoomsCSV(strings.NewReader(document))

		//** Assert
		require.NoError(t, err)
		require.Len(t, rooms, 2)
		assert.True(t, rooms[0].Available)
		assert.False(t, rooms[1].Available)
		assert.True(t, rooms[1].HasComputers)
		assert.Equal(t, uint64(150), rooms[0].Capacity)
	})

	t.Run("Malformed availability", func(t *testing.T) {
		//** Arrange
		document := "id,name,capacity,hasProjector,hasComputers,available\nHALL-A,Main Hall A,150,true,false,maybe\n"

		//** Act
		_, err := ReadRoomsCSV(strings.NewReader(document))

		//** Assert
		assert.Error(t, err)
	})
}
