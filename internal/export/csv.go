package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
)

func WriteCSV(writer io.Writer, rows []ScheduleRow) error {
	if err := gocsv.Marshal(&rows, writer); err != nil {
		return fmt.Errorf("cannot write csv: %w", err)
	}
	return nil
}

type courseCSVRow struct {
	Id         string `csv:"id"`
	Name       string `csv:"name"`
	Department string `csv:"department"`
	Year       uint64 `csv:"year"`
	Students   uint64 `csv:"students"`
	Difficulty string `csv:"difficulty"`
}

type roomCSVRow struct {
	Id           string `csv:"id"`
	Name         string `csv:"name"`
	Capacity     uint64 `csv:"capacity"`
	HasProjector bool   `csv:"hasProjector"`
	HasComputers bool   `csv:"hasComputers"`
	Available    string `csv:"available"` // Empty means available
}

// ReadCoursesCSV parses a course list with header id,name,department,year,students,difficulty
func ReadCoursesCSV(reader io.Reader) ([]model.Course, error) {
	rows := []courseCSVRow{}
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse courses csv: %w", err)
	}

	rawCourses := lo.Map(rows, func(row courseCSVRow, _ int) model.RawCourse {
		return model.RawCourse(row)
	})
	courses := make([]model.Course, 0, len(rawCourses))
	for i, rawCourse := range rawCourses {
		difficulty, err := model.ParseDifficulty(rawCourse.Difficulty)
		if err != nil {
			return nil, model.ValidationError{Field: fmt.Sprintf("courses[%d].difficulty", i), Reason: err.Error()}
		}
		courses = append(courses, model.Course{
			Id:         rawCourse.Id,
			Name:       rawCourse.Name,
			Department: rawCourse.Department,
			Year:       rawCourse.Year,
			Students:   rawCourse.Students,
			Difficulty: difficulty,
		})
	}

	if err := model.ValidateCourses(courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// ReadRoomsCSV parses a room list with header id,name,capacity,hasProjector,hasComputers,available
func ReadRoomsCSV(reader io.Reader) ([]model.Room, error) {
	rows := []roomCSVRow{}
	if err := gocsv.Unmarshal(reader, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse rooms csv: %w", err)
	}

	rooms := make([]model.Room, 0, len(rows))
	for i, row := range rows {
		available := true
		switch row.Available {
		case "", "true", "TRUE", "True", "1", "yes":
		case "false", "FALSE", "False", "0", "no":
			available = false
		default:
			return nil, model.ValidationError{Field: fmt.Sprintf("rooms[%d].available", i), Reason: fmt.Sprintf("not a boolean: %q", row.Available)}
		}
		rooms = append(rooms, model.Room{
			Id:           row.Id,
			Name:         row.Name,
			Capacity:     row.Capacity,
			HasProjector: row.HasProjector,
			HasComputers: row.HasComputers,
			Available:    available,
		})
	}

	if err := model.ValidateRooms(rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}
