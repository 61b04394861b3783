package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

var difficultyNames = map[Difficulty]string{
	Easy:   "Easy",
	Medium: "Medium",
	Hard:   "Hard",
}

func (difficulty Difficulty) String() string {
	if name, ok := difficultyNames[difficulty]; ok {
		return name
	}
	return fmt.Sprintf("Difficulty(%d)", int(difficulty))
}

func ParseDifficulty(value string) (Difficulty, error) {
	for difficulty, name := range difficultyNames {
		if strings.EqualFold(strings.TrimSpace(value), name) {
			return difficulty, nil
		}
	}
	return Easy, fmt.Errorf("unknown difficulty %q", value)
}

func (difficulty Difficulty) MarshalText() ([]byte, error) {
	return []byte(difficulty.String()), nil
}

func (difficulty *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*difficulty = parsed
	return nil
}

type Course struct {
	Id         string     `json:"id"`
	Name       string     `json:"name"`
	Department string     `json:"department"`
	Year       uint64     `json:"year"`
	Students   uint64     `json:"students"`
	Difficulty Difficulty `json:"difficulty"`
}

type Room struct {
	Id           string `json:"id"`
	Name         string `json:"name"`
	Capacity     uint64 `json:"capacity"`
	HasProjector bool   `json:"hasProjector"`
	HasComputers bool   `json:"hasComputers"`
	Available    bool   `json:"available"`
}

type RawCourse struct {
	Id         string
	Name       string
	Department string
	Year       uint64
	Students   uint64
	Difficulty string
}

type RawRoom struct {
	Id           string
	Name         string
	Capacity     uint64
	HasProjector bool
	HasComputers bool
	Available    *bool // Rooms are available unless stated otherwise
}

type RawConstraints struct {
	StartDate     string   `json:"startDate"`
	EndDate       string   `json:"endDate"`
	DailySlots    int      `json:"dailySlots"`
	SlotDuration  int      `json:"slotDuration"`
	AllowWeekends bool     `json:"allowWeekends"`
	ExcludedDates []string `json:"excludedDates"`
	SpacingDays   int      `json:"spacingDays"`
	DayStartHour  *int     `json:"dayStartHour,omitempty"`
	BreakHours    *int     `json:"breakHours,omitempty"`
	Algorithm     string   `json:"algorithm,omitempty"`
}

type RawModelInput struct {
	Courses     []RawCourse
	Rooms       []RawRoom
	Constraints RawConstraints
}

type ModelInput struct {
	Courses     []Course
	Rooms       []Room
	Constraints Constraints
	Algorithm   Algorithm
}

// InputFromFile picks the decoder from the file extension (.yaml/.yml or JSON otherwise)
func InputFromFile(file string) (ModelInput, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		return InputFromYaml(file)
	default:
		return InputFromJson(file)
	}
}

func InputFromJson(file string) (ModelInput, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}
	return InputFromReader(bytes.NewReader(content), "json")
}

func InputFromYaml(file string) (ModelInput, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}
	return InputFromReader(bytes.NewReader(content), "yaml")
}

func InputFromReader(reader io.Reader, format string) (ModelInput, error) {
	var buffer bytes.Buffer
	if _, err := io.Copy(&buffer, reader); err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input: %w", err)
	}

	var document map[string]any
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(buffer.Bytes(), &document); err != nil {
			return ModelInput{}, fmt.Errorf("cannot parse yaml input: %w", err)
		}
	case "json":
		if err := json.Unmarshal(buffer.Bytes(), &document); err != nil {
			return ModelInput{}, fmt.Errorf("cannot parse json input: %w", err)
		}
	default:
		return ModelInput{}, fmt.Errorf("unsupported input format %q", format)
	}

	rawInput, err := DecodeRawInput(document)
	if err != nil {
		return ModelInput{}, err
	}
	return ProcessRawInput(rawInput)
}

// DecodeRawInput maps a generic document (as produced by encoding/json or yaml.v3) into a RawModelInput
func DecodeRawInput(document map[string]any) (RawModelInput, error) {
	var rawInput RawModelInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: dateToStringHook,
		Result:     &rawInput,
	})
	if err != nil {
		return RawModelInput{}, err
	}
	if err := decoder.Decode(document); err != nil {
		return RawModelInput{}, fmt.Errorf("cannot decode input: %w", err)
	}
	return rawInput, nil
}

// yaml.v3 resolves unquoted dates into time.Time
func dateToStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if date, ok := data.(time.Time); ok {
		return date.Format(DateLayout), nil
	}
	return data, nil
}

func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	constraints, err := ParseConstraints(rawInput.Constraints)
	if err != nil {
		return ModelInput{}, err
	}

	courses := make([]Course, 0, len(rawInput.Courses))
	for i, rawCourse := range rawInput.Courses {
		difficulty, err := ParseDifficulty(rawCourse.Difficulty)
		if err != nil {
			return ModelInput{}, ValidationError{
				Field:  fmt.Sprintf("courses[%d].difficulty", i),
				Reason: err.Error(),
			}
		}
		courses = append(courses, Course{
			Id:         strings.TrimSpace(rawCourse.Id),
			Name:       rawCourse.Name,
			Department: rawCourse.Department,
			Year:       rawCourse.Year,
			Students:   rawCourse.Students,
			Difficulty: difficulty,
		})
	}

	rooms := lo.Map(rawInput.Rooms, func(rawRoom RawRoom, _ int) Room {
		return Room{
			Id:           strings.TrimSpace(rawRoom.Id),
			Name:         rawRoom.Name,
			Capacity:     rawRoom.Capacity,
			HasProjector: rawRoom.HasProjector,
			HasComputers: rawRoom.HasComputers,
			Available:    rawRoom.Available == nil || *rawRoom.Available,
		}
	})

	if err := ValidateCourses(courses); err != nil {
		return ModelInput{}, err
	}
	if err := ValidateRooms(rooms); err != nil {
		return ModelInput{}, err
	}

	return ModelInput{
		Courses:     courses,
		Rooms:       rooms,
		Constraints: constraints,
		Algorithm:   ParseAlgorithm(rawInput.Constraints.Algorithm),
	}, nil
}

func ValidateCourses(courses []Course) error {
	seen := make(map[string]bool, len(courses))
	for i, course := range courses {
		field := fmt.Sprintf("courses[%d]", i)
		if course.Id == "" {
			return ValidationError{Field: field + ".id", Reason: "must not be empty"}
		}
		if seen[course.Id] {
			return ValidationError{Field: field + ".id", Reason: fmt.Sprintf("duplicate course id %q", course.Id)}
		}
		seen[course.Id] = true

		if course.Year < 1 {
			return ValidationError{Field: field + ".year", Reason: "must be a positive integer"}
		}
		if _, ok := difficultyNames[course.Difficulty]; !ok {
			return ValidationError{Field: field + ".difficulty", Reason: fmt.Sprintf("unknown difficulty %v", int(course.Difficulty))}
		}
	}
	return nil
}

func ValidateRooms(rooms []Room) error {
	seen := make(map[string]bool, len(rooms))
	for i, room := range rooms {
		field := fmt.Sprintf("rooms[%d]", i)
		if room.Id == "" {
			return ValidationError{Field: field + ".id", Reason: "must not be empty"}
		}
		if seen[room.Id] {
			return ValidationError{Field: field + ".id", Reason: fmt.Sprintf("duplicate room id %q", room.Id)}
		}
		seen[room.Id] = true

		if room.Capacity < 1 {
			return ValidationError{Field: field + ".capacity", Reason: "must be a positive integer"}
		}
	}
	return nil
}
