package model

import (
	"fmt"

	"github.com/samber/lo"
)

type ScheduledExam struct {
	CourseId  string  `json:"courseId"`
	SlotIndex int     `json:"slotIndex"`
	Date      string  `json:"date"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	RoomId    *string `json:"roomId"`
}

// SpacingWarning flags two conflicting hard exams held fewer than the required days apart
type SpacingWarning struct {
	CourseId      string `json:"courseId"`
	OtherCourseId string `json:"otherCourseId"`
	DaysApart     int    `json:"daysApart"`
	Required      int    `json:"required"`
}

// Schedule is the sole output of a run, one exam per course in input order
type Schedule struct {
	Algorithm       Algorithm        `json:"algorithm"`
	Exams           []ScheduledExam  `json:"exams"`
	Conflicts       []Conflict       `json:"conflicts"`
	SpacingWarnings []SpacingWarning `json:"spacingWarnings"`
}

func (schedule Schedule) Exam(course string) (ScheduledExam, bool) {
	return lo.Find(schedule.Exams, func(exam ScheduledExam) bool {
		return exam.CourseId == course
	})
}

// Unroomed counts exams left without a room
func (schedule Schedule) Unroomed() int {
	return lo.CountBy(schedule.Exams, func(exam ScheduledExam) bool {
		return exam.RoomId == nil
	})
}

// Assemble resolves slot indexes into dates and times and allocates rooms first-fit
func Assemble(courses []Course, assignment Assignment, unresolved []Conflict, slots []TimeSlot, rooms []Room) Schedule {
	schedule, err := assemble(courses, assignment, unresolved, slots, rooms, NewFirstFitAllocator())
	if err != nil {
		// First-fit allocation never fails
		panic(fmt.Sprintf("first-fit allocation failed: %v", err))
	}
	return schedule
}

func assemble(
	courses []Course,
	assignment Assignment,
	unresolved []Conflict,
	slots []TimeSlot,
	rooms []Room,
	allocator RoomAllocator,
) (Schedule, error) {
	allocation, err := allocator.Allocate(courses, assignment, rooms)
	if err != nil {
		return Schedule{}, err
	}

	exams := lo.Map(courses, func(course Course, _ int) ScheduledExam {
		exam := ScheduledExam{
			CourseId:  course.Id,
			SlotIndex: Unassigned,
		}
		if slot, ok := assignment[course.Id]; ok && slot >= 0 && slot < len(slots) {
			exam.SlotIndex = slot
			exam.Date = slots[slot].DateString()
			exam.StartTime = slots[slot].StartTime()
			exam.EndTime = slots[slot].EndTime()
		}
		if room, ok := allocation[course.Id]; ok {
			exam.RoomId = lo.ToPtr(room)
		}
		return exam
	})

	return Schedule{
		Exams:           exams,
		Conflicts:       append([]Conflict{}, unresolved...),
		SpacingWarnings: []SpacingWarning{},
	}, nil
}

func spacingWarnings(
	courses []Course,
	graph ConflictGraph,
	assignment Assignment,
	slots []TimeSlot,
	evaluator predicateEvaluator,
	required int,
) []SpacingWarning {
	warnings := []SpacingWarning{}
	slotOf := func(course Course) (TimeSlot, bool) {
		slot, ok := assignment[course.Id]
		if !ok || slot < 0 || slot >= len(slots) {
			return TimeSlot{}, false
		}
		return slots[slot], true
	}

	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			course1, course2 := courses[i], courses[j]
			if !graph.Conflicting(course1.Id, course2.Id) {
				continue
			}
			slot1, ok1 := slotOf(course1)
			slot2, ok2 := slotOf(course2)
			if !ok1 || !ok2 || !evaluator.TooClose(course1, course2, slot1, slot2) {
				continue
			}
			warnings = append(warnings, SpacingWarning{
				CourseId:      course1.Id,
				OtherCourseId: course2.Id,
				DaysApart:     daysBetween(slot1, slot2),
				Required:      required,
			})
		}
	}
	return warnings
}
