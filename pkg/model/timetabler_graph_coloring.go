package model

import (
	"context"

	"github.com/samber/lo"
)

// graphColoringTimetabler is a single-pass greedy coloring: most constrained courses first, each one
// taking the lowest slot index not used by an already colored neighbor. Bounded by O(courses*slots),
// it does not observe the context.
type graphColoringTimetabler struct{}

func NewGraphColoringTimetabler() Timetabler {
	return &graphColoringTimetabler{}
}

// coloringState is the accumulator threaded through the ordered courses
type coloringState struct {
	assignment Assignment
	conflicts  []Conflict
}

func newColoringState(seed Assignment) coloringState {
	assignment := make(Assignment, len(seed))
	for course, slot := range seed {
		assignment[course] = slot
	}
	return coloringState{
		assignment: assignment,
		conflicts:  []Conflict{},
	}
}

func (timetabler *graphColoringTimetabler) Build(
	_ context.Context,
	courses []Course,
	graph ConflictGraph,
	slots []TimeSlot,
) (Assignment, []Conflict) {
	state := colorCourses(newColoringState(nil), orderByDegree(courses, graph), graph, len(slots))
	return state.assignment, state.conflicts
}

func colorCourses(state coloringState, ordered []Course, graph ConflictGraph, totalSlots int) coloringState {
	return lo.Reduce(ordered, func(state coloringState, course Course, _ int) coloringState {
		return colorCourse(state, course, graph, totalSlots)
	}, state)
}

// colorCourse assigns a single course. Once set, an assignment is never revisited.
func colorCourse(state coloringState, course Course, graph ConflictGraph, totalSlots int) coloringState {
	occupancy := slotOccupancy(course.Id, graph, state.assignment, totalSlots)

	slot := firstFreeSlot(occupancy)
	if slot == Unassigned {
		state.conflicts = append(state.conflicts, Conflict{
			CourseId: course.Id,
			Reason:   NoSlotReason,
		})
		slot = leastConflictingSlot(occupancy)
	}

	state.assignment[course.Id] = slot
	return state
}
