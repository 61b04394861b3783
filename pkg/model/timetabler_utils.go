package model

import (
	"fmt"
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// orderByDegree sorts courses by descending conflict degree, keeping input order among ties
func orderByDegree(courses []Course, graph ConflictGraph) []Course {
	ordered := slices.Clone(courses)
	slices.SortStableFunc(ordered, func(course1, course2 Course) int {
		return graph.Degree(course2.Id) - graph.Degree(course1.Id)
	})
	return ordered
}

// slotOccupancy counts, per slot index, the neighbors of course already assigned to it
func slotOccupancy(course string, graph ConflictGraph, assignment Assignment, totalSlots int) []int {
	occupancy := make([]int, totalSlots)
	for _, neighbor := range graph.neighbors[course] {
		if slot, ok := assignment[neighbor]; ok && slot >= 0 && slot < totalSlots {
			occupancy[slot]++
		}
	}
	return occupancy
}

func firstFreeSlot(occupancy []int) int {
	return slices.Index(occupancy, 0)
}

// leastConflictingSlot breaks ties by the lowest index; Unassigned when there are no slots
func leastConflictingSlot(occupancy []int) int {
	best := Unassigned
	for slot, conflicts := range occupancy {
		if best == Unassigned || conflicts < occupancy[best] {
			best = slot
		}
	}
	return best
}

// reportConflicts flags, following the processing order, every course that shares its slot with a
// neighbor processed before it (or has no slot at all)
func reportConflicts(ordered []Course, graph ConflictGraph, assignment Assignment) []Conflict {
	conflicts := []Conflict{}
	processed := make(map[string]bool, len(ordered))
	for _, course := range ordered {
		slot := assignment[course.Id]
		clash := slot == Unassigned || lo.SomeBy(graph.neighbors[course.Id], func(neighbor string) bool {
			return processed[neighbor] && assignment[neighbor] == slot
		})
		if clash {
			conflicts = append(conflicts, Conflict{CourseId: course.Id, Reason: NoSlotReason})
		}
		processed[course.Id] = true
	}
	return conflicts
}

// Verify checks a schedule against the invariants every run must hold:
//   - every course appears exactly once
//   - every room assignment exists, is available and fits the enrollment
//   - every listed conflict really clashes, and every clash is listed
func Verify(schedule Schedule, courses []Course, rooms []Room, graph ConflictGraph) error {
	evaluator := newStandardPredicateEvaluator(0)
	roomsById := lo.KeyBy(rooms, func(room Room) string { return room.Id })
	coursesById := lo.KeyBy(courses, func(course Course) string { return course.Id })

	//** Totality and uniqueness
	if len(schedule.Exams) != len(courses) {
		return fmt.Errorf("schedule has %v exams for %v courses", len(schedule.Exams), len(courses))
	}
	slotOf := make(map[string]int, len(courses))
	for _, exam := range schedule.Exams {
		course, ok := coursesById[exam.CourseId]
		if !ok {
			return fmt.Errorf("exam for unknown course %q", exam.CourseId)
		}
		if _, duplicated := slotOf[exam.CourseId]; duplicated {
			return fmt.Errorf("course %q is scheduled more than once", exam.CourseId)
		}
		slotOf[exam.CourseId] = exam.SlotIndex

		//** Room capacity
		if exam.RoomId == nil {
			continue
		}
		room, ok := roomsById[*exam.RoomId]
		if !ok {
			return fmt.Errorf("course %q assigned to unknown room %q", exam.CourseId, *exam.RoomId)
		}
		if !evaluator.Fits(course, room) {
			return fmt.Errorf("course %q (%v students) does not fit room %q (capacity %v, available %v)",
				course.Id, course.Students, room.Id, room.Capacity, room.Available)
		}
	}

	//** Conflict report
	listed := make(map[string]bool, len(schedule.Conflicts))
	for _, conflict := range schedule.Conflicts {
		if listed[conflict.CourseId] {
			return fmt.Errorf("course %q is reported as conflicting more than once", conflict.CourseId)
		}
		listed[conflict.CourseId] = true

		slot, ok := slotOf[conflict.CourseId]
		if !ok {
			return fmt.Errorf("conflict reported for unknown course %q", conflict.CourseId)
		}
		clash := slot == Unassigned || lo.SomeBy(graph.neighbors[conflict.CourseId], func(neighbor string) bool {
			return slotOf[neighbor] == slot
		})
		if !clash {
			return fmt.Errorf("course %q is reported as conflicting but shares no slot with a neighbor", conflict.CourseId)
		}
	}
	for edge := range graph.edges {
		course1, course2 := edge[0], edge[1]
		if slotOf[course1] == slotOf[course2] && !listed[course1] && !listed[course2] {
			return fmt.Errorf("courses %q and %q share slot %v but neither is reported", course1, course2, slotOf[course1])
		}
	}
	for _, exam := range schedule.Exams {
		if exam.SlotIndex == Unassigned && !listed[exam.CourseId] {
			return fmt.Errorf("course %q has no slot but is not reported", exam.CourseId)
		}
	}

	return nil
}

// assignRooms computes a maximum matching between courses and the rooms they fit in. Courses left
// out of the matching are absent from the result.
func assignRooms(courses []Course, rooms []Room, evaluator predicateEvaluator) (map[string]string, error) {
	assignments := make(map[string]string, len(courses))
	if len(courses) == 0 || len(rooms) == 0 {
		return assignments, nil
	}

	// Build neighbors predicate based on capacity and availability
	neighbors := func(courseAny any, roomAny any) (bool, error) {
		return evaluator.Fits(courseAny.(Course), roomAny.(Room)), nil
	}

	// Transform courses and rooms to slices of any
	coursesAny, roomsAny := lo.Map(courses, func(course Course, _ int) any { return course }), lo.Map(rooms, func(room Room, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(coursesAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	for _, edge := range graph.LargestMatching() {
		courseNode, roomNode := edge.Node1, edge.Node2
		if courseNode >= len(courses) {
			courseNode, roomNode = roomNode, courseNode
		}
		courseIndex, roomIndex := courseNode, roomNode-len(courses)
		assignments[courses[courseIndex].Id] = rooms[roomIndex].Id
	}

	return assignments, nil
}
