package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type RoomPolicy string

const (
	FirstFit RoomPolicy = "first-fit"
	Matching RoomPolicy = "matching"
)

// RoomAllocator picks a room per course once slots are known. Courses missing from the result have
// no room, which is a normal outcome.
type RoomAllocator interface {
	Allocate(courses []Course, assignment Assignment, rooms []Room) (map[string]string, error)
}

func NewRoomAllocator(policy RoomPolicy) (RoomAllocator, error) {
	switch RoomPolicy(strings.ToLower(string(policy))) {
	case FirstFit, "":
		return NewFirstFitAllocator(), nil
	case Matching:
		return NewMatchingAllocator(), nil
	default:
		return nil, fmt.Errorf("unknown room policy %q", policy)
	}
}

// AllocateRoom returns the first available room, in list order, whose capacity fits the enrollment
func AllocateRoom(course Course, rooms []Room) (string, bool) {
	return allocateRoom(course, rooms, newStandardPredicateEvaluator(0))
}

func allocateRoom(course Course, rooms []Room, evaluator predicateEvaluator) (string, bool) {
	room, ok := lo.Find(rooms, func(room Room) bool {
		return evaluator.Fits(course, room)
	})
	return room.Id, ok
}

// firstFitAllocator looks at every course in isolation, so several exams of the same slot may
// share a room
type firstFitAllocator struct {
	evaluator predicateEvaluator
}

func NewFirstFitAllocator() RoomAllocator {
	return &firstFitAllocator{
		evaluator: newStandardPredicateEvaluator(0),
	}
}

func (allocator *firstFitAllocator) Allocate(courses []Course, assignment Assignment, rooms []Room) (map[string]string, error) {
	allocation := make(map[string]string, len(courses))
	for _, course := range courses {
		if slot, ok := assignment[course.Id]; ok && slot == Unassigned {
			continue
		}
		if room, ok := allocateRoom(course, rooms, allocator.evaluator); ok {
			allocation[course.Id] = room
		}
	}
	return allocation, nil
}

// matchingAllocator gives every exam of a slot a distinct room via maximum bipartite matching
type matchingAllocator struct {
	evaluator predicateEvaluator
}

func NewMatchingAllocator() RoomAllocator {
	return &matchingAllocator{
		evaluator: newStandardPredicateEvaluator(0),
	}
}

func (allocator *matchingAllocator) Allocate(courses []Course, assignment Assignment, rooms []Room) (map[string]string, error) {
	allocation := make(map[string]string, len(courses))

	// Group courses by slot, keeping input order inside each slot
	perSlot := lo.GroupBy(
		lo.Filter(courses, func(course Course, _ int) bool {
			slot, ok := assignment[course.Id]
			return ok && slot != Unassigned
		}),
		func(course Course) int { return assignment[course.Id] },
	)

	available := lo.Filter(rooms, func(room Room, _ int) bool { return room.Available })
	for slot, slotCourses := range perSlot {
		matched, err := assignRooms(slotCourses, available, allocator.evaluator)
		if err != nil {
			return nil, fmt.Errorf("cannot assign rooms for slot %v: %w", slot, err)
		}
		for course, room := range matched {
			allocation[course] = room
		}
	}

	return allocation, nil
}
