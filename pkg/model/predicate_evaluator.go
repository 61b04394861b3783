package model

type conflictEvaluator interface {
	// Checks whether course1 and course2 are likely to share enrolled students
	Conflicting(course1, course2 Course) bool
}

type predicateEvaluator interface {
	conflictEvaluator

	// Checks whether the room is available and the course's enrollment fits in it
	Fits(course Course, room Room) bool

	// Checks whether two hard exams held at slot1 and slot2 are closer than the minimum spacing
	TooClose(course1, course2 Course, slot1, slot2 TimeSlot) bool
}

type predicateFunc func(course1, course2 Course) bool

func (predicate predicateFunc) Conflicting(course1, course2 Course) bool {
	return predicate(course1, course2)
}
