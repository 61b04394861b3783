package model

// standardPredicateEvaluator approximates shared enrollment by department and year co-membership
type standardPredicateEvaluator struct {
	spacingDays int
}

func newStandardPredicateEvaluator(spacingDays int) predicateEvaluator {
	return &standardPredicateEvaluator{
		spacingDays: spacingDays,
	}
}

func (evaluator *standardPredicateEvaluator) Conflicting(course1, course2 Course) bool {
	return course1.Id != course2.Id &&
		course1.Department == course2.Department &&
		course1.Year == course2.Year
}

func (evaluator *standardPredicateEvaluator) Fits(course Course, room Room) bool {
	return room.Available && room.Capacity >= course.Students
}

func (evaluator *standardPredicateEvaluator) TooClose(course1, course2 Course, slot1, slot2 TimeSlot) bool {
	if evaluator.spacingDays == 0 || course1.Difficulty != Hard || course2.Difficulty != Hard {
		return false
	}
	return daysBetween(slot1, slot2) < evaluator.spacingDays
}
