package model

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInputFile = "testdata/sample.json"

func sampleInput(t *testing.T) ModelInput {
	t.Helper()
	input, err := InputFromJson(sampleInputFile)
	require.NoError(t, err)
	return input
}

// oneDayConstraints yields exactly dailySlots slots on a single weekday
func oneDayConstraints(dailySlots int) Constraints {
	return Constraints{
		StartDate:    time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, time.May, 12, 0, 0, 0, 0, time.UTC),
		DailySlots:   dailySlots,
		SlotDuration: 2,
		DayStartHour: DefaultDayStartHour,
		BreakHours:   DefaultBreakHours,
	}
}

// cliqueCourses returns courses that all share department and year
func cliqueCourses(n int) []Course {
	return lo.Times(n, func(i int) Course {
		return Course{
			Id:         fmt.Sprintf("C%d", i+1),
			Department: "Computer Science",
			Year:       1,
			Students:   10,
		}
	})
}

// crownCourses builds u1, v1, ..., un, vn where ui conflicts with vj iff i != j. The graph is
// bipartite, yet the greedy coloring in input order needs n slots.
func crownCourses(n int) ([]Course, ConflictGraph) {
	courses := make([]Course, 0, 2*n)
	for i := 1; i <= n; i++ {
		courses = append(courses,
			Course{Id: fmt.Sprintf("U%d", i), Department: "U", Year: uint64(i)},
			Course{Id: fmt.Sprintf("V%d", i), Department: "V", Year: uint64(i)},
		)
	}
	graph := BuildConflictGraphWith(courses, func(course1, course2 Course) bool {
		return course1.Department != course2.Department && course1.Year != course2.Year
	})
	return courses, graph
}

func conflictIds(conflicts []Conflict) []string {
	return lo.Map(conflicts, func(conflict Conflict, _ int) string { return conflict.CourseId })
}

// clashingCourses lists every course sharing its slot with some neighbor
func clashingCourses(courses []Course, graph ConflictGraph, assignment Assignment) []string {
	return lo.FilterMap(courses, func(course Course, _ int) (string, bool) {
		return course.Id, lo.SomeBy(graph.Neighbors(course.Id), func(neighbor string) bool {
			return assignment[neighbor] == assignment[course.Id]
		})
	})
}

func assertComplete(t *testing.T, courses []Course, slots []TimeSlot, assignment Assignment) {
	t.Helper()
	assert.Len(t, assignment, len(courses))
	for _, course := range courses {
		slot, ok := assignment[course.Id]
		assert.True(t, ok, "course %v has no assignment", course.Id)
		assert.GreaterOrEqual(t, slot, 0)
		assert.Less(t, slot, len(slots))
	}
}

func TestGraphColoringTimetabler(t *testing.T) {
	timetabler := NewGraphColoringTimetabler()

	t.Run("Independent courses share the first slot", func(t *testing.T) {
		//** Arrange
		input := sampleInput(t)
		graph := BuildConflictGraph(input.Courses)
		slots := GenerateTimeSlots(input.Constraints)

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), input.Courses, graph, slots)

		//** Assert
		assert.Empty(t, conflicts)
		assertComplete(t, input.Courses, slots, assignment)
		for _, course := range input.Courses {
			assert.Equal(t, 0, assignment[course.Id])
		}
	})

	t.Run("Clique with enough slots is conflict free", func(t *testing.T) {
		//** Arrange
		courses := cliqueCourses(4)
		graph := BuildConflictGraph(courses)
		slots := GenerateTimeSlots(oneDayConstraints(4))

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), courses, graph, slots)

		//** Assert
		assert.Empty(t, conflicts)
		assert.ElementsMatch(t, []int{0, 1, 2, 3}, lo.Values(assignment))
	})

	t.Run("Clique with fewer slots reuses the least conflicting slot", func(t *testing.T) {
		//** Arrange
		courses := cliqueCourses(5)
		graph := BuildConflictGraph(courses)
		slots := GenerateTimeSlots(oneDayConstraints(3))

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), courses, graph, slots)

		//** Assert
		assertComplete(t, courses, slots, assignment)
		assert.Equal(t, []string{"C4", "C5"}, conflictIds(conflicts))
		for _, conflict := range conflicts {
			assert.Equal(t, NoSlotReason, conflict.Reason)
		}
		assert.Equal(t, Assignment{"C1": 0, "C2": 1, "C3": 2, "C4": 0, "C5": 1}, assignment)
	})

	t.Run("Higher degree courses are colored first", func(t *testing.T) {
		//** Arrange
		courses := []Course{
			{Id: "LONE", Department: "English", Year: 1},
			{Id: "A", Department: "Physics", Year: 2},
			{Id: "B", Department: "Physics", Year: 2},
		}
		graph := BuildConflictGraph(courses)
		slots := GenerateTimeSlots(oneDayConstraints(2))

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), courses, graph, slots)

		//** Assert
		assert.Empty(t, conflicts)
		assert.Equal(t, Assignment{"A": 0, "B": 1, "LONE": 0}, assignment)
	})

	t.Run("No slots leaves every course unassigned and reported", func(t *testing.T) {
		//** Arrange
		courses := cliqueCourses(3)
		graph := BuildConflictGraph(courses)

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), courses, graph, []TimeSlot{})

		//** Assert
		assert.Len(t, conflicts, 3)
		for _, course := range courses {
			assert.Equal(t, Unassigned, assignment[course.Id])
		}
	})

	t.Run("Crown graph defeats the greedy order", func(t *testing.T) {
		//** Arrange
		courses, graph := crownCourses(3)
		slots := GenerateTimeSlots(oneDayConstraints(2))

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), courses, graph, slots)

		//** Assert
		assertComplete(t, courses, slots, assignment)
		assert.Equal(t, []string{"U3", "V3"}, conflictIds(conflicts))
	})
}

func TestCspTimetabler(t *testing.T) {
	timetabler := NewCspTimetabler(DefaultSearchOptions())

	t.Run("Finds a conflict free coloring the greedy order misses", func(t *testing.T) {
		//** Arrange
		courses, graph := crownCourses(4)
		slots := GenerateTimeSlots(oneDayConstraints(2))

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), courses, graph, slots)

		//** Assert
		assert.Empty(t, conflicts)
		assertComplete(t, courses, slots, assignment)
		assert.Empty(t, clashingCourses(courses, graph, assignment))
	})

	t.Run("Unsatisfiable instance keeps every course assigned", func(t *testing.T) {
		//** Arrange
		courses := cliqueCourses(5)
		graph := BuildConflictGraph(courses)
		slots := GenerateTimeSlots(oneDayConstraints(3))

		//** Act
		assignment, conflicts := timetabler.Build(context.Background(), courses, graph, slots)

		//** Assert
		assertComplete(t, courses, slots, assignment)
		assert.Len(t, conflicts, 2)
		assert.Subset(t, clashingCourses(courses, graph, assignment), conflictIds(conflicts))
	})

	t.Run("Cancelled context still yields a complete assignment", func(t *testing.T) {
		//** Arrange
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		courses, graph := crownCourses(6)
		slots := GenerateTimeSlots(oneDayConstraints(2))

		//** Act
		assignment, conflicts := NewCspTimetabler(SearchOptions{Timeout: time.Nanosecond}).Build(ctx, courses, graph, slots)

		//** Assert
		assertComplete(t, courses, slots, assignment)
		_, greedyConflicts := NewGraphColoringTimetabler().Build(ctx, courses, graph, slots)
		assert.LessOrEqual(t, len(conflicts), len(greedyConflicts))
	})
}

func TestGeneticTimetabler(t *testing.T) {
	t.Run("Never worse than the greedy coloring", func(t *testing.T) {
		//** Arrange
		courses, graph := crownCourses(4)
		slots := GenerateTimeSlots(oneDayConstraints(2))
		_, greedyConflicts := NewGraphColoringTimetabler().Build(context.Background(), courses, graph, slots)

		//** Act
		assignment, conflicts := NewGeneticTimetabler(DefaultSearchOptions()).Build(context.Background(), courses, graph, slots)

		//** Assert
		assertComplete(t, courses, slots, assignment)
		assert.LessOrEqual(t, len(conflicts), len(greedyConflicts))
		assert.Subset(t, clashingCourses(courses, graph, assignment), conflictIds(conflicts))
	})

	t.Run("Same seed gives the same result", func(t *testing.T) {
		//** Arrange
		courses, graph := crownCourses(5)
		slots := GenerateTimeSlots(oneDayConstraints(3))
		options := SearchOptions{MaxIterations: 50, PopulationSize: 20, MutationRate: 0.1, Seed: 42}

		//** Act
		assignment1, conflicts1 := NewGeneticTimetabler(options).Build(context.Background(), courses, graph, slots)
		assignment2, conflicts2 := NewGeneticTimetabler(options).Build(context.Background(), courses, graph, slots)

		//** Assert
		assert.Equal(t, assignment1, assignment2)
		assert.Equal(t, conflicts1, conflicts2)
	})

	t.Run("Expired deadline still yields a complete assignment", func(t *testing.T) {
		//** Arrange
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()
		courses := cliqueCourses(6)
		graph := BuildConflictGraph(courses)
		slots := GenerateTimeSlots(oneDayConstraints(4))

		//** Act
		assignment, conflicts := NewGeneticTimetabler(DefaultSearchOptions()).Build(ctx, courses, graph, slots)

		//** Assert
		assertComplete(t, courses, slots, assignment)
		assert.Len(t, conflicts, 2)
	})
}

func TestNewTimetabler(t *testing.T) {
	assert.IsType(t, &graphColoringTimetabler{}, NewTimetabler(GraphColoring, DefaultSearchOptions()))
	assert.IsType(t, &cspTimetabler{}, NewTimetabler(ConstraintSatisfaction, DefaultSearchOptions()))
	assert.IsType(t, &geneticTimetabler{}, NewTimetabler(Genetic, DefaultSearchOptions()))
	assert.IsType(t, &graphColoringTimetabler{}, NewTimetabler(Algorithm("simulated-annealing"), DefaultSearchOptions()))
}

func TestParseAlgorithm(t *testing.T) {
	assert.Equal(t, GraphColoring, ParseAlgorithm("graph-coloring"))
	assert.Equal(t, ConstraintSatisfaction, ParseAlgorithm("CSP"))
	assert.Equal(t, Genetic, ParseAlgorithm(" genetic "))
	assert.Equal(t, GraphColoring, ParseAlgorithm("tabu"))
	assert.Equal(t, GraphColoring, ParseAlgorithm(""))
}

func TestVerify(t *testing.T) {
	courses := cliqueCourses(3)
	rooms := []Room{{Id: "R1", Capacity: 50, Available: true}, {Id: "R2", Capacity: 5, Available: true}}
	graph := BuildConflictGraph(courses)
	valid := func() Schedule {
		return Schedule{
			Exams: []ScheduledExam{
				{CourseId: "C1", SlotIndex: 0, RoomId: lo.ToPtr("R1")},
				{CourseId: "C2", SlotIndex: 1, RoomId: lo.ToPtr("R1")},
				{CourseId: "C3", SlotIndex: 0, RoomId: nil},
			},
			Conflicts: []Conflict{{CourseId: "C3", Reason: NoSlotReason}},
		}
	}

	t.Run("Valid schedule", func(t *testing.T) {
		assert.NoError(t, Verify(valid(), courses, rooms, graph))
	})

	t.Run("Missing exam", func(t *testing.T) {
		schedule := valid()
		schedule.Exams = schedule.Exams[:2]
		assert.Error(t, Verify(schedule, courses, rooms, graph))
	})

	t.Run("Duplicated exam", func(t *testing.T) {
		schedule := valid()
		schedule.Exams[2].CourseId = "C1"
		assert.Error(t, Verify(schedule, courses, rooms, graph))
	})

	t.Run("Room too small", func(t *testing.T) {
		schedule := valid()
		schedule.Exams[0].RoomId = lo.ToPtr("R2")
		assert.Error(t, Verify(schedule, courses, rooms, graph))
	})

	t.Run("Unknown room", func(t *testing.T) {
		schedule := valid()
		schedule.Exams[0].RoomId = lo.ToPtr("R9")
		assert.Error(t, Verify(schedule, courses, rooms, graph))
	})

	t.Run("Unreported clash", func(t *testing.T) {
		schedule := valid()
		schedule.Conflicts = []Conflict{}
		assert.Error(t, Verify(schedule, courses, rooms, graph))
	})

	t.Run("Reported course without clash", func(t *testing.T) {
		schedule := valid()
		schedule.Conflicts = append(schedule.Conflicts, Conflict{CourseId: "C2", Reason: NoSlotReason})
		assert.Error(t, Verify(schedule, courses, rooms, graph))
	})
}
