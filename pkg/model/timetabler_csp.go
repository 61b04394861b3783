package model

import (
	"context"
	"slices"

	"github.com/samber/lo"
)

// cspTimetabler runs a backtracking search with forward checking, choosing the course with the
// minimum remaining legal slots and trying its least constraining slots first. The greedy coloring
// is the incumbent: the search only replaces it with something strictly better.
type cspTimetabler struct {
	options SearchOptions
}

func NewCspTimetabler(options SearchOptions) Timetabler {
	return &cspTimetabler{
		options: options.withDefaults(),
	}
}

func (timetabler *cspTimetabler) Build(
	ctx context.Context,
	courses []Course,
	graph ConflictGraph,
	slots []TimeSlot,
) (Assignment, []Conflict) {
	//** Incumbent
	incumbent, incumbentConflicts := NewGraphColoringTimetabler().Build(ctx, courses, graph, slots)
	if len(incumbentConflicts) == 0 || len(slots) == 0 {
		return incumbent, incumbentConflicts
	}

	ctx, cancel := context.WithTimeout(ctx, timetabler.options.Timeout)
	defer cancel()

	//** Search
	ordered := orderByDegree(courses, graph)
	search := newCspSearch(ordered, graph, len(slots), timetabler.options.MaxIterations)
	if search.backtrack(ctx) {
		return search.assignment(), []Conflict{}
	}

	//** Complete the deepest consistent partial assignment greedily
	remaining := lo.Filter(ordered, func(course Course, _ int) bool {
		_, ok := search.best[course.Id]
		return !ok
	})
	state := colorCourses(newColoringState(search.best), remaining, graph, len(slots))
	if len(state.conflicts) < len(incumbentConflicts) {
		return state.assignment, state.conflicts
	}
	return incumbent, incumbentConflicts
}

type cspSearch struct {
	courses       []Course
	neighbors     [][]int
	totalSlots    int
	blocked       [][]int // blocked[course][slot] counts assigned neighbors holding slot
	legal         []int   // Number of slots with blocked[course][slot] == 0
	assigned      []int
	depth         int
	best          Assignment
	bestDepth     int
	visited       int
	backtracks    int
	maxBacktracks int
	halted        bool
}

func newCspSearch(ordered []Course, graph ConflictGraph, totalSlots, maxBacktracks int) *cspSearch {
	index := make(map[string]int, len(ordered))
	for i, course := range ordered {
		index[course.Id] = i
	}

	search := &cspSearch{
		courses:       ordered,
		neighbors:     make([][]int, len(ordered)),
		totalSlots:    totalSlots,
		blocked:       make([][]int, len(ordered)),
		legal:         make([]int, len(ordered)),
		assigned:      make([]int, len(ordered)),
		best:          Assignment{},
		maxBacktracks: maxBacktracks,
	}
	for i, course := range ordered {
		search.neighbors[i] = lo.FilterMap(graph.neighbors[course.Id], func(neighbor string, _ int) (int, bool) {
			position, ok := index[neighbor]
			return position, ok
		})
		search.blocked[i] = make([]int, totalSlots)
		search.legal[i] = totalSlots
		search.assigned[i] = Unassigned
	}
	return search
}

func (search *cspSearch) backtrack(ctx context.Context) bool {
	if search.depth == len(search.courses) {
		return true
	}
	if search.stop(ctx) {
		return false
	}

	course := search.selectCourse()
	for _, slot := range search.orderSlots(course) {
		consistent := search.assign(course, slot)
		if consistent && search.backtrack(ctx) {
			return true
		}
		search.unassign(course, slot)
		if search.halted {
			return false
		}
	}

	search.backtracks++
	return false
}

func (search *cspSearch) stop(ctx context.Context) bool {
	search.visited++
	if search.backtracks >= search.maxBacktracks || (search.visited%128 == 0 && ctx.Err() != nil) {
		search.halted = true
	}
	return search.halted
}

// selectCourse picks the unassigned course with the fewest legal slots; ties go to the earliest in
// degree order
func (search *cspSearch) selectCourse() int {
	selected := -1
	for course := range search.courses {
		if search.assigned[course] != Unassigned {
			continue
		}
		if selected == -1 || search.legal[course] < search.legal[selected] {
			selected = course
		}
	}
	return selected
}

// orderSlots returns the legal slots of course, least constraining first and lowest index on ties
func (search *cspSearch) orderSlots(course int) []int {
	slots := make([]int, 0, search.legal[course])
	cost := make(map[int]int, search.legal[course])
	for slot := range search.totalSlots {
		if search.blocked[course][slot] > 0 {
			continue
		}
		slots = append(slots, slot)
		cost[slot] = lo.CountBy(search.neighbors[course], func(neighbor int) bool {
			return search.assigned[neighbor] == Unassigned && search.blocked[neighbor][slot] == 0
		})
	}
	slices.SortStableFunc(slots, func(slot1, slot2 int) int {
		return cost[slot1] - cost[slot2]
	})
	return slots
}

// assign reports false when some unassigned neighbor is left without legal slots
func (search *cspSearch) assign(course, slot int) bool {
	search.assigned[course] = slot
	search.depth++

	consistent := true
	for _, neighbor := range search.neighbors[course] {
		search.blocked[neighbor][slot]++
		if search.blocked[neighbor][slot] == 1 {
			search.legal[neighbor]--
			if search.assigned[neighbor] == Unassigned && search.legal[neighbor] == 0 {
				consistent = false
			}
		}
	}

	if search.depth > search.bestDepth {
		search.bestDepth = search.depth
		search.best = search.assignment()
	}
	return consistent
}

func (search *cspSearch) unassign(course, slot int) {
	for _, neighbor := range search.neighbors[course] {
		search.blocked[neighbor][slot]--
		if search.blocked[neighbor][slot] == 0 {
			search.legal[neighbor]++
		}
	}
	search.assigned[course] = Unassigned
	search.depth--
}

func (search *cspSearch) assignment() Assignment {
	assignment := make(Assignment, search.depth)
	for course, slot := range search.assigned {
		if slot != Unassigned {
			assignment[search.courses[course].Id] = slot
		}
	}
	return assignment
}
